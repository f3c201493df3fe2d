package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can pick a status code
// without services knowing about transport.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidScope
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidScope:
		return "invalid_scope"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// default error is internal service error at handler level
// if error has a different kind use one of the constructors below
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) error     { return &Error{Kind: KindNotFound, Message: message} }
func InvalidScope(message string) error { return &Error{Kind: KindInvalidScope, Message: message} }
func InvalidInput(message string) error { return &Error{Kind: KindInvalidInput, Message: message} }
func Unauthorized(message string) error { return &Error{Kind: KindUnauthorized, Message: message} }
func Forbidden(message string) error    { return &Error{Kind: KindForbidden, Message: message} }
func Conflict(message string) error     { return &Error{Kind: KindConflict, Message: message} }

// KindOf returns the kind of the first *Error in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
