package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("thread not found"), KindNotFound},
		{"invalid scope", InvalidScope("no scope"), KindInvalidScope},
		{"wrapped forbidden", fmt.Errorf("toggle: %w", Forbidden("nope")), KindForbidden},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	e := &Error{Kind: KindInternal, Message: "failed to load", Err: errors.New("conn reset")}
	assert.Equal(t, "failed to load: conn reset", e.Error())
	assert.True(t, errors.Is(e, e.Err))

	assert.Equal(t, "club not found", NotFound("club not found").Error())
	assert.True(t, Is(NotFound("x"), KindNotFound))
	assert.False(t, Is(nil, KindNotFound))
}
