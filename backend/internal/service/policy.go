package service

import (
	"github.com/agora-dev/agora/shared/domain"
	internal_errors "github.com/agora-dev/agora/shared/errors"
)

// Authorize is the single admin-or-owner check used by every moderation path.
func Authorize(actor *domain.User, ownerId domain.UserId) error {
	if actor == nil {
		return internal_errors.Unauthorized("Please sign-in")
	}
	if actor.Admin || actor.Id == ownerId {
		return nil
	}
	return internal_errors.Forbidden("Only the owner or an admin can do this")
}
