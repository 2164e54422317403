package usecase

import (
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
)

// requireOwner rejects actors acting on someone else's resources.
func requireOwner(actor domain.Identity, userID string) error {
	if actor.UserID == "" {
		return apperror.Unauthorized("User not authenticated")
	}
	if !actor.Owns(userID) {
		return apperror.Forbidden("You can only modify your own profile")
	}
	return nil
}
