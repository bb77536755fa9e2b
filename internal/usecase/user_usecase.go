package usecase

import (
	"context"

	"booklib/internal/domain/entity"

	"github.com/google/uuid"
)

// UserUsecase covers the profile and account operations of an authenticated user.
type UserUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// UpdateProfile applies a partial update. Nil fields are left untouched and
	// a non-empty password is strength-checked and re-hashed.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update *entity.ProfileUpdate) error

	// DeleteAccount removes the user together with its ledger entries and favorites.
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}
