// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"booklib/internal/domain/entity"
	"booklib/internal/errors"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists is returned when a username or email unique constraint is violated.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// ExistsByUsernameOrEmail reports whether either identifier is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Create persists a new user and fills in its ID and timestamps.
	Create(ctx context.Context, user *entity.User) error

	// Update persists the profile fields and password hash of an existing user.
	Update(ctx context.Context, user *entity.User) error

	// Delete removes the user together with its ledger entries and favorite edges.
	Delete(ctx context.Context, id uuid.UUID) error

	// AcquireUserLock locks the user's row until the surrounding transaction ends,
	// serializing token rotation and favorite mutations for that user.
	AcquireUserLock(ctx context.Context, id uuid.UUID) error
}
