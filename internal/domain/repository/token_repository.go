package repository

import (
	"context"
	"time"

	"booklib/internal/domain/entity"
	"booklib/internal/errors"

	"github.com/google/uuid"
)

// ErrTokenNotFound is returned when no ledger entry matches a token.
var ErrTokenNotFound = errors.New("token not found")

// TokenRepository is the append-only token ledger. Entries change status but are never deleted,
// except by the cascade of a user deletion.
type TokenRepository interface {
	// Create records a newly issued token.
	Create(ctx context.Context, token *entity.Token) error

	// FindByHash retrieves the ledger entry of a token by its digest.
	FindByHash(ctx context.Context, tokenHash string) (*entity.Token, error)

	// FindByUserID lists every ledger entry of a user, newest first.
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Token, error)

	// RevokeAllValid marks every Valid entry of the user with one of the given kinds as Revoked.
	// No kinds means every kind.
	RevokeAllValid(ctx context.Context, userID uuid.UUID, kinds ...entity.TokenKind) (int64, error)

	// ExpireStale marks Valid entries whose expiry is not after now as Expired.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
