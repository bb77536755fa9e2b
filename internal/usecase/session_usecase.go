// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"booklib/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// AuthOutput carries the token pair issued by register and login.
type AuthOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// Principal is the caller identity resolved from a valid access token.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   entity.Role
}

// TokenWriter receives the token pair produced by a successful refresh.
// A refresh that turns out to be a no-op never calls it.
type TokenWriter interface {
	WriteTokens(pair *entity.TokenPair) error
}

// TokenWriterFunc adapts a function to TokenWriter.
type TokenWriterFunc func(pair *entity.TokenPair) error

// WriteTokens calls f(pair).
func (f TokenWriterFunc) WriteTokens(pair *entity.TokenPair) error {
	return f(pair)
}

// SessionUsecase drives the account and token lifecycle.
type SessionUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)

	// Refresh issues a new access token for the refresh token in authorizationHeader and hands
	// the pair to out. A missing or malformed header is a no-op: out is not called and no error is returned.
	Refresh(ctx context.Context, authorizationHeader string, out TokenWriter) error

	// Authenticate resolves a bearer access token to its owner.
	Authenticate(ctx context.Context, accessToken string) (*Principal, error)

	// ExpireStaleTokens marks every valid ledger entry past its expiry as expired.
	ExpireStaleTokens(ctx context.Context) (int64, error)
}
