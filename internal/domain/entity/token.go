package entity

import (
	"time"

	"github.com/google/uuid"
)

// TokenStatus is the ledger state of an issued token.
type TokenStatus string

const (
	// TokenStatusValid tokens are accepted as long as their signature and expiry check out.
	TokenStatusValid TokenStatus = "VALID"
	// TokenStatusExpired tokens passed their expiry before being revoked.
	TokenStatusExpired TokenStatus = "EXPIRED"
	// TokenStatusRevoked tokens were invalidated by a newer login or refresh.
	TokenStatusRevoked TokenStatus = "REVOKED"
)

// IsValid checks if the TokenStatus is a known value.
func (s TokenStatus) IsValid() bool {
	switch s {
	case TokenStatusValid, TokenStatusExpired, TokenStatusRevoked:
		return true
	default:
		return false
	}
}

// TokenType is the authorization scheme the token is presented with.
type TokenType string

// TokenTypeBearer is the only supported scheme.
const TokenTypeBearer TokenType = "BEARER"

// TokenKind distinguishes access tokens from refresh tokens in the ledger.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Token is one entry of the append-only token ledger.
type Token struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string // SHA-256 hex digest of the raw token string.
	Type      TokenType
	Kind      TokenKind
	Status    TokenStatus
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsUsable reports whether the ledger still accepts the token at now.
func (t *Token) IsUsable(now time.Time) bool {
	return t.Status == TokenStatusValid && now.Before(t.ExpiresAt)
}

// TokenPair is the access/refresh pair handed to a client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
