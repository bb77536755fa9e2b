package service

import (
	"time"

	"booklib/internal/domain/entity"

	"github.com/google/uuid"
)

// Claims is the verified content of a token.
type Claims struct {
	ID        string           // Unique token id (jti).
	Subject   string           // Email of the token owner.
	UserID    *uuid.UUID       // Present on access tokens only.
	Kind      entity.TokenKind // access or refresh.
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssuedToken is a freshly signed token together with its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService signs and verifies JWTs. It holds no state besides the signing secret and clock;
// ledger revocation is checked by the session layer, not here.
type TokenService interface {
	// IssueAccessToken signs a short-lived token carrying the user's email and id.
	IssueAccessToken(user *entity.User) (*IssuedToken, error)

	// IssueRefreshToken signs a long-lived token carrying only the user's email.
	IssueRefreshToken(user *entity.User) (*IssuedToken, error)

	// ExtractSubject returns the email of a structurally valid, unexpired token.
	ExtractSubject(token string) (string, error)

	// ParseClaims verifies signature and expiry and returns the token's claims.
	ParseClaims(token string) (*Claims, error)

	// IsValid reports whether the signature verifies, the token is unexpired
	// and its subject is the user's email.
	IsValid(token string, user *entity.User) bool

	// HashToken returns the digest under which the token is recorded in the ledger.
	HashToken(token string) string
}
