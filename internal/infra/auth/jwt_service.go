// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"booklib/config"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/service"
	"booklib/internal/errors"
	"booklib/internal/util"
)

// tokenClaims is the JWT payload. Subject holds the owner's email.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid,omitempty"`
	Kind   string `json:"kind"`
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret     []byte        // HMAC key shared by access and refresh tokens.
	accessTTL  time.Duration // Time-to-live for access tokens.
	refreshTTL time.Duration // Time-to-live for refresh tokens.
	clock      service.Clock
	parser     *jwt.Parser
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config, clock service.Clock) (service.TokenService, error) {
	if cfg.SecretKey.Signing == "" {
		return nil, errors.New("jwt signing secret must be provided")
	}
	if cfg.Auth == nil || cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 {
		return nil, errors.New("jwt token lifetimes must be positive")
	}

	return &jwtService{
		secret:     []byte(cfg.SecretKey.Signing),
		accessTTL:  cfg.Auth.AccessTokenTTL,
		refreshTTL: cfg.Auth.RefreshTokenTTL,
		clock:      clock,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithTimeFunc(clock.Now),
		),
	}, nil
}

// IssueAccessToken signs a token carrying the user's email and id.
func (s *jwtService) IssueAccessToken(user *entity.User) (*service.IssuedToken, error) {
	return s.issue(user, entity.TokenKindAccess, s.accessTTL)
}

// IssueRefreshToken signs a token carrying only the user's email.
func (s *jwtService) IssueRefreshToken(user *entity.User) (*service.IssuedToken, error) {
	return s.issue(user, entity.TokenKindRefresh, s.refreshTTL)
}

// ExtractSubject returns the email of a verified token.
func (s *jwtService) ExtractSubject(token string) (string, error) {
	claims, err := s.ParseClaims(token)
	if err != nil {
		return "", err
	}

	return claims.Subject, nil
}

// ParseClaims checks the signature, algorithm and expiry of a token and returns its claims.
func (s *jwtService) ParseClaims(token string) (*service.Claims, error) {
	parsed := &tokenClaims{}
	if _, err := s.parser.ParseWithClaims(token, parsed, s.keyFunc); err != nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, err.Error())
	}

	kind := entity.TokenKind(parsed.Kind)
	if kind != entity.TokenKindAccess && kind != entity.TokenKindRefresh {
		return nil, errors.Wrapf(domainerrors.ErrInvalidToken, "unknown token kind %q", parsed.Kind)
	}
	if parsed.Subject == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidToken, "token has no subject")
	}

	claims := &service.Claims{
		ID:        parsed.ID,
		Subject:   parsed.Subject,
		Kind:      kind,
		ExpiresAt: parsed.ExpiresAt.Time,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.UserID != "" {
		userID, err := uuid.Parse(parsed.UserID)
		if err != nil {
			return nil, errors.Wrap(domainerrors.ErrInvalidToken, "malformed uid claim")
		}
		claims.UserID = &userID
	}

	return claims, nil
}

// IsValid reports whether the token verifies and belongs to user.
func (s *jwtService) IsValid(token string, user *entity.User) bool {
	if user == nil {
		return false
	}

	subject, err := s.ExtractSubject(token)

	return err == nil && subject == user.Email
}

// HashToken returns the ledger digest of a token.
func (s *jwtService) HashToken(token string) string {
	return util.HashToken(token)
}

func (s *jwtService) issue(user *entity.User, kind entity.TokenKind, ttl time.Duration) (*service.IssuedToken, error) {
	if user == nil || user.Email == "" {
		return nil, errors.New("token subject is required")
	}

	now := s.clock.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: string(kind),
	}
	// Only access tokens carry the user id.
	if kind == entity.TokenKindAccess {
		claims.UserID = user.ID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign token")
	}

	return &service.IssuedToken{Value: signed, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *jwtService) keyFunc(token *jwt.Token) (any, error) {
	// Ensure the signing method is what we expect.
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, jwt.ErrSignatureInvalid
	}

	return s.secret, nil
}
