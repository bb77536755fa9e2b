// Package middleware holds the echo middleware specific to the REST API.
package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "booklib/internal/delivery/context"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/errors"
	"booklib/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const principalKey = "principal"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	Sessions usecase.SessionUsecase
	Logger   *slog.Logger
}

// AuthMiddleware authenticates bearer access tokens against the session layer.
type AuthMiddleware struct {
	sessions usecase.SessionUsecase
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: params.Sessions,
		logger:   params.Logger,
	}
}

// Authenticate rejects the request with 401 unless it carries a usable access token.
// On success the principal is stored on the echo context and the request logger gains a user_id attribute.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return errors.Wrap(domainerrors.ErrInvalidToken, "missing bearer token")
		}

		ctx := c.Request().Context()
		principal, err := m.sessions.Authenticate(ctx, strings.TrimSpace(token))
		if err != nil {
			return err
		}

		reqLogger := deliverycontext.GetLoggerOrDefault(ctx, m.logger).With(slog.String("user_id", principal.UserID.String()))
		ctx = deliverycontext.WithUserID(deliverycontext.WithLogger(ctx, reqLogger), principal.UserID)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Set(principalKey, principal)

		return next(c)
	}
}

// GetPrincipal returns the principal stored by Authenticate.
func GetPrincipal(c echo.Context) (*usecase.Principal, bool) {
	principal, ok := c.Get(principalKey).(*usecase.Principal)

	return principal, ok && principal != nil
}

// GetUserID returns the authenticated user's id.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	principal, ok := GetPrincipal(c)
	if !ok {
		return uuid.Nil, false
	}

	return principal.UserID, true
}
