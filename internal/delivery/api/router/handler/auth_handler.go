// Package handler contains the HTTP handlers for the REST API.
package handler

import (
	"log/slog"
	"net/http"

	"booklib/internal/delivery/api/response"
	deliverycontext "booklib/internal/delivery/context"
	"booklib/internal/domain/entity"
	"booklib/internal/errors"
	"booklib/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	Sessions usecase.SessionUsecase
	Logger   *slog.Logger
}

// AuthHandler serves registration, login and token refresh.
type AuthHandler struct {
	sessions usecase.SessionUsecase
	logger   *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		sessions: params.Sessions,
		logger:   params.Logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.sessions.Register(c.Request().Context(), &usecase.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, toTokenResponse(out))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.sessions.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, toTokenResponse(out))
}

// Refresh handles POST /auth/refresh. The refresh token travels in the Authorization header;
// a request without a Bearer header gets 204 and no tokens.
func (h *AuthHandler) Refresh(c echo.Context) error {
	written := false
	writer := usecase.TokenWriterFunc(func(pair *entity.TokenPair) error {
		written = true

		return errors.WithStack(response.Success(c, http.StatusOK, &TokenResponse{
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		}))
	})

	if err := h.sessions.Refresh(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization), writer); err != nil {
		if written {
			// The body is already committed; nothing more can be sent.
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger).Error("Failed to write refreshed tokens", slog.Any("error", err))

			return nil
		}

		return err
	}
	if !written {
		return response.NoContent(c)
	}

	return nil
}
