package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"booklib/internal/delivery/api/middleware"
	"booklib/internal/delivery/api/response"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/errors"
	"booklib/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	Users  usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler serves the authenticated caller's own account.
type UserHandler struct {
	users  usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		users:  params.Users,
		logger: params.Logger,
	}
}

// GetProfile handles GET /users/profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	user, err := h.users.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PATCH /users/profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid profile input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	update, err := req.toProfileUpdate()
	if err != nil {
		return err
	}

	if err := h.users.UpdateProfile(c.Request().Context(), userID, update); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Profile updated"})
}

// DeleteAccount handles DELETE /users.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	if err := h.users.DeleteAccount(c.Request().Context(), userID); err != nil {
		return err
	}

	return response.NoContent(c)
}

func (req *UpdateProfileRequest) toProfileUpdate() (*entity.ProfileUpdate, error) {
	update := &entity.ProfileUpdate{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		ProfilePicture: req.ProfilePicture,
		Password:       req.Password,
	}

	if req.DateOfBirth != nil && strings.TrimSpace(*req.DateOfBirth) != "" {
		dob, err := time.Parse(dateLayout, strings.TrimSpace(*req.DateOfBirth))
		if err != nil {
			return nil, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("date_of_birth must use the YYYY-MM-DD format"), "parse date of birth")
		}
		update.DateOfBirth = &dob
	}

	return update, nil
}
