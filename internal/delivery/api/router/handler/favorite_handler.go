package handler

import (
	"log/slog"
	"net/http"

	"booklib/internal/delivery/api/middleware"
	"booklib/internal/delivery/api/response"
	"booklib/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// FavoriteHandlerParams holds dependencies for FavoriteHandler, injected by Fx.
type FavoriteHandlerParams struct {
	fx.In

	Favorites usecase.FavoriteUsecase
	Logger    *slog.Logger
}

// FavoriteHandler serves the caller's favorite books.
type FavoriteHandler struct {
	favorites usecase.FavoriteUsecase
	logger    *slog.Logger
}

// NewFavoriteHandler is the constructor for FavoriteHandler.
func NewFavoriteHandler(params FavoriteHandlerParams) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: params.Favorites,
		logger:    params.Logger,
	}
}

// List handles GET /users/favorites.
func (h *FavoriteHandler) List(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	books, err := h.favorites.ListFavorites(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	out := make([]*FavoriteBookResponse, 0, len(books))
	for _, book := range books {
		out = append(out, &FavoriteBookResponse{ID: book.ID, Title: book.Title, Thumbnail: book.Thumbnail})
	}

	return response.Success(c, http.StatusOK, out)
}

// Add handles POST /users/favorites/:bookId.
func (h *FavoriteHandler) Add(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	bookID := c.Param("bookId")
	if err := h.favorites.AddFavorite(c.Request().Context(), userID, bookID); err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, map[string]string{"book_id": bookID})
}

// Remove handles DELETE /users/favorites/:bookId.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	if err := h.favorites.RemoveFavorite(c.Request().Context(), userID, c.Param("bookId")); err != nil {
		return err
	}

	return response.NoContent(c)
}
