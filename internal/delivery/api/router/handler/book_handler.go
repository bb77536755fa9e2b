package handler

import (
	"log/slog"
	"net/http"

	"booklib/internal/delivery/api/middleware"
	"booklib/internal/delivery/api/response"
	"booklib/internal/domain/entity"
	"booklib/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// BookHandlerParams holds dependencies for BookHandler, injected by Fx.
type BookHandlerParams struct {
	fx.In

	Books  usecase.BookUsecase
	Logger *slog.Logger
}

// BookHandler serves catalogue search and book detail.
type BookHandler struct {
	books  usecase.BookUsecase
	logger *slog.Logger
}

// NewBookHandler is the constructor for BookHandler.
func NewBookHandler(params BookHandlerParams) *BookHandler {
	return &BookHandler{
		books:  params.Books,
		logger: params.Logger,
	}
}

// Search handles GET /books?q=&by=.
func (h *BookHandler) Search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "Invalid search parameters")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	results, err := h.books.Search(c.Request().Context(), entity.SearchField(req.By), req.Query)
	if err != nil {
		return err
	}

	out := make([]*BookResponse, 0, len(results))
	for _, book := range results {
		out = append(out, toBookResponse(book))
	}

	return response.Success(c, http.StatusOK, out)
}

// Get handles GET /books/:id.
func (h *BookHandler) Get(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	detail, err := h.books.GetBook(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, &BookDetailResponse{
		Book:      toBookResponse(detail.Book),
		Favorited: detail.Favorited,
	})
}
