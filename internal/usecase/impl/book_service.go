package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "booklib/internal/delivery/context"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/service"
	"booklib/internal/errors"
	"booklib/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// bookService implements the BookUsecase interface.
type bookService struct {
	books     service.BookProvider
	favorites usecase.FavoriteUsecase
	logger    *slog.Logger
}

// BookServiceParams holds dependencies for BookService, injected by Fx.
type BookServiceParams struct {
	fx.In

	Books     service.BookProvider
	Favorites usecase.FavoriteUsecase
	Logger    *slog.Logger
}

// NewBookService is the constructor for bookService.
func NewBookService(params BookServiceParams) usecase.BookUsecase {
	return &bookService{
		books:     params.Books,
		favorites: params.Favorites,
		logger:    params.Logger,
	}
}

// Search proxies a provider query.
func (srv *bookService) Search(ctx context.Context, field entity.SearchField, query string) ([]*entity.BookSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("q is required"), "search rejected")
	}
	if !field.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("by must be one of title, author, category, isbn"), "search rejected")
	}

	results, err := srv.books.Search(ctx, field, query)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Warn("Book search failed",
			slog.String("field", string(field)),
			slog.Any("error", err),
		)

		return nil, errors.Wrap(err, "failed to search books")
	}

	return results, nil
}

// GetBook returns the provider's book and whether the caller favorites it.
func (srv *bookService) GetBook(ctx context.Context, userID uuid.UUID, bookID string) (*usecase.BookDetail, error) {
	summary, err := srv.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch book")
	}

	favorited, err := srv.favorites.HasFavorited(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	return &usecase.BookDetail{Book: summary, Favorited: favorited}, nil
}
