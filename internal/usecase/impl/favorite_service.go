package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "booklib/internal/delivery/context"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/repository"
	"booklib/internal/domain/service"
	"booklib/internal/errors"
	"booklib/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const (
	opAddFavorite    = "add"
	opRemoveFavorite = "remove"
)

// favoriteService implements the FavoriteUsecase interface.
type favoriteService struct {
	txManager repository.TransactionManager
	books     service.BookProvider
	metrics   service.MetricsRecorder
	events    *eventEmitter
	logger    *slog.Logger
}

// FavoriteServiceParams holds dependencies for FavoriteService, injected by Fx.
type FavoriteServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Books     service.BookProvider
	Publisher service.EventPublisher
	Clock     service.Clock
	Metrics   service.MetricsRecorder
	Logger    *slog.Logger
}

// NewFavoriteService is the constructor for favoriteService.
func NewFavoriteService(params FavoriteServiceParams) usecase.FavoriteUsecase {
	return &favoriteService{
		txManager: params.TxManager,
		books:     params.Books,
		metrics:   params.Metrics,
		events:    &eventEmitter{publisher: params.Publisher, clock: params.Clock, logger: params.Logger},
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *favoriteService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *favoriteService) record(operation string, err error) {
	outcome := service.OutcomeSuccess
	if err != nil {
		outcome = service.OutcomeFailure
	}
	srv.metrics.RecordFavoriteMutation(operation, outcome)
}

// AddFavorite fetches the book from the provider, then stores the book and the edge in one transaction.
// The provider call happens before any lock is taken.
func (srv *favoriteService) AddFavorite(ctx context.Context, userID uuid.UUID, bookID string) (err error) {
	defer func() { srv.record(opAddFavorite, err) }()

	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("bookId is required"), "add favorite rejected")
	}

	// 1. Fetch metadata outside any transaction.
	summary, err := srv.books.FindByID(ctx, bookID)
	if err != nil {
		srv.log(ctx).Warn("Book lookup failed", slog.String("book_id", bookID), slog.Any("error", err))

		return errors.Wrap(err, "failed to fetch book")
	}

	// 2. Lock the user, check the edge, upsert the book, insert the edge.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().AcquireUserLock(ctx, userID); err != nil {
			return err
		}

		favoriteRepo := repoFactory.FavoriteRepo()
		exists, err := favoriteRepo.Exists(ctx, userID, bookID)
		if err != nil {
			return errors.Wrap(err, "failed to check favorite")
		}
		if exists {
			return errors.Wrap(domainerrors.ErrAlreadyFavorited, "add favorite rejected")
		}

		book := summary.ToBook()
		book.ID = bookID
		if err := repoFactory.BookRepo().Upsert(ctx, book); err != nil {
			return errors.Wrap(err, "failed to store book")
		}

		return favoriteRepo.Add(ctx, userID, bookID)
	})
	if err != nil {
		return mapFavoriteError(err, "failed to add favorite")
	}
	srv.log(ctx).Info("Favorite added", slog.Any("user_id", userID), slog.String("book_id", bookID))

	srv.events.emit(ctx, service.EventFavoriteAdded, userID, bookID)

	return nil
}

// RemoveFavorite deletes the edge. The local book row is kept.
func (srv *favoriteService) RemoveFavorite(ctx context.Context, userID uuid.UUID, bookID string) (err error) {
	defer func() { srv.record(opRemoveFavorite, err) }()

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().AcquireUserLock(ctx, userID); err != nil {
			return err
		}

		return repoFactory.FavoriteRepo().Remove(ctx, userID, bookID)
	})
	if err != nil {
		return mapFavoriteError(err, "failed to remove favorite")
	}
	srv.log(ctx).Info("Favorite removed", slog.Any("user_id", userID), slog.String("book_id", bookID))

	srv.events.emit(ctx, service.EventFavoriteRemoved, userID, bookID)

	return nil
}

// HasFavorited reports whether the user favorites the book.
func (srv *favoriteService) HasFavorited(ctx context.Context, userID uuid.UUID, bookID string) (bool, error) {
	var exists bool
	err := srv.txManager.Read(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		exists, err = repoFactory.FavoriteRepo().Exists(ctx, userID, bookID)

		return err
	})
	if err != nil {
		return false, errors.Wrap(err, "failed to check favorite")
	}

	return exists, nil
}

// ListFavorites returns the user's favorite books in no particular order.
func (srv *favoriteService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]*entity.Book, error) {
	var books []*entity.Book
	err := srv.txManager.Read(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			return err
		}

		var err error
		books, err = repoFactory.FavoriteRepo().ListBooksByUser(ctx, userID)

		return err
	})
	if err != nil {
		return nil, mapFavoriteError(err, "failed to list favorites")
	}

	return books, nil
}

func mapFavoriteError(err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return errors.Wrap(domainerrors.ErrUserNotFound, msg)
	case errors.Is(err, repository.ErrFavoriteAlreadyExists):
		return errors.Wrap(domainerrors.ErrAlreadyFavorited, msg)
	case errors.Is(err, repository.ErrFavoriteNotFound):
		return errors.Wrap(domainerrors.ErrFavoriteNotFound, msg)
	case errors.Is(err, repository.ErrBookNotFound):
		return errors.Wrap(domainerrors.ErrBookNotFound, msg)
	default:
		return errors.Wrap(err, msg)
	}
}
