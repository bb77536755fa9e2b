package usecase

import (
	"context"

	"booklib/internal/domain/entity"

	"github.com/google/uuid"
)

// FavoriteUsecase manages the user/book favorite edges.
type FavoriteUsecase interface {
	AddFavorite(ctx context.Context, userID uuid.UUID, bookID string) error
	RemoveFavorite(ctx context.Context, userID uuid.UUID, bookID string) error
	HasFavorited(ctx context.Context, userID uuid.UUID, bookID string) (bool, error)
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]*entity.Book, error)
}
