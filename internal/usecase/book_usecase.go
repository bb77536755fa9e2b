package usecase

import (
	"context"

	"booklib/internal/domain/entity"

	"github.com/google/uuid"
)

// BookDetail is a provider book annotated for the caller.
type BookDetail struct {
	Book      *entity.BookSummary
	Favorited bool
}

// BookUsecase proxies the book provider.
type BookUsecase interface {
	Search(ctx context.Context, field entity.SearchField, query string) ([]*entity.BookSummary, error)
	GetBook(ctx context.Context, userID uuid.UUID, bookID string) (*BookDetail, error)
}
