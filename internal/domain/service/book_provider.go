package service

import (
	"context"

	"booklib/internal/domain/entity"
)

// BookProvider is the external book metadata source.
// Implementations return domain ErrBookNotFound for empty results and
// ErrBookProviderUnavailable for transport failures, bad statuses and undecodable payloads.
type BookProvider interface {
	// Search returns the books matching text in the given field.
	Search(ctx context.Context, field entity.SearchField, text string) ([]*entity.BookSummary, error)

	// FindByID returns a single book by its provider id.
	FindByID(ctx context.Context, id string) (*entity.BookSummary, error)
}
