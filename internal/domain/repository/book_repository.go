package repository

import (
	"context"

	"booklib/internal/domain/entity"
	"booklib/internal/errors"
)

// ErrBookNotFound is returned when no local book row exists.
var ErrBookNotFound = errors.New("book not found")

// BookRepository stores the local copies of favorited books.
type BookRepository interface {
	// Upsert inserts the book or refreshes its title and thumbnail.
	Upsert(ctx context.Context, book *entity.Book) error

	// FindByID retrieves a book by its provider id.
	FindByID(ctx context.Context, id string) (*entity.Book, error)
}
