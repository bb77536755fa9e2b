package repository

import (
	"context"

	"booklib/internal/domain/entity"
	"booklib/internal/errors"

	"github.com/google/uuid"
)

var (
	// ErrFavoriteNotFound is returned when the user does not favorite the book.
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrFavoriteAlreadyExists is returned when the (user, book) edge already exists.
	ErrFavoriteAlreadyExists = errors.New("favorite already exists")
)

// FavoriteRepository manages the user/book edge table. Each edge is stored once, so a user's
// favorite set and a book's favoriter set are two projections of the same rows.
type FavoriteRepository interface {
	// Add inserts the edge.
	Add(ctx context.Context, userID uuid.UUID, bookID string) error

	// Remove deletes the edge.
	Remove(ctx context.Context, userID uuid.UUID, bookID string) error

	// Exists reports whether the edge is present.
	Exists(ctx context.Context, userID uuid.UUID, bookID string) (bool, error)

	// ListBooksByUser returns the books the user favorites, in no particular order.
	ListBooksByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Book, error)

	// ListUserIDsByBook returns the users favoriting the book, in no particular order.
	ListUserIDsByBook(ctx context.Context, bookID string) ([]uuid.UUID, error)
}
