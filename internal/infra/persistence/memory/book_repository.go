package memory

import (
	"context"

	"booklib/internal/domain/entity"
	"booklib/internal/domain/repository"
)

type bookRepository struct {
	sess *session
}

func (repo *bookRepository) Upsert(_ context.Context, book *entity.Book) error {
	store := repo.sess.store
	previous, existed := store.books[book.ID]

	id := book.ID
	err := repo.sess.write(func() {
		if existed {
			store.books[id] = previous
		} else {
			delete(store.books, id)
		}
	})
	if err != nil {
		return err
	}

	now := store.clock.Now()
	stored := copyBook(book)
	stored.CreatedAt = now
	if existed {
		stored.CreatedAt = previous.CreatedAt
	}
	stored.UpdatedAt = now
	store.books[id] = stored

	book.CreatedAt = stored.CreatedAt
	book.UpdatedAt = stored.UpdatedAt

	return nil
}

func (repo *bookRepository) FindByID(_ context.Context, id string) (*entity.Book, error) {
	book, ok := repo.sess.store.books[id]
	if !ok {
		return nil, repository.ErrBookNotFound
	}

	return copyBook(book), nil
}
