package memory

import (
	"context"
	"slices"

	"booklib/internal/domain/entity"
	"booklib/internal/domain/repository"
	"booklib/internal/errors"

	"github.com/google/uuid"
)

type favoriteRepository struct {
	sess *session
}

func (repo *favoriteRepository) Add(_ context.Context, userID uuid.UUID, bookID string) error {
	store := repo.sess.store
	if _, ok := store.users[userID]; !ok {
		return errors.Wrap(repository.ErrUserNotFound, "favorite references a missing user")
	}
	if _, ok := store.books[bookID]; !ok {
		return errors.Wrap(repository.ErrBookNotFound, "favorite references a missing book")
	}
	if _, ok := store.favorites[userID][bookID]; ok {
		return repository.ErrFavoriteAlreadyExists
	}

	err := repo.sess.write(func() {
		delete(store.favorites[userID], bookID)
		if len(store.favorites[userID]) == 0 {
			delete(store.favorites, userID)
		}
	})
	if err != nil {
		return err
	}

	if store.favorites[userID] == nil {
		store.favorites[userID] = make(map[string]storedEdge)
	}
	store.favorites[userID][bookID] = storedEdge{createdAt: store.clock.Now(), seq: store.nextSeq()}

	return nil
}

func (repo *favoriteRepository) Remove(_ context.Context, userID uuid.UUID, bookID string) error {
	store := repo.sess.store
	edge, ok := store.favorites[userID][bookID]
	if !ok {
		return repository.ErrFavoriteNotFound
	}

	err := repo.sess.write(func() {
		if store.favorites[userID] == nil {
			store.favorites[userID] = make(map[string]storedEdge)
		}
		store.favorites[userID][bookID] = edge
	})
	if err != nil {
		return err
	}

	delete(store.favorites[userID], bookID)
	if len(store.favorites[userID]) == 0 {
		delete(store.favorites, userID)
	}

	return nil
}

func (repo *favoriteRepository) Exists(_ context.Context, userID uuid.UUID, bookID string) (bool, error) {
	_, ok := repo.sess.store.favorites[userID][bookID]

	return ok, nil
}

// ListBooksByUser returns the user's books, newest favorite first.
func (repo *favoriteRepository) ListBooksByUser(_ context.Context, userID uuid.UUID) ([]*entity.Book, error) {
	store := repo.sess.store

	type ranked struct {
		book *entity.Book
		seq  uint64
	}
	var rows []ranked
	for bookID, edge := range store.favorites[userID] {
		if book, ok := store.books[bookID]; ok {
			rows = append(rows, ranked{book: book, seq: edge.seq})
		}
	}
	slices.SortFunc(rows, func(a, b ranked) int {
		return compareSeqDesc(a.seq, b.seq)
	})

	books := make([]*entity.Book, 0, len(rows))
	for _, row := range rows {
		books = append(books, copyBook(row.book))
	}

	return books, nil
}

func (repo *favoriteRepository) ListUserIDsByBook(_ context.Context, bookID string) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	for userID, edges := range repo.sess.store.favorites {
		if _, ok := edges[bookID]; ok {
			userIDs = append(userIDs, userID)
		}
	}

	return userIDs, nil
}
