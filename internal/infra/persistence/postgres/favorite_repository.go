package postgres

import (
	"context"

	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/repository"
	"booklib/internal/errors"
	"booklib/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// favoriteRepository implements the domain.FavoriteRepository interface over the user_favorites table.
type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository is the constructor for favoriteRepository.
func NewFavoriteRepository(db *gorm.DB) repository.FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Add inserts the (user, book) edge.
func (repo *favoriteRepository) Add(ctx context.Context, userID uuid.UUID, bookID string) error {
	edge := &model.FavoriteModel{UserID: userID, BookID: bookID}
	if err := repo.db.WithContext(ctx).Omit("Book").Create(edge).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrFavoriteAlreadyExists
		}
		if isForeignKeyConstraintViolation(err) {
			return errors.Wrap(repository.ErrBookNotFound, "favorite references a missing user or book")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to add favorite")
	}

	return nil
}

// Remove deletes the (user, book) edge.
func (repo *favoriteRepository) Remove(ctx context.Context, userID uuid.UUID, bookID string) error {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&model.FavoriteModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to remove favorite")
	}
	if result.RowsAffected == 0 {
		return repository.ErrFavoriteNotFound
	}

	return nil
}

// Exists reports whether the edge is present.
func (repo *favoriteRepository) Exists(ctx context.Context, userID uuid.UUID, bookID string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).
		Model(&model.FavoriteModel{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}

	return count > 0, nil
}

// ListBooksByUser returns the books favorited by the user, newest favorite first.
func (repo *favoriteRepository) ListBooksByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Book, error) {
	var edges []*model.FavoriteModel
	err := repo.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	books := make([]*entity.Book, 0, len(edges))
	for _, edge := range edges {
		if edge.Book != nil {
			books = append(books, toBookDomain(edge.Book))
		}
	}

	return books, nil
}

// ListUserIDsByBook returns the ids of every user favoriting the book.
func (repo *favoriteRepository) ListUserIDsByBook(ctx context.Context, bookID string) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	err := repo.db.WithContext(ctx).
		Model(&model.FavoriteModel{}).
		Where("book_id = ?", bookID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return userIDs, nil
}
