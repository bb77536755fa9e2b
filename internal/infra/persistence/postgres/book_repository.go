package postgres

import (
	"context"

	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/repository"
	"booklib/internal/errors"
	"booklib/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// bookRepository implements the domain.BookRepository interface.
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository is the constructor for bookRepository.
func NewBookRepository(db *gorm.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

// Upsert inserts the book or refreshes title and thumbnail of the existing row.
func (repo *bookRepository) Upsert(ctx context.Context, book *entity.Book) error {
	bookM := fromBookDomain(book)
	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "thumbnail", "updated_at"}),
		}).
		Create(bookM).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert book")
	}

	book.CreatedAt = bookM.CreatedAt
	book.UpdatedAt = bookM.UpdatedAt

	return nil
}

// FindByID retrieves a locally stored book.
func (repo *bookRepository) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	var bookM model.BookModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).Take(&bookM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBookNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toBookDomain(&bookM), nil
}

func toBookDomain(data *model.BookModel) *entity.Book {
	if data == nil {
		return nil
	}

	return &entity.Book{
		ID:        data.ID,
		Title:     data.Title,
		Thumbnail: data.Thumbnail,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func fromBookDomain(data *entity.Book) *model.BookModel {
	return &model.BookModel{
		ID:        data.ID,
		Title:     data.Title,
		Thumbnail: data.Thumbnail,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
