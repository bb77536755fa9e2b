package postgres

import (
	"context"

	"booklib/internal/domain/repository"
	"booklib/internal/errors"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// gormTransactionManager implements the domain's TransactionManager interface using GORM.
type gormTransactionManager struct {
	db *gorm.DB
}

// gormRepositoryFactory hands out repositories bound to one *gorm.DB, which is either an open
// transaction or a plain read session.
type gormRepositoryFactory struct {
	db *gorm.DB
}

func (f *gormRepositoryFactory) UserRepo() repository.UserRepository {
	return NewUserRepository(f.db)
}

func (f *gormRepositoryFactory) TokenRepo() repository.TokenRepository {
	return NewTokenRepository(f.db)
}

func (f *gormRepositoryFactory) BookRepo() repository.BookRepository {
	return NewBookRepository(f.db)
}

func (f *gormRepositoryFactory) FavoriteRepo() repository.FavoriteRepository {
	return NewFavoriteRepository(f.db)
}

// NewTransactionManager is the constructor for gormTransactionManager.
func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &gormTransactionManager{db: db}
}

// Execute runs fn within a single transaction on the primary.
func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	tx := tm.db.WithContext(ctx).Clauses(dbresolver.Write).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "failed to begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormRepositoryFactory{db: tx}); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return errors.Wrapf(err, "transaction rollback failed: %v", rbErr)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	return nil
}

// Read runs fn outside a transaction, letting dbresolver route queries to a replica.
func (tm *gormTransactionManager) Read(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(&gormRepositoryFactory{db: tm.db.WithContext(ctx).Clauses(dbresolver.Read)})
}

// ReadPrimary runs fn outside a transaction, pinned to the primary.
func (tm *gormTransactionManager) ReadPrimary(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(&gormRepositoryFactory{db: tm.db.WithContext(ctx).Clauses(dbresolver.Write)})
}
