package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to handle transactions without depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs fn within a read-write transaction on the primary.
	// If fn returns an error, the transaction is rolled back. Otherwise, it's committed.
	// Row locks taken through the factory's repositories are held until commit or rollback.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error

	// Read runs fn without a transaction. Reads may be served by a replica.
	Read(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error

	// ReadPrimary runs fn without a transaction on the primary. Use it for reads that must
	// observe the latest committed revocation, such as authenticating a token.
	ReadPrimary(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to a specific transaction or read session.
type RepositoryFactory interface {
	// UserRepo returns the credential store.
	UserRepo() UserRepository

	// TokenRepo returns the token ledger.
	TokenRepo() TokenRepository

	// BookRepo returns the local book store.
	BookRepo() BookRepository

	// FavoriteRepo returns the user/book favorite edges.
	FavoriteRepo() FavoriteRepository
}
