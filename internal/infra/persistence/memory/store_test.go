package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"booklib/internal/domain/entity"
	"booklib/internal/domain/repository"
	"booklib/internal/domain/service"
	"booklib/internal/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestManager() (repository.TransactionManager, *Store) {
	store := NewStore(service.ClockFunc(func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}))

	return NewTransactionManager(store), store
}

func createUser(t *testing.T, tm repository.TransactionManager, username, email string) *entity.User {
	t.Helper()

	user := &entity.User{Username: username, Email: email, PasswordHash: "hash"}
	err := tm.Execute(context.Background(), func(f repository.RepositoryFactory) error {
		return f.UserRepo().Create(context.Background(), user)
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)

	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	tm, _ := newTestManager()
	ctx := context.Background()
	user := createUser(t, tm, "alice", "a@x.io")

	err := tm.Read(ctx, func(f repository.RepositoryFactory) error {
		byEmail, err := f.UserRepo().FindByEmail(ctx, "a@x.io")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, entity.RoleUser, byEmail.Role)

		byID, err := f.UserRepo().FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		_, err = f.UserRepo().FindByEmail(ctx, "missing@x.io")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)

		return nil
	})
	require.NoError(t, err)
}

func TestUserRepository_CreateRejectsDuplicates(t *testing.T) {
	tm, _ := newTestManager()
	ctx := context.Background()
	createUser(t, tm, "alice", "a@x.io")

	for _, dup := range []*entity.User{
		{Username: "alice", Email: "other@x.io"},
		{Username: "other", Email: "a@x.io"},
	} {
		err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
			return f.UserRepo().Create(ctx, dup)
		})
		assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)
	}
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	tm, store := newTestManager()
	ctx := context.Background()
	user := createUser(t, tm, "alice", "a@x.io")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		require.NoError(t, f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1", Title: "T"}))
		require.NoError(t, f.FavoriteRepo().Add(ctx, user.ID, "b1"))
		require.NoError(t, f.TokenRepo().Create(ctx, &entity.Token{UserID: user.ID, TokenHash: "h1", Kind: entity.TokenKindAccess}))

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	assert.Empty(t, store.books)
	assert.Empty(t, store.favorites)
	assert.Empty(t, store.tokens)
}

func TestTransactionManager_RollsBackOnPanic(t *testing.T) {
	tm, store := newTestManager()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
			_ = f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1", Title: "T"})
			panic("boom")
		})
	})
	assert.Empty(t, store.books)

	// The lock was released.
	require.NoError(t, tm.Execute(ctx, func(repository.RepositoryFactory) error { return nil }))
}

func TestTransactionManager_ReadRejectsWrites(t *testing.T) {
	tm, _ := newTestManager()
	ctx := context.Background()

	err := tm.Read(ctx, func(f repository.RepositoryFactory) error {
		return f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1"})
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestTransactionManager_ReadPrimaryRejectsWrites(t *testing.T) {
	tm, _ := newTestManager()
	ctx := context.Background()
	alice := createUser(t, tm, "alice", "a@x.io")

	err := tm.ReadPrimary(ctx, func(f repository.RepositoryFactory) error {
		user, err := f.UserRepo().FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)

		return f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1"})
	})
	assert.ErrorIs(t, err, errReadOnly)
}

func TestUserRepository_CreateStopsOnCanceledContext(t *testing.T) {
	tm, store := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		cancel()

		return f.UserRepo().Create(ctx, &entity.User{Username: "alice", Email: "a@x.io", PasswordHash: "hash"})
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.users)
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	tm, store := newTestManager()
	ctx := context.Background()
	alice := createUser(t, tm, "alice", "a@x.io")
	bob := createUser(t, tm, "bob01", "b@x.io")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		require.NoError(t, f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1", Title: "T"}))
		require.NoError(t, f.FavoriteRepo().Add(ctx, alice.ID, "b1"))
		require.NoError(t, f.FavoriteRepo().Add(ctx, bob.ID, "b1"))
		require.NoError(t, f.TokenRepo().Create(ctx, &entity.Token{UserID: alice.ID, TokenHash: "a1", Kind: entity.TokenKindAccess}))
		require.NoError(t, f.TokenRepo().Create(ctx, &entity.Token{UserID: bob.ID, TokenHash: "b1", Kind: entity.TokenKindAccess}))

		return f.UserRepo().Delete(ctx, alice.ID)
	})
	require.NoError(t, err)

	err = tm.Read(ctx, func(f repository.RepositoryFactory) error {
		userIDs, err := f.FavoriteRepo().ListUserIDsByBook(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{bob.ID}, userIDs)

		_, err = f.TokenRepo().FindByHash(ctx, "a1")
		assert.ErrorIs(t, err, repository.ErrTokenNotFound)

		// Books survive the loss of favoriters.
		_, err = f.BookRepo().FindByID(ctx, "b1")
		assert.NoError(t, err)

		return nil
	})
	require.NoError(t, err)
	assert.Len(t, store.tokens, 1)
}

func TestTokenRepository_RevokeAndExpire(t *testing.T) {
	tm, _ := newTestManager()
	ctx := context.Background()
	user := createUser(t, tm, "alice", "a@x.io")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		tokens := f.TokenRepo()
		require.NoError(t, tokens.Create(ctx, &entity.Token{UserID: user.ID, TokenHash: "acc", Kind: entity.TokenKindAccess, ExpiresAt: now.Add(time.Minute)}))
		require.NoError(t, tokens.Create(ctx, &entity.Token{UserID: user.ID, TokenHash: "ref", Kind: entity.TokenKindRefresh, ExpiresAt: now.Add(time.Hour)}))
		require.NoError(t, tokens.Create(ctx, &entity.Token{UserID: user.ID, TokenHash: "old", Kind: entity.TokenKindAccess, ExpiresAt: now.Add(-time.Minute)}))

		expired, err := tokens.ExpireStale(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), expired)

		revoked, err := tokens.RevokeAllValid(ctx, user.ID, entity.TokenKindAccess)
		require.NoError(t, err)
		assert.Equal(t, int64(1), revoked)

		return nil
	})
	require.NoError(t, err)

	err = tm.Read(ctx, func(f repository.RepositoryFactory) error {
		all, err := f.TokenRepo().FindByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, all, 3)
		// Newest first.
		assert.Equal(t, "old", all[0].TokenHash)
		assert.Equal(t, entity.TokenStatusExpired, all[0].Status)
		assert.Equal(t, entity.TokenStatusValid, all[1].Status)
		assert.Equal(t, entity.TokenStatusRevoked, all[2].Status)
		assert.Equal(t, entity.TokenTypeBearer, all[2].Type)

		return nil
	})
	require.NoError(t, err)
}

func TestTokenRepository_CreateRequiresOwner(t *testing.T) {
	tm, _ := newTestManager()
	ctx := context.Background()

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		return f.TokenRepo().Create(ctx, &entity.Token{UserID: uuid.New(), TokenHash: "x"})
	})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestFavoriteRepository_EdgeLifecycle(t *testing.T) {
	tm, _ := newTestManager()
	ctx := context.Background()
	user := createUser(t, tm, "alice", "a@x.io")

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		favorites := f.FavoriteRepo()

		assert.ErrorIs(t, favorites.Add(ctx, user.ID, "b1"), repository.ErrBookNotFound)

		require.NoError(t, f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1", Title: "One"}))
		require.NoError(t, f.BookRepo().Upsert(ctx, &entity.Book{ID: "b2", Title: "Two"}))
		require.NoError(t, favorites.Add(ctx, user.ID, "b1"))
		require.NoError(t, favorites.Add(ctx, user.ID, "b2"))
		assert.ErrorIs(t, favorites.Add(ctx, user.ID, "b1"), repository.ErrFavoriteAlreadyExists)

		books, err := favorites.ListBooksByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "b2", books[0].ID)

		require.NoError(t, favorites.Remove(ctx, user.ID, "b1"))
		assert.ErrorIs(t, favorites.Remove(ctx, user.ID, "b1"), repository.ErrFavoriteNotFound)

		exists, err := favorites.Exists(ctx, user.ID, "b1")
		require.NoError(t, err)
		assert.False(t, exists)

		return nil
	})
	require.NoError(t, err)
}

func TestBookRepository_UpsertKeepsCreatedAt(t *testing.T) {
	tm, store := newTestManager()
	ctx := context.Background()

	err := tm.Execute(ctx, func(f repository.RepositoryFactory) error {
		require.NoError(t, f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1", Title: "Old"}))

		return f.BookRepo().Upsert(ctx, &entity.Book{ID: "b1", Title: "New", Thumbnail: "t.png"})
	})
	require.NoError(t, err)

	assert.Equal(t, "New", store.books["b1"].Title)
	assert.Equal(t, "t.png", store.books["b1"].Thumbnail)
	assert.False(t, store.books["b1"].CreatedAt.IsZero())
}

func TestTransactionManager_ConcurrentExecuteIsSerialized(t *testing.T) {
	tm, store := newTestManager()
	ctx := context.Background()
	user := createUser(t, tm, "alice", "a@x.io")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tm.Execute(ctx, func(f repository.RepositoryFactory) error {
				return f.TokenRepo().Create(ctx, &entity.Token{
					UserID:    user.ID,
					TokenHash: uuid.NewString(),
					Kind:      entity.TokenKindAccess,
				})
			})
		}()
	}
	wg.Wait()

	assert.Len(t, store.tokens, 50)
}

func TestTransactionManager_CanceledContext(t *testing.T) {
	tm, _ := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tm.Execute(ctx, func(repository.RepositoryFactory) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
