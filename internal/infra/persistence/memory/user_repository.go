package memory

import (
	"context"

	"booklib/internal/domain/entity"
	"booklib/internal/domain/repository"
	"booklib/internal/errors"

	"github.com/google/uuid"
)

type userRepository struct {
	sess *session
}

func (repo *userRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := repo.sess.store.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return copyUser(user), nil
}

func (repo *userRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range repo.sess.store.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (repo *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.WithStack(err)
	}
	for _, user := range repo.sess.store.users {
		if user.Username == username || user.Email == email {
			return true, nil
		}
	}

	return false, nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	taken, err := repo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		return errors.Wrap(err, "failed to check identity")
	}
	if taken {
		return errors.Wrap(repository.ErrUserAlreadyExists, "username or email taken")
	}

	if user.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return errors.Wrap(err, "failed to generate user id")
		}
		user.ID = id
	}
	if _, exists := repo.sess.store.users[user.ID]; exists {
		return errors.Wrap(repository.ErrUserAlreadyExists, "duplicate user id")
	}

	id := user.ID
	if err := repo.sess.write(func() { delete(repo.sess.store.users, id) }); err != nil {
		return err
	}

	now := repo.sess.store.clock.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if !user.Role.IsValid() {
		user.Role = entity.RoleUser
	}
	repo.sess.store.users[id] = copyUser(user)

	return nil
}

func (repo *userRepository) Update(_ context.Context, user *entity.User) error {
	current, ok := repo.sess.store.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}

	previous := copyUser(current)
	if err := repo.sess.write(func() { repo.sess.store.users[previous.ID] = previous }); err != nil {
		return err
	}

	updated := copyUser(current)
	updated.PasswordHash = user.PasswordHash
	updated.Profile = user.Profile
	updated.UpdatedAt = repo.sess.store.clock.Now()
	repo.sess.store.users[user.ID] = updated

	return nil
}

// Delete removes the user and cascades to the user's ledger entries and favorite edges.
func (repo *userRepository) Delete(_ context.Context, id uuid.UUID) error {
	store := repo.sess.store
	user, ok := store.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	removedTokens := make(map[string]*storedToken)
	for hash, stored := range store.tokens {
		if stored.token.UserID == id {
			removedTokens[hash] = stored
		}
	}
	removedEdges := store.favorites[id]

	err := repo.sess.write(func() {
		store.users[id] = user
		for hash, stored := range removedTokens {
			store.tokens[hash] = stored
		}
		if removedEdges != nil {
			store.favorites[id] = removedEdges
		}
	})
	if err != nil {
		return err
	}

	delete(store.users, id)
	for hash := range removedTokens {
		delete(store.tokens, hash)
	}
	delete(store.favorites, id)

	return nil
}

// AcquireUserLock only checks existence: Execute already holds the store's write lock.
func (repo *userRepository) AcquireUserLock(_ context.Context, id uuid.UUID) error {
	if repo.sess.readOnly {
		return errReadOnly
	}
	if _, ok := repo.sess.store.users[id]; !ok {
		return repository.ErrUserNotFound
	}

	return nil
}
