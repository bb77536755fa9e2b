package memory

import (
	"context"
	"slices"
	"time"

	"booklib/internal/domain/entity"
	"booklib/internal/domain/repository"
	"booklib/internal/errors"

	"github.com/google/uuid"
)

type tokenRepository struct {
	sess *session
}

func (repo *tokenRepository) Create(_ context.Context, token *entity.Token) error {
	store := repo.sess.store
	if _, ok := store.users[token.UserID]; !ok {
		return errors.Wrap(repository.ErrUserNotFound, "token owner does not exist")
	}
	if _, dup := store.tokens[token.TokenHash]; dup {
		return errors.Errorf("token %s already recorded", token.TokenHash)
	}

	hash := token.TokenHash
	if err := repo.sess.write(func() { delete(store.tokens, hash) }); err != nil {
		return err
	}

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	if token.Type == "" {
		token.Type = entity.TokenTypeBearer
	}
	if token.Status == "" {
		token.Status = entity.TokenStatusValid
	}
	token.CreatedAt = store.clock.Now()
	store.tokens[hash] = &storedToken{token: copyToken(token), seq: store.nextSeq()}

	return nil
}

func (repo *tokenRepository) FindByHash(_ context.Context, tokenHash string) (*entity.Token, error) {
	stored, ok := repo.sess.store.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}

	return copyToken(stored.token), nil
}

func (repo *tokenRepository) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Token, error) {
	var owned []*storedToken
	for _, stored := range repo.sess.store.tokens {
		if stored.token.UserID == userID {
			owned = append(owned, stored)
		}
	}
	slices.SortFunc(owned, func(a, b *storedToken) int {
		return compareSeqDesc(a.seq, b.seq)
	})

	tokens := make([]*entity.Token, 0, len(owned))
	for _, stored := range owned {
		tokens = append(tokens, copyToken(stored.token))
	}

	return tokens, nil
}

func (repo *tokenRepository) RevokeAllValid(_ context.Context, userID uuid.UUID, kinds ...entity.TokenKind) (int64, error) {
	return repo.transition(entity.TokenStatusRevoked, func(token *entity.Token) bool {
		return token.UserID == userID && (len(kinds) == 0 || slices.Contains(kinds, token.Kind))
	})
}

func (repo *tokenRepository) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	return repo.transition(entity.TokenStatusExpired, func(token *entity.Token) bool {
		return !token.ExpiresAt.After(now)
	})
}

// transition moves every Valid token matching pred to status.
func (repo *tokenRepository) transition(status entity.TokenStatus, pred func(*entity.Token) bool) (int64, error) {
	store := repo.sess.store

	var changed []*storedToken
	for _, stored := range store.tokens {
		if stored.token.Status == entity.TokenStatusValid && pred(stored.token) {
			changed = append(changed, stored)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	err := repo.sess.write(func() {
		for _, stored := range changed {
			stored.token.Status = entity.TokenStatusValid
		}
	})
	if err != nil {
		return 0, err
	}

	for _, stored := range changed {
		stored.token.Status = status
	}

	return int64(len(changed)), nil
}

func compareSeqDesc(a, b uint64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
