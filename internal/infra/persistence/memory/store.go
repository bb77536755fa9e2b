// Package memory is an in-process storage driver for development and tests. All state lives in
// maps guarded by a single RWMutex: Execute holds the write lock for the whole callback and
// undoes its writes on error, Read holds the read lock.
package memory

import (
	"context"
	"sync"
	"time"

	"booklib/internal/domain/entity"
	"booklib/internal/domain/repository"
	"booklib/internal/domain/service"
	"booklib/internal/errors"

	"github.com/google/uuid"
)

var errReadOnly = errors.New("write attempted in a read-only session")

type storedToken struct {
	token *entity.Token
	seq   uint64
}

type storedEdge struct {
	createdAt time.Time
	seq       uint64
}

// Store holds every table of the memory driver.
type Store struct {
	mu    sync.RWMutex
	clock service.Clock
	seq   uint64

	users     map[uuid.UUID]*entity.User
	tokens    map[string]*storedToken // keyed by token hash
	books     map[string]*entity.Book
	favorites map[uuid.UUID]map[string]storedEdge
}

// NewStore creates an empty store.
func NewStore(clock service.Clock) *Store {
	return &Store{
		clock:     clock,
		users:     make(map[uuid.UUID]*entity.User),
		tokens:    make(map[string]*storedToken),
		books:     make(map[string]*entity.Book),
		favorites: make(map[uuid.UUID]map[string]storedEdge),
	}
}

func (s *Store) nextSeq() uint64 {
	s.seq++

	return s.seq
}

// session is the per-call view of the store handed to repositories.
type session struct {
	store    *Store
	readOnly bool
	undo     []func()
}

func (sess *session) write(rollback func()) error {
	if sess.readOnly {
		return errReadOnly
	}
	sess.undo = append(sess.undo, rollback)

	return nil
}

func (sess *session) rollback() {
	for i := len(sess.undo) - 1; i >= 0; i-- {
		sess.undo[i]()
	}
	sess.undo = nil
}

func (sess *session) UserRepo() repository.UserRepository {
	return &userRepository{sess: sess}
}

func (sess *session) TokenRepo() repository.TokenRepository {
	return &tokenRepository{sess: sess}
}

func (sess *session) BookRepo() repository.BookRepository {
	return &bookRepository{sess: sess}
}

func (sess *session) FavoriteRepo() repository.FavoriteRepository {
	return &favoriteRepository{sess: sess}
}

type transactionManager struct {
	store *Store
}

// NewTransactionManager returns a TransactionManager backed by store.
func NewTransactionManager(store *Store) repository.TransactionManager {
	return &transactionManager{store: store}
}

// Execute runs fn with exclusive access to the store. Writes made by fn are undone if it fails or panics.
func (tm *transactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	tm.store.mu.Lock()
	defer tm.store.mu.Unlock()

	sess := &session{store: tm.store}
	defer func() {
		if r := recover(); r != nil {
			sess.rollback()
			panic(r)
		}
	}()

	if err := fn(sess); err != nil {
		sess.rollback()

		return err
	}

	return nil
}

// Read runs fn with shared access to the store. Repositories reject writes.
func (tm *transactionManager) Read(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	tm.store.mu.RLock()
	defer tm.store.mu.RUnlock()

	return fn(&session{store: tm.store, readOnly: true})
}

// ReadPrimary is Read: the store has no replicas.
func (tm *transactionManager) ReadPrimary(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return tm.Read(ctx, fn)
}

func copyUser(u *entity.User) *entity.User {
	cp := *u

	return &cp
}

func copyToken(t *entity.Token) *entity.Token {
	cp := *t

	return &cp
}

func copyBook(b *entity.Book) *entity.Book {
	cp := *b

	return &cp
}
