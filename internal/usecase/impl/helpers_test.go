package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"booklib/config"
	"booklib/internal/domain/entity"
	"booklib/internal/domain/repository"
	"booklib/internal/domain/service"
	"booklib/internal/infra/auth"
	"booklib/internal/infra/metrics"
	"booklib/internal/infra/persistence/memory"
	mockSvc "booklib/internal/mocks/service"
	"booklib/internal/usecase"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	alicePassword = "Passw0rd!"
	testSecret    = "test-signing-secret"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable clock shared by the store, the token service and the use cases.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

// eventLog collects published events; failWith makes Publish return an error.
type eventLog struct {
	mu       sync.Mutex
	events   []*service.DomainEvent
	failWith error
}

func (l *eventLog) publish(_ context.Context, event *service.DomainEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)

	return l.failWith
}

func (l *eventLog) types() []service.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()

	types := make([]service.EventType, 0, len(l.events))
	for _, event := range l.events {
		types = append(types, event.Type)
	}

	return types
}

// countingHasher counts Check calls and the hashes they compared against.
type countingHasher struct {
	service.PasswordHasher

	mu     sync.Mutex
	hashes []string
}

func (h *countingHasher) Check(password, hash string) bool {
	h.mu.Lock()
	h.hashes = append(h.hashes, hash)
	h.mu.Unlock()

	return h.PasswordHasher.Check(password, hash)
}

func (h *countingHasher) checked() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.hashes...)
}

// routingTxManager records whether reads went to the replica-eligible or the primary path.
type routingTxManager struct {
	repository.TransactionManager

	mu           sync.Mutex
	reads        int
	primaryReads int
}

func (tm *routingTxManager) Read(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	tm.mu.Lock()
	tm.reads++
	tm.mu.Unlock()

	return tm.TransactionManager.Read(ctx, fn)
}

func (tm *routingTxManager) ReadPrimary(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	tm.mu.Lock()
	tm.primaryReads++
	tm.mu.Unlock()

	return tm.TransactionManager.ReadPrimary(ctx, fn)
}

func (tm *routingTxManager) reset() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.reads, tm.primaryReads = 0, 0
}

func (tm *routingTxManager) counts() (reads, primaryReads int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	return tm.reads, tm.primaryReads
}

type testEnv struct {
	clock     *fakeClock
	txManager *routingTxManager
	hasher    *countingHasher
	tokens    service.TokenService
	books     *mockSvc.MockBookProvider
	events    *eventLog
	sessions  usecase.SessionUsecase
	users     usecase.UserUsecase
	favorites usecase.FavoriteUsecase
	catalog   usecase.BookUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := newFakeClock()
	store := memory.NewStore(clock)
	txManager := &routingTxManager{TransactionManager: memory.NewTransactionManager(store)}

	cfg := &config.Config{Auth: &config.AuthConfig{
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}}
	cfg.SecretKey.Signing = testSecret
	tokens, err := auth.NewJWTService(cfg, clock)
	require.NoError(t, err)

	hasher := &countingHasher{PasswordHasher: auth.NewBcryptHasherWithCost(bcrypt.MinCost, nil)}
	books := mockSvc.NewMockBookProvider(t)
	publisher := mockSvc.NewMockEventPublisher(t)
	events := &eventLog{}
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).RunAndReturn(events.publish).Maybe()

	logger := newDiscardLogger()
	recorder := metrics.NewNop()

	favorites := NewFavoriteService(FavoriteServiceParams{
		TxManager: txManager,
		Books:     books,
		Publisher: publisher,
		Clock:     clock,
		Metrics:   recorder,
		Logger:    logger,
	})

	sessions, err := NewSessionService(SessionServiceParams{
		TxManager:    txManager,
		Hasher:       hasher,
		TokenService: tokens,
		Clock:        clock,
		Metrics:      recorder,
		Logger:       logger,
	})
	require.NoError(t, err)

	return &testEnv{
		clock:     clock,
		txManager: txManager,
		hasher:    hasher,
		tokens:    tokens,
		books:     books,
		events:    events,
		sessions:  sessions,
		users: NewUserService(UserServiceParams{
			TxManager: txManager,
			Hasher:    hasher,
			Clock:     clock,
			Publisher: publisher,
			Logger:    logger,
		}),
		favorites: favorites,
		catalog: NewBookService(BookServiceParams{
			Books:     books,
			Favorites: favorites,
			Logger:    logger,
		}),
	}
}

func (env *testEnv) register(t *testing.T, username, email string) *usecase.AuthOutput {
	t.Helper()

	out, err := env.sessions.Register(context.Background(), &usecase.RegisterInput{
		Username:        username,
		Email:           email,
		Password:        alicePassword,
		ConfirmPassword: alicePassword,
	})
	require.NoError(t, err)

	return out
}

func (env *testEnv) ledger(t *testing.T, user *entity.User) []*entity.Token {
	t.Helper()

	var tokens []*entity.Token
	err := env.txManager.Read(context.Background(), func(f repository.RepositoryFactory) error {
		var err error
		tokens, err = f.TokenRepo().FindByUserID(context.Background(), user.ID)

		return err
	})
	require.NoError(t, err)

	return tokens
}

func (env *testEnv) findUser(t *testing.T, email string) (*entity.User, error) {
	t.Helper()

	var user *entity.User
	err := env.txManager.Read(context.Background(), func(f repository.RepositoryFactory) error {
		var err error
		user, err = f.UserRepo().FindByEmail(context.Background(), email)

		return err
	})

	return user, err
}

// stubBook makes the provider answer FindByID(id) with a book titled title.
func (env *testEnv) stubBook(id, title string) {
	env.books.EXPECT().FindByID(mock.Anything, id).Return(&entity.BookSummary{
		ID:        id,
		Title:     title,
		Thumbnail: "http://books.example/" + id + ".jpg",
	}, nil).Maybe()
}

// capturedTokens is a TokenWriter that remembers what it was handed.
type capturedTokens struct {
	pair  *entity.TokenPair
	calls int
}

func (c *capturedTokens) WriteTokens(pair *entity.TokenPair) error {
	c.pair = pair
	c.calls++

	return nil
}

func countStatus(tokens []*entity.Token, kind entity.TokenKind, status entity.TokenStatus) int {
	n := 0
	for _, token := range tokens {
		if token.Kind == kind && token.Status == status {
			n++
		}
	}

	return n
}
