package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"booklib/config"
	"booklib/internal/delivery/api/middleware"
	"booklib/internal/delivery/api/router"
	"booklib/internal/delivery/api/router/handler"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/service"
	"booklib/internal/errors"
	"booklib/internal/infra/auth"
	"booklib/internal/infra/metrics"
	"booklib/internal/infra/persistence/memory"
	mockSvc "booklib/internal/mocks/service"
	"booklib/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const password = "Passw0rd!"

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type testServer struct {
	echo  *echo.Echo
	books *mockSvc.MockBookProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Metrics: &config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.SecretKey.Signing = "api-test-secret"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := service.NewSystemClock()
	txManager := memory.NewTransactionManager(memory.NewStore(clock))
	tokens, err := auth.NewJWTService(cfg, clock)
	require.NoError(t, err)
	hasher := auth.NewBcryptHasherWithCost(bcrypt.MinCost, nil)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	books := mockSvc.NewMockBookProvider(t)
	publisher := mockSvc.NewMockEventPublisher(t)
	publisher.EXPECT().Publish(mock.Anything, mock.Anything).Return(nil).Maybe()

	sessions, err := impl.NewSessionService(impl.SessionServiceParams{
		TxManager:    txManager,
		Hasher:       hasher,
		TokenService: tokens,
		Clock:        clock,
		Metrics:      recorder,
		Logger:       logger,
	})
	require.NoError(t, err)
	favorites := impl.NewFavoriteService(impl.FavoriteServiceParams{
		TxManager: txManager,
		Books:     books,
		Publisher: publisher,
		Clock:     clock,
		Metrics:   recorder,
		Logger:    logger,
	})

	e := NewEcho(cfg, logger, router.RouterParams{
		AuthHandler: handler.NewAuthHandler(handler.AuthHandlerParams{Sessions: sessions, Logger: logger}),
		UserHandler: handler.NewUserHandler(handler.UserHandlerParams{
			Users: impl.NewUserService(impl.UserServiceParams{
				TxManager: txManager,
				Hasher:    hasher,
				Clock:     clock,
				Publisher: publisher,
				Logger:    logger,
			}),
			Logger: logger,
		}),
		FavoriteHandler: handler.NewFavoriteHandler(handler.FavoriteHandlerParams{Favorites: favorites, Logger: logger}),
		BookHandler: handler.NewBookHandler(handler.BookHandlerParams{
			Books:  impl.NewBookService(impl.BookServiceParams{Books: books, Favorites: favorites, Logger: logger}),
			Logger: logger,
		}),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{Sessions: sessions, Logger: logger}),
		Config:         cfg,
		Gatherer:       registry,
	})

	return &testServer{echo: e, books: books}
}

func (s *testServer) do(t *testing.T, method, path, bearer, body string) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}

	return rec, &env
}

func (s *testServer) register(t *testing.T, username, email string) *handler.TokenResponse {
	t.Helper()

	rec, env := s.do(t, http.MethodPost, "/auth/register", "",
		`{"username":"`+username+`","email":"`+email+`","password":"`+password+`","confirm_password":"`+password+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out handler.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))

	return &out
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodGet, "/health", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, rec.Header().Get("X-Request-Id"), env.Meta.RequestID)
}

func TestServer_RequestIDIsPropagated(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()

	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
}

func TestServer_RegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "short username",
			body:     `{"username":"bob","email":"bob@example.com","password":"Passw0rd!","confirm_password":"Passw0rd!"}`,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "bad email",
			body:     `{"username":"bobby","email":"not-an-email","password":"Passw0rd!","confirm_password":"Passw0rd!"}`,
			wantCode: "VALIDATION_FAILED",
		},
		{
			name:     "mismatch",
			body:     `{"username":"bobby","email":"bob@example.com","password":"Passw0rd!","confirm_password":"Passw0rd?"}`,
			wantCode: "PASSWORD_MISMATCH",
		},
		{
			name:     "weak",
			body:     `{"username":"bobby","email":"bob@example.com","password":"password","confirm_password":"password"}`,
			wantCode: "WEAK_PASSWORD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodPost, "/auth/register", "", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}

	rec, env := srv.do(t, http.MethodPost, "/auth/register", "", `{"username":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error.Details, "email is required")
}

func TestServer_RegisterDuplicate(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice", "alice@example.com")

	rec, env := srv.do(t, http.MethodPost, "/auth/register", "",
		`{"username":"alice","email":"alice2@example.com","password":"Passw0rd!","confirm_password":"Passw0rd!"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_IDENTITY", env.Error.Code)
}

func TestServer_LoginFailureHidesDetails(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice", "alice@example.com")

	rec, env := srv.do(t, http.MethodPost, "/auth/login", "", `{"email":"alice@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
	assert.Empty(t, env.Error.Details)
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/users/profile", "/users/favorites", "/books?q=dune", "/books/b1"} {
		rec, env := srv.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "INVALID_TOKEN", env.Error.Code, path)
	}

	rec, _ := srv.do(t, http.MethodGet, "/users/profile", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_RefreshTokenCannotAuthenticate(t *testing.T) {
	srv := newTestServer(t)
	tokens := srv.register(t, "alice", "alice@example.com")

	rec, _ := srv.do(t, http.MethodGet, "/users/profile", tokens.RefreshToken, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_ProfileRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	tokens := srv.register(t, "alice", "alice@example.com")

	rec, _ := srv.do(t, http.MethodPatch, "/users/profile", tokens.AccessToken,
		`{"first_name":"Alice","date_of_birth":"1990-03-14","profile_picture":"https://img.example/alice.png"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := srv.do(t, http.MethodGet, "/users/profile", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profile handler.UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "USER", profile.Role)
	require.NotNil(t, profile.FirstName)
	require.NotNil(t, profile.DateOfBirth)
	assert.Equal(t, "Alice", *profile.FirstName)
	assert.Equal(t, "1990-03-14", *profile.DateOfBirth)
	assert.Nil(t, profile.LastName)

	rec, env = srv.do(t, http.MethodPatch, "/users/profile", tokens.AccessToken, `{"date_of_birth":"14/03/1990"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, env = srv.do(t, http.MethodPatch, "/users/profile", tokens.AccessToken, `{"password":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WEAK_PASSWORD", env.Error.Code)
}

func TestServer_RefreshFlow(t *testing.T) {
	srv := newTestServer(t)
	tokens := srv.register(t, "alice", "alice@example.com")

	rec, _ := srv.do(t, http.MethodPost, "/auth/refresh", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env := srv.do(t, http.MethodPost, "/auth/refresh", tokens.RefreshToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refreshed handler.TokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.Equal(t, tokens.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, refreshed.AccessToken)

	rec, _ = srv.do(t, http.MethodGet, "/users/profile", refreshed.AccessToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/users/profile", tokens.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "previous access token is revoked by refresh")

	rec, env = srv.do(t, http.MethodPost, "/auth/refresh", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", env.Error.Code)
}

func TestServer_FavoritesFlow(t *testing.T) {
	srv := newTestServer(t)
	tokens := srv.register(t, "alice", "alice@example.com")
	srv.books.EXPECT().FindByID(mock.Anything, "123").Return(&entity.BookSummary{
		ID:        "123",
		Title:     "Example Book",
		Authors:   []string{"A. Writer"},
		Thumbnail: "https://img.example/123.jpg",
	}, nil).Maybe()

	rec, env := srv.do(t, http.MethodGet, "/books/123", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail handler.BookDetailResponse
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Example Book", detail.Book.Title)
	assert.False(t, detail.Favorited)

	rec, _ = srv.do(t, http.MethodPost, "/users/favorites/123", tokens.AccessToken, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, env = srv.do(t, http.MethodPost, "/users/favorites/123", tokens.AccessToken, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_FAVORITED", env.Error.Code)
	assert.NotEmpty(t, env.Meta.RequestID)

	rec, env = srv.do(t, http.MethodGet, "/users/favorites", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var favorites []handler.FavoriteBookResponse
	require.NoError(t, json.Unmarshal(env.Data, &favorites))
	assert.Equal(t, []handler.FavoriteBookResponse{{ID: "123", Title: "Example Book", Thumbnail: "https://img.example/123.jpg"}}, favorites)

	rec, env = srv.do(t, http.MethodGet, "/books/123", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.True(t, detail.Favorited)

	rec, _ = srv.do(t, http.MethodDelete, "/users/favorites/123", tokens.AccessToken, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = srv.do(t, http.MethodDelete, "/users/favorites/123", tokens.AccessToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "FAVORITE_NOT_FOUND", env.Error.Code)
}

func TestServer_BookSearch(t *testing.T) {
	srv := newTestServer(t)
	tokens := srv.register(t, "alice", "alice@example.com")
	srv.books.EXPECT().Search(mock.Anything, entity.SearchTitle, "dune").
		Return([]*entity.BookSummary{{ID: "b1", Title: "Dune", ISBN13: "9780441013593"}}, nil).Once()
	srv.books.EXPECT().Search(mock.Anything, entity.SearchAny, "outage").
		Return(nil, errors.Wrap(domainerrors.ErrBookProviderUnavailable.WithDetails("status 503"), "search")).Once()

	rec, env := srv.do(t, http.MethodGet, "/books?q=dune&by=title", tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var results []handler.BookResponse
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "9780441013593", results[0].ISBN13)

	rec, env = srv.do(t, http.MethodGet, "/books?by=title", tokens.AccessToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	rec, _ = srv.do(t, http.MethodGet, "/books?q=dune&by=publisher", tokens.AccessToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = srv.do(t, http.MethodGet, "/books?q=outage", tokens.AccessToken, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "BOOK_PROVIDER_UNAVAILABLE", env.Error.Code)
	assert.Empty(t, env.Error.Details)
}

func TestServer_DeleteAccountRevokesAccess(t *testing.T) {
	srv := newTestServer(t)
	tokens := srv.register(t, "alice", "alice@example.com")

	rec, _ := srv.do(t, http.MethodDelete, "/users", tokens.AccessToken, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/users/profile", tokens.AccessToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := srv.do(t, http.MethodPost, "/auth/refresh", tokens.RefreshToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_SUBJECT", env.Error.Code)
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(t, http.MethodGet, "/nope", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "HTTP_ERROR", env.Error.Code)
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `booklib_auth_operations_total{operation="register",outcome="success"} 1`)
}
