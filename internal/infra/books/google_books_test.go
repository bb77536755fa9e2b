package books

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booklib/config"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/errors"
	"booklib/internal/infra/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const volumesPayload = `{
  "totalItems": 2,
  "items": [
    {
      "id": "zyTCAlFPjgYC",
      "volumeInfo": {
        "title": "The Google Story",
        "authors": ["David A. Vise", "Mark Malseed"],
        "publisher": "Random House",
        "publishedDate": "2005-11-15",
        "pageCount": 207,
        "categories": ["Business & Economics"],
        "industryIdentifiers": [
          {"type": "ISBN_10", "identifier": "055380457X"},
          {"type": "ISBN_13", "identifier": "9780553804577"}
        ],
        "imageLinks": {
          "smallThumbnail": "http://books.example/small.jpg",
          "thumbnail": "http://books.example/full.jpg"
        }
      }
    },
    {
      "id": "abc123",
      "volumeInfo": {
        "title": "Small Cover Only",
        "imageLinks": {"smallThumbnail": "http://books.example/only-small.jpg"}
      }
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...func(*config.BookProviderConfig)) *GoogleBooksClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.BookProviderConfig{
		BaseURL:      server.URL + "/books/v1",
		APIKey:       "test-key",
		Timeout:      time.Second,
		MaxResults:   18,
		LangRestrict: "en",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewGoogleBooksClient(cfg, server.Client(), logger, metrics.NewNop())
	require.NoError(t, err)

	return client
}

func TestGoogleBooksClient_Search(t *testing.T) {
	tests := []struct {
		name      string
		field     entity.SearchField
		wantQuery string
	}{
		{name: "any field", field: entity.SearchAny, wantQuery: "go programming"},
		{name: "title", field: entity.SearchTitle, wantQuery: "intitle:go programming"},
		{name: "author", field: entity.SearchAuthor, wantQuery: "inauthor:go programming"},
		{name: "category", field: entity.SearchCategory, wantQuery: "subject:go programming"},
		{name: "isbn", field: entity.SearchISBN, wantQuery: "isbn:go programming"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/books/v1/volumes", r.URL.Path)
				q := r.URL.Query()
				assert.Equal(t, tt.wantQuery, q.Get("q"))
				assert.Equal(t, "books", q.Get("printType"))
				assert.Equal(t, "en", q.Get("langRestrict"))
				assert.Equal(t, "18", q.Get("maxResults"))
				assert.Equal(t, "test-key", q.Get("key"))

				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, volumesPayload)
			})

			summaries, err := client.Search(context.Background(), tt.field, "go programming")

			require.NoError(t, err)
			require.Len(t, summaries, 2)
		})
	}
}

func TestGoogleBooksClient_Search_MapsVolumes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, volumesPayload)
	})

	summaries, err := client.Search(context.Background(), entity.SearchTitle, "google")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.Equal(t, "zyTCAlFPjgYC", first.ID)
	assert.Equal(t, "The Google Story", first.Title)
	assert.Equal(t, []string{"David A. Vise", "Mark Malseed"}, first.Authors)
	assert.Equal(t, "055380457X", first.ISBN10)
	assert.Equal(t, "9780553804577", first.ISBN13)
	assert.Equal(t, 207, first.PageCount)
	assert.Equal(t, "http://books.example/full.jpg", first.Thumbnail)

	assert.Equal(t, "http://books.example/only-small.jpg", summaries[1].Thumbnail)
}

func TestGoogleBooksClient_Search_NoMatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"totalItems": 0}`)
	})

	summaries, err := client.Search(context.Background(), entity.SearchAny, "zzzzqqq")

	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestGoogleBooksClient_Search_OmitsEmptyOptionalParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("key"))
		assert.False(t, q.Has("langRestrict"))
		assert.False(t, q.Has("maxResults"))
		_, _ = io.WriteString(w, `{}`)
	}, func(cfg *config.BookProviderConfig) {
		cfg.APIKey = ""
		cfg.LangRestrict = ""
		cfg.MaxResults = 0
	})

	_, err := client.Search(context.Background(), entity.SearchAny, "go")
	require.NoError(t, err)
}

func TestGoogleBooksClient_Search_UnknownField(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("provider must not be called")
	})

	_, err := client.Search(context.Background(), entity.SearchField("publisher"), "go")

	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestGoogleBooksClient_FindByID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/v1/volumes/zyTCAlFPjgYC", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"zyTCAlFPjgYC","volumeInfo":{"title":"The Google Story"}}`)
	})

	summary, err := client.FindByID(context.Background(), "zyTCAlFPjgYC")

	require.NoError(t, err)
	assert.Equal(t, "zyTCAlFPjgYC", summary.ID)
	assert.Equal(t, "The Google Story", summary.Title)
	assert.Empty(t, summary.Thumbnail)
}

func TestGoogleBooksClient_FindByID_EscapesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/v1/volumes/a%2Fb", r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"id":"a/b","volumeInfo":{"title":"Slash"}}`)
	})

	summary, err := client.FindByID(context.Background(), "a/b")

	require.NoError(t, err)
	assert.Equal(t, "a/b", summary.ID)
}

func TestGoogleBooksClient_FindByID_Errors(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name:    "empty id",
			id:      "  ",
			handler: func(http.ResponseWriter, *http.Request) { t.Fatal("provider must not be called") },
			wantErr: domainerrors.ErrBookNotFound,
		},
		{
			name:    "404",
			id:      "missing",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantErr: domainerrors.ErrBookNotFound,
		},
		{
			name:    "empty volume",
			id:      "blank",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{}`) },
			wantErr: domainerrors.ErrBookNotFound,
		},
		{
			name:    "server error",
			id:      "boom",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			wantErr: domainerrors.ErrBookProviderUnavailable,
		},
		{
			name:    "rate limited",
			id:      "busy",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			wantErr: domainerrors.ErrBookProviderUnavailable,
		},
		{
			name:    "malformed json",
			id:      "garbled",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"id":`) },
			wantErr: domainerrors.ErrBookProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			summary, err := client.FindByID(context.Background(), tt.id)

			assert.Nil(t, summary)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestGoogleBooksClient_Search_NotFoundStatusIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Search(context.Background(), entity.SearchAny, "go")

	assert.True(t, errors.Is(err, domainerrors.ErrBookProviderUnavailable))
}

func TestGoogleBooksClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, func(cfg *config.BookProviderConfig) {
		cfg.Timeout = 50 * time.Millisecond
	})
	defer close(release)

	start := time.Now()
	_, err := client.FindByID(context.Background(), "slow")

	assert.True(t, errors.Is(err, domainerrors.ErrBookProviderUnavailable))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domainerrors.KindUpstream, domainerrors.KindOf(err))
}

func TestNewGoogleBooksClient_InvalidBaseURL(t *testing.T) {
	_, err := NewGoogleBooksClient(&config.BookProviderConfig{BaseURL: "://bad"}, nil, slog.Default(), metrics.NewNop())

	assert.Error(t, err)
}
