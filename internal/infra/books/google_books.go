// Package books implements the book provider on top of the Google Books v1 API.
package books

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"booklib/config"
	"booklib/internal/domain/entity"
	domainerrors "booklib/internal/domain/errors"
	"booklib/internal/domain/service"
	"booklib/internal/errors"
)

const (
	opSearch = "search"
	opFind   = "find"

	maxResponseBytes = 2 << 20
)

// searchPrefixes maps a search field to the Google Books query keyword.
var searchPrefixes = map[entity.SearchField]string{
	entity.SearchAny:      "",
	entity.SearchTitle:    "intitle:",
	entity.SearchAuthor:   "inauthor:",
	entity.SearchCategory: "subject:",
	entity.SearchISBN:     "isbn:",
}

// GoogleBooksClient queries the Google Books volumes endpoint.
type GoogleBooksClient struct {
	httpClient   *http.Client
	baseURL      *url.URL
	apiKey       string
	maxResults   int
	langRestrict string
	timeout      time.Duration
	logger       *slog.Logger
	metrics      service.MetricsRecorder
}

// NewGoogleBooksClient builds a client from the bookProvider config section.
func NewGoogleBooksClient(cfg *config.BookProviderConfig, httpClient *http.Client, logger *slog.Logger, metrics service.MetricsRecorder) (*GoogleBooksClient, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid bookProvider.baseUrl")
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &GoogleBooksClient{
		httpClient:   httpClient,
		baseURL:      baseURL,
		apiKey:       cfg.APIKey,
		maxResults:   cfg.MaxResults,
		langRestrict: cfg.LangRestrict,
		timeout:      cfg.Timeout,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// Search runs a volumes query. No matches is an empty result, not an error.
func (c *GoogleBooksClient) Search(ctx context.Context, field entity.SearchField, text string) ([]*entity.BookSummary, error) {
	prefix, ok := searchPrefixes[field]
	if !ok {
		return nil, errors.Wrapf(domainerrors.ErrValidationFailed, "unknown search field %q", field)
	}

	query := url.Values{}
	query.Set("q", prefix+text)
	query.Set("printType", "books")
	if c.langRestrict != "" {
		query.Set("langRestrict", c.langRestrict)
	}
	if c.maxResults > 0 {
		query.Set("maxResults", strconv.Itoa(c.maxResults))
	}

	var resp volumesResponse
	if err := c.get(ctx, opSearch, "volumes", query, &resp); err != nil {
		return nil, err
	}

	summaries := make([]*entity.BookSummary, 0, len(resp.Items))
	for i := range resp.Items {
		if resp.Items[i].ID == "" {
			continue
		}
		summaries = append(summaries, resp.Items[i].toSummary())
	}

	return summaries, nil
}

// FindByID fetches a single volume.
func (c *GoogleBooksClient) FindByID(ctx context.Context, id string) (*entity.BookSummary, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.Wrap(domainerrors.ErrBookNotFound, "empty book id")
	}

	var resp volume
	if err := c.get(ctx, opFind, "volumes/"+url.PathEscape(id), url.Values{}, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, errors.Wrapf(domainerrors.ErrBookNotFound, "provider returned no volume for %s", id)
	}

	return resp.toSummary(), nil
}

// get performs one bounded GET of the escaped relative path and decodes the JSON body into out.
func (c *GoogleBooksClient) get(ctx context.Context, op, path string, query url.Values, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := service.OutcomeSuccess
		if err != nil {
			outcome = service.OutcomeFailure
		}
		c.metrics.RecordProviderRequest(op, outcome, time.Since(start))
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return errors.Wrap(domainerrors.ErrBookProviderUnavailable, err.Error())
	}
	ref.RawQuery = query.Encode()
	reqURL := c.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return errors.Wrap(domainerrors.ErrBookProviderUnavailable, err.Error())
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "Book provider request failed",
			slog.String("operation", op),
			slog.Any("error", err),
		)

		return errors.Wrap(domainerrors.ErrBookProviderUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && op == opFind:
		return errors.Wrap(domainerrors.ErrBookNotFound, "provider returned 404")
	case resp.StatusCode != http.StatusOK:
		c.logger.ErrorContext(ctx, "Book provider returned an error status",
			slog.String("operation", op),
			slog.Int("http_status", resp.StatusCode),
		)

		return errors.Wrapf(domainerrors.ErrBookProviderUnavailable, "provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.Wrap(domainerrors.ErrBookProviderUnavailable, err.Error())
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.ErrorContext(ctx, "Book provider returned malformed JSON",
			slog.String("operation", op),
			slog.Any("error", err),
		)

		return errors.Wrap(domainerrors.ErrBookProviderUnavailable, "malformed provider response")
	}

	return nil
}

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	ImageLinks          *imageLinks          `json:"imageLinks"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// bestAvailable prefers the full thumbnail over the small one.
func (l *imageLinks) bestAvailable() string {
	if l == nil {
		return ""
	}
	if l.Thumbnail != "" {
		return l.Thumbnail
	}

	return l.SmallThumbnail
}

func (v *volume) toSummary() *entity.BookSummary {
	info := v.VolumeInfo
	summary := &entity.BookSummary{
		ID:            v.ID,
		Title:         info.Title,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		PageCount:     info.PageCount,
		Categories:    info.Categories,
		Thumbnail:     info.ImageLinks.bestAvailable(),
	}
	for _, identifier := range info.IndustryIdentifiers {
		switch identifier.Type {
		case "ISBN_10":
			summary.ISBN10 = identifier.Identifier
		case "ISBN_13":
			summary.ISBN13 = identifier.Identifier
		}
	}

	return summary
}
