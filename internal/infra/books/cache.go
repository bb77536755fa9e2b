package books

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"booklib/internal/domain/entity"
	"booklib/internal/domain/service"
	"booklib/internal/infra/cache"
)

const keyPrefix = "booklib:books:"

// cachedProvider serves provider lookups from a cache. Cache failures fall through to the provider.
type cachedProvider struct {
	next    service.BookProvider
	cache   cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
	metrics service.MetricsRecorder
}

// NewCachedProvider decorates next with a read-through cache.
func NewCachedProvider(next service.BookProvider, c cache.Cache, ttl time.Duration, logger *slog.Logger, metrics service.MetricsRecorder) service.BookProvider {
	return &cachedProvider{next: next, cache: c, ttl: ttl, logger: logger, metrics: metrics}
}

func (p *cachedProvider) Search(ctx context.Context, field entity.SearchField, text string) ([]*entity.BookSummary, error) {
	key := keyPrefix + "search:" + string(field) + ":" + strings.ToLower(strings.TrimSpace(text))

	var cached []*entity.BookSummary
	if p.load(ctx, key, &cached) {
		return cached, nil
	}

	summaries, err := p.next.Search(ctx, field, text)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, summaries)

	return summaries, nil
}

func (p *cachedProvider) FindByID(ctx context.Context, id string) (*entity.BookSummary, error) {
	key := keyPrefix + "id:" + id

	var cached entity.BookSummary
	if p.load(ctx, key, &cached) {
		return &cached, nil
	}

	summary, err := p.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, summary)

	return summary, nil
}

func (p *cachedProvider) load(ctx context.Context, key string, out any) bool {
	raw, hit, err := p.cache.Get(ctx, key)
	if err != nil {
		p.logger.WarnContext(ctx, "Book cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if hit {
		if err := json.Unmarshal(raw, out); err != nil {
			p.logger.WarnContext(ctx, "Book cache entry is corrupt", slog.String("key", key), slog.Any("error", err))
			hit = false
		}
	}
	p.metrics.RecordCacheLookup(hit)

	return hit
}

func (p *cachedProvider) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, raw, p.ttl); err != nil {
		p.logger.WarnContext(ctx, "Book cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}
