// Package metrics exposes operational counters through Prometheus.
package metrics

import (
	"net/http"
	"time"

	"booklib/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "booklib"

// Collector implements service.MetricsRecorder with Prometheus collectors.
type Collector struct {
	authTotal        *prometheus.CounterVec
	favoriteTotal    *prometheus.CounterVec
	providerTotal    *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	ledgerSweepTotal prometheus.Counter
}

var _ service.MetricsRecorder = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_operations_total",
			Help:      "Session operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		favoriteTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_mutations_total",
			Help:      "Favorite add/remove attempts by outcome.",
		}, []string{"operation", "outcome"}),
		providerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "book_provider_requests_total",
			Help:      "Book provider requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "book_provider_latency_seconds",
			Help:      "Book provider request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "book_cache_lookups_total",
			Help:      "Book cache lookups by result.",
		}, []string{"result"}),
		ledgerSweepTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_tokens_expired_total",
			Help:      "Ledger entries moved to EXPIRED by the sweeper.",
		}),
	}

	reg.MustRegister(
		c.authTotal,
		c.favoriteTotal,
		c.providerTotal,
		c.providerLatency,
		c.cacheLookups,
		c.ledgerSweepTotal,
	)

	return c
}

// RecordAuth counts a register, login, refresh or authenticate outcome.
func (c *Collector) RecordAuth(operation, outcome string) {
	c.authTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordFavoriteMutation counts an add or remove outcome.
func (c *Collector) RecordFavoriteMutation(operation, outcome string) {
	c.favoriteTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordProviderRequest counts a provider call and observes its latency.
func (c *Collector) RecordProviderRequest(operation, outcome string, latency time.Duration) {
	c.providerTotal.WithLabelValues(operation, outcome).Inc()
	c.providerLatency.WithLabelValues(operation).Observe(latency.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func (c *Collector) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(result).Inc()
}

// RecordLedgerSweep adds the number of entries a sweep expired.
func (c *Collector) RecordLedgerSweep(expired int64) {
	c.ledgerSweepTotal.Add(float64(expired))
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type nopRecorder struct{}

// NewNop returns a recorder that drops everything, for disabled metrics and tests.
func NewNop() service.MetricsRecorder {
	return nopRecorder{}
}

func (nopRecorder) RecordAuth(string, string)                           {}
func (nopRecorder) RecordFavoriteMutation(string, string)               {}
func (nopRecorder) RecordProviderRequest(string, string, time.Duration) {}
func (nopRecorder) RecordCacheLookup(bool)                              {}
func (nopRecorder) RecordLedgerSweep(int64)                             {}
