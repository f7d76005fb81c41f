// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	recommendRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movie_recommender",
		Name:      "recommend_requests_total",
		Help:      "Total recommendation requests by outcome (ok, empty, no_match, empty_input, error)",
	}, []string{"outcome"})
	resolverPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movie_recommender",
		Name:      "resolver_passes_total",
		Help:      "Total fuzzy resolutions by accepting pass (exact, weighted, partial, none)",
	}, []string{"pass"})
	recommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "movie_recommender",
		Name:      "recommend_duration_seconds",
		Help:      "Histogram of recommendation request durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // ~0.5ms up to ~1s
	})
	posterLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "movie_recommender",
		Name:      "poster_lookups_total",
		Help:      "Total poster lookups by result (found, absent)",
	}, []string{"result"})

	catalogEntriesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "movie_recommender",
		Name:      "catalog_entries",
		Help:      "Current number of entries in the loaded catalog",
	})
	catalogReloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "movie_recommender",
		Name:      "catalog_reloads_total",
		Help:      "Total successful catalog artifact reloads",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(recommendRequests, resolverPasses, recommendDuration,
			posterLookups, catalogEntriesGauge, catalogReloads)
	})
}

// Request lifecycle helpers
func IncRecommendRequest(outcome string) { recommendRequests.WithLabelValues(outcome).Inc() }
func IncResolverPass(pass string)        { resolverPasses.WithLabelValues(pass).Inc() }
func ObserveRecommendDuration(d time.Duration) {
	recommendDuration.Observe(d.Seconds())
}
func IncPosterLookup(result string) { posterLookups.WithLabelValues(result).Inc() }

// Gauges
func SetCatalogEntries(n int) { catalogEntriesGauge.Set(float64(n)) }
func IncCatalogReload()       { catalogReloads.Inc() }
