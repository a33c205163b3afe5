// Package telemetry exposes Prometheus metrics for the assistant service.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all assistant Prometheus metrics.
type Metrics struct {
	SearchesTotal       *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	GuestRejections     prometheus.Counter
	VideosEnriched      prometheus.Counter
	EnrichmentFailures  *prometheus.CounterVec
	ProviderFailures    prometheus.Counter
	ChatMessagesTotal   *prometheus.CounterVec
}

// NewMetrics registers the service metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers the service metrics with the given registerer.
// Tests pass a fresh registry so metric values can be asserted in isolation.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_searches_total",
			Help: "Total search requests by depth",
		}, []string{"depth"}),

		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assistant_search_duration_seconds",
			Help:    "End-to-end search pipeline duration",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"depth"}),

		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_cache_hits_total",
			Help: "Search cache hits",
		}),

		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_cache_misses_total",
			Help: "Search cache misses",
		}),

		GuestRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_guest_rejections_total",
			Help: "Chat messages rejected by the guest rate limit",
		}),

		VideosEnriched: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_videos_enriched_total",
			Help: "Video results that completed enrichment",
		}),

		EnrichmentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_enrichment_failures_total",
			Help: "Failed enrichment calls by kind",
		}, []string{"kind"}),

		ProviderFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_provider_failures_total",
			Help: "Search provider calls that failed",
		}),

		ChatMessagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_chat_messages_total",
			Help: "Chat messages accepted by requester kind",
		}, []string{"requester"}),
	}
}

// Handler returns the Prometheus HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCacheLookup records a cache hit or miss. Nil-safe so components can
// run without metrics in tests.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// RecordSearch records a completed search by depth.
func (m *Metrics) RecordSearch(depth string, seconds float64) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(depth).Inc()
	m.SearchDuration.WithLabelValues(depth).Observe(seconds)
}

// RecordGuestRejection counts a guest-limit rejection.
func (m *Metrics) RecordGuestRejection() {
	if m == nil {
		return
	}
	m.GuestRejections.Inc()
}

// RecordEnrichmentFailure counts a failed enrichment call by kind.
func (m *Metrics) RecordEnrichmentFailure(kind string) {
	if m == nil {
		return
	}
	m.EnrichmentFailures.WithLabelValues(kind).Inc()
}

// RecordVideoEnriched counts a video that completed enrichment.
func (m *Metrics) RecordVideoEnriched() {
	if m == nil {
		return
	}
	m.VideosEnriched.Inc()
}

// RecordProviderFailure counts a failed provider call.
func (m *Metrics) RecordProviderFailure() {
	if m == nil {
		return
	}
	m.ProviderFailures.Inc()
}

// RecordChatMessage counts an accepted chat message.
func (m *Metrics) RecordChatMessage(requester string) {
	if m == nil {
		return
	}
	m.ChatMessagesTotal.WithLabelValues(requester).Inc()
}
