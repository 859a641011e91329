package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the const labels stamped on every metric.
type Config struct {
	ServiceName string
	Environment string
}

// QuoteMetrics exposes pricing-engine instruments.
type QuoteMetrics struct {
	quotes          *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	providerCalls   *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
}

const (
	CacheOutcomeFresh = "hit_fresh"
	CacheOutcomeStale = "hit_stale"
	CacheOutcomeMiss  = "miss"

	RefreshResultOK      = "ok"
	RefreshResultError   = "error"
	RefreshResultSkipped = "skipped"
)

// NewQuoteMetrics registers the pricing instruments on the given registerer.
func NewQuoteMetrics(registerer prometheus.Registerer, cfg Config) *QuoteMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := constLabels(cfg)

	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "courierfare_quotes_total",
		Help:        "Delivery quotes computed, by order type and degradation.",
		ConstLabels: constLabels,
	}, []string{"order_type", "degraded"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "courierfare_distance_cache_lookups_total",
		Help:        "Distance cache lookups by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	providerCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "courierfare_distance_provider_calls_total",
		Help:        "Outbound distance provider calls by provider and status.",
		ConstLabels: constLabels,
	}, []string{"provider", "status"})
	providerLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "courierfare_distance_provider_duration_seconds",
		Help:        "Distance provider call latency.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"provider"})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "courierfare_distance_cache_refreshes_total",
		Help:        "Background soft-TTL refreshes by result.",
		ConstLabels: constLabels,
	}, []string{"result"})

	registerer.MustRegister(quotes, cacheLookups, providerCalls, providerLatency, refreshes)

	return &QuoteMetrics{
		quotes:          quotes,
		cacheLookups:    cacheLookups,
		providerCalls:   providerCalls,
		providerLatency: providerLatency,
		refreshes:       refreshes,
	}
}

func (m *QuoteMetrics) RecordQuote(orderType string, degraded bool) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(strings.TrimSpace(orderType), strconv.FormatBool(degraded)).Inc()
}

func (m *QuoteMetrics) RecordCacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *QuoteMetrics) RecordProviderCall(provider string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.providerCalls.WithLabelValues(provider, status).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *QuoteMetrics) RecordRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result).Inc()
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "courierfare"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}
