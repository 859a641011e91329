package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestQuoteMetricsRecord(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewQuoteMetrics(registry, Config{ServiceName: "courierfare", Environment: "test"})

	m.RecordQuote("delivery", false)
	m.RecordQuote("delivery", false)
	m.RecordQuote("pickup", false)
	m.RecordCacheLookup(CacheOutcomeFresh)
	m.RecordCacheLookup(CacheOutcomeMiss)
	m.RecordProviderCall("google_distance_matrix", nil, 120*time.Millisecond)
	m.RecordProviderCall("google_distance_matrix", errors.New("timeout"), time.Second)
	m.RecordRefresh(RefreshResultOK)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.quotes.WithLabelValues("delivery", "false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.quotes.WithLabelValues("pickup", "false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cacheLookups.WithLabelValues(CacheOutcomeFresh)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.providerCalls.WithLabelValues("google_distance_matrix", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.providerCalls.WithLabelValues("google_distance_matrix", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.refreshes.WithLabelValues(RefreshResultOK)))
}

func TestQuoteMetricsNilSafe(t *testing.T) {
	var m *QuoteMetrics
	assert.NotPanics(t, func() {
		m.RecordQuote("delivery", true)
		m.RecordCacheLookup(CacheOutcomeStale)
		m.RecordProviderCall("haversine_fallback", nil, time.Millisecond)
		m.RecordRefresh(RefreshResultError)
	})
}
