package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
)

type stubProvider struct {
	name       string
	configured bool
	result     distancedomain.Result
	err        error
	calls      int
}

func (s *stubProvider) Name() string     { return s.name }
func (s *stubProvider) Configured() bool { return s.configured }

func (s *stubProvider) Resolve(context.Context, geo.Location, geo.Location) (distancedomain.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestChainPrefersFirstConfiguredProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", configured: true, result: distancedomain.Result{DistanceMeters: 4200}}
	fallback := &stubProvider{name: "fallback", configured: true, result: distancedomain.Result{DistanceMeters: 9999}}

	chain := NewChain(zap.NewNop(), nil, primary, fallback)
	got, err := chain.Resolve(context.Background(), geo.Location{Lat: 1, Lng: 1}, geo.Location{Lat: 2, Lng: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(4200), got.DistanceMeters)
	assert.Equal(t, "primary", got.Provider)
	assert.False(t, got.FallbackUsed)
	assert.Zero(t, fallback.calls)
}

func TestChainFallsThroughOnError(t *testing.T) {
	primary := &stubProvider{name: "primary", configured: true, err: errors.New("upstream timeout")}
	fallback := &stubProvider{name: "fallback", configured: true, result: distancedomain.Result{DistanceMeters: 3100}}

	chain := NewChain(zap.NewNop(), nil, primary, fallback)
	got, err := chain.Resolve(context.Background(), geo.Location{Lat: 1, Lng: 1}, geo.Location{Lat: 2, Lng: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3100), got.DistanceMeters)
	assert.Equal(t, "fallback", got.Provider)
	assert.True(t, got.FallbackUsed)
}

func TestChainSkipsUnconfiguredProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", configured: false}
	fallback := &stubProvider{name: "fallback", configured: true, result: distancedomain.Result{DistanceMeters: 500}}

	chain := NewChain(zap.NewNop(), nil, primary, fallback)
	got, err := chain.Resolve(context.Background(), geo.Location{Lat: 1, Lng: 1}, geo.Location{Lat: 2, Lng: 2})
	require.NoError(t, err)

	// Skipped providers do not count as fallback attempts.
	assert.False(t, got.FallbackUsed)
	assert.Zero(t, primary.calls)
}

func TestChainAllProvidersFail(t *testing.T) {
	primary := &stubProvider{name: "primary", configured: true, err: errors.New("boom")}
	fallback := &stubProvider{name: "fallback", configured: true, err: geo.ErrInvalidCoordinates}

	chain := NewChain(zap.NewNop(), nil, primary, fallback)
	_, err := chain.Resolve(context.Background(), geo.Location{Lat: 1, Lng: 1}, geo.Location{Lat: 2, Lng: 2})

	var perr *distancedomain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "fallback", perr.Provider)
	assert.True(t, errors.Is(err, geo.ErrInvalidCoordinates))
}

func TestChainRejectsMissingCoordinates(t *testing.T) {
	chain := NewChain(zap.NewNop(), nil, NewHaversine(1.3))

	_, err := chain.Resolve(context.Background(), geo.Location{Lat: -1.28333, Lng: 36.81667}, geo.Location{})

	var perr *distancedomain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, HaversineProviderName, perr.Provider)
	assert.True(t, errors.Is(err, geo.ErrInvalidCoordinates))
}

func TestChainNoConfiguredProvider(t *testing.T) {
	chain := NewChain(zap.NewNop(), nil, &stubProvider{name: "primary"})
	_, err := chain.Resolve(context.Background(), geo.Location{Lat: 1, Lng: 1}, geo.Location{Lat: 2, Lng: 2})
	assert.True(t, errors.Is(err, distancedomain.ErrNoProvider))
}
