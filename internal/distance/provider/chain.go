package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/courierfare/internal/config"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
	"github.com/smallbiznis/courierfare/internal/observability/metrics"
)

// Chain tries each configured provider in order and falls through on error.
// Anything past the first provider counts as a fallback in the result.
type Chain struct {
	log       *zap.Logger
	metrics   *metrics.QuoteMetrics
	providers []distancedomain.Provider
}

func NewResolver(cfg config.Config, log *zap.Logger, m *metrics.QuoteMetrics) distancedomain.Resolver {
	if cfg.Delivery.FallbackProvider != "haversine" {
		log.Warn("unsupported fallback provider, using haversine",
			zap.String("configured", cfg.Delivery.FallbackProvider))
	}
	return &Chain{
		log:     log.Named("distance.chain"),
		metrics: m,
		providers: []distancedomain.Provider{
			NewGoogle(cfg.Provider),
			NewHaversine(cfg.Delivery.RoadFactor),
		},
	}
}

// NewChain builds a resolver over an explicit provider list, mainly for tests.
func NewChain(log *zap.Logger, m *metrics.QuoteMetrics, providers ...distancedomain.Provider) distancedomain.Resolver {
	return &Chain{log: log, metrics: m, providers: providers}
}

// validateRoute rejects out-of-range coordinates and the unset (0, 0) zero
// value. A request that omits either leg must not price a distance from the
// Gulf of Guinea.
func validateRoute(origin, destination geo.Location) error {
	if origin.IsZero() || destination.IsZero() {
		return geo.ErrInvalidCoordinates
	}
	if err := origin.Validate(); err != nil {
		return err
	}
	return destination.Validate()
}

func (c *Chain) Resolve(ctx context.Context, origin, destination geo.Location) (distancedomain.ChainResult, error) {
	var lastErr error
	var lastName string
	attempted := 0
	for _, p := range c.providers {
		if !p.Configured() {
			continue
		}

		start := time.Now()
		result, err := p.Resolve(ctx, origin, destination)
		c.metrics.RecordProviderCall(p.Name(), err, time.Since(start))
		if err != nil {
			lastErr = err
			lastName = p.Name()
			c.log.Warn("distance provider failed",
				zap.String("provider", p.Name()),
				zap.Error(err))
			attempted++
			continue
		}

		return distancedomain.ChainResult{
			Result:       result,
			Provider:     p.Name(),
			FallbackUsed: attempted > 0,
		}, nil
	}

	if lastErr == nil {
		return distancedomain.ChainResult{}, &distancedomain.ProviderError{Err: distancedomain.ErrNoProvider}
	}
	return distancedomain.ChainResult{}, &distancedomain.ProviderError{Provider: lastName, Err: lastErr}
}
