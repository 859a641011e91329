package domain

import (
	"context"
	"time"

	"github.com/smallbiznis/courierfare/internal/geo"
)

// Provider is one distance-resolution strategy.
type Provider interface {
	Name() string
	// Configured reports whether the strategy can run at all; unconfigured
	// strategies are skipped by the chain.
	Configured() bool
	Resolve(ctx context.Context, origin, destination geo.Location) (Result, error)
}

// Resolver walks the ordered provider chain. Adding a third strategy is a
// non-breaking extension of the chain.
type Resolver interface {
	Resolve(ctx context.Context, origin, destination geo.Location) (ChainResult, error)
}

// Service is the soft/hard-TTL distance cache in front of the resolver.
type Service interface {
	// Get returns the distance for a coordinate pair, resolving through the
	// provider chain on a miss and scheduling a background refresh on a
	// stale-but-usable hit.
	Get(ctx context.Context, origin, destination geo.Location) (Lookup, error)
	Purge(ctx context.Context) error
	Entries(ctx context.Context) (int64, error)
}

type Repository interface {
	FindByKey(ctx context.Context, key string) (*CacheEntry, error)
	Upsert(ctx context.Context, entry *CacheEntry) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	Purge(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
