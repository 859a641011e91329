package service

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"

	"github.com/smallbiznis/courierfare/internal/clock"
	"github.com/smallbiznis/courierfare/internal/config"
	"github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
	"github.com/smallbiznis/courierfare/internal/locking"
	"github.com/smallbiznis/courierfare/internal/observability/metrics"
)

const refreshLockPrefix = "courierfare:refresh:"

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	resolver domain.Resolver
	metrics  *metrics.QuoteMetrics
	locker   *locking.Locker

	softTTL time.Duration
	hardTTL time.Duration

	refresh   singleflight.Group
	refreshWG sync.WaitGroup
}

func NewService(
	logger *zap.Logger,
	cfg config.Config,
	clk clock.Clock,
	genID *snowflake.Node,
	repo domain.Repository,
	resolver domain.Resolver,
	m *metrics.QuoteMetrics,
	locker *locking.Locker,
) *Service {
	return &Service{
		log:      logger.Named("distance.service"),
		clock:    clk,
		genID:    genID,
		repo:     repo,
		resolver: resolver,
		metrics:  m,
		locker:   locker,
		softTTL:  cfg.Delivery.SoftTTL(),
		hardTTL:  cfg.Delivery.HardTTL(),
	}
}

var _ domain.Service = (*Service)(nil)

func (s *Service) Get(ctx context.Context, origin, destination geo.Location) (domain.Lookup, error) {
	key := domain.Key(origin, destination)
	now := s.clock.Now()

	entry, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		s.log.Warn("cache lookup failed, resolving directly", zap.Error(err))
		entry = nil
	}
	if entry != nil && !entry.Readable() {
		s.log.Warn("unreadable cache entry, re-resolving", zap.String("cache_key", key))
		entry = nil
	}
	if entry != nil && !now.Before(entry.HardExpiresAt) {
		entry = nil
	}

	if entry == nil {
		s.metrics.RecordCacheLookup(metrics.CacheOutcomeMiss)
		stored, resolveErr := s.resolveAndStore(ctx, key, origin, destination)
		if resolveErr != nil {
			return domain.Lookup{}, resolveErr
		}
		return domain.Lookup{
			DistanceMeters:  stored.Result.DistanceMeters,
			DurationSeconds: stored.Result.DurationSeconds,
			Provider:        stored.Provider,
			CacheHit:        false,
			APICalls:        1,
			FallbackUsed:    stored.FallbackUsed,
		}, nil
	}

	lookup := domain.Lookup{
		DistanceMeters:  entry.DistanceMeters,
		DurationSeconds: entry.DurationSeconds,
		Provider:        entry.Provider,
		CacheHit:        true,
	}

	if now.Before(entry.SoftExpiresAt) {
		s.metrics.RecordCacheLookup(metrics.CacheOutcomeFresh)
		return lookup, nil
	}

	// Stale but within the hard TTL: serve the cached value immediately and
	// refresh out of band so the caller never pays provider latency.
	s.metrics.RecordCacheLookup(metrics.CacheOutcomeStale)
	s.scheduleRefresh(key, origin, destination)
	return lookup, nil
}

func (s *Service) Purge(ctx context.Context) error {
	if err := s.repo.Purge(ctx); err != nil {
		return err
	}
	s.log.Info("distance cache purged")
	return nil
}

func (s *Service) Entries(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) resolveAndStore(ctx context.Context, key string, origin, destination geo.Location) (domain.ChainResult, error) {
	resolved, err := s.resolver.Resolve(ctx, origin, destination)
	if err != nil {
		return domain.ChainResult{}, err
	}

	now := s.clock.Now()
	entry := &domain.CacheEntry{
		ID:              s.genID.Generate(),
		CacheKey:        key,
		OriginLat:       origin.Lat,
		OriginLng:       origin.Lng,
		DestinationLat:  destination.Lat,
		DestinationLng:  destination.Lng,
		Provider:        resolved.Provider,
		DistanceMeters:  resolved.Result.DistanceMeters,
		DurationSeconds: resolved.Result.DurationSeconds,
		CachedAt:        now,
		SoftExpiresAt:   now.Add(s.softTTL),
		HardExpiresAt:   now.Add(s.hardTTL),
	}
	if len(resolved.Result.Raw) > 0 {
		entry.ResponsePayload = datatypes.JSON(resolved.Result.Raw)
	}

	// A write failure must not fail the lookup; the next request simply
	// resolves again.
	if err := s.repo.Upsert(ctx, entry); err != nil {
		s.log.Warn("failed to store distance cache entry",
			zap.String("cache_key", key),
			zap.Error(err))
	}
	return resolved, nil
}

func (s *Service) scheduleRefresh(key string, origin, destination geo.Location) {
	s.refreshWG.Add(1)
	go func() {
		defer s.refreshWG.Done()
		s.refresh.Do(key, func() (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			lockKey := refreshLockPrefix + key
			token, acquired, err := s.locker.TryLock(ctx, lockKey, time.Minute)
			if err != nil {
				s.log.Warn("refresh lock error", zap.Error(err))
			}
			if !acquired {
				s.metrics.RecordRefresh(metrics.RefreshResultSkipped)
				return nil, nil
			}
			defer func() {
				if token != "" {
					if err := s.locker.Release(ctx, lockKey, token); err != nil {
						s.log.Warn("refresh lock release failed", zap.Error(err))
					}
				}
			}()

			if _, err := s.resolveAndStore(ctx, key, origin, destination); err != nil {
				s.metrics.RecordRefresh(metrics.RefreshResultError)
				s.log.Warn("background distance refresh failed",
					zap.String("cache_key", key),
					zap.Error(err))
				return nil, nil
			}
			s.metrics.RecordRefresh(metrics.RefreshResultOK)
			return nil, nil
		})
	}()
}

// WaitRefresh blocks until in-flight background refreshes have finished.
// Exposed for deterministic tests.
func (s *Service) WaitRefresh() {
	s.refreshWG.Wait()
}
