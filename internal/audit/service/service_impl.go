package service

import (
	"context"
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/courierfare/internal/audit/domain"
	"github.com/smallbiznis/courierfare/internal/clock"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
)

const (
	ruleUsageLimit = 10
	recentLimit    = 20
)

type service struct {
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
	cache distancedomain.Service
}

func NewService(
	logger *zap.Logger,
	clk clock.Clock,
	genID *snowflake.Node,
	repo domain.Repository,
	cache distancedomain.Service,
) domain.Service {
	return &service{
		log:   logger.Named("audit.service"),
		clock: clk,
		genID: genID,
		repo:  repo,
		cache: cache,
	}
}

func (s *service) Record(ctx context.Context, record *domain.QuoteAuditRecord) {
	if record.ID == 0 {
		record.ID = s.genID.Generate()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.clock.Now()
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		s.log.Error("failed to record quote audit",
			zap.String("request_id", record.RequestID),
			zap.Error(err))
	}
}

func (s *service) AttachOrder(ctx context.Context, requestID string, orderID int64) error {
	return s.repo.AttachOrder(ctx, requestID, orderID)
}

func (s *service) Metrics(ctx context.Context, from, to time.Time) (domain.Summary, error) {
	stats, err := s.repo.Stats(ctx, from, to)
	if err != nil {
		return domain.Summary{}, err
	}

	summary := domain.Summary{
		TotalRequests: stats.TotalRequests,
		CacheHits:     stats.CacheHits,
		APICalls:      stats.APICalls,
		FallbackCount: stats.FallbackCount,
		AvgDistanceKm: round2(stats.AvgDistanceKm),
		AvgFee:        round2(stats.AvgFee),
	}
	if stats.TotalRequests > 0 {
		summary.CacheHitRate = math.Round(float64(stats.CacheHits) / float64(stats.TotalRequests) * 100)
	}

	if summary.CacheEntries, err = s.cache.Entries(ctx); err != nil {
		s.log.Warn("failed to count cache entries", zap.Error(err))
	}
	if summary.RuleUsage, err = s.repo.RuleUsage(ctx, from, to, ruleUsageLimit); err != nil {
		return domain.Summary{}, err
	}
	if summary.RecentRequests, err = s.repo.Recent(ctx, recentLimit); err != nil {
		return domain.Summary{}, err
	}
	if summary.RuleUsage == nil {
		summary.RuleUsage = []domain.RuleUsage{}
	}
	if summary.RecentRequests == nil {
		summary.RecentRequests = []domain.QuoteAuditRecord{}
	}
	return summary, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
