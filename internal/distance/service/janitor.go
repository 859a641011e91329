package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/courierfare/internal/clock"
	"github.com/smallbiznis/courierfare/internal/distance/domain"
)

// Janitor evicts hard-expired cache rows on a fixed interval so the table
// does not grow without bound between lookups.
type Janitor struct {
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	interval time.Duration
}

func NewJanitor(logger *zap.Logger, clk clock.Clock, repo domain.Repository) *Janitor {
	return &Janitor{
		log:      logger.Named("distance.janitor"),
		clock:    clk,
		repo:     repo,
		interval: time.Hour,
	}
}

func (j *Janitor) RunForever(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

func (j *Janitor) Sweep(ctx context.Context) {
	deleted, err := j.repo.DeleteExpired(ctx, j.clock.Now())
	if err != nil {
		j.log.Warn("cache sweep failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.log.Info("evicted expired cache entries", zap.Int64("deleted", deleted))
	}
}
