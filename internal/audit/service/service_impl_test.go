package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/courierfare/internal/audit/domain"
	auditrepo "github.com/smallbiznis/courierfare/internal/audit/repository"
	"github.com/smallbiznis/courierfare/internal/clock"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
)

type cacheStub struct{ entries int64 }

func (c cacheStub) Get(context.Context, geo.Location, geo.Location) (distancedomain.Lookup, error) {
	return distancedomain.Lookup{}, nil
}

func (c cacheStub) Purge(context.Context) error { return nil }

func (c cacheStub) Entries(context.Context) (int64, error) { return c.entries, nil }

func newAuditTest(t *testing.T) (domain.Service, domain.Repository, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.QuoteAuditRecord{}, &ruledomain.Rule{}))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := auditrepo.NewRepository(db)
	svc := NewService(zap.NewNop(), fake, node, repo, cacheStub{entries: 3})
	return svc, repo, fake, node
}

func TestMetricsCacheHitRate(t *testing.T) {
	svc, _, fake, node := newAuditTest(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		record := &domain.QuoteAuditRecord{
			ID:         node.Generate(),
			RequestID:  node.Generate().String(),
			Provider:   "google_distance_matrix",
			FeeApplied: 100,
			CacheHit:   i < 6,
		}
		if record.CacheHit {
			record.APICalls = 0
		} else {
			record.APICalls = 1
		}
		meters := int64(2000)
		record.DistanceMeters = &meters
		svc.Record(ctx, record)
	}

	summary, err := svc.Metrics(ctx, fake.Now().Add(-time.Hour), fake.Now().Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.TotalRequests)
	assert.Equal(t, int64(6), summary.CacheHits)
	assert.Equal(t, float64(60), summary.CacheHitRate)
	assert.Equal(t, int64(4), summary.APICalls)
	assert.Equal(t, float64(2), summary.AvgDistanceKm)
	assert.Equal(t, float64(100), summary.AvgFee)
	assert.Equal(t, int64(3), summary.CacheEntries)
	assert.Len(t, summary.RecentRequests, 10)
}

func TestMetricsEmptyWindow(t *testing.T) {
	svc, _, fake, _ := newAuditTest(t)

	summary, err := svc.Metrics(context.Background(), fake.Now().Add(-time.Hour), fake.Now())
	require.NoError(t, err)

	assert.Zero(t, summary.TotalRequests)
	assert.Zero(t, summary.CacheHitRate)
	assert.NotNil(t, summary.RuleUsage)
	assert.NotNil(t, summary.RecentRequests)
}

func TestAttachOrder(t *testing.T) {
	svc, repo, _, node := newAuditTest(t)
	ctx := context.Background()

	requestID := node.Generate().String()
	svc.Record(ctx, &domain.QuoteAuditRecord{
		ID:         node.Generate(),
		RequestID:  requestID,
		Provider:   "haversine_fallback",
		FeeApplied: 50,
	})

	require.NoError(t, svc.AttachOrder(ctx, requestID, 4401))

	records, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].OrderID)
	assert.Equal(t, int64(4401), *records[0].OrderID)

	assert.ErrorIs(t, svc.AttachOrder(ctx, "missing-request", 1), domain.ErrNotFound)
}
