package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/smallbiznis/courierfare/internal/audit/domain"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, record *domain.QuoteAuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) AttachOrder(ctx context.Context, requestID string, orderID int64) error {
	result := r.db.WithContext(ctx).
		Model(&domain.QuoteAuditRecord{}).
		Where("request_id = ?", requestID).
		Update("order_id", orderID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) Stats(ctx context.Context, from, to time.Time) (domain.Stats, error) {
	var row struct {
		TotalRequests int64
		CacheHits     int64
		APICalls      int64
		FallbackCount int64
		AvgDistanceM  *float64
		AvgFee        *float64
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*)                                        AS total_requests,
			COALESCE(SUM(CASE WHEN cache_hit THEN 1 ELSE 0 END), 0)     AS cache_hits,
			COALESCE(SUM(api_calls), 0)                     AS api_calls,
			COALESCE(SUM(CASE WHEN fallback_used THEN 1 ELSE 0 END), 0) AS fallback_count,
			AVG(distance_m)                                 AS avg_distance_m,
			AVG(fee_applied)                                AS avg_fee
		FROM delivery_pricing_audit
		WHERE created_at >= ? AND created_at < ?
	`, from, to).Scan(&row).Error
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{
		TotalRequests: row.TotalRequests,
		CacheHits:     row.CacheHits,
		APICalls:      row.APICalls,
		FallbackCount: row.FallbackCount,
	}
	if row.AvgDistanceM != nil {
		stats.AvgDistanceKm = *row.AvgDistanceM / 1000
	}
	if row.AvgFee != nil {
		stats.AvgFee = *row.AvgFee
	}
	return stats, nil
}

func (r *repository) RuleUsage(ctx context.Context, from, to time.Time, limit int) ([]domain.RuleUsage, error) {
	var usage []domain.RuleUsage
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.rule_id, r.rule_name, COUNT(*) AS count
		FROM delivery_pricing_audit a
		JOIN delivery_pricing_rules r ON r.id = a.rule_id
		WHERE a.rule_id IS NOT NULL
		  AND a.created_at >= ? AND a.created_at < ?
		GROUP BY a.rule_id, r.rule_name
		ORDER BY count DESC
		LIMIT ?
	`, from, to, limit).Scan(&usage).Error
	return usage, err
}

func (r *repository) Recent(ctx context.Context, limit int) ([]domain.QuoteAuditRecord, error) {
	var records []domain.QuoteAuditRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
