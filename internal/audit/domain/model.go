package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// QuoteAuditRecord is one immutable row per priced delivery quote. Pickup
// quotes are not recorded.
type QuoteAuditRecord struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	RequestID string       `gorm:"column:request_id;uniqueIndex;not null"`
	OrderID   *int64       `gorm:"column:order_id;index"`

	Provider string        `gorm:"type:text;not null"`
	RuleID   *snowflake.ID `gorm:"column:rule_id"`

	DistanceMeters  *int64 `gorm:"column:distance_m"`
	DurationSeconds *int64 `gorm:"column:duration_s"`

	FeeApplied   float64 `gorm:"column:fee_applied;not null"`
	APICalls     int     `gorm:"column:api_calls;not null"`
	CacheHit     bool    `gorm:"column:cache_hit;not null"`
	FallbackUsed bool    `gorm:"column:fallback_used;not null"`

	Metadata datatypes.JSONMap `gorm:"column:metadata"`

	CreatedAt time.Time `gorm:"not null;index"`
}

func (QuoteAuditRecord) TableName() string { return "delivery_pricing_audit" }

// Stats are the aggregates behind the admin metrics endpoint.
type Stats struct {
	TotalRequests  int64
	CacheHits      int64
	APICalls       int64
	FallbackCount  int64
	AvgDistanceKm  float64
	AvgFee         float64
}

// RuleUsage counts how often one rule priced a quote in the window.
type RuleUsage struct {
	RuleID   snowflake.ID `json:"rule_id"`
	RuleName string       `json:"rule_name"`
	Count    int64        `json:"count"`
}

// Summary is the admin-facing metrics payload.
type Summary struct {
	TotalRequests  int64              `json:"total_requests"`
	CacheHits      int64              `json:"cache_hits"`
	CacheHitRate   float64            `json:"cache_hit_rate"`
	APICalls       int64              `json:"api_calls"`
	FallbackCount  int64              `json:"fallback_count"`
	AvgDistanceKm  float64            `json:"avg_distance_km"`
	AvgFee         float64            `json:"avg_fee"`
	CacheEntries   int64              `json:"cache_entries"`
	RuleUsage      []RuleUsage        `json:"rule_usage"`
	RecentRequests []QuoteAuditRecord `json:"recent_requests"`
}
