package domain

import (
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Rule is an admin-defined distance band with its own fee parameters.
// Among active rules the half-open bands [DistanceMinKm, DistanceMaxKm)
// must be pairwise disjoint; a nil DistanceMaxKm means unbounded.
type Rule struct {
	ID    snowflake.ID `gorm:"primaryKey" json:"id"`
	Name  string       `gorm:"column:rule_name;type:text;not null" json:"name"`
	// Lower priority is evaluated first.
	Priority int `gorm:"not null;default:1" json:"priority"`

	DistanceMinKm float64  `gorm:"column:distance_min_km;not null" json:"distance_min_km"`
	DistanceMaxKm *float64 `gorm:"column:distance_max_km" json:"distance_max_km"`

	BaseFee          float64 `gorm:"column:base_fee;not null" json:"base_fee"`
	PerKmFee         float64 `gorm:"column:per_km_fee;not null" json:"per_km_fee"`
	SurchargePercent float64 `gorm:"column:surcharge_percent;not null;default:0" json:"surcharge_percent"`

	Notes  string `gorm:"type:text" json:"notes"`
	Active bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Rule) TableName() string { return "delivery_pricing_rules" }

func (r *Rule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if r.Priority <= 0 {
		return ErrInvalidPriority
	}
	if r.DistanceMinKm < 0 {
		return ErrInvalidRange
	}
	if r.DistanceMaxKm != nil && *r.DistanceMaxKm <= r.DistanceMinKm {
		return ErrInvalidRange
	}
	if r.BaseFee < 0 || r.PerKmFee < 0 || r.SurchargePercent < 0 {
		return ErrInvalidFee
	}
	return nil
}

// Contains reports whether distanceKm falls within [min, max).
func (r *Rule) Contains(distanceKm float64) bool {
	return distanceKm >= r.DistanceMinKm && distanceKm < r.maxOrInf()
}

// Overlaps reports whether two half-open bands intersect.
func (r *Rule) Overlaps(other *Rule) bool {
	return r.DistanceMinKm < other.maxOrInf() && other.DistanceMinKm < r.maxOrInf()
}

func (r *Rule) maxOrInf() float64 {
	if r.DistanceMaxKm == nil {
		return math.Inf(1)
	}
	return *r.DistanceMaxKm
}
