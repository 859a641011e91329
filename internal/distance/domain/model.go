package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/courierfare/internal/geo"
	"gorm.io/datatypes"
)

// CacheEntry is one resolved origin-destination pair. SoftExpiresAt and
// HardExpiresAt are stored as explicit timestamps so freshness checks never
// race a derived flag.
type CacheEntry struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	CacheKey string       `gorm:"column:cache_key;uniqueIndex;not null"`

	OriginLat      float64 `gorm:"column:origin_lat;not null"`
	OriginLng      float64 `gorm:"column:origin_lng;not null"`
	DestinationLat float64 `gorm:"column:destination_lat;not null"`
	DestinationLng float64 `gorm:"column:destination_lng;not null"`

	Provider        string         `gorm:"type:text;not null"`
	DistanceMeters  int64          `gorm:"column:distance_m;not null"`
	DurationSeconds *int64         `gorm:"column:duration_s"`
	ResponsePayload datatypes.JSON `gorm:"column:response_payload"`

	CachedAt      time.Time `gorm:"not null"`
	SoftExpiresAt time.Time `gorm:"not null"`
	HardExpiresAt time.Time `gorm:"not null"`
}

func (CacheEntry) TableName() string { return "delivery_distance_cache" }

// Readable reports whether the stored payload is usable. An unreadable row
// is treated as a miss and re-resolved.
func (e *CacheEntry) Readable() bool {
	if e.CacheKey == "" || e.DistanceMeters <= 0 {
		return false
	}
	return !e.HardExpiresAt.Before(e.SoftExpiresAt)
}

// Key collapses near-duplicate coordinates onto one entry by rounding to
// five decimals (about 1.1 m) before hashing.
func Key(origin, destination geo.Location) string {
	payload := fmt.Sprintf("%.5f,%.5f|%.5f,%.5f", origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Result is a single provider response.
type Result struct {
	DistanceMeters  int64
	DurationSeconds *int64
	Raw             json.RawMessage
}

// ChainResult is the outcome of walking the provider chain.
type ChainResult struct {
	Result
	Provider     string
	FallbackUsed bool
}

// Lookup is what the cache hands the pricing engine per request.
type Lookup struct {
	DistanceMeters  int64
	DurationSeconds *int64
	Provider        string
	CacheHit        bool
	APICalls        int
	FallbackUsed    bool
}

func (l Lookup) DistanceKm() float64 {
	return float64(l.DistanceMeters) / 1000
}
