package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	"github.com/smallbiznis/courierfare/internal/geo"
)

type OrderType string

const (
	OrderTypeDelivery OrderType = "delivery"
	OrderTypePickup   OrderType = "pickup"
)

var ErrInvalidOrderType = errors.New("invalid_order_type")

func (t OrderType) Valid() bool {
	return t == OrderTypeDelivery || t == OrderTypePickup
}

// Quote is one priced fulfilment option. For pickup everything except the
// order type is zero: no distance lookup happens at all.
type Quote struct {
	RequestID string    `json:"request_id,omitempty"`
	OrderType OrderType `json:"order_type"`

	DeliveryFee float64 `json:"delivery_fee"`
	DistanceKm  float64 `json:"distance_km"`

	RuleID   *snowflake.ID `json:"rule_id,omitempty"`
	RuleName string        `json:"rule_name,omitempty"`

	Provider        string `json:"provider,omitempty"`
	DurationSeconds *int64 `json:"duration_seconds,omitempty"`
	CacheHit        bool   `json:"cache_hit"`
	FallbackUsed    bool   `json:"fallback_used"`

	// Degraded is set when every distance provider failed and the quote
	// fell back to the system-default flat fee.
	Degraded bool `json:"degraded"`
}

type Service interface {
	Quote(ctx context.Context, orderType OrderType, destination geo.Location) (Quote, error)
}
