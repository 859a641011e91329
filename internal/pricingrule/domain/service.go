package domain

import "context"

// UpsertRequest carries an admin create/update. An empty ID creates a rule.
type UpsertRequest struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Priority         int      `json:"priority"`
	DistanceMinKm    float64  `json:"distance_min_km"`
	DistanceMaxKm    *float64 `json:"distance_max_km"`
	BaseFee          float64  `json:"base_fee"`
	PerKmFee         float64  `json:"per_km_fee"`
	SurchargePercent float64  `json:"surcharge_percent"`
	Notes            string   `json:"notes"`
	Active           bool     `json:"is_active"`
}

// Service is the single writer for pricing rules and the match authority
// for quotes. Match runs against an in-memory snapshot that is pre-sorted
// and pre-validated, invalidated on every write.
type Service interface {
	List(ctx context.Context) ([]Rule, error)
	Upsert(ctx context.Context, req UpsertRequest) (*Rule, error)
	Delete(ctx context.Context, id string) error

	// Match returns the first active rule containing distanceKm in priority
	// order, or nil when no band matches and system defaults apply.
	Match(ctx context.Context, distanceKm float64) (*Rule, error)
}
