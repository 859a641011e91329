package provider

import (
	"context"
	"math"

	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/geo"
)

const HaversineProviderName = "haversine_fallback"

// Haversine estimates road distance from the great-circle distance scaled by
// a road factor. It needs no credentials and never calls out, so it is always
// configured and serves as the terminal provider in the chain.
type Haversine struct {
	roadFactor float64
}

func NewHaversine(roadFactor float64) *Haversine {
	if roadFactor < 1 {
		roadFactor = 1
	}
	return &Haversine{roadFactor: roadFactor}
}

func (h *Haversine) Name() string { return HaversineProviderName }

func (h *Haversine) Configured() bool { return true }

func (h *Haversine) Resolve(_ context.Context, origin, destination geo.Location) (distancedomain.Result, error) {
	if err := validateRoute(origin, destination); err != nil {
		return distancedomain.Result{}, err
	}

	meters := geo.HaversineMeters(origin, destination) * h.roadFactor
	return distancedomain.Result{DistanceMeters: int64(math.Round(meters))}, nil
}
