package geo

import (
	"errors"
	"math"
)

const earthRadiusMeters = 6371000.0

var ErrInvalidCoordinates = errors.New("invalid_coordinates")

// Location is a WGS84 coordinate pair. It has no lifecycle of its own;
// callers embed it in cache keys, quotes and audit rows.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) {
		return ErrInvalidCoordinates
	}
	if l.Lat < -90 || l.Lat > 90 {
		return ErrInvalidCoordinates
	}
	if l.Lng < -180 || l.Lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// IsZero reports whether the location is the unset zero value. (0, 0) is in
// the Gulf of Guinea and never a real store or customer address here.
func (l Location) IsZero() bool {
	return l.Lat == 0 && l.Lng == 0
}

// HaversineMeters returns the great-circle distance between two locations.
func HaversineMeters(from, to Location) float64 {
	latFrom := from.Lat * math.Pi / 180
	latTo := to.Lat * math.Pi / 180
	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latFrom)*math.Cos(latTo)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMeters * 2 * math.Asin(math.Sqrt(a))
}
