package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, Location{Lat: -1.2921, Lng: 36.8219}.Validate())
	assert.ErrorIs(t, Location{Lat: math.NaN(), Lng: 36.8}.Validate(), ErrInvalidCoordinates)
	assert.ErrorIs(t, Location{Lat: 91, Lng: 0}.Validate(), ErrInvalidCoordinates)
	assert.ErrorIs(t, Location{Lat: 0, Lng: -181}.Validate(), ErrInvalidCoordinates)
}

func TestHaversineMeters(t *testing.T) {
	// Nairobi CBD to Westlands is roughly 2.4 km as the crow flies.
	cbd := Location{Lat: -1.2864, Lng: 36.8172}
	westlands := Location{Lat: -1.2676, Lng: 36.8062}

	d := HaversineMeters(cbd, westlands)
	assert.InDelta(t, 2400, d, 300)

	assert.Zero(t, HaversineMeters(cbd, cbd))
}
