package geo_test

import (
	"testing"

	"greencycle-api-server/internal/geo"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroAtIdentity(t *testing.T) {
	assert.Equal(t, 0.0, geo.Distance(48.8566, 2.3522, 48.8566, 2.3522))
}

func TestDistanceSymmetric(t *testing.T) {
	cases := [][4]float64{
		{40.7128, -74.0060, 34.0522, -118.2437},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{0, 0, 0, 180},
	}
	for _, c := range cases {
		ab := geo.Distance(c[0], c[1], c[2], c[3])
		ba := geo.Distance(c[2], c[3], c[0], c[1])
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestDistanceKnownPairs(t *testing.T) {
	// Paris -> London, roughly 343-344 km great-circle.
	d := geo.Distance(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 343.5, d, 1.5)

	// One degree of latitude at the equator is ~111.19 km with R=6371.
	d = geo.Distance(0, 0, 1, 0)
	assert.InDelta(t, 111.19, d, 0.05)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 343.56, geo.RoundKm(343.5617))
	assert.Equal(t, 0.0, geo.RoundKm(0))
	assert.Equal(t, 1.0, geo.RoundKm(0.999))
}
