package kernel_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

func TestNewLocation(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr error
	}{
		{name: "valid location", lat: 12.9716, lon: 77.5946},
		{name: "valid location at min bounds", lat: kernel.LatitudeMin, lon: kernel.LongitudeMin},
		{name: "valid location at max bounds", lat: kernel.LatitudeMax, lon: kernel.LongitudeMax},
		{name: "latitude too small", lat: -90.5, lon: 0, wantErr: errs.ErrValueIsOutOfRange},
		{name: "latitude too large", lat: 91, lon: 0, wantErr: errs.ErrValueIsOutOfRange},
		{name: "longitude too large", lat: 0, lon: 180.1, wantErr: errs.ErrValueIsOutOfRange},
		{name: "latitude is NaN", lat: math.NaN(), lon: 0, wantErr: errs.ErrValueIsOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := kernel.NewLocation(tt.lat, tt.lon)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, loc.Validate(), kernel.ErrLocationIsNotConstructed)
				return
			}

			require.NoError(t, err)
			assert.NoError(t, loc.Validate())
			assert.InDelta(t, tt.lat, loc.Latitude(), 1e-9)
			assert.InDelta(t, tt.lon, loc.Longitude(), 1e-9)
		})
	}
}

func TestLocation_BothInvalid_JoinsErrors(t *testing.T) {
	_, err := kernel.NewLocation(100, 200)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
	assert.Contains(t, err.Error(), "longitude")
}

func TestLocation_ZeroValueIsInvalid(t *testing.T) {
	var loc kernel.Location
	assert.ErrorIs(t, loc.Validate(), kernel.ErrLocationIsNotConstructed)
}

func TestLocation_DistanceMeters(t *testing.T) {
	// Bengaluru MG Road to Indiranagar 100ft Road, roughly 3.9 km.
	mgRoad, err := kernel.NewLocation(12.9756, 77.6050)
	require.NoError(t, err)
	indiranagar, err := kernel.NewLocation(12.9719, 77.6412)
	require.NoError(t, err)

	d := mgRoad.DistanceMeters(indiranagar)
	assert.InDelta(t, 3940, d, 150)
	assert.InDelta(t, d, indiranagar.DistanceMeters(mgRoad), 1e-6, "distance is symmetric")
	assert.InDelta(t, 0, mgRoad.DistanceMeters(mgRoad), 1e-9)
}

func TestLocation_DistanceMeters_OneDegreeOfLatitude(t *testing.T) {
	a, _ := kernel.NewLocation(0, 0)
	b, _ := kernel.NewLocation(1, 0)

	assert.InDelta(t, 111195, a.DistanceMeters(b), 50)
}

func TestLocation_IsEqual(t *testing.T) {
	a, _ := kernel.NewLocation(10, 20)
	b, _ := kernel.NewLocation(10, 20)
	c, _ := kernel.NewLocation(10, 20.0001)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
	assert.Equal(t, "Location(10.000000,20.000000)", a.String())
}
