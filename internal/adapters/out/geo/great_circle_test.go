package geo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/adapters/out/geo"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

func TestGreatCircle_Distance(t *testing.T) {
	calc, err := geo.NewGreatCircle(5)
	require.NoError(t, err)

	// Bengaluru MG Road to Indiranagar, about 3.9 km.
	from, err := kernel.NewLocation(12.9756, 77.6050)
	require.NoError(t, err)
	to, err := kernel.NewLocation(12.9784, 77.6408)
	require.NoError(t, err)

	route, err := calc.Distance(t.Context(), from, to)
	require.NoError(t, err)
	assert.InDelta(t, 3900, route.Meters, 200)
	assert.InDelta(t, route.Meters/5, route.Seconds, 1e-9)

	same, err := calc.Distance(t.Context(), from, from)
	require.NoError(t, err)
	assert.Zero(t, same.Meters)
	assert.Zero(t, same.Seconds)
}

func TestGreatCircle_Errors(t *testing.T) {
	_, err := geo.NewGreatCircle(0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	calc, err := geo.NewGreatCircle(geo.DefaultSpeed)
	require.NoError(t, err)

	valid, err := kernel.NewLocation(12.97, 77.59)
	require.NoError(t, err)

	_, err = calc.Distance(t.Context(), kernel.Location{}, valid)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = calc.Distance(ctx, valid, valid)
	require.ErrorIs(t, err, context.Canceled)
}
