package queries

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

const (
	// MaxNearbyRadiusMeters bounds proximity searches.
	MaxNearbyRadiusMeters = 50_000.0

	metersPerDegreeLatitude = 111_320.0

	// nearbyCandidateLimit caps the rows a bounding box may return before ranking.
	nearbyCandidateLimit = 500
)

type box struct {
	minLat, maxLat float64
	minLon, maxLon float64
}

// boundingBox returns a lat/lon rectangle that contains every point within meters of
// center. It is a prefilter only; ranking uses the distance calculator. The longitude
// bounds may run past ±180; lonRanges folds them back.
func boundingBox(center kernel.Location, meters float64) box {
	dLat := meters / metersPerDegreeLatitude
	cos := math.Cos(center.Latitude() * math.Pi / 180)
	dLon := 180.0
	if cos > 1e-6 {
		dLon = math.Min(180, meters/(metersPerDegreeLatitude*cos))
	}

	return box{
		minLat: math.Max(kernel.LatitudeMin, center.Latitude()-dLat),
		maxLat: math.Min(kernel.LatitudeMax, center.Latitude()+dLat),
		minLon: center.Longitude() - dLon,
		maxLon: center.Longitude() + dLon,
	}
}

// lonRanges returns the longitude intervals covered by b, two of them when the box
// crosses the antimeridian.
func (b box) lonRanges() [][2]float64 {
	switch {
	case b.maxLon-b.minLon >= 360:
		return [][2]float64{{kernel.LongitudeMin, kernel.LongitudeMax}}
	case b.minLon < kernel.LongitudeMin:
		return [][2]float64{{b.minLon + 360, kernel.LongitudeMax}, {kernel.LongitudeMin, b.maxLon}}
	case b.maxLon > kernel.LongitudeMax:
		return [][2]float64{{b.minLon, kernel.LongitudeMax}, {kernel.LongitudeMin, b.maxLon - 360}}
	default:
		return [][2]float64{{b.minLon, b.maxLon}}
	}
}

// within renders the SQL condition for latCol/lonCol inside b, with its arguments.
func (b box) within(latCol, lonCol string) (string, []any) {
	args := []any{b.minLat, b.maxLat}
	ranges := b.lonRanges()
	lon := make([]string, 0, len(ranges))
	for _, r := range ranges {
		lon = append(lon, lonCol+" BETWEEN ? AND ?")
		args = append(args, r[0], r[1])
	}
	return fmt.Sprintf("%s BETWEEN ? AND ? AND (%s)", latCol, strings.Join(lon, " OR ")), args
}

// planarDistance renders an ORDER BY expression for the equirectangular distance of
// latCol/lonCol from center, with its arguments. It orders candidates well enough that
// the row limit keeps the nearest ones; the calculator ranks what is kept.
func planarDistance(center kernel.Location, latCol, lonCol string) (string, []any) {
	expr := fmt.Sprintf(
		"power(%[1]s - ?, 2) + power(least(abs(%[2]s - ?), 360 - abs(%[2]s - ?)) * ?, 2)",
		latCol, lonCol,
	)
	return expr, []any{
		center.Latitude(),
		center.Longitude(),
		center.Longitude(),
		math.Cos(center.Latitude() * math.Pi / 180),
	}
}

func validateRadius(point kernel.Location, maxMeters float64) error {
	if err := point.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("point", err)
	}
	if maxMeters <= 0 || maxMeters > MaxNearbyRadiusMeters {
		return errs.NewValueIsOutOfRangeError("maxMeters", maxMeters, 0, MaxNearbyRadiusMeters)
	}
	return nil
}

// measure asks the calculator for every candidate's route from origin. Candidates the
// calculator fails on are logged and left out.
func measure[T any](
	ctx context.Context,
	calc ports.DistanceCalculator,
	logger *slog.Logger,
	origin kernel.Location,
	candidates []T,
	locate func(T) (kernel.Location, string),
) []services.Measured[T] {
	measured := make([]services.Measured[T], 0, len(candidates))
	for _, c := range candidates {
		loc, id := locate(c)
		route, err := calc.Distance(ctx, origin, loc)
		if err != nil {
			logger.WarnContext(ctx, "distance lookup failed, candidate dropped", "candidate", id, "error", err)
			continue
		}
		measured = append(measured, services.Measured[T]{Item: c, Meters: route.Meters, Seconds: route.Seconds})
	}
	return measured
}
