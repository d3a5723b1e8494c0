package queries

import (
	"errors"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/guard"
)

var ErrGetNearbyOrdersQueryIsNotConstructed = errors.New(
	"GetNearbyOrdersQuery must be created via NewGetNearbyOrdersQuery constructor",
)

// GetNearbyOrdersQuery lists orders an agent could claim around a point: unassigned
// and pending or processing.
type GetNearbyOrdersQuery struct {
	point     kernel.Location
	maxMeters float64
	guard     guard.ConstructorGuard
}

func NewGetNearbyOrdersQuery(point kernel.Location, maxMeters float64) (GetNearbyOrdersQuery, error) {
	if err := validateRadius(point, maxMeters); err != nil {
		return GetNearbyOrdersQuery{}, err
	}
	return GetNearbyOrdersQuery{
		point:     point,
		maxMeters: maxMeters,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q GetNearbyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetNearbyOrdersQueryIsNotConstructed)
}

func (q GetNearbyOrdersQuery) Point() kernel.Location { return q.point }
func (q GetNearbyOrdersQuery) MaxMeters() float64     { return q.maxMeters }

type GetNearbyOrdersQueryResponse struct {
	ID       kernel.UUID
	Number   string
	Status   string
	City     string
	Total    decimal.Decimal
	Location kernel.Location
	Meters   float64
	Seconds  float64
}
