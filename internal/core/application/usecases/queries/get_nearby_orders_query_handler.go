package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

type GetNearbyOrdersQueryHandler struct {
	db       *gorm.DB
	distance ports.DistanceCalculator
	logger   *slog.Logger
}

func NewGetNearbyOrdersQueryHandler(
	db *gorm.DB,
	distance ports.DistanceCalculator,
	logger *slog.Logger,
) GetNearbyOrdersQueryHandler {
	return GetNearbyOrdersQueryHandler{
		db:       db,
		distance: distance,
		logger:   logger.With("component", "GetNearbyOrdersQueryHandler"),
	}
}

// Handle measures from the query point to each order's shipping address.
func (h GetNearbyOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetNearbyOrdersQuery,
) ([]GetNearbyOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	claimable := make([]string, 0, len(order.SelfClaimStatuses()))
	for _, s := range order.SelfClaimStatuses() {
		claimable = append(claimable, s.String())
	}

	within, boxArgs := boundingBox(query.Point(), query.MaxMeters()).within("ship_lat", "ship_lon")
	nearest, orderArgs := planarDistance(query.Point(), "ship_lat", "ship_lon")
	args := append([]any{claimable}, boxArgs...)
	args = append(append(args, orderArgs...), nearbyCandidateLimit)

	rows, err := h.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT
			id,
			number,
			status,
			ship_city,
			total,
			ship_lat,
			ship_lon
		FROM orders
		WHERE delivery_agent_id IS NULL
			AND status IN ?
			AND %s
		ORDER BY %s, created_at
		LIMIT ?
	`, within, nearest), args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]GetNearbyOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			id                   uuid.UUID
			number, status, city string
			total                decimal.Decimal
			lat, lon             float64
		)
		if err = rows.Scan(&id, &number, &status, &city, &total, &lat, &lon); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		location, locErr := kernel.NewLocation(lat, lon)
		if locErr != nil {
			return nil, locErr
		}
		candidates = append(candidates, GetNearbyOrdersQueryResponse{
			ID:       orderID,
			Number:   number,
			Status:   status,
			City:     city,
			Total:    total,
			Location: location,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	measured := measure(ctx, h.distance, h.logger, query.Point(), candidates,
		func(c GetNearbyOrdersQueryResponse) (kernel.Location, string) {
			return c.Location, c.Number
		})

	ranked := services.RankByDistance(measured, query.MaxMeters(), services.NearbyPageSize)
	result := make([]GetNearbyOrdersQueryResponse, 0, len(ranked))
	for _, m := range ranked {
		o := m.Item
		o.Meters = m.Meters
		o.Seconds = m.Seconds
		result = append(result, o)
	}
	return result, nil
}
