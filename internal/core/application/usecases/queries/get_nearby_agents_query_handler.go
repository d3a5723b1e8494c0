package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
)

// GetNearbyAgentsQueryHandler prefilters agents with a bounding box in SQL and ranks
// what is left by the distance calculator's route length.
type GetNearbyAgentsQueryHandler struct {
	db       *gorm.DB
	distance ports.DistanceCalculator
	logger   *slog.Logger
}

func NewGetNearbyAgentsQueryHandler(
	db *gorm.DB,
	distance ports.DistanceCalculator,
	logger *slog.Logger,
) GetNearbyAgentsQueryHandler {
	return GetNearbyAgentsQueryHandler{
		db:       db,
		distance: distance,
		logger:   logger.With("component", "GetNearbyAgentsQueryHandler"),
	}
}

func (h GetNearbyAgentsQueryHandler) Handle(
	ctx context.Context,
	query GetNearbyAgentsQuery,
) ([]GetNearbyAgentsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	within, args := boundingBox(query.Point(), query.MaxMeters()).within("location_lat", "location_lon")
	nearest, orderArgs := planarDistance(query.Point(), "location_lat", "location_lon")
	args = append(append(args, orderArgs...), nearbyCandidateLimit)

	rows, err := h.db.WithContext(ctx).Raw(fmt.Sprintf(`
		SELECT
			id,
			name,
			location_lat,
			location_lon
		FROM delivery_agents
		WHERE online AND verified
			AND %s
		ORDER BY %s, id
		LIMIT ?
	`, within, nearest), args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	candidates := make([]GetNearbyAgentsQueryResponse, 0)
	for rows.Next() {
		var (
			id       uuid.UUID
			name     string
			lat, lon float64
		)
		if err = rows.Scan(&id, &name, &lat, &lon); err != nil {
			return nil, err
		}

		agentID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		location, locErr := kernel.NewLocation(lat, lon)
		if locErr != nil {
			return nil, locErr
		}
		candidates = append(candidates, GetNearbyAgentsQueryResponse{
			ID:       agentID,
			Name:     name,
			Location: location,
		})
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	measured := measure(ctx, h.distance, h.logger, query.Point(), candidates,
		func(c GetNearbyAgentsQueryResponse) (kernel.Location, string) {
			return c.Location, c.ID.String()
		})

	ranked := services.RankByDistance(measured, query.MaxMeters(), services.NearbyPageSize)
	result := make([]GetNearbyAgentsQueryResponse, 0, len(ranked))
	for _, m := range ranked {
		agent := m.Item
		agent.Meters = m.Meters
		agent.Seconds = m.Seconds
		result = append(result, agent)
	}
	return result, nil
}
