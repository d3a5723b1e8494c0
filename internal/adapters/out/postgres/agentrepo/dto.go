package agentrepo

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/agent"
	"orderflow/internal/core/domain/model/kernel"
)

// AgentDTO is the delivery_agents row. The last known position is NULL until the
// agent reports one.
type AgentDTO struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name                string          `gorm:"type:varchar(255);not null"`
	Phone               string          `gorm:"type:varchar(32);not null"`
	Online              bool            `gorm:"not null;index"`
	Verified            bool            `gorm:"not null"`
	Lat                 *float64        `gorm:"column:location_lat;index:idx_agent_location"`
	Lon                 *float64        `gorm:"column:location_lon;index:idx_agent_location"`
	CompletedDeliveries int             `gorm:"not null"`
	FailedDeliveries    int             `gorm:"not null"`
	TotalEarnings       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Version             int             `gorm:"not null"`
}

func (AgentDTO) TableName() string {
	return "delivery_agents"
}

func fromDomain(a *agent.Agent) AgentDTO {
	dto := AgentDTO{
		ID:                  a.ID().Bytes(),
		Name:                a.Name(),
		Phone:               a.Phone(),
		Online:              a.IsOnline(),
		Verified:            a.IsVerified(),
		CompletedDeliveries: a.CompletedDeliveries(),
		FailedDeliveries:    a.FailedDeliveries(),
		TotalEarnings:       a.TotalEarnings(),
		Version:             a.Version(),
	}
	if loc := a.Location(); loc != nil {
		lat, lon := loc.Latitude(), loc.Longitude()
		dto.Lat = &lat
		dto.Lon = &lon
	}
	return dto
}

func toDomain(dto AgentDTO) (*agent.Agent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.Location
	if dto.Lat != nil && dto.Lon != nil {
		loc, locErr := kernel.NewLocation(*dto.Lat, *dto.Lon)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return agent.RestoreAgent(id, dto.Name, dto.Phone, dto.Online, dto.Verified, location,
		dto.CompletedDeliveries, dto.FailedDeliveries, dto.TotalEarnings, dto.Version)
}
