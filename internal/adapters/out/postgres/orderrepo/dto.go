// Package orderrepo persists order aggregates: one row in orders, its lines in
// order_items and an append-only trail in order_status_history.
package orderrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderDTO is the orders row. Delivery and challenge state are flattened into
// prefixed columns; the challenge columns are all NULL while none is outstanding.
type OrderDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Number            string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	GST               decimal.Decimal `gorm:"column:gst;type:numeric(12,2);not null"`
	PlatformFee       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	HandlingFee       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryCharge    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total             decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod     string          `gorm:"type:varchar(32);not null"`
	PaymentStatus     string          `gorm:"type:varchar(16);not null"`
	TransactionID     string          `gorm:"type:varchar(128)"`
	Status            string          `gorm:"type:varchar(32);not null;index"`
	Delivery          DeliveryDTO     `gorm:"embedded;embeddedPrefix:delivery_"`
	Challenge         ChallengeDTO    `gorm:"embedded;embeddedPrefix:challenge_"`
	InvoiceRef        *string         `gorm:"type:varchar(128)"`
	ReturnReason      string          `gorm:"type:text"`
	DeliveredAt       *time.Time
	EstimatedDelivery time.Time
	Notes             string          `gorm:"type:text"`
	Address           AddressDTO      `gorm:"embedded;embeddedPrefix:ship_"`
	DeliveryOption    string          `gorm:"type:varchar(16);not null"`
	CouponCode        string          `gorm:"type:varchar(64)"`
	CreatedAt         time.Time       `gorm:"not null;index"`
	Version           int             `gorm:"not null"`

	Items   []ItemDTO         `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT"`
	History []StatusChangeDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:RESTRICT"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type DeliveryDTO struct {
	AgentID    *uuid.UUID `gorm:"type:uuid;index"`
	AssignedAt *time.Time
	Status     string     `gorm:"type:varchar(32)"`
	Lat        *float64
	Lon        *float64
}

type ChallengeDTO struct {
	CodeHash  *string    `gorm:"type:varchar(128)"`
	QRNonce   *string    `gorm:"column:qr_nonce;type:varchar(64)"`
	IssuedAt  *time.Time
	ExpiresAt *time.Time `gorm:"index"`
	Attempts  *int
}

type AddressDTO struct {
	Recipient  string  `gorm:"type:varchar(255);not null"`
	Phone      string  `gorm:"type:varchar(32);not null"`
	Email      string  `gorm:"type:varchar(255)"`
	Line       string  `gorm:"type:varchar(512);not null"`
	City       string  `gorm:"type:varchar(128);not null"`
	PostalCode string  `gorm:"type:varchar(16);not null"`
	Lat        float64 `gorm:"not null"`
	Lon        float64 `gorm:"not null"`
}

// ItemDTO is one order line. Lines are written once, with the order.
type ItemDTO struct {
	OrderID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position            int             `gorm:"primaryKey"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity            int             `gorm:"not null"`
	UnitPrice           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DiscountedUnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Variation           string          `gorm:"type:varchar(64)"`
	LineTotal           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (ItemDTO) TableName() string {
	return "order_items"
}

// StatusChangeDTO is one history row, keyed by its position in the order's trail.
type StatusChangeDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int       `gorm:"primaryKey"`
	Status    string    `gorm:"type:varchar(32);not null"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null"`
	ActorRole string    `gorm:"type:varchar(32);not null"`
	At        time.Time `gorm:"not null"`
	Note      string    `gorm:"type:text"`
}

func (StatusChangeDTO) TableName() string {
	return "order_status_history"
}

// fromDomain maps the order row. Items and history are mapped separately because
// they are written on different occasions.
func fromDomain(o *order.Order) OrderDTO {
	c := o.Charges()
	addr := o.Address()

	dto := OrderDTO{
		ID:                o.ID().Bytes(),
		Number:            o.Number(),
		CustomerID:        o.CustomerID().Bytes(),
		SupplierID:        o.SupplierID().Bytes(),
		Subtotal:          c.Subtotal(),
		Discount:          c.Discount(),
		GST:               c.GST(),
		PlatformFee:       c.PlatformFee(),
		HandlingFee:       c.HandlingFee(),
		DeliveryCharge:    c.DeliveryCharge(),
		Total:             c.Total(),
		PaymentMethod:     o.PaymentMethod().String(),
		PaymentStatus:     o.PaymentStatus().String(),
		TransactionID:     o.TransactionID(),
		Status:            o.Status().String(),
		Delivery:          deliveryFromDomain(o.Delivery()),
		Challenge:         challengeFromDomain(o.Challenge()),
		ReturnReason:      o.ReturnReason(),
		DeliveredAt:       o.DeliveredAt(),
		EstimatedDelivery: o.EstimatedDelivery(),
		Notes:             o.Notes(),
		Address: AddressDTO{
			Recipient:  addr.Recipient(),
			Phone:      addr.Phone(),
			Email:      addr.Email(),
			Line:       addr.Line(),
			City:       addr.City(),
			PostalCode: addr.PostalCode(),
			Lat:        addr.Point().Latitude(),
			Lon:        addr.Point().Longitude(),
		},
		DeliveryOption: string(o.DeliveryOption()),
		CouponCode:     o.CouponCode(),
		CreatedAt:      o.CreatedAt(),
		Version:        o.Version(),
	}
	if ref := o.InvoiceRef(); ref != "" {
		dto.InvoiceRef = &ref
	}
	return dto
}

func deliveryFromDomain(d order.Delivery) DeliveryDTO {
	agentID := d.AgentID()
	if agentID == nil {
		return DeliveryDTO{}
	}

	id := agentID.Bytes()
	assignedAt := d.AssignedAt()
	dto := DeliveryDTO{
		AgentID:    &id,
		AssignedAt: &assignedAt,
		Status:     d.Status().String(),
	}
	if loc := d.CurrentLocation(); loc != nil {
		lat, lon := loc.Latitude(), loc.Longitude()
		dto.Lat = &lat
		dto.Lon = &lon
	}
	return dto
}

func challengeFromDomain(c *order.Challenge) ChallengeDTO {
	if c == nil {
		return ChallengeDTO{}
	}

	hash, nonce := c.CodeHash(), c.QRNonce()
	issuedAt, expiresAt := c.IssuedAt(), c.ExpiresAt()
	attempts := c.Attempts()
	return ChallengeDTO{
		CodeHash:  &hash,
		QRNonce:   &nonce,
		IssuedAt:  &issuedAt,
		ExpiresAt: &expiresAt,
		Attempts:  &attempts,
	}
}

func itemsFromDomain(o *order.Order) []ItemDTO {
	items := o.Items()
	dtos := make([]ItemDTO, 0, len(items))
	for i, item := range items {
		dtos = append(dtos, ItemDTO{
			OrderID:             o.ID().Bytes(),
			Position:            i,
			ProductID:           item.ProductID().Bytes(),
			Quantity:            item.Quantity(),
			UnitPrice:           item.UnitPrice(),
			DiscountedUnitPrice: item.DiscountedUnitPrice(),
			Variation:           item.Variation(),
			LineTotal:           item.LineTotal(),
		})
	}
	return dtos
}

// historyFromDomain maps the entries an order has not persisted yet. Sequence numbers
// continue from the persisted trail.
func historyFromDomain(o *order.Order) []StatusChangeDTO {
	offset, entries := o.UnpersistedHistory()
	dtos := make([]StatusChangeDTO, 0, len(entries))
	for i, e := range entries {
		dtos = append(dtos, StatusChangeDTO{
			OrderID:   o.ID().Bytes(),
			Seq:       offset + i,
			Status:    e.Status.String(),
			ActorID:   e.ActorID.Bytes(),
			ActorRole: e.ActorRole.String(),
			At:        e.At,
			Note:      e.Note,
		})
	}
	return dtos
}

// toDomain restores an order from its row, lines and trail. Items and History must be
// ordered by position.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	supplierID, err := kernel.UUIDFromBytes(dto.SupplierID[:])
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, i := range dto.Items {
		productID, idErr := kernel.UUIDFromBytes(i.ProductID[:])
		if idErr != nil {
			return nil, idErr
		}
		item, itemErr := order.NewItem(productID, i.Quantity, i.UnitPrice, i.DiscountedUnitPrice, i.Variation)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	charges, err := order.RestoreCharges(dto.Subtotal, dto.Discount, dto.GST, dto.PlatformFee,
		dto.HandlingFee, dto.DeliveryCharge, dto.Total)
	if err != nil {
		return nil, err
	}

	history := make([]order.StatusChange, 0, len(dto.History))
	for _, h := range dto.History {
		change, changeErr := statusChangeToDomain(h)
		if changeErr != nil {
			return nil, changeErr
		}
		history = append(history, change)
	}

	delivery, err := deliveryToDomain(dto.Delivery)
	if err != nil {
		return nil, err
	}

	point, err := kernel.NewLocation(dto.Address.Lat, dto.Address.Lon)
	if err != nil {
		return nil, err
	}
	address, err := order.NewShippingAddress(dto.Address.Recipient, dto.Address.Phone, dto.Address.Email,
		dto.Address.Line, dto.Address.City, dto.Address.PostalCode, point)
	if err != nil {
		return nil, err
	}

	invoiceRef := ""
	if dto.InvoiceRef != nil {
		invoiceRef = *dto.InvoiceRef
	}

	return order.RestoreOrder(order.Snapshot{
		ID:                id,
		Number:            dto.Number,
		CustomerID:        customerID,
		SupplierID:        supplierID,
		Items:             items,
		Charges:           charges,
		PaymentMethod:     order.PaymentMethod(dto.PaymentMethod),
		PaymentStatus:     order.PaymentStatus(dto.PaymentStatus),
		TransactionID:     dto.TransactionID,
		Status:            order.Status(dto.Status),
		History:           history,
		Delivery:          delivery,
		Challenge:         challengeToDomain(dto.Challenge),
		InvoiceRef:        invoiceRef,
		ReturnReason:      dto.ReturnReason,
		DeliveredAt:       dto.DeliveredAt,
		EstimatedDelivery: dto.EstimatedDelivery,
		Notes:             dto.Notes,
		Address:           address,
		DeliveryOption:    order.DeliveryOption(dto.DeliveryOption),
		CouponCode:        dto.CouponCode,
		CreatedAt:         dto.CreatedAt,
		Version:           dto.Version,
	})
}

func statusChangeToDomain(dto StatusChangeDTO) (order.StatusChange, error) {
	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return order.StatusChange{}, err
	}
	role := kernel.Role(dto.ActorRole)
	if role != kernel.RoleSystem {
		if role, err = kernel.ParseRole(dto.ActorRole); err != nil {
			return order.StatusChange{}, err
		}
	}
	return order.StatusChange{
		Status:    order.Status(dto.Status),
		ActorID:   actorID,
		ActorRole: role,
		At:        dto.At,
		Note:      dto.Note,
	}, nil
}

func deliveryToDomain(dto DeliveryDTO) (order.Delivery, error) {
	if dto.AgentID == nil {
		return order.Delivery{}, nil
	}

	agentID, err := kernel.UUIDFromBytes(dto.AgentID[:])
	if err != nil {
		return order.Delivery{}, err
	}
	status, err := order.ParseDeliveryStatus(dto.Status)
	if err != nil {
		return order.Delivery{}, err
	}

	var assignedAt time.Time
	if dto.AssignedAt != nil {
		assignedAt = *dto.AssignedAt
	}

	var location *kernel.Location
	if dto.Lat != nil && dto.Lon != nil {
		loc, locErr := kernel.NewLocation(*dto.Lat, *dto.Lon)
		if locErr != nil {
			return order.Delivery{}, locErr
		}
		location = &loc
	}

	return order.RestoreDelivery(&agentID, assignedAt, status, location), nil
}

func challengeToDomain(dto ChallengeDTO) *order.Challenge {
	if dto.IssuedAt == nil || dto.ExpiresAt == nil {
		return nil
	}

	var hash, nonce string
	if dto.CodeHash != nil {
		hash = *dto.CodeHash
	}
	if dto.QRNonce != nil {
		nonce = *dto.QRNonce
	}
	attempts := 0
	if dto.Attempts != nil {
		attempts = *dto.Attempts
	}
	return order.RestoreChallenge(hash, nonce, *dto.IssuedAt, *dto.ExpiresAt, attempts)
}
