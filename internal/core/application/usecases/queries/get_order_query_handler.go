package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// GetOrderQueryHandler reads an order straight from the tables the order repository
// writes, without loading the aggregate.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

type orderRow struct {
	ID                 uuid.UUID
	Number             string
	CustomerID         uuid.UUID
	SupplierID         uuid.UUID
	Status             string
	PaymentMethod      string
	PaymentStatus      string
	TransactionID      string
	DeliveryOption     string
	CouponCode         string
	Notes              string
	InvoiceRef         *string
	ReturnReason       string
	Subtotal           decimal.Decimal
	Discount           decimal.Decimal
	GST                decimal.Decimal `gorm:"column:gst"`
	PlatformFee        decimal.Decimal
	HandlingFee        decimal.Decimal
	DeliveryCharge     decimal.Decimal
	Total              decimal.Decimal
	DeliveryAgentID    *uuid.UUID
	DeliveryStatus     *string
	DeliveryAssignedAt *time.Time
	DeliveryLat        *float64
	DeliveryLon        *float64
	ChallengeExpiresAt *time.Time
	ShipRecipient      string
	ShipPhone          string
	ShipEmail          string
	ShipLine           string
	ShipCity           string
	ShipPostalCode     string
	ShipLat            float64
	ShipLon            float64
	EstimatedDelivery  time.Time
	DeliveredAt        *time.Time
	CreatedAt          time.Time
	Version            int
}

type itemRow struct {
	ProductID           uuid.UUID
	Quantity            int
	UnitPrice           decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	Variation           string
	LineTotal           decimal.Decimal
}

type historyRow struct {
	Status    string
	ActorID   uuid.UUID
	ActorRole string
	At        time.Time
	Note      string
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)
	id := query.OrderID().Bytes()

	var row orderRow
	result := db.Raw(`
		SELECT
			id, number, customer_id, supplier_id, status,
			payment_method, payment_status, transaction_id,
			delivery_option, coupon_code, notes, invoice_ref, return_reason,
			subtotal, discount, gst, platform_fee, handling_fee, delivery_charge, total,
			delivery_agent_id, delivery_status, delivery_assigned_at, delivery_lat, delivery_lon,
			challenge_expires_at,
			ship_recipient, ship_phone, ship_email, ship_line, ship_city, ship_postal_code, ship_lat, ship_lon,
			estimated_delivery, delivered_at, created_at, version
		FROM orders
		WHERE id = ?
	`, id).Scan(&row)
	if result.Error != nil {
		return GetOrderQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	if !canView(query.Actor(), row) {
		return GetOrderQueryResponse{}, errs.NewForbiddenError(query.Actor().String(), "order "+row.Number)
	}

	var items []itemRow
	if err := db.Raw(`
		SELECT product_id, quantity, unit_price, discounted_unit_price, variation, line_total
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, id).Scan(&items).Error; err != nil {
		return GetOrderQueryResponse{}, err
	}

	var history []historyRow
	if err := db.Raw(`
		SELECT status, actor_id, actor_role, at, note
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY seq
	`, id).Scan(&history).Error; err != nil {
		return GetOrderQueryResponse{}, err
	}

	return toOrderResponse(row, items, history)
}

func canView(actor kernel.Actor, row orderRow) bool {
	actorID := actor.ID().Bytes()
	switch actor.Role() {
	case kernel.RoleAdmin, kernel.RoleSystem:
		return true
	case kernel.RoleCustomer:
		return row.CustomerID == actorID
	case kernel.RoleSupplier:
		return row.SupplierID == actorID
	case kernel.RoleDeliveryAssociate:
		return row.DeliveryAgentID != nil && *row.DeliveryAgentID == actorID
	default:
		return false
	}
}

func toOrderResponse(row orderRow, items []itemRow, history []historyRow) (GetOrderQueryResponse, error) {
	var (
		resp GetOrderQueryResponse
		err  error
	)

	if resp.ID, err = kernel.UUIDFromBytes(row.ID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.CustomerID, err = kernel.UUIDFromBytes(row.CustomerID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.SupplierID, err = kernel.UUIDFromBytes(row.SupplierID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if resp.Address.Location, err = kernel.NewLocation(row.ShipLat, row.ShipLon); err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp.Number = row.Number
	resp.Status = row.Status
	resp.PaymentMethod = row.PaymentMethod
	resp.PaymentStatus = row.PaymentStatus
	resp.TransactionID = row.TransactionID
	resp.DeliveryOption = row.DeliveryOption
	resp.CouponCode = row.CouponCode
	resp.Notes = row.Notes
	resp.ReturnReason = row.ReturnReason
	if row.InvoiceRef != nil {
		resp.InvoiceRef = *row.InvoiceRef
	}
	resp.Charges = OrderCharges{
		Subtotal:       row.Subtotal,
		Discount:       row.Discount,
		GST:            row.GST,
		PlatformFee:    row.PlatformFee,
		HandlingFee:    row.HandlingFee,
		DeliveryCharge: row.DeliveryCharge,
		Total:          row.Total,
	}
	resp.Address.Recipient = row.ShipRecipient
	resp.Address.Phone = row.ShipPhone
	resp.Address.Email = row.ShipEmail
	resp.Address.Line = row.ShipLine
	resp.Address.City = row.ShipCity
	resp.Address.PostalCode = row.ShipPostalCode
	resp.EstimatedDelivery = row.EstimatedDelivery
	resp.DeliveredAt = row.DeliveredAt
	resp.CreatedAt = row.CreatedAt
	resp.Version = row.Version

	if resp.Delivery, err = toOrderDelivery(row); err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp.Items = make([]OrderItem, 0, len(items))
	for _, i := range items {
		productID, idErr := kernel.UUIDFromBytes(i.ProductID[:])
		if idErr != nil {
			return GetOrderQueryResponse{}, idErr
		}
		resp.Items = append(resp.Items, OrderItem{
			ProductID:           productID,
			Quantity:            i.Quantity,
			UnitPrice:           i.UnitPrice,
			DiscountedUnitPrice: i.DiscountedUnitPrice,
			Variation:           i.Variation,
			LineTotal:           i.LineTotal,
		})
	}

	resp.History = make([]OrderStatusChange, 0, len(history))
	for _, h := range history {
		actorID, idErr := kernel.UUIDFromBytes(h.ActorID[:])
		if idErr != nil {
			return GetOrderQueryResponse{}, idErr
		}
		resp.History = append(resp.History, OrderStatusChange{
			Status:    h.Status,
			ActorID:   actorID,
			ActorRole: h.ActorRole,
			At:        h.At,
			Note:      h.Note,
		})
	}

	return resp, nil
}

func toOrderDelivery(row orderRow) (*OrderDelivery, error) {
	if row.DeliveryAgentID == nil {
		return nil, nil
	}

	agentID, err := kernel.UUIDFromBytes(row.DeliveryAgentID[:])
	if err != nil {
		return nil, err
	}

	d := &OrderDelivery{
		AgentID:            agentID,
		ChallengeExpiresAt: row.ChallengeExpiresAt,
	}
	if row.DeliveryStatus != nil {
		d.Status = *row.DeliveryStatus
	}
	if row.DeliveryAssignedAt != nil {
		d.AssignedAt = *row.DeliveryAssignedAt
	}
	if row.DeliveryLat != nil && row.DeliveryLon != nil {
		loc, locErr := kernel.NewLocation(*row.DeliveryLat, *row.DeliveryLon)
		if locErr != nil {
			return nil, locErr
		}
		d.Location = &loc
	}
	return d, nil
}
