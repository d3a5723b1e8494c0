package queries

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order on behalf of actor. Admins see every order, customers
// and suppliers their own, delivery agents the orders assigned to them.
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID, actor)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.UUID
	actor   kernel.Actor

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID, actor kernel.Actor) (GetOrderQuery, error) {
	var idErr error
	if err := orderID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("orderID", err)
	}
	if err := errors.Join(idErr, actor.Validate()); err != nil {
		return GetOrderQuery{}, err
	}

	return GetOrderQuery{
		orderID: orderID,
		actor:   actor,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderQuery) Actor() kernel.Actor  { return q.actor }

// GetOrderQueryResponse is the read model of an order. Money values are rounded to
// two decimals as stored.
type GetOrderQueryResponse struct {
	ID                kernel.UUID
	Number            string
	CustomerID        kernel.UUID
	SupplierID        kernel.UUID
	Status            string
	PaymentMethod     string
	PaymentStatus     string
	TransactionID     string
	DeliveryOption    string
	CouponCode        string
	Notes             string
	InvoiceRef        string
	ReturnReason      string
	Charges           OrderCharges
	Items             []OrderItem
	History           []OrderStatusChange
	Delivery          *OrderDelivery
	Address           OrderAddress
	EstimatedDelivery time.Time
	DeliveredAt       *time.Time
	CreatedAt         time.Time
	Version           int
}

type OrderCharges struct {
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	GST            decimal.Decimal
	PlatformFee    decimal.Decimal
	HandlingFee    decimal.Decimal
	DeliveryCharge decimal.Decimal
	Total          decimal.Decimal
}

type OrderItem struct {
	ProductID           kernel.UUID
	Quantity            int
	UnitPrice           decimal.Decimal
	DiscountedUnitPrice decimal.Decimal
	Variation           string
	LineTotal           decimal.Decimal
}

type OrderStatusChange struct {
	Status    string
	ActorID   kernel.UUID
	ActorRole string
	At        time.Time
	Note      string
}

// OrderDelivery is set once an agent holds the order. ChallengeExpiresAt is set while
// a delivery challenge is outstanding.
type OrderDelivery struct {
	AgentID            kernel.UUID
	Status             string
	AssignedAt         time.Time
	Location           *kernel.Location
	ChallengeExpiresAt *time.Time
}

type OrderAddress struct {
	Recipient  string
	Phone      string
	Email      string
	Line       string
	City       string
	PostalCode string
	Location   kernel.Location
}
