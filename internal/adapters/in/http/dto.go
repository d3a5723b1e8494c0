package http

import (
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"
)

type AddressRequest struct {
	Recipient  string  `json:"recipient"`
	Phone      string  `json:"phone"`
	Email      string  `json:"email"`
	Line       string  `json:"line"`
	City       string  `json:"city"`
	PostalCode string  `json:"postalCode"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

type CheckoutLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Variation string `json:"variation"`
}

type CheckoutRequest struct {
	Lines          []CheckoutLineRequest `json:"lines"`
	Address        AddressRequest        `json:"address"`
	PaymentMethod  string                `json:"paymentMethod"`
	DeliveryOption string                `json:"deliveryOption"`
	CouponCode     string                `json:"couponCode"`
	Notes          string                `json:"notes"`
}

type TransitionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type AssignmentRequest struct {
	AgentID string `json:"agentId"`
}

type DeliveryStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type LocationRequest struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Note string  `json:"note"`
}

type VerifyRequest struct {
	Code      string `json:"code"`
	QRPayload string `json:"qrPayload"`
}

type PaymentEvent struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

type OrderSummary struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	SupplierID        string          `json:"supplierId"`
	Status            string          `json:"status"`
	DeliveryStatus    string          `json:"deliveryStatus,omitempty"`
	PaymentStatus     string          `json:"paymentStatus"`
	Total             decimal.Decimal `json:"total"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	Version           int             `json:"version"`
}

func summaryOf(o *order.Order) OrderSummary {
	return OrderSummary{
		ID:                o.ID().String(),
		Number:            o.Number(),
		SupplierID:        o.SupplierID().String(),
		Status:            string(o.Status()),
		DeliveryStatus:    string(o.Delivery().Status()),
		PaymentStatus:     string(o.PaymentStatus()),
		Total:             o.Charges().Total(),
		EstimatedDelivery: o.EstimatedDelivery(),
		Version:           o.Version(),
	}
}

type ChallengeResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

type InvoiceResponse struct {
	Decision string `json:"decision"`
	Rendered bool   `json:"rendered"`
	Ref      string `json:"ref,omitempty"`
}

func invoiceOf(r commands.TriggerInvoiceResult) InvoiceResponse {
	return InvoiceResponse{Decision: r.Decision.String(), Rendered: r.Rendered, Ref: r.Ref}
}

type NearbyAgent struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Meters  float64 `json:"meters"`
	Seconds float64 `json:"seconds"`
}

type NearbyOrder struct {
	ID      string          `json:"id"`
	Number  string          `json:"number"`
	Status  string          `json:"status"`
	City    string          `json:"city"`
	Total   decimal.Decimal `json:"total"`
	Lat     float64         `json:"lat"`
	Lon     float64         `json:"lon"`
	Meters  float64         `json:"meters"`
	Seconds float64         `json:"seconds"`
}

type OrderView struct {
	ID                string         `json:"id"`
	Number            string         `json:"number"`
	CustomerID        string         `json:"customerId"`
	SupplierID        string         `json:"supplierId"`
	Status            string         `json:"status"`
	PaymentMethod     string         `json:"paymentMethod"`
	PaymentStatus     string         `json:"paymentStatus"`
	TransactionID     string         `json:"transactionId,omitempty"`
	DeliveryOption    string         `json:"deliveryOption"`
	CouponCode        string         `json:"couponCode,omitempty"`
	Notes             string         `json:"notes,omitempty"`
	InvoiceRef        string         `json:"invoiceRef,omitempty"`
	ReturnReason      string         `json:"returnReason,omitempty"`
	Charges           ChargesView    `json:"charges"`
	Items             []ItemView     `json:"items"`
	History           []StatusView   `json:"history"`
	Delivery          *DeliveryView  `json:"delivery,omitempty"`
	Address           AddressRequest `json:"address"`
	EstimatedDelivery time.Time      `json:"estimatedDelivery"`
	DeliveredAt       *time.Time     `json:"deliveredAt,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	Version           int            `json:"version"`
}

type ChargesView struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	GST            decimal.Decimal `json:"gst"`
	PlatformFee    decimal.Decimal `json:"platformFee"`
	HandlingFee    decimal.Decimal `json:"handlingFee"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Total          decimal.Decimal `json:"total"`
}

type ItemView struct {
	ProductID           string          `json:"productId"`
	Quantity            int             `json:"quantity"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	DiscountedUnitPrice decimal.Decimal `json:"discountedUnitPrice"`
	Variation           string          `json:"variation,omitempty"`
	LineTotal           decimal.Decimal `json:"lineTotal"`
}

type StatusView struct {
	Status    string    `json:"status"`
	ActorID   string    `json:"actorId"`
	ActorRole string    `json:"actorRole"`
	At        time.Time `json:"at"`
	Note      string    `json:"note,omitempty"`
}

type DeliveryView struct {
	AgentID            string     `json:"agentId"`
	Status             string     `json:"status"`
	AssignedAt         time.Time  `json:"assignedAt"`
	Lat                *float64   `json:"lat,omitempty"`
	Lon                *float64   `json:"lon,omitempty"`
	ChallengeExpiresAt *time.Time `json:"challengeExpiresAt,omitempty"`
}

func orderViewOf(r queries.GetOrderQueryResponse) OrderView {
	v := OrderView{
		ID:             r.ID.String(),
		Number:         r.Number,
		CustomerID:     r.CustomerID.String(),
		SupplierID:     r.SupplierID.String(),
		Status:         r.Status,
		PaymentMethod:  r.PaymentMethod,
		PaymentStatus:  r.PaymentStatus,
		TransactionID:  r.TransactionID,
		DeliveryOption: r.DeliveryOption,
		CouponCode:     r.CouponCode,
		Notes:          r.Notes,
		InvoiceRef:     r.InvoiceRef,
		ReturnReason:   r.ReturnReason,
		Charges: ChargesView{
			Subtotal:       r.Charges.Subtotal,
			Discount:       r.Charges.Discount,
			GST:            r.Charges.GST,
			PlatformFee:    r.Charges.PlatformFee,
			HandlingFee:    r.Charges.HandlingFee,
			DeliveryCharge: r.Charges.DeliveryCharge,
			Total:          r.Charges.Total,
		},
		Items:   make([]ItemView, 0, len(r.Items)),
		History: make([]StatusView, 0, len(r.History)),
		Address: AddressRequest{
			Recipient:  r.Address.Recipient,
			Phone:      r.Address.Phone,
			Email:      r.Address.Email,
			Line:       r.Address.Line,
			City:       r.Address.City,
			PostalCode: r.Address.PostalCode,
			Lat:        r.Address.Location.Latitude(),
			Lon:        r.Address.Location.Longitude(),
		},
		EstimatedDelivery: r.EstimatedDelivery,
		DeliveredAt:       r.DeliveredAt,
		CreatedAt:         r.CreatedAt,
		Version:           r.Version,
	}

	for _, it := range r.Items {
		v.Items = append(v.Items, ItemView{
			ProductID:           it.ProductID.String(),
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			DiscountedUnitPrice: it.DiscountedUnitPrice,
			Variation:           it.Variation,
			LineTotal:           it.LineTotal,
		})
	}
	for _, h := range r.History {
		v.History = append(v.History, StatusView{
			Status:    h.Status,
			ActorID:   h.ActorID.String(),
			ActorRole: h.ActorRole,
			At:        h.At,
			Note:      h.Note,
		})
	}
	if d := r.Delivery; d != nil {
		v.Delivery = &DeliveryView{
			AgentID:            d.AgentID.String(),
			Status:             d.Status,
			AssignedAt:         d.AssignedAt,
			ChallengeExpiresAt: d.ChallengeExpiresAt,
		}
		if d.Location != nil {
			lat, lon := d.Location.Latitude(), d.Location.Longitude()
			v.Delivery.Lat, v.Delivery.Lon = &lat, &lon
		}
	}
	return v
}
