// Package invoice talks to the document service that renders customer invoices.
package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

var _ ports.InvoiceRenderer = (*HTTPRenderer)(nil)

// HTTPRenderer posts an order to {baseURL}/invoices and reads back the reference of the
// rendered document.
type HTTPRenderer struct {
	client   *http.Client
	endpoint string
}

func NewHTTPRenderer(baseURL string, timeout time.Duration) (*HTTPRenderer, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errs.NewValueIsRequiredError("baseURL")
	}
	endpoint, err := url.JoinPath(baseURL, "invoices")
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("baseURL", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPRenderer{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}, nil
}

type renderRequest struct {
	OrderID       string          `json:"orderId"`
	OrderNumber   string          `json:"orderNumber"`
	CustomerID    string          `json:"customerId"`
	SupplierID    string          `json:"supplierId"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus"`
	TransactionID string          `json:"transactionId,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	BillTo        billTo          `json:"billTo"`
	Lines         []line          `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	GST           decimal.Decimal `json:"gst"`
	PlatformFee   decimal.Decimal `json:"platformFee"`
	HandlingFee   decimal.Decimal `json:"handlingFee"`
	Delivery      decimal.Decimal `json:"deliveryCharge"`
	Total         decimal.Decimal `json:"total"`
}

type billTo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Line       string `json:"line"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

type line struct {
	ProductID string          `json:"productId"`
	Variation string          `json:"variation,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Price     decimal.Decimal `json:"discountedUnitPrice"`
	Total     decimal.Decimal `json:"lineTotal"`
}

type renderResponse struct {
	Ref string `json:"ref"`
}

// Render does not deduplicate; callers decide whether an order still needs an invoice.
func (r *HTTPRenderer) Render(ctx context.Context, o *order.Order) (string, error) {
	if o == nil {
		return "", errs.NewValueIsRequiredError("order")
	}

	body, err := json.Marshal(toRequest(o))
	if err != nil {
		return "", fmt.Errorf("encode invoice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build invoice request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", o.ID().String())

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoice service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("invoice service responded %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out renderResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode invoice response: %w", err)
	}
	if out.Ref == "" {
		return "", errs.NewValueIsRequiredError("invoice ref")
	}
	return out.Ref, nil
}

func toRequest(o *order.Order) renderRequest {
	a := o.Address()
	c := o.Charges()

	lines := make([]line, 0, len(o.Items()))
	for _, it := range o.Items() {
		lines = append(lines, line{
			ProductID: it.ProductID().String(),
			Variation: it.Variation(),
			Quantity:  it.Quantity(),
			UnitPrice: it.UnitPrice(),
			Price:     it.DiscountedUnitPrice(),
			Total:     it.LineTotal(),
		})
	}

	return renderRequest{
		OrderID:       o.ID().String(),
		OrderNumber:   o.Number(),
		CustomerID:    o.CustomerID().String(),
		SupplierID:    o.SupplierID().String(),
		PaymentMethod: string(o.PaymentMethod()),
		PaymentStatus: string(o.PaymentStatus()),
		TransactionID: o.TransactionID(),
		CreatedAt:     o.CreatedAt(),
		BillTo: billTo{
			Name:       a.Recipient(),
			Phone:      a.Phone(),
			Email:      a.Email(),
			Line:       a.Line(),
			City:       a.City(),
			PostalCode: a.PostalCode(),
		},
		Lines:       lines,
		Subtotal:    c.Subtotal(),
		Discount:    c.Discount(),
		GST:         c.GST(),
		PlatformFee: c.PlatformFee(),
		HandlingFee: c.HandlingFee(),
		Delivery:    c.DeliveryCharge(),
		Total:       c.Total(),
	}
}
