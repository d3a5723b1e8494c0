package invoice_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/adapters/out/invoice"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

func newOrder(t *testing.T) *order.Order {
	t.Helper()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	point, err := kernel.NewLocation(12.9716, 77.5946)
	require.NoError(t, err)
	address, err := order.NewShippingAddress("Asha Rao", "+919800000001", "asha@example.com",
		"12 MG Road", "Bengaluru", "560001", point)
	require.NoError(t, err)
	item, err := order.NewItem(kernel.NewUUID(), 2, decimal.NewFromInt(100), decimal.NewFromInt(90), "M")
	require.NoError(t, err)
	charges, err := order.NewCharges(decimal.NewFromInt(180), decimal.Zero, decimal.NewFromInt(9),
		decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(40))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), "ORD-000042", order.Checkout{
		CustomerID:     kernel.NewUUID(),
		Address:        address,
		PaymentMethod:  order.PaymentPrepaidUPI,
		DeliveryOption: order.DeliveryStandard,
	}, kernel.NewUUID(), []order.Item{item}, charges, now.Add(48*time.Hour), now)
	require.NoError(t, err)
	return o
}

func TestHTTPRenderer_Render(t *testing.T) {
	o := newOrder(t)

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/invoices", r.URL.Path)
		assert.Equal(t, o.ID().String(), r.Header.Get("Idempotency-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ref":"INV-2025-0042"}`))
	}))
	defer srv.Close()

	renderer, err := invoice.NewHTTPRenderer(srv.URL+"/v1", time.Second)
	require.NoError(t, err)

	ref, err := renderer.Render(t.Context(), o)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0042", ref)

	assert.Equal(t, "ORD-000042", got["orderNumber"])
	assert.Equal(t, "prepaid_upi", got["paymentMethod"])
	assert.Equal(t, "239", got["total"])
	require.Len(t, got["lines"], 1)
	assert.Equal(t, "Asha Rao", got["billTo"].(map[string]any)["name"])
}

func TestHTTPRenderer_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusBadGateway, body: "upstream down"},
		{name: "empty ref", status: http.StatusOK, body: `{"ref":""}`},
		{name: "malformed body", status: http.StatusOK, body: `{"ref":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			renderer, err := invoice.NewHTTPRenderer(srv.URL, time.Second)
			require.NoError(t, err)

			ref, err := renderer.Render(t.Context(), newOrder(t))
			require.Error(t, err)
			assert.Empty(t, ref)
		})
	}
}

func TestNewHTTPRenderer_RequiresBaseURL(t *testing.T) {
	_, err := invoice.NewHTTPRenderer(" ", time.Second)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
