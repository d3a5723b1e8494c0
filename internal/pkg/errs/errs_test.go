package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderflow/internal/pkg/errs"
)

func TestErrorMessagesAndSentinels(t *testing.T) {
	stale := errors.New("row changed since load")
	dbDown := errors.New("connection refused")

	tests := []struct {
		name     string
		err      error
		message  string
		sentinel error
	}{
		{
			name:     "order not found",
			err:      errs.NewObjectNotFoundError("order", "ORD-000042"),
			message:  "object not found: ORD-000042",
			sentinel: errs.ErrObjectNotFound,
		},
		{
			name:     "agent not found with cause",
			err:      errs.NewObjectNotFoundErrorWithCause("agent", "a-1", dbDown),
			message:  "object not found: param is: agent, ID is: a-1 (cause: connection refused)",
			sentinel: errs.ErrObjectNotFound,
		},
		{
			name:     "invalid coupon",
			err:      errs.NewValueIsInvalidError("coupon"),
			message:  "value is invalid: coupon",
			sentinel: errs.ErrValueIsInvalid,
		},
		{
			name:     "invalid pin code with cause",
			err:      errs.NewValueIsInvalidErrorWithCause("pinCode", errors.New("must be 6 digits")),
			message:  "value is invalid: pinCode (cause: must be 6 digits)",
			sentinel: errs.ErrValueIsInvalid,
		},
		{
			name:     "quantity out of range",
			err:      errs.NewValueIsOutOfRangeError("quantity", 0, 1, 100),
			message:  "value is invalid: 0 is quantity, min value is 1, max value is 100",
			sentinel: errs.ErrValueIsOutOfRange,
		},
		{
			name:     "latitude out of range with cause",
			err:      errs.NewValueIsOutOfRangeErrorWithCause("latitude", 91.5, -90, 90, errors.New("gps glitch")),
			message:  "value is invalid: 91.5 is latitude, min value is -90, max value is 90 (cause: gps glitch)",
			sentinel: errs.ErrValueIsOutOfRange,
		},
		{
			name:     "missing supplier",
			err:      errs.NewValueIsRequiredError("supplierID"),
			message:  "value is required: supplierID",
			sentinel: errs.ErrValueIsRequired,
		},
		{
			name:     "missing address with cause",
			err:      errs.NewValueIsRequiredErrorWithCause("address", errors.New("checkout without address")),
			message:  "value is required: address (cause: checkout without address)",
			sentinel: errs.ErrValueIsRequired,
		},
		{
			name:     "stale order version",
			err:      errs.NewVersionIsInvalidError("order version", stale),
			message:  "version is invalid: order version (cause: row changed since load)",
			sentinel: errs.ErrVersionIsInvalid,
		},
		{
			name:     "stale version without cause",
			err:      errs.NewVersionIsInvalidErrorWithCause("order version"),
			message:  "version is invalid: order version",
			sentinel: errs.ErrVersionIsInvalid,
		},
		{
			name:     "foreign supplier",
			err:      errs.NewForbiddenError("supplier:7", "order ORD-000012"),
			message:  "forbidden: supplier:7 may not access order ORD-000012",
			sentinel: errs.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			require.ErrorIs(t, fmt.Errorf("checkout: %w", tt.err), tt.sentinel)
		})
	}
}

func TestErrorFields(t *testing.T) {
	notFound := errs.NewObjectNotFoundError("product", 456)
	assert.Equal(t, "product", notFound.ParamName)
	assert.Equal(t, 456, notFound.ID)
	require.NoError(t, notFound.Cause)
	assert.Equal(t, "object not found: %!s(int=456)", notFound.Error())

	outOfRange := errs.NewValueIsOutOfRangeError("radius", 60000, 1, 50000)
	assert.Equal(t, 60000, outOfRange.Value)
	assert.Equal(t, 1, outOfRange.Min)
	assert.Equal(t, 50000, outOfRange.Max)

	forbidden := errs.NewForbiddenError("customer:42", "order ORD-000001")
	assert.Equal(t, "customer:42", forbidden.Actor)
	assert.Equal(t, "order ORD-000001", forbidden.Resource)
}

func TestOutOfRangeValueIsSanitized(t *testing.T) {
	err := errs.NewValueIsOutOfRangeError("note", "left at\r\nthe gate", 0, 10)

	assert.Contains(t, err.Error(), "left at the gate")
	assert.NotContains(t, err.Error(), "\n")
	assert.NotContains(t, err.Error(), "\r")
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		errs.ErrObjectNotFound,
		errs.ErrValueIsInvalid,
		errs.ErrValueIsOutOfRange,
		errs.ErrValueIsRequired,
		errs.ErrVersionIsInvalid,
		errs.ErrForbidden,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}
