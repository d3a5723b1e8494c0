package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Status is the order lifecycle state. Values are persisted as-is.
type Status string

const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusPackaging      Status = "packaging"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusReturned       Status = "returned"
	StatusDamaged        Status = "damaged"
	StatusFailed         Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusPackaging,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
	StatusDamaged,
	StatusFailed,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

func (s Status) Validate() error {
	for _, known := range allStatuses {
		if s == known {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", string(s)))
}

func (s Status) String() string {
	return string(s)
}

// IsSettled reports whether the delivery leg is over for this status; no agent work can
// follow it.
func (s Status) IsSettled() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned, StatusDamaged, StatusFailed:
		return true
	default:
		return false
	}
}
