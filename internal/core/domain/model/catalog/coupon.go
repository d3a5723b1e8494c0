package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCouponIsNotConstructed = errs.NewValueIsRequiredError("coupon must be created via NewCoupon")

// Coupon is a percentage discount on an order subtotal.
type Coupon struct {
	code      string
	percent   decimal.Decimal
	expiresAt *time.Time
	active    bool
	guard     guard.ConstructorGuard
}

// NewCoupon creates a coupon. Percent is a value in [0..100]; a nil expiresAt never expires.
func NewCoupon(code string, percent decimal.Decimal, expiresAt *time.Time, active bool) (*Coupon, error) {
	var codeErr, percentErr error
	if strings.TrimSpace(code) == "" {
		codeErr = errs.NewValueIsRequiredError("code")
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		percentErr = errs.NewValueIsOutOfRangeError("percent", percent.String(), 0, 100)
	}
	if err := errors.Join(codeErr, percentErr); err != nil {
		return nil, err
	}

	c := &Coupon{
		code:    NormalizeCode(code),
		percent: percent,
		active:  active,
		guard:   guard.NewConstructorGuard(),
	}
	if expiresAt != nil {
		e := expiresAt.UTC()
		c.expiresAt = &e
	}
	return c, nil
}

// NormalizeCode is the canonical form coupon codes are stored and looked up in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (c *Coupon) Code() string             { return c.code }
func (c *Coupon) Percent() decimal.Decimal { return c.percent }
func (c *Coupon) Active() bool             { return c.active }

func (c *Coupon) ExpiresAt() *time.Time {
	if c.expiresAt == nil {
		return nil
	}
	e := *c.expiresAt
	return &e
}

// AppliesAt reports whether the coupon can be redeemed at now.
func (c *Coupon) AppliesAt(now time.Time) bool {
	if c == nil || !c.active {
		return false
	}
	return c.expiresAt == nil || !now.After(*c.expiresAt)
}

func (c *Coupon) Validate() error {
	if c == nil {
		return ErrCouponIsNotConstructed
	}
	return c.guard.Validate(ErrCouponIsNotConstructed)
}
