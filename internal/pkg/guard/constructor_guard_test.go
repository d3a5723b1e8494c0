package guard_test

import (
	"errors"
	"sync"
	"testing"

	"orderflow/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("constructed_guard_returns_nil", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_given_error", func(t *testing.T) {
		var g guard.ConstructorGuard
		expected := errors.New("checkout line not constructed")

		err := g.Validate(expected)

		require.Error(t, err)
		assert.Equal(t, expected, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type coupon struct {
		code    string
		percent int
		guard   guard.ConstructorGuard
	}

	errCouponNotConstructed := errors.New("coupon must be created via newCoupon")

	newCoupon := func(code string, percent int) (coupon, error) {
		if code == "" {
			return coupon{}, errors.New("code is required")
		}
		return coupon{code: code, percent: percent, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructor_built_value_is_valid", func(t *testing.T) {
		c, err := newCoupon("WELCOME10", 10)

		require.NoError(t, err)
		require.NoError(t, c.guard.Validate(errCouponNotConstructed))
		assert.Equal(t, "WELCOME10", c.code)
	})

	t.Run("literal_value_is_rejected", func(t *testing.T) {
		c := coupon{code: "WELCOME10", percent: 10}

		require.ErrorIs(t, c.guard.Validate(errCouponNotConstructed), errCouponNotConstructed)
	})

	t.Run("failed_constructor_returns_zero_value", func(t *testing.T) {
		c, err := newCoupon("", 10)

		require.Error(t, err)
		require.ErrorIs(t, c.guard.Validate(errCouponNotConstructed), errCouponNotConstructed)
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationErr := errors.New("not constructed")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(validationErr))
		}()
	}
	wg.Wait()
}
