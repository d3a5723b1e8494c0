package catalog

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

var (
	// ErrProductNotFound wraps errs.ErrObjectNotFound so transport layers map it to 404.
	ErrProductNotFound = fmt.Errorf("product %w", errs.ErrObjectNotFound)
	// ErrInsufficientStock is returned when a product or variation cannot cover a quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrVariationNotFound is returned when a selector does not name a product variation.
	ErrVariationNotFound = fmt.Errorf("variation %w", errs.ErrObjectNotFound)
)
