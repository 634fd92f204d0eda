package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrSkuNotAssignedToStock is returned by stock configuration lookups
	// when the sku has no mapping to the stock. Callers skip, never abort.
	ErrSkuNotAssignedToStock = errors.New("sku is not assigned to stock")

	// ErrNoSuchEntity is returned when a sku does not map to a product.
	ErrNoSuchEntity = errors.New("no such entity")

	// ErrStockNotFound is returned when a stock id does not resolve.
	ErrStockNotFound = errors.New("stock not found")
)

// DeserializationError reports a corrupt reservation metadata blob.
type DeserializationError struct {
	Blob string
	Err  error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("unable to unserialize reservation metadata %q: %v", e.Blob, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

// ValidationError lists everything wrong with a reservation being built.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid reservation: " + strings.Join(e.Problems, "; ")
}
