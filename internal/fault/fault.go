// Package fault defines the error kinds shared by the catalog, orders and
// reports packages. The HTTP layer maps each kind to a status code; the
// engine itself only ever returns one of these (wrapped) or a plain error
// for unexpected store failures.
package fault

import "fmt"

// Validation: malformed or rule-violating input (empty fields, out-of-range
// numbers, duplicate product within an order, non-unique product name).
type Validation struct {
	Reason string
}

func (e *Validation) Error() string { return e.Reason }

func Validationf(format string, args ...any) error {
	return &Validation{Reason: fmt.Sprintf(format, args...)}
}

// NotFound: a referenced product or order id does not exist.
type NotFound struct {
	Entity string
	ID     string
}

func (e *NotFound) Error() string { return fmt.Sprintf("%s not found: %s", e.Entity, e.ID) }

// InsufficientStock: requested quantity exceeds available stock.
type InsufficientStock struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStock) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Conflict: deletion blocked by existing references, or transactional
// contention the caller may retry.
type Conflict struct {
	Reason string
}

func (e *Conflict) Error() string { return e.Reason }

func Conflictf(format string, args ...any) error {
	return &Conflict{Reason: fmt.Sprintf(format, args...)}
}
