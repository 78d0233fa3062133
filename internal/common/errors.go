package common

import "fmt"

// The engine's error taxonomy. Every business rule violation is detected and
// rejected before any mutation is applied; all of these are recoverable at
// the HTTP boundary and map to a caller-visible failure.

// NotFoundError reports a failed entity lookup by name or id.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// PermissionError reports a failed role or ownership check.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return e.Reason
}

// InvalidStateError reports an operation attempted outside the entity's
// required lifecycle state, e.g. modifying a non-outstanding request.
type InvalidStateError struct {
	Entity string
	State  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s in state %q: %s", e.Entity, e.State, e.Reason)
}

// InsufficientStockError reports a disbursement or loss transaction that
// would drive an item's quantity negative.
type InsufficientStockError struct {
	Item      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("request for %d units of %q exceeds current stock of %d", e.Requested, e.Item, e.Available)
}

// OverReturnError reports a loan return that would push quantity_returned
// above quantity_loaned.
type OverReturnError struct {
	Loaned   int
	Returned int
	Delta    int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("returning %d units would exceed the %d loaned (%d already returned)", e.Delta, e.Loaned, e.Returned)
}

// InvalidQuantityError reports a conversion or adjustment quantity out of
// bounds.
type InvalidQuantityError struct {
	Quantity int
	Reason   string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d: %s", e.Quantity, e.Reason)
}

// EmptyCartError reports a cart submission with no entries.
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string {
	return "there are no items in your cart; add an item to your cart in order to request it"
}

// ValidationError reports malformed input shape.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FulfillmentError reports the requested item that made an approval
// impossible. Approval is atomic: when any line fails, the whole transaction
// rolls back and this error names the failing item.
type FulfillmentError struct {
	Item string
	Err  error
}

func (e *FulfillmentError) Error() string {
	return fmt.Sprintf("cannot fulfill requested item %q: %v", e.Item, e.Err)
}

func (e *FulfillmentError) Unwrap() error {
	return e.Err
}
