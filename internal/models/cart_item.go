package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestType distinguishes a temporary loan from a permanent disbursement.
// It is carried as a tag on cart items and requested items; the fulfillment
// step switches on it.
type RequestType string

const (
	RequestTypeLoan         RequestType = "loan"
	RequestTypeDisbursement RequestType = "disbursement"
)

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	return t == RequestTypeLoan || t == RequestTypeDisbursement
}

// CartItem stages a desired quantity of one item before a request exists.
// At most one cart entry exists per (owner, item); it is consumed and deleted
// when the owner's cart is submitted as a request.
type CartItem struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	OwnerID     uuid.UUID   `json:"owner_id" db:"owner_id"`
	ItemID      uuid.UUID   `json:"item_id" db:"item_id"`
	Quantity    int         `json:"quantity" db:"quantity"`
	RequestType RequestType `json:"request_type" db:"request_type"`
	DueDate     *time.Time  `json:"due_date,omitempty" db:"due_date"` // loans only
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}
