package models

import (
	"time"

	"github.com/google/uuid"
)

// BackfillStatus tracks whether replacement items for a written-off loan
// have arrived.
type BackfillStatus string

const (
	BackfillAwaitingItems BackfillStatus = "awaiting_items"
	BackfillSatisfied     BackfillStatus = "satisfied"
)

// Backfill closes out a loan's unreturned remainder. It is created only by
// approving a backfill request and captures the full remainder at approval
// time; partial backfills are not supported.
type Backfill struct {
	ID               uuid.UUID      `json:"id" db:"id"`
	RequestID        uuid.UUID      `json:"request_id" db:"request_id"`
	ItemID           uuid.UUID      `json:"item_id" db:"item_id"`
	Quantity         int            `json:"quantity" db:"quantity"`
	RequesterComment string         `json:"requester_comment" db:"requester_comment"`
	AdminComment     string         `json:"admin_comment" db:"admin_comment"`
	Receipt          string         `json:"receipt" db:"receipt"` // object storage key
	Status           BackfillStatus `json:"status" db:"status"`
	Date             time.Time      `json:"date" db:"date"`
}

// BackfillRequest is a requester's petition to formally write off an
// unreturned loan. It is cascade-deleted with its loan, and deleted on
// approval once the backfill record exists.
type BackfillRequest struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	LoanID           uuid.UUID     `json:"loan_id" db:"loan_id"`
	Status           RequestStatus `json:"status" db:"status"`
	RequesterComment string        `json:"requester_comment" db:"requester_comment"`
	AdminComment     string        `json:"admin_comment" db:"admin_comment"`
	Receipt          string        `json:"receipt" db:"receipt"`
	DateOpen         time.Time     `json:"date_open" db:"date_open"`
	DateClosed       *time.Time    `json:"date_closed,omitempty" db:"date_closed"`
}
