package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of a request. Only outstanding
// requests may be mutated or resolved.
type RequestStatus string

const (
	RequestOutstanding RequestStatus = "outstanding"
	RequestApproved    RequestStatus = "approved"
	RequestDenied      RequestStatus = "denied"
)

// Request is a user's submitted petition for one or more items. It owns its
// RequestedItems; deleting a request cascades to them and to any loans,
// disbursements and backfill records created from it.
type Request struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	RequesterID     uuid.UUID     `json:"requester_id" db:"requester_id"`
	AdministratorID *uuid.UUID    `json:"administrator_id,omitempty" db:"administrator_id"`
	Status          RequestStatus `json:"status" db:"status"`
	DateOpen        time.Time     `json:"date_open" db:"date_open"`
	OpenComment     string        `json:"open_comment" db:"open_comment"`
	DateClosed      *time.Time    `json:"date_closed,omitempty" db:"date_closed"`
	ClosedComment   string        `json:"closed_comment" db:"closed_comment"`

	Items []*RequestedItem `json:"items,omitempty"`
}

// RequestedItem is one line of a request. Immutable once the request is
// resolved; approval converts it into loan or disbursement records instead.
type RequestedItem struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	RequestID   uuid.UUID   `json:"request_id" db:"request_id"`
	ItemID      uuid.UUID   `json:"item_id" db:"item_id"`
	Quantity    int         `json:"quantity" db:"quantity"`
	RequestType RequestType `json:"request_type" db:"request_type"`
	DueDate     *time.Time  `json:"due_date,omitempty" db:"due_date"`
}

// RequestDecision is an administrator's verdict on an outstanding request or
// backfill request.
type RequestDecision string

const (
	DecisionApprove RequestDecision = "approve"
	DecisionDeny    RequestDecision = "deny"
)
