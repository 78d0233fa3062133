package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit log categories. The engine writes these inside the same transaction
// as the state change they describe.
const (
	LogItemCreation         = "Item Creation"
	LogItemModification     = "Item Modification"
	LogItemDeletion         = "Item Deletion"
	LogRequestItemCreation  = "Request Item Creation"
	LogRequestItemDenial    = "Request Item Denial"
	LogApprovalLoan         = "Request Item Approval: Loan"
	LogApprovalDisburse     = "Request Item Approval: Disburse"
	LogLoanModify           = "Request Item Loan Modify"
	LogLoanToDisburse       = "Request Item Loan Changed to Disburse"
	LogBackfillApproval     = "Backfill Request Approval"
	LogBackfillSatisfied    = "Backfill Satisfied"
	LogTransactionCreation  = "Transaction Creation"
	LogUserCreation         = "User Creation"
)

// Log is an append-only audit record. The engine only writes logs; they are
// the surviving history for loans and requests that are later deleted.
type Log struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	ItemID           *uuid.UUID `json:"item_id,omitempty" db:"item_id"`
	RequestID        *uuid.UUID `json:"request_id,omitempty" db:"request_id"`
	InitiatingUserID uuid.UUID  `json:"initiating_user_id" db:"initiating_user_id"`
	AffectedUserID   *uuid.UUID `json:"affected_user_id,omitempty" db:"affected_user_id"`
	Category         string     `json:"category" db:"category"`
	Quantity         *int       `json:"quantity,omitempty" db:"quantity"`
	Message          string     `json:"message" db:"message"`
	Date             time.Time  `json:"date" db:"date"`
}

// LogFilter holds criteria for audit log listings.
type LogFilter struct {
	ItemID    *uuid.UUID `json:"item_id,omitempty"`
	RequestID *uuid.UUID `json:"request_id,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Category  string     `json:"category,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
