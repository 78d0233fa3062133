package models

import (
	"time"

	"github.com/google/uuid"
)

// Loan is a temporary transfer of stock created when a loan-type requested
// item is approved. Stock is not decremented for loans; only disbursements
// move aggregate quantity. A loan is deleted once QuantityLoaned reaches
// zero, whether by return or by conversion; its history survives in the log.
type Loan struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	RequestID        uuid.UUID  `json:"request_id" db:"request_id"`
	ItemID           uuid.UUID  `json:"item_id" db:"item_id"`
	AssetID          *uuid.UUID `json:"asset_id,omitempty" db:"asset_id"`
	QuantityLoaned   int        `json:"quantity_loaned" db:"quantity_loaned"`
	QuantityReturned int        `json:"quantity_returned" db:"quantity_returned"`
	DateLoaned       time.Time  `json:"date_loaned" db:"date_loaned"`
	DateReturned     *time.Time `json:"date_returned,omitempty" db:"date_returned"`
	DueDate          *time.Time `json:"due_date,omitempty" db:"due_date"`
}

// Outstanding is the quantity loaned out and not yet returned.
func (l *Loan) Outstanding() int {
	return l.QuantityLoaned - l.QuantityReturned
}
