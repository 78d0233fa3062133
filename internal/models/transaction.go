package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionCategory is the direction of an administrative stock adjustment.
type TransactionCategory string

const (
	TransactionAcquisition TransactionCategory = "acquisition"
	TransactionLoss        TransactionCategory = "loss"
)

// Transaction is an administrator-created stock adjustment against an item
// with aggregate quantity tracking.
type Transaction struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	ItemID          uuid.UUID           `json:"item_id" db:"item_id"`
	AdministratorID uuid.UUID           `json:"administrator_id" db:"administrator_id"`
	Category        TransactionCategory `json:"category" db:"category"`
	Quantity        int                 `json:"quantity" db:"quantity"`
	Comment         string              `json:"comment" db:"comment"`
	Date            time.Time           `json:"date" db:"date"`
}
