package models

import (
	"time"

	"github.com/google/uuid"
)

// Disbursement is a permanent transfer of stock out of inventory. It is
// append-only: disbursed items are never returned through this entity. For a
// given (item, request) pair without an asset, further disbursed quantity is
// folded into the existing record.
type Disbursement struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	RequestID uuid.UUID  `json:"request_id" db:"request_id"`
	ItemID    uuid.UUID  `json:"item_id" db:"item_id"`
	AssetID   *uuid.UUID `json:"asset_id,omitempty" db:"asset_id"`
	Quantity  int        `json:"quantity" db:"quantity"`
	Date      time.Time  `json:"date" db:"date"`
}
