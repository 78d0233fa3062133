package models

import (
	"time"

	"github.com/google/uuid"
)

// AssetStatus tracks custody of an individually tagged unit.
type AssetStatus string

const (
	AssetInStock   AssetStatus = "in_stock"
	AssetLoaned    AssetStatus = "loaned"
	AssetDisbursed AssetStatus = "disbursed"
)

// Asset is one physical unit of an item whose HasAssets flag is set.
type Asset struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	ItemID    uuid.UUID   `json:"item_id" db:"item_id"`
	Tag       string      `json:"tag" db:"tag"`
	Status    AssetStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
