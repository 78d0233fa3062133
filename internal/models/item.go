package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a stocked inventory entry. When HasAssets is true the aggregate
// Quantity is derived from the item's assets; otherwise Quantity is
// authoritative and mutated directly by transactions, disbursements and
// backfill bookkeeping.
type Item struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	ModelNumber  string    `json:"model_number" db:"model_number"`
	Description  string    `json:"description" db:"description"`
	Quantity     int       `json:"quantity" db:"quantity"`
	MinimumStock int       `json:"minimum_stock" db:"minimum_stock"`
	HasAssets    bool      `json:"has_assets" db:"has_assets"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// CustomFieldType enumerates the value types a custom field may carry.
type CustomFieldType string

const (
	FieldShortText CustomFieldType = "short_text"
	FieldLongText  CustomFieldType = "long_text"
	FieldInteger   CustomFieldType = "integer"
	FieldFloat     CustomFieldType = "float"
)

// CustomField is an administrator-defined per-item attribute schema entry.
type CustomField struct {
	Name      string          `json:"name" db:"name"`
	FieldType CustomFieldType `json:"field_type" db:"field_type"`
	// Private fields are only visible to administrators.
	Private bool `json:"private" db:"private"`
}

// CustomFieldValue holds one item's value for a custom field, stored as text
// and interpreted according to the field's type.
type CustomFieldValue struct {
	ItemID uuid.UUID `json:"item_id" db:"item_id"`
	Field  string    `json:"field" db:"field"`
	Value  string    `json:"value" db:"value"`
}

// ItemSearchFilter holds search criteria for item listings.
type ItemSearchFilter struct {
	Query       string   `json:"query,omitempty"`        // substring match on name, model number, description
	IncludeTags []string `json:"include_tags,omitempty"` // item must carry at least one
	ExcludeTags []string `json:"exclude_tags,omitempty"` // item must carry none
	LowStock    bool     `json:"low_stock,omitempty"`    // quantity below minimum_stock
	Limit       int      `json:"limit,omitempty"`
	Offset      int      `json:"offset,omitempty"`
}
