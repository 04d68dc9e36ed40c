package models

import "time"

// TimeFormat is the timestamp layout used in every sheet.
const TimeFormat = "2006-01-02 15:04:05"

// Product represents the current state of one inventory item.
type Product struct {
	// ID is the sequential numeric identifier assigned when the product
	// row is first created (count of existing rows + 1). It is never
	// reused as a lookup key; name is the identity.
	ID int

	// Name is the product name. Unique within the ledger, matched
	// case-insensitively.
	Name string

	// Quantity is the current stock count. Never negative.
	Quantity int

	// Unit is the unit label shown next to quantities (e.g. "pcs").
	Unit string

	// Price is the unit price. Zero means "unset".
	Price float64

	// Description is free-text product detail.
	Description string

	// ImageRef is an optional image URL. Stored as an opaque string.
	ImageRef string

	// LastUpdated is when the row was last written. Zero if the stored
	// cell is missing or unparseable.
	LastUpdated time.Time
}
