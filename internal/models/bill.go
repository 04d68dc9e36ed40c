package models

import "time"

// BillItem is one line of input to bill creation: what is being sold.
// Quick-buy builds these directly; checkout converts cart items.
type BillItem struct {
	Name     string
	Quantity int
	Price    float64
	Unit     string
}

// BillLine is one persisted receipt row. A bill with N items occupies N
// consecutive rows sharing the same ReceiptNumber; GrandTotal and Notes
// are populated only on the final row of the bill.
type BillLine struct {
	// ReceiptNumber has the form YYYYMMDD-NNN where NNN is a zero-padded
	// per-day sequence starting at 1.
	ReceiptNumber string

	Date        time.Time
	Seller      string
	ProductName string
	Quantity    int
	Unit        string
	UnitPrice   float64
	LineTotal   float64

	// GrandTotal is the sum of all line totals of the bill. Zero on every
	// row except the last.
	GrandTotal float64

	// Notes is the free-text note for the bill. Empty on every row except
	// the last.
	Notes string
}
