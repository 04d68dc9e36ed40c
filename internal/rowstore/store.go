// Package rowstore provides abstractions for the remote tabular store
// backing all durable state.
package rowstore

import "context"

// Row is one data row keyed by header column name. Cells are raw strings;
// callers own parsing.
type Row map[string]string

// Store defines the row-oriented contract the core requires from the
// backing table service. Sheets are 1-indexed with a header in row 1;
// data starts at row 2. Cell and range addresses use A1 notation.
//
// This abstraction allows swapping backends (Google Sheets for
// production, SQLite for local use and tests) without changing the
// ledger, history, or billing layers.
type Store interface {
	// EnsureSheet creates the named sheet with the given header if absent,
	// or repairs the header row if it is missing or malformed. Idempotent.
	EnsureSheet(ctx context.Context, sheet string, header []string) error

	// GetAllRows returns every data row of the sheet in storage order,
	// keyed by the header columns. Rows that are entirely empty are
	// skipped.
	GetAllRows(ctx context.Context, sheet string) ([]Row, error)

	// GetRow returns the raw cell values of one row (1-indexed, so row 1
	// is the header).
	GetRow(ctx context.Context, sheet string, rowIndex int) ([]string, error)

	// UpdateCell writes a single cell, e.g. UpdateCell(ctx, "Stock", "C5", "12").
	UpdateCell(ctx context.Context, sheet, cell, value string) error

	// UpdateRange writes a rectangular block of cells, e.g.
	// UpdateRange(ctx, "Bills", "A7:J7", rows).
	UpdateRange(ctx context.Context, sheet, rangeAddr string, values [][]string) error

	// AppendRow writes values into the first unused row, computed as the
	// current data-row count plus two (accounting for the header row).
	AppendRow(ctx context.Context, sheet string, values []string) error

	// Close releases any resources held by the store.
	Close() error
}
