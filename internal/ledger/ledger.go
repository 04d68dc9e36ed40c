// Package ledger owns the authoritative current-state table of products
// and quantities. All reads and writes of product rows go through it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kanitw/stockroom/internal/history"
	"github.com/kanitw/stockroom/internal/metrics"
	"github.com/kanitw/stockroom/internal/models"
	"github.com/kanitw/stockroom/internal/rowstore"
)

// Sheet is the name of the stock sheet.
const Sheet = "Stock"

// Header is the stock sheet's column layout. Column positions are fixed:
// in-place updates address cells by letter (C = Quantity, H = LastUpdated).
var Header = []string{"ID", "Name", "Quantity", "Unit", "Price", "Description", "ImageRef", "LastUpdated"}

// Column numbers within Header, 1-indexed for A1 addressing.
const (
	colQuantity    = 3
	colPrice       = 5
	colDescription = 6
	colImageRef    = 7
	colLastUpdated = 8
)

var (
	// ErrProductNotFound reports a lookup by a name no product row has.
	ErrProductNotFound = errors.New("product not found")
)

// StockUpdate carries the fields of an AddStock call.
//
// On re-add of an existing product the quantity accumulates, while
// Price, Description, and ImageRef follow a sparse-update contract:
// zero values leave the stored field untouched, so re-adding without a
// price does not erase one set earlier.
type StockUpdate struct {
	Name        string
	Quantity    int
	Unit        string
	Price       float64
	Description string
	ImageRef    string
}

// Ledger provides add/remove/query operations over the stock sheet.
type Ledger struct {
	store rowstore.Store
	hist  *history.Log
	now   func() time.Time
}

// New creates a Ledger over the given row store, recording every
// mutation to hist.
func New(store rowstore.Store, hist *history.Log) *Ledger {
	return &Ledger{store: store, hist: hist, now: time.Now}
}

// Init ensures the stock sheet exists with the expected header.
func (l *Ledger) Init(ctx context.Context) error {
	return l.store.EnsureSheet(ctx, Sheet, Header)
}

// AddStock increments an existing product's quantity or creates a new
// product row, then appends an "add" history record. Metadata fields
// follow the sparse-update contract documented on StockUpdate.
func (l *Ledger) AddStock(ctx context.Context, upd StockUpdate, actor string) error {
	if err := l.store.EnsureSheet(ctx, Sheet, Header); err != nil {
		return fmt.Errorf("failed to ensure stock sheet: %w", err)
	}

	rows, err := l.store.GetAllRows(ctx, Sheet)
	if err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}

	now := l.now().Format(models.TimeFormat)
	found := false
	for i, row := range rows {
		if !strings.EqualFold(row["Name"], upd.Name) {
			continue
		}
		rowIndex := i + 2 // data starts below the header row

		current, _ := strconv.Atoi(row["Quantity"])
		newQuantity := current + upd.Quantity
		if err := l.store.UpdateCell(ctx, Sheet, rowstore.Cell(colQuantity, rowIndex), strconv.Itoa(newQuantity)); err != nil {
			return fmt.Errorf("failed to update quantity: %w", err)
		}
		if err := l.store.UpdateCell(ctx, Sheet, rowstore.Cell(colLastUpdated, rowIndex), now); err != nil {
			return fmt.Errorf("failed to update timestamp: %w", err)
		}

		if upd.Price > 0 {
			if err := l.store.UpdateCell(ctx, Sheet, rowstore.Cell(colPrice, rowIndex), formatPrice(upd.Price)); err != nil {
				return fmt.Errorf("failed to update price: %w", err)
			}
		}
		if upd.Description != "" {
			if err := l.store.UpdateCell(ctx, Sheet, rowstore.Cell(colDescription, rowIndex), upd.Description); err != nil {
				return fmt.Errorf("failed to update description: %w", err)
			}
		}
		if upd.ImageRef != "" {
			if err := l.store.UpdateCell(ctx, Sheet, rowstore.Cell(colImageRef, rowIndex), upd.ImageRef); err != nil {
				return fmt.Errorf("failed to update image ref: %w", err)
			}
		}

		found = true
		slog.Info("Stock updated", "product", row["Name"], "added", upd.Quantity, "quantity", newQuantity, "actor", actor)
		break
	}

	if !found {
		row := []string{
			strconv.Itoa(len(rows) + 1),
			upd.Name,
			strconv.Itoa(upd.Quantity),
			upd.Unit,
			formatPrice(upd.Price),
			upd.Description,
			upd.ImageRef,
			now,
		}
		if err := l.store.AppendRow(ctx, Sheet, row); err != nil {
			return fmt.Errorf("failed to append product row: %w", err)
		}
		slog.Info("Product created", "product", upd.Name, "quantity", upd.Quantity, "actor", actor)
	}

	metrics.StockOperations.WithLabelValues(string(models.ActionAdd)).Inc()

	note := fmt.Sprintf("unit: %s, price: %s", upd.Unit, formatPrice(upd.Price))
	if err := l.hist.Record(ctx, actor, models.ActionAdd, upd.Name, upd.Quantity, note); err != nil {
		// The stock write already succeeded; a history failure is logged,
		// not surfaced.
		slog.Warn("Failed to record add history", "product", upd.Name, "error", err)
	}
	return nil
}

// RemoveStock decrements a product's quantity, clamping at zero, and
// returns the remaining quantity. Returns ErrProductNotFound if no row
// matches the name.
func (l *Ledger) RemoveStock(ctx context.Context, name string, quantity int, actor string) (int, error) {
	rows, err := l.store.GetAllRows(ctx, Sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read stock: %w", err)
	}

	for i, row := range rows {
		if !strings.EqualFold(row["Name"], name) {
			continue
		}
		rowIndex := i + 2

		current, _ := strconv.Atoi(row["Quantity"])
		remaining := max(0, current-quantity)
		if err := l.store.UpdateCell(ctx, Sheet, rowstore.Cell(colQuantity, rowIndex), strconv.Itoa(remaining)); err != nil {
			return 0, fmt.Errorf("failed to update quantity: %w", err)
		}
		if err := l.store.UpdateCell(ctx, Sheet, rowstore.Cell(colLastUpdated, rowIndex), l.now().Format(models.TimeFormat)); err != nil {
			return 0, fmt.Errorf("failed to update timestamp: %w", err)
		}

		metrics.StockOperations.WithLabelValues(string(models.ActionRemove)).Inc()
		slog.Info("Stock removed", "product", row["Name"], "removed", quantity, "remaining", remaining, "actor", actor)

		if err := l.hist.Record(ctx, actor, models.ActionRemove, name, quantity, fmt.Sprintf("remaining: %d", remaining)); err != nil {
			slog.Warn("Failed to record remove history", "product", name, "error", err)
		}
		return remaining, nil
	}

	return 0, ErrProductNotFound
}

// CheckStock returns the product with the given name (case-insensitive,
// exact match) or ErrProductNotFound.
func (l *Ledger) CheckStock(ctx context.Context, name string) (*models.Product, error) {
	rows, err := l.store.GetAllRows(ctx, Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}
	for _, row := range rows {
		if strings.EqualFold(row["Name"], name) {
			p := productFromRow(row)
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

// GetAllStock returns a snapshot of every product row.
func (l *Ledger) GetAllStock(ctx context.Context) ([]models.Product, error) {
	rows, err := l.store.GetAllRows(ctx, Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}
	out := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, productFromRow(row))
	}
	return out, nil
}

// CheckLowStock returns every product whose quantity is below threshold.
func (l *Ledger) CheckLowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	all, err := l.GetAllStock(ctx)
	if err != nil {
		return nil, err
	}
	var low []models.Product
	for _, p := range all {
		if p.Quantity < threshold {
			low = append(low, p)
		}
	}
	return low, nil
}

// productFromRow parses one sheet row. Unparseable numeric cells become
// zero rather than failing the whole read.
func productFromRow(row rowstore.Row) models.Product {
	id, _ := strconv.Atoi(row["ID"])
	qty, _ := strconv.Atoi(row["Quantity"])
	price, _ := strconv.ParseFloat(row["Price"], 64)
	updated, _ := time.ParseInLocation(models.TimeFormat, row["LastUpdated"], time.Local)
	return models.Product{
		ID:          id,
		Name:        row["Name"],
		Quantity:    qty,
		Unit:        row["Unit"],
		Price:       price,
		Description: row["Description"],
		ImageRef:    row["ImageRef"],
		LastUpdated: updated,
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
