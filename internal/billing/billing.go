// Package billing allocates receipt numbers and converts line items into
// persisted bills, decrementing stock as it goes.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kanitw/stockroom/internal/history"
	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/metrics"
	"github.com/kanitw/stockroom/internal/models"
	"github.com/kanitw/stockroom/internal/rowstore"
)

// Sheet is the name of the bills sheet.
const Sheet = "Bills"

// Header is the bills sheet's column layout. GrandTotal and Notes are
// populated only on each bill's final row.
var Header = []string{"ReceiptNumber", "Date", "Seller", "ProductName", "Quantity", "Unit", "UnitPrice", "LineTotal", "GrandTotal", "Notes"}

const receiptDateFormat = "20060102"

// ErrNoItems reports a CreateBill call with an empty item list.
var ErrNoItems = errors.New("bill has no items")

// StockIssue describes one cart line that cannot be fulfilled from
// current stock. Missing is true when the product does not exist at all.
type StockIssue struct {
	Product   string `json:"product"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Unit      string `json:"unit,omitempty"`
	Missing   bool   `json:"missing"`
}

func (i StockIssue) String() string {
	if i.Missing {
		return fmt.Sprintf("%s: not in stock", i.Product)
	}
	return fmt.Sprintf("%s: insufficient stock (have %d, want %d)", i.Product, i.Available, i.Requested)
}

// Biller creates bills. Bill creation is serialized through an internal
// mutex so receipt numbers stay unique within one process; the read-count
// numbering scheme offers no cross-process guarantee.
type Biller struct {
	store  rowstore.Store
	ledger *ledger.Ledger
	hist   *history.Log

	mu  sync.Mutex
	now func() time.Time
}

// New creates a Biller over the given row store and ledger.
func New(store rowstore.Store, ldg *ledger.Ledger, hist *history.Log) *Biller {
	return &Biller{store: store, ledger: ldg, hist: hist, now: time.Now}
}

// Init ensures the bills sheet exists with the expected header.
func (b *Biller) Init(ctx context.Context) error {
	return b.store.EnsureSheet(ctx, Sheet, Header)
}

// NextReceiptNumber returns the receipt number the next bill would get:
// today's date prefix plus a 3-digit sequence, one past the count of
// distinct receipts already issued today.
func (b *Biller) NextReceiptNumber(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextReceiptNumberLocked(ctx)
}

func (b *Biller) nextReceiptNumberLocked(ctx context.Context) (string, error) {
	rows, err := b.store.GetAllRows(ctx, Sheet)
	if err != nil {
		return "", fmt.Errorf("failed to read bills: %w", err)
	}

	today := b.now().Format(receiptDateFormat)
	seen := make(map[string]bool)
	for _, row := range rows {
		number := row["ReceiptNumber"]
		if strings.HasPrefix(number, today) {
			seen[number] = true
		}
	}
	return fmt.Sprintf("%s-%03d", today, len(seen)+1), nil
}

// ValidateStock checks every item against current availability and
// returns one issue per failing line, so callers can report every
// problem at once instead of stopping at the first.
func (b *Biller) ValidateStock(ctx context.Context, items []models.BillItem) ([]StockIssue, error) {
	var issues []StockIssue
	for _, item := range items {
		product, err := b.ledger.CheckStock(ctx, item.Name)
		if errors.Is(err, ledger.ErrProductNotFound) {
			issues = append(issues, StockIssue{Product: item.Name, Requested: item.Quantity, Missing: true})
			continue
		}
		if err != nil {
			return nil, err
		}
		if product.Quantity < item.Quantity {
			issues = append(issues, StockIssue{
				Product:   product.Name,
				Requested: item.Quantity,
				Available: product.Quantity,
				Unit:      product.Unit,
			})
		}
	}
	return issues, nil
}

// CreateBill persists one receipt row per item, decrementing stock as a
// side effect of each line, and records a single "sale" history entry at
// the end. Writes are per-line with no joint commit point: a failure
// partway through leaves prior lines committed and their stock
// decremented.
//
// Returns the receipt number and grand total.
func (b *Biller) CreateBill(ctx context.Context, seller string, items []models.BillItem, notes string) (string, float64, error) {
	if len(items) == 0 {
		return "", 0, ErrNoItems
	}
	if err := b.store.EnsureSheet(ctx, Sheet, Header); err != nil {
		return "", 0, fmt.Errorf("failed to ensure bills sheet: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	number, err := b.nextReceiptNumberLocked(ctx)
	if err != nil {
		return "", 0, err
	}

	date := b.now().Format(models.TimeFormat)
	total := 0.0
	for i, item := range items {
		lineTotal := float64(item.Quantity) * item.Price
		total += lineTotal

		if _, err := b.ledger.RemoveStock(ctx, item.Name, item.Quantity, seller); err != nil {
			// Best-effort: the line is still billed. Callers validate
			// availability up front; a failure here means the product row
			// vanished or the store write failed mid-bill.
			slog.Warn("Failed to decrement stock for bill line",
				"receipt", number, "product", item.Name, "error", err)
		}

		last := i == len(items)-1
		grandTotal, lineNotes := "", ""
		if last {
			grandTotal = formatAmount(total)
			lineNotes = notes
		}

		row := []string{
			number,
			date,
			seller,
			item.Name,
			strconv.Itoa(item.Quantity),
			item.Unit,
			formatAmount(item.Price),
			formatAmount(lineTotal),
			grandTotal,
			lineNotes,
		}
		if err := b.store.AppendRow(ctx, Sheet, row); err != nil {
			return "", 0, fmt.Errorf("failed to write bill line %d of %s: %w", i+1, number, err)
		}
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	note := fmt.Sprintf("receipt: %s, total: %s", number, formatAmount(total))
	if err := b.hist.Record(ctx, seller, models.ActionSale, strings.Join(names, ", "), len(items), note); err != nil {
		slog.Warn("Failed to record sale history", "receipt", number, "error", err)
	}

	metrics.BillsCreated.Inc()
	metrics.SaleAmount.Add(total)
	slog.Info("Bill created", "receipt", number, "seller", seller, "lines", len(items), "total", total)

	return number, total, nil
}

// GetBillDetails returns every persisted line of one bill, in storage
// order. An unknown receipt number yields an empty slice.
func (b *Biller) GetBillDetails(ctx context.Context, receiptNumber string) ([]models.BillLine, error) {
	rows, err := b.store.GetAllRows(ctx, Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read bills: %w", err)
	}

	var lines []models.BillLine
	for _, row := range rows {
		if row["ReceiptNumber"] != receiptNumber {
			continue
		}
		date, _ := time.ParseInLocation(models.TimeFormat, row["Date"], time.Local)
		qty, _ := strconv.Atoi(row["Quantity"])
		unitPrice, _ := strconv.ParseFloat(row["UnitPrice"], 64)
		lineTotal, _ := strconv.ParseFloat(row["LineTotal"], 64)
		grandTotal, _ := strconv.ParseFloat(row["GrandTotal"], 64)
		lines = append(lines, models.BillLine{
			ReceiptNumber: row["ReceiptNumber"],
			Date:          date,
			Seller:        row["Seller"],
			ProductName:   row["ProductName"],
			Quantity:      qty,
			Unit:          row["Unit"],
			UnitPrice:     unitPrice,
			LineTotal:     lineTotal,
			GrandTotal:    grandTotal,
			Notes:         row["Notes"],
		})
	}
	return lines, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
