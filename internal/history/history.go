// Package history maintains the append-only audit trail of ledger
// mutations and completed sales.
package history

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kanitw/stockroom/internal/models"
	"github.com/kanitw/stockroom/internal/rowstore"
)

// Sheet is the name of the history sheet.
const Sheet = "History"

// Header is the history sheet's column layout.
var Header = []string{"Date", "User", "Action", "ProductName", "Quantity", "Note"}

// Log records ledger mutations, one row per mutation. Rows are never
// updated or deleted.
type Log struct {
	store rowstore.Store
	now   func() time.Time
}

// New creates a Log over the given row store.
func New(store rowstore.Store) *Log {
	return &Log{store: store, now: time.Now}
}

// Init ensures the history sheet exists with the expected header.
func (l *Log) Init(ctx context.Context) error {
	return l.store.EnsureSheet(ctx, Sheet, Header)
}

// Record appends one history row. The sheet header is re-established
// first, so a deleted or malformed sheet heals on the next write.
func (l *Log) Record(ctx context.Context, actor string, action models.Action, productName string, quantity int, note string) error {
	if err := l.store.EnsureSheet(ctx, Sheet, Header); err != nil {
		return fmt.Errorf("failed to ensure history sheet: %w", err)
	}

	row := []string{
		l.now().Format(models.TimeFormat),
		actor,
		string(action),
		productName,
		strconv.Itoa(quantity),
		note,
	}
	if err := l.store.AppendRow(ctx, Sheet, row); err != nil {
		return fmt.Errorf("failed to append history row: %w", err)
	}
	return nil
}

// Recent returns up to limit records from the tail of the sheet, oldest
// first. Callers reverse for most-recent-first display.
func (l *Log) Recent(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	rows, err := l.store.GetAllRows(ctx, Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}

	out := make([]models.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		date, _ := time.ParseInLocation(models.TimeFormat, row["Date"], time.Local)
		qty, _ := strconv.Atoi(row["Quantity"])
		out = append(out, models.HistoryRecord{
			Date:        date,
			User:        row["User"],
			Action:      models.Action(row["Action"]),
			ProductName: row["ProductName"],
			Quantity:    qty,
			Note:        row["Note"],
		})
	}
	return out, nil
}
