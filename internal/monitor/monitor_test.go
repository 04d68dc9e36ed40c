package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kanitw/stockroom/internal/history"
	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/models"
	"github.com/kanitw/stockroom/internal/rowstore/sqlite"
)

type captureNotifier struct {
	calls [][]models.Product
}

func (n *captureNotifier) NotifyLowStock(_ context.Context, products []models.Product) error {
	n.calls = append(n.calls, products)
	return nil
}

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "stockroom-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ldg := ledger.New(store, history.New(store))
	if err := ldg.Init(context.Background()); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return ldg
}

func TestCheckOnce(t *testing.T) {
	ldg := newTestLedger(t)
	ctx := context.Background()

	for _, p := range []ledger.StockUpdate{
		{Name: "Pen", Quantity: 2, Unit: "pcs"},
		{Name: "Eraser", Quantity: 50, Unit: "pcs"},
	} {
		if err := ldg.AddStock(ctx, p, "setup"); err != nil {
			t.Fatalf("AddStock failed: %v", err)
		}
	}

	notifier := &captureNotifier{}
	m := New(ldg, notifier, 5, time.Minute)

	if err := m.CheckOnce(ctx); err != nil {
		t.Fatalf("CheckOnce failed: %v", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.calls))
	}
	if len(notifier.calls[0]) != 1 || notifier.calls[0][0].Name != "Pen" {
		t.Errorf("unexpected low-stock set: %v", notifier.calls[0])
	}
}

func TestCheckOnceQuietWhenStocked(t *testing.T) {
	ldg := newTestLedger(t)
	ctx := context.Background()

	if err := ldg.AddStock(ctx, ledger.StockUpdate{Name: "Pen", Quantity: 50, Unit: "pcs"}, "setup"); err != nil {
		t.Fatalf("AddStock failed: %v", err)
	}

	notifier := &captureNotifier{}
	m := New(ldg, notifier, 5, time.Minute)

	if err := m.CheckOnce(ctx); err != nil {
		t.Fatalf("CheckOnce failed: %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("notifications = %d, want 0", len(notifier.calls))
	}
}
