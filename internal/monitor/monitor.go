// Package monitor periodically scans the ledger for products below a
// replenishment threshold and hands them to a notifier.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/models"
)

// Notifier receives the below-threshold products of one scan.
type Notifier interface {
	NotifyLowStock(ctx context.Context, products []models.Product) error
}

// SlogNotifier logs low-stock warnings through the default logger.
type SlogNotifier struct{}

func (SlogNotifier) NotifyLowStock(_ context.Context, products []models.Product) error {
	for _, p := range products {
		slog.Warn("Low stock", "product", p.Name, "quantity", p.Quantity, "unit", p.Unit)
	}
	return nil
}

// Monitor runs the periodic scan.
type Monitor struct {
	ledger    *ledger.Ledger
	notifier  Notifier
	threshold int
	interval  time.Duration
}

// New creates a Monitor that scans every interval for products with
// quantity below threshold.
func New(ldg *ledger.Ledger, notifier Notifier, threshold int, interval time.Duration) *Monitor {
	return &Monitor{ledger: ldg, notifier: notifier, threshold: threshold, interval: interval}
}

// Run scans on a ticker until ctx is cancelled. A failed scan is logged
// and retried on the next tick.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.CheckOnce(ctx); err != nil {
				slog.Error("Low-stock scan failed", "error", err)
			}
		}
	}
}

// CheckOnce performs a single scan-and-notify pass. Nothing is notified
// when no product is below the threshold.
func (m *Monitor) CheckOnce(ctx context.Context) error {
	low, err := m.ledger.CheckLowStock(ctx, m.threshold)
	if err != nil {
		return err
	}
	if len(low) == 0 {
		return nil
	}
	return m.notifier.NotifyLowStock(ctx, low)
}
