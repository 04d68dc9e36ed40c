// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StockOperations counts ledger mutations by action (add, remove).
	StockOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_stock_operations_total",
		Help: "Number of stock ledger mutations by action.",
	}, []string{"action"})

	// BillsCreated counts completed bills.
	BillsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_bills_created_total",
		Help: "Number of bills created.",
	})

	// SaleAmount accumulates grand totals of completed bills.
	SaleAmount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockroom_sale_amount_total",
		Help: "Sum of grand totals across all completed bills.",
	})

	// HTTPRequests counts handled HTTP requests.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_http_requests_total",
		Help: "Number of HTTP requests by method and status code.",
	}, []string{"method", "status"})

	// HTTPDuration observes request latency in seconds.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockroom_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)
