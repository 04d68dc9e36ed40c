package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kanitw/stockroom/internal/auth"
	"github.com/kanitw/stockroom/internal/billing"
	"github.com/kanitw/stockroom/internal/cart"
	"github.com/kanitw/stockroom/internal/history"
	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/middleware"
	"github.com/kanitw/stockroom/internal/monitor"
	"github.com/kanitw/stockroom/internal/rowstore"
	"github.com/kanitw/stockroom/internal/rowstore/sheets"
	"github.com/kanitw/stockroom/internal/rowstore/sqlite"
	"github.com/kanitw/stockroom/internal/service"
	"github.com/kanitw/stockroom/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Ignoring non-numeric env value", "key", key, "value", value)
	}
	return fallback
}

// newStore picks the row-store backend: Google Sheets when a spreadsheet
// ID is configured, a local SQLite database otherwise.
func newStore(ctx context.Context) (rowstore.Store, error) {
	if spreadsheetID := os.Getenv("SHEETS_SPREADSHEET_ID"); spreadsheetID != "" {
		credentials := getEnv("SHEETS_CREDENTIALS_FILE", "credentials.json")
		slog.Info("Using Google Sheets backend", "spreadsheet_id", spreadsheetID)
		return sheets.New(ctx, spreadsheetID, credentials)
	}

	dbPath := getEnv("DB_PATH", "./data/stockroom.db")
	slog.Info("Using SQLite backend", "database", dbPath)
	return sqlite.New(dbPath)
}

func main() {
	logging.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx)
	if err != nil {
		slog.Error("Failed to initialize row store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	hist := history.New(store)
	ldg := ledger.New(store, hist)
	biller := billing.New(store, ldg, hist)
	sellerStore := auth.NewSellerStore(store)

	// Establish every sheet up front so the first command doesn't pay
	// for header repair.
	for name, init := range map[string]func(context.Context) error{
		"stock":   ldg.Init,
		"history": hist.Init,
		"bills":   biller.Init,
		"sellers": sellerStore.Init,
	} {
		if err := init(ctx); err != nil {
			slog.Error("Failed to initialize sheet", "sheet", name, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("Row store initialized")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	jwtManager := auth.NewJWTManager(jwtSecret, 24*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(sellerStore)
	authed := middleware.RequireAuth(jwtManager)

	carts := cart.NewStore()

	mux := http.NewServeMux()
	service.NewAuthService(authenticator, jwtManager).RegisterRoutes(mux)
	service.NewInventoryService(ldg, hist).RegisterRoutes(mux, authed)
	service.NewBillingService(biller, ldg).RegisterRoutes(mux, authed)
	service.NewCartService(carts, ldg, biller).RegisterRoutes(mux, authed)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Background low-stock scan
	threshold := getEnvInt("LOW_STOCK_THRESHOLD", 5)
	interval := time.Duration(getEnvInt("LOW_STOCK_INTERVAL", 1800)) * time.Second
	go monitor.New(ldg, monitor.SlogNotifier{}, threshold, interval).Run(ctx)
	slog.Info("Low-stock monitor started", "threshold", threshold, "interval", interval)

	handler := middleware.Metrics(middleware.Logging(mux))

	// Wrap with h2c so clients can use HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", getEnv("PORT", "8080"))
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
