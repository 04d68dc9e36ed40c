package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kanitw/stockroom/internal/auth"
	"github.com/kanitw/stockroom/internal/billing"
	"github.com/kanitw/stockroom/internal/cart"
	"github.com/kanitw/stockroom/internal/history"
	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/middleware"
	"github.com/kanitw/stockroom/internal/models"
	"github.com/kanitw/stockroom/internal/rowstore/sqlite"
)

// setupTestServer wires every service against a fresh SQLite-backed row
// store and returns the server base URL.
func setupTestServer(t *testing.T) string {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "stockroom-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := t.Context()

	hist := history.New(store)
	ldg := ledger.New(store, hist)
	biller := billing.New(store, ldg, hist)
	sellers := auth.NewSellerStore(store)
	for _, init := range []func(context.Context) error{hist.Init, ldg.Init, biller.Init, sellers.Init} {
		if err := init(ctx); err != nil {
			t.Fatalf("init failed: %v", err)
		}
	}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authed := middleware.RequireAuth(jwtManager)

	mux := http.NewServeMux()
	NewAuthService(auth.NewPasswordAuthenticator(sellers), jwtManager).RegisterRoutes(mux)
	NewInventoryService(ldg, hist).RegisterRoutes(mux, authed)
	NewBillingService(biller, ldg).RegisterRoutes(mux, authed)
	NewCartService(cart.NewStore(), ldg, biller).RegisterRoutes(mux, authed)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server.URL
}

// doJSON sends a JSON request, optionally authenticated, and decodes the
// response body into out (when out is non-nil).
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

// registerSeller registers a seller and returns their session token.
func registerSeller(t *testing.T, baseURL, name string) string {
	t.Helper()

	var resp tokenResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "",
		map[string]string{"name": name, "password": "sellersonly"}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, want %d", status, http.StatusCreated)
	}
	if resp.Token == "" {
		t.Fatal("expected token in register response")
	}
	return resp.Token
}

func addStock(t *testing.T, baseURL, token, name string, quantity int, price float64) {
	t.Helper()

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/stock/add", token,
		map[string]any{"name": name, "quantity": quantity, "unit": "pcs", "price": price}, nil)
	if status != http.StatusOK {
		t.Fatalf("add stock status = %d, want %d", status, http.StatusOK)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	baseURL := setupTestServer(t)
	registerSeller(t, baseURL, "Alice")

	var resp tokenResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", "",
		map[string]string{"name": "Alice", "password": "sellersonly"}, &resp)
	if status != http.StatusOK {
		t.Fatalf("login status = %d, want %d", status, http.StatusOK)
	}
	if resp.Name != "Alice" {
		t.Errorf("name = %q, want %q", resp.Name, "Alice")
	}

	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", "",
		map[string]string{"name": "Alice", "password": "wrong"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestStockEndpointsRequireAuth(t *testing.T) {
	baseURL := setupTestServer(t)

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/stock/add", "",
		map[string]any{"name": "Pen", "quantity": 5, "unit": "pcs"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("unauthenticated add status = %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestAddAndCheckStock(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	addStock(t, baseURL, token, "Notebook", 10, 3.5)

	var product models.Product
	status := doJSON(t, http.MethodGet, baseURL+"/api/v1/stock/Notebook", "", nil, &product)
	if status != http.StatusOK {
		t.Fatalf("check status = %d, want %d", status, http.StatusOK)
	}
	if product.Quantity != 10 || product.Price != 3.5 {
		t.Errorf("product = %+v, want quantity 10 price 3.5", product)
	}

	status = doJSON(t, http.MethodGet, baseURL+"/api/v1/stock/Stapler", "", nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("missing product status = %d, want %d", status, http.StatusNotFound)
	}
}

func TestAddStockValidation(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty name", map[string]any{"name": "", "quantity": 5}},
		{"zero quantity", map[string]any{"name": "Pen", "quantity": 0}},
		{"negative quantity", map[string]any{"name": "Pen", "quantity": -3}},
		{"negative price", map[string]any{"name": "Pen", "quantity": 5, "price": -1.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := doJSON(t, http.MethodPost, baseURL+"/api/v1/stock/add", token, tt.body, nil)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
			}
		})
	}
}

func TestQuickBuyBill(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	addStock(t, baseURL, token, "Notebook", 10, 5)
	addStock(t, baseURL, token, "Pen", 20, 1.5)

	var bill createBillResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/bills", token,
		map[string]any{"items": []map[string]any{
			{"name": "Notebook", "quantity": 2},
			{"name": "Pen", "quantity": 4},
		}}, &bill)
	if status != http.StatusCreated {
		t.Fatalf("create bill status = %d, want %d", status, http.StatusCreated)
	}
	if bill.Total != 16 {
		t.Errorf("total = %v, want 16", bill.Total)
	}

	var lines []models.BillLine
	status = doJSON(t, http.MethodGet, baseURL+"/api/v1/bills/"+bill.ReceiptNumber, "", nil, &lines)
	if status != http.StatusOK {
		t.Fatalf("get bill status = %d, want %d", status, http.StatusOK)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d bill lines, want 2", len(lines))
	}
	if lines[1].GrandTotal != 16 {
		t.Errorf("grand total = %v, want 16", lines[1].GrandTotal)
	}

	var product models.Product
	doJSON(t, http.MethodGet, baseURL+"/api/v1/stock/Notebook", "", nil, &product)
	if product.Quantity != 8 {
		t.Errorf("Notebook quantity = %d, want 8", product.Quantity)
	}
}

func TestQuickBuyInsufficientStock(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	addStock(t, baseURL, token, "Notebook", 3, 5)

	var resp errorResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/bills", token,
		map[string]any{"items": []map[string]any{
			{"name": "Notebook", "quantity": 5},
			{"name": "Stapler", "quantity": 1},
		}}, &resp)
	if status != http.StatusConflict {
		t.Fatalf("status = %d, want %d", status, http.StatusConflict)
	}
	if len(resp.Issues) != 2 {
		t.Errorf("got %d issues, want 2: %v", len(resp.Issues), resp.Issues)
	}
}

func TestCartFlow(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	addStock(t, baseURL, token, "Notebook", 10, 5)
	addStock(t, baseURL, token, "Pen", 20, 1.5)

	var cartResp cartResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/items", token,
		map[string]any{"name": "Notebook", "quantity": 2}, &cartResp)
	if status != http.StatusOK {
		t.Fatalf("add to cart status = %d, want %d", status, http.StatusOK)
	}

	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/items", token,
		map[string]any{"name": "Pen", "quantity": 4}, &cartResp)
	if status != http.StatusOK {
		t.Fatalf("add to cart status = %d, want %d", status, http.StatusOK)
	}
	if len(cartResp.Items) != 2 || cartResp.Total != 16 {
		t.Errorf("cart = %+v, want 2 items total 16", cartResp)
	}

	var bill createBillResponse
	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/checkout", token, nil, &bill)
	if status != http.StatusCreated {
		t.Fatalf("checkout status = %d, want %d", status, http.StatusCreated)
	}
	if bill.Total != 16 {
		t.Errorf("total = %v, want 16", bill.Total)
	}

	// Cart is dropped after checkout.
	doJSON(t, http.MethodGet, baseURL+"/api/v1/cart", token, nil, &cartResp)
	if len(cartResp.Items) != 0 {
		t.Errorf("cart has %d items after checkout, want 0", len(cartResp.Items))
	}

	var product models.Product
	doJSON(t, http.MethodGet, baseURL+"/api/v1/stock/Pen", "", nil, &product)
	if product.Quantity != 16 {
		t.Errorf("Pen quantity = %d, want 16", product.Quantity)
	}
}

func TestCartCheckoutKeepsCartOnConflict(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")
	other := registerSeller(t, baseURL, "Bob")

	addStock(t, baseURL, token, "Notebook", 5, 5)

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/items", token,
		map[string]any{"name": "Notebook", "quantity": 5}, nil)
	if status != http.StatusOK {
		t.Fatalf("add to cart status = %d, want %d", status, http.StatusOK)
	}

	// Another seller drains the stock before Alice checks out.
	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/stock/remove", other,
		map[string]any{"name": "Notebook", "quantity": 3}, nil)
	if status != http.StatusOK {
		t.Fatalf("remove stock status = %d, want %d", status, http.StatusOK)
	}

	var resp errorResponse
	status = doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/checkout", token, nil, &resp)
	if status != http.StatusConflict {
		t.Fatalf("checkout status = %d, want %d", status, http.StatusConflict)
	}
	if len(resp.Issues) != 1 {
		t.Errorf("got %d issues, want 1: %v", len(resp.Issues), resp.Issues)
	}

	var cartResp cartResponse
	doJSON(t, http.MethodGet, baseURL+"/api/v1/cart", token, nil, &cartResp)
	if len(cartResp.Items) != 1 {
		t.Errorf("cart has %d items after failed checkout, want 1", len(cartResp.Items))
	}
}

func TestCartAddUnknownProduct(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/items", token,
		map[string]any{"name": "Stapler", "quantity": 1}, nil)
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", status, http.StatusNotFound)
	}
}

func TestCartCheckoutEmpty(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/checkout", token, nil, nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
	}
}

func TestCartsAreIsolatedPerSeller(t *testing.T) {
	baseURL := setupTestServer(t)
	alice := registerSeller(t, baseURL, "Alice")
	bob := registerSeller(t, baseURL, "Bob")

	addStock(t, baseURL, alice, "Notebook", 10, 5)

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/cart/items", alice,
		map[string]any{"name": "Notebook", "quantity": 2}, nil)
	if status != http.StatusOK {
		t.Fatalf("add to cart status = %d, want %d", status, http.StatusOK)
	}

	var cartResp cartResponse
	doJSON(t, http.MethodGet, baseURL+"/api/v1/cart", bob, nil, &cartResp)
	if len(cartResp.Items) != 0 {
		t.Errorf("Bob's cart has %d items, want 0", len(cartResp.Items))
	}
}

func TestHistoryEndpoint(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	for i := 1; i <= 3; i++ {
		addStock(t, baseURL, token, fmt.Sprintf("Product%d", i), 5, 0)
	}

	var records []models.HistoryRecord
	status := doJSON(t, http.MethodGet, baseURL+"/api/v1/history?limit=2", "", nil, &records)
	if status != http.StatusOK {
		t.Fatalf("history status = %d, want %d", status, http.StatusOK)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ProductName != "Product2" || records[1].ProductName != "Product3" {
		t.Errorf("unexpected tail: %q, %q", records[0].ProductName, records[1].ProductName)
	}
}

func TestLowStockEndpoint(t *testing.T) {
	baseURL := setupTestServer(t)
	token := registerSeller(t, baseURL, "Alice")

	addStock(t, baseURL, token, "Notebook", 2, 5)
	addStock(t, baseURL, token, "Pen", 50, 1.5)

	var products []models.Product
	status := doJSON(t, http.MethodGet, baseURL+"/api/v1/stock/low/5", "", nil, &products)
	if status != http.StatusOK {
		t.Fatalf("low stock status = %d, want %d", status, http.StatusOK)
	}
	if len(products) != 1 || products[0].Name != "Notebook" {
		t.Errorf("low stock = %v, want just Notebook", products)
	}
}
