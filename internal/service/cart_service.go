package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kanitw/stockroom/internal/billing"
	"github.com/kanitw/stockroom/internal/cart"
	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/middleware"
	"github.com/kanitw/stockroom/internal/models"
)

// CartService handles the per-seller cart and its checkout. All cart
// endpoints require authentication: the cart key is the seller ID from
// the session token.
type CartService struct {
	carts  *cart.Store
	ledger *ledger.Ledger
	biller *billing.Biller
}

// NewCartService creates a CartService.
func NewCartService(carts *cart.Store, ldg *ledger.Ledger, biller *billing.Biller) *CartService {
	return &CartService{carts: carts, ledger: ldg, biller: biller}
}

// RegisterRoutes attaches the cart endpoints to mux.
func (s *CartService) RegisterRoutes(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/cart/items", authed(http.HandlerFunc(s.handleAddItem)))
	mux.Handle("GET /api/v1/cart", authed(http.HandlerFunc(s.handleView)))
	mux.Handle("DELETE /api/v1/cart", authed(http.HandlerFunc(s.handleClear)))
	mux.Handle("POST /api/v1/cart/checkout", authed(http.HandlerFunc(s.handleCheckout)))
}

type addCartItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
}

// handleAddItem validates availability against the live ledger, then
// stages the line with a price snapshot. The cart holds no reservation:
// availability is re-checked at checkout.
func (s *CartService) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if problem := validateItem(req.Name, req.Quantity); problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	product, err := s.ledger.CheckStock(r.Context(), req.Name)
	if errors.Is(err, ledger.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("product not found: %s", req.Name))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stock")
		return
	}
	if product.Quantity < req.Quantity {
		writeJSON(w, http.StatusConflict, errorResponse{
			Error: fmt.Sprintf("insufficient stock: %s has %d %s, want %d",
				product.Name, product.Quantity, product.Unit, req.Quantity),
		})
		return
	}

	c := s.carts.Get(middleware.GetSellerID(r.Context()))
	c.AddItem(product.Name, req.Quantity, product.Price, product.Unit)
	writeJSON(w, http.StatusOK, cartResponse{Items: c.Items(), Total: c.Total()})
}

func (s *CartService) handleView(w http.ResponseWriter, r *http.Request) {
	resp := cartResponse{Items: []models.CartItem{}}
	if c := s.carts.Peek(middleware.GetSellerID(r.Context())); c != nil {
		resp.Items = c.Items()
		resp.Total = c.Total()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *CartService) handleClear(w http.ResponseWriter, r *http.Request) {
	s.carts.Drop(middleware.GetSellerID(r.Context()))
	writeJSON(w, http.StatusOK, cartResponse{Items: []models.CartItem{}})
}

type checkoutRequest struct {
	Notes string `json:"notes,omitempty"`
}

// handleCheckout re-validates every cart line against current stock,
// reporting all failing lines at once, then converts the cart into a
// bill. The cart is dropped only after the bill is created.
func (s *CartService) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	sellerID := middleware.GetSellerID(r.Context())
	c := s.carts.Peek(sellerID)
	if c == nil || len(c.Items()) == 0 {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	cartItems := c.Items()
	items := make([]models.BillItem, len(cartItems))
	for i, item := range cartItems {
		items[i] = models.BillItem{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    item.Price,
			Unit:     item.Unit,
		}
	}

	issues, err := s.biller.ValidateStock(r.Context(), items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate stock")
		return
	}
	if len(issues) > 0 {
		// Cart stays intact so the seller can fix the failing lines.
		writeIssues(w, issues)
		return
	}

	notes := req.Notes
	if notes == "" {
		notes = fmt.Sprintf("cart checkout - %d items", len(items))
	}

	seller := middleware.GetSellerName(r.Context())
	number, total, err := s.biller.CreateBill(r.Context(), seller, items, notes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create bill")
		return
	}

	s.carts.Drop(sellerID)
	writeJSON(w, http.StatusCreated, createBillResponse{ReceiptNumber: number, Total: total})
}
