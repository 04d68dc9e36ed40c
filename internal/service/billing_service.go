package service

import (
	"net/http"

	"github.com/kanitw/stockroom/internal/billing"
	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/middleware"
	"github.com/kanitw/stockroom/internal/models"
)

// BillingService handles quick-buy bill creation and receipt lookups.
type BillingService struct {
	biller *billing.Biller
	ledger *ledger.Ledger
}

// NewBillingService creates a BillingService.
func NewBillingService(biller *billing.Biller, ldg *ledger.Ledger) *BillingService {
	return &BillingService{biller: biller, ledger: ldg}
}

// RegisterRoutes attaches the billing endpoints to mux.
func (s *BillingService) RegisterRoutes(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/bills", authed(http.HandlerFunc(s.handleCreate)))
	mux.HandleFunc("GET /api/v1/bills/{receiptNumber}", s.handleGet)
}

type billItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type createBillRequest struct {
	Items []billItemRequest `json:"items"`
	Notes string            `json:"notes,omitempty"`
}

type createBillResponse struct {
	ReceiptNumber string  `json:"receipt_number"`
	Total         float64 `json:"total"`
}

// handleCreate is the quick-buy path: bill the given items directly,
// without a cart. Prices come from the ledger at billing time.
func (s *BillingService) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "bill must have at least one item")
		return
	}
	for _, item := range req.Items {
		if problem := validateItem(item.Name, item.Quantity); problem != "" {
			writeError(w, http.StatusBadRequest, problem)
			return
		}
	}

	items, issues, err := s.resolveItems(r, req.Items)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate stock")
		return
	}
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	seller := middleware.GetSellerName(r.Context())
	number, total, err := s.biller.CreateBill(r.Context(), seller, items, req.Notes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create bill")
		return
	}
	writeJSON(w, http.StatusCreated, createBillResponse{ReceiptNumber: number, Total: total})
}

// resolveItems looks each requested item up in the ledger, snapshotting
// price and unit, and collects availability issues across all lines.
func (s *BillingService) resolveItems(r *http.Request, reqs []billItemRequest) ([]models.BillItem, []billing.StockIssue, error) {
	items := make([]models.BillItem, 0, len(reqs))
	for _, req := range reqs {
		items = append(items, models.BillItem{Name: req.Name, Quantity: req.Quantity})
	}

	issues, err := s.biller.ValidateStock(r.Context(), items)
	if err != nil || len(issues) > 0 {
		return nil, issues, err
	}

	// All available; fill in price/unit snapshots.
	for i := range items {
		product, err := s.ledger.CheckStock(r.Context(), items[i].Name)
		if err != nil {
			return nil, nil, err
		}
		items[i].Name = product.Name
		items[i].Price = product.Price
		items[i].Unit = product.Unit
	}
	return items, nil, nil
}

func (s *BillingService) handleGet(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("receiptNumber")
	lines, err := s.biller.GetBillDetails(r.Context(), number)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read bills")
		return
	}
	if len(lines) == 0 {
		writeError(w, http.StatusNotFound, "bill not found")
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func writeIssues(w http.ResponseWriter, issues []billing.StockIssue) {
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.String()
	}
	writeJSON(w, http.StatusConflict, errorResponse{Error: "stock validation failed", Issues: msgs})
}
