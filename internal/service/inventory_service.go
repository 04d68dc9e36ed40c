package service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kanitw/stockroom/internal/history"
	"github.com/kanitw/stockroom/internal/ledger"
	"github.com/kanitw/stockroom/internal/middleware"
	"github.com/kanitw/stockroom/internal/models"
)

const defaultHistoryLimit = 10

// InventoryService handles stock and history endpoints.
type InventoryService struct {
	ledger *ledger.Ledger
	hist   *history.Log
}

// NewInventoryService creates an InventoryService.
func NewInventoryService(ldg *ledger.Ledger, hist *history.Log) *InventoryService {
	return &InventoryService{ledger: ldg, hist: hist}
}

// RegisterRoutes attaches the inventory endpoints to mux. authed wraps
// handlers that mutate stock.
func (s *InventoryService) RegisterRoutes(mux *http.ServeMux, authed func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/stock/add", authed(http.HandlerFunc(s.handleAdd)))
	mux.Handle("POST /api/v1/stock/remove", authed(http.HandlerFunc(s.handleRemove)))
	mux.HandleFunc("GET /api/v1/stock", s.handleList)
	mux.HandleFunc("GET /api/v1/stock/{name}", s.handleCheck)
	mux.HandleFunc("GET /api/v1/stock/low/{threshold}", s.handleLow)
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
}

type addStockRequest struct {
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageRef    string  `json:"image_ref,omitempty"`
}

func (s *InventoryService) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if problem := validateItem(req.Name, req.Quantity); problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	upd := ledger.StockUpdate{
		Name:        req.Name,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Price:       req.Price,
		Description: req.Description,
		ImageRef:    req.ImageRef,
	}
	if err := s.ledger.AddStock(r.Context(), upd, middleware.GetSellerName(r.Context())); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add stock")
		return
	}

	product, err := s.ledger.CheckStock(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read back product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

type removeStockRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type removeStockResponse struct {
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

func (s *InventoryService) handleRemove(w http.ResponseWriter, r *http.Request) {
	var req removeStockRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if problem := validateItem(req.Name, req.Quantity); problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	remaining, err := s.ledger.RemoveStock(r.Context(), req.Name, req.Quantity, middleware.GetSellerName(r.Context()))
	if errors.Is(err, ledger.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove stock")
		return
	}
	writeJSON(w, http.StatusOK, removeStockResponse{Name: req.Name, Remaining: remaining})
}

func (s *InventoryService) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := s.ledger.GetAllStock(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stock")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *InventoryService) handleCheck(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	product, err := s.ledger.CheckStock(r.Context(), name)
	if errors.Is(err, ledger.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stock")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *InventoryService) handleLow(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.Atoi(r.PathValue("threshold"))
	if err != nil || threshold < 0 {
		writeError(w, http.StatusBadRequest, "threshold must be a non-negative number")
		return
	}

	products, err := s.ledger.CheckLowStock(r.Context(), threshold)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read stock")
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *InventoryService) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	records, err := s.hist.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if records == nil {
		records = []models.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
