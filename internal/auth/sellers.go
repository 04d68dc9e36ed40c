package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kanitw/stockroom/internal/models"
	"github.com/kanitw/stockroom/internal/rowstore"
)

// SellersSheet is the name of the seller accounts sheet.
const SellersSheet = "Sellers"

// SellersHeader is the seller sheet's column layout.
var SellersHeader = []string{"ID", "Name", "PasswordHash", "CreatedAt"}

// SellerStore persists seller accounts in the row store.
type SellerStore struct {
	store rowstore.Store
}

// Ensure SellerStore implements SellerStorage
var _ SellerStorage = (*SellerStore)(nil)

// NewSellerStore creates a SellerStore over the given row store.
func NewSellerStore(store rowstore.Store) *SellerStore {
	return &SellerStore{store: store}
}

// Init ensures the sellers sheet exists with the expected header.
func (s *SellerStore) Init(ctx context.Context) error {
	return s.store.EnsureSheet(ctx, SellersSheet, SellersHeader)
}

// CreateSeller appends a new seller row.
func (s *SellerStore) CreateSeller(ctx context.Context, seller *models.Seller) error {
	if err := s.store.EnsureSheet(ctx, SellersSheet, SellersHeader); err != nil {
		return fmt.Errorf("failed to ensure sellers sheet: %w", err)
	}
	row := []string{
		seller.ID,
		seller.Name,
		seller.PasswordHash,
		seller.CreatedAt.Format(models.TimeFormat),
	}
	if err := s.store.AppendRow(ctx, SellersSheet, row); err != nil {
		return fmt.Errorf("failed to append seller row: %w", err)
	}
	return nil
}

// GetSellerByName returns the seller with the given name, matched
// case-insensitively.
func (s *SellerStore) GetSellerByName(ctx context.Context, name string) (*models.Seller, error) {
	rows, err := s.store.GetAllRows(ctx, SellersSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sellers: %w", err)
	}
	for _, row := range rows {
		if strings.EqualFold(row["Name"], name) {
			created, _ := time.ParseInLocation(models.TimeFormat, row["CreatedAt"], time.Local)
			return &models.Seller{
				ID:           row["ID"],
				Name:         row["Name"],
				PasswordHash: row["PasswordHash"],
				CreatedAt:    created,
			}, nil
		}
	}
	return nil, fmt.Errorf("seller not found: %s", name)
}
