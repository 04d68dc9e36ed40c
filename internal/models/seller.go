package models

import (
	"time"

	"github.com/google/uuid"
)

// Seller is a registered seller account. Sellers own carts and appear as
// the acting user on history records and receipts.
type Seller struct {
	// ID is the unique identifier for the seller (UUID format).
	ID string

	// Name is the login and display name. Unique, matched
	// case-insensitively.
	Name string

	// PasswordHash is the bcrypt hash of the seller's password.
	PasswordHash string

	// CreatedAt is when the account was registered.
	CreatedAt time.Time
}

// NewSeller creates a seller with a fresh ID and creation time.
func NewSeller(name, passwordHash string) *Seller {
	return &Seller{
		ID:           uuid.New().String(),
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}
