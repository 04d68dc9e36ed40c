package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/kanitw/stockroom/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid name or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrSellerExists       = errors.New("seller name already registered")
)

// SellerStorage defines the interface for seller persistence operations.
// This allows the authenticator to be independent of the storage
// implementation.
type SellerStorage interface {
	CreateSeller(ctx context.Context, seller *models.Seller) error
	GetSellerByName(ctx context.Context, name string) (*models.Seller, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage SellerStorage
}

// Ensure PasswordAuthenticator implements Authenticator
var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage SellerStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
	}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new seller account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, name, credential string) (*models.Seller, error) {
	// Validate password strength
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	// Check if the name is already taken
	existing, err := a.storage.GetSellerByName(ctx, name)
	if err == nil && existing != nil {
		return nil, ErrSellerExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	seller := models.NewSeller(name, string(hashedPassword))

	if err := a.storage.CreateSeller(ctx, seller); err != nil {
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}

	return seller, nil
}

// Authenticate verifies the name and password, returning the seller if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, name, credential string) (*models.Seller, error) {
	seller, err := a.storage.GetSellerByName(ctx, name)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seller.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return seller, nil
}
