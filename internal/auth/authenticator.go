package auth

import (
	"context"

	"github.com/kanitw/stockroom/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods
// (password, API keys, SSO, etc.) without changing the service layer.
type Authenticator interface {
	// Register creates a new seller account with the given name and credential.
	// Returns the created seller or an error if registration fails.
	Register(ctx context.Context, name, credential string) (*models.Seller, error)

	// Authenticate verifies the seller's credentials and returns the seller
	// if successful.
	Authenticate(ctx context.Context, name, credential string) (*models.Seller, error)

	// ValidateCredential checks if the credential meets the implementation's
	// requirements.
	ValidateCredential(credential string) error
}
