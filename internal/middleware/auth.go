package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kanitw/stockroom/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// SellerIDKey is the context key for storing the authenticated seller ID.
	SellerIDKey contextKey = "seller_id"
	// SellerNameKey is the context key for storing the authenticated seller's name.
	SellerNameKey contextKey = "seller_name"
)

// GetSellerID extracts the seller ID from the context.
// Returns empty string if not found.
func GetSellerID(ctx context.Context) string {
	id, _ := ctx.Value(SellerIDKey).(string)
	return id
}

// GetSellerName extracts the seller name from the context.
// Returns empty string if not found.
func GetSellerName(ctx context.Context) string {
	name, _ := ctx.Value(SellerNameKey).(string)
	return name
}

// RequireAuth returns middleware that validates JWT tokens and requires
// authentication. It extracts the token from the Authorization header,
// validates it, and adds the seller ID and name to the request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}

			// Parse Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			// Validate token
			claims, err := jwtManager.Validate(parts[1])
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			// Add seller info to context
			ctx := context.WithValue(r.Context(), SellerIDKey, claims.SellerID)
			ctx = context.WithValue(ctx, SellerNameKey, claims.Name)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
