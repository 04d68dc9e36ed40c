// Package cart holds per-user, in-memory pre-checkout staging lists.
// Carts are never persisted; they exist from first access until checkout
// or an explicit clear.
package cart

import (
	"strings"
	"sync"

	"github.com/kanitw/stockroom/internal/models"
)

// Cart is one user's ordered list of pending line items.
type Cart struct {
	mu    sync.Mutex
	items []models.CartItem
}

// AddItem stages a line. Re-adding a product already in the cart
// (matched case-insensitively) merges into the existing line: the
// quantity accumulates and the price snapshot is refreshed.
func (c *Cart) AddItem(productName string, quantity int, price float64, unit string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if strings.EqualFold(c.items[i].ProductName, productName) {
			c.items[i].Quantity += quantity
			c.items[i].Price = price
			c.items[i].Unit = unit
			return
		}
	}
	c.items = append(c.items, models.CartItem{
		ProductName: productName,
		Quantity:    quantity,
		Price:       price,
		Unit:        unit,
	})
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Total returns the sum of price times quantity over all items.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0.0
	for _, item := range c.items {
		total += item.LineTotal()
	}
	return total
}

// Items returns a copy of the cart's lines in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Store maps user IDs to carts. Carts are created on first access and
// dropped on checkout or clear.
type Store struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Get returns the user's cart, creating it on first access.
func (s *Store) Get(userID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		c = &Cart{}
		s.carts[userID] = c
	}
	return c
}

// Peek returns the user's cart without creating one, or nil.
func (s *Store) Peek(userID string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.carts[userID]
}

// Drop removes the user's cart entirely.
func (s *Store) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}
