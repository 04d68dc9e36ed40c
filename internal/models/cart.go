package models

// CartItem is one pending line in a user's cart. The price is a snapshot
// taken from the ledger at add time; it can drift from the live price
// before checkout.
type CartItem struct {
	ProductName string
	Quantity    int
	Price       float64
	Unit        string
}

// LineTotal returns price times quantity for this line.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}
