// Package cart implements the shopping cart: an id-keyed set of line items
// with quantities, frozen unit prices, and a persistent mirror that is
// rewritten wholesale on every mutation.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart mutations.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrStockExceeded   = errors.New("quantity exceeds available stock")
)

// LineItem is one row in the cart: a single product with an aggregated
// quantity and the unit price resolved at add time.
type LineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Stock    int             `json:"stock"`
	Category string          `json:"category"`
}

// Subtotal returns price multiplied by quantity for this line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Store mirrors the cart contents to a persistent medium.
//
// Load never fails from the caller's point of view: absent or corrupt state
// degrades to an empty cart. Save overwrites the prior contents wholesale;
// there is no partial or append operation.
type Store interface {
	Load() []LineItem
	Save(items []LineItem)
}
