// Package pricing resolves the effective unit price of a catalog product.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/younes-dz/consolestore/internal/catalog"
)

// ResolveUnitPrice returns the price actually charged for one unit of p.
//
// The promotional price wins only when the promotion flag is active and the
// promotional price is present and positive; otherwise the base price
// applies. The result is frozen into the cart line at add time, so later
// catalog changes never reprice items already in the cart.
func ResolveUnitPrice(p catalog.Product) decimal.Decimal {
	if bool(p.Promo) && p.PromoPrice.IsPositive() {
		return p.PromoPrice
	}
	return p.Price
}
