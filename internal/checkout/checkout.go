// Package checkout combines the cart with a fulfillment choice and the
// region fee table to compute the payable total and submit the order to the
// upstream store API.
package checkout

import (
	"context"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/younes-dz/consolestore/internal/cart"
)

// Fulfillment selects how the customer receives the order. The wire values
// are the ones the upstream API expects.
type Fulfillment string

const (
	FulfillmentPickup   Fulfillment = "pick up"
	FulfillmentDelivery Fulfillment = "livraison"
)

// Sentinel written in place of region fields when fulfillment is pickup.
const noneField = "none"

// statusPending is the initial order status the upstream API expects.
const statusPending = "en cours"

// Sentinel errors for checkout.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrUnknownWilaya = errors.New("wilaya not in fee table")
)

// Form carries the customer-entered checkout fields.
type Form struct {
	FullName    string
	Phone       string
	Fulfillment Fulfillment
	WilayaID    int
	Commune     string
	Address     string
}

// OrderItem reduces a cart line to what the upstream order endpoint needs:
// the product id and quantity. Prices are recomputed server-side.
type OrderItem struct {
	ProductID int `json:"produit_id"`
	Quantity  int `json:"quantity"`
}

// OrderPayload is the order-creation request body. Total is the cart
// subtotal; the delivery fee never enters the order record.
type OrderPayload struct {
	FullName string      `json:"full_name"`
	Phone    string      `json:"phone"`
	Wilaya   string      `json:"wilaya"`
	Commune  string      `json:"commune"`
	Address  string      `json:"adresse"`
	Total    float64     `json:"total"`
	Status   string      `json:"status"`
	Type     Fulfillment `json:"type"`
	Items    []OrderItem `json:"items"`
}

// Confirmation is returned after the upstream API accepts an order. Total
// includes the delivery fee, matching the amount quoted to the customer.
type Confirmation struct {
	Total decimal.Decimal
	Items int
}

// OrderAPI submits an order to the upstream store API. A single call is
// atomic from the client's perspective: no retries, no partial submission.
type OrderAPI interface {
	CreateOrder(ctx context.Context, payload OrderPayload) error
}

// ComputeTotal sums price multiplied by quantity over all line items. The sum
// is commutative, so line ordering never changes the result.
func ComputeTotal(items []cart.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// DeliveryFee returns the flat fee contributed by the fulfillment choice.
// Pickup, or delivery with no region selected yet, costs nothing. An unknown
// region id under delivery means the static fee table is out of sync with
// the caller and is reported as ErrUnknownWilaya.
func DeliveryFee(f Fulfillment, wilayaID int) (decimal.Decimal, error) {
	if f != FulfillmentDelivery || wilayaID == 0 {
		return decimal.Zero, nil
	}
	w, ok := LookupWilaya(wilayaID)
	if !ok {
		return decimal.Zero, errors.Wrapf(ErrUnknownWilaya, "wilaya %d", wilayaID)
	}
	return w.fee(), nil
}

// Quote is a priced view of the cart under a fulfillment choice.
type Quote struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Aggregator reads cart snapshots, prices them against the fee table, and
// submits orders upstream.
type Aggregator struct {
	cart   *cart.Container
	orders OrderAPI
}

// NewAggregator creates an Aggregator over the given cart and order API.
func NewAggregator(c *cart.Container, orders OrderAPI) *Aggregator {
	return &Aggregator{cart: c, orders: orders}
}

// Quote prices the current cart under the given fulfillment choice.
func (a *Aggregator) Quote(f Fulfillment, wilayaID int) (Quote, error) {
	subtotal := a.cart.Subtotal()
	fee, err := DeliveryFee(f, wilayaID)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Subtotal:    subtotal.Round(2),
		DeliveryFee: fee,
		Total:       subtotal.Add(fee).Round(2),
	}, nil
}

// Submit validates the form and the cart, builds the order payload, and
// posts it upstream. On success the submitted lines are removed from the
// cart and a confirmation returned; on any failure the cart is left intact
// and the error surfaced to the caller. Exactly one attempt is made.
//
// The posted total is the cart subtotal; the delivery fee is charged on
// delivery and never enters the order record. The confirmation carries the
// fee-inclusive amount the customer actually pays.
func (a *Aggregator) Submit(ctx context.Context, form Form) (*Confirmation, error) {
	items := a.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	fee, err := DeliveryFee(form.Fulfillment, form.WilayaID)
	if err != nil {
		return nil, err
	}
	subtotal := ComputeTotal(items).Round(2)

	payload := OrderPayload{
		FullName: form.FullName,
		Phone:    form.Phone,
		Wilaya:   noneField,
		Commune:  noneField,
		Address:  noneField,
		Total:    subtotal.InexactFloat64(),
		Status:   statusPending,
		Type:     form.Fulfillment,
		Items:    make([]OrderItem, 0, len(items)),
	}
	if form.Fulfillment == FulfillmentDelivery {
		payload.Wilaya = strconv.Itoa(form.WilayaID)
		payload.Commune = form.Commune
		payload.Address = form.Address
	}

	for _, it := range items {
		pid, err := strconv.Atoi(it.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "product id %q", it.ID)
		}
		payload.Items = append(payload.Items, OrderItem{ProductID: pid, Quantity: it.Quantity})
	}

	if err := a.orders.CreateOrder(ctx, payload); err != nil {
		return nil, err
	}

	// Remove only what was submitted; lines added while the upstream call
	// was in flight stay in the cart.
	a.cart.ClearSubmitted(items)
	return &Confirmation{Total: subtotal.Add(fee).Round(2), Items: len(items)}, nil
}
