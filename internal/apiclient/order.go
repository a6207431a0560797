package apiclient

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/younes-dz/consolestore/internal/checkout"
)

// Compile-time check: the client satisfies the checkout submission contract.
var _ checkout.OrderAPI = (*Client)(nil)

// Order is an order record as the upstream API returns it.
type Order struct {
	ID       int                  `json:"id"`
	FullName string               `json:"full_name"`
	Phone    string               `json:"phone"`
	Wilaya   string               `json:"wilaya"`
	Commune  string               `json:"commune"`
	Address  string               `json:"adresse"`
	Total    float64              `json:"total"`
	Status   string               `json:"status"`
	Type     string               `json:"type"`
	Items    []checkout.OrderItem `json:"items"`
	Created  string               `json:"created_at"`
}

// CreateOrder submits a new order. The upstream recomputes and trusts its
// own prices; the payload total is informational.
func (c *Client) CreateOrder(ctx context.Context, payload checkout.OrderPayload) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/order/create/", payload, nil)
}

// MyOrders returns the order history of the authenticated customer.
func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.get(ctx, "/api/client/orders/", nil, &out); err != nil {
		return nil, errors.Wrap(err, "client orders")
	}
	return out, nil
}
