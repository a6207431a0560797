package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/younes-dz/consolestore/internal/cart"
	"github.com/younes-dz/consolestore/internal/pricing"
)

// cartView is the cart as the UI renders it.
type cartView struct {
	Items    []cart.LineItem `json:"items"`
	Subtotal float64         `json:"subtotal"`
}

func (h *Handler) cartResponse() cartView {
	items := h.cart.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return cartView{
		Items:    items,
		Subtotal: h.cart.Subtotal().InexactFloat64(),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.cartResponse())
}

// addRequest adds quantity units of a product to the cart.
type addRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// addToCart looks the product up, resolves the effective unit price, and
// merges it into the cart. The resolved price is frozen into the line item;
// later catalog changes never reprice it.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "product_id required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	p, err := h.catalog.ProductDetail(r.Context(), req.ProductID)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	err = h.cart.Add(cart.LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Image:    p.Image,
		Price:    pricing.ResolveUnitPrice(*p),
		Quantity: req.Quantity,
		Stock:    p.Stock,
		Category: p.Category,
	})
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h.cartResponse())
}

func (h *Handler) decreaseItem(w http.ResponseWriter, r *http.Request) {
	h.cart.Decrease(chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	h.cart.Remove(chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) clearCart(w http.ResponseWriter, _ *http.Request) {
	h.cart.Clear()
	respondJSON(w, http.StatusOK, h.cartResponse())
}
