package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/younes-dz/consolestore/internal/checkout"
)

func (h *Handler) regions(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, checkout.Regions())
}

// quote prices the current cart under a fulfillment choice without
// submitting anything.
func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	fulfillment := checkout.Fulfillment(r.URL.Query().Get("type"))
	if fulfillment == "" {
		fulfillment = checkout.FulfillmentPickup
	}
	wilayaID, _ := strconv.Atoi(r.URL.Query().Get("wilaya"))

	q, err := h.checkout.Quote(fulfillment, wilayaID)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Subtotal    float64 `json:"subtotal"`
		DeliveryFee float64 `json:"delivery_fee"`
		Total       float64 `json:"total"`
	}{
		Subtotal:    q.Subtotal.InexactFloat64(),
		DeliveryFee: q.DeliveryFee.InexactFloat64(),
		Total:       q.Total.InexactFloat64(),
	})
}

// submitRequest is the checkout form as posted by the UI.
type submitRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Type     string `json:"type"`
	Wilaya   int    `json:"wilaya"`
	Commune  string `json:"commune"`
	Address  string `json:"adresse"`
}

// submitOrder runs the single-attempt submission: validate, post upstream,
// clear the cart on success. A failed submission leaves the cart intact.
func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	conf, err := h.checkout.Submit(r.Context(), checkout.Form{
		FullName:    req.FullName,
		Phone:       req.Phone,
		Fulfillment: checkout.Fulfillment(req.Type),
		WilayaID:    req.Wilaya,
		Commune:     req.Commune,
		Address:     req.Address,
	})
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, struct {
		Total float64 `json:"total"`
		Items int     `json:"items"`
	}{
		Total: conf.Total.InexactFloat64(),
		Items: conf.Items,
	})
}
