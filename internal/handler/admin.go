package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/younes-dz/consolestore/internal/apiclient"
	"github.com/younes-dz/consolestore/internal/catalog"
)

// maxUploadBytes bounds admin image uploads.
const maxUploadBytes = 10 << 20

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.admin.ListProducts(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// productFormFromRequest parses the multipart product form plus its optional
// image part.
func productFormFromRequest(r *http.Request) (apiclient.ProductForm, *apiclient.Upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apiclient.ProductForm{}, nil, err
	}

	price, err := decimal.NewFromString(r.FormValue("price"))
	if err != nil {
		return apiclient.ProductForm{}, nil, err
	}
	stock, _ := strconv.Atoi(r.FormValue("stock"))

	form := apiclient.ProductForm{
		Name:        r.FormValue("name"),
		Brand:       r.FormValue("brand"),
		Description: r.FormValue("description"),
		Price:       price,
		Stock:       stock,
		Category:    r.FormValue("category"),
		Condition:   r.FormValue("etat"),
	}
	if promo := r.FormValue("promo"); promo == "1" || promo == "true" {
		form.Promo = true
		form.PromoPrice, err = decimal.NewFromString(r.FormValue("prix_promo"))
		if err != nil {
			return apiclient.ProductForm{}, nil, err
		}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return form, nil, nil
		}
		return apiclient.ProductForm{}, nil, err
	}
	return form, &apiclient.Upload{Filename: header.Filename, Reader: file}, nil
}

func (h *Handler) adminCreateProduct(w http.ResponseWriter, r *http.Request) {
	form, image, err := productFormFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.admin.CreateProduct(r.Context(), form, image); err != nil {
		respondFailure(w, r, err)
		return
	}
	// Listings are stale after any catalog write.
	h.cache.BustAll()
	respondJSON(w, http.StatusCreated, struct {
		Detail string `json:"detail"`
	}{Detail: "product created"})
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	form, image, err := productFormFromRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.admin.UpdateProduct(r.Context(), chi.URLParam(r, "id"), form, image); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.cache.BustAll()
	respondJSON(w, http.StatusOK, struct {
		Detail string `json:"detail"`
	}{Detail: "product updated"})
}

func (h *Handler) adminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondFailure(w, r, err)
		return
	}
	h.cache.BustAll()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.admin.ListOrders(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if orders == nil {
		orders = []apiclient.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) adminUpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		respondError(w, http.StatusBadRequest, "status required")
		return
	}
	if err := h.admin.UpdateOrderStatus(r.Context(), id, req.Status); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Detail string `json:"detail"`
	}{Detail: "order updated"})
}

func (h *Handler) adminDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	if err := h.admin.DeleteOrder(r.Context(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminListCarousel(w http.ResponseWriter, r *http.Request) {
	slides, err := h.admin.ListCarousel(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	if slides == nil {
		slides = []apiclient.Slide{}
	}
	respondJSON(w, http.StatusOK, slides)
}

func (h *Handler) adminCreateSlide(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image required")
		return
	}
	image := apiclient.Upload{Filename: header.Filename, Reader: file}

	if err := h.admin.CreateSlide(r.Context(), r.FormValue("title"), image); err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, struct {
		Detail string `json:"detail"`
	}{Detail: "slide created"})
}

func (h *Handler) adminDeleteSlide(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid slide id")
		return
	}
	if err := h.admin.DeleteSlide(r.Context(), id); err != nil {
		respondFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) adminDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.admin.DashboardSummary(r.Context())
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
