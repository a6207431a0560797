package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/younes-dz/consolestore/internal/catalog"
)

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// home serves the home-page listing through the session cache: repeated
// visits within the TTL never refetch upstream.
func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	key := fmt.Sprintf("home:%d", page)

	out, err := h.cache.Get(r.Context(), key, func(ctx context.Context) (*catalog.Page, error) {
		return h.catalog.HomeList(ctx, page)
	})
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// listProducts serves paginated, category-filtered listings through the
// session cache.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	page := pageParam(r)
	key := fmt.Sprintf("filter:%s:%d", category, page)

	out, err := h.cache.Get(r.Context(), key, func(ctx context.Context) (*catalog.Page, error) {
		return h.catalog.Filter(ctx, category, page)
	})
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// productDetail is always fetched live: stock and promotion state must be
// current when the user is about to add to cart.
func (h *Handler) productDetail(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.ProductDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// search is never cached: queries are too diverse for a session cache to pay
// off.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, http.StatusBadRequest, "q required")
		return
	}
	out, err := h.catalog.Search(r.Context(), q)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) promos(w http.ResponseWriter, r *http.Request) {
	out, err := h.cache.Get(r.Context(), "promos", func(ctx context.Context) (*catalog.Page, error) {
		return h.catalog.Promos(ctx)
	})
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}
