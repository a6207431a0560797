// Package handler exposes the storefront over HTTP: cart and checkout owned
// locally, catalog and auth delegated to the upstream store API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/younes-dz/consolestore/internal/apiclient"
	"github.com/younes-dz/consolestore/internal/cart"
	"github.com/younes-dz/consolestore/internal/catalog"
	"github.com/younes-dz/consolestore/internal/checkout"
)

// CatalogAPI is the slice of the upstream client the catalog routes need.
type CatalogAPI interface {
	Filter(ctx context.Context, category string, page int) (*catalog.Page, error)
	HomeList(ctx context.Context, page int) (*catalog.Page, error)
	Search(ctx context.Context, query string) (*catalog.Page, error)
	Promos(ctx context.Context) (*catalog.Page, error)
	ProductDetail(ctx context.Context, id string) (*catalog.Product, error)
}

// AuthAPI is the slice of the upstream client the auth routes need.
type AuthAPI interface {
	CheckAuth(ctx context.Context) (*apiclient.Session, error)
	Login(ctx context.Context, creds apiclient.Credentials) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, reg apiclient.Registration) error
	CurrentUser(ctx context.Context) (*apiclient.User, error)
	MyOrders(ctx context.Context) ([]apiclient.Order, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, change apiclient.PasswordChange) error
}

// AdminAPI is the slice of the upstream client the back-office routes need.
type AdminAPI interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, form apiclient.ProductForm, image *apiclient.Upload) error
	UpdateProduct(ctx context.Context, id string, form apiclient.ProductForm, image *apiclient.Upload) error
	DeleteProduct(ctx context.Context, id string) error
	ListOrders(ctx context.Context) ([]apiclient.Order, error)
	UpdateOrderStatus(ctx context.Context, id int, status string) error
	DeleteOrder(ctx context.Context, id int) error
	ListCarousel(ctx context.Context) ([]apiclient.Slide, error)
	CreateSlide(ctx context.Context, title string, image apiclient.Upload) error
	DeleteSlide(ctx context.Context, id int) error
	DashboardSummary(ctx context.Context) (*apiclient.Summary, error)
}

// Handler serves the storefront routes.
type Handler struct {
	cart     *cart.Container
	checkout *checkout.Aggregator
	catalog  CatalogAPI
	auth     AuthAPI
	admin    AdminAPI
	cache    *catalog.Cache
}

// NewHandler constructs a Handler with its dependencies.
func NewHandler(
	c *cart.Container,
	agg *checkout.Aggregator,
	catalogAPI CatalogAPI,
	authAPI AuthAPI,
	adminAPI AdminAPI,
	cache *catalog.Cache,
) *Handler {
	return &Handler{
		cart:     c,
		checkout: agg,
		catalog:  catalogAPI,
		auth:     authAPI,
		admin:    adminAPI,
		cache:    cache,
	}
}

// Routes builds the chi router for every storefront endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/home", h.home)
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.productDetail)
	r.Get("/search", h.search)
	r.Get("/promos", h.promos)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Post("/items", h.addToCart)
		r.Post("/items/{id}/decrease", h.decreaseItem)
		r.Delete("/items/{id}", h.removeItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Get("/regions", h.regions)
		r.Get("/quote", h.quote)
		r.Post("/", h.submitOrder)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/session", h.session)
		r.Get("/me", h.currentUser)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
		r.Post("/register", h.register)
		r.Post("/password-reset", h.passwordReset)
		r.Post("/change-password", h.changePassword)
	})
	r.Get("/orders", h.myOrders)

	r.Route("/admin", func(r chi.Router) {
		r.Get("/products", h.adminListProducts)
		r.Post("/products", h.adminCreateProduct)
		r.Put("/products/{id}", h.adminUpdateProduct)
		r.Delete("/products/{id}", h.adminDeleteProduct)
		r.Get("/orders", h.adminListOrders)
		r.Put("/orders/{id}", h.adminUpdateOrder)
		r.Delete("/orders/{id}", h.adminDeleteOrder)
		r.Get("/carousel", h.adminListCarousel)
		r.Post("/carousel", h.adminCreateSlide)
		r.Delete("/carousel/{id}", h.adminDeleteSlide)
		r.Get("/dashboard", h.adminDashboard)
	})

	return r
}

// errorResponse is the JSON error body shared by all routes.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Code: status, Message: msg})
}

// respondFailure maps domain and upstream errors onto HTTP responses.
// Upstream HTTP errors pass through with the server-provided body; transport
// failures become a generic 502 so the user sees a network error, not
// internals.
func respondFailure(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *checkout.ValidationError
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrUnknownWilaya):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &vErr):
		respondError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, cart.ErrStockExceeded):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "product not found")
	default:
		if apiErr, ok := apiclient.AsAPIError(err); ok {
			respondJSON(w, apiErr.StatusCode, errorResponse{
				Code:    apiErr.StatusCode,
				Message: apiErr.Body,
			})
			return
		}
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "network error")
	}
}
