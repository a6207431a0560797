package apiclient

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_MultipartFields(t *testing.T) {
	u := newUpstream()

	var fields map[string]string
	var imageName, imageData string
	u.mux.HandleFunc("POST /api/products/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		if fhs := r.MultipartForm.File["image"]; len(fhs) == 1 {
			imageName = fhs[0].Filename
			f, err := fhs[0].Open()
			require.NoError(t, err)
			defer f.Close()
			buf := make([]byte, fhs[0].Size)
			f.Read(buf)
			imageData = string(buf)
		}
		w.WriteHeader(http.StatusCreated)
	})
	_, client := u.serve(t)

	form := ProductForm{
		Name:       "PS5 Slim",
		Brand:      "Sony",
		Price:      decimal.RequireFromString("89000.00"),
		PromoPrice: decimal.RequireFromString("79000.00"),
		Promo:      true,
		Stock:      4,
		Category:   "console",
		Condition:  "neuf",
	}
	image := &Upload{Filename: "ps5.jpg", Reader: strings.NewReader("jpegbytes")}

	require.NoError(t, client.CreateProduct(context.Background(), form, image))

	assert.Equal(t, "PS5 Slim", fields["name"])
	assert.Equal(t, "89000", fields["price"])
	assert.Equal(t, "1", fields["promo"])
	assert.Equal(t, "79000", fields["prix_promo"])
	assert.Equal(t, "4", fields["stock"])
	assert.Equal(t, "neuf", fields["etat"])
	assert.Equal(t, "ps5.jpg", imageName)
	assert.Equal(t, "jpegbytes", imageData)
}

func TestCreateProduct_NoPromoClearsPromoPrice(t *testing.T) {
	u := newUpstream()

	var fields map[string][]string
	u.mux.HandleFunc("POST /api/products/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		w.WriteHeader(http.StatusCreated)
	})
	_, client := u.serve(t)

	form := ProductForm{
		Name:       "Switch",
		Price:      decimal.RequireFromString("45000"),
		PromoPrice: decimal.RequireFromString("40000"),
		Promo:      false,
	}
	require.NoError(t, client.CreateProduct(context.Background(), form, nil))

	assert.Equal(t, "0", fields["promo"][0])
	assert.Equal(t, "", fields["prix_promo"][0])
}

func TestUpdateOrderStatus(t *testing.T) {
	u := newUpstream()

	var gotBody string
	u.mux.HandleFunc("PUT /api/orders/5/", func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	})
	_, client := u.serve(t)

	require.NoError(t, client.UpdateOrderStatus(context.Background(), 5, "livré"))
	assert.JSONEq(t, `{"status":"livré"}`, gotBody)
}

func TestDeleteProduct_CarriesCSRF(t *testing.T) {
	u := newUpstream()

	var gotToken string
	u.mux.HandleFunc("DELETE /api/products/9/", func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-CSRFToken")
		w.WriteHeader(http.StatusNoContent)
	})
	_, client := u.serve(t)

	require.NoError(t, client.DeleteProduct(context.Background(), "9"))
	assert.Equal(t, "tok-123", gotToken)
}

func TestDashboardSummary(t *testing.T) {
	u := newUpstream()
	u.mux.HandleFunc("GET /api/order-count/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"count": 31}`))
	})
	u.mux.HandleFunc("GET /api/user-count/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"count": 12}`))
	})
	u.mux.HandleFunc("GET /api/products-total/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total": 87}`))
	})
	u.mux.HandleFunc("GET /api/total-revenue/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total": "125000.50"}`))
	})
	_, client := u.serve(t)

	s, err := client.DashboardSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 31, s.Orders)
	assert.Equal(t, 12, s.Users)
	assert.Equal(t, 87, s.Products)
	assert.True(t, decimal.RequireFromString("125000.50").Equal(s.TotalRevenue))
}

func TestDashboardSummary_PartialFailure(t *testing.T) {
	u := newUpstream()
	u.mux.HandleFunc("GET /api/order-count/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"count": 31}`))
	})
	u.mux.HandleFunc("GET /api/user-count/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	u.mux.HandleFunc("GET /api/products-total/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total": 87}`))
	})
	u.mux.HandleFunc("GET /api/total-revenue/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"total": "0"}`))
	})
	_, client := u.serve(t)

	_, err := client.DashboardSummary(context.Background())
	require.Error(t, err)
}
