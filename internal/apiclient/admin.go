package apiclient

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/younes-dz/consolestore/internal/catalog"
)

// Upload is an image attached to a multipart admin request.
type Upload struct {
	Filename string
	Reader   io.Reader
}

// ProductForm carries the writable product fields for admin create/update.
type ProductForm struct {
	Name        string
	Brand       string
	Description string
	Price       decimal.Decimal
	PromoPrice  decimal.Decimal
	Promo       bool
	Stock       int
	Category    string
	Condition   string
}

func (f ProductForm) write(w *multipart.Writer) error {
	fields := map[string]string{
		"name":        f.Name,
		"brand":       f.Brand,
		"description": f.Description,
		"price":       f.Price.String(),
		"stock":       strconv.Itoa(f.Stock),
		"category":    f.Category,
		"etat":        f.Condition,
		"promo":       "0",
		"prix_promo":  "",
	}
	if f.Promo {
		fields["promo"] = "1"
		fields["prix_promo"] = f.PromoPrice.String()
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return errors.Wrapf(err, "field %s", name)
		}
	}
	return nil
}

// multipartRequest builds a state-changing multipart request from the form
// writer fn plus an optional image upload.
func (c *Client) multipartRequest(ctx context.Context, method, path string, fn func(*multipart.Writer) error, image *Upload) (*http.Request, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := fn(mw)
		if err == nil && image != nil {
			var part io.Writer
			part, err = mw.CreateFormFile("image", image.Filename)
			if err == nil {
				_, err = io.Copy(part, image.Reader)
			}
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), pr)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

// ListProducts returns the full admin product table.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	if err := c.get(ctx, "/api/products/", nil, &out); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return out, nil
}

// CreateProduct creates a product with an optional image upload.
func (c *Client) CreateProduct(ctx context.Context, form ProductForm, image *Upload) error {
	req, err := c.multipartRequest(ctx, http.MethodPost, "/api/products/", form.write, image)
	if err != nil {
		return err
	}
	if err := c.send(ctx, req, nil); err != nil {
		return errors.Wrap(err, "create product")
	}
	return nil
}

// UpdateProduct replaces a product's fields; a nil image keeps the stored one.
func (c *Client) UpdateProduct(ctx context.Context, id string, form ProductForm, image *Upload) error {
	req, err := c.multipartRequest(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id)+"/", form.write, image)
	if err != nil {
		return err
	}
	if err := c.send(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "update product %s", id)
	}
	return nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/api/products/"+url.PathEscape(id)+"/", nil), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if err := c.send(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "delete product %s", id)
	}
	return nil
}

// ListOrders returns every order for the admin back-office.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.get(ctx, "/api/orders/", nil, &out); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return out, nil
}

// UpdateOrderStatus moves an order to a new status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int, status string) error {
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	if err := c.sendJSON(ctx, http.MethodPut, "/api/orders/"+strconv.Itoa(id)+"/", body, nil); err != nil {
		return errors.Wrapf(err, "update order %d", id)
	}
	return nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, id int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/api/orders/"+strconv.Itoa(id)+"/", nil), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if err := c.send(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "delete order %d", id)
	}
	return nil
}

// Slide is one carousel entry on the home page.
type Slide struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

// ListCarousel returns the home-page carousel slides.
func (c *Client) ListCarousel(ctx context.Context) ([]Slide, error) {
	var out []Slide
	if err := c.get(ctx, "/api/admin/carousel/", nil, &out); err != nil {
		return nil, errors.Wrap(err, "list carousel")
	}
	return out, nil
}

// CreateSlide adds a carousel slide with its image.
func (c *Client) CreateSlide(ctx context.Context, title string, image Upload) error {
	fn := func(w *multipart.Writer) error {
		return w.WriteField("title", title)
	}
	req, err := c.multipartRequest(ctx, http.MethodPost, "/api/admin/carousel/", fn, &image)
	if err != nil {
		return err
	}
	if err := c.send(ctx, req, nil); err != nil {
		return errors.Wrap(err, "create slide")
	}
	return nil
}

// DeleteSlide removes a carousel slide.
func (c *Client) DeleteSlide(ctx context.Context, id int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/api/admin/carousel/"+strconv.Itoa(id)+"/", nil), nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if err := c.send(ctx, req, nil); err != nil {
		return errors.Wrapf(err, "delete slide %d", id)
	}
	return nil
}

// Summary aggregates the dashboard counters.
type Summary struct {
	Orders       int             `json:"orders"`
	Users        int             `json:"users"`
	Products     int             `json:"products"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// DashboardSummary fetches the four dashboard counters concurrently and
// combines them. A failure of any counter fails the summary.
func (c *Client) DashboardSummary(ctx context.Context) (*Summary, error) {
	var s Summary
	var orders, users struct {
		Count int `json:"count"`
	}
	var products struct {
		Total int `json:"total"`
	}
	var revenue struct {
		Total decimal.Decimal `json:"total"`
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(ctx, "/api/order-count/", nil, &orders) })
	g.Go(func() error { return c.get(ctx, "/api/user-count/", nil, &users) })
	g.Go(func() error { return c.get(ctx, "/api/products-total/", nil, &products) })
	g.Go(func() error { return c.get(ctx, "/api/total-revenue/", nil, &revenue) })
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "dashboard summary")
	}

	s.Orders = orders.Count
	s.Users = users.Count
	s.Products = products.Total
	s.TotalRevenue = revenue.Total
	return &s, nil
}
