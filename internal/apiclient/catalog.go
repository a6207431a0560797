package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/younes-dz/consolestore/internal/catalog"
)

// Filter returns one page of products in a category. An empty category
// returns the unfiltered listing.
func (c *Client) Filter(ctx context.Context, category string, page int) (*catalog.Page, error) {
	q := url.Values{}
	q.Set("category", category)
	q.Set("page", strconv.Itoa(page))

	out, err := c.listing(ctx, "/api/filter/", q)
	if err != nil {
		return nil, errors.Wrap(err, "filter products")
	}
	return out, nil
}

// HomeList returns one page of the home listing.
func (c *Client) HomeList(ctx context.Context, page int) (*catalog.Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	out, err := c.listing(ctx, "/api/homelist/", q)
	if err != nil {
		return nil, errors.Wrap(err, "home listing")
	}
	return out, nil
}

// Search returns the products matching query.
func (c *Client) Search(ctx context.Context, query string) (*catalog.Page, error) {
	q := url.Values{}
	q.Set("q", query)

	out, err := c.listing(ctx, "/api/search/", q)
	if err != nil {
		return nil, errors.Wrap(err, "search products")
	}
	return out, nil
}

// Promos returns every product with an active promotion.
func (c *Client) Promos(ctx context.Context) (*catalog.Page, error) {
	out, err := c.listing(ctx, "/api/promo/", nil)
	if err != nil {
		return nil, errors.Wrap(err, "promo listing")
	}
	return out, nil
}

// ProductDetail returns a single product. A missing product maps to
// catalog.ErrNotFound.
func (c *Client) ProductDetail(ctx context.Context, id string) (*catalog.Product, error) {
	var p catalog.Product
	if err := c.get(ctx, "/api/product-detail/"+url.PathEscape(id)+"/", nil, &p); err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode == 404 {
			return nil, catalog.ErrNotFound
		}
		return nil, errors.Wrapf(err, "product %s", id)
	}
	return &p, nil
}

// listing fetches a product listing that may arrive either as a paginated
// envelope or as a bare array, which the upstream mixes across endpoints.
// Both shapes normalize to a Page.
func (c *Client) listing(ctx context.Context, path string, query url.Values) (*catalog.Page, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, query, &raw); err != nil {
		return nil, err
	}

	var page catalog.Page
	if err := json.Unmarshal(raw, &page); err == nil && page.Results != nil {
		return &page, nil
	}

	var products []catalog.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, errors.Wrap(err, "decode listing")
	}
	return &catalog.Page{Count: len(products), Results: products}, nil
}
