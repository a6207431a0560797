// Package catalog defines the product types served by the upstream store API
// and a session-scoped cache for product listings.
package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist upstream.
var ErrNotFound = errors.New("product not found")

// PromoFlag is a bool that tolerates the loose encodings the upstream API
// uses for the promotion flag: true/false, 1/0, "1"/"0", "true"/"false".
// Any truthy value means the promotion is active.
type PromoFlag bool

// UnmarshalJSON normalizes the flag to a canonical bool.
func (f *PromoFlag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = false
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errors.Wrap(err, "promo flag")
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "0", "false":
			*f = false
		default:
			*f = true
		}
		return nil
	}
	switch string(b) {
	case "true":
		*f = true
	case "false":
		*f = false
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return errors.Errorf("promo flag: unsupported value %q", b)
		}
		*f = n != 0
	}
	return nil
}

// MarshalJSON emits the canonical bool form.
func (f PromoFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Product is a catalog item as served by the upstream API.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	PromoPrice  decimal.Decimal `json:"prix_promo"`
	Promo       PromoFlag       `json:"promo"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Condition   string          `json:"etat,omitempty"`
	Note        string          `json:"note,omitempty"`
	AddedAt     string          `json:"date_ajout,omitempty"`
}

// UnmarshalJSON accepts numeric product IDs, which the upstream API emits for
// some endpoints, and normalizes them to strings.
func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	aux := struct {
		ID json.RawMessage `json:"id"`
		*alias
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if len(aux.ID) > 0 {
		id := bytes.Trim(bytes.TrimSpace(aux.ID), `"`)
		p.ID = string(id)
	}
	return nil
}

// Page is one page of a paginated product listing.
type Page struct {
	Count    int       `json:"count"`
	Next     string    `json:"next,omitempty"`
	Previous string    `json:"previous,omitempty"`
	Results  []Product `json:"results"`
}
