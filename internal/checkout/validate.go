package checkout

import (
	"fmt"
	"regexp"
)

// Patterns match the constraints the storefront form enforced: latin letters
// with French diacritics for names, a local 10-digit mobile format for
// phones, and bounded free text for the delivery address.
var (
	nameRe    = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ\s'-]{3,50}$`)
	phoneRe   = regexp.MustCompile(`^0[5-7][0-9]{8}$`)
	communeRe = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ\s'-]{2,50}$`)
	addressRe = regexp.MustCompile(`^[A-Za-z0-9À-ÖØ-öø-ÿ\s,'-]{5,100}$`)
)

// ValidationError reports a single invalid form field. It blocks submission
// before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the checkout form fields. Region, commune, and address are
// required only under delivery fulfillment.
func (f Form) Validate() error {
	if !nameRe.MatchString(f.FullName) {
		return &ValidationError{Field: "full_name", Reason: "letters only, 3 to 50 characters"}
	}
	if !phoneRe.MatchString(f.Phone) {
		return &ValidationError{Field: "phone", Reason: "10 digits starting with 05, 06 or 07"}
	}

	switch f.Fulfillment {
	case FulfillmentPickup:
		return nil
	case FulfillmentDelivery:
		if _, ok := LookupWilaya(f.WilayaID); !ok {
			return &ValidationError{Field: "wilaya", Reason: "select a delivery region"}
		}
		if !communeRe.MatchString(f.Commune) {
			return &ValidationError{Field: "commune", Reason: "letters only, 2 to 50 characters"}
		}
		if !addressRe.MatchString(f.Address) {
			return &ValidationError{Field: "adresse", Reason: "5 to 100 valid characters"}
		}
		return nil
	default:
		return &ValidationError{Field: "type", Reason: `must be "pick up" or "livraison"`}
	}
}
