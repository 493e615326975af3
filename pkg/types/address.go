package types

import "strings"

// ShippingAddress is the address snapshot embedded into orders and kept on
// user address-book rows. Stored as jsonb where embedded.
type ShippingAddress struct {
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	Line1          string `json:"line1"`
	Line2          string `json:"line2,omitempty"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postal_code"`
	Country        string `json:"country"`
}

// IsZero reports whether no address fields were provided.
func (a ShippingAddress) IsZero() bool {
	return strings.TrimSpace(a.Line1) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.PostalCode) == ""
}
