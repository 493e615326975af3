package types

// VariantSnapshot captures the variant details at the moment a line is added
// to a cart or frozen into an order, so later catalog edits do not change
// historical records. Stored as jsonb.
type VariantSnapshot struct {
	Size       string `json:"size"`
	SKU        string `json:"sku,omitempty"`
	PriceCents int    `json:"price_cents"`
}
