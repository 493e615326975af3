package cart

import (
	"github.com/amitrajput-dev/zelora-backend/pkg/types"
	"github.com/google/uuid"
)

// LineView is one cart line repopulated with live product data.
type LineView struct {
	LineID         uuid.UUID              `json:"line_id"`
	ProductID      uuid.UUID              `json:"product_id"`
	Title          string                 `json:"title"`
	Slug           string                 `json:"slug"`
	ImageURL       string                 `json:"image_url,omitempty"`
	VariantID      *uuid.UUID             `json:"variant_id,omitempty"`
	Variant        *types.VariantSnapshot `json:"variant,omitempty"`
	Quantity       int                    `json:"quantity"`
	UnitPriceCents int                    `json:"unit_price_cents"`
	SubtotalCents  int                    `json:"subtotal_cents"`
	AvailableStock int                    `json:"available_stock"`
	IsActive       bool                   `json:"is_active"`
}

// View is the populated cart returned by every cart operation.
type View struct {
	CartID        uuid.UUID  `json:"cart_id"`
	Lines         []LineView `json:"lines"`
	SubtotalCents int        `json:"subtotal_cents"`
	ItemCount     int        `json:"item_count"`
}

// AddInput adds quantity of a product (or one of its variants) to the cart.
type AddInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// UpdateInput replaces the quantity on an existing line.
type UpdateInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// RemoveInput identifies the line to drop.
type RemoveInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
}
