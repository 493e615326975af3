package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amitrajput-dev/zelora-backend/pkg/types"
)

// CartItem is one line in a cart, keyed by product plus optional variant.
// Variant carries the snapshot taken when the line was added; handlers
// re-populate live catalog data before returning, so the snapshot is only a
// fallback until order creation locks prices.
type CartItem struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID              `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:cart_items_line_key"`
	ProductID uuid.UUID              `gorm:"column:product_id;type:uuid;not null;uniqueIndex:cart_items_line_key"`
	VariantID *uuid.UUID             `gorm:"column:variant_id;type:uuid;uniqueIndex:cart_items_line_key"`
	Variant   *types.VariantSnapshot `gorm:"column:variant;type:jsonb;serializer:json"`
	Quantity  int                    `gorm:"column:quantity;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// MatchesLine reports whether the item is the line for the given product and
// optional variant. A nil variant id addresses the base-product line.
func (i *CartItem) MatchesLine(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if variantID == nil {
		return i.VariantID == nil
	}
	return i.VariantID != nil && *i.VariantID == *variantID
}
