package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductVariant is a purchasable sub-configuration (size) of a product with
// its own price and stock counters.
type ProductVariant struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Size       string    `gorm:"column:size;not null"`
	SKU        *string   `gorm:"column:sku"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	Stock      int       `gorm:"column:stock;not null;default:0"`
	Sold       int       `gorm:"column:sold;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
