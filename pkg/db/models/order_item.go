package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amitrajput-dev/zelora-backend/pkg/types"
)

// OrderItem captures the snapshot of one line at purchase time: title, price
// and variant details are frozen so catalog edits never rewrite history.
type OrderItem struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID        uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	VariantID      *uuid.UUID             `gorm:"column:variant_id;type:uuid"`
	Variant        *types.VariantSnapshot `gorm:"column:variant;type:jsonb;serializer:json"`
	Title          string                 `gorm:"column:title;not null"`
	UnitPriceCents int                    `gorm:"column:unit_price_cents;not null"`
	Quantity       int                    `gorm:"column:quantity;not null"`
	SubtotalCents  int                    `gorm:"column:subtotal_cents;not null"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
