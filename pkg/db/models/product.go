package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the canonical catalog listing. PriceCents is only meaningful
// when the product has no variants; Stock mirrors the variant sum otherwise.
type Product struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Title             string           `gorm:"column:title;not null"`
	Slug              string           `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	Description       *string          `gorm:"column:description"`
	Category          *string          `gorm:"column:category;index"`
	Brand             *string          `gorm:"column:brand;index"`
	PriceCents        *int             `gorm:"column:price_cents"`
	Stock             int              `gorm:"column:stock;not null;default:0"`
	Sold              int              `gorm:"column:sold;not null;default:0"`
	LowStockThreshold int              `gorm:"column:low_stock_threshold;not null;default:10"`
	IsActive          bool             `gorm:"column:is_active;not null;default:true"`
	Variants          []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Images            []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt         *time.Time       `gorm:"column:deleted_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasVariants reports whether the product sells through variants.
func (p *Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// AggregateStock returns the purchasable stock: the variant sum when variants
// exist, the product's own counter otherwise.
func (p *Product) AggregateStock() int {
	if !p.HasVariants() {
		return p.Stock
	}
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// VariantByID resolves a variant on the loaded product.
func (p *Product) VariantByID(id uuid.UUID) *ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}
