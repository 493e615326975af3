package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductImage holds metadata for an externally stored image. The storage
// provider owns the bytes; we keep the URL plus the opaque id used to delete.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	PublicID  string    `gorm:"column:public_id;not null"`
	Position  int       `gorm:"column:position;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *ProductImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
