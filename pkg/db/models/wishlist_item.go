package models

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem marks a product as one of a user's favorites.
type WishlistItem struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
