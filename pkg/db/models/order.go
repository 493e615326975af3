package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	"github.com/amitrajput-dev/zelora-backend/pkg/types"
)

// Order is an immutable-after-creation snapshot of a checkout. Only
// status-changing operations mutate it; nothing deletes it.
type Order struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	CustomerName  string                `gorm:"column:customer_name;not null"`
	CustomerPhone string                `gorm:"column:customer_phone;not null"`
	CustomerEmail *string               `gorm:"column:customer_email"`
	Address       types.ShippingAddress `gorm:"column:address;type:jsonb;serializer:json"`
	Items         []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	SubtotalCents int                   `gorm:"column:subtotal_cents;not null"`
	ShippingCents int                   `gorm:"column:shipping_cents;not null;default:0"`
	DiscountCents int                   `gorm:"column:discount_cents;not null;default:0"`
	CouponCode    *string               `gorm:"column:coupon_code"`
	TotalCents    int                   `gorm:"column:total_cents;not null"`
	Status        enums.OrderStatus     `gorm:"column:status;not null;default:'pending'"`
	PaymentID     *uuid.UUID            `gorm:"column:payment_id;type:uuid"`
	Payment       *Payment              `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
