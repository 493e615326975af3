package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CouponUsage is one entry in a coupon's usage ledger, appended inside the
// checkout transaction that applied the discount.
type CouponUsage struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CouponID uuid.UUID  `gorm:"column:coupon_id;type:uuid;not null;index"`
	UserID   uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	OrderID  *uuid.UUID `gorm:"column:order_id;type:uuid"`
	UsedAt   time.Time  `gorm:"column:used_at;not null;autoCreateTime"`
}

func (u *CouponUsage) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
