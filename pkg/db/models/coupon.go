package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
)

// Coupon is a discount code. Value is percent points for percent coupons and
// cents for flat coupons; free-shipping coupons carry no value. MaxUses of 0
// means unlimited global uses.
type Coupon struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code           string             `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Type           enums.CouponType   `gorm:"column:type;not null"`
	Value          int                `gorm:"column:value;not null;default:0"`
	Description    *string            `gorm:"column:description"`
	MinCartCents   int                `gorm:"column:min_cart_cents;not null;default:0"`
	StartsAt       time.Time          `gorm:"column:starts_at;not null"`
	ExpiresAt      time.Time          `gorm:"column:expires_at;not null"`
	MaxUses        int                `gorm:"column:max_uses;not null;default:0"`
	MaxUsesPerUser int                `gorm:"column:max_uses_per_user;not null;default:1"`
	Uses           int                `gorm:"column:uses;not null;default:0"`
	Status         enums.CouponStatus `gorm:"column:status;not null;default:'active'"`
	CreatedBy      *uuid.UUID         `gorm:"column:created_by;type:uuid"`
	Usages         []CouponUsage      `gorm:"foreignKey:CouponID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeSave flips past-expiry coupons to inactive on any write.
func (c *Coupon) BeforeSave(*gorm.DB) error {
	if !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt) {
		c.Status = enums.CouponStatusInactive
	}
	return nil
}

// UsageCountFor returns how many ledger entries the loaded coupon carries for
// one user.
func (c *Coupon) UsageCountFor(userID uuid.UUID) int {
	count := 0
	for _, usage := range c.Usages {
		if usage.UserID == userID {
			count++
		}
	}
	return count
}
