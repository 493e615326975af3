package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
)

// User is the storefront identity record for buyers and admins.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex:users_email_key"`
	Phone        string         `gorm:"column:phone;not null;uniqueIndex:users_phone_key"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'buyer'"`
	WalletCents  int            `gorm:"column:wallet_cents;not null;default:0"`
	ReferralCode string         `gorm:"column:referral_code;not null;uniqueIndex:users_referral_code_key"`
	ReferredBy   *string        `gorm:"column:referred_by"`
	Addresses    []Address      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Favorites    []WishlistItem `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
