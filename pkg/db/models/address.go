package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is one entry in a user's address book. Exactly one address per
// user carries is_default; the repository enforces that on every write.
type Address struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	RecipientName  string    `gorm:"column:recipient_name;not null"`
	RecipientPhone string    `gorm:"column:recipient_phone;not null"`
	Line1          string    `gorm:"column:line1;not null"`
	Line2          *string   `gorm:"column:line2"`
	City           string    `gorm:"column:city;not null"`
	State          string    `gorm:"column:state;not null"`
	PostalCode     string    `gorm:"column:postal_code;not null"`
	Country        string    `gorm:"column:country;not null;default:'IN'"`
	IsDefault      bool      `gorm:"column:is_default;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Address) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
