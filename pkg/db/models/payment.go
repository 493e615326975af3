package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
)

// Payment is the single payment record per order+mode, created lazily on
// first need and updated by verification or webhook events. Never deleted.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID          uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex:payments_order_mode_key"`
	Mode             enums.PaymentMode   `gorm:"column:mode;not null;uniqueIndex:payments_order_mode_key"`
	Status           enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	AmountCents      int                 `gorm:"column:amount_cents;not null"`
	Gateway          *string             `gorm:"column:gateway"`
	GatewayOrderID   *string             `gorm:"column:gateway_order_id;index"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id"`
	Signature        *string             `gorm:"column:signature"`
	CollectedBy      *string             `gorm:"column:collected_by"`
	CollectedAt      *time.Time          `gorm:"column:collected_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
