package payments

import (
	"context"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the data access layer for payment records.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *Repository) FindByOrderAndMode(ctx context.Context, orderID uuid.UUID, mode enums.PaymentMode) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		First(&payment, "order_id = ? AND mode = ?", orderID, mode).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// FindByOrder returns every payment row for the order, oldest first.
func (r *Repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *Repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		First(&payment, "gateway_order_id = ?", gatewayOrderID).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *Repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *Repository) Save(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// TransitionStatus moves a payment between statuses, applying extra column
// updates in the same statement. The status guard makes retried confirmations
// and webhook races collapse into a single winner.
func (r *Repository) TransitionStatus(ctx context.Context, paymentID uuid.UUID, from []enums.PaymentStatus, to enums.PaymentStatus, updates map[string]any) (bool, error) {
	values := map[string]any{"status": to}
	for column, value := range updates {
		values[column] = value
	}
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status IN ?", paymentID, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListAll returns payments for the admin view, newest first.
func (r *Repository) ListAll(ctx context.Context, page pagination.Params) ([]models.Payment, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(page.Limit))
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var payments []models.Payment
	err = q.Find(&payments).Error
	return payments, err
}
