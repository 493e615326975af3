package orders

import (
	"context"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the data access layer for orders.
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

func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Repository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "Payment").Save(order).Error
}

// TransitionStatus moves an order between statuses with a guard on the
// current value, so racing transitions collapse into a single winner.
func (r *Repository) TransitionStatus(ctx context.Context, orderID uuid.UUID, from []enums.OrderStatus, to enums.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUser loads an order scoped to its owner.
func (r *Repository) FindForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		First(&order, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListForUser returns the user's orders, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(page.Limit))
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var orders []models.Order
	err = q.Find(&orders).Error
	return orders, err
}

// ListAll returns every order with its payment populated, newest first.
func (r *Repository) ListAll(ctx context.Context, page pagination.Params) ([]models.Order, error) {
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payment").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(page.Limit))
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var orders []models.Order
	err = q.Find(&orders).Error
	return orders, err
}
