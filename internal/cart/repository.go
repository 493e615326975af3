package cart

import (
	"context"
	"errors"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles cart and cart line persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetOrCreate returns the user's cart, creating it on first use.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&cart, "user_id = ?", userID).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindLine returns the cart line matching product and optional variant.
func (r *Repository) FindLine(ctx context.Context, cartID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartItem, error) {
	q := r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID)
	if variantID != nil {
		q = q.Where("variant_id = ?", *variantID)
	} else {
		q = q.Where("variant_id IS NULL")
	}

	var item models.CartItem
	if err := q.First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateLine inserts a cart line.
func (r *Repository) CreateLine(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// SaveLine persists line mutations.
func (r *Repository) SaveLine(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteLine removes one line by id.
func (r *Repository) DeleteLine(ctx context.Context, lineID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", lineID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteLines removes the given lines from a cart, used after checkout.
func (r *Repository) DeleteLines(ctx context.Context, cartID uuid.UUID, lineIDs []uuid.UUID) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND id IN ?", cartID, lineIDs).
		Delete(&models.CartItem{}).Error
}

// Clear removes every line from the cart.
func (r *Repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}

// ClearByUser removes every line from the user's cart, if one exists.
func (r *Repository) ClearByUser(ctx context.Context, userID uuid.UUID) error {
	var cart models.Cart
	err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.Clear(ctx, cart.ID)
}

// ListLines returns all lines for the cart, oldest first.
func (r *Repository) ListLines(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// LoadProduct fetches the live product with variants for repopulation.
func (r *Repository) LoadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Preload("Variants").
		Preload("Images").
		First(&product, "id = ?", productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}
