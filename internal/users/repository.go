package users

import (
	"context"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository bundles user, address, and wishlist persistence.
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

// FindByID loads the user without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmailOrPhone loads a user by either identifier.
func (r *Repository) FindByEmailOrPhone(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByReferralCode resolves a referral code to its owner.
func (r *Repository) FindByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "referral_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts the user row.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// AdjustWallet applies a signed delta, refusing to take the balance negative.
func (r *Repository) AdjustWallet(ctx context.Context, userID uuid.UUID, deltaCents int) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID)
	if deltaCents < 0 {
		q = q.Where("wallet_cents >= ?", -deltaCents)
	}
	result := q.Update("wallet_cents", gorm.Expr("wallet_cents + ?", deltaCents))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountOrders reports how many orders the user has placed.
func (r *Repository) CountOrders(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListAddresses returns the user's addresses, default first then oldest first.
func (r *Repository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	return addresses, err
}

// FindAddress loads one address scoped to its owner.
func (r *Repository) FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		First(&address, "id = ? AND user_id = ?", addressID, userID).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// ClearDefaultAddresses unsets the default flag on all the user's addresses.
func (r *Repository) ClearDefaultAddresses(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Address{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}

// CreateAddress inserts the address row.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// SaveAddress persists address mutations.
func (r *Repository) SaveAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// DeleteAddress removes the row scoped to its owner.
func (r *Repository) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// OldestAddress returns the user's oldest remaining address, if any.
func (r *Repository) OldestAddress(ctx context.Context, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// FindWishlistItem loads a single favorite row if present.
func (r *Repository) FindWishlistItem(ctx context.Context, userID, productID uuid.UUID) (*models.WishlistItem, error) {
	var item models.WishlistItem
	err := r.db.WithContext(ctx).
		First(&item, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddWishlistItem inserts the favorite row.
func (r *Repository) AddWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// RemoveWishlistItem deletes the favorite row.
func (r *Repository) RemoveWishlistItem(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
}

// ListFavoriteProducts returns the active products the user has favorited.
func (r *Repository) ListFavoriteProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN wishlist_items w ON w.product_id = products.id").
		Where("w.user_id = ? AND products.deleted_at IS NULL AND products.is_active = ?", userID, true).
		Order("w.created_at DESC").
		Preload("Variants").
		Preload("Images").
		Find(&products).Error
	return products, err
}
