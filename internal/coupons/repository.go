package coupons

import (
	"context"

	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the data access layer for coupons and their usage ledger.
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

func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *Repository) Create(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *Repository) Save(ctx context.Context, coupon *models.Coupon) error {
	return r.db.WithContext(ctx).Save(coupon).Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Coupon{}, "id = ?", id).Error
}

func (r *Repository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&coupons).Error
	return coupons, err
}

// CountUserUsages returns how many times one user has redeemed the coupon.
func (r *Repository) CountUserUsages(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&count).Error
	return int(count), err
}

// CountUsages returns the total number of ledger rows for the coupon.
func (r *Repository) CountUsages(ctx context.Context, couponID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CouponUsage{}).
		Where("coupon_id = ?", couponID).
		Count(&count).Error
	return int(count), err
}

// AppendUsage writes one ledger row. Callers run it inside the checkout
// transaction so a rolled-back order leaves no usage behind.
func (r *Repository) AppendUsage(ctx context.Context, usage *models.CouponUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

// IncrementUses bumps the global counter, refusing once the cap is hit. The
// conditional update keeps concurrent checkouts from overshooting MaxUses.
func (r *Repository) IncrementUses(ctx context.Context, couponID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Coupon{}).
		Where("id = ? AND (max_uses = 0 OR uses < max_uses)", couponID).
		Update("uses", gorm.Expr("uses + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListByCreator returns coupons minted for one user, newest first. Wallet
// conversions record the owner in created_by.
func (r *Repository) ListByCreator(ctx context.Context, userID uuid.UUID, codePrefix string) ([]models.Coupon, error) {
	var coupons []models.Coupon
	q := r.db.WithContext(ctx).Where("created_by = ?", userID)
	if codePrefix != "" {
		q = q.Where("code LIKE ?", codePrefix+"%")
	}
	err := q.Order("created_at DESC").Find(&coupons).Error
	return coupons, err
}
