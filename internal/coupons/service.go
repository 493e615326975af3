package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amitrajput-dev/zelora-backend/internal/users"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	walletCouponPrefix     = "WALLET"
	walletCouponCodeDigits = 4
	walletCouponMaxMints   = 3
)

// CreateInput is the admin payload for a new coupon.
type CreateInput struct {
	Code           string
	Type           enums.CouponType
	Value          int
	Description    *string
	MinCartCents   int
	StartsAt       time.Time
	ExpiresAt      time.Time
	MaxUses        int
	MaxUsesPerUser int
	CreatedBy      *uuid.UUID
}

// Service exposes coupon validation, redemption bookkeeping, admin CRUD and
// wallet conversion.
type Service interface {
	Validate(ctx context.Context, code string, userID uuid.UUID, cartTotalCents int) (*models.Coupon, error)
	Redeem(ctx context.Context, tx *gorm.DB, coupon *models.Coupon, userID, orderID uuid.UUID) error

	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]models.Coupon, error)

	ConvertWallet(ctx context.Context, userID uuid.UUID, amountCents int) (*models.Coupon, error)
	ListWalletCoupons(ctx context.Context, userID uuid.UUID) ([]models.Coupon, error)
}

type service struct {
	repo     *Repository
	userRepo *users.Repository
	dbClient *db.Client
	cfg      config.CheckoutConfig
	now      func() time.Time
}

// NewService constructs a coupon service instance.
func NewService(repo *Repository, userRepo *users.Repository, dbClient *db.Client, cfg config.CheckoutConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		userRepo: userRepo,
		dbClient: dbClient,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// Validate runs the redemption checks without consuming anything. Checkout
// calls it before reserving stock, then Redeem inside its transaction.
func (s *service) Validate(ctx context.Context, code string, userID uuid.UUID, cartTotalCents int) (*models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find coupon")
	}

	now := s.now()
	if coupon.Status != enums.CouponStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is not active")
	}
	if now.Before(coupon.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon is not yet active")
	}
	if now.After(coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon has expired")
	}
	if cartTotalCents < coupon.MinCartCents {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"cart total below coupon minimum of %d cents", coupon.MinCartCents)
	}

	if coupon.MaxUsesPerUser > 0 {
		used, err := s.repo.CountUserUsages(ctx, coupon.ID, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count coupon usages")
		}
		if used >= coupon.MaxUsesPerUser {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon usage limit reached")
		}
	}
	if coupon.MaxUses > 0 && coupon.Uses >= coupon.MaxUses {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "coupon fully redeemed")
	}
	return coupon, nil
}

// Redeem appends a ledger row and bumps the global counter inside the caller's
// transaction. The conditional counter update re-checks the global cap so two
// concurrent checkouts cannot both take the last use. It also locks the coupon
// row, which serializes the per-user recount below: a second checkout blocks
// on the counter update and then sees the first one's ledger row.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, coupon *models.Coupon, userID, orderID uuid.UUID) error {
	if coupon == nil {
		return nil
	}
	repo := s.repo.WithTx(tx)

	ok, err := repo.IncrementUses(ctx, coupon.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment coupon uses")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon fully redeemed")
	}

	if coupon.MaxUsesPerUser > 0 {
		used, err := repo.CountUserUsages(ctx, coupon.ID, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count coupon usages")
		}
		if used >= coupon.MaxUsesPerUser {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon usage limit reached")
		}
	}

	usage := &models.CouponUsage{
		CouponID: coupon.ID,
		UserID:   userID,
		OrderID:  &orderID,
		UsedAt:   s.now(),
	}
	if err := repo.AppendUsage(ctx, usage); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append coupon usage")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon type")
	}
	if input.Type.RequiresValue() && input.Value <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon value must be positive")
	}
	if input.Type == enums.CouponTypePercent && input.Value > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent value cannot exceed 100")
	}
	if input.MinCartCents < 0 || input.MaxUses < 0 || input.MaxUsesPerUser < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon limits cannot be negative")
	}
	if !input.ExpiresAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be after the start time")
	}

	coupon := &models.Coupon{
		Code:           code,
		Type:           input.Type,
		Value:          input.Value,
		Description:    input.Description,
		MinCartCents:   input.MinCartCents,
		StartsAt:       input.StartsAt,
		ExpiresAt:      input.ExpiresAt,
		MaxUses:        input.MaxUses,
		MaxUsesPerUser: input.MaxUsesPerUser,
		Status:         enums.CouponStatusActive,
		CreatedBy:      input.CreatedBy,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create coupon")
	}
	return coupon, nil
}

// SetActive toggles a coupon. Reactivation is refused once the coupon has
// expired; extend the expiry first.
func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error) {
	coupon, err := s.findCoupon(ctx, id)
	if err != nil {
		return nil, err
	}

	if active && s.now().After(coupon.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot reactivate an expired coupon")
	}

	if active {
		coupon.Status = enums.CouponStatusActive
	} else {
		coupon.Status = enums.CouponStatusInactive
	}
	if err := s.repo.Save(ctx, coupon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save coupon")
	}
	return coupon, nil
}

// Delete removes a coupon that has never been redeemed. Redeemed coupons stay
// for the sake of the usage ledger; deactivate them instead.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.findCoupon(ctx, id)
	if err != nil {
		return err
	}

	used, err := s.repo.CountUsages(ctx, coupon.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count coupon usages")
	}
	if used > 0 || coupon.Uses > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "coupon has been redeemed and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, coupon.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete coupon")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list coupons")
	}
	return coupons, nil
}

// ConvertWallet debits the wallet and mints a single-use flat coupon for the
// debited amount. Debit and mint share one transaction, so a code collision
// or counter failure leaves the wallet untouched.
func (s *service) ConvertWallet(ctx context.Context, userID uuid.UUID, amountCents int) (*models.Coupon, error) {
	if amountCents < s.cfg.WalletCouponMinCents {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"conversion amount must be at least %d cents", s.cfg.WalletCouponMinCents)
	}

	var coupon *models.Coupon
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		debited, err := s.userRepo.WithTx(tx).AdjustWallet(ctx, userID, -amountCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit wallet")
		}
		if !debited {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient wallet balance")
		}

		now := s.now()
		repo := s.repo.WithTx(tx)
		for attempt := 0; attempt < walletCouponMaxMints; attempt++ {
			code, err := security.GenerateCodeWithPrefix(walletCouponPrefix, walletCouponCodeDigits)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate coupon code")
			}
			candidate := &models.Coupon{
				Code:           code,
				Type:           enums.CouponTypeFlat,
				Value:          amountCents,
				StartsAt:       now,
				ExpiresAt:      now.AddDate(0, 0, s.cfg.WalletCouponTTLDays),
				MaxUses:        1,
				MaxUsesPerUser: 1,
				Status:         enums.CouponStatusActive,
				CreatedBy:      &userID,
			}
			if err := repo.Create(ctx, candidate); err != nil {
				if !db.IsUniqueViolation(err, "") {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint wallet coupon")
				}
				continue
			}
			coupon = candidate
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeInternal, "could not mint a unique wallet coupon code")
	})
	if err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *service) ListWalletCoupons(ctx context.Context, userID uuid.UUID) ([]models.Coupon, error) {
	coupons, err := s.repo.ListByCreator(ctx, userID, walletCouponPrefix)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wallet coupons")
	}
	return coupons, nil
}

func (s *service) findCoupon(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find coupon")
	}
	return coupon, nil
}
