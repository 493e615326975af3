package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/amitrajput-dev/zelora-backend/internal/cart"
	"github.com/amitrajput-dev/zelora-backend/internal/catalog"
	"github.com/amitrajput-dev/zelora-backend/internal/coupons"
	"github.com/amitrajput-dev/zelora-backend/internal/users"
	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
	"github.com/amitrajput-dev/zelora-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const gatewayName = "razorpay"

// CheckoutInput is the payload for placing an order from the current cart.
type CheckoutInput struct {
	AddressID   uuid.UUID
	PaymentMode enums.PaymentMode
	CouponCode  string
}

// CancelInput identifies an order to cancel and who is cancelling it.
type CancelInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
	AsAdmin bool
}

// Service exposes checkout, the order lifecycle and listings.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*models.Order, error)
	GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Order, string, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)

	AdminList(ctx context.Context, page pagination.Params) ([]models.Order, string, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo      *Repository
	cartRepo  *cart.Repository
	userRepo  *users.Repository
	couponSvc coupons.Service
	dbClient  *db.Client
	cfg       config.CheckoutConfig
}

// NewService constructs an order service instance.
func NewService(repo *Repository, cartRepo *cart.Repository, userRepo *users.Repository, couponSvc coupons.Service, dbClient *db.Client, cfg config.CheckoutConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:      repo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		couponSvc: couponSvc,
		dbClient:  dbClient,
		cfg:       cfg,
	}, nil
}

// Checkout turns the user's cart into an order inside one transaction: stock
// reservation, price snapshots, coupon resolution, order and payment rows,
// cart line removal and the coupon usage append all commit or roll back
// together.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*models.Order, error) {
	if !input.PaymentMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	address, err := s.userRepo.FindAddress(ctx, userID, input.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}

	var order *models.Order
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)

		userCart, err := cartRepo.GetOrCreate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
		}
		lines, err := cartRepo.ListLines(ctx, userCart.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		items, requests, lineIDs, subtotal, err := s.snapshotLines(ctx, cartRepo, lines)
		if err != nil {
			return err
		}

		results, err := catalog.ReserveStock(ctx, tx, requests)
		if err != nil {
			return err
		}
		for _, result := range results {
			if !result.Reserved {
				return pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"insufficient stock for product %s", result.ProductID)
			}
		}

		coupon, err := s.resolveCoupon(ctx, userID, input.CouponCode, subtotal)
		if err != nil {
			return err
		}

		shipping := s.shippingFor(subtotal, coupon)
		discount := coupons.ComputeDiscount(coupon, subtotal)
		total := subtotal + shipping - discount
		if total < 0 {
			total = 0
		}

		order = &models.Order{
			UserID:        userID,
			CustomerName:  user.Name,
			CustomerPhone: user.Phone,
			CustomerEmail: &user.Email,
			Address:       users.ShippingAddressFromModel(address),
			Items:         items,
			SubtotalCents: subtotal,
			ShippingCents: shipping,
			DiscountCents: discount,
			TotalCents:    total,
			Status:        enums.OrderStatusPending,
		}
		if coupon != nil {
			order.CouponCode = &coupon.Code
		}

		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		payment := &models.Payment{
			OrderID:     order.ID,
			Mode:        input.PaymentMode,
			Status:      input.PaymentMode.InitialPaymentStatus(),
			AmountCents: total,
		}
		if input.PaymentMode == enums.PaymentModeOnline {
			gateway := gatewayName
			payment.Gateway = &gateway
		}
		if err := tx.WithContext(ctx).Create(payment).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
		}
		order.PaymentID = &payment.ID
		order.Payment = payment
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link payment")
		}

		if err := cartRepo.DeleteLines(ctx, userCart.ID, lineIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart lines")
		}

		if coupon != nil {
			if err := s.couponSvc.Redeem(ctx, tx, coupon, userID, order.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// snapshotLines freezes each cart line against the live catalog: current
// titles, variant snapshots and unit prices become order items.
func (s *service) snapshotLines(ctx context.Context, cartRepo *cart.Repository, lines []models.CartItem) ([]models.OrderItem, []catalog.StockRequest, []uuid.UUID, int, error) {
	items := make([]models.OrderItem, 0, len(lines))
	requests := make([]catalog.StockRequest, 0, len(lines))
	lineIDs := make([]uuid.UUID, 0, len(lines))
	subtotal := 0

	for _, line := range lines {
		product, err := cartRepo.LoadProduct(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, nil, 0, pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"product %s is no longer available", line.ProductID)
			}
			return nil, nil, nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if !product.IsActive {
			return nil, nil, nil, 0, pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"product %q is no longer available", product.Title)
		}

		item := models.OrderItem{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Title:     product.Title,
			Quantity:  line.Quantity,
		}
		if line.VariantID != nil {
			variant := product.VariantByID(*line.VariantID)
			if variant == nil {
				return nil, nil, nil, 0, pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"a variant of %q is no longer available", product.Title)
			}
			snapshot := &types.VariantSnapshot{Size: variant.Size, PriceCents: variant.PriceCents}
			if variant.SKU != nil {
				snapshot.SKU = *variant.SKU
			}
			item.Variant = snapshot
			item.UnitPriceCents = variant.PriceCents
		} else {
			if product.PriceCents == nil {
				return nil, nil, nil, 0, pkgerrors.Newf(pkgerrors.CodeStateConflict,
					"product %q requires a variant selection", product.Title)
			}
			item.UnitPriceCents = *product.PriceCents
		}
		item.SubtotalCents = item.UnitPriceCents * item.Quantity
		subtotal += item.SubtotalCents

		items = append(items, item)
		requests = append(requests, catalog.StockRequest{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Qty:       line.Quantity,
		})
		lineIDs = append(lineIDs, line.ID)
	}
	return items, requests, lineIDs, subtotal, nil
}

// resolveCoupon validates an explicit code, or auto-applies the welcome coupon
// on the user's first order. The welcome coupon is best effort, a missing or
// exhausted welcome code never blocks checkout.
func (s *service) resolveCoupon(ctx context.Context, userID uuid.UUID, code string, subtotal int) (*models.Coupon, error) {
	if code != "" {
		return s.couponSvc.Validate(ctx, code, userID, subtotal)
	}
	if s.cfg.WelcomeCouponCode == "" {
		return nil, nil
	}

	placed, err := s.userRepo.CountOrders(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	if placed > 0 {
		return nil, nil
	}

	coupon, err := s.couponSvc.Validate(ctx, s.cfg.WelcomeCouponCode, userID, subtotal)
	if err != nil {
		return nil, nil
	}
	return coupon, nil
}

func (s *service) shippingFor(subtotal int, coupon *models.Coupon) int {
	if coupon != nil && coupon.Type == enums.CouponTypeFreeShipping {
		return 0
	}
	if subtotal >= s.cfg.FreeShippingMinCents {
		return 0
	}
	return s.cfg.ShippingFeeCents
}

func (s *service) GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}
	return order, nil
}

func (s *service) ListMyOrders(ctx context.Context, userID uuid.UUID, page pagination.Params) ([]models.Order, string, error) {
	rows, err := s.repo.ListForUser(ctx, userID, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return trimOrders(rows, page.Limit)
}

// Cancel cancels a pending or processing order, restores its stock and marks
// the payment refunded.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	var order *models.Order
	var err error
	if input.AsAdmin {
		order, err = s.repo.FindByID(ctx, input.OrderID)
	} else {
		order, err = s.repo.FindForUser(ctx, input.UserID, input.OrderID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"cannot cancel an order in status %s", order.Status)
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// The guarded update is the authoritative check; the read above can
		// be stale when two cancellations race, and stock must only be
		// released by the one that actually moved the row.
		moved, err := repo.TransitionStatus(ctx, order.ID,
			[]enums.OrderStatus{enums.OrderStatusPending, enums.OrderStatusProcessing},
			enums.OrderStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel order")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
		}
		order.Status = enums.OrderStatusCancelled

		requests := make([]catalog.StockRequest, 0, len(order.Items))
		for _, item := range order.Items {
			requests = append(requests, catalog.StockRequest{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Qty:       item.Quantity,
			})
		}
		if err := catalog.ReleaseStock(ctx, tx, requests); err != nil {
			return err
		}

		if order.Payment != nil {
			res := tx.WithContext(ctx).
				Model(&models.Payment{}).
				Where("id = ?", order.Payment.ID).
				Update("status", enums.PaymentStatusRefunded)
			if res.Error != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "refund payment")
			}
			order.Payment.Status = enums.PaymentStatusRefunded
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) AdminList(ctx context.Context, page pagination.Params) ([]models.Order, string, error) {
	rows, err := s.repo.ListAll(ctx, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return trimOrders(rows, page.Limit)
}

// AdminUpdateStatus moves an order forward through its lifecycle. Cancellation
// goes through Cancel so stock restoration is never skipped.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if next == enums.OrderStatusCancelled {
		return s.Cancel(ctx, CancelInput{OrderID: orderID, AsAdmin: true})
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"cannot move order from %s to %s", order.Status, next)
	}

	order.Status = next
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
	}
	return order, nil
}

func trimOrders(rows []models.Order, limit int) ([]models.Order, string, error) {
	page, more := pagination.TrimPage(rows, limit)
	next := ""
	if more && len(page) > 0 {
		last := page[len(page)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, next, nil
}
