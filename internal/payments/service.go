package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amitrajput-dev/zelora-backend/internal/cart"
	"github.com/amitrajput-dev/zelora-backend/internal/orders"
	"github.com/amitrajput-dev/zelora-backend/pkg/db"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
	"github.com/amitrajput-dev/zelora-backend/pkg/razorpay"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gatewayClient interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	KeyID() string
	Currency() string
}

type replayGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// CheckoutSession is what the storefront needs to open the gateway widget.
type CheckoutSession struct {
	OrderID        uuid.UUID `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	AmountCents    int       `json:"amount_cents"`
	Currency       string    `json:"currency"`
	KeyID          string    `json:"key_id"`
}

// VerifyInput carries the callback fields the gateway posts back to the
// storefront after a successful payment.
type VerifyInput struct {
	OrderID          uuid.UUID
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// Service exposes gateway order creation, payment confirmation, webhook
// processing and COD bookkeeping.
type Service interface {
	CreateGatewayOrder(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutSession, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, input VerifyInput) (*models.Payment, error)
	HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error

	MarkCODCollected(ctx context.Context, orderID uuid.UUID, collectedBy string) (*models.Payment, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	AdminList(ctx context.Context, page pagination.Params) ([]models.Payment, string, error)
}

type service struct {
	repo      *Repository
	orderRepo *orders.Repository
	cartRepo  *cart.Repository
	gateway   gatewayClient
	guard     replayGuard
	dbClient  *db.Client
	now       func() time.Time
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	Repo      *Repository
	OrderRepo *orders.Repository
	CartRepo  *cart.Repository
	Gateway   gatewayClient
	Guard     replayGuard
	DBClient  *db.Client
}

// NewService constructs a payment service instance. Gateway may be nil when
// online payments are not configured; the gateway endpoints then refuse with
// a dependency error instead of a panic.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Guard == nil {
		return nil, fmt.Errorf("replay guard required")
	}
	if params.DBClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:      params.Repo,
		orderRepo: params.OrderRepo,
		cartRepo:  params.CartRepo,
		gateway:   params.Gateway,
		guard:     params.Guard,
		dbClient:  params.DBClient,
		now:       time.Now,
	}, nil
}

// CreateGatewayOrder creates (or returns) the gateway order backing an online
// payment. Calling it again before paying reuses the existing gateway order.
func (s *service) CreateGatewayOrder(ctx context.Context, userID, orderID uuid.UUID) (*CheckoutSession, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "online payments are not configured")
	}

	order, err := s.orderRepo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	payment, err := s.repo.FindByOrderAndMode(ctx, order.ID, enums.PaymentModeOnline)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order was not placed for online payment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}
	if payment.Status == enums.PaymentStatusSuccess {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	if payment.GatewayOrderID != nil {
		return s.sessionFor(order.ID, *payment.GatewayOrderID, payment.AmountCents), nil
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		AmountCents: payment.AmountCents,
		Receipt:     order.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	payment.GatewayOrderID = &gatewayOrder.ID
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save gateway order id")
	}
	return s.sessionFor(order.ID, gatewayOrder.ID, payment.AmountCents), nil
}

func (s *service) sessionFor(orderID uuid.UUID, gatewayOrderID string, amountCents int) *CheckoutSession {
	return &CheckoutSession{
		OrderID:        orderID,
		GatewayOrderID: gatewayOrderID,
		AmountCents:    amountCents,
		Currency:       s.gateway.Currency(),
		KeyID:          s.gateway.KeyID(),
	}
}

// VerifyPayment confirms a payment from the storefront callback. The
// signature covers the gateway order and payment ids, so a tampered callback
// never marks anything paid.
func (s *service) VerifyPayment(ctx context.Context, userID uuid.UUID, input VerifyInput) (*models.Payment, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "online payments are not configured")
	}
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order, payment and signature are required")
	}

	order, err := s.orderRepo.FindForUser(ctx, userID, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find order")
	}

	payment, err := s.repo.FindByOrderAndMode(ctx, order.ID, enums.PaymentModeOnline)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order was not placed for online payment")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}
	if payment.GatewayOrderID == nil || *payment.GatewayOrderID != input.GatewayOrderID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order mismatch")
	}
	if !s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid payment signature")
	}

	if err := s.confirm(ctx, payment, input.GatewayPaymentID, &input.Signature); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, payment.ID)
}

// HandleWebhook processes a gateway webhook delivery. Duplicate deliveries
// are dropped by the replay guard; a failed delivery releases its mark so the
// gateway's retry can succeed.
func (s *service) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	if s.gateway == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "online payments are not configured")
	}
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}

	event, err := razorpay.ParseWebhookEvent(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse webhook event")
	}

	entity := event.Payload.Payment.Entity
	if eventID == "" {
		eventID = fmt.Sprintf("%s:%s", event.Event, entity.ID)
	}
	seen, err := s.guard.CheckAndMark(ctx, eventID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook replay guard")
	}
	if seen {
		return nil
	}

	if err := s.applyWebhook(ctx, event); err != nil {
		if delErr := s.guard.Delete(ctx, eventID); delErr != nil {
			return errors.Join(err, delErr)
		}
		return err
	}
	return nil
}

func (s *service) applyWebhook(ctx context.Context, event *razorpay.WebhookEvent) error {
	entity := event.Payload.Payment.Entity

	switch event.Event {
	case razorpay.EventPaymentCaptured:
		payment, err := s.findByGatewayOrder(ctx, entity.OrderID)
		if err != nil {
			return err
		}
		return s.confirm(ctx, payment, entity.ID, nil)
	case razorpay.EventPaymentFailed:
		payment, err := s.findByGatewayOrder(ctx, entity.OrderID)
		if err != nil {
			return err
		}
		// A failure landing after a capture is stale; the status guard
		// drops it.
		if _, err := s.repo.TransitionStatus(ctx, payment.ID,
			[]enums.PaymentStatus{enums.PaymentStatusPending},
			enums.PaymentStatusFailed,
			map[string]any{"gateway_payment_id": entity.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark payment failed")
		}
		return nil
	default:
		return nil
	}
}

func (s *service) findByGatewayOrder(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	if gatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook payload missing order id")
	}
	payment, err := s.repo.FindByGatewayOrderID(ctx, gatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found for gateway order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}
	return payment, nil
}

// confirm marks the payment successful and moves the order forward. The
// status-guarded update makes the verify callback and the webhook idempotent
// against each other: whichever lands second becomes a no-op.
func (s *service) confirm(ctx context.Context, payment *models.Payment, gatewayPaymentID string, signature *string) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		updates := map[string]any{"gateway_payment_id": gatewayPaymentID}
		if signature != nil {
			updates["signature"] = *signature
		}
		moved, err := repo.TransitionStatus(ctx, payment.ID,
			[]enums.PaymentStatus{enums.PaymentStatusPending, enums.PaymentStatusFailed},
			enums.PaymentStatusSuccess, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm payment")
		}
		if !moved {
			current, err := repo.FindByID(ctx, payment.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload payment")
			}
			if current.Status == enums.PaymentStatusSuccess {
				return nil
			}
			return pkgerrors.Newf(pkgerrors.CodeStateConflict,
				"payment cannot be confirmed from status %s", current.Status)
		}

		res := tx.WithContext(ctx).
			Model(&models.Order{}).
			Where("id = ? AND status = ?", payment.OrderID, enums.OrderStatusPending).
			Update("status", enums.OrderStatusProcessing)
		if res.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "advance order")
		}

		var order models.Order
		if err := tx.WithContext(ctx).First(&order, "id = ?", payment.OrderID).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if err := s.cartRepo.WithTx(tx).ClearByUser(ctx, order.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}
		return nil
	})
}

// MarkCODCollected records who took the cash and when, and settles the
// payment.
func (s *service) MarkCODCollected(ctx context.Context, orderID uuid.UUID, collectedBy string) (*models.Payment, error) {
	if collectedBy == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "collector name is required")
	}

	payment, err := s.repo.FindByOrderAndMode(ctx, orderID, enums.PaymentModeCOD)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cash on delivery payment for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find payment")
	}

	moved, err := s.repo.TransitionStatus(ctx, payment.ID,
		[]enums.PaymentStatus{enums.PaymentStatusUnpaid},
		enums.PaymentStatusSuccess,
		map[string]any{
			"collected_by": collectedBy,
			"collected_at": s.now(),
		})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark collected")
	}
	if !moved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not awaiting collection")
	}
	return s.repo.FindByID(ctx, payment.ID)
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	payments, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list order payments")
	}
	if len(payments) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payments for this order")
	}
	return payments, nil
}

func (s *service) AdminList(ctx context.Context, page pagination.Params) ([]models.Payment, string, error) {
	rows, err := s.repo.ListAll(ctx, page)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	trimmed, more := pagination.TrimPage(rows, page.Limit)
	next := ""
	if more && len(trimmed) > 0 {
		last := trimmed[len(trimmed)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return trimmed, next, nil
}
