package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/api/validators"
	"github.com/amitrajput-dev/zelora-backend/internal/payments"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// PaymentController exposes gateway order creation, client-side payment
// verification and the admin payment surface.
type PaymentController struct {
	svc payments.Service
	log *logger.Logger
}

func NewPaymentController(svc payments.Service, log *logger.Logger) *PaymentController {
	return &PaymentController{svc: svc, log: log}
}

type createGatewayOrderRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// CreateGatewayOrder opens (or resumes) a gateway checkout session for an
// online order.
func (c *PaymentController) CreateGatewayOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req createGatewayOrderRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	session, err := c.svc.CreateGatewayOrder(r.Context(), userID, req.OrderID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, session)
}

type verifyPaymentRequest struct {
	OrderID          uuid.UUID `json:"order_id" validate:"required"`
	GatewayOrderID   string    `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string    `json:"razorpay_payment_id" validate:"required"`
	Signature        string    `json:"razorpay_signature" validate:"required"`
}

// Verify confirms a payment from the client-side checkout callback.
func (c *PaymentController) Verify(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req verifyPaymentRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	payment, err := c.svc.VerifyPayment(r.Context(), userID, payments.VerifyInput{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, payment)
}

type markCODCollectedRequest struct {
	CollectedBy string `json:"collected_by" validate:"required,max=120"`
}

// MarkCODCollected records cash collection against a COD order.
func (c *PaymentController) MarkCODCollected(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req markCODCollectedRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	payment, err := c.svc.MarkCODCollected(r.Context(), orderID, req.CollectedBy)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, payment)
}

// ByOrder lists payment attempts for one order.
func (c *PaymentController) ByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	list, err := c.svc.GetByOrder(r.Context(), orderID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, list)
}

// AdminList pages through every payment.
func (c *PaymentController) AdminList(w http.ResponseWriter, r *http.Request) {
	page, err := validators.PaginationParams(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	list, next, err := c.svc.AdminList(r.Context(), page)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{
		"payments":    list,
		"next_cursor": next,
	})
}
