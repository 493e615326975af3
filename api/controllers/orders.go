package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/api/validators"
	"github.com/amitrajput-dev/zelora-backend/internal/orders"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// OrderController covers checkout, the buyer order surface and the admin
// order surface.
type OrderController struct {
	svc orders.Service
	log *logger.Logger
}

func NewOrderController(svc orders.Service, log *logger.Logger) *OrderController {
	return &OrderController{svc: svc, log: log}
}

type checkoutRequest struct {
	AddressID   uuid.UUID `json:"address_id" validate:"required"`
	PaymentMode string    `json:"payment_mode" validate:"required,oneof=cod online"`
	CouponCode  string    `json:"coupon_code" validate:"omitempty,max=32"`
}

// Checkout converts the caller's cart into an order.
func (c *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req checkoutRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	mode, err := enums.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		responses.WriteError(w, r, c.log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment mode"))
		return
	}

	order, err := c.svc.Checkout(r.Context(), userID, orders.CheckoutInput{
		AddressID:   req.AddressID,
		PaymentMode: mode,
		CouponCode:  req.CouponCode,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, order)
}

// ListMine pages through the caller's own orders.
func (c *OrderController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	page, err := validators.PaginationParams(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	list, next, err := c.svc.ListMyOrders(r.Context(), userID, page)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{
		"orders":      list,
		"next_cursor": next,
	})
}

// GetMine fetches one of the caller's orders with items and payment.
func (c *OrderController) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	order, err := c.svc.GetMyOrder(r.Context(), userID, orderID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, order)
}

// Cancel cancels one of the caller's orders while it is still cancellable.
func (c *OrderController) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	order, err := c.svc.Cancel(r.Context(), orders.CancelInput{
		OrderID: orderID,
		UserID:  userID,
	})
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, order)
}

// AdminList pages through every order.
func (c *OrderController) AdminList(w http.ResponseWriter, r *http.Request) {
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
		"orders":      list,
		"next_cursor": next,
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

// AdminUpdateStatus moves an order along its lifecycle.
func (c *OrderController) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := validators.UUIDParam(r, "orderID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req updateOrderStatusRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	status, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		responses.WriteError(w, r, c.log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
		return
	}

	order, err := c.svc.AdminUpdateStatus(r.Context(), orderID, status)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, order)
}
