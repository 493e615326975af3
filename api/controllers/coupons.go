package controllers

import (
	"net/http"
	"time"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/api/validators"
	"github.com/amitrajput-dev/zelora-backend/internal/coupons"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

// CouponController covers the admin coupon surface plus buyer wallet
// conversion.
type CouponController struct {
	svc coupons.Service
	log *logger.Logger
}

func NewCouponController(svc coupons.Service, log *logger.Logger) *CouponController {
	return &CouponController{svc: svc, log: log}
}

type createCouponRequest struct {
	Code           string     `json:"code" validate:"required,min=3,max=32"`
	Type           string     `json:"type" validate:"required,oneof=percent flat free_shipping"`
	Value          int        `json:"value" validate:"gte=0"`
	Description    *string    `json:"description"`
	MinCartCents   int        `json:"min_cart_cents" validate:"gte=0"`
	StartsAt       *time.Time `json:"starts_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	MaxUses        int        `json:"max_uses" validate:"gte=0"`
	MaxUsesPerUser int        `json:"max_uses_per_user" validate:"gte=0"`
}

func (c *CouponController) Create(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	couponType, err := enums.ParseCouponType(req.Type)
	if err != nil {
		responses.WriteError(w, r, c.log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid coupon type"))
		return
	}

	input := coupons.CreateInput{
		Code:           req.Code,
		Type:           couponType,
		Value:          req.Value,
		Description:    req.Description,
		MinCartCents:   req.MinCartCents,
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: req.MaxUsesPerUser,
	}
	if req.StartsAt != nil {
		input.StartsAt = *req.StartsAt
	}
	if req.ExpiresAt != nil {
		input.ExpiresAt = *req.ExpiresAt
	}
	if adminID, err := authedUser(r); err == nil {
		input.CreatedBy = &adminID
	}

	coupon, err := c.svc.Create(r.Context(), input)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
}

func (c *CouponController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.svc.List(r.Context())
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, list)
}

type setCouponActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (c *CouponController) SetActive(w http.ResponseWriter, r *http.Request) {
	couponID, err := validators.UUIDParam(r, "couponID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req setCouponActiveRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	coupon, err := c.svc.SetActive(r.Context(), couponID, *req.Active)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, coupon)
}

func (c *CouponController) Delete(w http.ResponseWriter, r *http.Request) {
	couponID, err := validators.UUIDParam(r, "couponID")
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	if err := c.svc.Delete(r.Context(), couponID); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]bool{"deleted": true})
}

type validateCouponRequest struct {
	Code           string `json:"code" validate:"required,min=3,max=32"`
	CartTotalCents int    `json:"cart_total_cents" validate:"gte=0"`
}

// Validate prices a coupon against a cart total without consuming a use.
func (c *CouponController) Validate(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req validateCouponRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	coupon, err := c.svc.Validate(r.Context(), req.Code, userID, req.CartTotalCents)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	discount := coupons.ComputeDiscount(coupon, req.CartTotalCents)
	payable := req.CartTotalCents - discount
	if payable < 0 {
		payable = 0
	}
	responses.WriteSuccess(w, map[string]any{
		"coupon":         coupon,
		"discount_cents": discount,
		"payable_cents":  payable,
	})
}

type convertWalletRequest struct {
	AmountCents int `json:"amount_cents" validate:"required,gt=0"`
}

// ConvertWallet mints a single-use coupon from the caller's wallet balance.
func (c *CouponController) ConvertWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	var req convertWalletRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	coupon, err := c.svc.ConvertWallet(r.Context(), userID, req.AmountCents)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
}

// MyWalletCoupons lists coupons minted from the caller's wallet.
func (c *CouponController) MyWalletCoupons(w http.ResponseWriter, r *http.Request) {
	userID, err := authedUser(r)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}

	list, err := c.svc.ListWalletCoupons(r.Context(), userID)
	if err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, list)
}
