package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	couponsvc "github.com/amitrajput-dev/zelora-backend/internal/coupons"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	"github.com/amitrajput-dev/zelora-backend/pkg/enums"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
)

type stubCouponService struct {
	coupon *models.Coupon
	err    error

	lastCode      string
	lastCartTotal int
}

func (s *stubCouponService) Validate(ctx context.Context, code string, userID uuid.UUID, cartTotalCents int) (*models.Coupon, error) {
	s.lastCode = code
	s.lastCartTotal = cartTotalCents
	return s.coupon, s.err
}

func (s *stubCouponService) Redeem(ctx context.Context, tx *gorm.DB, coupon *models.Coupon, userID, orderID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubCouponService) Create(ctx context.Context, input couponsvc.CreateInput) (*models.Coupon, error) {
	panic("unimplemented")
}

func (s *stubCouponService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*models.Coupon, error) {
	panic("unimplemented")
}

func (s *stubCouponService) Delete(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubCouponService) List(ctx context.Context) ([]models.Coupon, error) {
	panic("unimplemented")
}

func (s *stubCouponService) ConvertWallet(ctx context.Context, userID uuid.UUID, amountCents int) (*models.Coupon, error) {
	panic("unimplemented")
}

func (s *stubCouponService) ListWalletCoupons(ctx context.Context, userID uuid.UUID) ([]models.Coupon, error) {
	panic("unimplemented")
}

func TestCouponValidateReturnsDiscountAndPayable(t *testing.T) {
	stub := &stubCouponService{coupon: &models.Coupon{
		Code:  "FESTIVE10",
		Type:  enums.CouponTypePercent,
		Value: 10,
	}}
	ctrl := NewCouponController(stub, nil)

	resp := httptest.NewRecorder()
	ctrl.Validate(resp, authedRequest(http.MethodPost, "/api/v1/coupons/validate",
		`{"code":"FESTIVE10","cart_total_cents":10000}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.lastCode != "FESTIVE10" || stub.lastCartTotal != 10000 {
		t.Fatalf("service got %q/%d", stub.lastCode, stub.lastCartTotal)
	}

	var envelope struct {
		Data struct {
			DiscountCents int `json:"discount_cents"`
			PayableCents  int `json:"payable_cents"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DiscountCents != 1000 {
		t.Fatalf("expected discount 1000, got %d", envelope.Data.DiscountCents)
	}
	if envelope.Data.PayableCents != 9000 {
		t.Fatalf("expected payable 9000, got %d", envelope.Data.PayableCents)
	}
}

func TestCouponValidateCapsPayableAtZero(t *testing.T) {
	stub := &stubCouponService{coupon: &models.Coupon{
		Code:  "BIGFLAT",
		Type:  enums.CouponTypeFlat,
		Value: 5000,
	}}
	ctrl := NewCouponController(stub, nil)

	resp := httptest.NewRecorder()
	ctrl.Validate(resp, authedRequest(http.MethodPost, "/api/v1/coupons/validate",
		`{"code":"BIGFLAT","cart_total_cents":3000}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			DiscountCents int `json:"discount_cents"`
			PayableCents  int `json:"payable_cents"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DiscountCents != 3000 || envelope.Data.PayableCents != 0 {
		t.Fatalf("expected discount capped at total, got %d/%d",
			envelope.Data.DiscountCents, envelope.Data.PayableCents)
	}
}

func TestCouponValidateRequiresIdentity(t *testing.T) {
	ctrl := NewCouponController(&stubCouponService{}, nil)

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/coupons/validate", nil)
	ctrl.Validate(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCouponValidateRejectsMissingCode(t *testing.T) {
	ctrl := NewCouponController(&stubCouponService{}, nil)

	resp := httptest.NewRecorder()
	ctrl.Validate(resp, authedRequest(http.MethodPost, "/api/v1/coupons/validate",
		`{"cart_total_cents":3000}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCouponValidatePropagatesRejection(t *testing.T) {
	stub := &stubCouponService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "coupon has expired")}
	ctrl := NewCouponController(stub, nil)

	resp := httptest.NewRecorder()
	ctrl.Validate(resp, authedRequest(http.MethodPost, "/api/v1/coupons/validate",
		`{"code":"EXPIRED1","cart_total_cents":3000}`))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
