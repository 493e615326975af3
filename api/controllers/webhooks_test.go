package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/amitrajput-dev/zelora-backend/internal/payments"
	"github.com/amitrajput-dev/zelora-backend/pkg/db/models"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/pagination"
)

type stubPaymentService struct {
	webhookErr error

	lastBody      []byte
	lastSignature string
	lastEventID   string
}

func (s *stubPaymentService) CreateGatewayOrder(ctx context.Context, userID, orderID uuid.UUID) (*payments.CheckoutSession, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, input payments.VerifyInput) (*models.Payment, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) error {
	s.lastBody = body
	s.lastSignature = signature
	s.lastEventID = eventID
	return s.webhookErr
}

func (s *stubPaymentService) MarkCODCollected(ctx context.Context, orderID uuid.UUID, collectedBy string) (*models.Payment, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	panic("unimplemented")
}

func (s *stubPaymentService) AdminList(ctx context.Context, page pagination.Params) ([]models.Payment, string, error) {
	panic("unimplemented")
}

func TestRazorpayWebhookPassesRawBody(t *testing.T) {
	stub := &stubPaymentService{}
	ctrl := NewWebhookController(stub, nil)

	payload := `{"event":"payment.captured"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(payload))
	req.Header.Set("X-Razorpay-Signature", "sig-value")
	req.Header.Set("X-Razorpay-Event-Id", "evt_123")

	resp := httptest.NewRecorder()
	ctrl.Razorpay(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if string(stub.lastBody) != payload {
		t.Fatalf("body was altered before verification: %s", stub.lastBody)
	}
	if stub.lastSignature != "sig-value" || stub.lastEventID != "evt_123" {
		t.Fatalf("headers not forwarded: %q %q", stub.lastSignature, stub.lastEventID)
	}
}

func TestRazorpayWebhookRequiresSignature(t *testing.T) {
	ctrl := NewWebhookController(&stubPaymentService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	ctrl.Razorpay(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestRazorpayWebhookPropagatesRejection(t *testing.T) {
	ctrl := NewWebhookController(&stubPaymentService{
		webhookErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"),
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", strings.NewReader(`{}`))
	req.Header.Set("X-Razorpay-Signature", "bad")
	resp := httptest.NewRecorder()
	ctrl.Razorpay(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
