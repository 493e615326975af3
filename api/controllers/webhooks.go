package controllers

import (
	"io"
	"net/http"

	"github.com/amitrajput-dev/zelora-backend/api/responses"
	"github.com/amitrajput-dev/zelora-backend/internal/payments"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
	"github.com/amitrajput-dev/zelora-backend/pkg/logger"
)

const (
	webhookSignatureHeader = "X-Razorpay-Signature"
	webhookEventIDHeader   = "X-Razorpay-Event-Id"

	// Razorpay payloads are small; anything past this is not a real event.
	webhookBodyLimit = 1 << 20
)

// WebhookController ingests payment gateway callbacks.
type WebhookController struct {
	svc payments.Service
	log *logger.Logger
}

func NewWebhookController(svc payments.Service, log *logger.Logger) *WebhookController {
	return &WebhookController{svc: svc, log: log}
}

// Razorpay verifies and applies a gateway event. The raw body is read before
// any parsing because the signature covers the exact bytes sent.
func (c *WebhookController) Razorpay(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, webhookBodyLimit))
	if err != nil {
		responses.WriteError(w, r, c.log, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read webhook body"))
		return
	}

	signature := r.Header.Get(webhookSignatureHeader)
	if signature == "" {
		responses.WriteError(w, r, c.log, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing webhook signature"))
		return
	}

	eventID := r.Header.Get(webhookEventIDHeader)
	if err := c.svc.HandleWebhook(r.Context(), body, signature, eventID); err != nil {
		responses.WriteError(w, r, c.log, err)
		return
	}
	responses.WriteSuccess(w, map[string]string{"status": "processed"})
}
