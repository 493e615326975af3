package razorpay

import (
	"encoding/json"

	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
)

// Webhook event names we act on. Everything else is acknowledged and skipped.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

// WebhookEvent is the envelope Razorpay posts to our webhook endpoint.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// PaymentEntity carries the gateway payment referenced by the event.
type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	AmountCents      int    `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	Method           string `json:"method"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

// ParseWebhookEvent decodes the raw webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook event")
	}
	if event.Event == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook event name is required")
	}
	return &event, nil
}
