package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amitrajput-dev/zelora-backend/pkg/config"
	pkgerrors "github.com/amitrajput-dev/zelora-backend/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.razorpay.com"
	defaultCurrency            = "INR"
	responseBodyReadLimit int64 = 1024
)

var (
	errKeyIDRequired     = errors.New("razorpay key id is required")
	errKeySecretRequired = errors.New("razorpay key secret is required")
)

// Client wraps the Razorpay Orders API used for online checkout.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Razorpay API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Razorpay wrapper and validates the credentials.
func NewClient(cfg config.RazorpayConfig, opts ...Option) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errKeySecretRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       defaultBaseURL,
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		currency:      defaultCurrency,
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}
	if trimmed := strings.TrimSpace(cfg.Currency); trimmed != "" {
		client.currency = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// KeyID returns the public key id handed to browser checkout widgets.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// OrderRequest describes the payload sent to the Razorpay order-create API.
type OrderRequest struct {
	AmountCents int
	Receipt     string
	Notes       map[string]string
}

// Order represents the gateway order returned by Razorpay.
type Order struct {
	ID          string `json:"id"`
	AmountCents int    `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// CreateOrder registers an order with the gateway. Amounts are in the
// currency's smallest unit, which matches our cents representation.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay client not configured")
	}
	if req.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order amount must be positive")
	}

	body := map[string]any{
		"amount":   req.AmountCents,
		"currency": c.currency,
	}
	if req.Receipt != "" {
		body["receipt"] = req.Receipt
	}
	if len(req.Notes) > 0 {
		body["notes"] = req.Notes
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal order request")
	}

	url := strings.TrimRight(c.baseURL, "/") + "/v1/orders"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build order request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute order request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "order request failed")
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode order response")
	}
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "gateway returned order without id")
	}

	return &order, nil
}
