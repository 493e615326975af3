package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyPaymentSignature checks the browser checkout callback signature.
// Razorpay signs "<order_id>|<payment_id>" with the key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	if c == nil {
		return false
	}
	return verifyHMAC(c.keySecret, orderID+"|"+paymentID, signature)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw webhook body using the dedicated webhook secret.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if c == nil || c.webhookSecret == "" {
		return false
	}
	return verifyHMAC(c.webhookSecret, string(body), signature)
}

func verifyHMAC(secret, message, signature string) bool {
	signature = strings.TrimSpace(signature)
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
