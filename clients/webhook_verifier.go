package clients

import (
	"github.com/razorpay/razorpay-go/utils"
)

// WebhookVerifier checks the HMAC-SHA256 signature providers attach to
// callbacks.
type WebhookVerifier interface {
	Verify(signature, body string) bool
}

// SignatureVerifier implements WebhookVerifier with the Razorpay SDK helper.
type SignatureVerifier struct {
	secret string
}

func NewSignatureVerifier(secret string) *SignatureVerifier {
	return &SignatureVerifier{secret: secret}
}

// Verify reports whether signature is the hex HMAC of body under the secret.
// An unset secret rejects every callback.
func (v *SignatureVerifier) Verify(signature, body string) bool {
	if v == nil || v.secret == "" || signature == "" {
		return false
	}
	// The arguments for utils.VerifyWebhookSignature are (payload, signature, secret)
	return utils.VerifyWebhookSignature(body, signature, v.secret)
}
