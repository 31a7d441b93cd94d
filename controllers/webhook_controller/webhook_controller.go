package webhook_controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/clients"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/services/escrow_service"
	"github.com/joy095/settlement/services/payout_service"
	"github.com/joy095/settlement/utils"
)

const SignatureHeader = "X-Webhook-Signature"

type WebhookController struct {
	payouts         *payout_service.Service
	escrow          *escrow_service.Service
	transferSigning clients.WebhookVerifier
	paymentSigning  clients.WebhookVerifier
}

func NewWebhookController(payouts *payout_service.Service, escrow *escrow_service.Service, transferSigning, paymentSigning clients.WebhookVerifier) (*WebhookController, error) {
	if payouts == nil || escrow == nil || transferSigning == nil || paymentSigning == nil {
		return nil, errors.New("webhook controller dependencies cannot be nil")
	}
	return &WebhookController{
		payouts:         payouts,
		escrow:          escrow,
		transferSigning: transferSigning,
		paymentSigning:  paymentSigning,
	}, nil
}

// signedBody returns the raw body when its signature verifies.
func signedBody(c *gin.Context, verifier clients.WebhookVerifier) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return nil, false
	}
	if !verifier.Verify(c.GetHeader(SignatureHeader), string(body)) {
		logger.WarnLogger.Warnf("Rejected webhook on %s: bad signature", c.FullPath())
		controllers.RespondError(c, utils.ErrInvalidWebhookSignature)
		return nil, false
	}
	return body, true
}

// TransferStatus handles POST /webhooks/transfers. It feeds the same
// reconciliation as a manual requery. Unknown references are acknowledged so
// the provider stops retrying.
func (wc *WebhookController) TransferStatus(c *gin.Context) {
	body, ok := signedBody(c, wc.transferSigning)
	if !ok {
		return
	}

	var event payout_models.TransferWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.Data.Reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transfer event"})
		return
	}

	request, err := wc.payouts.ReconcileByReference(c.Request.Context(), event.Data.Reference, event.Data.Status, json.RawMessage(body))
	if errors.Is(err, utils.ErrRecordNotFound) {
		logger.WarnLogger.Warnf("Transfer webhook for unknown reference %s ignored", event.Data.Reference)
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "processed", "status": request.Status})
}

// PaymentCaptured handles POST /webhooks/payments by escrowing the order's
// payment. Events other than a successful capture are acknowledged and skipped.
func (wc *WebhookController) PaymentCaptured(c *gin.Context) {
	body, ok := signedBody(c, wc.paymentSigning)
	if !ok {
		return
	}

	var event escrow_models.PaymentCapturedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment event"})
		return
	}
	if !isCapture(event) {
		c.JSON(http.StatusOK, gin.H{"message": "ignored"})
		return
	}

	hold, err := wc.escrow.CreateHold(c.Request.Context(), event.Data.OrderID, event.Data.Reference)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "processed", "hold": hold})
}

func isCapture(event escrow_models.PaymentCapturedEvent) bool {
	if event.Data.OrderID == uuid.Nil {
		return false
	}
	if strings.EqualFold(event.Event, "payment.captured") {
		return true
	}
	switch strings.ToLower(event.Data.Status) {
	case "captured", "success", "successful", "paid":
		return true
	}
	return false
}
