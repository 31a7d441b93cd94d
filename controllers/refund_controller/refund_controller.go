package refund_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/services/refund_service"
	"github.com/joy095/settlement/utils"
)

type RefundController struct {
	refunds *refund_service.Service
}

// NewRefundController creates and returns a new instance of RefundController
func NewRefundController(refunds *refund_service.Service) (*RefundController, error) {
	if refunds == nil {
		return nil, errors.New("refund service cannot be nil")
	}
	return &RefundController{refunds: refunds}, nil
}

// RefundOrder handles POST /orders/:order_id/refund for the order's customer.
func (rc *RefundController) RefundOrder(c *gin.Context) {
	logger.InfoLogger.Info("RefundOrder controller hit...")

	orderID, ok := controllers.UUIDParam(c, "order_id")
	if !ok {
		return
	}

	var req order_models.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid refund request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	hold, err := rc.refunds.ProcessRefund(c.Request.Context(), orderID, userID, req.Reason)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order cancelled and refunded",
		"order_id":        orderID,
		"refunded_amount": hold.TotalAmount,
		"hold":            hold,
	})
}

// RefundEligibility handles GET /orders/:order_id/refund-eligibility.
func (rc *RefundController) RefundEligibility(c *gin.Context) {
	orderID, ok := controllers.UUIDParam(c, "order_id")
	if !ok {
		return
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	resp, err := rc.refunds.Eligibility(c.Request.Context(), orderID, userID)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
