package payout_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/services/payout_service"
)

type PayoutController struct {
	payouts *payout_service.Service
}

func NewPayoutController(payouts *payout_service.Service) (*PayoutController, error) {
	if payouts == nil {
		return nil, errors.New("payout service cannot be nil")
	}
	return &PayoutController{payouts: payouts}, nil
}

// RequestPayout handles POST /payouts/:role. Vendors and riders get a payout,
// customers a withdrawal; both debit the wallet and start a bank transfer.
func (pc *PayoutController) RequestPayout(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}

	var req payout_models.CreatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnLogger.Warnf("Invalid payout request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	request, err := pc.payouts.RequestPayout(c.Request.Context(), payout_service.PayoutInput{
		RecipientID:   userID,
		Role:          role,
		Amount:        req.Amount,
		BankAccountID: req.BankAccountID,
	})
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Payout request created",
		"payout":  request,
	})
}

// ListPayouts handles GET /payouts/:role.
func (pc *PayoutController) ListPayouts(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}
	page := controllers.PageFromQuery(c)

	rows, err := pc.payouts.ListPayouts(c.Request.Context(), role, userID, page)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": rows, "limit": page.Limit, "offset": page.Offset})
}

// GetPayout handles GET /payouts/:role/:payout_id.
func (pc *PayoutController) GetPayout(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}
	payoutID, ok := controllers.UUIDParam(c, "payout_id")
	if !ok {
		return
	}

	request, err := pc.payouts.GetPayout(c.Request.Context(), role, userID, payoutID)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": request})
}

// RequeryPayout handles POST /payouts/:role/:payout_id/requery.
func (pc *PayoutController) RequeryPayout(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}
	payoutID, ok := controllers.UUIDParam(c, "payout_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := pc.payouts.GetPayout(ctx, role, userID, payoutID); err != nil {
		controllers.RespondError(c, err)
		return
	}

	request, err := pc.payouts.RequeryStatus(ctx, role, payoutID)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": request})
}

// RestorePayout handles POST /admin/payouts/:role/:payout_id/restore.
func (pc *PayoutController) RestorePayout(c *gin.Context) {
	role, err := wallet_models.ParseRole(c.Param("role"))
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	payoutID, ok := controllers.UUIDParam(c, "payout_id")
	if !ok {
		return
	}

	request, err := pc.payouts.RestoreFailedPayout(c.Request.Context(), role, payoutID)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	logger.InfoLogger.Infof("Admin %s restored payout %s", c.GetString("user_id"), payoutID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Wallet restored",
		"payout":  request,
	})
}
