package escrow_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/services/escrow_service"
)

type EscrowController struct {
	escrow *escrow_service.Service
}

func NewEscrowController(escrow *escrow_service.Service) (*EscrowController, error) {
	if escrow == nil {
		return nil, errors.New("escrow service cannot be nil")
	}
	return &EscrowController{escrow: escrow}, nil
}

// CreateHold handles POST /escrow/holds.
func (ec *EscrowController) CreateHold(c *gin.Context) {
	var req escrow_models.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	hold, err := ec.escrow.CreateHold(c.Request.Context(), req.OrderID, req.PaymentReference)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"hold": hold})
}

// GetHold handles GET /escrow/holds/:order_id.
func (ec *EscrowController) GetHold(c *gin.Context) {
	orderID, ok := controllers.UUIDParam(c, "order_id")
	if !ok {
		return
	}

	hold, err := ec.escrow.GetHold(c.Request.Context(), orderID)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hold": hold})
}

// SettleOrder handles POST /orders/:order_id/settle: the hold is released
// and vendor and rider settlements are recorded.
func (ec *EscrowController) SettleOrder(c *gin.Context) {
	orderID, ok := controllers.UUIDParam(c, "order_id")
	if !ok {
		return
	}

	hold, settlements, err := ec.escrow.Release(c.Request.Context(), orderID)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	logger.InfoLogger.Infof("Order %s settled with %d settlements", orderID, len(settlements))
	c.JSON(http.StatusOK, gin.H{
		"message":     "Order settled",
		"hold":        hold,
		"settlements": settlements,
	})
}
