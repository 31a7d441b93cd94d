package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/escrow_controller"
	"github.com/joy095/settlement/controllers/refund_controller"
	middleware "github.com/joy095/settlement/middlewares"
	"github.com/joy095/settlement/middlewares/auth"
)

func RegisterOrderRoutes(router *gin.Engine, svc Services) {
	refunds, err := refund_controller.NewRefundController(svc.Refunds)
	if err != nil {
		panic(fmt.Errorf("failed to initialize refund controller: %w", err))
	}
	escrow, err := escrow_controller.NewEscrowController(svc.Escrow)
	if err != nil {
		panic(fmt.Errorf("failed to initialize escrow controller: %w", err))
	}

	protected := router.Group("/orders")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/:order_id/refund", middleware.NewRateLimiter("5-1m", "order_refund"), refunds.RefundOrder)
		protected.GET("/:order_id/refund-eligibility", refunds.RefundEligibility)
		protected.POST("/:order_id/settle", auth.RequireRole(auth.RoleAdmin, auth.RoleDelivery), escrow.SettleOrder)
	}
}
