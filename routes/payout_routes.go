package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/payout_controller"
	middleware "github.com/joy095/settlement/middlewares"
	"github.com/joy095/settlement/middlewares/auth"
)

func RegisterPayoutRoutes(router *gin.Engine, svc Services) {
	controller, err := payout_controller.NewPayoutController(svc.Payouts)
	if err != nil {
		panic(fmt.Errorf("failed to initialize payout controller: %w", err))
	}

	protected := router.Group("/payouts")
	protected.Use(auth.AuthMiddleware())
	{
		protected.POST("/:role", middleware.CombinedRateLimiter("payout_request", "5-1m", "30-1h"), controller.RequestPayout)
		protected.GET("/:role", controller.ListPayouts)
		protected.GET("/:role/:payout_id", controller.GetPayout)
		protected.POST("/:role/:payout_id/requery", middleware.NewRateLimiter("10-1m", "payout_requery"), controller.RequeryPayout)
	}

	admin := router.Group("/admin/payouts")
	admin.Use(auth.AuthMiddleware(), auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/:role/:payout_id/restore", controller.RestorePayout)
	}
}
