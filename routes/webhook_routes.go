package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/webhook_controller"
)

// RegisterWebhookRoutes mounts provider callbacks. They carry no bearer
// token; each request is authenticated by its HMAC signature instead.
func RegisterWebhookRoutes(router *gin.Engine, svc Services) {
	controller, err := webhook_controller.NewWebhookController(svc.Payouts, svc.Escrow, svc.TransferSigning, svc.PaymentSigning)
	if err != nil {
		panic(fmt.Errorf("failed to initialize webhook controller: %w", err))
	}

	hooks := router.Group("/webhooks")
	{
		hooks.POST("/transfers", controller.TransferStatus)
		hooks.POST("/payments", controller.PaymentCaptured)
	}
}
