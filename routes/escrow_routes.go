package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/escrow_controller"
	"github.com/joy095/settlement/middlewares/auth"
)

func RegisterEscrowRoutes(router *gin.Engine, svc Services) {
	controller, err := escrow_controller.NewEscrowController(svc.Escrow)
	if err != nil {
		panic(fmt.Errorf("failed to initialize escrow controller: %w", err))
	}

	admin := router.Group("/escrow")
	admin.Use(auth.AuthMiddleware(), auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/holds", controller.CreateHold)
		admin.GET("/holds/:order_id", controller.GetHold)
	}
}
