package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers/bank_account_controller"
	"github.com/joy095/settlement/controllers/wallet_controller"
	middleware "github.com/joy095/settlement/middlewares"
	"github.com/joy095/settlement/middlewares/auth"
)

func RegisterWalletRoutes(router *gin.Engine, svc Services) {
	controller, err := wallet_controller.NewWalletController(svc.Wallets, svc.Transactions, svc.Settlements)
	if err != nil {
		panic(fmt.Errorf("failed to initialize wallet controller: %w", err))
	}
	banks, err := bank_account_controller.NewBankAccountController(svc.Wallets, svc.Transfers)
	if err != nil {
		panic(fmt.Errorf("failed to initialize bank account controller: %w", err))
	}

	protected := router.Group("/wallets")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/:role", controller.GetBalance)
		protected.GET("/:role/transactions", controller.ListTransactions)
		protected.GET("/:role/settlements", controller.ListSettlements)
		protected.GET("/:role/bank-accounts", banks.ListBankAccounts)
		protected.GET("/:role/bank-accounts/:bank_account_id/verify", middleware.NewRateLimiter("10-1m", "bank_account_verify"), banks.VerifyBankAccount)
	}
}
