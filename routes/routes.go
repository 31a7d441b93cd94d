package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/clients"
	"github.com/joy095/settlement/services/escrow_service"
	"github.com/joy095/settlement/services/payout_service"
	"github.com/joy095/settlement/services/refund_service"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/services/transaction_service"
	"github.com/joy095/settlement/services/transfer_service"
	"github.com/joy095/settlement/services/wallet_service"
)

// Services bundles everything the HTTP layer calls into.
type Services struct {
	Wallets         *wallet_service.Service
	Transactions    *transaction_service.Service
	Settlements     *settlement_service.Service
	Payouts         *payout_service.Service
	Transfers       *transfer_service.Service
	Escrow          *escrow_service.Service
	Refunds         *refund_service.Service
	TransferSigning clients.WebhookVerifier
	PaymentSigning  clients.WebhookVerifier
}

// RegisterAll mounts every route group.
func RegisterAll(router *gin.Engine, svc Services) {
	RegisterWalletRoutes(router, svc)
	RegisterPayoutRoutes(router, svc)
	RegisterOrderRoutes(router, svc)
	RegisterEscrowRoutes(router, svc)
	RegisterWebhookRoutes(router, svc)
}
