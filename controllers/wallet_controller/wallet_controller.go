package wallet_controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/services/transaction_service"
	"github.com/joy095/settlement/services/wallet_service"
)

type WalletController struct {
	wallets      *wallet_service.Service
	transactions *transaction_service.Service
	settlements  *settlement_service.Service
}

func NewWalletController(wallets *wallet_service.Service, transactions *transaction_service.Service, settlements *settlement_service.Service) (*WalletController, error) {
	if wallets == nil || transactions == nil || settlements == nil {
		return nil, errors.New("wallet controller dependencies cannot be nil")
	}
	return &WalletController{wallets: wallets, transactions: transactions, settlements: settlements}, nil
}

// GetBalance handles GET /wallets/:role.
func (wc *WalletController) GetBalance(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}

	wallet, err := wc.wallets.GetBalance(c.Request.Context(), userID, role)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}

	logger.InfoLogger.Infof("Wallet balance fetched for %s %s", role, userID)
	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// ListTransactions handles GET /wallets/:role/transactions.
func (wc *WalletController) ListTransactions(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}
	page := controllers.PageFromQuery(c)

	rows, err := wc.transactions.List(c.Request.Context(), role, userID, page)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": rows, "limit": page.Limit, "offset": page.Offset})
}

// ListSettlements handles GET /wallets/:role/settlements.
func (wc *WalletController) ListSettlements(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}
	page := controllers.PageFromQuery(c)

	rows, err := wc.settlements.ListForRecipient(c.Request.Context(), role, userID, page)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": rows, "limit": page.Limit, "offset": page.Offset})
}
