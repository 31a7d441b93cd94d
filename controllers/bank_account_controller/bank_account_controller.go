package bank_account_controller

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joy095/settlement/controllers"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/services/wallet_service"
	"github.com/joy095/settlement/utils"
)

// NameResolver looks up the holder name a bank reports for an account.
type NameResolver interface {
	LookupAccountName(ctx context.Context, bankCode, accountNumber, fallback string) string
}

type BankAccountController struct {
	wallets *wallet_service.Service
	names   NameResolver
}

func NewBankAccountController(wallets *wallet_service.Service, names NameResolver) (*BankAccountController, error) {
	if wallets == nil || names == nil {
		return nil, errors.New("bank account controller dependencies cannot be nil")
	}
	return &BankAccountController{wallets: wallets, names: names}, nil
}

// ListBankAccounts handles GET /wallets/:role/bank-accounts.
func (ctrl *BankAccountController) ListBankAccounts(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}

	accounts, err := ctrl.wallets.ListBankAccounts(c.Request.Context(), userID, role)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bank_accounts": accounts})
}

// VerifyBankAccount handles GET /wallets/:role/bank-accounts/:bank_account_id/verify.
// It returns the holder name the bank reports so the owner can confirm the
// destination before requesting a payout.
func (ctrl *BankAccountController) VerifyBankAccount(c *gin.Context) {
	role, userID, ok := controllers.CallerRole(c)
	if !ok {
		return
	}
	bankAccountID, ok := controllers.UUIDParam(c, "bank_account_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	account, err := ctrl.wallets.GetBankAccount(ctx, userID, role, bankAccountID)
	if err != nil {
		controllers.RespondError(c, err)
		return
	}
	if strings.TrimSpace(account.BankCode) == "" {
		controllers.RespondError(c, utils.ErrMissingBankCode)
		return
	}

	resolved := ctrl.names.LookupAccountName(ctx, account.BankCode, account.AccountNumber, "")
	if resolved == "" {
		logger.WarnLogger.Warnf("Bank account %s could not be resolved", account.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Unable to verify account with the bank"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bank_account_id": account.ID,
		"account_name":    account.AccountName,
		"resolved_name":   resolved,
		"matches":         strings.EqualFold(strings.TrimSpace(account.AccountName), resolved),
	})
}
