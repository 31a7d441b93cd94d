package wallet_controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository/memory"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/services/transaction_service"
	"github.com/joy095/settlement/services/wallet_service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*gin.Engine, *settlement_service.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	now := func() time.Time { return time.Date(2026, 6, 5, 9, 30, 0, 0, time.UTC) }
	settlements := settlement_service.NewService(store, config.CreditTargetAvailable, now)
	ctrl, err := NewWalletController(wallet_service.NewService(store), transaction_service.NewService(store), settlements)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	})
	r.GET("/wallets/:role", ctrl.GetBalance)
	r.GET("/wallets/:role/transactions", ctrl.ListTransactions)
	r.GET("/wallets/:role/settlements", ctrl.ListSettlements)
	return r, settlements
}

func get(r *gin.Engine, path, role string, user uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("X-Test-User", user.String())
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWalletEndpoints(t *testing.T) {
	r, settlements := setup(t)
	vendorID := uuid.New()
	order := &order_models.Order{
		ID: uuid.New(), CustomerID: uuid.New(), VendorID: vendorID,
		Subtotal: decimal.NewFromInt(1000), TotalAmount: decimal.NewFromInt(1000),
		Status: order_models.OrderStatusDelivered, PaymentStatus: order_models.PaymentStatusPaid,
	}
	_, err := settlements.RecordPending(context.Background(), order, settlement_models.Shares{
		VendorAmount: decimal.NewFromInt(900), PlatformFee: decimal.NewFromInt(100), Total: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	w := get(r, "/wallets/vendor", "vendor", vendorID)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var balance struct {
		Wallet wallet_models.Wallet `json:"wallet"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.True(t, balance.Wallet.AvailableBalance.Equal(decimal.NewFromInt(900)))

	w = get(r, "/wallets/vendor/transactions?limit=10", "vendor", vendorID)
	require.Equal(t, http.StatusOK, w.Code)
	var txns struct {
		Transactions []transaction_models.Transaction `json:"transactions"`
		Limit        int                              `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txns))
	require.Len(t, txns.Transactions, 1)
	assert.Equal(t, transaction_models.TypeSettlement, txns.Transactions[0].Type)
	assert.Equal(t, 10, txns.Limit)

	w = get(r, "/wallets/vendor/settlements", "vendor", vendorID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), order.ID.String())

}

func TestWalletRoleChecks(t *testing.T) {
	r, _ := setup(t)
	user := uuid.New()

	assert.Equal(t, http.StatusForbidden, get(r, "/wallets/vendor", "customer", user).Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/wallets/admin", "admin", user).Code)

	w := get(r, "/wallets/customer", "customer", user)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available_balance":"0"`)

	req := httptest.NewRequest(http.MethodGet, "/wallets/customer", nil)
	req.Header.Set("X-Test-Role", "customer")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
