package payout_controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository/memory"
	"github.com/joy095/settlement/services/fee_service"
	"github.com/joy095/settlement/services/payout_service"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/services/transfer_service"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransfers struct {
	mock.Mock
}

func (m *mockTransfers) LookupAccountName(ctx context.Context, bankCode, accountNumber, fallback string) string {
	return fallback
}

func (m *mockTransfers) InitiateTransfer(ctx context.Context, in transfer_service.TransferInput) (*transfer_service.InitiateResult, error) {
	args := m.Called(ctx, in)
	res, _ := args.Get(0).(*transfer_service.InitiateResult)
	return res, args.Error(1)
}

func (m *mockTransfers) RequeryTransfer(ctx context.Context, reference string) (payout_models.Status, json.RawMessage, error) {
	args := m.Called(ctx, reference)
	payload, _ := args.Get(1).(json.RawMessage)
	return args.Get(0).(payout_models.Status), payload, args.Error(2)
}

type env struct {
	router    *gin.Engine
	store     *memory.Store
	transfers *mockTransfers
	vendorID  uuid.UUID
	bankID    uuid.UUID
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	e := &env{store: memory.NewStore(), transfers: new(mockTransfers), vendorID: uuid.New(), bankID: uuid.New()}
	now := func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }
	fees := fee_service.NewCalculator(fee_service.DefaultPlatformFeeRate, fee_service.DefaultPayoutFeeRate)
	settlements := settlement_service.NewService(e.store, config.CreditTargetAvailable, now)
	ctrl, err := NewPayoutController(payout_service.NewService(e.store, e.transfers, fees, settlements, now))
	require.NoError(t, err)

	e.store.SetAvailableBalance(wallet_models.RoleVendor, e.vendorID, decimal.NewFromInt(5000))
	e.store.PutBankAccount(wallet_models.RoleVendor, wallet_models.BankAccount{
		ID: e.bankID, OwnerID: e.vendorID, BankCode: "058", AccountNumber: "0123456789", AccountName: "Ada Obi",
	})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
		c.Set("role", c.GetHeader("X-Test-Role"))
		c.Next()
	})
	r.POST("/payouts/:role", ctrl.RequestPayout)
	r.GET("/payouts/:role", ctrl.ListPayouts)
	r.GET("/payouts/:role/:payout_id", ctrl.GetPayout)
	r.POST("/payouts/:role/:payout_id/requery", ctrl.RequeryPayout)
	r.POST("/admin/payouts/:role/:payout_id/restore", ctrl.RestorePayout)
	e.router = r
	return e
}

func (e *env) do(method, path, role string, user uuid.UUID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user.String())
	req.Header.Set("X-Test-Role", role)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodePayout(t *testing.T, w *httptest.ResponseRecorder) payout_models.PayoutRequest {
	t.Helper()
	var body struct {
		Payout payout_models.PayoutRequest `json:"payout"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Payout
}

func TestRequestPayoutEndpoint(t *testing.T) {
	e := setup(t)
	e.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).
		Return(&transfer_service.InitiateResult{Status: payout_models.StatusProcessing}, nil).Once()

	w := e.do(http.MethodPost, "/payouts/vendor", "vendor", e.vendorID,
		`{"amount": 4000, "bank_account_id": "`+e.bankID.String()+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	p := decodePayout(t, w)
	assert.True(t, p.Fee.Equal(decimal.NewFromInt(60)))
	assert.True(t, p.NetAmount.Equal(decimal.NewFromInt(3940)))
	assert.Equal(t, payout_models.StatusProcessing, p.Status)

	w = e.do(http.MethodGet, "/payouts/vendor/"+p.ID.String(), "vendor", e.vendorID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/payouts/vendor/"+p.ID.String(), "vendor", uuid.New(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/payouts/vendor?limit=5", "vendor", e.vendorID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), p.ID.String())
}

func TestRequestPayoutErrors(t *testing.T) {
	e := setup(t)
	bank := e.bankID.String()

	tests := []struct {
		name   string
		path   string
		role   string
		body   string
		status int
	}{
		{"insufficient balance", "/payouts/vendor", "vendor", `{"amount": 6000, "bank_account_id": "` + bank + `"}`, http.StatusBadRequest},
		{"unknown bank account", "/payouts/vendor", "vendor", `{"amount": 100, "bank_account_id": "` + uuid.NewString() + `"}`, http.StatusNotFound},
		{"zero amount", "/payouts/vendor", "vendor", `{"amount": 0, "bank_account_id": "` + bank + `"}`, http.StatusBadRequest},
		{"missing bank account", "/payouts/vendor", "vendor", `{"amount": 100}`, http.StatusBadRequest},
		{"unknown role", "/payouts/admin", "admin", `{"amount": 100, "bank_account_id": "` + bank + `"}`, http.StatusBadRequest},
		{"role mismatch", "/payouts/vendor", "rider", `{"amount": 100, "bank_account_id": "` + bank + `"}`, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, tt.path, tt.role, e.vendorID, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
	e.transfers.AssertNotCalled(t, "InitiateTransfer", mock.Anything, mock.Anything)
}

func TestRequestPayoutProviderRejection(t *testing.T) {
	e := setup(t)
	e.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: account blocked", utils.ErrTransferInitiationFailed)).Once()

	w := e.do(http.MethodPost, "/payouts/vendor", "vendor", e.vendorID,
		`{"amount": 1000, "bank_account_id": "`+e.bankID.String()+`"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, e.store.PayoutCount())

	wallet, err := e.store.EnsureWallet(context.Background(), wallet_models.RoleVendor, e.vendorID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.NewFromInt(5000)))
}

func TestRequeryAndRestoreEndpoints(t *testing.T) {
	e := setup(t)
	e.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).
		Return(&transfer_service.InitiateResult{Status: payout_models.StatusProcessing}, nil).Once()

	w := e.do(http.MethodPost, "/payouts/vendor", "vendor", e.vendorID,
		`{"amount": 2000, "bank_account_id": "`+e.bankID.String()+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	p := decodePayout(t, w)

	e.transfers.On("RequeryTransfer", mock.Anything, p.TransferReference).
		Return(payout_models.StatusFailed, json.RawMessage(`{"data":{"status":"failed","reason":"account closed"}}`), nil).Once()

	w = e.do(http.MethodPost, "/payouts/vendor/"+p.ID.String()+"/requery", "vendor", uuid.New(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/payouts/vendor/"+p.ID.String()+"/requery", "vendor", e.vendorID, "")
	require.Equal(t, http.StatusOK, w.Code)
	requeried := decodePayout(t, w)
	assert.Equal(t, payout_models.StatusFailed, requeried.Status)
	assert.Equal(t, "account closed", requeried.FailureReason)

	admin := uuid.New()
	w = e.do(http.MethodPost, "/admin/payouts/vendor/"+p.ID.String()+"/restore", "admin", admin, "")
	require.Equal(t, http.StatusOK, w.Code)

	wallet, err := e.store.EnsureWallet(context.Background(), wallet_models.RoleVendor, e.vendorID)
	require.NoError(t, err)
	assert.True(t, wallet.AvailableBalance.Equal(decimal.NewFromInt(5000)))

	w = e.do(http.MethodPost, "/admin/payouts/vendor/not-a-uuid/restore", "admin", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
