package payout_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/clients"
	"github.com/joy095/settlement/config"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/repository/memory"
	"github.com/joy095/settlement/services/fee_service"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/services/transfer_service"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type mockTransfers struct {
	mock.Mock
}

func (m *mockTransfers) LookupAccountName(ctx context.Context, bankCode, accountNumber, fallback string) string {
	args := m.Called(ctx, bankCode, accountNumber, fallback)
	return args.String(0)
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

type fixture struct {
	svc       *Service
	store     *memory.Store
	transfers *mockTransfers
	vendorID  uuid.UUID
	bankID    uuid.UUID
	now       time.Time
}

func newFixture(t *testing.T, balance string) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.NewStore(),
		transfers: new(mockTransfers),
		vendorID:  uuid.New(),
		bankID:    uuid.New(),
		now:       time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	fees := fee_service.NewCalculator(fee_service.DefaultPlatformFeeRate, fee_service.DefaultPayoutFeeRate)
	settlements := settlement_service.NewService(f.store, config.CreditTargetAvailable, clock)
	f.svc = NewService(f.store, f.transfers, fees, settlements, clock)

	f.store.SetAvailableBalance(wallet_models.RoleVendor, f.vendorID, d(balance))
	f.store.PutBankAccount(wallet_models.RoleVendor, wallet_models.BankAccount{
		ID:            f.bankID,
		OwnerID:       f.vendorID,
		BankName:      "GTBank",
		BankCode:      "058",
		AccountNumber: "0123456789",
		AccountName:   "Ada Obi",
	})
	f.transfers.On("LookupAccountName", mock.Anything, "058", "0123456789", "Ada Obi").Return("ADA OBI").Maybe()
	return f
}

func (f *fixture) balance(t *testing.T) decimal.Decimal {
	t.Helper()
	w, err := f.store.EnsureWallet(context.Background(), wallet_models.RoleVendor, f.vendorID)
	require.NoError(t, err)
	return w.AvailableBalance
}

func (f *fixture) request(amount string) PayoutInput {
	return PayoutInput{RecipientID: f.vendorID, Role: wallet_models.RoleVendor, Amount: d(amount), BankAccountID: f.bankID}
}

func accepted() *transfer_service.InitiateResult {
	return &transfer_service.InitiateResult{Status: payout_models.StatusProcessing, Payload: json.RawMessage(`{"data":{"status":"pending"}}`)}
}

func TestRequestPayoutInsufficientBalance(t *testing.T) {
	f := newFixture(t, "5000")

	_, err := f.svc.RequestPayout(context.Background(), f.request("6000"))
	assert.ErrorIs(t, err, utils.ErrInsufficientBalance)
	assert.True(t, f.balance(t).Equal(d("5000")))
	assert.Zero(t, f.store.PayoutCount())
	f.transfers.AssertNotCalled(t, "InitiateTransfer", mock.Anything, mock.Anything)
}

func TestRequestPayoutSuccess(t *testing.T) {
	f := newFixture(t, "5000")
	f.transfers.On("InitiateTransfer", mock.Anything, mock.MatchedBy(func(in transfer_service.TransferInput) bool {
		return in.Amount.Equal(d("3940")) && in.AccountName == "ADA OBI" && strings.HasPrefix(in.Reference, "VND_")
	})).Return(accepted(), nil).Once()

	p, err := f.svc.RequestPayout(context.Background(), f.request("4000"))
	require.NoError(t, err)
	assert.True(t, p.Amount.Equal(d("4000")))
	assert.True(t, p.Fee.Equal(d("60")))
	assert.True(t, p.NetAmount.Equal(d("3940")))
	assert.Equal(t, payout_models.StatusProcessing, p.Status)
	assert.True(t, strings.HasSuffix(p.TransferReference, fmt.Sprintf("_%d", f.now.UnixMilli())))

	assert.True(t, f.balance(t).Equal(d("1000")))
	assert.Equal(t, 1, f.store.PayoutCount())

	txns := f.store.Transactions(wallet_models.RoleVendor)
	require.Len(t, txns, 1)
	assert.Equal(t, transaction_models.TypePayout, txns[0].Type)
	assert.True(t, txns[0].Amount.Equal(d("4000")))
	assert.Equal(t, p.ID.String(), txns[0].ReferenceID)
	f.transfers.AssertExpectations(t)
}

func TestRequestPayoutProviderFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	settlements := settlement_service.NewService(f.store, config.CreditTargetAvailable, func() time.Time { return f.now })
	_, err := settlements.RecordPending(ctx, &order_models.Order{ID: uuid.New(), VendorID: f.vendorID}, settlement_models.Shares{
		VendorAmount: d("4500"),
		PlatformFee:  d("500"),
	})
	require.NoError(t, err)
	credits := len(f.store.Transactions(wallet_models.RoleVendor))

	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: invalid account", utils.ErrTransferInitiationFailed)).Once()

	_, err = f.svc.RequestPayout(ctx, f.request("4500"))
	assert.ErrorIs(t, err, utils.ErrTransferInitiationFailed)
	assert.True(t, f.balance(t).Equal(d("4500")))
	assert.Zero(t, f.store.PayoutCount())
	assert.Len(t, f.store.Transactions(wallet_models.RoleVendor), credits)

	w, err := f.store.EnsureWallet(ctx, wallet_models.RoleVendor, f.vendorID)
	require.NoError(t, err)
	assert.True(t, w.TotalWithdrawn.IsZero())

	rows, err := settlements.ListForRecipient(ctx, wallet_models.RoleVendor, f.vendorID, shared_models.Pagination{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, settlement_models.StatusPending, rows[0].Status)
	assert.Nil(t, rows[0].PayoutRequestID)
}

func TestRequestPayoutUnknownOutcomeIsPending(t *testing.T) {
	f := newFixture(t, "5000")
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).
		Return(&transfer_service.InitiateResult{Status: payout_models.StatusPending, Unknown: true}, nil).Once()

	p, err := f.svc.RequestPayout(context.Background(), f.request("4000"))
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusPending, p.Status)
	assert.True(t, f.balance(t).Equal(d("1000")))
}

func TestRequestPayoutSurvivesCancelledCaller(t *testing.T) {
	f := newFixture(t, "5000")
	ctx, cancel := context.WithCancel(context.Background())

	var providerCtxErr error
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			providerCtxErr = args.Get(0).(context.Context).Err()
		}).
		Return(accepted(), nil).Once()

	p, err := f.svc.RequestPayout(ctx, f.request("4000"))
	require.NoError(t, err)
	assert.NoError(t, providerCtxErr)
	assert.Equal(t, payout_models.StatusProcessing, p.Status)
	assert.Equal(t, 1, f.store.PayoutCount())
	assert.True(t, f.balance(t).Equal(d("1000")))

	stored, err := f.svc.GetPayout(context.Background(), wallet_models.RoleVendor, f.vendorID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusProcessing, stored.Status)
}

// hangingProvider never answers a transfer until its context ends.
type hangingProvider struct {
	calls int
}

func (p *hangingProvider) ResolveAccount(context.Context, string, string) (string, error) {
	return "", errors.New("not supported")
}

func (p *hangingProvider) InitiateTransfer(ctx context.Context, _ clients.TransferRequest) (*clients.TransferResponse, error) {
	p.calls++
	<-ctx.Done()
	return nil, &clients.ProviderError{Op: "initiate", Err: ctx.Err()}
}

func (p *hangingProvider) Requery(context.Context, string) (*clients.TransferResponse, error) {
	return nil, &clients.ProviderError{Op: "requery", StatusCode: 404}
}

func TestRequestPayoutCallerDeadlineKeepsPendingRequest(t *testing.T) {
	f := newFixture(t, "5000")
	provider := &hangingProvider{}
	transfers := transfer_service.NewService(provider, nil, transfer_service.Options{MaxAttempts: 1})
	fees := fee_service.NewCalculator(fee_service.DefaultPlatformFeeRate, fee_service.DefaultPayoutFeeRate)
	settlements := settlement_service.NewService(f.store, config.CreditTargetAvailable, func() time.Time { return f.now })
	svc := NewService(f.store, transfers, fees, settlements, func() time.Time { return f.now }).
		WithDeadlines(100*time.Millisecond, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	p, err := svc.RequestPayout(ctx, f.request("4000"))
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, payout_models.StatusPending, p.Status)
	assert.Equal(t, 1, f.store.PayoutCount())
	assert.True(t, f.balance(t).Equal(d("1000")))
}

// failingUpdates accepts every write except payout status updates.
type failingUpdates struct {
	repository.Store
}

func (s failingUpdates) RunInTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.RunInTx(ctx, func(tx repository.Store) error {
		return fn(failingUpdates{Store: tx})
	})
}

func (failingUpdates) UpdatePayoutStatus(context.Context, wallet_models.RecipientRole, uuid.UUID, repository.PayoutStatusUpdate) error {
	return errors.New("connection reset by peer")
}

func TestRequestPayoutKeepsRecordWhenUpdateAfterAcceptFails(t *testing.T) {
	f := newFixture(t, "5000")
	fees := fee_service.NewCalculator(fee_service.DefaultPlatformFeeRate, fee_service.DefaultPayoutFeeRate)
	settlements := settlement_service.NewService(f.store, config.CreditTargetAvailable, func() time.Time { return f.now })
	svc := NewService(failingUpdates{Store: f.store}, f.transfers, fees, settlements, func() time.Time { return f.now })
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).Return(accepted(), nil).Once()

	p, err := svc.RequestPayout(context.Background(), f.request("4000"))
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusPending, p.Status)
	assert.Equal(t, 1, f.store.PayoutCount())
	assert.True(t, f.balance(t).Equal(d("1000")))

	// Requery later moves it forward through the regular store.
	f.transfers.On("RequeryTransfer", mock.Anything, p.TransferReference).
		Return(payout_models.StatusProcessing, json.RawMessage(`{"data":{"status":"pending"}}`), nil).Once()
	got, err := f.svc.RequeryStatus(context.Background(), wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusProcessing, got.Status)
}

func TestRequestPayoutValidation(t *testing.T) {
	f := newFixture(t, "5000")
	ctx := context.Background()

	in := f.request("100")
	in.BankAccountID = uuid.New()
	_, err := f.svc.RequestPayout(ctx, in)
	assert.ErrorIs(t, err, utils.ErrBankAccountNotFound)

	noCode := uuid.New()
	f.store.PutBankAccount(wallet_models.RoleVendor, wallet_models.BankAccount{
		ID: noCode, OwnerID: f.vendorID, BankName: "Old Bank", AccountNumber: "1111111111",
	})
	in.BankAccountID = noCode
	_, err = f.svc.RequestPayout(ctx, in)
	assert.ErrorIs(t, err, utils.ErrMissingBankCode)

	_, err = f.svc.RequestPayout(ctx, f.request("0"))
	assert.ErrorIs(t, err, utils.ErrInvalidAmount)

	in = f.request("100")
	in.Role = wallet_models.RecipientRole("admin")
	_, err = f.svc.RequestPayout(ctx, in)
	assert.ErrorIs(t, err, utils.ErrUnknownRole)

	f.transfers.AssertNotCalled(t, "InitiateTransfer", mock.Anything, mock.Anything)
	assert.True(t, f.balance(t).Equal(d("5000")))
}

func TestConcurrentPayoutsNeverOverdraw(t *testing.T) {
	f := newFixture(t, "5000")
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).Return(accepted(), nil)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RequestPayout(context.Background(), f.request("2000"))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, utils.ErrInsufficientBalance)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, ok)
	assert.True(t, f.balance(t).Equal(d("1000")))
	assert.Equal(t, 2, f.store.PayoutCount())
}

func TestRequeryStatusIsIdempotent(t *testing.T) {
	f := newFixture(t, "5000")
	ctx := context.Background()
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).Return(accepted(), nil).Once()
	p, err := f.svc.RequestPayout(ctx, f.request("4000"))
	require.NoError(t, err)

	f.transfers.On("RequeryTransfer", mock.Anything, p.TransferReference).
		Return(payout_models.StatusProcessing, json.RawMessage(`{"data":{"status":"pending"}}`), nil).Twice()

	first, err := f.svc.RequeryStatus(ctx, wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	second, err := f.svc.RequeryStatus(ctx, wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusProcessing, first.Status)
	assert.Equal(t, first.Status, second.Status)
	assert.True(t, f.balance(t).Equal(d("1000")))

	f.transfers.On("RequeryTransfer", mock.Anything, p.TransferReference).
		Return(payout_models.StatusCompleted, json.RawMessage(`{"data":{"status":"success"}}`), nil).Once()
	done, err := f.svc.RequeryStatus(ctx, wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusCompleted, done.Status)
	require.NotNil(t, done.ProcessedAt)

	// Terminal requests are not sent to the provider again.
	again, err := f.svc.RequeryStatus(ctx, wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusCompleted, again.Status)
	f.transfers.AssertNumberOfCalls(t, "RequeryTransfer", 3)
	assert.True(t, f.balance(t).Equal(d("1000")))
}

func TestRequeryFailureLeavesStatus(t *testing.T) {
	f := newFixture(t, "5000")
	ctx := context.Background()
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).Return(accepted(), nil).Once()
	p, err := f.svc.RequestPayout(ctx, f.request("1000"))
	require.NoError(t, err)

	f.transfers.On("RequeryTransfer", mock.Anything, p.TransferReference).
		Return(payout_models.Status(""), nil, utils.ErrTransferRequeryFailed).Once()

	_, err = f.svc.RequeryStatus(ctx, wallet_models.RoleVendor, p.ID)
	assert.ErrorIs(t, err, utils.ErrTransferRequeryFailed)

	stored, err := f.svc.GetPayout(ctx, wallet_models.RoleVendor, f.vendorID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusProcessing, stored.Status)
}

func TestRequeryNotFoundFailsOnlyAfterGrace(t *testing.T) {
	f := newFixture(t, "5000")
	ctx := context.Background()
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).
		Return(&transfer_service.InitiateResult{Status: payout_models.StatusPending, Unknown: true}, nil).Once()
	p, err := f.svc.RequestPayout(ctx, f.request("4000"))
	require.NoError(t, err)

	notFound := fmt.Errorf("%w: %w", utils.ErrTransferRequeryFailed, transfer_service.ErrTransferNotFound)
	f.transfers.On("RequeryTransfer", mock.Anything, p.TransferReference).
		Return(payout_models.Status(""), nil, notFound)

	_, err = f.svc.RequeryStatus(ctx, wallet_models.RoleVendor, p.ID)
	assert.ErrorIs(t, err, utils.ErrTransferRequeryFailed)
	stored, err := f.svc.GetPayout(ctx, wallet_models.RoleVendor, f.vendorID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusPending, stored.Status)

	f.now = f.now.Add(DefaultNotFoundGrace + time.Minute)
	failed, err := f.svc.RequeryStatus(ctx, wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusFailed, failed.Status)
	assert.Equal(t, "transfer unknown to provider", failed.FailureReason)
	assert.True(t, f.balance(t).Equal(d("1000")), "requery never credits")
}

func TestReconcileByReferenceSettlesAllocatedSettlements(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	// Two delivered orders credit 900 + 1800.
	settlements := settlement_service.NewService(f.store, config.CreditTargetAvailable, func() time.Time { return f.now })
	for _, sub := range []string{"1000", "2000"} {
		subtotal := d(sub)
		_, err := settlements.RecordPending(ctx, &order_models.Order{ID: uuid.New(), VendorID: f.vendorID}, settlement_models.Shares{
			VendorAmount: subtotal.Mul(d("0.9")),
			PlatformFee:  subtotal.Mul(d("0.1")),
		})
		require.NoError(t, err)
	}
	require.True(t, f.balance(t).Equal(d("2700")))

	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).Return(accepted(), nil).Once()
	p, err := f.svc.RequestPayout(ctx, f.request("2700"))
	require.NoError(t, err)

	got, err := f.svc.ReconcileByReference(ctx, p.TransferReference, "success", json.RawMessage(`{"event":"transfer.success"}`))
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusCompleted, got.Status)

	rows, err := settlements.ListForRecipient(ctx, wallet_models.RoleVendor, f.vendorID, shared_models.Pagination{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, st := range rows {
		assert.Equal(t, settlement_models.StatusCompleted, st.Status)
	}

	// A late failure callback cannot reopen a completed payout.
	got, err = f.svc.ReconcileByReference(ctx, p.TransferReference, "reversed", nil)
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusCompleted, got.Status)

	_, err = f.svc.ReconcileByReference(ctx, "XYZ_unknown_1", "success", nil)
	assert.ErrorIs(t, err, utils.ErrRecordNotFound)
}

func TestRestoreFailedPayoutOnce(t *testing.T) {
	f := newFixture(t, "5000")
	ctx := context.Background()
	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).Return(accepted(), nil).Once()
	p, err := f.svc.RequestPayout(ctx, f.request("4000"))
	require.NoError(t, err)

	_, err = f.svc.RestoreFailedPayout(ctx, wallet_models.RoleVendor, p.ID)
	assert.ErrorIs(t, err, utils.ErrInvalidStateTransition)

	failed, err := f.svc.ReconcileByReference(ctx, p.TransferReference, "failed", json.RawMessage(`{"data":{"status":"failed","reason":"account dormant"}}`))
	require.NoError(t, err)
	assert.Equal(t, payout_models.StatusFailed, failed.Status)
	assert.Equal(t, "account dormant", failed.FailureReason)
	assert.True(t, f.balance(t).Equal(d("1000")), "reconciliation never credits")

	restored, err := f.svc.RestoreFailedPayout(ctx, wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	require.NotNil(t, restored.WalletRestoredAt)
	assert.True(t, f.balance(t).Equal(d("5000")))

	_, err = f.svc.RestoreFailedPayout(ctx, wallet_models.RoleVendor, p.ID)
	require.NoError(t, err)
	assert.True(t, f.balance(t).Equal(d("5000")))

	var reversals int
	for _, txn := range f.store.Transactions(wallet_models.RoleVendor) {
		if txn.Type == transaction_models.TypePayoutReversal {
			reversals++
		}
	}
	assert.Equal(t, 1, reversals)
}

func TestCustomerWithdrawal(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()
	customerID, bankID := uuid.New(), uuid.New()
	f.store.SetAvailableBalance(wallet_models.RoleCustomer, customerID, d("2000"))
	f.store.PutBankAccount(wallet_models.RoleCustomer, wallet_models.BankAccount{
		ID: bankID, OwnerID: customerID, BankName: "Access", BankCode: "044", AccountNumber: "2222222222", AccountName: "Chidi",
	})
	f.transfers.On("LookupAccountName", mock.Anything, "044", "2222222222", "Chidi").Return("Chidi")
	f.transfers.On("InitiateTransfer", mock.Anything, mock.MatchedBy(func(in transfer_service.TransferInput) bool {
		return strings.HasPrefix(in.Reference, "CWD_") && in.Remark == "Wallet withdrawal"
	})).Return(accepted(), nil).Once()

	p, err := f.svc.RequestPayout(ctx, PayoutInput{RecipientID: customerID, Role: wallet_models.RoleCustomer, Amount: d("1000"), BankAccountID: bankID})
	require.NoError(t, err)
	assert.Equal(t, wallet_models.RoleCustomer, p.Role)

	list, err := f.svc.ListPayouts(ctx, wallet_models.RoleCustomer, customerID, shared_models.Pagination{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	txns := f.store.Transactions(wallet_models.RoleCustomer)
	require.Len(t, txns, 1)
	assert.Equal(t, transaction_models.TypeWithdrawal, txns[0].Type)

	_, err = f.svc.GetPayout(ctx, wallet_models.RoleCustomer, uuid.New(), p.ID)
	assert.True(t, errors.Is(err, utils.ErrRecordNotFound))
}

func TestRestoreReleasesSettlementsForNextPayout(t *testing.T) {
	f := newFixture(t, "0")
	ctx := context.Background()

	settlements := settlement_service.NewService(f.store, config.CreditTargetAvailable, func() time.Time { return f.now })
	_, err := settlements.RecordPending(ctx, &order_models.Order{ID: uuid.New(), VendorID: f.vendorID}, settlement_models.Shares{
		VendorAmount: d("900"),
		PlatformFee:  d("100"),
	})
	require.NoError(t, err)

	f.transfers.On("InitiateTransfer", mock.Anything, mock.Anything).Return(accepted(), nil).Twice()
	first, err := f.svc.RequestPayout(ctx, f.request("900"))
	require.NoError(t, err)
	_, err = f.svc.ReconcileByReference(ctx, first.TransferReference, "failed", nil)
	require.NoError(t, err)

	rows, err := settlements.ListForRecipient(ctx, wallet_models.RoleVendor, f.vendorID, shared_models.Pagination{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, settlement_models.StatusFailed, rows[0].Status)

	_, err = f.svc.RestoreFailedPayout(ctx, wallet_models.RoleVendor, first.ID)
	require.NoError(t, err)

	rows, err = settlements.ListForRecipient(ctx, wallet_models.RoleVendor, f.vendorID, shared_models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, settlement_models.StatusPending, rows[0].Status)
	assert.Nil(t, rows[0].PayoutRequestID)

	second, err := f.svc.RequestPayout(ctx, f.request("900"))
	require.NoError(t, err)
	_, err = f.svc.ReconcileByReference(ctx, second.TransferReference, "success", nil)
	require.NoError(t, err)

	rows, err = settlements.ListForRecipient(ctx, wallet_models.RoleVendor, f.vendorID, shared_models.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, settlement_models.StatusCompleted, rows[0].Status)
	require.NotNil(t, rows[0].PayoutRequestID)
	assert.Equal(t, second.ID, *rows[0].PayoutRequestID)
}
