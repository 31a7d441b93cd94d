package payout_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/joy095/settlement/services/fee_service"
	"github.com/joy095/settlement/services/settlement_service"
	"github.com/joy095/settlement/services/transfer_service"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

// Transfers is the part of the transfer orchestrator the payout manager drives.
type Transfers interface {
	LookupAccountName(ctx context.Context, bankCode, accountNumber, fallback string) string
	InitiateTransfer(ctx context.Context, in transfer_service.TransferInput) (*transfer_service.InitiateResult, error)
	RequeryTransfer(ctx context.Context, reference string) (payout_models.Status, json.RawMessage, error)
}

const (
	// DefaultTransferDeadline bounds one provider call, retries included.
	DefaultTransferDeadline = 45 * time.Second
	// DefaultNotFoundGrace is how long a reference may stay unknown to the
	// provider before requery treats the transfer as failed.
	DefaultNotFoundGrace = 24 * time.Hour
)

// Service creates and reconciles vendor/rider payouts and customer
// withdrawals.
type Service struct {
	store            repository.Store
	transfers        Transfers
	fees             *fee_service.Calculator
	settlements      *settlement_service.Service
	nowFn            func() time.Time
	transferDeadline time.Duration
	notFoundGrace    time.Duration
}

func NewService(store repository.Store, transfers Transfers, fees *fee_service.Calculator, settlements *settlement_service.Service, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		store:            store,
		transfers:        transfers,
		fees:             fees,
		settlements:      settlements,
		nowFn:            nowFn,
		transferDeadline: DefaultTransferDeadline,
		notFoundGrace:    DefaultNotFoundGrace,
	}
}

// WithDeadlines overrides the provider call deadline and the not-found grace
// period. Non-positive values keep the current setting.
func (s *Service) WithDeadlines(transferDeadline, notFoundGrace time.Duration) *Service {
	if transferDeadline > 0 {
		s.transferDeadline = transferDeadline
	}
	if notFoundGrace > 0 {
		s.notFoundGrace = notFoundGrace
	}
	return s
}

// PayoutInput is one payout or withdrawal request.
type PayoutInput struct {
	RecipientID   uuid.UUID
	Role          wallet_models.RecipientRole
	Amount        decimal.Decimal
	BankAccountID uuid.UUID
}

// RequestPayout validates the request, reserves the amount and records a
// pending request before calling the transfer provider. The provider call and
// every write after it run detached from ctx: once the request row exists, a
// caller that goes away cannot discard it. A provider rejection removes the
// reservation again, leaving no request row and no debit.
func (s *Service) RequestPayout(ctx context.Context, in PayoutInput) (*payout_models.PayoutRequest, error) {
	cfg, err := wallet_models.ConfigFor(in.Role)
	if err != nil {
		return nil, err
	}
	in.Amount = shared_models.Round2(in.Amount)
	if !in.Amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}

	wallet, err := s.store.EnsureWallet(ctx, in.Role, in.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("load %s wallet: %w", in.Role, err)
	}
	if wallet.AvailableBalance.LessThan(in.Amount) {
		return nil, utils.ErrInsufficientBalance
	}

	bank, err := s.store.GetBankAccount(ctx, in.Role, in.RecipientID, in.BankAccountID)
	if errors.Is(err, utils.ErrRecordNotFound) {
		return nil, utils.ErrBankAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load bank account: %w", err)
	}
	if strings.TrimSpace(bank.BankCode) == "" {
		return nil, utils.ErrMissingBankCode
	}

	fee, net, err := s.fees.PayoutFee(in.Amount)
	if err != nil {
		return nil, err
	}

	accountName := s.transfers.LookupAccountName(ctx, bank.BankCode, bank.AccountNumber, bank.AccountName)

	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return nil, err
	}
	now := s.nowFn()
	request := &payout_models.PayoutRequest{
		ID:                id,
		Role:              in.Role,
		RecipientID:       in.RecipientID,
		BankAccountID:     bank.ID,
		Amount:            in.Amount,
		Fee:               fee,
		NetAmount:         net,
		Status:            payout_models.StatusPending,
		TransferReference: transfer_service.GenerateReference(cfg.TransferPrefix, id, now),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = s.store.RunInTx(ctx, func(tx repository.Store) error {
		if err := tx.DebitWallet(ctx, in.Role, in.RecipientID, in.Amount); err != nil {
			return err
		}
		if err := tx.InsertPayoutRequest(ctx, request); err != nil {
			return err
		}
		if _, err := s.settlements.WithTx(tx).AllocateToPayout(ctx, in.Role, in.RecipientID, request.ID, in.Amount); err != nil {
			return err
		}
		return logTransaction(ctx, tx, cfg.PayoutTxnType, request, transaction_models.StatusPending, now)
	})
	if err != nil {
		logger.ErrorLogger.Errorf("%s payout for %s of %s aborted: %v", in.Role, in.RecipientID, in.Amount, err)
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	callCtx, cancel := context.WithTimeout(detached, s.transferDeadline)
	result, err := s.transfers.InitiateTransfer(callCtx, transfer_service.TransferInput{
		Amount:        net,
		BankCode:      bank.BankCode,
		AccountNumber: bank.AccountNumber,
		AccountName:   accountName,
		Reference:     request.TransferReference,
		Remark:        remark(in.Role),
	})
	cancel()
	if err != nil {
		// InitiateTransfer reports unknown outcomes as results, so an error
		// means the provider holds nothing under this reference.
		if rerr := s.reverseRejected(detached, request); rerr != nil {
			logger.ErrorLogger.Errorf("%s payout %s rejected but left pending for requery: %v", in.Role, request.ID, rerr)
		}
		return nil, err
	}

	if err := s.recordInitiation(detached, request, result); err != nil {
		logger.ErrorLogger.Errorf("%s payout %s sent as %s but not updated, requery will reconcile: %v",
			in.Role, request.ID, request.TransferReference, err)
	}

	logger.InfoLogger.Infof("%s payout %s created: recipient=%s amount=%s fee=%s net=%s status=%s ref=%s",
		in.Role, request.ID, in.RecipientID, request.Amount, request.Fee, request.NetAmount, request.Status, request.TransferReference)
	return request, nil
}

// recordInitiation stores the provider's answer unless a webhook already
// moved the request to a terminal status.
func (s *Service) recordInitiation(ctx context.Context, request *payout_models.PayoutRequest, result *transfer_service.InitiateResult) error {
	now := s.nowFn()
	return s.store.RunInTx(ctx, func(tx repository.Store) error {
		current, err := tx.GetPayoutRequest(ctx, request.Role, request.ID)
		if err != nil {
			return err
		}
		if current.Status != payout_models.StatusPending {
			*request = *current
			return nil
		}
		if err := tx.UpdatePayoutStatus(ctx, request.Role, request.ID, repository.PayoutStatusUpdate{
			Status:    result.Status,
			Metadata:  result.Payload,
			UpdatedAt: now,
		}); err != nil {
			return err
		}
		request.Status = result.Status
		if len(result.Payload) > 0 {
			request.TransferMetadata = result.Payload
		}
		request.UpdatedAt = now
		return nil
	})
}

// reverseRejected undoes the reservation for a transfer the provider
// refused: the request row, its pending ledger entry and its settlement
// allocation go away and the debit is restored.
func (s *Service) reverseRejected(ctx context.Context, request *payout_models.PayoutRequest) error {
	return s.store.RunInTx(ctx, func(tx repository.Store) error {
		removed, err := tx.DeletePendingPayoutRequest(ctx, request.Role, request.ID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%w: payout %s is no longer pending", utils.ErrInvalidStateTransition, request.ID)
		}
		if err := tx.DeletePendingTransactions(ctx, request.Role, transaction_models.RefPayoutRequest, request.ID.String()); err != nil {
			return err
		}
		if err := s.settlements.WithTx(tx).ReleasePayout(ctx, request.ID); err != nil {
			return err
		}
		return tx.RestoreWallet(ctx, request.Role, request.RecipientID, request.Amount)
	})
}

// restore credits a failed request back to its wallet once and releases its
// settlements. It reports whether this call moved money.
func (s *Service) restore(ctx context.Context, tx repository.Store, request *payout_models.PayoutRequest, now time.Time) (bool, error) {
	restored, err := tx.MarkPayoutRestored(ctx, request.Role, request.ID, now)
	if err != nil || !restored {
		return false, err
	}
	if err := tx.RestoreWallet(ctx, request.Role, request.RecipientID, request.Amount); err != nil {
		return false, err
	}
	if err := s.settlements.WithTx(tx).ReleasePayout(ctx, request.ID); err != nil {
		return false, err
	}
	request.WalletRestoredAt = &now
	return true, logTransaction(ctx, tx, transaction_models.TypePayoutReversal, request, transaction_models.StatusCompleted, now)
}

// RequeryStatus asks the provider for the payout's transfer status and
// reconciles the stored request. It never touches the wallet. A provider
// error returns ErrTransferRequeryFailed and leaves the request unchanged,
// except that a reference still unknown to the provider after the not-found
// grace period fails the request.
func (s *Service) RequeryStatus(ctx context.Context, role wallet_models.RecipientRole, payoutID uuid.UUID) (*payout_models.PayoutRequest, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}
	request, err := s.store.GetPayoutRequest(ctx, role, payoutID)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return request, nil
	}

	status, payload, err := s.transfers.RequeryTransfer(ctx, request.TransferReference)
	if errors.Is(err, transfer_service.ErrTransferNotFound) && s.nowFn().Sub(request.CreatedAt) >= s.notFoundGrace {
		logger.WarnLogger.Warnf("%s payout %s still unknown to provider after %v, failing it", role, payoutID, s.notFoundGrace)
		status, payload, err = payout_models.StatusFailed, json.RawMessage(`{"message":"transfer unknown to provider"}`), nil
	}
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, request, status, payload)
}

// ReconcileByReference applies a provider-reported status to the request with
// the given transfer reference. Requery and the provider webhook both end here.
func (s *Service) ReconcileByReference(ctx context.Context, reference, providerStatus string, payload json.RawMessage) (*payout_models.PayoutRequest, error) {
	role, err := roleFromReference(reference)
	if err != nil {
		return nil, err
	}
	request, err := s.store.GetPayoutRequestByReference(ctx, role, reference)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, request, payout_models.MapProviderStatus(providerStatus), payload)
}

func (s *Service) reconcile(ctx context.Context, request *payout_models.PayoutRequest, status payout_models.Status, payload json.RawMessage) (*payout_models.PayoutRequest, error) {
	if request.Status.IsTerminal() || status == request.Status {
		return request, nil
	}

	now := s.nowFn()
	update := repository.PayoutStatusUpdate{
		Status:        status,
		ProcessedAt:   request.ProcessedAt,
		FailureReason: request.FailureReason,
		Metadata:      payload,
		UpdatedAt:     now,
	}
	if status.IsTerminal() {
		update.ProcessedAt = &now
	}
	if status == payout_models.StatusFailed {
		update.FailureReason = failureReason(payload)
	}

	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		// Re-read inside the transaction so a concurrent webhook and requery
		// apply the terminal status once.
		current, err := tx.GetPayoutRequest(ctx, request.Role, request.ID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			*request = *current
			return nil
		}
		if err := tx.UpdatePayoutStatus(ctx, request.Role, request.ID, update); err != nil {
			return err
		}
		if err := s.settlements.WithTx(tx).ResolvePayout(ctx, request.ID, status); err != nil {
			return err
		}
		request.Status = update.Status
		request.ProcessedAt = update.ProcessedAt
		request.FailureReason = update.FailureReason
		if len(payload) > 0 {
			request.TransferMetadata = payload
		}
		request.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoLogger.Infof("%s payout %s reconciled to %s", request.Role, request.ID, request.Status)
	return request, nil
}

// RestoreFailedPayout credits a failed payout's amount back to the wallet.
// Only the first call moves money; later calls return the request as is.
func (s *Service) RestoreFailedPayout(ctx context.Context, role wallet_models.RecipientRole, payoutID uuid.UUID) (*payout_models.PayoutRequest, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}

	var request *payout_models.PayoutRequest
	err := s.store.RunInTx(ctx, func(tx repository.Store) error {
		var err error
		request, err = tx.GetPayoutRequest(ctx, role, payoutID)
		if err != nil {
			return err
		}
		if request.Status != payout_models.StatusFailed {
			return fmt.Errorf("%w: payout %s is %s, not failed", utils.ErrInvalidStateTransition, payoutID, request.Status)
		}

		_, err = s.restore(ctx, tx, request, s.nowFn())
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.InfoLogger.Infof("%s payout %s restored %s to wallet of %s", role, payoutID, request.Amount, request.RecipientID)
	return request, nil
}

// GetPayout returns one request, checking ownership when recipientID is set.
func (s *Service) GetPayout(ctx context.Context, role wallet_models.RecipientRole, recipientID, payoutID uuid.UUID) (*payout_models.PayoutRequest, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}
	request, err := s.store.GetPayoutRequest(ctx, role, payoutID)
	if err != nil {
		return nil, err
	}
	if recipientID != uuid.Nil && request.RecipientID != recipientID {
		return nil, utils.ErrRecordNotFound
	}
	return request, nil
}

func (s *Service) ListPayouts(ctx context.Context, role wallet_models.RecipientRole, recipientID uuid.UUID, page shared_models.Pagination) ([]payout_models.PayoutRequest, error) {
	if _, err := wallet_models.ConfigFor(role); err != nil {
		return nil, err
	}
	rows, err := s.store.ListPayoutRequests(ctx, role, recipientID, page.Normalize())
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []payout_models.PayoutRequest{}
	}
	return rows, nil
}

func logTransaction(ctx context.Context, tx repository.Store, txnType string, p *payout_models.PayoutRequest, status string, now time.Time) error {
	id, err := shared_models.GenerateUUIDv7()
	if err != nil {
		return err
	}
	meta, _ := json.Marshal(map[string]string{
		"transfer_reference": p.TransferReference,
		"fee":                p.Fee.String(),
		"net_amount":         p.NetAmount.String(),
		"bank_account_id":    p.BankAccountID.String(),
	})
	return tx.InsertTransaction(ctx, p.Role, &transaction_models.Transaction{
		TransactionID: id,
		UserID:        p.RecipientID,
		Type:          txnType,
		Amount:        p.Amount,
		Status:        status,
		Description:   describe(txnType, p),
		ReferenceID:   p.ID.String(),
		ReferenceType: transaction_models.RefPayoutRequest,
		Metadata:      meta,
		ProcessedAt:   now,
	})
}

func describe(txnType string, p *payout_models.PayoutRequest) string {
	switch txnType {
	case transaction_models.TypePayoutReversal:
		return fmt.Sprintf("Refund of failed transfer %s", p.TransferReference)
	case transaction_models.TypeWithdrawal:
		return fmt.Sprintf("Withdrawal to bank (%s)", p.TransferReference)
	default:
		return fmt.Sprintf("Payout to bank (%s)", p.TransferReference)
	}
}

func remark(role wallet_models.RecipientRole) string {
	if role == wallet_models.RoleCustomer {
		return "Wallet withdrawal"
	}
	name := string(role)
	return strings.ToUpper(name[:1]) + name[1:] + " payout"
}

func roleFromReference(reference string) (wallet_models.RecipientRole, error) {
	prefix, _, ok := strings.Cut(reference, "_")
	if !ok {
		return "", utils.ErrRecordNotFound
	}
	for _, role := range wallet_models.Roles() {
		cfg, _ := wallet_models.ConfigFor(role)
		if cfg.TransferPrefix == prefix {
			return role, nil
		}
	}
	return "", utils.ErrRecordNotFound
}

func failureReason(payload json.RawMessage) string {
	var body struct {
		Message string `json:"message"`
		Data    struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"data"`
	}
	if len(payload) > 0 && json.Unmarshal(payload, &body) == nil {
		for _, s := range []string{body.Data.Reason, body.Data.Message, body.Message} {
			if s != "" {
				return s
			}
		}
		if body.Data.Status != "" {
			return "transfer " + body.Data.Status
		}
	}
	return "transfer failed"
}
