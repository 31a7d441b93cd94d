package transfer_service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/joy095/settlement/clients"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

// Provider is the outbound transfer API. *clients.TransferClient implements it.
type Provider interface {
	ResolveAccount(ctx context.Context, bankCode, accountNumber string) (string, error)
	InitiateTransfer(ctx context.Context, in clients.TransferRequest) (*clients.TransferResponse, error)
	Requery(ctx context.Context, reference string) (*clients.TransferResponse, error)
}

// ErrTransferNotFound marks a requery for a reference the provider has no
// record of. It always comes wrapped in utils.ErrTransferRequeryFailed.
var ErrTransferNotFound = errors.New("transfer unknown to provider")

// Options tunes retries and caching. Zero values fall back to defaults.
// BackOff replaces the exponential retry policy, mainly in tests.
type Options struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	NameCacheTTL time.Duration
	BackOff      func() backoff.BackOff
}

// Service is the only component that moves real money.
type Service struct {
	provider     Provider
	cache        NameCache
	maxAttempts  int
	retryBackoff time.Duration
	nameCacheTTL time.Duration
	backOff      func() backoff.BackOff
}

// NewService wires the orchestrator. cache may be nil.
func NewService(provider Provider, cache NameCache, opts Options) *Service {
	s := &Service{
		provider:     provider,
		cache:        cache,
		maxAttempts:  opts.MaxAttempts,
		retryBackoff: opts.RetryBackoff,
		nameCacheTTL: opts.NameCacheTTL,
		backOff:      opts.BackOff,
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 3
	}
	if s.retryBackoff <= 0 {
		s.retryBackoff = time.Second
	}
	if s.nameCacheTTL <= 0 {
		s.nameCacheTTL = 24 * time.Hour
	}
	if s.backOff == nil {
		s.backOff = s.exponentialBackOff
	}
	return s
}

func (s *Service) exponentialBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryBackoff
	b.MaxInterval = 10 * s.retryBackoff
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// TransferInput describes one outbound transfer. Amount is in major units.
type TransferInput struct {
	Amount        decimal.Decimal
	BankCode      string
	AccountNumber string
	AccountName   string
	Reference     string
	Remark        string
}

// InitiateResult is a transfer the provider did not reject. Status is
// processing when the provider accepted it and pending when the outcome is
// unknown.
type InitiateResult struct {
	Status  payout_models.Status
	Unknown bool
	Payload json.RawMessage
}

// GenerateReference builds {PREFIX}_{roleScopedId}_{unixMillis}.
func GenerateReference(prefix string, roleScopedID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s_%s_%d", prefix, strings.ReplaceAll(roleScopedID.String(), "-", ""), now.UnixMilli())
}

// LookupAccountName resolves the holder name for an account. It never
// fails: any error is logged and fallback returned.
func (s *Service) LookupAccountName(ctx context.Context, bankCode, accountNumber, fallback string) string {
	if s.cache != nil {
		name, ok, err := s.cache.Get(ctx, bankCode, accountNumber)
		if err != nil {
			logger.WarnLogger.Warnf("account name cache read failed for %s/%s: %v", bankCode, maskAccount(accountNumber), err)
		} else if ok && name != "" {
			return name
		}
	}

	name, err := s.provider.ResolveAccount(ctx, bankCode, accountNumber)
	if err != nil || strings.TrimSpace(name) == "" {
		logger.WarnLogger.Warnf("account name lookup failed for %s/%s, using stored name: %v", bankCode, maskAccount(accountNumber), err)
		return fallback
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, bankCode, accountNumber, name, s.nameCacheTTL); err != nil {
			logger.WarnLogger.Warnf("account name cache write failed: %v", err)
		}
	}
	return name
}

// InitiateTransfer submits the transfer, retrying transient failures with
// the same reference. A definitive rejection returns
// ErrTransferInitiationFailed. Timeouts, 5xx responses and a cancelled ctx
// that outlast the retry policy come back as an unknown outcome, not an error.
func (s *Service) InitiateTransfer(ctx context.Context, in TransferInput) (*InitiateResult, error) {
	if !in.Amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}
	req := clients.TransferRequest{
		Amount:        shared_models.ToMinorUnits(in.Amount),
		BankCode:      in.BankCode,
		AccountNumber: in.AccountNumber,
		AccountName:   in.AccountName,
		Reference:     in.Reference,
		Remark:        in.Remark,
	}

	var (
		result  *InitiateResult
		lastErr error
		attempt int
	)
	operation := func() error {
		attempt++
		resp, err := s.provider.InitiateTransfer(ctx, req)
		if err == nil {
			if payout_models.MapProviderStatus(resp.Status) == payout_models.StatusFailed {
				return backoff.Permanent(fmt.Errorf("%w: provider status %s", utils.ErrTransferInitiationFailed, resp.Status))
			}
			result = &InitiateResult{Status: payout_models.StatusProcessing, Payload: resp.Payload}
			return nil
		}

		var perr *clients.ProviderError
		if errors.As(err, &perr) && perr.IsDuplicate() {
			// An earlier attempt with this reference already got through.
			logger.WarnLogger.Warnf("transfer %s already known to provider, treating as accepted", in.Reference)
			payload, _ := json.Marshal(map[string]any{"duplicate": true, "provider_response": perr.Body})
			result = &InitiateResult{Status: payout_models.StatusProcessing, Payload: payload}
			return nil
		}
		if !isTemporary(err) {
			return backoff.Permanent(fmt.Errorf("%w: %v", utils.ErrTransferInitiationFailed, err))
		}
		lastErr = err
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(s.backOff(), uint64(s.maxAttempts-1)), ctx)
	err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		logger.WarnLogger.Warnf("transfer %s attempt %d/%d failed, retrying in %v: %v", in.Reference, attempt, s.maxAttempts, next, err)
	})
	switch {
	case err == nil:
		logger.InfoLogger.Infof("transfer %s accepted on attempt %d: status=%s", in.Reference, attempt, result.Status)
		return result, nil
	case errors.Is(err, utils.ErrTransferInitiationFailed):
		logger.ErrorLogger.Errorf("transfer %s rejected: %v", in.Reference, err)
		return nil, err
	}

	if lastErr == nil {
		lastErr = err
	}
	logger.ErrorLogger.Errorf("transfer %s outcome unknown after %d attempts, leaving for requery: %v", in.Reference, attempt, lastErr)
	payload, _ := json.Marshal(map[string]string{"outcome": "unknown", "error": errString(lastErr)})
	return &InitiateResult{Status: payout_models.StatusPending, Unknown: true, Payload: payload}, nil
}

// RequeryTransfer asks the provider for the transfer's current status. Any
// provider error, including a reference it has not seen yet, wraps
// ErrTransferRequeryFailed; the not-found case also wraps ErrTransferNotFound.
func (s *Service) RequeryTransfer(ctx context.Context, reference string) (payout_models.Status, json.RawMessage, error) {
	resp, err := s.provider.Requery(ctx, reference)
	if err != nil {
		var perr *clients.ProviderError
		if errors.As(err, &perr) && perr.IsNotFound() {
			logger.WarnLogger.Warnf("transfer %s unknown to provider", reference)
			return "", nil, fmt.Errorf("%w: %w", utils.ErrTransferRequeryFailed, ErrTransferNotFound)
		}
		logger.ErrorLogger.Errorf("requery %s failed: %v", reference, err)
		return "", nil, fmt.Errorf("%w: %v", utils.ErrTransferRequeryFailed, err)
	}
	return payout_models.MapProviderStatus(resp.Status), resp.Payload, nil
}

func isTemporary(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var temp interface{ Temporary() bool }
	if errors.As(err, &temp) {
		return temp.Temporary()
	}
	return false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func maskAccount(n string) string {
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("*", len(n)-4) + n[len(n)-4:]
}
