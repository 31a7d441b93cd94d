package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TransferClient talks to the bank transfer provider. reference is the
// idempotency key on every transfer call.
type TransferClient struct {
	SecretKey  string
	BaseURL    string
	HttpClient *http.Client
}

// TransferRequest is the provider's transfer initiation body. Amount is in
// minor units.
type TransferRequest struct {
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Reference     string `json:"reference"`
	Remark        string `json:"remark"`
}

// TransferResponse carries the provider's status word and the raw body.
type TransferResponse struct {
	HTTPStatus int
	Status     string
	Reference  string
	Payload    json.RawMessage
}

type envelope struct {
	Status  any             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ProviderError is returned for transport failures and non-2xx responses.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transfer provider %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transfer provider %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Temporary reports whether the outcome is unknown and the call may be
// repeated with the same reference.
func (e *ProviderError) Temporary() bool {
	if e.Err != nil {
		return true
	}
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsDuplicate reports a provider rejection of a reference it has already accepted.
func (e *ProviderError) IsDuplicate() bool {
	return e.StatusCode == http.StatusConflict
}

// IsNotFound reports an unknown reference.
func (e *ProviderError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// NewTransferClient builds a client with a bounded per-call timeout.
func NewTransferClient(baseURL, secretKey string, timeout time.Duration) (*TransferClient, error) {
	if secretKey == "" {
		return nil, errors.New("transfer: secret key not set")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TransferClient{
		SecretKey: secretKey,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HttpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// makeRequest is an HTTP client helper
func (tc *TransferClient) makeRequest(ctx context.Context, op, method, path string, body any) (*TransferResponse, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", op, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+tc.SecretKey)

	resp, err := tc.HttpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &ProviderError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ProviderError{Op: op, StatusCode: resp.StatusCode, Body: string(raw), Err: fmt.Errorf("invalid response: %w", err)}
	}
	return &TransferResponse{HTTPStatus: resp.StatusCode, Payload: raw, Status: statusWord(env)}, nil
}

// statusWord prefers data.status and falls back to a string top-level status.
func statusWord(env envelope) string {
	var data struct {
		Status string `json:"status"`
	}
	if len(env.Data) > 0 && json.Unmarshal(env.Data, &data) == nil && data.Status != "" {
		return data.Status
	}
	if s, ok := env.Status.(string); ok {
		return s
	}
	return ""
}

// ResolveAccount returns the account holder name registered with the bank.
func (tc *TransferClient) ResolveAccount(ctx context.Context, bankCode, accountNumber string) (string, error) {
	q := url.Values{}
	q.Set("bank_code", bankCode)
	q.Set("account_number", accountNumber)

	resp, err := tc.makeRequest(ctx, "resolve", http.MethodGet, "/accounts/resolve?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	var env struct {
		Data struct {
			AccountName string `json:"account_name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Payload, &env); err != nil {
		return "", fmt.Errorf("failed to decode resolve response: %w", err)
	}
	if strings.TrimSpace(env.Data.AccountName) == "" {
		return "", errors.New("transfer provider resolve: empty account name")
	}
	return strings.TrimSpace(env.Data.AccountName), nil
}

// InitiateTransfer submits a transfer. Submitting the same reference again
// addresses the same transfer.
func (tc *TransferClient) InitiateTransfer(ctx context.Context, in TransferRequest) (*TransferResponse, error) {
	if in.Currency == "" {
		in.Currency = "NGN"
	}
	resp, err := tc.makeRequest(ctx, "initiate", http.MethodPost, "/transfers", in)
	if err != nil {
		return nil, err
	}
	resp.Reference = in.Reference
	return resp, nil
}

// Requery fetches the current provider status of a transfer.
func (tc *TransferClient) Requery(ctx context.Context, reference string) (*TransferResponse, error) {
	resp, err := tc.makeRequest(ctx, "requery", http.MethodGet, "/transfers/requery/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, err
	}
	resp.Reference = reference
	return resp, nil
}
