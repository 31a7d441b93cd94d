// utils/errors.go
package utils

import "errors"

var (
	ErrUserIDNotFound = errors.New("authentication required: user ID not found")
	ErrUnauthorized   = errors.New("unauthorized access")
)

// Settlement errors. Validation errors are returned before any call to the
// transfer provider.
var (
	ErrInsufficientBalance      = errors.New("insufficient available balance")
	ErrBankAccountNotFound      = errors.New("bank account not found")
	ErrMissingBankCode          = errors.New("bank account has no bank code")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrRefundWindowExpired      = errors.New("refund window has expired")
	ErrOrderNotRefundable       = errors.New("order is not refundable")
	ErrTransferInitiationFailed = errors.New("transfer initiation failed")
	ErrTransferRequeryFailed    = errors.New("transfer requery failed")
	ErrRecordNotFound           = errors.New("record not found")

	ErrNegativeAmount          = errors.New("amount must not be negative")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrUnknownRole             = errors.New("unknown recipient role")
	ErrOrderNotSettleable      = errors.New("order is not delivered and paid")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrDuplicateReference      = errors.New("transfer reference already used")
)
