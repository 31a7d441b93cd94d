package wallet_models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/utils"
	"github.com/shopspring/decimal"
)

// RecipientRole identifies whose wallet, bank accounts and payout table an
// operation addresses.
type RecipientRole string

const (
	RoleVendor   RecipientRole = "vendor"
	RoleRider    RecipientRole = "rider"
	RoleCustomer RecipientRole = "customer"
)

// RoleConfig is the per-role table layout. Every role shares the same
// column shapes, only the table names and provider prefix differ.
type RoleConfig struct {
	Role             RecipientRole
	WalletTable      string
	BankAccountTable string
	PayoutTable      string
	TransactionTable string
	TransferPrefix   string
	// PayoutTxnType is the transaction type written when money leaves the wallet.
	PayoutTxnType string
}

var roleConfigs = map[RecipientRole]RoleConfig{
	RoleVendor: {
		Role:             RoleVendor,
		WalletTable:      "vendor_wallet",
		BankAccountTable: "vendor_bank_accounts",
		PayoutTable:      "vendor_payout_requests",
		TransactionTable: "vendor_transactions",
		TransferPrefix:   "VND",
		PayoutTxnType:    "payout",
	},
	RoleRider: {
		Role:             RoleRider,
		WalletTable:      "rider_wallet",
		BankAccountTable: "rider_bank_accounts",
		PayoutTable:      "rider_payout_requests",
		TransactionTable: "rider_transactions",
		TransferPrefix:   "RDR",
		PayoutTxnType:    "payout",
	},
	RoleCustomer: {
		Role:             RoleCustomer,
		WalletTable:      "customer_wallet",
		BankAccountTable: "customer_bank_accounts",
		PayoutTable:      "customer_withdrawal_requests",
		TransactionTable: "customer_transactions",
		TransferPrefix:   "CWD",
		PayoutTxnType:    "withdrawal",
	},
}

// ParseRole validates a role taken from a path parameter or token claim.
func ParseRole(raw string) (RecipientRole, error) {
	role := RecipientRole(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := roleConfigs[role]; !ok {
		return "", utils.ErrUnknownRole
	}
	return role, nil
}

// ConfigFor returns the table layout for a role.
func ConfigFor(role RecipientRole) (RoleConfig, error) {
	cfg, ok := roleConfigs[role]
	if !ok {
		return RoleConfig{}, utils.ErrUnknownRole
	}
	return cfg, nil
}

// Roles lists every wallet-owning role.
func Roles() []RecipientRole {
	return []RecipientRole{RoleVendor, RoleRider, RoleCustomer}
}

// CreditKind selects which balance a credit lands in.
type CreditKind string

const (
	CreditAvailable CreditKind = "available"
	CreditPending   CreditKind = "pending"
)

type Wallet struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	UserID           uuid.UUID        `json:"user_id" db:"user_id"`
	Role             RecipientRole    `json:"role"`
	AvailableBalance decimal.Decimal  `json:"available_balance" db:"available_balance"`
	PendingBalance   decimal.Decimal  `json:"pending_balance" db:"pending_balance"`
	TotalEarned      decimal.Decimal  `json:"total_earned" db:"total_earned"`
	TotalWithdrawn   decimal.Decimal  `json:"total_withdrawn" db:"total_withdrawn"`
	CarbonCredits    *decimal.Decimal `json:"carbon_credits,omitempty" db:"carbon_credits"`
	VirtualAccountID *uuid.UUID       `json:"virtual_account_id,omitempty" db:"virtual_account_id"`
	VirtualAccount   *VirtualAccount  `json:"virtual_account,omitempty"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

type VirtualAccount struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	ProfileID     uuid.UUID     `json:"profile_id" db:"profile_id"`
	Role          RecipientRole `json:"role" db:"role"`
	AccountNumber string        `json:"account_number" db:"account_number"`
	AccountName   string        `json:"account_name" db:"account_name"`
	BankName      string        `json:"bank_name" db:"bank_name"`
	BankCode      string        `json:"bank_code" db:"bank_code"`
	IsActive      bool          `json:"is_active" db:"is_active"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// BankAccount is a payout destination registered by a vendor, rider or customer.
type BankAccount struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	BankName      string    `json:"bank_name" db:"bank_name"`
	BankCode      string    `json:"bank_code" db:"bank_code"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	AccountName   string    `json:"account_name" db:"account_name"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
