// Package memory is an in-process repository.Store used by service and
// controller tests. A transaction works on a copy of the state that replaces
// the original only when the callback succeeds.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joy095/settlement/models/escrow_models"
	"github.com/joy095/settlement/models/order_models"
	"github.com/joy095/settlement/models/payout_models"
	"github.com/joy095/settlement/models/settlement_models"
	"github.com/joy095/settlement/models/transaction_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/repository"
	"github.com/shopspring/decimal"
)

type roleKey struct {
	role wallet_models.RecipientRole
	id   uuid.UUID
}

type state struct {
	orders          map[uuid.UUID]order_models.Order
	holds           map[uuid.UUID]escrow_models.PaymentHold
	virtualAccounts map[roleKey]wallet_models.VirtualAccount
	wallets         map[roleKey]wallet_models.Wallet
	bankAccounts    map[roleKey]wallet_models.BankAccount
	settlements     []settlement_models.Settlement
	payouts         []payout_models.PayoutRequest
	transactions    map[wallet_models.RecipientRole][]transaction_models.Transaction
}

func newState() *state {
	return &state{
		orders:          map[uuid.UUID]order_models.Order{},
		holds:           map[uuid.UUID]escrow_models.PaymentHold{},
		virtualAccounts: map[roleKey]wallet_models.VirtualAccount{},
		wallets:         map[roleKey]wallet_models.Wallet{},
		bankAccounts:    map[roleKey]wallet_models.BankAccount{},
		transactions:    map[wallet_models.RecipientRole][]transaction_models.Transaction{},
	}
}

func (st *state) clone() *state {
	out := newState()
	for k, v := range st.orders {
		out.orders[k] = v
	}
	for k, v := range st.holds {
		out.holds[k] = v
	}
	for k, v := range st.virtualAccounts {
		out.virtualAccounts[k] = v
	}
	for k, v := range st.wallets {
		out.wallets[k] = v
	}
	for k, v := range st.bankAccounts {
		out.bankAccounts[k] = v
	}
	out.settlements = append([]settlement_models.Settlement(nil), st.settlements...)
	out.payouts = append([]payout_models.PayoutRequest(nil), st.payouts...)
	for k, v := range st.transactions {
		out.transactions[k] = append([]transaction_models.Transaction(nil), v...)
	}
	return out
}

type Store struct {
	mu   *sync.Mutex
	st   *state
	inTx bool
	now  func() time.Time
}

var _ repository.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, st: newState(), now: time.Now}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) RunInTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&Store{mu: s.mu, st: work, inTx: true, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	*s.st = *work
	return nil
}

// PutOrder seeds an order owned by the external order subsystem.
func (s *Store) PutOrder(o order_models.Order) {
	defer s.lock()()
	s.st.orders[o.ID] = o
}

func (s *Store) PutBankAccount(role wallet_models.RecipientRole, b wallet_models.BankAccount) {
	defer s.lock()()
	s.st.bankAccounts[roleKey{role, b.ID}] = b
}

func (s *Store) PutVirtualAccount(va wallet_models.VirtualAccount) {
	defer s.lock()()
	s.st.virtualAccounts[roleKey{va.Role, va.ProfileID}] = va
}

// SetAvailableBalance creates or overwrites a wallet's available balance.
func (s *Store) SetAvailableBalance(role wallet_models.RecipientRole, userID uuid.UUID, amount decimal.Decimal) {
	defer s.lock()()
	w := s.walletLocked(role, userID)
	w.AvailableBalance = amount
	s.st.wallets[roleKey{role, userID}] = w
}

// Transactions returns every transaction logged for a role in insertion order.
func (s *Store) Transactions(role wallet_models.RecipientRole) []transaction_models.Transaction {
	defer s.lock()()
	return append([]transaction_models.Transaction(nil), s.st.transactions[role]...)
}

// PayoutCount returns the number of stored payout and withdrawal requests.
func (s *Store) PayoutCount() int {
	defer s.lock()()
	return len(s.st.payouts)
}

func (s *Store) walletLocked(role wallet_models.RecipientRole, userID uuid.UUID) wallet_models.Wallet {
	if w, ok := s.st.wallets[roleKey{role, userID}]; ok {
		return w
	}
	now := s.now()
	id, _ := uuid.NewV7()
	return wallet_models.Wallet{
		ID:        id,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
