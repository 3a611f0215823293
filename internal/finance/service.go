package finance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clierp.org/internal/erperr"
	"clierp.org/internal/ids"
)

// Service defines the finance operations. Postgres is the production
// implementation; InMemory backs tests and offline runs.
type Service interface {
	CreateAccount(ctx context.Context, initial Money) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	GetBalance(ctx context.Context, id, currency string) (Money, error)
	Transfer(ctx context.Context, fromID, toID string, amt Money, idemKey string) (Transaction, error)
	ListTransactions(ctx context.Context, limit int, afterSeq uint64) ([]Transaction, uint64, error)
}

// ErrInsufficientFunds is a business rule violation, matchable both as
// itself and as erperr.ErrBusiness.
var ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", erperr.ErrBusiness)

func validateMoney(amt Money, allowZero bool) error {
	if amt.Currency == "" {
		return fmt.Errorf("%w: currency is required", erperr.ErrValidation)
	}
	if amt.Amount < 0 || (!allowZero && amt.Amount == 0) {
		return fmt.Errorf("%w: amount must be positive", erperr.ErrValidation)
	}
	return nil
}

// InMemory implements Service with in-process concurrency safety.
type InMemory struct {
	mu    sync.RWMutex
	accts map[string]*Account
	seq   uint64
	txs   []Transaction
	idem  map[string]Transaction
}

func NewInMemory() *InMemory {
	return &InMemory{
		accts: make(map[string]*Account),
		idem:  make(map[string]Transaction),
	}
}

func (s *InMemory) CreateAccount(ctx context.Context, initial Money) (Account, error) {
	if err := validateMoney(initial, true); err != nil {
		return Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	acc := &Account{
		ID:        ids.New(),
		CreatedAt: time.Now().UTC(),
		Balances:  map[string]int64{initial.Currency: initial.Amount},
	}
	s.accts[acc.ID] = acc
	return *acc, nil
}

func (s *InMemory) GetAccount(ctx context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accts[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: account %s", erperr.ErrNotFound, id)
	}
	out := *acc
	out.Balances = map[string]int64{}
	for k, v := range acc.Balances {
		out.Balances[k] = v
	}
	return out, nil
}

func (s *InMemory) GetBalance(ctx context.Context, id, currency string) (Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accts[id]
	if !ok {
		return Money{}, fmt.Errorf("%w: account %s", erperr.ErrNotFound, id)
	}
	return Money{Currency: currency, Amount: acc.Balances[currency]}, nil
}

func (s *InMemory) Transfer(ctx context.Context, fromID, toID string, amt Money, idemKey string) (Transaction, error) {
	if err := validateMoney(amt, false); err != nil {
		return Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idemKey != "" {
		if tx, ok := s.idem[idemKey]; ok {
			return tx, nil
		}
	}

	from, ok := s.accts[fromID]
	if !ok {
		return Transaction{}, fmt.Errorf("%w: account %s", erperr.ErrNotFound, fromID)
	}
	to, ok := s.accts[toID]
	if !ok {
		return Transaction{}, fmt.Errorf("%w: account %s", erperr.ErrNotFound, toID)
	}

	// Debits must equal credits; the only way to fail past this point
	// would leave both balances untouched.
	if from.Balances[amt.Currency] < amt.Amount {
		return Transaction{}, ErrInsufficientFunds
	}

	from.Balances[amt.Currency] -= amt.Amount
	to.Balances[amt.Currency] += amt.Amount

	s.seq++
	tx := Transaction{
		ID:             ids.New(),
		CreatedAt:      time.Now().UTC(),
		FromAccountID:  fromID,
		ToAccountID:    toID,
		Currency:       amt.Currency,
		Amount:         amt.Amount,
		IdempotencyKey: idemKey,
		Sequence:       s.seq,
	}
	s.txs = append(s.txs, tx)
	if idemKey != "" {
		s.idem[idemKey] = tx
	}
	return tx, nil
}

func (s *InMemory) ListTransactions(ctx context.Context, limit int, afterSeq uint64) ([]Transaction, uint64, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Transaction
	var last uint64
	for _, tx := range s.txs {
		if tx.Sequence <= afterSeq {
			continue
		}
		res = append(res, tx)
		last = tx.Sequence
		if len(res) >= limit {
			break
		}
	}
	return res, last, nil
}
