// Package finance holds accounts with per-currency balances and the
// double-entry transfer operation between them.
package finance

import "time"

// Money is minor units (cents). No floats anywhere in this package.
type Money struct {
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
}

func (m Money) IsPositive() bool { return m.Amount > 0 }
func (m Money) IsZero() bool     { return m.Amount == 0 }

// Account carries one balance per currency.
type Account struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Balances  map[string]int64 `json:"balances"`
}

// Transaction is the immutable record of one committed transfer.
type Transaction struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	FromAccountID  string    `json:"from_account_id"`
	ToAccountID    string    `json:"to_account_id"`
	Currency       string    `json:"currency"`
	Amount         int64     `json:"amount"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	Sequence       uint64    `json:"sequence"`
}
