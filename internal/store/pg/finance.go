package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clierp.org/internal/dbtx"
	"clierp.org/internal/erperr"
	"clierp.org/internal/finance"
	"clierp.org/internal/ids"
)

// FinanceStore persists accounts, balances and transactions.
type FinanceStore struct {
	db *sql.DB
}

var _ finance.Service = (*FinanceStore)(nil)

func NewFinanceStore(s *Store) *FinanceStore { return &FinanceStore{db: s.db} }

func (s *FinanceStore) CreateAccount(ctx context.Context, initial finance.Money) (finance.Account, error) {
	if initial.Currency == "" {
		return finance.Account{}, fmt.Errorf("%w: currency is required", erperr.ErrValidation)
	}
	if initial.Amount < 0 {
		return finance.Account{}, fmt.Errorf("%w: amount must not be negative", erperr.ErrValidation)
	}
	id := ids.New()

	err := dbtx.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`insert into accounts (id, created_at) values ($1, now())`, id); err != nil {
			return fmt.Errorf("%w: create account: %v", erperr.ErrDatabase, err)
		}
		if _, err := tx.ExecContext(ctx,
			`insert into balances (account_id, currency, amount)
			 values ($1, $2, $3)
			 on conflict (account_id, currency) do update
			 set amount = balances.amount + excluded.amount`,
			id, initial.Currency, initial.Amount); err != nil {
			return fmt.Errorf("%w: seed balance: %v", erperr.ErrDatabase, err)
		}
		return nil
	})
	if err != nil {
		return finance.Account{}, err
	}
	return finance.Account{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Balances:  map[string]int64{initial.Currency: initial.Amount},
	}, nil
}

func (s *FinanceStore) GetAccount(ctx context.Context, id string) (finance.Account, error) {
	var created time.Time
	err := s.db.QueryRowContext(ctx,
		`select created_at from accounts where id = $1`, id).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Account{}, fmt.Errorf("%w: account %s", erperr.ErrNotFound, id)
	}
	if err != nil {
		return finance.Account{}, fmt.Errorf("%w: get account: %v", erperr.ErrDatabase, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`select currency, amount from balances where account_id = $1`, id)
	if err != nil {
		return finance.Account{}, fmt.Errorf("%w: get balances: %v", erperr.ErrDatabase, err)
	}
	defer rows.Close()

	bals := map[string]int64{}
	for rows.Next() {
		var c string
		var a int64
		if err := rows.Scan(&c, &a); err != nil {
			return finance.Account{}, fmt.Errorf("%w: scan balance: %v", erperr.ErrDatabase, err)
		}
		bals[c] = a
	}
	return finance.Account{ID: id, CreatedAt: created, Balances: bals}, nil
}

func (s *FinanceStore) GetBalance(ctx context.Context, id, currency string) (finance.Money, error) {
	var amt int64
	err := s.db.QueryRowContext(ctx,
		`select coalesce(b.amount, 0)
		 from accounts a
		 left join balances b on b.account_id = a.id and b.currency = $2
		 where a.id = $1`, id, currency).Scan(&amt)
	if errors.Is(err, sql.ErrNoRows) {
		return finance.Money{}, fmt.Errorf("%w: account %s", erperr.ErrNotFound, id)
	}
	if err != nil {
		return finance.Money{}, fmt.Errorf("%w: get balance: %v", erperr.ErrDatabase, err)
	}
	return finance.Money{Currency: currency, Amount: amt}, nil
}

// Transfer runs serializable. Accounts are locked in a stable order to
// avoid deadlocks between concurrent transfers.
func (s *FinanceStore) Transfer(ctx context.Context, fromID, toID string, amt finance.Money, idemKey string) (finance.Transaction, error) {
	if !amt.IsPositive() {
		return finance.Transaction{}, fmt.Errorf("%w: amount must be positive", erperr.ErrValidation)
	}
	if amt.Currency == "" {
		return finance.Transaction{}, fmt.Errorf("%w: currency is required", erperr.ErrValidation)
	}

	var out finance.Transaction
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	err := dbtx.WithTransactionOpts(ctx, s.db, opts, func(tx *sql.Tx) error {
		if idemKey != "" {
			var idem sql.NullString
			err := tx.QueryRowContext(ctx,
				`select id, created_at, from_account_id, to_account_id, currency, amount, sequence, idempotency_key
				 from transactions where idempotency_key = $1`, idemKey,
			).Scan(&out.ID, &out.CreatedAt, &out.FromAccountID, &out.ToAccountID,
				&out.Currency, &out.Amount, &out.Sequence, &idem)
			if err == nil {
				if idem.Valid {
					out.IdempotencyKey = idem.String
				}
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: idempotency lookup: %v", erperr.ErrDatabase, err)
			}
		}

		for _, acc := range sortedPair(fromID, toID) {
			var one int
			err := tx.QueryRowContext(ctx,
				`select 1 from accounts where id = $1 for update`, acc).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: account %s", erperr.ErrNotFound, acc)
			}
			if err != nil {
				return fmt.Errorf("%w: lock account: %v", erperr.ErrDatabase, err)
			}
		}

		for _, acc := range []string{fromID, toID} {
			if _, err := tx.ExecContext(ctx,
				`insert into balances (account_id, currency, amount)
				 values ($1, $2, 0) on conflict do nothing`, acc, amt.Currency); err != nil {
				return fmt.Errorf("%w: ensure balance row: %v", erperr.ErrDatabase, err)
			}
		}

		var fromBal int64
		if err := tx.QueryRowContext(ctx,
			`select amount from balances where account_id = $1 and currency = $2 for update`,
			fromID, amt.Currency).Scan(&fromBal); err != nil {
			return fmt.Errorf("%w: read balance: %v", erperr.ErrDatabase, err)
		}
		if fromBal < amt.Amount {
			return finance.ErrInsufficientFunds
		}

		if _, err := tx.ExecContext(ctx,
			`update balances set amount = amount - $3 where account_id = $1 and currency = $2`,
			fromID, amt.Currency, amt.Amount); err != nil {
			return fmt.Errorf("%w: debit: %v", erperr.ErrDatabase, err)
		}
		if _, err := tx.ExecContext(ctx,
			`update balances set amount = amount + $3 where account_id = $1 and currency = $2`,
			toID, amt.Currency, amt.Amount); err != nil {
			return fmt.Errorf("%w: credit: %v", erperr.ErrDatabase, err)
		}

		out = finance.Transaction{
			ID:             ids.New(),
			CreatedAt:      time.Now().UTC(),
			FromAccountID:  fromID,
			ToAccountID:    toID,
			Currency:       amt.Currency,
			Amount:         amt.Amount,
			IdempotencyKey: idemKey,
		}
		if err := tx.QueryRowContext(ctx,
			`insert into transactions (id, from_account_id, to_account_id, currency, amount, idempotency_key)
			 values ($1, $2, $3, $4, $5, nullif($6, '')) returning sequence`,
			out.ID, fromID, toID, amt.Currency, amt.Amount, idemKey).Scan(&out.Sequence); err != nil {
			return fmt.Errorf("%w: record transaction: %v", erperr.ErrDatabase, err)
		}
		return nil
	})
	if err != nil {
		return finance.Transaction{}, err
	}
	return out, nil
}

func (s *FinanceStore) ListTransactions(ctx context.Context, limit int, afterSeq uint64) ([]finance.Transaction, uint64, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`select id, created_at, from_account_id, to_account_id, currency, amount, sequence, coalesce(idempotency_key, '')
		 from transactions where sequence > $1 order by sequence asc limit $2`,
		afterSeq, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list transactions: %v", erperr.ErrDatabase, err)
	}
	defer rows.Close()

	var res []finance.Transaction
	var last uint64
	for rows.Next() {
		var tx finance.Transaction
		if err := rows.Scan(&tx.ID, &tx.CreatedAt, &tx.FromAccountID, &tx.ToAccountID,
			&tx.Currency, &tx.Amount, &tx.Sequence, &tx.IdempotencyKey); err != nil {
			return nil, 0, fmt.Errorf("%w: scan transaction: %v", erperr.ErrDatabase, err)
		}
		res = append(res, tx)
		last = tx.Sequence
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: list transactions: %v", erperr.ErrDatabase, err)
	}
	return res, last, nil
}

func sortedPair(a, b string) []string {
	if a <= b {
		return []string{a, b}
	}
	return []string{b, a}
}
