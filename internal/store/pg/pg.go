// Package pg is the PostgreSQL persistence layer, reachable through the
// pgx stdlib driver so services speak plain database/sql.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"clierp.org/internal/erperr"
)

// Store owns the connection pool shared by all repositories.
type Store struct {
	db *sql.DB
}

// Open connects and verifies the pool within timeout.
func Open(dsn string, maxConns int, timeout time.Duration) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", erperr.ErrDatabase, err)
	}
	if maxConns <= 0 {
		maxConns = 10
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping: %v", erperr.ErrDatabase, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the pool for services that run their own transactions.
func (s *Store) DB() *sql.DB { return s.db }
