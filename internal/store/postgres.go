package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/cardstream-dev/cardstream/internal/model"
)

const createTable = `
CREATE TABLE IF NOT EXISTS canonical_transaction (
	transaction_id TEXT PRIMARY KEY,
	transaction_date DATE NOT NULL,
	account_key TEXT NOT NULL,
	raw_description TEXT NOT NULL,
	merchant TEXT NOT NULL,
	category TEXT NOT NULL,
	channel TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL,
	transaction_type TEXT NOT NULL,
	institution TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertTxn = `
INSERT INTO canonical_transaction (
	transaction_id, transaction_date, account_key, raw_description,
	merchant, category, channel, amount, transaction_type, institution
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (transaction_id) DO NOTHING`

// PostgresStore persists canonical transactions in Postgres. Loads are
// incremental: rows whose transaction id is already present are skipped.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects, pings, and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Save implements Store. The whole batch commits atomically.
func (s *PostgresStore) Save(ctx context.Context, txns []model.CanonicalTransaction) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertTxn)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, t := range txns {
		res, err := stmt.ExecContext(ctx,
			t.ID, t.Date, t.AccountKey, t.RawDescription,
			t.Merchant, t.Category, t.Channel, t.Amount.StringFixed(2),
			string(t.Type), t.Institution,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting rows for %s: %w", t.ID, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return inserted, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }
