package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricewatch/internal/history"
	"pricewatch/internal/models"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS price_history (
    product_id  text             NOT NULL,
    seq         integer          NOT NULL,
    url         text             NOT NULL,
    name        text             NOT NULL,
    price       double precision NOT NULL,
    currency    text             NOT NULL,
    recorded_at timestamptz      NOT NULL,
    PRIMARY KEY (product_id, seq)
);`

// PostgresStore persists the history snapshot in a Postgres table. The seq
// column preserves insertion order independently of recorded_at, since
// duplicate and out-of-order timestamps are legal.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the history table exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Load reads the full snapshot, per-product sequences in insertion order.
func (p *PostgresStore) Load(ctx context.Context) (history.Snapshot, error) {
	rows, err := p.pool.Query(ctx, `
SELECT product_id, url, name, price, currency, recorded_at
FROM price_history
ORDER BY product_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	snap := history.Snapshot{}
	for rows.Next() {
		var rec models.PriceRecord
		var price float64
		if err := rows.Scan(&rec.ProductID, &rec.URL, &rec.Name, &price, &rec.Currency, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Price = &price
		snap[rec.ProductID] = append(snap[rec.ProductID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}
	return snap, nil
}

// Save replaces the stored snapshot in a single transaction.
func (p *PostgresStore) Save(ctx context.Context, snap history.Snapshot) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM price_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	batch := &pgx.Batch{}
	for id, recs := range snap {
		for seq, rec := range recs {
			if rec.Price == nil {
				continue
			}
			batch.Queue(`
INSERT INTO price_history (product_id, seq, url, name, price, currency, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				id, seq, rec.URL, rec.Name, *rec.Price, rec.Currency, rec.Timestamp)
		}
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert history rows: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
