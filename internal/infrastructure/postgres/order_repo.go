package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/order-ingest/internal/domain/order"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository is the document-store adapter. One row per order
// identifier; the identifier is both the primary key and the partition key,
// and a conflicting write replaces the prior document entirely.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Upsert writes the canonical record, last-writer-wins. The creation
// timestamp is assigned by the store, not the caller.
func (r *OrderRepository) Upsert(ctx context.Context, rec *order.Record) error {
	const sql = `
		INSERT INTO orders (id, order_id, payload, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET order_id = EXCLUDED.order_id,
		    payload = EXCLUDED.payload,
		    created_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, sql, rec.ID, rec.OrderID, rec.Payload); err != nil {
		return fmt.Errorf("upsert order: %w", err)
	}

	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Record, error) {
	const sql = `
		SELECT id, order_id, payload, created_at
		FROM orders
		WHERE id = $1
	`

	rec := &order.Record{}
	err := r.pool.QueryRow(ctx, sql, id).Scan(&rec.ID, &rec.OrderID, &rec.Payload, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	return rec, nil
}

// EnsureSchema creates the orders table if it does not exist yet. Safe to run
// from several instances at once.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const sql = `
		CREATE TABLE IF NOT EXISTS orders (
			id         text PRIMARY KEY,
			order_id   text NOT NULL,
			payload    jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT NOW()
		)
	`

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	return nil
}
