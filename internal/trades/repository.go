package trades

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema holds the DDL for the trades table, executed by scripts/seed.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS trades (
		trade_number BIGSERIAL PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Repository persists trade documents. The whole document lives in one JSONB
// column; saves replace it outright, which is exactly the commit semantics
// the editing workflow promises (no partial updates, last write wins).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new trade and assigns the next trade number from the
// database sequence.
func (r *Repository) Create(ctx context.Context, trade Trade) (Trade, error) {
	doc, err := json.Marshal(trade)
	if err != nil {
		return Trade{}, fmt.Errorf("trades: marshal document: %w", err)
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO trades (doc) VALUES ($1)
RETURNING trade_number, created_at, updated_at`, doc)
	if err := row.Scan(&trade.TradeNumber, &trade.CreatedAt, &trade.UpdatedAt); err != nil {
		return Trade{}, err
	}
	// The document must carry its own number; rewrite it now that one exists.
	doc, err = json.Marshal(trade)
	if err != nil {
		return Trade{}, fmt.Errorf("trades: marshal document: %w", err)
	}
	if _, err := r.pool.Exec(ctx, `UPDATE trades SET doc=$2 WHERE trade_number=$1`, trade.TradeNumber, doc); err != nil {
		return Trade{}, err
	}
	return trade, nil
}

// Get loads one trade by number.
func (r *Repository) Get(ctx context.Context, tradeNumber int64) (Trade, error) {
	var doc []byte
	var trade Trade
	err := r.pool.QueryRow(ctx, `SELECT doc, created_at, updated_at FROM trades WHERE trade_number=$1`, tradeNumber).
		Scan(&doc, &trade.CreatedAt, &trade.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Trade{}, ErrTradeNotFound
		}
		return Trade{}, err
	}
	if err := json.Unmarshal(doc, &trade); err != nil {
		return Trade{}, fmt.Errorf("trades: unmarshal document %d: %w", tradeNumber, err)
	}
	trade.TradeNumber = tradeNumber
	return trade, nil
}

// List returns all trades, newest first.
func (r *Repository) List(ctx context.Context) ([]Trade, error) {
	rows, err := r.pool.Query(ctx, `SELECT trade_number, doc, created_at, updated_at FROM trades ORDER BY trade_number DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trades []Trade
	for rows.Next() {
		var number int64
		var doc []byte
		var created, updated time.Time
		if err := rows.Scan(&number, &doc, &created, &updated); err != nil {
			return nil, err
		}
		var trade Trade
		if err := json.Unmarshal(doc, &trade); err != nil {
			return nil, fmt.Errorf("trades: unmarshal document %d: %w", number, err)
		}
		trade.TradeNumber = number
		trade.CreatedAt = created
		trade.UpdatedAt = updated
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

// Replace overwrites the stored document for an existing trade.
func (r *Repository) Replace(ctx context.Context, trade Trade) error {
	doc, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("trades: marshal document: %w", err)
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE trades SET doc=$2, updated_at=NOW() WHERE trade_number=$1`, trade.TradeNumber, doc)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// Delete removes a trade document.
func (r *Repository) Delete(ctx context.Context, tradeNumber int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM trades WHERE trade_number=$1`, tradeNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTradeNotFound
	}
	return nil
}
