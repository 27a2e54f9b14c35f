package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thushan99/homelife-backoffice/internal/platform/db"
)

// Schema holds the DDL for the ledger tables, executed by scripts/seed. The
// unique constraint makes pair posting idempotent: re-posting the same leg
// for a source is rejected rather than duplicated.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id BIGSERIAL PRIMARY KEY,
		account_number TEXT NOT NULL,
		account_name TEXT NOT NULL,
		debit NUMERIC(14,2) NOT NULL DEFAULT 0,
		credit NUMERIC(14,2) NOT NULL DEFAULT 0,
		description TEXT NOT NULL DEFAULT '',
		entry_date DATE NOT NULL,
		eft_number TEXT NOT NULL DEFAULT '',
		source_id UUID,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT uq_ledger_entries_source_account UNIQUE (source_id, account_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_account ON ledger_entries (account_number)`,
}

const insertEntrySQL = `INSERT INTO ledger_entries (account_number, account_name, debit, credit, description, entry_date, eft_number, source_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

const listEntriesSQL = `SELECT id, account_number, account_name, debit, credit, description, entry_date, eft_number, source_id, created_at
FROM ledger_entries WHERE ($1 = '' OR account_number = $1) ORDER BY id DESC`

// Repository persists ledger entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertPair writes both legs of a posting inside one transaction.
func (r *Repository) InsertPair(ctx context.Context, pair Pair) error {
	if r == nil || r.pool == nil {
		return errors.New("ledger repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, entry := range []Entry{pair.Debit, pair.Credit} {
			if _, err := tx.Exec(ctx, insertEntrySQL,
				entry.AccountNumber, entry.AccountName, entry.Debit, entry.Credit, entry.Description, entry.Date, entry.EFTNumber, entry.SourceID); err != nil {
				return mapInsertError(err)
			}
		}
		return nil
	})
}

// InsertEntry writes a single ledger row and returns it with its assigned ID.
func (r *Repository) InsertEntry(ctx context.Context, entry Entry) (Entry, error) {
	row := r.pool.QueryRow(ctx, insertEntrySQL+` RETURNING id, created_at`,
		entry.AccountNumber, entry.AccountName, entry.Debit, entry.Credit, entry.Description, entry.Date, entry.EFTNumber, entry.SourceID)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return Entry{}, mapInsertError(err)
	}
	return entry, nil
}

// ListByAccount returns entries for one account, newest first. An empty
// account number returns everything.
func (r *Repository) ListByAccount(ctx context.Context, accountNumber string) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, listEntriesSQL, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AccountNumber, &e.AccountName, &e.Debit, &e.Credit, &e.Description, &e.Date, &e.EFTNumber, &e.SourceID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AccountNet sums debit minus credit for one account across entries whose
// description mentions the supplied trade reference.
func (r *Repository) AccountNet(ctx context.Context, accountNumber, tradeRef string) (float64, error) {
	var net float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(debit - credit), 0) FROM ledger_entries
WHERE account_number = $1 AND description LIKE '%' || $2 || '%'`, accountNumber, tradeRef).Scan(&net)
	if err != nil {
		return 0, err
	}
	return net, nil
}

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_ledger_entries_source_account" {
		return fmt.Errorf("%w: %s", ErrDuplicatePosting, pgErr.Detail)
	}
	return err
}
