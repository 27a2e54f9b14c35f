package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestRepositorySQLMatchesSchema(t *testing.T) {
	schema := strings.Join(Schema, "\n")

	columns := []string{
		"account_number",
		"account_name",
		"debit",
		"credit",
		"description",
		"entry_date",
		"eft_number",
		"source_id",
	}
	for _, col := range columns {
		require.Contains(t, schema, col, "schema must declare %s", col)
		require.Contains(t, insertEntrySQL, col, "insert must write %s", col)
		require.Contains(t, listEntriesSQL, col, "list must read %s", col)
	}
}

func TestMapInsertErrorDetectsDuplicatePosting(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "uq_ledger_entries_source_account",
		Detail:         "Key (source_id, account_number) already exists.",
	}
	require.ErrorIs(t, mapInsertError(pgErr), ErrDuplicatePosting)

	other := errors.New("connection reset")
	require.Equal(t, other, mapInsertError(other))
	require.NoError(t, mapInsertError(nil))
}
