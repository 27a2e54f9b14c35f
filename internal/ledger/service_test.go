package ledger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryLedgerRepo struct {
	entries []Entry
	nextID  int64
}

func (r *memoryLedgerRepo) InsertPair(ctx context.Context, pair Pair) error {
	for _, e := range []Entry{pair.Debit, pair.Credit} {
		if _, err := r.InsertEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryLedgerRepo) InsertEntry(ctx context.Context, entry Entry) (Entry, error) {
	r.nextID++
	entry.ID = r.nextID
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *memoryLedgerRepo) ListByAccount(ctx context.Context, accountNumber string) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if accountNumber == "" || e.AccountNumber == accountNumber {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryLedgerRepo) AccountNet(ctx context.Context, accountNumber, tradeRef string) (float64, error) {
	var net float64
	for _, e := range r.entries {
		if e.AccountNumber == accountNumber && strings.Contains(e.Description, tradeRef) {
			net += e.Debit - e.Credit
		}
	}
	return net, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTrustDepositPairBalances(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pair := TrustDepositPair(50000, "Trade #: 1001, Received from: Buyer", date, "EFT-000012")

	require.NoError(t, pair.Validate())
	require.Equal(t, AccountCashTrust, pair.Debit.AccountNumber)
	require.Equal(t, AccountCashTrustName, pair.Debit.AccountName)
	require.Equal(t, AccountTrustLiability, pair.Credit.AccountNumber)
	require.Equal(t, 50000.0, pair.Debit.Debit)
	require.Equal(t, 50000.0, pair.Credit.Credit)
	require.Equal(t, pair.Debit.SourceID, pair.Credit.SourceID)
	require.Equal(t, "EFT-000012", pair.Credit.EFTNumber)
}

func TestTrustReversalPairMirrorsDeposit(t *testing.T) {
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pair := TrustReversalPair(50000, "Trade #: 1001, Trust entry deleted", date)

	require.NoError(t, pair.Validate())
	require.Equal(t, AccountTrustLiability, pair.Debit.AccountNumber)
	require.Equal(t, AccountCashTrust, pair.Credit.AccountNumber)
}

func TestPairValidateRejectsUnbalanced(t *testing.T) {
	pair := TrustDepositPair(100, "x", time.Now(), "")
	pair.Credit.Credit = 99
	require.ErrorIs(t, pair.Validate(), ErrUnbalancedPair)

	zero := TrustDepositPair(0, "x", time.Now(), "")
	require.ErrorIs(t, zero.Validate(), ErrNonPositiveAmount)
}

func TestApplyThenDeleteNetsToZero(t *testing.T) {
	ctx := context.Background()
	repo := &memoryLedgerRepo{}
	svc := NewService(repo, testLogger())

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	desc := "Trade #: 1001, Received from: Buyer"

	require.NoError(t, svc.PostPair(ctx, TrustDepositPair(50000, desc, date, "")))
	require.NoError(t, svc.PostPair(ctx, TrustReversalPair(50000, "Trade #: 1001, Trust entry deleted", date)))

	net, err := svc.TrustNetForTrade(ctx, 1001)
	require.NoError(t, err)
	require.Equal(t, 0.0, net.CashTrust)
	require.Equal(t, 0.0, net.TrustLiability)
	require.NoError(t, svc.CheckTrustIntegrity(ctx, 1001, 0))
}

func TestCheckTrustIntegrityMatchesDocumentTotal(t *testing.T) {
	ctx := context.Background()
	repo := &memoryLedgerRepo{}
	svc := NewService(repo, testLogger())

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.PostPair(ctx, TrustDepositPair(50000, "Trade #: 1001, Received from: Buyer", date, "")))

	require.NoError(t, svc.CheckTrustIntegrity(ctx, 1001, 50000))
	require.Error(t, svc.CheckTrustIntegrity(ctx, 1001, 60000))
}

func TestCheckTrustIntegrityFlagsMissingPostings(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryLedgerRepo{}, testLogger())

	// The document says the brokerage holds a deposit but nothing was ever
	// posted: both nets are zero and cancel, only the document comparison
	// can flag the gap.
	err := svc.CheckTrustIntegrity(ctx, 1001, 12500)
	require.Error(t, err)
	require.Contains(t, err.Error(), "diverge")
}

func TestCheckTrustIntegrityDetectsImbalance(t *testing.T) {
	ctx := context.Background()
	repo := &memoryLedgerRepo{}
	svc := NewService(repo, testLogger())

	// A lone debit with no matching credit leaves the accounts out of balance.
	_, err := svc.PostEntry(ctx, Entry{
		AccountNumber: AccountCashTrust,
		AccountName:   AccountCashTrustName,
		Debit:         250,
		Description:   "Trade #: 2002, Received from: Buyer",
		Date:          time.Now(),
	})
	require.NoError(t, err)

	require.Error(t, svc.CheckTrustIntegrity(ctx, 2002, 250))
}

func TestPostEntryValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryLedgerRepo{}, testLogger())

	_, err := svc.PostEntry(ctx, Entry{AccountNumber: "10002", Debit: 10, Credit: 10})
	require.ErrorIs(t, err, ErrInvalidEntry)

	_, err = svc.PostEntry(ctx, Entry{Debit: 10})
	require.ErrorIs(t, err, ErrInvalidEntry)

	_, err = svc.PostEntry(ctx, Entry{AccountNumber: "10002", Debit: -1})
	require.ErrorIs(t, err, ErrInvalidEntry)
}
