package trust

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thushan99/homelife-backoffice/internal/eft"
	"github.com/thushan99/homelife-backoffice/internal/ledger"
)

type fakeLedger struct {
	pairs []ledger.Pair
	err   error
}

func (f *fakeLedger) PostPair(ctx context.Context, pair ledger.Pair) error {
	if f.err != nil {
		return f.err
	}
	f.pairs = append(f.pairs, pair)
	return nil
}

type fakeEFT struct {
	next int
	err  error
	last eft.Request
}

func (f *fakeEFT) Allocate(ctx context.Context, req eft.Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	f.last = req
	return "EFT-000001", nil
}

func newTestService(l *fakeLedger, e *fakeEFT) *Service {
	svc := NewService(l, e, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.WithNow(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) })
	return svc
}

func TestApplyDepositWeHoldPostsPairAndAllocatesEFT(t *testing.T) {
	l := &fakeLedger{}
	e := &fakeEFT{}
	svc := newTestService(l, e)

	result := svc.ApplyDeposit(context.Background(), 1001, Record{
		WeHold:       Yes,
		Received:     Yes,
		ReceivedFrom: "Buyer",
		Amount:       "50000",
		Reference:    "Agreement 7",
		Currency:     "cad",
	})

	require.Equal(t, "EFT-000001", result.EFTNumber)
	require.Equal(t, "EFT-000001", result.Record.EFTNumber)
	require.True(t, result.LedgerPostingsAttempted)
	require.Equal(t, "CAD", result.Record.Currency)
	require.NotEqual(t, result.Record.ID.String(), "00000000-0000-0000-0000-000000000000")

	require.Len(t, l.pairs, 1)
	pair := l.pairs[0]
	require.Equal(t, ledger.AccountCashTrust, pair.Debit.AccountNumber)
	require.Equal(t, ledger.AccountTrustLiability, pair.Credit.AccountNumber)
	require.Equal(t, 50000.0, pair.Debit.Debit)
	require.Equal(t, "Trade #: 1001, Received from: Buyer, Ref: Agreement 7", pair.Debit.Description)

	require.Equal(t, int64(1001), e.last.TradeNumber)
	require.Equal(t, 50000.0, e.last.Amount)
}

func TestApplyDepositThirdPartyHeldSkipsPostings(t *testing.T) {
	l := &fakeLedger{}
	e := &fakeEFT{}
	svc := newTestService(l, e)

	result := svc.ApplyDeposit(context.Background(), 1001, Record{
		WeHold:       No,
		HeldBy:       "Listing Brokerage",
		ReceivedFrom: "Buyer",
		Amount:       "50000",
	})

	require.False(t, result.LedgerPostingsAttempted)
	require.Empty(t, result.EFTNumber)
	require.Empty(t, l.pairs)
	require.Zero(t, e.next)
}

func TestApplyDepositZeroAmountSkipsPostings(t *testing.T) {
	l := &fakeLedger{}
	svc := newTestService(l, &fakeEFT{})

	result := svc.ApplyDeposit(context.Background(), 1001, Record{
		WeHold: Yes,
		Amount: "not a number",
	})

	require.False(t, result.LedgerPostingsAttempted)
	require.Empty(t, l.pairs)
}

func TestApplyDepositEFTFailureIsNonFatal(t *testing.T) {
	l := &fakeLedger{}
	e := &fakeEFT{err: errors.New("eft service down")}
	svc := newTestService(l, e)

	result := svc.ApplyDeposit(context.Background(), 1001, Record{
		WeHold:       Yes,
		ReceivedFrom: "Buyer",
		Amount:       "50000",
	})

	require.Empty(t, result.EFTNumber)
	require.Empty(t, result.Record.EFTNumber)
	require.True(t, result.LedgerPostingsAttempted)
	require.Len(t, l.pairs, 1, "ledger posting proceeds without an EFT number")
}

func TestApplyDepositLedgerFailureIsNonFatal(t *testing.T) {
	l := &fakeLedger{err: errors.New("ledger down")}
	svc := newTestService(l, &fakeEFT{})

	result := svc.ApplyDeposit(context.Background(), 1001, Record{
		WeHold:       Yes,
		ReceivedFrom: "Buyer",
		Amount:       "50000",
	})

	// Record creation is never blocked by posting failures.
	require.True(t, result.LedgerPostingsAttempted)
	require.Equal(t, "50000", result.Record.Amount)
}

func TestDeleteRecordPostsMirrorPair(t *testing.T) {
	l := &fakeLedger{}
	svc := newTestService(l, &fakeEFT{})

	result := svc.DeleteRecord(context.Background(), 1001, Record{
		WeHold:       Yes,
		ReceivedFrom: "Buyer",
		Amount:       "50000",
	})

	require.True(t, result.ReversalAttempted)
	require.NoError(t, result.ReversalErr)
	require.Len(t, l.pairs, 1)
	pair := l.pairs[0]
	require.Equal(t, ledger.AccountTrustLiability, pair.Debit.AccountNumber)
	require.Equal(t, ledger.AccountCashTrust, pair.Credit.AccountNumber)
	require.Contains(t, pair.Debit.Description, "Trust entry deleted")
}

func TestDeleteRecordReversalFailureIsSurfaced(t *testing.T) {
	l := &fakeLedger{err: errors.New("ledger down")}
	svc := newTestService(l, &fakeEFT{})

	result := svc.DeleteRecord(context.Background(), 1001, Record{
		WeHold: Yes,
		Amount: "50000",
	})

	require.True(t, result.ReversalAttempted)
	require.Error(t, result.ReversalErr)
}

func TestDeleteRecordThirdPartyHeldNoReversal(t *testing.T) {
	l := &fakeLedger{}
	svc := newTestService(l, &fakeEFT{})

	result := svc.DeleteRecord(context.Background(), 1001, Record{
		WeHold: No,
		Amount: "50000",
	})

	require.False(t, result.ReversalAttempted)
	require.Empty(t, l.pairs)
}

func TestTotalHeldAndAnyWeHold(t *testing.T) {
	records := []Record{
		{WeHold: Yes, Amount: "50000"},
		{WeHold: No, Amount: "10,000.50"},
		{WeHold: No, Amount: "garbage"},
	}
	require.Equal(t, 60000.50, TotalHeld(records))
	require.True(t, AnyWeHold(records))
	require.False(t, AnyWeHold(records[1:]))
}

func TestNormalizeCurrency(t *testing.T) {
	require.Equal(t, "CAD", NormalizeCurrency(""))
	require.Equal(t, "CAD", NormalizeCurrency("XYZ123"))
	require.Equal(t, "USD", NormalizeCurrency("usd"))
}
