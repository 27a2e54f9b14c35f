package trades

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/thushan99/homelife-backoffice/internal/commission"
	"github.com/thushan99/homelife-backoffice/internal/trust"
)

type memoryTradeRepo struct {
	trades map[int64]Trade
	nextID int64
}

func newMemoryTradeRepo() *memoryTradeRepo {
	return &memoryTradeRepo{trades: make(map[int64]Trade)}
}

func (r *memoryTradeRepo) Create(ctx context.Context, trade Trade) (Trade, error) {
	r.nextID++
	trade.TradeNumber = r.nextID
	trade.CreatedAt = time.Now()
	trade.UpdatedAt = trade.CreatedAt
	r.trades[trade.TradeNumber] = trade
	return trade, nil
}

func (r *memoryTradeRepo) Get(ctx context.Context, tradeNumber int64) (Trade, error) {
	trade, ok := r.trades[tradeNumber]
	if !ok {
		return Trade{}, ErrTradeNotFound
	}
	return trade, nil
}

func (r *memoryTradeRepo) List(ctx context.Context) ([]Trade, error) {
	var out []Trade
	for _, t := range r.trades {
		out = append(out, t)
	}
	return out, nil
}

func (r *memoryTradeRepo) Replace(ctx context.Context, trade Trade) error {
	if _, ok := r.trades[trade.TradeNumber]; !ok {
		return ErrTradeNotFound
	}
	r.trades[trade.TradeNumber] = trade
	return nil
}

func (r *memoryTradeRepo) Delete(ctx context.Context, tradeNumber int64) error {
	if _, ok := r.trades[tradeNumber]; !ok {
		return ErrTradeNotFound
	}
	delete(r.trades, tradeNumber)
	return nil
}

type fakeTrustPort struct {
	applyCalls  int
	deleteCalls int
	reversalErr error
}

func (f *fakeTrustPort) ApplyDeposit(ctx context.Context, tradeNumber int64, fields trust.Record) trust.ApplyResult {
	f.applyCalls++
	record := fields
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.EFTNumber = "EFT-000001"
	return trust.ApplyResult{Record: record, LedgerPostingsAttempted: record.WeHold == trust.Yes, EFTNumber: record.EFTNumber}
}

func (f *fakeTrustPort) DeleteRecord(ctx context.Context, tradeNumber int64, record trust.Record) trust.DeleteResult {
	f.deleteCalls++
	return trust.DeleteResult{ReversalAttempted: record.WeHold == trust.Yes, ReversalErr: f.reversalErr}
}

func newTestService() (*Service, *memoryTradeRepo, *fakeTrustPort) {
	repo := newMemoryTradeRepo()
	port := &fakeTrustPort{}
	svc := NewService(repo, port, NewDraftStore(time.Minute))
	return svc, repo, port
}

func validKeyInfo() KeyInfo {
	return KeyInfo{
		Address:        "123 Main St",
		DealType:       "Residential Resale",
		Classification: "LISTING SIDE",
		SellPrice:      "500000",
		ListCommission: "2.5",
		SellCommission: "2.5",
	}
}

func TestCreateTradeDerivesCommission(t *testing.T) {
	svc, _, _ := newTestService()

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)
	require.Equal(t, int64(1), trade.TradeNumber)

	require.Len(t, trade.Commission.CommissionIncomeRows, 1)
	income := trade.Commission.CommissionIncomeRows[0]
	require.Equal(t, 12500.00, income.ListingAmount)
	require.Equal(t, 27750.00, income.Total)
	// No deposit held yet, so the full commission is receivable.
	require.Equal(t, "27750.00", trade.AR)
}

func TestCreateTradeRequiresClassification(t *testing.T) {
	svc, _, _ := newTestService()

	info := validKeyInfo()
	info.Classification = "BOTH SIDES"
	_, err := svc.CreateTrade(context.Background(), info)
	require.Error(t, err)

	info.Classification = ""
	_, err = svc.CreateTrade(context.Background(), info)
	require.Error(t, err)
}

func TestCreateTradeToleratesUnparsableNumbers(t *testing.T) {
	svc, _, _ := newTestService()

	info := validKeyInfo()
	info.SellPrice = "TBD"
	info.ListCommission = ""

	trade, err := svc.CreateTrade(context.Background(), info)
	require.NoError(t, err, "numeric garbage degrades to zero, it never blocks")
	require.Equal(t, 0.0, trade.CommissionTotal())
	require.Equal(t, "0.00", trade.AR)
}

func TestSaveTradeReplacesWholeDocument(t *testing.T) {
	svc, repo, _ := newTestService()

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)

	trade.KeyInfo.SellPrice = "600000"
	trade.People = []Person{{Role: "Seller", FirstName: "Pat", LastName: "Lee"}}
	saved, err := svc.SaveTrade(context.Background(), trade)
	require.NoError(t, err)

	require.Equal(t, 15000.00, saved.Commission.CommissionIncomeRows[0].ListingAmount)
	stored := repo.trades[trade.TradeNumber]
	require.Equal(t, "600000", stored.KeyInfo.SellPrice)
	require.Len(t, stored.People, 1)
}

func TestSaveTradeUnknownNumber(t *testing.T) {
	svc, _, _ := newTestService()

	trade := Trade{TradeNumber: 99, KeyInfo: validKeyInfo()}
	_, err := svc.SaveTrade(context.Background(), trade)
	require.ErrorIs(t, err, ErrTradeNotFound)
}

func TestApplyTrustDepositAppendsAndRecomputesAR(t *testing.T) {
	svc, _, port := newTestService()

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)

	updated, result, err := svc.ApplyTrustDeposit(context.Background(), trade.TradeNumber, trust.Record{
		WeHold:       trust.Yes,
		ReceivedFrom: "Buyer",
		Amount:       "50000",
	})
	require.NoError(t, err)
	require.Equal(t, 1, port.applyCalls)
	require.True(t, result.LedgerPostingsAttempted)
	require.Len(t, updated.TrustRecords, 1)

	// LISTING SIDE with a held deposit: AR = trust held - commission total.
	require.Equal(t, "22250.00", updated.AR)
}

func TestApplyTrustDepositReplacesEditedRecord(t *testing.T) {
	svc, _, port := newTestService()

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)

	first, _, err := svc.ApplyTrustDeposit(context.Background(), trade.TradeNumber, trust.Record{
		WeHold: trust.Yes,
		Amount: "50000",
	})
	require.NoError(t, err)
	require.Zero(t, port.deleteCalls)
	existing := first.TrustRecords[0]

	existing.Amount = "60000"
	second, _, err := svc.ApplyTrustDeposit(context.Background(), trade.TradeNumber, existing)
	require.NoError(t, err)
	require.Len(t, second.TrustRecords, 1, "re-applying an edited record replaces it")
	require.Equal(t, "60000", second.TrustRecords[0].Amount)
	require.Equal(t, "32250.00", second.AR)

	// Editing reverses the original posting before reposting, so the ledger
	// carries 60000, not 110000.
	require.Equal(t, 1, port.deleteCalls)
	require.Equal(t, 2, port.applyCalls)
}

func TestDeleteTrustRecordRemovesAndRecomputes(t *testing.T) {
	svc, _, port := newTestService()

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)

	updated, _, err := svc.ApplyTrustDeposit(context.Background(), trade.TradeNumber, trust.Record{
		WeHold: trust.Yes,
		Amount: "50000",
	})
	require.NoError(t, err)

	final, result, err := svc.DeleteTrustRecord(context.Background(), trade.TradeNumber, updated.TrustRecords[0].ID)
	require.NoError(t, err)
	require.Equal(t, 1, port.deleteCalls)
	require.True(t, result.ReversalAttempted)
	require.Empty(t, final.TrustRecords)
	require.Equal(t, "27750.00", final.AR)
}

func TestDeleteTrustRecordProceedsDespiteReversalFailure(t *testing.T) {
	svc, _, port := newTestService()
	port.reversalErr = errors.New("ledger down")

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)
	updated, _, err := svc.ApplyTrustDeposit(context.Background(), trade.TradeNumber, trust.Record{
		WeHold: trust.Yes,
		Amount: "50000",
	})
	require.NoError(t, err)

	final, result, err := svc.DeleteTrustRecord(context.Background(), trade.TradeNumber, updated.TrustRecords[0].ID)
	require.NoError(t, err, "reversal failure is a warning, not a blocker")
	require.Error(t, result.ReversalErr)
	require.Empty(t, final.TrustRecords)
}

func TestDeleteTrustRecordNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)

	_, _, err = svc.DeleteTrustRecord(context.Background(), trade.TradeNumber, uuid.New())
	require.ErrorIs(t, err, ErrTrustRecordNotFound)
}

func TestDraftSettersRederive(t *testing.T) {
	svc, _, _ := newTestService()

	trade, err := svc.CreateTrade(context.Background(), validKeyInfo())
	require.NoError(t, err)

	draft, err := svc.EditDraft(context.Background(), trade.TradeNumber)
	require.NoError(t, err)

	info := draft.Trade.KeyInfo
	info.SellPrice = "800000"
	draft.SetKeyInfo(info)
	require.Equal(t, 20000.00, draft.Trade.Commission.CommissionIncomeRows[0].ListingAmount)

	draft.SetTrustRecords([]trust.Record{{ID: uuid.New(), WeHold: trust.Yes, Amount: "100000"}})
	require.Equal(t, "54800.00", draft.Trade.AR)

	// Editing again while the draft is live returns the same draft.
	again, err := svc.EditDraft(context.Background(), trade.TradeNumber)
	require.NoError(t, err)
	require.Equal(t, draft, again)
}

func TestDraftBrokerRowFollowsSellingAmount(t *testing.T) {
	draft := NewDraft(Trade{KeyInfo: validKeyInfo()})

	draft.SetOutsideBrokerRow(commission.OutsideBrokerRow{
		AgentName: "J. Doe",
		Brokerage: "Acme Realty",
		// Caller-supplied amounts are ignored by the sync rule.
		SellingAmount: 1,
		Tax:           2,
		Total:         3,
	})

	row := draft.Trade.Commission.OutsideBrokersRows[0]
	require.Equal(t, "J. Doe", row.AgentName)
	require.Equal(t, 12500.00, row.SellingAmount)
	require.Equal(t, 1625.00, row.Tax)
	require.Equal(t, 14125.00, row.Total)
}
