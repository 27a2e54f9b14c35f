package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/thushan99/homelife-backoffice/internal/money"
)

// RepositoryPort defines data access used by the service.
type RepositoryPort interface {
	InsertPair(ctx context.Context, pair Pair) error
	InsertEntry(ctx context.Context, entry Entry) (Entry, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]Entry, error)
	AccountNet(ctx context.Context, accountNumber, tradeRef string) (float64, error)
}

// Service validates and records ledger postings.
type Service struct {
	repo   RepositoryPort
	logger *slog.Logger
}

// NewService constructs the ledger service.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// PostPair validates a double-entry pair and records both legs.
func (s *Service) PostPair(ctx context.Context, pair Pair) error {
	if err := pair.Validate(); err != nil {
		return err
	}
	if err := s.repo.InsertPair(ctx, pair); err != nil {
		return fmt.Errorf("ledger: insert pair: %w", err)
	}
	s.logger.Info("ledger pair posted",
		slog.String("debit_account", pair.Debit.AccountNumber),
		slog.String("credit_account", pair.Credit.AccountNumber),
		slog.Float64("amount", pair.Debit.Debit))
	return nil
}

// PostEntry records a single ledger row. This is the raw contract exposed to
// external collaborators; double-entry discipline is the caller's concern.
func (s *Service) PostEntry(ctx context.Context, entry Entry) (Entry, error) {
	if entry.Debit < 0 || entry.Credit < 0 {
		return Entry{}, fmt.Errorf("%w: negative amount", ErrInvalidEntry)
	}
	if entry.Debit > 0 && entry.Credit > 0 {
		return Entry{}, fmt.Errorf("%w: entry cannot carry both debit and credit", ErrInvalidEntry)
	}
	if entry.AccountNumber == "" {
		return Entry{}, fmt.Errorf("%w: account number required", ErrInvalidEntry)
	}
	if entry.SourceID == uuid.Nil {
		entry.SourceID = uuid.New()
	}
	inserted, err := s.repo.InsertEntry(ctx, entry)
	if err != nil {
		return Entry{}, fmt.Errorf("ledger: insert entry: %w", err)
	}
	return inserted, nil
}

// ListEntries returns entries filtered by account number.
func (s *Service) ListEntries(ctx context.Context, accountNumber string) ([]Entry, error) {
	return s.repo.ListByAccount(ctx, accountNumber)
}

// TrustNet reports the net movement on both trust accounts for one trade.
type TrustNet struct {
	CashTrust      float64 `json:"cashTrust"`
	TrustLiability float64 `json:"trustLiability"`
}

// TrustNetForTrade sums movement on the two trust accounts for a trade.
func (s *Service) TrustNetForTrade(ctx context.Context, tradeNumber int64) (TrustNet, error) {
	ref := fmt.Sprintf("Trade #: %d,", tradeNumber)
	cash, err := s.repo.AccountNet(ctx, AccountCashTrust, ref)
	if err != nil {
		return TrustNet{}, err
	}
	liability, err := s.repo.AccountNet(ctx, AccountTrustLiability, ref)
	if err != nil {
		return TrustNet{}, err
	}
	return TrustNet{CashTrust: money.Round2(cash), TrustLiability: money.Round2(liability)}, nil
}

// CheckTrustIntegrity verifies a trade's trust postings against both sides of
// the ledger and against the trade document. The two account nets must cancel
// (every deposit debits cash and credits the liability for the same amount),
// and the cash net must equal expectedHeld, the amount the document says the
// brokerage is holding. A deposit whose posting was swallowed at apply time
// leaves both nets short, which only the document comparison can see.
func (s *Service) CheckTrustIntegrity(ctx context.Context, tradeNumber int64, expectedHeld float64) error {
	net, err := s.TrustNetForTrade(ctx, tradeNumber)
	if err != nil {
		return err
	}
	if money.Format(net.CashTrust) != money.Format(-net.TrustLiability) {
		return fmt.Errorf("ledger: trust accounts out of balance for trade %d: cash %s liability %s",
			tradeNumber, money.Format(net.CashTrust), money.Format(net.TrustLiability))
	}
	if money.Format(net.CashTrust) != money.Format(expectedHeld) {
		return fmt.Errorf("ledger: trust postings diverge from trade %d document: ledger holds %s, document says %s",
			tradeNumber, money.Format(net.CashTrust), money.Format(expectedHeld))
	}
	return nil
}
