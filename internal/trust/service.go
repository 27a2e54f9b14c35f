package trust

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/thushan99/homelife-backoffice/internal/eft"
	"github.com/thushan99/homelife-backoffice/internal/ledger"
	"github.com/thushan99/homelife-backoffice/internal/money"
)

// LedgerPort posts double-entry pairs for trust movement.
type LedgerPort interface {
	PostPair(ctx context.Context, pair ledger.Pair) error
}

// EFTPort allocates EFT numbers for deposits the brokerage holds.
type EFTPort interface {
	Allocate(ctx context.Context, req eft.Request) (string, error)
}

// Service drives the apply/delete lifecycle of trust records.
//
// Apply-time side effects (EFT allocation, ledger posting) are best-effort:
// failures are logged and the record is still added. Delete-time reversal
// failures are returned to the caller so a notice can be shown, while the
// deletion itself still proceeds; downstream reconciliation depends on being
// able to observe reversal failures.
type Service struct {
	ledger LedgerPort
	eft    EFTPort
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the trust service.
func NewService(ledgerPort LedgerPort, eftPort EFTPort, logger *slog.Logger) *Service {
	return &Service{ledger: ledgerPort, eft: eftPort, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ApplyResult reports what happened while applying a deposit.
type ApplyResult struct {
	Record                  Record `json:"record"`
	LedgerPostingsAttempted bool   `json:"ledgerPostingsAttempted"`
	EFTNumber               string `json:"eftNumber,omitempty"`
}

// DeleteResult reports what happened while deleting a record.
type DeleteResult struct {
	ReversalAttempted bool `json:"reversalAttempted"`
	// ReversalErr is non-nil when the mirror posting failed. The record is
	// removed regardless; callers surface this as a warning.
	ReversalErr error `json:"-"`
}

// ApplyDeposit finalises a draft deposit for the given trade. When the
// brokerage holds the funds it allocates an EFT number and posts the
// debit-cash / credit-liability pair; funds held by a third party produce no
// postings because they are not the brokerage's trust liability.
func (s *Service) ApplyDeposit(ctx context.Context, tradeNumber int64, fields Record) ApplyResult {
	record := fields
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	record.Currency = NormalizeCurrency(record.Currency)
	if record.DepositDate.IsZero() {
		record.DepositDate = s.now()
	}

	amount := money.Parse(record.Amount)
	result := ApplyResult{}

	if record.WeHold == Yes && amount > 0 {
		number, err := s.eft.Allocate(ctx, eft.Request{
			TradeNumber:  tradeNumber,
			Amount:       amount,
			ReceivedFrom: record.ReceivedFrom,
			Reference:    record.Reference,
			Description:  DepositDescription(tradeNumber, record.ReceivedFrom, record.Reference),
		})
		if err != nil {
			s.logger.Warn("EFT allocation failed, continuing without number",
				slog.Any("error", err),
				slog.Int64("trade_number", tradeNumber),
				slog.Float64("amount", amount))
		} else {
			record.EFTNumber = number
			result.EFTNumber = number
		}

		result.LedgerPostingsAttempted = true
		pair := ledger.TrustDepositPair(amount,
			DepositDescription(tradeNumber, record.ReceivedFrom, record.Reference),
			record.DepositDate, record.EFTNumber)
		if err := s.ledger.PostPair(ctx, pair); err != nil {
			s.logger.Error("trust deposit ledger posting failed",
				slog.Any("error", err),
				slog.Int64("trade_number", tradeNumber),
				slog.Float64("amount", amount))
		}
	}

	result.Record = record
	return result
}

// DeleteRecord reverses the ledger effect of a previously applied deposit.
// Callers are expected to have confirmed the deletion with the user first.
func (s *Service) DeleteRecord(ctx context.Context, tradeNumber int64, record Record) DeleteResult {
	amount := money.Parse(record.Amount)
	if record.WeHold != Yes || amount <= 0 {
		return DeleteResult{}
	}

	pair := ledger.TrustReversalPair(amount,
		DeletionDescription(tradeNumber, record.ReceivedFrom), s.now())
	result := DeleteResult{ReversalAttempted: true}
	if err := s.ledger.PostPair(ctx, pair); err != nil {
		s.logger.Error("trust reversal posting failed",
			slog.Any("error", err),
			slog.Int64("trade_number", tradeNumber),
			slog.Float64("amount", amount))
		result.ReversalErr = fmt.Errorf("trust: reversal posting failed: %w", err)
	}
	return result
}

// TotalHeld sums the parsed amounts across a trade's trust records.
func TotalHeld(records []Record) float64 {
	var total float64
	for _, r := range records {
		total += money.Parse(r.Amount)
	}
	return money.Round2(total)
}

// HeldByBrokerage sums the parsed amounts of the records the brokerage holds.
// Only those records produce ledger postings, so this is the figure the trust
// accounts are expected to carry.
func HeldByBrokerage(records []Record) float64 {
	var total float64
	for _, r := range records {
		if r.WeHold == Yes {
			total += money.Parse(r.Amount)
		}
	}
	return money.Round2(total)
}

// AnyWeHold reports whether at least one record is held by the brokerage.
func AnyWeHold(records []Record) bool {
	for _, r := range records {
		if r.WeHold == Yes {
			return true
		}
	}
	return false
}
