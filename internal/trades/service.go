package trades

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/thushan99/homelife-backoffice/internal/trust"
)

// RepositoryPort defines data access for trade documents.
type RepositoryPort interface {
	Create(ctx context.Context, trade Trade) (Trade, error)
	Get(ctx context.Context, tradeNumber int64) (Trade, error)
	List(ctx context.Context) ([]Trade, error)
	Replace(ctx context.Context, trade Trade) error
	Delete(ctx context.Context, tradeNumber int64) error
}

// TrustPort applies and deletes trust deposits with their ledger effects.
type TrustPort interface {
	ApplyDeposit(ctx context.Context, tradeNumber int64, fields trust.Record) trust.ApplyResult
	DeleteRecord(ctx context.Context, tradeNumber int64, record trust.Record) trust.DeleteResult
}

// Service orchestrates the trade editing workflow.
type Service struct {
	repo     RepositoryPort
	trust    TrustPort
	drafts   *DraftStore
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs the trades service.
func NewService(repo RepositoryPort, trustPort TrustPort, drafts *DraftStore) *Service {
	return &Service{
		repo:     repo,
		trust:    trustPort,
		drafts:   drafts,
		validate: validator.New(),
		now:      time.Now,
	}
}

// CreateTrade opens a new trade from its key info. Derived figures are
// computed before the first persist so the document is complete from birth.
func (s *Service) CreateTrade(ctx context.Context, info KeyInfo) (Trade, error) {
	// Creation is the save boundary for key info: a trade cannot exist
	// without an address and classification, even though later edits may
	// hold incomplete values in a draft.
	if err := s.validate.Struct(info); err != nil {
		return Trade{}, fmt.Errorf("trades: invalid key info: %w", err)
	}
	trade := Trade{KeyInfo: info}
	trade.Rederive()
	return s.repo.Create(ctx, trade)
}

// GetTrade loads one trade.
func (s *Service) GetTrade(ctx context.Context, tradeNumber int64) (Trade, error) {
	return s.repo.Get(ctx, tradeNumber)
}

// ListTrades returns every trade.
func (s *Service) ListTrades(ctx context.Context) ([]Trade, error) {
	return s.repo.List(ctx)
}

// SaveTrade validates and replaces the whole document. There is no partial
// commit: either the full trade persists or the previous version stands.
func (s *Service) SaveTrade(ctx context.Context, trade Trade) (Trade, error) {
	if err := s.validate.Struct(trade.KeyInfo); err != nil {
		return Trade{}, fmt.Errorf("trades: invalid key info: %w", err)
	}
	trade.Rederive()
	trade.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, trade); err != nil {
		return Trade{}, err
	}
	if s.drafts != nil {
		s.drafts.Drop(trade.TradeNumber)
	}
	return trade, nil
}

// DeleteTrade removes a trade and any active draft.
func (s *Service) DeleteTrade(ctx context.Context, tradeNumber int64) error {
	if err := s.repo.Delete(ctx, tradeNumber); err != nil {
		return err
	}
	if s.drafts != nil {
		s.drafts.Drop(tradeNumber)
	}
	return nil
}

// ApplyTrustDeposit runs the deposit apply flow for a trade and persists the
// updated document. When the incoming record carries the ID of an existing
// one it replaces that record (edit): the original posting is reversed before
// the edited record posts fresh, so the ledger follows the document through
// the edit instead of accumulating both amounts.
func (s *Service) ApplyTrustDeposit(ctx context.Context, tradeNumber int64, fields trust.Record) (Trade, trust.ApplyResult, error) {
	trade, err := s.repo.Get(ctx, tradeNumber)
	if err != nil {
		return Trade{}, trust.ApplyResult{}, err
	}

	replacedIdx := -1
	if fields.ID != uuid.Nil {
		for i, existing := range trade.TrustRecords {
			if existing.ID == fields.ID {
				// Apply-time side effects never block the form, so the
				// reversal outcome is logged by the trust service and the
				// edit proceeds either way.
				s.trust.DeleteRecord(ctx, tradeNumber, existing)
				replacedIdx = i
				break
			}
		}
	}

	result := s.trust.ApplyDeposit(ctx, tradeNumber, fields)

	if replacedIdx >= 0 {
		trade.TrustRecords[replacedIdx] = result.Record
	} else {
		trade.TrustRecords = append(trade.TrustRecords, result.Record)
	}

	trade.Rederive()
	trade.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, trade); err != nil {
		return Trade{}, trust.ApplyResult{}, err
	}
	return trade, result, nil
}

// DeleteTrustRecord removes a trust record, posting the ledger reversal
// first. A reversal failure does not stop the removal; it is handed back so
// the caller can show a notice.
func (s *Service) DeleteTrustRecord(ctx context.Context, tradeNumber int64, recordID uuid.UUID) (Trade, trust.DeleteResult, error) {
	trade, err := s.repo.Get(ctx, tradeNumber)
	if err != nil {
		return Trade{}, trust.DeleteResult{}, err
	}

	idx := -1
	for i, r := range trade.TrustRecords {
		if r.ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Trade{}, trust.DeleteResult{}, ErrTrustRecordNotFound
	}

	result := s.trust.DeleteRecord(ctx, tradeNumber, trade.TrustRecords[idx])

	trade.TrustRecords = append(trade.TrustRecords[:idx], trade.TrustRecords[idx+1:]...)
	trade.Rederive()
	trade.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, trade); err != nil {
		return Trade{}, trust.DeleteResult{}, err
	}
	return trade, result, nil
}

// EditDraft returns the active draft for a trade, creating one from the
// persisted document when none exists.
func (s *Service) EditDraft(ctx context.Context, tradeNumber int64) (*Draft, error) {
	if d := s.drafts.Get(tradeNumber); d != nil {
		return d, nil
	}
	trade, err := s.repo.Get(ctx, tradeNumber)
	if err != nil {
		return nil, err
	}
	d := NewDraft(trade)
	s.drafts.Put(tradeNumber, d)
	return d, nil
}
