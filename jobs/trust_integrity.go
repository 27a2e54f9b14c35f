package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/thushan99/homelife-backoffice/internal/jobs"
	"github.com/thushan99/homelife-backoffice/internal/ledger"
	"github.com/thushan99/homelife-backoffice/internal/trades"
	"github.com/thushan99/homelife-backoffice/internal/trust"
)

// TradeSource supplies trade documents for the sweep.
type TradeSource interface {
	Get(ctx context.Context, tradeNumber int64) (trades.Trade, error)
	List(ctx context.Context) ([]trades.Trade, error)
}

// IntegrityChecker verifies the trust accounts for one trade against the
// amount its document says the brokerage holds.
type IntegrityChecker interface {
	CheckTrustIntegrity(ctx context.Context, tradeNumber int64, expectedHeld float64) error
}

// TrustIntegrityJob cross-checks the trust ledger against trade documents.
// Apply-time postings are best-effort, so a failed posting leaves the ledger
// behind the document; this sweep is how those gaps get noticed.
type TrustIntegrityJob struct {
	source  TradeSource
	checker IntegrityChecker
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewTrustIntegrityJob constructs the job.
func NewTrustIntegrityJob(source TradeSource, checker IntegrityChecker, logger *slog.Logger, metrics *jobmetrics.Metrics) *TrustIntegrityJob {
	return &TrustIntegrityJob{source: source, checker: checker, logger: logger, metrics: metrics}
}

// Handle processes TaskTrustIntegrity tasks.
func (j *TrustIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload TrustIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.metrics.Track(TaskTrustIntegrity)

	if payload.TradeNumber > 0 {
		trade, err := j.source.Get(ctx, payload.TradeNumber)
		if err != nil {
			return tracker.End(err)
		}
		return tracker.End(j.check(ctx, trade))
	}

	all, err := j.source.List(ctx)
	if err != nil {
		return tracker.End(err)
	}
	checked := 0
	for _, trade := range all {
		if !trust.AnyWeHold(trade.TrustRecords) {
			continue
		}
		if err := j.check(ctx, trade); err != nil {
			// Keep sweeping; each discrepancy is already logged.
			continue
		}
		checked++
	}
	j.logger.Info("trust integrity sweep finished",
		slog.Int("trades_checked", checked),
		slog.Int("trades_total", len(all)))
	return tracker.End(nil)
}

func (j *TrustIntegrityJob) check(ctx context.Context, trade trades.Trade) error {
	expected := trust.HeldByBrokerage(trade.TrustRecords)
	if err := j.checker.CheckTrustIntegrity(ctx, trade.TradeNumber, expected); err != nil {
		j.metrics.AddDiscrepancies(ledger.AccountCashTrust, 1)
		j.logger.Error("trust accounts out of balance",
			slog.Any("error", err),
			slog.Int64("trade_number", trade.TradeNumber))
		return err
	}
	return nil
}
