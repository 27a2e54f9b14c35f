// Package jobs defines the background tasks run by the asynq worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTrustIntegrity sweeps the trust ledger accounts for imbalances.
	TaskTrustIntegrity = "trust:integrity"
)

// TrustIntegrityPayload scopes an integrity sweep. An empty TradeNumber
// means every trade with trust records is checked.
type TrustIntegrityPayload struct {
	TradeNumber int64 `json:"tradeNumber,omitempty"`
}

// NewTrustIntegrityTask constructs an Asynq task for the integrity sweep.
func NewTrustIntegrityTask(payload TrustIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrustIntegrity, data), nil
}
