// Package eft allocates electronic funds transfer reference numbers for
// trust deposits.
package eft

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sequenceKey = "eft:trust-deposit:seq"

// Allocator issues sequential EFT numbers from a shared redis counter so
// concurrent deposit applies never collide.
type Allocator struct {
	client  *redis.Client
	timeout time.Duration
}

// NewAllocator constructs Allocator. A zero timeout defaults to two seconds.
func NewAllocator(client *redis.Client, timeout time.Duration) *Allocator {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Allocator{client: client, timeout: timeout}
}

// Request carries the deposit context an allocation is tied to. The fields
// are recorded with the allocation for audit purposes.
type Request struct {
	TradeNumber  int64   `json:"tradeId" validate:"required,gt=0"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	ReceivedFrom string  `json:"receivedFrom"`
	Reference    string  `json:"reference"`
	Description  string  `json:"description"`
}

// Allocate reserves the next EFT number. The call carries its own timeout
// independent of the caller's deadline so a slow redis cannot stall the
// deposit-apply flow indefinitely.
func (a *Allocator) Allocate(ctx context.Context, req Request) (string, error) {
	if req.TradeNumber <= 0 {
		return "", fmt.Errorf("eft: trade number required")
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("eft: amount must be positive")
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	seq, err := a.client.Incr(ctx, sequenceKey).Result()
	if err != nil {
		return "", fmt.Errorf("eft: allocate sequence: %w", err)
	}
	number := fmt.Sprintf("EFT-%06d", seq)
	_ = a.client.HSet(ctx, "eft:trust-deposit:"+number, map[string]any{
		"trade":         req.TradeNumber,
		"amount":        req.Amount,
		"received_from": req.ReceivedFrom,
		"reference":     req.Reference,
		"allocated_at":  time.Now().UTC().Format(time.RFC3339),
	}).Err()
	return number, nil
}
