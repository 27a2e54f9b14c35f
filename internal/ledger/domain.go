// Package ledger records double-entry debit/credit pairs for trust fund
// movement against the brokerage's two fixed trust accounts.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thushan99/homelife-backoffice/internal/money"
)

// Fixed trust accounts. These numbers are part of the wire contract with the
// brokerage's chart of accounts and must not change.
const (
	AccountCashTrust     = "10002"
	AccountCashTrustName = "CASH - TRUST"

	AccountTrustLiability     = "21300"
	AccountTrustLiabilityName = "LIABILITY FOR TRUST FUNDS"
)

// Entry is a single ledger row. Exactly one of Debit/Credit is non-zero.
type Entry struct {
	ID            int64     `json:"id"`
	AccountNumber string    `json:"accountNumber"`
	AccountName   string    `json:"accountName"`
	Debit         float64   `json:"debit"`
	Credit        float64   `json:"credit"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	EFTNumber     string    `json:"eftNumber,omitempty"`
	SourceID      uuid.UUID `json:"sourceId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Pair is a matched debit/credit posting. Both entries share the same
// description, date, and source ID.
type Pair struct {
	Debit  Entry
	Credit Entry
}

var (
	// ErrUnbalancedPair indicates the debit and credit legs differ.
	ErrUnbalancedPair = errors.New("ledger: pair legs must balance")
	// ErrNonPositiveAmount indicates a zero or negative posting amount.
	ErrNonPositiveAmount = errors.New("ledger: amount must be positive")
	// ErrEntryNotFound indicates a missing ledger row.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrInvalidEntry indicates a malformed single-entry posting.
	ErrInvalidEntry = errors.New("ledger: invalid entry")
	// ErrDuplicatePosting indicates a leg with this source and account was
	// already written.
	ErrDuplicatePosting = errors.New("ledger: posting already recorded")
)

// TrustDepositPair builds the posting for a trust deposit held by the
// brokerage: debit cash-in-trust, credit the trust liability.
func TrustDepositPair(amount float64, description string, date time.Time, eftNumber string) Pair {
	amount = money.Round2(amount)
	source := uuid.New()
	return Pair{
		Debit: Entry{
			AccountNumber: AccountCashTrust,
			AccountName:   AccountCashTrustName,
			Debit:         amount,
			Description:   description,
			Date:          date,
			EFTNumber:     eftNumber,
			SourceID:      source,
		},
		Credit: Entry{
			AccountNumber: AccountTrustLiability,
			AccountName:   AccountTrustLiabilityName,
			Credit:        amount,
			Description:   description,
			Date:          date,
			EFTNumber:     eftNumber,
			SourceID:      source,
		},
	}
}

// TrustReversalPair builds the mirror-image posting used when a trust entry
// is deleted: debit the liability, credit cash-in-trust.
func TrustReversalPair(amount float64, description string, date time.Time) Pair {
	amount = money.Round2(amount)
	source := uuid.New()
	return Pair{
		Debit: Entry{
			AccountNumber: AccountTrustLiability,
			AccountName:   AccountTrustLiabilityName,
			Debit:         amount,
			Description:   description,
			Date:          date,
			SourceID:      source,
		},
		Credit: Entry{
			AccountNumber: AccountCashTrust,
			AccountName:   AccountCashTrustName,
			Credit:        amount,
			Description:   description,
			Date:          date,
			SourceID:      source,
		},
	}
}

// Validate checks that the pair is a balanced double entry.
func (p Pair) Validate() error {
	if p.Debit.Debit <= 0 || p.Credit.Credit <= 0 {
		return ErrNonPositiveAmount
	}
	if p.Debit.Credit != 0 || p.Credit.Debit != 0 {
		return fmt.Errorf("ledger: leg carries both debit and credit")
	}
	if money.Format(p.Debit.Debit) != money.Format(p.Credit.Credit) {
		return ErrUnbalancedPair
	}
	return nil
}
