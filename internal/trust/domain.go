// Package trust manages trust-deposit records for a trade and the ledger
// postings that track funds the brokerage holds.
package trust

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
)

// YesNo mirrors the form-level toggle values carried on trust records.
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// DefaultCurrency is used when a deposit arrives with an unknown code.
const DefaultCurrency = "CAD"

// Record is one trust deposit attached to a trade.
type Record struct {
	ID           uuid.UUID `json:"id"`
	WeHold       YesNo     `json:"weHold"`
	HeldBy       string    `json:"heldBy"`
	Received     YesNo     `json:"received"`
	DepositDate  time.Time `json:"depositDate"`
	ReceivedFrom string    `json:"receivedFrom"`
	Amount       string    `json:"amount"`
	Reference    string    `json:"reference"`
	EFTNumber    string    `json:"eftNumber,omitempty"`
	PaymentType  string    `json:"paymentType"`
	Currency     string    `json:"currency"`
	EarnInterest YesNo     `json:"earnInterest"`
}

// NormalizeCurrency validates the record's currency code, falling back to the
// default rather than rejecting the deposit.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCurrency
	}
	if _, err := currency.ParseISO(code); err != nil {
		return DefaultCurrency
	}
	return code
}

// DepositDescription composes the ledger description for a deposit posting.
func DepositDescription(tradeNumber int64, receivedFrom, reference string) string {
	desc := fmt.Sprintf("Trade #: %d, Received from: %s", tradeNumber, receivedFrom)
	if reference != "" {
		desc += ", Ref: " + reference
	}
	return desc
}

// DeletionDescription composes the ledger description for a reversal posting.
func DeletionDescription(tradeNumber int64, receivedFrom string) string {
	return fmt.Sprintf("Trade #: %d, Trust entry deleted, Received from: %s", tradeNumber, receivedFrom)
}
