// Package ar derives the accounts-receivable figure for a trade from its
// classification, trust holdings, and commission total.
package ar

import (
	"github.com/thushan99/homelife-backoffice/internal/money"
	"github.com/thushan99/homelife-backoffice/internal/trust"
)

// Classification identifies which side of a trade the brokerage represents.
type Classification string

const (
	ListingSide     Classification = "LISTING SIDE"
	CoOperatingSide Classification = "CO-OPERATING SIDE"
)

// Valid reports whether the classification is one of the two known values.
func (c Classification) Valid() bool {
	return c == ListingSide || c == CoOperatingSide
}

// Compute derives the AR figure for a trade, formatted to two decimals.
//
// On the listing side the brokerage usually holds the deposit: what remains
// after taking its commission out of trust is receivable (or payable, when
// negative). When no deposit is held, or on the co-operating side, the full
// commission is receivable from the other brokerage.
//
// The function is total: unknown classifications fall through to the
// commission total rather than erroring, matching the always-renderable
// policy of the calculators.
func Compute(classification Classification, records []trust.Record, commissionTotal float64) string {
	if classification == ListingSide && trust.AnyWeHold(records) {
		return money.Format(trust.TotalHeld(records) - commissionTotal)
	}
	return money.Format(commissionTotal)
}
