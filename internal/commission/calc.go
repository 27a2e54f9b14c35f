// Package commission derives the monetary figures for a trade's commission
// tab: the listing/selling income split, HST, and the outside-broker row that
// mirrors the selling side.
package commission

import (
	"github.com/thushan99/homelife-backoffice/internal/money"
)

// HSTRate is the fixed sales tax applied to commission amounts.
const HSTRate = 0.13

// Income is the derived commission-income row for a trade. It is recomputed
// from the key-info figures and never edited directly.
type Income struct {
	ListingAmount float64 `json:"listingAmount"`
	SellingAmount float64 `json:"sellingAmount"`
	ListingTax    float64 `json:"listingTax"`
	SellingTax    float64 `json:"sellingTax"`
	Total         float64 `json:"total"`
}

// OutsideBrokerRow carries the co-operating brokerage's share. SellingAmount
// is kept in lockstep with Income.SellingAmount via SyncOutsideBroker; it is
// not an independent input.
type OutsideBrokerRow struct {
	AgentName     string  `json:"agentName"`
	Brokerage     string  `json:"brokerage"`
	SellingAmount float64 `json:"sellingAmount"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
}

// ComputeIncome derives the commission income row from a sell price and the
// two commission percentages. Inputs the caller failed to parse arrive as 0
// and flow through; the result is always defined.
func ComputeIncome(sellPrice, listingPct, sellingPct float64) Income {
	listing := money.Round2(sellPrice * listingPct / 100)
	selling := money.Round2(sellPrice * sellingPct / 100)
	listingTax := money.Round2(listing * HSTRate)
	sellingTax := money.Round2(selling * HSTRate)
	return Income{
		ListingAmount: listing,
		SellingAmount: selling,
		ListingTax:    listingTax,
		SellingTax:    sellingTax,
		Total:         money.Round2(listing + selling + listingTax + sellingTax),
	}
}

// BrokerTotals derives the tax and total for an outside-broker selling amount.
func BrokerTotals(sellingAmount float64) (tax, total float64) {
	tax = money.Round2(sellingAmount * HSTRate)
	total = money.Round2(sellingAmount + tax)
	return tax, total
}

// SyncOutsideBroker applies the one-way coupling rule: the broker row's
// selling amount always follows the trade's own selling-side commission
// amount, never the reverse.
func SyncOutsideBroker(income Income, row *OutsideBrokerRow) {
	if row == nil {
		return
	}
	row.SellingAmount = income.SellingAmount
	row.Tax, row.Total = BrokerTotals(income.SellingAmount)
}

// PercentFromAmount reconstructs a commission percentage from a saved amount,
// used when a trade is reopened for editing. A non-positive amount or sell
// price means there is no meaningful percentage, so the empty string is
// returned rather than NaN or an error.
func PercentFromAmount(amount, sellPrice float64) string {
	if amount <= 0 || sellPrice <= 0 {
		return ""
	}
	return money.Format(amount / sellPrice * 100)
}
