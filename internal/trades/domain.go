// Package trades owns the trade document: the key info, people, outside
// brokers, trust records, and commission figures edited tab by tab in the
// back office and saved as one unit.
package trades

import (
	"errors"
	"time"

	"github.com/thushan99/homelife-backoffice/internal/ar"
	"github.com/thushan99/homelife-backoffice/internal/commission"
	"github.com/thushan99/homelife-backoffice/internal/money"
	"github.com/thushan99/homelife-backoffice/internal/trust"
)

// KeyInfo carries the first tab of a trade. Monetary and percentage fields
// stay strings exactly as entered; derivation parses them with zero-default
// semantics so an unfinished form never blocks recomputation.
type KeyInfo struct {
	Address        string `json:"address" validate:"required"`
	DealType       string `json:"dealType"`
	Classification string `json:"classification" validate:"required,oneof='LISTING SIDE' 'CO-OPERATING SIDE'"`
	SellPrice      string `json:"sellPrice"`
	ListCommission string `json:"listCommission"`
	SellCommission string `json:"sellCommission"`
	OfferDate      string `json:"offerDate"`
	ClosingDate    string `json:"closingDate"`
	EntryDate      string `json:"entryDate"`
}

// Person is a party on the trade (buyer, seller, lawyer, agent).
type Person struct {
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

// SaleClosingRow summarises the closing figures shown on the commission tab.
type SaleClosingRow struct {
	Address     string  `json:"address"`
	SellPrice   float64 `json:"sellPrice"`
	ClosingDate string  `json:"closingDate"`
}

// Commission aggregates the commission tab. Each slice holds at most one
// active row in the current workflow; they stay slices because saved trades
// from the earlier workflow may carry more.
type Commission struct {
	SaleClosingRows      []SaleClosingRow              `json:"saleClosingRows"`
	CommissionIncomeRows []commission.Income           `json:"commissionIncomeRows"`
	OutsideBrokersRows   []commission.OutsideBrokerRow `json:"outsideBrokersRows"`
}

// Trade is the whole document. It is persisted only via whole-document
// replace; there is no partial-commit path.
type Trade struct {
	TradeNumber    int64          `json:"tradeNumber"`
	KeyInfo        KeyInfo        `json:"keyInfo"`
	People         []Person       `json:"people"`
	OutsideBrokers []Person       `json:"outsideBrokers"`
	TrustRecords   []trust.Record `json:"trustRecords"`
	Commission     Commission     `json:"commission"`
	AR             string         `json:"ar"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

var (
	// ErrTradeNotFound indicates a missing trade document.
	ErrTradeNotFound = errors.New("trades: trade not found")
	// ErrTrustRecordNotFound indicates a missing trust record on a trade.
	ErrTrustRecordNotFound = errors.New("trades: trust record not found")
)

// Classification returns the trade's typed classification.
func (t *Trade) Classification() ar.Classification {
	return ar.Classification(t.KeyInfo.Classification)
}

// CommissionTotal returns the current derived commission total.
func (t *Trade) CommissionTotal() float64 {
	if len(t.Commission.CommissionIncomeRows) == 0 {
		return 0
	}
	return t.Commission.CommissionIncomeRows[0].Total
}

// Rederive recomputes every derived figure from current inputs: the
// commission income row from key info, the outside-broker row mirror, the
// sale-closing summary, and AR. It is invoked after every setter and before
// save so derived state can never drift from its inputs.
func (t *Trade) Rederive() {
	sellPrice := money.Parse(t.KeyInfo.SellPrice)
	income := commission.ComputeIncome(sellPrice,
		money.ParsePercent(t.KeyInfo.ListCommission),
		money.ParsePercent(t.KeyInfo.SellCommission))
	t.Commission.CommissionIncomeRows = []commission.Income{income}

	if len(t.Commission.OutsideBrokersRows) > 0 {
		commission.SyncOutsideBroker(income, &t.Commission.OutsideBrokersRows[0])
	}

	t.Commission.SaleClosingRows = []SaleClosingRow{{
		Address:     t.KeyInfo.Address,
		SellPrice:   money.Round2(sellPrice),
		ClosingDate: t.KeyInfo.ClosingDate,
	}}

	t.AR = ar.Compute(t.Classification(), t.TrustRecords, income.Total)
}
