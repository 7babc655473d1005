package models

import "github.com/shopspring/decimal"

// StrongTag marks decisions with high demand and healthy margin.
const StrongTag = "strongly recommended"

// SourcingDecision is emitted only for keywords that meet the target margin.
type SourcingDecision struct {
	Keyword             string          `json:"keyword"`
	RetailPrice         decimal.Decimal `json:"retail_price"`
	WholesalePrice      decimal.Decimal `json:"wholesale_price"`
	AdCost              decimal.Decimal `json:"ad_cost"`
	VATCost             decimal.Decimal `json:"vat_cost"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	NetMarginRatio      decimal.Decimal `json:"net_margin_ratio"`
	Source              WholesaleSource `json:"source"`
	Link                string          `json:"link"`
	MonthlySearchVolume *int            `json:"monthly_search_volume,omitempty"`
	Tag                 string          `json:"tag,omitempty"`
}

// NetMarginPct is the margin ratio expressed in percent, rounded to one decimal.
func (d SourcingDecision) NetMarginPct() decimal.Decimal {
	return d.NetMarginRatio.Mul(decimal.NewFromInt(100)).Round(1)
}
