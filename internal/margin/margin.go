// Package margin applies the run's cost model to a retail and wholesale
// price pair.
package margin

import (
	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/shopspring/decimal"
)

// Breakdown is the cost model's output for one price pair.
type Breakdown struct {
	Settlement     decimal.Decimal
	AdCost         decimal.Decimal
	VATCost        decimal.Decimal
	NetProfit      decimal.Decimal
	NetMarginRatio decimal.Decimal
}

// strongMargin is the ratio a decision needs for the strong tag, independent
// of the configured target.
var strongMargin = decimal.RequireFromString("0.15")

type Engine struct {
	platformFee  decimal.Decimal
	adRate       decimal.Decimal
	shipping     decimal.Decimal
	vatRate      decimal.Decimal
	target       decimal.Decimal
	strongVolume int
}

func NewEngine(cfg configs.MarginConfig) *Engine {
	return &Engine{
		platformFee:  decimal.NewFromFloat(cfg.PlatformFeeRate),
		adRate:       decimal.NewFromFloat(cfg.AdRate),
		shipping:     decimal.NewFromFloat(cfg.ShippingCost),
		vatRate:      decimal.NewFromFloat(cfg.VATRate),
		target:       decimal.NewFromFloat(cfg.TargetMargin),
		strongVolume: cfg.StrongVolume,
	}
}

// Compute applies:
//
//	settlement = retail × (1 − fee)
//	net_profit = settlement − wholesale − shipping − retail×ad − wholesale×vat
//	ratio      = net_profit / retail, or 0 when retail ≤ 0
func (e *Engine) Compute(retail, wholesale int) Breakdown {
	r := decimal.NewFromInt(int64(retail))
	w := decimal.NewFromInt(int64(wholesale))

	b := Breakdown{
		Settlement: r.Mul(decimal.NewFromInt(1).Sub(e.platformFee)),
		AdCost:     r.Mul(e.adRate),
		VATCost:    w.Mul(e.vatRate),
	}
	b.NetProfit = b.Settlement.Sub(w).Sub(e.shipping).Sub(b.AdCost).Sub(b.VATCost)
	b.NetMarginRatio = decimal.Zero
	if r.IsPositive() {
		b.NetMarginRatio = b.NetProfit.Div(r)
	}
	return b
}

// Qualifies reports whether a ratio meets the target margin.
func (e *Engine) Qualifies(b Breakdown) bool {
	return b.NetMarginRatio.GreaterThanOrEqual(e.target)
}

// Decide returns a decision for the candidate, or false when the margin
// misses the target. volume may be nil.
func (e *Engine) Decide(candidate models.WholesaleCandidate, retail int, volume *int) (models.SourcingDecision, bool) {
	b := e.Compute(retail, candidate.Price)
	if !e.Qualifies(b) {
		return models.SourcingDecision{}, false
	}

	decision := models.SourcingDecision{
		Keyword:             candidate.Keyword,
		RetailPrice:         decimal.NewFromInt(int64(retail)),
		WholesalePrice:      decimal.NewFromInt(int64(candidate.Price)),
		AdCost:              b.AdCost.Round(0),
		VATCost:             b.VATCost.Round(0),
		NetProfit:           b.NetProfit.Round(0),
		NetMarginRatio:      b.NetMarginRatio.Round(4),
		Source:              candidate.Source,
		Link:                candidate.URL,
		MonthlySearchVolume: volume,
	}
	if volume != nil && *volume >= e.strongVolume && b.NetMarginRatio.GreaterThanOrEqual(strongMargin) {
		decision.Tag = models.StrongTag
	}
	return decision, true
}
