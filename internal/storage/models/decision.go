package models

import "time"

// Decision is the latest qualified sourcing decision per keyword. Money is
// stored in whole won.
type Decision struct {
	Keyword             string    `gorm:"column:keyword;primaryKey" json:"keyword"`
	RetailPrice         int64     `gorm:"column:retail_price;type:Int64" json:"retail_price"`
	WholesalePrice      int64     `gorm:"column:wholesale_price;type:Int64" json:"wholesale_price"`
	AdCost              int64     `gorm:"column:ad_cost;type:Int64" json:"ad_cost"`
	VATCost             int64     `gorm:"column:vat_cost;type:Int64" json:"vat_cost"`
	NetProfit           int64     `gorm:"column:net_profit;type:Int64" json:"net_profit"`
	NetMarginRatio      float64   `gorm:"column:net_margin_ratio;type:Float64" json:"net_margin_ratio"`
	Source              string    `gorm:"column:source" json:"source"`
	Link                string    `gorm:"column:link" json:"link"`
	MonthlySearchVolume *int64    `gorm:"column:monthly_search_volume;type:Nullable(Int64)" json:"monthly_search_volume,omitempty"`
	Tag                 string    `gorm:"column:tag" json:"tag,omitempty"`
	RunID               string    `gorm:"column:run_id" json:"run_id"`
	DecidedAt           time.Time `gorm:"column:decided_at;type:DateTime('Asia/Seoul')" json:"decided_at"`
}

func (Decision) TableName() string {
	return "sourcing_decisions"
}

func (Decision) TableOptions() string {
	return "ENGINE = ReplacingMergeTree(decided_at) ORDER BY keyword"
}
