// Package models defines the ClickHouse row types written by the pipeline
// and read by the API server.
package models

import "time"

// Product is the latest known state of one keyword. The table is a
// ReplacingMergeTree, so inserting a newer row replaces the old one.
type Product struct {
	Keyword      string `gorm:"column:keyword;primaryKey" json:"keyword"`
	Category     string `gorm:"column:category" json:"category"`
	Rank         int32  `gorm:"column:rank;type:Int32" json:"rank"`
	RankChange   string `gorm:"column:rank_change" json:"change_trend"`
	SearchVolume *int64 `gorm:"column:search_volume;type:Nullable(Int64)" json:"search_volume,omitempty"`

	FastDeliveryCount int32   `gorm:"column:rocket_count;type:Int32" json:"rocket_count"`
	PriceMin          int64   `gorm:"column:price_min;type:Int64" json:"price_min"`
	PriceMax          int64   `gorm:"column:price_max;type:Int64" json:"price_max"`
	PriceAvg          float64 `gorm:"column:avg_price;type:Float64" json:"avg_price"`
	MaxReviews        int64   `gorm:"column:max_reviews;type:Int64" json:"max_reviews"`
	SampleSize        int32   `gorm:"column:total_products;type:Int32" json:"total_products"`
	Grade             string  `gorm:"column:grade" json:"grade"`
	Confidence        string  `gorm:"column:confidence" json:"confidence"`
	OpportunityScore  int32   `gorm:"column:opportunity_score;type:Int32" json:"opportunity_score"`
	ReliabilityScore  int32   `gorm:"column:reliability_score;type:Int32" json:"reliability_score"`
	Verification      string  `gorm:"column:verification_needed" json:"verification_needed,omitempty"`

	RunID     string    `gorm:"column:run_id" json:"run_id"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:DateTime('Asia/Seoul')" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func (Product) TableOptions() string {
	return "ENGINE = ReplacingMergeTree(updated_at) ORDER BY keyword"
}
