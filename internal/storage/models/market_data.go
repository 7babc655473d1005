package models

import "time"

// MarketData is one competition sample, appended on every run.
type MarketData struct {
	RunID             string    `gorm:"column:run_id" json:"run_id"`
	Keyword           string    `gorm:"column:keyword" json:"keyword"`
	FastDeliveryCount int32     `gorm:"column:rocket_count;type:Int32" json:"rocket_count"`
	PriceMin          int64     `gorm:"column:price_min;type:Int64" json:"price_min"`
	PriceMax          int64     `gorm:"column:price_max;type:Int64" json:"price_max"`
	PriceAvg          float64   `gorm:"column:avg_price;type:Float64" json:"avg_price"`
	SampleSize        int32     `gorm:"column:total_products;type:Int32" json:"total_products"`
	RecordedAt        time.Time `gorm:"column:recorded_at;type:DateTime('Asia/Seoul')" json:"recorded_at"`
}

func (MarketData) TableName() string {
	return "market_data"
}

func (MarketData) TableOptions() string {
	return "ENGINE = MergeTree() ORDER BY (keyword, recorded_at)"
}
