package models

import "time"

type SeasonalPattern struct {
	Keyword     string    `gorm:"column:keyword;primaryKey" json:"keyword"`
	PeakMonth   int8      `gorm:"column:peak_month;type:Int8" json:"peak_month"`
	SpikeRatio  float64   `gorm:"column:spike_ratio;type:Float64" json:"spike_ratio"`
	RepeatYears int8      `gorm:"column:repeat_years;type:Int8" json:"repeat_years"`
	Upcoming    bool      `gorm:"column:upcoming;type:Bool" json:"upcoming"`
	Advice      string    `gorm:"column:advice" json:"advice"`
	DetectedAt  time.Time `gorm:"column:detected_at;type:DateTime('Asia/Seoul')" json:"detected_at"`
}

func (SeasonalPattern) TableName() string {
	return "seasonal_patterns"
}

func (SeasonalPattern) TableOptions() string {
	return "ENGINE = ReplacingMergeTree(detected_at) ORDER BY keyword"
}
