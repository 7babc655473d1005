package models

import "time"

// TrendPoint is one monthly search-interest ratio.
type TrendPoint struct {
	Period time.Time `json:"period"`
	Ratio  float64   `json:"ratio"`
}

// SeasonalPattern is a recurring monthly peak for one keyword.
type SeasonalPattern struct {
	Keyword     string  `json:"keyword"`
	PeakMonth   int     `json:"peak_month"`
	SpikeRatio  float64 `json:"spike_ratio"`
	RepeatYears int     `json:"repeat_years"`
	Upcoming    bool    `json:"upcoming"`
	Advice      string  `json:"advice"`
}
