package storage

import (
	"time"

	domain "github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/storage/models"
)

// NewProduct joins a keyword with its competition sample.
func NewProduct(k domain.KeywordCandidate, s domain.CompetitionSample, reliability int, runID string, now time.Time) *models.Product {
	return &models.Product{
		Keyword:           k.Text,
		Category:          k.Category,
		Rank:              int32(k.Rank),
		RankChange:        k.RankChange,
		SearchVolume:      int64Ptr(k.SearchVolume),
		FastDeliveryCount: int32(s.FastDeliveryCount),
		PriceMin:          int64(s.PriceMin),
		PriceMax:          int64(s.PriceMax),
		PriceAvg:          s.PriceAvg,
		MaxReviews:        int64(s.MaxReviews),
		SampleSize:        int32(s.SampleSize),
		Grade:             string(s.Grade()),
		Confidence:        s.Confidence.String(),
		OpportunityScore:  int32(s.OpportunityScore),
		ReliabilityScore:  int32(reliability),
		Verification:      string(s.Verification),
		RunID:             runID,
		UpdatedAt:         now,
	}
}

func NewMarketData(s domain.CompetitionSample, runID string, now time.Time) *models.MarketData {
	return &models.MarketData{
		RunID:             runID,
		Keyword:           s.Keyword,
		FastDeliveryCount: int32(s.FastDeliveryCount),
		PriceMin:          int64(s.PriceMin),
		PriceMax:          int64(s.PriceMax),
		PriceAvg:          s.PriceAvg,
		SampleSize:        int32(s.SampleSize),
		RecordedAt:        now,
	}
}

func NewDecision(d domain.SourcingDecision, runID string, now time.Time) *models.Decision {
	return &models.Decision{
		Keyword:             d.Keyword,
		RetailPrice:         d.RetailPrice.Round(0).IntPart(),
		WholesalePrice:      d.WholesalePrice.Round(0).IntPart(),
		AdCost:              d.AdCost.Round(0).IntPart(),
		VATCost:             d.VATCost.Round(0).IntPart(),
		NetProfit:           d.NetProfit.Round(0).IntPart(),
		NetMarginRatio:      d.NetMarginRatio.InexactFloat64(),
		Source:              string(d.Source),
		Link:                d.Link,
		MonthlySearchVolume: int64Ptr(d.MonthlySearchVolume),
		Tag:                 d.Tag,
		RunID:               runID,
		DecidedAt:           now,
	}
}

func NewSeasonalPattern(p domain.SeasonalPattern, now time.Time) *models.SeasonalPattern {
	return &models.SeasonalPattern{
		Keyword:     p.Keyword,
		PeakMonth:   int8(p.PeakMonth),
		SpikeRatio:  p.SpikeRatio,
		RepeatYears: int8(p.RepeatYears),
		Upcoming:    p.Upcoming,
		Advice:      p.Advice,
		DetectedAt:  now,
	}
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}
