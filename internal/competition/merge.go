package competition

import (
	"math"

	"github.com/navid-fn/sourcing-radar/internal/models"
)

// Merged accumulates products from repeated searches keyed by identity.
// A product seen twice keeps its first occurrence.
type Merged struct {
	byID  map[string]models.RawProduct
	order []string
}

func NewMerged() *Merged {
	return &Merged{byID: make(map[string]models.RawProduct)}
}

// Add merges one call's results and reports how many were new.
func (m *Merged) Add(products []models.RawProduct) int {
	added := 0
	for _, p := range products {
		if p.ID == "" {
			continue
		}
		if _, ok := m.byID[p.ID]; ok {
			continue
		}
		m.byID[p.ID] = p
		m.order = append(m.order, p.ID)
		added++
	}
	return added
}

func (m *Merged) Len() int {
	return len(m.order)
}

// Products returns the merged set in first-seen order.
func (m *Merged) Products() []models.RawProduct {
	out := make([]models.RawProduct, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}

// Summarize computes competition metrics for a merged product set. Price
// statistics only cover products with a parsed price.
func Summarize(keyword string, products []models.RawProduct) models.CompetitionSample {
	sample := models.CompetitionSample{
		Keyword:    keyword,
		SampleSize: len(products),
		Confidence: models.ConfidenceFor(len(products)),
	}

	priced := 0
	priceSum := 0
	reviewSum := 0
	for _, p := range products {
		if p.FastDelivery {
			sample.FastDeliveryCount++
		}
		reviewSum += p.Reviews
		sample.MaxReviews = max(sample.MaxReviews, p.Reviews)

		if !p.HasPrice {
			continue
		}
		if priced == 0 || p.Price < sample.PriceMin {
			sample.PriceMin = p.Price
		}
		sample.PriceMax = max(sample.PriceMax, p.Price)
		priceSum += p.Price
		priced++
	}

	if priced > 0 {
		sample.PriceAvg = math.Round(float64(priceSum)/float64(priced)*100) / 100
	}
	if len(products) > 0 {
		sample.AvgReviews = float64(reviewSum) / float64(len(products))
	}
	sample.OpportunityScore = OpportunityScore(sample)
	return sample
}

const wideSpreadThreshold = 50000

// OpportunityScore rates how open a market looks, 0..100. Fast-delivery
// sellers and heavily reviewed listings lower it; a wide price spread
// raises it.
func OpportunityScore(s models.CompetitionSample) int {
	score := 100 - s.FastDeliveryCount*5
	score -= int(s.AvgReviews/100) * 10
	if s.PriceMax-s.PriceMin >= wideSpreadThreshold {
		score += 10
	}
	return min(max(score, 0), 100)
}
