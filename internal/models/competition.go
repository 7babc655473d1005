package models

import (
	"fmt"
	"math"
)

// Grade is the competition-intensity label derived from the fast-delivery count.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
)

// GradeFor maps a fast-delivery count to a grade: S below 5, A from 5 to 10, B above 10.
func GradeFor(fastDeliveryCount int) Grade {
	switch {
	case fastDeliveryCount < 5:
		return GradeS
	case fastDeliveryCount <= 10:
		return GradeA
	default:
		return GradeB
	}
}

// Sourceable reports whether the grade qualifies for wholesale discovery.
func (g Grade) Sourceable() bool {
	return g == GradeS || g == GradeA
}

// Confidence is an ordinal rating of how representative a sample is.
type Confidence int

const (
	ConfidenceInsufficient Confidence = iota
	ConfidenceModerate
	ConfidenceHigh
)

const (
	moderateSampleSize = 20
	highSampleSize     = 30
)

// ConfidenceFor rates a merged sample size.
func ConfidenceFor(sampleSize int) Confidence {
	switch {
	case sampleSize < moderateSampleSize:
		return ConfidenceInsufficient
	case sampleSize >= highSampleSize:
		return ConfidenceHigh
	default:
		return ConfidenceModerate
	}
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceModerate:
		return "moderate"
	default:
		return "insufficient"
	}
}

// MarshalText encodes the rating by name so JSON and YAML output match the CSV.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Confidence) UnmarshalText(text []byte) error {
	switch string(text) {
	case "high":
		*c = ConfidenceHigh
	case "moderate":
		*c = ConfidenceModerate
	case "insufficient":
		*c = ConfidenceInsufficient
	default:
		return fmt.Errorf("unknown confidence %q", text)
	}
	return nil
}

// VerificationReason explains why a keyword needs manual checking.
type VerificationReason string

const (
	VerificationNone            VerificationReason = ""
	VerificationVisualFailed    VerificationReason = "visual_failed"
	VerificationZeroCompetitors VerificationReason = "zero_competitors"
)

// CompetitionSample summarizes the merged marketplace listings for one keyword.
type CompetitionSample struct {
	Keyword           string     `json:"keyword"`
	FastDeliveryCount int        `json:"rocket_count"`
	PriceMin          int        `json:"price_min"`
	PriceMax          int        `json:"price_max"`
	PriceAvg          float64    `json:"avg_price"`
	MaxReviews        int        `json:"max_reviews"`
	AvgReviews        float64    `json:"avg_reviews"`
	SampleSize        int        `json:"total_products"`
	Confidence        Confidence `json:"confidence"`
	OpportunityScore  int        `json:"opportunity_score"`

	// Verification is empty unless the sample needs manual checking.
	Verification VerificationReason `json:"verification_needed,omitempty"`
}

// Grade derives the competition grade from the fast-delivery count.
func (s CompetitionSample) Grade() Grade {
	return GradeFor(s.FastDeliveryCount)
}

// RetailPrice is the average price rounded to the nearest won. Every
// consumer of the retail price goes through it.
func (s CompetitionSample) RetailPrice() int {
	return int(math.Round(s.PriceAvg))
}

// NeedsVerification reports whether any verification trigger fired.
func (s CompetitionSample) NeedsVerification() bool {
	return s.Verification != VerificationNone
}

// RawProduct is one marketplace search result after vendor normalization.
type RawProduct struct {
	ID           string
	Name         string
	Price        int
	HasPrice     bool
	URL          string
	FastDelivery bool
	Reviews      int
}

// AnalyzedKeyword joins a trending keyword with its competition sample.
type AnalyzedKeyword struct {
	Keyword     KeywordCandidate  `json:"keyword"`
	Sample      CompetitionSample `json:"competition"`
	Reliability int               `json:"reliability_score"`
}
