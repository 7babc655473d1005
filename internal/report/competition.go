package report

import (
	"strconv"

	"github.com/navid-fn/sourcing-radar/internal/models"
)

var competitionHeader = []string{
	"category", "rank", "keyword", "change_trend", "search_volume",
	"rocket_count", "total_products", "avg_price", "max_reviews", "grade",
	"verification_needed", "price_min", "price_max", "avg_reviews",
	"confidence", "opportunity_score", "reliability_score",
}

// WriteCompetition writes the keyword columns followed by the competition
// metrics for each analyzed keyword.
func WriteCompetition(path string, analyzed []models.AnalyzedKeyword) error {
	rows := make([][]string, 0, len(analyzed))
	for _, a := range analyzed {
		k, s := a.Keyword, a.Sample
		rows = append(rows, []string{
			k.Category, strconv.Itoa(k.Rank), k.Text, k.RankChange, optionalInt(k.SearchVolume),
			strconv.Itoa(s.FastDeliveryCount),
			strconv.Itoa(s.SampleSize),
			strconv.Itoa(s.RetailPrice()),
			strconv.Itoa(s.MaxReviews),
			string(s.Grade()),
			string(s.Verification),
			strconv.Itoa(s.PriceMin),
			strconv.Itoa(s.PriceMax),
			strconv.FormatFloat(s.AvgReviews, 'f', 1, 64),
			s.Confidence.String(),
			strconv.Itoa(s.OpportunityScore),
			strconv.Itoa(a.Reliability),
		})
	}
	return writeCSV(path, competitionHeader, rows)
}

// ReadCompetition restores a competition report written by WriteCompetition.
func ReadCompetition(path string) ([]models.AnalyzedKeyword, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	out := make([]models.AnalyzedKeyword, 0, len(rows))
	for _, row := range rows {
		k := keywordFromRow(row)
		avg, _ := strconv.ParseFloat(row["avg_price"], 64)
		avgReviews, _ := strconv.ParseFloat(row["avg_reviews"], 64)
		total := atoi(row["total_products"])
		out = append(out, models.AnalyzedKeyword{
			Keyword: k,
			Sample: models.CompetitionSample{
				Keyword:           k.Text,
				FastDeliveryCount: atoi(row["rocket_count"]),
				PriceMin:          atoi(row["price_min"]),
				PriceMax:          atoi(row["price_max"]),
				PriceAvg:          avg,
				MaxReviews:        atoi(row["max_reviews"]),
				AvgReviews:        avgReviews,
				SampleSize:        total,
				Confidence:        models.ConfidenceFor(total),
				OpportunityScore:  atoi(row["opportunity_score"]),
				Verification:      models.VerificationReason(row["verification_needed"]),
			},
			Reliability: atoi(row["reliability_score"]),
		})
	}
	return out, nil
}
