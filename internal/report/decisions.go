package report

import (
	"strconv"

	"github.com/navid-fn/sourcing-radar/internal/models"
)

// WriteDecisions writes the final sourcing list.
func WriteDecisions(path string, decisions []models.SourcingDecision) error {
	header := []string{
		"keyword", "retail_price", "wholesale_price", "ad_cost", "vat_cost",
		"net_profit", "net_margin_pct", "monthly_search_volume", "tag", "source", "link",
	}
	rows := make([][]string, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, []string{
			d.Keyword,
			d.RetailPrice.StringFixed(0),
			d.WholesalePrice.StringFixed(0),
			d.AdCost.StringFixed(0),
			d.VATCost.StringFixed(0),
			d.NetProfit.StringFixed(0),
			d.NetMarginPct().StringFixed(1),
			optionalInt(d.MonthlySearchVolume),
			d.Tag,
			string(d.Source),
			d.Link,
		})
	}
	return writeCSV(path, header, rows)
}

// WriteRejections writes the rejection trail.
func WriteRejections(path string, rejections []models.Rejection) error {
	rows := make([][]string, 0, len(rejections))
	for _, r := range rejections {
		rows = append(rows, []string{r.Keyword, string(r.Stage), r.Detail, strconv.FormatBool(r.Verify)})
	}
	return writeCSV(path, []string{"keyword", "stage", "detail", "verification_needed"}, rows)
}

// WriteSeasonal writes detected seasonal patterns.
func WriteSeasonal(path string, patterns []models.SeasonalPattern) error {
	header := []string{"keyword", "peak_month", "spike_ratio", "repeat_years", "upcoming", "advice"}
	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		rows = append(rows, []string{
			p.Keyword,
			strconv.Itoa(p.PeakMonth),
			strconv.FormatFloat(p.SpikeRatio, 'f', 2, 64),
			strconv.Itoa(p.RepeatYears),
			strconv.FormatBool(p.Upcoming),
			p.Advice,
		})
	}
	return writeCSV(path, header, rows)
}
