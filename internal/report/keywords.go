package report

import (
	"fmt"
	"strconv"

	"github.com/navid-fn/sourcing-radar/internal/models"
)

// WriteKeywords writes category, rank, keyword, change_trend and, when any
// keyword was enriched, search_volume.
func WriteKeywords(path string, keywords []models.KeywordCandidate) error {
	header := []string{"category", "rank", "keyword", "change_trend"}
	withVolume := anyVolume(keywords)
	if withVolume {
		header = append(header, "search_volume")
	}

	rows := make([][]string, 0, len(keywords))
	for _, k := range keywords {
		row := []string{k.Category, strconv.Itoa(k.Rank), k.Text, k.RankChange}
		if withVolume {
			row = append(row, optionalInt(k.SearchVolume))
		}
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

func ReadKeywords(path string) ([]models.KeywordCandidate, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	keywords := make([]models.KeywordCandidate, 0, len(rows))
	for i, row := range rows {
		if row["keyword"] == "" {
			return nil, fmt.Errorf("%s row %d: missing keyword", path, i+2)
		}
		keywords = append(keywords, keywordFromRow(row))
	}
	return keywords, nil
}

func keywordFromRow(row map[string]string) models.KeywordCandidate {
	return models.KeywordCandidate{
		Text:         row["keyword"],
		Category:     row["category"],
		Rank:         atoi(row["rank"]),
		RankChange:   row["change_trend"],
		SearchVolume: parseOptionalInt(row["search_volume"]),
	}
}
