// Package report reads and writes the exchange files shared between pipeline
// stages and the dashboard: UTF-8 CSV with a header row, plus the login
// status JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/navid-fn/sourcing-radar/internal/models"
)

const (
	KeywordsFile    = "trending_keywords.csv"
	CompetitionFile = "competition_report.csv"
	DecisionsFile   = "final_sourcing_list.csv"
	RejectionsFile  = "wholesale_rejections.csv"
	LoginStatusFile = "wholesale_login_status.json"
	SeasonalFile    = "seasonal_report.csv"
)

// utf8BOM lets spreadsheet tools detect the encoding of Korean text.
const utf8BOM = "\ufeff"

// writeCSV creates path (and its directory) and writes header plus rows.
func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.WriteString(f, utf8BOM); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// readCSV returns rows as column-name maps.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	out := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func anyVolume(keywords []models.KeywordCandidate) bool {
	for _, k := range keywords {
		if k.HasVolume() {
			return true
		}
	}
	return false
}

// WriteLoginStatus stores the per-source login result.
func WriteLoginStatus(path string, status models.LoginStatus) error {
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLoginStatus loads the last login result without logging in again.
func ReadLoginStatus(path string) (models.LoginStatus, error) {
	var status models.LoginStatus
	data, err := os.ReadFile(path)
	if err != nil {
		return status, err
	}
	err = json.Unmarshal(data, &status)
	return status, err
}
