// Package seasonal finds keywords whose search interest peaks in the same
// calendar month year after year.
package seasonal

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/drivers/datalab"
	"github.com/navid-fn/sourcing-radar/internal/faulttolerance"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// upcomingWindow is how many months ahead, counting the current one, a
// peak is reported as upcoming.
const upcomingWindow = 2

// SeriesSource returns monthly series for up to five keywords.
type SeriesSource interface {
	MonthlySeries(ctx context.Context, keywords []string) (map[string][]models.TrendPoint, error)
}

type Detector struct {
	threshold float64
	minYears  int
	now       func() time.Time
}

func NewDetector(cfg configs.SeasonalConfig) *Detector {
	threshold := cfg.SpikeThreshold
	if threshold <= 0 {
		threshold = 2.0
	}
	minYears := cfg.RepeatMinYears
	if minYears <= 0 {
		minYears = 2
	}
	return &Detector{threshold: threshold, minYears: minYears, now: time.Now}
}

// Detect returns the strongest recurring peak month, or nil when no month
// reaches the threshold with enough years of data.
func (d *Detector) Detect(keyword string, series []models.TrendPoint) *models.SeasonalPattern {
	if len(series) == 0 {
		return nil
	}

	all := make([]float64, 0, len(series))
	byMonth := make(map[int][]float64, 12)
	for _, p := range series {
		all = append(all, p.Ratio)
		month := int(p.Period.Month())
		byMonth[month] = append(byMonth[month], p.Ratio)
	}

	mean := stat.Mean(all, nil)
	if mean <= 0 {
		return nil
	}

	bestMonth, bestSpike, bestYears := 0, 0.0, 0
	for month := 1; month <= 12; month++ {
		values := byMonth[month]
		if len(values) < d.minYears {
			continue
		}
		spike := stat.Mean(values, nil) / mean
		if spike >= d.threshold && spike > bestSpike {
			bestMonth, bestSpike, bestYears = month, spike, len(values)
		}
	}
	if bestMonth == 0 {
		return nil
	}

	current := int(d.now().Month())
	return &models.SeasonalPattern{
		Keyword:     keyword,
		PeakMonth:   bestMonth,
		SpikeRatio:  math.Round(bestSpike*100) / 100,
		RepeatYears: bestYears,
		Upcoming:    MonthsUntil(current, bestMonth) <= upcomingWindow,
		Advice:      Advice(current, bestMonth, bestSpike),
	}
}

// MonthsUntil counts months from current to peak, 0 when they match.
func MonthsUntil(current, peak int) int {
	return (peak - current + 12) % 12
}

func previousMonth(month int) int {
	if month == 1 {
		return 12
	}
	return month - 1
}

// Advice tells the operator when to buy stock ahead of the peak.
func Advice(current, peak int, spike float64) string {
	until := MonthsUntil(current, peak)
	prep := previousMonth(peak)
	switch {
	case until == 0:
		return fmt.Sprintf("이번 달(%d월)이 피크입니다. 즉시 사입·입고를 서둘러야 합니다.", peak)
	case until <= upcomingWindow:
		return fmt.Sprintf("지금이 %d월이니, %d월 초에 사입을 완료하고 %d월 초에 입고를 끝내야 합니다.", current, prep, peak)
	case until <= 5:
		return fmt.Sprintf("피크까지 %d개월 남았습니다. %d월 전에 사입 준비를 시작하세요.", until, prep)
	default:
		return fmt.Sprintf("매년 %d월에 폭등합니다(평균 %d%% 상승). 사입 시점: %d월 초.", peak, int(math.Round(spike*100)), prep)
	}
}

// Scan fetches series in chunks the trend API accepts and detects a pattern
// per keyword. A chunk that keeps failing is skipped; a terminal error
// stops the scan and returns what was found so far.
func (d *Detector) Scan(ctx context.Context, source SeriesSource, retryer *faulttolerance.Retryer, keywords []string, logger *logrus.Logger) ([]models.SeasonalPattern, error) {
	var patterns []models.SeasonalPattern
	for _, chunk := range crawler.ChunkKeywords(keywords, datalab.MaxKeywordsPerRequest) {
		var series map[string][]models.TrendPoint
		err := retryer.Execute(ctx, func(ctx context.Context) error {
			var err error
			series, err = source.MonthlySeries(ctx, chunk)
			return err
		})
		if err != nil {
			if apiclient.IsTerminal(err) || ctx.Err() != nil {
				return patterns, err
			}
			logger.Warnf("Skipping seasonal chunk %v: %v", chunk, err)
			continue
		}

		for _, kw := range chunk {
			if p := d.Detect(kw, series[kw]); p != nil {
				logger.Infof("[%s] peaks in month %d (x%.2f over %d years)", kw, p.PeakMonth, p.SpikeRatio, p.RepeatYears)
				patterns = append(patterns, *p)
			}
		}
	}
	return patterns, nil
}

// Scanner binds a detector to its series source for repeated scans.
type Scanner struct {
	detector *Detector
	source   SeriesSource
	retryer  *faulttolerance.Retryer
	logger   *logrus.Logger
}

func NewScanner(detector *Detector, source SeriesSource, retryer *faulttolerance.Retryer, logger *logrus.Logger) *Scanner {
	return &Scanner{detector: detector, source: source, retryer: retryer, logger: logger}
}

func (s *Scanner) Scan(ctx context.Context, keywords []string) ([]models.SeasonalPattern, error) {
	return s.detector.Scan(ctx, s.source, s.retryer, keywords, s.logger)
}
