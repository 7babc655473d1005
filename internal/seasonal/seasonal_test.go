package seasonal

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/faulttolerance"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func threeYears(peakMonth int, base, peak float64) []models.TrendPoint {
	var series []models.TrendPoint
	for year := 2023; year <= 2025; year++ {
		for month := 1; month <= 12; month++ {
			ratio := base
			if month == peakMonth {
				ratio = peak
			}
			series = append(series, models.TrendPoint{
				Period: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
				Ratio:  ratio,
			})
		}
	}
	return series
}

func newTestDetector(month time.Month) *Detector {
	d := NewDetector(configs.SeasonalConfig{SpikeThreshold: 2.0, RepeatMinYears: 2})
	d.now = func() time.Time { return time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC) }
	return d
}

func TestDetectPeak(t *testing.T) {
	p := newTestDetector(time.January).Detect("선풍기", threeYears(6, 100, 250))
	if p == nil {
		t.Fatal("Expected a pattern")
	}
	if p.PeakMonth != 6 {
		t.Errorf("Expected peak month 6, got %d", p.PeakMonth)
	}
	if p.SpikeRatio != 2.22 {
		t.Errorf("Expected spike 2.22, got %v", p.SpikeRatio)
	}
	if p.RepeatYears != 3 {
		t.Errorf("Expected 3 years, got %d", p.RepeatYears)
	}
	if p.Upcoming {
		t.Error("Expected June not to be upcoming in January")
	}
}

func TestDetectFlatSeries(t *testing.T) {
	if p := newTestDetector(time.January).Detect("x", threeYears(6, 100, 100)); p != nil {
		t.Errorf("Expected no pattern, got %+v", p)
	}
	if p := newTestDetector(time.January).Detect("x", nil); p != nil {
		t.Errorf("Expected no pattern for empty series, got %+v", p)
	}
}

func TestDetectNeedsRepeatYears(t *testing.T) {
	series := threeYears(6, 100, 100)
	series[5].Ratio = 1000 // June 2023 only

	if p := newTestDetector(time.January).Detect("x", series); p != nil {
		t.Errorf("Expected a single-year spike to be ignored, got %+v", p)
	}
}

func TestUpcoming(t *testing.T) {
	tests := []struct {
		now  time.Month
		peak int
		want bool
	}{
		{time.June, 6, true},
		{time.May, 6, true},
		{time.April, 6, true},
		{time.March, 6, false},
		{time.December, 1, true},
		{time.November, 1, true},
		{time.July, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.now.String(), func(t *testing.T) {
			p := newTestDetector(tt.now).Detect("x", threeYears(tt.peak, 100, 300))
			if p == nil {
				t.Fatal("Expected a pattern")
			}
			if p.Upcoming != tt.want {
				t.Errorf("Expected upcoming=%v for peak %d in %s", tt.want, tt.peak, tt.now)
			}
		})
	}
}

func TestAdvice(t *testing.T) {
	if got := Advice(6, 6, 2.5); got != "이번 달(6월)이 피크입니다. 즉시 사입·입고를 서둘러야 합니다." {
		t.Errorf("Unexpected advice %q", got)
	}
	if got := Advice(12, 1, 2.5); got != "지금이 12월이니, 12월 초에 사입을 완료하고 1월 초에 입고를 끝내야 합니다." {
		t.Errorf("Unexpected advice %q", got)
	}
}

type fakeSeries struct {
	series map[string][]models.TrendPoint
	err    error
	chunks [][]string
}

func (f *fakeSeries) MonthlySeries(ctx context.Context, keywords []string) (map[string][]models.TrendPoint, error) {
	f.chunks = append(f.chunks, keywords)
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func TestScanChunksRequests(t *testing.T) {
	source := &fakeSeries{series: map[string][]models.TrendPoint{
		"a": threeYears(6, 100, 250),
		"g": threeYears(12, 100, 300),
	}}
	retryer := faulttolerance.NewRetryer(faulttolerance.RetryConfig{MaxAttempts: 1, IsRetryable: apiclient.IsRetryable}, newTestLogger())

	patterns, err := newTestDetector(time.January).Scan(context.Background(), source, retryer,
		[]string{"a", "b", "c", "d", "e", "f", "g"}, newTestLogger())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(source.chunks) != 2 || len(source.chunks[0]) != 5 {
		t.Errorf("Expected chunks of 5, got %v", source.chunks)
	}
	if len(patterns) != 2 {
		t.Errorf("Expected 2 patterns, got %d", len(patterns))
	}
}

func TestScanStopsOnAuthFailure(t *testing.T) {
	source := &fakeSeries{err: apiclient.NewError(apiclient.KindAuthRejected, "fake", 401, nil, errors.New("bad id"))}
	retryer := faulttolerance.NewRetryer(faulttolerance.RetryConfig{MaxAttempts: 3, Delay: time.Millisecond, IsRetryable: apiclient.IsRetryable}, newTestLogger())

	_, err := newTestDetector(time.January).Scan(context.Background(), source, retryer, []string{"a", "b", "c", "d", "e", "f"}, newTestLogger())
	if !errors.Is(err, apiclient.ErrAuthRejected) {
		t.Errorf("Expected ErrAuthRejected, got %v", err)
	}
	if len(source.chunks) != 1 {
		t.Errorf("Expected to stop after the first chunk, got %d calls", len(source.chunks))
	}
}
