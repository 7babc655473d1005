package competition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/drivers/coupang"
	"github.com/navid-fn/sourcing-radar/internal/faulttolerance"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestRetryer() *faulttolerance.Retryer {
	return faulttolerance.NewRetryer(faulttolerance.RetryConfig{
		MaxAttempts: 2,
		Delay:       time.Millisecond,
		IsRetryable: apiclient.IsRetryable,
	}, newTestLogger())
}

func products(ids ...string) []models.RawProduct {
	out := make([]models.RawProduct, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.RawProduct{ID: id, Name: "상품 " + id, Price: 10000, HasPrice: true})
	}
	return out
}

type scriptedSearcher struct {
	responses [][]models.RawProduct
	errs      []error
	calls     int
}

func (s *scriptedSearcher) Search(ctx context.Context, keyword string, limit int, pr *coupang.PriceRange) ([]models.RawProduct, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return nil, nil
}

type fakeVisual struct {
	result coupang.VisualResult
	err    error
	calls  int
}

func (f *fakeVisual) Check(ctx context.Context, keyword string) (coupang.VisualResult, error) {
	f.calls++
	return f.result, f.err
}

func TestMergeIsIdempotent(t *testing.T) {
	batch := products("1", "2", "3")

	once := NewMerged()
	once.Add(batch)

	twice := NewMerged()
	twice.Add(batch)
	twice.Add(batch)

	if once.Len() != twice.Len() {
		t.Errorf("Expected %d after double merge, got %d", once.Len(), twice.Len())
	}
}

func TestMergeAccumulatesDistinctItems(t *testing.T) {
	m := NewMerged()
	m.Add(products("1", "2"))
	added := m.Add(products("2", "3", "4"))

	if added != 2 {
		t.Errorf("Expected 2 new items, got %d", added)
	}
	if m.Len() != 4 {
		t.Errorf("Expected 4 merged items, got %d", m.Len())
	}
}

func TestSummarize(t *testing.T) {
	items := []models.RawProduct{
		{ID: "1", Price: 10000, HasPrice: true, FastDelivery: true, Reviews: 300},
		{ID: "2", Price: 70000, HasPrice: true, Reviews: 100},
		{ID: "3", FastDelivery: true, Reviews: 200},
	}

	s := Summarize("선풍기", items)

	if s.SampleSize != 3 || s.FastDeliveryCount != 2 {
		t.Errorf("Expected 3 products and 2 fast-delivery, got %d and %d", s.SampleSize, s.FastDeliveryCount)
	}
	if s.PriceMin != 10000 || s.PriceMax != 70000 || s.PriceAvg != 40000 {
		t.Errorf("Unexpected price stats %d/%d/%v", s.PriceMin, s.PriceMax, s.PriceAvg)
	}
	if s.MaxReviews != 300 || s.AvgReviews != 200 {
		t.Errorf("Unexpected review stats %d/%v", s.MaxReviews, s.AvgReviews)
	}
	if s.Confidence != models.ConfidenceInsufficient {
		t.Errorf("Expected insufficient confidence, got %s", s.Confidence)
	}
	// 100 - 2*5 - 2*10 + 10
	if s.OpportunityScore != 80 {
		t.Errorf("Expected opportunity 80, got %d", s.OpportunityScore)
	}
}

func TestSummarizeWithoutPrices(t *testing.T) {
	s := Summarize("x", []models.RawProduct{{ID: "1"}, {ID: "2"}})
	if s.PriceMin != 0 || s.PriceMax != 0 || s.PriceAvg != 0 {
		t.Errorf("Expected zero price stats, got %d/%d/%v", s.PriceMin, s.PriceMax, s.PriceAvg)
	}
}

func TestOpportunityScoreClamped(t *testing.T) {
	tests := []struct {
		name   string
		sample models.CompetitionSample
		want   int
	}{
		{"open market", models.CompetitionSample{PriceMin: 1000, PriceMax: 90000}, 100},
		{"crowded", models.CompetitionSample{FastDeliveryCount: 30}, 0},
		{"reviews", models.CompetitionSample{FastDeliveryCount: 1, AvgReviews: 250}, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OpportunityScore(tt.sample); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAnalyzeMergesCalls(t *testing.T) {
	searcher := &scriptedSearcher{responses: [][]models.RawProduct{
		products("1", "2"), products("2", "3"), products("3", "4"),
	}}
	searcher.responses[0][0].FastDelivery = true

	a := NewAnalyzer(searcher, nil, newTestRetryer(), Config{CallsPerKeyword: 3, ProductsPerCall: 2}, newTestLogger())
	s, err := a.Analyze(context.Background(), "선풍기")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if searcher.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", searcher.calls)
	}
	if s.SampleSize != 4 {
		t.Errorf("Expected 4 merged products, got %d", s.SampleSize)
	}
	if s.NeedsVerification() {
		t.Errorf("Expected no verification, got %s", s.Verification)
	}
}

func TestAnalyzeSkipsFailedCalls(t *testing.T) {
	transient := apiclient.NewError(apiclient.KindTransientNetwork, "fake", 503, nil, errors.New("down"))
	searcher := &scriptedSearcher{
		responses: [][]models.RawProduct{nil, nil, products("1")},
		errs:      []error{transient, transient},
	}

	a := NewAnalyzer(searcher, nil, newTestRetryer(), Config{CallsPerKeyword: 2}, newTestLogger())
	s, err := a.Analyze(context.Background(), "선풍기")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.SampleSize != 1 {
		t.Errorf("Expected 1 product after retry, got %d", s.SampleSize)
	}
}

func TestAnalyzeAuthFailureIsTerminal(t *testing.T) {
	auth := apiclient.NewError(apiclient.KindAuthRejected, "fake", 401, nil, errors.New("bad signature"))
	searcher := &scriptedSearcher{errs: []error{auth, auth, auth}}

	a := NewAnalyzer(searcher, nil, newTestRetryer(), Config{CallsPerKeyword: 3}, newTestLogger())
	_, err := a.Analyze(context.Background(), "선풍기")
	if !errors.Is(err, apiclient.ErrAuthRejected) {
		t.Errorf("Expected ErrAuthRejected, got %v", err)
	}
	if searcher.calls != 1 {
		t.Errorf("Expected a single call, got %d", searcher.calls)
	}
}

func TestAnalyzeVerificationPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		visual     *fakeVisual
		wantCount  int
		wantReason models.VerificationReason
	}{
		{"no visual", nil, 0, models.VerificationZeroCompetitors},
		{"visual finds sellers", &fakeVisual{result: coupang.VisualResult{FastDeliveryCount: 7}}, 7, models.VerificationNone},
		{"visual finds none", &fakeVisual{}, 0, models.VerificationZeroCompetitors},
		{"visual blocked", &fakeVisual{err: apiclient.BlockedError("fake", fmt.Errorf("denied"))}, 0, models.VerificationVisualFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &scriptedSearcher{responses: [][]models.RawProduct{products("1", "2")}}
			var visual VisualVerifier
			if tt.visual != nil {
				visual = tt.visual
			}

			a := NewAnalyzer(searcher, visual, newTestRetryer(), Config{CallsPerKeyword: 1}, newTestLogger())
			s, err := a.Analyze(context.Background(), "선풍기")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if s.FastDeliveryCount != tt.wantCount {
				t.Errorf("Expected count %d, got %d", tt.wantCount, s.FastDeliveryCount)
			}
			if s.Verification != tt.wantReason {
				t.Errorf("Expected reason %q, got %q", tt.wantReason, s.Verification)
			}
			if tt.wantCount == 7 && s.Grade() != models.GradeA {
				t.Errorf("Expected regrade to A, got %s", s.Grade())
			}
		})
	}
}
