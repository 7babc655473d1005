// Package competition samples the marketplace search API several times per
// keyword and turns the merged listings into competition metrics.
package competition

import (
	"context"
	"fmt"
	"sync"

	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/drivers/coupang"
	"github.com/navid-fn/sourcing-radar/internal/faulttolerance"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
)

// ProductSearcher is one marketplace search call.
type ProductSearcher interface {
	Search(ctx context.Context, keyword string, limit int, priceRange *coupang.PriceRange) ([]models.RawProduct, error)
}

// VisualVerifier recounts fast-delivery listings from the rendered page.
type VisualVerifier interface {
	Check(ctx context.Context, keyword string) (coupang.VisualResult, error)
}

type Config struct {
	CallsPerKeyword int
	ProductsPerCall int
}

type Analyzer struct {
	searcher ProductSearcher
	visual   VisualVerifier
	retryer  *faulttolerance.Retryer
	cfg      Config
	logger   *logrus.Logger

	// The browser has a single tab, so visual checks run one at a time.
	visualMu sync.Mutex
}

// NewAnalyzer builds an analyzer. visual may be nil to disable the fallback.
func NewAnalyzer(searcher ProductSearcher, visual VisualVerifier, retryer *faulttolerance.Retryer, cfg Config, logger *logrus.Logger) *Analyzer {
	if cfg.CallsPerKeyword <= 0 {
		cfg.CallsPerKeyword = 3
	}
	if cfg.ProductsPerCall <= 0 {
		cfg.ProductsPerCall = 10
	}
	return &Analyzer{
		searcher: searcher,
		visual:   visual,
		retryer:  retryer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Analyze runs the configured number of sequential searches for keyword and
// summarizes the merged result. A terminal error is returned at once; other
// failed calls are skipped, and only a keyword with no successful call at
// all yields an error.
func (a *Analyzer) Analyze(ctx context.Context, keyword string) (models.CompetitionSample, error) {
	merged := NewMerged()
	succeeded := 0
	var lastErr error

	for call := 1; call <= a.cfg.CallsPerKeyword; call++ {
		var products []models.RawProduct
		err := a.retryer.Execute(ctx, func(ctx context.Context) error {
			var err error
			products, err = a.searcher.Search(ctx, keyword, a.cfg.ProductsPerCall, nil)
			return err
		})
		if err != nil {
			if apiclient.IsTerminal(err) || ctx.Err() != nil {
				return models.CompetitionSample{}, err
			}
			a.logger.Warnf("[%s] call %d failed: %v", keyword, call, err)
			lastErr = err
			continue
		}
		succeeded++
		added := merged.Add(products)
		a.logger.Debugf("[%s] call %d: %d products, %d new", keyword, call, len(products), added)
	}

	if succeeded == 0 {
		return models.CompetitionSample{}, fmt.Errorf("no successful search for %q: %w", keyword, lastErr)
	}

	sample := Summarize(keyword, merged.Products())
	if sample.FastDeliveryCount == 0 && a.visual != nil {
		sample = a.verifyVisually(ctx, sample)
	}
	if sample.FastDeliveryCount == 0 && sample.Verification == models.VerificationNone {
		sample.Verification = models.VerificationZeroCompetitors
	}

	a.logger.Infof("[%s] %d products, %d fast-delivery, grade %s, confidence %s",
		keyword, sample.SampleSize, sample.FastDeliveryCount, sample.Grade(), sample.Confidence)
	return sample, nil
}

// verifyVisually replaces the fast-delivery count with the page count, or
// marks the sample visual_failed when the page check fails.
func (a *Analyzer) verifyVisually(ctx context.Context, sample models.CompetitionSample) models.CompetitionSample {
	a.visualMu.Lock()
	result, err := a.visual.Check(ctx, sample.Keyword)
	a.visualMu.Unlock()

	if err != nil {
		a.logger.Warnf("[%s] visual check failed: %v", sample.Keyword, err)
		sample.Verification = models.VerificationVisualFailed
		return sample
	}

	sample.FastDeliveryCount = result.FastDeliveryCount
	sample.OpportunityScore = OpportunityScore(sample)
	return sample
}
