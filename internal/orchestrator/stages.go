package orchestrator

import (
	"context"
	"fmt"

	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/report"
	"golang.org/x/sync/errgroup"
)

// WholesaleResult is the output of discovery plus margin evaluation.
type WholesaleResult struct {
	Decisions  []models.SourcingDecision
	Rejections []models.Rejection
	Login      *models.LoginStatus
}

// RunTrend collects trending keywords and writes the keyword file.
func (o *Orchestrator) RunTrend(ctx context.Context) ([]models.KeywordCandidate, error) {
	if o.c.Trend == nil {
		o.logger.Warn("Skipping trend stage: ranking source not configured")
		return nil, ErrStageSkipped
	}

	keywords, err := o.c.Trend.Collect(ctx, o.cfg.Categories, o.cfg.PerCategoryLimit)
	if len(keywords) > 0 {
		o.writeFile(report.KeywordsFile, func(path string) error {
			return report.WriteKeywords(path, keywords)
		})
	}
	o.logger.Infof("Trend stage: %d keywords", len(keywords))
	return keywords, err
}

// RunCompetition samples the marketplace for every keyword with a bounded
// worker pool. It returns the analyzed keywords in input order and the
// keywords that produced no sample. A terminal error aborts the stage and
// is returned alongside the keywords analyzed before it.
func (o *Orchestrator) RunCompetition(ctx context.Context, keywords []models.KeywordCandidate) ([]models.AnalyzedKeyword, []string, error) {
	if o.c.Competition == nil {
		o.logger.Warn("Skipping competition stage: marketplace credentials missing")
		return nil, textsOf(keywords), ErrStageSkipped
	}

	results := make([]*models.AnalyzedKeyword, len(keywords))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, k := range keywords {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			sample, err := o.c.Competition.Analyze(gctx, k.Text)
			if err != nil {
				if apiclient.IsTerminal(err) {
					return fmt.Errorf("competition aborted at %q: %w", k.Text, err)
				}
				o.logger.Warnf("[%s] no competition data: %v", k.Text, err)
				return nil
			}
			results[i] = &models.AnalyzedKeyword{
				Keyword:     k,
				Sample:      sample,
				Reliability: ReliabilityScore(k, sample),
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	var analyzed []models.AnalyzedKeyword
	var failed []string
	for i, r := range results {
		if r == nil {
			failed = append(failed, keywords[i].Text)
			continue
		}
		analyzed = append(analyzed, *r)
	}

	if len(analyzed) > 0 {
		o.writeFile(report.CompetitionFile, func(path string) error {
			return report.WriteCompetition(path, analyzed)
		})
		o.persistCompetition(ctx, analyzed)
	}
	o.logger.Infof("Competition stage: %d analyzed, %d without data", len(analyzed), len(failed))
	return analyzed, failed, err
}

// limitKeywords splits keywords at the configured cap. The tail is not
// sampled for competition.
func (o *Orchestrator) limitKeywords(keywords []models.KeywordCandidate) ([]models.KeywordCandidate, []string) {
	if o.cfg.KeywordLimit <= 0 || len(keywords) <= o.cfg.KeywordLimit {
		return keywords, nil
	}
	return keywords[:o.cfg.KeywordLimit], textsOf(keywords[o.cfg.KeywordLimit:])
}

// RunWholesale gates analyzed keywords, discovers wholesale listings for
// the survivors and evaluates margins. trail carries rejections recorded
// by earlier stages; every analyzed keyword ends up either in the
// decisions or exactly once in the returned rejections.
func (o *Orchestrator) RunWholesale(ctx context.Context, analyzed []models.AnalyzedKeyword, trail []models.Rejection) (*WholesaleResult, error) {
	result := &WholesaleResult{Rejections: append([]models.Rejection(nil), trail...)}
	if o.c.Wholesale == nil || o.c.Margin == nil {
		o.logger.Warn("Skipping wholesale stage: no wholesale source configured")
		o.writeRejections(result.Rejections)
		return result, ErrStageSkipped
	}

	login := o.c.Wholesale.Login(ctx)
	result.Login = &login
	o.writeFile(report.LoginStatusFile, func(path string) error {
		return report.WriteLoginStatus(path, login)
	})

	for _, a := range analyzed {
		kw := a.Keyword.Text
		if reason := gate(a.Sample); reason != "" {
			result.Rejections = append(result.Rejections, models.Rejection{Keyword: kw, Stage: models.StageGradeGate, Detail: reason})
			continue
		}

		retail := a.Sample.RetailPrice()
		candidate, rejection, err := o.c.Wholesale.Discover(ctx, kw, retail)
		if err != nil {
			o.finishWholesale(ctx, result)
			return result, err
		}
		if rejection != nil {
			result.Rejections = append(result.Rejections, *rejection)
			continue
		}

		decision, ok := o.c.Margin.Decide(*candidate, retail, a.Keyword.SearchVolume)
		if !ok {
			b := o.c.Margin.Compute(retail, candidate.Price)
			result.Rejections = append(result.Rejections, models.Rejection{
				Keyword: kw,
				Stage:   models.StageMargin,
				Detail:  fmt.Sprintf("net margin %s below target", b.NetMarginRatio.Round(4)),
			})
			continue
		}
		o.logger.Infof("[%s] sourcing decision: %s net %s (%s%%)", kw, decision.Source, decision.NetProfit, decision.NetMarginPct())
		result.Decisions = append(result.Decisions, decision)
	}

	o.finishWholesale(ctx, result)
	return result, nil
}

// finishWholesale writes, persists and publishes whatever the stage produced.
func (o *Orchestrator) finishWholesale(ctx context.Context, result *WholesaleResult) {
	o.writeFile(report.DecisionsFile, func(path string) error {
		return report.WriteDecisions(path, result.Decisions)
	})
	o.writeRejections(result.Rejections)
	o.persistDecisions(ctx, result.Decisions)

	if len(result.Decisions) > 0 {
		if err := o.c.Publisher.Publish(ctx, o.runID, result.Decisions); err != nil {
			o.logger.Warnf("Publishing decisions failed: %v", err)
		}
	}
	o.logger.Infof("Wholesale stage: %d decisions, %d rejections", len(result.Decisions), len(result.Rejections))
}

func (o *Orchestrator) writeRejections(rejections []models.Rejection) {
	o.writeFile(report.RejectionsFile, func(path string) error {
		return report.WriteRejections(path, rejections)
	})
}

// RunSeasonal scans monthly series for recurring peaks.
func (o *Orchestrator) RunSeasonal(ctx context.Context, keywords []string) ([]models.SeasonalPattern, error) {
	if o.c.Seasonal == nil {
		o.logger.Warn("Skipping seasonal stage: trend API credentials missing")
		return nil, ErrStageSkipped
	}
	if len(keywords) == 0 {
		return nil, nil
	}

	patterns, err := o.c.Seasonal.Scan(ctx, keywords)
	o.writeFile(report.SeasonalFile, func(path string) error {
		return report.WriteSeasonal(path, patterns)
	})
	o.persistSeasonal(ctx, patterns)
	o.logger.Infof("Seasonal stage: %d patterns from %d keywords", len(patterns), len(keywords))
	return patterns, err
}

// RunLogin checks every wholesale login and writes the status file.
func (o *Orchestrator) RunLogin(ctx context.Context) (*models.LoginStatus, error) {
	if o.c.Wholesale == nil {
		return nil, ErrStageSkipped
	}
	status := o.c.Wholesale.Login(ctx)
	o.writeFile(report.LoginStatusFile, func(path string) error {
		return report.WriteLoginStatus(path, status)
	})
	return &status, nil
}

// gate returns why a sample may not enter discovery, or "".
func gate(s models.CompetitionSample) string {
	if !s.Grade().Sourceable() {
		return fmt.Sprintf("grade %s", s.Grade())
	}
	if s.PriceAvg <= 0 {
		return "no retail price"
	}
	return ""
}

func (o *Orchestrator) writeFile(name string, write func(path string) error) {
	path := o.path(name)
	if err := write(path); err != nil {
		o.logger.Errorf("Failed to write %s: %v", path, err)
		return
	}
	o.logger.Debugf("Wrote %s", path)
}

func textsOf(keywords []models.KeywordCandidate) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = k.Text
	}
	return out
}
