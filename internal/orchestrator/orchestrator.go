// Package orchestrator sequences the pipeline stages for one run, owns the
// per-run state and is the single writer to the store, the publisher and
// the exchange files.
package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/margin"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/publisher"
	"github.com/navid-fn/sourcing-radar/internal/report"
	"github.com/navid-fn/sourcing-radar/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrStageSkipped is returned by a standalone stage whose component is not
// configured.
var ErrStageSkipped = errors.New("stage skipped: configuration missing")

type KeywordCollector interface {
	Collect(ctx context.Context, categories []configs.Category, perCategoryLimit int) ([]models.KeywordCandidate, error)
}

type CompetitionAnalyzer interface {
	Analyze(ctx context.Context, keyword string) (models.CompetitionSample, error)
}

type WholesaleFinder interface {
	Login(ctx context.Context) models.LoginStatus
	Discover(ctx context.Context, keyword string, retail int) (*models.WholesaleCandidate, *models.Rejection, error)
}

type SeasonalScanner interface {
	Scan(ctx context.Context, keywords []string) ([]models.SeasonalPattern, error)
}

// Config holds run-level settings.
type Config struct {
	Categories       []configs.Category
	PerCategoryLimit int
	Workers          int
	OutputDir        string

	// KeywordLimit caps the keywords sampled for competition. Zero means no cap.
	KeywordLimit int
}

// Components are the stage implementations. Any of the stage fields may be
// nil, in which case that stage is skipped. Store and Publisher are optional.
type Components struct {
	Trend       KeywordCollector
	Competition CompetitionAnalyzer
	Wholesale   WholesaleFinder
	Margin      *margin.Engine
	Seasonal    SeasonalScanner
	Store       storage.Storage
	Publisher   publisher.Publisher
}

// Summary is everything one run produced.
type Summary struct {
	RunID      string
	Keywords   []models.KeywordCandidate
	Analyzed   []models.AnalyzedKeyword
	Decisions  []models.SourcingDecision
	Rejections []models.Rejection
	Seasonal   []models.SeasonalPattern
	Login      *models.LoginStatus
}

type Orchestrator struct {
	cfg    Config
	c      Components
	runID  string
	logger *logrus.Entry
	now    func() time.Time
}

func New(cfg Config, c Components, logger *logrus.Logger) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if c.Publisher == nil {
		c.Publisher = publisher.Nop{}
	}
	runID := uuid.NewString()
	return &Orchestrator{
		cfg:    cfg,
		c:      c,
		runID:  runID,
		logger: logger.WithFields(logrus.Fields{"component": "orchestrator", "run_id": runID}),
		now:    time.Now,
	}
}

func (o *Orchestrator) RunID() string {
	return o.runID
}

func (o *Orchestrator) path(name string) string {
	return filepath.Join(o.cfg.OutputDir, name)
}

// Run executes every stage in order. A stage that fails or is not
// configured degrades the inputs of the next one; only the end of ctx
// stops the run early.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := o.now()
	summary := &Summary{RunID: o.runID}
	o.logger.Info("Pipeline run started")

	keywords, err := o.RunTrend(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return summary, err
		}
		o.logger.Warnf("Trend stage: %v", err)
	}
	if len(keywords) == 0 {
		keywords = o.previousKeywords()
	}
	summary.Keywords = keywords

	sampled, overLimit := o.limitKeywords(keywords)
	analyzed, failed, err := o.RunCompetition(ctx, sampled)
	if err != nil {
		if ctx.Err() != nil {
			return summary, err
		}
		o.logger.Warnf("Competition stage: %v", err)
	}
	summary.Analyzed = analyzed

	// Keywords without competition data, and those past the keyword
	// limit, never reach discovery but still belong in the rejection trail.
	var rejections []models.Rejection
	for _, kw := range failed {
		rejections = append(rejections, models.Rejection{
			Keyword: kw,
			Stage:   models.StageGradeGate,
			Detail:  "no competition data",
		})
	}
	for _, kw := range overLimit {
		rejections = append(rejections, models.Rejection{
			Keyword: kw,
			Stage:   models.StageGradeGate,
			Detail:  "over keyword limit",
		})
	}

	result, err := o.RunWholesale(ctx, analyzed, rejections)
	if result != nil {
		summary.Decisions = result.Decisions
		summary.Rejections = result.Rejections
		summary.Login = result.Login
	}
	if err != nil {
		if ctx.Err() != nil {
			return summary, err
		}
		o.logger.Warnf("Wholesale stage: %v", err)
	}

	texts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		texts = append(texts, k.Text)
	}
	patterns, err := o.RunSeasonal(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return summary, err
		}
		o.logger.Warnf("Seasonal stage: %v", err)
	}
	summary.Seasonal = patterns

	o.logger.WithFields(logrus.Fields{
		"keywords":   len(summary.Keywords),
		"analyzed":   len(summary.Analyzed),
		"decisions":  len(summary.Decisions),
		"rejections": len(summary.Rejections),
		"seasonal":   len(summary.Seasonal),
		"elapsed":    o.now().Sub(start).Round(time.Second),
	}).Info("Pipeline run finished")
	return summary, nil
}

// previousKeywords falls back to the last exchange file when trend
// collection produced nothing.
func (o *Orchestrator) previousKeywords() []models.KeywordCandidate {
	keywords, err := report.ReadKeywords(o.path(report.KeywordsFile))
	if err != nil {
		o.logger.Debugf("No previous keyword file: %v", err)
		return nil
	}
	o.logger.Infof("Using %d keywords from previous %s", len(keywords), report.KeywordsFile)
	return keywords
}

// Close releases the store and the publisher.
func (o *Orchestrator) Close() {
	o.c.Publisher.Close()
	if o.c.Store != nil {
		if err := o.c.Store.Close(); err != nil {
			o.logger.Warnf("Error closing store: %v", err)
		}
	}
}
