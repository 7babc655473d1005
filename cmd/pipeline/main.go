package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/browser"
	"github.com/navid-fn/sourcing-radar/internal/competition"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/drivers/coupang"
	"github.com/navid-fn/sourcing-radar/internal/drivers/datalab"
	"github.com/navid-fn/sourcing-radar/internal/drivers/domeggook"
	"github.com/navid-fn/sourcing-radar/internal/drivers/ownerclan"
	"github.com/navid-fn/sourcing-radar/internal/drivers/searchad"
	"github.com/navid-fn/sourcing-radar/internal/faulttolerance"
	"github.com/navid-fn/sourcing-radar/internal/margin"
	"github.com/navid-fn/sourcing-radar/internal/orchestrator"
	"github.com/navid-fn/sourcing-radar/internal/publisher"
	"github.com/navid-fn/sourcing-radar/internal/report"
	"github.com/navid-fn/sourcing-radar/internal/seasonal"
	"github.com/navid-fn/sourcing-radar/internal/storage"
	"github.com/navid-fn/sourcing-radar/internal/trend"
	"github.com/navid-fn/sourcing-radar/internal/wholesale"
	"github.com/sirupsen/logrus"
)

var stages = []string{"all", "trend", "competition", "wholesale", "seasonal", "login"}

func main() {
	var (
		stage   string
		limit   int
		out     string
		timeout time.Duration
	)
	flag.StringVar(&stage, "stage", "all", "Stage to run: all, trend, competition, wholesale, seasonal, login")
	flag.IntVar(&limit, "limit", 0, "Maximum keywords sampled for competition (0 = no limit)")
	flag.StringVar(&out, "out", "", "Output directory for exchange files (default OUTPUT_DIR)")
	flag.DurationVar(&timeout, "timeout", 0, "Ceiling for the whole run (default RUN_TIMEOUT, 1h)")
	flag.Parse()

	if !validStage(stage) {
		fmt.Fprintf(os.Stderr, "Error: unknown stage %q\n", stage)
		fmt.Fprintf(os.Stderr, "Usage: %s -stage <name> [-limit N] [-out dir] [-timeout 1h]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable stages:\n")
		for _, s := range stages {
			fmt.Fprintf(os.Stderr, "  - %s\n", s)
		}
		os.Exit(1)
	}

	cfg, err := configs.AppLoad()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if out != "" {
		cfg.OutputDir = out
	}

	if timeout <= 0 {
		timeout = cfg.Pipeline.RunTimeout
	}

	logger := crawler.NewLoggerWithLevel(cfg.LogLevel)
	logger.Infof("Starting pipeline stage: %s", stage)

	err = crawler.RunWithGracefulShutdown(logger, timeout, func(ctx context.Context) error {
		p := newPipeline(cfg, stage, limit, logger)
		defer p.close()
		return p.run(ctx, stage)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("Pipeline stage %s failed: %v", stage, err)
		os.Exit(1)
	}
	logger.Info("Pipeline finished")
}

func validStage(stage string) bool {
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}

type pipeline struct {
	cfg     *configs.AppConfig
	orch    *orchestrator.Orchestrator
	session *browser.Session
	logger  *logrus.Logger
}

// needsBrowser reports whether a stage drives the browser.
func needsBrowser(cfg *configs.AppConfig, stage string) bool {
	switch stage {
	case "all", "wholesale", "login":
		return true
	case "competition":
		return cfg.Pipeline.VisualFallback
	}
	return false
}

// newPipeline wires every component whose configuration is present. A
// component that cannot be built is left nil so its stage is skipped.
func newPipeline(cfg *configs.AppConfig, stage string, limit int, logger *logrus.Logger) *pipeline {
	p := &pipeline{cfg: cfg, logger: logger}

	retryer := func(name string) *faulttolerance.Retryer {
		return faulttolerance.NewRetryer(faulttolerance.RetryConfig{
			MaxAttempts: cfg.Pipeline.RetryAttempts,
			Delay:       cfg.Pipeline.RetryDelay,
			Name:        name,
			IsRetryable: apiclient.IsRetryable,
		}, logger)
	}

	var page browser.Page
	if needsBrowser(cfg, stage) {
		session, err := browser.NewSession(browser.Options{
			Headless:  cfg.Wholesale.Headless,
			UserAgent: crawler.UserAgent,
			Locale:    "ko-KR",
			Timeout:   cfg.Wholesale.PageTimeout,
		}, logger)
		if err != nil {
			logger.Errorf("Browser unavailable, skipping browser-driven steps: %v", err)
		} else {
			p.session = session
			page = session
		}
	}

	c := orchestrator.Components{Margin: margin.NewEngine(cfg.Margin)}

	var volume trend.VolumeSource
	if cfg.SearchAd.Enabled() {
		volume = searchad.NewClient(cfg.SearchAd, crawler.DefaultHTTPConfig(searchad.BaseURL, cfg.Pipeline.RequestInterval), logger)
	} else {
		logger.Warn("Search volume enrichment disabled: NAVER_AD_* credentials missing")
	}
	ranking := datalab.NewInsightClient(crawler.DefaultHTTPConfig(datalab.InsightBaseURL, cfg.Pipeline.RequestInterval), logger)
	c.Trend = trend.NewCollector(ranking, volume, retryer("trend"), cfg.Pipeline.Workers, logger)

	if cfg.Coupang.Enabled() {
		var visual competition.VisualVerifier
		if page != nil && cfg.Pipeline.VisualFallback {
			visual = coupang.NewVisualChecker(page, cfg.Wholesale.ScreenshotDir, logger)
		}
		searcher := coupang.NewClient(cfg.Coupang, crawler.DefaultHTTPConfig(coupang.BaseURL, cfg.Pipeline.RequestInterval), logger)
		c.Competition = competition.NewAnalyzer(searcher, visual, retryer("competition"), competition.Config{
			CallsPerKeyword: cfg.Pipeline.CallsPerKeyword,
			ProductsPerCall: cfg.Pipeline.ProductsPerCall,
		}, logger)
	} else {
		logger.Warn("Competition stage disabled: COUPANG_ACCESS_KEY/COUPANG_SECRET_KEY missing")
	}

	if page != nil {
		sources := []wholesale.Source{
			domeggook.New(page, cfg.Wholesale, logger),
			ownerclan.New(page, cfg.Wholesale, logger),
		}
		c.Wholesale = wholesale.NewDiscovery(sources, wholesale.NewFilter(cfg.Vocabulary), retryer("wholesale"),
			crawler.NewRandomDelay(cfg.Wholesale.MinDelay, cfg.Wholesale.MaxDelay), logger)
	}

	if cfg.DataLab.Enabled() {
		series := datalab.NewTrendClient(cfg.DataLab, crawler.DefaultHTTPConfig(datalab.TrendBaseURL, cfg.Pipeline.RequestInterval), logger)
		c.Seasonal = seasonal.NewScanner(seasonal.NewDetector(cfg.Seasonal), series, retryer("seasonal"), logger)
	} else {
		logger.Warn("Seasonal stage disabled: NAVER_CLIENT_ID/NAVER_CLIENT_SECRET missing")
	}

	if stage != "login" {
		store, err := storage.NewClickHouseStorage(cfg.DBDSN)
		if err != nil {
			logger.Warnf("Store unavailable, writing exchange files only: %v", err)
		} else {
			c.Store = store
		}
	}

	if cfg.Kafka.Broker != "" {
		pub, err := publisher.NewKafkaPublisher(cfg.Kafka.Broker, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Warnf("Decision publishing disabled: %v", err)
		} else {
			c.Publisher = pub
		}
	}

	p.orch = orchestrator.New(orchestrator.Config{
		Categories:       cfg.Vocabulary.Categories,
		PerCategoryLimit: cfg.Pipeline.PerCategoryLimit,
		Workers:          cfg.Pipeline.Workers,
		OutputDir:        cfg.OutputDir,
		KeywordLimit:     limit,
	}, c, logger)
	return p
}

// run executes one stage. Standalone stages read their inputs from the
// exchange files of the previous stage.
func (p *pipeline) run(ctx context.Context, stage string) error {
	switch stage {
	case "all":
		_, err := p.orch.Run(ctx)
		return err

	case "trend":
		_, err := p.orch.RunTrend(ctx)
		return err

	case "competition":
		keywords, err := report.ReadKeywords(p.path(report.KeywordsFile))
		if err != nil {
			return fmt.Errorf("competition needs %s: %w", report.KeywordsFile, err)
		}
		_, _, err = p.orch.RunCompetition(ctx, keywords)
		return err

	case "wholesale":
		analyzed, err := report.ReadCompetition(p.path(report.CompetitionFile))
		if err != nil {
			return fmt.Errorf("wholesale needs %s: %w", report.CompetitionFile, err)
		}
		_, err = p.orch.RunWholesale(ctx, analyzed, nil)
		return err

	case "seasonal":
		keywords, err := report.ReadKeywords(p.path(report.KeywordsFile))
		if err != nil {
			return fmt.Errorf("seasonal needs %s: %w", report.KeywordsFile, err)
		}
		texts := make([]string, 0, len(keywords))
		for _, k := range keywords {
			texts = append(texts, k.Text)
		}
		_, err = p.orch.RunSeasonal(ctx, texts)
		return err

	case "login":
		status, err := p.orch.RunLogin(ctx)
		if err != nil {
			return err
		}
		for source, ok := range status.Sources {
			p.logger.Infof("Login %s: %v", source, ok)
		}
		return nil
	}
	return fmt.Errorf("unknown stage %q", stage)
}

func (p *pipeline) path(name string) string {
	return filepath.Join(p.cfg.OutputDir, name)
}

func (p *pipeline) close() {
	p.orch.Close()
	if p.session != nil {
		p.session.Close()
	}
}
