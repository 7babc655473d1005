// Package trend collects trending keywords per category, dedups them across
// categories and optionally re-ranks them by absolute search volume.
package trend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/drivers/datalab"
	"github.com/navid-fn/sourcing-radar/internal/faulttolerance"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	PageSize = 20
	MaxPages = 10

	dedupScope = "keyword"
)

// RankingSource returns one page of a category's keyword ranking.
type RankingSource interface {
	FetchPage(ctx context.Context, cid string, page, count int) ([]datalab.RankedKeyword, error)
}

// VolumeSource returns a keyword's monthly search volume.
type VolumeSource interface {
	MonthlyVolume(ctx context.Context, keyword string) (int, error)
}

type Collector struct {
	ranking RankingSource
	volume  VolumeSource
	retryer *faulttolerance.Retryer
	workers int
	logger  *logrus.Logger
}

// NewCollector builds a collector. volume may be nil, in which case ranks
// stay category-relative and no volume is attached.
func NewCollector(ranking RankingSource, volume VolumeSource, retryer *faulttolerance.Retryer, workers int, logger *logrus.Logger) *Collector {
	if workers <= 0 {
		workers = 1
	}
	return &Collector{
		ranking: ranking,
		volume:  volume,
		retryer: retryer,
		workers: workers,
		logger:  logger,
	}
}

// Collect gathers up to perCategoryLimit keywords per category. A keyword
// belongs to the first category it appears in. A terminal ranking error
// aborts collection; any other category failure only skips that category.
func (c *Collector) Collect(ctx context.Context, categories []configs.Category, perCategoryLimit int) ([]models.KeywordCandidate, error) {
	seen := crawler.NewSeenTracker()
	var out []models.KeywordCandidate

	for _, category := range categories {
		ranked, err := c.fetchCategory(ctx, category, perCategoryLimit)
		if err != nil {
			if apiclient.IsTerminal(err) || ctx.Err() != nil {
				return out, fmt.Errorf("collect %s: %w", category.Name, err)
			}
			c.logger.Warnf("Skipping category %s: %v", category.Name, err)
		}

		added := 0
		for _, r := range ranked {
			text := crawler.NormalizeKey(r.Keyword)
			if utf8.RuneCountInString(text) <= 1 {
				continue
			}
			if !seen.MarkSeen(dedupScope, text) {
				continue
			}
			out = append(out, models.KeywordCandidate{
				Text:       text,
				Category:   category.Name,
				Rank:       r.Rank,
				RankChange: r.RankChange,
			})
			added++
		}
		c.logger.Infof("Category %s: %d ranked, %d new keywords", category.Name, len(ranked), added)
	}

	if c.volume == nil || len(out) == 0 {
		return out, nil
	}

	enriched, err := c.enrich(ctx, out)
	if err != nil {
		if ctx.Err() != nil {
			return out, err
		}
		c.logger.Warnf("Volume enrichment aborted, keeping category ranks: %v", err)
		return out, nil
	}
	return Rerank(enriched), nil
}

// fetchCategory pages until the limit, a short page, or MaxPages. Pages
// fetched before a failure are returned alongside the error.
func (c *Collector) fetchCategory(ctx context.Context, category configs.Category, limit int) ([]datalab.RankedKeyword, error) {
	var ranked []datalab.RankedKeyword
	for page := 1; page <= MaxPages && len(ranked) < limit; page++ {
		var batch []datalab.RankedKeyword
		err := c.retryer.Execute(ctx, func(ctx context.Context) error {
			var err error
			batch, err = c.ranking.FetchPage(ctx, category.CID, page, PageSize)
			return err
		})
		if err != nil {
			return ranked, err
		}

		ranked = append(ranked, batch...)
		if len(batch) < PageSize {
			break
		}
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// enrich attaches search volume with a bounded pool. Each worker writes
// only its own index. A keyword whose lookup keeps failing stays without
// volume; a terminal error stops the whole enrichment.
func (c *Collector) enrich(ctx context.Context, keywords []models.KeywordCandidate) ([]models.KeywordCandidate, error) {
	result := make([]models.KeywordCandidate, len(keywords))
	copy(result, keywords)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range result {
		g.Go(func() error {
			var volume int
			err := c.retryer.Execute(gctx, func(ctx context.Context) error {
				var err error
				volume, err = c.volume.MonthlyVolume(ctx, result[i].Text)
				return err
			})
			switch {
			case err == nil:
				result[i].SearchVolume = models.IntPtr(volume)
			case apiclient.IsTerminal(err), errors.Is(err, context.Canceled):
				return err
			default:
				c.logger.Warnf("No volume for %q: %v", result[i].Text, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Rerank orders keywords by descending volume and assigns dense ranks 1..N.
// Ties and keywords without volume keep their collection order.
func Rerank(keywords []models.KeywordCandidate) []models.KeywordCandidate {
	ranked := make([]models.KeywordCandidate, len(keywords))
	copy(ranked, keywords)

	volumeOf := func(k models.KeywordCandidate) int {
		if k.SearchVolume == nil {
			return -1
		}
		return *k.SearchVolume
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return volumeOf(ranked[i]) > volumeOf(ranked[j])
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
