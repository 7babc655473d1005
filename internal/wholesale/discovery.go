// Package wholesale finds the cheapest acceptable wholesale listing for a
// keyword across the wholesale sites, one search at a time.
package wholesale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/navid-fn/sourcing-radar/internal/apiclient"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/faulttolerance"
	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/scraper"
	"github.com/sirupsen/logrus"
)

// Source is one wholesale site.
type Source interface {
	Name() models.WholesaleSource
	BaseURL() string
	Search(ctx context.Context, keyword string) ([]models.RawListing, error)
}

// Authenticator is implemented by sources that support member login.
type Authenticator interface {
	Login(ctx context.Context) error
}

// stageOrder ranks how far a listing got before it was dropped.
var stageOrder = map[models.RejectionStage]int{
	models.StageRelevance:    1,
	models.StagePriceBand:    2,
	models.StageBulkShipping: 3,
}

// blockedSearchesToTrip consecutive blocked keyword searches take a source
// out of the run. Transient failures only cost the keyword they hit.
const blockedSearchesToTrip = 3

func isBlocked(err error) bool {
	return errors.Is(err, apiclient.ErrSourceBlocked)
}

type Discovery struct {
	sources  []Source
	filter   *Filter
	breakers map[models.WholesaleSource]*faulttolerance.CircuitBreaker
	retryer  *faulttolerance.Retryer
	delay    *crawler.RandomDelay
	logger   *logrus.Logger
	now      func() time.Time

	searched bool
}

// NewDiscovery wires the sources in priority order. Sources share one
// browser page, so Discovery must not be used concurrently.
func NewDiscovery(sources []Source, filter *Filter, retryer *faulttolerance.Retryer, delay *crawler.RandomDelay, logger *logrus.Logger) *Discovery {
	breakers := make(map[models.WholesaleSource]*faulttolerance.CircuitBreaker, len(sources))
	for _, s := range sources {
		breakers[s.Name()] = faulttolerance.NewCircuitBreaker(faulttolerance.CircuitBreakerConfig{
			MaxFailures: blockedSearchesToTrip,
			Cooldown:    10 * time.Minute,
			Name:        string(s.Name()),
			IsFailure:   isBlocked,
		}, logger)
	}
	return &Discovery{
		sources:  sources,
		filter:   filter,
		breakers: breakers,
		retryer:  retryer,
		delay:    delay,
		logger:   logger,
		now:      time.Now,
	}
}

// Login signs in to every source that supports it. A source without
// credentials or with rejected credentials is reported false; searching
// continues with guest pricing.
func (d *Discovery) Login(ctx context.Context) models.LoginStatus {
	status := models.LoginStatus{
		Sources:   make(map[models.WholesaleSource]bool, len(d.sources)),
		CheckedAt: d.now(),
	}
	for _, s := range d.sources {
		auth, ok := s.(Authenticator)
		if !ok {
			status.Sources[s.Name()] = false
			continue
		}
		err := auth.Login(ctx)
		switch {
		case err == nil:
			status.Sources[s.Name()] = true
		case errors.Is(err, apiclient.ErrConfigMissing):
			d.logger.Infof("[%s] no credentials, searching as guest", s.Name())
			status.Sources[s.Name()] = false
		default:
			d.logger.Warnf("[%s] login failed: %v", s.Name(), err)
			status.Sources[s.Name()] = false
		}
	}
	return status
}

// Discover returns the cheapest listing that passes every filter stage, or
// the rejection explaining why none did. The error is only set when ctx ends.
func (d *Discovery) Discover(ctx context.Context, keyword string, retail int) (*models.WholesaleCandidate, *models.Rejection, error) {
	var best *models.WholesaleCandidate
	furthest := models.RejectionStage("")
	scraped := 0
	blocked := 0

	for _, source := range d.sources {
		listings, err := d.search(ctx, source, keyword)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			if errors.Is(err, apiclient.ErrSourceBlocked) || errors.Is(err, faulttolerance.ErrCircuitBreakerOpen) {
				blocked++
			}
			d.logger.Warnf("[%s] %q: %v", source.Name(), keyword, err)
			continue
		}

		for _, listing := range listings {
			scraped++
			if stage := d.filter.Evaluate(keyword, retail, listing); stage != "" {
				if stageOrder[stage] > stageOrder[furthest] {
					furthest = stage
				}
				d.logger.Debugf("[%s] %q dropped at %s: %s (%d)", source.Name(), keyword, stage, listing.Name, listing.Price)
				continue
			}
			if best == nil || listing.Price < best.Price {
				best = &models.WholesaleCandidate{
					Keyword: keyword,
					Source:  source.Name(),
					Name:    listing.Name,
					Price:   listing.Price,
					URL:     resolveLink(source, listing.URL),
				}
			}
		}
	}

	if best != nil {
		d.logger.Infof("[%s] %q: %s at %d", best.Source, keyword, best.Name, best.Price)
		return best, nil, nil
	}

	rejection := &models.Rejection{Keyword: keyword, Verify: blocked > 0}
	switch {
	case scraped == 0 && blocked > 0:
		rejection.Stage = models.StageSourceBlocked
		rejection.Detail = fmt.Sprintf("%d of %d sources blocked; verify manually", blocked, len(d.sources))
	case scraped == 0:
		rejection.Stage = models.StageNoListings
	default:
		rejection.Stage = furthest
		rejection.Detail = fmt.Sprintf("%d listings, retail %d", scraped, retail)
		if blocked > 0 {
			rejection.Detail += fmt.Sprintf("; %d of %d sources blocked, verify manually", blocked, len(d.sources))
		}
	}
	d.logger.Infof("%q rejected at %s", keyword, rejection.Stage)
	return nil, rejection, nil
}

// search paces, retries and breaker-guards one source search.
func (d *Discovery) search(ctx context.Context, source Source, keyword string) ([]models.RawListing, error) {
	if d.searched {
		if err := d.delay.Sleep(ctx); err != nil {
			return nil, err
		}
	}
	d.searched = true

	var listings []models.RawListing
	err := d.retryer.ExecuteWithCircuitBreaker(ctx, d.breakers[source.Name()], func(ctx context.Context) error {
		var err error
		listings, err = source.Search(ctx, keyword)
		return err
	})
	return listings, err
}

// resolveLink makes a relative link absolute against the winning source.
func resolveLink(source Source, link string) string {
	if link == "" {
		return source.BaseURL()
	}
	return scraper.ResolveURL(source.BaseURL(), link)
}
