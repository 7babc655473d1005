package service

import (
	"context"
	"strings"

	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/report"
	"github.com/navid-fn/sourcing-radar/internal/storage"
	dbmodels "github.com/navid-fn/sourcing-radar/internal/storage/models"
)

const (
	DefaultDecisionLimit = 20
	MaxDecisionLimit     = 200
)

type SourcingService struct {
	store     storage.Storage
	loginPath string
}

// NewSourcingService reads results from store and the login status from
// the exchange file at loginPath.
func NewSourcingService(store storage.Storage, loginPath string) *SourcingService {
	return &SourcingService{
		store:     store,
		loginPath: loginPath,
	}
}

func (s *SourcingService) LatestDecisions(ctx context.Context, limit int) ([]dbmodels.Decision, error) {
	if limit <= 0 {
		limit = DefaultDecisionLimit
	}
	limit = min(limit, MaxDecisionLimit)
	return s.store.LatestDecisions(ctx, limit)
}

// Keywords returns the latest stored state of each requested keyword.
func (s *SourcingService) Keywords(ctx context.Context, keywords []string) ([]dbmodels.Product, error) {
	return s.store.LatestByKeywords(ctx, keywords)
}

func (s *SourcingService) Seasonal(ctx context.Context) ([]dbmodels.SeasonalPattern, error) {
	return s.store.SeasonalPatterns(ctx)
}

func (s *SourcingService) LoginStatus() (models.LoginStatus, error) {
	return report.ReadLoginStatus(s.loginPath)
}

// SplitKeywords parses a comma-separated query value, dropping blanks.
func SplitKeywords(raw string) []string {
	var out []string
	for _, kw := range strings.Split(raw, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
