package orchestrator

import (
	"context"

	"github.com/navid-fn/sourcing-radar/internal/models"
	"github.com/navid-fn/sourcing-radar/internal/storage"
	dbmodels "github.com/navid-fn/sourcing-radar/internal/storage/models"
)

// Store writes never abort the run; the exchange files remain the
// authoritative output.

func (o *Orchestrator) persistCompetition(ctx context.Context, analyzed []models.AnalyzedKeyword) {
	if o.c.Store == nil {
		return
	}
	now := o.now()
	products := make([]*dbmodels.Product, 0, len(analyzed))
	rows := make([]*dbmodels.MarketData, 0, len(analyzed))
	for _, a := range analyzed {
		products = append(products, storage.NewProduct(a.Keyword, a.Sample, a.Reliability, o.runID, now))
		rows = append(rows, storage.NewMarketData(a.Sample, o.runID, now))
	}
	if err := o.c.Store.UpsertProducts(ctx, products); err != nil {
		o.logger.Errorf("Failed to upsert %d products: %v", len(products), err)
	}
	if err := o.c.Store.AppendMarketData(ctx, rows); err != nil {
		o.logger.Errorf("Failed to append market data: %v", err)
	}
}

func (o *Orchestrator) persistDecisions(ctx context.Context, decisions []models.SourcingDecision) {
	if o.c.Store == nil || len(decisions) == 0 {
		return
	}
	now := o.now()
	rows := make([]*dbmodels.Decision, 0, len(decisions))
	for _, d := range decisions {
		rows = append(rows, storage.NewDecision(d, o.runID, now))
	}
	if err := o.c.Store.SaveDecisions(ctx, rows); err != nil {
		o.logger.Errorf("Failed to save %d decisions: %v", len(rows), err)
	}
}

func (o *Orchestrator) persistSeasonal(ctx context.Context, patterns []models.SeasonalPattern) {
	if o.c.Store == nil || len(patterns) == 0 {
		return
	}
	now := o.now()
	rows := make([]*dbmodels.SeasonalPattern, 0, len(patterns))
	for _, p := range patterns {
		rows = append(rows, storage.NewSeasonalPattern(p, now))
	}
	if err := o.c.Store.SaveSeasonal(ctx, rows); err != nil {
		o.logger.Errorf("Failed to save seasonal patterns: %v", err)
	}
}
