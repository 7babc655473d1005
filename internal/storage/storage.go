// Package storage persists pipeline results in ClickHouse through gorm.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/navid-fn/sourcing-radar/internal/storage/models"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the persistence surface shared by the pipeline (single
// writer) and the API server (reader). Implementations must be safe for
// concurrent use.
type Storage interface {
	// UpsertProducts inserts or replaces the latest state per keyword.
	UpsertProducts(ctx context.Context, products []*models.Product) error

	// AppendMarketData adds one time-series row per competition sample.
	AppendMarketData(ctx context.Context, rows []*models.MarketData) error

	// SaveDecisions replaces the latest decision per keyword.
	SaveDecisions(ctx context.Context, decisions []*models.Decision) error

	// SaveSeasonal replaces the latest seasonal pattern per keyword.
	SaveSeasonal(ctx context.Context, patterns []*models.SeasonalPattern) error

	// LatestByKeywords returns the current product row for each known keyword.
	LatestByKeywords(ctx context.Context, keywords []string) ([]models.Product, error)

	// LatestDecisions returns up to limit decisions, best margin first.
	LatestDecisions(ctx context.Context, limit int) ([]models.Decision, error)

	// SeasonalPatterns returns every stored pattern, upcoming peaks first.
	SeasonalPatterns(ctx context.Context) ([]models.SeasonalPattern, error)

	// Close releases database connection resources.
	Close() error
}

type gormStorage struct {
	db *gorm.DB
}

// NewClickHouseStorage opens the DSN with the gorm ClickHouse driver and
// verifies connectivity with a ping.
func NewClickHouseStorage(dsn string) (Storage, error) {
	db, err := gorm.Open(clickhouse.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return NewGormStorage(db), nil
}

func NewGormStorage(db *gorm.DB) Storage {
	return &gormStorage{db: db}
}

func (s *gormStorage) UpsertProducts(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(products).Error
}

func (s *gormStorage) AppendMarketData(ctx context.Context, rows []*models.MarketData) error {
	if len(rows) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(rows).Error
}

func (s *gormStorage) SaveDecisions(ctx context.Context, decisions []*models.Decision) error {
	if len(decisions) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(decisions).Error
}

func (s *gormStorage) SaveSeasonal(ctx context.Context, patterns []*models.SeasonalPattern) error {
	if len(patterns) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(patterns).Error
}

// FINAL collapses ReplacingMergeTree duplicates that have not merged yet.
func (s *gormStorage) LatestByKeywords(ctx context.Context, keywords []string) ([]models.Product, error) {
	var products []models.Product
	if len(keywords) == 0 {
		return products, nil
	}
	err := s.db.WithContext(ctx).
		Table(models.Product{}.TableName()+" FINAL").
		Where("keyword IN ?", keywords).
		Order("rank").
		Find(&products).Error
	return products, err
}

func (s *gormStorage) LatestDecisions(ctx context.Context, limit int) ([]models.Decision, error) {
	var decisions []models.Decision
	err := s.db.WithContext(ctx).
		Table(models.Decision{}.TableName() + " FINAL").
		Order("net_margin_ratio DESC").
		Limit(limit).
		Find(&decisions).Error
	return decisions, err
}

func (s *gormStorage) SeasonalPatterns(ctx context.Context) ([]models.SeasonalPattern, error) {
	var patterns []models.SeasonalPattern
	err := s.db.WithContext(ctx).
		Table(models.SeasonalPattern{}.TableName() + " FINAL").
		Order("upcoming DESC, spike_ratio DESC").
		Find(&patterns).Error
	return patterns, err
}

func (s *gormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
