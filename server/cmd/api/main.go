package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/migrations"
	"github.com/navid-fn/sourcing-radar/internal/report"
	"github.com/navid-fn/sourcing-radar/internal/storage"
	"github.com/navid-fn/sourcing-radar/server/internal/handler"
	"github.com/navid-fn/sourcing-radar/server/internal/router"
	"github.com/navid-fn/sourcing-radar/server/internal/service"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before serving")
	flag.Parse()

	cfg, err := configs.AppLoad()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := crawler.NewLoggerWithLevel(cfg.LogLevel)

	db, err := gorm.Open(clickhouse.Open(cfg.DBDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if *migrateFlag {
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatalf("Failed to get sql.DB: %v", err)
		}
		logger.Info("Running database migrations...")
		if err := migrations.Up(sqlDB); err != nil {
			logger.Fatalf("Goose migration failed: %v", err)
		}
	}

	store := storage.NewGormStorage(db)
	defer store.Close()

	sourcingService := service.NewSourcingService(store, filepath.Join(cfg.OutputDir, report.LoginStatusFile))
	sourcingHandler := handler.NewSourcingHandler(sourcingService, logger)

	routerConfig := &router.Config{
		SourcingHandler: sourcingHandler,
	}

	r := router.NewRouter(routerConfig)

	logger.Infof("API listening on :%s", cfg.ServerPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.ServerPort)); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
