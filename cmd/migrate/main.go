package main

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/ClickHouse/clickhouse-go/v2" // ClickHouse driver
	"github.com/navid-fn/sourcing-radar/configs"
	"github.com/navid-fn/sourcing-radar/internal/crawler"
	"github.com/navid-fn/sourcing-radar/internal/migrations"
)

func main() {
	cfg, err := configs.AppLoad()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := crawler.NewLoggerWithLevel(cfg.LogLevel)

	// Connect using native ClickHouse driver
	db, err := sql.Open("clickhouse", cfg.DBDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	logger.Info("Running database migrations...")
	if err := migrations.Up(db); err != nil {
		logger.Fatalf("Goose migration failed: %v", err)
	}

	logger.Info("Migrations completed successfully")
}
