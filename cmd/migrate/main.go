package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/config"
	"github.com/saswatsam786/raise.info/internal/db"
	"github.com/saswatsam786/raise.info/internal/gateway"
	"github.com/saswatsam786/raise.info/internal/migrate"
	"github.com/saswatsam786/raise.info/internal/oracle"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to scraper configuration")
	inputPath := flag.String("input", "legacy_salaries.json", "legacy JSON export to migrate")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	records, err := migrate.LoadRecords(*inputPath)
	if err != nil {
		logger.Fatal("failed to load legacy export", zap.Error(err))
	}

	ctx := context.Background()

	store, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close(ctx)

	gw := gateway.New(cfg.WriteAPIURL, cfg.WriteTimeout(), store, logger)
	migrator := migrate.New(store, oracle.New(store, logger), gw, logger)

	start := time.Now()
	summary := migrator.Run(ctx, records)

	pterm.DefaultSection.Println("Migration Summary")
	rows := pterm.TableData{
		{"Total", humanize.Comma(int64(summary.Total))},
		{"Migrated", humanize.Comma(int64(summary.Migrated))},
		{"Skipped", humanize.Comma(int64(summary.Skipped))},
		{"Errors", humanize.Comma(int64(summary.Errors))},
	}
	if err := pterm.DefaultTable.WithData(rows).Render(); err != nil {
		fmt.Println(rows)
	}
	pterm.Info.Printfln("Finished in %s", time.Since(start).Round(time.Second))

	if summary.Errors > 0 {
		os.Exit(1)
	}
}
