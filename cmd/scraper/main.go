package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/app"
	"github.com/saswatsam786/raise.info/internal/config"
	"github.com/saswatsam786/raise.info/internal/db"
	"github.com/saswatsam786/raise.info/internal/dump"
	"github.com/saswatsam786/raise.info/internal/fetch"
	"github.com/saswatsam786/raise.info/internal/gateway"
	"github.com/saswatsam786/raise.info/internal/oracle"
	"github.com/saswatsam786/raise.info/internal/scraper"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to scraper configuration")
	companiesPath := flag.String("companies", "companies.json", "JSON array of company names to scrape")
	pruneDays := flag.Int("prune-days", 0, "when > 0, delete mirrored records older than this many days and exit")
	pruneCompany := flag.String("prune-company", "", "company to prune (required with -prune-days)")
	pruneSource := flag.String("prune-source", "", "source platform to prune (required with -prune-days)")
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

	ctx := context.Background()

	store, err := db.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close(ctx)

	if *pruneDays > 0 {
		if *pruneCompany == "" || *pruneSource == "" {
			logger.Fatal("-prune-days requires -prune-company and -prune-source")
		}
		deleted, err := store.DeleteOldSalaries(ctx, *pruneCompany, *pruneSource, *pruneDays)
		if err != nil {
			logger.Fatal("failed to prune old records", zap.Error(err))
		}
		logger.Info("pruned old records",
			zap.String("company", *pruneCompany),
			zap.String("source", *pruneSource),
			zap.Int64("deleted", deleted))
		return
	}

	companies, err := loadCompanies(*companiesPath)
	if err != nil {
		logger.Fatal("failed to load company list", zap.Error(err))
	}
	if len(companies) == 0 {
		logger.Fatal("company list is empty", zap.String("path", *companiesPath))
	}

	dumps := dump.New(cfg.Logic.DebugDir, cfg.Logic.DebugDumps, logger)
	fetcher := fetch.New(cfg.FetchTimeout(), cfg.Logic.RespectRobotsTxt, logger)

	var extractors []app.Extractor
	for _, source := range cfg.Sources {
		if !source.Enabled {
			continue
		}
		switch source.Name {
		case scraper.SourceLevelsFyi:
			extractors = append(extractors, scraper.NewLevelsFyi(fetcher, source.URLTemplate, dumps, logger))
		case scraper.SourceWeekday:
			extractors = append(extractors, scraper.NewWeekday(fetcher, source.URLTemplate, dumps, logger))
		case scraper.SourceAmbitionBox:
			extractors = append(extractors, scraper.NewAmbitionBox(source.URLTemplate, cfg.FetchTimeout(), dumps, logger))
		default:
			logger.Warn("unknown source in configuration, skipping", zap.String("name", source.Name))
		}
	}
	if len(extractors) == 0 {
		logger.Fatal("no enabled sources in configuration")
	}

	gw := gateway.New(cfg.WriteAPIURL, cfg.WriteTimeout(), store, logger)
	runner := app.New(store, oracle.New(store, logger), gw, extractors, cfg.FreshnessWindow(), logger)

	start := time.Now()
	bar := pb.StartNew(len(companies))
	results := runner.RunAll(ctx, companies, func() { bar.Increment() })
	bar.Finish()

	printSummary(results, time.Since(start))
}

func loadCompanies(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var companies []string
	if err := json.Unmarshal(data, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

func printSummary(results []app.CompanyResult, elapsed time.Duration) {
	rows := pterm.TableData{{"Company", "Records", "Accepted", "Skipped", "Errors"}}

	totalRecords := 0
	totalAccepted := 0
	for _, result := range results {
		records := 0
		for _, n := range result.Records {
			records += n
		}
		totalRecords += records
		totalAccepted += result.Accepted

		rows = append(rows, []string{
			result.CompanyName,
			humanize.Comma(int64(records)),
			humanize.Comma(int64(result.Accepted)),
			strconv.Itoa(len(result.Skipped)),
			strconv.Itoa(len(result.Errors)),
		})
	}

	pterm.DefaultSection.Println("Scrape Summary")
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		fmt.Println(rows)
	}
	pterm.Info.Printfln("Scraped %s records (%s accepted) across %d companies in %s",
		humanize.Comma(int64(totalRecords)),
		humanize.Comma(int64(totalAccepted)),
		len(results),
		elapsed.Round(time.Second))
}
