// Package app drives a scrape batch: for each company it runs every
// configured extractor, guarded by the staleness oracle and tracked in
// scrape history. Companies are processed one at a time and a failure
// never stops the rest of the batch.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/apperrors"
	"github.com/saswatsam786/raise.info/internal/models"
)

type Extractor interface {
	Source() string
	Extract(ctx context.Context, company models.Company) ([]models.SalaryRecord, error)
}

type AttemptStore interface {
	GetOrCreateCompany(ctx context.Context, name string) (models.Company, error)
	StartAttempt(ctx context.Context, company models.Company, source string) (string, error)
	CompleteAttempt(ctx context.Context, attemptID string, status models.ScrapeStatus, records int, errorMessage string) error
	TouchDataSource(ctx context.Context, source string) error
}

type StalenessOracle interface {
	ShouldScrape(ctx context.Context, companyName, source string, window time.Duration) bool
}

type Submitter interface {
	Submit(ctx context.Context, records []models.SalaryRecord) int
}

// CompanyResult reports what a single company's run produced, keyed by
// source platform. Skipped sources are absent from Records.
type CompanyResult struct {
	CompanyName string
	Records     map[string]int
	Accepted    int
	Skipped     []string
	Errors      map[string]string
}

type App struct {
	store      AttemptStore
	oracle     StalenessOracle
	gateway    Submitter
	extractors []Extractor
	window     time.Duration
	logger     *zap.Logger
}

func New(store AttemptStore, oracle StalenessOracle, gateway Submitter, extractors []Extractor, window time.Duration, logger *zap.Logger) *App {
	return &App{
		store:      store,
		oracle:     oracle,
		gateway:    gateway,
		extractors: extractors,
		window:     window,
		logger:     logger,
	}
}

// RunForCompany scrapes one company across all extractors. The returned
// error covers company-level setup failures only; per-source failures
// land in the result's Errors map.
func (a *App) RunForCompany(ctx context.Context, name string) (CompanyResult, error) {
	result := CompanyResult{
		CompanyName: name,
		Records:     make(map[string]int),
		Errors:      make(map[string]string),
	}

	company, err := a.store.GetOrCreateCompany(ctx, name)
	if err != nil {
		return result, apperrors.Storage("failed to resolve company "+name, err)
	}

	for _, extractor := range a.extractors {
		source := extractor.Source()

		if !a.oracle.ShouldScrape(ctx, company.Name, source, a.window) {
			result.Skipped = append(result.Skipped, source)
			continue
		}

		attemptID, err := a.store.StartAttempt(ctx, company, source)
		if err != nil {
			a.logger.Error("failed to open scrape attempt",
				zap.String("company", company.Name),
				zap.String("source", source),
				zap.Error(err))
			result.Errors[source] = err.Error()
			continue
		}

		records, err := extractor.Extract(ctx, company)
		if err != nil {
			message := err.Error()
			if scrapeErr, ok := err.(*apperrors.ScrapeError); ok {
				message = scrapeErr.Message
			}
			a.completeAttempt(ctx, attemptID, models.StatusFailed, 0, message)
			result.Errors[source] = message
			a.logger.Warn("scrape attempt failed",
				zap.String("company", company.Name),
				zap.String("source", source),
				zap.String("error", message))
			continue
		}

		if len(records) == 0 {
			a.completeAttempt(ctx, attemptID, models.StatusSuccess, 0, "No salary data found")
			result.Records[source] = 0
			continue
		}

		accepted := a.gateway.Submit(ctx, records)
		a.completeAttempt(ctx, attemptID, models.StatusSuccess, accepted, "")
		result.Records[source] = len(records)
		result.Accepted += accepted

		if err := a.store.TouchDataSource(ctx, source); err != nil {
			a.logger.Warn("failed to update data source state",
				zap.String("source", source),
				zap.Error(err))
		}

		a.logger.Info("scraped company source",
			zap.String("company", company.Name),
			zap.String("source", source),
			zap.Int("records", len(records)),
			zap.Int("accepted", accepted))
	}

	return result, nil
}

// RunAll walks the company list sequentially, calling progress (when
// non-nil) after each company. A company whose setup fails is recorded
// under the "_company" key and the batch moves on.
func (a *App) RunAll(ctx context.Context, companies []string, progress func()) []CompanyResult {
	results := make([]CompanyResult, 0, len(companies))

	for _, name := range companies {
		result, err := a.RunForCompany(ctx, name)
		if err != nil {
			a.logger.Error("company run failed",
				zap.String("company", name),
				zap.Error(err))
			result.Errors["_company"] = err.Error()
		}
		results = append(results, result)
		if progress != nil {
			progress()
		}
	}

	return results
}

func (a *App) completeAttempt(ctx context.Context, attemptID string, status models.ScrapeStatus, records int, errorMessage string) {
	if err := a.store.CompleteAttempt(ctx, attemptID, status, records, errorMessage); err != nil {
		a.logger.Warn("failed to close scrape attempt",
			zap.String("attempt_id", attemptID),
			zap.Error(err))
	}
}
