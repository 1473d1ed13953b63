// Package oracle answers the two questions that keep the batch
// idempotent: "should we fetch this (company, source) pair again?" and
// "does this exact record already exist?". Both answers fail open on
// storage errors so a degraded database never silently skips work.
package oracle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/models"
)

// DefaultFreshnessWindow is the minimum gap between successful scrapes
// of the same (company, source) pair: one week.
const DefaultFreshnessWindow = 168 * time.Hour

// HistoryStore is the slice of the database the oracle needs.
type HistoryStore interface {
	LatestSuccessfulAttempt(ctx context.Context, companyName, sourcePlatform string) (*models.ScrapeAttempt, error)
	SalaryExists(ctx context.Context, companyName, designation, location, sourcePlatform string) (bool, error)
}

type Oracle struct {
	store  HistoryStore
	logger *zap.Logger
}

func New(store HistoryStore, logger *zap.Logger) *Oracle {
	return &Oracle{store: store, logger: logger}
}

// ShouldScrape reports whether the (company, source) pair is due for a
// re-fetch. Eligible when no successful attempt exists, or when at
// least window has elapsed since the last one completed (a tie counts
// as eligible). Lookup errors allow the scrape.
func (o *Oracle) ShouldScrape(ctx context.Context, companyName, sourcePlatform string, window time.Duration) bool {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}

	attempt, err := o.store.LatestSuccessfulAttempt(ctx, companyName, sourcePlatform)
	if err != nil {
		o.logger.Error("checking recent scrape failed, allowing scrape",
			zap.String("company", companyName),
			zap.String("source", sourcePlatform),
			zap.Error(err))
		return true
	}
	if attempt == nil || attempt.CompletedAt == nil {
		return true
	}

	elapsed := time.Since(*attempt.CompletedAt)
	if elapsed < window {
		o.logger.Info("skipping recently scraped pair",
			zap.String("company", companyName),
			zap.String("source", sourcePlatform),
			zap.Duration("elapsed", elapsed))
		return false
	}
	return true
}

// RecordExists checks for an exact, case-sensitive match on the
// (company, designation, location, source) tuple. Lookup errors report
// "does not exist" so a degraded store re-inserts rather than skips.
func (o *Oracle) RecordExists(ctx context.Context, companyName, designation, location, sourcePlatform string) bool {
	exists, err := o.store.SalaryExists(ctx, companyName, designation, location, sourcePlatform)
	if err != nil {
		o.logger.Error("checking salary existence failed, assuming missing",
			zap.String("company", companyName),
			zap.String("designation", designation),
			zap.Error(err))
		return false
	}
	return exists
}
