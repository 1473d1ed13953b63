// Package migrate imports legacy JSON salary exports through the same
// write path the scraper uses. Migrated rows carry the "manual" source
// platform and are deduplicated against what is already stored, so
// running the same file twice is a no-op.
package migrate

import (
	"context"
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/apperrors"
	"github.com/saswatsam786/raise.info/internal/models"
	"github.com/saswatsam786/raise.info/internal/normalize"
)

// LegacyRecord is one row of the old export format.
type LegacyRecord struct {
	CompanyName       string   `json:"company_name"`
	Designation       string   `json:"designation"`
	Location          string   `json:"location"`
	AvgSalary         float64  `json:"avg_salary"`
	MinSalary         *float64 `json:"min_salary"`
	MaxSalary         *float64 `json:"max_salary"`
	YearsOfExperience *float64 `json:"yoe"`
	Reports           int      `json:"reports"`
}

type CompanyStore interface {
	GetOrCreateCompany(ctx context.Context, name string) (models.Company, error)
}

type DupOracle interface {
	RecordExists(ctx context.Context, companyName, designation, location, sourcePlatform string) bool
}

type Submitter interface {
	Submit(ctx context.Context, records []models.SalaryRecord) int
}

// Summary is the outcome of one migration run.
type Summary struct {
	Total    int
	Migrated int
	Skipped  int
	Errors   int
}

type Migrator struct {
	store   CompanyStore
	oracle  DupOracle
	gateway Submitter
	logger  *zap.Logger
}

func New(store CompanyStore, oracle DupOracle, gateway Submitter, logger *zap.Logger) *Migrator {
	return &Migrator{store: store, oracle: oracle, gateway: gateway, logger: logger}
}

// LoadRecords reads the legacy export file. A missing or corrupt file
// aborts the whole migration; there is no point processing a partial
// parse.
func LoadRecords(path string) ([]LegacyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Config("reading legacy export "+path, err)
	}

	var records []LegacyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.Config("parsing legacy export "+path, err)
	}
	return records, nil
}

// Run pushes every legacy record through normalization, dedup and the
// write API. Records without a company name are skipped; per-record
// failures count as errors and never stop the run.
func (m *Migrator) Run(ctx context.Context, records []LegacyRecord) Summary {
	summary := Summary{Total: len(records)}

	for i, legacy := range records {
		if legacy.CompanyName == "" {
			m.logger.Warn("skipping legacy record without company name", zap.Int("index", i))
			summary.Skipped++
			continue
		}

		company, err := m.store.GetOrCreateCompany(ctx, legacy.CompanyName)
		if err != nil {
			m.logger.Error("failed to resolve company for legacy record",
				zap.String("company", legacy.CompanyName),
				zap.Error(err))
			summary.Errors++
			continue
		}

		designation := legacy.Designation
		if designation == "" {
			designation = "Unknown"
		}
		location := legacy.Location
		if location == "" {
			location = models.DefaultCountry
		}

		if m.oracle.RecordExists(ctx, company.Name, designation, location, models.SourceManual) {
			summary.Skipped++
			continue
		}

		extra := map[string]interface{}{}
		if legacy.MinSalary != nil {
			extra["min_salary"] = *legacy.MinSalary
		}
		if legacy.MaxSalary != nil {
			extra["max_salary"] = *legacy.MaxSalary
		}

		record := normalize.Record(normalize.Input{
			CompanyID:      company.ID,
			CompanyName:    company.Name,
			Designation:    designation,
			Location:       location,
			SourcePlatform: models.SourceManual,
			Compensation: normalize.Compensation{
				Base:              legacy.AvgSalary,
				TotalCompensation: legacy.AvgSalary,
			},
			YearsOfExperience: legacy.YearsOfExperience,
			DataPoints:        legacy.Reports,
			Extra:             extra,
		})

		if m.gateway.Submit(ctx, []models.SalaryRecord{record}) == 1 {
			summary.Migrated++
		} else {
			summary.Errors++
		}

		if (i+1)%10 == 0 {
			m.logger.Info("migration progress",
				zap.Int("processed", i+1),
				zap.Int("total", summary.Total))
		}
	}

	m.logger.Info("migration finished",
		zap.Int("total", summary.Total),
		zap.Int("migrated", summary.Migrated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors))
	return summary
}
