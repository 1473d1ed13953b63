package scraper

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/apperrors"
	"github.com/saswatsam786/raise.info/internal/dump"
	"github.com/saswatsam786/raise.info/internal/fetch"
	"github.com/saswatsam786/raise.info/internal/models"
	"github.com/saswatsam786/raise.info/internal/normalize"
)

const SourceWeekday = "weekday"

// Weekday quotes compensation in lakhs of INR per annum; every figure
// is multiplied by lakhINR. The site only publishes a single total per
// entry, so base carries the same figure.
type weekdaySalaryData struct {
	Roles []weekdayRole `json:"roles"`
}

type weekdayRole struct {
	Role               string          `json:"role"`
	IndividualSalaries []weekdaySalary `json:"individualSalaries"`
}

type weekdaySalary struct {
	Role              string   `json:"role"`
	Salary            float64  `json:"salary"`
	YearsOfExperience *float64 `json:"yearsOfExperience"`
}

type Weekday struct {
	fetcher     *fetch.Fetcher
	urlTemplate string
	dumps       *dump.Writer
	logger      *zap.Logger
}

func NewWeekday(fetcher *fetch.Fetcher, urlTemplate string, dumps *dump.Writer, logger *zap.Logger) *Weekday {
	return &Weekday{fetcher: fetcher, urlTemplate: urlTemplate, dumps: dumps, logger: logger}
}

func (w *Weekday) Source() string { return SourceWeekday }

func (w *Weekday) Extract(ctx context.Context, company models.Company) ([]models.SalaryRecord, error) {
	url := sourceURL(w.urlTemplate, company.Name)
	w.logger.Info("scraping source",
		zap.String("source", SourceWeekday),
		zap.String("company", company.Name),
		zap.String("url", url))

	doc, err := w.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}

	raw, err := fetch.NextData(doc)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Props struct {
			PageProps struct {
				SalaryData weekdaySalaryData `json:"salaryData"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.Transport("decoding __NEXT_DATA__", err)
	}

	var records []models.SalaryRecord
	for _, role := range payload.Props.PageProps.SalaryData.Roles {
		roleName := role.Role
		if roleName == "" {
			roleName = "Unknown Role"
		}

		for _, salary := range role.IndividualSalaries {
			designation := salary.Role
			if designation == "" {
				designation = roleName
			}

			totalComp := salary.Salary * lakhINR

			records = append(records, normalize.Record(normalize.Input{
				CompanyID:      company.ID,
				CompanyName:    company.Name,
				Designation:    designation,
				Location:       models.DefaultCountry, // Weekday doesn't always specify location
				SourcePlatform: SourceWeekday,
				SourceURL:      url,
				Compensation: normalize.Compensation{
					Base:              totalComp,
					TotalCompensation: totalComp,
				},
				YearsOfExperience: salary.YearsOfExperience,
				Extra: map[string]interface{}{
					"role_category": roleName,
				},
			}))
		}
	}

	w.dumps.Save(company.Name, SourceWeekday, raw, records)
	return records, nil
}
