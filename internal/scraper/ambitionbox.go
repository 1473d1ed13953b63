package scraper

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocolly/colly"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/apperrors"
	"github.com/saswatsam786/raise.info/internal/dump"
	"github.com/saswatsam786/raise.info/internal/fetch"
	"github.com/saswatsam786/raise.info/internal/models"
	"github.com/saswatsam786/raise.info/internal/normalize"
)

const SourceAmbitionBox = "ambitionbox"

// AmbitionBox publishes per-profile aggregates (avg/min/max CTC) in
// lakhs per annum, scaled by lakhINR like weekday. Each row summarizes
// salaryCount underlying reports.
type ambitionboxProfile struct {
	JobProfileName string   `json:"jobProfileName"`
	AvgCtc         float64  `json:"avgCtc"`
	MinCtc         float64  `json:"minCtc"`
	MaxCtc         float64  `json:"maxCtc"`
	SalaryCount    int      `json:"salaryCount"`
	MinExperience  *float64 `json:"minExperience"`
}

// AmbitionBox fetches through colly rather than the shared fetcher; the
// site is aggressive about clients without cookie handling.
type AmbitionBox struct {
	urlTemplate string
	timeout     time.Duration
	dumps       *dump.Writer
	logger      *zap.Logger
}

func NewAmbitionBox(urlTemplate string, timeout time.Duration, dumps *dump.Writer, logger *zap.Logger) *AmbitionBox {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AmbitionBox{urlTemplate: urlTemplate, timeout: timeout, dumps: dumps, logger: logger}
}

func (a *AmbitionBox) Source() string { return SourceAmbitionBox }

func (a *AmbitionBox) Extract(ctx context.Context, company models.Company) ([]models.SalaryRecord, error) {
	url := sourceURL(a.urlTemplate, company.Name)
	a.logger.Info("scraping source",
		zap.String("source", SourceAmbitionBox),
		zap.String("company", company.Name),
		zap.String("url", url))

	var raw string

	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
	)
	c.SetRequestTimeout(a.timeout)

	c.OnHTML("script#"+fetch.NextDataID, func(e *colly.HTMLElement) {
		raw = e.Text
	})

	var transportErr error
	c.OnError(func(r *colly.Response, err error) {
		transportErr = err
	})

	if err := c.Visit(url); err != nil {
		return nil, apperrors.Transport("fetching "+url, err)
	}
	if transportErr != nil {
		return nil, apperrors.Transport("fetching "+url, transportErr)
	}
	if raw == "" {
		return nil, apperrors.NoPayload("No __NEXT_DATA__ found")
	}

	var payload struct {
		Props struct {
			PageProps struct {
				SalariesData struct {
					Data []ambitionboxProfile `json:"data"`
				} `json:"salariesData"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, apperrors.Transport("decoding __NEXT_DATA__", err)
	}

	profiles := payload.Props.PageProps.SalariesData.Data
	records := make([]models.SalaryRecord, 0, len(profiles))
	for _, profile := range profiles {
		designation := profile.JobProfileName
		if designation == "" {
			designation = "Unknown"
		}

		avgComp := profile.AvgCtc * lakhINR

		records = append(records, normalize.Record(normalize.Input{
			CompanyID:      company.ID,
			CompanyName:    company.Name,
			Designation:    designation,
			Location:       models.DefaultCountry,
			SourcePlatform: SourceAmbitionBox,
			SourceURL:      url,
			Compensation: normalize.Compensation{
				Base:              avgComp,
				TotalCompensation: avgComp,
			},
			YearsOfExperience: profile.MinExperience,
			DataPoints:        profile.SalaryCount,
			Extra: map[string]interface{}{
				"min_salary": profile.MinCtc * lakhINR,
				"max_salary": profile.MaxCtc * lakhINR,
			},
		}))
	}

	a.dumps.Save(company.Name, SourceAmbitionBox, json.RawMessage(raw), records)
	return records, nil
}
