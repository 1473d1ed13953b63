package scraper

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/apperrors"
	"github.com/saswatsam786/raise.info/internal/dump"
	"github.com/saswatsam786/raise.info/internal/fetch"
	"github.com/saswatsam786/raise.info/internal/models"
	"github.com/saswatsam786/raise.info/internal/normalize"
)

const SourceLevelsFyi = "levels_fyi"

// levels.fyi raw figures are already absolute USD; locationExchangeRate
// is the only conversion applied (USD -> INR for the India location
// pages). No unit scaling beyond the rate.
type levelsPageProps struct {
	Averages             []levelsAverage `json:"averages"`
	LocationExchangeRate *float64        `json:"locationExchangeRate"`
}

type levelsAverage struct {
	PrimaryLevelName   string          `json:"primaryLevelName"`
	SecondaryLevelName string          `json:"secondaryLevelName"`
	RawValues          levelsRawValues `json:"rawValues"`
	YearsOfExperience  *float64        `json:"yearsOfExperience"`
	Location           string          `json:"location"`
	NumDataPoints      int             `json:"numDataPoints"`
}

type levelsRawValues struct {
	Base  float64 `json:"base"`
	Bonus float64 `json:"bonus"`
	Stock float64 `json:"stock"`
	Total float64 `json:"total"`
}

type LevelsFyi struct {
	fetcher     *fetch.Fetcher
	urlTemplate string
	dumps       *dump.Writer
	logger      *zap.Logger
}

func NewLevelsFyi(fetcher *fetch.Fetcher, urlTemplate string, dumps *dump.Writer, logger *zap.Logger) *LevelsFyi {
	return &LevelsFyi{fetcher: fetcher, urlTemplate: urlTemplate, dumps: dumps, logger: logger}
}

func (l *LevelsFyi) Source() string { return SourceLevelsFyi }

func (l *LevelsFyi) Extract(ctx context.Context, company models.Company) ([]models.SalaryRecord, error) {
	url := sourceURL(l.urlTemplate, company.Name)
	l.logger.Info("scraping source",
		zap.String("source", SourceLevelsFyi),
		zap.String("company", company.Name),
		zap.String("url", url))

	doc, err := l.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}

	raw, err := fetch.NextData(doc)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Props struct {
			PageProps levelsPageProps `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.Transport("decoding __NEXT_DATA__", err)
	}
	props := payload.Props.PageProps

	exchangeRate := 1.0
	if props.LocationExchangeRate != nil {
		exchangeRate = *props.LocationExchangeRate
	}

	records := make([]models.SalaryRecord, 0, len(props.Averages))
	for _, avg := range props.Averages {
		primary := avg.PrimaryLevelName
		if primary == "" {
			primary = "Unknown"
		}
		levelName := primary
		if avg.SecondaryLevelName != "" {
			levelName = fmt.Sprintf("%s (%s)", primary, avg.SecondaryLevelName)
		}

		location := avg.Location
		if location == "" {
			location = models.DefaultCountry
		}

		records = append(records, normalize.Record(normalize.Input{
			CompanyID:      company.ID,
			CompanyName:    company.Name,
			Designation:    "Software Engineer - " + levelName,
			Location:       location,
			SourcePlatform: SourceLevelsFyi,
			SourceURL:      url,
			Compensation: normalize.Compensation{
				Base:              avg.RawValues.Base * exchangeRate,
				Bonus:             avg.RawValues.Bonus * exchangeRate,
				Stock:             avg.RawValues.Stock * exchangeRate,
				TotalCompensation: avg.RawValues.Total * exchangeRate,
			},
			YearsOfExperience: avg.YearsOfExperience,
			Level:             primary,
			DataPoints:        avg.NumDataPoints,
		}))
	}

	l.dumps.Save(company.Name, SourceLevelsFyi, raw, records)
	return records, nil
}
