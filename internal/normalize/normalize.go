// Package normalize converts source-specific compensation tuples into
// the canonical salary-record shape. Pure functions only: no I/O.
package normalize

import (
	"time"

	"github.com/saswatsam786/raise.info/internal/models"
)

// Compensation carries the raw figures a source reported. Missing
// components stay zero; they are never an error.
type Compensation struct {
	Base              float64
	Bonus             float64
	Stock             float64
	TotalCompensation float64
}

// Input is one source entry plus its metadata.
type Input struct {
	CompanyID         string
	CompanyName       string
	Designation       string
	Location          string
	SourcePlatform    string
	SourceURL         string
	Compensation      Compensation
	YearsOfExperience *float64
	Level             string
	DataPoints        int

	// Extra fields are merged into the record verbatim. Keys that
	// collide with canonical field names are dropped silently;
	// downstream consumers depend on this first-write-wins behavior.
	Extra map[string]interface{}
}

// canonicalFields are the wire names of the canonical shape. Extra keys
// matching one of these never override the normalized value.
var canonicalFields = map[string]struct{}{
	"company_id":          {},
	"company_name":        {},
	"designation":         {},
	"level":               {},
	"location":            {},
	"years_of_experience": {},
	"base_salary":         {},
	"bonus":               {},
	"stock_compensation":  {},
	"total_compensation":  {},
	"avg_salary":          {},
	"data_points_count":   {},
	"source_platform":     {},
	"source_url":          {},
	"currency":            {},
	"country":             {},
	"data_date":           {},
	"scraped_at":          {},
}

// Record builds a SalaryRecord from one source entry. The total is the
// explicit figure when the source supplied a non-zero one, otherwise the
// sum of base, bonus and stock. AvgSalary always mirrors the total.
func Record(in Input) models.SalaryRecord {
	total := in.Compensation.TotalCompensation
	if total == 0 {
		total = in.Compensation.Base + in.Compensation.Bonus + in.Compensation.Stock
	}

	dataPoints := in.DataPoints
	if dataPoints == 0 {
		dataPoints = 1
	}

	now := time.Now().UTC()

	rec := models.SalaryRecord{
		CompanyID:         in.CompanyID,
		CompanyName:       in.CompanyName,
		Designation:       in.Designation,
		Level:             in.Level,
		Location:          in.Location,
		YearsOfExperience: in.YearsOfExperience,
		BaseSalary:        in.Compensation.Base,
		Bonus:             in.Compensation.Bonus,
		StockCompensation: in.Compensation.Stock,
		TotalCompensation: total,
		AvgSalary:         total,
		DataPointsCount:   dataPoints,
		SourcePlatform:    in.SourcePlatform,
		SourceURL:         in.SourceURL,
		Currency:          models.DefaultCurrency,
		Country:           models.DefaultCountry,
		DataDate:          now.Format("2006-01-02"),
		ScrapedAt:         now,
	}

	if len(in.Extra) > 0 {
		rec.Extra = make(map[string]interface{}, len(in.Extra))
		for key, value := range in.Extra {
			if _, taken := canonicalFields[key]; taken {
				continue
			}
			rec.Extra[key] = value
		}
		if len(rec.Extra) == 0 {
			rec.Extra = nil
		}
	}

	return rec
}
