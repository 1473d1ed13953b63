package models

import "time"

// Defaults applied to every record. All sources this tool knows about
// publish India compensation data.
const (
	DefaultCurrency = "INR"
	DefaultCountry  = "India"
)

// SourceManual tags records imported by the migration utility rather
// than scraped from a live source.
const SourceManual = "manual"

type ScrapeStatus string

const (
	StatusInProgress ScrapeStatus = "in_progress"
	StatusSuccess    ScrapeStatus = "success"
	StatusFailed     ScrapeStatus = "failed"
)

// Company is created on first reference and never deleted by this tool.
type Company struct {
	ID          string `bson:"_id"`
	Name        string `bson:"name"`
	Slug        string `bson:"slug"`
	DisplayName string `bson:"display_name"`
	IsActive    bool   `bson:"is_active"`
}

// SalaryRecord is the canonical cross-source compensation shape. One row
// may summarize several underlying observations (DataPointsCount); in
// that case AvgSalary carries the summary figure and always equals
// TotalCompensation.
type SalaryRecord struct {
	CompanyID         string    `bson:"company_id" json:"company_id"`
	CompanyName       string    `bson:"company_name" json:"company_name"`
	Designation       string    `bson:"designation" json:"designation"`
	Level             string    `bson:"level,omitempty" json:"level,omitempty"`
	Location          string    `bson:"location" json:"location"`
	YearsOfExperience *float64  `bson:"years_of_experience,omitempty" json:"years_of_experience,omitempty"`
	BaseSalary        float64   `bson:"base_salary" json:"base_salary"`
	Bonus             float64   `bson:"bonus" json:"bonus"`
	StockCompensation float64   `bson:"stock_compensation" json:"stock_compensation"`
	TotalCompensation float64   `bson:"total_compensation" json:"total_compensation"`
	AvgSalary         float64   `bson:"avg_salary" json:"avg_salary"`
	DataPointsCount   int       `bson:"data_points_count" json:"data_points_count"`
	SourcePlatform    string    `bson:"source_platform" json:"source_platform"`
	SourceURL         string    `bson:"source_url,omitempty" json:"source_url,omitempty"`
	Currency          string    `bson:"currency" json:"currency"`
	Country           string    `bson:"country" json:"country"`
	DataDate          string    `bson:"data_date" json:"data_date"`
	ScrapedAt         time.Time `bson:"scraped_at" json:"scraped_at"`

	// Extra holds caller-supplied fields that are not part of the
	// canonical shape (e.g. min_salary/max_salary on migrated rows).
	Extra map[string]interface{} `bson:"extra,omitempty" json:"extra,omitempty"`
}

// ScrapeAttempt records one (company, source) fetch. Status moves from
// in_progress to exactly one terminal state; a crash mid-fetch leaves it
// in_progress with no reconciliation.
type ScrapeAttempt struct {
	ID             string       `bson:"_id"`
	CompanyID      string       `bson:"company_id,omitempty"`
	CompanyName    string       `bson:"company_name"`
	SourcePlatform string       `bson:"source_platform"`
	Status         ScrapeStatus `bson:"status"`
	StartedAt      time.Time    `bson:"started_at"`
	CompletedAt    *time.Time   `bson:"completed_at,omitempty"`
	RecordsScraped int          `bson:"records_scraped"`
	ErrorMessage   string       `bson:"error_message,omitempty"`
}

// DataSourceState tracks when a source platform last produced data.
type DataSourceState struct {
	Name          string    `bson:"name"`
	LastScrapedAt time.Time `bson:"last_scraped_at"`
}
