// Package gateway submits normalized records to the salary write API,
// the actual persistence authority. One POST per record, no batching,
// no retries: a failed record is logged and dropped from the accepted
// count, and the caller treats a short count as partial failure.
package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/models"
)

// SalaryMirror lets the gateway record accepted rows locally so the
// duplication oracle can see them on later runs. The write API's own
// store is not queryable from here.
type SalaryMirror interface {
	InsertSalary(ctx context.Context, record models.SalaryRecord) error
}

// createSalaryRequest is the write API's expected shape. Scraped data
// has no classification of its own, so every row goes in as a
// full-time entry; internship-only fields are always sent empty.
type createSalaryRequest struct {
	Company           string `json:"company"`
	Role              string `json:"role"`
	Location          string `json:"location"`
	YearsOfExperience string `json:"yearsOfExperience"`
	BaseSalary        string `json:"baseSalary"`
	Bonus             string `json:"bonus"`
	StockCompensation string `json:"stockCompensation"`
	TotalCompensation string `json:"totalCompensation"`
	Type              string `json:"type"`
	EmploymentType    string `json:"employmentType"`
	Duration          string `json:"duration"`
	Stipend           string `json:"stipend"`
	University        string `json:"university"`
	Year              string `json:"year"`
}

type Gateway struct {
	client  *resty.Client
	baseURL string
	mirror  SalaryMirror
	logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, mirror SalaryMirror, logger *zap.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &Gateway{
		client:  client,
		baseURL: baseURL,
		mirror:  mirror,
		logger:  logger,
	}
}

// Submit posts each record and returns how many the API accepted with
// HTTP 201. Anything else is logged with the offending record and
// skipped; the batch never pauses or backs off.
func (g *Gateway) Submit(ctx context.Context, records []models.SalaryRecord) int {
	if len(records) == 0 {
		return 0
	}

	processed := 0
	for _, record := range records {
		payload := toRequest(record)

		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(payload).
			Post(g.baseURL + "/api/salaries")
		if err != nil {
			g.logger.Error("error inserting salary via API",
				zap.Error(err),
				zap.Any("record", record))
			continue
		}

		if resp.StatusCode() != http.StatusCreated {
			g.logger.Error("failed to POST salary to API",
				zap.Int("status", resp.StatusCode()),
				zap.String("body", resp.String()),
				zap.Any("record", record))
			continue
		}

		processed++

		if g.mirror != nil {
			if err := g.mirror.InsertSalary(ctx, record); err != nil {
				g.logger.Warn("failed to mirror accepted salary record",
					zap.String("company", record.CompanyName),
					zap.String("designation", record.Designation),
					zap.Error(err))
			}
		}
	}

	g.logger.Info("processed salary records via API",
		zap.Int("accepted", processed),
		zap.Int("submitted", len(records)))
	return processed
}

func toRequest(record models.SalaryRecord) createSalaryRequest {
	return createSalaryRequest{
		Company:           record.CompanyName,
		Role:              record.Designation,
		Location:          record.Location,
		YearsOfExperience: yearsString(record.YearsOfExperience),
		BaseSalary:        amountString(record.BaseSalary),
		Bonus:             amountString(record.Bonus),
		StockCompensation: amountString(record.StockCompensation),
		TotalCompensation: amountString(record.TotalCompensation),
		Type:              "fulltime",
		EmploymentType:    "Full-time",
	}
}

// amountString keeps the historical wire behavior: zero amounts go out
// as empty strings, not "0".
func amountString(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yearsString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
