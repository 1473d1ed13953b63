// Package scraper holds one extractor per salary-disclosure site. Each
// extractor builds the source URL for a company, fetches the page,
// digs the embedded payload out and maps every entry through the
// normalizer. Errors never propagate past the orchestrator: transport
// and missing-payload failures become failed scrape attempts.
package scraper

import (
	"context"
	"strings"

	"github.com/saswatsam786/raise.info/internal/models"
)

// Extractor is one source site.
type Extractor interface {
	Source() string
	Extract(ctx context.Context, company models.Company) ([]models.SalaryRecord, error)
}

// lakhINR converts figures quoted in lakhs (hundred-thousands of INR)
// to rupees. Weekday and AmbitionBox quote compensation in lakhs per
// annum; levels.fyi does not use this scale.
const lakhINR = 100000

// sourceURL fills the {company} placeholder with the lowercased
// company name.
func sourceURL(template, companyName string) string {
	return strings.ReplaceAll(template, "{company}", strings.ToLower(companyName))
}
