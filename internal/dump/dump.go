// Package dump writes per-company-per-source text files with the raw
// payload and the processed records. Purely diagnostic: nothing reads
// these back, and failures only warrant a log line.
package dump

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/saswatsam786/raise.info/internal/models"
)

type Writer struct {
	dir    string
	logger *zap.Logger
}

// New returns a dump writer, or nil when disabled. A nil *Writer is
// safe to call.
func New(dir string, enabled bool, logger *zap.Logger) *Writer {
	if !enabled {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("failed to create debug dump directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	return &Writer{dir: dir, logger: logger}
}

// Save writes one dump file for a (company, source) scrape.
func (w *Writer) Save(company, source string, raw interface{}, processed []models.SalaryRecord) {
	if w == nil {
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(w.dir, fmt.Sprintf("%s_%s_%s.txt", company, source, timestamp))

	var b strings.Builder
	rule := strings.Repeat("=", 80)
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Company: %s\n", company)
	fmt.Fprintf(&b, "Source: %s\n", source)
	fmt.Fprintf(&b, "Timestamp: %s\n", timestamp)
	b.WriteString(rule + "\n\n")

	b.WriteString("FULL RAW JSON DATA:\n")
	b.WriteString(strings.Repeat("-", 80) + "\n")
	rawJSON, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		fmt.Fprintf(&b, "<failed to render raw data: %v>\n", err)
	} else {
		b.Write(rawJSON)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(processed) > 0 {
		b.WriteString("PROCESSED SALARY RECORDS:\n")
		b.WriteString(strings.Repeat("-", 80) + "\n")
		for i, record := range processed {
			fmt.Fprintf(&b, "\nRecord #%d:\n", i+1)
			fmt.Fprintf(&b, "  Company: %s\n", record.CompanyName)
			fmt.Fprintf(&b, "  Role: %s\n", record.Designation)
			fmt.Fprintf(&b, "  Location: %s\n", record.Location)
			fmt.Fprintf(&b, "  Base Salary: %s\n", amount(record.BaseSalary))
			fmt.Fprintf(&b, "  Bonus: %s\n", amount(record.Bonus))
			fmt.Fprintf(&b, "  Stock: %s\n", amount(record.StockCompensation))
			fmt.Fprintf(&b, "  Total Compensation: %s\n", amount(record.TotalCompensation))
			if record.YearsOfExperience != nil {
				fmt.Fprintf(&b, "  Years of Experience: %v\n", *record.YearsOfExperience)
			}
			fmt.Fprintf(&b, "  Data Points: %d\n", record.DataPointsCount)
			fmt.Fprintf(&b, "  Source Platform: %s\n", record.SourcePlatform)
			fmt.Fprintf(&b, "  Source URL: %s\n", record.SourceURL)
		}
	}

	b.WriteString("\n" + rule + "\n")

	if err := os.WriteFile(filename, []byte(b.String()), 0o644); err != nil {
		w.logger.Warn("failed to write debug dump", zap.String("file", filename), zap.Error(err))
		return
	}
	w.logger.Info("debug data saved", zap.String("file", filename))
}

func amount(v float64) string {
	return "₹" + humanize.Commaf(v)
}
