package report

import (
	"time"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/narrative"
)

// Table captions of the quantitative section.
const (
	CaptionDollarVariance  = "Ranked Expense Category Dollar Variance"
	CaptionPercentVariance = "Ranked Expense Category Percent Variance"
	CaptionFlow            = "Revenue and Expense Flow"
)

// Failure is a sheet that could not be processed.
type Failure struct {
	Sheet string `json:"sheet"`
	Error string `json:"error"`
}

// Report is everything a rendered report shows.
type Report struct {
	Title       string    `json:"title"`
	RunID       string    `json:"run_id"`
	Workbook    string    `json:"workbook"`
	GeneratedAt time.Time `json:"generated_at"`

	Narrative *narrative.Narrative `json:"narrative,omitempty"`

	PercentVariance []analysis.RankedRow `json:"percent_variance"`
	DollarVariance  []analysis.RankedRow `json:"dollar_variance"`
	Flow            *analysis.Flow       `json:"flow,omitempty"`

	Failures []Failure `json:"failures,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Summary returns the narrative's synthesis, or "" without a narrative.
func (r *Report) Summary() string {
	if r.Narrative == nil {
		return ""
	}
	return r.Narrative.Summary
}
