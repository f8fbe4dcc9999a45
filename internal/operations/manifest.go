package operations

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
)

// VarianceOutcome records the ranked variance files of a run.
type VarianceOutcome struct {
	Sheet         string `json:"sheet"`
	PercentColumn string `json:"percent_column,omitempty"`
	DollarColumn  string `json:"dollar_column,omitempty"`
	PercentFile   string `json:"percent_file,omitempty"`
	DollarFile    string `json:"dollar_file,omitempty"`
	Rows          int    `json:"rows"`
	Error         string `json:"error,omitempty"`
}

// RunReport is the outcome of one pipeline run. It is persisted as
// processed/manifest.json and returned to the CLI and HTTP callers.
type RunReport struct {
	RunID      string                   `json:"run_id"`
	TraceID    string                   `json:"trace_id,omitempty"`
	Workbook   string                   `json:"workbook"`
	Status     RunStatus                `json:"status"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at"`
	Duration   string                   `json:"duration"`
	Sheets     []SheetOutcome           `json:"sheets"`
	Warnings   []dataprocessing.Warning `json:"warnings"`
	Variance   *VarianceOutcome         `json:"variance,omitempty"`
	Error      *OperationError          `json:"error,omitempty"`
}

// Outcome returns the outcome of sheet.
func (r *RunReport) Outcome(sheet string) (SheetOutcome, bool) {
	for _, o := range r.Sheets {
		if o.Sheet == sheet {
			return o, true
		}
	}
	return SheetOutcome{}, false
}

// Written lists the sheets that produced a table, in registry order.
func (r *RunReport) Written() []string {
	var out []string
	for _, o := range r.Sheets {
		if !o.Failed() {
			out = append(out, o.Sheet)
		}
	}
	return out
}

// Failures returns the outcomes of sheets without a table.
func (r *RunReport) Failures() []SheetOutcome {
	var out []SheetOutcome
	for _, o := range r.Sheets {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Summary is a one-line description of the run.
func (r *RunReport) Summary() string {
	return fmt.Sprintf("%d of %d sheets written, %d warnings", len(r.Written()), len(r.Sheets), len(r.Warnings))
}

// finish settles the status from the sheet outcomes.
func (r *RunReport) finish(now time.Time) {
	r.FinishedAt = now
	r.Duration = now.Sub(r.StartedAt).String()

	written := len(r.Written())
	switch {
	case r.Error != nil || written == 0:
		r.Status = RunStatusFailed
	case written < len(r.Sheets):
		r.Status = RunStatusPartial
	default:
		r.Status = RunStatusCompleted
	}
}

// SaveManifest writes the report to dir/manifest.json.
func SaveManifest(dir string, report *RunReport) error {
	if err := exporter.WriteJSON(filepath.Join(dir, exporter.ManifestFile), report); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the report persisted in dir.
func LoadManifest(dir string) (*RunReport, error) {
	var report RunReport
	if err := exporter.ReadJSON(filepath.Join(dir, exporter.ManifestFile), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
