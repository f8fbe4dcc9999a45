package operations

import "time"

// Pipeline step identifiers
const (
	StepOpen     = "open"
	StepExtract  = "extract"
	StepProcess  = "process"
	StepWrite    = "write"
	StepVariance = "variance"
	StepManifest = "manifest"
)

// RunStatus is the overall outcome of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial"
	RunStatusFailed    RunStatus = "failed"
)

// SheetStatus is the outcome of one sheet.
type SheetStatus string

const (
	SheetStatusWritten SheetStatus = "written"
	SheetStatusFailed  SheetStatus = "failed"
)

// WebSocket event types - using frontend format
const (
	EventTypeRunProgress = "run:progress"
	EventTypeRunComplete = "run:complete"
	EventTypeRunError    = "run:error"
)

// DefaultRunTimeout bounds a single pipeline run.
const DefaultRunTimeout = 5 * time.Minute

// SheetOutcome records what happened to one registry entry.
type SheetOutcome struct {
	Sheet    string          `json:"sheet"`
	Window   string          `json:"window"`
	Policy   string          `json:"policy"`
	Status   SheetStatus     `json:"status"`
	File     string          `json:"file,omitempty"`
	Rows     int             `json:"rows"`
	Columns  int             `json:"columns"`
	Warnings int             `json:"warnings"`
	Error    *OperationError `json:"error,omitempty"`
	Duration string          `json:"duration"`
}

// Failed reports whether the sheet produced no table.
func (o SheetOutcome) Failed() bool {
	return o.Status == SheetStatusFailed
}

// ProgressUpdate represents a progress update from a Step
type ProgressUpdate struct {
	RunID      string  `json:"run_id"`
	Step       string  `json:"step"`
	Sheet      string  `json:"sheet,omitempty"`
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Message    string  `json:"message"`
	ETA        string  `json:"eta,omitempty"`
}
