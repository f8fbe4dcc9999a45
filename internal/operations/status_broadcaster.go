package operations

import (
	"log/slog"
	"sync"
	"time"
)

// RunSnapshot is the latest known state of a run, as sent to the frontend.
type RunSnapshot struct {
	RunID       string     `json:"run_id"`
	Status      RunStatus  `json:"status"`
	Progress    int        `json:"progress"` // 0-100
	Step        string     `json:"step,omitempty"`
	Sheet       string     `json:"sheet,omitempty"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (s *RunSnapshot) terminal() bool {
	return s.Status != RunStatusRunning
}

// StatusBroadcaster keeps a snapshot per run and pushes every change to the
// hub. It implements Reporter.
type StatusBroadcaster struct {
	mu     sync.RWMutex
	runs   map[string]*RunSnapshot
	hub    WebSocketHub
	logger *slog.Logger
	now    func() time.Time
}

// NewStatusBroadcaster creates a new status broadcaster. A nil hub only
// records snapshots.
func NewStatusBroadcaster(hub WebSocketHub, logger *slog.Logger) *StatusBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusBroadcaster{
		runs:   make(map[string]*RunSnapshot),
		hub:    hub,
		logger: logger.With(slog.String("component", "status_broadcaster")),
		now:    time.Now,
	}
}

func (sb *StatusBroadcaster) update(runID, eventType string, fn func(*RunSnapshot)) {
	sb.mu.Lock()
	now := sb.now()
	snapshot, ok := sb.runs[runID]
	if !ok {
		snapshot = &RunSnapshot{RunID: runID, Status: RunStatusRunning, StartedAt: now}
		sb.runs[runID] = snapshot
	}
	fn(snapshot)
	snapshot.UpdatedAt = now
	if snapshot.terminal() && snapshot.CompletedAt == nil {
		snapshot.CompletedAt = &now
	}
	out := *snapshot
	sb.mu.Unlock()

	if sb.hub == nil {
		return
	}
	sb.logger.Debug("broadcasting run snapshot",
		slog.String("run_id", runID),
		slog.String("status", string(out.Status)),
		slog.Int("progress", out.Progress))
	sb.hub.BroadcastUpdate(eventType, out.Step, string(out.Status), out)
}

// Progress records a per-sheet update.
func (sb *StatusBroadcaster) Progress(u ProgressUpdate) {
	sb.update(u.RunID, EventTypeRunProgress, func(s *RunSnapshot) {
		// regressions from late events are ignored
		if p := int(u.Percentage); p > s.Progress {
			s.Progress = p
		}
		s.Step, s.Sheet, s.Message = u.Step, u.Sheet, u.Message
	})
}

// Complete marks a run finished with its final status.
func (sb *StatusBroadcaster) Complete(report *RunReport) {
	sb.update(report.RunID, EventTypeRunComplete, func(s *RunSnapshot) {
		s.Status = report.Status
		s.Progress = 100
		s.Step, s.Sheet = "", ""
		s.Message = report.Summary()
	})
}

// Failed marks a run aborted.
func (sb *StatusBroadcaster) Failed(runID string, err error) {
	sb.update(runID, EventTypeRunError, func(s *RunSnapshot) {
		s.Status = RunStatusFailed
		s.Error = err.Error()
	})
}

// GetSnapshot returns a copy of the run's snapshot.
func (sb *StatusBroadcaster) GetSnapshot(runID string) (*RunSnapshot, bool) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	snapshot, ok := sb.runs[runID]
	if !ok {
		return nil, false
	}
	out := *snapshot
	return &out, true
}

// CleanupOldRuns drops finished runs older than maxAge.
func (sb *StatusBroadcaster) CleanupOldRuns(maxAge time.Duration) int {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	now, removed := sb.now(), 0
	for id, s := range sb.runs {
		if s.CompletedAt != nil && now.Sub(*s.CompletedAt) > maxAge {
			delete(sb.runs, id)
			removed++
		}
	}
	return removed
}
