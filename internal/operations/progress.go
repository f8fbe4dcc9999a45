package operations

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker counts processed sheets of one run
type ProgressTracker struct {
	RunID     string
	Total     int
	Current   int
	StartTime time.Time
	mu        sync.Mutex
	now       func() time.Time
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(runID string, total int) *ProgressTracker {
	return &ProgressTracker{
		RunID:     runID,
		Total:     total,
		StartTime: time.Now(),
		now:       time.Now,
	}
}

// Update builds a progress update for step without advancing.
func (p *ProgressTracker) Update(step, sheet, message string) ProgressUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.update(step, sheet, message)
}

// Increment advances by one sheet and returns the resulting update.
func (p *ProgressTracker) Increment(step, sheet, message string) ProgressUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Current < p.Total {
		p.Current++
	}
	return p.update(step, sheet, message)
}

func (p *ProgressTracker) update(step, sheet, message string) ProgressUpdate {
	return ProgressUpdate{
		RunID:      p.RunID,
		Step:       step,
		Sheet:      sheet,
		Current:    p.Current,
		Total:      p.Total,
		Percentage: p.percentage(),
		Message:    message,
		ETA:        p.eta(),
	}
}

func (p *ProgressTracker) percentage() float64 {
	if p.Total <= 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total) * 100
}

// eta calculates the estimated time remaining
func (p *ProgressTracker) eta() string {
	if p.Current == 0 || p.Total == 0 {
		return "calculating..."
	}

	elapsed := p.now().Sub(p.StartTime)
	rate := float64(p.Current) / elapsed.Seconds()
	if rate <= 0 || elapsed <= 0 {
		return "calculating..."
	}

	remaining := float64(p.Total-p.Current) / rate

	if remaining < 60 {
		return fmt.Sprintf("%.0f seconds", remaining)
	} else if remaining < 3600 {
		return fmt.Sprintf("%.1f minutes", remaining/60)
	}
	return fmt.Sprintf("%.1f hours", remaining/3600)
}

// IsComplete returns true if every sheet has been processed
func (p *ProgressTracker) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.Current >= p.Total
}

// GetElapsedTime returns the elapsed time since start
func (p *ProgressTracker) GetElapsedTime() time.Duration {
	return p.now().Sub(p.StartTime)
}
