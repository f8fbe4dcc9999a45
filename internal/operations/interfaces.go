package operations

// WebSocketHub interface for sending WebSocket messages
type WebSocketHub interface {
	BroadcastUpdate(eventType, step, status string, metadata interface{})
}

// Reporter receives pipeline progress. Implementations must not block.
type Reporter interface {
	Progress(update ProgressUpdate)
	Complete(report *RunReport)
	Failed(runID string, err error)
}

type nopReporter struct{}

func (nopReporter) Progress(ProgressUpdate) {}

func (nopReporter) Complete(*RunReport) {}

func (nopReporter) Failed(string, error) {}
