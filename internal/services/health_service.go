package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ClientCounter reports connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version    string
	uploadsDir string
	hub        ClientCounter
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. hub may be nil.
func NewHealthService(version, uploadsDir string, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:    version,
		uploadsDir: uploadsDir,
		hub:        hub,
		startTime:  time.Now(),
		logger:     logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports liveness plus the state of the upload storage and the
// WebSocket hub. Status is "ok" or "degraded".
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]ServiceHealth{
			"storage": hs.checkStorage(),
		},
	}
	if hs.hub != nil {
		status.Services["websocket"] = ServiceHealth{Status: "ok"}
		status.Runtime["websocket_clients"] = hs.hub.ClientCount()
	}

	for name, s := range status.Services {
		if s.Status != "ok" {
			status.Status = "degraded"
			hs.logger.WarnContext(ctx, "HealthCheck: service unhealthy",
				slog.String("service_name", name),
				slog.String("message", s.Message))
		}
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}

func (hs *HealthService) checkStorage() ServiceHealth {
	info, err := os.Stat(hs.uploadsDir)
	switch {
	case err != nil:
		return ServiceHealth{Status: "unavailable", Message: err.Error()}
	case !info.IsDir():
		return ServiceHealth{Status: "unavailable", Message: "uploads path is not a directory"}
	default:
		return ServiceHealth{Status: "ok"}
	}
}
