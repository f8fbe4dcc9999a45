package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/operations"
)

// SnapshotSource returns the live state of a run.
type SnapshotSource interface {
	GetSnapshot(runID string) (*operations.RunSnapshot, bool)
}

// ProgressHandler serves the last progress event of runs processed by this
// instance, for clients that poll instead of holding a WebSocket open.
type ProgressHandler struct {
	source       SnapshotSource
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewProgressHandler creates a progress handler
func NewProgressHandler(source SnapshotSource, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ProgressHandler {
	return &ProgressHandler{
		source:       source,
		logger:       logger.With(slog.String("component", "progress_handler")),
		errorHandler: errorHandler,
	}
}

// Get handles GET /api/v1/progress/{runID}
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.source.GetSnapshot(chi.URLParam(r, "runID"))
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.ErrRunNotFound)
		return
	}
	render.JSON(w, r, snapshot)
}
