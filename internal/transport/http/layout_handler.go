package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"gopkg.in/yaml.v2"

	apierrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/registry"
)

// LayoutHandler exposes the sheet layout the pipeline runs with.
type LayoutHandler struct {
	registry     *registry.Registry
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewLayoutHandler creates a layout handler
func NewLayoutHandler(reg *registry.Registry, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *LayoutHandler {
	return &LayoutHandler{
		registry:     reg,
		logger:       logger.With(slog.String("component", "layout_handler")),
		errorHandler: errorHandler,
	}
}

// List handles GET /api/v1/layouts. ?format=yaml returns the layout in the
// file format accepted by the layout setting.
func (h *LayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	doc := h.registry.Document()

	if r.URL.Query().Get("format") == "yaml" {
		data, err := yaml.Marshal(doc)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(data)
		return
	}

	render.JSON(w, r, doc)
}
