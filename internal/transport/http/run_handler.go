package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/files"
	customMiddleware "github.com/hdmquan/logos-living-capital/internal/middleware"
	"github.com/hdmquan/logos-living-capital/internal/services"
)

// uploadMemory is how much of a multipart upload is held in memory before
// spilling to a temporary file.
const uploadMemory = 8 << 20

// Report formats accepted by the report endpoints
const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// ReportRequest is the body of POST /runs/{runID}/report.
type ReportRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=html pdf"`
}

// ReportResponse describes a generated report.
type ReportResponse struct {
	RunID     string `json:"run_id"`
	Title     string `json:"title"`
	Format    string `json:"format"`
	HTML      string `json:"html"`
	PDF       string `json:"pdf,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Summary   string `json:"summary,omitempty"`
	Failures  int    `json:"failures"`
	Warnings  int    `json:"warnings"`
	Generated string `json:"generated_at"`
}

// RunHandler serves upload, inspection and reporting of runs.
type RunHandler struct {
	runs         *services.RunService
	analyses     *services.AnalysisService
	reports      *services.ReportService
	validator    *customMiddleware.Validator
	maxUpload    int64
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewRunHandler creates a run handler. Uploads larger than maxUpload bytes
// are rejected.
func NewRunHandler(
	runs *services.RunService,
	analyses *services.AnalysisService,
	reports *services.ReportService,
	validator *customMiddleware.Validator,
	maxUpload int64,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *RunHandler {
	return &RunHandler{
		runs:         runs,
		analyses:     analyses,
		reports:      reports,
		validator:    validator,
		maxUpload:    maxUpload,
		logger:       logger.With(slog.String("component", "run_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the run routes
func (h *RunHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Get("/", h.List)

	r.Route("/{runID}", func(r chi.Router) {
		r.Use(h.RunCtx)
		r.Get("/", h.Get)
		r.Get("/tables/{sheet}", h.Table)
		r.Get("/variance", h.Variance)
		r.Get("/analyses", h.Analyses)
		r.Post("/report", h.GenerateReport)
		r.Get("/report", h.DownloadReport)
	})

	return r
}

// RunCtx middleware validates the runID parameter
func (h *RunHandler) RunCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := files.ValidateRunID(chi.URLParam(r, "runID")); err != nil {
			h.errorHandler.HandleError(w, r, mapError(err))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *RunHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errorHandler.HandleError(w, r, mapError(err))
}

// Upload handles POST /api/v1/runs with a multipart "file" field
func (h *RunHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, err)
			return
		}
		h.fail(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, apierrors.ErrValidation("file", "a workbook must be uploaded in the file field"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	h.logger.InfoContext(r.Context(), "workbook uploaded",
		slog.String("request_id", reqID),
		slog.String("file", name),
		slog.Int64("size", header.Size),
	)

	report, err := h.runs.Process(r.Context(), name, file)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+report.RunID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, report)
}

// List handles GET /api/v1/runs
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	runs, err := h.runs.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   runs,
		"count":  len(runs),
	})
}

// Get handles GET /api/v1/runs/{runID}
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.runs.Get(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, report)
}

// Table handles GET /api/v1/runs/{runID}/tables/{sheet}. ?format=csv returns
// the persisted CSV instead of JSON.
func (h *RunHandler) Table(w http.ResponseWriter, r *http.Request) {
	sheet, err := sheetParam(r)
	if err != nil {
		h.fail(w, r, apierrors.ErrValidation("sheet", "sheet name is not a valid path segment"))
		return
	}

	table, err := h.runs.Table(r.Context(), chi.URLParam(r, "runID"), sheet)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		body, err := exporter.EncodeTable(table)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+exporter.TableFileName(table.Name)+`"`)
		_, _ = w.Write([]byte(body))
		return
	}

	render.JSON(w, r, table)
}

// sheetParam returns the decoded sheet name. chi routes on RawPath when the
// client escaped a reserved character such as "&", leaving the param escaped.
func sheetParam(r *http.Request) (string, error) {
	sheet := chi.URLParam(r, "sheet")
	if r.URL.RawPath == "" {
		return sheet, nil
	}
	return url.PathUnescape(sheet)
}

// Variance handles GET /api/v1/runs/{runID}/variance
func (h *RunHandler) Variance(w http.ResponseWriter, r *http.Request) {
	variance, err := h.runs.Variance(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, variance)
}

// Analyses handles GET /api/v1/runs/{runID}/analyses
func (h *RunHandler) Analyses(w http.ResponseWriter, r *http.Request) {
	results, err := h.analyses.Analyze(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   results,
		"count":  len(results),
	})
}

// GenerateReport handles POST /api/v1/runs/{runID}/report
func (h *RunHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := h.validator.Decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Format == "" {
		req.Format = FormatHTML
	}

	runID := chi.URLParam(r, "runID")
	generated, err := h.reports.Generate(r.Context(), runID, req.Format == FormatPDF)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rep := generated.Report
	resp := ReportResponse{
		RunID:     runID,
		Title:     rep.Title,
		Format:    req.Format,
		HTML:      generated.Output.HTML,
		PDF:       generated.Output.PDF,
		Pages:     generated.Output.Pages,
		Failures:  len(rep.Failures),
		Warnings:  len(rep.Warnings),
		Generated: rep.GeneratedAt.Format(time.RFC3339),
	}
	if rep.Narrative != nil {
		resp.Summary = rep.Narrative.Summary
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// DownloadReport handles GET /api/v1/runs/{runID}/report?format=html|pdf
func (h *RunHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "":
		format = FormatHTML
	case FormatHTML, FormatPDF:
	default:
		h.fail(w, r, apierrors.ErrValidation("format", "format must be one of: html, pdf"))
		return
	}

	path, err := h.reports.File(chi.URLParam(r, "runID"), format == FormatPDF)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if format == FormatPDF {
		w.Header().Set("Content-Type", "application/pdf")
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	http.ServeFile(w, r, path)
}
