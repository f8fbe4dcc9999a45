package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	apperrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/files"
	"github.com/hdmquan/logos-living-capital/internal/operations"
)

// RunSummary is one entry of the run listing.
type RunSummary struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Workbook  string               `json:"workbook,omitempty"`
	Status    operations.RunStatus `json:"status,omitempty"`
	Written   int                  `json:"sheets_written"`
	Failed    int                  `json:"sheets_failed"`
	Warnings  int                  `json:"warnings"`
}

// RunService processes uploads and reads runs back.
type RunService struct {
	files    *files.Manager
	pipeline *operations.Pipeline
	logger   *slog.Logger
}

// NewRunService creates a run service.
func NewRunService(fm *files.Manager, pipeline *operations.Pipeline, logger *slog.Logger) *RunService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunService{
		files:    fm,
		pipeline: pipeline,
		logger:   logger.With(slog.String("service", "runs")),
	}
}

// Pipeline returns the pipeline runs are processed with.
func (s *RunService) Pipeline() *operations.Pipeline {
	return s.pipeline
}

// Process stores content as a new run and runs the pipeline over it. A run
// whose sheets partly failed is returned without error; the report tells
// which sheets failed.
func (s *RunService) Process(ctx context.Context, name string, content io.Reader) (*operations.RunReport, error) {
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return nil, apperrors.NewAppValidationError(ErrNotWorkbook.Error())
	}

	run, err := s.files.CreateRun(name, content)
	if err != nil {
		if errors.Is(err, files.ErrInvalidName) {
			return nil, apperrors.NewAppValidationError(err.Error())
		}
		return nil, apperrors.NewStorageError("failed to create run", err)
	}

	s.logger.InfoContext(ctx, "Processing upload",
		slog.String("run_id", run.ID),
		slog.String("file", name))

	return s.pipeline.Run(ctx, run)
}

// Open returns the run with id.
func (s *RunService) Open(id string) (*files.Run, error) {
	return s.files.OpenRun(id)
}

// Get returns the persisted report of run id.
func (s *RunService) Get(ctx context.Context, id string) (*operations.RunReport, error) {
	run, err := s.files.OpenRun(id)
	if err != nil {
		return nil, err
	}
	return s.manifest(run)
}

func (s *RunService) manifest(run *files.Run) (*operations.RunReport, error) {
	report, err := operations.LoadManifest(run.ProcessedDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotProcessed, run.ID)
		}
		return nil, apperrors.NewStorageError("failed to read manifest", err)
	}
	return report, nil
}

// List summarises every run, newest first. Runs without a manifest are
// listed with an empty status.
func (s *RunService) List(ctx context.Context) ([]RunSummary, error) {
	runs, err := s.files.ListRuns()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list runs", err)
	}

	out := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summary := RunSummary{ID: run.ID, CreatedAt: run.CreatedAt}

		report, err := s.manifest(run)
		switch {
		case err == nil:
			summary.Workbook = report.Workbook
			summary.Status = report.Status
			summary.Written = len(report.Written())
			summary.Failed = len(report.Failures())
			summary.Warnings = len(report.Warnings)
		case !errors.Is(err, ErrRunNotProcessed):
			s.logger.WarnContext(ctx, "Run manifest unreadable",
				slog.String("run_id", run.ID),
				slog.String("error", err.Error()))
		}
		out = append(out, summary)
	}
	return out, nil
}

// Store returns the table store of run id.
func (s *RunService) Store(id string) (*exporter.Store, error) {
	run, err := s.files.OpenRun(id)
	if err != nil {
		return nil, err
	}
	return exporter.NewStore(run.ProcessedDir()), nil
}

// Table reads one persisted table of run id.
func (s *RunService) Table(ctx context.Context, id, sheet string) (*dataprocessing.Table, error) {
	store, err := s.Store(id)
	if err != nil {
		return nil, err
	}
	return store.Table(sheet)
}

// Variance reads the ranked variance views of run id.
func (s *RunService) Variance(ctx context.Context, id string) (*analysis.VarianceResult, error) {
	run, err := s.files.OpenRun(id)
	if err != nil {
		return nil, err
	}
	report, err := s.manifest(run)
	if err != nil {
		return nil, err
	}
	if report.Variance == nil || report.Variance.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoVariance, id)
	}

	byPercent, err := exporter.ReadRanked(run.ProcessedPath(exporter.VariancePercentFile))
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read percent variance", err)
	}
	byDollar, err := exporter.ReadRanked(run.ProcessedPath(exporter.VarianceDollarFile))
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read dollar variance", err)
	}

	return &analysis.VarianceResult{
		PercentColumn: report.Variance.PercentColumn,
		DollarColumn:  report.Variance.DollarColumn,
		ByPercent:     byPercent,
		ByDollar:      byDollar,
	}, nil
}
