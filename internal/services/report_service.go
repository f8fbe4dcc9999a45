package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/config"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/narrative"
	"github.com/hdmquan/logos-living-capital/internal/report"
)

// GeneratedReport is a rendered report and where it was written.
type GeneratedReport struct {
	Report *report.Report `json:"report"`
	Output *report.Output `json:"output"`
}

// ReportOption configures a ReportService.
type ReportOption func(*ReportService)

// WithTitle sets the report title.
func WithTitle(title string) ReportOption {
	return func(s *ReportService) {
		if title != "" {
			s.title = title
		}
	}
}

// WithReportClock replaces the clock stamping generated reports.
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) { s.now = now }
}

// ReportService composes the narrative of a run and renders its report.
type ReportService struct {
	runs     *RunService
	analyses *AnalysisService
	composer *narrative.Composer
	writer   *report.Writer
	title    string
	now      func() time.Time
	logger   *slog.Logger
}

// NewReportService creates a report service.
func NewReportService(runs *RunService, analyses *AnalysisService, composer *narrative.Composer, writer *report.Writer, logger *slog.Logger, opts ...ReportOption) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReportService{
		runs:     runs,
		analyses: analyses,
		composer: composer,
		writer:   writer,
		title:    config.DefaultReportTitle,
		now:      time.Now,
		logger:   logger.With(slog.String("service", "report")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate analyses run id, asks the model for the narrative and writes the
// HTML report, plus the PDF when withPDF is set.
func (s *ReportService) Generate(ctx context.Context, id string, withPDF bool) (*GeneratedReport, error) {
	run, err := s.runs.Open(id)
	if err != nil {
		return nil, err
	}
	manifest, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	results, err := s.analyses.Analyze(ctx, id)
	if err != nil {
		return nil, err
	}
	story, err := s.composer.Compose(ctx, results)
	if err != nil {
		return nil, err
	}
	flow, err := s.analyses.Flow(ctx, id)
	if err != nil {
		return nil, err
	}

	rep := &report.Report{
		Title:       s.title,
		RunID:       id,
		Workbook:    manifest.Workbook,
		GeneratedAt: s.now(),
		Narrative:   story,
		Flow:        flow,
	}
	if res, ok := analysis.Find(results, analysis.NameVariance); ok && res.Variance != nil {
		rep.PercentVariance = res.Variance.ByPercent
		rep.DollarVariance = res.Variance.ByDollar
	}
	for _, o := range manifest.Failures() {
		f := report.Failure{Sheet: o.Sheet}
		if o.Error != nil {
			f.Error = o.Error.Message
		}
		rep.Failures = append(rep.Failures, f)
	}
	for _, w := range manifest.Warnings {
		rep.Warnings = append(rep.Warnings, w.String())
	}

	out, err := s.writer.Write(ctx, run.ProcessedDir(), rep, withPDF)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Report generated",
		slog.String("run_id", id),
		slog.Bool("pdf", withPDF),
		slog.Int("narrative_sections", len(story.Sections)))

	return &GeneratedReport{Report: rep, Output: out}, nil
}

// File returns the path of the rendered report of run id, html or pdf.
func (s *ReportService) File(id string, pdf bool) (string, error) {
	run, err := s.runs.Open(id)
	if err != nil {
		return "", err
	}

	name := exporter.ReportHTMLFile
	if pdf {
		name = exporter.ReportPDFFile
	}
	path := run.ProcessedPath(name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	return path, nil
}
