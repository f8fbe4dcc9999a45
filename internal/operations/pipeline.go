package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/files"
	"github.com/hdmquan/logos-living-capital/internal/infrastructure"
	"github.com/hdmquan/logos-living-capital/internal/registry"
	"github.com/hdmquan/logos-living-capital/internal/workbook"
)

// Pipeline turns a run's raw workbook into processed tables.
type Pipeline struct {
	registry *registry.Registry
	variance analysis.VarianceOptions
	logger   *slog.Logger
	reporter Reporter
	tracer   *PipelineTracer
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// WithTracer sets the tracer used for spans and metrics.
func WithTracer(t *PipelineTracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithVarianceOptions overrides the variance ranking options.
func WithVarianceOptions(opts analysis.VarianceOptions) Option {
	return func(p *Pipeline) { p.variance = opts }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline over reg.
func NewPipeline(reg *registry.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		variance: analysis.DefaultVarianceOptions(),
		logger:   slog.Default(),
		reporter: nopReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = mustNoopTracer()
	}
	p.logger = p.logger.With(slog.String("component", "pipeline"))
	return p
}

// Registry returns the layout the pipeline processes.
func (p *Pipeline) Registry() *registry.Registry {
	return p.registry
}

// Run processes every registry entry against run's workbook. Sheet failures
// are recorded in the report; the returned error is set only when the run
// itself could not complete, in which case the report is still returned.
func (p *Pipeline) Run(ctx context.Context, run *files.Run) (*RunReport, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx = infrastructure.WithRunID(ctx, run.ID)
	logger := p.logger.With(
		slog.String("run_id", run.ID),
		slog.String("trace_id", infrastructure.GetTraceID(ctx)),
	)

	report := &RunReport{
		RunID:     run.ID,
		TraceID:   infrastructure.GetTraceID(ctx),
		Status:    RunStatusRunning,
		StartedAt: p.now(),
		Sheets:    []SheetOutcome{},
		Warnings:  []dataprocessing.Warning{},
	}

	ctx, span := p.tracer.TraceRun(ctx, run.ID, p.registry.Len())
	defer span.End()

	path, err := run.Workbook()
	if err != nil {
		return p.abort(ctx, span, run, report, NewWorkbookError(err), logger)
	}
	report.Workbook = filepath.Base(path)

	wb, err := workbook.Open(path)
	if err != nil {
		return p.abort(ctx, span, run, report, NewWorkbookError(err), logger)
	}
	defer wb.Close()

	logger.Info("Run started",
		slog.String("workbook", report.Workbook),
		slog.Int("sheets", p.registry.Len()))

	store := exporter.NewStore(run.ProcessedDir())
	progress := NewProgressTracker(run.ID, p.registry.Len())
	progress.now = p.now
	progress.StartTime = report.StartedAt

	for _, entry := range p.registry.Entries() {
		if err := ctx.Err(); err != nil {
			return p.abort(ctx, span, run, report, NewCancellationError(StepExtract, err), logger)
		}

		p.reporter.Progress(progress.Update(StepExtract, entry.Sheet, "processing "+entry.Sheet))

		outcome, warnings := p.processSheet(ctx, wb, store, entry, logger)
		report.Sheets = append(report.Sheets, outcome)
		report.Warnings = append(report.Warnings, warnings...)

		message := fmt.Sprintf("%s written, %d rows", entry.Sheet, outcome.Rows)
		if outcome.Failed() {
			message = fmt.Sprintf("%s failed: %s", entry.Sheet, outcome.Error.Message)
		}
		p.reporter.Progress(progress.Increment(StepWrite, entry.Sheet, message))
	}

	report.Variance = p.rankVariance(store, report, logger)

	report.finish(p.now())
	if err := SaveManifest(store.Dir(), report); err != nil {
		return p.abort(ctx, span, run, report, NewFatalError(StepManifest, "manifest could not be written", err), logger)
	}

	p.tracer.RecordRun(ctx, span, report, p.now().Sub(report.StartedAt))
	p.reporter.Complete(report)

	level := slog.LevelInfo
	if report.Status != RunStatusCompleted {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "Run finished",
		slog.String("status", string(report.Status)),
		slog.Int("written", len(report.Written())),
		slog.Int("failed", len(report.Failures())),
		slog.Int("warnings", len(report.Warnings)),
		slog.String("duration", report.Duration))

	return report, nil
}

func (p *Pipeline) processSheet(ctx context.Context, wb *workbook.Workbook, store *exporter.Store, entry registry.Entry, logger *slog.Logger) (SheetOutcome, []dataprocessing.Warning) {
	start := p.now()
	outcome := SheetOutcome{
		Sheet:  entry.Sheet,
		Window: entry.Window.Ref(),
		Policy: string(entry.PolicyKind),
	}
	logger = logger.With(slog.String("sheet", entry.Sheet), slog.String("policy", outcome.Policy))

	ctx, span := p.tracer.TraceSheet(ctx, entry.Sheet, outcome.Policy)
	defer span.End()

	finish := func() SheetOutcome {
		outcome.Duration = p.now().Sub(start).String()
		p.tracer.RecordSheet(ctx, span, outcome)
		return outcome
	}
	fail := func(step string, err error) SheetOutcome {
		outcome.Status = SheetStatusFailed
		outcome.Error = NewSheetError(step, entry.Sheet, err)
		logger.Error("Sheet failed",
			slog.String("step", step),
			slog.String("error_type", string(outcome.Error.Type)),
			slog.String("error", err.Error()))
		return finish()
	}

	grid, err := wb.Extract(entry.Window)
	if err != nil {
		return fail(StepExtract, err), nil
	}

	table, warnings, err := dataprocessing.Process(entry.Sheet, grid, entry.Policy())
	if err != nil {
		return fail(StepProcess, err), warnings
	}
	for _, w := range warnings {
		logger.Warn(w.Message,
			slog.String("kind", string(w.Kind)),
			slog.String("value", w.Value))
	}

	path, err := store.Write(table)
	if err != nil {
		return fail(StepWrite, err), warnings
	}

	outcome.Status = SheetStatusWritten
	outcome.File = filepath.Base(path)
	outcome.Rows = table.Len()
	outcome.Columns = table.Width()
	outcome.Warnings = len(warnings)

	logger.Info("Sheet written",
		slog.String("file", outcome.File),
		slog.Int("record_count", outcome.Rows),
		slog.Int("columns", outcome.Columns),
		slog.Int("warnings", outcome.Warnings))

	return finish(), warnings
}

// rankVariance writes the two ranked variance views when the detailed month
// comparative table was written. It never fails the run.
func (p *Pipeline) rankVariance(store *exporter.Store, report *RunReport, logger *slog.Logger) *VarianceOutcome {
	sheet := registry.SheetMonthComparativeDetail
	outcome, ok := report.Outcome(sheet)
	if !ok {
		return nil
	}

	result := &VarianceOutcome{Sheet: sheet}
	logger = logger.With(slog.String("step", StepVariance), slog.String("sheet", sheet))

	fail := func(err error) *VarianceOutcome {
		result.Error = err.Error()
		logger.Warn("Variance ranking skipped", slog.String("error", result.Error))
		return result
	}

	if outcome.Failed() {
		return fail(fmt.Errorf("table was not written"))
	}

	table, err := store.Table(sheet)
	if err != nil {
		return fail(err)
	}
	v, err := analysis.Variance(table, p.variance, logger)
	if err != nil {
		return fail(err)
	}

	if err := exporter.WriteRanked(filepath.Join(store.Dir(), exporter.VariancePercentFile), v.ByPercent); err != nil {
		return fail(err)
	}
	if err := exporter.WriteRanked(filepath.Join(store.Dir(), exporter.VarianceDollarFile), v.ByDollar); err != nil {
		return fail(err)
	}

	result.PercentColumn = v.PercentColumn
	result.DollarColumn = v.DollarColumn
	result.PercentFile = exporter.VariancePercentFile
	result.DollarFile = exporter.VarianceDollarFile
	result.Rows = len(v.ByPercent)

	logger.Info("Variance ranked",
		slog.String("percent_column", v.PercentColumn),
		slog.String("dollar_column", v.DollarColumn),
		slog.Int("record_count", result.Rows))
	return result
}

// abort finishes a run that cannot continue. The manifest is written when the
// processed directory is usable so the failure stays inspectable.
func (p *Pipeline) abort(ctx context.Context, span trace.Span, run *files.Run, report *RunReport, opErr *OperationError, logger *slog.Logger) (*RunReport, error) {
	report.Error = opErr
	report.finish(p.now())

	if opErr.Step != StepManifest {
		if err := SaveManifest(run.ProcessedDir(), report); err != nil {
			logger.Warn("Manifest not written", slog.String("error", err.Error()))
		}
	}

	p.tracer.RecordRun(ctx, span, report, p.now().Sub(report.StartedAt))
	p.reporter.Failed(run.ID, opErr)
	logger.Error("Run aborted",
		slog.String("step", opErr.Step),
		slog.String("error_type", string(opErr.Type)),
		slog.String("error", opErr.Error()))

	return report, opErr
}
