package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/hdmquan/logos-living-capital/internal/infrastructure"
)

const (
	TracerName = "logos.pipeline"
)

// PipelineTracer provides OpenTelemetry instrumentation for pipeline runs
type PipelineTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewPipelineTracer creates a tracer on the global providers. A nil meter
// records nothing.
func NewPipelineTracer(meter metric.Meter) (*PipelineTracer, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}
	return &PipelineTracer{tracer: otel.Tracer(TracerName), metrics: metrics}, nil
}

func mustNoopTracer() *PipelineTracer {
	t, err := NewPipelineTracer(nil)
	if err != nil {
		panic(err)
	}
	return t
}

// TraceRun creates a span for the entire run
func (pt *PipelineTracer) TraceRun(ctx context.Context, runID string, sheets int) (context.Context, trace.Span) {
	ctx, span := pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.sheets", sheets),
		),
	)
	pt.metrics.RunsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "start")))
	return ctx, span
}

// TraceSheet creates a span for one sheet
func (pt *PipelineTracer) TraceSheet(ctx context.Context, sheet, policy string) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "pipeline.sheet."+policy,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("sheet.name", sheet),
			attribute.String("sheet.policy", policy),
		),
	)
}

// RecordSheet records a sheet's outcome with metrics and span events
func (pt *PipelineTracer) RecordSheet(ctx context.Context, span trace.Span, outcome SheetOutcome) {
	attrs := metric.WithAttributes(attribute.String("policy", outcome.Policy))

	span.SetAttributes(
		attribute.String("sheet.status", string(outcome.Status)),
		attribute.Int("sheet.rows", outcome.Rows),
		attribute.Int("sheet.warnings", outcome.Warnings),
	)
	if outcome.Warnings > 0 {
		pt.metrics.Warnings.Add(ctx, int64(outcome.Warnings), attrs)
	}

	if outcome.Failed() {
		pt.metrics.SheetsFailed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("policy", outcome.Policy),
			attribute.String("error_type", string(GetErrorType(outcome.Error))),
		))
		infrastructure.RecordError(ctx, outcome.Error)
		span.SetStatus(codes.Error, outcome.Error.Error())
		return
	}

	pt.metrics.SheetsProcessed.Add(ctx, 1, attrs)
	pt.metrics.RowsWritten.Add(ctx, int64(outcome.Rows), attrs)
	infrastructure.AddSpanEvent(ctx, "sheet.written", map[string]interface{}{
		"sheet": outcome.Sheet,
		"file":  outcome.File,
		"rows":  outcome.Rows,
	})
	span.SetStatus(codes.Ok, "sheet written")
}

// RecordRun records run completion with metrics and span status
func (pt *PipelineTracer) RecordRun(ctx context.Context, span trace.Span, report *RunReport, duration time.Duration) {
	status := string(report.Status)

	span.SetAttributes(
		attribute.String("run.status", status),
		attribute.Float64("run.duration_seconds", duration.Seconds()),
		attribute.Int("run.warnings", len(report.Warnings)),
	)
	pt.metrics.RunDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("status", status)))

	if report.Error != nil {
		infrastructure.RecordError(ctx, report.Error)
		span.SetStatus(codes.Error, report.Error.Error())
		return
	}
	if report.Status == RunStatusFailed {
		span.SetStatus(codes.Error, "no sheet written")
		return
	}
	span.SetStatus(codes.Ok, report.Summary())
}
