package app

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/config"
	"github.com/hdmquan/logos-living-capital/internal/files"
	"github.com/hdmquan/logos-living-capital/internal/infrastructure"
	"github.com/hdmquan/logos-living-capital/internal/narrative"
	"github.com/hdmquan/logos-living-capital/internal/operations"
	"github.com/hdmquan/logos-living-capital/internal/registry"
	"github.com/hdmquan/logos-living-capital/internal/report"
	"github.com/hdmquan/logos-living-capital/internal/services"
)

// Dependencies are the collaborators a ServiceContainer is built around.
// Zero fields fall back to what the configuration describes.
type Dependencies struct {
	Meter    metric.Meter
	Metrics  *infrastructure.PipelineMetrics
	Reporter operations.Reporter
	Model    narrative.Model
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Registry *registry.Registry
	Files    *files.Manager
	Pipeline *operations.Pipeline
	Runs     *services.RunService
	Analyses *services.AnalysisService
	Reports  *services.ReportService
}

// LoadRegistry returns the layout named by cfg, or the embedded one.
func LoadRegistry(cfg config.LayoutConfig) (*registry.Registry, error) {
	if cfg.File == "" {
		return registry.Default()
	}
	return registry.Load(cfg.File)
}

// NewServiceContainer wires the pipeline, analyses and reporting over the
// resolved paths.
func NewServiceContainer(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, deps Dependencies) (*ServiceContainer, error) {
	reg, err := LoadRegistry(cfg.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}

	metrics := deps.Metrics
	if metrics == nil {
		if metrics, err = infrastructure.CreatePipelineMetrics(deps.Meter); err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	tracer, err := operations.NewPipelineTracer(deps.Meter)
	if err != nil {
		return nil, err
	}

	varianceOpts := analysis.DefaultVarianceOptions()
	if cfg.Report.TopN > 0 {
		varianceOpts.TopN = cfg.Report.TopN
	}

	pipelineOpts := []operations.Option{
		operations.WithLogger(logger),
		operations.WithTracer(tracer),
		operations.WithVarianceOptions(varianceOpts),
	}
	if deps.Reporter != nil {
		pipelineOpts = append(pipelineOpts, operations.WithReporter(deps.Reporter))
	}

	fm := files.NewManager(paths)
	pipeline := operations.NewPipeline(reg, pipelineOpts...)
	runs := services.NewRunService(fm, pipeline, logger)
	analyses := services.NewAnalysisService(runs, analysis.DefaultSet(varianceOpts, logger), logger)

	model := deps.Model
	if model == nil {
		if model, err = narrative.NewModel(ctx, cfg.Narrative); err != nil {
			return nil, fmt.Errorf("failed to create narrative model: %w", err)
		}
	}
	composer := narrative.NewComposer(model,
		narrative.WithConcurrency(cfg.Narrative.Concurrency),
		narrative.WithRateLimit(cfg.Narrative.RPS),
		narrative.WithTimeout(cfg.Narrative.Timeout),
		narrative.WithMetrics(metrics),
		narrative.WithLogger(logger),
	)

	renderer := report.NewChromeRenderer(cfg.Report.ChromePath, cfg.Report.PDFTimeout, logger)
	reports := services.NewReportService(runs, analyses, composer, report.NewWriter(renderer, logger), logger,
		services.WithTitle(cfg.Report.Title))

	logger.InfoContext(ctx, "Services initialized",
		slog.Int("layout_sheets", reg.Len()),
		slog.String("narrative_model", model.Name()),
		slog.String("uploads_dir", fm.Root()))

	return &ServiceContainer{
		Registry: reg,
		Files:    fm,
		Pipeline: pipeline,
		Runs:     runs,
		Analyses: analyses,
		Reports:  reports,
	}, nil
}
