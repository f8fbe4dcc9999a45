package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/registry"
)

// AnalysisService derives the analyses of a processed run.
type AnalysisService struct {
	runs   *RunService
	set    *analysis.Set
	logger *slog.Logger
}

// NewAnalysisService creates an analysis service running set.
func NewAnalysisService(runs *RunService, set *analysis.Set, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{runs: runs, set: set, logger: logger.With(slog.String("service", "analysis"))}
}

// Analyze runs every analysis over the tables of run id. The run must have
// been processed.
func (s *AnalysisService) Analyze(ctx context.Context, id string) ([]*analysis.Result, error) {
	if _, err := s.runs.Get(ctx, id); err != nil {
		return nil, err
	}
	store, err := s.runs.Store(id)
	if err != nil {
		return nil, err
	}

	results := s.set.Run(store)

	skipped := 0
	for _, r := range results {
		if r.Skipped != "" {
			skipped++
		}
	}
	s.logger.InfoContext(ctx, "Run analysed",
		slog.String("run_id", id),
		slog.Int("analyses", len(results)),
		slog.Int("skipped", skipped))

	return results, nil
}

// Flow reads the revenue to expense flow of run id. A run without an income
// statement yields an empty flow.
func (s *AnalysisService) Flow(ctx context.Context, id string) (*analysis.Flow, error) {
	table, err := s.runs.Table(ctx, id, registry.SheetIncomeStatement)
	if err != nil {
		if errors.Is(err, exporter.ErrTableNotFound) {
			return &analysis.Flow{}, nil
		}
		return nil, err
	}
	return analysis.BuildFlow(table), nil
}
