package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/config"
	apperrors "github.com/hdmquan/logos-living-capital/internal/errors"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/files"
	"github.com/hdmquan/logos-living-capital/internal/narrative"
	"github.com/hdmquan/logos-living-capital/internal/operations"
	"github.com/hdmquan/logos-living-capital/internal/registry"
	"github.com/hdmquan/logos-living-capital/internal/report"
	"github.com/hdmquan/logos-living-capital/internal/shared/testutil"
)

type fixture struct {
	files    *files.Manager
	runs     *RunService
	analyses *AnalysisService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	reg, err := registry.Default()
	require.NoError(t, err)

	fm := files.NewManager(&config.Paths{UploadsDir: t.TempDir()})
	runs := NewRunService(fm, operations.NewPipeline(reg, operations.WithLogger(logger)), logger)
	analyses := NewAnalysisService(runs, analysis.DefaultSet(analysis.DefaultVarianceOptions(), logger), logger)
	reports := NewReportService(runs, analyses,
		narrative.NewComposer(narrative.StaticModel{}, narrative.WithLogger(logger)),
		report.NewWriter(nil, logger),
		logger,
		WithTitle("Logos Living September"),
		WithReportClock(func() time.Time { return time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC) }),
	)

	return &fixture{files: fm, runs: runs, analyses: analyses, reports: reports}
}

func (f *fixture) process(t *testing.T) *operations.RunReport {
	t.Helper()
	data, err := os.ReadFile(testutil.FinancialWorkbook(t, t.TempDir()))
	require.NoError(t, err)

	rep, err := f.runs.Process(context.Background(), "2024 09 Financial Statements.xlsx", bytes.NewReader(data))
	require.NoError(t, err)
	return rep
}

func TestRunService_Process(t *testing.T) {
	f := newFixture(t)
	rep := f.process(t)

	assert.Equal(t, operations.RunStatusCompleted, rep.Status)
	assert.Len(t, rep.Written(), 7)

	got, err := f.runs.Get(context.Background(), rep.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, got.RunID)
	assert.Equal(t, rep.Status, got.Status)

	list, err := f.runs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, rep.RunID, list[0].ID)
	assert.Equal(t, 7, list[0].Written)
	assert.Zero(t, list[0].Failed)

	table, err := f.runs.Table(context.Background(), rep.RunID, registry.SheetIncomeStatement)
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureTrendColumns(), table.Columns)

	variance, err := f.runs.Variance(context.Background(), rep.RunID)
	require.NoError(t, err)
	require.NotEmpty(t, variance.ByPercent)
	assert.Equal(t, "Recreation Supplies", variance.ByPercent[0].LineItem)
	assert.Len(t, variance.ByDollar, 10)
}

func TestRunService_ProcessRejectsNonWorkbook(t *testing.T) {
	f := newFixture(t)

	_, err := f.runs.Process(context.Background(), "statements.csv", strings.NewReader("a,b"))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)

	runs, err := f.files.ListRuns()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRunService_Lookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.runs.Get(ctx, "../etc")
	assert.ErrorIs(t, err, files.ErrInvalidRunID)

	_, err = f.runs.Get(ctx, "20240101_000000_deadbeef")
	assert.ErrorIs(t, err, files.ErrRunNotFound)

	unprocessed, err := f.files.CreateRun("empty.xlsx", strings.NewReader("not processed"))
	require.NoError(t, err)

	_, err = f.runs.Get(ctx, unprocessed.ID)
	assert.ErrorIs(t, err, ErrRunNotProcessed)

	_, err = f.runs.Variance(ctx, unprocessed.ID)
	assert.ErrorIs(t, err, ErrRunNotProcessed)

	_, err = f.runs.Table(ctx, unprocessed.ID, "Labor")
	assert.ErrorIs(t, err, exporter.ErrTableNotFound)

	list, err := f.runs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Status)
}

func TestAnalysisService(t *testing.T) {
	f := newFixture(t)
	rep := f.process(t)

	results, err := f.analyses.Analyze(context.Background(), rep.RunID)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for _, r := range results {
		assert.Empty(t, r.Skipped, r.Name)
	}

	flow, err := f.analyses.Flow(context.Background(), rep.RunID)
	require.NoError(t, err)
	assert.Len(t, flow.Sources, 4)
	assert.Len(t, flow.Expenses, 11)
	require.NotNil(t, flow.TotalRevenue)
	assert.Equal(t, int64(testutil.IncomeLines[4].YTD()), flow.TotalRevenue.Value.IntPart())
}

func TestReportService_Generate(t *testing.T) {
	f := newFixture(t)
	rep := f.process(t)

	generated, err := f.reports.Generate(context.Background(), rep.RunID, false)
	require.NoError(t, err)

	r := generated.Report
	assert.Equal(t, "Logos Living September", r.Title)
	assert.Equal(t, rep.Workbook, r.Workbook)
	assert.Equal(t, time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC), r.GeneratedAt)
	require.NotNil(t, r.Narrative)
	assert.Len(t, r.Narrative.Sections, 5)
	assert.NotEmpty(t, r.Summary())
	assert.Equal(t, "Recreation Supplies", r.PercentVariance[0].LineItem)
	assert.False(t, r.Flow.Empty())
	assert.Empty(t, r.Failures)

	assert.Empty(t, generated.Output.PDF)
	html, err := os.ReadFile(generated.Output.HTML)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Logos Living September")
	assert.Contains(t, string(html), report.CaptionPercentVariance)
	assert.Equal(t, filepath.Join(f.files.Root(), rep.RunID, config.ProcessedDirName, exporter.ReportHTMLFile), generated.Output.HTML)

	path, err := f.reports.File(rep.RunID, false)
	require.NoError(t, err)
	assert.Equal(t, generated.Output.HTML, path)

	_, err = f.reports.File(rep.RunID, true)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestReportService_PDFUnavailable(t *testing.T) {
	f := newFixture(t)
	rep := f.process(t)

	_, err := f.reports.Generate(context.Background(), rep.RunID, true)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeReport, appErr.Type)
}

func TestHealthService(t *testing.T) {
	dir := t.TempDir()

	status := NewHealthService("1.0.0", dir, fakeCounter(3), nil).HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, 3, status.Runtime["websocket_clients"])

	status = NewHealthService("1.0.0", filepath.Join(dir, "missing"), nil, nil).HealthCheck(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unavailable", status.Services["storage"].Status)
	assert.NotContains(t, status.Services, "websocket")
}

type fakeCounter int

func (c fakeCounter) ClientCount() int { return int(c) }
