package operations

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmquan/logos-living-capital/internal/config"
	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	"github.com/hdmquan/logos-living-capital/internal/exporter"
	"github.com/hdmquan/logos-living-capital/internal/files"
	"github.com/hdmquan/logos-living-capital/internal/registry"
	"github.com/hdmquan/logos-living-capital/internal/shared/testutil"
	"github.com/hdmquan/logos-living-capital/internal/workbook"
)

type recordingReporter struct {
	mu       sync.Mutex
	updates  []ProgressUpdate
	complete *RunReport
	failed   error
}

func (r *recordingReporter) Progress(u ProgressUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingReporter) Complete(report *RunReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complete = report
}

func (r *recordingReporter) Failed(_ string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = err
}

func newRun(t *testing.T, name string, content []byte) *files.Run {
	t.Helper()
	manager := files.NewManager(&config.Paths{UploadsDir: t.TempDir()})
	run, err := manager.CreateRun(name, bytes.NewReader(content))
	require.NoError(t, err)
	return run
}

func workbookRun(t *testing.T, sheets ...testutil.SheetFixture) *files.Run {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statements.xlsx")
	testutil.WriteWorkbook(t, path, sheets...)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return newRun(t, "2024 09 Financial Statements.xlsx", data)
}

func defaultRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return reg
}

func TestPipeline_Run(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	reporter := &recordingReporter{}
	run := workbookRun(t, testutil.FinancialSheets()...)

	p := NewPipeline(defaultRegistry(t), WithLogger(logger), WithReporter(reporter))
	report, err := p.Run(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, RunStatusCompleted, report.Status)
	assert.Equal(t, run.ID, report.RunID)
	assert.NotEmpty(t, report.TraceID)
	assert.Equal(t, "2024 09 Financial Statements.xlsx", report.Workbook)
	assert.Equal(t, defaultRegistry(t).Sheets(), report.Written())
	assert.Empty(t, report.Failures())
	assert.Empty(t, report.Warnings)
	testutil.AssertNoErrors(t, logs)

	store := exporter.NewStore(run.ProcessedDir())
	for _, sheet := range report.Written() {
		assert.True(t, store.Has(sheet), sheet)
	}

	is, err := store.Table(registry.SheetIncomeStatement)
	require.NoError(t, err)
	assert.Equal(t, testutil.FixtureTrendColumns(), is.Columns)
	assert.Equal(t, len(testutil.IncomeLines), is.Len())
	outcome, ok := report.Outcome(registry.SheetIncomeStatement)
	require.True(t, ok)
	assert.Equal(t, len(testutil.IncomeLines), outcome.Rows)
	assert.Equal(t, "A7:N160", outcome.Window)

	census, err := store.Table(registry.SheetCensusTrend)
	require.NoError(t, err)
	assert.Equal(t, []string{"Average Rate"}, census.Labels())

	require.NotNil(t, report.Variance)
	assert.Empty(t, report.Variance.Error)
	assert.Equal(t, 10, report.Variance.Rows)
	assert.Equal(t, "Prior Year Variance %", report.Variance.PercentColumn)
	ranked, err := exporter.ReadRanked(filepath.Join(run.ProcessedDir(), exporter.VariancePercentFile))
	require.NoError(t, err)
	require.Len(t, ranked, 10)
	assert.Equal(t, "Recreation Supplies", ranked[0].LineItem)

	manifest, err := LoadManifest(run.ProcessedDir())
	require.NoError(t, err)
	assert.Equal(t, report.Status, manifest.Status)
	assert.Len(t, manifest.Sheets, 7)

	require.Len(t, reporter.updates, 14)
	last := reporter.updates[len(reporter.updates)-1]
	assert.Equal(t, 7, last.Current)
	assert.InDelta(t, 100, last.Percentage, 0.001)
	assert.Same(t, report, reporter.complete)
	assert.NoError(t, reporter.failed)
}

func TestPipeline_SheetIsolation(t *testing.T) {
	var sheets []testutil.SheetFixture
	for _, s := range testutil.FinancialSheets() {
		switch s.Name {
		case registry.SheetLabor:
			continue
		case registry.SheetRevenueDetailed:
			s.End = ""
		}
		sheets = append(sheets, s)
	}
	run := workbookRun(t, sheets...)
	logger, logs := testutil.NewTestLogger(t)

	report, err := NewPipeline(defaultRegistry(t), WithLogger(logger)).Run(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, RunStatusPartial, report.Status)
	assert.Len(t, report.Written(), 5)

	labor, _ := report.Outcome(registry.SheetLabor)
	require.True(t, labor.Failed())
	assert.Equal(t, ErrorTypeSheetNotFound, labor.Error.Type)
	assert.ErrorIs(t, labor.Error, workbook.ErrSheetNotFound)

	revenue, _ := report.Outcome(registry.SheetRevenueDetailed)
	require.True(t, revenue.Failed())
	assert.Equal(t, ErrorTypeOutOfBounds, revenue.Error.Type)

	store := exporter.NewStore(run.ProcessedDir())
	assert.False(t, store.Has(registry.SheetLabor))
	assert.True(t, store.Has(registry.SheetMonthComparativeDetail))
	testutil.AssertLogContains(t, logs, slog.LevelError, "Sheet failed")

	manifest, err := LoadManifest(run.ProcessedDir())
	require.NoError(t, err)
	assert.Len(t, manifest.Failures(), 2)
}

func TestPipeline_UnreadableWorkbook(t *testing.T) {
	reporter := &recordingReporter{}
	run := newRun(t, "broken.xlsx", []byte("not a workbook"))

	report, err := NewPipeline(defaultRegistry(t), WithReporter(reporter)).Run(context.Background(), run)
	require.Error(t, err)

	assert.Equal(t, ErrorTypeWorkbook, GetErrorType(err))
	assert.Equal(t, RunStatusFailed, report.Status)
	assert.Empty(t, report.Sheets)
	assert.Error(t, reporter.failed)

	manifest, err := LoadManifest(run.ProcessedDir())
	require.NoError(t, err)
	require.NotNil(t, manifest.Error)
	assert.Equal(t, StepOpen, manifest.Error.Step)
}

func TestPipeline_Cancelled(t *testing.T) {
	run := workbookRun(t, testutil.FinancialSheets()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewPipeline(defaultRegistry(t)).Run(ctx, run)
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RunStatusFailed, report.Status)
}

func TestPipeline_EmptyTable(t *testing.T) {
	reg, err := registry.New(registry.Entry{
		Window:     workbook.Window{Sheet: registry.SheetBalanceSheet, FirstRow: 6, LastRow: 7, FirstColumn: "A", LastColumn: "F"},
		PolicyKind: dataprocessing.PolicyTwoRowHeader,
	})
	require.NoError(t, err)

	run := workbookRun(t, testutil.FinancialSheets()...)
	report, err := NewPipeline(reg).Run(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, RunStatusCompleted, report.Status)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, dataprocessing.EmptyTableWarning, report.Warnings[0].Kind)
	assert.Nil(t, report.Variance)

	table, err := exporter.NewStore(run.ProcessedDir()).Table(registry.SheetBalanceSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Account", "Current Month", "Prior Year End", "Net Change $", "Net Change %", "Notes"}, table.Columns)
	assert.True(t, table.Empty())
}

func TestPipeline_VarianceFailureKeepsRun(t *testing.T) {
	reg, err := registry.New(registry.Entry{
		Window:     workbook.Window{Sheet: registry.SheetMonthComparativeDetail, FirstRow: 7, LastRow: 200, FirstColumn: "A", LastColumn: "B"},
		PolicyKind: dataprocessing.PolicyThreeRowHeader,
	})
	require.NoError(t, err)

	run := workbookRun(t, testutil.FinancialSheets()...)
	report, err := NewPipeline(reg).Run(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, RunStatusCompleted, report.Status)
	require.NotNil(t, report.Variance)
	assert.NotEmpty(t, report.Variance.Error)
	_, err = os.Stat(filepath.Join(run.ProcessedDir(), exporter.VariancePercentFile))
	assert.True(t, os.IsNotExist(err))
}
