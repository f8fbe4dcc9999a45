package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	"github.com/hdmquan/logos-living-capital/internal/workbook"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{
		SheetCensusTrend,
		SheetBalanceSheet,
		SheetIncomeStatement,
		SheetMonthComparative,
		SheetMonthComparativeDetail,
		SheetRevenueDetailed,
		SheetLabor,
	}, reg.Sheets())

	tests := []struct {
		sheet  string
		ref    string
		policy dataprocessing.PolicyKind
	}{
		{SheetCensusTrend, "A7:N12", dataprocessing.PolicyTimeSeries},
		{SheetBalanceSheet, "A6:F74", dataprocessing.PolicyTwoRowHeader},
		{SheetIncomeStatement, "A7:N160", dataprocessing.PolicyTimeSeries},
		{SheetMonthComparative, "A7:M52", dataprocessing.PolicyThreeRowHeader},
		{SheetRevenueDetailed, "A7:M54", dataprocessing.PolicyThreeRowHeader},
		{SheetLabor, "A7:I145", dataprocessing.PolicyThreeRowHeader},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			entry, ok := reg.Lookup(tt.sheet)
			require.True(t, ok)
			assert.Equal(t, tt.ref, entry.Ref())
			assert.Equal(t, tt.policy, entry.PolicyKind)
			require.NotNil(t, entry.Policy())
			assert.Equal(t, tt.policy, entry.Policy().Kind())
		})
	}
}

func TestParse_Options(t *testing.T) {
	reg, err := Parse([]byte(`
version: 1
sheets:
  - sheet: Trend
    first_row: 3
    last_row: 20
    first_column: b
    last_column: H
    policy: time_series
    options:
      skip_rows: 0
      summary_rows: 2
      ytd_suffix: Total
`))
	require.NoError(t, err)

	entry, ok := reg.Lookup("Trend")
	require.True(t, ok)

	ts, ok := entry.Policy().(*dataprocessing.TimeSeries)
	require.True(t, ok)
	assert.Equal(t, 0, ts.SkipRows)
	assert.Equal(t, 2, ts.SummaryRows)
	assert.Equal(t, "Total", ts.YTDSuffix)
	assert.Equal(t, dataprocessing.DefaultDateLayouts, ts.DateLayouts)

	first, last, err := entry.Columns()
	require.NoError(t, err)
	assert.Equal(t, 2, first)
	assert.Equal(t, 8, last)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "sheets: [\n"},
		{"unknown field", "version: 1\nsheets:\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: time_series\n    colour: red\n"},
		{"no sheets", "version: 1\nsheets: []\n"},
		{"wrong version", "version: 2\nsheets:\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: time_series\n"},
		{"missing sheet name", "version: 1\nsheets:\n  - first_row: 1\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: time_series\n"},
		{"row zero", "version: 1\nsheets:\n  - sheet: A\n    first_row: 0\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: time_series\n"},
		{"rows reversed", "version: 1\nsheets:\n  - sheet: A\n    first_row: 9\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: time_series\n"},
		{"bad column", "version: 1\nsheets:\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: A1\n    last_column: B\n    policy: time_series\n"},
		{"columns reversed", "version: 1\nsheets:\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: D\n    last_column: B\n    policy: time_series\n"},
		{"unknown policy", "version: 1\nsheets:\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: pivot\n"},
		{"negative skip", "version: 1\nsheets:\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: time_series\n    options:\n      skip_rows: -1\n"},
		{"duplicate sheet", "version: 1\nsheets:\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: time_series\n  - sheet: A\n    first_row: 1\n    last_row: 2\n    first_column: A\n    last_column: B\n    policy: two_row_header\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, reg.Len())

	path := filepath.Join(t.TempDir(), "layouts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 1\nsheets:\n  - sheet: Labor\n    first_row: 2\n    last_row: 9\n    first_column: A\n    last_column: C\n    policy: three_row_header\n"), 0644))

	reg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Labor"}, reg.Sheets())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNew_Programmatic(t *testing.T) {
	reg, err := New(Entry{
		Window:     workbook.Window{Sheet: "Balance Sheet", FirstRow: 1, LastRow: 4, FirstColumn: "A", LastColumn: "C"},
		PolicyKind: dataprocessing.PolicyTwoRowHeader,
	})
	require.NoError(t, err)

	_, ok := reg.Lookup("Labor")
	assert.False(t, ok)

	entries := reg.Entries()
	entries[0].Sheet = "mutated"
	assert.Equal(t, []string{"Balance Sheet"}, reg.Sheets())
}

func TestDocument_RoundTrip(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	out, err := yaml.Marshal(reg.Document())
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, reg.Sheets(), again.Sheets())
}
