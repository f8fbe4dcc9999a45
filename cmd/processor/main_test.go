package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/hdmquan/logos-living-capital/internal/registry"
	"github.com/hdmquan/logos-living-capital/internal/shared/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestExtractAnalyzeReport(t *testing.T) {
	uploads := t.TempDir()
	workbook := testutil.FinancialWorkbook(t, t.TempDir())

	out, err := execute(t, "extract", workbook, "--uploads", uploads, "--log-level", "error")
	require.NoError(t, err)

	var run struct {
		RunID  string `json:"run_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &run))
	require.NotEmpty(t, run.RunID)
	assert.Equal(t, "completed", run.Status)
	assert.DirExists(t, filepath.Join(uploads, run.RunID))

	out, err = execute(t, "analyze", run.RunID, "--uploads", uploads, "--log-level", "error")
	require.NoError(t, err)
	var results []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	assert.NotEmpty(t, results)

	out, err = execute(t, "analyze", run.RunID, "--flow", "--uploads", uploads, "--log-level", "error")
	require.NoError(t, err)
	var withFlow map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &withFlow))
	assert.Contains(t, withFlow, "analyses")
	assert.Contains(t, withFlow, "flow")

	out, err = execute(t, "report", run.RunID, "--uploads", uploads, "--log-level", "error")
	require.NoError(t, err)
	var output struct {
		HTML string `json:"html"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &output))
	assert.FileExists(t, output.HTML)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{
			name: "missing argument",
			args: func(t *testing.T) []string { return []string{"extract"} },
		},
		{
			name: "missing file",
			args: func(t *testing.T) []string {
				return []string{"extract", filepath.Join(t.TempDir(), "absent.xlsx")}
			},
		},
		{
			name: "not a workbook",
			args: func(t *testing.T) []string {
				path := filepath.Join(t.TempDir(), "statements.csv")
				require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))
				return []string{"extract", path}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args(t), "--uploads", t.TempDir())
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestAnalyze_UnknownRun(t *testing.T) {
	_, err := execute(t, "analyze", "20240101_000000", "--uploads", t.TempDir())
	assert.Error(t, err)
}

func TestLayouts(t *testing.T) {
	out, err := execute(t, "layouts")
	require.NoError(t, err)

	var doc struct {
		Version int `yaml:"version"`
		Sheets  []struct {
			Sheet string `yaml:"sheet"`
		} `yaml:"sheets"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, 1, doc.Version)
	assert.NotEmpty(t, doc.Sheets)

	out, err = execute(t, "layouts", "--format", "json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))

	_, err = execute(t, "layouts", "--format", "toml")
	assert.Error(t, err)
}

func TestLayouts_Embedded(t *testing.T) {
	out, err := execute(t, "layouts", "--embedded")
	require.NoError(t, err)
	assert.Equal(t, string(registry.DefaultYAML()), out)
	assert.Contains(t, out, registry.SheetCensusTrend)
}
