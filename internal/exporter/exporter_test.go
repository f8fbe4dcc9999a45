package exporter

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

func sampleTable() *dataprocessing.Table {
	return dataprocessing.NewTable("Balance Sheet",
		[]string{"Account", "Current Month", "Notes"},
		[][]string{
			{"Cash", "1,250.00", "operating, reserve"},
			{"Receivables", "", ""},
			{"Total Assets", "1250", "quoted \"note\""},
		})
}

func TestTableFileName(t *testing.T) {
	tests := []struct {
		sheet string
		want  string
	}{
		{"Labor", "Labor.csv"},
		{"IS Month Comparative Detailed", "IS Month Comparative Detailed.csv"},
		{"Q3/Q4", "Q3_Q4.csv"},
		{`a\b:c`, "a_b_c.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.sheet, func(t *testing.T) {
			assert.Equal(t, tt.want, TableFileName(tt.sheet))
		})
	}
}

func TestWriteTable_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := sampleTable()

	path, err := WriteTable(dir, table)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Balance Sheet.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Account,Current Month,Notes\n"))

	got, err := ReadTable(path, table.Name)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, got.Columns)
	assert.Equal(t, table.Rows, got.Rows)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestWriteTable_Overwrites(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteTable(dir, sampleTable())
	require.NoError(t, err)

	smaller := dataprocessing.NewTable("Balance Sheet", []string{"Account"}, [][]string{{"Cash"}})
	path, err := WriteTable(dir, smaller)
	require.NoError(t, err)

	got, err := ReadTable(path, "Balance Sheet")
	require.NoError(t, err)
	assert.Equal(t, []string{"Account"}, got.Columns)
	assert.Equal(t, 1, got.Len())
}

func TestReadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err := ReadTable(empty, "empty")
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = ReadTable(filepath.Join(dir, "missing.csv"), "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeTable(t *testing.T) {
	out, err := EncodeTable(dataprocessing.NewTable("x", []string{"a", "b"}, [][]string{{"1", "two, three"}}))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"two, three\"\n", out)
}

func TestStore(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.False(t, store.Has("Balance Sheet"))
	_, err := store.Table("Balance Sheet")
	assert.ErrorIs(t, err, ErrTableNotFound)

	_, err = store.Write(sampleTable())
	require.NoError(t, err)
	assert.True(t, store.Has("Balance Sheet"))

	table, err := store.Table("Balance Sheet")
	require.NoError(t, err)
	assert.Equal(t, "Balance Sheet", table.Name)
	assert.Equal(t, 3, table.Len())
}

func TestWriteRanked_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), VariancePercentFile)
	rows := []analysis.RankedRow{
		{Rank: 1, LineItem: "Recreation Supplies", Percent: 15, Dollar: 75},
		{Rank: 2, LineItem: "Nursing Supplies", Percent: 12, Dollar: -450},
	}

	require.NoError(t, WriteRanked(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Rank,Line Item,% Value,$ Value"))

	got, err := ReadRanked(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ManifestFile)
	in := map[string]any{"run": "20241014_101500_0a1b2c3d", "sheets": []any{"Labor"}}

	require.NoError(t, WriteJSON(path, in))

	var out map[string]any
	require.NoError(t, ReadJSON(path, &out))
	assert.Equal(t, in, out)

	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	assert.Error(t, ReadJSON(path, &out))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "<html></html>")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))

	err = WriteFile(path, func(io.Writer) error { return errors.New("render failed") })
	require.Error(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}
