package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

// TableExt is the extension of persisted tables.
const TableExt = ".csv"

// ErrEmptyFile is returned when a persisted table has no header row.
var ErrEmptyFile = errors.New("table file is empty")

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_")

// TableFileName maps a sheet name to its file name inside processed/.
func TableFileName(sheet string) string {
	return fileNameReplacer.Replace(sheet) + TableExt
}

// WriteTable persists table as dir/<name>.csv: header row first, comma
// separated, no index column. It returns the path written.
func WriteTable(dir string, table *dataprocessing.Table) (string, error) {
	path := filepath.Join(dir, TableFileName(table.Name))

	slog.Debug("Writing table",
		slog.String("sheet", table.Name),
		slog.String("path", path),
		slog.Int("record_count", table.Len()))

	err := writeAtomic(path, func(w io.Writer) error {
		return writeCSV(w, table.Columns, table.Rows)
	})
	if err != nil {
		return "", fmt.Errorf("failed to write table %q: %w", table.Name, err)
	}
	return path, nil
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadTable loads a persisted table. The first row is the header and the first
// column the row labels.
func ReadTable(path, name string) (*dataprocessing.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyFile)
	}

	return dataprocessing.NewTable(name, records[0], records[1:]), nil
}

// EncodeTable renders table as CSV text.
func EncodeTable(table *dataprocessing.Table) (string, error) {
	var b strings.Builder
	if err := writeCSV(&b, table.Columns, table.Rows); err != nil {
		return "", err
	}
	return b.String(), nil
}
