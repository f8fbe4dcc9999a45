package exporter

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/hdmquan/logos-living-capital/internal/analysis"
)

// WriteRanked persists a ranked variance view, header included even when
// there are no rows.
func WriteRanked(path string, rows []analysis.RankedRow) error {
	if rows == nil {
		rows = []analysis.RankedRow{}
	}
	return writeAtomic(path, func(w io.Writer) error {
		if err := gocsv.Marshal(&rows, w); err != nil {
			return fmt.Errorf("failed to encode ranked table: %w", err)
		}
		return nil
	})
}

// ReadRanked loads a ranked variance view written by WriteRanked.
func ReadRanked(path string) ([]analysis.RankedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []analysis.RankedRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode ranked table: %w", err)
	}
	return rows, nil
}
