package exporter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

// File names of the run artifacts that sit next to the tables.
const (
	ManifestFile        = "manifest.json"
	VariancePercentFile = "variance_percent.csv"
	VarianceDollarFile  = "variance_dollar.csv"
	ReportHTMLFile      = "report.html"
	ReportPDFFile       = "report.pdf"
)

// ErrTableNotFound is returned when a sheet has no persisted table.
var ErrTableNotFound = errors.New("table not found")

// Store reads and writes the tables of one processed directory.
type Store struct {
	dir string
}

// NewStore creates a store over dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the processed directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path of sheet's table.
func (s *Store) Path(sheet string) string {
	return filepath.Join(s.dir, TableFileName(sheet))
}

// Has reports whether sheet has been written.
func (s *Store) Has(sheet string) bool {
	info, err := os.Stat(s.Path(sheet))
	return err == nil && info.Mode().IsRegular()
}

// Table loads sheet's table.
func (s *Store) Table(sheet string) (*dataprocessing.Table, error) {
	table, err := ReadTable(s.Path(sheet), sheet)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, sheet)
	}
	return table, err
}

// Write persists table.
func (s *Store) Write(table *dataprocessing.Table) (string, error) {
	return WriteTable(s.dir, table)
}
