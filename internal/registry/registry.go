// Package registry declares where each logical table lives in the workbook and
// how it is post-processed. The layout is a YAML document; a default matching
// the current statements workbook is embedded in the binary.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	"github.com/hdmquan/logos-living-capital/internal/workbook"
)

//go:embed layouts.yaml
var defaultLayout []byte

// Well-known sheet names referenced by the analyses.
const (
	SheetCensusTrend            = "Census & Revenue Trend"
	SheetBalanceSheet           = "Balance Sheet"
	SheetIncomeStatement        = "Income Statement T-12"
	SheetMonthComparative       = "IS Month Comparative"
	SheetMonthComparativeDetail = "IS Month Comparative Detailed"
	SheetRevenueDetailed        = "Revenue Detailed"
	SheetLabor                  = "Labor"
)

// Entry binds a sheet window to its post-processing policy.
type Entry struct {
	workbook.Window `yaml:",inline"`

	PolicyKind dataprocessing.PolicyKind    `yaml:"policy" json:"policy" validate:"required,policy"`
	Options    dataprocessing.PolicyOptions `yaml:"options,omitempty" json:"options,omitempty"`

	strategy dataprocessing.Policy
}

// Policy returns the strategy built for the entry.
func (e Entry) Policy() dataprocessing.Policy {
	return e.strategy
}

// Document is the on-disk layout format.
type Document struct {
	Version int     `yaml:"version" json:"version" validate:"eq=1"`
	Sheets  []Entry `yaml:"sheets" json:"sheets" validate:"required,min=1,dive"`
}

// Registry is an ordered, immutable set of entries keyed by sheet name.
type Registry struct {
	entries []Entry
	index   map[string]int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("column", isColumnName)
	v.RegisterValidation("policy", isPolicyKind)
	return v
}

func isColumnName(fl validator.FieldLevel) bool {
	_, err := excelize.ColumnNameToNumber(strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func isPolicyKind(fl validator.FieldLevel) bool {
	kind := dataprocessing.PolicyKind(fl.Field().String())
	for _, k := range dataprocessing.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// Default returns the embedded layout.
func Default() (*Registry, error) {
	return Parse(defaultLayout)
}

// DefaultYAML returns the embedded layout document.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultLayout...)
}

// Load reads the layout at path, or the embedded default when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes and validates a YAML layout document.
func Parse(data []byte) (*Registry, error) {
	var doc Document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return New(doc.Sheets...)
}

// New builds a registry from entries, preserving their order.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		if err := e.Window.Validate(); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", e.Sheet, err)
		}
		if _, dup := r.index[e.Sheet]; dup {
			return nil, fmt.Errorf("sheet %q declared more than once", e.Sheet)
		}

		policy, err := dataprocessing.NewPolicy(e.PolicyKind, e.Options)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", e.Sheet, err)
		}
		e.strategy = policy

		r.index[e.Sheet] = len(r.entries)
		r.entries = append(r.entries, e)
	}

	return r, nil
}

// Entries returns the entries in processing order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the entry for sheet.
func (r *Registry) Lookup(sheet string) (Entry, bool) {
	i, ok := r.index[sheet]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Sheets returns the declared sheet names in order.
func (r *Registry) Sheets() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Sheet
	}
	return names
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Document returns the registry in its serialisable form.
func (r *Registry) Document() Document {
	return Document{Version: 1, Sheets: r.Entries()}
}
