package dataprocessing

import (
	"fmt"
	"strings"
)

// PolicyKind selects one of the post-processing strategies.
type PolicyKind string

const (
	PolicyTimeSeries     PolicyKind = "time_series"
	PolicyTwoRowHeader   PolicyKind = "two_row_header"
	PolicyThreeRowHeader PolicyKind = "three_row_header"
)

// Kinds lists every supported policy.
func Kinds() []PolicyKind {
	return []PolicyKind{PolicyTimeSeries, PolicyTwoRowHeader, PolicyThreeRowHeader}
}

// Default time-series options.
const (
	DefaultSkipRows    = 1
	DefaultSummaryRows = 3
	DefaultYTDSuffix   = "YTD"
)

// Policy turns a cleaned grid into a table. Implementations are stateless and
// safe for concurrent use.
type Policy interface {
	Kind() PolicyKind
	Apply(sheet string, rows [][]string, width int) (*Table, []Warning, error)
}

// PolicyOptions tunes a policy. Nil fields take their defaults.
type PolicyOptions struct {
	SkipRows    *int     `yaml:"skip_rows,omitempty" json:"skip_rows,omitempty" validate:"omitempty,min=0"`
	SummaryRows *int     `yaml:"summary_rows,omitempty" json:"summary_rows,omitempty" validate:"omitempty,min=0"`
	DateLayouts []string `yaml:"date_layouts,omitempty" json:"date_layouts,omitempty"`
	YTDSuffix   string   `yaml:"ytd_suffix,omitempty" json:"ytd_suffix,omitempty"`
}

// NewPolicy returns the strategy for kind.
func NewPolicy(kind PolicyKind, opts PolicyOptions) (Policy, error) {
	switch kind {
	case PolicyTimeSeries:
		ts := &TimeSeries{
			SkipRows:    DefaultSkipRows,
			SummaryRows: DefaultSummaryRows,
			DateLayouts: DefaultDateLayouts,
			YTDSuffix:   DefaultYTDSuffix,
		}
		if opts.SkipRows != nil {
			ts.SkipRows = *opts.SkipRows
		}
		if opts.SummaryRows != nil {
			ts.SummaryRows = *opts.SummaryRows
		}
		if len(opts.DateLayouts) > 0 {
			ts.DateLayouts = opts.DateLayouts
		}
		if opts.YTDSuffix != "" {
			ts.YTDSuffix = opts.YTDSuffix
		}
		return ts, nil
	case PolicyTwoRowHeader:
		return &MultiRowHeader{kind: kind, Depth: 2}, nil
	case PolicyThreeRowHeader:
		return &MultiRowHeader{kind: kind, Depth: 3}, nil
	default:
		return nil, fmt.Errorf("unknown post-processing policy %q", kind)
	}
}

// TimeSeries handles monthly trend sheets: a label row, a row of month-end
// dates that becomes the header, and a trailing year-to-date column.
type TimeSeries struct {
	SkipRows    int
	SummaryRows int
	DateLayouts []string
	YTDSuffix   string
}

func (p *TimeSeries) Kind() PolicyKind { return PolicyTimeSeries }

// Apply drops SkipRows leading rows, promotes the next row to the header with
// its dates rendered as Month/Year, tags the last column with YTDSuffix and
// drops SummaryRows leading body rows.
func (p *TimeSeries) Apply(sheet string, rows [][]string, width int) (*Table, []Warning, error) {
	rows = rows[min(p.SkipRows, len(rows)):]

	columns := make([]string, width)
	var warnings []Warning
	if len(rows) > 0 {
		header := rows[0]
		rows = rows[1:]
		for c := range width {
			if c >= len(header) || header[c] == "" {
				continue
			}
			name, ok := NormalizeMonthYear(header[c], p.DateLayouts)
			if !ok {
				warnings = append(warnings, dateWarning(sheet, c, header[c]))
			}
			columns[c] = name
		}
	}

	if width > 0 {
		columns[width-1] = strings.TrimSpace(columns[width-1] + " " + p.YTDSuffix)
	}

	rows = rows[min(p.SummaryRows, len(rows)):]
	return NewTable(sheet, columns, rows), warnings, nil
}

// MultiRowHeader reconstructs a header that spans Depth physical rows.
type MultiRowHeader struct {
	kind  PolicyKind
	Depth int
}

func (p *MultiRowHeader) Kind() PolicyKind { return p.kind }

func (p *MultiRowHeader) Apply(sheet string, rows [][]string, width int) (*Table, []Warning, error) {
	columns, body, err := ReconstructHeader(rows, width, p.Depth)
	if err != nil {
		return nil, nil, err
	}
	return NewTable(sheet, columns, body), nil, nil
}

// Process cleans grid and applies policy. The table is returned even when it
// has no body rows, in which case the warnings include an EmptyTableWarning.
func Process(sheet string, grid [][]string, policy Policy) (*Table, []Warning, error) {
	width := 0
	if len(grid) > 0 {
		width = len(grid[0])
	}

	table, warnings, err := policy.Apply(sheet, Clean(grid), width)
	if err != nil {
		return nil, warnings, fmt.Errorf("%s policy on %q: %w", policy.Kind(), sheet, err)
	}
	if table.Empty() {
		warnings = append(warnings, emptyWarning(sheet))
	}
	return table, warnings, nil
}
