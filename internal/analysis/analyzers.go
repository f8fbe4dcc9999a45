package analysis

import (
	"fmt"
	"log/slog"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	"github.com/hdmquan/logos-living-capital/internal/registry"
)

// TableSource supplies processed tables by sheet name.
type TableSource interface {
	Table(sheet string) (*dataprocessing.Table, error)
}

// Analysis names, in the order the narrative presents them.
const (
	NameBalanceSheet    = "balance_sheet"
	NameIncomeStatement = "income_statement"
	NameVariance        = "variance"
	NameLabor           = "labor"
	NameRevenue         = "revenue"
)

// Section keys of the analyses.
const (
	SectionBalanceSheet    = "balance_sheet"
	SectionIncomeStatement = "income_statement"
	SectionPercentVariance = "percent_var_top"
	SectionDollarVariance  = "dollar_var_top"
	SectionLabor           = "labor"
	SectionRevenue         = "revenue_detailed"
)

// IncomeGroups are the summary lines of the income statement analysis.
var IncomeGroups = []Group{
	{Name: "Total Revenue", Labels: []string{"Total Revenue"}},
	{Name: "Total Census", Labels: []string{"Total Census"}},
	{Name: "Total Salaries", Labels: []string{
		"Total Nursing Salaries",
		"Total Dietary Salaries",
		"Total Housekeeping Salaries",
		"Total Recreation Salaries",
		"Total Marketing Salaries",
		"Total R&M Salaries",
		"Total Administrative Salaries",
	}},
	{Name: "Total Expenses", Labels: []string{
		"Total Nursing Expenses",
		"Total Dietary Expenses",
		"Total Housekeeping and Laundry Expenses",
		"Total Recreation Expenses",
		"Total Marketing Expenses",
		"Total R&M Expenses",
		"Total G&A Expenses",
	}},
	{Name: "Fixed Costs", Labels: []string{
		"Total Rent and Depreciation",
		"Total Insurance",
	}},
}

// LaborRoles are the labor totals the labor analysis keeps.
var LaborRoles = []string{
	"Total Resident Care Director",
	"Total Resident Care Associate",
	"Total Regional Director of Clinical Operations",
	"Total LPN",
	"Total RN",
	"Total Nursing Salaries",
	"Total Aides",
	"Total Executive Director",
	"Total Housekeeping Staff",
	"Total Dietary Salaries",
	"Total Administrative Salaries",
}

// Section is one named sub-table of an analysis.
type Section struct {
	Key   string                `json:"key"`
	Table *dataprocessing.Table `json:"table"`
}

// Result is the output of one analyzer. Skipped is set when the analysis had
// no data to work with.
type Result struct {
	Name     string          `json:"name"`
	Sheet    string          `json:"sheet"`
	Sections []Section       `json:"sections,omitempty"`
	Variance *VarianceResult `json:"variance,omitempty"`
	Skipped  string          `json:"skipped,omitempty"`
}

// Empty reports whether the result carries no rows.
func (r *Result) Empty() bool {
	for _, s := range r.Sections {
		if !s.Table.Empty() {
			return false
		}
	}
	return true
}

// Section returns the sub-table stored under key.
func (r *Result) Section(key string) (*dataprocessing.Table, bool) {
	for _, s := range r.Sections {
		if s.Key == key {
			return s.Table, true
		}
	}
	return nil, false
}

// Analyzer derives a result from one processed table.
type Analyzer interface {
	Name() string
	Sheet() string
	Analyze(table *dataprocessing.Table) (*Result, error)
}

type analyzerFunc struct {
	name  string
	sheet string
	fn    func(table *dataprocessing.Table) (*Result, error)
}

func (a analyzerFunc) Name() string  { return a.name }
func (a analyzerFunc) Sheet() string { return a.sheet }

func (a analyzerFunc) Analyze(table *dataprocessing.Table) (*Result, error) {
	res, err := a.fn(table)
	if err != nil {
		return nil, err
	}
	res.Name, res.Sheet = a.name, a.sheet
	return res, nil
}

func single(key string, table *dataprocessing.Table) *Result {
	return &Result{Sections: []Section{{Key: key, Table: table}}}
}

// BalanceSheet passes the balance sheet through whole.
func BalanceSheet() Analyzer {
	return analyzerFunc{name: NameBalanceSheet, sheet: registry.SheetBalanceSheet, fn: func(t *dataprocessing.Table) (*Result, error) {
		return single(SectionBalanceSheet, t), nil
	}}
}

// IncomeStatement sums the income statement totals into groups.
func IncomeStatement(groups []Group) Analyzer {
	return analyzerFunc{name: NameIncomeStatement, sheet: registry.SheetIncomeStatement, fn: func(t *dataprocessing.Table) (*Result, error) {
		return single(SectionIncomeStatement, Aggregate(TotalRows(t), groups)), nil
	}}
}

// Labor keeps the totals of the given roles.
func Labor(roles []string) Analyzer {
	return analyzerFunc{name: NameLabor, sheet: registry.SheetLabor, fn: func(t *dataprocessing.Table) (*Result, error) {
		return single(SectionLabor, SelectLabels(TotalRows(t), roles)), nil
	}}
}

// Revenue keeps the revenue detail totals.
func Revenue() Analyzer {
	return analyzerFunc{name: NameRevenue, sheet: registry.SheetRevenueDetailed, fn: func(t *dataprocessing.Table) (*Result, error) {
		return single(SectionRevenue, TotalRows(t)), nil
	}}
}

// VarianceRanking ranks the detailed month comparative expense variances.
func VarianceRanking(opts VarianceOptions, logger *slog.Logger) Analyzer {
	return analyzerFunc{name: NameVariance, sheet: registry.SheetMonthComparativeDetail, fn: func(t *dataprocessing.Table) (*Result, error) {
		v, err := Variance(t, opts, logger)
		if err != nil {
			return nil, err
		}
		return &Result{
			Variance: v,
			Sections: []Section{
				{Key: SectionPercentVariance, Table: RankedTable(t.Name, v.ByPercent)},
				{Key: SectionDollarVariance, Table: RankedTable(t.Name, v.ByDollar)},
			},
		}, nil
	}}
}

// Set runs a fixed list of analyzers against one run's tables.
type Set struct {
	analyzers []Analyzer
	logger    *slog.Logger
}

// NewSet creates a set running analyzers in order.
func NewSet(logger *slog.Logger, analyzers ...Analyzer) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	return &Set{analyzers: analyzers, logger: logger.With(slog.String("component", "analysis"))}
}

// DefaultSet returns the balance sheet, income statement, variance, labor and
// revenue analyses.
func DefaultSet(opts VarianceOptions, logger *slog.Logger) *Set {
	return NewSet(logger,
		BalanceSheet(),
		IncomeStatement(IncomeGroups),
		VarianceRanking(opts, logger),
		Labor(LaborRoles),
		Revenue(),
	)
}

// Run executes every analyzer. An analysis whose table is missing, empty or
// unusable is returned with Skipped set; it never stops the others.
func (s *Set) Run(src TableSource) []*Result {
	results := make([]*Result, 0, len(s.analyzers))

	for _, a := range s.analyzers {
		logger := s.logger.With(slog.String("analysis", a.Name()), slog.String("sheet", a.Sheet()))
		skipped := &Result{Name: a.Name(), Sheet: a.Sheet()}

		table, err := src.Table(a.Sheet())
		if err != nil {
			logger.Warn("analysis skipped, table unavailable", slog.String("error", err.Error()))
			skipped.Skipped = fmt.Sprintf("table unavailable: %v", err)
			results = append(results, skipped)
			continue
		}
		if table.Empty() {
			logger.Warn("analysis skipped, table has no rows")
			skipped.Skipped = "table has no rows"
			results = append(results, skipped)
			continue
		}

		res, err := a.Analyze(table)
		if err != nil {
			logger.Error("analysis failed", slog.String("error", err.Error()))
			skipped.Skipped = fmt.Sprintf("analysis failed: %v", err)
			results = append(results, skipped)
			continue
		}
		if res.Empty() {
			res.Skipped = "no matching rows"
		}

		logger.Debug("analysis complete", slog.Int("sections", len(res.Sections)))
		results = append(results, res)
	}

	return results
}

// Find returns the result named name.
func Find(results []*Result, name string) (*Result, bool) {
	for _, r := range results {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
