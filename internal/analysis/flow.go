package analysis

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

// Flow line labels on the trailing twelve month income statement.
var (
	IncomeSources = []string{
		"Room and Board Income",
		"Care Level Income",
		"Ancillary Income",
		"Other Income",
	}
	FlowExpenses = []string{
		"Total Nursing Expenses",
		"Total Dietary Expenses",
		"Total Housekeeping and Laundry Expenses",
		"Total Recreation Expenses",
		"Total Marketing Expenses",
		"Total R&M Expenses",
		"Outside Ground Services",
		"Utilities",
		"Total G&A Expenses",
		"Management Fee",
		"Real Estate Taxes",
	}
)

const (
	LabelTotalRevenue    = "Total Revenue"
	LabelOperatingIncome = "Operating Income"
)

// FlowItem is one line of the flow with its year-to-date value.
type FlowItem struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Series is one line's monthly values, aligned with Flow.Months.
type Series struct {
	Label  string            `json:"label"`
	Values []decimal.Decimal `json:"values"`
}

// Flow is how year-to-date revenue splits into expenses and operating income.
type Flow struct {
	YTDColumn       string     `json:"ytd_column"`
	Sources         []FlowItem `json:"sources"`
	TotalRevenue    *FlowItem  `json:"total_revenue,omitempty"`
	Expenses        []FlowItem `json:"expenses"`
	OperatingIncome *FlowItem  `json:"operating_income,omitempty"`

	Months        []string `json:"months"`
	SourceSeries  []Series `json:"source_series"`
	ExpenseSeries []Series `json:"expense_series"`
}

// Empty reports whether no flow line was found.
func (f *Flow) Empty() bool {
	return len(f.Sources) == 0 && len(f.Expenses) == 0 && f.TotalRevenue == nil && f.OperatingIncome == nil
}

// BuildFlow reads the revenue and expense lines of an income statement
// table. The year-to-date column is the last one whose header ends in "YTD",
// or the last column. Every column between the labels and it is a month.
// Lines absent from the table, or without a year-to-date value, are skipped.
// Missing monthly cells read as zero.
func BuildFlow(table *dataprocessing.Table) *Flow {
	flow := &Flow{}
	if table.Width() < 2 {
		return flow
	}

	ytd := table.Width() - 1
	for c := table.Width() - 1; c > 0; c-- {
		if strings.HasSuffix(table.Columns[c], "YTD") {
			ytd = c
			break
		}
	}
	flow.YTDColumn = table.Columns[ytd]
	flow.Months = append([]string(nil), table.Columns[1:ytd]...)

	item := func(label string) (*FlowItem, []string) {
		i, ok := table.Find(label)
		if !ok {
			return nil, nil
		}
		v, ok := ParseAmount(table.Rows[i][ytd])
		if !ok {
			return nil, nil
		}
		return &FlowItem{Label: label, Value: v}, table.Rows[i][1:ytd]
	}
	series := func(label string, cells []string) Series {
		s := Series{Label: label, Values: make([]decimal.Decimal, len(cells))}
		for i, cell := range cells {
			if v, ok := ParseAmount(cell); ok {
				s.Values[i] = v
			}
		}
		return s
	}

	for _, label := range IncomeSources {
		if it, cells := item(label); it != nil {
			flow.Sources = append(flow.Sources, *it)
			flow.SourceSeries = append(flow.SourceSeries, series(label, cells))
		}
	}
	for _, label := range FlowExpenses {
		if it, cells := item(label); it != nil {
			flow.Expenses = append(flow.Expenses, *it)
			flow.ExpenseSeries = append(flow.ExpenseSeries, series(label, cells))
		}
	}
	flow.TotalRevenue, _ = item(LabelTotalRevenue)
	flow.OperatingIncome, _ = item(LabelOperatingIncome)

	return flow
}
