package analysis

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

// Default expense variance window.
const (
	DefaultVarianceStart = "Nursing Expenses"
	DefaultVarianceEnd   = "Total Real Estate Taxes"
	DefaultTopN          = 10
)

// Ranked variance column names.
const (
	ColumnLineItem = "Line Item"
	ColumnPercent  = "% Value"
	ColumnDollar   = "$ Value"
)

// VarianceOptions selects which lines and columns are ranked.
type VarianceOptions struct {
	// StartLabel and EndLabel bound the expense lines, both inclusive.
	StartLabel string
	EndLabel   string
	// The ranked columns are the last headers containing these markers.
	PercentMarker string
	DollarMarker  string
	TopN          int
}

// DefaultVarianceOptions returns the expense window of the detailed month
// comparative sheet.
func DefaultVarianceOptions() VarianceOptions {
	return VarianceOptions{
		StartLabel:    DefaultVarianceStart,
		EndLabel:      DefaultVarianceEnd,
		PercentMarker: "%",
		DollarMarker:  "$",
		TopN:          DefaultTopN,
	}
}

// RankedRow is one line of a ranked variance view. Percent is in percentage
// points; both values are rounded half away from zero.
type RankedRow struct {
	Rank     int    `csv:"Rank" json:"rank"`
	LineItem string `csv:"Line Item" json:"line_item"`
	Percent  int64  `csv:"% Value" json:"percent"`
	Dollar   int64  `csv:"$ Value" json:"dollar"`
}

// VarianceResult holds the two ranked views of the expense variances.
type VarianceResult struct {
	PercentColumn string      `json:"percent_column"`
	DollarColumn  string      `json:"dollar_column"`
	ByPercent     []RankedRow `json:"by_percent"`
	ByDollar      []RankedRow `json:"by_dollar"`
}

// Variance ranks the expense lines of a month comparative table by percent
// and by dollar variance. Total lines are excluded, as are lines without both
// numeric values.
func Variance(table *dataprocessing.Table, opts VarianceOptions, logger *slog.Logger) (*VarianceResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopN < 1 {
		opts.TopN = DefaultTopN
	}

	pctCol, dolCol, err := varianceColumns(table, opts, logger)
	if err != nil {
		return nil, err
	}

	window, foundStart, foundEnd := Slice(table, opts.StartLabel, opts.EndLabel)
	if !foundStart {
		logger.Warn("variance start line not found, ranking from the first line",
			slog.String("sheet", table.Name), slog.String("label", opts.StartLabel))
	}
	if !foundEnd {
		logger.Warn("variance end line not found, ranking to the last line",
			slog.String("sheet", table.Name), slog.String("label", opts.EndLabel))
	}

	hundred := decimal.NewFromInt(100)
	var rows [][]string
	for i, row := range ExcludeTotals(window).Rows {
		pct, okPct := ParseAmount(row[pctCol])
		dol, okDol := ParseAmount(row[dolCol])
		if !okPct || !okDol {
			logger.Debug("skipping variance line without values",
				slog.String("sheet", table.Name), slog.Int("row", i), slog.String("label", row[0]))
			continue
		}
		rows = append(rows, []string{row[0], pct.Mul(hundred).String(), dol.String()})
	}
	lines := dataprocessing.NewTable(table.Name, []string{ColumnLineItem, ColumnPercent, ColumnDollar}, rows)

	byPercent, err := Rank(lines, 1, opts.TopN)
	if err != nil {
		return nil, err
	}
	byDollar, err := Rank(lines, 2, opts.TopN)
	if err != nil {
		return nil, err
	}

	return &VarianceResult{
		PercentColumn: table.Columns[pctCol],
		DollarColumn:  table.Columns[dolCol],
		ByPercent:     rankedRows(byPercent),
		ByDollar:      rankedRows(byDollar),
	}, nil
}

// varianceColumns resolves the percent and dollar columns by header, falling
// back to the last and second to last columns.
func varianceColumns(table *dataprocessing.Table, opts VarianceOptions, logger *slog.Logger) (pct, dol int, err error) {
	pct, dol = lastColumnWith(table, opts.PercentMarker), lastColumnWith(table, opts.DollarMarker)
	if pct > 0 && dol > 0 && pct != dol {
		return pct, dol, nil
	}

	if table.Width() < 3 {
		return 0, 0, fmt.Errorf("sheet %q has %d columns, variance needs a label and two value columns", table.Name, table.Width())
	}
	logger.Warn("variance columns not found by header, using the last two columns",
		slog.String("sheet", table.Name),
		slog.String("percent_marker", opts.PercentMarker),
		slog.String("dollar_marker", opts.DollarMarker))
	return table.Width() - 1, table.Width() - 2, nil
}

func lastColumnWith(table *dataprocessing.Table, marker string) int {
	if marker == "" {
		return -1
	}
	for c := table.Width() - 1; c > 0; c-- {
		if strings.Contains(table.Columns[c], marker) {
			return c
		}
	}
	return -1
}

// rankedRows converts a Rank output over the line table.
func rankedRows(table *dataprocessing.Table) []RankedRow {
	out := make([]RankedRow, 0, table.Len())
	for _, row := range table.Rows {
		rank, _ := strconv.Atoi(row[0])
		pct, _ := ParseAmount(row[2])
		dol, _ := ParseAmount(row[3])
		out = append(out, RankedRow{
			Rank:     rank,
			LineItem: row[1],
			Percent:  pct.Round(0).IntPart(),
			Dollar:   dol.Round(0).IntPart(),
		})
	}
	return out
}

// RankedTable renders ranked rows as a table for prompting and display.
func RankedTable(name string, rows []RankedRow) *dataprocessing.Table {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			strconv.Itoa(r.Rank),
			r.LineItem,
			strconv.FormatInt(r.Percent, 10),
			strconv.FormatInt(r.Dollar, 10),
		}
	}
	return dataprocessing.NewTable(name, []string{RankColumn, ColumnLineItem, ColumnPercent, ColumnDollar}, records)
}
