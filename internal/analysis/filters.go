package analysis

import (
	"strings"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

// IsTotal reports whether a label names a total line.
func IsTotal(label string) bool {
	return strings.Contains(strings.ToLower(label), "total")
}

// TotalRows keeps the rows whose label contains "total", in any case.
func TotalRows(table *dataprocessing.Table) *dataprocessing.Table {
	return table.Filter(func(label string, _ []string) bool { return IsTotal(label) })
}

// ExcludeTotals drops the rows TotalRows keeps.
func ExcludeTotals(table *dataprocessing.Table) *dataprocessing.Table {
	return table.Filter(func(label string, _ []string) bool { return !IsTotal(label) })
}

// SelectLabels keeps the rows whose label is listed, in table order.
func SelectLabels(table *dataprocessing.Table, labels []string) *dataprocessing.Table {
	keep := make(map[string]bool, len(labels))
	for _, l := range labels {
		keep[l] = true
	}
	return table.Filter(func(label string, _ []string) bool { return keep[label] })
}

// Slice returns the rows from the first row labelled start through the first
// row labelled end at or after it, inclusive. A missing start begins at the
// first row and a missing end runs to the last; the flags report which
// boundaries were found.
func Slice(table *dataprocessing.Table, start, end string) (out *dataprocessing.Table, foundStart, foundEnd bool) {
	from, foundStart := table.Find(start)
	if !foundStart {
		from = 0
	}

	to := table.Len() - 1
	for i := from; i < table.Len(); i++ {
		if table.Label(i) == end {
			to, foundEnd = i, true
			break
		}
	}

	var rows [][]string
	if from <= to {
		rows = table.Rows[from : to+1]
	}
	return dataprocessing.NewTable(table.Name, table.Columns, rows), foundStart, foundEnd
}
