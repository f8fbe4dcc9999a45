package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

// Group names a set of row labels that are summed into one summary row.
type Group struct {
	Name   string   `json:"name" yaml:"name"`
	Labels []string `json:"labels" yaml:"labels"`
}

// Aggregate returns one row per group holding the column-wise sum of every row
// whose label belongs to the group. Groups matching no row are left out rather
// than emitted as zeros. Missing and non-numeric cells add nothing; a column
// with no numeric cell among the matches stays missing.
func Aggregate(table *dataprocessing.Table, groups []Group) *dataprocessing.Table {
	var rows [][]string
	if table.Width() == 0 {
		return dataprocessing.NewTable(table.Name, table.Columns, rows)
	}

	for _, group := range groups {
		members := make(map[string]bool, len(group.Labels))
		for _, label := range group.Labels {
			members[label] = true
		}

		sums := make([]decimal.Decimal, table.Width())
		seen := make([]bool, table.Width())
		matched := false

		for i, row := range table.Rows {
			if !members[table.Label(i)] {
				continue
			}
			matched = true
			for c := 1; c < len(row); c++ {
				if v, ok := ParseAmount(row[c]); ok {
					sums[c] = sums[c].Add(v)
					seen[c] = true
				}
			}
		}

		if !matched {
			continue
		}

		out := make([]string, table.Width())
		out[0] = group.Name
		for c := 1; c < len(out); c++ {
			if seen[c] {
				out[c] = sums[c].String()
			}
		}
		rows = append(rows, out)
	}

	return dataprocessing.NewTable(table.Name, table.Columns, rows)
}
