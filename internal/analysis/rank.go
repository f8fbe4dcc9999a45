package analysis

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

// RankColumn is the name of the column Rank prepends.
const RankColumn = "Rank"

// Rank sorts the rows of table by the numeric value in column, descending,
// keeps the first n and prepends a 1-based RankColumn. Rows whose value is
// missing or not numeric are left out. Equal values keep table order. A table
// with fewer than n ranked rows returns all of them.
func Rank(table *dataprocessing.Table, column, n int) (*dataprocessing.Table, error) {
	if column < 1 || column >= table.Width() {
		return nil, fmt.Errorf("rank column %d outside 1..%d", column, table.Width()-1)
	}
	if n < 1 {
		return nil, fmt.Errorf("rank size must be positive, got %d", n)
	}

	type entry struct {
		value decimal.Decimal
		row   []string
	}
	entries := make([]entry, 0, table.Len())
	for _, row := range table.Rows {
		if v, ok := ParseAmount(row[column]); ok {
			entries = append(entries, entry{value: v, row: row})
		}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return b.value.Cmp(a.value)
	})
	entries = entries[:min(n, len(entries))]

	columns := append([]string{RankColumn}, table.Columns...)
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = append([]string{strconv.Itoa(i + 1)}, e.row...)
	}
	return dataprocessing.NewTable(table.Name, columns, rows), nil
}
