package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
)

func incomeTable() *dataprocessing.Table {
	return dataprocessing.NewTable("Income Statement T-12",
		[]string{"", "August/2024", "September/2024 YTD"},
		[][]string{
			{"Total Revenue", "125000", "1500000"},
			{"Total Nursing Salaries", "20000", "240000"},
			{"Total Dietary Salaries", "8000.50", ""},
			{"Total Nursing Expenses", "26000", "312000"},
			{"Utilities", "6000", "72000"},
			{"Total Insurance", "n/a", "30000"},
		})
}

func TestAggregate(t *testing.T) {
	out := Aggregate(incomeTable(), IncomeGroups)

	assert.Equal(t, []string{"", "August/2024", "September/2024 YTD"}, out.Columns)
	assert.Equal(t, []string{"Total Revenue", "Total Salaries", "Total Expenses", "Fixed Costs"}, out.Labels())

	assert.Equal(t, []string{"Total Revenue", "125000", "1500000"}, out.Rows[0])
	assert.Equal(t, []string{"Total Salaries", "28000.5", "240000"}, out.Rows[1])
	assert.Equal(t, []string{"Fixed Costs", "", "30000"}, out.Rows[3])
}

func TestAggregate_OmitsUnmatchedGroups(t *testing.T) {
	groups := []Group{
		{Name: "Revenue", Labels: []string{"Total Revenue"}},
		{Name: "Census", Labels: []string{"Total Census"}},
	}

	full := Aggregate(incomeTable(), groups[:1])
	withMissing := Aggregate(incomeTable(), groups)

	assert.Equal(t, 1, withMissing.Len())
	assert.Equal(t, full.Len(), withMissing.Len())
	_, found := withMissing.Find("Census")
	assert.False(t, found)
}

func TestAggregate_SumsRepeatedLabels(t *testing.T) {
	table := dataprocessing.NewTable("x", []string{"", "v"}, [][]string{
		{"Utilities", "1"},
		{"Utilities", "2"},
	})

	out := Aggregate(table, []Group{{Name: "All", Labels: []string{"Utilities"}}})
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "3", out.Rows[0][1])
}

func TestAggregate_EmptyTable(t *testing.T) {
	out := Aggregate(dataprocessing.NewTable("x", nil, nil), IncomeGroups)
	assert.True(t, out.Empty())
}

func TestFilters(t *testing.T) {
	table := incomeTable()

	assert.Equal(t, []string{
		"Total Revenue", "Total Nursing Salaries", "Total Dietary Salaries", "Total Nursing Expenses", "Total Insurance",
	}, TotalRows(table).Labels())
	assert.Equal(t, []string{"Utilities"}, ExcludeTotals(table).Labels())

	selected := SelectLabels(table, []string{"Total Insurance", "Total Revenue", "Total Aides"})
	assert.Equal(t, []string{"Total Revenue", "Total Insurance"}, selected.Labels())

	assert.True(t, IsTotal("GRAND TOTAL"))
	assert.False(t, IsTotal("Utilities"))
}

func TestSlice(t *testing.T) {
	table := incomeTable()

	out, start, end := Slice(table, "Total Nursing Salaries", "Total Nursing Expenses")
	assert.True(t, start)
	assert.True(t, end)
	assert.Equal(t, []string{"Total Nursing Salaries", "Total Dietary Salaries", "Total Nursing Expenses"}, out.Labels())

	out, start, end = Slice(table, "Missing", "Total Dietary Salaries")
	assert.False(t, start)
	assert.True(t, end)
	assert.Equal(t, 3, out.Len())

	out, start, end = Slice(table, "Utilities", "Total Revenue")
	assert.True(t, start)
	assert.False(t, end)
	assert.Equal(t, []string{"Utilities", "Total Insurance"}, out.Labels())
}
