package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmquan/logos-living-capital/internal/dataprocessing"
	"github.com/hdmquan/logos-living-capital/internal/shared/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRank(t *testing.T) {
	values := []string{"5", "-3", "12", "0", "8", "7", "1", "2", "9", "4", "11", "6"}
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{fmt.Sprintf("Line %d", i), v}
	}
	table := dataprocessing.NewTable("x", []string{"Line Item", "% Value"}, rows)

	ranked, err := Rank(table, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{RankColumn, "Line Item", "% Value"}, ranked.Columns)
	require.Equal(t, 10, ranked.Len())
	assert.Equal(t, []string{"1", "Line 2", "12"}, ranked.Rows[0])
	for i, row := range ranked.Rows {
		assert.Equal(t, fmt.Sprint(i+1), row[0])
		if i > 0 {
			prev, _ := ParseAmount(ranked.Rows[i-1][2])
			cur, _ := ParseAmount(row[2])
			assert.True(t, prev.GreaterThanOrEqual(cur))
		}
	}
}

func TestRank_FewerRowsThanN(t *testing.T) {
	table := dataprocessing.NewTable("x", []string{"Line Item", "$ Value"}, [][]string{
		{"A", "10"}, {"B", "30"}, {"C", "20"},
	})

	ranked, err := Rank(table, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, []string{ranked.Rows[0][1], ranked.Rows[1][1], ranked.Rows[2][1]})
	assert.Equal(t, 3, ranked.Len())
}

func TestRank_TiesAndNonNumeric(t *testing.T) {
	table := dataprocessing.NewTable("x", []string{"Line Item", "v"}, [][]string{
		{"first", "5"}, {"blank", ""}, {"second", "5"}, {"text", "n/a"},
	})

	ranked, err := Rank(table, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, ranked.Len())
	assert.Equal(t, "first", ranked.Rows[0][1])
	assert.Equal(t, "second", ranked.Rows[1][1])
}

func TestRank_InvalidArguments(t *testing.T) {
	table := dataprocessing.NewTable("x", []string{"Line Item", "v"}, nil)

	_, err := Rank(table, 0, 10)
	assert.Error(t, err)
	_, err = Rank(table, 2, 10)
	assert.Error(t, err)
	_, err = Rank(table, 1, 0)
	assert.Error(t, err)
}

// detailTable mirrors the detailed month comparative sheet after processing.
func detailTable() *dataprocessing.Table {
	columns := []string{"Line Item",
		"Current Month Actual", "Current Month Budget", "Current Month Variance $", "Current Month Variance %",
		"Prior Year Actual", "Prior Year Budget", "Prior Year Variance $", "Prior Year Variance %",
	}
	var rows [][]string
	for _, line := range testutil.VarianceLines {
		rows = append(rows, []string{line.Label, "1", "1", "999", "0.99", "1", "1",
			fmt.Sprint(line.Dollar), fmt.Sprint(line.Percent)})
	}
	return dataprocessing.NewTable("IS Month Comparative Detailed", columns, rows)
}

func TestVariance(t *testing.T) {
	res, err := Variance(detailTable(), DefaultVarianceOptions(), discard)
	require.NoError(t, err)

	assert.Equal(t, "Prior Year Variance %", res.PercentColumn)
	assert.Equal(t, "Prior Year Variance $", res.DollarColumn)

	require.Len(t, res.ByPercent, 10)
	assert.Equal(t, RankedRow{Rank: 1, LineItem: "Recreation Supplies", Percent: 15, Dollar: 75}, res.ByPercent[0])
	assert.Equal(t, RankedRow{Rank: 2, LineItem: "Nursing Supplies", Percent: 12, Dollar: 450}, res.ByPercent[1])
	assert.Equal(t, RankedRow{Rank: 9, LineItem: "Real Estate Taxes", Percent: 1, Dollar: 100}, res.ByPercent[8])
	assert.Equal(t, "Dietary Food", res.ByPercent[9].LineItem)

	require.Len(t, res.ByDollar, 10)
	assert.Equal(t, RankedRow{Rank: 1, LineItem: "Nursing Expenses", Percent: 5, Dollar: 1200}, res.ByDollar[0])
	assert.Equal(t, "Utilities", res.ByDollar[1].LineItem)
	assert.Equal(t, "Dietary Food", res.ByDollar[9].LineItem)

	for _, view := range [][]RankedRow{res.ByPercent, res.ByDollar} {
		for i, row := range view {
			assert.Equal(t, i+1, row.Rank)
			assert.NotContains(t, row.LineItem, "Total")
			assert.NotEqual(t, "Total Revenue", row.LineItem)
			assert.NotEqual(t, "Net Operating Income", row.LineItem)
		}
	}
}

func TestVariance_ThreeRows(t *testing.T) {
	table := dataprocessing.NewTable("x", []string{"Line Item", "Variance $", "Variance %"}, [][]string{
		{"Nursing Expenses", "100", "0.1"},
		{"Dietary", "300", "0.02"},
		{"Total Real Estate Taxes", "50", "0.5"},
		{"Utilities", "200", "0.3"},
	})

	res, err := Variance(table, DefaultVarianceOptions(), discard)
	require.NoError(t, err)

	assert.Len(t, res.ByPercent, 2)
	assert.Len(t, res.ByDollar, 2)

	opts := DefaultVarianceOptions()
	opts.EndLabel = "Missing"
	res, err = Variance(table, opts, discard)
	require.NoError(t, err)
	require.Len(t, res.ByPercent, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{res.ByPercent[0].Rank, res.ByPercent[1].Rank, res.ByPercent[2].Rank})
	assert.Equal(t, "Utilities", res.ByPercent[0].LineItem)
	assert.Equal(t, "Dietary", res.ByDollar[0].LineItem)
}

func TestVariance_PositionalFallback(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	table := dataprocessing.NewTable("x", []string{"Line", "Dollars", "Ratio"}, [][]string{
		{"Nursing Expenses", "-20", "-0.255"},
		{"Total Real Estate Taxes", "1", "1"},
	})

	res, err := Variance(table, DefaultVarianceOptions(), logger)
	require.NoError(t, err)

	assert.Equal(t, "Ratio", res.PercentColumn)
	assert.Equal(t, "Dollars", res.DollarColumn)
	require.Len(t, res.ByPercent, 1)
	assert.Equal(t, int64(-26), res.ByPercent[0].Percent)
	assert.True(t, logs.ContainsMessage("variance columns not found by header, using the last two columns"))
}

func TestVariance_TooNarrow(t *testing.T) {
	_, err := Variance(dataprocessing.NewTable("x", []string{"Line", "Only %"}, nil), DefaultVarianceOptions(), discard)
	assert.Error(t, err)
}

func TestRankedTable(t *testing.T) {
	table := RankedTable("v", []RankedRow{{Rank: 1, LineItem: "Utilities", Percent: 7, Dollar: -950}})
	assert.Equal(t, []string{"Rank", "Line Item", "% Value", "$ Value"}, table.Columns)
	assert.Equal(t, []string{"1", "Utilities", "7", "-950"}, table.Rows[0])
}
