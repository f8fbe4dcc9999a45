package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// SheetFixture describes one worksheet of a generated workbook. Rows are
// written starting at Origin ("A7"). When End is set, a marker is written at
// that cell so the sheet's extent reaches it.
type SheetFixture struct {
	Name   string
	Origin string
	End    string
	Rows   [][]any
}

// WriteWorkbook saves the sheets as an .xlsx file at path.
func WriteWorkbook(t testing.TB, path string, sheets ...SheetFixture) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet.Name))
		} else {
			_, err := f.NewSheet(sheet.Name)
			require.NoError(t, err)
		}

		col, row, err := excelize.CellNameToCoordinates(sheet.Origin)
		require.NoError(t, err)
		for r, values := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(col, row+r)
			require.NoError(t, err)
			values := values
			require.NoError(t, f.SetSheetRow(sheet.Name, cell, &values))
		}

		if sheet.End != "" {
			require.NoError(t, f.SetCellValue(sheet.Name, sheet.End, "end"))
		}
	}

	require.NoError(t, f.SaveAs(path))
}

// FixtureMonths are the twelve month-end dates on the trend sheets.
func FixtureMonths() []time.Time {
	months := make([]time.Time, 12)
	for i := range months {
		months[i] = time.Date(2023, time.Month(11+i), 0, 0, 0, 0, 0, time.UTC)
	}
	return months
}

// FixtureTrendColumns is the processed header of the trend sheets.
func FixtureTrendColumns() []string {
	cols := []string{""}
	for _, m := range FixtureMonths() {
		cols = append(cols, m.Format("January/2006"))
	}
	return append(cols, FixtureMonths()[11].Format("January/2006")+" YTD")
}

// IncomeLine is one income statement line with its first-month value. Month m
// (0-based) holds Base+10*m and the year-to-date column holds their sum.
type IncomeLine struct {
	Label string
	Base  int
}

// YTD returns the year-to-date value of the line.
func (l IncomeLine) YTD() int {
	return 12*l.Base + 10*66
}

// IncomeLines are the line items of the generated income statement.
var IncomeLines = []IncomeLine{
	{"Room and Board Income", 90000},
	{"Care Level Income", 30000},
	{"Ancillary Income", 4000},
	{"Other Income", 1000},
	{"Total Revenue", 125000},
	{"Total Nursing Salaries", 20000},
	{"Total Dietary Salaries", 8000},
	{"Total Housekeeping Salaries", 3000},
	{"Total Recreation Salaries", 2000},
	{"Total Marketing Salaries", 2500},
	{"Total R&M Salaries", 1500},
	{"Total Administrative Salaries", 6000},
	{"Total Nursing Expenses", 26000},
	{"Total Dietary Expenses", 14000},
	{"Total Housekeeping and Laundry Expenses", 5000},
	{"Total Recreation Expenses", 3000},
	{"Total Marketing Expenses", 4000},
	{"Total R&M Expenses", 3500},
	{"Outside Ground Services", 800},
	{"Utilities", 6000},
	{"Total G&A Expenses", 12000},
	{"Management Fee", 6250},
	{"Real Estate Taxes", 2200},
	{"Operating Income", 39250},
	{"Total Rent and Depreciation", 18000},
	{"Total Insurance", 2500},
	{"Total Census", 104},
}

// VarianceLine is one expense line of the month comparative sheets. Dollar is
// the variance amount and Percent the variance as a fraction.
type VarianceLine struct {
	Label   string
	Dollar  float64
	Percent float64
}

// VarianceLines are the rows of the detailed month comparative body in order.
var VarianceLines = []VarianceLine{
	{"Room and Board Income", 2500, 0.03},
	{"Total Revenue", 2600, 0.02},
	{"Nursing Expenses", 1200, 0.05},
	{"Nursing Salaries", -300, -0.03},
	{"Nursing Supplies", 450, 0.12},
	{"Total Nursing Expenses", 1350, 0.04},
	{"Dietary Food", 0, 0},
	{"Dietary Salaries", 800, 0.08},
	{"Total Dietary Expenses", 800, 0.06},
	{"Housekeeping Supplies", 150, 0.02},
	{"Laundry", -50, -0.01},
	{"Recreation Supplies", 75, 0.15},
	{"Marketing Advertising", -400, -0.2},
	{"Repairs and Maintenance", 600, 0.1},
	{"Utilities", 950, 0.07},
	{"Management Fee", 200, 0.01},
	{"Real Estate Taxes", 100, 0.005},
	{"Total Real Estate Taxes", 100, 0.005},
	{"Net Operating Income", 3000, 0.09},
}

// LaborLines are the rows of the labor sheet body.
var LaborLines = []string{
	"RN Day Shift",
	"Total RN",
	"Total LPN",
	"Total Aides",
	"Total Nursing Salaries",
	"Total Executive Director",
	"Total Maintenance Staff",
	"Total Dietary Salaries",
}

// RevenueLines are the rows of the revenue detail sheet body.
var RevenueLines = []string{
	"Room and Board - Private",
	"Room and Board - Medicaid",
	"Total Room and Board Income",
	"Care Level 1",
	"Total Care Level Income",
	"Total Revenue",
}

// FinancialWorkbook writes a statements workbook matching the default layout
// into dir and returns its path.
func FinancialWorkbook(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "2024 09 Financial Statements.xlsx")
	WriteWorkbook(t, path, FinancialSheets()...)
	return path
}

// FinancialSheets returns the worksheets of FinancialWorkbook.
func FinancialSheets() []SheetFixture {
	return []SheetFixture{
		censusSheet(),
		balanceSheet(),
		incomeStatementSheet(),
		comparativeSheet("IS Month Comparative", VarianceLines[:8], "M52"),
		comparativeSheet("IS Month Comparative Detailed", VarianceLines, "M200"),
		revenueSheet(),
		laborSheet(),
	}
}

func trendHeader() [][]any {
	label := []any{"Month Ending"}
	dates := []any{""}
	for _, m := range FixtureMonths() {
		label = append(label, "Actual")
		dates = append(dates, m.Format("01/02/2006"))
	}
	label = append(label, "Actual")
	dates = append(dates, FixtureMonths()[11].Format("01/02/2006"))
	return [][]any{label, dates}
}

func monthlyRow(label string, base int) []any {
	row := []any{label}
	sum := 0
	for m := range 12 {
		v := base + 10*m
		sum += v
		row = append(row, v)
	}
	return append(row, sum)
}

func summaryRows() [][]any {
	return [][]any{
		monthlyRow("Available Units", 120),
		monthlyRow("Occupied Units", 100),
		monthlyRow("Occupancy", 83),
	}
}

func censusSheet() SheetFixture {
	rows := append(trendHeader(), summaryRows()...)
	rows = append(rows, monthlyRow("Average Rate", 4500))
	return SheetFixture{Name: "Census & Revenue Trend", Origin: "A7", Rows: rows}
}

func incomeStatementSheet() SheetFixture {
	rows := append(trendHeader(), summaryRows()...)
	rows = append(rows, []any{"Revenue", "", "", ""})
	for _, line := range IncomeLines {
		rows = append(rows, monthlyRow(line.Label, line.Base))
	}
	return SheetFixture{Name: "Income Statement T-12", Origin: "A7", End: "N160", Rows: rows}
}

func balanceSheet() SheetFixture {
	rows := [][]any{
		{"Account", "Current", "Prior", "Net", "Net", "Notes"},
		{"", "Month", "Year End", "Change $", "Change %", ""},
		{"Assets", "", "", "", "", ""},
		{"Cash", 150000, 120000, 30000, 0.25, ""},
		{"Accounts Receivable", 80000, 90000, -10000, -0.111, ""},
		{"Total Current Assets", 230000, 210000, 20000, 0.095, ""},
		{"Total Assets", 1230000, 1210000, 20000, 0.017, ""},
		{"Accounts Payable", 45000, 40000, 5000, 0.125, ""},
		{"Total Liabilities", 845000, 840000, 5000, 0.006, ""},
		{"Total Equity", 385000, 370000, 15000, 0.041, ""},
	}
	return SheetFixture{Name: "Balance Sheet", Origin: "A6", End: "F74", Rows: rows}
}

func comparativeHeader() [][]any {
	top := []any{""}
	mid := []any{""}
	low := []any{"Line Item"}
	for _, period := range []string{"Current Month", "Year to Date", "Prior Year"} {
		top = append(top, period, period, period, period)
		mid = append(mid, "Actual", "Budget", "Variance", "Variance")
		low = append(low, "", "", "$", "%")
	}
	return [][]any{top, mid, low}
}

func comparativeSheet(name string, lines []VarianceLine, end string) SheetFixture {
	rows := comparativeHeader()
	rows = append(rows, []any{"Operating Expenses", "", "", ""})
	for i, line := range lines {
		actual := 10000 + 100*float64(i)
		row := []any{line.Label}
		for range 3 {
			row = append(row, actual, actual-line.Dollar, line.Dollar, line.Percent)
		}
		rows = append(rows, row)
	}
	return SheetFixture{Name: name, Origin: "A7", End: end, Rows: rows}
}

func revenueSheet() SheetFixture {
	rows := comparativeHeader()
	for i, label := range RevenueLines {
		actual := 20000 + 1000*float64(i)
		row := []any{label}
		for range 3 {
			row = append(row, actual, actual-500, 500, 500/actual)
		}
		rows = append(rows, row)
	}
	return SheetFixture{Name: "Revenue Detailed", Origin: "A7", End: "M54", Rows: rows}
}

func laborSheet() SheetFixture {
	rows := [][]any{
		{"", "Current Month", "Current Month", "Current Month", "Current Month", "Year to Date", "Year to Date", "Year to Date", "Year to Date"},
		{"", "Hours", "Hours", "Dollars", "Dollars", "Hours", "Hours", "Dollars", "Dollars"},
		{"Position", "Actual", "Budget", "Actual", "Budget", "Actual", "Budget", "Actual", "Budget"},
	}
	for i, label := range LaborLines {
		hours := 400 + 10*i
		rows = append(rows, []any{label, hours, hours - 5, hours * 30, (hours - 5) * 30, hours * 9, hours * 9, hours * 270, hours * 265})
	}
	return SheetFixture{Name: "Labor", Origin: "A7", End: "I145", Rows: rows}
}
