package analysis

import (
	"strings"

	"github.com/shopspring/decimal"
)

var amountReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseAmount reads a cell as a decimal. It accepts plain and scientific
// notation, currency symbols, thousands separators, accounting negatives
// "(1,200)" and percentages "5%" (returned as the fraction 0.05). Missing or
// non-numeric cells report false.
func ParseAmount(cell string) (decimal.Decimal, bool) {
	s := amountReplacer.Replace(strings.TrimSpace(cell))
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSuffix(s, "%")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if percent {
		d = d.Div(decimal.NewFromInt(100))
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}
