package report

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency of every amount in the workbook.
const Currency = money.USD

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

func symbol() string {
	if c := money.GetCurrency(Currency); c != nil {
		return c.Grapheme
	}
	return "$"
}

// FormatDollars formats whole dollars with grouping, e.g. "$12,345.00".
// Negative amounts keep their sign.
func FormatDollars(dollars int64) string {
	return money.New(dollars*100, Currency).Display()
}

// CompactMoney abbreviates the magnitude of v: "$1.2M", "$45.6K" or "$950".
// The sign is dropped, as flow values are shown by direction.
func CompactMoney(v decimal.Decimal) string {
	abs := v.Truncate(0).Abs()
	switch {
	case abs.GreaterThanOrEqual(million):
		return symbol() + abs.Div(million).StringFixed(1) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return symbol() + abs.Div(thousand).StringFixed(1) + "K"
	default:
		return symbol() + abs.StringFixed(0)
	}
}
