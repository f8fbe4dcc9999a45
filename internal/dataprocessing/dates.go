package dataprocessing

import (
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// MonthYearLayout renders a header date as "September/2024".
const MonthYearLayout = "January/2006"

// DefaultDateLayouts are the header formats recognised on time-series sheets.
var DefaultDateLayouts = []string{"01/02/2006", "1/2/2006"}

// Excel serial numbers in this range are treated as dates (1954 to 9999).
const (
	minSerialDate = 20000
	maxSerialDate = 2958465
)

// NormalizeMonthYear converts a header date into its Month/Year display form.
// Text is matched against layouts in order; a bare number in the plausible
// range is read as an Excel serial date, since raw cell values carry dates
// that way. The second result is false when nothing matched, in which case the
// value is returned unchanged.
func NormalizeMonthYear(value string, layouts []string) (string, bool) {
	if value == "" {
		return value, false
	}
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(MonthYearLayout), true
		}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial >= minSerialDate && serial <= maxSerialDate {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(MonthYearLayout), true
		}
	}

	return value, false
}
