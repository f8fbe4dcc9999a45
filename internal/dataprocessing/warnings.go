package dataprocessing

import "fmt"

// WarningKind classifies a recoverable data-quality issue.
type WarningKind string

const (
	// DateParseWarning marks a time-series header that is not a date.
	DateParseWarning WarningKind = "DateParseWarning"
	// EmptyTableWarning marks a table left with no body rows.
	EmptyTableWarning WarningKind = "EmptyTableWarning"
)

// Warning is a non-fatal issue found while processing a sheet.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Sheet   string      `json:"sheet"`
	Column  int         `json:"column,omitempty"`
	Value   string      `json:"value,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Sheet, w.Message)
}

func dateWarning(sheet string, column int, value string) Warning {
	return Warning{
		Kind:    DateParseWarning,
		Sheet:   sheet,
		Column:  column,
		Value:   value,
		Message: fmt.Sprintf("header %q in column %d is not a date, kept as is", value, column+1),
	}
}

func emptyWarning(sheet string) Warning {
	return Warning{
		Kind:    EmptyTableWarning,
		Sheet:   sheet,
		Message: "no data rows left after cleaning",
	}
}
