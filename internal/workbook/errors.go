package workbook

import (
	"errors"
	"fmt"
)

var (
	// ErrSheetNotFound indicates the declared sheet is absent from the workbook.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrRangeOutOfBounds indicates the declared window exceeds the sheet's extents.
	ErrRangeOutOfBounds = errors.New("range out of bounds")
)

// ExtractionError reports a failed window extraction.
type ExtractionError struct {
	Window Window
	Detail string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("extract %s: %v: %s", e.Window, e.Err, e.Detail)
	}
	return fmt.Sprintf("extract %s: %v", e.Window, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
