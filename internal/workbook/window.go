package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Window identifies one logical table inside a workbook: an inclusive,
// 1-indexed row range and a column letter range on a named sheet.
type Window struct {
	Sheet       string `yaml:"sheet" json:"sheet" validate:"required"`
	FirstRow    int    `yaml:"first_row" json:"first_row" validate:"min=1"`
	LastRow     int    `yaml:"last_row" json:"last_row" validate:"gtefield=FirstRow"`
	FirstColumn string `yaml:"first_column" json:"first_column" validate:"required,column"`
	LastColumn  string `yaml:"last_column" json:"last_column" validate:"required,column"`
}

// Columns returns the 1-indexed column numbers of the window.
func (w Window) Columns() (first, last int, err error) {
	first, err = excelize.ColumnNameToNumber(strings.TrimSpace(w.FirstColumn))
	if err != nil {
		return 0, 0, fmt.Errorf("first column %q: %w", w.FirstColumn, err)
	}
	last, err = excelize.ColumnNameToNumber(strings.TrimSpace(w.LastColumn))
	if err != nil {
		return 0, 0, fmt.Errorf("last column %q: %w", w.LastColumn, err)
	}
	if first > last {
		return 0, 0, fmt.Errorf("column range %s:%s is empty", w.FirstColumn, w.LastColumn)
	}
	return first, last, nil
}

// Validate checks the window geometry.
func (w Window) Validate() error {
	if w.Sheet == "" {
		return fmt.Errorf("window has no sheet name")
	}
	if w.FirstRow < 1 || w.LastRow < w.FirstRow {
		return fmt.Errorf("row range %d:%d is invalid", w.FirstRow, w.LastRow)
	}
	_, _, err := w.Columns()
	return err
}

// Ref renders the window in A1 notation, e.g. "A7:N12".
func (w Window) Ref() string {
	return fmt.Sprintf("%s%d:%s%d", strings.ToUpper(w.FirstColumn), w.FirstRow, strings.ToUpper(w.LastColumn), w.LastRow)
}

func (w Window) String() string {
	return fmt.Sprintf("%s!%s", w.Sheet, w.Ref())
}

// Grid is a rectangular block of raw cell text. The empty string marks a
// missing cell.
type Grid [][]string

// Height returns the number of rows.
func (g Grid) Height() int {
	return len(g)
}

// Width returns the number of columns.
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}
