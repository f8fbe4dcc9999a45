package workbook

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook is a read-only view over an opened spreadsheet file.
type Workbook struct {
	file   *excelize.File
	sheets []string
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return newWorkbook(f), nil
}

// OpenReader opens a workbook from r.
func OpenReader(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return newWorkbook(f), nil
}

func newWorkbook(f *excelize.File) *Workbook {
	return &Workbook{file: f, sheets: f.GetSheetList()}
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheets lists the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return slices.Clone(w.sheets)
}

// HasSheet reports whether the workbook contains a sheet with exactly this name.
func (w *Workbook) HasSheet(name string) bool {
	return slices.Contains(w.sheets, name)
}

// Extent returns the number of rows and columns the sheet spans: the larger of
// its declared dimension and its populated cells.
func (w *Workbook) Extent(sheet string) (rows, cols int, err error) {
	if !w.HasSheet(sheet) {
		return 0, 0, ErrSheetNotFound
	}
	_, rows, cols, err = w.readSheet(sheet)
	return rows, cols, err
}

func (w *Workbook) readSheet(sheet string) (data [][]string, rows, cols int, err error) {
	data, err = w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, 0, err
	}
	rows, cols = populatedExtent(data)

	if dim, err := w.file.GetSheetDimension(sheet); err == nil {
		if r, c, ok := dimensionExtent(dim); ok {
			rows, cols = max(rows, r), max(cols, c)
		}
	}
	return data, rows, cols, nil
}

// Extract returns the cells covered by win, exactly win's height by width.
// Cells are read as raw values: numbers arrive unformatted.
func (w *Workbook) Extract(win Window) (Grid, error) {
	firstCol, lastCol, err := win.Columns()
	if err != nil {
		return nil, &ExtractionError{Window: win, Err: err}
	}
	if win.FirstRow < 1 || win.LastRow < win.FirstRow {
		return nil, &ExtractionError{Window: win, Err: fmt.Errorf("row range %d:%d is invalid", win.FirstRow, win.LastRow)}
	}

	if !w.HasSheet(win.Sheet) {
		return nil, &ExtractionError{
			Window: win,
			Err:    ErrSheetNotFound,
			Detail: "available sheets: " + strings.Join(w.sheets, ", "),
		}
	}

	data, rows, cols, err := w.readSheet(win.Sheet)
	if err != nil {
		return nil, &ExtractionError{Window: win, Err: err}
	}

	if win.LastRow > rows || lastCol > cols {
		lastName, _ := excelize.ColumnNumberToName(max(cols, 1))
		return nil, &ExtractionError{
			Window: win,
			Err:    ErrRangeOutOfBounds,
			Detail: fmt.Sprintf("sheet extent is A1:%s%d", lastName, rows),
		}
	}

	grid := make(Grid, 0, win.LastRow-win.FirstRow+1)
	for r := win.FirstRow; r <= win.LastRow; r++ {
		row := make([]string, lastCol-firstCol+1)
		if r-1 < len(data) {
			src := data[r-1]
			for c := firstCol; c <= lastCol && c-1 < len(src); c++ {
				row[c-firstCol] = src[c-1]
			}
		}
		grid = append(grid, row)
	}

	return grid, nil
}

// populatedExtent measures the ragged rows returned by GetRows.
func populatedExtent(data [][]string) (rows, cols int) {
	rows = len(data)
	for _, row := range data {
		cols = max(cols, len(row))
	}
	return rows, cols
}

// dimensionExtent parses a sheet dimension such as "A1:N160" or "B2".
func dimensionExtent(dim string) (rows, cols int, ok bool) {
	if dim == "" {
		return 0, 0, false
	}
	parts := strings.Split(dim, ":")
	c, r, err := excelize.CellNameToCoordinates(parts[len(parts)-1])
	if err != nil {
		return 0, 0, false
	}
	return r, c, true
}
