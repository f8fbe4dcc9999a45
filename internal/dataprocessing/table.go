package dataprocessing

import (
	"slices"
	"strings"
)

// Table is a cleaned rectangular table with a single header row. The first
// column holds the line-item label that indexes each row. The empty string
// marks a missing cell.
type Table struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewTable builds a table, padding or truncating rows to the column count.
func NewTable(name string, columns []string, rows [][]string) *Table {
	width := len(columns)
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		r := make([]string, width)
		copy(r, row)
		out = append(out, r)
	}
	return &Table{Name: name, Columns: slices.Clone(columns), Rows: out}
}

// Len returns the number of body rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// Empty reports whether the table has no body rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Label returns the line-item label of row i.
func (t *Table) Label(i int) string {
	if len(t.Rows[i]) == 0 {
		return ""
	}
	return t.Rows[i][0]
}

// Labels returns every row label in table order.
func (t *Table) Labels() []string {
	labels := make([]string, t.Len())
	for i := range labels {
		labels[i] = t.Label(i)
	}
	return labels
}

// Find returns the index of the first row labelled label.
func (t *Table) Find(label string) (int, bool) {
	for i := range t.Rows {
		if t.Label(i) == label {
			return i, true
		}
	}
	return -1, false
}

// ColumnIndex returns the index of the first column named name, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.Index(t.Columns, name)
}

// Value returns the cell at row label and column name.
func (t *Table) Value(label, column string) (string, bool) {
	i, ok := t.Find(label)
	if !ok {
		return "", false
	}
	j := t.ColumnIndex(column)
	if j < 0 {
		return "", false
	}
	return t.Rows[i][j], true
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(label string, row []string) bool) *Table {
	var rows [][]string
	for i, row := range t.Rows {
		if keep(t.Label(i), row) {
			rows = append(rows, row)
		}
	}
	return NewTable(t.Name, t.Columns, rows)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return NewTable(t.Name, t.Columns, t.Rows)
}

// String renders the table as comma-separated text, mainly for debugging.
func (t *Table) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(t.Columns, ","))
	for _, row := range t.Rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}
