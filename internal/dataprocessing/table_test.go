package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() *Table {
	return NewTable("Labor", []string{"", "Hours", "Hours", ""}, [][]string{
		{"Total RN", "10", "12"},
		{"Total LPN", "8", "9", "x", "overflow"},
	})
}

func TestNewTable_Rectangular(t *testing.T) {
	table := sampleTable()
	for _, row := range table.Rows {
		assert.Len(t, row, 4)
	}
	assert.Equal(t, []string{"Total RN", "10", "12", ""}, table.Rows[0])
}

func TestTable_Lookup(t *testing.T) {
	table := sampleTable()

	i, ok := table.Find("Total LPN")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = table.Find("Total Aides")
	assert.False(t, ok)

	assert.Equal(t, 1, table.ColumnIndex("Hours"))
	assert.Equal(t, -1, table.ColumnIndex("Rate"))

	v, ok := table.Value("Total RN", "Hours")
	assert.True(t, ok)
	assert.Equal(t, "10", v)
}

func TestTable_FilterAndClone(t *testing.T) {
	table := sampleTable()
	clone := table.Clone()
	clone.Rows[0][1] = "99"
	assert.Equal(t, "10", table.Rows[0][1])

	filtered := table.Filter(func(label string, _ []string) bool { return label == "Total LPN" })
	assert.Equal(t, []string{"Total LPN"}, filtered.Labels())
	assert.Equal(t, table.Columns, filtered.Columns)
}

func TestTable_NilIsEmpty(t *testing.T) {
	var table *Table
	assert.True(t, table.Empty())
	assert.Zero(t, table.Len())
}
