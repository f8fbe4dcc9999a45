package dataprocessing

import (
	"strings"
)

// MissingPlaceholder is the literal text spreadsheets export for a missing value.
const MissingPlaceholder = "nan"

// Clean normalizes a raw grid. In order it:
//
//  1. trims every cell, whitespace-only cells become missing
//  2. drops rows where every cell is missing
//  3. drops banner rows, whose non-missing cells are all the same text
//  4. replaces the "nan" placeholder with missing
//  5. drops rows with fewer than two non-missing cells
//
// Placeholders take no part in the banner comparison of step 3, so a row that
// only differs by a trailing "nan" is still recognised as a banner. Clean never
// fails and never mutates its input. The width of the grid is preserved.
func Clean(grid [][]string) [][]string {
	out := make([][]string, 0, len(grid))

	for _, raw := range grid {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = strings.TrimSpace(cell)
		}

		if countFilled(row) == 0 {
			continue
		}
		if isBanner(row) {
			continue
		}
		for i, cell := range row {
			if cell == MissingPlaceholder {
				row[i] = ""
			}
		}
		if countFilled(row) < 2 {
			continue
		}
		out = append(out, row)
	}

	return out
}

func countFilled(row []string) int {
	n := 0
	for _, cell := range row {
		if cell != "" {
			n++
		}
	}
	return n
}

// isBanner reports whether every populated cell holds the same text.
func isBanner(row []string) bool {
	first := ""
	for _, cell := range row {
		if cell == "" || cell == MissingPlaceholder {
			continue
		}
		if first == "" {
			first = cell
			continue
		}
		if cell != first {
			return false
		}
	}
	return true
}
