package dataprocessing

import (
	"fmt"
	"strings"
)

// MaxHeaderDepth is the tallest header a sheet may declare.
const MaxHeaderDepth = 3

// ReconstructHeader builds one name per column from the first depth rows of
// rows, joining each column's non-missing fragments top to bottom with a
// single space. A column with no fragments gets the empty name. The header
// rows are removed from the returned body. When rows holds fewer than depth
// rows the whole input is consumed and the body is empty.
func ReconstructHeader(rows [][]string, width, depth int) (columns []string, body [][]string, err error) {
	if depth < 1 || depth > MaxHeaderDepth {
		return nil, nil, fmt.Errorf("header depth %d outside 1..%d", depth, MaxHeaderDepth)
	}

	depth = min(depth, len(rows))
	columns = make([]string, width)
	fragments := make([]string, 0, depth)

	for c := range width {
		fragments = fragments[:0]
		for r := range depth {
			if c < len(rows[r]) && rows[r][c] != "" {
				fragments = append(fragments, rows[r][c])
			}
		}
		columns[c] = strings.Join(fragments, " ")
	}

	return columns, rows[depth:], nil
}
