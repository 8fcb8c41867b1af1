package grid

import (
	"slices"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/rows"
)

// SortDirection is the order of a sorted column.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

type sortState struct {
	field     string
	colKey    string
	direction SortDirection
}

// SortedBy returns the sorted column key and direction, or "" when unsorted.
func (g *Grid) SortedBy() (string, SortDirection) {
	return g.sort.colKey, g.sort.direction
}

// Sort orders the records by a sortable column. Sorting the same column
// again flips the direction. It reports false for unknown or unsortable
// columns.
func (g *Grid) Sort(colKey string) bool {
	idx := columns.IndexOf(g.cols, colKey)
	if idx < 0 || !g.cols[idx].Sortable {
		return false
	}
	dir := SortAsc
	if g.sort.colKey == colKey && g.sort.direction == SortAsc {
		dir = SortDesc
	}
	g.sort = sortState{field: g.cols[idx].FieldName, colKey: colKey, direction: dir}
	g.applySort()
	prevLen := g.rows.Len()
	g.afterDataChange(prevLen, true)
	return true
}

func (g *Grid) applySort() {
	if g.sort.field == "" {
		return
	}
	field, desc := g.sort.field, g.sort.direction == SortDesc
	slices.SortStableFunc(g.records, func(a, b map[string]any) int {
		c := rows.Compare(a[field], b[field])
		if desc {
			return -c
		}
		return c
	})
}
