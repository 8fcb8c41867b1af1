// Package widths negotiates column widths. Columns with a fixed, resized or
// initial width keep it; flexible columns share what is left of the
// container, either equally or in proportion to their measured content.
package widths

import (
	"fmt"

	"github.com/oakwood-commons/gridkit/internal/columns"
)

const (
	// DefaultResizeStep is the keyboard resize increment.
	DefaultResizeStep = 10
	// DefaultWrapTextMaxLines is the line budget assumed for wrapped columns.
	DefaultWrapTextMaxLines = 3
	// TruncationAllowance is added to every ratio-derived width.
	TruncationAllowance = 20
	// MinMaxThreshold marks columns within this fraction of a bound for
	// first-pass redistribution.
	MinMaxThreshold = 0.5
)

// Metadata summarizes how a column set splits into fixed, resized and
// flexible columns. Initial widths count as resized.
type Metadata struct {
	TotalFixedWidth      int
	TotalFixedColumns    int
	TotalResizedWidth    int
	TotalResizedColumns  int
	TotalFlexibleColumns int

	MinColumnWidth   int
	MaxColumnWidth   int
	WrapTextMaxLines int
}

// Bounds holds the table-wide width limits shared by the strategies.
type Bounds struct {
	Min              int
	Max              int
	WrapTextMaxLines int
}

// TotalsMetadata computes the metadata of cols under b.
func TotalsMetadata(b Bounds, cols []*columns.Column) Metadata {
	md := Metadata{
		MinColumnWidth:   b.Min,
		MaxColumnWidth:   b.Max,
		WrapTextMaxLines: b.WrapTextMaxLines,
	}
	for _, c := range cols {
		switch {
		case c.FixedWidth > 0:
			md.TotalFixedWidth += c.FixedWidth
			md.TotalFixedColumns++
		case c.DefinedWidth() > 0:
			md.TotalResizedWidth += c.DefinedWidth()
			md.TotalResizedColumns++
		default:
			md.TotalFlexibleColumns++
		}
	}
	return md
}

// MinExpectedTableWidth is the width the table needs with every flexible
// column at its minimum.
func MinExpectedTableWidth(md Metadata) int {
	return md.TotalFlexibleColumns*md.MinColumnWidth + md.TotalFixedWidth + md.TotalResizedWidth
}

// MaxExpectedTableWidth is the widest the table can get with every flexible
// column at its maximum.
func MaxExpectedTableWidth(md Metadata) int {
	return md.TotalFlexibleColumns*md.MaxColumnWidth + md.TotalFixedWidth + md.TotalResizedWidth
}

// ExpectedTableWidth is the width the columns should add up to. Without
// flexible columns it is the sum of the defined widths, whatever the
// container offers; otherwise the available width bounded by what the
// flexible columns can absorb.
func ExpectedTableWidth(available int, md Metadata) int {
	minExpected := MinExpectedTableWidth(md)
	if md.TotalFlexibleColumns == 0 {
		return minExpected
	}
	return min(max(minExpected, available), MaxExpectedTableWidth(md))
}

// BuildStyle renders a host width style, or "" for non-positive widths.
func BuildStyle(pixels int) string {
	if pixels <= 0 {
		return ""
	}
	return fmt.Sprintf("width:%dpx", pixels)
}
