package widths

import (
	"math"
	"sort"

	"github.com/oakwood-commons/gridkit/internal/columns"
)

// Measurer reports the host measurements a strategy needs. Widths are in
// host units (pixels in a browser, cells in a terminal).
type Measurer interface {
	// AvailableWidth is the width of the scroll container.
	AvailableWidth() int
	// HeaderCellWidths are the rendered header cell widths, one per column.
	HeaderCellWidths() []int
	// DataCellWidths are the rendered widths of the first data row's cells.
	DataCellWidths() []int
	// TableWidth is the full scroll width of the rendered table.
	TableWidth() int
}

// Result is the outcome of one negotiation.
type Result struct {
	Widths             []int
	ExpectedTableWidth int
}

// Sum returns the total of the computed widths.
func (r Result) Sum() int {
	total := 0
	for _, w := range r.Widths {
		total += w
	}
	return total
}

// Strategy computes column widths.
type Strategy interface {
	AdjustedWidths(m Measurer, cols []*columns.Column, recompute bool) Result
}

// FixedStrategy splits the remaining width equally among flexible columns.
type FixedStrategy struct {
	Bounds Bounds
}

// NewFixedStrategy returns an equal-share strategy.
func NewFixedStrategy(b Bounds) *FixedStrategy {
	return &FixedStrategy{Bounds: b}
}

// AdjustedWidths implements Strategy. recompute is ignored: equal shares
// depend only on the current available width.
func (s *FixedStrategy) AdjustedWidths(m Measurer, cols []*columns.Column, _ bool) Result {
	md := TotalsMetadata(s.Bounds, cols)
	expected := ExpectedTableWidth(m.AvailableWidth(), md)
	return equalShare(cols, md, expected)
}

func equalShare(cols []*columns.Column, md Metadata, expected int) Result {
	flexWidth := flexibleColumnWidth(md, expected)
	widths := make([]int, len(cols))
	var dist distribution
	for i, c := range cols {
		if w := c.DefinedWidth(); w > 0 {
			widths[i] = w
			continue
		}
		dist.track(i, flexWidth, md)
		widths[i] = flexWidth
	}
	redistribute(expected, widths, cols, md, dist)
	return Result{Widths: widths, ExpectedTableWidth: expected}
}

func flexibleColumnWidth(md Metadata, tableWidth int) int {
	if md.TotalFlexibleColumns == 0 {
		return 0
	}
	remaining := tableWidth - md.TotalFixedWidth - md.TotalResizedWidth
	avg := floorDiv(remaining, md.TotalFlexibleColumns)
	return min(md.MaxColumnWidth, max(avg, md.MinColumnWidth))
}

// AutoStrategy sizes flexible columns in proportion to their rendered
// content. Ratios are measured once and reused until a recompute is asked for.
type AutoStrategy struct {
	Bounds Bounds

	ratios []float64
}

// NewAutoStrategy returns a content-proportional strategy.
func NewAutoStrategy(b Bounds) *AutoStrategy {
	if b.WrapTextMaxLines <= 0 {
		b.WrapTextMaxLines = DefaultWrapTextMaxLines
	}
	return &AutoStrategy{Bounds: b}
}

// Ratios returns the cached width ratios, in percent of the flexible width.
func (s *AutoStrategy) Ratios() []float64 {
	return s.ratios
}

// AdjustedWidths implements Strategy. When the host cannot provide usable
// measurements the flexible columns fall back to equal shares.
func (s *AutoStrategy) AdjustedWidths(m Measurer, cols []*columns.Column, recompute bool) Result {
	md := TotalsMetadata(s.Bounds, cols)
	expected := ExpectedTableWidth(m.AvailableWidth(), md)

	if recompute || len(s.ratios) != len(cols) {
		s.measureRatios(m, cols, md)
	}
	if len(s.ratios) != len(cols) {
		return equalShare(cols, md, expected)
	}

	flexible := expected - md.TotalFixedWidth - md.TotalResizedWidth
	widths := make([]int, len(cols))
	var dist distribution
	for i, c := range cols {
		if w := c.DefinedWidth(); w > 0 {
			widths[i] = w
			continue
		}
		calculated := int(math.Floor(float64(flexible)*s.ratios[i]/100)) + TruncationAllowance
		dist.track(i, calculated, md)
		widths[i] = columns.Clamp(calculated, md.MinColumnWidth, md.MaxColumnWidth)
	}
	redistribute(expected, widths, cols, md, dist)
	return Result{Widths: widths, ExpectedTableWidth: expected}
}

func (s *AutoStrategy) measureRatios(m Measurer, cols []*columns.Column, md Metadata) {
	s.ratios = nil
	if m.TableWidth() <= 0 {
		return
	}

	data := m.DataCellWidths()
	cells := make([]float64, len(data))
	for i, w := range data {
		cells[i] = float64(w)
		if i >= len(cols) {
			continue
		}
		switch {
		case cols[i].WrapText:
			cells[i] = float64(w) / float64(md.WrapTextMaxLines)
		case cols[i].FixedWidth > 0:
			cells[i] = float64(cols[i].FixedWidth)
		}
	}

	var total float64
	if len(cells) == 0 {
		header := m.HeaderCellWidths()
		if len(header) == 0 {
			return
		}
		cells = make([]float64, len(header))
		for i, w := range header {
			cells[i] = float64(w)
			total += float64(w)
		}
	} else {
		for _, w := range cells {
			total += w
		}
		total = math.Min(float64(m.TableWidth()), total)
	}

	flexible := total - float64(md.TotalFixedWidth) - float64(md.TotalResizedWidth)
	if flexible <= 0 {
		return
	}
	s.ratios = make([]float64, len(cells))
	for i, w := range cells {
		s.ratios[i] = 100 * w / flexible
	}
}

// distribution remembers which flexible columns landed near a bound in the
// first pass; they are served first when correcting the total.
type distribution struct {
	nearMin []int
	nearMax []int
}

func (d *distribution) track(index, calculated int, md Metadata) {
	minThreshold := md.MinColumnWidth + int(math.Ceil(MinMaxThreshold*float64(md.MinColumnWidth)))
	maxThreshold := md.MaxColumnWidth - int(math.Ceil(MinMaxThreshold*float64(md.MaxColumnWidth)))
	if calculated < minThreshold {
		d.nearMin = append(d.nearMin, index)
	}
	if calculated > maxThreshold {
		d.nearMax = append(d.nearMax, index)
	}
}

// redistribute is the second pass: it moves the difference between the
// expected width and the first-pass total into (or out of) the flexible
// columns, serving the threshold columns first.
func redistribute(expected int, widths []int, cols []*columns.Column, md Metadata, dist distribution) {
	delta := expected - sum(widths)
	if delta == 0 {
		return
	}
	var flexible []int
	for i, c := range cols {
		if c.DefinedWidth() == 0 {
			flexible = append(flexible, i)
		}
	}
	first := dist.nearMin
	if delta < 0 {
		first = dist.nearMax
	}
	delta = spread(widths, first, delta, md.MinColumnWidth, md.MaxColumnWidth)
	spread(widths, flexible, delta, md.MinColumnWidth, md.MaxColumnWidth)
}

// spread moves delta units into (positive) or out of (negative) the columns
// at idx without crossing [lo, hi]. Columns with the least room are filled
// first so the rest share evenly; the rounding remainder lands on the leading
// columns. It returns what could not be placed.
func spread(widths, idx []int, delta, lo, hi int) int {
	if delta == 0 || len(idx) == 0 {
		return delta
	}
	sign := 1
	if delta < 0 {
		sign = -1
	}
	room := func(i int) int {
		if sign > 0 {
			return max(hi-widths[i], 0)
		}
		return max(widths[i]-lo, 0)
	}

	order := make([]int, 0, len(idx))
	for _, i := range idx {
		if room(i) > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return room(order[a]) < room(order[b]) })

	remaining := delta * sign
	for k, i := range order {
		left := len(order) - k
		give := min(room(i), (remaining+left-1)/left)
		widths[i] += sign * give
		remaining -= give
	}
	return remaining * sign
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
