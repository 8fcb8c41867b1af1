package virtual

import (
	"math"
	"sort"
)

// Range is an inclusive span of row indices.
type Range struct {
	Start int
	End   int
}

// Measured is one row measurement reported by the host after a render pass.
type Measured struct {
	Key    string
	Index  int
	Height float64
}

// span is a run of consecutive measured rows. prefix[i] is the summed height
// of heights[:i], so the offset of row start+i is top+prefix[i].
type span struct {
	start   int
	heights []float64
	prefix  []float64
	top     float64
}

func (s *span) end() int {
	return s.start + len(s.heights) - 1
}

func (s *span) bottom() float64 {
	return s.top + s.prefix[len(s.heights)]
}

func (s *span) rebuild() {
	s.prefix = make([]float64, len(s.heights)+1)
	for i, h := range s.heights {
		s.prefix[i+1] = s.prefix[i] + h
	}
}

// OffsetIndex maps row positions to pixel offsets. Rows outside any measured
// span are estimated with the uniform row height. Span tops are derived from
// the spans before them, so offsets are non-decreasing whenever heights are
// positive.
type OffsetIndex struct {
	rowHeight float64
	rowCount  int
	spans     []*span
	cache     *HeightCache
}

// NewOffsetIndex returns an index for rowCount rows of estimated height rowHeight.
func NewOffsetIndex(rowHeight float64, rowCount int) *OffsetIndex {
	if !validHeight(rowHeight) {
		rowHeight = DefaultRowHeight
	}
	return &OffsetIndex{
		rowHeight: rowHeight,
		rowCount:  max(rowCount, 0),
		cache:     NewHeightCache(),
	}
}

// RowHeight returns the uniform estimate.
func (x *OffsetIndex) RowHeight() float64 { return x.rowHeight }

// RowCount returns the number of indexed rows.
func (x *OffsetIndex) RowCount() int { return x.rowCount }

// Cache exposes the measured heights.
func (x *OffsetIndex) Cache() *HeightCache { return x.cache }

// Ranges returns the measured index ranges in order.
func (x *OffsetIndex) Ranges() []Range {
	out := make([]Range, len(x.spans))
	for i, s := range x.spans {
		out[i] = Range{Start: s.start, End: s.end()}
	}
	return out
}

// Reset replaces the data set: every measurement is dropped.
func (x *OffsetIndex) Reset(rowCount int) {
	x.rowCount = max(rowCount, 0)
	x.spans = nil
	x.cache.Reset()
}

// SetRowCount resizes the index while keeping measurements of surviving rows.
func (x *OffsetIndex) SetRowCount(n int) {
	n = max(n, 0)
	if n < x.rowCount {
		kept := x.spans[:0]
		for _, s := range x.spans {
			if s.start >= n {
				break
			}
			if s.end() >= n {
				s.heights = s.heights[:n-s.start]
				s.rebuild()
			}
			kept = append(kept, s)
		}
		x.spans = kept
	}
	x.rowCount = n
}

// RecordMeasuredHeight stores the measured height of one row. Heights that
// are not positive finite numbers and indices outside the data are ignored.
func (x *OffsetIndex) RecordMeasuredHeight(key string, index int, height float64) {
	if index < 0 || index >= x.rowCount || !validHeight(height) {
		return
	}
	if key != "" {
		x.cache.Set(key, height)
	}
	x.merge(index, []float64{height})
}

// RecordRendered stores a batch of measurements, merging consecutive rows
// into one span each.
func (x *OffsetIndex) RecordRendered(rows []Measured) {
	valid := make([]Measured, 0, len(rows))
	for _, r := range rows {
		if r.Index < 0 || r.Index >= x.rowCount || !validHeight(r.Height) {
			continue
		}
		if r.Key != "" {
			x.cache.Set(r.Key, r.Height)
		}
		valid = append(valid, r)
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Index < valid[j].Index })

	for i := 0; i < len(valid); {
		start := valid[i].Index
		heights := []float64{valid[i].Height}
		j := i + 1
		for ; j < len(valid) && valid[j].Index <= start+len(heights); j++ {
			if valid[j].Index == start+len(heights)-1 {
				heights[len(heights)-1] = valid[j].Height
				continue
			}
			heights = append(heights, valid[j].Height)
		}
		x.merge(start, heights)
		i = j
	}
}

// merge folds the run [start, start+len(heights)) into the span list. Every
// span overlapping or touching the run is absorbed; the new heights win.
func (x *OffsetIndex) merge(start int, heights []float64) {
	end := start + len(heights) - 1
	lo := sort.Search(len(x.spans), func(i int) bool { return x.spans[i].end() >= start-1 })
	hi := lo
	for hi < len(x.spans) && x.spans[hi].start <= end+1 {
		hi++
	}

	mStart, mEnd := start, end
	if lo < hi {
		mStart = min(mStart, x.spans[lo].start)
		mEnd = max(mEnd, x.spans[hi-1].end())
	}
	merged := &span{start: mStart, heights: make([]float64, mEnd-mStart+1)}
	for _, s := range x.spans[lo:hi] {
		copy(merged.heights[s.start-mStart:], s.heights)
	}
	copy(merged.heights[start-mStart:], heights)
	merged.rebuild()

	spans := make([]*span, 0, len(x.spans)-(hi-lo)+1)
	spans = append(spans, x.spans[:lo]...)
	spans = append(spans, merged)
	spans = append(spans, x.spans[hi:]...)
	x.spans = spans
	x.retop(lo)
}

// retop recomputes span tops from index i onward.
func (x *OffsetIndex) retop(i int) {
	for ; i < len(x.spans); i++ {
		s := x.spans[i]
		if i == 0 {
			s.top = float64(s.start) * x.rowHeight
			continue
		}
		prev := x.spans[i-1]
		s.top = prev.bottom() + float64(s.start-prev.end()-1)*x.rowHeight
	}
}

// Offset returns the distance from the top of the first row to the start of
// row index. Offset(RowCount()) is the total height.
func (x *OffsetIndex) Offset(index int) float64 {
	index = max(0, min(index, x.rowCount))
	i := sort.Search(len(x.spans), func(i int) bool { return x.spans[i].start > index }) - 1
	if i < 0 {
		return float64(index) * x.rowHeight
	}
	s := x.spans[i]
	if index <= s.end() {
		return s.top + s.prefix[index-s.start]
	}
	return s.bottom() + float64(index-s.end()-1)*x.rowHeight
}

// Height returns the measured or estimated height of row index.
func (x *OffsetIndex) Height(index int) float64 {
	if index < 0 || index >= x.rowCount {
		return 0
	}
	return x.Offset(index+1) - x.Offset(index)
}

// TotalHeight returns the height of all rows.
func (x *OffsetIndex) TotalHeight() float64 {
	return x.Offset(x.rowCount)
}

// FindRowAtScrollPosition returns the row covering scrollTop and how far into
// that row scrollTop lies. Positions past the end clamp to the last row.
// An empty index returns -1.
func (x *OffsetIndex) FindRowAtScrollPosition(scrollTop float64) (int, float64) {
	if x.rowCount == 0 {
		return -1, 0
	}
	if math.IsNaN(scrollTop) || scrollTop <= 0 {
		return 0, 0
	}
	if scrollTop >= x.TotalHeight() {
		last := x.rowCount - 1
		return last, scrollTop - x.Offset(last)
	}

	var idx int
	i := sort.Search(len(x.spans), func(i int) bool { return x.spans[i].top > scrollTop }) - 1
	switch {
	case i < 0:
		idx = x.estimateRows(scrollTop)
	case scrollTop < x.spans[i].bottom():
		s := x.spans[i]
		// largest j whose row start is at or above scrollTop
		j := sort.Search(len(s.heights), func(j int) bool { return s.top+s.prefix[j] > scrollTop }) - 1
		idx = s.start + max(j, 0)
	default:
		s := x.spans[i]
		idx = s.end() + 1 + x.estimateRows(scrollTop-s.bottom())
	}

	if idx >= x.rowCount {
		idx = x.rowCount - 1
	}
	// float division can land one row off near a boundary
	for idx > 0 && x.Offset(idx) > scrollTop {
		idx--
	}
	for idx < x.rowCount-1 && x.Offset(idx+1) <= scrollTop {
		idx++
	}
	return idx, scrollTop - x.Offset(idx)
}

// estimateRows converts a distance to a row count at the uniform row height,
// clamped to the row count before the int conversion.
func (x *OffsetIndex) estimateRows(distance float64) int {
	return int(math.Min(math.Max(distance/x.rowHeight, 0), float64(x.rowCount)))
}

func validHeight(h float64) bool {
	return h > 0 && !math.IsInf(h, 0) && !math.IsNaN(h)
}
