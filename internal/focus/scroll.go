package focus

import "math"

// ScrollMargins keeps the active row away from the viewport edges.
type ScrollMargins struct {
	Top    float64
	Bottom float64
	// Step is how far one adjustment scrolls.
	Step float64
}

// DefaultScrollMargins returns the proportional-font host margins.
func DefaultScrollMargins() ScrollMargins {
	return ScrollMargins{Top: 80, Bottom: 80, Step: 20}
}

// AdjustScrollTop returns the scroll position that brings a rendered row
// (rowTop and rowBottom in content coordinates) into view, then nudges by
// one step when the row sits inside the top or bottom margin.
func AdjustScrollTop(scrollTop, viewportHeight, rowTop, rowBottom float64, m ScrollMargins) float64 {
	if viewportHeight <= 0 {
		return scrollTop
	}
	switch {
	case rowTop < scrollTop:
		scrollTop = rowTop
	case rowBottom > scrollTop+viewportHeight:
		scrollTop = rowBottom - viewportHeight
	}
	switch {
	case rowTop < scrollTop+m.Top:
		scrollTop -= m.Step
	case rowBottom > scrollTop+viewportHeight-m.Bottom:
		scrollTop += m.Step
	}
	return math.Max(scrollTop, 0)
}

// ScrollToRow returns the scroll position for a row that is not rendered.
// Moving upward keeps the row at the bottom of the viewport.
func ScrollToRow(rowIndex, firstVisible, rowsInViewport int, rowHeight float64) float64 {
	if rowIndex < 0 {
		return 0
	}
	top := float64(rowIndex) * rowHeight
	if firstVisible > rowIndex {
		top = math.Max(top-float64(rowsInViewport)*rowHeight, 0)
	}
	return top
}
