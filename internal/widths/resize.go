package widths

import "github.com/oakwood-commons/gridkit/internal/columns"

// Resize sets the width of one column, clamped to its bounds. The table
// width moves by the same delta and, in RTL layouts, the offsets of later
// columns shift with it. Other columns keep their widths. It reports whether
// the width changed.
func (m *Manager) Resize(cols []*columns.Column, state *State, colIndex, width int) bool {
	if state.ResizeDisabled || colIndex < 0 || colIndex >= len(cols) || colIndex >= len(state.ColumnWidths) {
		return false
	}
	col := cols[colIndex]
	current := state.ColumnWidths[colIndex]
	next := columns.Clamp(width, col.MinWidth, col.MaxWidth)
	if next == current {
		return false
	}
	delta := next - current
	state.TableWidth += delta
	state.ColumnWidths[colIndex] = next
	col.Width = next
	col.Style = BuildStyle(next)
	col.IsResized = true
	if m.rtl {
		for _, c := range cols[colIndex+1:] {
			c.Offset += delta
		}
	}
	m.log.V(1).Info("column resized", "column", col.Key, "width", next, "tableWidth", state.TableWidth)
	return true
}

// ResizeWithDelta grows or shrinks a column by delta.
func (m *Manager) ResizeWithDelta(cols []*columns.Column, state *State, colIndex, delta int) bool {
	if colIndex < 0 || colIndex >= len(state.ColumnWidths) {
		return false
	}
	return m.Resize(cols, state, colIndex, state.ColumnWidths[colIndex]+delta)
}

// ResetWidths forgets every resize so the next negotiation starts over.
func ResetWidths(cols []*columns.Column, state *State) {
	state.ColumnWidths = nil
	for _, c := range cols {
		c.IsResized = false
		c.Width = 0
		c.Style = ""
	}
}
