package ui

import (
	"fmt"
	"math"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/focus"
	"github.com/oakwood-commons/gridkit/internal/grid"
	"github.com/oakwood-commons/gridkit/internal/rows"
)

// View renders the last layout.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	return v
}

// Render returns the screen as a string.
func (m *Model) Render() string {
	var b strings.Builder
	cols := visualOrder(m.grid.Columns(), m.grid.Options().RTL)
	if !m.grid.Options().HideHeader {
		b.WriteString(m.renderHeader(cols))
		b.WriteByte('\n')
	}
	for _, line := range m.viewportLines(cols) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if m.filtering {
		b.WriteString(m.filterInput.View())
		b.WriteByte('\n')
	}
	b.WriteString(m.renderStatus())
	b.WriteByte('\n')
	h := m.help
	h.ShowAll = m.helpVisible
	b.WriteString(h.View(m.keys))
	return b.String()
}

// visualOrder returns the columns left to right on screen.
func visualOrder(cols []*columns.Column, rtl bool) []*columns.Column {
	out := slices.Clone(cols)
	if rtl {
		slices.Reverse(out)
	}
	return out
}

func (m *Model) separator() string {
	return m.theme.Border.Render(columnSeparator)
}

func (m *Model) renderHeader(cols []*columns.Column) string {
	sortKey, dir := m.grid.SortedBy()
	active := m.grid.Focus().Active()
	cells := make([]string, 0, len(cols))
	for _, c := range cols {
		label := c.Label
		width := c.Width
		indicator := ""
		if c.Sortable && c.Key == sortKey {
			indicator = " ▲"
			if dir == grid.SortDesc {
				indicator = " ▼"
			}
		}
		text := fitCell(label, max(width-runewidth.StringWidth(indicator), 0), c.Desc.Align) + indicator
		text = fitCell(text, width, columns.AlignLeft)
		style := m.theme.Header
		if active != nil && active.RowKey == focus.HeaderRowKey && active.ColKey == c.Key {
			style = m.focusStyle()
		}
		cells = append(cells, style.Render(text))
	}
	return strings.Join(cells, m.separator())
}

// viewportLines renders the rows of the span that intersect the viewport,
// clipping rows cut by the top or bottom edge.
func (m *Model) viewportLines(cols []*columns.Column) []string {
	height := int(m.host.ViewportHeight())
	if height <= 0 {
		return nil
	}
	top := int(math.Round(m.layout.ScrollTop))
	idx := m.grid.Window().Index()
	out := make([]string, 0, height)
	for i := m.layout.Span.First; i <= m.layout.Span.Last && len(out) < height; i++ {
		row := m.grid.Rows().At(i)
		if row == nil {
			continue
		}
		y := int(math.Round(idx.Offset(i)))
		for n, line := range m.renderRow(row, cols) {
			if y+n >= top && len(out) < height {
				out = append(out, line)
			}
		}
	}
	blank := strings.Repeat(" ", max(m.width, 0))
	for len(out) < height {
		out = append(out, blank)
	}
	return out
}

// renderRow returns the lines of one row, every cell padded to its column
// width and to the row's line count.
func (m *Model) renderRow(row *rows.Row, cols []*columns.Column) []string {
	height := 1
	if h, ok := m.host.RowHeight(row.Key); ok {
		height = int(h)
	}
	active := m.grid.Focus().Active()
	rowActive := active != nil && active.RowKey == row.Key
	rowFocus := rowActive && m.layout.RowMode

	all := m.grid.Columns()
	cellLines := make([][]string, len(cols))
	for ci, c := range cols {
		text := cellText(row, c, columns.IndexOf(all, c.Key))
		var lines []string
		if c.WrapText {
			lines = wrapCell(text, c.Width, m.host.wrapMax)
		} else {
			lines = []string{text}
		}
		style := m.theme.Text
		switch {
		case rowFocus:
			style = m.theme.FocusRow
		case rowActive && active.ColKey == c.Key:
			style = m.focusStyle()
		case row.Selected:
			style = m.theme.Selected
		}
		padded := make([]string, height)
		for n := range padded {
			line := ""
			if n < len(lines) {
				line = lines[n]
			}
			padded[n] = style.Render(fitCell(line, c.Width, c.Desc.Align))
		}
		cellLines[ci] = padded
	}

	out := make([]string, height)
	sep := m.separator()
	for n := range out {
		parts := make([]string, len(cols))
		for ci := range cols {
			parts[ci] = cellLines[ci][n]
		}
		out[n] = strings.Join(parts, sep)
	}
	return out
}

func (m *Model) focusStyle() lipgloss.Style {
	if m.layout.Mode == focus.ModeAction {
		return m.theme.ActionCell
	}
	return m.theme.Focus
}

// renderStatus shows the position, mode and width strategy on the left and
// the last message on the right.
func (m *Model) renderStatus() string {
	total := m.grid.Rows().Len()
	pos := "-"
	if row, _, ok := m.grid.Focus().Indexes(); ok {
		if row < 0 {
			pos = "header"
		} else {
			pos = fmt.Sprintf("%d", row+1)
		}
	}
	mode := m.layout.Mode.String()
	if m.layout.RowMode {
		mode = "ROW"
	}
	left := fmt.Sprintf(" %s/%d  %s  widths:%s", pos, total, mode, m.grid.WidthMode())
	if m.opts.AppName != "" {
		left = " " + m.opts.AppName + " " + left
	}
	if m.filterExpr != "" {
		left += "  filter:" + m.filterExpr
	}
	if m.grid.Window().Loading() {
		left += "  " + m.spinner.View() + " loading"
	}
	right := m.status
	style := m.theme.Status
	if m.errMsg != "" {
		right = m.errMsg
		style = m.theme.Error
	}
	gap := m.width - runewidth.StringWidth(left) - runewidth.StringWidth(right) - 1
	if gap < 1 {
		right = runewidth.Truncate(right, max(m.width-runewidth.StringWidth(left)-2, 0), ellipsis)
		gap = 1
	}
	return m.theme.Status.Render(left) + strings.Repeat(" ", gap) + style.Render(right)
}
