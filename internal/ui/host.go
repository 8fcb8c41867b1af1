package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/grid"
	"github.com/oakwood-commons/gridkit/internal/rows"
)

const (
	// columnSeparator sits between adjacent cells.
	columnSeparator = "│"
	// sortIndicatorWidth is reserved in sortable headers for " ▲".
	sortIndicatorWidth = 2
	treeIndent         = 2
	ellipsis           = "…"
)

// termHost implements grid.Host for a terminal: widths are cells and heights
// are lines.
type termHost struct {
	g       *grid.Grid
	width   int
	height  int
	chrome  int
	wrapMax int
}

var _ grid.Host = (*termHost)(nil)

func (h *termHost) AvailableWidth() int {
	n := len(h.g.Columns())
	if n == 0 {
		return 0
	}
	return max(h.width-(n-1)*runewidth.StringWidth(columnSeparator), 0)
}

func (h *termHost) HeaderCellWidths() []int {
	cols := h.g.Columns()
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = runewidth.StringWidth(c.Label)
		if c.Sortable {
			out[i] += sortIndicatorWidth
		}
	}
	return out
}

// DataCellWidths returns the widest unwrapped cell of each column across
// the rendered rows.
func (h *termHost) DataCellWidths() []int {
	cols := h.g.Columns()
	out := make([]int, len(cols))
	span := h.g.Layout().Span
	for i := span.First; i <= span.Last; i++ {
		row := h.g.Rows().At(i)
		if row == nil {
			continue
		}
		for c, col := range cols {
			out[c] = max(out[c], runewidth.StringWidth(cellText(row, col, c)))
		}
	}
	return out
}

func (h *termHost) TableWidth() int {
	header, data := h.HeaderCellWidths(), h.DataCellWidths()
	total := 0
	for i := range header {
		total += max(header[i], data[i])
	}
	if n := len(header); n > 1 {
		total += (n - 1) * runewidth.StringWidth(columnSeparator)
	}
	return total
}

func (h *termHost) ViewportHeight() float64 {
	return float64(max(h.height-h.chrome, 0))
}

// RowHeight is the number of lines the row needs at the current column
// widths: wrapped columns take up to wrapMax lines, everything else one.
func (h *termHost) RowHeight(key string) (float64, bool) {
	row := h.g.Rows().ByKey(key)
	if row == nil {
		return 0, false
	}
	lines := 1
	for i, col := range h.g.Columns() {
		if !col.WrapText || col.Width <= 0 {
			continue
		}
		lines = max(lines, len(wrapCell(cellText(row, col, i), col.Width, h.wrapMax)))
	}
	return float64(lines), true
}

// cellText is the display text of one cell, tree indentation included.
func cellText(row *rows.Row, col *columns.Column, index int) string {
	text := ""
	if index < len(row.Cells) {
		text = row.Cells[index]
	}
	text = strings.ReplaceAll(text, "\n", " ")
	if col.Type != columns.TypeTree {
		return text
	}
	glyph := "  "
	if row.HasChildren {
		glyph = "▸ "
		if row.Expanded {
			glyph = "▾ "
		}
	}
	return strings.Repeat(" ", max(row.Level-1, 0)*treeIndent) + glyph + text
}

// wrapCell breaks text into lines no wider than width, keeping at most
// maxLines; a cut last line ends with an ellipsis.
func wrapCell(text string, width, maxLines int) []string {
	if width <= 0 {
		return []string{""}
	}
	if maxLines <= 0 {
		maxLines = 1
	}
	lines := strings.Split(ansi.Wrap(text, width, ""), "\n")
	if len(lines) <= maxLines {
		return lines
	}
	rest := strings.Join(lines[maxLines-1:], " ")
	lines = lines[:maxLines]
	lines[maxLines-1] = runewidth.Truncate(rest, width, ellipsis)
	return lines
}

// fitCell truncates text to width and pads it according to align.
func fitCell(text string, width int, align columns.Align) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, ellipsis)
	}
	switch align {
	case columns.AlignRight:
		return runewidth.FillLeft(text, width)
	case columns.AlignCenter:
		pad := width - runewidth.StringWidth(text)
		left := pad / 2
		return strings.Repeat(" ", left) + runewidth.FillRight(text, width-left)
	}
	return runewidth.FillRight(text, width)
}
