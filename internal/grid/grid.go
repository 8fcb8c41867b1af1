// Package grid is the per-grid session that ties the row window, the width
// negotiator and the focus machine together. Mutations only queue work; the
// host renders, reports its measurements through OnRenderComplete and gets
// back the layout to draw next.
package grid

import (
	"slices"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/focus"
	"github.com/oakwood-commons/gridkit/internal/rows"
	"github.com/oakwood-commons/gridkit/internal/virtual"
	"github.com/oakwood-commons/gridkit/internal/widths"
)

// Host supplies the measurements of the last render.
type Host interface {
	widths.Measurer
	// ViewportHeight is the height of the scrollable row area.
	ViewportHeight() float64
	// RowHeight returns the rendered height of the row with key, or false
	// when the row was not rendered.
	RowHeight(key string) (float64, bool)
}

// Options configures a Grid.
type Options struct {
	Window           virtual.Config
	WidthMode        widths.Mode
	MinColumnWidth   int
	MaxColumnWidth   int
	ResizeStep       int
	WrapTextMaxLines int
	HideHeader       bool
	RTL              bool
	KeyField         string
	ShowRowNumbers   bool
	RowNumberOffset  int
	RowNumber        columns.RowNumberMetrics
	Margins          focus.ScrollMargins

	Log logr.Logger
}

// DefaultOptions returns the documented defaults for a proportional-font host.
func DefaultOptions() Options {
	return Options{
		Window:           virtual.DefaultConfig(),
		WidthMode:        widths.ModeFixed,
		MinColumnWidth:   columns.DefaultMinWidth,
		MaxColumnWidth:   columns.DefaultMaxWidth,
		ResizeStep:       widths.DefaultResizeStep,
		WrapTextMaxLines: widths.DefaultWrapTextMaxLines,
		RowNumber:        columns.DefaultRowNumberMetrics(),
		Margins:          focus.DefaultScrollMargins(),
	}
}

// Layout is what the host draws next.
type Layout struct {
	Span       virtual.Span
	Widths     []int
	TableWidth int
	TableStyle string
	Focus      *focus.Cell
	Mode       focus.Mode
	RowMode    bool
	ScrollTop  float64
	// LoadMore asks the host to fetch more rows.
	LoadMore bool
}

// Grid holds everything one data grid needs. It is not safe for concurrent
// use; hosts drive it from a single goroutine.
type Grid struct {
	opts Options
	log  logr.Logger

	defs     []columns.Def
	records  []map[string]any
	cols     []*columns.Column
	rows     *rows.Set
	expanded map[string]bool
	selected map[string]bool
	sort     sortState

	widths *widths.Manager
	state  widths.State
	window *virtual.Window
	focus  *focus.Machine

	dirty         bool
	reveal        bool
	lastAvailable int
	loadMore      bool
}

// New returns an empty grid.
func New(opts Options) *Grid {
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	if opts.RowNumber == (columns.RowNumberMetrics{}) {
		opts.RowNumber = columns.DefaultRowNumberMetrics()
	}
	if opts.Margins == (focus.ScrollMargins{}) {
		opts.Margins = focus.DefaultScrollMargins()
	}
	g := &Grid{
		opts:     opts,
		log:      log,
		rows:     &rows.Set{},
		expanded: map[string]bool{},
		selected: map[string]bool{},
		widths: widths.NewManager(widths.Options{
			Mode:             opts.WidthMode,
			MinWidth:         opts.MinColumnWidth,
			MaxWidth:         opts.MaxColumnWidth,
			WrapTextMaxLines: opts.WrapTextMaxLines,
			RTL:              opts.RTL,
			Log:              log.WithName("widths"),
		}),
		state:  widths.DefaultState(),
		window: virtual.NewWindow(opts.Window, log.WithName("window")),
	}
	g.state.MinColumnWidth, g.state.MaxColumnWidth = columns.Bounds(opts.MinColumnWidth, opts.MaxColumnWidth)
	if opts.ResizeStep > 0 {
		g.state.ResizeStep = opts.ResizeStep
	}
	g.focus = focus.New(g.view(), log.WithName("focus"))
	return g
}

// Columns returns the normalized columns.
func (g *Grid) Columns() []*columns.Column { return g.cols }

// Rows returns the current row set.
func (g *Grid) Rows() *rows.Set { return g.rows }

// Records returns the caller records in display order.
func (g *Grid) Records() []map[string]any { return g.records }

// State returns the width state.
func (g *Grid) State() widths.State { return g.state }

// Window returns the row window.
func (g *Grid) Window() *virtual.Window { return g.window }

// Focus returns the focus machine.
func (g *Grid) Focus() *focus.Machine { return g.focus }

// WidthMode returns the active width strategy name.
func (g *Grid) WidthMode() widths.Mode { return g.widths.Mode() }

// Options returns the grid options.
func (g *Grid) Options() Options { return g.opts }

// Dirty reports whether a layout pass is pending.
func (g *Grid) Dirty() bool { return g.dirty }

// RequestLayout marks the grid for the next OnRenderComplete.
func (g *Grid) RequestLayout() { g.dirty = true }

// SetColumns replaces the column definitions.
func (g *Grid) SetColumns(defs []columns.Def) {
	g.defs = slices.Clone(defs)
	g.normalizeColumns()
	g.widths.HandleColumnsChange(g.cols)
	g.rebuildRows()
	g.focus.SetGrid(g.view())
	g.RequestLayout()
}

func (g *Grid) normalizeColumns() {
	g.cols = columns.Normalize(g.defs, columns.Options{
		MinWidth:        g.state.MinColumnWidth,
		MaxWidth:        g.state.MaxColumnWidth,
		ShowRowNumbers:  g.opts.ShowRowNumbers,
		RowNumber:       g.opts.RowNumber,
		RowCount:        len(g.records),
		RowNumberOffset: g.opts.RowNumberOffset,
		Log:             g.log.WithName("columns"),
	})
	g.state.ColumnWidths = nil
	g.state.TableWidth = 0
}

// SetData replaces the records. A new first row means new data: the row
// window and its measurements reset.
func (g *Grid) SetData(records []map[string]any) {
	g.focus.SetCellToFocusFromPrev()
	prevLen := g.rows.Len()
	g.records = slices.Clone(records)
	g.applySort()
	g.afterDataChange(prevLen, false)
}

// AppendData adds records after a load-more request and clears the loading
// flag.
func (g *Grid) AppendData(records []map[string]any) {
	prevLen := g.rows.Len()
	g.records = append(g.records, records...)
	g.window.SetLoading(false)
	g.applySort()
	g.afterDataChange(prevLen, false)
}

func (g *Grid) afterDataChange(prevLen int, force bool) {
	g.rebuildRows()
	g.window.UpdateRenderedCount(g.rows.Len(), g.rows.FirstKey(), force)
	g.widths.HandleDataChange(prevLen, g.rows.Len(), g.cols)
	if g.widths.HandleRowNumberOffsetChange(g.cols, &g.state, g.opts.RowNumber, len(g.records), g.opts.RowNumberOffset) {
		g.log.V(1).Info("row number column resized", "rows", len(g.records))
	}
	g.focus.SetGrid(g.view())
	g.RequestLayout()
}

func (g *Grid) rebuildRows() {
	g.rows = rows.Build(g.records, g.cols, rows.BuildOptions{
		KeyField:        g.opts.KeyField,
		Expanded:        g.expanded,
		Selected:        g.selected,
		RowNumberOffset: g.opts.RowNumberOffset,
		Log:             g.log.WithName("rows"),
	})
}

// SetWidthMode switches between fixed and content-proportional widths.
func (g *Grid) SetWidthMode(mode widths.Mode) {
	g.widths.SetMode(mode, g.cols)
	g.opts.WidthMode = g.widths.Mode()
	g.RequestLayout()
}

// SetColumnBounds changes the minimum and maximum column width.
func (g *Grid) SetColumnBounds(minWidth, maxWidth int) {
	g.widths.SetBounds(g.cols, &g.state, minWidth, maxWidth)
	g.opts.MinColumnWidth, g.opts.MaxColumnWidth = g.state.MinColumnWidth, g.state.MaxColumnWidth
	g.widths.HandleColumnsChange(g.cols)
	g.RequestLayout()
}

// SetRowNumberOffset changes the first displayed row number.
func (g *Grid) SetRowNumberOffset(offset int) {
	g.opts.RowNumberOffset = offset
	g.widths.HandleRowNumberOffsetChange(g.cols, &g.state, g.opts.RowNumber, len(g.records), offset)
	g.rebuildRows()
	g.RequestLayout()
}

// SetShowRowNumbers shows or hides the row number column.
func (g *Grid) SetShowRowNumbers(show bool) {
	if show == g.opts.ShowRowNumbers {
		return
	}
	g.opts.ShowRowNumbers = show
	g.normalizeColumns()
	g.widths.HandleRowNumberColumnChange(!show, show, g.cols)
	g.rebuildRows()
	g.focus.SetGrid(g.view())
	g.RequestLayout()
}

// SetRTL switches the layout direction.
func (g *Grid) SetRTL(rtl bool) {
	g.opts.RTL = rtl
	g.widths.SetRTL(rtl)
	g.widths.Reapply(g.cols, &g.state)
	g.focus.SetGrid(g.view())
	g.RequestLayout()
}

// SetHideHeader hides or shows the header row.
func (g *Grid) SetHideHeader(hide bool) {
	g.opts.HideHeader = hide
	g.focus.SetGrid(g.view())
	g.RequestLayout()
}

// SetFocus records keyboard focus entering or leaving the grid.
func (g *Grid) SetFocus(focused bool) { g.focus.SetFocus(focused) }

// SetLoading marks a load-more fetch as running or finished.
func (g *Grid) SetLoading(loading bool) {
	g.window.SetLoading(loading)
	if loading {
		g.loadMore = false
	}
}

// Resize sets the width of the column at colIndex. Widths are written
// immediately; negotiation does not run.
func (g *Grid) Resize(colIndex, width int) bool {
	changed := g.widths.Resize(g.cols, &g.state, colIndex, width)
	if changed {
		g.RequestLayout()
	}
	return changed
}

// ResizeBy grows or shrinks a column by steps resize steps.
func (g *Grid) ResizeBy(colIndex, steps int) bool {
	changed := g.widths.ResizeWithDelta(g.cols, &g.state, colIndex, steps*g.state.ResizeStep)
	if changed {
		g.RequestLayout()
	}
	return changed
}

// ResetWidths forgets manual resizes and queues a full recompute.
func (g *Grid) ResetWidths() {
	widths.ResetWidths(g.cols, &g.state)
	g.widths.HandleColumnsChange(g.cols)
	g.RequestLayout()
}

// Scroll moves the viewport. Positions past the end clamp to the last page.
func (g *Grid) Scroll(top float64) virtual.ScrollResult {
	maxTop := max(g.window.Index().TotalHeight()-g.window.ViewportHeight(), 0)
	top = min(max(top, 0), maxTop)
	res := g.window.OnScroll(top)
	if res.LoadMore {
		g.loadMore = true
	}
	if res.Extended || res.LoadMore {
		g.RequestLayout()
	}
	return res
}

// ScrollBy scrolls relative to the current position.
func (g *Grid) ScrollBy(delta float64) virtual.ScrollResult {
	return g.Scroll(g.window.ScrollTop() + delta)
}

// Key forwards a key to the focus machine and applies its side effects.
func (g *Grid) Key(k focus.Key, shift bool) focus.Result {
	res := g.focus.HandleKey(k, shift)
	if res.Toggle != nil {
		g.SetExpanded(res.Toggle.RowKey, res.Toggle.Expand)
	}
	if res.Moved {
		g.reveal = true
		g.RequestLayout()
	}
	return res
}

// Click activates a cell.
func (g *Grid) Click(rowKey, colKey string) focus.Result {
	res := g.focus.Click(rowKey, colKey)
	if res.Moved {
		g.reveal = true
		g.RequestLayout()
	}
	return res
}

// ExpandToggle flips the expansion of a hierarchical row.
func (g *Grid) ExpandToggle(rowKey string) {
	g.SetExpanded(rowKey, !g.expanded[rowKey])
}

// SetExpanded expands or collapses a hierarchical row.
func (g *Grid) SetExpanded(rowKey string, expand bool) {
	row := g.rows.ByKey(rowKey)
	if row == nil || !row.HasChildren || row.Expanded == expand {
		return
	}
	if expand {
		g.expanded[rowKey] = true
	} else {
		delete(g.expanded, rowKey)
	}
	prevLen := g.rows.Len()
	g.rebuildRows()
	g.window.UpdateRenderedCount(g.rows.Len(), g.rows.FirstKey(), false)
	g.log.V(1).Info("row toggled", "row", rowKey, "expanded", expand, "rows", g.rows.Len(), "before", prevLen)
	g.focus.SetGrid(g.view())
	g.RequestLayout()
}

// ToggleSelected flips the selection of a row.
func (g *Grid) ToggleSelected(rowKey string) {
	row := g.rows.ByKey(rowKey)
	if row == nil {
		return
	}
	row.Selected = !row.Selected
	if row.Selected {
		g.selected[rowKey] = true
	} else {
		delete(g.selected, rowKey)
	}
}

// OnRenderComplete consumes the measurements of the last render: row heights
// feed the offset index, widths are negotiated when queued, and the active
// row is scrolled into view after a move.
func (g *Grid) OnRenderComplete(h Host) Layout {
	g.window.SetViewportHeight(h.ViewportHeight())
	if !g.window.Config().FixedHeight {
		g.measureRows(h)
	}

	available := h.AvailableWidth()
	if !g.widths.AdjustColumnsSize(h, g.cols, &g.state) && available > 0 && available != g.lastAvailable && g.state.HasDefinedWidths() {
		g.widths.AdjustAfterContainerResize(h, g.cols, &g.state)
	}
	if available > 0 {
		g.lastAvailable = available
	}

	if g.reveal {
		g.reveal = false
		g.revealActive()
	}
	if g.window.Prefetch() {
		g.loadMore = true
	}
	g.dirty = false
	return g.Layout()
}

// Layout returns the current layout without measuring.
func (g *Grid) Layout() Layout {
	return Layout{
		Span:       g.window.ComputeRenderedRange(),
		Widths:     slices.Clone(g.state.ColumnWidths),
		TableWidth: g.state.TableWidth,
		TableStyle: g.state.TableStyle(),
		Focus:      g.focus.Active(),
		Mode:       g.focus.Mode(),
		RowMode:    g.focus.RowMode(),
		ScrollTop:  g.window.ScrollTop(),
		LoadMore:   g.loadMore && !g.window.Loading(),
	}
}

func (g *Grid) measureRows(h Host) {
	span := g.window.ComputeRenderedRange()
	measured := make([]virtual.Measured, 0, max(span.Len(), 0))
	for i := span.First; i <= span.Last; i++ {
		row := g.rows.At(i)
		if row == nil {
			continue
		}
		if height, ok := h.RowHeight(row.Key); ok {
			measured = append(measured, virtual.Measured{Key: row.Key, Index: i, Height: height})
		}
	}
	g.window.Index().RecordRendered(measured)
}

// revealActive scrolls so the active row sits inside the viewport margins.
// Rows outside the rendered window are scrolled to first.
func (g *Grid) revealActive() {
	row, _, ok := g.focus.Indexes()
	if !ok || row < 0 {
		return
	}
	idx := g.window.Index()
	top := g.window.ScrollTop()
	if g.window.ComputeRenderedRange().Contains(row) {
		rowTop := idx.Offset(row)
		top = focus.AdjustScrollTop(top, g.window.ViewportHeight(), rowTop, rowTop+idx.Height(row), g.opts.Margins)
	} else {
		top = focus.ScrollToRow(row, g.window.FirstVisible(), g.window.RowCountInViewport(), idx.RowHeight())
	}
	if top != g.window.ScrollTop() {
		g.Scroll(top)
	}
}

// view builds the snapshot the focus machine navigates.
func (g *Grid) view() *focus.View {
	ri := make([]focus.RowInfo, g.rows.Len())
	for i, r := range g.rows.Rows {
		ri[i] = focus.RowInfo{Key: r.Key, Level: r.Level, HasChildren: r.HasChildren, Expanded: r.Expanded}
	}
	ci := make([]focus.ColumnInfo, len(g.cols))
	for i, c := range g.cols {
		ci[i] = focus.ColumnInfo{
			Key:        c.Key,
			Customer:   c.IsCustomer(),
			Sortable:   c.Sortable,
			Actionable: c.Desc.Actionable,
			Tree:       c.Type == columns.TypeTree,
		}
	}
	return focus.NewView(ri, ci, g.opts.HideHeader, g.opts.RTL)
}
