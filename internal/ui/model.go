// Package ui is the terminal host for the grid: a Bubble Tea model that
// renders the rows the grid asks for, reports their measured heights and
// column widths back, and turns key presses into grid operations.
package ui

import (
	"fmt"
	"strings"
	"unicode"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/filter"
	"github.com/oakwood-commons/gridkit/internal/focus"
	"github.com/oakwood-commons/gridkit/internal/grid"
	"github.com/oakwood-commons/gridkit/internal/limiter"
	"github.com/oakwood-commons/gridkit/internal/widths"
	"github.com/oakwood-commons/gridkit/pkg/loader"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// maxLayoutPasses bounds the render/measure loop: wrapped rows change
	// height when widths change, which can move the span once more.
	maxLayoutPasses = 3
)

// Options configures a Model.
type Options struct {
	// Config must already be normalized.
	Config  config.Config
	Records []map[string]any
	// Columns overrides Config.Columns; both empty means columns are
	// inferred from the record fields.
	Columns []columns.Def
	// Filter is a CEL row predicate applied before the first render.
	Filter  string
	Width   int
	Height  int
	NoColor bool
	AppName string
	Log     logr.Logger
}

// loadMoreMsg delivers the next page of records.
type loadMoreMsg struct {
	records []map[string]any
}

// Model is the Bubble Tea model hosting one grid.
type Model struct {
	opts   Options
	log    logr.Logger
	grid   *grid.Grid
	host   *termHost
	layout grid.Layout

	keys    KeyMap
	help    help.Model
	theme   Theme
	spinner spinner.Model

	filterInput textinput.Model
	filtering   bool
	filterExpr  string

	source []map[string]any
	pager  *limiter.Pager[map[string]any]

	width, height int
	helpVisible   bool
	pendingG      bool
	status        string
	errMsg        string
	LastKey       string
}

// New builds a model and runs the first layout pass.
func New(opts Options) *Model {
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	cfg := opts.Config
	m := &Model{
		opts:   opts,
		log:    log,
		keys:   NewKeyMap(KeyMode(cfg.UI.KeyMode)),
		help:   help.New(),
		theme:  NewTheme(cfg.ActiveTheme(), opts.NoColor),
		width:  opts.Width,
		height: opts.Height,
	}
	if m.width <= 0 {
		m.width = defaultWidth
	}
	if m.height <= 0 {
		m.height = defaultHeight
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	fi := textinput.New()
	fi.Placeholder = `row.size > 10 && row.name.startsWith("a")`
	fi.CharLimit = 500
	fi.SetWidth(m.width - 8)
	fi.Prompt = "filter: "
	m.filterInput = fi

	m.grid = grid.New(cfg.GridOptions(log.WithName("grid")))
	m.host = &termHost{g: m.grid, wrapMax: cfg.Grid.WrapTextMaxLines}

	defs := opts.Columns
	if len(defs) == 0 {
		defs = cfg.Columns
	}
	if len(defs) == 0 {
		defs = InferColumns(opts.Records)
	}
	m.grid.SetColumns(defs)
	m.grid.SetFocus(true)
	m.filterInput.ShowSuggestions = true
	m.filterInput.SetSuggestions(filterSuggestions(defs))

	m.source = opts.Records
	if strings.TrimSpace(opts.Filter) != "" {
		if err := m.applyFilter(opts.Filter); err != nil {
			m.errMsg = err.Error()
		}
	} else {
		m.resetData(m.source)
	}
	m.relayout()
	return m
}

// InferColumns builds one column per record field. Numeric and boolean
// fields get matching types and nested records make the first column a tree.
func InferColumns(records []map[string]any) []columns.Def {
	fields := loader.Fields(records)
	tree := false
	for _, rec := range records {
		if _, ok := rec["_children"]; ok {
			tree = true
			break
		}
	}
	defs := make([]columns.Def, 0, len(fields))
	for i, f := range fields {
		def := columns.Def{Label: f, FieldName: f, Sortable: true, Type: inferType(records, f)}
		if tree && i == 0 {
			def.Type = "tree"
		}
		defs = append(defs, def)
	}
	return defs
}

func inferType(records []map[string]any, field string) string {
	for _, rec := range records {
		switch rec[field].(type) {
		case nil:
			continue
		case int, int64, float64, uint64, int32, float32:
			return "number"
		case bool:
			return "boolean"
		}
		return ""
	}
	return ""
}

// filterSuggestions completes field references in the filter prompt. Names
// that are not CEL identifiers use index syntax.
func filterSuggestions(defs []columns.Def) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		switch {
		case d.FieldName == "":
		case isIdent(d.FieldName):
			out = append(out, filter.RowVar+"."+d.FieldName)
		default:
			out = append(out, fmt.Sprintf("%s[%q]", filter.RowVar, d.FieldName))
		}
	}
	return out
}

func isIdent(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return s != ""
}

// Grid exposes the hosted grid.
func (m *Model) Grid() *grid.Grid { return m.grid }

// Layout returns the last computed layout.
func (m *Model) Layout() grid.Layout { return m.layout }

// Init starts the spinner; it only animates while a page is loading.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadMoreCmd())
}

// Update handles one message, then runs the layout pass so View stays free
// of mutations.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.width == msg.Width && m.height == msg.Height {
			return m, nil
		}
		m.width, m.height = msg.Width, msg.Height
		m.filterInput.SetWidth(max(m.width-8, 10))
		m.grid.RequestLayout()

	case loadMoreMsg:
		m.grid.AppendData(msg.records)
		m.status = fmt.Sprintf("loaded %d more rows", len(msg.records))

	case spinner.TickMsg:
		if m.grid.Window().Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseWheelMsg:
		step := m.grid.Window().Index().RowHeight() * 3
		if msg.Mouse().Button == tea.MouseWheelUp {
			step = -step
		}
		m.grid.ScrollBy(step)

	case tea.MouseClickMsg:
		mouse := msg.Mouse()
		m.click(mouse.X, mouse.Y)

	case tea.KeyPressMsg:
		m.LastKey = msg.String()
		if m.filtering {
			cmds = append(cmds, m.handleFilterKey(msg))
		} else if cmd := m.handleKey(msg.String()); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	m.relayout()
	cmds = append(cmds, m.loadMoreCmd())
	return m, tea.Batch(cmds...)
}

// handleKey resolves keyStr through the key map and runs the action.
func (m *Model) handleKey(keyStr string) tea.Cmd {
	action := m.keys.Resolve(keyStr)
	if m.pendingG {
		m.pendingG = false
		if action == ActionPendingG {
			action = ActionTop
		}
	}
	if m.helpVisible && action != ActionHelp && action != ActionQuit {
		if action == ActionEscape {
			m.helpVisible = false
		}
		return nil
	}
	m.errMsg = ""
	return m.executeAction(action)
}

func (m *Model) executeAction(action Action) tea.Cmd {
	g := m.grid
	switch action {
	case ActionUp:
		m.focusKey(focus.KeyUp, false)
	case ActionDown:
		m.focusKey(focus.KeyDown, false)
	case ActionLeft:
		m.focusKey(focus.KeyLeft, false)
	case ActionRight:
		m.focusKey(focus.KeyRight, false)
	case ActionTab:
		m.focusKey(focus.KeyTab, false)
	case ActionBackTab:
		m.focusKey(focus.KeyTab, true)
	case ActionEscape:
		m.focusKey(focus.KeyEscape, false)
	case ActionEnter:
		m.enter()
	case ActionPageDown, ActionPageUp:
		m.page(action == ActionPageDown)
	case ActionTop:
		m.jumpRow(0)
	case ActionBottom:
		m.jumpRow(g.Rows().Len() - 1)
	case ActionPendingG:
		m.pendingG = true
	case ActionNarrow, ActionWiden:
		steps := 1
		if action == ActionNarrow {
			steps = -1
		}
		if col := m.activeColumn(); col >= 0 && !g.ResizeBy(col, steps) {
			m.status = "column is not resizable"
		}
	case ActionResetWidths:
		g.ResetWidths()
		m.status = "column widths reset"
	case ActionWidthMode:
		mode := widths.ModeAuto
		if g.WidthMode() == widths.ModeAuto {
			mode = widths.ModeFixed
		}
		g.SetWidthMode(mode)
		m.status = "width mode: " + string(mode)
	case ActionSort:
		m.sortActive()
	case ActionSelect:
		if c := g.Focus().Active(); c != nil && c.RowKey != focus.HeaderRowKey {
			g.ToggleSelected(c.RowKey)
		}
	case ActionExpand:
		if c := g.Focus().Active(); c != nil && c.RowKey != focus.HeaderRowKey {
			g.ExpandToggle(c.RowKey)
		}
	case ActionRowNumbers:
		g.SetShowRowNumbers(!g.Options().ShowRowNumbers)
	case ActionToggleDirection:
		g.SetRTL(!g.Options().RTL)
	case ActionFilter:
		m.filtering = true
		m.filterInput.SetValue(m.filterExpr)
		m.grid.RequestLayout()
		return m.filterInput.Focus()
	case ActionHelp:
		m.helpVisible = !m.helpVisible
		m.grid.RequestLayout()
	case ActionQuit:
		return tea.Quit
	}
	return nil
}

func (m *Model) focusKey(k focus.Key, shift bool) {
	res := m.grid.Key(k, shift)
	if res.ExitGrid {
		m.status = "focus left the grid"
	}
}

// enter sorts from a sortable header cell, toggles tree rows, and otherwise
// puts the cell into action mode.
func (m *Model) enter() {
	c := m.grid.Focus().Active()
	if c != nil && c.RowKey == focus.HeaderRowKey {
		m.sortActive()
		return
	}
	if col := m.activeColumn(); col >= 0 && m.grid.Columns()[col].Type == columns.TypeTree {
		m.grid.ExpandToggle(c.RowKey)
		return
	}
	if res := m.grid.Key(focus.KeyEnter, false); res.ModeChanged {
		m.status = "action mode: tab moves between controls, esc leaves"
	}
}

func (m *Model) sortActive() {
	c := m.grid.Focus().Active()
	if c == nil {
		return
	}
	if !m.grid.Sort(c.ColKey) {
		m.status = "column is not sortable"
		return
	}
	_, dir := m.grid.SortedBy()
	m.status = "sorted " + string(dir)
}

func (m *Model) activeColumn() int {
	c := m.grid.Focus().Active()
	if c == nil {
		return -1
	}
	return columns.IndexOf(m.grid.Columns(), c.ColKey)
}

// page scrolls one viewport and moves focus by the rows that scrolled past.
func (m *Model) page(down bool) {
	w := m.grid.Window()
	rowsPerPage := max(w.RowCountInViewport()-1, 1)
	row, _, ok := m.grid.Focus().Indexes()
	if !ok {
		return
	}
	if down {
		row += rowsPerPage
	} else {
		row -= rowsPerPage
	}
	m.jumpRow(min(max(row, 0), m.grid.Rows().Len()-1))
}

func (m *Model) jumpRow(index int) {
	row := m.grid.Rows().At(index)
	c := m.grid.Focus().Active()
	if row == nil || c == nil {
		return
	}
	m.grid.Click(row.Key, c.ColKey)
}

// click maps screen coordinates to a cell and activates it.
func (m *Model) click(x, y int) {
	header := 0
	if !m.grid.Options().HideHeader {
		header = 1
	}
	colKey := m.columnAt(x)
	if colKey == "" {
		return
	}
	if y < header {
		m.grid.Click(focus.HeaderRowKey, colKey)
		return
	}
	line := float64(y - header)
	if line >= m.host.ViewportHeight() {
		return
	}
	idx, _ := m.grid.Window().Index().FindRowAtScrollPosition(m.layout.ScrollTop + line)
	if row := m.grid.Rows().At(idx); row != nil {
		m.grid.Click(row.Key, colKey)
	}
}

func (m *Model) columnAt(x int) string {
	cols := visualOrder(m.grid.Columns(), m.grid.Options().RTL)
	pos := 0
	for _, c := range cols {
		if x < pos+c.Width {
			return c.Key
		}
		pos += c.Width + 1
	}
	return ""
}

func (m *Model) handleFilterKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.Blur()
		m.grid.RequestLayout()
		return nil
	case "enter":
		if err := m.applyFilter(m.filterInput.Value()); err != nil {
			m.errMsg = err.Error()
			return nil
		}
		m.filtering = false
		m.filterInput.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return cmd
}

// applyFilter replaces the grid data with the source records matching expr.
// An empty expression clears the filter.
func (m *Model) applyFilter(expr string) error {
	expr = strings.TrimSpace(expr)
	records := m.source
	if expr != "" {
		pred, err := filter.Compile(expr)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		if records, err = pred.Apply(m.source); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}
	m.filterExpr = expr
	m.resetData(records)
	m.status = fmt.Sprintf("%d of %d rows match", len(records), len(m.source))
	if expr == "" {
		m.status = "filter cleared"
	}
	return nil
}

// resetData pages records into the grid: with infinite loading only the
// first page is shown and later pages arrive through load-more.
func (m *Model) resetData(records []map[string]any) {
	size := 0
	if m.opts.Config.Grid.InfiniteLoading {
		size = m.opts.Config.Grid.PageSize
	}
	m.pager = limiter.NewPager(records, size)
	m.grid.SetData(m.pager.Next())
}

// loadMoreCmd fetches the next page when the grid asks for more rows.
func (m *Model) loadMoreCmd() tea.Cmd {
	if !m.layout.LoadMore || m.pager == nil || m.pager.Done() {
		return nil
	}
	m.grid.SetLoading(true)
	m.layout = m.grid.Layout()
	page := m.pager.Next()
	m.log.V(1).Info("loading more rows", "count", len(page), "remaining", m.pager.Remaining())
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return loadMoreMsg{records: page} })
}

// relayout runs render/measure passes until the layout settles.
func (m *Model) relayout() {
	m.host.width = m.width
	m.host.height = m.height
	m.host.chrome = m.chromeHeight()
	prev := m.layout
	for range maxLayoutPasses {
		m.layout = m.grid.OnRenderComplete(m.host)
		if !m.grid.Dirty() && layoutSettled(prev, m.layout) {
			break
		}
		prev = m.layout
	}
}

func layoutSettled(a, b grid.Layout) bool {
	if a.Span != b.Span || a.ScrollTop != b.ScrollTop || len(a.Widths) != len(b.Widths) {
		return false
	}
	for i := range a.Widths {
		if a.Widths[i] != b.Widths[i] {
			return false
		}
	}
	return true
}

// chromeHeight counts the lines outside the row viewport.
func (m *Model) chromeHeight() int {
	lines := 2 // status + help
	if !m.grid.Options().HideHeader {
		lines++
	}
	if m.filtering {
		lines++
	}
	if m.helpVisible {
		m.help.ShowAll = true
		lines += len(strings.Split(m.help.View(m.keys), "\n")) - 1
		m.help.ShowAll = false
	}
	return lines
}
