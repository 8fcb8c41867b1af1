// Package focus tracks the single active cell of a grid and moves it in
// response to keys and clicks. The machine is pure state: it reports what
// changed and the host applies focus rings, tab stops and scrolling.
package focus

import (
	"github.com/go-logr/logr"
)

// HeaderRowKey is the row key of the header row.
const HeaderRowKey = "HEADER"

// headerRow is the row index of the header.
const headerRow = -1

// Mode is the keyboard interaction mode.
type Mode int

const (
	// ModeNavigation moves between cells.
	ModeNavigation Mode = iota
	// ModeAction keeps focus inside the controls of one cell.
	ModeAction
)

func (m Mode) String() string {
	if m == ModeAction {
		return "ACTION"
	}
	return "NAVIGATION"
}

// Key is a navigation key.
type Key int

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeySpace
	KeyEscape
	KeyTab
)

// ParseKey maps a key name ("left", "enter", "space", "esc", ...) to a Key.
func ParseKey(name string) Key {
	switch name {
	case "left":
		return KeyLeft
	case "right":
		return KeyRight
	case "up":
		return KeyUp
	case "down":
		return KeyDown
	case "enter":
		return KeyEnter
	case "space", " ":
		return KeySpace
	case "esc", "escape":
		return KeyEscape
	case "tab":
		return KeyTab
	}
	return KeyNone
}

// Cell is the active position. RowKey is HeaderRowKey for header cells.
type Cell struct {
	RowKey  string
	ColKey  string
	Focused bool
}

// ToggleRequest asks the host to expand or collapse a row.
type ToggleRequest struct {
	RowKey string
	Expand bool
}

// Result describes what a key or click did.
type Result struct {
	// Handled means the key was consumed and its default action suppressed.
	Handled bool
	// StopPropagation means ancestors must not see the key.
	StopPropagation bool
	// Moved is set when the active cell changed; Previous is the old one.
	Moved    bool
	Previous *Cell
	// ModeChanged is set when the machine switched modes.
	ModeChanged bool
	// Action names what put the cell into action mode ("enter", "space", "tab").
	Action string
	// ExitGrid lets focus leave the grid (Tab in navigation mode).
	ExitGrid bool
	// Toggle requests an expand or collapse in row mode.
	Toggle *ToggleRequest
}

type position struct {
	row int
	col int
}

// Machine is the active-cell state machine of one grid.
type Machine struct {
	grid Grid
	log  logr.Logger

	active   *Cell
	mode     Mode
	rowMode  bool
	hasFocus bool
	next     *position
}

// New returns a machine over g with the default active cell.
func New(g Grid, log logr.Logger) *Machine {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	m := &Machine{grid: g, log: log}
	m.active = m.defaultCell()
	m.updateRowMode(false)
	return m
}

// Active returns a copy of the active cell, or nil.
func (m *Machine) Active() *Cell {
	if m.active == nil {
		return nil
	}
	c := *m.active
	return &c
}

// Mode returns the keyboard mode.
func (m *Machine) Mode() Mode { return m.mode }

// RowMode reports whether whole rows hold focus.
func (m *Machine) RowMode() bool { return m.rowMode }

// HasFocus reports whether the grid holds keyboard focus.
func (m *Machine) HasFocus() bool { return m.hasFocus }

// SetFocus records focus entering or leaving the grid.
func (m *Machine) SetFocus(focused bool) {
	m.hasFocus = focused
	if m.active != nil && !m.rowMode {
		m.active.Focused = focused
	}
}

// SetGrid swaps the view after a data or column change and reconciles the
// active cell.
func (m *Machine) SetGrid(g Grid) {
	hadTree := m.hasTree()
	m.grid = g
	m.updateRowMode(hadTree)
	m.Sync()
	m.UpdateCellToFocusFromPrev()
}

// Indexes returns the row and column index of the active cell. The header
// row is -1. ok is false when there is no resolvable active cell.
func (m *Machine) Indexes() (row, col int, ok bool) {
	if m.active == nil {
		return 0, 0, false
	}
	return m.indexesOf(m.active.RowKey, m.active.ColKey)
}

func (m *Machine) indexesOf(rowKey, colKey string) (int, int, bool) {
	col := m.grid.ColumnIndex(colKey)
	if col < 0 {
		return 0, 0, false
	}
	if rowKey == HeaderRowKey {
		return headerRow, col, true
	}
	row := m.grid.RowIndex(rowKey)
	if row < 0 {
		return 0, 0, false
	}
	return row, col, true
}

// IsActive reports whether (rowKey, colKey) is the active cell.
func (m *Machine) IsActive(rowKey, colKey string) bool {
	return m.active != nil && m.active.RowKey == rowKey && m.active.ColKey == colKey
}

// TabIndex is 0 for the single tab stop and -1 for every other cell. The
// active cell gives up its tab stop in action mode and in row mode.
func (m *Machine) TabIndex(rowKey, colKey string) int {
	if m.IsActive(rowKey, colKey) && m.mode == ModeNavigation && !m.rowMode {
		return 0
	}
	return -1
}

// RowTabIndex is 0 for the active row in row mode and -1 otherwise.
func (m *Machine) RowTabIndex(rowKey string) int {
	if m.rowMode && m.active != nil && m.active.RowKey == rowKey && rowKey != HeaderRowKey {
		return 0
	}
	return -1
}

// Click makes the clicked cell active in navigation mode.
func (m *Machine) Click(rowKey, colKey string) Result {
	if _, _, ok := m.indexesOf(rowKey, colKey); !ok {
		return Result{}
	}
	m.hasFocus = true
	prev := m.Active()
	changed := !m.IsActive(rowKey, colKey)
	modeChanged := m.mode != ModeNavigation
	m.mode = ModeNavigation
	m.rowMode = false
	m.active = &Cell{RowKey: rowKey, ColKey: colKey, Focused: true}
	return Result{Handled: true, Moved: changed, Previous: prev, ModeChanged: modeChanged}
}

// HandleKey reacts to a key pressed on the active cell. shift applies to Tab.
func (m *Machine) HandleKey(k Key, shift bool) Result {
	if m.active == nil {
		m.Sync()
		if m.active == nil {
			return Result{}
		}
	}
	if m.rowMode && m.mode == ModeNavigation && m.active.RowKey != HeaderRowKey {
		return m.HandleRowKey(k)
	}
	switch k {
	case KeyLeft:
		return m.arrowLeft()
	case KeyRight:
		return m.arrowRight()
	case KeyUp:
		return m.arrowVertical(-1)
	case KeyDown:
		return m.arrowVertical(1)
	case KeyEnter:
		return m.enter("enter")
	case KeySpace:
		return m.enter("space")
	case KeyEscape:
		return m.escape()
	case KeyTab:
		return m.tab(shift)
	}
	return Result{}
}

func (m *Machine) arrowLeft() Result {
	row, col, ok := m.Indexes()
	if !ok {
		return Result{}
	}
	if col == 0 && m.canEnterRowMode() && row != headerRow {
		prev := m.Active()
		m.active.Focused = false
		m.rowMode = true
		m.log.V(1).Info("entering row mode", "row", m.active.RowKey)
		return Result{Handled: true, ModeChanged: true, Previous: prev}
	}
	next, ok := m.horizontal(col, -1)
	if !ok {
		return Result{Handled: true}
	}
	return m.moveTo(row, next, "")
}

func (m *Machine) arrowRight() Result {
	row, col, ok := m.Indexes()
	if !ok {
		return Result{}
	}
	next, ok := m.horizontal(col, 1)
	if !ok {
		return Result{Handled: true}
	}
	return m.moveTo(row, next, "")
}

// horizontal returns the column one step in the visual direction dir, or
// false at the boundary.
func (m *Machine) horizontal(col, dir int) (int, bool) {
	if m.grid.RTL() {
		dir = -dir
	}
	next := col + dir
	if next < 0 || next >= m.grid.ColumnCount() {
		return col, false
	}
	return next, true
}

func (m *Machine) arrowVertical(dir int) Result {
	row, col, ok := m.Indexes()
	if !ok {
		return Result{}
	}
	var next int
	if dir < 0 {
		if row == headerRow {
			return Result{Handled: true}
		}
		next = row - 1
	} else {
		if row+1 >= m.grid.RowCount() {
			return Result{Handled: true}
		}
		next = row + 1
	}
	if next == headerRow && m.grid.HeaderHidden() {
		return Result{Handled: true}
	}
	res := m.moveTo(next, col, "")
	res.StopPropagation = m.mode == ModeNavigation
	return res
}

func (m *Machine) enter(action string) Result {
	if m.mode != ModeNavigation {
		return Result{}
	}
	m.mode = ModeAction
	return Result{Handled: true, ModeChanged: true, Action: action}
}

func (m *Machine) escape() Result {
	if m.mode != ModeAction {
		return Result{}
	}
	m.mode = ModeNavigation
	m.active.Focused = true
	return Result{Handled: true, StopPropagation: true, ModeChanged: true}
}

func (m *Machine) tab(backward bool) Result {
	if m.mode != ModeAction {
		return Result{ExitGrid: true}
	}
	row, col, ok := m.Indexes()
	if !ok {
		return Result{}
	}
	next, found := m.nextActionable(position{row, col}, backward)
	if !found {
		m.mode = ModeNavigation
		m.active.Focused = true
		return Result{Handled: true, StopPropagation: true, ModeChanged: true}
	}
	res := m.moveTo(next.row, next.col, "tab")
	res.StopPropagation = true
	return res
}

// nextActionable walks the grid in row-major order (header first) from p and
// returns the next cell holding a control. It does not wrap past either end.
func (m *Machine) nextActionable(p position, backward bool) (position, bool) {
	cols := m.grid.ColumnCount()
	first := headerRow
	if m.grid.HeaderHidden() {
		first = 0
	}
	last := m.grid.RowCount() - 1
	step := func(p position) (position, bool) {
		if backward {
			if p.col > 0 {
				return position{p.row, p.col - 1}, true
			}
			if p.row <= first {
				return p, false
			}
			return position{p.row - 1, cols - 1}, true
		}
		if p.col+1 < cols {
			return position{p.row, p.col + 1}, true
		}
		if p.row >= last {
			return p, false
		}
		return position{p.row + 1, 0}, true
	}
	for {
		var ok bool
		p, ok = step(p)
		if !ok {
			return p, false
		}
		if m.actionable(p) {
			return p, true
		}
	}
}

func (m *Machine) actionable(p position) bool {
	c := m.grid.Column(p.col)
	if p.row == headerRow {
		return c.Sortable
	}
	return c.Actionable
}

// moveTo makes (row, col) active, keeping the current mode.
func (m *Machine) moveTo(row, col int, action string) Result {
	prev := m.Active()
	rowKey := HeaderRowKey
	if row != headerRow {
		rowKey = m.grid.Row(row).Key
	}
	m.active = &Cell{RowKey: rowKey, ColKey: m.grid.Column(col).Key, Focused: true}
	return Result{Handled: true, Moved: true, Previous: prev, Action: action}
}

func (m *Machine) hasTree() bool {
	if m.grid == nil {
		return false
	}
	for i := 0; i < m.grid.ColumnCount(); i++ {
		if m.grid.Column(i).Tree {
			return true
		}
	}
	return false
}

func (m *Machine) treeColumn() (ColumnInfo, bool) {
	for i := 0; i < m.grid.ColumnCount(); i++ {
		if c := m.grid.Column(i); c.Tree {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

func (m *Machine) canEnterRowMode() bool {
	return m.mode == ModeNavigation && m.hasTree()
}

// updateRowMode leaves row mode when tree data disappears and starts in row
// mode when tree data first appears.
func (m *Machine) updateRowMode(hadTree bool) {
	switch {
	case !m.hasTree():
		m.rowMode = false
	case !m.rowMode && !hadTree:
		m.rowMode = true
	}
}
