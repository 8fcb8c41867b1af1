package widths

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridkit/internal/columns"
)

// Mode selects the width strategy.
type Mode string

const (
	ModeFixed Mode = "fixed"
	ModeAuto  Mode = "auto"
)

// ParseMode validates a width mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeFixed:
		return ModeFixed, nil
	case ModeAuto:
		return ModeAuto, nil
	}
	return ModeFixed, fmt.Errorf("invalid width mode %q (expected fixed or auto)", s)
}

// State is the width data shared between the manager, the resizer and the
// renderer.
type State struct {
	ColumnWidths   []int
	TableWidth     int
	MinColumnWidth int
	MaxColumnWidth int
	ResizeStep     int
	ResizeDisabled bool
}

// DefaultState returns an empty state with the documented defaults.
func DefaultState() State {
	return State{
		MinColumnWidth: columns.DefaultMinWidth,
		MaxColumnWidth: columns.DefaultMaxWidth,
		ResizeStep:     DefaultResizeStep,
	}
}

// HasDefinedWidths reports whether widths were computed at least once.
func (s *State) HasDefinedWidths() bool {
	return len(s.ColumnWidths) > 0
}

// TableStyle returns the style string for the table element.
func (s *State) TableStyle() string {
	return BuildStyle(s.TableWidth)
}

// CustomerWidths returns the widths of caller-defined columns only.
func (s *State) CustomerWidths(cols []*columns.Column) []int {
	out := make([]int, 0, len(cols))
	for i, c := range cols {
		if c.IsCustomer() && i < len(s.ColumnWidths) {
			out = append(out, s.ColumnWidths[i])
		}
	}
	return out
}

// Options configures a Manager.
type Options struct {
	Mode             Mode
	MinWidth         int
	MaxWidth         int
	WrapTextMaxLines int
	// RTL makes the manager maintain column offsets from the table start.
	RTL bool
	Log logr.Logger
}

// Manager decides when widths must be recomputed and applies the result to
// the columns. Changes only queue work; AdjustColumnsSize consumes it.
type Manager struct {
	mode  Mode
	rtl   bool
	fixed *FixedStrategy
	auto  *AutoStrategy
	log   logr.Logger

	queueResize     bool
	queueAutoResize bool
}

// NewManager returns a manager with both strategies configured.
func NewManager(opts Options) *Manager {
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	mode := opts.Mode
	if mode != ModeAuto {
		mode = ModeFixed
	}
	m := &Manager{mode: mode, rtl: opts.RTL, log: log}
	b := m.bounds(opts.MinWidth, opts.MaxWidth)
	b.WrapTextMaxLines = opts.WrapTextMaxLines
	if b.WrapTextMaxLines <= 0 {
		b.WrapTextMaxLines = DefaultWrapTextMaxLines
	}
	m.fixed = NewFixedStrategy(b)
	m.auto = NewAutoStrategy(b)
	return m
}

func (m *Manager) bounds(minWidth, maxWidth int) Bounds {
	lo, hi := columns.Bounds(minWidth, maxWidth)
	if minWidth <= 0 || maxWidth <= 0 || maxWidth < minWidth {
		m.log.Info("invalid column width bounds, using defaults", "minWidth", minWidth, "maxWidth", maxWidth, "usedMin", lo, "usedMax", hi)
	}
	return Bounds{Min: lo, Max: hi}
}

// Mode returns the active width mode.
func (m *Manager) Mode() Mode { return m.mode }

// RTL reports whether offsets are maintained.
func (m *Manager) RTL() bool { return m.rtl }

// SetRTL switches the layout direction.
func (m *Manager) SetRTL(rtl bool) { m.rtl = rtl }

// Strategy returns the strategy for the active mode.
func (m *Manager) Strategy() Strategy {
	if m.mode == ModeAuto {
		return m.auto
	}
	return m.fixed
}

// Auto returns the content-proportional strategy.
func (m *Manager) Auto() *AutoStrategy { return m.auto }

// SetBounds changes the table-wide limits and re-clamps the columns.
func (m *Manager) SetBounds(cols []*columns.Column, state *State, minWidth, maxWidth int) {
	b := m.bounds(minWidth, maxWidth)
	b.WrapTextMaxLines = m.auto.Bounds.WrapTextMaxLines
	m.fixed.Bounds = b
	m.auto.Bounds = b
	state.MinColumnWidth, state.MaxColumnWidth = b.Min, b.Max
	columns.UpdateBounds(cols, b.Min, b.Max)
}

// SetWrapTextMaxLines changes the line budget for wrapped columns.
func (m *Manager) SetWrapTextMaxLines(n int) {
	if n <= 0 {
		n = DefaultWrapTextMaxLines
	}
	m.auto.Bounds.WrapTextMaxLines = n
	m.fixed.Bounds.WrapTextMaxLines = n
}

// ResizeQueued reports whether a recompute is pending.
func (m *Manager) ResizeQueued() bool { return m.queueResize }

// AutoResizeQueued reports whether the pending recompute re-measures ratios.
func (m *Manager) AutoResizeQueued() bool { return m.queueAutoResize }

// SetMode switches strategies and queues a recompute.
func (m *Manager) SetMode(mode Mode, cols []*columns.Column) {
	if mode != ModeAuto {
		mode = ModeFixed
	}
	if mode == m.mode {
		return
	}
	m.mode = mode
	m.HandleWidthModeChange(cols)
}

// HandleDataChange queues an auto recompute when the row count changed or
// the first rows arrived. Fixed mode ignores data.
func (m *Manager) HandleDataChange(prevLen, newLen int, cols []*columns.Column) {
	if len(cols) == 0 || m.mode != ModeAuto {
		return
	}
	if newLen > 0 && (prevLen == 0 || prevLen != newLen) {
		m.queueResize = true
		m.queueAutoResizing(cols)
	}
}

// HandleColumnsChange queues a recompute for a new column set.
func (m *Manager) HandleColumnsChange(cols []*columns.Column) {
	if len(cols) > 0 {
		m.queueResize = true
		m.queueAutoResizing(cols)
	}
}

// HandleWidthModeChange queues a recompute after a mode switch.
func (m *Manager) HandleWidthModeChange(cols []*columns.Column) {
	m.HandleColumnsChange(cols)
}

// HandleRowNumberColumnChange queues a recompute when the row number column
// is shown or hidden.
func (m *Manager) HandleRowNumberColumnChange(prev, next bool, cols []*columns.Column) {
	if len(cols) > 0 && prev != next {
		m.queueResize = true
		m.queueAutoResizing(cols)
	}
}

// HandleRowNumberOffsetChange grows or shrinks the row number column to fit
// the largest displayed number. It reports whether the width changed.
func (m *Manager) HandleRowNumberOffsetChange(cols []*columns.Column, state *State, metrics columns.RowNumberMetrics, rowCount, offset int) bool {
	idx := slices.IndexFunc(cols, func(c *columns.Column) bool { return c.Type == columns.TypeRowNumber })
	if idx < 0 {
		return false
	}
	col := cols[idx]
	width := max(columns.RowNumberWidth(metrics, rowCount, offset), col.MinWidth)
	if col.InitialWidth == width {
		return false
	}
	col.InitialWidth = width
	if state.HasDefinedWidths() {
		m.queueResize = true
		m.queueAutoResizing(cols)
	}
	return true
}

func (m *Manager) queueAutoResizing(cols []*columns.Column) {
	if m.mode == ModeAuto {
		m.queueAutoResize = true
	}
	for _, c := range cols {
		if c.DefinedWidth() == 0 {
			c.Width = 0
			c.Style = ""
		}
	}
}

// AdjustColumnsSize runs a queued recompute and writes the result into cols
// and state. When the host reports no width (hidden table) previously
// computed widths are reapplied instead. It reports whether anything ran.
func (m *Manager) AdjustColumnsSize(meas Measurer, cols []*columns.Column, state *State) bool {
	ran := m.queueResize
	if m.queueResize {
		var res Result
		if state.HasDefinedWidths() && meas.AvailableWidth() <= 0 {
			res = Result{Widths: slices.Clone(state.ColumnWidths), ExpectedTableWidth: state.TableWidth}
		} else {
			res = m.Strategy().AdjustedWidths(meas, cols, m.queueAutoResize)
		}
		m.apply(res, cols, state)
	}
	m.queueAutoResize = false
	m.queueResize = false
	return ran
}

// AdjustAfterContainerResize recomputes widths for a new container width,
// reusing cached auto ratios.
func (m *Manager) AdjustAfterContainerResize(meas Measurer, cols []*columns.Column, state *State) {
	m.apply(m.Strategy().AdjustedWidths(meas, cols, false), cols, state)
}

// Reapply writes the stored widths back onto cols, for example after the
// column objects were rebuilt without a width change.
func (m *Manager) Reapply(cols []*columns.Column, state *State) {
	if len(state.ColumnWidths) != len(cols) {
		return
	}
	m.apply(Result{Widths: slices.Clone(state.ColumnWidths), ExpectedTableWidth: state.TableWidth}, cols, state)
}

func (m *Manager) apply(res Result, cols []*columns.Column, state *State) {
	if len(res.Widths) != len(cols) {
		m.log.V(1).Info("width result does not match columns, keeping previous widths", "widths", len(res.Widths), "columns", len(cols))
		return
	}
	state.ColumnWidths = res.Widths
	offset := 0
	for i, c := range cols {
		w := res.Widths[i]
		c.Width = w
		c.Style = BuildStyle(w)
		if m.rtl {
			c.Offset = offset
		}
		offset += w
	}
	state.TableWidth = offset
	m.log.V(1).Info("column widths computed", "mode", string(m.mode), "tableWidth", offset, "expected", res.ExpectedTableWidth)
}
