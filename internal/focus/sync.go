package focus

// Sync reconciles the active cell after rows or columns changed. A cell that
// no longer resolves is replaced by the successor remembered with
// SetCellToFocusFromPrev, clamped to the new bounds, or else by the default
// cell. Without columns the active cell becomes nil.
func (m *Machine) Sync() {
	if m.active != nil && m.stillValid() {
		return
	}
	if m.active != nil && m.next != nil {
		m.activateFromPrev()
		return
	}
	prev := m.active
	m.active = m.defaultCell()
	if prev != nil {
		m.log.V(1).Info("active cell reset to default", "row", prev.RowKey, "column", prev.ColKey)
	}
}

// SetCellToFocusFromPrev remembers where focus should land if the active
// cell disappears in the next data change: the first column of the same row,
// or the last cell when the active row is the last row. It only applies
// while the grid has focus.
func (m *Machine) SetCellToFocusFromPrev() {
	if m.active == nil || !m.hasFocus || m.next != nil {
		return
	}
	row, _, ok := m.Indexes()
	if !ok {
		return
	}
	col := 0
	if last := m.grid.RowCount() - 1; row == last {
		col = max(m.grid.ColumnCount()-1, 0)
	}
	m.next = &position{row: row, col: col}
}

// UpdateCellToFocusFromPrev drops the remembered successor once the active
// cell is valid again.
func (m *Machine) UpdateCellToFocusFromPrev() {
	if m.active != nil && m.next != nil && m.stillValid() {
		m.next = nil
	}
}

// ResetCellToFocusFromPrev forgets the remembered successor.
func (m *Machine) ResetCellToFocusFromPrev() {
	m.next = nil
}

func (m *Machine) activateFromPrev() {
	row := min(m.next.row, m.grid.RowCount()-1)
	col := min(m.next.col, m.grid.ColumnCount()-1)
	m.next = nil
	m.mode = ModeNavigation
	if cell := m.cellAt(row, col); cell != nil {
		m.active = cell
		return
	}
	m.active = m.defaultCell()
}

// cellAt builds the cell at the given indexes, or nil when there is none.
func (m *Machine) cellAt(row, col int) *Cell {
	if col < 0 || col >= m.grid.ColumnCount() {
		return nil
	}
	rowKey := HeaderRowKey
	if row >= 0 {
		rowKey = m.grid.Row(row).Key
	} else if m.grid.HeaderHidden() {
		return nil
	}
	return &Cell{RowKey: rowKey, ColKey: m.grid.Column(col).Key, Focused: m.hasFocus}
}

// defaultCell is the first customer column of the first row, or of the
// header when there are no rows.
func (m *Machine) defaultCell() *Cell {
	if m.grid == nil || m.grid.ColumnCount() == 0 {
		return nil
	}
	col := 0
	for i := 0; i < m.grid.ColumnCount(); i++ {
		if m.grid.Column(i).Customer {
			col = i
			break
		}
	}
	row := headerRow
	if m.grid.RowCount() > 0 {
		row = 0
	}
	return m.cellAt(row, col)
}

// stillValid reports whether the active cell resolves. A header cell is only
// valid while the header is shown, and not while rows exist but no column is
// sortable.
func (m *Machine) stillValid() bool {
	if m.active.RowKey == HeaderRowKey {
		if m.grid.HeaderHidden() {
			return false
		}
		if m.grid.RowCount() > 0 && !m.anySortable() {
			return false
		}
		return m.grid.ColumnIndex(m.active.ColKey) >= 0
	}
	_, _, ok := m.Indexes()
	return ok
}

func (m *Machine) anySortable() bool {
	for i := 0; i < m.grid.ColumnCount(); i++ {
		if m.grid.Column(i).Sortable {
			return true
		}
	}
	return false
}
