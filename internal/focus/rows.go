package focus

// HandleRowKey reacts to a key while a whole row holds focus. Left collapses
// an expanded row or jumps to the parent; Right expands a collapsed row or
// moves focus back into the cells. Up and Down move between rows and stop at
// either end.
func (m *Machine) HandleRowKey(k Key) Result {
	if m.active == nil || m.active.RowKey == HeaderRowKey {
		return Result{}
	}
	rowIndex := m.grid.RowIndex(m.active.RowKey)
	if rowIndex < 0 {
		return Result{}
	}
	row := m.grid.Row(rowIndex)

	switch k {
	case KeyLeft:
		if row.HasChildren && row.Expanded {
			return Result{Handled: true, Toggle: &ToggleRequest{RowKey: row.Key, Expand: false}}
		}
		if row.Level > 1 {
			if parent := m.parentOf(rowIndex); parent >= 0 {
				return m.moveRow(parent)
			}
		}
		return Result{Handled: true}
	case KeyRight:
		if row.HasChildren && !row.Expanded {
			return Result{Handled: true, Toggle: &ToggleRequest{RowKey: row.Key, Expand: true}}
		}
		m.rowMode = false
		m.active.Focused = true
		return Result{Handled: true, ModeChanged: true}
	case KeyUp:
		res := Result{Handled: true, StopPropagation: true}
		if rowIndex > 0 {
			res = m.moveRow(rowIndex - 1)
			res.StopPropagation = true
		}
		return res
	case KeyDown:
		res := Result{Handled: true, StopPropagation: true}
		if rowIndex+1 < m.grid.RowCount() {
			res = m.moveRow(rowIndex + 1)
			res.StopPropagation = true
		}
		return res
	}
	return Result{}
}

// moveRow moves row focus to index, pointing the cell at the tree column.
func (m *Machine) moveRow(index int) Result {
	prev := m.Active()
	colKey := m.active.ColKey
	if tree, ok := m.treeColumn(); ok {
		colKey = tree.Key
	}
	m.active = &Cell{RowKey: m.grid.Row(index).Key, ColKey: colKey}
	return Result{Handled: true, Moved: true, Previous: prev}
}

// parentOf returns the index of the nearest preceding row one level up.
func (m *Machine) parentOf(index int) int {
	level := m.grid.Row(index).Level
	for i := index - 1; i >= 0; i-- {
		if m.grid.Row(i).Level == level-1 {
			return i
		}
	}
	return -1
}
