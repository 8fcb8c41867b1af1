package focus

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatGrid(rows int, cols ...ColumnInfo) *View {
	rs := make([]RowInfo, rows)
	for i := range rs {
		rs[i] = RowInfo{Key: string(rune('a' + i)), Level: 1}
	}
	return NewView(rs, cols, false, false)
}

func plainColumns() []ColumnInfo {
	return []ColumnInfo{
		{Key: "name", Customer: true, Sortable: true},
		{Key: "size", Customer: true, Sortable: true},
		{Key: "menu", Customer: true, Actionable: true},
	}
}

func TestDefaultCell(t *testing.T) {
	cols := append([]ColumnInfo{{Key: "#"}}, plainColumns()...)
	m := New(flatGrid(3, cols...), logr.Discard())
	require.NotNil(t, m.Active())
	assert.Equal(t, Cell{RowKey: "a", ColKey: "name"}, *m.Active())

	m = New(flatGrid(0, cols...), logr.Discard())
	require.NotNil(t, m.Active())
	assert.Equal(t, HeaderRowKey, m.Active().RowKey)

	m = New(flatGrid(3), logr.Discard())
	assert.Nil(t, m.Active())

	m = New(NewView(nil, cols, true, false), logr.Discard())
	assert.Nil(t, m.Active())
}

func TestArrowUpToHeader(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())

	res := m.HandleKey(KeyUp, false)
	assert.True(t, res.Moved)
	assert.True(t, res.StopPropagation)
	assert.Equal(t, HeaderRowKey, m.Active().RowKey)
	assert.Equal(t, "name", m.Active().ColKey)

	res = m.HandleKey(KeyUp, false)
	assert.False(t, res.Moved)
	assert.Equal(t, HeaderRowKey, m.Active().RowKey)
}

func TestArrowUpHiddenHeader(t *testing.T) {
	g := flatGrid(3, plainColumns()...)
	g.HideHeader = true
	m := New(g, logr.Discard())

	res := m.HandleKey(KeyUp, false)
	assert.False(t, res.Moved)
	assert.Equal(t, "a", m.Active().RowKey)
}

func TestArrowDownStopsAtLastRow(t *testing.T) {
	m := New(flatGrid(2, plainColumns()...), logr.Discard())
	m.HandleKey(KeyDown, false)
	assert.Equal(t, "b", m.Active().RowKey)

	res := m.HandleKey(KeyDown, false)
	assert.False(t, res.Moved)
	assert.Equal(t, "b", m.Active().RowKey)
}

func TestRightLeftRoundTrip(t *testing.T) {
	for _, rtl := range []bool{false, true} {
		g := flatGrid(3, plainColumns()...)
		g.RightToLeft = rtl
		for row := -1; row < 3; row++ {
			for col := 0; col < 3; col++ {
				m := New(g, logr.Discard())
				rowKey := HeaderRowKey
				if row >= 0 {
					rowKey = g.Rows[row].Key
				}
				m.Click(rowKey, g.Columns[col].Key)
				start := *m.Active()

				right := m.HandleKey(KeyRight, false)
				m.HandleKey(KeyLeft, false)
				if right.Moved {
					assert.Equal(t, start, *m.Active(), "row %d col %d rtl %v", row, col, rtl)
				} else {
					// boundary: Right was a no-op, Left moves away
					assert.Equal(t, start.RowKey, m.Active().RowKey)
				}
			}
		}
	}
}

func TestArrowsMirrorUnderRTL(t *testing.T) {
	g := flatGrid(1, plainColumns()...)
	g.RightToLeft = true
	m := New(g, logr.Discard())

	m.HandleKey(KeyLeft, false)
	assert.Equal(t, "size", m.Active().ColKey)
	m.HandleKey(KeyRight, false)
	assert.Equal(t, "name", m.Active().ColKey)
	res := m.HandleKey(KeyRight, false)
	assert.False(t, res.Moved)
}

func TestEnterEscape(t *testing.T) {
	m := New(flatGrid(2, plainColumns()...), logr.Discard())
	m.SetFocus(true)
	assert.Equal(t, 0, m.TabIndex("a", "name"))

	res := m.HandleKey(KeyEnter, false)
	assert.True(t, res.ModeChanged)
	assert.Equal(t, "enter", res.Action)
	assert.Equal(t, ModeAction, m.Mode())
	assert.Equal(t, -1, m.TabIndex("a", "name"))

	res = m.HandleKey(KeyEscape, false)
	assert.True(t, res.StopPropagation)
	assert.Equal(t, ModeNavigation, m.Mode())
	assert.Equal(t, 0, m.TabIndex("a", "name"))

	res = m.HandleKey(KeyEscape, false)
	assert.False(t, res.Handled)
}

func TestTabInNavigationLeavesGrid(t *testing.T) {
	m := New(flatGrid(2, plainColumns()...), logr.Discard())
	res := m.HandleKey(KeyTab, false)
	assert.True(t, res.ExitGrid)
	assert.Equal(t, "a", m.Active().RowKey)
}

func TestTabInActionVisitsControls(t *testing.T) {
	m := New(flatGrid(2, plainColumns()...), logr.Discard())
	m.HandleKey(KeyEnter, false)

	m.HandleKey(KeyTab, false)
	assert.Equal(t, Cell{RowKey: "a", ColKey: "menu", Focused: true}, *m.Active())
	m.HandleKey(KeyTab, false)
	assert.Equal(t, Cell{RowKey: "b", ColKey: "menu", Focused: true}, *m.Active())
	assert.Equal(t, ModeAction, m.Mode())

	res := m.HandleKey(KeyTab, false)
	assert.True(t, res.ModeChanged)
	assert.False(t, res.ExitGrid)
	assert.Equal(t, ModeNavigation, m.Mode())
	assert.Equal(t, "b", m.Active().RowKey)

	m.HandleKey(KeyEnter, false)
	m.HandleKey(KeyTab, true)
	assert.Equal(t, Cell{RowKey: "a", ColKey: "menu", Focused: true}, *m.Active())
	// sortable header cells come before the first row
	m.HandleKey(KeyTab, true)
	assert.Equal(t, Cell{RowKey: HeaderRowKey, ColKey: "size", Focused: true}, *m.Active())
}

func TestClick(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())
	m.HandleKey(KeyEnter, false)

	res := m.Click("c", "size")
	assert.True(t, res.Moved)
	assert.True(t, res.ModeChanged)
	assert.Equal(t, ModeNavigation, m.Mode())
	assert.True(t, m.HasFocus())
	assert.True(t, m.IsActive("c", "size"))

	res = m.Click("zz", "size")
	assert.False(t, res.Handled)
	assert.True(t, m.IsActive("c", "size"))
}

func treeGrid(expanded bool) *View {
	rows := []RowInfo{
		{Key: "root", Level: 1, HasChildren: true, Expanded: expanded},
	}
	if expanded {
		rows = append(rows, RowInfo{Key: "leaf", Level: 2})
	}
	rows = append(rows, RowInfo{Key: "other", Level: 1})
	cols := []ColumnInfo{
		{Key: "name", Customer: true, Tree: true},
		{Key: "size", Customer: true},
	}
	return NewView(rows, cols, false, false)
}

func TestRowModeStartsWithTreeData(t *testing.T) {
	m := New(treeGrid(false), logr.Discard())
	assert.True(t, m.RowMode())
	assert.Equal(t, 0, m.RowTabIndex("root"))
	assert.Equal(t, -1, m.TabIndex("root", "name"))

	res := m.HandleKey(KeyRight, false)
	require.NotNil(t, res.Toggle)
	assert.Equal(t, ToggleRequest{RowKey: "root", Expand: true}, *res.Toggle)

	m.SetGrid(treeGrid(true))
	assert.True(t, m.RowMode())

	m.HandleKey(KeyDown, false)
	assert.Equal(t, "leaf", m.Active().RowKey)

	res = m.HandleKey(KeyLeft, false)
	assert.True(t, res.Moved)
	assert.Equal(t, "root", m.Active().RowKey)

	res = m.HandleKey(KeyLeft, false)
	require.NotNil(t, res.Toggle)
	assert.False(t, res.Toggle.Expand)

	res = m.HandleKey(KeyRight, false)
	assert.Nil(t, res.Toggle)
	assert.True(t, res.ModeChanged)
	assert.False(t, m.RowMode())
	assert.Equal(t, 0, m.TabIndex("root", "name"))

	// Left at column 0 goes back to row mode
	res = m.HandleKey(KeyLeft, false)
	assert.True(t, res.ModeChanged)
	assert.True(t, m.RowMode())
}

func TestRowModeEndsWithoutTree(t *testing.T) {
	m := New(treeGrid(false), logr.Discard())
	require.True(t, m.RowMode())
	m.SetGrid(flatGrid(2, plainColumns()...))
	assert.False(t, m.RowMode())
}

func TestSyncKeepsValidCell(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())
	m.Click("b", "size")
	m.SetGrid(flatGrid(4, plainColumns()...))
	assert.True(t, m.IsActive("b", "size"))
}

func TestSyncFallsBackToDefault(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())
	m.Click("c", "size")
	m.SetGrid(flatGrid(2, plainColumns()...))
	assert.True(t, m.IsActive("a", "name"))
}

func TestSyncUsesSuccessor(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())
	m.Click("b", "size")
	m.HandleKey(KeyEnter, false)
	m.SetCellToFocusFromPrev()

	// row "b" disappears; focus lands on the first cell of the same index
	m.SetGrid(NewView([]RowInfo{{Key: "a"}, {Key: "x"}, {Key: "c"}}, plainColumns(), false, false))
	assert.True(t, m.IsActive("x", "name"))
	assert.Equal(t, ModeNavigation, m.Mode())
}

func TestSyncSuccessorOnLastRow(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())
	m.Click("c", "name")
	m.SetCellToFocusFromPrev()

	m.SetGrid(flatGrid(2, plainColumns()...))
	assert.True(t, m.IsActive("b", "menu"))
}

func TestSuccessorClearedWhenCellSurvives(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())
	m.Click("a", "name")
	m.SetCellToFocusFromPrev()
	m.SetGrid(flatGrid(3, plainColumns()...))

	m.Click("c", "size")
	m.SetGrid(flatGrid(1, plainColumns()...))
	assert.True(t, m.IsActive("a", "name"))
}

func TestSuccessorNeedsFocus(t *testing.T) {
	m := New(flatGrid(3, plainColumns()...), logr.Discard())
	m.SetCellToFocusFromPrev()
	m.SetGrid(NewView([]RowInfo{{Key: "z"}}, plainColumns(), false, false))
	assert.True(t, m.IsActive("z", "name"))
}

func TestHeaderInvalidWithoutSortableColumns(t *testing.T) {
	cols := []ColumnInfo{{Key: "name", Customer: true}}
	m := New(flatGrid(0, cols...), logr.Discard())
	require.Equal(t, HeaderRowKey, m.Active().RowKey)

	m.SetGrid(flatGrid(2, cols...))
	assert.True(t, m.IsActive("a", "name"))
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, KeyLeft, ParseKey("left"))
	assert.Equal(t, KeySpace, ParseKey(" "))
	assert.Equal(t, KeyEscape, ParseKey("esc"))
	assert.Equal(t, KeyNone, ParseKey("f1"))
	assert.Equal(t, "ACTION", ModeAction.String())
}
