package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/focus"
	"github.com/oakwood-commons/gridkit/internal/grid"
	"github.com/oakwood-commons/gridkit/internal/widths"
)

var testNames = []string{"alpha", "bravo", "charlie", "delta", "echo", "fox"}

// testRecords returns n records with a name and a numeric size.
func testRecords(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		name := testNames[i%len(testNames)]
		if i >= len(testNames) {
			name = fmt.Sprintf("%s%d", name, i)
		}
		out[i] = map[string]any{"name": name, "size": i + 1}
	}
	return out
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg, _ = cfg.Normalize()
	return cfg
}

func newTestModel(t *testing.T, records []map[string]any, width, height int) *Model {
	t.Helper()
	return New(Options{
		Config:  testConfig(t),
		Records: records,
		Width:   width,
		Height:  height,
		NoColor: true,
	})
}

func press(m *Model, keys ...string) {
	ApplyStartupKeys(m, keys)
}

func activeRow(t *testing.T, m *Model) int {
	t.Helper()
	row, _, ok := m.Grid().Focus().Indexes()
	if !ok {
		t.Fatal("expected an active cell")
	}
	return row
}

func TestInferColumns(t *testing.T) {
	records := []map[string]any{
		{"name": "a", "size": 1, "ok": true, "_children": []any{map[string]any{"name": "b"}}},
	}
	defs := InferColumns(records)
	if len(defs) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(defs))
	}
	want := map[string]string{"name": "", "ok": "boolean", "size": "number"}
	for i, d := range defs {
		if !d.Sortable {
			t.Errorf("column %q should be sortable", d.FieldName)
		}
		if i == 0 {
			if d.Type != "tree" {
				t.Errorf("first column type = %q, want tree", d.Type)
			}
			continue
		}
		if d.Type != want[d.FieldName] {
			t.Errorf("column %q type = %q, want %q", d.FieldName, d.Type, want[d.FieldName])
		}
	}
}

func TestNewModelDefaults(t *testing.T) {
	m := New(Options{Config: testConfig(t), Records: testRecords(3)})
	if m.width != defaultWidth || m.height != defaultHeight {
		t.Fatalf("expected %dx%d, got %dx%d", defaultWidth, defaultHeight, m.width, m.height)
	}
	if m.Grid().Rows().Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", m.Grid().Rows().Len())
	}
	l := m.Layout()
	if len(l.Widths) != 2 {
		t.Fatalf("expected widths for 2 columns, got %v", l.Widths)
	}
	if l.Focus == nil || l.Focus.RowKey == focus.HeaderRowKey {
		t.Fatalf("expected focus on the first data row, got %+v", l.Focus)
	}
	if got := activeRow(t, m); got != 0 {
		t.Fatalf("expected row 0 active, got %d", got)
	}
}

func TestConfiguredColumnsWin(t *testing.T) {
	cfg := testConfig(t)
	cfg.Columns = []columns.Def{{Label: "Size", FieldName: "size", Type: "number"}}
	m := New(Options{Config: cfg, Records: testRecords(2), Width: 40, Height: 10})
	cols := m.Grid().Columns()
	if len(cols) != 1 || cols[0].Label != "Size" {
		t.Fatalf("expected the configured column, got %+v", cols)
	}

	m = New(Options{
		Config:  cfg,
		Records: testRecords(2),
		Columns: []columns.Def{{FieldName: "name"}, {FieldName: "size"}},
	})
	if got := len(m.Grid().Columns()); got != 2 {
		t.Fatalf("expected explicit columns to override config, got %d", got)
	}
}

func TestNavigationKeys(t *testing.T) {
	m := newTestModel(t, testRecords(20), 60, 12)

	press(m, "jj")
	if got := activeRow(t, m); got != 2 {
		t.Fatalf("after jj: row %d, want 2", got)
	}
	press(m, "k")
	if got := activeRow(t, m); got != 1 {
		t.Fatalf("after k: row %d, want 1", got)
	}
	press(m, "G")
	if got := activeRow(t, m); got != 19 {
		t.Fatalf("after G: row %d, want 19", got)
	}
	press(m, "gg")
	if got := activeRow(t, m); got != 0 {
		t.Fatalf("after gg: row %d, want 0", got)
	}
	press(m, "k")
	if got := activeRow(t, m); got != -1 {
		t.Fatalf("expected k on the first row to reach the header, got %d", got)
	}
}

func TestFocusStaysVisibleWhileScrolling(t *testing.T) {
	m := newTestModel(t, testRecords(50), 60, 12)
	press(m, "G")

	l := m.Layout()
	row := activeRow(t, m)
	if !l.Span.Contains(row) {
		t.Fatalf("active row %d outside span %+v", row, l.Span)
	}
	if l.ScrollTop <= 0 {
		t.Fatalf("expected the viewport to scroll, scrollTop=%v", l.ScrollTop)
	}
	top := m.Grid().Window().Index().Offset(row)
	if top < l.ScrollTop || top >= l.ScrollTop+m.host.ViewportHeight() {
		t.Fatalf("row offset %v not within viewport [%v, %v)", top, l.ScrollTop, l.ScrollTop+m.host.ViewportHeight())
	}
}

func TestPageDown(t *testing.T) {
	m := newTestModel(t, testRecords(50), 60, 12)
	press(m, "<PageDown>")
	if got := activeRow(t, m); got <= 1 {
		t.Fatalf("expected page down to move several rows, got %d", got)
	}
}

func TestEnterTogglesActionMode(t *testing.T) {
	m := newTestModel(t, testRecords(5), 60, 12)
	press(m, "<CR>")
	if m.Layout().Mode != focus.ModeAction {
		t.Fatalf("expected action mode, got %s", m.Layout().Mode)
	}
	press(m, "<Esc>")
	if m.Layout().Mode != focus.ModeNavigation {
		t.Fatalf("expected navigation mode after esc, got %s", m.Layout().Mode)
	}
}

func TestEnterOnHeaderSorts(t *testing.T) {
	m := newTestModel(t, testRecords(5), 60, 12)
	press(m, "k<CR>")

	key, dir := m.Grid().SortedBy()
	if key != m.Grid().Columns()[0].Key || dir != grid.SortAsc {
		t.Fatalf("expected ascending sort on the first column, got %q %q", key, dir)
	}
	press(m, "<CR>")
	if _, dir := m.Grid().SortedBy(); dir != grid.SortDesc {
		t.Fatalf("expected the second enter to flip the direction, got %q", dir)
	}
	if got := m.Grid().Rows().At(0).Cells[0]; got != "echo" {
		t.Fatalf("expected echo first when sorted descending, got %q", got)
	}
}

func TestSortUnsortableColumn(t *testing.T) {
	cfg := testConfig(t)
	cfg.Columns = []columns.Def{{FieldName: "name"}, {FieldName: "size", Sortable: true}}
	m := New(Options{Config: cfg, Records: testRecords(3), Width: 60, Height: 12})
	press(m, "s")
	if m.status != "column is not sortable" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestResizeKeys(t *testing.T) {
	m := newTestModel(t, testRecords(5), 60, 12)
	before := m.Grid().Columns()[0].Width

	press(m, "<gt>")
	widened := m.Grid().Columns()[0].Width
	if widened <= before {
		t.Fatalf("expected > to widen column 0: before %d, after %d", before, widened)
	}
	if !m.Grid().Columns()[0].IsResized {
		t.Fatal("expected the column to be marked resized")
	}

	press(m, "<lt>")
	if got := m.Grid().Columns()[0].Width; got >= widened {
		t.Fatalf("expected < to narrow the column: %d -> %d", widened, got)
	}

	press(m, "=")
	if m.Grid().Columns()[0].IsResized {
		t.Fatal("expected = to reset manual widths")
	}
}

func TestWidthModeToggle(t *testing.T) {
	m := newTestModel(t, testRecords(5), 60, 12)
	if m.Grid().WidthMode() != widths.ModeFixed {
		t.Fatalf("expected fixed widths by default, got %s", m.Grid().WidthMode())
	}
	press(m, "w")
	if m.Grid().WidthMode() != widths.ModeAuto {
		t.Fatalf("expected auto widths, got %s", m.Grid().WidthMode())
	}
	press(m, "w")
	if m.Grid().WidthMode() != widths.ModeFixed {
		t.Fatalf("expected fixed widths again, got %s", m.Grid().WidthMode())
	}
}

func TestSelectAndRowNumbers(t *testing.T) {
	m := newTestModel(t, testRecords(5), 60, 12)
	press(m, " ")
	if !m.Grid().Rows().At(0).Selected {
		t.Fatal("expected space to select the row")
	}

	press(m, "#")
	cols := m.Grid().Columns()
	if len(cols) != 3 || cols[0].Type != columns.TypeRowNumber {
		t.Fatalf("expected a leading row number column, got %d columns", len(cols))
	}
}

func TestFilterOption(t *testing.T) {
	m := New(Options{
		Config:  testConfig(t),
		Records: testRecords(6),
		Filter:  "row.size > 4",
		Width:   60,
		Height:  12,
	})
	if got := m.Grid().Rows().Len(); got != 2 {
		t.Fatalf("expected 2 matching rows, got %d", got)
	}
	if m.filterExpr != "row.size > 4" {
		t.Fatalf("unexpected filter %q", m.filterExpr)
	}
}

func TestFilterInvalidExpression(t *testing.T) {
	m := New(Options{Config: testConfig(t), Records: testRecords(3), Filter: "row.size >"})
	if m.errMsg == "" {
		t.Fatal("expected an error message for a bad filter")
	}
}

func TestInteractiveFilter(t *testing.T) {
	m := newTestModel(t, testRecords(6), 60, 12)
	press(m, "/")
	if !m.filtering {
		t.Fatal("expected / to open the filter prompt")
	}
	press(m, `\row.size < 3`, "<CR>")
	if m.filtering {
		t.Fatal("expected enter to close the filter prompt")
	}
	if got := m.Grid().Rows().Len(); got != 2 {
		t.Fatalf("expected 2 rows after filtering, got %d", got)
	}

	press(m, "/", "<Esc>")
	if m.filtering {
		t.Fatal("expected esc to cancel the prompt")
	}
	if got := m.Grid().Rows().Len(); got != 2 {
		t.Fatalf("expected esc to keep the filter, got %d rows", got)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, testRecords(3), 100, 30)
	chrome := m.chromeHeight()
	if strings.Contains(m.Render(), "reset widths") {
		t.Fatal("expected full help hidden by default")
	}

	press(m, "?")
	if !m.helpVisible {
		t.Fatal("expected ? to show help")
	}
	if !strings.Contains(m.Render(), "reset widths") {
		t.Fatal("expected full help in the render")
	}
	if m.chromeHeight() <= chrome {
		t.Fatalf("expected full help to take more lines than %d", chrome)
	}

	press(m, "j")
	if got := activeRow(t, m); got != 0 {
		t.Fatalf("expected keys to be ignored while help is shown, row %d", got)
	}
	press(m, "<Esc>")
	if m.helpVisible {
		t.Fatal("expected esc to close help")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(t, testRecords(1), 40, 10)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, testRecords(5), 60, 12)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	if m.width != 100 || m.height != 20 {
		t.Fatalf("expected 100x20, got %dx%d", m.width, m.height)
	}
	if got := m.host.AvailableWidth(); got != 99 {
		t.Fatalf("expected available width 99, got %d", got)
	}
}

func TestMouseClickActivatesCell(t *testing.T) {
	m := newTestModel(t, testRecords(5), 60, 12)
	m.Update(tea.MouseClickMsg{X: 1, Y: 3, Button: tea.MouseLeft})
	if got := activeRow(t, m); got != 2 {
		t.Fatalf("expected click on line 3 to activate row 2, got %d", got)
	}

	x := m.Grid().Columns()[0].Width + 2
	m.Update(tea.MouseClickMsg{X: x, Y: 0, Button: tea.MouseLeft})
	row, col, _ := m.Grid().Focus().Indexes()
	if row != -1 || col != 1 {
		t.Fatalf("expected header cell of column 1, got row %d col %d", row, col)
	}
}

func TestMouseWheelScrolls(t *testing.T) {
	m := newTestModel(t, testRecords(50), 60, 12)
	m.Update(tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	if got := m.Layout().ScrollTop; got != 3 {
		t.Fatalf("expected scrollTop 3, got %v", got)
	}
	m.Update(tea.MouseWheelMsg{Button: tea.MouseWheelUp})
	if got := m.Layout().ScrollTop; got != 0 {
		t.Fatalf("expected scrollTop 0, got %v", got)
	}
}

func TestInfiniteLoadingPages(t *testing.T) {
	cfg := testConfig(t)
	cfg.Grid.InfiniteLoading = true
	cfg.Grid.PageSize = 5
	m := New(Options{Config: cfg, Records: testRecords(12), Width: 60, Height: 12})
	if got := m.Grid().Rows().Len(); got != 5 {
		t.Fatalf("expected the first page of 5 rows, got %d", got)
	}

	m.Update(loadMoreMsg{records: m.pager.Next()})
	if got := m.Grid().Rows().Len(); got != 10 {
		t.Fatalf("expected 10 rows after one load, got %d", got)
	}
}

func TestLayoutSettled(t *testing.T) {
	a := grid.Layout{Widths: []int{10, 20}, ScrollTop: 2}
	b := a
	b.Widths = []int{10, 20}
	if !layoutSettled(a, b) {
		t.Fatal("expected equal layouts to be settled")
	}
	b.Widths = []int{10, 21}
	if layoutSettled(a, b) {
		t.Fatal("expected width change to be unsettled")
	}
}

func TestFilterSuggestions(t *testing.T) {
	got := filterSuggestions([]columns.Def{
		{FieldName: "name"},
		{FieldName: "bad-key"},
		{Label: "computed"},
		{FieldName: "_id2"},
	})
	want := []string{"row.name", `row["bad-key"]`, "row._id2"}
	if len(got) != len(want) {
		t.Fatalf("filterSuggestions() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, got[i], want[i])
		}
	}
}
