package widths

import (
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/gridkit/internal/columns"
)

type fakeMeasurer struct {
	available int
	header    []int
	data      []int
	table     int
}

func (f fakeMeasurer) AvailableWidth() int     { return f.available }
func (f fakeMeasurer) HeaderCellWidths() []int { return f.header }
func (f fakeMeasurer) DataCellWidths() []int   { return f.data }
func (f fakeMeasurer) TableWidth() int         { return f.table }

var defaultBounds = Bounds{Min: 50, Max: 1000, WrapTextMaxLines: 3}

func flexColumns(n int) []*columns.Column {
	defs := make([]columns.Def, n)
	for i := range defs {
		defs[i] = columns.Def{FieldName: fmt.Sprintf("c%d", i)}
	}
	return columns.Normalize(defs, columns.Options{MinWidth: 50, MaxWidth: 1000})
}

func TestTotalsMetadata(t *testing.T) {
	cols := columns.Normalize([]columns.Def{
		{FieldName: "a", FixedWidth: 100},
		{FieldName: "b", InitialWidth: 80},
		{FieldName: "c"},
		{FieldName: "d"},
	}, columns.Options{})
	cols[3].IsResized = true
	cols[3].Width = 120

	md := TotalsMetadata(defaultBounds, cols)
	assert.Equal(t, 100, md.TotalFixedWidth)
	assert.Equal(t, 1, md.TotalFixedColumns)
	assert.Equal(t, 200, md.TotalResizedWidth)
	assert.Equal(t, 2, md.TotalResizedColumns)
	assert.Equal(t, 1, md.TotalFlexibleColumns)
}

func TestExpectedTableWidth(t *testing.T) {
	md := Metadata{TotalFixedWidth: 100, TotalFlexibleColumns: 2, MinColumnWidth: 50, MaxColumnWidth: 1000}
	assert.Equal(t, 500, ExpectedTableWidth(500, md))
	assert.Equal(t, 200, ExpectedTableWidth(120, md), "never below the minimum")
	assert.Equal(t, 2100, ExpectedTableWidth(9000, md), "never above what flexible columns absorb")

	none := Metadata{TotalFixedWidth: 100, TotalResizedWidth: 60, MinColumnWidth: 50, MaxColumnWidth: 1000}
	assert.Equal(t, 160, ExpectedTableWidth(2000, none))
	assert.Equal(t, 160, ExpectedTableWidth(10, none))
}

func TestBuildStyle(t *testing.T) {
	assert.Equal(t, "width:120px", BuildStyle(120))
	assert.Equal(t, "", BuildStyle(0))
	assert.Equal(t, "", BuildStyle(-3))
}

func TestFixedStrategyScenario(t *testing.T) {
	cols := columns.Normalize([]columns.Def{
		{FieldName: "a", FixedWidth: 100},
		{FieldName: "b"},
		{FieldName: "c"},
	}, columns.Options{MinWidth: 50, MaxWidth: 1000})

	mgr := NewManager(Options{MinWidth: 50, MaxWidth: 1000})
	state := DefaultState()
	mgr.HandleColumnsChange(cols)
	require.True(t, mgr.AdjustColumnsSize(fakeMeasurer{available: 500}, cols, &state))

	assert.Equal(t, []int{100, 200, 200}, state.ColumnWidths)
	assert.Equal(t, 500, state.TableWidth)
	assert.Equal(t, "width:200px", cols[1].Style)

	require.True(t, mgr.ResizeWithDelta(cols, &state, 1, 50))
	assert.Equal(t, []int{100, 250, 200}, state.ColumnWidths)
	assert.Equal(t, 200, cols[2].Width)
	assert.Equal(t, 550, state.TableWidth)
	assert.True(t, cols[1].IsResized)
}

func TestFixedStrategyRemainderGoesToLeadingColumns(t *testing.T) {
	s := NewFixedStrategy(defaultBounds)
	res := s.AdjustedWidths(fakeMeasurer{available: 400}, flexColumns(3), false)
	assert.Equal(t, []int{134, 133, 133}, res.Widths)
	assert.Equal(t, 400, res.ExpectedTableWidth)
}

func TestFixedStrategyNoFlexibleColumns(t *testing.T) {
	cols := columns.Normalize([]columns.Def{
		{FieldName: "a", FixedWidth: 100},
		{FieldName: "b", InitialWidth: 70},
	}, columns.Options{})
	s := NewFixedStrategy(defaultBounds)

	for _, available := range []int{0, 100, 5000} {
		res := s.AdjustedWidths(fakeMeasurer{available: available}, cols, false)
		assert.Equal(t, []int{100, 70}, res.Widths)
		assert.Equal(t, 170, res.ExpectedTableWidth)
	}
}

func TestAutoStrategyRatios(t *testing.T) {
	tests := []struct {
		name string
		meas fakeMeasurer
		want []int
	}{
		{"proportional with deficit", fakeMeasurer{available: 600, data: []int{100, 300}, table: 400}, []int{150, 450}},
		{"near max served first", fakeMeasurer{available: 1000, data: []int{10, 990}, table: 1000}, []int{50, 950}},
		{"both near max", fakeMeasurer{available: 1000, data: []int{10, 10}, table: 20}, []int{500, 500}},
		{"column at min keeps it", fakeMeasurer{available: 300, data: []int{10, 90}, table: 100}, []int{50, 250}},
		{"header cells when no data", fakeMeasurer{available: 300, header: []int{50, 50}, table: 100}, []int{150, 150}},
		{"no measurements fall back to equal share", fakeMeasurer{available: 300}, []int{150, 150}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewAutoStrategy(defaultBounds)
			res := s.AdjustedWidths(tt.meas, flexColumns(2), true)
			assert.Equal(t, tt.want, res.Widths)
			assert.Equal(t, res.ExpectedTableWidth, res.Sum())
		})
	}
}

func TestAutoStrategyWrapTextAndFixed(t *testing.T) {
	cols := columns.Normalize([]columns.Def{
		{FieldName: "a", WrapText: true},
		{FieldName: "b"},
		{FieldName: "c", FixedWidth: 100},
	}, columns.Options{})
	s := NewAutoStrategy(defaultBounds)
	s.AdjustedWidths(fakeMeasurer{available: 800, data: []int{300, 100, 400}, table: 800}, cols, true)

	// wrapped cell counts one third of its width; the fixed column its fixed width
	ratios := s.Ratios()
	require.Len(t, ratios, 3)
	// 300 of measured content less the 100 fixed leaves 200 flexible
	assert.InDelta(t, 50.0, ratios[0], 1e-9)
	assert.InDelta(t, 50.0, ratios[1], 1e-9)
	assert.InDelta(t, 50.0, ratios[2], 1e-9)
}

func TestAutoStrategyReusesRatios(t *testing.T) {
	cols := flexColumns(2)
	s := NewAutoStrategy(defaultBounds)
	first := s.AdjustedWidths(fakeMeasurer{available: 600, data: []int{100, 300}, table: 400}, cols, true)

	// later measurements are ignored without a recompute
	again := s.AdjustedWidths(fakeMeasurer{available: 600, data: []int{300, 100}, table: 400}, cols, false)
	assert.Equal(t, first.Widths, again.Widths)

	flipped := s.AdjustedWidths(fakeMeasurer{available: 600, data: []int{300, 100}, table: 400}, cols, true)
	assert.Equal(t, []int{450, 150}, flipped.Widths)
}

func TestNegotiationInvariants(t *testing.T) {
	layouts := map[string][]columns.Def{
		"all flexible": {{FieldName: "a"}, {FieldName: "b"}, {FieldName: "c"}, {FieldName: "d"}},
		"mixed": {
			{FieldName: "a", FixedWidth: 100}, {FieldName: "b"}, {FieldName: "c", InitialWidth: 220},
			{FieldName: "d", WrapText: true}, {FieldName: "e"},
		},
		"single": {{FieldName: "a"}},
		"wide fixed": {{FieldName: "a", FixedWidth: 900}, {FieldName: "b"}, {FieldName: "c", FixedWidth: 700}},
	}
	measurements := [][]int{nil, {10, 20, 30, 40, 50}, {500, 3, 3, 900, 41}, {1, 1, 1, 1, 1}}
	availables := []int{0, 37, 120, 333, 500, 777, 1999, 5000, 100000}

	for name, defs := range layouts {
		for _, strategy := range []string{"fixed", "auto"} {
			for _, data := range measurements {
				for _, available := range availables {
					cols := columns.Normalize(defs, columns.Options{MinWidth: 50, MaxWidth: 1000})
					cells := data
					if len(cells) > len(cols) {
						cells = cells[:len(cols)]
					}
					meas := fakeMeasurer{available: available, data: cells, table: available}

					var s Strategy = NewFixedStrategy(defaultBounds)
					if strategy == "auto" {
						s = NewAutoStrategy(defaultBounds)
					}
					res := s.AdjustedWidths(meas, cols, true)
					again := s.AdjustedWidths(meas, cols, true)
					label := fmt.Sprintf("%s/%s/%v/%d", name, strategy, data, available)

					require.Equal(t, res, again, label)
					require.Len(t, res.Widths, len(cols), label)
					for i, w := range res.Widths {
						require.GreaterOrEqual(t, w, 50, "%s col %d", label, i)
						require.LessOrEqual(t, w, 1000, "%s col %d", label, i)
					}
					require.Equal(t, res.ExpectedTableWidth, res.Sum(), label)
				}
			}
		}
	}
}

func TestManagerQueueing(t *testing.T) {
	cols := flexColumns(2)
	mgr := NewManager(Options{Mode: ModeFixed})

	mgr.HandleDataChange(0, 10, cols)
	assert.False(t, mgr.ResizeQueued(), "fixed mode ignores data changes")

	mgr.SetMode(ModeAuto, cols)
	assert.True(t, mgr.ResizeQueued())
	assert.True(t, mgr.AutoResizeQueued())

	state := DefaultState()
	mgr.AdjustColumnsSize(fakeMeasurer{available: 600, data: []int{100, 300}, table: 400}, cols, &state)
	assert.False(t, mgr.ResizeQueued())
	assert.False(t, mgr.AutoResizeQueued())
	assert.False(t, mgr.AdjustColumnsSize(fakeMeasurer{available: 10}, cols, &state), "nothing queued")

	mgr.HandleDataChange(10, 10, cols)
	assert.False(t, mgr.ResizeQueued(), "same length is not a data change")
	mgr.HandleDataChange(10, 12, cols)
	assert.True(t, mgr.ResizeQueued())
}

func TestManagerHiddenTableKeepsWidths(t *testing.T) {
	cols := flexColumns(2)
	mgr := NewManager(Options{})
	state := DefaultState()

	mgr.HandleColumnsChange(cols)
	mgr.AdjustColumnsSize(fakeMeasurer{available: 400}, cols, &state)
	require.Equal(t, []int{200, 200}, state.ColumnWidths)

	mgr.HandleColumnsChange(cols)
	mgr.AdjustColumnsSize(fakeMeasurer{available: 0}, cols, &state)
	assert.Equal(t, []int{200, 200}, state.ColumnWidths)
	assert.Equal(t, 400, state.TableWidth)
}

func TestManagerRTLOffsets(t *testing.T) {
	cols := columns.Normalize([]columns.Def{
		{FieldName: "a", FixedWidth: 100}, {FieldName: "b"}, {FieldName: "c"},
	}, columns.Options{})
	mgr := NewManager(Options{RTL: true})
	state := DefaultState()
	mgr.HandleColumnsChange(cols)
	mgr.AdjustColumnsSize(fakeMeasurer{available: 500}, cols, &state)

	assert.Equal(t, []int{0, 100, 300}, []int{cols[0].Offset, cols[1].Offset, cols[2].Offset})

	mgr.Resize(cols, &state, 1, 260)
	assert.Equal(t, []int{0, 100, 360}, []int{cols[0].Offset, cols[1].Offset, cols[2].Offset})
	assert.Equal(t, 560, state.TableWidth)
}

func TestResizeClampsAndGuards(t *testing.T) {
	cols := flexColumns(2)
	mgr := NewManager(Options{})
	state := DefaultState()
	mgr.HandleColumnsChange(cols)
	mgr.AdjustColumnsSize(fakeMeasurer{available: 400}, cols, &state)

	assert.True(t, mgr.Resize(cols, &state, 0, 5000))
	assert.Equal(t, 1000, state.ColumnWidths[0])
	assert.Equal(t, 1200, state.TableWidth)

	assert.False(t, mgr.Resize(cols, &state, 0, 1200), "already at max")
	assert.True(t, mgr.ResizeWithDelta(cols, &state, 1, -1000))
	assert.Equal(t, 50, state.ColumnWidths[1])

	assert.False(t, mgr.Resize(cols, &state, 7, 100))
	assert.False(t, mgr.ResizeWithDelta(cols, &state, -1, 10))

	state.ResizeDisabled = true
	assert.False(t, mgr.Resize(cols, &state, 1, 300))

	ResetWidths(cols, &state)
	assert.False(t, state.HasDefinedWidths())
	assert.False(t, cols[0].IsResized)
}

func TestResizedColumnSurvivesRecompute(t *testing.T) {
	cols := flexColumns(3)
	mgr := NewManager(Options{})
	state := DefaultState()
	mgr.HandleColumnsChange(cols)
	mgr.AdjustColumnsSize(fakeMeasurer{available: 600}, cols, &state)
	mgr.Resize(cols, &state, 0, 300)

	mgr.AdjustAfterContainerResize(fakeMeasurer{available: 700}, cols, &state)
	assert.Equal(t, []int{300, 200, 200}, state.ColumnWidths)
}

func TestRowNumberOffsetChange(t *testing.T) {
	cols := columns.Normalize([]columns.Def{{FieldName: "a"}}, columns.Options{ShowRowNumbers: true, RowCount: 5})
	mgr := NewManager(Options{})
	state := DefaultState()
	metrics := columns.DefaultRowNumberMetrics()

	assert.False(t, mgr.HandleRowNumberOffsetChange(cols, &state, metrics, 5, 0))
	assert.True(t, mgr.HandleRowNumberOffsetChange(cols, &state, metrics, 5, 99999))
	assert.Equal(t, 92, cols[0].InitialWidth)
	assert.False(t, mgr.ResizeQueued(), "no widths computed yet")

	mgr.HandleColumnsChange(cols)
	mgr.AdjustColumnsSize(fakeMeasurer{available: 400}, cols, &state)
	assert.True(t, mgr.HandleRowNumberOffsetChange(cols, &state, metrics, 5, 0))
	assert.True(t, mgr.ResizeQueued())
}

func TestSetBoundsFallsBackToDefaults(t *testing.T) {
	cols := flexColumns(1)
	mgr := NewManager(Options{Log: logr.Discard()})
	state := DefaultState()
	mgr.SetBounds(cols, &state, -5, 0)
	assert.Equal(t, 50, state.MinColumnWidth)
	assert.Equal(t, 1000, state.MaxColumnWidth)

	mgr.SetBounds(cols, &state, 80, 90)
	assert.Equal(t, 80, cols[0].MinWidth)
	assert.Equal(t, 90, cols[0].MaxWidth)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("auto")
	require.NoError(t, err)
	assert.Equal(t, ModeAuto, m)

	_, err = ParseMode("stretchy")
	assert.Error(t, err)
}
