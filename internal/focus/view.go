package focus

// RowInfo is what the machine needs to know about a row.
type RowInfo struct {
	Key         string
	Level       int
	HasChildren bool
	Expanded    bool
}

// ColumnInfo is what the machine needs to know about a column.
type ColumnInfo struct {
	Key string
	// Customer columns come from the caller; the default active cell prefers them.
	Customer bool
	// Sortable header cells can hold focus while rows exist.
	Sortable bool
	// Actionable cells contain a control that Tab visits in action mode.
	Actionable bool
	// Tree marks the column that carries expand/collapse controls.
	Tree bool
}

// Grid is the read-only view of rows and columns the machine navigates.
type Grid interface {
	RowCount() int
	Row(index int) RowInfo
	RowIndex(key string) int
	ColumnCount() int
	Column(index int) ColumnInfo
	ColumnIndex(key string) int
	HeaderHidden() bool
	RTL() bool
}

// View is a Grid snapshot built from plain slices.
type View struct {
	Rows        []RowInfo
	Columns     []ColumnInfo
	HideHeader  bool
	RightToLeft bool

	rowIndex map[string]int
	colIndex map[string]int
}

// NewView indexes rows and columns by key. The first occurrence of a
// duplicate key wins.
func NewView(rows []RowInfo, cols []ColumnInfo, hideHeader, rtl bool) *View {
	v := &View{
		Rows:        rows,
		Columns:     cols,
		HideHeader:  hideHeader,
		RightToLeft: rtl,
		rowIndex:    make(map[string]int, len(rows)),
		colIndex:    make(map[string]int, len(cols)),
	}
	for i, r := range rows {
		if _, ok := v.rowIndex[r.Key]; !ok {
			v.rowIndex[r.Key] = i
		}
	}
	for i, c := range cols {
		if _, ok := v.colIndex[c.Key]; !ok {
			v.colIndex[c.Key] = i
		}
	}
	return v
}

func (v *View) RowCount() int { return len(v.Rows) }

func (v *View) Row(index int) RowInfo {
	if index < 0 || index >= len(v.Rows) {
		return RowInfo{}
	}
	return v.Rows[index]
}

func (v *View) RowIndex(key string) int {
	if i, ok := v.rowIndex[key]; ok {
		return i
	}
	return -1
}

func (v *View) ColumnCount() int { return len(v.Columns) }

func (v *View) Column(index int) ColumnInfo {
	if index < 0 || index >= len(v.Columns) {
		return ColumnInfo{}
	}
	return v.Columns[index]
}

func (v *View) ColumnIndex(key string) int {
	if i, ok := v.colIndex[key]; ok {
		return i
	}
	return -1
}

func (v *View) HeaderHidden() bool { return v.HideHeader }

func (v *View) RTL() bool { return v.RightToLeft }
