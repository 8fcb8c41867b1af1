// Package columns normalizes caller-supplied column definitions into the
// column records the width negotiator, focus machine and renderers share.
package columns

import (
	"fmt"
	"strconv"

	"github.com/go-logr/logr"
)

const (
	// DefaultMinWidth is the fallback minimum column width.
	DefaultMinWidth = 50
	// DefaultMaxWidth is the fallback maximum column width.
	DefaultMaxWidth = 1000
)

// Def is a column definition as supplied by the caller (config file or API).
type Def struct {
	Label        string `yaml:"label" json:"label"`
	FieldName    string `yaml:"fieldName" json:"fieldName"`
	ColumnKey    string `yaml:"columnKey,omitempty" json:"columnKey,omitempty"`
	Type         string `yaml:"type,omitempty" json:"type,omitempty"`
	FixedWidth   int    `yaml:"fixedWidth,omitempty" json:"fixedWidth,omitempty"`
	InitialWidth int    `yaml:"initialWidth,omitempty" json:"initialWidth,omitempty"`
	Sortable     bool   `yaml:"sortable,omitempty" json:"sortable,omitempty"`
	Resizable    *bool  `yaml:"resizable,omitempty" json:"resizable,omitempty"`
	WrapText     bool   `yaml:"wrapText,omitempty" json:"wrapText,omitempty"`
}

// Column is a normalized display column. Width, Style, Offset and IsResized
// are written by the width manager and the resizer.
type Column struct {
	Key       string
	Label     string
	FieldName string
	ColumnKey string
	Type      Type
	Desc      Descriptor

	FixedWidth   int
	InitialWidth int
	IsResized    bool
	Width        int
	MinWidth     int
	MaxWidth     int

	Resizable bool
	Sortable  bool
	WrapText  bool
	Internal  bool

	// Style is the host style string for the current width ("width:120px").
	Style string
	// Offset is the distance from the table start, maintained for RTL layouts.
	Offset int
}

// DefinedWidth returns the fixed width, the resized width, or the initial
// width, in that priority order. Zero means the column is flexible.
func (c *Column) DefinedWidth() int {
	if c.FixedWidth > 0 {
		return c.FixedWidth
	}
	if c.IsResized && c.Width > 0 {
		return c.Width
	}
	return c.InitialWidth
}

// IsFlexible reports whether the column shares the remaining table width.
func (c *Column) IsFlexible() bool {
	return c.DefinedWidth() == 0
}

// IsCustomer reports whether the column came from the caller.
func (c *Column) IsCustomer() bool {
	return !c.Internal
}

// Key builds the stable column key: "<columnKey|fieldName|index>-<type>-<index>".
func Key(c *Column, index int) string {
	prefix := c.ColumnKey
	if prefix == "" {
		prefix = c.FieldName
	}
	if prefix == "" {
		prefix = strconv.Itoa(index)
	}
	return fmt.Sprintf("%s-%s-%d", prefix, c.Type, index)
}

// RowNumberMetrics sizes the internal row number column.
type RowNumberMetrics struct {
	CharWidth        int
	Padding          int
	TooltipAllowance int
	MinWidth         int
}

// DefaultRowNumberMetrics mirrors a proportional-font host.
func DefaultRowNumberMetrics() RowNumberMetrics {
	return RowNumberMetrics{CharWidth: 10, Padding: 12, TooltipAllowance: 20, MinWidth: 52}
}

// RowNumberWidth is the width needed to show the largest row number.
func RowNumberWidth(m RowNumberMetrics, rowCount, offset int) int {
	chars := len(strconv.Itoa(rowCount + offset))
	w := m.CharWidth*chars + m.Padding + m.TooltipAllowance
	if w < m.MinWidth {
		return m.MinWidth
	}
	return w
}

// Options controls Normalize.
type Options struct {
	MinWidth int
	MaxWidth int

	ShowRowNumbers  bool
	RowNumber       RowNumberMetrics
	RowCount        int
	RowNumberOffset int

	Log logr.Logger
}

// Normalize resolves types, bounds and keys for defs. A row number column is
// prepended when requested. Unknown types degrade to text with a warning.
func Normalize(defs []Def, opts Options) []*Column {
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	minW, maxW := Bounds(opts.MinWidth, opts.MaxWidth)

	cols := make([]*Column, 0, len(defs)+1)
	if opts.ShowRowNumbers {
		m := opts.RowNumber
		if m == (RowNumberMetrics{}) {
			m = DefaultRowNumberMetrics()
		}
		cols = append(cols, &Column{
			Label:        "#",
			Type:         TypeRowNumber,
			Desc:         Describe(TypeRowNumber),
			InitialWidth: RowNumberWidth(m, opts.RowCount, opts.RowNumberOffset),
			MinWidth:     m.MinWidth,
			MaxWidth:     DefaultMaxWidth,
			Internal:     true,
		})
	}

	for _, d := range defs {
		t, ok := ParseType(d.Type)
		if !ok {
			log.Info("unknown column type, rendering as text", "type", d.Type, "field", d.FieldName)
		}
		resizable := true
		if d.Resizable != nil {
			resizable = *d.Resizable
		}
		c := &Column{
			Label:        d.Label,
			FieldName:    d.FieldName,
			ColumnKey:    d.ColumnKey,
			Type:         t,
			Desc:         Describe(t),
			FixedWidth:   nonNegative(d.FixedWidth),
			InitialWidth: nonNegative(d.InitialWidth),
			Resizable:    resizable && d.FixedWidth <= 0,
			Sortable:     d.Sortable,
			WrapText:     d.WrapText,
		}
		if c.Label == "" {
			c.Label = c.FieldName
		}
		cols = append(cols, c)
	}

	UpdateBounds(cols, minW, maxW)
	for i, c := range cols {
		c.Key = Key(c, i)
	}
	warnDuplicateKeys(cols, log)
	return cols
}

// UpdateBounds applies the table-wide bounds to caller columns and clamps
// fixed and initial widths into each column's bounds.
func UpdateBounds(cols []*Column, minWidth, maxWidth int) {
	for _, c := range cols {
		if !c.Internal {
			c.MinWidth = minWidth
			c.MaxWidth = maxWidth
		}
		if c.FixedWidth > 0 {
			c.FixedWidth = Clamp(c.FixedWidth, c.MinWidth, c.MaxWidth)
		}
		if c.InitialWidth > 0 {
			c.InitialWidth = Clamp(c.InitialWidth, c.MinWidth, c.MaxWidth)
		}
	}
}

// Bounds normalizes a min/max pair, substituting defaults for non-positive
// values and lifting max to min when inverted.
func Bounds(minWidth, maxWidth int) (int, int) {
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxWidth < minWidth {
		maxWidth = minWidth
	}
	return minWidth, maxWidth
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IndexOf returns the index of the column with key, or -1.
func IndexOf(cols []*Column, key string) int {
	for i, c := range cols {
		if c.Key == key {
			return i
		}
	}
	return -1
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func warnDuplicateKeys(cols []*Column, log logr.Logger) {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.ColumnKey == "" {
			continue
		}
		if seen[c.ColumnKey] {
			log.Info("duplicate columnKey; focus may resolve to the first match", "columnKey", c.ColumnKey)
		}
		seen[c.ColumnKey] = true
	}
}
