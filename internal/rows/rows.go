// Package rows turns raw records into the keyed, ordered row set the grid
// lays out. Rows are rebuilt wholesale whenever the records change.
package rows

import (
	"fmt"
	"strconv"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/gridkit/internal/columns"
)

// DefaultChildrenField holds nested records for hierarchical data.
const DefaultChildrenField = "_children"

// Row is one materialized record.
type Row struct {
	Key         string
	Index       int
	Level       int
	HasChildren bool
	Expanded    bool
	Selected    bool
	ParentKey   string
	Record      map[string]any
	Cells       []string
}

// Set is an ordered row collection with key lookup.
type Set struct {
	Rows []*Row

	index map[string]int
	// Duplicates lists source keys that had to be disambiguated.
	Duplicates []string
}

// BuildOptions controls Build.
type BuildOptions struct {
	// KeyField names the record field that holds the unique row key.
	KeyField string
	// ChildrenField names the nested-records field. Defaults to "_children".
	ChildrenField string
	// Expanded lists keys of hierarchical rows whose children are visible.
	Expanded map[string]bool
	// Selected lists keys of selected rows.
	Selected map[string]bool
	// RowNumberOffset is added to the displayed row number.
	RowNumberOffset int

	Log logr.Logger
}

// Build flattens records into a Set, rendering one cell string per column.
// Keys come from KeyField when present, otherwise from the record's position
// ("row-2" at the top level, "row-2-0" for its first child). Duplicate keys are
// logged and the later occurrences get an index suffix so keys stay unique.
func Build(records []map[string]any, cols []*columns.Column, opts BuildOptions) *Set {
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	childrenField := opts.ChildrenField
	if childrenField == "" {
		childrenField = DefaultChildrenField
	}

	s := &Set{index: make(map[string]int, len(records))}
	// Generated keys follow the record's position in the source tree, so
	// expanding or collapsing a row never renames the rows around it.
	keyFor := func(rec map[string]any, path string) string {
		if opts.KeyField != "" {
			if v, ok := rec[opts.KeyField]; ok && truthy(v) {
				return fmt.Sprint(v)
			}
		}
		return "row-" + path
	}

	var walk func(recs []map[string]any, level int, parent, prefix string)
	walk = func(recs []map[string]any, level int, parent, prefix string) {
		for i, rec := range recs {
			path := prefix + strconv.Itoa(i)
			key := keyFor(rec, path)
			if _, dup := s.index[key]; dup {
				log.Info("duplicate row key", "key", key, "keyField", opts.KeyField)
				s.Duplicates = append(s.Duplicates, key)
				key = s.freeKey(key, len(s.Rows))
			}
			children := childRecords(rec[childrenField])
			row := &Row{
				Key:         key,
				Index:       len(s.Rows),
				Level:       level,
				HasChildren: len(children) > 0,
				Expanded:    opts.Expanded[key],
				Selected:    opts.Selected[key],
				ParentKey:   parent,
				Record:      rec,
			}
			s.index[key] = row.Index
			s.Rows = append(s.Rows, row)
			if row.HasChildren && row.Expanded {
				walk(children, level+1, key, path+"-")
			}
		}
	}
	walk(records, 1, "", "")

	for _, row := range s.Rows {
		row.Cells = make([]string, len(cols))
		for i, c := range cols {
			if c.Type == columns.TypeRowNumber {
				row.Cells[i] = strconv.Itoa(row.Index + 1 + opts.RowNumberOffset)
				continue
			}
			row.Cells[i] = Format(row.Record[c.FieldName], c.Type)
		}
	}
	return s
}

// freeKey appends "~n" to key, counting up from n until the result is unused.
func (s *Set) freeKey(key string, n int) string {
	for {
		candidate := key + "~" + strconv.Itoa(n)
		if _, taken := s.index[candidate]; !taken {
			return candidate
		}
		n++
	}
}

// Len returns the row count.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rows)
}

// At returns the row at index i or nil.
func (s *Set) At(i int) *Row {
	if s == nil || i < 0 || i >= len(s.Rows) {
		return nil
	}
	return s.Rows[i]
}

// IndexOf returns the index of key, or -1.
func (s *Set) IndexOf(key string) int {
	if s == nil {
		return -1
	}
	if i, ok := s.index[key]; ok {
		return i
	}
	return -1
}

// ByKey returns the row with key or nil.
func (s *Set) ByKey(key string) *Row {
	return s.At(s.IndexOf(key))
}

// Keys returns the row keys in order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, len(s.Rows))
	for i, r := range s.Rows {
		keys[i] = r.Key
	}
	return keys
}

// FirstKey returns the key of row 0, or "" when empty.
func (s *Set) FirstKey() string {
	if r := s.At(0); r != nil {
		return r.Key
	}
	return ""
}

// Parent returns the index of the nearest preceding row one level up, or -1.
func (s *Set) Parent(i int) int {
	row := s.At(i)
	if row == nil || row.Level <= 1 {
		return -1
	}
	for j := i - 1; j >= 0; j-- {
		if s.Rows[j].Level == row.Level-1 {
			return j
		}
	}
	return -1
}

func childRecords(v any) []map[string]any {
	switch c := v.(type) {
	case []map[string]any:
		return c
	case []any:
		out := make([]map[string]any, 0, len(c))
		for _, item := range c {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	}
	return true
}
