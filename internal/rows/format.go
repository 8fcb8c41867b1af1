package rows

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/gridkit/internal/columns"
)

// Format renders a raw value as cell text for a column type.
func Format(v any, t columns.Type) string {
	if v == nil {
		return ""
	}
	switch t {
	case columns.TypeNumber:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case columns.TypeCurrency:
		if f, ok := toFloat(v); ok {
			if f < 0 {
				return fmt.Sprintf("-$%.2f", -f)
			}
			return fmt.Sprintf("$%.2f", f)
		}
	case columns.TypePercent:
		if f, ok := toFloat(v); ok {
			return strconv.FormatFloat(f*100, 'f', -1, 64) + "%"
		}
	case columns.TypeBoolean:
		switch b := v.(type) {
		case bool:
			if b {
				return "✓"
			}
			return ""
		case string:
			if strings.EqualFold(b, "true") {
				return "✓"
			}
			return ""
		}
	case columns.TypeAction:
		return "⋯"
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Compare orders two raw values: nil first, then numbers numerically, then
// everything else by its text, case-insensitively.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}
