// Package filter evaluates CEL expressions against loaded data: a selector
// picks the record list out of a document and a predicate keeps the rows
// that match.
package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
)

const (
	// RootVar is bound to the whole document in selector expressions.
	RootVar = "_"
	// RowVar is bound to one record in predicate expressions.
	RowVar = "row"
	// IndexVar is bound to the record position in predicate expressions.
	IndexVar = "index"
)

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable(RootVar, cel.DynType),
		cel.Variable(RowVar, cel.DynType),
		cel.Variable(IndexVar, cel.IntType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
}

func compile(expr string) (cel.Program, error) {
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return prg, nil
}

// Predicate is a compiled row filter such as `row.size > 10 && row.name.startsWith("a")`.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile compiles a row predicate.
func Compile(expr string) (*Predicate, error) {
	prg, err := compile(expr)
	if err != nil {
		return nil, err
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string { return p.expr }

// Match evaluates the predicate for one record. A result that is not a bool
// is an error.
func (p *Predicate) Match(record map[string]any, index int) (bool, error) {
	out, _, err := p.prg.Eval(map[string]any{
		RootVar:  record,
		RowVar:   record,
		IndexVar: index,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("filter %q returned %s, want bool", p.expr, out.Type().TypeName())
	}
	return bool(b), nil
}

// Apply returns the records that match, in order. The first evaluation error
// stops the scan.
func (p *Predicate) Apply(records []map[string]any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(records))
	for i, rec := range records {
		ok, err := p.Match(rec, i)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Select evaluates a selector such as `_.items` or
// `_.items.filter(x, x.active)` against a document and converts the result
// back to Go values.
func Select(expr string, doc any) (any, error) {
	prg, err := compile(expr)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(map[string]any{RootVar: doc, RowVar: nil, IndexVar: 0})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(out), nil
}

// ToGo converts a CEL value to plain Go values, recursing into lists and
// maps. Map keys become strings.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}
	return plain(val.Value())
}

func plain(v any) any {
	switch t := v.(type) {
	case ref.Val:
		return ToGo(t)
	case []ref.Val:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToGo(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(plain(k.Value()))] = ToGo(e)
		}
		return out
	}
	return v
}
