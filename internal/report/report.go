// Package report renders a computed grid layout for non-interactive use: a
// pretty table of the column widths and visible rows, or YAML/JSON for
// scripts.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/grid"
)

// Format selects the report encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

// ParseFormat validates a report format name. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return FormatTable, fmt.Errorf("unknown report format %q (expected table, yaml or json)", s)
}

// Report is a serializable summary of one layout pass.
type Report struct {
	WidthMode  string         `yaml:"width_mode" json:"width_mode"`
	TableWidth int            `yaml:"table_width" json:"table_width"`
	TableStyle string         `yaml:"table_style" json:"table_style"`
	Columns    []ColumnReport `yaml:"columns" json:"columns"`
	Rows       RowsReport     `yaml:"rows" json:"rows"`
	Focus      *FocusReport   `yaml:"focus,omitempty" json:"focus,omitempty"`
	Sort       *SortReport    `yaml:"sort,omitempty" json:"sort,omitempty"`
	LoadMore   bool           `yaml:"load_more" json:"load_more"`

	visible [][]string
}

// ColumnReport describes one negotiated column.
type ColumnReport struct {
	Key     string `yaml:"key" json:"key"`
	Label   string `yaml:"label" json:"label"`
	Type    string `yaml:"type" json:"type"`
	Width   int    `yaml:"width" json:"width"`
	Min     int    `yaml:"min" json:"min"`
	Max     int    `yaml:"max" json:"max"`
	Offset  int    `yaml:"offset" json:"offset"`
	Resized bool   `yaml:"resized,omitempty" json:"resized,omitempty"`
}

// RowsReport describes the row window.
type RowsReport struct {
	Total        int     `yaml:"total" json:"total"`
	First        int     `yaml:"first" json:"first"`
	Last         int     `yaml:"last" json:"last"`
	FirstVisible int     `yaml:"first_visible" json:"first_visible"`
	ScrollTop    float64 `yaml:"scroll_top" json:"scroll_top"`
	TotalHeight  float64 `yaml:"total_height" json:"total_height"`
}

// FocusReport describes the active cell.
type FocusReport struct {
	Row     string `yaml:"row" json:"row"`
	Column  string `yaml:"column" json:"column"`
	Mode    string `yaml:"mode" json:"mode"`
	RowMode bool   `yaml:"row_mode,omitempty" json:"row_mode,omitempty"`
}

// SortReport describes the sorted column.
type SortReport struct {
	Column    string `yaml:"column" json:"column"`
	Direction string `yaml:"direction" json:"direction"`
}

// Build summarizes g after the layout l.
func Build(g *grid.Grid, l grid.Layout) Report {
	r := Report{
		WidthMode:  string(g.WidthMode()),
		TableWidth: l.TableWidth,
		TableStyle: l.TableStyle,
		LoadMore:   l.LoadMore,
		Rows: RowsReport{
			Total:        g.Rows().Len(),
			First:        l.Span.First,
			Last:         l.Span.Last,
			FirstVisible: g.Window().FirstVisible(),
			ScrollTop:    l.ScrollTop,
			TotalHeight:  g.Window().Index().TotalHeight(),
		},
	}
	for _, c := range g.Columns() {
		r.Columns = append(r.Columns, ColumnReport{
			Key:     c.Key,
			Label:   c.Label,
			Type:    c.Type.String(),
			Width:   c.Width,
			Min:     c.MinWidth,
			Max:     c.MaxWidth,
			Offset:  c.Offset,
			Resized: c.IsResized,
		})
	}
	if l.Focus != nil {
		r.Focus = &FocusReport{Row: l.Focus.RowKey, Column: l.Focus.ColKey, Mode: l.Mode.String(), RowMode: l.RowMode}
	}
	if key, dir := g.SortedBy(); key != "" {
		r.Sort = &SortReport{Column: key, Direction: string(dir)}
	}
	for i := l.Span.First; i <= l.Span.Last; i++ {
		if row := g.Rows().At(i); row != nil {
			r.visible = append(r.visible, row.Cells)
		}
	}
	return r
}

// ColumnsTable returns a table of the negotiated column widths.
func (r Report) ColumnsTable() table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "KEY", "LABEL", "TYPE", "WIDTH", "MIN", "MAX", "OFFSET", "RESIZED"})
	for i, c := range r.Columns {
		tw.AppendRow(table.Row{i, c.Key, c.Label, c.Type, c.Width, c.Min, c.Max, c.Offset, formatBool(c.Resized)})
	}
	tw.AppendFooter(table.Row{"", "", "", "TOTAL", r.TableWidth, "", "", "", ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignCenter},
	})
	tw.SetStyle(table.StyleLight)
	return tw
}

// RowsTable returns the rows inside the rendered span, each column capped at
// its negotiated width.
func (r Report) RowsTable() table.Writer {
	tw := table.NewWriter()
	header := make(table.Row, len(r.Columns))
	configs := make([]table.ColumnConfig, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c.Label
		configs[i] = table.ColumnConfig{
			Number:   i + 1,
			WidthMax: max(c.Width, 1),
			Align:    alignFor(c.Type),
		}
	}
	tw.AppendHeader(header)
	for _, cells := range r.visible {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		tw.AppendRow(row)
	}
	tw.SetColumnConfigs(configs)
	tw.SetStyle(table.StyleLight)
	return tw
}

func alignFor(typeName string) text.Align {
	t, _ := columns.ParseType(typeName)
	switch columns.Describe(t).Align {
	case columns.AlignRight:
		return text.AlignRight
	case columns.AlignCenter:
		return text.AlignCenter
	}
	return text.AlignLeft
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// Marshal encodes the report as YAML or JSON.
func (r Report) Marshal(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		out, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("cannot marshal report as %q", f)
}

// Options controls Write.
type Options struct {
	Format Format
	// Color enables syntax highlighting of YAML and JSON output.
	Color bool
	// Style names the chroma style used when Color is set.
	Style string
}

// Write renders r to w.
func Write(w io.Writer, r Report, opts Options) error {
	if opts.Format == "" || opts.Format == FormatTable {
		_, err := fmt.Fprintf(w, "%s\n\n%s\n", r.ColumnsTable().Render(), r.RowsTable().Render())
		return err
	}
	out, err := r.Marshal(opts.Format)
	if err != nil {
		return err
	}
	if opts.Color {
		out, err = Highlight(out, string(opts.Format), opts.Style)
		if err != nil {
			return err
		}
	}
	_, err = w.Write(out)
	return err
}

// Highlight colors src with the chroma lexer for language using the
// terminal256 formatter.
func Highlight(src []byte, language, styleName string) ([]byte, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	it, err := lexer.Tokenise(nil, string(src))
	if err != nil {
		return nil, fmt.Errorf("highlight %s: %w", language, err)
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, it); err != nil {
		return nil, fmt.Errorf("highlight %s: %w", language, err)
	}
	return buf.Bytes(), nil
}
