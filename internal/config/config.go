// Package config loads gridkit's YAML configuration. The embedded
// default_config.yaml is authoritative for defaults; a user file is decoded on
// top of it so keys the user leaves out keep their default values.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/go-logr/logr"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/gridkit/internal/columns"
	"github.com/oakwood-commons/gridkit/internal/focus"
	"github.com/oakwood-commons/gridkit/internal/grid"
	"github.com/oakwood-commons/gridkit/internal/virtual"
	"github.com/oakwood-commons/gridkit/internal/widths"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

var (
	embeddedOnce sync.Once
	embedded     Config
	embeddedErr  error
)

// Config is the top-level configuration file.
type Config struct {
	Grid    GridConfig    `yaml:"grid" json:"grid"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Columns []columns.Def `yaml:"columns" json:"columns"`
}

// GridConfig holds the layout kernel settings.
type GridConfig struct {
	RowHeight        float64 `yaml:"row_height" json:"row_height"`
	BufferSize       int     `yaml:"buffer_size" json:"buffer_size"`
	ThresholdRows    int     `yaml:"threshold_rows" json:"threshold_rows"`
	LoadMoreOffset   float64 `yaml:"load_more_offset" json:"load_more_offset"`
	FixedHeight      bool    `yaml:"fixed_height" json:"fixed_height"`
	Virtualization   string  `yaml:"virtualization" json:"virtualization"`
	InfiniteLoading  bool    `yaml:"infinite_loading" json:"infinite_loading"`
	PageSize         int     `yaml:"page_size" json:"page_size"`
	WidthMode        string  `yaml:"width_mode" json:"width_mode"`
	MinColumnWidth   int     `yaml:"min_column_width" json:"min_column_width"`
	MaxColumnWidth   int     `yaml:"max_column_width" json:"max_column_width"`
	ResizeStep       int     `yaml:"resize_step" json:"resize_step"`
	WrapTextMaxLines int     `yaml:"wrap_text_max_lines" json:"wrap_text_max_lines"`
	HideHeader       bool    `yaml:"hide_header" json:"hide_header"`
	RTL              bool    `yaml:"rtl" json:"rtl"`
	KeyField         string  `yaml:"key_field" json:"key_field"`
	ShowRowNumbers   bool    `yaml:"show_row_numbers" json:"show_row_numbers"`
	RowNumberOffset  int     `yaml:"row_number_offset" json:"row_number_offset"`
}

// UIConfig holds terminal host settings.
type UIConfig struct {
	Theme         string                 `yaml:"theme" json:"theme"`
	KeyMode       string                 `yaml:"key_mode" json:"key_mode"`
	ScrollMargins MarginsConfig          `yaml:"scroll_margins" json:"scroll_margins"`
	Themes        map[string]ThemeConfig `yaml:"themes" json:"themes"`
}

// MarginsConfig mirrors focus.ScrollMargins in host units.
type MarginsConfig struct {
	Top    float64 `yaml:"top" json:"top"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Step   float64 `yaml:"step" json:"step"`
}

// ColorValue is a color given either as an ANSI 256 index or a hex string.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: s}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is one named color theme.
type ThemeConfig struct {
	Text     ColorValue `yaml:"text" json:"text"`
	Header   ColorValue `yaml:"header" json:"header"`
	Border   ColorValue `yaml:"border" json:"border"`
	Focus    ColorValue `yaml:"focus" json:"focus"`
	Selected ColorValue `yaml:"selected" json:"selected"`
	Status   ColorValue `yaml:"status" json:"status"`
}

// DefaultYAML returns a copy of the embedded default configuration.
func DefaultYAML() []byte {
	return bytes.Clone(defaultConfigYAML)
}

// Default returns the parsed embedded configuration.
func Default() (Config, error) {
	embeddedOnce.Do(func() {
		embeddedErr = yaml.Unmarshal(defaultConfigYAML, &embedded)
		if embeddedErr == nil && (embedded.UI.Theme == "" || len(embedded.UI.Themes) == 0) {
			embeddedErr = fmt.Errorf("default config is missing required theme defaults")
		}
	})
	if embeddedErr != nil {
		return Config{}, fmt.Errorf("decode default config: %w", embeddedErr)
	}
	return embedded.clone(), nil
}

// Load returns the defaults merged with the file at path. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return Merge(cfg, data)
}

// Merge decodes data on top of base. Maps gain or replace keys; lists are
// replaced as a whole.
func Merge(base Config, data []byte) (Config, error) {
	cfg := base.clone()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c Config) clone() Config {
	out := c
	out.Columns = append([]columns.Def(nil), c.Columns...)
	out.UI.Themes = make(map[string]ThemeConfig, len(c.UI.Themes))
	for k, v := range c.UI.Themes {
		out.UI.Themes[k] = v
	}
	return out
}

// Normalize replaces invalid values with working ones and returns one warning
// per replacement.
func (c Config) Normalize() (Config, []string) {
	var warnings []string

	win, w := c.windowConfig().Normalize()
	warnings = append(warnings, w...)
	c.Grid.RowHeight = win.RowHeight
	c.Grid.BufferSize = win.BufferSize
	c.Grid.ThresholdRows = win.ThresholdRows
	c.Grid.LoadMoreOffset = win.LoadMoreOffset

	if _, ok := virtual.ParseMode(c.Grid.Virtualization); !ok {
		warnings = append(warnings, fmt.Sprintf("unknown virtualization %q, using vertical", c.Grid.Virtualization))
		c.Grid.Virtualization = virtual.ModeVirtual.String()
	}
	if _, err := widths.ParseMode(c.Grid.WidthMode); err != nil {
		warnings = append(warnings, err.Error()+", using fixed")
		c.Grid.WidthMode = string(widths.ModeFixed)
	}
	lo, hi := columns.Bounds(c.Grid.MinColumnWidth, c.Grid.MaxColumnWidth)
	if lo != c.Grid.MinColumnWidth || hi != c.Grid.MaxColumnWidth {
		warnings = append(warnings, fmt.Sprintf("column width bounds %d..%d adjusted to %d..%d", c.Grid.MinColumnWidth, c.Grid.MaxColumnWidth, lo, hi))
		c.Grid.MinColumnWidth, c.Grid.MaxColumnWidth = lo, hi
	}
	if c.Grid.ResizeStep <= 0 {
		warnings = append(warnings, "resize step must be positive, using default")
		c.Grid.ResizeStep = widths.DefaultResizeStep
	}
	if c.Grid.WrapTextMaxLines <= 0 {
		warnings = append(warnings, "wrap text max lines must be positive, using default")
		c.Grid.WrapTextMaxLines = widths.DefaultWrapTextMaxLines
	}
	if c.Grid.PageSize < 0 {
		warnings = append(warnings, "negative page size, loading everything at once")
		c.Grid.PageSize = 0
	}
	if c.Grid.RowNumberOffset < 0 {
		warnings = append(warnings, "negative row number offset, using 0")
		c.Grid.RowNumberOffset = 0
	}
	if m := c.UI.ScrollMargins; m.Top < 0 || m.Bottom < 0 || m.Step < 0 {
		warnings = append(warnings, "negative scroll margins, using 0")
		c.UI.ScrollMargins = MarginsConfig{Top: max(m.Top, 0), Bottom: max(m.Bottom, 0), Step: max(m.Step, 0)}
	}
	if _, ok := c.UI.Themes[c.UI.Theme]; !ok {
		fallback := "dark"
		if _, ok := c.UI.Themes[fallback]; !ok {
			for name := range c.UI.Themes {
				fallback = name
				break
			}
		}
		warnings = append(warnings, fmt.Sprintf("unknown theme %q, using %s", c.UI.Theme, fallback))
		c.UI.Theme = fallback
	}
	for i, def := range c.Columns {
		if _, ok := columns.ParseType(def.Type); !ok {
			warnings = append(warnings, fmt.Sprintf("column %d: unknown type %q, using text", i, def.Type))
			c.Columns[i].Type = ""
		}
	}
	return c, warnings
}

func (c Config) windowConfig() virtual.Config {
	mode, _ := virtual.ParseMode(c.Grid.Virtualization)
	return virtual.Config{
		RowHeight:       c.Grid.RowHeight,
		BufferSize:      c.Grid.BufferSize,
		FixedHeight:     c.Grid.FixedHeight,
		Mode:            mode,
		ThresholdRows:   c.Grid.ThresholdRows,
		LoadMoreOffset:  c.Grid.LoadMoreOffset,
		InfiniteLoading: c.Grid.InfiniteLoading,
	}
}

// GridOptions maps the configuration onto grid options. Call Normalize first;
// invalid values here fall back silently.
func (c Config) GridOptions(log logr.Logger) grid.Options {
	mode, _ := widths.ParseMode(c.Grid.WidthMode)
	opts := grid.DefaultOptions()
	opts.Window = c.windowConfig()
	opts.WidthMode = mode
	opts.MinColumnWidth = c.Grid.MinColumnWidth
	opts.MaxColumnWidth = c.Grid.MaxColumnWidth
	opts.ResizeStep = c.Grid.ResizeStep
	opts.WrapTextMaxLines = c.Grid.WrapTextMaxLines
	opts.HideHeader = c.Grid.HideHeader
	opts.RTL = c.Grid.RTL
	opts.KeyField = c.Grid.KeyField
	opts.ShowRowNumbers = c.Grid.ShowRowNumbers
	opts.RowNumberOffset = c.Grid.RowNumberOffset
	opts.Margins = focus.ScrollMargins{
		Top:    c.UI.ScrollMargins.Top,
		Bottom: c.UI.ScrollMargins.Bottom,
		Step:   c.UI.ScrollMargins.Step,
	}
	opts.Log = log
	return opts
}

// ActiveTheme returns the selected theme.
func (c Config) ActiveTheme() ThemeConfig {
	return c.UI.Themes[c.UI.Theme]
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
