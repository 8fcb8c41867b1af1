// Package cmd is the gridkit command line: it loads records, applies the
// configured grid settings and either runs the interactive grid, prints a
// snapshot of one frame, or reports the computed layout.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/gridkit/internal/config"
	"github.com/oakwood-commons/gridkit/internal/filter"
	"github.com/oakwood-commons/gridkit/internal/limiter"
	"github.com/oakwood-commons/gridkit/internal/report"
	"github.com/oakwood-commons/gridkit/internal/ui"
	"github.com/oakwood-commons/gridkit/internal/widths"
	"github.com/oakwood-commons/gridkit/pkg/logger"
	"github.com/oakwood-commons/gridkit/pkg/settings"
)

// rootFlags holds the values bound to the root command's flags.
type rootFlags struct {
	configFile  string
	inputFormat string
	selectExpr  string
	filterExpr  string
	limit       int
	offset      int
	tail        int
	widthMode   string
	keyMode     string
	theme       string
	noColor     bool
	snapshot    bool
	width       int
	height      int
	startKeys   []string
	reportFmt   string
	rtl         bool
	rowNumbers  bool
	pageSize    int
	verbosity   int
}

// NewRootCmd builds the gridkit command tree.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Browse tabular data in a virtualized terminal grid",
		Long:  `gridkit renders records from JSON, NDJSON, YAML, TOML or CSV in a
virtualized grid: only the rows near the viewport are rendered, column
widths are negotiated against the terminal width, and a single active cell
carries keyboard focus.`,
		Example:       "\n  gridkit rows.json\n  cat rows.csv | gridkit --filter 'row.size > 10'\n  gridkit doc.yaml --select '_.items' --report yaml\n  gridkit rows.json --snapshot --width 100 --height 20 --keys 'jj<gt>'\n",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			lgr := logger.Get(int8(-f.verbosity))
			named := lgr.WithValues("command", cmd.Name())
			cmd.SetContext(logger.WithLogger(contextOf(cmd), &named))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd.Context(), f, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	fl := cmd.Flags()
	cmd.PersistentFlags().StringVar(&f.configFile, "config", "", "path to a YAML config file (default $XDG_CONFIG_HOME/gridkit/config.yaml)")
	cmd.PersistentFlags().IntVarP(&f.verbosity, "verbose", "v", 0, "log verbosity; 1 traces layout passes")
	cmd.PersistentFlags().BoolVar(&f.noColor, "no-color", false, "disable color output")
	fl.StringVarP(&f.inputFormat, "format", "f", "", "input format: auto|json|ndjson|yaml|toml|csv")
	fl.StringVarP(&f.selectExpr, "select", "e", "", "CEL expression selecting the record list, with '_' as the document root, e.g. '_.items'")
	fl.StringVar(&f.filterExpr, "filter", "", "CEL row predicate, e.g. 'row.size > 10 && row.name.startsWith(\"a\")'")
	fl.IntVar(&f.limit, "limit", 0, "show at most N records")
	fl.IntVar(&f.offset, "offset", 0, "skip the first N records")
	fl.IntVar(&f.tail, "tail", 0, "show the last N records (exclusive with --limit)")
	fl.Var(newEnumFlag(&f.widthMode, "fixed", "auto"), "width-mode", "column width strategy: fixed|auto (default from config)")
	fl.Var(newEnumFlag(&f.keyMode, "vim", "emacs", "function"), "keymap", "keybinding mode: vim|emacs|function (default from config)")
	fl.StringVar(&f.theme, "theme", "", "theme name (default from config)")
	fl.BoolVar(&f.snapshot, "snapshot", false, "render a single frame and exit; honors --width/--height/--keys")
	fl.IntVar(&f.width, "width", 0, "screen width in cells (default: terminal width)")
	fl.IntVar(&f.height, "height", 0, "screen height in lines (default: terminal height)")
	fl.StringArrayVar(&f.startKeys, "keys", nil, "simulate keys on startup, e.g. 'jj', '<Down><CR>', '<gt>'")
	fl.Var(newEnumFlag(&f.reportFmt, "table", "yaml", "yml", "json"), "report", "print the computed layout instead of the grid: table|yaml|json")
	fl.BoolVar(&f.rtl, "rtl", false, "lay columns out right to left")
	fl.BoolVar(&f.rowNumbers, "row-numbers", false, "show the row number column")
	fl.IntVar(&f.pageSize, "page-size", 0, "load records in pages of N as the grid scrolls (0 loads everything)")

	cmd.AddCommand(newVersionCmd(), newConfigCmd(&f.configFile, &f.noColor))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runRoot(ctx context.Context, f *rootFlags, args []string, stdin io.Reader, stdout io.Writer) error {
	lgr := *logger.FromContext(ctx)

	limits := limiter.Config{Limit: f.limit, Offset: f.offset, Tail: f.tail}
	if err := limits.Validate(); err != nil {
		return err
	}
	if f.filterExpr != "" {
		if _, err := filter.Compile(f.filterExpr); err != nil {
			return fmt.Errorf("--filter: %w", err)
		}
	}
	reportFmt := report.FormatTable
	if f.reportFmt != "" {
		var err error
		if reportFmt, err = report.ParseFormat(f.reportFmt); err != nil {
			return err
		}
	}

	run := settings.NewCliParams()
	run.MinLogLevel = int8(-f.verbosity)
	run.NoColor = f.noColor || os.Getenv("NO_COLOR") != ""
	run.Interactive = !f.snapshot && f.reportFmt == ""
	if len(args) > 0 {
		run.Input.Path = args[0]
	}
	run.Input.Format = f.inputFormat
	ctx = settings.IntoContext(ctx, run)

	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	cfg, warnings := cfg.Normalize()
	logger.Warn(lgr, "config", warnings)

	records, err := loadRecords(ctx, stdin, f.selectExpr, limits)
	if err != nil {
		return err
	}
	lgr.V(1).Info("records loaded", "count", len(records), "path", run.Input.Path)

	opts := ui.Options{
		Config:  cfg,
		Records: records,
		Filter:  f.filterExpr,
		Width:   f.width,
		Height:  f.height,
		NoColor: run.NoColor,
		AppName: settings.CliBinaryName,
		Log:     lgr.WithName("ui"),
	}

	if f.reportFmt != "" {
		return writeReport(stdout, opts, f.startKeys, reportFmt, run.NoColor)
	}
	if f.snapshot || !stdoutIsTerminal() {
		w, h := resolveSize(f.width, f.height)
		opts.Width, opts.Height = w, h
		_, err := fmt.Fprintln(stdout, ui.Snapshot(ui.SnapshotConfig{
			Options:   opts,
			StartKeys: f.startKeys,
			StripANSI: run.NoColor,
		}))
		return err
	}

	progOpts, cleanup := programOptions(run.FromStdin())
	defer cleanup()
	_, err = ui.Run(opts, f.startKeys, progOpts...)
	return err
}

// loadConfig merges the user config file and applies flag overrides.
func loadConfig(f *rootFlags) (config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(f.configFile))
	if err != nil {
		return cfg, err
	}
	if f.widthMode != "" {
		if _, err := widths.ParseMode(f.widthMode); err != nil {
			return cfg, err
		}
		cfg.Grid.WidthMode = f.widthMode
	}
	if f.keyMode != "" {
		if !ui.IsValidKeyMode(f.keyMode) {
			return cfg, fmt.Errorf("invalid --keymap %q (expected vim, emacs or function)", f.keyMode)
		}
		cfg.UI.KeyMode = f.keyMode
	}
	if f.theme != "" {
		if _, ok := cfg.UI.Themes[f.theme]; !ok {
			return cfg, fmt.Errorf("unknown theme %q (available: %v)", f.theme, themeNames(cfg))
		}
		cfg.UI.Theme = f.theme
	}
	if f.rtl {
		cfg.Grid.RTL = true
	}
	if f.rowNumbers {
		cfg.Grid.ShowRowNumbers = true
	}
	if f.pageSize > 0 {
		cfg.Grid.PageSize = f.pageSize
		cfg.Grid.InfiniteLoading = true
	}
	return cfg, nil
}

// writeReport lays the grid out once at the resolved size and prints the
// result.
func writeReport(w io.Writer, opts ui.Options, startKeys []string, format report.Format, noColor bool) error {
	opts.Width, opts.Height = resolveSize(opts.Width, opts.Height)
	m := ui.SnapshotModel(ui.SnapshotConfig{Options: opts, StartKeys: startKeys})
	r := report.Build(m.Grid(), m.Layout())
	return report.Write(w, r, report.Options{
		Format: format,
		Color:  !noColor && stdoutIsTerminal(),
		Style:  "monokai",
	})
}
