package ui

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the interactive program. A zero width or height is detected
// from the terminal, falling back to 80x24. Extra ProgramOptions (e.g.
// custom IO) are passed to tea.NewProgram.
func Run(opts Options, startKeys []string, progOpts ...tea.ProgramOption) (*Model, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if opts.Width <= 0 {
				opts.Width = w
			}
			if opts.Height <= 0 {
				opts.Height = h
			}
		}
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}

	m := New(opts)
	ApplyStartupKeys(m, startKeys)
	progOpts = append(progOpts, tea.WithWindowSize(opts.Width, opts.Height))

	prog := tea.NewProgram(m, progOpts...)
	final, err := prog.Run()
	if err != nil {
		return m, fmt.Errorf("run grid: %w", err)
	}
	if fm, ok := final.(*Model); ok && fm != nil {
		return fm, nil
	}
	return m, nil
}
