package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SnapshotConfig configures a one-shot render.
type SnapshotConfig struct {
	Options
	// StartKeys are applied before rendering (see ApplyStartupKeys).
	StartKeys []string
	// HideHelp drops the key help line.
	HideHelp bool
	// StripANSI removes all escape sequences from the result.
	StripANSI bool
}

// Snapshot builds a model, applies the startup keys and renders one frame.
func Snapshot(cfg SnapshotConfig) string {
	m := New(cfg.Options)
	ApplyStartupKeys(m, cfg.StartKeys)
	view := m.Render()
	if cfg.HideHelp {
		if i := strings.LastIndexByte(view, '\n'); i >= 0 {
			view = view[:i]
		}
	}
	if cfg.StripANSI {
		view = ansi.Strip(view)
	}
	return padSnapshotHeight(view, m.height, m.width)
}

// SnapshotModel is like Snapshot but returns the model for inspection.
func SnapshotModel(cfg SnapshotConfig) *Model {
	m := New(cfg.Options)
	ApplyStartupKeys(m, cfg.StartKeys)
	return m
}

func padSnapshotHeight(view string, height, width int) string {
	if height <= 0 {
		return view
	}
	lines := strings.Split(strings.TrimRight(view, "\n"), "\n")
	if len(lines) >= height {
		return strings.Join(lines, "\n")
	}
	padLine := " "
	if width > 1 {
		padLine = strings.Repeat(" ", width)
	}
	for len(lines) < height {
		lines = append(lines, padLine)
	}
	return strings.Join(lines, "\n")
}
