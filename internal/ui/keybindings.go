package ui

import (
	"charm.land/bubbles/v2/key"
)

// KeyMode represents the keybinding mode for the UI.
type KeyMode string

const (
	// KeyModeVim enables vim-style keybindings (h/j/k/l navigation, / filter).
	KeyModeVim KeyMode = "vim"
	// KeyModeEmacs enables emacs-style ctrl/alt keybindings.
	KeyModeEmacs KeyMode = "emacs"
	// KeyModeFunction disables single-key shortcuts and uses function keys.
	KeyModeFunction KeyMode = "function"
)

// DefaultKeyMode is the default keybinding mode.
const DefaultKeyMode = KeyModeVim

// ValidKeyModes lists all valid key modes for validation.
var ValidKeyModes = []KeyMode{KeyModeVim, KeyModeEmacs, KeyModeFunction}

// IsValidKeyMode checks if a key mode string is valid.
func IsValidKeyMode(mode string) bool {
	for _, m := range ValidKeyModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// Action is what a key binding asks the grid host to do.
type Action string

const (
	ActionNone            Action = ""
	ActionUp              Action = "up"
	ActionDown            Action = "down"
	ActionLeft            Action = "left"
	ActionRight           Action = "right"
	ActionEnter           Action = "enter"
	ActionEscape          Action = "escape"
	ActionTab             Action = "tab"
	ActionBackTab         Action = "backtab"
	ActionPageUp          Action = "page_up"
	ActionPageDown        Action = "page_down"
	ActionTop             Action = "top"
	ActionBottom          Action = "bottom"
	ActionNarrow          Action = "narrow"
	ActionWiden           Action = "widen"
	ActionResetWidths     Action = "reset_widths"
	ActionWidthMode       Action = "width_mode"
	ActionSort            Action = "sort"
	ActionSelect          Action = "select"
	ActionExpand          Action = "expand"
	ActionRowNumbers      Action = "row_numbers"
	ActionFilter          Action = "filter"
	ActionHelp            Action = "help"
	ActionQuit            Action = "quit"
	ActionPendingG        Action = "pending_g" // waiting for the second g of gg
	ActionToggleDirection Action = "direction"
)

// bindingSpec is one row of a keybinding table.
type bindingSpec struct {
	action Action
	keys   []string
	help   string
}

// commonBindings work in every key mode.
var commonBindings = []bindingSpec{
	{ActionUp, []string{"up"}, "up"},
	{ActionDown, []string{"down"}, "down"},
	{ActionLeft, []string{"left"}, "left"},
	{ActionRight, []string{"right"}, "right"},
	{ActionEnter, []string{"enter"}, "action/sort"},
	{ActionEscape, []string{"esc"}, "leave action"},
	{ActionTab, []string{"tab"}, "next control"},
	{ActionBackTab, []string{"shift+tab"}, "prev control"},
	{ActionPageUp, []string{"pgup"}, "page up"},
	{ActionPageDown, []string{"pgdown"}, "page down"},
	{ActionTop, []string{"home"}, "first row"},
	{ActionBottom, []string{"end"}, "last row"},
	{ActionQuit, []string{"ctrl+c"}, "quit"},
}

// VimKeyBindings maps keys to actions for vim mode.
var VimKeyBindings = []bindingSpec{
	{ActionDown, []string{"j"}, "down"},
	{ActionUp, []string{"k"}, "up"},
	{ActionLeft, []string{"h"}, "left"},
	{ActionRight, []string{"l"}, "right"},
	{ActionPageDown, []string{"ctrl+f"}, "page down"},
	{ActionPageUp, []string{"ctrl+b"}, "page up"},
	{ActionPendingG, []string{"g"}, "gg first row"},
	{ActionBottom, []string{"G"}, "last row"},
	{ActionNarrow, []string{"<"}, "narrow column"},
	{ActionWiden, []string{">"}, "widen column"},
	{ActionResetWidths, []string{"="}, "reset widths"},
	{ActionWidthMode, []string{"w"}, "fixed/auto widths"},
	{ActionSort, []string{"s"}, "sort"},
	{ActionSelect, []string{"space"}, "select row"},
	{ActionExpand, []string{"o"}, "expand/collapse"},
	{ActionRowNumbers, []string{"#"}, "row numbers"},
	{ActionToggleDirection, []string{"R"}, "rtl/ltr"},
	{ActionFilter, []string{"/"}, "filter"},
	{ActionHelp, []string{"?"}, "help"},
	{ActionQuit, []string{"q"}, "quit"},
}

// EmacsKeyBindings maps keys to actions for emacs mode.
var EmacsKeyBindings = []bindingSpec{
	{ActionDown, []string{"ctrl+n"}, "down"},
	{ActionUp, []string{"ctrl+p"}, "up"},
	{ActionLeft, []string{"ctrl+b"}, "left"},
	{ActionRight, []string{"ctrl+f"}, "right"},
	{ActionPageDown, []string{"ctrl+v"}, "page down"},
	{ActionPageUp, []string{"alt+v"}, "page up"},
	{ActionTop, []string{"alt+<"}, "first row"},
	{ActionBottom, []string{"alt+>"}, "last row"},
	{ActionNarrow, []string{"alt+["}, "narrow column"},
	{ActionWiden, []string{"alt+]"}, "widen column"},
	{ActionResetWidths, []string{"alt+="}, "reset widths"},
	{ActionWidthMode, []string{"alt+w"}, "fixed/auto widths"},
	{ActionSort, []string{"alt+s"}, "sort"},
	{ActionSelect, []string{"ctrl+@", "ctrl+space"}, "select row"},
	{ActionExpand, []string{"ctrl+o"}, "expand/collapse"},
	{ActionRowNumbers, []string{"alt+#"}, "row numbers"},
	{ActionToggleDirection, []string{"alt+r"}, "rtl/ltr"},
	{ActionFilter, []string{"ctrl+s"}, "filter"},
	{ActionHelp, []string{"f1"}, "help"}, // ctrl+h is backspace in terminals
	{ActionQuit, []string{"ctrl+q"}, "quit"},
}

// FunctionKeyBindings maps keys to actions for function-key mode.
var FunctionKeyBindings = []bindingSpec{
	{ActionHelp, []string{"f1"}, "help"},
	{ActionExpand, []string{"f2"}, "expand/collapse"},
	{ActionFilter, []string{"f3"}, "filter"},
	{ActionSort, []string{"f4"}, "sort"},
	{ActionWidthMode, []string{"f5"}, "fixed/auto widths"},
	{ActionNarrow, []string{"f6"}, "narrow column"},
	{ActionWiden, []string{"f7"}, "widen column"},
	{ActionResetWidths, []string{"f8"}, "reset widths"},
	{ActionRowNumbers, []string{"f9"}, "row numbers"},
	{ActionQuit, []string{"f10"}, "quit"},
	{ActionSelect, []string{"f11"}, "select row"},
	{ActionToggleDirection, []string{"f12"}, "rtl/ltr"},
}

func bindingsFor(mode KeyMode) []bindingSpec {
	switch mode {
	case KeyModeEmacs:
		return EmacsKeyBindings
	case KeyModeFunction:
		return FunctionKeyBindings
	}
	return VimKeyBindings
}

// KeyMap resolves key presses to actions for one key mode and feeds the
// help line.
type KeyMap struct {
	Mode     KeyMode
	bindings []actionBinding
}

type actionBinding struct {
	action  Action
	binding key.Binding
}

// NewKeyMap builds the key map for mode; unknown modes fall back to vim.
func NewKeyMap(mode KeyMode) KeyMap {
	if !IsValidKeyMode(string(mode)) {
		mode = DefaultKeyMode
	}
	km := KeyMap{Mode: mode}
	for _, spec := range append(append([]bindingSpec{}, bindingsFor(mode)...), commonBindings...) {
		km.bindings = append(km.bindings, actionBinding{
			action:  spec.action,
			binding: key.NewBinding(key.WithKeys(spec.keys...), key.WithHelp(spec.keys[0], spec.help)),
		})
	}
	return km
}

// Resolve returns the action bound to keyStr. Mode-specific bindings win
// over the common ones.
func (km KeyMap) Resolve(keyStr string) Action {
	for _, b := range km.bindings {
		for _, k := range b.binding.Keys() {
			if k == keyStr {
				return b.action
			}
		}
	}
	return ActionNone
}

// ShortHelp implements help.KeyMap.
func (km KeyMap) ShortHelp() []key.Binding {
	want := []Action{ActionFilter, ActionSort, ActionNarrow, ActionWiden, ActionWidthMode, ActionHelp, ActionQuit}
	var out []key.Binding
	for _, a := range want {
		if b, ok := km.binding(a); ok {
			out = append(out, b)
		}
	}
	return out
}

// FullHelp implements help.KeyMap: navigation, layout and everything else.
func (km KeyMap) FullHelp() [][]key.Binding {
	groups := [][]Action{
		{ActionUp, ActionDown, ActionLeft, ActionRight, ActionPageUp, ActionPageDown, ActionTop, ActionBottom},
		{ActionEnter, ActionEscape, ActionTab, ActionBackTab, ActionSelect, ActionExpand},
		{ActionNarrow, ActionWiden, ActionResetWidths, ActionWidthMode, ActionRowNumbers, ActionToggleDirection},
		{ActionSort, ActionFilter, ActionHelp, ActionQuit},
	}
	out := make([][]key.Binding, 0, len(groups))
	for _, g := range groups {
		var col []key.Binding
		for _, a := range g {
			if b, ok := km.binding(a); ok {
				col = append(col, b)
			}
		}
		out = append(out, col)
	}
	return out
}

func (km KeyMap) binding(a Action) (key.Binding, bool) {
	for _, b := range km.bindings {
		if b.action == a {
			return b.binding, true
		}
	}
	return key.Binding{}, false
}
