package ui

import (
	"image/color"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/oakwood-commons/gridkit/internal/config"
)

// Theme holds the lipgloss styles the grid renders with.
type Theme struct {
	Text       lipgloss.Style
	Header     lipgloss.Style
	Border     lipgloss.Style
	Focus      lipgloss.Style
	ActionCell lipgloss.Style
	FocusRow   lipgloss.Style
	Selected   lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
}

// PlainTheme renders without color; focus uses reverse video so it stays
// visible in no-color snapshots.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Text:       plain,
		Header:     plain.Bold(true),
		Border:     plain,
		Focus:      plain.Reverse(true),
		ActionCell: plain.Reverse(true).Underline(true),
		FocusRow:   plain.Reverse(true),
		Selected:   plain.Underline(true),
		Status:     plain,
		Error:      plain.Bold(true),
	}
}

// NewTheme builds styles from a configured theme. Hex colors get derived
// shades: the action-mode cell is a lighter focus color, and focus and
// selection text pick black or white for contrast.
func NewTheme(tc config.ThemeConfig, noColor bool) Theme {
	if noColor {
		return PlainTheme()
	}
	focusBG := parseColor(tc.Focus)
	selectedBG := parseColor(tc.Selected)
	base := lipgloss.NewStyle()
	return Theme{
		Text:       base.Foreground(parseColor(tc.Text)),
		Header:     base.Foreground(parseColor(tc.Header)).Bold(true),
		Border:     base.Foreground(parseColor(tc.Border)),
		Focus:      base.Background(focusBG).Foreground(contrastFor(tc.Focus)),
		ActionCell: base.Background(lighten(tc.Focus, 0.2)).Foreground(contrastFor(tc.Focus)).Underline(true),
		FocusRow:   base.Background(blend(tc.Focus, tc.Selected, 0.5)).Foreground(contrastFor(tc.Focus)),
		Selected:   base.Background(selectedBG).Foreground(contrastFor(tc.Selected)),
		Status:     base.Foreground(parseColor(tc.Status)),
		Error:      base.Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// parseColor accepts an ANSI 256 index or a hex string. Empty means the
// terminal default.
func parseColor(v config.ColorValue) color.Color {
	if v == "" {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(string(v))
}

func hexColor(v config.ColorValue) (colorful.Color, bool) {
	s := string(v)
	if s == "" {
		return colorful.Color{}, false
	}
	if _, err := strconv.Atoi(s); err == nil {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// lighten raises the HSL lightness by amount, capped at 0.85 so text stays
// readable. Non-hex colors are returned unchanged.
func lighten(v config.ColorValue, amount float64) color.Color {
	c, ok := hexColor(v)
	if !ok {
		return parseColor(v)
	}
	h, s, l := c.Hsl()
	return colorful.Hsl(h, s, min(l+amount, 0.85)).Clamped()
}

// blend mixes two hex colors in Lab space; t=0 is a.
func blend(a, b config.ColorValue, t float64) color.Color {
	ca, okA := hexColor(a)
	cb, okB := hexColor(b)
	if !okA || !okB {
		return parseColor(a)
	}
	return ca.BlendLab(cb, t).Clamped()
}

// contrastFor picks black text on light backgrounds and white on dark ones.
func contrastFor(bg config.ColorValue) color.Color {
	c, ok := hexColor(bg)
	if !ok {
		return lipgloss.Color("0")
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}
