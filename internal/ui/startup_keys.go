package ui

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyStartupKeys simulates key presses given as Vim-like tokens and
// literal text, e.g. "jjj", "<Down><Enter>", "<gt><gt>". A leading
// backslash forces the whole token to be literal text.
func ApplyStartupKeys(m *Model, keys []string) {
	if m == nil {
		return
	}
	for _, msg := range KeyMsgs(keys) {
		m.Update(msg)
	}
}

// KeyMsgs converts startup key tokens to key press messages. Unknown <...>
// tokens are skipped.
func KeyMsgs(keys []string) []tea.KeyPressMsg {
	var out []tea.KeyPressMsg
	for _, raw := range keys {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			out = append(out, literalMsgs(strings.TrimPrefix(token, `\`))...)
			continue
		}
		for _, seg := range parseTokenSegments(token) {
			if !seg.isVimKey {
				out = append(out, literalMsgs(seg.text)...)
				continue
			}
			if msg, ok := keyMsgFromToken(seg.text); ok {
				out = append(out, msg)
			}
		}
	}
	return out
}

func literalMsgs(text string) []tea.KeyPressMsg {
	out := make([]tea.KeyPressMsg, 0, len(text))
	for _, r := range text {
		if r == ' ' {
			out = append(out, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
			continue
		}
		out = append(out, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return out
}

// tokenSegment is a parsed piece of a token: a <key> or literal text.
type tokenSegment struct {
	text     string
	isVimKey bool
}

// parseTokenSegments splits a token into <key> segments and literal text.
// "<F1>abc" -> [{"<F1>", true}, {"abc", false}]
func parseTokenSegments(token string) []tokenSegment {
	var segments []tokenSegment
	remaining := token
	for len(remaining) > 0 {
		start := strings.Index(remaining, "<")
		if start == -1 {
			segments = append(segments, tokenSegment{text: remaining})
			break
		}
		if start > 0 {
			segments = append(segments, tokenSegment{text: remaining[:start]})
		}
		end := strings.Index(remaining[start:], ">")
		if end <= 1 {
			// "<" without a closing ">" or an empty "<>" is literal.
			stop := start + 1
			if end == 1 {
				stop = start + 2
			}
			segments = append(segments, tokenSegment{text: remaining[start:stop]})
			remaining = remaining[stop:]
			continue
		}
		segments = append(segments, tokenSegment{text: remaining[start : start+end+1], isVimKey: true})
		remaining = remaining[start+end+1:]
	}
	return segments
}

var namedKeys = map[string]tea.KeyPressMsg{
	"esc":       {Code: tea.KeyEscape},
	"escape":    {Code: tea.KeyEscape},
	"c-[":       {Code: tea.KeyEscape},
	"cr":        {Code: tea.KeyEnter},
	"enter":     {Code: tea.KeyEnter},
	"return":    {Code: tea.KeyEnter},
	"tab":       {Code: tea.KeyTab},
	"s-tab":     {Code: tea.KeyTab, Mod: tea.ModShift},
	"space":     {Code: tea.KeySpace, Text: " "},
	"bs":        {Code: tea.KeyBackspace},
	"backspace": {Code: tea.KeyBackspace},
	"left":      {Code: tea.KeyLeft},
	"right":     {Code: tea.KeyRight},
	"up":        {Code: tea.KeyUp},
	"down":      {Code: tea.KeyDown},
	"home":      {Code: tea.KeyHome},
	"end":       {Code: tea.KeyEnd},
	"pageup":    {Code: tea.KeyPgUp},
	"pagedown":  {Code: tea.KeyPgDown},
	"lt":        {Code: '<', Text: "<"},
	"gt":        {Code: '>', Text: ">"},
	"c-c":       {Code: 'c', Mod: tea.ModCtrl},
}

var functionKeys = []rune{
	tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4, tea.KeyF5, tea.KeyF6,
	tea.KeyF7, tea.KeyF8, tea.KeyF9, tea.KeyF10, tea.KeyF11, tea.KeyF12,
}

// keyMsgFromToken parses one <...> token: <Esc>, <CR>, <S-Tab>, <F3>,
// <lt>, <gt>.
func keyMsgFromToken(token string) (tea.KeyPressMsg, bool) {
	if !strings.HasPrefix(token, "<") || !strings.HasSuffix(token, ">") {
		return tea.KeyPressMsg{}, false
	}
	name := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	if msg, ok := namedKeys[name]; ok {
		return msg, true
	}
	if strings.HasPrefix(name, "f") {
		for i, code := range functionKeys {
			if name == "f"+strconv.Itoa(i+1) {
				return tea.KeyPressMsg{Code: code}, true
			}
		}
	}
	return tea.KeyPressMsg{}, false
}
