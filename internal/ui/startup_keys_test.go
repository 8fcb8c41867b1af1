package ui

import (
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestKeyMsgs(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"literal text", []string{"jj"}, []string{"j", "j"}},
		{"named keys", []string{"<Down><CR>"}, []string{"down", "enter"}},
		{"mixed segments", []string{"k<Esc>l"}, []string{"k", "esc", "l"}},
		{"angle escapes", []string{"<lt><gt>"}, []string{"<", ">"}},
		{"function keys", []string{"<F1><f12>"}, []string{"f1", "f12"}},
		{"shift tab", []string{"<S-Tab>"}, []string{"shift+tab"}},
		{"unknown token skipped", []string{"<bogus>j"}, []string{"j"}},
		{"lone angle is literal", []string{"a<"}, []string{"a", "<"}},
		{"backslash forces literal", []string{`\<gt>`}, []string{"<", "g", "t", ">"}},
		{"blank tokens ignored", []string{"", "  "}, nil},
		{"space", []string{"a b"}, []string{"a", "space", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := KeyMsgs(tt.keys)
			if len(msgs) != len(tt.want) {
				t.Fatalf("KeyMsgs(%q) produced %d messages, want %d", tt.keys, len(msgs), len(tt.want))
			}
			for i, msg := range msgs {
				if got := msg.String(); got != tt.want[i] {
					t.Errorf("message %d = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestKeyMsgFromToken(t *testing.T) {
	msg, ok := keyMsgFromToken("<C-c>")
	if !ok {
		t.Fatal("expected <C-c> to parse")
	}
	if msg.Code != 'c' || msg.Mod != tea.ModCtrl {
		t.Fatalf("unexpected message for <C-c>: %+v", msg)
	}
	if _, ok := keyMsgFromToken("<F13>"); ok {
		t.Fatal("expected <F13> to be rejected")
	}
	if _, ok := keyMsgFromToken("plain"); ok {
		t.Fatal("expected text without brackets to be rejected")
	}
}

func TestApplyStartupKeysNilModel(_ *testing.T) {
	ApplyStartupKeys(nil, []string{"jj"})
}
