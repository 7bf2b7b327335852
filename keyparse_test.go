package opentui

import "testing"

func parseOneKey(t *testing.T, p *KeyParser, input string) *ParsedKey {
	t.Helper()
	keys := p.Parse([]byte(input))
	if len(keys) != 1 {
		t.Fatalf("Parse(%q) = %d keys, want 1", input, len(keys))
	}
	return keys[0]
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ParsedKey
	}{
		{"printable", "a", ParsedKey{Name: "a"}},
		{"uppercase sets shift", "A", ParsedKey{Name: "A", Shift: true}},
		{"digit", "7", ParsedKey{Name: "7", Number: true}},
		{"utf8 rune", "é", ParsedKey{Name: "é"}},
		{"enter", "\r", ParsedKey{Name: "enter"}},
		{"tab", "\t", ParsedKey{Name: "tab"}},
		{"space", " ", ParsedKey{Name: "space"}},
		{"backspace", "\x7f", ParsedKey{Name: "backspace"}},
		{"ctrl-a", "\x01", ParsedKey{Name: "a", Ctrl: true}},
		{"ctrl-z", "\x1a", ParsedKey{Name: "z", Ctrl: true}},
		{"escape", "\x1b", ParsedKey{Name: "escape"}},
		{"arrow up", "\x1b[A", ParsedKey{Name: "up"}},
		{"arrow left", "\x1b[D", ParsedKey{Name: "left"}},
		{"home", "\x1b[H", ParsedKey{Name: "home"}},
		{"end alt form", "\x1b[4~", ParsedKey{Name: "end"}},
		{"shift tab", "\x1b[Z", ParsedKey{Name: "shift-tab", Shift: true}},
		{"delete", "\x1b[3~", ParsedKey{Name: "delete"}},
		{"page up", "\x1b[5~", ParsedKey{Name: "pageup"}},
		{"f1 ss3", "\x1bOP", ParsedKey{Name: "f1"}},
		{"f5", "\x1b[15~", ParsedKey{Name: "f5"}},
		{"f12", "\x1b[24~", ParsedKey{Name: "f12"}},
		{"shift arrow", "\x1b[1;2A", ParsedKey{Name: "up", Shift: true}},
		{"ctrl arrow", "\x1b[1;5C", ParsedKey{Name: "right", Ctrl: true}},
		{"alt arrow", "\x1b[1;3D", ParsedKey{Name: "left", Meta: true, Option: true}},
		{"alt letter", "\x1bf", ParsedKey{Name: "f", Meta: true, Option: true}},
		{"alt backspace", "\x1b\x7f", ParsedKey{Name: "backspace", Meta: true, Option: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p KeyParser
			got := parseOneKey(t, &p, tt.input)
			if got.Name != tt.want.Name {
				t.Errorf("name = %q, want %q", got.Name, tt.want.Name)
			}
			if got.Ctrl != tt.want.Ctrl || got.Shift != tt.want.Shift ||
				got.Meta != tt.want.Meta || got.Option != tt.want.Option {
				t.Errorf("modifiers = %+v, want %+v", got, tt.want)
			}
			if got.Number != tt.want.Number {
				t.Errorf("number = %v, want %v", got.Number, tt.want.Number)
			}
		})
	}
}

func TestParseMultipleKeysInBurst(t *testing.T) {
	var p KeyParser
	keys := p.Parse([]byte("ab"))
	if len(keys) != 2 || keys[0].Name != "a" || keys[1].Name != "b" {
		t.Fatalf("keys = %+v", keys)
	}
}

func TestKittyKeyEvents(t *testing.T) {
	p := KeyParser{Kitty: true}

	tests := []struct {
		name      string
		input     string
		wantName  string
		wantType  KeyEventType
		wantShift bool
	}{
		{"press", "\x1b[97u", "a", KeyPress, false},
		{"repeat", "\x1b[97;1:2u", "a", KeyRepeat, false},
		{"release", "\x1b[97;1:3u", "a", KeyRelease, false},
		{"shift mod", "\x1b[97;2u", "a", KeyPress, true},
		{"escape key", "\x1b[27u", "escape", KeyPress, false},
		{"enter key", "\x1b[13u", "enter", KeyPress, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOneKey(t, &p, tt.input)
			if got.Name != tt.wantName || got.EventType != tt.wantType || got.Shift != tt.wantShift {
				t.Errorf("key = %+v", got)
			}
		})
	}
}

func TestKittyDisabledDropsCSIU(t *testing.T) {
	var p KeyParser
	before := diagnostics.ParseWarnings.Load()
	keys := p.Parse([]byte("\x1b[97u"))
	if len(keys) != 0 {
		t.Errorf("CSI-u without kitty produced %+v", keys)
	}
	if diagnostics.ParseWarnings.Load() == before {
		t.Error("dropped sequence should count as a parse warning")
	}
}

func TestMalformedCSICountsWarning(t *testing.T) {
	var p KeyParser
	before := diagnostics.ParseWarnings.Load()
	p.Parse([]byte("\x1b[99~"))
	if diagnostics.ParseWarnings.Load() == before {
		t.Error("unknown tilde sequence should count as a parse warning")
	}
}
