package opentui

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// KeyEventType distinguishes presses from repeats and releases.
// Repeats and releases are only reported under the Kitty protocol.
type KeyEventType uint8

const (
	KeyPress KeyEventType = iota
	KeyRepeat
	KeyRelease
)

// ParsedKey is one decoded keyboard event.
type ParsedKey struct {
	// Name is the canonical key name: a printable rune ("a", "A",
	// "あ"), or a named key ("up", "enter", "f5", "escape").
	Name     string
	Sequence string
	Raw      string

	Ctrl   bool
	Meta   bool
	Shift  bool
	Option bool
	// Number reports a digit key.
	Number bool

	EventType KeyEventType
}

// csiNamed maps CSI final bytes to key names.
var csiNamed = map[byte]string{
	'A': "up", 'B': "down", 'C': "right", 'D': "left",
	'H': "home", 'F': "end", 'Z': "shift-tab",
}

// csiTilde maps "CSI n ~" parameters to key names.
var csiTilde = map[int]string{
	1: "home", 2: "insert", 3: "delete", 4: "end", 5: "pageup",
	6: "pagedown", 15: "f5", 17: "f6", 18: "f7", 19: "f8",
	20: "f9", 21: "f10", 23: "f11", 24: "f12",
}

// ss3Named maps "ESC O x" final bytes to key names.
var ss3Named = map[byte]string{
	'P': "f1", 'Q': "f2", 'R': "f3", 'S': "f4",
	'A': "up", 'B': "down", 'C': "right", 'D': "left",
	'H': "home", 'F': "end",
}

// kittyNamed maps Kitty functional key codes to names.
var kittyNamed = map[int]string{
	27: "escape", 13: "enter", 9: "tab", 127: "backspace",
	57358: "capslock", 57399: "0",
}

// KeyParser turns raw stdin bytes into ParsedKeys. A burst may contain
// several keys; bytes belonging to mouse reports or paste frames must
// be routed elsewhere before feeding the parser.
type KeyParser struct {
	// Kitty enables decoding of the Kitty keyboard protocol's CSI-u
	// events.
	Kitty bool
}

// Parse decodes all keys in buf. Malformed sequences are dropped and
// counted as parse warnings.
func (p *KeyParser) Parse(buf []byte) []*ParsedKey {
	var keys []*ParsedKey
	for len(buf) > 0 {
		key, n := p.parseOne(buf)
		if n == 0 {
			// Skip one byte to make progress past garbage.
			diagnostics.parseWarning()
			n = 1
		}
		if key != nil {
			keys = append(keys, key)
		}
		buf = buf[n:]
	}
	return keys
}

func (p *KeyParser) parseOne(buf []byte) (*ParsedKey, int) {
	b := buf[0]

	if b == 0x1b {
		return p.parseEscape(buf)
	}

	// Control codes.
	switch {
	case b == '\r' || b == '\n':
		return &ParsedKey{Name: "enter", Sequence: string(b), Raw: string(b)}, 1
	case b == '\t':
		return &ParsedKey{Name: "tab", Sequence: string(b), Raw: string(b)}, 1
	case b == 0x7f || b == 0x08:
		return &ParsedKey{Name: "backspace", Sequence: string(b), Raw: string(b)}, 1
	case b == ' ':
		return &ParsedKey{Name: "space", Sequence: " ", Raw: " "}, 1
	case b < 0x20:
		// Ctrl+letter.
		name := string(rune('a' + b - 1))
		return &ParsedKey{Name: name, Ctrl: true, Sequence: string(b), Raw: string(b)}, 1
	}

	// Printable UTF-8 rune.
	r, size := utf8.DecodeRune(buf)
	if r == utf8.RuneError && size == 1 {
		return nil, 1
	}
	k := &ParsedKey{Name: string(r), Sequence: string(r), Raw: string(buf[:size])}
	k.Number = r >= '0' && r <= '9'
	k.Shift = r >= 'A' && r <= 'Z'
	return k, size
}

func (p *KeyParser) parseEscape(buf []byte) (*ParsedKey, int) {
	if len(buf) == 1 {
		return &ParsedKey{Name: "escape", Sequence: "\x1b", Raw: "\x1b"}, 1
	}
	switch buf[1] {
	case '[':
		return p.parseCSI(buf)
	case 'O':
		if len(buf) >= 3 {
			if name, ok := ss3Named[buf[2]]; ok {
				seq := string(buf[:3])
				return &ParsedKey{Name: name, Sequence: seq, Raw: seq}, 3
			}
		}
		return nil, 2
	case 0x7f:
		return &ParsedKey{Name: "backspace", Option: true, Meta: true, Sequence: string(buf[:2]), Raw: string(buf[:2])}, 2
	default:
		// Meta/option + printable.
		r, size := utf8.DecodeRune(buf[1:])
		if r == utf8.RuneError {
			return nil, 1
		}
		raw := string(buf[:1+size])
		return &ParsedKey{Name: string(r), Meta: true, Option: true, Sequence: raw, Raw: raw}, 1 + size
	}
}

// parseCSI decodes one CSI sequence starting at buf[0] == ESC,
// buf[1] == '['.
func (p *KeyParser) parseCSI(buf []byte) (*ParsedKey, int) {
	// Find the final byte (0x40..0x7e).
	end := -1
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			end = i
			break
		}
	}
	if end < 0 {
		// Incomplete: consume nothing useful.
		diagnostics.parseWarning()
		return nil, len(buf)
	}
	final := buf[end]
	params := string(buf[2:end])
	raw := string(buf[:end+1])
	n := end + 1

	switch final {
	case 'A', 'B', 'C', 'D', 'H', 'F', 'Z':
		name := csiNamed[final]
		k := &ParsedKey{Name: name, Sequence: raw, Raw: raw}
		if name == "shift-tab" {
			k.Shift = true
		}
		applyCSIModifiers(k, params)
		return k, n
	case '~':
		parts := splitParams(params)
		if len(parts) == 0 {
			diagnostics.parseWarning()
			return nil, n
		}
		name, ok := csiTilde[parts[0]]
		if !ok {
			diagnostics.parseWarning()
			return nil, n
		}
		k := &ParsedKey{Name: name, Sequence: raw, Raw: raw}
		if len(parts) > 1 {
			applyModifierBits(k, parts[1])
		}
		return k, n
	case 'u':
		if !p.Kitty {
			diagnostics.parseWarning()
			return nil, n
		}
		return parseKittyKey(params, raw), n
	default:
		diagnostics.parseWarning()
		return nil, n
	}
}

// applyCSIModifiers handles "1;m" modifier parameters on named CSI
// keys.
func applyCSIModifiers(k *ParsedKey, params string) {
	parts := splitParams(params)
	if len(parts) >= 2 {
		applyModifierBits(k, parts[1])
	}
}

// applyModifierBits decodes the xterm modifier parameter (value − 1 is
// a bitfield: 1 shift, 2 alt, 4 ctrl).
func applyModifierBits(k *ParsedKey, m int) {
	bits := m - 1
	k.Shift = k.Shift || bits&1 != 0
	k.Option = k.Option || bits&2 != 0
	k.Meta = k.Meta || bits&2 != 0
	k.Ctrl = k.Ctrl || bits&4 != 0
}

// parseKittyKey decodes a CSI-u event: "unicode[:shifted];mods[:event]u".
func parseKittyKey(params, raw string) *ParsedKey {
	fields := strings.Split(params, ";")
	codeField := strings.Split(fields[0], ":")
	code, err := strconv.Atoi(codeField[0])
	if err != nil {
		diagnostics.parseWarning()
		return nil
	}

	k := &ParsedKey{Sequence: raw, Raw: raw}
	if name, ok := kittyNamed[code]; ok {
		k.Name = name
	} else {
		r := rune(code)
		k.Name = string(r)
		k.Number = r >= '0' && r <= '9'
	}

	if len(fields) > 1 {
		modField := strings.Split(fields[1], ":")
		if m, err := strconv.Atoi(modField[0]); err == nil {
			applyModifierBits(k, m)
		}
		if len(modField) > 1 {
			switch modField[1] {
			case "2":
				k.EventType = KeyRepeat
			case "3":
				k.EventType = KeyRelease
			}
		}
	}
	return k
}

func splitParams(params string) []int {
	if params == "" {
		return nil
	}
	parts := strings.Split(params, ";")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		// Sub-parameters after ':' are ignored here.
		if i := strings.IndexByte(p, ':'); i >= 0 {
			p = p[:i]
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return out
		}
		out = append(out, v)
	}
	return out
}
