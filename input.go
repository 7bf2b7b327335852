package opentui

import (
	"bytes"

	"github.com/charmbracelet/x/ansi"
)

// InputEvent is one decoded input item: exactly one field is set.
type InputEvent struct {
	Key   *ParsedKey
	Mouse *RawMouseEvent
	Paste string
	Pixel *PixelResolution
}

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

// InputDecoder splits raw terminal bytes into key, mouse, paste and
// pixel-resolution events. Partial escape sequences are buffered
// across reads; paste bytes accumulate until the closing frame.
type InputDecoder struct {
	Keys  KeyParser
	Mouse MouseParser

	buf      []byte
	pasting  bool
	pasteBuf bytes.Buffer
}

// Reset drops buffered bytes and parser state.
func (d *InputDecoder) Reset() {
	d.buf = d.buf[:0]
	d.pasting = false
	d.pasteBuf.Reset()
	d.Mouse.Reset()
}

// Feed consumes a byte burst and returns the decoded events, in
// arrival order.
func (d *InputDecoder) Feed(data []byte) []InputEvent {
	d.buf = append(d.buf, data...)
	var events []InputEvent

	for len(d.buf) > 0 {
		if d.pasting {
			if i := bytes.Index(d.buf, []byte(pasteEnd)); i >= 0 {
				d.pasteBuf.Write(d.buf[:i])
				d.buf = d.buf[i+len(pasteEnd):]
				d.pasting = false
				// Escapes inside the payload are stripped so a paste
				// cannot inject control sequences.
				events = append(events, InputEvent{Paste: ansi.Strip(d.pasteBuf.String())})
				d.pasteBuf.Reset()
				continue
			}
			d.pasteBuf.Write(d.buf)
			d.buf = d.buf[:0]
			break
		}

		ev, n, incomplete := d.next()
		if incomplete {
			break
		}
		if n == 0 {
			diagnostics.parseWarning()
			n = 1
		}
		d.buf = d.buf[n:]
		if ev != nil {
			events = append(events, *ev)
		}
	}

	// A burst ending in a bare ESC is the escape key, not a partial
	// sequence.
	if !d.pasting && len(d.buf) == 1 && d.buf[0] == 0x1b {
		events = append(events, InputEvent{Key: &ParsedKey{Name: "escape", Sequence: "\x1b", Raw: "\x1b"}})
		d.buf = d.buf[:0]
	}
	return events
}

// next decodes one event from the front of the buffer.
func (d *InputDecoder) next() (*InputEvent, int, bool) {
	buf := d.buf
	if buf[0] != 0x1b {
		// Plain key bytes up to the next escape.
		end := bytes.IndexByte(buf, 0x1b)
		if end < 0 {
			end = len(buf)
		}
		keys := d.Keys.Parse(buf[:end])
		if len(keys) == 0 {
			return nil, end, false
		}
		// Re-queue all but the first so ordering is preserved.
		ev := &InputEvent{Key: keys[0]}
		if len(keys) > 1 {
			// Parse consumed everything; deliver the rest one at a
			// time by trimming only the first key's bytes.
			return ev, len(keys[0].Raw), false
		}
		return ev, end, false
	}

	if len(buf) == 1 {
		// A lone ESC may be the start of a sequence still in flight;
		// Feed flushes it as the escape key if nothing follows.
		return nil, 0, true
	}

	if bytes.HasPrefix(buf, []byte(pasteStart)) {
		d.pasting = true
		return nil, len(pasteStart), false
	}
	if buf[1] == '[' && len(buf) == 2 {
		return nil, 0, true
	}

	if len(buf) >= 3 && buf[1] == '[' {
		switch buf[2] {
		case '<':
			// SGR mouse.
			end := indexFinal(buf, 3, 'M', 'm')
			if end < 0 {
				return nil, 0, !hasFinalByte(buf, 3)
			}
			raw := d.Mouse.ParseSGR(string(buf[3:end]), buf[end] == 'm')
			if raw == nil {
				return nil, end + 1, false
			}
			return &InputEvent{Mouse: raw}, end + 1, false
		case 'M':
			// X10 mouse: three payload bytes follow.
			if len(buf) < 6 {
				return nil, 0, true
			}
			raw := d.Mouse.ParseX10(buf[3:6])
			if raw == nil {
				return nil, 6, false
			}
			return &InputEvent{Mouse: raw}, 6, false
		}
		// Pixel-resolution response: CSI 4 ; H ; W t
		if end := csiEnd(buf); end > 0 {
			if buf[end] == 't' {
				if pr := parsePixelReport(string(buf[2:end])); pr != nil {
					return &InputEvent{Pixel: pr}, end + 1, false
				}
				return nil, end + 1, false
			}
		} else {
			return nil, 0, true
		}
	}

	// Anything else starting with ESC goes to the key parser.
	end := csiEnd(buf)
	if buf[1] == '[' && end < 0 {
		return nil, 0, true
	}
	var chunk []byte
	if buf[1] == '[' {
		chunk = buf[:end+1]
	} else {
		// ESC + one rune (alt-key) or bare escape.
		chunk = buf
		if next := bytes.IndexByte(buf[1:], 0x1b); next >= 0 {
			chunk = buf[:next+1]
		}
	}
	keys := d.Keys.Parse(chunk)
	if len(keys) == 0 {
		return nil, len(chunk), false
	}
	return &InputEvent{Key: keys[0]}, len(keys[0].Raw), false
}

// csiEnd returns the index of the final byte of a CSI sequence
// starting at buf[0]==ESC buf[1]=='[', or -1 when incomplete.
func csiEnd(buf []byte) int {
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return i
		}
	}
	return -1
}

func indexFinal(buf []byte, from int, finals ...byte) int {
	for i := from; i < len(buf); i++ {
		for _, f := range finals {
			if buf[i] == f {
				return i
			}
		}
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return -1
		}
	}
	return -1
}

func hasFinalByte(buf []byte, from int) bool {
	for i := from; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return true
		}
	}
	return false
}
