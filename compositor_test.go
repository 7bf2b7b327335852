package opentui

import (
	"bytes"
	"strings"
	"testing"
)

func newTestCompositor(t *testing.T, w, h int) (*Compositor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c, err := NewCompositor(&out, w, h)
	if err != nil {
		t.Fatal(err)
	}
	return c, &out
}

// Minimal diff: after the initial frame, changing a single cell emits
// one cursor move and one grapheme, nothing else.
func TestPresentMinimalDiff(t *testing.T) {
	c, out := newTestCompositor(t, 4, 2)

	red, black := RGB(1, 0, 0), Black
	c.NextBuffer().Clear(black)
	c.NextBuffer().DrawText("AB", 0, 0, red, black, 0)
	if _, err := c.Present(); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	c.NextBuffer().Clear(black)
	c.NextBuffer().DrawText("AX", 0, 0, red, black, 0)
	stats, err := c.Present()
	if err != nil {
		t.Fatal(err)
	}

	if stats.CellsChanged != 1 {
		t.Fatalf("cells changed = %d, want 1", stats.CellsChanged)
	}
	emitted := out.String()
	if !strings.Contains(emitted, MoveCursor(1, 0)) {
		t.Errorf("missing cursor move to (1,0): %q", emitted)
	}
	if !strings.Contains(emitted, "X") {
		t.Errorf("missing grapheme X: %q", emitted)
	}
	// No other grapheme bytes: strip the escapes and check what is
	// left.
	plain := stripEscapes(emitted)
	if plain != "X" {
		t.Errorf("grapheme bytes = %q, want only X", plain)
	}
}

func TestPresentNoChangesEmitsNothing(t *testing.T) {
	c, out := newTestCompositor(t, 3, 1)
	c.NextBuffer().Clear(Black)
	c.NextBuffer().DrawText("ok", 0, 0, White, Black, 0)
	c.Present()

	out.Reset()
	c.NextBuffer().Clear(Black)
	c.NextBuffer().DrawText("ok", 0, 0, White, Black, 0)
	c.Present()

	if out.Len() != 0 {
		t.Errorf("idle frame emitted %q", out.String())
	}
}

func TestPresentSwapsBuffers(t *testing.T) {
	c, _ := newTestCompositor(t, 2, 1)
	next := c.NextBuffer()
	next.DrawText("z", 0, 0, White, Black, 0)
	c.Present()

	if c.CurrentBuffer() != next {
		t.Error("present did not swap next into current")
	}
}

func TestPresentSkipsStyleSwitchWithinRun(t *testing.T) {
	c, out := newTestCompositor(t, 4, 1)
	c.Present() // settle initial frame

	out.Reset()
	c.NextBuffer().Clear(Black)
	c.NextBuffer().DrawText("abcd", 0, 0, White, Black, 0)
	c.Present()

	// One style switch for four same-styled cells.
	if n := strings.Count(out.String(), "38;2;"); n != 1 {
		t.Errorf("fg SGR emitted %d times, want 1", n)
	}
}

func TestRenderOffsetShiftsRows(t *testing.T) {
	c, out := newTestCompositor(t, 2, 2)
	c.SetRenderOffset(10)
	c.NextBuffer().DrawText("a", 0, 0, White, Black, 0)
	c.Present()

	if !strings.Contains(out.String(), MoveCursor(0, 10)) {
		t.Errorf("offset rows missing from output: %q", out.String())
	}
}

func TestResizeForcesFullRedraw(t *testing.T) {
	c, out := newTestCompositor(t, 2, 1)
	c.Present()
	out.Reset()

	if err := c.Resize(3, 1); err != nil {
		t.Fatal(err)
	}
	c.NextBuffer().DrawText("hey", 0, 0, White, Black, 0)
	c.Present()

	if !strings.Contains(out.String(), ClearScreen()) {
		t.Error("resize should clear the screen on next present")
	}
	if plain := stripEscapes(out.String()); plain != "hey" {
		t.Errorf("graphemes after resize = %q", plain)
	}
}

// stripEscapes removes CSI sequences and blanks, leaving the graphemes
// that were actually written.
func stripEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 0x40 || s[j] > 0x7e) {
				j++
			}
			i = j + 1
			continue
		}
		if s[i] != ' ' {
			sb.WriteByte(s[i])
		}
		i++
	}
	return sb.String()
}
