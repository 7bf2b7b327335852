package opentui

import "testing"

func TestDecoderPlainKeys(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("hi"))
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Key == nil || events[0].Key.Name != "h" {
		t.Errorf("event 0 = %+v", events[0])
	}
	if events[1].Key == nil || events[1].Key.Name != "i" {
		t.Errorf("event 1 = %+v", events[1])
	}
}

func TestDecoderBracketedPaste(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("\x1b[200~hello world\x1b[201~"))
	if len(events) != 1 {
		t.Fatalf("events = %+v, want one paste", events)
	}
	if events[0].Paste != "hello world" {
		t.Errorf("paste = %q", events[0].Paste)
	}
}

func TestDecoderPasteSpansReads(t *testing.T) {
	var d InputDecoder
	if events := d.Feed([]byte("\x1b[200~hel")); len(events) != 0 {
		t.Fatalf("paste emitted early: %+v", events)
	}
	if events := d.Feed([]byte("lo")); len(events) != 0 {
		t.Fatalf("paste emitted early: %+v", events)
	}
	events := d.Feed([]byte("\x1b[201~x"))
	if len(events) != 2 {
		t.Fatalf("events = %+v, want paste then key", events)
	}
	if events[0].Paste != "hello" {
		t.Errorf("paste = %q", events[0].Paste)
	}
	if events[1].Key == nil || events[1].Key.Name != "x" {
		t.Errorf("trailing key = %+v", events[1])
	}
}

func TestDecoderPasteStripsEscapes(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("\x1b[200~red\x1b[31mtext\x1b[201~"))
	if len(events) != 1 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Paste != "redtext" {
		t.Errorf("paste = %q, want escapes stripped", events[0].Paste)
	}
}

func TestDecoderSGRMouse(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("\x1b[<0;4;3M"))
	if len(events) != 1 || events[0].Mouse == nil {
		t.Fatalf("events = %+v", events)
	}
	m := events[0].Mouse
	if m.Type != MouseDown || m.Button != MouseButtonLeft || m.X != 3 || m.Y != 2 {
		t.Errorf("mouse = %+v", m)
	}

	events = d.Feed([]byte("\x1b[<0;4;3m"))
	if events[0].Mouse.Type != MouseUp {
		t.Errorf("release = %+v", events[0].Mouse)
	}
}

func TestDecoderSGRMouseDragSynthesis(t *testing.T) {
	var d InputDecoder
	d.Feed([]byte("\x1b[<0;2;2M"))          // press
	events := d.Feed([]byte("\x1b[<32;5;5M")) // motion with button held
	if events[0].Mouse.Type != MouseDrag {
		t.Errorf("motion while pressed = %v, want drag", events[0].Mouse.Type)
	}
	d.Feed([]byte("\x1b[<0;5;5m")) // release
	events = d.Feed([]byte("\x1b[<35;6;6M"))
	if events[0].Mouse.Type != MouseMove {
		t.Errorf("motion after release = %v, want move", events[0].Mouse.Type)
	}
}

func TestDecoderSGRScroll(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("\x1b[<64;3;3M\x1b[<65;3;3M"))
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Mouse.Scroll == nil || events[0].Mouse.Scroll.Direction != ScrollUp {
		t.Errorf("wheel up = %+v", events[0].Mouse)
	}
	if events[1].Mouse.Scroll == nil || events[1].Mouse.Scroll.Direction != ScrollDown {
		t.Errorf("wheel down = %+v", events[1].Mouse)
	}
}

func TestDecoderX10Mouse(t *testing.T) {
	var d InputDecoder
	// X10: ESC [ M, then button+32, x+33, y+33.
	events := d.Feed([]byte{0x1b, '[', 'M', 32, 36, 35})
	if len(events) != 1 || events[0].Mouse == nil {
		t.Fatalf("events = %+v", events)
	}
	m := events[0].Mouse
	if m.Type != MouseDown || m.X != 3 || m.Y != 2 {
		t.Errorf("x10 mouse = %+v", m)
	}
}

func TestDecoderMouseModifiers(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("\x1b[<20;2;2M")) // ctrl+shift held
	m := events[0].Mouse
	if !m.Modifiers.Ctrl || !m.Modifiers.Shift {
		t.Errorf("modifiers = %+v", m.Modifiers)
	}
}

func TestDecoderPixelResolutionReport(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("\x1b[4;720;1280t"))
	if len(events) != 1 || events[0].Pixel == nil {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Pixel.Width != 1280 || events[0].Pixel.Height != 720 {
		t.Errorf("pixel = %+v", events[0].Pixel)
	}
}

func TestDecoderPartialCSIAcrossReads(t *testing.T) {
	var d InputDecoder
	if events := d.Feed([]byte("\x1b[")); len(events) != 0 {
		t.Fatalf("incomplete CSI emitted %+v", events)
	}
	events := d.Feed([]byte("A"))
	if len(events) != 1 || events[0].Key == nil || events[0].Key.Name != "up" {
		t.Errorf("reassembled key = %+v", events)
	}
}

func TestDecoderLoneEscapeFlushes(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte{0x1b})
	if len(events) != 1 || events[0].Key == nil || events[0].Key.Name != "escape" {
		t.Errorf("events = %+v", events)
	}
}

func TestDecoderMixedBurst(t *testing.T) {
	var d InputDecoder
	events := d.Feed([]byte("a\x1b[<0;1;1Mb"))
	if len(events) != 3 {
		t.Fatalf("events = %d, want key/mouse/key", len(events))
	}
	if events[0].Key.Name != "a" || events[1].Mouse == nil || events[2].Key.Name != "b" {
		t.Errorf("events = %+v", events)
	}
}

func TestDecoderResetClearsState(t *testing.T) {
	var d InputDecoder
	d.Feed([]byte("\x1b[200~partial"))
	d.Feed([]byte("\x1b[<0;2;2M")) // press during paste is swallowed into buffer
	d.Reset()
	events := d.Feed([]byte("x"))
	if len(events) != 1 || events[0].Key == nil || events[0].Key.Name != "x" {
		t.Errorf("after reset = %+v", events)
	}
}
