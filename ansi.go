package opentui

import (
	"strconv"
	"strings"
)

// Escape sequence prefixes.
const (
	ESC = "\x1b"
	CSI = ESC + "["
)

// Pre-computed sequences for the hot emit path.
const (
	resetStr  = CSI + "0m"
	boldStr   = CSI + "1m"
	dimStr    = CSI + "2m"
	italicStr = CSI + "3m"
	underStr  = CSI + "4m"
	blinkStr  = CSI + "5m"
	invStr    = CSI + "7m"
	hiddenStr = CSI + "8m"
	strikeStr = CSI + "9m"
)

// Terminal mode sequences.
const (
	AltScreenEnter = CSI + "?1049h"
	AltScreenLeave = CSI + "?1049l"

	MouseButtonsOn  = CSI + "?1000h" + CSI + "?1002h"
	MouseMotionOn   = CSI + "?1000h" + CSI + "?1002h" + CSI + "?1003h"
	MouseSGROn      = CSI + "?1006h"
	MouseOff        = CSI + "?1006l" + CSI + "?1003l" + CSI + "?1002l" + CSI + "?1000l"
	BracketedPasteOn  = CSI + "?2004h"
	BracketedPasteOff = CSI + "?2004l"

	KittyKeyboardPop = CSI + "<u"

	QueryPixelSize = CSI + "14t"
)

// KittyKeyboardPush enables the Kitty keyboard protocol with the given
// progressive enhancement flags.
func KittyKeyboardPush(flags int) string {
	return CSI + ">" + strconv.Itoa(flags) + "u"
}

// MoveCursor returns the sequence to move the cursor to (x, y), 0-based.
func MoveCursor(x, y int) string {
	return CSI + strconv.Itoa(y+1) + ";" + strconv.Itoa(x+1) + "H"
}

// HideCursor hides the terminal cursor.
func HideCursor() string { return CSI + "?25l" }

// ShowCursor shows the terminal cursor.
func ShowCursor() string { return CSI + "?25h" }

// ClearScreen clears the screen and homes the cursor.
func ClearScreen() string { return CSI + "2J" + CSI + "H" }

// CursorStyle selects the hardware cursor shape.
type CursorStyle uint8

const (
	CursorBlock CursorStyle = iota
	CursorUnderline
	CursorBar
)

// SetCursorStyle returns the DECSCUSR sequence for a cursor shape.
func SetCursorStyle(style CursorStyle, blink bool) string {
	n := 2 // steady block
	switch style {
	case CursorUnderline:
		n = 4
	case CursorBar:
		n = 6
	}
	if blink {
		n--
	}
	return CSI + strconv.Itoa(n) + " q"
}

// SetCursorColor sets the cursor color via OSC 12.
func SetCursorColor(c RGBA) string {
	r, g, b := c.channels8()
	return ESC + "]12;rgb:" + hex2(r) + "/" + hex2(g) + "/" + hex2(b) + ESC + "\\"
}

func hex2(v uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[v>>4], digits[v&0xf]})
}

// SetScrollRegion restricts scrolling to rows top..bottom (0-based,
// inclusive).
func SetScrollRegion(top, bottom int) string {
	return CSI + strconv.Itoa(top+1) + ";" + strconv.Itoa(bottom+1) + "r"
}

// ResetScrollRegion restores the full-screen scroll region.
func ResetScrollRegion() string { return CSI + "r" }

// ScrollUpSeq scrolls the region up n lines.
func ScrollUpSeq(n int) string { return CSI + strconv.Itoa(n) + "S" }

// ScrollDownSeq scrolls the region down n lines.
func ScrollDownSeq(n int) string { return CSI + strconv.Itoa(n) + "T" }

// styleToAnsi writes the SGR codes for a cell's style. Callers emit a
// reset first; this appends only the set attributes and colors.
func styleToAnsi(c Cell, sb *strings.Builder) {
	if c.Attrs.Has(AttrBold) {
		sb.WriteString(boldStr)
	}
	if c.Attrs.Has(AttrDim) {
		sb.WriteString(dimStr)
	}
	if c.Attrs.Has(AttrItalic) {
		sb.WriteString(italicStr)
	}
	if c.Attrs.Has(AttrUnderline) {
		sb.WriteString(underStr)
	}
	if c.Attrs.Has(AttrBlink) {
		sb.WriteString(blinkStr)
	}
	if c.Attrs.Has(AttrInverse) {
		sb.WriteString(invStr)
	}
	if c.Attrs.Has(AttrHidden) {
		sb.WriteString(hiddenStr)
	}
	if c.Attrs.Has(AttrStrikethrough) {
		sb.WriteString(strikeStr)
	}
	writeColor(sb, c.Fg, true)
	writeColor(sb, c.Bg, false)
}

func writeColor(sb *strings.Builder, c RGBA, fg bool) {
	if c.A <= 0 {
		// Fully transparent: leave the terminal default.
		return
	}
	r, g, b := c.channels8()
	if fg {
		sb.WriteString(CSI + "38;2;")
	} else {
		sb.WriteString(CSI + "48;2;")
	}
	sb.WriteString(strconv.Itoa(int(r)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(g)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(b)))
	sb.WriteByte('m')
}

// sameStyle reports whether two cells share SGR state, so the emitter
// can skip redundant style switches.
func sameStyle(a, b Cell) bool {
	return a.Attrs == b.Attrs && a.Fg == b.Fg && a.Bg == b.Bg
}
