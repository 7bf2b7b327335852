package opentui

import "strings"

// WrapMode selects how TextBuffer lines break at the wrap width.
type WrapMode uint8

const (
	// WrapChar breaks lines at any grapheme.
	WrapChar WrapMode = iota
	// WrapWord prefers breaking at spaces, falling back to WrapChar
	// for words wider than the wrap width.
	WrapWord
)

// Chunk is a run of text with optional style overrides. Nil colors
// inherit the drawing defaults.
type Chunk struct {
	Text  string
	Fg    *RGBA
	Bg    *RGBA
	Attrs Attributes
}

// LineInfo describes one display line: the index of its first
// grapheme, the grapheme count, and the display width.
type LineInfo struct {
	Start int
	Count int
	Width int
}

type styledGrapheme struct {
	Grapheme
	fg    *RGBA
	bg    *RGBA
	attrs Attributes
}

// TextBuffer is grapheme-aware styled text with wrapping and an
// optional selection range. The derived line info is recomputed
// whenever content or wrap settings change, so it is always consistent
// before a draw.
type TextBuffer struct {
	chunks      []Chunk
	widthMethod WidthMethod

	graphemes []styledGrapheme
	lineInfo  []LineInfo

	wrapMode  WrapMode
	wrapWidth int // 0 = no wrap

	selStart, selEnd int // grapheme range [start, end), -1 = none
	selFg, selBg     *RGBA
}

// NewTextBuffer creates an empty text buffer measuring with the given
// width method.
func NewTextBuffer(method WidthMethod) *TextBuffer {
	return &TextBuffer{widthMethod: method, selStart: -1, selEnd: -1}
}

// ChunkCount returns the number of chunks.
func (t *TextBuffer) ChunkCount() int { return len(t.chunks) }

// InsertChunkGroup inserts a chunk at the given index.
func (t *TextBuffer) InsertChunkGroup(index int, text string, fg, bg *RGBA, attrs Attributes) error {
	if index < 0 || index > len(t.chunks) {
		return &InvalidArgumentError{Arg: "index", Reason: "chunk index out of range"}
	}
	t.chunks = append(t.chunks, Chunk{})
	copy(t.chunks[index+1:], t.chunks[index:])
	t.chunks[index] = Chunk{Text: text, Fg: fg, Bg: bg, Attrs: attrs}
	t.recompute()
	return nil
}

// ReplaceChunkGroup replaces the chunk at the given index.
func (t *TextBuffer) ReplaceChunkGroup(index int, text string, fg, bg *RGBA, attrs Attributes) error {
	if index < 0 || index >= len(t.chunks) {
		return &InvalidArgumentError{Arg: "index", Reason: "chunk index out of range"}
	}
	t.chunks[index] = Chunk{Text: text, Fg: fg, Bg: bg, Attrs: attrs}
	t.recompute()
	return nil
}

// RemoveChunkGroup removes the chunk at the given index.
func (t *TextBuffer) RemoveChunkGroup(index int) error {
	if index < 0 || index >= len(t.chunks) {
		return &InvalidArgumentError{Arg: "index", Reason: "chunk index out of range"}
	}
	t.chunks = append(t.chunks[:index], t.chunks[index+1:]...)
	t.recompute()
	return nil
}

// SetText replaces all chunks with a single unstyled chunk.
func (t *TextBuffer) SetText(text string) {
	t.chunks = []Chunk{{Text: text}}
	t.recompute()
}

// SetWrapWidth sets the wrap width in cells; 0 disables wrapping.
func (t *TextBuffer) SetWrapWidth(w int) {
	if w < 0 {
		w = 0
	}
	if t.wrapWidth == w {
		return
	}
	t.wrapWidth = w
	t.lineInfo = t.computeLines(t.wrapWidth)
}

// SetWrapMode sets the wrap mode.
func (t *TextBuffer) SetWrapMode(m WrapMode) {
	if t.wrapMode == m {
		return
	}
	t.wrapMode = m
	t.lineInfo = t.computeLines(t.wrapWidth)
}

// LineCount returns the number of display lines.
func (t *TextBuffer) LineCount() int {
	if len(t.lineInfo) == 0 {
		return 1
	}
	return len(t.lineInfo)
}

// MaxLineWidth returns the widest display line.
func (t *TextBuffer) MaxLineWidth() int {
	w := 0
	for _, li := range t.lineInfo {
		if li.Width > w {
			w = li.Width
		}
	}
	return w
}

// Measure implements the layout measurement contract: the buffer's
// size at the proposed width, re-wrapped when wrapping is enabled.
// Both dimensions are at least 1.
func (t *TextBuffer) Measure(proposedWidth int) (int, int) {
	lines := t.lineInfo
	if t.wrapWidth == 0 && proposedWidth > 0 {
		// Layout proposes a width; honor it even when the buffer has
		// no explicit wrap width.
		lines = t.computeLines(proposedWidth)
	} else if proposedWidth > 0 && proposedWidth != t.wrapWidth {
		lines = t.computeLines(proposedWidth)
	}
	w, h := 0, len(lines)
	for _, li := range lines {
		if li.Width > w {
			w = li.Width
		}
	}
	return max(1, w), max(1, h)
}

// recompute re-derives the grapheme cache and the line info.
func (t *TextBuffer) recompute() {
	t.graphemes = t.graphemes[:0]
	for _, ch := range t.chunks {
		for _, g := range SegmentGraphemes(ch.Text, t.widthMethod) {
			t.graphemes = append(t.graphemes, styledGrapheme{
				Grapheme: g,
				fg:       ch.Fg,
				bg:       ch.Bg,
				attrs:    ch.Attrs,
			})
		}
	}
	t.lineInfo = t.computeLines(t.wrapWidth)
}

func isNewline(g Grapheme) bool {
	return g.Cluster == "\n" || g.Cluster == "\r\n" || g.Cluster == "\r"
}

// computeLines breaks the grapheme cache into display lines at the
// given width (0 = unbounded). Newline graphemes terminate a line and
// belong to no line.
func (t *TextBuffer) computeLines(width int) []LineInfo {
	var lines []LineInfo
	start := 0
	lineWidth := 0
	lastBreak := -1 // grapheme index after which a word break is legal
	widthAtBreak := 0

	flush := func(end, w int, nextStart int) {
		lines = append(lines, LineInfo{Start: start, Count: end - start, Width: w})
		start = nextStart
		lineWidth = 0
		lastBreak = -1
		widthAtBreak = 0
	}

	for i := 0; i < len(t.graphemes); i++ {
		g := t.graphemes[i]
		if isNewline(g.Grapheme) {
			flush(i, lineWidth, i+1)
			continue
		}
		if width > 0 && lineWidth+g.Width > width && i > start {
			if t.wrapMode == WrapWord && lastBreak >= start {
				// Break after the last space; the space stays on the
				// previous line.
				bp := lastBreak
				bw := widthAtBreak
				flush(bp+1, bw, bp+1)
				// Re-measure from the wrapped word's start.
				for j := start; j < i; j++ {
					lineWidth += t.graphemes[j].Width
				}
			} else {
				flush(i, lineWidth, i)
			}
		}
		lineWidth += g.Width
		if g.Cluster == " " {
			lastBreak = i
			widthAtBreak = lineWidth - g.Width
		}
	}
	flush(len(t.graphemes), lineWidth, len(t.graphemes))
	if len(lines) == 0 {
		lines = []LineInfo{{}}
	}
	return lines
}

// graphemeAt translates a cell coordinate local to the buffer into a
// grapheme position. Coordinates past the end of a line clamp to the
// line end; rows past the last line clamp to the buffer end.
func (t *TextBuffer) graphemeAt(x, y int) int {
	if y < 0 {
		return 0
	}
	if y >= len(t.lineInfo) {
		return len(t.graphemes)
	}
	li := t.lineInfo[y]
	col := 0
	for i := li.Start; i < li.Start+li.Count; i++ {
		if x < col+t.graphemes[i].Width {
			return i
		}
		col += t.graphemes[i].Width
	}
	return li.Start + li.Count
}

// SetLocalSelection marks the grapheme range between two local cell
// coordinates (anchor before focus in reading order) as selected,
// optionally overriding the selection colors. Returns true if the
// range covers any grapheme.
func (t *TextBuffer) SetLocalSelection(anchorX, anchorY, focusX, focusY int, selFg, selBg *RGBA) bool {
	start := t.graphemeAt(anchorX, anchorY)
	end := t.graphemeAt(focusX, focusY)
	if focusY >= 0 && focusY < len(t.lineInfo) {
		// The focus cell itself is included.
		li := t.lineInfo[focusY]
		if end < li.Start+li.Count {
			end++
		}
	}
	if end < start {
		start, end = end, start
	}
	t.selStart, t.selEnd = start, end
	t.selFg, t.selBg = selFg, selBg
	return end > start
}

// ClearSelection removes the selection range.
func (t *TextBuffer) ClearSelection() {
	t.selStart, t.selEnd = -1, -1
	t.selFg, t.selBg = nil, nil
}

// HasSelection reports whether any grapheme is selected.
func (t *TextBuffer) HasSelection() bool {
	return t.selStart >= 0 && t.selEnd > t.selStart
}

// GetSelectedText concatenates the graphemes in the selection range.
func (t *TextBuffer) GetSelectedText() string {
	if !t.HasSelection() {
		return ""
	}
	var sb strings.Builder
	for i := t.selStart; i < t.selEnd && i < len(t.graphemes); i++ {
		sb.WriteString(t.graphemes[i].Cluster)
	}
	return sb.String()
}

// DrawInto renders the buffer's lines into dst with the buffer origin
// at (x, y). The default colors style graphemes whose chunk carries no
// override; cells inside the selection range render with the selection
// override colors, or inverted when no override is set. clip further
// restricts drawing in dst coordinates.
func (t *TextBuffer) DrawInto(dst *CellBuffer, x, y int, defaultFg, defaultBg RGBA, clip *Rect) {
	for ln, li := range t.lineInfo {
		cy := y + ln
		cx := x
		for i := li.Start; i < li.Start+li.Count; i++ {
			g := t.graphemes[i]
			if clip != nil && !clip.Contains(cx, cy) {
				cx += g.Width
				continue
			}
			fg, bg := defaultFg, defaultBg
			if g.fg != nil {
				fg = *g.fg
			}
			if g.bg != nil {
				bg = *g.bg
			}
			if t.HasSelection() && i >= t.selStart && i < t.selEnd {
				if t.selFg != nil || t.selBg != nil {
					if t.selFg != nil {
						fg = *t.selFg
					}
					if t.selBg != nil {
						bg = *t.selBg
					}
				} else {
					fg, bg = bg, fg
				}
			}
			dst.SetCell(cx, cy, g.Cluster, fg, bg, g.attrs)
			cx += g.Width
		}
	}
}
