package opentui

import (
	"bytes"
	"encoding/gob"
	"strings"
)

// Rect is an axis-aligned cell rectangle.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersect returns the overlap of two rectangles.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.W, o.X+o.W)
	y2 := min(r.Y+r.H, o.Y+o.H)
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// CellBuffer is a fixed-size 2D grid of cells with a scissor stack.
// Drawing is clipped to the intersection of all pushed scissor
// rectangles; an empty stack means the full buffer.
type CellBuffer struct {
	width, height int
	cells         []Cell
	bg0           RGBA
	scissors      []Rect
	clip          Rect // cached intersection of scissors
	widthMethod   WidthMethod
	respectAlpha  bool
	released      bool
}

// BufferOption configures a CellBuffer at creation.
type BufferOption func(*CellBuffer)

// WithWidthMethod sets the grapheme width method used by DrawText.
func WithWidthMethod(m WidthMethod) BufferOption {
	return func(b *CellBuffer) { b.widthMethod = m }
}

// WithRespectAlpha marks the buffer as alpha-carrying: blitting it
// into another buffer composites per cell instead of replacing.
func WithRespectAlpha(on bool) BufferOption {
	return func(b *CellBuffer) { b.respectAlpha = on }
}

// WithClearColor sets the background used by Clear and Resize.
func WithClearColor(bg RGBA) BufferOption {
	return func(b *CellBuffer) { b.bg0 = bg }
}

// NewCellBuffer creates a buffer of blank cells.
func NewCellBuffer(width, height int, opts ...BufferOption) (*CellBuffer, error) {
	if width < 0 || height < 0 {
		return nil, &InvalidArgumentError{Arg: "width/height", Reason: "dimensions must be non-negative"}
	}
	b := &CellBuffer{width: width, height: height}
	for _, opt := range opts {
		opt(b)
	}
	b.cells = make([]Cell, width*height)
	b.fillAll(blankCell(b.bg0))
	b.clip = b.bounds()
	return b, nil
}

func (b *CellBuffer) bounds() Rect { return Rect{W: b.width, H: b.height} }

func (b *CellBuffer) index(x, y int) int { return y*b.width + x }

func (b *CellBuffer) fillAll(c Cell) {
	for i := range b.cells {
		b.cells[i] = c
	}
}

func (b *CellBuffer) checkAlive(op string) {
	if b.released {
		violated(op, "buffer has been released")
	}
}

// Width returns the buffer width in cells.
func (b *CellBuffer) Width() int { return b.width }

// Height returns the buffer height in cells.
func (b *CellBuffer) Height() int { return b.height }

// RespectAlpha reports whether blits composite instead of replace.
func (b *CellBuffer) RespectAlpha() bool { return b.respectAlpha }

// WidthMethod returns the grapheme width method the buffer measures
// with.
func (b *CellBuffer) WidthMethod() WidthMethod { return b.widthMethod }

// Get returns the cell at (x, y). Out of bounds returns a blank cell.
func (b *CellBuffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return blankCell(b.bg0)
	}
	return b.cells[b.index(x, y)]
}

// Clear fills the whole buffer, ignoring the scissor stack, and
// records the color as the new clear color.
func (b *CellBuffer) Clear(bg RGBA) {
	b.checkAlive("Clear")
	b.bg0 = bg
	b.fillAll(blankCell(bg))
}

// Resize reallocates the grid. Previous content is not preserved.
func (b *CellBuffer) Resize(width, height int) error {
	b.checkAlive("Resize")
	if width < 0 || height < 0 {
		return &InvalidArgumentError{Arg: "width/height", Reason: "dimensions must be non-negative"}
	}
	if len(b.scissors) != 0 {
		violated("Resize", "scissor stack is not empty")
	}
	b.width, b.height = width, height
	b.cells = make([]Cell, width*height)
	b.fillAll(blankCell(b.bg0))
	b.clip = b.bounds()
	return nil
}

// Release marks the buffer dead; further drawing is an invariant
// violation. Called when the owning renderable or compositor lets go
// of the buffer.
func (b *CellBuffer) Release() {
	b.released = true
	b.cells = nil
}

// PushScissorRect narrows drawing to the intersection of the given
// rectangle with all previously pushed ones.
func (b *CellBuffer) PushScissorRect(x, y, w, h int) {
	b.checkAlive("PushScissorRect")
	r := Rect{X: x, Y: y, W: w, H: h}
	b.scissors = append(b.scissors, r)
	b.clip = b.clip.Intersect(r)
}

// PopScissorRect removes the most recent scissor rectangle. Popping an
// empty stack is an invariant violation.
func (b *CellBuffer) PopScissorRect() {
	b.checkAlive("PopScissorRect")
	if len(b.scissors) == 0 {
		violated("PopScissorRect", "pop without matching push")
	}
	b.scissors = b.scissors[:len(b.scissors)-1]
	b.clip = b.bounds()
	for _, r := range b.scissors {
		b.clip = b.clip.Intersect(r)
	}
}

// ScissorDepth returns the number of active scissor rectangles.
func (b *CellBuffer) ScissorDepth() int { return len(b.scissors) }

func (b *CellBuffer) inClip(x, y int) bool {
	return b.clip.Contains(x, y) && x >= 0 && x < b.width && y >= 0 && y < b.height
}

// writeCell stores a cell, repairing any wide grapheme it tears: a
// write over a continuation cell invalidates the leading cell, a write
// over a leading cell invalidates its continuation.
func (b *CellBuffer) writeCell(x, y int, c Cell) {
	existing := b.cells[b.index(x, y)]
	if existing.IsContinuation() && x > 0 {
		lead := &b.cells[b.index(x-1, y)]
		*lead = blankCell(lead.Bg)
	}
	if existing.Width == 2 && x+1 < b.width {
		cont := &b.cells[b.index(x+1, y)]
		*cont = blankCell(cont.Bg)
	}
	b.cells[b.index(x, y)] = c
}

// SetCell places one grapheme at (x, y). Coordinates outside the
// scissor region are a no-op. A wide grapheme additionally stamps a
// continuation cell at x+1; if the continuation would be clipped the
// grapheme is not drawn. Colors with alpha below 1 are composited over
// the existing cell.
func (b *CellBuffer) SetCell(x, y int, grapheme string, fg, bg RGBA, attrs Attributes) {
	b.checkAlive("SetCell")
	if grapheme == "" {
		diagnostics.badGrapheme()
		return
	}
	if !b.inClip(x, y) {
		return
	}
	width := MeasureText(grapheme, b.widthMethod)
	if width < 1 {
		width = 1
	}
	if width > 2 {
		width = 2
	}
	if width == 2 && !b.inClip(x+1, y) {
		return
	}

	existing := b.cells[b.index(x, y)]
	cell := Cell{
		Grapheme: grapheme,
		Width:    uint8(width),
		Fg:       fg.BlendOver(existing.Bg),
		Bg:       bg.BlendOver(existing.Bg),
		Attrs:    attrs,
	}
	b.writeCell(x, y, cell)
	if width == 2 {
		b.writeCell(x+1, y, continuationCell(cell.Bg))
	}
}

// DrawText draws s starting at (x, y) without wrapping. Newlines move
// to the next row at the starting column.
func (b *CellBuffer) DrawText(s string, x, y int, fg, bg RGBA, attrs Attributes) {
	b.checkAlive("DrawText")
	col, row := x, y
	for _, line := range strings.Split(s, "\n") {
		for _, g := range SegmentGraphemes(line, b.widthMethod) {
			b.SetCell(col, row, g.Cluster, fg, bg, attrs)
			col += g.Width
		}
		col = x
		row++
	}
}

// FillRect paints a rectangle of blank cells in the given background,
// honoring the scissor stack and alpha.
func (b *CellBuffer) FillRect(x, y, w, h int, bg RGBA) {
	b.checkAlive("FillRect")
	for cy := y; cy < y+h; cy++ {
		for cx := x; cx < x+w; cx++ {
			if !b.inClip(cx, cy) {
				continue
			}
			existing := b.cells[b.index(cx, cy)]
			b.writeCell(cx, cy, blankCell(bg.BlendOver(existing.Bg)))
		}
	}
}

// DrawTextBuffer renders a TextBuffer's cached lines into b with the
// text origin at (x, y), clipped by clip (in b's coordinates) and the
// scissor stack.
func (b *CellBuffer) DrawTextBuffer(tb *TextBuffer, x, y int, defaultFg, defaultBg RGBA, clip *Rect) {
	b.checkAlive("DrawTextBuffer")
	tb.DrawInto(b, x, y, defaultFg, defaultBg, clip)
}

// DrawFrameBuffer blits src into b with its origin at (x, y),
// respecting b's scissor stack. If src carries alpha, each cell is
// composited per the blending rule: opaque source replaces, otherwise
// fg/bg blend over the destination and attributes merge by OR.
func (b *CellBuffer) DrawFrameBuffer(x, y int, src *CellBuffer) {
	b.checkAlive("DrawFrameBuffer")
	if src == nil || src.released {
		violated("DrawFrameBuffer", "source buffer does not exist")
	}
	for sy := 0; sy < src.height; sy++ {
		for sx := 0; sx < src.width; sx++ {
			sc := src.cells[src.index(sx, sy)]
			if sc.IsContinuation() {
				continue
			}
			dx, dy := x+sx, y+sy
			if !b.inClip(dx, dy) {
				continue
			}
			if sc.Width == 2 && !b.inClip(dx+1, dy) {
				continue
			}
			if src.respectAlpha && !(sc.Fg.IsOpaque() && sc.Bg.IsOpaque()) {
				dst := b.cells[b.index(dx, dy)]
				sc = Cell{
					Grapheme: sc.Grapheme,
					Width:    sc.Width,
					Fg:       sc.Fg.BlendOver(dst.Bg),
					Bg:       sc.Bg.BlendOver(dst.Bg),
					Attrs:    sc.Attrs | dst.Attrs,
				}
			}
			b.writeCell(dx, dy, sc)
			if sc.Width == 2 {
				b.writeCell(dx+1, dy, continuationCell(sc.Bg))
			}
		}
	}
}

// ToDebugString returns the grid's characters only, one row per line.
func (b *CellBuffer) ToDebugString() string {
	var sb strings.Builder
	for y := 0; y < b.height; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < b.width; x++ {
			c := b.cells[b.index(x, y)]
			if c.IsContinuation() {
				continue
			}
			sb.WriteString(c.Grapheme)
		}
	}
	return sb.String()
}

// bufferSnapshot is the wire form of a buffer for MarshalBinary.
type bufferSnapshot struct {
	Width, Height int
	Bg0           RGBA
	WidthMethod   WidthMethod
	RespectAlpha  bool
	Cells         []Cell
}

// MarshalBinary encodes the cell grid to bytes.
func (b *CellBuffer) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(bufferSnapshot{
		Width:        b.width,
		Height:       b.height,
		Bg0:          b.bg0,
		WidthMethod:  b.widthMethod,
		RespectAlpha: b.respectAlpha,
		Cells:        b.cells,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes bytes produced by MarshalBinary into b,
// replacing its contents.
func (b *CellBuffer) UnmarshalBinary(data []byte) error {
	var snap bufferSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	b.width = snap.Width
	b.height = snap.Height
	b.bg0 = snap.Bg0
	b.widthMethod = snap.WidthMethod
	b.respectAlpha = snap.RespectAlpha
	b.cells = snap.Cells
	if b.cells == nil {
		b.cells = []Cell{}
	}
	b.scissors = nil
	b.clip = b.bounds()
	b.released = false
	return nil
}
