package opentui

import (
	"io"
	"strings"
)

// PresentStats reports what one Present emitted.
type PresentStats struct {
	CellsChanged int
	BytesEmitted int
}

// Compositor owns the double-buffered screen: the tree draws into the
// next buffer, Present diffs it against the current buffer, writes the
// minimal escape-sequence delta to the terminal, and swaps. No output
// is observable until the swap.
type Compositor struct {
	out          io.Writer
	current      *CellBuffer
	next         *CellBuffer
	renderOffset int
	forceRedraw  bool

	// reused across frames
	changes []CellChange
	runs    []CellRun
	sb      strings.Builder
}

// NewCompositor creates a compositor writing to out.
func NewCompositor(out io.Writer, width, height int, opts ...BufferOption) (*Compositor, error) {
	current, err := NewCellBuffer(width, height, opts...)
	if err != nil {
		return nil, err
	}
	next, err := NewCellBuffer(width, height, opts...)
	if err != nil {
		return nil, err
	}
	c := &Compositor{out: out, current: current, next: next, forceRedraw: true}
	return c, nil
}

// NextBuffer returns the buffer the coming frame draws into.
func (c *Compositor) NextBuffer() *CellBuffer { return c.next }

// CurrentBuffer returns the buffer holding what is on screen.
func (c *Compositor) CurrentBuffer() *CellBuffer { return c.current }

// Width returns the screen width in cells.
func (c *Compositor) Width() int { return c.next.Width() }

// Height returns the screen height in cells.
func (c *Compositor) Height() int { return c.next.Height() }

// SetRenderOffset shifts all emitted rows down by the given amount.
// Split mode uses this to pin the TUI to the bottom of the terminal.
func (c *Compositor) SetRenderOffset(rows int) {
	if rows != c.renderOffset {
		c.renderOffset = rows
		c.forceRedraw = true
	}
}

// RenderOffset returns the current row offset.
func (c *Compositor) RenderOffset() int { return c.renderOffset }

// Resize reallocates both buffers. The next Present repaints fully.
func (c *Compositor) Resize(width, height int) error {
	if err := c.current.Resize(width, height); err != nil {
		return err
	}
	if err := c.next.Resize(width, height); err != nil {
		return err
	}
	c.forceRedraw = true
	return nil
}

// ForceRedraw makes the next Present emit every cell.
func (c *Compositor) ForceRedraw() { c.forceRedraw = true }

// Release drops both buffers. Present afterwards is an invariant
// violation.
func (c *Compositor) Release() {
	c.current.Release()
	c.next.Release()
}

// invalidateCurrent poisons the current buffer so every cell diffs as
// changed.
func (c *Compositor) invalidateCurrent() {
	for i := range c.current.cells {
		c.current.cells[i] = Cell{Grapheme: "\x00", Width: 1}
	}
}

// Present diffs the next buffer against the current one, writes the
// delta, and swaps. The cursor is moved only between non-contiguous
// runs and SGR state is switched only when it differs from the
// previous emitted cell.
func (c *Compositor) Present() (PresentStats, error) {
	if c.next.released || c.current.released {
		violated("Present", "compositor buffers have been released")
	}
	c.sb.Reset()
	if c.forceRedraw {
		c.invalidateCurrent()
		c.sb.WriteString(ClearScreen())
		c.forceRedraw = false
	}

	c.changes = DiffBuffersInto(c.current, c.next, c.changes[:0])
	c.runs = FindRunsInto(c.changes, c.runs[:0])

	if len(c.runs) > 0 {
		var prev Cell
		havePrev := false
		for _, run := range c.runs {
			c.sb.WriteString(MoveCursor(run.X, run.Y+c.renderOffset))
			for _, cell := range run.Cells {
				if !havePrev || !sameStyle(prev, cell) {
					c.sb.WriteString(resetStr)
					styleToAnsi(cell, &c.sb)
					prev = cell
					havePrev = true
				}
				c.sb.WriteString(cell.Grapheme)
			}
		}
		c.sb.WriteString(resetStr)
	}

	stats := PresentStats{CellsChanged: len(c.changes), BytesEmitted: c.sb.Len()}
	if c.sb.Len() > 0 {
		if _, err := io.WriteString(c.out, c.sb.String()); err != nil {
			return stats, wrapIO(err, "terminal write failed")
		}
	}

	c.current, c.next = c.next, c.current
	return stats, nil
}
