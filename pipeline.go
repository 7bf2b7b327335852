package opentui

import "time"

// renderCommandKind tags entries in the per-frame render-list.
type renderCommandKind uint8

const (
	cmdRender renderCommandKind = iota
	cmdPushScissor
	cmdPopScissor
)

type renderCommand struct {
	kind renderCommandKind
	node Renderable
	rect Rect
}

// Pipeline turns the renderable tree into pixels-on-cells each frame:
// lifecycle hooks, one global layout solve, a pre-order z-ordered walk
// that records a render-list with scissor commands, then a draw pass
// executing the list into the next buffer while filling the hit grid.
type Pipeline struct {
	ctx  *RenderContext
	hits *HitGrid

	list []renderCommand
	// clip stack mirrored during draw for hit-grid clipping
	clips []Rect

	// skipHit is the captured renderable's num; it is left out of the
	// grid so it only receives events through the capture path.
	skipHit int64
}

// NewPipeline creates a pipeline rendering into a hit grid of the
// given size.
func NewPipeline(ctx *RenderContext, width, height int) *Pipeline {
	return &Pipeline{ctx: ctx, hits: NewHitGrid(width, height)}
}

// HitGrid exposes the spatial index for the router.
func (p *Pipeline) HitGrid() *HitGrid { return p.hits }

// Resize resizes the hit grid to a new render area.
func (p *Pipeline) Resize(width, height int) { p.hits.Resize(width, height) }

// SetCapturedNum marks a renderable to skip during hit-grid fill.
// Zero clears.
func (p *Pipeline) SetCapturedNum(num int64) { p.skipHit = num }

// RenderFrame runs passes 0–3 for one frame, drawing into buf.
func (p *Pipeline) RenderFrame(root *Base, buf *CellBuffer, dt time.Duration) {
	// Pass 0: lifecycle hooks, registration order.
	p.ctx.runLifecycleHooks(dt)

	// Pass 1: one global solve when anything dirtied the layout.
	if root.ln.IsDirty() {
		root.ln.CalculateLayout(float64(buf.Width()), float64(buf.Height()))
	}

	// Pass 2: layout update and render-list construction.
	p.list = p.list[:0]
	p.walk(root.self, 0, 0, dt)

	// Pass 3: draw.
	p.hits.Clear()
	p.clips = p.clips[:0]
	pushes, pops := 0, 0
	for _, cmd := range p.list {
		switch cmd.kind {
		case cmdPushScissor:
			buf.PushScissorRect(cmd.rect.X, cmd.rect.Y, cmd.rect.W, cmd.rect.H)
			p.clips = append(p.clips, p.currentClip().Intersect(cmd.rect))
			pushes++
		case cmdPopScissor:
			buf.PopScissorRect()
			p.clips = p.clips[:len(p.clips)-1]
			pops++
		case cmdRender:
			p.draw(cmd.node, buf, dt)
		}
	}
	if pushes != pops || len(p.clips) != 0 {
		violated("RenderFrame", "unbalanced scissor commands in render-list")
	}
}

func (p *Pipeline) currentClip() Rect {
	if len(p.clips) == 0 {
		return Rect{W: p.hits.width, H: p.hits.height}
	}
	return p.clips[len(p.clips)-1]
}

// walk performs the pass-2 pre-order traversal in z-order at each
// level.
func (p *Pipeline) walk(node Renderable, parentX, parentY int, dt time.Duration) {
	b := node.BaseNode()
	if b.destroyed || !b.visible {
		return
	}

	node.OnUpdate(dt)
	if b.updateFromLayout(parentX, parentY) {
		node.OnLayoutResize(b.width, b.height)
	}

	p.list = append(p.list, renderCommand{kind: cmdRender, node: node})

	children := b.ZOrderedChildren()
	if b.overflow != OverflowVisible && b.width > 0 && b.height > 0 {
		p.list = append(p.list, renderCommand{kind: cmdPushScissor, rect: b.Bounds()})
		for _, c := range children {
			p.walk(c, b.x, b.y, dt)
		}
		p.list = append(p.list, renderCommand{kind: cmdPopScissor})
	} else {
		for _, c := range children {
			p.walk(c, b.x, b.y, dt)
		}
	}
}

// draw executes one render command: buffered nodes draw into their
// private framebuffer which is then blitted at the node origin, plain
// nodes draw straight into the main buffer. Either way the node then
// stamps the hit grid, unless captured.
func (p *Pipeline) draw(node Renderable, buf *CellBuffer, dt time.Duration) {
	b := node.BaseNode()
	if b.buffered {
		if fb := b.FrameBuffer(); fb != nil {
			if b.dirty {
				fb.Clear(Transparent)
				// The framebuffer's origin is the node's origin; make
				// the node see itself at (0,0) while it draws.
				ox, oy := b.x, b.y
				b.x, b.y = 0, 0
				node.RenderSelf(fb, dt)
				b.x, b.y = ox, oy
			}
			buf.DrawFrameBuffer(b.x, b.y, fb)
		}
	} else {
		node.RenderSelf(buf, dt)
	}
	b.dirty = false

	if b.num != p.skipHit && b.width > 0 && b.height > 0 {
		clip := p.currentClip()
		p.hits.FillRect(b.Bounds(), &clip, b.num)
	}
}
