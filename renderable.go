package opentui

import (
	"sort"
	"time"

	"github.com/zephraph/opentui/layout"
)

// Overflow controls whether children may draw outside a node's box.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
)

// Renderable is the capability set the engine needs from a node in the
// tree. Concrete kinds embed *Base and shadow the methods they care
// about; the engine only ever talks to this interface.
type Renderable interface {
	// BaseNode exposes the node's tree, geometry and state machinery.
	BaseNode() *Base

	// RenderSelf draws the node into buf at its absolute position.
	// Buffered nodes receive their private framebuffer instead.
	RenderSelf(buf *CellBuffer, dt time.Duration)
	// OnUpdate runs during the layout pass, before geometry is read.
	OnUpdate(dt time.Duration)
	// OnLayoutResize fires when the computed size changes.
	OnLayoutResize(width, height int)

	// OnMouseEvent receives routed pointer events during bubbling.
	OnMouseEvent(ev *MouseEvent)
	// HandleKeyPress receives keys while focused; return true to
	// consume.
	HandleKeyPress(key *ParsedKey) bool
	// OnPaste receives bracketed-paste text while focused.
	OnPaste(text string)

	// ShouldStartSelection reports whether a left press at the given
	// cell starts a text selection.
	ShouldStartSelection(x, y int) bool
	// OnSelectionChanged receives selection updates; return true if
	// the node now contains selected content.
	OnSelectionChanged(sel *Selection) bool
	// GetSelectedText returns the node's selected text.
	GetSelectedText() string
}

// EdgeValues are per-edge layout values (margin, padding).
type EdgeValues struct {
	Top, Right, Bottom, Left layout.Value
}

// EdgeSizes are per-edge cell counts (border thickness).
type EdgeSizes struct {
	Top, Right, Bottom, Left int
}

// Options configures a renderable at creation. Zero values mean the
// documented defaults: auto size, no flex growth, relative position,
// visible, overflow visible, z-index 0.
type Options struct {
	Width, Height       layout.Value
	MinWidth, MinHeight layout.Value
	MaxWidth, MaxHeight layout.Value

	FlexGrow      float64
	FlexShrink    *float64 // nil = 1
	FlexBasis     layout.Value
	FlexDirection layout.Direction
	FlexWrap      layout.Wrap
	AlignItems    layout.Align
	AlignSelf     layout.Align
	Justify       layout.Justify

	Position                 layout.PositionType
	Top, Right, Bottom, Left layout.Value

	Margin  EdgeValues
	Padding EdgeValues
	Border  EdgeSizes

	Overflow   Overflow
	ZIndex     int
	Hidden     bool
	TranslateX int
	TranslateY int

	Buffered   bool
	Focusable  bool
	Selectable bool
	Live       bool
}

// Base is the concrete node state shared by all renderable kinds. It
// implements Renderable with do-nothing defaults so kinds override
// only what they need.
type Base struct {
	ctx  *RenderContext
	self Renderable

	id  string
	num int64

	parent   Renderable
	children []Renderable // layout order (insertion order)
	zOrder   []Renderable // sorted by zIndex, stable by insertion
	byID     map[string]Renderable
	zDirty   bool

	ln *layout.Node

	// computed geometry (absolute cell coordinates)
	x, y          int
	width, height int

	translateX, translateY int
	overflow               Overflow
	zIndex                 int
	visible                bool

	dirty      bool
	buffered   bool
	frame      *CellBuffer
	focusable  bool
	focused    bool
	selectable bool

	live      bool
	liveCount int // live descendants incl self, ignoring own visibility

	destroyed bool

	lifecycleHook func(dt time.Duration)
}

// NewBase creates a detached node. The id must be unique among its
// future siblings.
func NewBase(ctx *RenderContext, id string, opts Options) *Base {
	b := &Base{
		ctx:        ctx,
		id:         id,
		byID:       make(map[string]Renderable),
		ln:         layout.NewNode(),
		overflow:   opts.Overflow,
		zIndex:     opts.ZIndex,
		visible:    !opts.Hidden,
		translateX: opts.TranslateX,
		translateY: opts.TranslateY,
		buffered:   opts.Buffered,
		focusable:  opts.Focusable,
		selectable: opts.Selectable,
		live:       opts.Live,
		dirty:      true,
	}
	if opts.Live {
		b.liveCount = 1
	}
	b.num = ctx.register(b)
	b.self = b
	b.applyLayoutOptions(opts)
	return b
}

// Bind attaches the concrete kind so the engine dispatches interface
// calls to it rather than to the embedded Base. Kinds call it once,
// right after constructing themselves.
func (b *Base) Bind(self Renderable) {
	b.self = self
	b.ctx.bindSelf(b.num, self)
}

// Identity and state accessors.

func (b *Base) ID() string               { return b.id }
func (b *Base) Num() int64               { return b.num }
func (b *Base) Context() *RenderContext  { return b.ctx }
func (b *Base) Parent() Renderable       { return b.parent }
func (b *Base) LayoutNode() *layout.Node { return b.ln }
func (b *Base) Destroyed() bool          { return b.destroyed }
func (b *Base) Visible() bool            { return b.visible }
func (b *Base) Focusable() bool          { return b.focusable }
func (b *Base) Focused() bool            { return b.focused }
func (b *Base) Selectable() bool         { return b.selectable }
func (b *Base) Buffered() bool           { return b.buffered }
func (b *Base) ZIndex() int              { return b.zIndex }
func (b *Base) Dirty() bool              { return b.dirty }

// X returns the absolute column of the node's left edge.
func (b *Base) X() int { return b.x }

// Y returns the absolute row of the node's top edge.
func (b *Base) Y() int { return b.y }

// Width returns the computed width in cells.
func (b *Base) Width() int { return b.width }

// Height returns the computed height in cells.
func (b *Base) Height() int { return b.height }

// Bounds returns the node's absolute rectangle.
func (b *Base) Bounds() Rect { return Rect{X: b.x, Y: b.y, W: b.width, H: b.height} }

// ContainsPoint reports whether the absolute cell lies inside the
// node.
func (b *Base) ContainsPoint(x, y int) bool { return b.Bounds().Contains(x, y) }

// ChildCount returns the number of children.
func (b *Base) ChildCount() int { return len(b.children) }

// Children returns the layout-order child list. The slice is shared;
// callers must not mutate it.
func (b *Base) Children() []Renderable { return b.children }

// ZOrderedChildren returns children sorted by z-index, re-sorting if a
// child's z-index changed since the last walk. Ties keep insertion
// order.
func (b *Base) ZOrderedChildren() []Renderable {
	if b.zDirty {
		b.zOrder = append(b.zOrder[:0], b.children...)
		sort.SliceStable(b.zOrder, func(i, j int) bool {
			return b.zOrder[i].BaseNode().zIndex < b.zOrder[j].BaseNode().zIndex
		})
		b.zDirty = false
	}
	return b.zOrder
}

// RequestRender marks the node dirty and wakes the scheduler.
func (b *Base) RequestRender() {
	if b.destroyed {
		return
	}
	b.dirty = true
	b.ctx.requestRender()
}

// SetVisible toggles visibility, updating the ancestors' live counts.
func (b *Base) SetVisible(v bool) {
	if b.destroyed || b.visible == v {
		return
	}
	b.visible = v
	if b.liveCount > 0 {
		delta := b.liveCount
		if !v {
			delta = -delta
		}
		b.bubbleLive(delta)
	}
	b.RequestRender()
}

// SetLive marks the node as needing per-frame ticking.
func (b *Base) SetLive(live bool) {
	if b.destroyed || b.live == live {
		return
	}
	b.live = live
	delta := 1
	if !live {
		delta = -1
	}
	b.liveCount += delta
	if b.visible {
		b.bubbleLive(delta)
	}
}

// Live reports whether this node itself is live.
func (b *Base) Live() bool { return b.live }

// LiveCount returns the number of live nodes in this subtree that are
// visible on their path from this node.
func (b *Base) LiveCount() int {
	return b.liveCount
}

// EffectiveLiveCount is the contribution this subtree makes to its
// parent: zero while hidden.
func (b *Base) EffectiveLiveCount() int {
	if !b.visible {
		return 0
	}
	return b.liveCount
}

// bubbleLive propagates a live-count delta up the parent chain,
// stopping at hidden ancestors. The root edge (0→1, 1→0) drives the
// scheduler.
func (b *Base) bubbleLive(delta int) {
	node := b.parent
	prev := b
	for node != nil {
		nb := node.BaseNode()
		nb.liveCount += delta
		if !nb.visible {
			return
		}
		prev = nb
		node = nb.parent
	}
	b.ctx.rootLiveChanged(prev)
}

// SetZIndex changes stacking order among siblings.
func (b *Base) SetZIndex(z int) {
	if b.zIndex == z {
		return
	}
	b.zIndex = z
	if b.parent != nil {
		b.parent.BaseNode().zDirty = true
	}
	b.RequestRender()
}

// SetTranslate sets the post-layout offset used for cheap scrolling.
func (b *Base) SetTranslate(dx, dy int) {
	if b.translateX == dx && b.translateY == dy {
		return
	}
	b.translateX = dx
	b.translateY = dy
	b.RequestRender()
}

// SetOverflow changes clipping behavior for children.
func (b *Base) SetOverflow(o Overflow) {
	if b.overflow == o {
		return
	}
	b.overflow = o
	b.RequestRender()
}

// SetFocusable toggles keyboard focus eligibility.
func (b *Base) SetFocusable(f bool) { b.focusable = f }

// SetSelectable toggles text-selection participation.
func (b *Base) SetSelectable(s bool) { b.selectable = s }

// SetLifecycleHook registers a hook invoked at the start of every
// frame, in registration order across the tree. A nil fn unregisters.
func (b *Base) SetLifecycleHook(fn func(dt time.Duration)) {
	if b.lifecycleHook != nil {
		b.ctx.unregisterLifecycle(b)
	}
	b.lifecycleHook = fn
	if fn != nil {
		b.ctx.registerLifecycle(b)
	}
}

// FrameBuffer returns the node's private buffer, allocating it on
// first use for buffered nodes.
func (b *Base) FrameBuffer() *CellBuffer {
	if !b.buffered || b.destroyed {
		return nil
	}
	if b.frame == nil && b.width > 0 && b.height > 0 {
		fb, err := NewCellBuffer(b.width, b.height,
			WithWidthMethod(b.ctx.WidthMethod()), WithRespectAlpha(true))
		if err != nil {
			return nil
		}
		b.frame = fb
	}
	return b.frame
}

// Default Renderable implementation; kinds shadow what they need.

func (b *Base) BaseNode() *Base                           { return b }
func (b *Base) RenderSelf(buf *CellBuffer, dt time.Duration) {}
func (b *Base) OnUpdate(dt time.Duration)                {}
func (b *Base) OnMouseEvent(ev *MouseEvent)              {}
func (b *Base) HandleKeyPress(key *ParsedKey) bool       { return false }
func (b *Base) OnPaste(text string)                      {}
func (b *Base) ShouldStartSelection(x, y int) bool       { return b.selectable }
func (b *Base) OnSelectionChanged(sel *Selection) bool   { return false }
func (b *Base) GetSelectedText() string                  { return "" }

// OnLayoutResize resizes the private framebuffer to the new geometry.
func (b *Base) OnLayoutResize(width, height int) {
	if b.frame != nil {
		_ = b.frame.Resize(width, height)
	}
}
