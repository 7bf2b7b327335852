package layout

// Box is a computed layout result. Coordinates are relative to the
// parent's border box and are whole cells.
type Box struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Node is one solver node. Nodes form a tree mirroring the renderable
// tree; style setters mark the node dirty and dirtiness propagates to
// the root so the next CalculateLayout re-solves.
type Node struct {
	style    style
	parent   *Node
	children []*Node
	measure  MeasureFunc

	dirty bool

	// solved geometry in float cells, rounded into computed at the
	// end of a solve
	resultLeft   float64
	resultTop    float64
	resultWidth  float64
	resultHeight float64

	computed Box
}

// NewNode returns a node with flexbox defaults suitable for a terminal:
// column direction, stretch cross alignment, no web margins.
func NewNode() *Node {
	return &Node{style: defaultStyle(), dirty: true}
}

// Parent returns the node's parent, or nil.
func (n *Node) Parent() *Node { return n.parent }

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// InsertChild inserts child at index, detaching it from any previous
// parent first.
func (n *Node) InsertChild(child *Node, index int) {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	if index < 0 {
		index = 0
	}
	if index > len(n.children) {
		index = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	child.parent = n
	n.MarkDirty()
}

// RemoveChild detaches child from n. A node that is not a child is a
// no-op.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			n.MarkDirty()
			return
		}
	}
}

// Free detaches the node from its parent and drops its children. The
// node must not be used afterwards.
func (n *Node) Free() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.measure = nil
}

// MarkDirty flags the node and its ancestors as needing a re-solve.
func (n *Node) MarkDirty() {
	n.dirty = true
	for p := n.parent; p != nil; p = p.parent {
		p.dirty = true
	}
}

// IsDirty reports whether the node needs a re-solve.
func (n *Node) IsDirty() bool { return n.dirty }

// SetMeasureFunc installs an intrinsic measure function. Only leaf
// nodes may carry one.
func (n *Node) SetMeasureFunc(fn MeasureFunc) {
	n.measure = fn
	n.MarkDirty()
}

// Layout returns the computed box from the last solve.
func (n *Node) Layout() Box { return n.computed }

// Style setters. Each marks the node dirty.

func (n *Node) SetDirection(d Direction)  { n.style.direction = d; n.MarkDirty() }
func (n *Node) SetWrap(w Wrap)            { n.style.wrap = w; n.MarkDirty() }
func (n *Node) SetJustify(j Justify)      { n.style.justify = j; n.MarkDirty() }
func (n *Node) SetAlignItems(a Align)     { n.style.alignItems = a; n.MarkDirty() }
func (n *Node) SetAlignSelf(a Align)      { n.style.alignSelf = a; n.MarkDirty() }
func (n *Node) SetPositionType(p PositionType) {
	n.style.positionType = p
	n.MarkDirty()
}

func (n *Node) SetWidth(v Value)     { n.style.width = v; n.MarkDirty() }
func (n *Node) SetHeight(v Value)    { n.style.height = v; n.MarkDirty() }
func (n *Node) SetMinWidth(v Value)  { n.style.minWidth = v; n.MarkDirty() }
func (n *Node) SetMinHeight(v Value) { n.style.minHeight = v; n.MarkDirty() }
func (n *Node) SetMaxWidth(v Value)  { n.style.maxWidth = v; n.MarkDirty() }
func (n *Node) SetMaxHeight(v Value) { n.style.maxHeight = v; n.MarkDirty() }

func (n *Node) SetFlexGrow(g float64)   { n.style.flexGrow = g; n.MarkDirty() }
func (n *Node) SetFlexShrink(s float64) { n.style.flexShrink = s; n.MarkDirty() }
func (n *Node) SetFlexBasis(v Value)    { n.style.flexBasis = v; n.MarkDirty() }
func (n *Node) SetGap(g float64)        { n.style.gap = g; n.MarkDirty() }

func (n *Node) SetPosition(e Edge, v Value) { n.style.position[e] = v; n.MarkDirty() }
func (n *Node) SetMargin(e Edge, v Value)   { n.style.margin[e] = v; n.MarkDirty() }
func (n *Node) SetPadding(e Edge, v Value)  { n.style.padding[e] = v; n.MarkDirty() }
func (n *Node) SetBorder(e Edge, w float64) { n.style.border[e] = w; n.MarkDirty() }
