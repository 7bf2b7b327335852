package opentui

// Point is a terminal cell coordinate.
type Point struct {
	X, Y int
}

// before reports whether p precedes o in reading order (row-major).
func (p Point) before(o Point) bool {
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.X <= o.X
}

// Selection is a text selection across the renderable tree. Anchor is
// where the drag started, Focus follows the pointer. Both are kept as
// dragged; Normalized returns them in reading order for dispatch.
type Selection struct {
	Anchor Point
	Focus  Point

	IsActive    bool
	IsSelecting bool

	selected []Renderable
}

// Normalized returns the endpoints in reading order.
func (s *Selection) Normalized() (start, end Point) {
	if s.Anchor.before(s.Focus) {
		return s.Anchor, s.Focus
	}
	return s.Focus, s.Anchor
}

// SelectedRenderables returns the nodes that reported selected content
// on the last dispatch.
func (s *Selection) SelectedRenderables() []Renderable { return s.selected }

// Text concatenates the selected text of every selected renderable,
// one line per node.
func (s *Selection) Text() string {
	out := ""
	for i, r := range s.selected {
		if i > 0 {
			out += "\n"
		}
		out += r.GetSelectedText()
	}
	return out
}

// selectionTracker implements the drag state machine: the container
// stack scopes which selectables receive the live selection. The stack
// is stored innermost first; entry i+1 is an ancestor of entry i. It
// only grows outward during a drag, but truncates back when the
// pointer returns inside an inner container.
type selectionTracker struct {
	ctx        *RenderContext
	sel        Selection
	containers []Renderable
}

func newSelectionTracker(ctx *RenderContext) *selectionTracker {
	return &selectionTracker{ctx: ctx}
}

// Active reports whether a selection exists (possibly finished).
func (t *selectionTracker) Active() bool { return t.sel.IsActive }

// Selecting reports whether a drag is in progress.
func (t *selectionTracker) Selecting() bool { return t.sel.IsSelecting }

// Selection returns the current selection state.
func (t *selectionTracker) Selection() *Selection { return &t.sel }

// Containers returns the container stack, innermost first.
func (t *selectionTracker) Containers() []Renderable { return t.containers }

// scope is the container currently scoping dispatch: the widest pushed
// so far.
func (t *selectionTracker) scope() Renderable {
	if len(t.containers) == 0 {
		return nil
	}
	return t.containers[len(t.containers)-1]
}

// Start begins a selection at the node under the pointer. The starting
// node's parent seeds the container stack.
func (t *selectionTracker) Start(node Renderable, x, y int, root Renderable) {
	t.sel = Selection{
		Anchor:      Point{X: x, Y: y},
		Focus:       Point{X: x, Y: y},
		IsActive:    true,
		IsSelecting: true,
	}
	t.containers = t.containers[:0]
	container := root
	if node != nil && node.BaseNode().Parent() != nil {
		container = node.BaseNode().Parent()
	}
	if container != nil {
		t.containers = append(t.containers, container)
	}
	t.dispatch(root)
}

// Update advances the focus endpoint during a drag and adjusts the
// container stack for the node now under the pointer.
func (t *selectionTracker) Update(hit Renderable, x, y int, root Renderable) {
	if !t.sel.IsSelecting {
		return
	}
	t.sel.Focus = Point{X: x, Y: y}

	if hit != nil && len(t.containers) > 0 {
		// Shrink: the pointer returned inside an inner container.
		trimmed := false
		for i, c := range t.containers {
			if isWithin(hit, c) {
				t.containers = t.containers[:i+1]
				trimmed = true
				break
			}
		}
		// Grow: the pointer escaped every pushed container; widen the
		// scope one ancestor at a time.
		if !trimmed {
			for {
				top := t.scope()
				if top == nil || isWithin(hit, top) {
					break
				}
				parent := top.BaseNode().Parent()
				if parent == nil {
					break
				}
				t.containers = append(t.containers, parent)
			}
		}
	}

	t.dispatch(root)
}

// Finish ends the drag and returns the final selection.
func (t *selectionTracker) Finish() *Selection {
	if !t.sel.IsActive {
		return nil
	}
	t.sel.IsSelecting = false
	return &t.sel
}

// Clear deactivates the selection and tells every previously selected
// node to drop its highlight.
func (t *selectionTracker) Clear(root Renderable) {
	if !t.sel.IsActive {
		return
	}
	t.sel.IsActive = false
	t.sel.IsSelecting = false
	t.dispatch(root)
	t.sel.selected = nil
	t.containers = t.containers[:0]
}

// dispatch walks every visible selectable renderable: nodes within the
// scope container receive the normalized selection, everyone else an
// inactive copy so stale highlights clear. Nodes reporting selected
// content are collected.
func (t *selectionTracker) dispatch(root Renderable) {
	if root == nil {
		return
	}
	t.sel.selected = t.sel.selected[:0]
	scope := t.scope()
	walkVisible(root, func(r Renderable) {
		if !r.BaseNode().Selectable() {
			return
		}
		if t.sel.IsActive && scope != nil && isWithin(r, scope) {
			if r.OnSelectionChanged(&t.sel) {
				t.sel.selected = append(t.sel.selected, r)
			}
			return
		}
		inactive := t.sel
		inactive.IsActive = false
		r.OnSelectionChanged(&inactive)
	})
}

// isWithin reports whether node is container or one of its
// descendants.
func isWithin(node, container Renderable) bool {
	for r := node; r != nil; r = r.BaseNode().Parent() {
		if r == container {
			return true
		}
	}
	return false
}

// walkVisible runs fn over the visible tree pre-order.
func walkVisible(r Renderable, fn func(Renderable)) {
	b := r.BaseNode()
	if !b.Visible() || b.Destroyed() {
		return
	}
	fn(r)
	for _, c := range b.Children() {
		walkVisible(c, fn)
	}
}
