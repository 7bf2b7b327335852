package opentui

// Tree structure operations. The layout-order child list and the
// solver's child list are kept identical in order and length; the
// z-order list holds the same children sorted for render walks.

// Add appends child, or inserts at index when given. A child already
// parented elsewhere is detached first. Adding under the same parent a
// child whose id already exists replaces the existing child (which is
// detached, not destroyed) with a warning.
func (b *Base) Add(child Renderable, index ...int) error {
	if b.destroyed {
		return &UnknownRenderableError{ID: b.id, Op: "Add"}
	}
	cb := child.BaseNode()
	if cb.destroyed {
		return &UnknownRenderableError{ID: cb.id, Op: "Add"}
	}
	idx := len(b.children)
	if len(index) > 0 {
		idx = index[0]
		if idx < 0 || idx > len(b.children) {
			return &InvalidArgumentError{Arg: "index", Reason: "child index out of range"}
		}
	}

	if existing, ok := b.byID[cb.id]; ok && existing != child {
		b.ctx.Logger().Warn("duplicate child id, replacing", "parent", b.id, "id", cb.id)
		at := b.childIndex(existing)
		b.detachChild(existing)
		if at < idx {
			idx--
		}
	}

	if cb.parent != nil {
		cb.parent.BaseNode().detachChild(child)
	}

	b.children = append(b.children, nil)
	copy(b.children[idx+1:], b.children[idx:])
	b.children[idx] = child
	b.zOrder = append(b.zOrder, child)
	b.zDirty = true
	b.byID[cb.id] = child
	cb.parent = b.self

	b.ln.InsertChild(cb.ln, idx)

	if n := cb.EffectiveLiveCount(); n > 0 {
		b.liveCount += n
		if b.visible {
			b.bubbleLive(n)
		}
	}

	b.RequestRender()
	return nil
}

// InsertBefore inserts child at the anchor's layout position. The
// anchor must be a current child.
func (b *Base) InsertBefore(child, anchor Renderable) error {
	idx := b.childIndex(anchor)
	if idx < 0 {
		return &UnknownAnchorError{Parent: b.id, Anchor: anchor.BaseNode().id}
	}
	return b.Add(child, idx)
}

// Remove detaches the child with the given id without destroying it;
// the caller may re-insert it elsewhere.
func (b *Base) Remove(id string) {
	child, ok := b.byID[id]
	if !ok {
		return
	}
	b.detachChild(child)
	b.RequestRender()
}

// GetRenderable returns the direct child with the given id, or nil.
func (b *Base) GetRenderable(id string) Renderable {
	return b.byID[id]
}

// FindDescendantByID searches the subtree pre-order and returns the
// first node with the given id, or nil.
func (b *Base) FindDescendantByID(id string) Renderable {
	for _, c := range b.children {
		cb := c.BaseNode()
		if cb.id == id {
			return c
		}
		if found := cb.FindDescendantByID(id); found != nil {
			return found
		}
	}
	return nil
}

func (b *Base) childIndex(child Renderable) int {
	for i, c := range b.children {
		if c == child {
			return i
		}
	}
	return -1
}

// detachChild unlinks a child from all three structures and the layout
// node, and rolls its live contribution out of the ancestor chain.
func (b *Base) detachChild(child Renderable) {
	idx := b.childIndex(child)
	if idx < 0 {
		return
	}
	cb := child.BaseNode()

	b.children = append(b.children[:idx], b.children[idx+1:]...)
	for i, c := range b.zOrder {
		if c == child {
			b.zOrder = append(b.zOrder[:i], b.zOrder[i+1:]...)
			break
		}
	}
	if b.byID[cb.id] == child {
		delete(b.byID, cb.id)
	}
	cb.parent = nil

	b.ln.RemoveChild(cb.ln)

	if n := cb.EffectiveLiveCount(); n > 0 {
		b.liveCount -= n
		if b.visible {
			b.bubbleLive(-n)
		}
	}
}

// Destroy irreversibly tears the node down: the owned framebuffer is
// released, the layout handle freed, listeners removed, and all
// children destroyed. A second call is a no-op.
func (b *Base) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true

	if b.focused {
		b.ctx.focus.blur(b.self)
	}
	if b.lifecycleHook != nil {
		b.ctx.unregisterLifecycle(b)
		b.lifecycleHook = nil
	}

	if b.parent != nil {
		b.parent.BaseNode().detachChild(b.self)
	}

	// Children are owned exclusively; destroying the parent destroys
	// the subtree.
	kids := b.children
	b.children = nil
	b.zOrder = nil
	for _, c := range kids {
		cb := c.BaseNode()
		cb.parent = nil
		c.BaseNode().Destroy()
	}
	b.byID = nil

	if b.frame != nil {
		b.frame.Release()
		b.frame = nil
	}
	b.ln.Free()
	b.ctx.unregister(b.num)
}
