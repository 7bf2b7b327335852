package opentui

// FocusManager routes keyboard input to a single focused renderable.
// It is owned by the RenderContext; there is no global instance.
type FocusManager struct {
	ctx     *RenderContext
	current Renderable
}

func newFocusManager(ctx *RenderContext) *FocusManager {
	return &FocusManager{ctx: ctx}
}

// Current returns the focused renderable, or nil.
func (m *FocusManager) Current() Renderable { return m.current }

// Focus moves focus to r, blurring the previous holder. Unfocusable
// and destroyed nodes are ignored.
func (m *FocusManager) Focus(r Renderable) {
	if r == nil {
		m.Blur()
		return
	}
	b := r.BaseNode()
	if !b.focusable || b.destroyed {
		return
	}
	if m.current == r {
		return
	}
	m.Blur()
	m.current = r
	b.focused = true
	b.RequestRender()
	m.ctx.bus.Emit(Event{Kind: EventFocused, Target: r})
}

// Blur clears focus, dispatching the blurred event to the previous
// holder.
func (m *FocusManager) Blur() {
	if m.current == nil {
		return
	}
	prev := m.current
	m.current = nil
	pb := prev.BaseNode()
	pb.focused = false
	if !pb.destroyed {
		pb.RequestRender()
	}
	m.ctx.bus.Emit(Event{Kind: EventBlurred, Target: prev})
}

// blur drops focus if r holds it, without re-entering Destroy.
func (m *FocusManager) blur(r Renderable) {
	if m.current == r {
		m.current = nil
		r.BaseNode().focused = false
		m.ctx.bus.Emit(Event{Kind: EventBlurred, Target: r})
	}
}

// DeliverKey hands a key to the focused renderable. Returns true when
// consumed.
func (m *FocusManager) DeliverKey(key *ParsedKey) bool {
	if m.current == nil {
		return false
	}
	consumed := m.current.HandleKeyPress(key)
	m.ctx.bus.Emit(Event{Kind: EventKey, Target: m.current, Key: key})
	return consumed
}

// DeliverPaste hands pasted text to the focused renderable.
func (m *FocusManager) DeliverPaste(text string) {
	if m.current != nil {
		m.current.OnPaste(text)
	}
	m.ctx.bus.Emit(Event{Kind: EventPaste, Target: m.current, Paste: text})
}
