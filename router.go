package opentui

// mouseRouter resolves raw mouse events against the hit grid and
// dispatches them through the tree: over/out synthesis, capture for
// drags, drop delivery, selection tracking, and bubbling up the parent
// chain with propagation control.
type mouseRouter struct {
	ctx       *RenderContext
	pipeline  *Pipeline
	selection *selectionTracker

	prevTarget  Renderable
	pressTarget Renderable
	captured    Renderable
}

func newMouseRouter(ctx *RenderContext, p *Pipeline, sel *selectionTracker) *mouseRouter {
	return &mouseRouter{ctx: ctx, pipeline: p, selection: sel}
}

// reset clears transient pointer state; called on resize and when
// mouse reporting is disabled.
func (r *mouseRouter) reset() {
	r.prevTarget = nil
	r.pressTarget = nil
	r.setCaptured(nil)
}

func (r *mouseRouter) setCaptured(c Renderable) {
	r.captured = c
	if c == nil {
		r.pipeline.SetCapturedNum(0)
	} else {
		r.pipeline.SetCapturedNum(c.BaseNode().Num())
	}
}

func (r *mouseRouter) hitAt(x, y int) Renderable {
	num := r.pipeline.HitGrid().HitTest(x, y)
	if num == 0 {
		return nil
	}
	target := r.ctx.LookupRenderable(num)
	if target == nil || target.BaseNode().Destroyed() {
		return nil
	}
	return target
}

// HandleMouse routes one raw event. Coordinates must already be
// adjusted by the render offset.
func (r *mouseRouter) HandleMouse(raw *RawMouseEvent, root Renderable) {
	// Scroll goes straight to the node under the wheel.
	if raw.Type == MouseScroll {
		target := r.hitAt(raw.X, raw.Y)
		if target != nil {
			r.bubble(target, r.eventFromRaw(raw, nil))
		}
		return
	}

	target := r.hitAt(raw.X, raw.Y)

	// Capture starts on the first left-button drag, before over/out
	// synthesis so the captured node never sees its own out.
	if raw.Type == MouseDrag && raw.Button == MouseButtonLeft &&
		r.captured == nil && !r.selection.Selecting() {
		capture := r.pressTarget
		if capture == nil {
			capture = target
		}
		if capture != nil {
			r.setCaptured(capture)
		}
	}

	r.synthesizeOverOut(raw, target)

	switch raw.Type {
	case MouseDown:
		r.pressTarget = target
		if raw.Button == MouseButtonLeft && target != nil && target.ShouldStartSelection(raw.X, raw.Y) {
			r.selection.Start(target, raw.X, raw.Y, root)
			return
		}
		r.selection.Clear(root)
		if r.captured != nil {
			r.bubbleOrDeliver(raw, target)
			return
		}
		if target != nil {
			r.bubble(target, r.eventFromRaw(raw, nil))
		}

	case MouseDrag:
		if r.selection.Selecting() {
			r.selection.Update(target, raw.X, raw.Y, root)
			return
		}
		r.bubbleOrDeliver(raw, target)

	case MouseUp:
		if r.selection.Selecting() {
			if sel := r.selection.Finish(); sel != nil {
				r.ctx.bus.Emit(Event{Kind: EventSelection, Selection: sel})
			}
			r.pressTarget = nil
			return
		}
		if r.captured != nil {
			captured := r.captured
			dragEnd := r.eventFromRaw(raw, nil)
			dragEnd.Type = MouseDragEnd
			captured.OnMouseEvent(dragEnd)
			captured.OnMouseEvent(r.eventFromRaw(raw, nil))
			if target != nil && target != captured {
				drop := r.eventFromRaw(raw, captured)
				drop.Type = MouseDrop
				r.bubble(target, drop)
			}
			r.setCaptured(nil)
			r.pressTarget = nil
			return
		}
		r.pressTarget = nil
		if target != nil {
			r.bubble(target, r.eventFromRaw(raw, nil))
		}

	default: // move
		r.bubbleOrDeliver(raw, target)
	}
}

// bubbleOrDeliver honors capture: while a renderable is captured,
// non-up events go only to it; otherwise the event bubbles from the
// hit target.
func (r *mouseRouter) bubbleOrDeliver(raw *RawMouseEvent, target Renderable) {
	if r.captured != nil {
		r.captured.OnMouseEvent(r.eventFromRaw(raw, nil))
		return
	}
	if target != nil {
		r.bubble(target, r.eventFromRaw(raw, nil))
	}
}

// synthesizeOverOut fires out on the node the pointer left and over on
// the one it entered. During a capture the out for the captured node
// itself is suppressed and over events carry it as the drag source.
func (r *mouseRouter) synthesizeOverOut(raw *RawMouseEvent, target Renderable) {
	if raw.Type != MouseMove && raw.Type != MouseDrag {
		if raw.Type == MouseDown {
			r.prevTarget = target
		}
		return
	}
	if target == r.prevTarget {
		return
	}
	if r.prevTarget != nil && !r.prevTarget.BaseNode().Destroyed() && r.prevTarget != r.captured {
		out := r.eventFromRaw(raw, r.captured)
		out.Type = MouseOut
		r.bubble(r.prevTarget, out)
	}
	if target != nil {
		over := r.eventFromRaw(raw, r.captured)
		over.Type = MouseOver
		r.bubble(target, over)
	}
	r.prevTarget = target
}

func (r *mouseRouter) eventFromRaw(raw *RawMouseEvent, source Renderable) *MouseEvent {
	return &MouseEvent{
		Type:      raw.Type,
		Button:    raw.Button,
		X:         raw.X,
		Y:         raw.Y,
		Modifiers: raw.Modifiers,
		Scroll:    raw.Scroll,
		Source:    source,
	}
}

// bubble walks from target up the parent chain until a handler stops
// propagation.
func (r *mouseRouter) bubble(target Renderable, ev *MouseEvent) {
	for node := target; node != nil; node = node.BaseNode().Parent() {
		node.OnMouseEvent(ev)
		if ev.PropagationStopped() {
			return
		}
	}
}
