package opentui

// MouseEventType enumerates pointer events.
type MouseEventType uint8

const (
	MouseDown MouseEventType = iota
	MouseUp
	MouseMove
	MouseDrag
	MouseDragEnd
	MouseDrop
	MouseOver
	MouseOut
	MouseScroll
)

func (t MouseEventType) String() string {
	switch t {
	case MouseDown:
		return "down"
	case MouseUp:
		return "up"
	case MouseMove:
		return "move"
	case MouseDrag:
		return "drag"
	case MouseDragEnd:
		return "drag-end"
	case MouseDrop:
		return "drop"
	case MouseOver:
		return "over"
	case MouseOut:
		return "out"
	case MouseScroll:
		return "scroll"
	}
	return "unknown"
}

// MouseButton identifies which button an event refers to.
type MouseButton uint8

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight
)

// Modifiers are the keyboard modifiers held during an input event.
type Modifiers struct {
	Shift bool
	Alt   bool
	Ctrl  bool
}

// ScrollDirection is the wheel direction of a scroll event.
type ScrollDirection uint8

const (
	ScrollUp ScrollDirection = iota
	ScrollDown
	ScrollLeft
	ScrollRight
)

// ScrollInfo carries wheel details on scroll events.
type ScrollInfo struct {
	Direction ScrollDirection
	Delta     int
}

// MouseEvent is one pointer event routed through the tree. Handlers
// stop bubbling with StopPropagation.
type MouseEvent struct {
	Type      MouseEventType
	Button    MouseButton
	X, Y      int
	Modifiers Modifiers
	Scroll    *ScrollInfo
	// Source is the dragged renderable on drop/over events synthesized
	// during a capture.
	Source Renderable

	stopped bool
}

// StopPropagation halts bubbling after the current handler.
func (e *MouseEvent) StopPropagation() { e.stopped = true }

// PropagationStopped reports whether a handler stopped the event.
func (e *MouseEvent) PropagationStopped() bool { return e.stopped }

// EventKind enumerates engine-level events carried on the bus.
type EventKind uint8

const (
	EventFocused EventKind = iota
	EventBlurred
	EventSelection
	EventResize
	EventKey
	EventPaste
	EventPixelResolution
)

// Event is one engine-level notification. Only the fields relevant to
// the kind are set.
type Event struct {
	Kind      EventKind
	Target    Renderable
	Key       *ParsedKey
	Paste     string
	Selection *Selection
	Width     int
	Height    int
}

// EventBus is a typed listener registry for the engine's closed event
// set. Listeners fire in subscription order. It is not safe for
// concurrent use; all dispatch happens on the frame loop.
type EventBus struct {
	nextID    int
	listeners map[EventKind][]busListener
}

type busListener struct {
	id int
	fn func(Event)
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[EventKind][]busListener)}
}

// On registers a listener for one event kind and returns its
// unsubscribe function.
func (b *EventBus) On(kind EventKind, fn func(Event)) func() {
	b.nextID++
	id := b.nextID
	b.listeners[kind] = append(b.listeners[kind], busListener{id: id, fn: fn})
	return func() {
		ls := b.listeners[kind]
		for i := range ls {
			if ls[i].id == id {
				b.listeners[kind] = append(ls[:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers the event to every listener of its kind in
// subscription order.
func (b *EventBus) Emit(ev Event) {
	ls := b.listeners[ev.Kind]
	for _, l := range ls {
		l.fn(ev)
	}
}
