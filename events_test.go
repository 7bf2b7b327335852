package opentui

import "testing"

func TestEventBusSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int
	bus.On(EventResize, func(Event) { order = append(order, 1) })
	bus.On(EventResize, func(Event) { order = append(order, 2) })
	bus.On(EventKey, func(Event) { order = append(order, 99) })

	bus.Emit(Event{Kind: EventResize})

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	off := bus.On(EventFocused, func(Event) { calls++ })
	bus.Emit(Event{Kind: EventFocused})
	off()
	bus.Emit(Event{Kind: EventFocused})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMouseEventStopPropagation(t *testing.T) {
	ev := &MouseEvent{Type: MouseDown}
	if ev.PropagationStopped() {
		t.Fatal("fresh event already stopped")
	}
	ev.StopPropagation()
	if !ev.PropagationStopped() {
		t.Fatal("StopPropagation had no effect")
	}
}
