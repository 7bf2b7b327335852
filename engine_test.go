package opentui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephraph/opentui/layout"
)

// syncBuffer makes a bytes.Buffer safe to read while the frame loop
// writes.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newHeadlessEngine(t *testing.T, w, h int) (*Engine, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	cfg := EngineConfig{TargetFPS: 120, MaxCapturedLines: 10}
	e, err := NewEngine(EngineOptions{
		Config:   &cfg,
		Headless: true,
		Output:   out,
		Width:    w,
		Height:   h,
	})
	require.NoError(t, err)
	t.Cleanup(e.Destroy)
	return e, out
}

func TestEngineRendersTreeToOutput(t *testing.T) {
	e, out := newHeadlessEngine(t, 12, 3)

	text := &textDrawer{Base: NewBase(e.Context(), "msg", Options{
		Width: layout.Point(5), Height: layout.Point(1),
	}), text: "ready"}
	text.Bind(text)
	require.NoError(t, e.Root().Add(text))

	require.NoError(t, e.Start())
	waitFor(t, 2*time.Second, func() bool {
		return strings.Contains(out.String(), "ready")
	})
}

func TestEngineOneShotRenderWhileIdle(t *testing.T) {
	e, out := newHeadlessEngine(t, 8, 2)

	text := &textDrawer{Base: NewBase(e.Context(), "msg", Options{
		Width: layout.Point(2), Height: layout.Point(1),
	}), text: "ok"}
	text.Bind(text)
	require.NoError(t, e.Root().Add(text))

	// No Start: a request in the idle state yields exactly one frame.
	e.RequestRender()
	waitFor(t, 2*time.Second, func() bool {
		return strings.Contains(out.String(), "ok")
	})
	assert.Equal(t, StateIdle, e.Scheduler().State())
}

func TestEngineLiveNodeAutoStarts(t *testing.T) {
	e, _ := newHeadlessEngine(t, 8, 2)

	w := newTestWidget(e.Context(), "live", "x", Options{
		Width: layout.Point(1), Height: layout.Point(1),
		Live: true,
	})
	require.NoError(t, e.Root().Add(w))

	waitFor(t, 2*time.Second, func() bool {
		return e.Scheduler().State() == StateAutoStarted
	})

	// S6: hiding the live subtree drops the scheduler back to idle.
	e.Scheduler().Dispatch(func() { w.SetVisible(false) })
	waitFor(t, 2*time.Second, func() bool {
		return e.Scheduler().State() == StateIdle
	})

	e.Scheduler().Dispatch(func() { w.SetVisible(true) })
	waitFor(t, 2*time.Second, func() bool {
		return e.Scheduler().State() == StateAutoStarted
	})
}

func TestEngineInputDispatchToFocused(t *testing.T) {
	e, _ := newHeadlessEngine(t, 8, 2)

	rec := &keyRecorder{Base: NewBase(e.Context(), "in", Options{Focusable: true})}
	rec.Bind(rec)
	require.NoError(t, e.Root().Add(rec))
	e.Context().Focus().Focus(rec)

	require.NoError(t, e.Start())
	e.onInput([]byte("hi"))
	waitFor(t, 2*time.Second, func() bool { return len(rec.Keys()) == 2 })
	assert.Equal(t, []string{"h", "i"}, rec.Keys())

	e.onInput([]byte("\x1b[200~pasted\x1b[201~"))
	waitFor(t, 2*time.Second, func() bool { return len(rec.Pastes()) == 1 })
	assert.Equal(t, "pasted", rec.Pastes()[0])
}

func TestEnginePixelResolutionEvent(t *testing.T) {
	e, _ := newHeadlessEngine(t, 8, 2)

	got := make(chan Event, 1)
	e.Context().Events().On(EventPixelResolution, func(ev Event) { got <- ev })

	require.NoError(t, e.Start())
	e.onInput([]byte("\x1b[4;600;800t"))

	select {
	case ev := <-got:
		assert.Equal(t, 800, ev.Width)
		assert.Equal(t, 600, ev.Height)
	case <-time.After(2 * time.Second):
		t.Fatal("pixel resolution event never fired")
	}
	caps := e.Context().Capabilities()
	assert.Equal(t, 800, caps.PixelWidth)
}

func TestEngineDestroyIdempotent(t *testing.T) {
	e, _ := newHeadlessEngine(t, 4, 2)
	require.NoError(t, e.Start())
	e.Destroy()
	e.Destroy()
	assert.Equal(t, StateExplicitStopped, e.Scheduler().State())
	assert.True(t, e.Root().Destroyed())
}
