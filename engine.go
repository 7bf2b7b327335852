package opentui

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"
)

// EngineOptions configures engine construction. Zero values fall back
// to the environment configuration and sensible defaults.
type EngineOptions struct {
	// Config overrides the environment-derived configuration.
	Config *EngineConfig
	// Output overrides the terminal writer; used by tests and
	// embedders that manage their own terminal.
	Output io.Writer
	// Width/Height override the detected terminal size.
	Width, Height int
	// SplitHeight pins the TUI to the bottom N rows, with captured
	// stdout scrolling above. 0 means full screen.
	SplitHeight int
	// Mouse selects the reporting mode; the zero value, MouseModeOff,
	// leaves mouse reporting off.
	Mouse MouseMode
	// KittyFlags enables the Kitty keyboard protocol.
	KittyFlags int
	// Headless skips terminal setup and stdout interception entirely;
	// the engine renders into Output only. For tests and embedding.
	Headless bool
	// OnError receives fatal I/O errors after graceful teardown.
	OnError func(error)
}

// Engine is the assembled core: context, tree root, scheduler,
// pipeline, compositor, input decoding and terminal handling.
type Engine struct {
	ctx       *RenderContext
	cfg       EngineConfig
	sched     *Scheduler
	comp      *Compositor
	pipe      *Pipeline
	router    *mouseRouter
	selection *selectionTracker
	decoder   InputDecoder
	term      *Terminal
	capture   *LogCapture
	root      *Base

	out         io.Writer
	background  RGBA
	splitHeight int
	termWidth   int
	termHeight  int

	statsMu   sync.Mutex
	lastStats FrameStats

	onError   func(error)
	destroyed bool
}

// FrameStats reports what the most recent frame cost.
type FrameStats struct {
	CellsChanged  int
	BytesEmitted  int
	FrameDuration time.Duration
	FrameCount    uint64
	CurrentFPS    float64
	Diagnostics   DiagnosticsSnapshot
}

// NewEngine builds an engine. Call Start (or Run) to begin rendering
// and Destroy to tear everything down.
func NewEngine(opts EngineOptions) (*Engine, error) {
	var cfg EngineConfig
	if opts.Config != nil {
		cfg = *opts.Config
	} else {
		loaded, err := LoadConfig()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	e := &Engine{
		cfg:         cfg,
		background:  Black,
		splitHeight: opts.SplitHeight,
		onError:     opts.OnError,
	}
	if e.splitHeight == 0 {
		e.splitHeight = cfg.SplitHeight
	}
	e.decoder.Keys.Kitty = opts.KittyFlags > 0

	logSink := io.Writer(os.Stderr)
	if !opts.Headless {
		e.capture = NewLogCapture(cfg.MaxCapturedLines)
		if err := e.capture.Start(); err != nil {
			return nil, err
		}
		logSink = e.capture.OriginalStderr()
	}
	logger := newEngineLogger(logSink, cfg.Debug)

	e.ctx = NewRenderContext(cfg, logger)

	e.termWidth, e.termHeight = opts.Width, opts.Height
	if !opts.Headless {
		debounce := time.Duration(cfg.ResizeDebounceMs) * time.Millisecond
		if e.splitHeight > 0 {
			debounce = 0
		}
		e.term = NewTerminal(TerminalOptions{
			AltScreen:      !cfg.NoAltScreen && e.splitHeight == 0,
			Mouse:          opts.Mouse,
			BracketedPaste: true,
			KittyFlags:     opts.KittyFlags,
			ResizeDebounce: debounce,
		})
	}
	if e.termWidth == 0 {
		e.termWidth = 80
	}
	if e.termHeight == 0 {
		e.termHeight = 24
	}

	e.out = opts.Output
	if e.out == nil {
		if e.capture != nil {
			e.out = e.capture.OriginalStdout()
		} else {
			e.out = os.Stdout
		}
	}

	renderH := e.renderHeight()
	comp, err := NewCompositor(e.out, e.termWidth, renderH,
		WithWidthMethod(e.ctx.WidthMethod()), WithClearColor(e.background))
	if err != nil {
		return nil, err
	}
	e.comp = comp
	e.pipe = NewPipeline(e.ctx, e.termWidth, renderH)
	e.selection = newSelectionTracker(e.ctx)
	e.router = newMouseRouter(e.ctx, e.pipe, e.selection)

	e.root = NewBase(e.ctx, "root", Options{})
	e.ctx.root = e.root

	e.sched = NewScheduler(cfg.TargetFPS)
	e.ctx.scheduler = e.sched
	e.sched.SetRenderFrame(e.renderFrame)
	e.sched.SetPanicHandler(e.handleFramePanic)

	return e, nil
}

func (e *Engine) renderHeight() int {
	if e.splitHeight > 0 && e.splitHeight < e.termHeight {
		return e.splitHeight
	}
	return e.termHeight
}

// Root returns the tree root; clients Add their renderables to it.
func (e *Engine) Root() *Base { return e.root }

// Context returns the render context.
func (e *Engine) Context() *RenderContext { return e.ctx }

// Scheduler returns the frame scheduler.
func (e *Engine) Scheduler() *Scheduler { return e.sched }

// Selection returns the active selection state.
func (e *Engine) Selection() *Selection { return e.selection.Selection() }

// SetBackgroundColor changes the clear color for subsequent frames.
func (e *Engine) SetBackgroundColor(c RGBA) {
	e.background = c
	e.comp.ForceRedraw()
	e.root.RequestRender()
}

// Start sets up the terminal (unless headless) and explicitly starts
// the frame loop.
func (e *Engine) Start() error {
	if e.term != nil {
		if err := e.term.Start(e.onInput, e.onResize); err != nil {
			return err
		}
		w, h := e.term.Size()
		e.applySize(w, h)
	}
	e.sched.Start()
	return nil
}

// Pause suspends frame scheduling until the next Start.
func (e *Engine) Pause() { e.sched.Pause() }

// RequestRender schedules a one-shot frame if the loop is idle.
func (e *Engine) RequestRender() { e.sched.RequestRender() }

// Run starts the engine and blocks until SIGINT/SIGTERM or Destroy.
func (e *Engine) Run() error {
	defer e.recoverCrash()
	if err := e.Start(); err != nil {
		return err
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	select {
	case <-sig:
	case <-e.sched.doneCh:
	}
	e.Destroy()
	return nil
}

// Destroy finishes the current frame, stops the loop, restores the
// terminal and releases the buffers. Idempotent.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.sched.Stop()
	if e.term != nil {
		e.term.Stop()
	}
	if e.capture != nil {
		e.capture.Stop()
	}
	e.root.Destroy()
	e.comp.Release()
}

// renderFrame is the scheduler's frame function: passes 0–3 via the
// pipeline, then the compositor diff/swap, then split-mode stdout
// flushing.
func (e *Engine) renderFrame(dt time.Duration) {
	start := time.Now()
	next := e.comp.NextBuffer()
	next.Clear(e.background)
	e.pipe.RenderFrame(e.root, next, dt)
	stats, err := e.comp.Present()
	if err != nil {
		e.fatal(err)
		return
	}
	if e.splitHeight > 0 {
		e.flushCapturedOutput()
	}

	e.statsMu.Lock()
	e.lastStats = FrameStats{
		CellsChanged:  stats.CellsChanged,
		BytesEmitted:  stats.BytesEmitted,
		FrameDuration: time.Since(start),
		FrameCount:    e.sched.FrameCount() + 1,
		CurrentFPS:    e.sched.CurrentFPS(),
		Diagnostics:   diagnostics.Snapshot(),
	}
	e.statsMu.Unlock()
}

// Stats returns a copy of the most recent frame's statistics.
func (e *Engine) Stats() FrameStats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.lastStats
}

// handleFramePanic is the release-mode containment: an invariant
// violation costs the frame, not the process. Debug builds re-panic to
// surface the stack at the fault.
func (e *Engine) handleFramePanic(recovered any) {
	if e.cfg.Debug {
		panic(recovered)
	}
	if iv, ok := recovered.(*InvariantViolation); ok {
		diagnostics.recoveredRend()
		e.ctx.Logger().Error("frame skipped", "err", iv.Error())
		e.root.RequestRender()
		return
	}
	// Unknown panic: not safe to continue rendering.
	panic(recovered)
}

// recoverCrash is the last-resort handler: restore the terminal, dump
// the captured console tail and the stack to the real stdout, and exit
// non-zero.
func (e *Engine) recoverCrash() {
	r := recover()
	if r == nil {
		return
	}
	out := io.Writer(os.Stdout)
	var tail string
	if e.capture != nil {
		tail = e.capture.TailText(20)
		e.capture.Stop()
		out = os.Stdout
	}
	if e.term != nil {
		e.term.Stop()
	}
	fmt.Fprintf(out, "opentui: fatal: %v\n", r)
	if tail != "" {
		fmt.Fprintf(out, "--- last console output ---\n%s", tail)
	}
	fmt.Fprintf(out, "%s\n", debug.Stack())
	os.Exit(1)
}

// fatal handles a terminal I/O failure: graceful teardown first, then
// surface to the embedder's handler.
func (e *Engine) fatal(err error) {
	e.ctx.Logger().Error("terminal I/O failed", "err", err)
	if e.term != nil {
		e.term.Stop()
	}
	if e.onError != nil {
		e.onError(err)
	}
}

// onInput funnels reader-goroutine bytes onto the frame task and
// dispatches the decoded events in arrival order.
func (e *Engine) onInput(data []byte) {
	e.sched.Dispatch(func() {
		for _, ev := range e.decoder.Feed(data) {
			e.dispatchInput(ev)
		}
	})
}

func (e *Engine) dispatchInput(ev InputEvent) {
	switch {
	case ev.Key != nil:
		if ev.Key.Ctrl && ev.Key.Name == "c" {
			// Stop blocks until the loop exits; it must not run on
			// the loop itself.
			go e.sched.Stop()
			return
		}
		e.ctx.focus.DeliverKey(ev.Key)
	case ev.Mouse != nil:
		raw := *ev.Mouse
		raw.Y -= e.comp.RenderOffset()
		e.router.HandleMouse(&raw, e.root)
	case ev.Pixel != nil:
		e.ctx.setPixelSize(*ev.Pixel)
	case ev.Paste != "":
		e.ctx.focus.DeliverPaste(ev.Paste)
	}
}

// onResize runs on the terminal's resize path and re-applies geometry
// on the frame task.
func (e *Engine) onResize(w, h int) {
	e.sched.Dispatch(func() {
		e.applySize(w, h)
		e.ctx.bus.Emit(Event{Kind: EventResize, Width: w, Height: h})
	})
}

func (e *Engine) applySize(w, h int) {
	e.termWidth, e.termHeight = w, h
	renderH := e.renderHeight()
	if err := e.comp.Resize(w, renderH); err != nil {
		e.fatal(err)
		return
	}
	if e.splitHeight > 0 {
		e.comp.SetRenderOffset(e.termHeight - renderH)
	}
	e.pipe.Resize(w, renderH)
	e.decoder.Reset()
	e.router.reset()
	e.root.ln.MarkDirty()
	e.root.RequestRender()
}

// flushCapturedOutput scrolls lines captured since the last frame into
// the region above the TUI so they behave like normal terminal output,
// then re-pads the TUI region's background.
func (e *Engine) flushCapturedOutput() {
	if e.capture == nil {
		return
	}
	pending := e.capture.DrainPending()
	if len(pending) == 0 {
		return
	}
	offset := e.comp.RenderOffset()
	if offset <= 0 {
		return
	}
	var sb strings.Builder
	sb.WriteString(SetScrollRegion(0, offset-1))
	sb.WriteString(MoveCursor(0, offset-1))
	for _, line := range pending {
		sb.WriteString("\r\n")
		sb.WriteString(line.Text)
	}
	sb.WriteString(ResetScrollRegion())
	if _, err := io.WriteString(e.out, sb.String()); err != nil {
		e.fatal(wrapIO(err, "split-mode flush"))
		return
	}
	// The scroll-region reset homed the cursor; repaint the TUI rows.
	e.comp.ForceRedraw()
	e.root.RequestRender()
}
