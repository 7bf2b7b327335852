package opentui

import (
	"log/slog"
	"time"
)

// RenderContext owns the engine-wide collaborators every renderable
// receives at construction: the registry, the event bus, focus, the
// clock, the terminal capabilities and the active width method. There
// are no process-wide singletons; embedders may run several engines by
// giving each its own context.
type RenderContext struct {
	cfg         EngineConfig
	caps        Capabilities
	widthMethod WidthMethod
	logger      *slog.Logger
	bus         *EventBus
	focus       *FocusManager

	nextNum  int64
	registry map[int64]Renderable

	lifecycle []*Base // hook registration order

	scheduler *Scheduler
	root      *Base

	now func() time.Time
}

// NewRenderContext builds a context from the engine configuration.
// logger may be nil for a silent context.
func NewRenderContext(cfg EngineConfig, logger *slog.Logger) *RenderContext {
	if logger == nil {
		logger = newEngineLogger(nil, false)
	}
	ctx := &RenderContext{
		cfg:         cfg,
		caps:        DetectCapabilities(),
		widthMethod: cfg.WidthMethod(),
		logger:      logger,
		bus:         NewEventBus(),
		registry:    make(map[int64]Renderable),
		now:         time.Now,
	}
	ctx.focus = newFocusManager(ctx)
	return ctx
}

// WidthMethod reports the grapheme width method in effect.
func (c *RenderContext) WidthMethod() WidthMethod { return c.widthMethod }

// Now returns the engine clock's current time.
func (c *RenderContext) Now() time.Time { return c.now() }

// Config returns the engine configuration the context was built from.
func (c *RenderContext) Config() EngineConfig { return c.cfg }

// Capabilities returns the detected terminal capabilities.
func (c *RenderContext) Capabilities() Capabilities { return c.caps }

// setPixelSize records the terminal's reported pixel resolution.
func (c *RenderContext) setPixelSize(p PixelResolution) {
	c.caps.PixelWidth = p.Width
	c.caps.PixelHeight = p.Height
	c.bus.Emit(Event{Kind: EventPixelResolution, Width: p.Width, Height: p.Height})
}

// Events returns the engine event bus.
func (c *RenderContext) Events() *EventBus { return c.bus }

// Logger returns the engine logger.
func (c *RenderContext) Logger() *slog.Logger { return c.logger }

// Focus returns the focus manager.
func (c *RenderContext) Focus() *FocusManager { return c.focus }

// Diagnostics returns a snapshot of the engine counters.
func (c *RenderContext) Diagnostics() DiagnosticsSnapshot { return diagnostics.Snapshot() }

// register assigns a process-stable identifier used by the hit grid.
func (c *RenderContext) register(b *Base) int64 {
	c.nextNum++
	c.registry[c.nextNum] = b
	return c.nextNum
}

// bindSelf updates the registry entry once a concrete kind binds; the
// hit grid resolves to the bound value.
func (c *RenderContext) bindSelf(num int64, r Renderable) {
	if _, ok := c.registry[num]; ok {
		c.registry[num] = r
	}
}

func (c *RenderContext) unregister(num int64) {
	delete(c.registry, num)
}

// LookupRenderable resolves a hit-grid identifier to its renderable.
func (c *RenderContext) LookupRenderable(num int64) Renderable {
	return c.registry[num]
}

func (c *RenderContext) registerLifecycle(b *Base) {
	c.lifecycle = append(c.lifecycle, b)
}

func (c *RenderContext) unregisterLifecycle(b *Base) {
	for i, x := range c.lifecycle {
		if x == b {
			c.lifecycle = append(c.lifecycle[:i], c.lifecycle[i+1:]...)
			return
		}
	}
}

// runLifecycleHooks runs pass 0 of the frame: registered hooks in
// registration order.
func (c *RenderContext) runLifecycleHooks(dt time.Duration) {
	for _, b := range c.lifecycle {
		if b.lifecycleHook != nil && !b.destroyed {
			b.lifecycleHook(dt)
		}
	}
}

// requestRender wakes the scheduler for a one-shot frame.
func (c *RenderContext) requestRender() {
	if c.scheduler != nil {
		c.scheduler.RequestRender()
	}
}

// rootLiveChanged fires when a live-count delta reaches the top of a
// visible chain. Only changes at the engine root drive the scheduler.
func (c *RenderContext) rootLiveChanged(top *Base) {
	if c.scheduler == nil || c.root == nil || top != c.root {
		return
	}
	c.scheduler.setLiveCount(c.root.EffectiveLiveCount())
}
