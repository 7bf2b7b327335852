package opentui

import (
	"sync"
	"time"
)

// ControlState is the scheduler's state machine.
type ControlState uint8

const (
	// StateIdle schedules no frames.
	StateIdle ControlState = iota
	// StateAutoStarted runs frames because the live counter is
	// positive; it reverts to idle when the counter reaches zero.
	StateAutoStarted
	// StateExplicitStarted runs continuously regardless of the live
	// counter.
	StateExplicitStarted
	// StateExplicitPaused schedules no frames until an explicit start.
	StateExplicitPaused
	// StateExplicitStopped is terminal; the loop goroutine has exited.
	StateExplicitStopped
)

func (s ControlState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAutoStarted:
		return "auto-started"
	case StateExplicitStarted:
		return "explicit-started"
	case StateExplicitPaused:
		return "explicit-paused"
	case StateExplicitStopped:
		return "explicit-stopped"
	}
	return "unknown"
}

// FrameCallback runs once per frame with the frame delta. Callbacks
// run sequentially on the frame task; their time counts against the
// frame budget.
type FrameCallback func(dt time.Duration)

// Scheduler drives the cooperative single-threaded frame loop. One
// goroutine owns all frame work: lifecycle hooks, layout, drawing,
// frame callbacks and dispatched closures all run on it.
type Scheduler struct {
	mu sync.Mutex

	targetFPS       int
	targetFrameTime time.Duration

	state             ControlState
	liveCount         int
	oneShotPending    bool
	immediateRerender bool
	rendering         bool

	frameCount uint64
	currentFPS float64
	lastTime   time.Time

	renderFrame func(dt time.Duration)
	onPanic     func(recovered any)

	animationFrames []FrameCallback
	frameCallbacks  []frameCallbackEntry
	nextCallbackID  int

	dispatchQ chan func()
	wakeCh    chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	loopOnce  sync.Once

	now func() time.Time
}

type frameCallbackEntry struct {
	id int
	fn FrameCallback
}

// NewScheduler creates a scheduler targeting the given FPS.
func NewScheduler(targetFPS int) *Scheduler {
	if targetFPS <= 0 {
		targetFPS = 30
	}
	return &Scheduler{
		targetFPS:       targetFPS,
		targetFrameTime: time.Second / time.Duration(targetFPS),
		dispatchQ:       make(chan func(), 64),
		wakeCh:          make(chan struct{}, 1),
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
		now:             time.Now,
	}
}

// SetRenderFrame installs the engine's frame function.
func (s *Scheduler) SetRenderFrame(fn func(dt time.Duration)) {
	s.mu.Lock()
	s.renderFrame = fn
	s.mu.Unlock()
}

// SetPanicHandler installs the release-mode recovery hook for frame
// panics.
func (s *Scheduler) SetPanicHandler(fn func(recovered any)) {
	s.mu.Lock()
	s.onPanic = fn
	s.mu.Unlock()
}

// State returns the current control state.
func (s *Scheduler) State() ControlState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TargetFPS returns the configured frame rate.
func (s *Scheduler) TargetFPS() int { return s.targetFPS }

// FrameCount returns the number of frames rendered.
func (s *Scheduler) FrameCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCount
}

// CurrentFPS returns a smoothed measure of the achieved frame rate.
func (s *Scheduler) CurrentFPS() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentFPS
}

// LiveCount returns the scheduler's view of the live refcount.
func (s *Scheduler) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveCount
}

// ensureLoop starts the loop goroutine on first need.
func (s *Scheduler) ensureLoop() {
	s.loopOnce.Do(func() { go s.loop() })
}

// Start runs the loop continuously until Pause or Stop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.state == StateExplicitStopped {
		s.mu.Unlock()
		return
	}
	s.state = StateExplicitStarted
	s.mu.Unlock()
	s.ensureLoop()
	s.wake()
}

// Pause stops scheduling frames until an explicit Start.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if s.state != StateExplicitStopped {
		s.state = StateExplicitPaused
	}
	s.mu.Unlock()
	s.wake()
}

// Stop terminates the scheduler. No further frames run; the loop
// goroutine exits.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == StateExplicitStopped {
		s.mu.Unlock()
		return
	}
	s.state = StateExplicitStopped
	s.mu.Unlock()
	s.ensureLoop() // guarantee a goroutine exists to observe stopCh
	close(s.stopCh)
	<-s.doneCh
}

// RequestRender schedules exactly one frame on the next tick when
// idle. While the loop is running frames anyway it adds no frame,
// except that a call made during a frame asks for one more frame right
// after it.
func (s *Scheduler) RequestRender() {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.oneShotPending = true
	case StateExplicitPaused:
		// Paused means paused: no frames until an explicit start.
	case StateAutoStarted, StateExplicitStarted:
		// Already rendering every tick.
		if s.rendering {
			s.immediateRerender = true
		}
	case StateExplicitStopped:
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.ensureLoop()
	s.wake()
}

// RequestAnimationFrame queues a one-shot that runs at the start of
// the next frame, before frame callbacks, and schedules that frame.
func (s *Scheduler) RequestAnimationFrame(fn FrameCallback) {
	s.mu.Lock()
	s.animationFrames = append(s.animationFrames, fn)
	s.mu.Unlock()
	s.RequestRender()
}

// AddFrameCallback registers a per-frame callback; the returned
// function removes it.
func (s *Scheduler) AddFrameCallback(fn FrameCallback) func() {
	s.mu.Lock()
	s.nextCallbackID++
	id := s.nextCallbackID
	s.frameCallbacks = append(s.frameCallbacks, frameCallbackEntry{id: id, fn: fn})
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.frameCallbacks {
			if s.frameCallbacks[i].id == id {
				s.frameCallbacks = append(s.frameCallbacks[:i], s.frameCallbacks[i+1:]...)
				return
			}
		}
	}
}

// Dispatch runs fn on the frame task between frames.
func (s *Scheduler) Dispatch(fn func()) {
	select {
	case s.dispatchQ <- fn:
		s.ensureLoop()
		s.wake()
	case <-s.stopCh:
	}
}

// setLiveCount is called on the root's live refcount edges. A rising
// edge in idle auto-starts the loop; a falling edge to zero reverts
// auto-started to idle.
func (s *Scheduler) setLiveCount(n int) {
	s.mu.Lock()
	s.liveCount = n
	switch {
	case s.state == StateIdle && n > 0:
		s.state = StateAutoStarted
	case s.state == StateAutoStarted && n == 0:
		s.state = StateIdle
	}
	s.mu.Unlock()
	s.ensureLoop()
	s.wake()
}

func (s *Scheduler) wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case fn := <-s.dispatchQ:
			fn()
		case <-s.wakeCh:
		case <-timer.C:
		}

		for s.shouldRender() {
			s.frame()
			s.mu.Lock()
			again := s.immediateRerender
			s.immediateRerender = false
			s.mu.Unlock()
			if !again {
				break
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.nextDelay())
	}
}

func (s *Scheduler) shouldRender() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.renderFrame == nil {
		return false
	}
	switch s.state {
	case StateAutoStarted, StateExplicitStarted:
		return s.pacingElapsed()
	case StateIdle:
		return s.oneShotPending
	default:
		return false
	}
}

// pacingElapsed enforces the frame budget while running continuously.
func (s *Scheduler) pacingElapsed() bool {
	if s.lastTime.IsZero() {
		return true
	}
	return s.now().Sub(s.lastTime) >= s.targetFrameTime-time.Millisecond/2
}

// nextDelay computes the sleep before the next tick: the remaining
// frame budget while running, effectively forever while idle.
func (s *Scheduler) nextDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAutoStarted, StateExplicitStarted:
		elapsed := s.now().Sub(s.lastTime)
		d := s.targetFrameTime - elapsed
		if d < time.Millisecond {
			d = time.Millisecond
		}
		return d
	default:
		if s.oneShotPending {
			return time.Millisecond
		}
		return time.Hour
	}
}

// frame runs one complete frame: animation one-shots, then frame
// callbacks in registration order, then the render function. A panic
// is contained to the frame in release mode.
func (s *Scheduler) frame() {
	s.mu.Lock()
	if s.rendering {
		s.mu.Unlock()
		violated("frame", "re-entrant frame render")
	}
	s.rendering = true
	s.oneShotPending = false

	now := s.now()
	dt := s.targetFrameTime
	if !s.lastTime.IsZero() {
		dt = now.Sub(s.lastTime)
	}
	s.lastTime = now

	anims := s.animationFrames
	s.animationFrames = nil
	callbacks := make([]frameCallbackEntry, len(s.frameCallbacks))
	copy(callbacks, s.frameCallbacks)
	render := s.renderFrame
	onPanic := s.onPanic
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.rendering = false
		s.frameCount++
		if dt > 0 {
			inst := float64(time.Second) / float64(dt)
			if s.currentFPS == 0 {
				s.currentFPS = inst
			} else {
				s.currentFPS = s.currentFPS*0.9 + inst*0.1
			}
		}
		s.mu.Unlock()

		if r := recover(); r != nil {
			diagnostics.droppedFrame()
			if onPanic != nil {
				onPanic(r)
			} else {
				panic(r)
			}
		}
	}()

	for _, fn := range anims {
		fn(dt)
	}
	for _, cb := range callbacks {
		cb.fn(dt)
	}
	render(dt)
}
