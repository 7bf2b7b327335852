package opentui

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/muesli/cancelreader"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// MouseMode selects the terminal's mouse reporting level.
type MouseMode uint8

const (
	// MouseModeOff disables mouse reporting.
	MouseModeOff MouseMode = iota
	// MouseModeButtons reports presses, releases and drags.
	MouseModeButtons
	// MouseModeMotion additionally reports all pointer movement.
	MouseModeMotion
)

// TerminalOptions configures terminal setup.
type TerminalOptions struct {
	AltScreen      bool
	Mouse          MouseMode
	BracketedPaste bool
	// KittyFlags enables the Kitty keyboard protocol with the given
	// progressive enhancement flags; 0 leaves it off.
	KittyFlags int
	// ResizeDebounce delays resize handling to coalesce bursts of
	// SIGWINCH. Split mode uses 0.
	ResizeDebounce time.Duration
}

// Terminal owns the host terminal: raw mode, the chosen protocols,
// the input read loop, and SIGWINCH handling. Teardown restores every
// mode it changed, in reverse, even when triggered from a panic path.
type Terminal struct {
	opts TerminalOptions

	in  *os.File
	out *os.File

	reader      cancelreader.CancelReader
	origTermios *unix.Termios

	width, height int

	onInput  func([]byte)
	onResize func(width, height int)

	sigCh   chan os.Signal
	doneCh  chan struct{}
	stopped bool
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewTerminal wraps stdin/stdout.
func NewTerminal(opts TerminalOptions) *Terminal {
	return &Terminal{opts: opts, in: os.Stdin, out: os.Stdout}
}

// IsTerminal reports whether stdin is an interactive terminal.
func (t *Terminal) IsTerminal() bool {
	return term.IsTerminal(int(t.in.Fd()))
}

// Size returns the last known terminal size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

// Write sends raw bytes to the terminal.
func (t *Terminal) Write(p []byte) (int, error) {
	n, err := t.out.Write(p)
	return n, wrapIO(err, "terminal write")
}

// WriteString sends a string to the terminal.
func (t *Terminal) WriteString(s string) error {
	_, err := io.WriteString(t.out, s)
	return wrapIO(err, "terminal write")
}

// Start enters raw mode, enables the configured protocols, and begins
// the input and resize loops. onInput receives raw byte bursts on a
// reader goroutine; the caller funnels them onto the frame task.
func (t *Terminal) Start(onInput func([]byte), onResize func(width, height int)) error {
	t.onInput = onInput
	t.onResize = onResize
	t.doneCh = make(chan struct{})

	fd := int(t.in.Fd())
	if term.IsTerminal(fd) {
		orig, err := enterRawMode(fd)
		if err != nil {
			return err
		}
		t.origTermios = orig
	}

	if w, h, err := queryWinsize(int(t.out.Fd())); err == nil {
		t.width, t.height = w, h
	} else {
		t.width, t.height = 80, 24
	}

	if t.opts.AltScreen {
		t.WriteString(AltScreenEnter)
	}
	t.WriteString(HideCursor())
	switch t.opts.Mouse {
	case MouseModeButtons:
		t.WriteString(MouseButtonsOn + MouseSGROn)
	case MouseModeMotion:
		t.WriteString(MouseMotionOn + MouseSGROn)
	}
	if t.opts.BracketedPaste {
		t.WriteString(BracketedPasteOn)
	}
	if t.opts.KittyFlags > 0 {
		t.WriteString(KittyKeyboardPush(t.opts.KittyFlags))
	}
	// Learn the pixel resolution; the response arrives on stdin.
	t.WriteString(QueryPixelSize)

	reader, err := cancelreader.NewReader(t.in)
	if err != nil {
		return wrapIO(err, "create input reader")
	}
	t.reader = reader

	t.wg.Add(1)
	go t.readLoop()

	t.sigCh = make(chan os.Signal, 1)
	signal.Notify(t.sigCh, syscall.SIGWINCH)
	t.wg.Add(1)
	go t.resizeLoop()

	return nil
}

func (t *Terminal) readLoop() {
	defer t.wg.Done()
	buf := make([]byte, 4096)
	for {
		n, err := t.reader.Read(buf)
		if err != nil {
			return
		}
		if n > 0 && t.onInput != nil {
			data := make([]byte, n)
			copy(data, buf[:n])
			t.onInput(data)
		}
	}
}

// resizeLoop debounces SIGWINCH before re-querying the size.
func (t *Terminal) resizeLoop() {
	defer t.wg.Done()
	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-t.doneCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-t.sigCh:
			if t.opts.ResizeDebounce <= 0 {
				t.fireResize()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(t.opts.ResizeDebounce)
				timerC = timer.C
			} else {
				timer.Reset(t.opts.ResizeDebounce)
			}
		case <-timerC:
			t.fireResize()
		}
	}
}

func (t *Terminal) fireResize() {
	w, h, err := queryWinsize(int(t.out.Fd()))
	if err != nil {
		return
	}
	t.mu.Lock()
	changed := w != t.width || h != t.height
	t.width, t.height = w, h
	t.mu.Unlock()
	if changed {
		// A resize invalidates any cached pixel resolution.
		t.WriteString(QueryPixelSize)
		if t.onResize != nil {
			t.onResize(w, h)
		}
	}
}

// SetCursorStyle changes the hardware cursor shape.
func (t *Terminal) SetCursorStyle(style CursorStyle, blink bool) error {
	return t.WriteString(SetCursorStyle(style, blink))
}

// SetCursorColor changes the hardware cursor color.
func (t *Terminal) SetCursorColor(c RGBA) error {
	return t.WriteString(SetCursorColor(c))
}

// ShowHardwareCursor shows or hides the hardware cursor.
func (t *Terminal) ShowHardwareCursor(show bool) error {
	if show {
		return t.WriteString(ShowCursor())
	}
	return t.WriteString(HideCursor())
}

// Stop restores the terminal: protocols off in reverse order, cursor
// shown, alternate screen left, cooked mode restored. Idempotent, and
// safe to call from a panic path.
func (t *Terminal) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	if t.sigCh != nil {
		signal.Stop(t.sigCh)
	}
	if t.doneCh != nil {
		close(t.doneCh)
	}
	if t.reader != nil {
		t.reader.Cancel()
	}
	t.wg.Wait()

	if t.opts.KittyFlags > 0 {
		t.WriteString(KittyKeyboardPop)
	}
	if t.opts.BracketedPaste {
		t.WriteString(BracketedPasteOff)
	}
	if t.opts.Mouse != MouseModeOff {
		t.WriteString(MouseOff)
	}
	t.WriteString(ShowCursor())
	if t.opts.AltScreen {
		t.WriteString(AltScreenLeave)
	}
	if t.origTermios != nil {
		restoreMode(int(t.in.Fd()), t.origTermios)
	}
}
