package opentui

import (
	"bufio"
	"os"
	"sync"
	"time"
)

// CapturedLine is one line of intercepted stdout/stderr output.
type CapturedLine struct {
	When   time.Time
	Stderr bool
	Text   string
}

// LogCapture intercepts process stdout/stderr through pipes so user
// prints cannot corrupt the rendered screen. Captured lines are kept
// in a bounded ring for the debug surface; split mode drains the
// pending lines between frames and scrolls them above the TUI region.
type LogCapture struct {
	mu      sync.Mutex
	lines   []CapturedLine
	pending []CapturedLine
	max     int

	origStdout *os.File
	origStderr *os.File

	stdoutR, stdoutW *os.File
	stderrR, stderrW *os.File

	wg      sync.WaitGroup
	started bool
}

// NewLogCapture creates a capture keeping at most maxLines lines.
func NewLogCapture(maxLines int) *LogCapture {
	if maxLines <= 0 {
		maxLines = 1000
	}
	return &LogCapture{max: maxLines}
}

// Start redirects os.Stdout and os.Stderr into the capture.
func (lc *LogCapture) Start() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.started {
		return nil
	}

	var err error
	lc.stdoutR, lc.stdoutW, err = os.Pipe()
	if err != nil {
		return wrapIO(err, "create stdout pipe")
	}
	lc.stderrR, lc.stderrW, err = os.Pipe()
	if err != nil {
		lc.stdoutR.Close()
		lc.stdoutW.Close()
		return wrapIO(err, "create stderr pipe")
	}

	lc.origStdout = os.Stdout
	lc.origStderr = os.Stderr
	os.Stdout = lc.stdoutW
	os.Stderr = lc.stderrW
	lc.started = true

	lc.wg.Add(2)
	go lc.readPipe(lc.stdoutR, false)
	go lc.readPipe(lc.stderrR, true)
	return nil
}

func (lc *LogCapture) readPipe(r *os.File, stderr bool) {
	defer lc.wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		lc.add(CapturedLine{When: time.Now(), Stderr: stderr, Text: scanner.Text()})
	}
}

func (lc *LogCapture) add(line CapturedLine) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.lines = append(lc.lines, line)
	if len(lc.lines) > lc.max {
		lc.lines = lc.lines[len(lc.lines)-lc.max:]
	}
	lc.pending = append(lc.pending, line)
	if len(lc.pending) > lc.max {
		lc.pending = lc.pending[len(lc.pending)-lc.max:]
	}
}

// Lines returns a copy of the retained ring.
func (lc *LogCapture) Lines() []CapturedLine {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	out := make([]CapturedLine, len(lc.lines))
	copy(out, lc.lines)
	return out
}

// TailText returns the last n captured lines, newline separated. Used
// by the crash path to show what the program printed before dying.
func (lc *LogCapture) TailText(n int) string {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	start := len(lc.lines) - n
	if start < 0 {
		start = 0
	}
	out := ""
	for _, l := range lc.lines[start:] {
		out += l.Text + "\n"
	}
	return out
}

// DrainPending returns the lines captured since the previous drain.
func (lc *LogCapture) DrainPending() []CapturedLine {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if len(lc.pending) == 0 {
		return nil
	}
	out := lc.pending
	lc.pending = nil
	return out
}

// OriginalStdout returns the real stdout for render output.
func (lc *LogCapture) OriginalStdout() *os.File {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.origStdout != nil {
		return lc.origStdout
	}
	return os.Stdout
}

// OriginalStderr returns the real stderr for engine logging.
func (lc *LogCapture) OriginalStderr() *os.File {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.origStderr != nil {
		return lc.origStderr
	}
	return os.Stderr
}

// Stop restores the real stdout/stderr and closes the pipes.
func (lc *LogCapture) Stop() {
	lc.mu.Lock()
	if !lc.started {
		lc.mu.Unlock()
		return
	}
	lc.started = false
	os.Stdout = lc.origStdout
	os.Stderr = lc.origStderr
	lc.stdoutW.Close()
	lc.stderrW.Close()
	lc.mu.Unlock()

	lc.wg.Wait()
	lc.stdoutR.Close()
	lc.stderrR.Close()
}
