package opentui

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

// Diagnostics holds engine-wide counters. Malformed input bytes and
// bad draw arguments are dropped, not surfaced; the counters make them
// visible to embedders.
type Diagnostics struct {
	ParseWarnings    atomic.Uint64
	BadGraphemes     atomic.Uint64
	DroppedFrames    atomic.Uint64
	RecoveredRenders atomic.Uint64
}

// DiagnosticsSnapshot is a point-in-time copy of the counters.
type DiagnosticsSnapshot struct {
	ParseWarnings    uint64
	BadGraphemes     uint64
	DroppedFrames    uint64
	RecoveredRenders uint64
}

var diagnostics Diagnostics

func (d *Diagnostics) badGrapheme()   { d.BadGraphemes.Add(1) }
func (d *Diagnostics) parseWarning()  { d.ParseWarnings.Add(1) }
func (d *Diagnostics) droppedFrame()  { d.DroppedFrames.Add(1) }
func (d *Diagnostics) recoveredRend() { d.RecoveredRenders.Add(1) }

// Snapshot copies the current counter values.
func (d *Diagnostics) Snapshot() DiagnosticsSnapshot {
	return DiagnosticsSnapshot{
		ParseWarnings:    d.ParseWarnings.Load(),
		BadGraphemes:     d.BadGraphemes.Load(),
		DroppedFrames:    d.DroppedFrames.Load(),
		RecoveredRenders: d.RecoveredRenders.Load(),
	}
}

// newEngineLogger builds the engine's slog logger. Output goes to w,
// which must be capture-safe (the real stderr, not the intercepted
// one); a nil writer silences the logger.
func newEngineLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}))
}
