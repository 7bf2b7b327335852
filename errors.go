package opentui

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// InvalidArgumentError reports a malformed argument at the call site:
// negative dimensions, malformed percentage strings, an empty grapheme.
type InvalidArgumentError struct {
	Arg    string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("opentui: invalid argument %s: %s", e.Arg, e.Reason)
}

// UnknownAnchorError reports an InsertBefore whose anchor is not a
// current child of the parent.
type UnknownAnchorError struct {
	Parent string
	Anchor string
}

func (e *UnknownAnchorError) Error() string {
	return fmt.Sprintf("opentui: anchor %q is not a child of %q", e.Anchor, e.Parent)
}

// UnknownRenderableError reports an operation on a destroyed or
// detached node where a live parent is required.
type UnknownRenderableError struct {
	ID string
	Op string
}

func (e *UnknownRenderableError) Error() string {
	return fmt.Sprintf("opentui: %s on unknown renderable %q", e.Op, e.ID)
}

// InvariantViolation is the panic value raised on internal contract
// breaks: mismatched scissor push/pop, drawing into a released buffer,
// re-entrant frame render. Debug builds let it propagate; the frame
// loop recovers in release mode and skips the frame.
type InvariantViolation struct {
	Op     string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("opentui: invariant violated in %s: %s", e.Op, e.Detail)
}

// violated panics with an InvariantViolation.
func violated(op, detail string) {
	panic(&InvariantViolation{Op: op, Detail: detail})
}

// wrapIO annotates a terminal I/O failure. These are fatal: the engine
// tears the terminal down and surfaces the error to the top-level
// handler.
func wrapIO(err error, msg string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(err, "opentui: "+msg)
}
