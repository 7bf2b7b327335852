package opentui

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// WidthMethod selects how grapheme display widths are measured. The
// two methods disagree for some clusters (notably emoji with
// modifiers); the active method is reported by the RenderContext and
// captured by buffers at creation.
type WidthMethod uint8

const (
	// WidthWCWidth measures with wcwidth semantics (go-runewidth).
	WidthWCWidth WidthMethod = iota
	// WidthUnicode measures with full Unicode segmentation widths
	// (uniseg).
	WidthUnicode
)

// Grapheme is one user-perceived character and its display width
// (1 or 2 cells).
type Grapheme struct {
	Cluster string
	Width   int
}

// SegmentGraphemes splits s into grapheme clusters with widths
// measured by the given method. Zero-width clusters are widened to 1
// so every grapheme occupies at least one cell.
func SegmentGraphemes(s string, method WidthMethod) []Grapheme {
	if s == "" {
		return nil
	}
	out := make([]Grapheme, 0, len(s))
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		if method == WidthWCWidth {
			width = runewidth.StringWidth(cluster)
		}
		if width < 1 {
			width = 1
		}
		if width > 2 {
			width = 2
		}
		out = append(out, Grapheme{Cluster: cluster, Width: width})
	}
	return out
}

// MeasureText returns the display width of s under the given method.
func MeasureText(s string, method WidthMethod) int {
	if method == WidthWCWidth {
		return runewidth.StringWidth(s)
	}
	return uniseg.StringWidth(s)
}
