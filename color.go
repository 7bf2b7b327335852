// Package opentui is a retained-mode terminal UI engine: a tree of
// renderables laid out with flexbox, composited into a double-buffered
// grid of styled cells, and written to the terminal as a minimal diff
// of escape sequences each frame.
package opentui

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBA is a 4-channel color with each channel in [0, 1]. Alpha below 1
// means the color composites over whatever is beneath it.
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Transparent = RGBA{}
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
)

// RGB returns an opaque color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// NewRGBA returns a color with an explicit alpha channel.
func NewRGBA(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// ParseColor parses a hex color string ("#rrggbb" or "#rgb") into an
// opaque RGBA.
func ParseColor(s string) (RGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGBA{}, &InvalidArgumentError{Arg: "color", Reason: fmt.Sprintf("malformed color %q", s)}
	}
	return RGB(c.R, c.G, c.B), nil
}

// MustParseColor is ParseColor that panics on malformed input. For
// literals in examples and tests.
func MustParseColor(s string) RGBA {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// IsOpaque reports whether the color fully replaces what is beneath it.
func (c RGBA) IsOpaque() bool { return c.A >= 1 }

// BlendOver composites c over dst using straight alpha.
func (c RGBA) BlendOver(dst RGBA) RGBA {
	if c.A >= 1 {
		return c
	}
	if c.A <= 0 {
		return dst
	}
	outA := c.A + dst.A*(1-c.A)
	if outA <= 0 {
		return RGBA{}
	}
	return RGBA{
		R: (c.R*c.A + dst.R*dst.A*(1-c.A)) / outA,
		G: (c.G*c.A + dst.G*dst.A*(1-c.A)) / outA,
		B: (c.B*c.A + dst.B*dst.A*(1-c.A)) / outA,
		A: outA,
	}
}

// channels8 quantizes to 8-bit channels for SGR emission.
func (c RGBA) channels8() (uint8, uint8, uint8) {
	return quant8(c.R), quant8(c.G), quant8(c.B)
}

func quant8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
