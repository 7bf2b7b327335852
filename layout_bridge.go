package opentui

import (
	"strconv"
	"strings"

	"github.com/zephraph/opentui/layout"
)

// The layout bridge: every Base owns exactly one solver node, style
// setters push through to it (marking it dirty), and the render
// pipeline reads computed boxes back after the global solve.

// ParseSize converts a style string to a layout value: "auto", an
// integer cell count, or "N%".
func ParseSize(s string) (layout.Value, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") {
		return layout.Auto(), nil
	}
	if strings.HasSuffix(s, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return layout.Undefined, &InvalidArgumentError{Arg: "size", Reason: "malformed percentage " + strconv.Quote(s)}
		}
		return layout.Percent(p), nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return layout.Undefined, &InvalidArgumentError{Arg: "size", Reason: "malformed size " + strconv.Quote(s)}
	}
	if n < 0 {
		return layout.Undefined, &InvalidArgumentError{Arg: "size", Reason: "negative size"}
	}
	return layout.Point(n), nil
}

func (b *Base) applyLayoutOptions(opts Options) {
	ln := b.ln
	if opts.Width.IsDefined() {
		ln.SetWidth(opts.Width)
	}
	if opts.Height.IsDefined() {
		ln.SetHeight(opts.Height)
	}
	if opts.MinWidth.IsDefined() {
		ln.SetMinWidth(opts.MinWidth)
	}
	if opts.MinHeight.IsDefined() {
		ln.SetMinHeight(opts.MinHeight)
	}
	if opts.MaxWidth.IsDefined() {
		ln.SetMaxWidth(opts.MaxWidth)
	}
	if opts.MaxHeight.IsDefined() {
		ln.SetMaxHeight(opts.MaxHeight)
	}
	if opts.FlexGrow != 0 {
		ln.SetFlexGrow(opts.FlexGrow)
	}
	if opts.FlexShrink != nil {
		ln.SetFlexShrink(*opts.FlexShrink)
	}
	if opts.FlexBasis.IsDefined() {
		ln.SetFlexBasis(opts.FlexBasis)
	}
	ln.SetDirection(opts.FlexDirection)
	ln.SetWrap(opts.FlexWrap)
	if opts.AlignItems != layout.AlignAuto {
		ln.SetAlignItems(opts.AlignItems)
	}
	if opts.AlignSelf != layout.AlignAuto {
		ln.SetAlignSelf(opts.AlignSelf)
	}
	ln.SetJustify(opts.Justify)
	ln.SetPositionType(opts.Position)
	if opts.Top.IsDefined() {
		ln.SetPosition(layout.EdgeTop, opts.Top)
	}
	if opts.Right.IsDefined() {
		ln.SetPosition(layout.EdgeRight, opts.Right)
	}
	if opts.Bottom.IsDefined() {
		ln.SetPosition(layout.EdgeBottom, opts.Bottom)
	}
	if opts.Left.IsDefined() {
		ln.SetPosition(layout.EdgeLeft, opts.Left)
	}
	applyEdgeValues(ln.SetMargin, opts.Margin)
	applyEdgeValues(ln.SetPadding, opts.Padding)
	if opts.Border.Top > 0 {
		ln.SetBorder(layout.EdgeTop, float64(opts.Border.Top))
	}
	if opts.Border.Right > 0 {
		ln.SetBorder(layout.EdgeRight, float64(opts.Border.Right))
	}
	if opts.Border.Bottom > 0 {
		ln.SetBorder(layout.EdgeBottom, float64(opts.Border.Bottom))
	}
	if opts.Border.Left > 0 {
		ln.SetBorder(layout.EdgeLeft, float64(opts.Border.Left))
	}
}

func applyEdgeValues(set func(layout.Edge, layout.Value), v EdgeValues) {
	if v.Top.IsDefined() {
		set(layout.EdgeTop, v.Top)
	}
	if v.Right.IsDefined() {
		set(layout.EdgeRight, v.Right)
	}
	if v.Bottom.IsDefined() {
		set(layout.EdgeBottom, v.Bottom)
	}
	if v.Left.IsDefined() {
		set(layout.EdgeLeft, v.Left)
	}
}

// Style setters. Each pushes to the solver node (marking the layout
// dirty) and requests a render.

func (b *Base) SetWidth(v layout.Value)  { b.ln.SetWidth(v); b.RequestRender() }
func (b *Base) SetHeight(v layout.Value) { b.ln.SetHeight(v); b.RequestRender() }

func (b *Base) SetMinWidth(v layout.Value)  { b.ln.SetMinWidth(v); b.RequestRender() }
func (b *Base) SetMinHeight(v layout.Value) { b.ln.SetMinHeight(v); b.RequestRender() }
func (b *Base) SetMaxWidth(v layout.Value)  { b.ln.SetMaxWidth(v); b.RequestRender() }
func (b *Base) SetMaxHeight(v layout.Value) { b.ln.SetMaxHeight(v); b.RequestRender() }

func (b *Base) SetFlexGrow(g float64)          { b.ln.SetFlexGrow(g); b.RequestRender() }
func (b *Base) SetFlexShrink(s float64)        { b.ln.SetFlexShrink(s); b.RequestRender() }
func (b *Base) SetFlexBasis(v layout.Value)    { b.ln.SetFlexBasis(v); b.RequestRender() }
func (b *Base) SetFlexDirection(d layout.Direction) { b.ln.SetDirection(d); b.RequestRender() }
func (b *Base) SetFlexWrap(w layout.Wrap)      { b.ln.SetWrap(w); b.RequestRender() }
func (b *Base) SetAlignItems(a layout.Align)   { b.ln.SetAlignItems(a); b.RequestRender() }
func (b *Base) SetAlignSelf(a layout.Align)    { b.ln.SetAlignSelf(a); b.RequestRender() }
func (b *Base) SetJustify(j layout.Justify)    { b.ln.SetJustify(j); b.RequestRender() }

func (b *Base) SetPositionType(p layout.PositionType) { b.ln.SetPositionType(p); b.RequestRender() }

func (b *Base) SetOffset(e layout.Edge, v layout.Value) { b.ln.SetPosition(e, v); b.RequestRender() }
func (b *Base) SetMargin(e layout.Edge, v layout.Value) { b.ln.SetMargin(e, v); b.RequestRender() }
func (b *Base) SetPadding(e layout.Edge, v layout.Value) {
	b.ln.SetPadding(e, v)
	b.RequestRender()
}
func (b *Base) SetBorderWidth(e layout.Edge, w int) {
	b.ln.SetBorder(e, float64(w))
	b.RequestRender()
}

// InstallMeasureFunc wires an intrinsic measure function into the
// solver node. Text-bearing kinds use it so auto-sized nodes measure
// their content.
func (b *Base) InstallMeasureFunc(fn layout.MeasureFunc) {
	b.ln.SetMeasureFunc(fn)
	b.RequestRender()
}

// InstallTextMeasure installs the TextBuffer measurement contract:
// (max line width, line count), re-wrapped at the proposed width.
func (b *Base) InstallTextMeasure(tb *TextBuffer) {
	b.InstallMeasureFunc(func(w float64, wm layout.MeasureMode, h float64, hm layout.MeasureMode) (float64, float64) {
		proposed := 0
		if wm != layout.MeasureUndefined {
			proposed = int(w)
		}
		mw, mh := tb.Measure(proposed)
		return float64(mw), float64(mh)
	})
}

// updateFromLayout reads the computed box after a solve, converting it
// to absolute coordinates. Returns true when the size changed.
func (b *Base) updateFromLayout(parentX, parentY int) (resized bool) {
	box := b.ln.Layout()
	b.x = parentX + box.Left + b.translateX
	b.y = parentY + box.Top + b.translateY
	if box.Width != b.width || box.Height != b.height {
		b.width = box.Width
		b.height = box.Height
		resized = true
	}
	return resized
}
