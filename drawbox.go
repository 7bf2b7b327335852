package opentui

// BorderStyle selects a box-drawing character set.
type BorderStyle string

const (
	BorderSingle  BorderStyle = "single"
	BorderDouble  BorderStyle = "double"
	BorderRounded BorderStyle = "rounded"
	BorderBold    BorderStyle = "bold"
)

// BorderChars holds the characters used to draw a border.
type BorderChars struct {
	TopLeft     string
	TopRight    string
	BottomLeft  string
	BottomRight string
	Horizontal  string
	Vertical    string
}

// BorderCharSets maps each style to its characters.
var BorderCharSets = map[BorderStyle]BorderChars{
	BorderSingle: {
		TopLeft: "┌", TopRight: "┐", BottomLeft: "└", BottomRight: "┘",
		Horizontal: "─", Vertical: "│",
	},
	BorderDouble: {
		TopLeft: "╔", TopRight: "╗", BottomLeft: "╚", BottomRight: "╝",
		Horizontal: "═", Vertical: "║",
	},
	BorderRounded: {
		TopLeft: "╭", TopRight: "╮", BottomLeft: "╰", BottomRight: "╯",
		Horizontal: "─", Vertical: "│",
	},
	BorderBold: {
		TopLeft: "┏", TopRight: "┓", BottomLeft: "┗", BottomRight: "┛",
		Horizontal: "━", Vertical: "┃",
	},
}

// BorderSides selects which sides of a box to draw.
type BorderSides struct {
	Top    bool
	Right  bool
	Bottom bool
	Left   bool
}

// AllBorders draws every side.
var AllBorders = BorderSides{Top: true, Right: true, Bottom: true, Left: true}

// TitleAlignment positions an in-border title.
type TitleAlignment uint8

const (
	TitleLeft TitleAlignment = iota
	TitleCenter
	TitleRight
)

// BoxOptions configures DrawBox.
type BoxOptions struct {
	X, Y, W, H int
	Style      BorderStyle
	// Border selects the sides to draw; zero value draws none, use
	// AllBorders for a full frame.
	Border BorderSides
	// Custom overrides the style's character set when non-nil.
	Custom          *BorderChars
	BorderColor     RGBA
	BackgroundColor RGBA
	ShouldFill      bool
	Title           string
	TitleAlignment  TitleAlignment
}

// DrawBox draws a rectangular border with an optional fill and an
// optional in-border title, clipped by the scissor stack.
func (b *CellBuffer) DrawBox(opts BoxOptions) {
	b.checkAlive("DrawBox")
	if opts.W <= 0 || opts.H <= 0 {
		return
	}
	chars, ok := BorderCharSets[opts.Style]
	if !ok {
		chars = BorderCharSets[BorderSingle]
	}
	if opts.Custom != nil {
		chars = *opts.Custom
	}

	x, y, w, h := opts.X, opts.Y, opts.W, opts.H
	right := x + w - 1
	bottom := y + h - 1

	if opts.ShouldFill {
		ix, iy, iw, ih := x, y, w, h
		if opts.Border.Top {
			iy++
			ih--
		}
		if opts.Border.Bottom {
			ih--
		}
		if opts.Border.Left {
			ix++
			iw--
		}
		if opts.Border.Right {
			iw--
		}
		b.FillRect(ix, iy, iw, ih, opts.BackgroundColor)
	}

	fg, bg := opts.BorderColor, opts.BackgroundColor

	if opts.Border.Top {
		for cx := x + 1; cx < right; cx++ {
			b.SetCell(cx, y, chars.Horizontal, fg, bg, 0)
		}
	}
	if opts.Border.Bottom && h > 1 {
		for cx := x + 1; cx < right; cx++ {
			b.SetCell(cx, bottom, chars.Horizontal, fg, bg, 0)
		}
	}
	if opts.Border.Left {
		for cy := y + 1; cy < bottom; cy++ {
			b.SetCell(x, cy, chars.Vertical, fg, bg, 0)
		}
	}
	if opts.Border.Right && w > 1 {
		for cy := y + 1; cy < bottom; cy++ {
			b.SetCell(right, cy, chars.Vertical, fg, bg, 0)
		}
	}

	// Corners only where both adjoining sides are drawn; a lone side
	// runs edge to edge instead.
	switch {
	case opts.Border.Top && opts.Border.Left:
		b.SetCell(x, y, chars.TopLeft, fg, bg, 0)
	case opts.Border.Top:
		b.SetCell(x, y, chars.Horizontal, fg, bg, 0)
	case opts.Border.Left:
		b.SetCell(x, y, chars.Vertical, fg, bg, 0)
	}
	switch {
	case opts.Border.Top && opts.Border.Right:
		b.SetCell(right, y, chars.TopRight, fg, bg, 0)
	case opts.Border.Top:
		b.SetCell(right, y, chars.Horizontal, fg, bg, 0)
	case opts.Border.Right:
		b.SetCell(right, y, chars.Vertical, fg, bg, 0)
	}
	if h > 1 {
		switch {
		case opts.Border.Bottom && opts.Border.Left:
			b.SetCell(x, bottom, chars.BottomLeft, fg, bg, 0)
		case opts.Border.Bottom:
			b.SetCell(x, bottom, chars.Horizontal, fg, bg, 0)
		case opts.Border.Left:
			b.SetCell(x, bottom, chars.Vertical, fg, bg, 0)
		}
		switch {
		case opts.Border.Bottom && opts.Border.Right:
			b.SetCell(right, bottom, chars.BottomRight, fg, bg, 0)
		case opts.Border.Bottom:
			b.SetCell(right, bottom, chars.Horizontal, fg, bg, 0)
		case opts.Border.Right:
			b.SetCell(right, bottom, chars.Vertical, fg, bg, 0)
		}
	}

	if opts.Title != "" && opts.Border.Top && w > 4 {
		b.drawBoxTitle(opts, chars)
	}
}

// drawBoxTitle paints the title into the top border, truncated to the
// available width.
func (b *CellBuffer) drawBoxTitle(opts BoxOptions, chars BorderChars) {
	avail := opts.W - 4 // corners plus one pad cell each side
	title := opts.Title
	graphemes := SegmentGraphemes(title, b.widthMethod)
	width := 0
	cut := len(graphemes)
	for i, g := range graphemes {
		if width+g.Width > avail {
			cut = i
			break
		}
		width += g.Width
	}
	graphemes = graphemes[:cut]
	if len(graphemes) == 0 {
		return
	}

	var tx int
	switch opts.TitleAlignment {
	case TitleCenter:
		tx = opts.X + (opts.W-width)/2
	case TitleRight:
		tx = opts.X + opts.W - width - 2
	default:
		tx = opts.X + 2
	}

	b.SetCell(tx-1, opts.Y, " ", opts.BorderColor, opts.BackgroundColor, 0)
	cx := tx
	for _, g := range graphemes {
		b.SetCell(cx, opts.Y, g.Cluster, opts.BorderColor, opts.BackgroundColor, 0)
		cx += g.Width
	}
	b.SetCell(cx, opts.Y, " ", opts.BorderColor, opts.BackgroundColor, 0)
}
