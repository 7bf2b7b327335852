package layout

import "testing"

func box(n *Node) Box { return n.Layout() }

func TestRowGrowSplitsEvenly(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)

	a := NewNode()
	a.SetFlexGrow(1)
	b := NewNode()
	b.SetFlexGrow(1)
	parent.InsertChild(a, 0)
	parent.InsertChild(b, 1)

	parent.CalculateLayout(10, 3)

	if got := box(a); got != (Box{Left: 0, Top: 0, Width: 5, Height: 3}) {
		t.Errorf("child A = %+v, want 5x3 at origin", got)
	}
	if got := box(b); got != (Box{Left: 5, Top: 0, Width: 5, Height: 3}) {
		t.Errorf("child B = %+v, want 5x3 at (5,0)", got)
	}
}

func TestRowGrowUnevenSplit(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)

	a := NewNode()
	a.SetFlexGrow(1)
	b := NewNode()
	b.SetFlexGrow(2)
	parent.InsertChild(a, 0)
	parent.InsertChild(b, 1)

	parent.CalculateLayout(9, 1)

	if box(a).Width != 3 || box(b).Width != 6 {
		t.Errorf("widths = %d,%d, want 3,6", box(a).Width, box(b).Width)
	}
	if box(a).Width+box(b).Width != 9 {
		t.Errorf("children do not tile the parent: %d+%d != 9", box(a).Width, box(b).Width)
	}
}

func TestColumnDefaultStacksChildren(t *testing.T) {
	parent := NewNode()

	a := NewNode()
	a.SetHeight(Point(2))
	b := NewNode()
	b.SetHeight(Point(3))
	parent.InsertChild(a, 0)
	parent.InsertChild(b, 1)

	parent.CalculateLayout(8, 10)

	if got := box(a); got.Top != 0 || got.Height != 2 {
		t.Errorf("child A = %+v", got)
	}
	if got := box(b); got.Top != 2 || got.Height != 3 {
		t.Errorf("child B = %+v, want top 2 height 3", got)
	}
	// stretch cross axis by default
	if box(a).Width != 8 || box(b).Width != 8 {
		t.Errorf("children should stretch to parent width, got %d and %d", box(a).Width, box(b).Width)
	}
}

func TestPercentDimensions(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)

	a := NewNode()
	a.SetWidth(Percent(25))
	b := NewNode()
	b.SetFlexGrow(1)
	parent.InsertChild(a, 0)
	parent.InsertChild(b, 1)

	parent.CalculateLayout(20, 4)

	if box(a).Width != 5 {
		t.Errorf("25%% of 20 = %d, want 5", box(a).Width)
	}
	if box(b).Width != 15 {
		t.Errorf("grower should take the rest, got %d", box(b).Width)
	}
}

func TestShrinkProportionalToBasis(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)

	a := NewNode()
	a.SetWidth(Point(30))
	b := NewNode()
	b.SetWidth(Point(10))
	parent.InsertChild(a, 0)
	parent.InsertChild(b, 1)

	parent.CalculateLayout(20, 1)

	// Overflow of 20 shrinks 3:1.
	if box(a).Width != 15 || box(b).Width != 5 {
		t.Errorf("shrunk widths = %d,%d, want 15,5", box(a).Width, box(b).Width)
	}
}

func TestJustifyContent(t *testing.T) {
	tests := []struct {
		name    string
		justify Justify
		wantAx  int
		wantBx  int
	}{
		{"flex start", JustifyFlexStart, 0, 2},
		{"center", JustifyCenter, 3, 5},
		{"flex end", JustifyFlexEnd, 6, 8},
		{"space between", JustifySpaceBetween, 0, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := NewNode()
			parent.SetDirection(Row)
			parent.SetJustify(tt.justify)

			a := NewNode()
			a.SetWidth(Point(2))
			b := NewNode()
			b.SetWidth(Point(2))
			parent.InsertChild(a, 0)
			parent.InsertChild(b, 1)

			parent.CalculateLayout(10, 1)

			if box(a).Left != tt.wantAx || box(b).Left != tt.wantBx {
				t.Errorf("lefts = %d,%d, want %d,%d", box(a).Left, box(b).Left, tt.wantAx, tt.wantBx)
			}
		})
	}
}

func TestAlignItems(t *testing.T) {
	tests := []struct {
		name  string
		align Align
		wantY int
		wantH int
	}{
		{"stretch fills cross", AlignStretch, 0, 6},
		{"start", AlignFlexStart, 0, 2},
		{"center", AlignCenter, 2, 2},
		{"end", AlignFlexEnd, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := NewNode()
			parent.SetDirection(Row)
			parent.SetAlignItems(tt.align)

			c := NewNode()
			c.SetWidth(Point(3))
			if tt.align != AlignStretch {
				c.SetHeight(Point(2))
			}
			parent.InsertChild(c, 0)

			parent.CalculateLayout(10, 6)

			if box(c).Top != tt.wantY || box(c).Height != tt.wantH {
				t.Errorf("box = %+v, want top %d height %d", box(c), tt.wantY, tt.wantH)
			}
		})
	}
}

func TestPaddingAndBorderInsetChildren(t *testing.T) {
	parent := NewNode()
	parent.SetPadding(EdgeLeft, Point(2))
	parent.SetPadding(EdgeTop, Point(1))
	parent.SetBorder(EdgeLeft, 1)
	parent.SetBorder(EdgeTop, 1)

	c := NewNode()
	c.SetFlexGrow(1)
	parent.InsertChild(c, 0)

	parent.CalculateLayout(12, 6)

	if box(c).Left != 3 || box(c).Top != 2 {
		t.Errorf("child origin = (%d,%d), want (3,2)", box(c).Left, box(c).Top)
	}
}

func TestAbsolutePositioning(t *testing.T) {
	parent := NewNode()
	c := NewNode()
	c.SetPositionType(PositionAbsolute)
	c.SetPosition(EdgeLeft, Point(4))
	c.SetPosition(EdgeTop, Point(2))
	c.SetWidth(Point(3))
	c.SetHeight(Point(1))
	parent.InsertChild(c, 0)

	parent.CalculateLayout(20, 10)

	if got := box(c); got != (Box{Left: 4, Top: 2, Width: 3, Height: 1}) {
		t.Errorf("absolute child = %+v", got)
	}
}

func TestAbsoluteRightBottomAnchored(t *testing.T) {
	parent := NewNode()
	c := NewNode()
	c.SetPositionType(PositionAbsolute)
	c.SetPosition(EdgeRight, Point(1))
	c.SetPosition(EdgeBottom, Point(1))
	c.SetWidth(Point(4))
	c.SetHeight(Point(2))
	parent.InsertChild(c, 0)

	parent.CalculateLayout(20, 10)

	if got := box(c); got.Left != 15 || got.Top != 7 {
		t.Errorf("anchored child at (%d,%d), want (15,7)", got.Left, got.Top)
	}
}

func TestAbsoluteStretchedByOpposingEdges(t *testing.T) {
	parent := NewNode()
	c := NewNode()
	c.SetPositionType(PositionAbsolute)
	c.SetPosition(EdgeLeft, Point(2))
	c.SetPosition(EdgeRight, Point(2))
	c.SetHeight(Point(1))
	parent.InsertChild(c, 0)

	parent.CalculateLayout(20, 5)

	if box(c).Width != 16 {
		t.Errorf("width = %d, want 16", box(c).Width)
	}
}

func TestMeasureFuncIntrinsicSize(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)
	parent.SetAlignItems(AlignFlexStart)

	text := NewNode()
	text.SetMeasureFunc(func(w float64, wm MeasureMode, h float64, hm MeasureMode) (float64, float64) {
		return 11, 1
	})
	parent.InsertChild(text, 0)

	parent.CalculateLayout(40, 5)

	if box(text).Width != 11 || box(text).Height != 1 {
		t.Errorf("measured box = %+v, want 11x1", box(text))
	}
}

func TestMeasureFuncReceivesWidthConstraint(t *testing.T) {
	parent := NewNode()

	var sawWidth float64
	var sawMode MeasureMode
	text := NewNode()
	text.SetMeasureFunc(func(w float64, wm MeasureMode, h float64, hm MeasureMode) (float64, float64) {
		sawWidth, sawMode = w, wm
		return w, 3
	})
	parent.InsertChild(text, 0)

	parent.CalculateLayout(24, 10)

	if sawMode == MeasureUndefined {
		t.Fatal("measure never saw a width constraint")
	}
	if sawWidth != 24 {
		t.Errorf("measure width = %v, want 24", sawWidth)
	}
	if box(text).Height != 3 {
		t.Errorf("height = %d, want 3", box(text).Height)
	}
}

func TestMinMaxClamp(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)

	c := NewNode()
	c.SetFlexGrow(1)
	c.SetMaxWidth(Point(6))
	parent.InsertChild(c, 0)

	parent.CalculateLayout(20, 1)

	if box(c).Width != 6 {
		t.Errorf("width = %d, want clamped 6", box(c).Width)
	}
}

func TestWrapBreaksLines(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)
	parent.SetWrap(WrapWrap)

	var kids []*Node
	for i := 0; i < 3; i++ {
		c := NewNode()
		c.SetWidth(Point(4))
		c.SetHeight(Point(1))
		parent.InsertChild(c, i)
		kids = append(kids, c)
	}

	parent.CalculateLayout(10, 5)

	if box(kids[0]).Top != 0 || box(kids[1]).Top != 0 {
		t.Errorf("first two children should share line 0")
	}
	if box(kids[2]).Top != 1 {
		t.Errorf("third child top = %d, want wrapped to 1", box(kids[2]).Top)
	}
	if box(kids[2]).Left != 0 {
		t.Errorf("wrapped child left = %d, want 0", box(kids[2]).Left)
	}
}

func TestDirtyPropagation(t *testing.T) {
	parent := NewNode()
	child := NewNode()
	parent.InsertChild(child, 0)

	parent.CalculateLayout(10, 10)
	if parent.IsDirty() || child.IsDirty() {
		t.Fatal("solve should clear dirty flags")
	}

	child.SetWidth(Point(3))
	if !child.IsDirty() {
		t.Error("setter should dirty the child")
	}
	if !parent.IsDirty() {
		t.Error("dirtiness should propagate to the root")
	}
}

func TestRemoveChildExcludesFromFlow(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(Row)
	a := NewNode()
	a.SetFlexGrow(1)
	b := NewNode()
	b.SetFlexGrow(1)
	parent.InsertChild(a, 0)
	parent.InsertChild(b, 1)

	parent.CalculateLayout(10, 1)
	parent.RemoveChild(a)
	parent.CalculateLayout(10, 1)

	if box(b).Width != 10 || box(b).Left != 0 {
		t.Errorf("lone child = %+v, want full width at origin", box(b))
	}
}

func TestReverseRowPlacement(t *testing.T) {
	parent := NewNode()
	parent.SetDirection(RowReverse)

	a := NewNode()
	a.SetWidth(Point(3))
	b := NewNode()
	b.SetWidth(Point(3))
	parent.InsertChild(a, 0)
	parent.InsertChild(b, 1)

	parent.CalculateLayout(10, 1)

	if box(a).Left != 7 {
		t.Errorf("first child in row-reverse at %d, want 7", box(a).Left)
	}
	if box(b).Left != 4 {
		t.Errorf("second child in row-reverse at %d, want 4", box(b).Left)
	}
}
