package opentui

// HitGrid is the per-frame spatial index for mouse hit testing: one
// renderable num per cell, last writer wins within render-list order,
// so the topmost visible node owns each cell.
type HitGrid struct {
	width, height int
	cells         []int64
}

// NewHitGrid creates a grid covering the render area.
func NewHitGrid(width, height int) *HitGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &HitGrid{width: width, height: height, cells: make([]int64, width*height)}
}

// Resize reallocates the grid.
func (g *HitGrid) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	g.width, g.height = width, height
	g.cells = make([]int64, width*height)
}

// Clear zeroes the grid at the start of a frame.
func (g *HitGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

// FillRect stamps a renderable's rectangle. The rectangle is clipped
// to the grid and optionally to an additional scissor rectangle.
func (g *HitGrid) FillRect(r Rect, clip *Rect, num int64) {
	area := r.Intersect(Rect{W: g.width, H: g.height})
	if clip != nil {
		area = area.Intersect(*clip)
	}
	if area.Empty() {
		return
	}
	for y := area.Y; y < area.Y+area.H; y++ {
		row := y * g.width
		for x := area.X; x < area.X+area.W; x++ {
			g.cells[row+x] = num
		}
	}
}

// HitTest returns the topmost renderable num at the cell, or 0.
func (g *HitGrid) HitTest(x, y int) int64 {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0
	}
	return g.cells[y*g.width+x]
}
