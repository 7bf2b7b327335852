package opentui

// CellChange is a single differing cell between two buffers. X always
// addresses a leading cell; a change detected on a continuation cell is
// reported at its leading position.
type CellChange struct {
	X    int
	Y    int
	Cell Cell
}

// DiffBuffers computes the cell changes needed to transform from into
// to. Only the overlapping region is compared; callers resize both
// buffers together so the regions match.
func DiffBuffers(from, to *CellBuffer) []CellChange {
	estimated := (to.Width() * to.Height()) / 5
	if estimated < 64 {
		estimated = 64
	}
	return DiffBuffersInto(from, to, make([]CellChange, 0, estimated))
}

// DiffBuffersInto appends the diff to result, avoiding allocation when
// the caller reuses a slice across frames.
func DiffBuffersInto(from, to *CellBuffer, result []CellChange) []CellChange {
	width := min(from.Width(), to.Width())
	height := min(from.Height(), to.Height())

	for y := 0; y < height; y++ {
		lastX := -2
		for x := 0; x < width; x++ {
			toCell := to.Get(x, y)
			if toCell.Equal(from.Get(x, y)) {
				continue
			}
			cx := x
			cell := toCell
			if cell.IsContinuation() {
				// Report the owning leading cell; skip if it was
				// already reported for this row.
				cx = x - 1
				if cx < 0 || cx == lastX {
					continue
				}
				cell = to.Get(cx, y)
			}
			if cx == lastX {
				continue
			}
			result = append(result, CellChange{X: cx, Y: y, Cell: cell})
			lastX = cx
		}
	}
	return result
}

// CellRun is a horizontal run of consecutive changed cells.
type CellRun struct {
	X     int
	Y     int
	Cells []Cell
}

// width returns the run's display width in cells.
func (r CellRun) width() int {
	w := 0
	for _, c := range r.Cells {
		w += int(c.Width)
	}
	return w
}

// FindRuns groups row-sorted changes into consecutive runs so the
// emitter can move the cursor once per run. Changes must be in the
// order produced by DiffBuffers (row-major, ascending x).
func FindRuns(changes []CellChange) []CellRun {
	return FindRunsInto(changes, make([]CellRun, 0, len(changes)/4+1))
}

// FindRunsInto appends runs to result, avoiding allocation when the
// caller reuses a slice across frames.
func FindRunsInto(changes []CellChange, result []CellRun) []CellRun {
	for _, change := range changes {
		if n := len(result); n > 0 {
			current := &result[n-1]
			if change.Y == current.Y && change.X == current.X+current.width() {
				current.Cells = append(current.Cells, change.Cell)
				continue
			}
		}
		result = append(result, CellRun{X: change.X, Y: change.Y, Cells: []Cell{change.Cell}})
	}
	return result
}
