package layout

import "math"

// CalculateLayout runs a single global solve from n, treating it as the
// root with the given available size. Computed boxes are read back with
// Layout(); they are rounded to whole cells so that adjacent boxes
// share edges without gaps.
func (n *Node) CalculateLayout(availWidth, availHeight float64) {
	w, wOK := n.style.width.resolve(availWidth)
	if !wOK {
		w = availWidth
	}
	h, hOK := n.style.height.resolve(availHeight)
	if !hOK {
		h = availHeight
	}
	w = n.clampWidth(w, availWidth)
	h = n.clampHeight(h, availHeight)

	n.resultLeft = 0
	n.resultTop = 0
	n.solve(w, true, h, true, availWidth, availHeight)
	n.roundTree(0, 0)
	n.clearDirty()
}

func (n *Node) clearDirty() {
	n.dirty = false
	for _, c := range n.children {
		c.clearDirty()
	}
}

// roundTree converts float results to integer boxes. Rounding happens
// on absolute edges so that a child's right edge and its sibling's left
// edge land on the same cell boundary.
func (n *Node) roundTree(absLeft, absTop float64) {
	parentL := math.Round(absLeft)
	parentT := math.Round(absTop)
	l := absLeft + n.resultLeft
	t := absTop + n.resultTop
	n.computed = Box{
		Left:   int(math.Round(l) - parentL),
		Top:    int(math.Round(t) - parentT),
		Width:  int(math.Round(l+n.resultWidth) - math.Round(l)),
		Height: int(math.Round(t+n.resultHeight) - math.Round(t)),
	}
	for _, c := range n.children {
		c.roundTree(l, t)
	}
}

// edge sums

func (n *Node) paddingBorder(e Edge, against float64) float64 {
	p, _ := n.style.padding[e].resolve(against)
	return p + n.style.border[e]
}

func (n *Node) horizontalInset(against float64) float64 {
	return n.paddingBorder(EdgeLeft, against) + n.paddingBorder(EdgeRight, against)
}

func (n *Node) verticalInset(against float64) float64 {
	return n.paddingBorder(EdgeTop, against) + n.paddingBorder(EdgeBottom, against)
}

func (n *Node) marginAxis(horizontal bool, against float64) float64 {
	if horizontal {
		l, _ := n.style.margin[EdgeLeft].resolve(against)
		r, _ := n.style.margin[EdgeRight].resolve(against)
		return l + r
	}
	t, _ := n.style.margin[EdgeTop].resolve(against)
	b, _ := n.style.margin[EdgeBottom].resolve(against)
	return t + b
}

func (n *Node) marginLeading(horizontal bool, against float64) float64 {
	if horizontal {
		v, _ := n.style.margin[EdgeLeft].resolve(against)
		return v
	}
	v, _ := n.style.margin[EdgeTop].resolve(against)
	return v
}

func (n *Node) clampWidth(w, against float64) float64 {
	if v, ok := n.style.maxWidth.resolve(against); ok && w > v {
		w = v
	}
	if v, ok := n.style.minWidth.resolve(against); ok && w < v {
		w = v
	}
	if w < 0 {
		w = 0
	}
	return w
}

func (n *Node) clampHeight(h, against float64) float64 {
	if v, ok := n.style.maxHeight.resolve(against); ok && h > v {
		h = v
	}
	if v, ok := n.style.minHeight.resolve(against); ok && h < v {
		h = v
	}
	if h < 0 {
		h = 0
	}
	return h
}

// alignment resolution: alignSelf wins over the parent's alignItems.
func resolveAlign(parent, child *Node) Align {
	if child.style.alignSelf != AlignAuto {
		return child.style.alignSelf
	}
	if parent.style.alignItems == AlignAuto {
		return AlignStretch
	}
	return parent.style.alignItems
}

// flexItem is the per-child working state of one solve.
type flexItem struct {
	node     *Node
	base     float64 // flex base size (main axis, border box)
	target   float64 // main size after grow/shrink
	cross    float64 // cross size (border box)
	mainMar  float64
	crossMar float64
}

// solve computes the node's size and lays out its children. w/h are the
// border-box dimensions when defined; when a dimension is undefined the
// node sizes itself to content and reports the result in
// resultWidth/resultHeight.
func (n *Node) solve(w float64, wDef bool, h float64, hDef bool, ownerW, ownerH float64) {
	isRow := n.style.direction.IsRow()

	// Leaf with a measure function: intrinsic sizing of the content
	// box, padding and border added back.
	if n.measure != nil && len(n.children) == 0 {
		hi := n.horizontalInset(ownerW)
		vi := n.verticalInset(ownerH)
		if !wDef || !hDef {
			mw, wm := w-hi, MeasureExactly
			if !wDef {
				mw, wm = measureAvail(ownerW - hi)
			}
			mh, hm := h-vi, MeasureExactly
			if !hDef {
				mh, hm = measureAvail(ownerH - vi)
			}
			if mw < 0 {
				mw = 0
			}
			if mh < 0 {
				mh = 0
			}
			cw, ch := n.measure(mw, wm, mh, hm)
			if !wDef {
				w = n.clampWidth(cw+hi, ownerW)
			}
			if !hDef {
				h = n.clampHeight(ch+vi, ownerH)
			}
		}
		n.resultWidth = w
		n.resultHeight = h
		return
	}

	innerW := w - n.horizontalInset(ownerW)
	innerH := h - n.verticalInset(ownerH)
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	innerMain, mainDef := innerH, hDef
	innerCross, crossDef := innerW, wDef
	if isRow {
		innerMain, mainDef = innerW, wDef
		innerCross, crossDef = innerH, hDef
	}

	// Collect flow items; absolute children are positioned after the
	// node's final size is known.
	var items []flexItem
	var absolute []*Node
	for _, c := range n.children {
		if c.style.positionType == PositionAbsolute {
			absolute = append(absolute, c)
			continue
		}
		items = append(items, flexItem{node: c})
	}

	for i := range items {
		c := items[i].node
		items[i].mainMar = c.marginAxis(isRow, innerW)
		items[i].crossMar = c.marginAxis(!isRow, innerW)
		items[i].base = n.flexBase(c, isRow, innerMain, mainDef, innerW, innerH, crossDef)
	}

	// Line breaking.
	lines := n.breakLines(items, innerMain, mainDef)

	totalMain := 0.0
	crossOffset := 0.0
	totalCross := 0.0
	for li := range lines {
		line := lines[li]
		lineMain := n.flexLine(line, isRow, innerMain, mainDef, innerW, innerH, innerCross, crossDef, len(lines) == 1)
		if lineMain > totalMain {
			totalMain = lineMain
		}

		// Line cross extent: tallest item.
		lineCross := 0.0
		for i := range line {
			if ext := line[i].cross + line[i].crossMar; ext > lineCross {
				lineCross = ext
			}
		}
		if len(lines) == 1 && crossDef {
			lineCross = innerCross
		}

		n.placeLine(line, isRow, innerMain, mainDef, lineCross, crossOffset, innerW, innerH)
		crossOffset += lineCross
		totalCross = crossOffset
	}

	// Content-based size for undefined dimensions.
	if !wDef {
		content := totalCross
		if isRow {
			content = totalMain
		}
		w = n.clampWidth(content+n.horizontalInset(ownerW), ownerW)
	}
	if !hDef {
		content := totalMain
		if isRow {
			content = totalCross
		}
		h = n.clampHeight(content+n.verticalInset(ownerH), ownerH)
	}
	n.resultWidth = w
	n.resultHeight = h

	n.placeAbsolute(absolute, w, h)
}

// measureAvail maps an available extent to a measure constraint: a
// positive extent is an at-most bound, anything else is unconstrained.
func measureAvail(v float64) (float64, MeasureMode) {
	if v > 0 {
		return v, MeasureAtMost
	}
	return 0, MeasureUndefined
}

// flexBase computes a child's flex base size along the main axis.
func (n *Node) flexBase(c *Node, isRow bool, innerMain float64, mainDef bool, innerW, innerH float64, crossDef bool) float64 {
	against := innerMain
	if !mainDef {
		against = 0
	}
	if v, ok := c.style.flexBasis.resolve(against); ok && c.style.flexBasis.Unit != UnitAuto {
		return v
	}
	dim := c.style.height
	if isRow {
		dim = c.style.width
	}
	if v, ok := dim.resolve(against); ok {
		return v
	}
	// Content-based: solve the child under the available constraints
	// and take its resulting main size.
	cw, cwDef := c.style.width.resolve(innerW)
	ch, chDef := c.style.height.resolve(innerH)
	c.solve(cw, cwDef, ch, chDef, innerW, innerH)
	if isRow {
		return c.resultWidth
	}
	return c.resultHeight
}

// breakLines splits items into flex lines. Without wrap (or without a
// defined main size) everything lands on one line.
func (n *Node) breakLines(items []flexItem, innerMain float64, mainDef bool) [][]flexItem {
	if n.style.wrap == NoWrap || !mainDef || len(items) == 0 {
		if len(items) == 0 {
			return nil
		}
		return [][]flexItem{items}
	}
	var lines [][]flexItem
	start := 0
	used := 0.0
	for i := range items {
		outer := items[i].base + items[i].mainMar
		gap := 0.0
		if i > start {
			gap = n.style.gap
		}
		if i > start && used+gap+outer > innerMain {
			lines = append(lines, items[start:i])
			start = i
			used = outer
			continue
		}
		used += gap + outer
	}
	lines = append(lines, items[start:])
	if n.style.wrap == WrapReverse {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	return lines
}

// flexLine distributes free space and resolves each item's final sizes,
// recursively solving children. Returns the line's occupied main
// extent including gaps.
func (n *Node) flexLine(line []flexItem, isRow bool, innerMain float64, mainDef bool, innerW, innerH, innerCross float64, crossDef, singleLine bool) float64 {
	gaps := float64(len(line)-1) * n.style.gap

	sumOuter := gaps
	for i := range line {
		sumOuter += line[i].base + line[i].mainMar
	}

	if mainDef {
		free := innerMain - sumOuter
		if free > 0 {
			totalGrow := 0.0
			for i := range line {
				totalGrow += line[i].node.style.flexGrow
			}
			if totalGrow > 0 {
				for i := range line {
					line[i].target = line[i].base + free*line[i].node.style.flexGrow/totalGrow
				}
			} else {
				for i := range line {
					line[i].target = line[i].base
				}
			}
		} else if free < 0 {
			// Shrink in proportion to shrink factor × base size.
			totalWeight := 0.0
			for i := range line {
				totalWeight += line[i].node.style.flexShrink * line[i].base
			}
			for i := range line {
				line[i].target = line[i].base
				if totalWeight > 0 {
					line[i].target += free * (line[i].node.style.flexShrink * line[i].base) / totalWeight
				}
				if line[i].target < 0 {
					line[i].target = 0
				}
			}
		} else {
			for i := range line {
				line[i].target = line[i].base
			}
		}
	} else {
		for i := range line {
			line[i].target = line[i].base
		}
	}

	// Clamp targets by the child's own min/max along the main axis.
	for i := range line {
		c := line[i].node
		if isRow {
			line[i].target = c.clampWidth(line[i].target, innerW)
		} else {
			line[i].target = c.clampHeight(line[i].target, innerH)
		}
	}

	// Resolve cross sizes and recursively solve children at final
	// sizes.
	for i := range line {
		c := line[i].node
		crossStyle := c.style.height
		if !isRow {
			crossStyle = c.style.width
		}
		cv, cvOK := crossStyle.resolve(innerCross)
		stretch := resolveAlign(n, c) == AlignStretch

		var cw, ch float64
		var cwDef, chDef bool
		if isRow {
			cw, cwDef = line[i].target, true
			if cvOK {
				ch, chDef = cv, true
			} else if stretch && crossDef && singleLine {
				ch, chDef = innerCross-line[i].crossMar, true
			}
		} else {
			ch, chDef = line[i].target, true
			if cvOK {
				cw, cwDef = cv, true
			} else if stretch && crossDef && singleLine {
				cw, cwDef = innerW-line[i].crossMar, true
			}
		}
		c.solve(cw, cwDef, ch, chDef, innerW, innerH)
		if isRow {
			line[i].cross = c.resultHeight
		} else {
			line[i].cross = c.resultWidth
		}
	}

	occupied := gaps
	for i := range line {
		occupied += mainSize(&line[i], isRow) + line[i].mainMar
	}
	return occupied
}

func mainSize(it *flexItem, isRow bool) float64 {
	if isRow {
		return it.node.resultWidth
	}
	return it.node.resultHeight
}

// placeLine positions a line's items along main and cross axes.
func (n *Node) placeLine(line []flexItem, isRow bool, innerMain float64, mainDef bool, lineCross, crossOffset float64, innerW, innerH float64) {
	gaps := float64(len(line)-1) * n.style.gap
	used := gaps
	for i := range line {
		used += mainSize(&line[i], isRow) + line[i].mainMar
	}

	free := 0.0
	if mainDef {
		free = innerMain - used
		if free < 0 {
			free = 0
		}
	}

	lead, between := justifyOffsets(n.style.justify, free, len(line))

	padMainLead := n.paddingBorder(EdgeTop, innerH)
	padCrossLead := n.paddingBorder(EdgeLeft, innerW)
	if isRow {
		padMainLead = n.paddingBorder(EdgeLeft, innerW)
		padCrossLead = n.paddingBorder(EdgeTop, innerH)
	}

	pos := padMainLead + lead
	for i := range line {
		it := &line[i]
		c := it.node
		pos += c.marginLeading(isRow, innerW)

		crossPos := padCrossLead + crossOffset + c.marginLeading(!isRow, innerW)
		switch resolveAlign(n, c) {
		case AlignCenter:
			crossPos += (lineCross - it.cross - it.crossMar) / 2
		case AlignFlexEnd:
			crossPos += lineCross - it.cross - it.crossMar
		}

		main := pos
		if n.style.direction.IsReverse() && mainDef {
			main = padMainLead + innerMain - (pos - padMainLead) - mainSize(it, isRow)
		}

		if isRow {
			c.resultLeft = main
			c.resultTop = crossPos
		} else {
			c.resultLeft = crossPos
			c.resultTop = main
		}

		// Relative offsets apply after flow placement.
		if c.style.positionType == PositionRelative {
			if v, ok := c.style.position[EdgeLeft].resolve(innerW); ok {
				c.resultLeft += v
			} else if v, ok := c.style.position[EdgeRight].resolve(innerW); ok {
				c.resultLeft -= v
			}
			if v, ok := c.style.position[EdgeTop].resolve(innerH); ok {
				c.resultTop += v
			} else if v, ok := c.style.position[EdgeBottom].resolve(innerH); ok {
				c.resultTop -= v
			}
		}

		pos += mainSize(it, isRow) + c.marginAxis(isRow, innerW) - c.marginLeading(isRow, innerW) + n.style.gap + between
	}
}

func justifyOffsets(j Justify, free float64, count int) (lead, between float64) {
	if count == 0 {
		return 0, 0
	}
	switch j {
	case JustifyCenter:
		return free / 2, 0
	case JustifyFlexEnd:
		return free, 0
	case JustifySpaceBetween:
		if count > 1 {
			return 0, free / float64(count-1)
		}
		return 0, 0
	case JustifySpaceAround:
		around := free / float64(count)
		return around / 2, around
	case JustifySpaceEvenly:
		even := free / float64(count+1)
		return even, even
	default:
		return 0, 0
	}
}

// placeAbsolute positions absolutely-positioned children against the
// node's padding box.
func (n *Node) placeAbsolute(children []*Node, w, h float64) {
	if len(children) == 0 {
		return
	}
	bl := n.style.border[EdgeLeft]
	bt := n.style.border[EdgeTop]
	boxW := w - n.style.border[EdgeLeft] - n.style.border[EdgeRight]
	boxH := h - n.style.border[EdgeTop] - n.style.border[EdgeBottom]
	if boxW < 0 {
		boxW = 0
	}
	if boxH < 0 {
		boxH = 0
	}

	for _, c := range children {
		left, leftOK := c.style.position[EdgeLeft].resolve(boxW)
		right, rightOK := c.style.position[EdgeRight].resolve(boxW)
		top, topOK := c.style.position[EdgeTop].resolve(boxH)
		bottom, bottomOK := c.style.position[EdgeBottom].resolve(boxH)

		cw, cwDef := c.style.width.resolve(boxW)
		ch, chDef := c.style.height.resolve(boxH)
		if !cwDef && leftOK && rightOK {
			cw, cwDef = boxW-left-right, true
		}
		if !chDef && topOK && bottomOK {
			ch, chDef = boxH-top-bottom, true
		}
		c.solve(cw, cwDef, ch, chDef, boxW, boxH)

		switch {
		case leftOK:
			c.resultLeft = bl + left
		case rightOK:
			c.resultLeft = bl + boxW - right - c.resultWidth
		default:
			c.resultLeft = bl
		}
		switch {
		case topOK:
			c.resultTop = bt + top
		case bottomOK:
			c.resultTop = bt + boxH - bottom - c.resultHeight
		default:
			c.resultTop = bt
		}
	}
}
