// Package layout implements the flexbox solver used by the engine's
// layout bridge. It is deliberately self-contained: nodes carry style
// inputs, CalculateLayout runs a single global solve from the root, and
// computed boxes come back as integer cell coordinates.
package layout

// Direction is the main axis of a flex container.
type Direction uint8

const (
	Column Direction = iota
	ColumnReverse
	Row
	RowReverse
)

// IsRow reports whether the main axis is horizontal.
func (d Direction) IsRow() bool { return d == Row || d == RowReverse }

// IsReverse reports whether main-axis placement runs backwards.
func (d Direction) IsReverse() bool { return d == ColumnReverse || d == RowReverse }

// Wrap controls line wrapping of flex items.
type Wrap uint8

const (
	NoWrap Wrap = iota
	WrapWrap
	WrapReverse
)

// Justify is alignment along the main axis.
type Justify uint8

const (
	JustifyFlexStart Justify = iota
	JustifyCenter
	JustifyFlexEnd
	JustifySpaceBetween
	JustifySpaceAround
	JustifySpaceEvenly
)

// Align is alignment along the cross axis.
type Align uint8

const (
	AlignAuto Align = iota
	AlignFlexStart
	AlignCenter
	AlignFlexEnd
	AlignStretch
)

// PositionType controls whether a node participates in flex flow.
type PositionType uint8

const (
	PositionRelative PositionType = iota
	PositionAbsolute
	// PositionStatic behaves as relative flow but ignores the
	// top/right/bottom/left offsets.
	PositionStatic
)

// Edge identifies one side of a box.
type Edge uint8

const (
	EdgeLeft Edge = iota
	EdgeTop
	EdgeRight
	EdgeBottom
	edgeCount
)

// Unit tags a style Value.
type Unit uint8

const (
	UnitUndefined Unit = iota
	UnitAuto
	UnitPoint
	UnitPercent
)

// Value is a dimension or offset: undefined, auto, an absolute cell
// count, or a percentage of the containing size.
type Value struct {
	Unit   Unit
	Amount float64
}

// Undefined is the zero Value.
var Undefined = Value{}

// Auto returns an auto Value.
func Auto() Value { return Value{Unit: UnitAuto} }

// Point returns an absolute Value of v cells.
func Point(v float64) Value { return Value{Unit: UnitPoint, Amount: v} }

// Percent returns a Value of v percent of the containing dimension.
func Percent(v float64) Value { return Value{Unit: UnitPercent, Amount: v} }

// IsDefined reports whether the value is auto, point or percent.
func (v Value) IsDefined() bool { return v.Unit != UnitUndefined }

// resolve converts the value to cells against a containing size.
// Auto and undefined resolve to NaN-like sentinel (undefined).
func (v Value) resolve(against float64) (float64, bool) {
	switch v.Unit {
	case UnitPoint:
		return v.Amount, true
	case UnitPercent:
		return v.Amount / 100 * against, true
	default:
		return 0, false
	}
}

// MeasureMode describes the constraint passed to a measure function.
type MeasureMode uint8

const (
	MeasureUndefined MeasureMode = iota
	MeasureExactly
	MeasureAtMost
)

// MeasureFunc computes the intrinsic size of a leaf node under the given
// constraints. Used by text-bearing renderables.
type MeasureFunc func(width float64, widthMode MeasureMode, height float64, heightMode MeasureMode) (float64, float64)

// style holds the full style input of a node.
type style struct {
	direction    Direction
	wrap         Wrap
	justify      Justify
	alignItems   Align
	alignSelf    Align
	positionType PositionType

	width, height       Value
	minWidth, minHeight Value
	maxWidth, maxHeight Value

	flexGrow   float64
	flexShrink float64
	flexBasis  Value

	position [edgeCount]Value
	margin   [edgeCount]Value
	padding  [edgeCount]Value
	border   [edgeCount]float64

	gap float64
}

func defaultStyle() style {
	return style{
		direction:  Column,
		alignItems: AlignStretch,
		flexShrink: 1,
		flexBasis:  Auto(),
	}
}
