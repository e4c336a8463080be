package chart

import "math"

// Bucket is one named magnitude in the chart input, e.g. a category and the
// hours spent on it.
type Bucket struct {
	Label string
	Value float64
}

// Point is a position in canvas coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle; X, Y is the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Anchor is the horizontal alignment of a text run relative to its X.
type Anchor string

// Text anchors, named after their SVG text-anchor equivalents.
const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a positioned run of text. Y is the vertical center of the run.
type Text struct {
	Value  string
	X, Y   float64
	Anchor Anchor
	Size   float64
	Bold   bool
	Color  string
}

// Pie is the fixed donut geometry.
type Pie struct {
	Bounds    Rect
	Center    Point
	Radius    float64
	RingWidth float64
}

// InnerRadius returns the radius of the donut hole.
func (p Pie) InnerRadius() float64 { return p.Radius - p.RingWidth }

// Slice is one donut segment. Angles are in degrees, measured
// counter-clockwise from 3 o'clock; slices run clockwise, so a slice covers
// StartAngle down to StartAngle-Sweep.
type Slice struct {
	Label      string
	Value      float64
	Percent    float64
	StartAngle float64
	Sweep      float64
	Color      string

	// ShowLabel is false for slices at or below the label threshold; such
	// slices are still drawn but carry no percentage text.
	ShowLabel bool
	PctLabel  Text
}

// EndAngle returns the angle at which the slice ends.
func (s Slice) EndAngle() float64 { return s.StartAngle - s.Sweep }

// MidAngle returns the angle bisecting the slice.
func (s Slice) MidAngle() float64 { return s.StartAngle - s.Sweep/2 }

// LegendRow is one legend entry.
type LegendRow struct {
	Label   string
	Value   float64
	Color   string
	CenterY float64
	Swatch  Rect
	Name    Text
	Amount  Text
}

// Legend is the boxed list of categories beside the pie.
type Legend struct {
	Box   Rect
	Title Text
	Rows  []LegendRow
}

// Layout is a fully resolved chart description. Renderers draw it without
// further computation.
type Layout struct {
	Width         float64
	Height        float64
	ContentHeight float64
	Font          string

	Title  Text
	Pie    Pie
	Slices []Slice
	Total  float64
	Center [2]Text // total value, unit label
	Legend Legend
}

// PointAt returns the canvas point at the given angle (degrees) and distance
// from c.
func PointAt(c Point, angle, dist float64) Point {
	rad := angle * math.Pi / 180
	return Point{
		X: c.X + dist*math.Cos(rad),
		Y: c.Y - dist*math.Sin(rad),
	}
}
