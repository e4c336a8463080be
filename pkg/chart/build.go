package chart

import (
	"fmt"
	"math"

	"github.com/mattn/go-runewidth"
)

// Canvas geometry in user units (100 units per inch). The pie square and the
// canvas width never change; only the canvas height follows the legend.
const (
	CanvasWidth       = 1100.0
	TitleHeight       = 70.0
	PieSize           = 450.0
	BottomMargin      = 30.0
	LegendItemHeight  = 42.0
	LegendTitleHeight = 60.0
	LegendPadding     = 40.0
)

// Slice geometry.
const (
	// StartAngle is where the first slice begins (12 o'clock).
	StartAngle = 90.0
	// RingRatio is the donut ring width as a fraction of the radius.
	RingRatio = 0.45
	// LabelThreshold is the percentage a slice must exceed to carry a label.
	LabelThreshold = 5.0
)

// Horizontal placement as fractions of CanvasWidth.
const (
	pieLeftRatio     = 0.06
	titleXRatio      = 0.30
	legendXRatio     = 0.54
	legendInsetRatio = 0.02
	legendBoxRatio   = 0.44
	legendNameRatio  = 0.04
	legendValueRatio = 0.40
)

const (
	labelRadiusRatio = 0.75
	totalOffsetRatio = 0.06
	unitOffsetRatio  = 0.18
	swatchHeight     = 18.0
	swatchWidth      = swatchHeight * 1.2
	maxLabelCells    = 28
)

// Font sizes in user units.
const (
	sizeTitle       = 25.0
	sizeTotal       = 44.0
	sizeUnit        = 19.0
	sizePercent     = 15.0
	sizeLegendTitle = 19.0
	sizeLegendRow   = 18.0
)

// Default annotation text.
const (
	DefaultUnitLabel   = "hours"
	DefaultUnitSuffix  = "h"
	DefaultLegendTitle = "Breakdown"
	DefaultFont        = "sans-serif"
)

// Option customizes text annotations on a layout.
type Option func(*options)

type options struct {
	unitLabel   string
	unitSuffix  string
	legendTitle string
	font        string
}

// WithUnit sets the unit shown under the total and after each legend value.
func WithUnit(label, suffix string) Option {
	return func(o *options) { o.unitLabel, o.unitSuffix = label, suffix }
}

// WithLegendTitle sets the heading of the legend box.
func WithLegendTitle(title string) Option {
	return func(o *options) { o.legendTitle = title }
}

// WithFont records the font family renderers should use. An empty family
// keeps the default.
func WithFont(family string) Option {
	return func(o *options) {
		if family != "" {
			o.font = family
		}
	}
}

// LegendHeight returns the height the legend needs for n rows.
func LegendHeight(n int) float64 {
	return LegendTitleHeight + float64(n)*LegendItemHeight + LegendPadding
}

// CanvasHeight returns the canvas height for a chart with n categories.
func CanvasHeight(n int) float64 {
	return TitleHeight + max(PieSize, LegendHeight(n)) + BottomMargin
}

// Build lays out a donut chart with a legend for data.
//
// Build returns nil when data is empty or its values sum to zero; callers
// show an empty-state placeholder instead. Negative and NaN values count as
// zero. Slices and legend rows follow the order of data.
func Build(data []Bucket, title string, opts ...Option) *Layout {
	o := options{
		unitLabel:   DefaultUnitLabel,
		unitSuffix:  DefaultUnitSuffix,
		legendTitle: DefaultLegendTitle,
		font:        DefaultFont,
	}
	for _, opt := range opts {
		opt(&o)
	}

	values := make([]float64, len(data))
	var total float64
	for i, b := range data {
		values[i] = sanitize(b.Value)
		total += values[i]
	}
	if len(data) == 0 || total == 0 {
		return nil
	}

	n := len(data)
	content := max(PieSize, LegendHeight(n))

	l := &Layout{
		Width:         CanvasWidth,
		Height:        TitleHeight + content + BottomMargin,
		ContentHeight: content,
		Font:          o.font,
		Total:         total,
	}

	l.Title = Text{
		Value:  title,
		X:      CanvasWidth * titleXRatio,
		Y:      TitleHeight / 2,
		Anchor: AnchorMiddle,
		Size:   sizeTitle,
		Bold:   true,
		Color:  ColorText,
	}

	l.Pie = buildPie()
	l.Slices = buildSlices(l.Pie, data, values, total)
	l.Center = [2]Text{
		{
			Value:  fmt.Sprintf("%.1f", total),
			X:      l.Pie.Center.X,
			Y:      l.Pie.Center.Y - totalOffsetRatio*l.Pie.Radius,
			Anchor: AnchorMiddle,
			Size:   sizeTotal,
			Bold:   true,
			Color:  ColorText,
		},
		{
			Value:  o.unitLabel,
			X:      l.Pie.Center.X,
			Y:      l.Pie.Center.Y + unitOffsetRatio*l.Pie.Radius,
			Anchor: AnchorMiddle,
			Size:   sizeUnit,
			Color:  ColorTextMuted,
		},
	}
	l.Legend = buildLegend(data, values, o)
	return l
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func buildPie() Pie {
	r := PieSize / 2
	bounds := Rect{X: CanvasWidth * pieLeftRatio, Y: TitleHeight, W: PieSize, H: PieSize}
	return Pie{
		Bounds:    bounds,
		Center:    Point{X: bounds.X + r, Y: bounds.Y + r},
		Radius:    r,
		RingWidth: r * RingRatio,
	}
}

func buildSlices(p Pie, data []Bucket, values []float64, total float64) []Slice {
	slices := make([]Slice, len(data))
	angle := StartAngle
	for i, b := range data {
		s := Slice{
			Label:      b.Label,
			Value:      values[i],
			Percent:    100 * values[i] / total,
			StartAngle: angle,
			Sweep:      360 * values[i] / total,
			Color:      PaletteColor(i),
		}
		s.ShowLabel = s.Percent > LabelThreshold
		if s.ShowLabel {
			at := PointAt(p.Center, s.MidAngle(), p.Radius*labelRadiusRatio)
			s.PctLabel = Text{
				Value:  fmt.Sprintf("%.1f%%", s.Percent),
				X:      at.X,
				Y:      at.Y,
				Anchor: AnchorMiddle,
				Size:   sizePercent,
				Bold:   true,
				Color:  ColorText,
			}
		}
		angle -= s.Sweep
		slices[i] = s
	}
	return slices
}

func buildLegend(data []Bucket, values []float64, o options) Legend {
	x := CanvasWidth * legendXRatio
	top := TitleHeight

	box := Rect{
		X: x - CanvasWidth*legendInsetRatio,
		Y: top,
		W: CanvasWidth * legendBoxRatio,
		H: LegendHeight(len(data)),
	}

	titleTop := top + LegendPadding/2
	itemsTop := titleTop + LegendTitleHeight

	lg := Legend{
		Box: box,
		Title: Text{
			Value:  o.legendTitle,
			X:      box.X + box.W/2,
			Y:      titleTop + LegendTitleHeight/2,
			Anchor: AnchorMiddle,
			Size:   sizeLegendTitle,
			Bold:   true,
			Color:  ColorText,
		},
		Rows: make([]LegendRow, len(data)),
	}

	for i, b := range data {
		cy := itemsTop + (float64(i)+0.5)*LegendItemHeight
		lg.Rows[i] = LegendRow{
			Label:   b.Label,
			Value:   values[i],
			Color:   PaletteColor(i),
			CenterY: cy,
			Swatch:  Rect{X: x, Y: cy - swatchHeight/2, W: swatchWidth, H: swatchHeight},
			Name: Text{
				Value:  TruncateLabel(b.Label, maxLabelCells),
				X:      x + CanvasWidth*legendNameRatio,
				Y:      cy,
				Anchor: AnchorStart,
				Size:   sizeLegendRow,
				Color:  ColorText,
			},
			Amount: Text{
				Value:  fmt.Sprintf("%.1f%s", values[i], o.unitSuffix),
				X:      x + CanvasWidth*legendValueRatio,
				Y:      cy,
				Anchor: AnchorEnd,
				Size:   sizeLegendRow,
				Bold:   true,
				Color:  ColorTextValue,
			},
		}
	}
	return lg
}

// TruncateLabel shortens label to at most cells terminal cells, ending it
// with ".." when cut. Wide (CJK) runes count as two cells.
func TruncateLabel(label string, cells int) string {
	if runewidth.StringWidth(label) <= cells {
		return label
	}
	return runewidth.Truncate(label, max(cells, 3), "..")
}
