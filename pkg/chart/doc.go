// Package chart computes the layout of a donut chart with a legend.
//
// # Overview
//
// [Build] turns an ordered list of [Bucket] values into a [Layout]: canvas
// size, pie geometry, per-slice angles and colors, percentage labels, the
// center annotation, and the legend box with one row per bucket. Renderers in
// [chart/sink] draw a Layout without further computation.
//
// # Sizing
//
// The pie is always a [PieSize] square and the canvas is always
// [CanvasWidth] wide. Only the height grows, and only when the legend is
// taller than the pie:
//
//	legend  = LegendTitleHeight + n*LegendItemHeight + LegendPadding
//	content = max(PieSize, legend)
//	height  = TitleHeight + content + BottomMargin
//
// The legend box hugs its own content (height = legend), independent of the
// canvas sizing decision.
//
// # Slices
//
// Slices start at 12 o'clock and run clockwise, each sweeping
// 360 * value / total degrees. Slices at or below [LabelThreshold] percent are
// drawn but get no percentage label; the legend still lists them.
//
// Colors come from a fixed 16-color palette via [PaletteColor], so the same
// input order always yields the same colors.
//
// # Empty Input
//
// Build returns nil for empty input or a zero total. That is the expected
// "no data" outcome, not an error.
//
//	l := chart.Build([]chart.Bucket{{"work", 8}, {"sleep", 7.5}}, "Today")
//	if l == nil {
//	    // show placeholder
//	}
//	svg := sink.RenderSVG(l)
//
// [chart/sink]: github.com/matzehuels/timeslice/pkg/chart/sink
package chart
