// Package sink provides output format renderers for chart layouts.
//
// # Overview
//
// A "sink" turns a computed [chart.Layout] into a final output format.
// This package provides renderers for:
//
//   - SVG: Scalable vector graphics, the reference output
//   - PNG: Raster image output (pure Go, via fogleman/gg)
//   - PDF: Print-ready output (requires rsvg-convert)
//   - JSON: Layout data export for external front ends
//
// Sinks only draw; every coordinate, angle, color and label comes from the
// layout. All sinks accept a nil layout: SVG and PNG draw a "no data"
// placeholder, JSON encodes null.
//
// # SVG Output
//
// [RenderSVG] draws slices as annular-sector paths, centers text with
// dominant-baseline, and writes the layout's font as the document
// font-family:
//
//	l := chart.Build(buckets, "2024-01 time allocation", chart.WithFont(font.Family))
//	svg := sink.RenderSVG(l)
//
// # PNG Output
//
// [RenderPNG] rasterizes the same drawing. Pass the resolved font files so
// text uses the same family as the SVG:
//
//	png, err := sink.RenderPNG(l, sink.WithScale(2), sink.WithFontFiles(font.Path, font.Bold()))
//
// # PDF Output
//
// [RenderPDF] converts the SVG with rsvg-convert; see [render.ToPDF].
//
// # JSON Output
//
// [RenderJSON] writes the resolved layout with snake_case keys.
//
// [render.ToPDF]: github.com/matzehuels/timeslice/pkg/render
package sink
