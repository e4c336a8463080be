// Package render converts rendered SVG documents into other formats.
//
// [ToPDF] pipes an SVG through the external rsvg-convert tool (from
// librsvg). PNG output goes through the pure-Go rasterizer in [chart/sink]
// and needs no external tool.
//
//	svg := sink.RenderSVG(layout)
//	pdf, err := render.ToPDF(ctx, svg)
//
// Use [Available] to check for rsvg-convert before offering PDF output.
//
// [chart/sink]: github.com/matzehuels/timeslice/pkg/chart/sink
package render
