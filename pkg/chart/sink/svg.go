package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/timeslice/pkg/chart"
)

const (
	legendCornerRadius = 10.0
	swatchCornerRadius = 3.0
	sliceEdgeWidth     = 2.0
	legendStrokeWidth  = 1.5
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	fontStack  string
}

// WithBackground sets the canvas fill. An empty color leaves the canvas
// transparent.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithFontStack overrides the CSS font-family list written to the document.
// By default the layout's font is used with a sans-serif fallback.
func WithFontStack(stack string) SVGOption {
	return func(r *svgRenderer) { r.fontStack = stack }
}

// RenderSVG draws l as a standalone SVG document. A nil layout renders an
// empty-state placeholder of the default canvas size.
func RenderSVG(l *chart.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{background: chart.ColorBackground}
	for _, opt := range opts {
		opt(&r)
	}

	if l == nil {
		return renderPlaceholder(r)
	}

	font := r.fontStack
	if font == "" {
		font = fontStack(l.Font)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		l.Width, l.Height, l.Width, l.Height, EscapeXML(font))

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}

	renderText(&buf, l.Title)

	buf.WriteString(`  <g class="slices">` + "\n")
	for _, s := range l.Slices {
		fmt.Fprintf(&buf, `    <path class="slice" d="%s" fill="%s" stroke="%s" stroke-width="%.1f"><title>%s</title></path>`+"\n",
			sectorPath(l.Pie, s), s.Color, chart.ColorSliceEdge, sliceEdgeWidth, EscapeXML(s.Label))
	}
	buf.WriteString("  </g>\n")

	for _, s := range l.Slices {
		if s.ShowLabel {
			renderText(&buf, s.PctLabel)
		}
	}
	for _, t := range l.Center {
		renderText(&buf, t)
	}

	renderLegend(&buf, l.Legend)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderLegend(buf *bytes.Buffer, lg chart.Legend) {
	b := lg.Box
	buf.WriteString(`  <g class="legend">` + "\n")
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`+"\n",
		b.X, b.Y, b.W, b.H, legendCornerRadius, chart.ColorLegendFill, chart.ColorLegendStroke, legendStrokeWidth)
	renderText(buf, lg.Title)
	for _, row := range lg.Rows {
		s := row.Swatch
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.1f" fill="%s"/>`+"\n",
			s.X, s.Y, s.W, s.H, swatchCornerRadius, row.Color)
		renderText(buf, row.Name)
		renderText(buf, row.Amount)
	}
	buf.WriteString("  </g>\n")
}

func renderText(buf *bytes.Buffer, t chart.Text) {
	if t.Value == "" {
		return
	}
	weight := ""
	if t.Bold {
		weight = ` font-weight="bold"`
	}
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="%s" dominant-baseline="central" font-size="%.1f"%s fill="%s">%s</text>`+"\n",
		t.X, t.Y, t.Anchor, t.Size, weight, t.Color, EscapeXML(t.Value))
}

// sectorPath returns the SVG path of an annular sector. Slices run
// clockwise on screen, which is SVG's positive sweep direction.
func sectorPath(p chart.Pie, s chart.Slice) string {
	ro, ri := p.Radius, p.InnerRadius()
	if s.Sweep >= 360-1e-9 {
		return ringPath(p.Center, ro, ri)
	}

	large := 0
	if s.Sweep > 180 {
		large = 1
	}
	o1 := chart.PointAt(p.Center, s.StartAngle, ro)
	o2 := chart.PointAt(p.Center, s.EndAngle(), ro)
	i2 := chart.PointAt(p.Center, s.EndAngle(), ri)
	i1 := chart.PointAt(p.Center, s.StartAngle, ri)

	return fmt.Sprintf("M %.3f %.3f A %.3f %.3f 0 %d 1 %.3f %.3f L %.3f %.3f A %.3f %.3f 0 %d 0 %.3f %.3f Z",
		o1.X, o1.Y, ro, ro, large, o2.X, o2.Y,
		i2.X, i2.Y, ri, ri, large, i1.X, i1.Y)
}

// ringPath draws a full ring as two half arcs per circle; a single arc
// cannot start and end on the same point.
func ringPath(c chart.Point, ro, ri float64) string {
	return fmt.Sprintf("M %.3f %.3f A %.3f %.3f 0 1 1 %.3f %.3f A %.3f %.3f 0 1 1 %.3f %.3f Z "+
		"M %.3f %.3f A %.3f %.3f 0 1 0 %.3f %.3f A %.3f %.3f 0 1 0 %.3f %.3f Z",
		c.X, c.Y-ro, ro, ro, c.X, c.Y+ro, ro, ro, c.X, c.Y-ro,
		c.X, c.Y-ri, ri, ri, c.X, c.Y+ri, ri, ri, c.X, c.Y-ri)
}

func renderPlaceholder(r svgRenderer) []byte {
	w, h := chart.CanvasWidth, chart.CanvasHeight(0)
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		w, h, w, h, EscapeXML(fontStack(chart.DefaultFont)))
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)
	}
	renderText(&buf, chart.Text{
		Value:  NoDataText,
		X:      w / 2,
		Y:      h / 2,
		Anchor: chart.AnchorMiddle,
		Size:   24,
		Color:  chart.ColorTextMuted,
	})
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// NoDataText is shown on placeholder charts.
const NoDataText = "No data for this period"

func fontStack(family string) string {
	if family == "" || family == chart.DefaultFont {
		return chart.DefaultFont
	}
	return fmt.Sprintf("'%s', %s", family, chart.DefaultFont)
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

