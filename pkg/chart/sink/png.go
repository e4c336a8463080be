package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/timeslice/pkg/chart"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
	regular    string
	bold       string
	faces      map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

// WithScale sets the PNG scale factor (default 1.0; 2.0 doubles the
// resolution). Non-positive values are ignored.
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithFontFiles sets the TrueType files used for regular and bold text.
// Without them the rasterizer uses its built-in bitmap face.
func WithFontFiles(regular, bold string) PNGOption {
	return func(r *pngRenderer) {
		r.regular = regular
		r.bold = bold
		if r.bold == "" {
			r.bold = regular
		}
	}
}

// WithPNGBackground sets the canvas fill. An empty color leaves the canvas
// transparent.
func WithPNGBackground(color string) PNGOption {
	return func(r *pngRenderer) { r.background = color }
}

// RenderPNG rasterizes l with a pure-Go renderer. A nil layout renders an
// empty-state placeholder.
func RenderPNG(l *chart.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{
		scale:      1,
		background: chart.ColorBackground,
		faces:      make(map[faceKey]font.Face),
	}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := chart.CanvasWidth, chart.CanvasHeight(0)
	if l != nil {
		w, h = l.Width, l.Height
	}

	dc := gg.NewContext(int(w*r.scale+0.5), int(h*r.scale+0.5))
	if r.background != "" {
		dc.SetHexColor(r.background)
		dc.Clear()
	}

	if l == nil {
		err := r.drawText(dc, chart.Text{
			Value:  NoDataText,
			X:      w / 2,
			Y:      h / 2,
			Anchor: chart.AnchorMiddle,
			Size:   24,
			Color:  chart.ColorTextMuted,
		})
		if err != nil {
			return nil, err
		}
		return encodePNG(dc)
	}

	for _, s := range l.Slices {
		r.drawSlice(dc, l.Pie, s)
	}

	texts := []chart.Text{l.Title, l.Center[0], l.Center[1]}
	for _, s := range l.Slices {
		if s.ShowLabel {
			texts = append(texts, s.PctLabel)
		}
	}

	b := l.Legend.Box
	dc.DrawRoundedRectangle(r.px(b.X), r.px(b.Y), r.px(b.W), r.px(b.H), r.px(legendCornerRadius))
	dc.SetHexColor(chart.ColorLegendFill)
	dc.FillPreserve()
	dc.SetHexColor(chart.ColorLegendStroke)
	dc.SetLineWidth(r.px(legendStrokeWidth))
	dc.Stroke()

	texts = append(texts, l.Legend.Title)
	for _, row := range l.Legend.Rows {
		s := row.Swatch
		dc.DrawRoundedRectangle(r.px(s.X), r.px(s.Y), r.px(s.W), r.px(s.H), r.px(swatchCornerRadius))
		dc.SetHexColor(row.Color)
		dc.Fill()
		texts = append(texts, row.Name, row.Amount)
	}

	for _, t := range texts {
		if err := r.drawText(dc, t); err != nil {
			return nil, err
		}
	}
	return encodePNG(dc)
}

func (r *pngRenderer) px(v float64) float64 { return v * r.scale }

// drawSlice fills an annular sector. gg measures angles clockwise from
// 3 o'clock in radians, so layout angles are negated.
func (r *pngRenderer) drawSlice(dc *gg.Context, p chart.Pie, s chart.Slice) {
	if s.Sweep <= 0 {
		return
	}
	cx, cy := r.px(p.Center.X), r.px(p.Center.Y)
	ro, ri := r.px(p.Radius), r.px(p.InnerRadius())
	a1, a2 := gg.Radians(-s.StartAngle), gg.Radians(-s.EndAngle())

	dc.NewSubPath()
	dc.DrawArc(cx, cy, ro, a1, a2)
	dc.DrawArc(cx, cy, ri, a2, a1)
	dc.ClosePath()
	dc.SetHexColor(s.Color)
	dc.FillPreserve()
	dc.SetHexColor(chart.ColorSliceEdge)
	dc.SetLineWidth(r.px(sliceEdgeWidth))
	dc.Stroke()
}

func (r *pngRenderer) drawText(dc *gg.Context, t chart.Text) error {
	if t.Value == "" {
		return nil
	}
	path := r.regular
	if t.Bold {
		path = r.bold
	}
	if path != "" {
		face, err := r.face(path, r.px(t.Size))
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
	}

	ax := 0.0
	switch t.Anchor {
	case chart.AnchorMiddle:
		ax = 0.5
	case chart.AnchorEnd:
		ax = 1
	}
	dc.SetHexColor(t.Color)
	dc.DrawStringAnchored(t.Value, r.px(t.X), r.px(t.Y), ax, 0.5)
	return nil
}

func (r *pngRenderer) face(path string, size float64) (font.Face, error) {
	key := faceKey{path, size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := gg.LoadFontFace(path, size)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	r.faces[key] = f
	return f, nil
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
