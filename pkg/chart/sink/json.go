package sink

import (
	"encoding/json"

	"github.com/matzehuels/timeslice/pkg/chart"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	period string
	unit   string
}

// WithJSONPeriod records the period the chart covers, e.g. "2024-01".
func WithJSONPeriod(label string) JSONOption { return func(r *jsonRenderer) { r.period = label } }

// WithJSONUnit records the unit of slice values, e.g. "hours".
func WithJSONUnit(unit string) JSONOption { return func(r *jsonRenderer) { r.unit = unit } }

type jsonOutput struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Font   string      `json:"font"`
	Period string      `json:"period,omitempty"`
	Unit   string      `json:"unit,omitempty"`
	Title  jsonText    `json:"title"`
	Total  float64     `json:"total"`
	Pie    jsonPie     `json:"pie"`
	Slices []jsonSlice `json:"slices"`
	Center []jsonText  `json:"center"`
	Legend jsonLegend  `json:"legend"`
}

type jsonText struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Anchor string  `json:"anchor"`
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Color  string  `json:"color"`
}

type jsonRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonPie struct {
	CX          float64 `json:"cx"`
	CY          float64 `json:"cy"`
	Radius      float64 `json:"radius"`
	InnerRadius float64 `json:"inner_radius"`
}

type jsonSlice struct {
	Label      string    `json:"label"`
	Value      float64   `json:"value"`
	Percent    float64   `json:"percent"`
	StartAngle float64   `json:"start_angle"`
	Sweep      float64   `json:"sweep"`
	Color      string    `json:"color"`
	PctLabel   *jsonText `json:"pct_label,omitempty"`
}

type jsonLegend struct {
	Box   jsonRect        `json:"box"`
	Title jsonText        `json:"title"`
	Rows  []jsonLegendRow `json:"rows"`
}

type jsonLegendRow struct {
	Label  string   `json:"label"`
	Value  float64  `json:"value"`
	Color  string   `json:"color"`
	Swatch jsonRect `json:"swatch"`
	Name   jsonText `json:"name"`
	Amount jsonText `json:"amount"`
}

// RenderJSON exports the layout as a pretty-printed JSON document so other
// front ends can draw the same chart. A nil layout encodes as JSON null.
//
// RenderJSON does not modify l and is safe to call concurrently.
func RenderJSON(l *chart.Layout, opts ...JSONOption) ([]byte, error) {
	if l == nil {
		return []byte("null"), nil
	}
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:  l.Width,
		Height: l.Height,
		Font:   l.Font,
		Period: r.period,
		Unit:   r.unit,
		Title:  toJSONText(l.Title),
		Total:  l.Total,
		Pie: jsonPie{
			CX:          l.Pie.Center.X,
			CY:          l.Pie.Center.Y,
			Radius:      l.Pie.Radius,
			InnerRadius: l.Pie.InnerRadius(),
		},
		Slices: make([]jsonSlice, len(l.Slices)),
		Center: []jsonText{toJSONText(l.Center[0]), toJSONText(l.Center[1])},
		Legend: jsonLegend{
			Box:   toJSONRect(l.Legend.Box),
			Title: toJSONText(l.Legend.Title),
			Rows:  make([]jsonLegendRow, len(l.Legend.Rows)),
		},
	}

	for i, s := range l.Slices {
		js := jsonSlice{
			Label:      s.Label,
			Value:      s.Value,
			Percent:    s.Percent,
			StartAngle: s.StartAngle,
			Sweep:      s.Sweep,
			Color:      s.Color,
		}
		if s.ShowLabel {
			t := toJSONText(s.PctLabel)
			js.PctLabel = &t
		}
		out.Slices[i] = js
	}
	for i, row := range l.Legend.Rows {
		out.Legend.Rows[i] = jsonLegendRow{
			Label:  row.Label,
			Value:  row.Value,
			Color:  row.Color,
			Swatch: toJSONRect(row.Swatch),
			Name:   toJSONText(row.Name),
			Amount: toJSONText(row.Amount),
		}
	}

	return json.MarshalIndent(out, "", "  ")
}

func toJSONText(t chart.Text) jsonText {
	return jsonText{
		Text:   t.Value,
		X:      t.X,
		Y:      t.Y,
		Anchor: string(t.Anchor),
		Size:   t.Size,
		Bold:   t.Bold,
		Color:  t.Color,
	}
}

func toJSONRect(r chart.Rect) jsonRect {
	return jsonRect{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}
