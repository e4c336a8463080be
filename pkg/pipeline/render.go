package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/timeslice/pkg/chart"
	"github.com/matzehuels/timeslice/pkg/chart/sink"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/render"
)

// Render draws l in every requested format. A nil layout renders the
// "no data" placeholder.
func Render(ctx context.Context, l *chart.Layout, period string, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, l, format, period, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat draws l in a single format.
func RenderFormat(ctx context.Context, l *chart.Layout, format, period string, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatSVG:
		data = sink.RenderSVG(l)
	case FormatPNG:
		data, err = sink.RenderPNG(l, buildPNGOptions(opts)...)
	case FormatPDF:
		if !render.Available() {
			return nil, errors.New(errors.ErrCodeUnsupported, "pdf output requires rsvg-convert on PATH")
		}
		data, err = sink.RenderPDF(ctx, l)
	case FormatJSON:
		data, err = sink.RenderJSON(l, sink.WithJSONPeriod(period), sink.WithJSONUnit(opts.UnitLabel))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

// buildPNGOptions builds PNG rendering options.
func buildPNGOptions(opts Options) []sink.PNGOption {
	pngOpts := []sink.PNGOption{sink.WithScale(opts.Scale)}
	if opts.FontFile != "" {
		pngOpts = append(pngOpts, sink.WithFontFiles(opts.FontFile, opts.BoldFontFile))
	}
	return pngOpts
}
