package pipeline

import (
	"github.com/matzehuels/timeslice/pkg/chart"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout builds the chart layout of rec, converted to hours.
// It returns nil when rec holds no time.
func GenerateLayout(rec stats.Record, title string, opts Options) *chart.Layout {
	return chart.Build(stats.HourBuckets(rec), title, layoutOptions(opts)...)
}

func layoutOptions(opts Options) []chart.Option {
	var out []chart.Option
	if opts.UnitLabel != "" || opts.UnitSuffix != "" {
		out = append(out, chart.WithUnit(opts.UnitLabel, opts.UnitSuffix))
	}
	if opts.LegendTitle != "" {
		out = append(out, chart.WithLegendTitle(opts.LegendTitle))
	}
	if opts.Font != "" {
		out = append(out, chart.WithFont(opts.Font))
	}
	return out
}
