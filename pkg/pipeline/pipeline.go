// Package pipeline provides the chart pipeline shared by the CLI and the
// HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Aggregate: sum the stored day records of a period
//  2. Layout: turn the aggregate into a chart.Layout
//  3. Render: draw the layout as SVG, PNG, PDF or JSON
//
// Aggregates and rendered artifacts are cached. Writes that go through the
// Runner invalidate the cached aggregates of every period containing the
// changed day.
//
// # Usage
//
//	runner := pipeline.NewRunner(st, cache, nil, logger)
//	result, err := runner.Chart(ctx, pipeline.Options{
//	    Mode:    stats.ModeWeek,
//	    Date:    time.Now(),
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if result.Empty {
//	    fmt.Println("no data")
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"time"

	"github.com/matzehuels/timeslice/pkg/cache"
	"github.com/matzehuels/timeslice/pkg/chart"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMode is the period mode used when none is given.
	DefaultMode = stats.ModeWeek

	// DefaultScale is the PNG pixel density.
	DefaultScale = 1.0

	// MaxScale bounds PNG scale to keep rasters reasonable.
	MaxScale = 8.0

	// TitleSuffix follows the period label in chart titles.
	TitleSuffix = "time allocation"
)

// Cache lifetimes.
const (
	TTLStats    = 10 * time.Minute
	TTLArtifact = 7 * 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one chart run.
type Options struct {
	// Period selection
	Mode stats.Mode `json:"mode"`
	Date time.Time  `json:"date"`

	// Layout options
	Title       string `json:"title,omitempty"` // replaces "<period> time allocation"
	UnitLabel   string `json:"unit_label,omitempty"`
	UnitSuffix  string `json:"unit_suffix,omitempty"`
	LegendTitle string `json:"legend_title,omitempty"`
	Font        string `json:"font,omitempty"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Scale        float64  `json:"scale,omitempty"`
	FontFile     string   `json:"-"`
	BoldFontFile string   `json:"-"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Period is the resolved date range.
	Period stats.Period

	// Record is the aggregate in minutes, in first-seen category order.
	Record stats.Record

	// RecordHash is the content hash of Record, used in artifact keys.
	RecordHash string

	// Layout is nil when Empty is set.
	Layout *chart.Layout

	// Empty reports that the period holds no data.
	Empty bool

	// Artifacts contains rendered outputs keyed by format. When Empty is
	// set it holds the placeholder renderings.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Days          int
	Categories    int
	AggregateTime time.Duration
	LayoutTime    time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	StatsHit  bool // Whether the aggregate came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if err := errors.ValidateMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := errors.ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %.2f out of range (0, %.0f]", o.Scale, MaxScale)
	}
	if o.UnitLabel == "" {
		o.UnitLabel = chart.DefaultUnitLabel
	}
	if o.UnitSuffix == "" {
		o.UnitSuffix = chart.DefaultUnitSuffix
	}
	if o.LegendTitle == "" {
		o.LegendTitle = chart.DefaultLegendTitle
	}
	if o.Font == "" {
		o.Font = chart.DefaultFont
	}
	o.validated = true
	return nil
}

// Period resolves the period the options select.
func (o *Options) Period() stats.Period {
	return stats.NewPeriod(o.Mode, o.Date)
}

// TitleFor returns the chart title for p.
func (o *Options) TitleFor(p stats.Period) string {
	if o.Title != "" {
		return o.Title
	}
	return p.Label() + " " + TitleSuffix
}

// ChartKeyOpts returns cache key options for one rendered format.
func (o *Options) ChartKeyOpts(format, title string) cache.ChartKeyOpts {
	k := cache.ChartKeyOpts{
		Format:      format,
		Title:       title,
		UnitLabel:   o.UnitLabel,
		UnitSuffix:  o.UnitSuffix,
		LegendTitle: o.LegendTitle,
		Font:        o.Font,
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	return k
}
