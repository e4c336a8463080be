// Package pkg provides the core libraries for Timeslice time tracking.
//
// # Overview
//
// Timeslice records the minutes spent per category each day and draws donut
// charts of a day, week, month or year. The pkg directory is organized
// into four areas:
//
//  1. Domain: [stats] (records, periods, aggregation) and [chart] (layout
//     plus SVG, PNG, PDF and JSON sinks)
//  2. Persistence: [store] with file, bolt, redis and mongo backends, and
//     [io] for JSON backups
//  3. Infrastructure: [cache], [config], [errors], [fonts] and
//     [observability]
//  4. Orchestration: [pipeline] (aggregate → layout → render)
//
// # Architecture
//
// The typical data flow through Timeslice:
//
//	Day records (store)
//	         ↓
//	    [stats] package (sum the days of a period)
//	         ↓
//	    [chart] package (donut + legend layout)
//	         ↓
//	    [chart/sink] package (SVG/PNG/PDF/JSON output)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "time"
//
//	    "github.com/matzehuels/timeslice/pkg/pipeline"
//	    "github.com/matzehuels/timeslice/pkg/stats"
//	    "github.com/matzehuels/timeslice/pkg/store/file"
//	)
//
//	st, _ := file.Open("~/.local/share/timeslice")
//	runner := pipeline.NewRunner(st, nil, nil, nil)
//	result, _ := runner.Chart(context.Background(), pipeline.Options{
//	    Mode:    stats.ModeMonth,
//	    Date:    time.Now(),
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// # Main Packages
//
// [stats] - Ordered category records, duration parsing, periods with
// previous/next navigation, and aggregation over a period.
//
// [chart] - Pure layout: slice angles, percentage labels, the centre total,
// and a legend that grows the canvas rather than shrinking the pie.
//
// [chart/sink] - Output formats. PNG is rasterized in Go; PDF converts the
// SVG with rsvg-convert via [render].
//
// [store] - Day, category and task persistence behind one interface.
// [store/open] picks a backend from configuration.
//
// [pipeline] - The aggregate → layout → render pipeline shared by the CLI
// and the HTTP API, with caching of aggregates and artifacts.
//
// [observability] - Hook interfaces for pipeline, cache, store and HTTP
// events. [observability/prom] implements them with Prometheus metrics.
//
// [stats]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/stats
// [chart]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/chart
// [chart/sink]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/chart/sink
// [render]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/render
// [store]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/store
// [store/open]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/store/open
// [io]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/errors
// [fonts]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/fonts
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/timeslice/pkg/observability/prom
package pkg
