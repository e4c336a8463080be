package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timeslice/pkg/cache"
	"github.com/matzehuels/timeslice/pkg/chart"
	"github.com/matzehuels/timeslice/pkg/observability"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching and invalidation stay in one
// place.
//
// The Runner keeps no per-run state; multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// ArtifactTTL is the lifetime of rendered charts in the cache.
	// Zero means TTLArtifact.
	ArtifactTTL time.Duration
}

// NewRunner creates a runner over st.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Chart runs the complete aggregate → layout → render pipeline.
func (r *Runner) Chart(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	period := opts.Period()
	result := &Result{Period: period}

	// Stage 1: Aggregate
	aggStart := time.Now()
	rec, hit, err := r.AggregateWithCacheInfo(ctx, period, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	result.Record = rec
	result.RecordHash = hashRecord(rec)
	result.Stats.Days = period.Len()
	result.Stats.Categories = rec.Len()
	result.Stats.AggregateTime = time.Since(aggStart)
	result.CacheInfo.StatsHit = hit

	r.Logger.Debug("aggregated period",
		"period", period.String(),
		"categories", rec.Len(),
		"minutes", rec.Total(),
		"cached", hit,
		"duration", result.Stats.AggregateTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	title := opts.TitleFor(period)
	observability.Pipeline().OnLayoutStart(ctx, rec.Len())
	layout := GenerateLayout(rec, title, opts)
	result.Layout = layout
	result.Empty = layout == nil
	result.Stats.LayoutTime = time.Since(layoutStart)
	observability.Pipeline().OnLayoutComplete(ctx, rec.Len(), result.Stats.LayoutTime, result.Empty)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, result.RecordHash, title, period.Label(), opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Debug("rendered chart",
		"formats", opts.Formats,
		"empty", result.Empty,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Aggregate is a convenience wrapper that calls AggregateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Aggregate(ctx context.Context, p stats.Period) (stats.Record, error) {
	rec, _, err := r.AggregateWithCacheInfo(ctx, p, false)
	return rec, err
}

// AggregateWithCacheInfo sums the stored days of p, consulting the stats
// cache unless refresh is set.
func (r *Runner) AggregateWithCacheInfo(ctx context.Context, p stats.Period, refresh bool) (rec stats.Record, hit bool, err error) {
	if r.Store == nil {
		return stats.Record{}, false, fmt.Errorf("runner has no store")
	}
	start := time.Now()
	observability.Pipeline().OnAggregateStart(ctx, string(p.Mode))
	defer func() {
		observability.Pipeline().OnAggregateComplete(ctx, string(p.Mode), p.Len(), time.Since(start), err)
	}()

	key := r.statsKey(p.Mode, p.Start)
	if !refresh {
		if data, ok, cerr := r.Cache.Get(ctx, key); cerr == nil && ok {
			var cached stats.Record
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "stats")
				return cached, true, nil
			}
		} else if cerr != nil {
			r.Logger.Warn("stats cache read failed", "key", key, "err", cerr)
		}
		observability.Cache().OnCacheMiss(ctx, "stats")
	}

	lookup, faults := store.TrackedLookup(ctx, r.Store, r.Logger)
	rec = stats.AggregatePeriod(lookup, p)
	if ctx.Err() != nil {
		return stats.Record{}, false, ctx.Err()
	}
	if n := faults.Count(); n > 0 {
		// Holes from a flaky backend must not outlive the outage.
		r.Logger.Warn("aggregate incomplete, not caching", "period", p.String(), "failed_days", n)
		return rec, false, nil
	}

	if data, err := json.Marshal(rec); err == nil {
		if err := r.Cache.Set(ctx, key, data, TTLStats); err != nil {
			r.Logger.Warn("stats cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "stats", len(data))
		}
	}
	return rec, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l *chart.Layout, recordHash, title, period string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, recordHash, title, period, opts)
	return artifacts, err
}

// RenderWithCacheInfo renders every requested format, reusing cached
// artifacts keyed by the record hash and the render options.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l *chart.Layout, recordHash, title, period string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ChartKey(recordHash, opts.ChartKeyOpts(format, title))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "chart")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "chart")
		}
		allCached = false

		data, err := RenderFormat(ctx, l, format, period, opts)
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		artifacts[format] = data
		if err := r.Cache.Set(ctx, key, data, r.artifactTTL()); err != nil {
			r.Logger.Warn("chart cache write failed", "format", format, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "chart", len(data))
		}
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, allCached, nil
}

// =============================================================================
// Writes
// =============================================================================

// PutDay stores rec under key and invalidates the cached aggregates that
// include the day.
func (r *Runner) PutDay(ctx context.Context, key string, rec stats.Record) error {
	if err := r.Store.Put(ctx, key, rec); err != nil {
		return err
	}
	r.Invalidate(ctx, key)
	return nil
}

// DeleteDay removes key and invalidates the cached aggregates that include
// the day.
func (r *Runner) DeleteDay(ctx context.Context, key string) error {
	if err := r.Store.Delete(ctx, key); err != nil {
		return err
	}
	r.Invalidate(ctx, key)
	return nil
}

// Invalidate drops the cached aggregate of every period containing the day
// key. Cache failures are logged, not returned.
func (r *Runner) Invalidate(ctx context.Context, key string) {
	day, err := stats.ParseDateKey(key)
	if err != nil {
		return
	}
	for _, mode := range stats.Modes {
		p := stats.NewPeriod(mode, day)
		ck := r.statsKey(mode, p.Start)
		if err := r.Cache.Delete(ctx, ck); err != nil {
			r.Logger.Warn("stats cache invalidation failed", "key", ck, "err", err)
		}
	}
}

func (r *Runner) artifactTTL() time.Duration {
	if r.ArtifactTTL > 0 {
		return r.ArtifactTTL
	}
	return TTLArtifact
}

func (r *Runner) statsKey(mode stats.Mode, start time.Time) string {
	scope := "default"
	if r.Store != nil {
		scope = r.Store.Scope()
	}
	return r.Keyer.StatsKey(scope, string(mode), stats.DateKey(start))
}

// Close releases resources held by the runner: the cache and the store.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func hashRecord(rec stats.Record) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
