package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timeslice/pkg/cache"
	"github.com/matzehuels/timeslice/pkg/chart/sink"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/observability"
	"github.com/matzehuels/timeslice/pkg/render"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store/file"
)

// 2024-01-01 is a Monday.
var monday = time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	st, err := file.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	c, err := cache.NewMemoryCache(64)
	if err != nil {
		t.Fatalf("memory cache: %v", err)
	}
	r := NewRunner(st, c, nil, log.NewWithOptions(io.Discard, log.Options{}))
	t.Cleanup(func() { r.Close() })
	return r
}

func record(pairs ...any) stats.Record {
	r := stats.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1].(int))
	}
	return r
}

func TestValidateAndSetDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if o.Mode != DefaultMode || o.Scale != DefaultScale || o.Date.IsZero() {
		t.Errorf("defaults not applied: %+v", o)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.UnitLabel != "hours" || o.UnitSuffix != "h" || o.LegendTitle == "" || o.Font == "" {
		t.Errorf("annotation defaults missing: %+v", o)
	}

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad mode", Options{Mode: "decade"}, errors.ErrCodeInvalidMode},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"case sensitive format", Options{Formats: []string{"SVG"}}, errors.ErrCodeInvalidFormat},
		{"negative scale", Options{Scale: -1}, errors.ErrCodeInvalidInput},
		{"huge scale", Options{Scale: 100}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestTitleFor(t *testing.T) {
	o := Options{}
	p := stats.NewPeriod(stats.ModeMonth, monday)
	if got := o.TitleFor(p); got != "2024-01 time allocation" {
		t.Errorf("TitleFor = %q", got)
	}
	o.Title = "January"
	if got := o.TitleFor(p); got != "January" {
		t.Errorf("TitleFor with override = %q", got)
	}
}

func TestChartEmpty(t *testing.T) {
	r := newRunner(t)
	res, err := r.Chart(context.Background(), Options{Mode: stats.ModeWeek, Date: monday, Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if !res.Empty || res.Layout != nil {
		t.Errorf("Empty = %v, Layout = %v", res.Empty, res.Layout)
	}
	if res.Record.Len() != 0 {
		t.Errorf("Record = %v", res.Record)
	}
	if !bytes.Contains(res.Artifacts["svg"], []byte(sink.NoDataText)) {
		t.Error("empty chart should render the placeholder")
	}
	if strings.TrimSpace(string(res.Artifacts["json"])) != "null" {
		t.Errorf("empty json = %s", res.Artifacts["json"])
	}
}

func TestChartWeek(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()
	if err := r.PutDay(ctx, "2024.01.01", record("work", 60)); err != nil {
		t.Fatal(err)
	}
	if err := r.PutDay(ctx, "2024.01.02", record("work", 30, "rest", 10)); err != nil {
		t.Fatal(err)
	}
	// Outside the week.
	if err := r.PutDay(ctx, "2024.01.08", record("gym", 600)); err != nil {
		t.Fatal(err)
	}

	res, err := r.Chart(ctx, Options{Mode: stats.ModeWeek, Date: monday.AddDate(0, 0, 3), Formats: []string{"svg", "png", "json"}})
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if res.Empty {
		t.Fatal("week with data should not be empty")
	}
	if want := record("work", 90, "rest", 10); !res.Record.Equal(want) {
		t.Errorf("Record = %v, want %v", res.Record, want)
	}
	if res.Stats.Days != 7 || res.Stats.Categories != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if got := res.Layout.Title.Value; got != "01.01 ~ 01.07 time allocation" {
		t.Errorf("title = %q", got)
	}
	if len(res.Layout.Slices) != 2 {
		t.Errorf("slices = %d", len(res.Layout.Slices))
	}
	if !bytes.HasPrefix(res.Artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}
	if !bytes.Contains(res.Artifacts["json"], []byte(`"period": "01.01 ~ 01.07"`)) {
		t.Errorf("json artifact missing period:\n%s", res.Artifacts["json"])
	}
}

func TestChartCaching(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()
	if err := r.PutDay(ctx, "2024.01.01", record("work", 60)); err != nil {
		t.Fatal(err)
	}
	opts := Options{Mode: stats.ModeMonth, Date: monday}

	first, err := r.Chart(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.StatsHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := r.Chart(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.StatsHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs")
	}

	// A write inside the month invalidates its aggregate.
	if err := r.PutDay(ctx, "2024.01.20", record("rest", 30)); err != nil {
		t.Fatal(err)
	}
	third, err := r.Chart(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.StatsHit {
		t.Error("aggregate should be recomputed after a write")
	}
	if want := record("work", 60, "rest", 30); !third.Record.Equal(want) {
		t.Errorf("Record = %v, want %v", third.Record, want)
	}

	if err := r.DeleteDay(ctx, "2024.01.20"); err != nil {
		t.Fatal(err)
	}
	fourth, err := r.Chart(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.StatsHit || !fourth.CacheInfo.RenderHit {
		t.Errorf("after delete: %+v (render cache should serve the old record)", fourth.CacheInfo)
	}

	refreshed, err := r.Chart(ctx, Options{Mode: stats.ModeMonth, Date: monday, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.StatsHit || refreshed.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass cache reads: %+v", refreshed.CacheInfo)
	}
}

func TestChartPDF(t *testing.T) {
	r := newRunner(t)
	_, err := r.Chart(context.Background(), Options{Date: monday, Formats: []string{"pdf"}})
	if !render.Available() {
		if !errors.Is(err, errors.ErrCodeUnsupported) {
			t.Errorf("pdf without rsvg-convert err = %v, want UNSUPPORTED", err)
		}
		return
	}
	if err != nil {
		t.Errorf("pdf: %v", err)
	}
}

func TestChartInvalidOptions(t *testing.T) {
	r := newRunner(t)
	_, err := r.Chart(context.Background(), Options{Mode: "fortnight"})
	if !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("err = %v, want INVALID_MODE", err)
	}
}

func TestAggregateAcrossYear(t *testing.T) {
	r := newRunner(t)
	ctx := context.Background()
	for _, k := range []string{"2024.02.29", "2024.12.31", "2025.01.01"} {
		if err := r.PutDay(ctx, k, record("work", 60)); err != nil {
			t.Fatal(err)
		}
	}
	rec, err := r.Aggregate(ctx, stats.NewPeriod(stats.ModeYear, monday))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Get("work") != 120 {
		t.Errorf("year total = %d, want 120", rec.Get("work"))
	}
}

func TestAggregateStoresShareCache(t *testing.T) {
	ctx := context.Background()
	shared, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	open := func() *Runner {
		st, err := file.Open(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		return NewRunner(st, shared, nil, logger)
	}
	ra, rb := open(), open()
	week := stats.NewPeriod(stats.ModeWeek, monday)

	if err := ra.PutDay(ctx, "2024.01.01", record("work", 120)); err != nil {
		t.Fatal(err)
	}
	if got, err := ra.Aggregate(ctx, week); err != nil || got.Get("work") != 120 {
		t.Fatalf("store A aggregate = %v, %v", got, err)
	}
	got, hit, err := rb.AggregateWithCacheInfo(ctx, week, false)
	if err != nil {
		t.Fatal(err)
	}
	if hit || got.Len() != 0 {
		t.Errorf("empty store B aggregate = %v (cache hit %v), want {}", got, hit)
	}
}

// flakyStore fails every day read while down is set.
type flakyStore struct {
	*file.Store
	down bool
}

func (s *flakyStore) Get(ctx context.Context, key string) (stats.Record, error) {
	if s.down {
		return stats.Record{}, errors.New(errors.ErrCodeStorage, "connection refused")
	}
	return s.Store.Get(ctx, key)
}

func TestAggregateSkipsCacheOnFaults(t *testing.T) {
	ctx := context.Background()
	fs, err := file.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	st := &flakyStore{Store: fs}
	c, err := cache.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(st, c, nil, log.NewWithOptions(io.Discard, log.Options{}))
	if err := r.PutDay(ctx, "2024.01.02", record("work", 45)); err != nil {
		t.Fatal(err)
	}
	week := stats.NewPeriod(stats.ModeWeek, monday)

	st.down = true
	if got, err := r.Aggregate(ctx, week); err != nil || got.Len() != 0 {
		t.Fatalf("aggregate during outage = %v, %v", got, err)
	}

	st.down = false
	got, hit, err := r.AggregateWithCacheInfo(ctx, week, false)
	if err != nil {
		t.Fatal(err)
	}
	if hit || got.Get("work") != 45 {
		t.Errorf("aggregate after outage = %v (cache hit %v), want work: 45", got, hit)
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	mu        sync.Mutex
	aggregate int
	layouts   int
	empty     int
	renders   int
}

func (h *countingHooks) OnAggregateComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.aggregate++
}

func (h *countingHooks) OnLayoutComplete(_ context.Context, _ int, _ time.Duration, empty bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts++
	if empty {
		h.empty++
	}
}

func (h *countingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
}

func TestChartEmitsHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := newRunner(t)
	if _, err := r.Chart(context.Background(), Options{Date: monday}); err != nil {
		t.Fatal(err)
	}
	if hooks.aggregate != 1 || hooks.layouts != 1 || hooks.empty != 1 || hooks.renders != 1 {
		t.Errorf("hooks = %+v", hooks)
	}
}
