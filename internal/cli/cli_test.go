package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/timeslice/pkg/cache"
	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
	"github.com/matzehuels/timeslice/pkg/store/file"
)

var testNow = time.Date(2024, 1, 3, 15, 0, 0, 0, time.Local)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := stdout
	var buf bytes.Buffer
	stdout = &buf
	t.Cleanup(func() { stdout = old })
	return &buf
}

func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	old := stderr
	var buf bytes.Buffer
	stderr = &buf
	t.Cleanup(func() { stderr = old })
	return &buf
}

// testEnv isolates config, cache and data directories for one test.
type testEnv struct {
	t       *testing.T
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	for _, k := range []string{"TIMESLICE_STORAGE", "TIMESLICE_DATA_DIR", "TIMESLICE_CACHE"} {
		t.Setenv(k, "")
	}
	captureStderr(t)
	return &testEnv{t: t, dataDir: filepath.Join(root, "days")}
}

// run executes the CLI with args and returns what it printed.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	out := captureOutput(e.t)
	c := New(io.Discard, LogInfo)
	c.now = func() time.Time { return testNow }
	root := c.RootCommand()
	root.SetArgs(append([]string{"--data-dir", e.dataDir}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v: %v", args, err)
	}
	return out
}

func (e *testEnv) store() *file.Store {
	e.t.Helper()
	st, err := file.Open(e.dataDir)
	if err != nil {
		e.t.Fatal(err)
	}
	return st
}

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]int
		wantErr bool
	}{
		{"hours and minutes", []string{"Work=1h30m"}, map[string]int{"Work": 90}, false},
		{"bare hours", []string{"Nap=0.5"}, map[string]int{"Nap": 30}, false},
		{"spaces in name", []string{" Side project = 2h "}, map[string]int{"Side project": 120}, false},
		{"explicit zero", []string{"Work=0"}, map[string]int{"Work": 0}, false},
		{"several", []string{"a=1h", "b=15m"}, map[string]int{"a": 60, "b": 15}, false},
		{"missing equals", []string{"Work"}, nil, true},
		{"missing name", []string{"=1h"}, nil, true},
		{"bad duration", []string{"Work=lots"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEntries(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEntries(%q) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.IsValidation(err) {
					t.Errorf("error %v should be a validation error", err)
				}
				return
			}
			for name, minutes := range tt.want {
				if got.Get(name) != minutes || !got.Has(name) {
					t.Errorf("%s = %d, want %d", name, got.Get(name), minutes)
				}
			}
			if got.Len() != len(tt.want) {
				t.Errorf("len = %d, want %d", got.Len(), len(tt.want))
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	for s, want := range map[string]bool{
		"0": true, "0h": true, "0m": true, "0h0m": true, "0.0": true,
		"1": false, "0h5m": false, "abc": false, "": true,
	} {
		if got := isZero(s); got != want {
			t.Errorf("isZero(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int]string{
		0:   "0m",
		-5:  "0m",
		45:  "45m",
		120: "2h",
		65:  "1h05m",
		630: "10h30m",
	}
	for in, want := range tests {
		if got := formatMinutes(in); got != want {
			t.Errorf("formatMinutes(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, PNG,,json", []string{"svg", "png", "json"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.input)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"default name", "", []string{"svg", "png"}, map[string]string{"svg": "base.svg", "png": "base.png"}},
		{"single file", "out/chart.svg", []string{"svg"}, map[string]string{"svg": "out/chart.svg"}},
		{"single without ext", "chart", []string{"png"}, map[string]string{"png": "chart.png"}},
		{"base with known ext", "chart.svg", []string{"svg", "json"}, map[string]string{"svg": "chart.svg", "json": "chart.json"}},
		{"base with other ext", "v1.2", []string{"svg", "png"}, map[string]string{"svg": "v1.2.svg", "png": "v1.2.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "base", tt.formats)
			for f, want := range tt.want {
				if got[f] != want {
					t.Errorf("%s: got %q, want %q", f, got[f], want)
				}
			}
		})
	}
}

func TestDefaultChartBase(t *testing.T) {
	p := stats.NewPeriod(stats.ModeWeek, testNow)
	if got := defaultChartBase(p); got != "timeslice-week-2024.01.01" {
		t.Errorf("defaultChartBase = %q", got)
	}
}

func TestLogAndShow(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("log", "--date", "2024.01.02", "Work=1h30m", "Nap=30m")
	if !strings.Contains(out, "Saved 2024.01.02") {
		t.Errorf("log output = %q", out)
	}

	out = env.mustRun("show", "2024-01-02")
	for _, want := range []string{"2024.01.02", "Tuesday", "Work", "1h30m", "Nap", "30m", "Total", "2h", "75.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	// Merge keeps Nap, zero removes Work.
	env.mustRun("log", "-d", "2024.01.02", "Work=0", "Fitness=1h")
	rec, err := env.store().Get(context.Background(), "2024.01.02")
	if err != nil {
		t.Fatal(err)
	}
	if got := rec.Categories(); strings.Join(got, ",") != "Nap,Fitness" {
		t.Errorf("categories after merge = %v", got)
	}

	env.mustRun("log", "-d", "2024.01.02", "--replace", "Commute=20m")
	rec, _ = env.store().Get(context.Background(), "2024.01.02")
	if rec.Len() != 1 || rec.Get("Commute") != 20 {
		t.Errorf("record after replace = %v", rec)
	}
}

func TestLogDefaultsToToday(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "Work=1h")
	if _, err := env.store().Get(context.Background(), "2024.01.03"); err != nil {
		t.Fatalf("today's record: %v", err)
	}

	env.mustRun("log", "-d", "yesterday", "Work=2h")
	rec, err := env.store().Get(context.Background(), "2024.01.02")
	if err != nil || rec.Get("Work") != 120 {
		t.Fatalf("yesterday's record = %v, %v", rec, err)
	}
}

func TestLogClearingEveryCategoryDeletesDay(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-d", "2024.01.02", "Work=1h")
	out := env.mustRun("log", "-d", "2024.01.02", "Work=0")
	if !strings.Contains(out, "Cleared 2024.01.02") {
		t.Errorf("output = %q", out)
	}
	if _, err := env.store().Get(context.Background(), "2024.01.02"); !store.IsNotFound(err) {
		t.Errorf("Get after clear: %v, want NOT_FOUND", err)
	}
}

func TestLogWarnsAboutUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("log", "Reading=1h", "Work=1h")
	if !strings.Contains(out, `"Reading" is not in your category list`) {
		t.Errorf("missing warning:\n%s", out)
	}
	if strings.Contains(out, `"Work" is not`) {
		t.Errorf("Work is a default category:\n%s", out)
	}
}

func TestLogErrors(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		args []string
		code errors.Code
	}{
		{[]string{"log", "Work"}, errors.ErrCodeInvalidInput},
		{[]string{"log", "--date", "2024.13.01", "Work=1h"}, errors.ErrCodeInvalidDate},
		{[]string{"log", "--date", "tomorrow", "Work=1h"}, errors.ErrCodeInvalidDate},
	}
	for _, tt := range tests {
		_, err := env.run(tt.args...)
		if !errors.Is(err, tt.code) {
			t.Errorf("%v: error = %v, want %s", tt.args, err, tt.code)
		}
	}
}

func TestShowMissingDay(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("show", "2024.01.02")
	if !strings.Contains(out, "No data for 2024.01.02") {
		t.Errorf("output = %q", out)
	}
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-d", "2024.01.02", "Work=1h")
	env.mustRun("delete", "2024.01.02")
	if _, err := env.store().Get(context.Background(), "2024.01.02"); !store.IsNotFound(err) {
		t.Errorf("Get after delete: %v", err)
	}
	// Deleting again is not an error.
	env.mustRun("rm", "2024.01.02")
}

func TestCategoriesCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("categories", "list")
	if !strings.Contains(out, "Night sleep") || !strings.Contains(out, " 12 ") {
		t.Errorf("default list:\n%s", out)
	}

	env.mustRun("categories", "add", "Reading", "Work")
	cats, _ := env.store().Categories(context.Background())
	if cats[len(cats)-1] != "Reading" || len(cats) != len(store.DefaultCategories)+1 {
		t.Errorf("categories after add = %v", cats)
	}

	out = env.mustRun("cat", "rm", "Reading", "Missing")
	if !strings.Contains(out, `"Missing" not found`) || !strings.Contains(out, "Removed 1 categories") {
		t.Errorf("remove output:\n%s", out)
	}

	env.mustRun("categories", "rm", "Work")
	env.mustRun("categories", "reset")
	cats, _ = env.store().Categories(context.Background())
	if strings.Join(cats, ",") != strings.Join(store.DefaultCategories, ",") {
		t.Errorf("categories after reset = %v", cats)
	}
}

func TestStatsCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-d", "2024.01.01", "Work=3h")
	env.mustRun("log", "-d", "2024.01.07", "Work=1h", "Nap=1h")
	env.mustRun("log", "-d", "2024.01.08", "Gaming=5h")

	out := env.mustRun("stats", "--mode", "week", "--date", "2024.01.03")
	for _, want := range []string{"01.01 ~ 01.07", "Work", "4h", "Nap", "5h"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Gaming") {
		t.Errorf("next week's data leaked into stats:\n%s", out)
	}

	out = env.mustRun("stats", "-m", "year", "-d", "2023.05.05")
	if !strings.Contains(out, "No data for this period") {
		t.Errorf("empty year output:\n%s", out)
	}

	if _, err := env.run("stats", "-m", "decade"); !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("bad mode error = %v", err)
	}
}

func TestChartCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-d", "2024.01.02", "Work=6h", "Nap=2h")

	dir := t.TempDir()
	base := filepath.Join(dir, "charts", "week")
	out := env.mustRun("chart", "-d", "2024.01.02", "-f", "svg,json", "-o", base)
	if !strings.Contains(out, "Charted 01.01 ~ 01.07") {
		t.Errorf("chart output:\n%s", out)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("svg file does not contain an svg element")
	}
	js, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(js, []byte(`"Work"`)) {
		t.Errorf("json chart missing category:\n%s", js)
	}
}

func TestChartEmptyPeriod(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "empty.svg")
	out := env.mustRun("chart", "-m", "month", "-d", "2020.02.10", "-o", path)
	if !strings.Contains(out, "No data for 2020-02") {
		t.Errorf("output:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("No data for this period")) {
		t.Error("empty chart should carry the placeholder text")
	}
}

func TestChartInvalidFormat(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("chart", "-f", "gif")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestTasksCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("tasks", "list")
	if !strings.Contains(out, "No tasks") {
		t.Errorf("empty list:\n%s", out)
	}

	env.mustRun("tasks", "add", "-q", "1", "file", "taxes")
	env.mustRun("tasks", "add", "plan next week")

	tasks, err := env.store().Tasks(context.Background(), "")
	if err != nil || len(tasks) != 2 {
		t.Fatalf("tasks = %v, %v", tasks, err)
	}
	taxes := tasks[0]
	if taxes.Text != "file taxes" || taxes.Quadrant != store.Q1 {
		t.Errorf("first task = %+v", taxes)
	}
	if tasks[1].Quadrant != store.Q2 {
		t.Errorf("default quadrant = %s, want Q2", tasks[1].Quadrant)
	}

	out = env.mustRun("tasks", "list")
	for _, want := range []string{"Q1", store.Q1.Name(), "file taxes", "Q2", "plan next week", shortID(taxes.ID)} {
		if !strings.Contains(out, want) {
			t.Errorf("list missing %q:\n%s", want, out)
		}
	}

	env.mustRun("tasks", "toggle", shortID(taxes.ID))
	env.mustRun("tasks", "move", taxes.ID[:12], "q4")
	got, _ := env.store().Tasks(context.Background(), store.Q4)
	if len(got) != 1 || !got[0].Completed {
		t.Errorf("Q4 after toggle+move = %+v", got)
	}

	out = env.mustRun("tasks", "list", "-q", "2")
	if strings.Contains(out, "file taxes") {
		t.Errorf("filtered list shows other quadrants:\n%s", out)
	}

	env.mustRun("tasks", "rm", taxes.ID)
	if _, err := env.run("tasks", "rm", taxes.ID); !store.IsNotFound(err) {
		t.Errorf("second delete error = %v, want NOT_FOUND", err)
	}
	if _, err := env.run("tasks", "add", "-q", "5", "x"); !errors.Is(err, errors.ErrCodeInvalidQuadrant) {
		t.Errorf("bad quadrant error = %v", err)
	}
}

func TestResolveTask(t *testing.T) {
	st, err := file.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	a, _ := st.AddTask(ctx, "a", store.Q1)
	b, _ := st.AddTask(ctx, "b", store.Q1)

	if got, err := resolveTask(ctx, st, a.ID); err != nil || got != a.ID {
		t.Errorf("full id: %q, %v", got, err)
	}
	if got, err := resolveTask(ctx, st, b.ID[:10]); err != nil || got != b.ID {
		t.Errorf("prefix: %q, %v", got, err)
	}
	if _, err := resolveTask(ctx, st, "zzz"); !store.IsNotFound(err) {
		t.Errorf("unknown id error = %v", err)
	}
	if _, err := resolveTask(ctx, st, " "); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty id error = %v", err)
	}
}

func TestExportImport(t *testing.T) {
	src := newTestEnv(t)
	src.mustRun("log", "-d", "2024.01.02", "Work=1h", "Nap=30m")
	src.mustRun("log", "-d", "2024.01.03", "Gaming=2h")
	src.mustRun("categories", "add", "Reading")
	src.mustRun("tasks", "add", "-q", "3", "reply to mail")

	backup := filepath.Join(t.TempDir(), "backup.json")
	out := src.mustRun("export", backup)
	if !strings.Contains(out, "Exported 2 days, 13 categories, 1 tasks") {
		t.Errorf("export output:\n%s", out)
	}

	dst := newTestEnv(t)
	dst.mustRun("log", "-d", "2023.12.31", "Work=8h")
	out = dst.mustRun("import", "--replace", backup)
	if !strings.Contains(out, "Imported 2 days") || !strings.Contains(out, "1 days deleted") {
		t.Errorf("import output:\n%s", out)
	}

	st := dst.store()
	ctx := context.Background()
	rec, err := st.Get(ctx, "2024.01.02")
	if err != nil || strings.Join(rec.Categories(), ",") != "Work,Nap" {
		t.Errorf("imported day = %v, %v", rec, err)
	}
	if _, err := st.Get(ctx, "2023.12.31"); !store.IsNotFound(err) {
		t.Errorf("replaced day still present: %v", err)
	}
	tasks, _ := st.Tasks(ctx, store.Q3)
	if len(tasks) != 1 {
		t.Errorf("imported tasks = %v", tasks)
	}

	// Importing twice does not duplicate tasks.
	dst.mustRun("import", backup)
	tasks, _ = dst.store().Tasks(ctx, "")
	if len(tasks) != 1 {
		t.Errorf("tasks after second import = %d, want 1", len(tasks))
	}
}

func TestExportToStdout(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-d", "2024.01.02", "Work=1h")
	out := env.mustRun("export")
	if !strings.Contains(out, `"2024.01.02": {`) || !strings.Contains(out, `"Work": 60`) {
		t.Errorf("export to stdout:\n%s", out)
	}
}

func TestImportFromStdin(t *testing.T) {
	env := newTestEnv(t)
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	old := stdin
	stdin = r
	t.Cleanup(func() { stdin = old })
	go func() {
		io.WriteString(w, `{"2024-01-04": {"Work": 120, "Nap": 15}}`)
		w.Close()
	}()

	env.mustRun("import", "-")
	rec, err := env.store().Get(context.Background(), "2024.01.04")
	if err != nil || rec.Total() != 135 {
		t.Errorf("imported bare day file = %v, %v", rec, err)
	}
}

func TestImportInvalidatesCachedStats(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-d", "2024.01.02", "Work=1h")
	// Populate the file cache.
	env.mustRun("stats", "-d", "2024.01.02")

	backup := filepath.Join(t.TempDir(), "b.json")
	if err := os.WriteFile(backup, []byte(`{"2024.01.02": {"Work": 300}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	env.mustRun("import", backup)

	out := env.mustRun("stats", "-d", "2024.01.02")
	if !strings.Contains(out, "5h") {
		t.Errorf("stats after import served stale totals:\n%s", out)
	}
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "timeslice.toml")

	env.mustRun("--config", path, "config", "init")
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
	if _, err := env.run("--config", path, "config", "init"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("second init error = %v", err)
	}
	env.mustRun("--config", path, "config", "init", "--force")

	out := env.mustRun("--config", path, "config", "path")
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q", out)
	}

	out = env.mustRun("--config", path, "--storage", "bolt", "config", "show")
	for _, want := range []string{"[storage]", `type = "bolt"`, "[chart]", "[cache]"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}

	if _, err := env.run("--config", filepath.Join(t.TempDir(), "missing.toml"), "show"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing explicit config error = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("cache", "path")
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("cache", "timeslice")) {
		t.Errorf("cache path = %q", out)
	}

	out = env.mustRun("cache", "clear")
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on empty cache:\n%s", out)
	}

	env.mustRun("log", "-d", "2024.01.02", "Work=1h")
	env.mustRun("stats", "-d", "2024.01.02")
	out = env.mustRun("cache", "clear")
	if !strings.Contains(out, "Cleared") {
		t.Errorf("clear after stats:\n%s", out)
	}
}

func TestCompletion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("completion", "bash")
	if !strings.Contains(out, "timeslice") {
		t.Error("bash completion should mention the program name")
	}
}

func TestNewRunnerUsesVersionedKeys(t *testing.T) {
	newTestEnv(t)
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Cache.Type = config.CacheNone

	c := New(io.Discard, LogInfo)
	r, err := c.newRunner(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer r.Close()

	key := r.Keyer.StatsKey(r.Store.Scope(), "day", "2024.01.03")
	if !strings.HasPrefix(key, cache.KeySchema) {
		t.Errorf("stats key %q lacks %q prefix", key, cache.KeySchema)
	}
	if !strings.Contains(key, cfg.Storage.DataDir) {
		t.Errorf("stats key %q does not name the data dir", key)
	}
}

func TestPeriodModel(t *testing.T) {
	st, err := file.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	rec := stats.NewRecord()
	rec.Set("Work", 90)
	if err := st.Put(ctx, "2024.01.02", rec); err != nil {
		t.Fatal(err)
	}
	r := pipeline.NewRunner(st, cache.NewNullCache(), nil, nil)

	start := stats.NewPeriod(stats.ModeWeek, testNow)
	m := newPeriodModel(ctx, r, start, func() time.Time { return testNow })

	if !strings.Contains(m.View(), "loading") {
		t.Error("model should show loading before the first result")
	}

	msg := m.Init()()
	model, _ := m.Update(msg)
	m = model.(PeriodModel)
	if m.Loading || m.Record.Get("Work") != 90 {
		t.Fatalf("after load: loading=%v record=%v", m.Loading, m.Record)
	}
	if !strings.Contains(m.View(), "1h30m") {
		t.Errorf("view:\n%s", m.View())
	}

	// Step forward; a late result for the old period is ignored.
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = model.(PeriodModel)
	if m.Period.Label() != "01.08 ~ 01.14" || !m.Loading || cmd == nil {
		t.Fatalf("after right: %s loading=%v", m.Period.Label(), m.Loading)
	}
	model, _ = m.Update(msg)
	m = model.(PeriodModel)
	if !m.Loading {
		t.Error("stale load result should be dropped")
	}
	model, _ = m.Update(cmd())
	m = model.(PeriodModel)
	if m.Loading || m.Record.Len() != 0 {
		t.Errorf("next week: loading=%v record=%v", m.Loading, m.Record)
	}
	if !strings.Contains(m.View(), "No data for this period") {
		t.Errorf("empty view:\n%s", m.View())
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	m = model.(PeriodModel)
	if m.Period.Mode != stats.ModeMonth || m.Period.Label() != "2024-01" {
		t.Errorf("after m: %s", m.Period)
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	m = model.(PeriodModel)
	if m.Period.Label() != "2023-12" {
		t.Errorf("after h: %s", m.Period.Label())
	}

	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	m = model.(PeriodModel)
	if m.Period.Label() != "2024-01" {
		t.Errorf("after t: %s", m.Period.Label())
	}

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q should quit")
	}
}
