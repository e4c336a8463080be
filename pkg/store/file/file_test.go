package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
	"github.com/matzehuels/timeslice/pkg/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(t.TempDir())
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		return s
	})
}

func TestOpenEmptyDir(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") should fail")
	}
}

func TestReadsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DaysFile, `{
  "2026.01.07": {"Night sleep": 480, "Work": 540, "Commute": 60},
  "2026.01.08": null
}`)
	writeFile(t, dir, CategoriesFile, `{"categories": ["Work", "Night sleep"]}`)
	writeFile(t, dir, TasksFile, `{"tasks": [
  {"id": "a1", "text": "ship it", "quadrant": "Q1", "completed": false,
   "created_at": "2026-01-07T09:30:00.123456"}
]}`)

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	rec, err := s.Get(ctx, "2026.01.07")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := strings.Join(rec.Categories(), ","); got != "Night sleep,Work,Commute" {
		t.Errorf("category order = %s", got)
	}
	if rec.Total() != 1080 {
		t.Errorf("Total = %d, want 1080", rec.Total())
	}

	cats, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 || cats[0] != "Work" {
		t.Errorf("Categories = %v", cats)
	}

	tasks, err := s.Tasks(ctx, store.Q1)
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "a1" {
		t.Fatalf("Tasks = %+v", tasks)
	}
	if tasks[0].CreatedAt.Hour() != 9 || tasks[0].CreatedAt.Minute() != 30 {
		t.Errorf("CreatedAt = %v", tasks[0].CreatedAt)
	}
}

func TestWritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	rec := stats.NewRecord()
	rec.Set("睡觉", 480)
	rec.Set("<work>", 60)
	if err := s.Put(context.Background(), "2026.01.07", rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, DaysFile))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{`"睡觉": 480`, `"<work>": 60`, "\n  \"2026.01.07\""} {
		if !strings.Contains(text, want) {
			t.Errorf("%s missing %q:\n%s", DaysFile, want, text)
		}
	}
	if strings.Index(text, "睡觉") > strings.Index(text, "<work>") {
		t.Errorf("%s should keep category order", DaysFile)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestOpensDesktopDataDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "energy_data.json", `{
  "2024-01-04": {"Work": 300, "Night sleep": 420},
  "2024-01-05": {"Work": 1},
  "2024.01.05": {"Work": 200},
  "2026.01.07": {"Reading": 30}
}`)
	writeFile(t, dir, "categories_config.json", `{"categories": ["Work"]}`)
	writeFile(t, dir, "quadrant_tasks.json", `{"tasks": [
  {"id": "a1", "text": "ship it", "quadrant": "Q2", "completed": true,
   "created_at": "2024-01-04T09:30:00"}
]}`)
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	rec, err := s.Get(ctx, "2024.01.04")
	if err != nil {
		t.Fatalf("Get ISO day: %v", err)
	}
	if got := rec.Categories(); len(got) != 2 || got[0] != "Work" || got[1] != "Night sleep" {
		t.Errorf("categories = %v, want [Work Night sleep]", got)
	}
	rec, err = s.Get(ctx, "2024.01.05")
	if err != nil {
		t.Fatalf("Get duplicated day: %v", err)
	}
	if rec.Get("Work") != 200 {
		t.Errorf("Work = %d, want the YYYY.MM.DD entry (200)", rec.Get("Work"))
	}
	if _, err := s.Get(ctx, "2024-01-04"); !store.IsNotFound(err) {
		t.Errorf("Get ISO key err = %v, want not found", err)
	}

	cats, err := s.Categories(ctx)
	if err != nil || len(cats) != 1 || cats[0] != "Work" {
		t.Errorf("Categories = %v, %v", cats, err)
	}
	tasks, err := s.Tasks(ctx, store.Q2)
	if err != nil || len(tasks) != 1 || tasks[0].Quadrant != store.Q2 || !tasks[0].Completed {
		t.Errorf("Tasks = %+v, %v", tasks, err)
	}

	if err := s.Put(ctx, "2026.01.08", stats.NewRecord()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "energy_data.json"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "2024-01-04") {
		t.Errorf("ISO key not rewritten:\n%s", data)
	}
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DaysFile, `{not json`)
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Get(context.Background(), "2026.01.07"); err == nil || store.IsNotFound(err) {
		t.Errorf("Get on corrupt file err = %v, want storage error", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
