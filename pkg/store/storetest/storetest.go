// Package storetest provides a behavioral test suite shared by every
// store.Store backend.
package storetest

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// Factory returns an empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run exercises the full store.Store contract against fresh stores.
func Run(t *testing.T, newStore Factory) {
	t.Run("Days", func(t *testing.T) { testDays(t, newStore(t)) })
	t.Run("Keys", func(t *testing.T) { testKeys(t, newStore(t)) })
	t.Run("InvalidDay", func(t *testing.T) { testInvalidDay(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, newStore(t)) })
	t.Run("Lookup", func(t *testing.T) { testLookup(t, newStore(t)) })
	t.Run("Scope", func(t *testing.T) { testScope(t, newStore(t)) })
}

func testScope(t *testing.T, s store.Store) {
	defer s.Close()
	scope := s.Scope()
	if !strings.HasPrefix(scope, s.Backend()+":") || len(scope) == len(s.Backend())+1 {
		t.Errorf("Scope() = %q, want %q followed by a location", scope, s.Backend()+":")
	}
	if again := s.Scope(); again != scope {
		t.Errorf("Scope() changed from %q to %q", scope, again)
	}
}

func record(pairs ...any) stats.Record {
	r := stats.NewRecord()
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1].(int))
	}
	return r
}

func testDays(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	if _, err := s.Get(ctx, "2024.01.01"); !store.IsNotFound(err) {
		t.Fatalf("Get(missing) err = %v, want NOT_FOUND", err)
	}

	want := record("work", 540, "sleep", 480, "commute", 45)
	if err := s.Put(ctx, "2024.01.01", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, "2024.01.01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("Get = %v, want %v", got, want)
	}

	replaced := record("rest", 60)
	if err := s.Put(ctx, "2024.01.01", replaced); err != nil {
		t.Fatalf("Put(replace): %v", err)
	}
	got, err = s.Get(ctx, "2024.01.01")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Equal(replaced) {
		t.Errorf("Get after replace = %v, want %v", got, replaced)
	}

	if err := s.Delete(ctx, "2024.01.01"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "2024.01.01"); !store.IsNotFound(err) {
		t.Errorf("Get after Delete err = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "2024.01.01"); err != nil {
		t.Errorf("Delete(absent) = %v, want nil", err)
	}
}

func testKeys(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys on empty store = %v", keys)
	}

	for _, k := range []string{"2024.03.01", "2023.12.31", "2024.01.15"} {
		if err := s.Put(ctx, k, record("work", 60)); err != nil {
			t.Fatalf("Put(%s): %v", k, err)
		}
	}
	keys, err = s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"2023.12.31", "2024.01.15", "2024.03.01"}
	if !slices.Equal(keys, want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}
}

func testInvalidDay(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	if err := s.Put(ctx, "2024-13-01", record("work", 60)); !errors.Is(err, errors.ErrCodeInvalidDate) {
		t.Errorf("Put(bad key) err = %v, want INVALID_DATE", err)
	}
	if err := s.Put(ctx, "2024.01.01", record("a=b", 60)); !errors.Is(err, errors.ErrCodeInvalidCategory) {
		t.Errorf("Put(bad category) err = %v, want INVALID_CATEGORY", err)
	}
	if err := s.Put(ctx, "2024.01.01", record("work", -5)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Put(negative) err = %v, want INVALID_INPUT", err)
	}
}

func testCategories(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	got, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if !slices.Equal(got, store.DefaultCategories) {
		t.Errorf("Categories on empty store = %v, want defaults", got)
	}

	if err := s.SetCategories(ctx, []string{"Work", " Sleep ", "Work", ""}); err != nil {
		t.Fatalf("SetCategories: %v", err)
	}
	got, err = s.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if want := []string{"Work", "Sleep"}; !slices.Equal(got, want) {
		t.Errorf("Categories = %v, want %v", got, want)
	}

	if err := s.SetCategories(ctx, []string{}); err != nil {
		t.Fatalf("SetCategories(empty): %v", err)
	}
	got, err = s.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Categories after clearing = %v, want empty", got)
	}

	if err := s.SetCategories(ctx, []string{"a,b"}); !errors.Is(err, errors.ErrCodeInvalidCategory) {
		t.Errorf("SetCategories(invalid) err = %v, want INVALID_CATEGORY", err)
	}
}

func testTasks(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	first, err := s.AddTask(ctx, "write report", store.Q1)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if first.ID == "" || first.Completed || first.CreatedAt.IsZero() {
		t.Errorf("AddTask returned %+v", first)
	}
	second, err := s.AddTask(ctx, "plan week", store.Q2)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	third, err := s.AddTask(ctx, "call back", store.Q1)
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	assertTaskIDs(t, s, store.Q1, first.ID, third.ID)
	assertTaskIDs(t, s, "", first.ID, second.ID, third.ID)
	assertTaskIDs(t, s, store.Q4)

	moved, err := s.MoveTask(ctx, first.ID, store.Q4)
	if err != nil {
		t.Fatalf("MoveTask: %v", err)
	}
	if moved.Quadrant != store.Q4 {
		t.Errorf("MoveTask quadrant = %s, want Q4", moved.Quadrant)
	}
	assertTaskIDs(t, s, store.Q1, third.ID)
	assertTaskIDs(t, s, store.Q4, first.ID)

	toggled, err := s.ToggleTask(ctx, second.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !toggled.Completed {
		t.Error("ToggleTask should mark task completed")
	}
	toggled, err = s.ToggleTask(ctx, second.ID)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if toggled.Completed {
		t.Error("second ToggleTask should clear completion")
	}

	if err := s.DeleteTask(ctx, third.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	assertTaskIDs(t, s, "", first.ID, second.ID)

	if err := s.DeleteTask(ctx, "missing"); !store.IsNotFound(err) {
		t.Errorf("DeleteTask(missing) err = %v, want NOT_FOUND", err)
	}
	if _, err := s.ToggleTask(ctx, "missing"); !store.IsNotFound(err) {
		t.Errorf("ToggleTask(missing) err = %v, want NOT_FOUND", err)
	}
	if _, err := s.MoveTask(ctx, first.ID, "Q9"); !errors.Is(err, errors.ErrCodeInvalidQuadrant) {
		t.Errorf("MoveTask(Q9) err = %v, want INVALID_QUADRANT", err)
	}
	if _, err := s.AddTask(ctx, "x", "Q0"); !errors.Is(err, errors.ErrCodeInvalidQuadrant) {
		t.Errorf("AddTask(Q0) err = %v, want INVALID_QUADRANT", err)
	}
	if _, err := s.AddTask(ctx, "   ", store.Q1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("AddTask(blank) err = %v, want INVALID_INPUT", err)
	}
	if _, err := s.Tasks(ctx, "Q5"); !errors.Is(err, errors.ErrCodeInvalidQuadrant) {
		t.Errorf("Tasks(Q5) err = %v, want INVALID_QUADRANT", err)
	}
}

func assertTaskIDs(t *testing.T, s store.Store, q store.Quadrant, want ...string) {
	t.Helper()
	tasks, err := s.Tasks(context.Background(), q)
	if err != nil {
		t.Fatalf("Tasks(%q): %v", q, err)
	}
	got := make([]string, len(tasks))
	for i, task := range tasks {
		got[i] = task.ID
	}
	if len(want) == 0 {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		t.Errorf("Tasks(%q) IDs = %v, want %v", q, got, want)
	}
}

func testLookup(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	if err := s.Put(ctx, "2024.01.01", record("work", 60)); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "2024.01.02", record("work", 30, "rest", 10)); err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)
	got := stats.Aggregate(store.Lookup(ctx, s, nil), start, end)
	if want := record("work", 90, "rest", 10); !got.Equal(want) {
		t.Errorf("Aggregate = %v, want %v", got, want)
	}
}
