// Package file stores day records, categories and tasks as JSON files in a
// data directory. File names and shapes match the ones the desktop version
// wrote (energy_data.json, categories_config.json, quadrant_tasks.json), so
// its data directory can be opened directly. Days it saved under ISO keys
// ("2024-01-04") read as their YYYY.MM.DD equivalents and are rewritten in
// that form on the next write.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// Backend is the name reported to observability hooks.
const Backend = "file"

// File names inside the data directory.
const (
	DaysFile       = "energy_data.json"
	CategoriesFile = "categories_config.json"
	TasksFile      = "quadrant_tasks.json"
)

// Store is a file-backed store.Store. All operations re-read the files so
// that several processes may share a data directory.
type Store struct {
	mu    sync.RWMutex
	dir   string
	scope string
	now   func() time.Time
}

type categoriesDoc struct {
	Categories []string `json:"categories"`
}

type tasksDoc struct {
	Tasks []store.Task `json:"tasks"`
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: empty data dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, scope: Backend + ":" + absPath(dir), now: time.Now}, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Backend implements store.Store.
func (s *Store) Backend() string { return Backend }

// Scope implements store.Store.
func (s *Store) Scope() string { return s.scope }

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func (s *Store) Get(ctx context.Context, key string) (rec stats.Record, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "get_day", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	days, err := s.readDays()
	if err != nil {
		return stats.Record{}, err
	}
	rec, ok := days[key]
	if !ok {
		return stats.Record{}, store.NotFound(key)
	}
	return rec, nil
}

func (s *Store) Put(ctx context.Context, key string, rec stats.Record) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "put_day", start, err) }(time.Now())
	if err := store.ValidateDay(key, rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	days, err := s.readDays()
	if err != nil {
		return err
	}
	days[key] = rec
	return s.write(DaysFile, days)
}

func (s *Store) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_day", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	days, err := s.readDays()
	if err != nil {
		return err
	}
	if _, ok := days[key]; !ok {
		return nil
	}
	delete(days, key)
	return s.write(DaysFile, days)
}

func (s *Store) Keys(ctx context.Context) (keys []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "keys", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	days, err := s.readDays()
	if err != nil {
		return nil, err
	}
	keys = make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *Store) Categories(ctx context.Context) (out []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "categories", start, err) }(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc categoriesDoc
	found, err := s.read(CategoriesFile, &doc)
	if err != nil {
		return nil, err
	}
	if !found || doc.Categories == nil {
		return slices.Clone(store.DefaultCategories), nil
	}
	return doc.Categories, nil
}

func (s *Store) SetCategories(ctx context.Context, categories []string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "set_categories", start, err) }(time.Now())
	categories, err = store.NormalizeCategories(categories)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(CategoriesFile, categoriesDoc{Categories: categories})
}

func (s *Store) AddTask(ctx context.Context, text string, q store.Quadrant) (task store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "add_task", start, err) }(time.Now())
	task, err = store.NewTask(text, q, s.now())
	if err != nil {
		return store.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readTasks()
	if err != nil {
		return store.Task{}, err
	}
	doc.Tasks = append(doc.Tasks, task)
	return task, s.write(TasksFile, doc)
}

func (s *Store) Tasks(ctx context.Context, q store.Quadrant) (out []store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "tasks", start, err) }(time.Now())
	if err := store.CheckQuadrant(q); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.readTasks()
	if err != nil {
		return nil, err
	}
	return store.FilterTasks(doc.Tasks, q), nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_task", start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readTasks()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(doc.Tasks, func(t store.Task) bool { return t.ID == id })
	if i < 0 {
		return store.TaskNotFound(id)
	}
	doc.Tasks = slices.Delete(doc.Tasks, i, i+1)
	return s.write(TasksFile, doc)
}

func (s *Store) MoveTask(ctx context.Context, id string, q store.Quadrant) (store.Task, error) {
	if !q.Valid() {
		return store.Task{}, store.CheckQuadrant(q)
	}
	return s.updateTask(ctx, "move_task", id, func(t *store.Task) { t.Quadrant = q })
}

func (s *Store) ToggleTask(ctx context.Context, id string) (store.Task, error) {
	return s.updateTask(ctx, "toggle_task", id, func(t *store.Task) { t.Completed = !t.Completed })
}

func (s *Store) updateTask(ctx context.Context, op, id string, fn func(*store.Task)) (task store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, op, start, err) }(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readTasks()
	if err != nil {
		return store.Task{}, err
	}
	i := slices.IndexFunc(doc.Tasks, func(t store.Task) bool { return t.ID == id })
	if i < 0 {
		return store.Task{}, store.TaskNotFound(id)
	}
	fn(&doc.Tasks[i])
	return doc.Tasks[i], s.write(TasksFile, doc)
}

func (s *Store) readDays() (map[string]stats.Record, error) {
	raw := make(map[string]stats.Record)
	if _, err := s.read(DaysFile, &raw); err != nil {
		return nil, err
	}
	days := make(map[string]stats.Record, len(raw))
	for key, rec := range raw {
		canonical := canonicalKey(key)
		if canonical != key {
			// A day present under both spellings keeps the YYYY.MM.DD one.
			if _, ok := raw[canonical]; ok {
				continue
			}
		}
		days[canonical] = rec
	}
	return days, nil
}

// canonicalKey rewrites ISO day keys as YYYY.MM.DD. Other keys are kept.
func canonicalKey(key string) string {
	if t, err := time.ParseInLocation(time.DateOnly, key, time.Local); err == nil {
		return stats.DateKey(t)
	}
	return key
}

func (s *Store) readTasks() (tasksDoc, error) {
	var doc tasksDoc
	_, err := s.read(TasksFile, &doc)
	return doc, err
}

// read decodes name into v. A missing or empty file leaves v untouched and
// reports found=false.
func (s *Store) read(name string, v any) (found bool, err error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, store.StorageError(err, "read "+name)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, store.StorageError(fmt.Errorf("parse %s: %w", name, err), "read "+name)
	}
	return true, nil
}

// write replaces name atomically with the indented JSON encoding of v.
func (s *Store) write(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return store.StorageError(err, "encode "+name)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return store.StorageError(err, "write "+name)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return store.StorageError(err, "write "+name)
	}
	if err := tmp.Close(); err != nil {
		return store.StorageError(err, "write "+name)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return store.StorageError(err, "write "+name)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
