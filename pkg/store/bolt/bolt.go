// Package bolt implements store.Store on a single bbolt database file.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.etcd.io/bbolt"

	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// Backend is the name reported to observability hooks.
const Backend = "bolt"

// DefaultFile is the database file name inside the data directory.
const DefaultFile = "timeslice.db"

const (
	bucketDays  = "days"
	bucketMeta  = "meta"
	bucketTasks = "tasks"

	metaCategories = "categories"
)

// Store is a bbolt-backed store.Store. Days are keyed by day key, so a
// cursor walk yields them in date order. Tasks are keyed by a big-endian
// sequence number, which keeps creation order.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketDays, bucketMeta, bucketTasks} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// Path returns the database file path.
func (s *Store) Path() string { return s.db.Path() }

// Backend implements store.Store.
func (s *Store) Backend() string { return Backend }

// Scope implements store.Store.
func (s *Store) Scope() string {
	path := s.db.Path()
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Backend + ":" + path
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(ctx context.Context, key string) (rec stats.Record, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "get_day", start, err) }(time.Now())
	err = s.view(ctx, func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketDays)).Get([]byte(key))
		if data == nil {
			return store.NotFound(key)
		}
		return unmarshal(data, &rec)
	})
	return rec, err
}

func (s *Store) Put(ctx context.Context, key string, rec stats.Record) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "put_day", start, err) }(time.Now())
	if err := store.ValidateDay(key, rec); err != nil {
		return err
	}
	data, err := marshal(rec)
	if err != nil {
		return err
	}
	return s.update(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketDays)).Put([]byte(key), data)
	})
}

func (s *Store) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_day", start, err) }(time.Now())
	return s.update(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketDays)).Delete([]byte(key))
	})
}

func (s *Store) Keys(ctx context.Context) (keys []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "keys", start, err) }(time.Now())
	keys = []string{}
	err = s.view(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketDays)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

func (s *Store) Categories(ctx context.Context) (out []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "categories", start, err) }(time.Now())
	var found bool
	err = s.view(ctx, func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketMeta)).Get([]byte(metaCategories))
		if data == nil {
			return nil
		}
		found = true
		return unmarshal(data, &out)
	})
	if err != nil {
		return nil, err
	}
	if !found || out == nil {
		return slices.Clone(store.DefaultCategories), nil
	}
	return out, nil
}

func (s *Store) SetCategories(ctx context.Context, categories []string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "set_categories", start, err) }(time.Now())
	categories, err = store.NormalizeCategories(categories)
	if err != nil {
		return err
	}
	data, err := marshal(categories)
	if err != nil {
		return err
	}
	return s.update(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketMeta)).Put([]byte(metaCategories), data)
	})
}

func (s *Store) AddTask(ctx context.Context, text string, q store.Quadrant) (task store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "add_task", start, err) }(time.Now())
	task, err = store.NewTask(text, q, s.now())
	if err != nil {
		return store.Task{}, err
	}
	data, err := marshal(task)
	if err != nil {
		return store.Task{}, err
	}
	err = s.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketTasks))
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
	if err != nil {
		return store.Task{}, err
	}
	return task, nil
}

func (s *Store) Tasks(ctx context.Context, q store.Quadrant) (out []store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "tasks", start, err) }(time.Now())
	if err := store.CheckQuadrant(q); err != nil {
		return nil, err
	}
	out = []store.Task{}
	err = s.view(ctx, func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketTasks)).ForEach(func(_, v []byte) error {
			var t store.Task
			if err := unmarshal(v, &t); err != nil {
				return err
			}
			if q == "" || t.Quadrant == q {
				out = append(out, t)
			}
			return nil
		})
	})
	return out, err
}

func (s *Store) DeleteTask(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_task", start, err) }(time.Now())
	return s.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketTasks))
		k, _, err := findTask(b, id)
		if err != nil {
			return err
		}
		return b.Delete(k)
	})
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
	err = s.update(ctx, func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketTasks))
		k, t, err := findTask(b, id)
		if err != nil {
			return err
		}
		fn(&t)
		data, err := marshal(t)
		if err != nil {
			return err
		}
		task = t
		return b.Put(k, data)
	})
	return task, err
}

// findTask scans the task bucket for id.
func findTask(b *bbolt.Bucket, id string) ([]byte, store.Task, error) {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var t store.Task
		if err := unmarshal(v, &t); err != nil {
			return nil, store.Task{}, err
		}
		if t.ID == id {
			return slices.Clone(k), t, nil
		}
	}
	return nil, store.Task{}, store.TaskNotFound(id)
}

func (s *Store) view(ctx context.Context, fn func(*bbolt.Tx) error) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fn(tx)
	})
	return classify(err)
}

func (s *Store) update(ctx context.Context, fn func(*bbolt.Tx) error) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fn(tx)
	})
	return classify(err)
}

// classify passes domain errors through and wraps everything else as a
// storage failure.
func classify(err error) error {
	if err == nil || store.IsNotFound(err) {
		return err
	}
	return store.StorageError(err, "bolt")
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func marshal(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return data, nil
}

func unmarshal(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	return nil
}

var _ store.Store = (*Store)(nil)
