// Package redis implements store.Store on a Redis server.
//
// Keys (with the default prefix):
//
//	timeslice:days        hash   day key -> JSON record
//	timeslice:categories  string JSON array
//	timeslice:tasks       list   task IDs in creation order
//	timeslice:task        hash   task ID -> JSON task
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/timeslice/pkg/retry"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// Backend is the name reported to observability hooks.
const Backend = "redis"

// DefaultPrefix namespaces store keys inside a shared database.
const DefaultPrefix = "timeslice:"

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // defaults to DefaultPrefix
}

// Store is a Redis-backed store.Store.
type Store struct {
	client *redis.Client
	prefix string
	owned  bool
	now    func() time.Time
}

// Open connects to redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	s := NewFromClient(client, cfg.Prefix)
	s.owned = true
	return s, nil
}

// NewFromClient wraps an existing client. Close does not close a client it
// did not create.
func NewFromClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, now: time.Now}
}

// Backend implements store.Store.
func (s *Store) Backend() string { return Backend }

// Scope implements store.Store. It names the server, database and key
// prefix, never the password.
func (s *Store) Scope() string {
	opts := s.client.Options()
	return fmt.Sprintf("%s:%s/%d/%s", Backend, opts.Addr, opts.DB, s.prefix)
}

// Close closes the client if the store created it.
func (s *Store) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

func (s *Store) daysKey() string       { return s.prefix + "days" }
func (s *Store) categoriesKey() string { return s.prefix + "categories" }
func (s *Store) taskListKey() string   { return s.prefix + "tasks" }
func (s *Store) taskHashKey() string   { return s.prefix + "task" }

func (s *Store) Get(ctx context.Context, key string) (rec stats.Record, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "get_day", start, err) }(time.Now())
	data, err := s.hget(ctx, s.daysKey(), key)
	if errors.Is(err, redis.Nil) {
		return stats.Record{}, store.NotFound(key)
	}
	if err != nil {
		return stats.Record{}, store.StorageError(err, "get day")
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return stats.Record{}, store.StorageError(err, "decode day")
	}
	return rec, nil
}

func (s *Store) Put(ctx context.Context, key string, rec stats.Record) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "put_day", start, err) }(time.Now())
	if err := store.ValidateDay(key, rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return store.StorageError(err, "encode day")
	}
	return s.do(ctx, "put day", func() error {
		return s.client.HSet(ctx, s.daysKey(), key, data).Err()
	})
}

func (s *Store) Delete(ctx context.Context, key string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_day", start, err) }(time.Now())
	return s.do(ctx, "delete day", func() error {
		return s.client.HDel(ctx, s.daysKey(), key).Err()
	})
}

func (s *Store) Keys(ctx context.Context) (keys []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "keys", start, err) }(time.Now())
	err = s.do(ctx, "list days", func() error {
		var err error
		keys, err = s.client.HKeys(ctx, s.daysKey()).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *Store) Categories(ctx context.Context) (out []string, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "categories", start, err) }(time.Now())
	var data []byte
	err = s.do(ctx, "get categories", func() error {
		var err error
		data, err = s.client.Get(ctx, s.categoriesKey()).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return slices.Clone(store.DefaultCategories), nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, store.StorageError(err, "decode categories")
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (s *Store) SetCategories(ctx context.Context, categories []string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "set_categories", start, err) }(time.Now())
	categories, err = store.NormalizeCategories(categories)
	if err != nil {
		return err
	}
	data, err := json.Marshal(categories)
	if err != nil {
		return store.StorageError(err, "encode categories")
	}
	return s.do(ctx, "set categories", func() error {
		return s.client.Set(ctx, s.categoriesKey(), data, 0).Err()
	})
}

func (s *Store) AddTask(ctx context.Context, text string, q store.Quadrant) (task store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "add_task", start, err) }(time.Now())
	task, err = store.NewTask(text, q, s.now())
	if err != nil {
		return store.Task{}, err
	}
	data, err := json.Marshal(task)
	if err != nil {
		return store.Task{}, store.StorageError(err, "encode task")
	}
	err = s.do(ctx, "add task", func() error {
		_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.taskHashKey(), task.ID, data)
			pipe.RPush(ctx, s.taskListKey(), task.ID)
			return nil
		})
		return err
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
	var ids []string
	err = s.do(ctx, "list tasks", func() error {
		var err error
		ids, err = s.client.LRange(ctx, s.taskListKey(), 0, -1).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	out = []store.Task{}
	if len(ids) == 0 {
		return out, nil
	}

	var values []any
	err = s.do(ctx, "list tasks", func() error {
		var err error
		values, err = s.client.HMGet(ctx, s.taskHashKey(), ids...).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var t store.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, store.StorageError(err, "decode task")
		}
		if q == "" || t.Quadrant == q {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, "delete_task", start, err) }(time.Now())
	var removed int64
	err = s.do(ctx, "delete task", func() error {
		cmds, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, s.taskHashKey(), id)
			pipe.LRem(ctx, s.taskListKey(), 0, id)
			return nil
		})
		if err != nil {
			return err
		}
		removed = cmds[0].(*redis.IntCmd).Val()
		return nil
	})
	if err != nil {
		return err
	}
	if removed == 0 {
		return store.TaskNotFound(id)
	}
	return nil
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

// updateTask applies fn under WATCH so concurrent edits of the same task
// are retried rather than lost.
func (s *Store) updateTask(ctx context.Context, op, id string, fn func(*store.Task)) (task store.Task, err error) {
	defer func(start time.Time) { store.Observe(ctx, Backend, op, start, err) }(time.Now())
	hash := s.taskHashKey()
	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, hash, id).Bytes()
		if err != nil {
			return err
		}
		var t store.Task
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		fn(&t)
		out, err := json.Marshal(t)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hash, id, out)
			return nil
		})
		if err == nil {
			task = t
		}
		return err
	}

	for range 3 {
		err = s.do(ctx, "update task", func() error { return s.client.Watch(ctx, txf, hash) })
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if errors.Is(err, redis.Nil) {
		return store.Task{}, store.TaskNotFound(id)
	}
	return task, err
}

func (s *Store) hget(ctx context.Context, key, field string) ([]byte, error) {
	var data []byte
	err := retry.Do(ctx, retry.Default, func() error {
		var err error
		data, err = s.client.HGet(ctx, key, field).Bytes()
		return classify(err)
	})
	return data, err
}

// do runs fn with retries on network failures. redis.Nil and
// redis.TxFailedErr pass through unwrapped; other failures become
// storage errors.
func (s *Store) do(ctx context.Context, op string, fn func() error) error {
	err := retry.Do(ctx, retry.Default, func() error { return classify(fn()) })
	if err == nil || errors.Is(err, redis.Nil) || errors.Is(err, redis.TxFailedErr) {
		return err
	}
	return store.StorageError(err, op)
}

func classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.Retryable(fmt.Errorf("redis network error: %w", err))
	}
	return err
}

var _ store.Store = (*Store)(nil)
