package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/observability"
	"github.com/matzehuels/timeslice/pkg/stats"
)

// DefaultCategories is returned by CategoryStore.Categories until the user
// saves a list of their own.
var DefaultCategories = []string{
	"Night sleep", "Nap", "Daily life", "Commute",
	"Scrolling videos", "Gaming", "Token", "Meals & rest",
	"Fitness", "Work", "Side project", "Planning",
}

// DayStore persists one Record per day key (YYYY.MM.DD).
type DayStore interface {
	// Get returns the record for key. Absent days yield a NOT_FOUND error.
	Get(ctx context.Context, key string) (stats.Record, error)
	// Put replaces the record stored under key.
	Put(ctx context.Context, key string, rec stats.Record) error
	// Delete removes key. Deleting an absent day is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored day key in ascending order.
	Keys(ctx context.Context) ([]string, error)
}

// CategoryStore persists the user's category list.
type CategoryStore interface {
	Categories(ctx context.Context) ([]string, error)
	SetCategories(ctx context.Context, categories []string) error
}

// TaskStore persists Eisenhower-matrix tasks.
type TaskStore interface {
	AddTask(ctx context.Context, text string, q Quadrant) (Task, error)
	// Tasks returns the tasks of q in creation order. An empty quadrant
	// returns every task.
	Tasks(ctx context.Context, q Quadrant) ([]Task, error)
	DeleteTask(ctx context.Context, id string) error
	MoveTask(ctx context.Context, id string, q Quadrant) (Task, error)
	ToggleTask(ctx context.Context, id string) (Task, error)
}

// Store is a complete persistence backend.
type Store interface {
	DayStore
	CategoryStore
	TaskStore

	// Backend names the implementation ("file", "bolt", ...).
	Backend() string
	// Scope identifies the data behind the store: the backend plus where
	// it lives ("file:/home/me/.local/share/timeslice"). Two stores with
	// the same scope read the same days.
	Scope() string
	Close() error
}

// NotFound returns the error reported for an absent day.
func NotFound(key string) error {
	return errors.New(errors.ErrCodeNotFound, "no data for %s", key)
}

// TaskNotFound returns the error reported for an unknown task ID.
func TaskNotFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "task %s not found", id)
}

// IsNotFound reports whether err marks a missing day or task.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeNotFound)
}

// StorageError wraps a backend failure.
func StorageError(cause error, op string) error {
	return errors.Wrap(errors.ErrCodeStorage, cause, "storage %s failed", op)
}

// Observe reports a finished backend operation to the store hooks.
// Backends call it deferred with the operation start time.
func Observe(ctx context.Context, backend, op string, start time.Time, err error) {
	if IsNotFound(err) {
		err = nil
	}
	observability.Store().OnStoreOp(ctx, backend, op, time.Since(start), err)
}

// NormalizeCategories trims names, drops blanks and duplicates, and
// validates the rest. Order is preserved.
func NormalizeCategories(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		if err := errors.ValidateCategoryName(name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

// ValidateDay checks a day key and its record before a Put.
func ValidateDay(key string, rec stats.Record) error {
	if err := errors.ValidateDateKey(key); err != nil {
		return err
	}
	var err error
	rec.Each(func(category string, minutes int) {
		if err != nil {
			return
		}
		if verr := errors.ValidateCategoryName(category); verr != nil {
			err = verr
			return
		}
		if minutes < 0 {
			err = errors.New(errors.ErrCodeInvalidInput, "negative minutes for %q", category)
		}
	})
	return err
}

// Snapshot copies every day of src into a plain map, used by export.
func Snapshot(ctx context.Context, src DayStore) (map[string]stats.Record, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]stats.Record, len(keys))
	for _, k := range keys {
		rec, err := src.Get(ctx, k)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out[k] = rec
	}
	return out, nil
}
