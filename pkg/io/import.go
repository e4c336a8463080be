package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// ReadJSON decodes a backup from r.
//
// Two shapes are accepted: a full backup as written by [WriteJSON], or a
// bare day file mapping day keys to {category: minutes} objects. Day keys
// in ISO form ("2024-01-04") are rewritten to YYYY.MM.DD.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Backup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode backup")
	}

	var b Backup
	if _, full := top["days"]; full {
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode backup")
		}
	} else {
		b.Days = make(map[string]stats.Record, len(top))
		for k, v := range top {
			var rec stats.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "day %s", k)
			}
			b.Days[k] = rec
		}
	}

	// A day written under both spellings keeps its YYYY.MM.DD entry. Two
	// other spellings of the same day are ambiguous and rejected.
	days := make(map[string]stats.Record, len(b.Days))
	from := make(map[string]string, len(b.Days))
	for k, rec := range b.Days {
		key, err := normalizeKey(k)
		if err != nil {
			return nil, err
		}
		if key != k {
			if _, ok := b.Days[key]; ok {
				continue
			}
			if prev, ok := from[key]; ok {
				first, second := min(prev, k), max(prev, k)
				return nil, errors.New(errors.ErrCodeInvalidDate, "date %s appears twice in backup (%q and %q)", key, first, second)
			}
		}
		from[key] = k
		days[key] = rec
	}
	b.Days = days
	return &b, nil
}

// ImportJSON reads a backup from the file at path.
func ImportJSON(path string) (*Backup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

func normalizeKey(k string) (string, error) {
	t, err := stats.ParseDateKey(k)
	if err != nil {
		return "", errors.New(errors.ErrCodeInvalidDate, "invalid date %q in backup", strings.TrimSpace(k))
	}
	return stats.DateKey(t), nil
}

// RestoreOptions controls how a backup is applied.
type RestoreOptions struct {
	// Replace deletes stored days that the backup does not contain.
	Replace bool
	// SkipTasks leaves the task list untouched.
	SkipTasks bool
}

// RestoreResult counts what Restore changed.
type RestoreResult struct {
	Days       int
	Deleted    int
	Categories int
	Tasks      int
}

// Restore writes b into s. Days in the backup overwrite stored days with the
// same key. Categories are replaced when the backup carries a list. Tasks
// are appended unless a task with the same text already exists in the same
// quadrant; restored tasks receive new IDs.
func Restore(ctx context.Context, s store.Store, b *Backup, opts RestoreOptions) (RestoreResult, error) {
	var res RestoreResult

	if opts.Replace {
		keys, err := s.Keys(ctx)
		if err != nil {
			return res, err
		}
		for _, k := range keys {
			if _, keep := b.Days[k]; keep {
				continue
			}
			if err := s.Delete(ctx, k); err != nil {
				return res, err
			}
			res.Deleted++
		}
	}

	for k, rec := range b.Days {
		if err := s.Put(ctx, k, rec); err != nil {
			return res, fmt.Errorf("day %s: %w", k, err)
		}
		res.Days++
	}

	if b.Categories != nil {
		if err := s.SetCategories(ctx, b.Categories); err != nil {
			return res, err
		}
		res.Categories = len(b.Categories)
	}

	if opts.SkipTasks || len(b.Tasks) == 0 {
		return res, nil
	}
	existing, err := s.Tasks(ctx, "")
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[taskKey(t)] = true
	}
	for _, t := range b.Tasks {
		if seen[taskKey(t)] {
			continue
		}
		added, err := s.AddTask(ctx, t.Text, t.Quadrant)
		if err != nil {
			return res, fmt.Errorf("task %q: %w", t.Text, err)
		}
		if t.Completed {
			if _, err := s.ToggleTask(ctx, added.ID); err != nil {
				return res, err
			}
		}
		seen[taskKey(t)] = true
		res.Tasks++
	}
	return res, nil
}

func taskKey(t store.Task) string {
	return string(t.Quadrant) + "\x00" + strings.TrimSpace(t.Text)
}
