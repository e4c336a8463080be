package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store"
)

// FormatVersion is written to every backup.
const FormatVersion = 1

// Backup is the complete contents of a store.
type Backup struct {
	Version    int                     `json:"version"`
	ExportedAt time.Time               `json:"exported_at"`
	Days       map[string]stats.Record `json:"days"`
	Categories []string                `json:"categories,omitempty"`
	Tasks      []store.Task            `json:"tasks,omitempty"`
}

// Snapshot reads everything from s into a Backup.
func Snapshot(ctx context.Context, s store.Store) (*Backup, error) {
	days, err := store.Snapshot(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("read days: %w", err)
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}
	tasks, err := s.Tasks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return &Backup{
		Version:    FormatVersion,
		ExportedAt: time.Now(),
		Days:       days,
		Categories: categories,
		Tasks:      tasks,
	}, nil
}

// WriteJSON encodes b as indented JSON. Day keys are sorted; categories
// inside a day keep their recorded order.
func WriteJSON(b *Backup, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON snapshots s and writes the backup to path.
func ExportJSON(ctx context.Context, s store.Store, path string) (*Backup, error) {
	b, err := Snapshot(ctx, s)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := WriteJSON(b, f); err != nil {
		return nil, err
	}
	return b, f.Close()
}
