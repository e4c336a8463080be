package store

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/timeslice/pkg/stats"
)

// Faults counts backend failures a lookup turned into empty days.
type Faults struct {
	n atomic.Int64
}

// Count returns the number of failed day reads so far.
func (f *Faults) Count() int { return int(f.n.Load()) }

// Lookup adapts a DayStore to stats.DayLookup. Missing days and backend
// failures both read as an empty day; failures are logged when logger is
// non-nil.
func Lookup(ctx context.Context, days DayStore, logger *log.Logger) stats.DayLookup {
	lookup, _ := TrackedLookup(ctx, days, logger)
	return lookup
}

// TrackedLookup is Lookup that also reports how many reads failed, so a
// caller can tell a complete aggregate from one with holes in it.
func TrackedLookup(ctx context.Context, days DayStore, logger *log.Logger) (stats.DayLookup, *Faults) {
	faults := &Faults{}
	return func(key string) stats.Record {
		rec, err := days.Get(ctx, key)
		if err == nil {
			return rec
		}
		if !IsNotFound(err) {
			faults.n.Add(1)
			if logger != nil {
				logger.Warn("day lookup failed", "date", key, "err", err)
			}
		}
		return stats.Record{}
	}, faults
}
