package stats

import (
	"time"

	"github.com/matzehuels/timeslice/pkg/chart"
)

// DayLookup returns the record stored under a day key, or an empty/nil
// record when the day has no data. Implementations must not fail: storage
// faults are reported to the aggregator as a missing day.
type DayLookup func(key string) Record

// Aggregate sums per-category minutes over every date in [start, end].
//
// Days are visited in ascending order, so categories appear in the result in
// the order they were first seen. Missing days contribute nothing. The result
// is never nil; it is empty when the range holds no data.
func Aggregate(lookup DayLookup, start, end time.Time) Record {
	out := NewRecord()
	if lookup == nil {
		return out
	}
	for day := range DaysBetween(start, end) {
		lookup(DateKey(day)).Each(func(category string, minutes int) {
			out.Add(category, minutes)
		})
	}
	return out
}

// AggregatePeriod is Aggregate over the days of p.
func AggregatePeriod(lookup DayLookup, p Period) Record {
	return Aggregate(lookup, p.Start, p.End)
}

// MapLookup adapts an in-memory map of day records to a DayLookup.
func MapLookup(days map[string]Record) DayLookup {
	return func(key string) Record {
		return days[key]
	}
}

// HourBuckets converts a record to chart buckets measured in hours,
// keeping insertion order.
func HourBuckets(r Record) []chart.Bucket {
	buckets := make([]chart.Bucket, 0, r.Len())
	r.Each(func(category string, minutes int) {
		buckets = append(buckets, chart.Bucket{Label: category, Value: Hours(minutes)})
	})
	return buckets
}
