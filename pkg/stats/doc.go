// Package stats aggregates per-day category minutes into period totals.
//
// # Records
//
// A [Record] is an ordered mapping from category name to minutes. Order is the
// order in which categories were first added, and it survives a JSON round
// trip, so a day saved as {"sleep": 480, "work": 540} is displayed in that
// order.
//
// # Periods
//
// [NewPeriod] derives an inclusive date range from a [Mode] and an anchor
// date:
//
//   - day: the anchor itself
//   - week: Monday through Sunday containing the anchor
//   - month: first through last day of the anchor's month
//   - year: January 1 through December 31
//
// [Period.Prev] and [Period.Next] step to adjacent periods of the same mode.
//
// # Aggregation
//
// [Aggregate] walks every date in a range, asks a [DayLookup] for that day's
// record, and sums minutes per category:
//
//	total := stats.AggregatePeriod(lookup, stats.NewPeriod(stats.ModeWeek, time.Now()))
//	layout := chart.Build(stats.HourBuckets(total), "This week")
//
// # Duration Text
//
// [ParseDuration] reads the free-form text users type ("1h30m", "45m",
// "1.5") and returns minutes, or 0 for anything unreadable.
// [FormatDuration] is its inverse for display.
package stats
