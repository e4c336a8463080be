// Package store defines the persistence contract for day records, the
// category list and quadrant tasks.
//
// Backends live in subpackages:
//
//   - [github.com/matzehuels/timeslice/pkg/store/file]: JSON files in a data directory
//   - [github.com/matzehuels/timeslice/pkg/store/bolt]: a single bbolt database
//   - [github.com/matzehuels/timeslice/pkg/store/redis]: Redis hashes and lists
//   - [github.com/matzehuels/timeslice/pkg/store/mongo]: MongoDB collections
//
// [github.com/matzehuels/timeslice/pkg/store/open] selects a backend from
// configuration. [Lookup] bridges any [DayStore] to the aggregator in
// package stats.
//
// Day keys use the YYYY.MM.DD format of [stats.DateKey]. A day with no
// record is reported as a NOT_FOUND error by [DayStore.Get], never as a
// zero-filled record.
package store
