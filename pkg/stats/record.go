package stats

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record maps category names to minutes while remembering the order in
// which categories were first added. The zero value is an empty record
// ready for use.
//
// Copies of a Record share their entries, like copies of a map.
type Record struct {
	m *orderedmap.OrderedMap[string, int]
}

// NewRecord returns an empty record.
func NewRecord() Record {
	return Record{m: orderedmap.New[string, int]()}
}

// Set assigns minutes to category, appending it to the order if new.
func (r *Record) Set(category string, minutes int) {
	if r.m == nil {
		r.m = orderedmap.New[string, int]()
	}
	r.m.Set(category, minutes)
}

// Add increments category by minutes, initializing it to 0 first if absent.
func (r *Record) Add(category string, minutes int) {
	r.Set(category, r.Get(category)+minutes)
}

// Get returns the minutes recorded for category (0 when absent).
func (r Record) Get(category string) int {
	if r.m == nil {
		return 0
	}
	return r.m.Value(category)
}

// Has reports whether category is present.
func (r Record) Has(category string) bool {
	if r.m == nil {
		return false
	}
	_, ok := r.m.Get(category)
	return ok
}

// Delete removes category, preserving the order of the remaining entries.
func (r *Record) Delete(category string) {
	if r.m != nil {
		r.m.Delete(category)
	}
}

// Categories returns the categories in insertion order.
func (r Record) Categories() []string {
	out := make([]string, 0, r.Len())
	r.Each(func(category string, _ int) {
		out = append(out, category)
	})
	return out
}

// Len returns the number of categories.
func (r Record) Len() int {
	if r.m == nil {
		return 0
	}
	return r.m.Len()
}

// Total returns the sum of all minutes.
func (r Record) Total() int {
	var sum int
	r.Each(func(_ string, minutes int) { sum += minutes })
	return sum
}

// Each calls fn for every entry in insertion order.
func (r Record) Each(fn func(category string, minutes int)) {
	if r.m == nil {
		return
	}
	for p := r.m.Oldest(); p != nil; p = p.Next() {
		fn(p.Key, p.Value)
	}
}

// Map returns an unordered copy of the record.
func (r Record) Map() map[string]int {
	out := make(map[string]int, r.Len())
	r.Each(func(category string, minutes int) { out[category] = minutes })
	return out
}

// Equal reports whether both records hold the same entries in the same order.
func (r Record) Equal(other Record) bool {
	if r.Len() != other.Len() {
		return false
	}
	if r.Len() == 0 {
		return true
	}
	for a, b := r.m.Oldest(), other.m.Oldest(); a != nil; a, b = a.Next(), b.Next() {
		if a.Key != b.Key || a.Value != b.Value {
			return false
		}
	}
	return true
}

// String renders the record as {a: 1, b: 2} for logs and test failures.
func (r Record) String() string {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	r.Each(func(category string, minutes int) {
		if !first {
			buf.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&buf, "%s: %d", category, minutes)
	})
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON encodes the record as a JSON object in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.m == nil {
		return []byte("{}"), nil
	}
	return r.m.MarshalJSON()
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the source.
// Fractional minute values are truncated; null leaves r unchanged.
func (r *Record) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	raw := orderedmap.New[string, json.Number]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("record: %w", err)
	}

	out := NewRecord()
	for p := raw.Oldest(); p != nil; p = p.Next() {
		f, err := p.Value.Float64()
		if err != nil {
			return fmt.Errorf("record: value for %q: %w", p.Key, err)
		}
		out.Set(p.Key, int(f))
	}
	*r = out
	return nil
}
