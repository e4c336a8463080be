package stats

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

// DateLayout is the day-key format shared with persistence backends.
const DateLayout = "2006.01.02"

// DateKey formats t as a day key ("2024.01.31").
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a day key. For compatibility with older data files it
// also accepts ISO dates ("2024-01-31").
func ParseDateKey(key string) (time.Time, error) {
	key = strings.TrimSpace(key)
	if t, err := time.ParseInLocation(DateLayout, key, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY.MM.DD)", key)
	}
	return t, nil
}

// ParseDay resolves a user-supplied day: a day key, an ISO date, or one of
// "today" and "yesterday" relative to now. An empty string means today.
func ParseDay(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return truncateDay(now), nil
	case "yesterday":
		return truncateDay(now).AddDate(0, 0, -1), nil
	}
	return ParseDateKey(s)
}

// Mode selects the span of a statistics period.
type Mode string

// Supported period modes.
const (
	ModeDay   Mode = "day"
	ModeWeek  Mode = "week"
	ModeMonth Mode = "month"
	ModeYear  Mode = "year"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeDay, ModeWeek, ModeMonth, ModeYear}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q (must be day, week, month, or year)", s)
}

// Period is an inclusive range of calendar days anchored on a date.
type Period struct {
	Mode   Mode
	Anchor time.Time
	Start  time.Time
	End    time.Time
}

// NewPeriod derives the period of the given mode containing anchor:
// the day itself, the Monday..Sunday week, the calendar month, or the
// calendar year. Unknown modes fall back to a single day.
func NewPeriod(mode Mode, anchor time.Time) Period {
	day := truncateDay(anchor)
	p := Period{Mode: mode, Anchor: day}

	switch mode {
	case ModeWeek:
		// time.Weekday starts on Sunday; shift so Monday is 0.
		offset := (int(day.Weekday()) + 6) % 7
		p.Start = day.AddDate(0, 0, -offset)
		p.End = p.Start.AddDate(0, 0, 6)
	case ModeMonth:
		p.Start = time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		p.End = p.Start.AddDate(0, 1, -1)
	case ModeYear:
		p.Start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, day.Location())
		p.End = time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, day.Location())
	default:
		p.Mode = ModeDay
		p.Start, p.End = day, day
	}
	return p
}

// Prev returns the period immediately before p.
func (p Period) Prev() Period { return p.shift(-1) }

// Next returns the period immediately after p.
func (p Period) Next() Period { return p.shift(1) }

func (p Period) shift(n int) Period {
	a := p.Anchor
	switch p.Mode {
	case ModeWeek:
		a = a.AddDate(0, 0, 7*n)
	case ModeMonth:
		// Anchor on the first so that Jan 31 + 1 month stays in February.
		a = time.Date(a.Year(), a.Month()+time.Month(n), 1, 0, 0, 0, 0, a.Location())
	case ModeYear:
		a = time.Date(a.Year()+n, a.Month(), 1, 0, 0, 0, 0, a.Location())
	default:
		a = a.AddDate(0, 0, n)
	}
	return NewPeriod(p.Mode, a)
}

// Contains reports whether t falls on a day within the period.
func (p Period) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	n := 0
	for range p.Days() {
		n++
	}
	return n
}

// Days yields every date from Start to End inclusive, ascending.
func (p Period) Days() iter.Seq[time.Time] {
	return DaysBetween(p.Start, p.End)
}

// DaysBetween yields every calendar date in [start, end], ascending.
// It yields nothing when start is after end.
func DaysBetween(start, end time.Time) iter.Seq[time.Time] {
	start, end = truncateDay(start), truncateDay(end)
	return func(yield func(time.Time) bool) {
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Label returns a short human-readable name for the period.
func (p Period) Label() string {
	switch p.Mode {
	case ModeWeek:
		return fmt.Sprintf("%s ~ %s", p.Start.Format("01.02"), p.End.Format("01.02"))
	case ModeMonth:
		return p.Start.Format("2006-01")
	case ModeYear:
		return p.Start.Format("2006")
	default:
		return DateKey(p.Start)
	}
}

// String implements fmt.Stringer.
func (p Period) String() string {
	return fmt.Sprintf("%s %s..%s", p.Mode, DateKey(p.Start), DateKey(p.End))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
