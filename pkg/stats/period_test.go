package stats

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestNewPeriod(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		anchor     time.Time
		start, end string
		label      string
	}{
		{"day", ModeDay, date(2024, 3, 15), "2024.03.15", "2024.03.15", "2024.03.15"},
		{"week midweek", ModeWeek, date(2024, 1, 3), "2024.01.01", "2024.01.07", "01.01 ~ 01.07"},
		{"week monday", ModeWeek, date(2024, 1, 8), "2024.01.08", "2024.01.14", "01.08 ~ 01.14"},
		{"week sunday anchor", ModeWeek, date(2024, 1, 7), "2024.01.01", "2024.01.07", "01.01 ~ 01.07"},
		{"week across year", ModeWeek, date(2025, 1, 1), "2024.12.30", "2025.01.05", "12.30 ~ 01.05"},
		{"month leap february", ModeMonth, date(2024, 2, 10), "2024.02.01", "2024.02.29", "2024-02"},
		{"month february", ModeMonth, date(2023, 2, 28), "2023.02.01", "2023.02.28", "2023-02"},
		{"month december", ModeMonth, date(2023, 12, 31), "2023.12.01", "2023.12.31", "2023-12"},
		{"year", ModeYear, date(2024, 7, 4), "2024.01.01", "2024.12.31", "2024"},
		{"unknown mode", Mode("fortnight"), date(2024, 7, 4), "2024.07.04", "2024.07.04", "2024.07.04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPeriod(tt.mode, tt.anchor)
			if got := DateKey(p.Start); got != tt.start {
				t.Errorf("Start = %s, want %s", got, tt.start)
			}
			if got := DateKey(p.End); got != tt.end {
				t.Errorf("End = %s, want %s", got, tt.end)
			}
			if got := p.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if !p.Contains(tt.anchor) {
				t.Error("period should contain its anchor")
			}
		})
	}
}

func TestPeriodTruncatesTime(t *testing.T) {
	p := NewPeriod(ModeDay, time.Date(2024, 5, 5, 23, 59, 0, 0, time.Local))
	if p.Start.Hour() != 0 || !p.Start.Equal(p.End) {
		t.Errorf("day period = %v", p)
	}
}

func TestPeriodLen(t *testing.T) {
	tests := []struct {
		mode   Mode
		anchor time.Time
		want   int
	}{
		{ModeDay, date(2024, 1, 1), 1},
		{ModeWeek, date(2024, 1, 1), 7},
		{ModeMonth, date(2024, 2, 1), 29},
		{ModeMonth, date(2023, 2, 1), 28},
		{ModeYear, date(2024, 6, 1), 366},
		{ModeYear, date(2023, 6, 1), 365},
	}
	for _, tt := range tests {
		if got := NewPeriod(tt.mode, tt.anchor).Len(); got != tt.want {
			t.Errorf("%s %s: Len() = %d, want %d", tt.mode, DateKey(tt.anchor), got, tt.want)
		}
	}
}

func TestPeriodNavigation(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		anchor     time.Time
		prev, next string
	}{
		{"day year wrap", ModeDay, date(2024, 1, 1), "2023.12.31", "2024.01.02"},
		{"week", ModeWeek, date(2024, 1, 3), "2023.12.25", "2024.01.08"},
		{"month end of january", ModeMonth, date(2024, 1, 31), "2023.12.01", "2024.02.01"},
		{"month december", ModeMonth, date(2023, 12, 15), "2023.11.01", "2024.01.01"},
		{"year leap day", ModeYear, date(2024, 2, 29), "2023.01.01", "2025.01.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPeriod(tt.mode, tt.anchor)
			if got := DateKey(p.Prev().Start); got != tt.prev {
				t.Errorf("Prev().Start = %s, want %s", got, tt.prev)
			}
			if got := DateKey(p.Next().Start); got != tt.next {
				t.Errorf("Next().Start = %s, want %s", got, tt.next)
			}
			if back := p.Next().Prev(); !back.Start.Equal(p.Start) || !back.End.Equal(p.End) {
				t.Errorf("Next().Prev() = %v, want %v", back, p)
			}
		})
	}
}

func TestPeriodNextIsAdjacent(t *testing.T) {
	for _, mode := range Modes {
		p := NewPeriod(mode, date(2024, 2, 29))
		for range 30 {
			n := p.Next()
			if !p.End.AddDate(0, 0, 1).Equal(n.Start) {
				t.Fatalf("%s: %v is not followed by %v", mode, p, n)
			}
			p = n
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, in := range []string{"day", "Week", " MONTH ", "year"} {
		if _, err := ParseMode(in); err != nil {
			t.Errorf("ParseMode(%q) error: %v", in, err)
		}
	}
	if _, err := ParseMode("decade"); err == nil {
		t.Error("ParseMode(decade) should fail")
	}
}

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024.01.31", "2024.01.31", false},
		{"2024-01-31", "2024.01.31", false},
		{" 2024.02.29 ", "2024.02.29", false},
		{"2023.02.29", "", true},
		{"31.01.2024", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDateKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDateKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && DateKey(got) != tt.want {
			t.Errorf("ParseDateKey(%q) = %s, want %s", tt.in, DateKey(got), tt.want)
		}
	}
}

func TestParseDay(t *testing.T) {
	now := time.Date(2024, 3, 1, 18, 30, 0, 0, time.Local)
	tests := []struct {
		in   string
		want string
	}{
		{"", "2024.03.01"},
		{"today", "2024.03.01"},
		{"Yesterday", "2024.02.29"},
		{"2024.01.31", "2024.01.31"},
		{"2024-01-31", "2024.01.31"},
	}
	for _, tt := range tests {
		got, err := ParseDay(tt.in, now)
		if err != nil {
			t.Errorf("ParseDay(%q): %v", tt.in, err)
			continue
		}
		if DateKey(got) != tt.want || got.Hour() != 0 {
			t.Errorf("ParseDay(%q) = %v, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseDay("tomorrow", now); err == nil {
		t.Error("ParseDay(tomorrow) should fail")
	}
}

func TestDaysBetween(t *testing.T) {
	var keys []string
	for d := range DaysBetween(date(2024, 2, 27), date(2024, 3, 1)) {
		keys = append(keys, DateKey(d))
	}
	want := []string{"2024.02.27", "2024.02.28", "2024.02.29", "2024.03.01"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("day %d = %s, want %s", i, keys[i], want[i])
		}
	}

	for range DaysBetween(date(2024, 3, 2), date(2024, 3, 1)) {
		t.Fatal("reversed range should be empty")
	}
}
