package stats

import "testing"

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1h30m", 90},
		{"45m", 45},
		{"1.5", 90},
		{"", 0},
		{"abc", 0},
		{"2h", 120},
		{"90m", 90},
		{"  1h 15m  ", 75},
		{"1H30M", 90},
		{"1.5h", 90},
		{"0.25h", 15},
		{"1h2h", 120},      // last hour token wins
		{"10m 20m 1h", 80}, // last minute token wins
		{"30m1h", 90},      // order of units does not matter
		{"2", 120},
		{"0.1", 6},
		{"1.99m", 2},  // rounded
		{"0.33", 20},  // 19.8 rounds up
		{"-1", 0},
		{"-1h", 60}, // sign is not part of a token
		{"h", 0},
		{"hours", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"0", 0},
		{"1,5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseDuration(tt.in); got != tt.want {
				t.Errorf("ParseDuration(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{-5, "0"},
		{45, "45m"},
		{60, "1"},
		{90, "1h30m"},
		{120, "2"},
		{61, "1h1m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.in, got, tt.want)
		}
		if tt.in > 0 {
			if back := ParseDuration(FormatDuration(tt.in)); back != tt.in {
				t.Errorf("ParseDuration(FormatDuration(%d)) = %d", tt.in, back)
			}
		}
	}
}

func TestHours(t *testing.T) {
	if got := Hours(90); got != 1.5 {
		t.Errorf("Hours(90) = %v, want 1.5", got)
	}
}
