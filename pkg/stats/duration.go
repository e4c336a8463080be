package stats

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// durationToken matches "<number><unit>" pairs such as "1.5h" or "30m".
var durationToken = regexp.MustCompile(`(?i)(\d+\.?\d*)([hm])`)

// ParseDuration converts free-form duration text into whole minutes.
//
// Text containing an "h" or "m" is scanned for "<number>h" and "<number>m"
// tokens; when a unit repeats, the last occurrence wins. Any other text is
// read as a decimal number of hours. Input that fits neither form yields 0,
// which callers treat as "no entry".
//
//	ParseDuration("1h30m") // 90
//	ParseDuration("45m")   // 45
//	ParseDuration("1.5")   // 90
func ParseDuration(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	if strings.ContainsAny(text, "hHmM") {
		var hours, minutes float64
		for _, m := range durationToken.FindAllStringSubmatch(text, -1) {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			switch strings.ToLower(m[2]) {
			case "h":
				hours = v
			case "m":
				minutes = v
			}
		}
		return toMinutes(hours*60 + minutes)
	}

	hours, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return toMinutes(hours * 60)
}

func toMinutes(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}

// FormatDuration renders minutes in the shortest form ParseDuration reads
// back to the same value: "2" for whole hours, "1h30m" or "45m" otherwise.
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		return "0"
	}
	h, m := minutes/60, minutes%60
	switch {
	case m == 0:
		return strconv.Itoa(h)
	case h == 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// Hours converts minutes to fractional hours.
func Hours(minutes int) float64 {
	return float64(minutes) / 60
}
