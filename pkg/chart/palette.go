package chart

// basePalette is the ordered set of slice colors. Colors repeat once a
// chart has more categories than entries.
var basePalette = [...]string{
	"#3B82F6", // blue
	"#10B981", // emerald
	"#F59E0B", // amber
	"#EF4444", // red
	"#8B5CF6", // violet
	"#06B6D4", // cyan
	"#EC4899", // pink
	"#6366F1", // indigo
	"#F97316", // orange
	"#14B8A6", // teal
	"#A855F7", // purple
	"#64748B", // slate
	"#DC2626", // dark red
	"#059669", // dark green
	"#7C3AED", // dark violet
	"#0891B2", // dark cyan
}

// PaletteSize is the number of distinct slice colors.
const PaletteSize = len(basePalette)

// PaletteColor returns the color for the i-th category. Negative indexes
// count back from the end of the cycle, so -1 is the last color.
func PaletteColor(i int) string {
	return basePalette[((i%PaletteSize)+PaletteSize)%PaletteSize]
}

// Palette returns the first n colors in assignment order.
func Palette(n int) []string {
	out := make([]string, max(n, 0))
	for i := range out {
		out[i] = PaletteColor(i)
	}
	return out
}

// Theme colors for text and legend decoration.
const (
	ColorBackground   = "#FFFFFF"
	ColorText         = "#2D3748"
	ColorTextMuted    = "#718096"
	ColorTextValue    = "#4A5568"
	ColorLegendFill   = "#F8FAFC"
	ColorLegendStroke = "#E2E8F0"
	ColorSliceEdge    = "#FFFFFF"
)
