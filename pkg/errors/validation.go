package errors

import (
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// dateKeyLayout mirrors stats.DateLayout; this package stays free of
// domain imports.
const dateKeyLayout = "2006.01.02"

// MaxCategoryLength is the longest category name accepted, in runes.
const MaxCategoryLength = 64

// ValidFormats lists the chart output formats.
var ValidFormats = []string{"svg", "png", "pdf", "json"}

// ValidModes lists the statistics period modes.
var ValidModes = []string{"day", "week", "month", "year"}

// ValidateDateKey checks that key is a calendar date in YYYY.MM.DD form.
func ValidateDateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidDate, "date cannot be empty")
	}
	if _, err := time.Parse(dateKeyLayout, key); err != nil {
		return New(ErrCodeInvalidDate, "invalid date %q (want YYYY.MM.DD)", key)
	}
	return nil
}

// ValidateCategoryName validates a category name.
//
// The rules follow how categories are entered and stored:
//   - No empty or whitespace-only names
//   - No leading or trailing whitespace
//   - No control characters
//   - No "=" or "," (they separate entries on the command line)
//   - Maximum length of MaxCategoryLength runes
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidCategory, "category name cannot be empty")
	}
	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidCategory, "category name cannot start or end with whitespace")
	}
	if utf8.RuneCountInString(name) > MaxCategoryLength {
		return New(ErrCodeInvalidCategory, "category name too long (max %d characters)", MaxCategoryLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCategory, "category name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "=,") {
		return New(ErrCodeInvalidCategory, "category name cannot contain '=' or ','")
	}
	return nil
}

// ValidateQuadrant checks that q names one of the four task quadrants.
func ValidateQuadrant(q int) error {
	if q < 1 || q > 4 {
		return New(ErrCodeInvalidQuadrant, "invalid quadrant %d (must be 1-4)", q)
	}
	return nil
}

// ValidateMode checks a statistics period mode name.
func ValidateMode(mode string) error {
	if !slices.Contains(ValidModes, mode) {
		return New(ErrCodeInvalidMode, "invalid mode %q (must be one of: %s)", mode, strings.Join(ValidModes, ", "))
	}
	return nil
}

// ValidateFormats checks that every requested chart format is supported.
// An empty list is valid and means the caller's default.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if !slices.Contains(ValidFormats, f) {
			return New(ErrCodeInvalidFormat, "invalid format %q (must be one of: %s)", f, strings.Join(ValidFormats, ", "))
		}
	}
	return nil
}

// ValidatePath validates a file path for safety.
// It rejects empty paths, control characters and null bytes.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	const maxPathLength = 1024
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}
	return nil
}
