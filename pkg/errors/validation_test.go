package errors

import (
	"strings"
	"testing"
)

func TestValidateDateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "2024.01.31", false},
		{"leap day", "2024.02.29", false},

		{"empty", "", true},
		{"iso format", "2024-01-31", true},
		{"not a leap year", "2023.02.29", true},
		{"month out of range", "2024.13.01", true},
		{"garbage", "yesterday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDate) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidDate)
			}
		})
	}
}

func TestValidateCategoryName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "work", false},
		{"valid with space", "side project", false},
		{"valid unicode", "学习", false},
		{"valid max length", strings.Repeat("a", MaxCategoryLength), false},

		{"empty", "", true},
		{"whitespace", "   ", true},
		{"leading space", " work", true},
		{"too long", strings.Repeat("a", MaxCategoryLength+1), true},
		{"equals sign", "work=2h", true},
		{"comma", "a,b", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCategoryName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCategoryName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuadrant(t *testing.T) {
	for q := -1; q <= 5; q++ {
		err := ValidateQuadrant(q)
		wantErr := q < 1 || q > 4
		if (err != nil) != wantErr {
			t.Errorf("ValidateQuadrant(%d) error = %v, wantErr %v", q, err, wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidQuadrant) {
			t.Errorf("error code = %v", GetCode(err))
		}
	}
}

func TestValidateMode(t *testing.T) {
	for _, m := range ValidModes {
		if err := ValidateMode(m); err != nil {
			t.Errorf("ValidateMode(%q) = %v", m, err)
		}
	}
	for _, m := range []string{"", "Week", "decade"} {
		if err := ValidateMode(m); !Is(err, ErrCodeInvalidMode) {
			t.Errorf("ValidateMode(%q) = %v, want %v", m, err, ErrCodeInvalidMode)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{"empty", nil, false},
		{"all", []string{"svg", "png", "pdf", "json"}, false},
		{"unknown", []string{"svg", "gif"}, true},
		{"case sensitive", []string{"SVG"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFormats(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "backup.json", false},
		{"absolute", "/tmp/backup.json", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 1025), true},
		{"null byte", "foo\x00bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
