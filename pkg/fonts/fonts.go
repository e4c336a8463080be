// Package fonts resolves which installed font family charts should use.
//
// Charts name a font family in SVG output and need an actual font file for
// PNG rasterization. [Resolve] walks a list of candidate families, looks each
// one up among the system fonts with go-findfont, and returns the first hit.
// When nothing matches, the generic "sans-serif" family is returned with no
// file, and the PNG sink falls back to its built-in bitmap face.
package fonts

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flopp/go-findfont"
)

// FallbackFamily is the generic family used when no candidate is installed.
const FallbackFamily = "sans-serif"

// DefaultFamilies are tried in order when no candidates are configured.
var DefaultFamilies = []string{
	"Inter",
	"Noto Sans",
	"DejaVu Sans",
	"Liberation Sans",
	"Arial",
	"Helvetica",
}

// Font is a resolved font family and the files backing it.
type Font struct {
	Family   string
	Path     string // regular weight; empty for FallbackFamily
	BoldPath string // may be empty, in which case Path is used for bold text
}

// Installed reports whether Font is backed by a font file.
func (f Font) Installed() bool { return f.Path != "" }

// Bold returns the file to use for bold text.
func (f Font) Bold() string {
	if f.BoldPath != "" {
		return f.BoldPath
	}
	return f.Path
}

// Resolve returns the first installed family among candidates, trying
// DefaultFamilies when candidates is empty. A candidate may also be a path to
// a font file, in which case the family is taken from the file name.
func Resolve(candidates ...string) Font {
	if len(candidates) == 0 {
		candidates = DefaultFamilies
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if f, ok := lookup(c); ok {
			return f
		}
	}
	return Font{Family: FallbackFamily}
}

func lookup(candidate string) (Font, bool) {
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		base := filepath.Base(candidate)
		return Font{
			Family: strings.TrimSuffix(base, filepath.Ext(base)),
			Path:   candidate,
		}, true
	}

	stem := strings.ReplaceAll(candidate, " ", "")
	path, err := findfont.Find(stem + "-Regular.ttf")
	if err != nil {
		if path, err = findfont.Find(stem + ".ttf"); err != nil {
			return Font{}, false
		}
	}
	if !isTrueType(path) {
		return Font{}, false
	}

	f := Font{Family: candidate, Path: path}
	if bold, err := findfont.Find(stem + "-Bold.ttf"); err == nil && isTrueType(bold) {
		f.BoldPath = bold
	}
	return f, true
}

// isTrueType filters out collections and web fonts the rasterizer cannot load.
func isTrueType(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}
