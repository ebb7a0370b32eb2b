package catalog

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DefaultPrice       = 1.50
	DefaultDescription = "description"
)

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// IsImage reports whether name has a recognized image extension and a
// non-empty stem, so dotfiles such as ".jpg" are not images.
func IsImage(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" || len(ext) == len(name) {
		return false
	}
	_, ok := imageExts[strings.ToLower(ext)]
	return ok
}

// AltText derives a label from a file name: "sunset_beach.JPG" -> "Sunset Beach".
func AltText(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = strings.ReplaceAll(stem, "_", " ")
	// Casers keep state between calls, so each call builds its own.
	return cases.Title(language.Und).String(stem)
}

// PublicPath is the URL the rendering layer fetches image bytes from.
func PublicPath(gallery, filename string) string {
	return "/static/" + gallery + "/" + filename
}

// ValidName reports whether name can be used as a single path segment.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
