package library

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9_-]+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// maxSlugLen bounds slugs derived from titles and file names.
const maxSlugLen = 64

// Slugify turns a title or file name into a slug accepted by Put, or ""
// when nothing usable is left.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-_")
	}
	return s
}

// ValidSlug reports whether s can name a stored document.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
