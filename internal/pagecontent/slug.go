package pagecontent

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\-\s]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphens      = regexp.MustCompile(`-+`)
)

// SanitizeSlug lower-cases value, keeps only [a-z0-9-] and whitespace, turns
// whitespace runs into hyphens and collapses and trims hyphens.
func SanitizeSlug(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// SlugExistsFunc reports whether a slug is already taken.
type SlugExistsFunc func(slug string) (bool, error)

// UniqueSlug derives a slug from source and appends -2, -3, ... until exists
// reports it free. When source sanitizes to nothing, "<prefix>-<unix millis>"
// is used as the base.
func UniqueSlug(source, prefix string, now time.Time, exists SlugExistsFunc) (string, error) {
	base := SanitizeSlug(source)
	if base == "" {
		base = fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
	}

	candidate := base
	for counter := 1; ; {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		counter++
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}
