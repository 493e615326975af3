package catalog

import (
	"regexp"
	"strings"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the title and collapses everything else to hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
