package core

import (
	"regexp"
	"strings"
)

var (
	// joinerPattern matches apostrophes and dots sitting between two
	// alphanumerics, as in "what's" or "next.js".
	joinerPattern  = regexp.MustCompile(`([a-z0-9])['’.]+([a-z0-9])`)
	nonSlugPattern = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify derives a URL slug from a post title.
//
//	"Next.js 15: What's New?" -> "nextjs-15-whats-new"
func Slugify(title string) string {
	s := strings.ToLower(title)
	// Run twice so overlapping matches like "a.b.c" collapse fully.
	s = joinerPattern.ReplaceAllString(s, "$1$2")
	s = joinerPattern.ReplaceAllString(s, "$1$2")
	s = nonSlugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
