// Package parser derives the stored representation of post content:
// sanitized HTML, plain-text excerpts, read-time estimates and URL slugs.
package parser

import (
	"fmt"
	"html"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// ExcerptLength is the number of characters of tag-stripped content used
	// when a post does not provide its own excerpt.
	ExcerptLength = 150

	// WordsPerMinute is the reading speed assumed by the read-time estimate.
	WordsPerMinute = 200
)

var (
	sanitizePolicy = bluemonday.UGCPolicy()
	stripPolicy    = bluemonday.StrictPolicy()
)

// SanitizeHTML removes unsafe markup from user-supplied HTML. Content is
// always run through this before it is stored.
func SanitizeHTML(s string) string {
	return sanitizePolicy.Sanitize(s)
}

// PlainText strips all tags and unescapes entities.
func PlainText(s string) string {
	return html.UnescapeString(stripPolicy.Sanitize(s))
}

// Excerpt returns the first ExcerptLength characters of the tag-stripped,
// whitespace-normalized content.
func Excerpt(content string) string {
	text := strings.Join(strings.Fields(PlainText(content)), " ")
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}
	return string(runes[:ExcerptLength])
}

// ReadingTimeMinutes estimates read time as ceil(words / WordsPerMinute).
func ReadingTimeMinutes(content string) int {
	words := len(strings.Fields(PlainText(content)))
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// Slugify produces the lowercase URL-safe base slug for a title.
// Collision suffixes are appended by the post service, not here.
func Slugify(title string) string {
	return slug.Make(title)
}

// SlugWithSuffix appends the numeric disambiguation suffix to a base slug.
func SlugWithSuffix(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}
