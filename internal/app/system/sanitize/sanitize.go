// Package sanitize strips markup from free-text input (report remarks,
// message bodies) before it is stored or fanned out.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and returns the trimmed plain text.
// Entities introduced by the sanitizer are unescaped so stored text
// reads the way the user typed it.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
