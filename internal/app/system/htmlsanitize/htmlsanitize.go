// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips unsafe HTML from user-supplied text before
// it is persisted. Titles, descriptions, role tags, and comment text all
// pass through here; sanitization strips rather than rejects, so it is
// not part of the validation taxonomy.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ugc allows common formatting tags but no scripts, event handlers,
	// or javascript: URLs.
	ugc = bluemonday.UGCPolicy()

	// strict strips all markup, leaving plain text.
	strict = bluemonday.StrictPolicy()
)

// Sanitize cleans s with the UGC policy, preserving safe formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// PlainText strips all markup from s and trims surrounding whitespace.
// Used for single-line fields like titles and role tags.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strict.Sanitize(s))
}
