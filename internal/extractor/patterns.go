package extractor

import (
	"regexp"
	"strings"
)

// schemePattern marks where a URL-shaped substring starts. The candidate runs
// over the following non-whitespace; narrowing happens later in Normalize.
var schemePattern = regexp.MustCompile(`(?i)https?://`)

// nestedDelims are the characters after which a scheme is part of the
// enclosing URL.
const nestedDelims = "=?&%/"

// trailingPunct is sentence punctuation that is legal inside a URL but almost
// always belongs to the surrounding text when it ends a token.
var trailingPunct = regexp.MustCompile(`[.,;:!?'"]+$`)

// decorationReplacer removes markup characters commonly wrapped around shared links.
var decorationReplacer = strings.NewReplacer("*", "", "(", "", ")", "", "[", "", "]", "")

// trackingParams lists query parameters that are stripped during normalization.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"fbclid":       {},
	"gclid":        {},
	"gclsrc":       {},
	"dclid":        {},
	"msclkid":      {},
}

// defaultPorts maps schemes to their default port strings.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// isURLChar reports whether r may legally appear in a URL (RFC 3986 unreserved,
// reserved and the percent sign).
func isURLChar(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}

	switch r {
	case '-', '.', '_', '~', // unreserved
		':', '/', '?', '#', '[', ']', '@', // gen-delims
		'!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=', // sub-delims
		'%':
		return true
	}

	return false
}
