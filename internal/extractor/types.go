package extractor

import (
	"strings"
)

// Candidate is a URL-shaped substring found in an input line.
type Candidate struct {
	Text string `json:"text"`
	Line int    `json:"line"` // zero-based source line, -1 when unknown
}

// Link is a normalized URL split into the segments classification needs.
//
// Host is lower-cased; Path keeps its original case because invite codes are
// case sensitive, and never carries a trailing slash. Query holds the cleaned
// query string (tracking parameters removed, remaining pairs in their
// original order).
type Link struct {
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
	Path   string `json:"path"`
	Query  string `json:"query,omitempty"`
}

// IsZero reports whether the link is the empty value returned for malformed input.
func (l Link) IsZero() bool {
	return l.Host == ""
}

// Hostname returns the host without a leading "www." and without a port.
func (l Link) Hostname() string {
	host := l.Host
	if rest, ok := strings.CutPrefix(host, "["); ok {
		host, _, _ = strings.Cut(rest, "]")
	} else if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}

	return strings.TrimPrefix(host, "www.")
}

// Segments returns the non-empty path segments in their original case.
func (l Link) Segments() []string {
	return strings.FieldsFunc(l.Path, func(r rune) bool { return r == '/' })
}

// Canonical returns the identity form used for every comparison: https scheme,
// lower-cased host and path, no "www.", no trailing slash, no query.
func (l Link) Canonical() string {
	if l.IsZero() {
		return ""
	}

	return "https://" + strings.TrimPrefix(l.Host, "www.") + strings.ToLower(l.Path)
}

// String returns the display form without a query string.
func (l Link) String() string {
	if l.IsZero() {
		return ""
	}

	return l.Scheme + "://" + l.Host + l.Path
}

// WithQuery returns the display form including the cleaned query string.
func (l Link) WithQuery() string {
	if l.Query == "" {
		return l.String()
	}

	return l.String() + "?" + l.Query
}
