// Package batch deduplicates classified links, partitions them into named
// artifacts and keeps batches in memory between sorting and probing.
package batch

import (
	"iter"

	"github.com/btraven00/linksift/internal/classifier"
	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
)

// Entry is a classified link.
type Entry struct {
	Link  extractor.Link            `json:"link"`
	Class classifier.Classification `json:"class"`
}

// Rendered returns the text written to artifacts. Message permalinks keep their
// query string since "?single" or "?thread=" change what the link opens.
func (e Entry) Rendered() string {
	if e.Class.Category == platforms.CategoryMessage {
		return e.Link.WithQuery()
	}

	return e.Link.String()
}

// Deduplicator keeps the first entry per (category, identity key). It also
// refuses a canonical link already accepted under any category, so every link
// lands in exactly one artifact.
type Deduplicator struct {
	keys  map[platforms.Category]map[string]struct{}
	links map[string]struct{}
}

// NewDeduplicator creates an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		keys:  make(map[platforms.Category]map[string]struct{}),
		links: make(map[string]struct{}),
	}
}

// Add reports whether e is the first of its identity and records it.
func (d *Deduplicator) Add(e Entry) bool {
	canonical := e.Link.Canonical()
	if _, dup := d.links[canonical]; dup {
		return false
	}

	seen := d.keys[e.Class.Category]
	if seen == nil {
		seen = make(map[string]struct{})
		d.keys[e.Class.Category] = seen
	}

	if _, dup := seen[e.Class.Key]; dup {
		return false
	}

	seen[e.Class.Key] = struct{}{}
	d.links[canonical] = struct{}{}

	return true
}

// Dedupe returns the first occurrence of each identity, in input order.
func Dedupe(entries iter.Seq[Entry]) []Entry {
	d := NewDeduplicator()

	var out []Entry

	for e := range entries {
		if d.Add(e) {
			out = append(out, e)
		}
	}

	return out
}
