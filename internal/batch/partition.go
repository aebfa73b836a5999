package batch

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/btraven00/linksift/internal/platforms"
)

var (
	// ErrUnknownCategory is returned for names that are not a category.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrEmptyCategory is returned when a batch holds no links of a category.
	ErrEmptyCategory = errors.New("category has no links")
)

// LinkBatch maps categories to their deduplicated entries. Categories without
// entries are absent.
type LinkBatch struct {
	entries map[platforms.Category][]Entry
}

// Artifact is one named, sorted output list.
type Artifact struct {
	Category platforms.Category `json:"category"`
	Title    string             `json:"title"`
	FileName string             `json:"file_name"`
	Links    []string           `json:"links"`
}

// Content returns the artifact as newline-terminated lines.
func (a Artifact) Content() string {
	if len(a.Links) == 0 {
		return ""
	}

	return strings.Join(a.Links, "\n") + "\n"
}

// Build deduplicates entries and partitions the survivors.
func Build(entries iter.Seq[Entry]) *LinkBatch {
	return Partition(Dedupe(entries))
}

// Partition groups already deduplicated entries by category.
func Partition(entries []Entry) *LinkBatch {
	b := &LinkBatch{entries: make(map[platforms.Category][]Entry)}

	for _, e := range entries {
		b.entries[e.Class.Category] = append(b.entries[e.Class.Category], e)
	}

	return b
}

// Empty reports whether the batch holds no links at all.
func (b *LinkBatch) Empty() bool {
	return b == nil || len(b.entries) == 0
}

// Len returns the number of links across all categories.
func (b *LinkBatch) Len() int {
	if b == nil {
		return 0
	}

	n := 0
	for _, entries := range b.entries {
		n += len(entries)
	}

	return n
}

// Categories returns the non-empty categories in artifact order.
func (b *LinkBatch) Categories() []platforms.Category {
	if b == nil {
		return nil
	}

	var out []platforms.Category

	for _, c := range platforms.Categories() {
		if len(b.entries[c]) > 0 {
			out = append(out, c)
		}
	}

	return out
}

// Entries returns the entries of one category in insertion order.
func (b *LinkBatch) Entries(c platforms.Category) []Entry {
	if b == nil {
		return nil
	}

	return slices.Clone(b.entries[c])
}

// Links returns the rendered links of one category, sorted.
func (b *LinkBatch) Links(c platforms.Category) []string {
	if b == nil {
		return nil
	}

	entries := b.entries[c]
	links := make([]string, 0, len(entries))

	for _, e := range entries {
		links = append(links, e.Rendered())
	}

	sort.Strings(links)

	return links
}

// Lookup resolves a category name (or artifact file name) to its links.
func (b *LinkBatch) Lookup(name string) (platforms.Category, []string, error) {
	c, ok := platforms.ParseCategory(name)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
	}

	links := b.Links(c)
	if len(links) == 0 {
		return c, nil, fmt.Errorf("%w: %s", ErrEmptyCategory, c)
	}

	return c, links, nil
}

// Artifacts renders one artifact per non-empty category.
func (b *LinkBatch) Artifacts() []Artifact {
	categories := b.Categories()
	out := make([]Artifact, 0, len(categories))

	for _, c := range categories {
		out = append(out, Artifact{
			Category: c,
			Title:    c.Title(),
			FileName: c.FileName(),
			Links:    b.Links(c),
		})
	}

	return out
}
