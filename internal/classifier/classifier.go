// Package classifier maps normalized links to categories using one ordered rule
// table built from the platform registry.
package classifier

import (
	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
	_ "github.com/btraven00/linksift/internal/platforms/telegram" // Import for side effects (platform registration)
	_ "github.com/btraven00/linksift/internal/platforms/whatsapp" // Import for side effects (platform registration)
)

// Classification is the outcome of classifying one link.
type Classification struct {
	Category platforms.Category `json:"category"`
	Platform string             `json:"platform,omitempty"`
	Rule     string             `json:"rule,omitempty"`
	// Key is the identity key used for deduplication within the category.
	Key string `json:"key"`
}

// Row is one entry of the rule table: a platform's rule at its global position.
type Row struct {
	Platform string
	Rule     platforms.Rule
}

// Classifier evaluates the rule table top-down; the first matching row wins.
type Classifier struct {
	registry *platforms.Registry
	rows     []Row
}

// New builds a classifier over registry. The rule table is a snapshot: platforms
// registered afterwards are detected but contribute no rules. A nil registry
// means platforms.DefaultRegistry.
func New(registry *platforms.Registry) *Classifier {
	if registry == nil {
		registry = platforms.DefaultRegistry
	}

	var rows []Row

	for _, p := range registry.All() {
		for _, rule := range p.Rules() {
			rows = append(rows, Row{Platform: p.Name(), Rule: rule})
		}
	}

	return &Classifier{registry: registry, rows: rows}
}

// Rows returns the rule table in evaluation order.
func (c *Classifier) Rows() []Row {
	out := make([]Row, len(c.rows))
	copy(out, c.rows)

	return out
}

// Classify returns exactly one category for link. Links with no host, no path
// or an unrecognized host are "other".
func (c *Classifier) Classify(link extractor.Link) Classification {
	other := Classification{Category: platforms.CategoryOther, Key: link.Canonical()}

	if link.IsZero() || link.Path == "" {
		return other
	}

	p := c.registry.Detect(link.Host)
	if p == nil {
		return other
	}

	for _, row := range c.rows {
		if row.Platform != p.Name() || !row.Rule.Match(link) {
			continue
		}

		key := link.Canonical()
		if row.Rule.Key != nil {
			if k := row.Rule.Key(link); k != "" {
				key = k
			}
		}

		return Classification{
			Category: row.Rule.Category,
			Platform: row.Platform,
			Rule:     row.Rule.Name,
			Key:      key,
		}
	}

	other.Platform = p.Name()

	return other
}

// ClassifyString normalizes raw and classifies the result. Anything that does
// not normalize is "other".
func (c *Classifier) ClassifyString(raw string) Classification {
	link, _ := extractor.Normalize(raw)
	return c.Classify(link)
}
