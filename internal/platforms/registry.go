// Package platforms holds the registry of recognized messaging platforms. Each
// platform declares its hosts, an ordered list of classification rules and the
// phrases that mark a dead link on its pages.
package platforms

import (
	"sort"
	"strings"
	"sync"

	"github.com/btraven00/linksift/internal/extractor"
)

// Platform describes one messaging service recognized by host.
type Platform interface {
	// Name returns the unique platform name (e.g., "telegram").
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Hosts returns the domains owned by the platform. Subdomains match too.
	Hosts() []string

	// Rules returns the classification rules in evaluation order. The last rule
	// should match everything so the platform always yields a category.
	Rules() []Rule

	// DeadMarkers returns lower-case phrases that mark a dead link page.
	DeadMarkers() []string

	// Priority orders platforms whose hosts overlap (higher = checked first).
	Priority() int
}

// Rule is one (predicate, category) row of the classification table.
type Rule struct {
	Name     string
	Category Category
	Match    func(extractor.Link) bool
	// Key returns the identity key for deduplication. Nil means the canonical link.
	Key func(extractor.Link) string
}

// Info contains metadata about a platform for listings.
type Info struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Hosts       []string `json:"hosts"`
	Rules       []string `json:"rules"`
	DeadMarkers []string `json:"dead_markers"`
	Priority    int      `json:"priority"`
}

// Registry manages the known platforms.
type Registry struct {
	platforms map[string]Platform
	sorted    []Platform // Sorted by priority
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		platforms: make(map[string]Platform),
	}
}

// Register adds a platform to the registry.
func (r *Registry) Register(p Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.platforms[name]; exists {
		return &RegistryError{
			Type:    ErrorTypeDuplicate,
			Message: "platform with name '" + name + "' already exists",
		}
	}

	r.platforms[name] = p
	r.rebuildSorted()

	return nil
}

// Unregister removes a platform from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.platforms[name]; !exists {
		return &RegistryError{
			Type:    ErrorTypeNotFound,
			Message: "platform with name '" + name + "' not found",
		}
	}

	delete(r.platforms, name)
	r.rebuildSorted()

	return nil
}

// Get retrieves a platform by name.
func (r *Registry) Get(name string) (Platform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.platforms[name]

	return p, ok
}

// All returns every registered platform sorted by priority.
func (r *Registry) All() []Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Platform, len(r.sorted))
	copy(out, r.sorted)

	return out
}

// Detect returns the platform owning host, or nil when none does. A leading
// "www." and any port are ignored.
func (r *Registry) Detect(host string) Platform {
	host = normalizeHost(host)
	if host == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.sorted {
		for _, h := range p.Hosts() {
			if host == h || strings.HasSuffix(host, "."+h) {
				return p
			}
		}
	}

	return nil
}

// List returns metadata about all registered platforms.
func (r *Registry) List() []Info {
	all := r.All()
	info := make([]Info, 0, len(all))

	for _, p := range all {
		rules := make([]string, 0, len(p.Rules()))
		for _, rule := range p.Rules() {
			rules = append(rules, rule.Name+" -> "+string(rule.Category))
		}

		info = append(info, Info{
			Name:        p.Name(),
			Description: p.Description(),
			Hosts:       p.Hosts(),
			Rules:       rules,
			DeadMarkers: p.DeadMarkers(),
			Priority:    p.Priority(),
		})
	}

	return info
}

// rebuildSorted rebuilds the priority-sorted list. Callers hold the write lock.
func (r *Registry) rebuildSorted() {
	r.sorted = make([]Platform, 0, len(r.platforms))
	for _, p := range r.platforms {
		r.sorted = append(r.sorted, p)
	}

	// Sort by priority (descending) then by name for deterministic order
	sort.Slice(r.sorted, func(i, j int) bool {
		if r.sorted[i].Priority() != r.sorted[j].Priority() {
			return r.sorted[i].Priority() > r.sorted[j].Priority()
		}
		return r.sorted[i].Name() < r.sorted[j].Name()
	})
}

func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, found := strings.Cut(host, ":"); found {
		host = h
	}

	return strings.TrimPrefix(host, "www.")
}

// RegistryError represents errors from the platform registry.
type RegistryError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

func (e *RegistryError) Error() string {
	return e.Message
}

// ErrorType defines types of registry errors.
type ErrorType string

const (
	ErrorTypeDuplicate ErrorType = "duplicate"
	ErrorTypeNotFound  ErrorType = "not_found"
)

// DefaultRegistry is the global registry that platform packages register into.
var DefaultRegistry = NewRegistry()

// Register registers a platform with the default registry.
func Register(p Platform) error {
	return DefaultRegistry.Register(p)
}

// Detect finds the platform for host in the default registry.
func Detect(host string) Platform {
	return DefaultRegistry.Detect(host)
}
