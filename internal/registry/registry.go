package registry

import (
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// ComponentAttr marks a rendered element with the component that
// produced it.
const ComponentAttr = "data-component"

// Mapping ties a page section to the authoring metadata editor tooling
// shows when an operator asks where an on-page element lives.
type Mapping struct {
	SectionID     string `json:"sectionId"`
	ComponentName string `json:"componentName"`
	FilePath      string `json:"filePath"`
	Description   string `json:"description"`
}

// Registry is an explicit instance created at startup and injected into
// editor tooling; it is not package-level state. Add replaces any
// existing entry with the same SectionID (last registered wins).
type Registry struct {
	mu       sync.RWMutex
	order    []string
	mappings map[string]Mapping
}

func NewRegistry() *Registry {
	return &Registry{
		mappings: make(map[string]Mapping),
	}
}

// Add registers a mapping, replacing any existing entry for its
// SectionID.
func (r *Registry) Add(mapping Mapping) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mappings[mapping.SectionID]; !exists {
		r.order = append(r.order, mapping.SectionID)
	}
	r.mappings[mapping.SectionID] = mapping
}

// Lookup finds a mapping by exact SectionID, falling back to a
// case-insensitive match on ComponentName.
func (r *Registry) Lookup(identifier string) (Mapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if mapping, ok := r.mappings[identifier]; ok {
		return mapping, true
	}

	for _, id := range r.order {
		mapping := r.mappings[id]
		if strings.EqualFold(mapping.ComponentName, identifier) {
			return mapping, true
		}
	}

	return Mapping{}, false
}

// All returns the registered mappings in registration order.
func (r *Registry) All() []Mapping {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Mapping, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.mappings[id])
	}
	return out
}

// LocateElement resolves a DOM element to its mapping: the element
// itself is checked for a component marker or an id, then its ancestors,
// stopping at the first signal that resolves. Returns false when no
// ancestor matches.
func (r *Registry) LocateElement(n *html.Node) (Mapping, bool) {
	for node := n; node != nil; node = node.Parent {
		if node.Type != html.ElementNode {
			continue
		}

		for _, a := range node.Attr {
			if a.Key != ComponentAttr && a.Key != "id" {
				continue
			}
			if mapping, ok := r.Lookup(a.Val); ok {
				return mapping, true
			}
		}
	}

	return Mapping{}, false
}
