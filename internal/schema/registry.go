package schema

import (
	"errors"
	"fmt"
)

var (
	ErrSlugNotRegistered = errors.New("no schema registered for slug")
)

// PageSchema binds a slug to its schema and the fully populated default
// payload used when no document is stored.
type PageSchema struct {
	Slug     string
	Schema   *Node
	Defaults map[string]interface{}
}

// Registry holds the per-slug schemas. It is an explicit instance
// constructed at startup and handed to the resolver, not package state.
type Registry struct {
	pages map[string]*PageSchema
}

func NewRegistry() *Registry {
	return &Registry{
		pages: make(map[string]*PageSchema),
	}
}

// Register adds or replaces the schema for a slug. Defaults must satisfy
// the schema, so an unseeded slug always resolves to a valid payload.
func (r *Registry) Register(page *PageSchema) error {
	if page.Slug == "" {
		return errors.New("schema slug must not be empty")
	}

	if err := page.Schema.Validate(toAny(page.Defaults)); err != nil {
		return fmt.Errorf("defaults for slug %q: %w", page.Slug, err)
	}

	r.pages[page.Slug] = page
	return nil
}

func (r *Registry) MustRegister(page *PageSchema) {
	if err := r.Register(page); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(slug string) (*PageSchema, error) {
	page, ok := r.pages[slug]
	if !ok {
		return nil, ErrSlugNotRegistered
	}
	return page, nil
}

func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.pages))
	for slug := range r.pages {
		slugs = append(slugs, slug)
	}
	return slugs
}

func toAny(m map[string]interface{}) interface{} {
	if m == nil {
		return nil
	}
	return m
}
