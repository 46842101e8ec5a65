package site

import (
	"github.com/pirouette/content/internal/blocks"
	"github.com/pirouette/content/internal/registry"
	"github.com/pirouette/content/internal/schema"
)

// Schemas builds the per-slug content schemas and their bundled default
// payloads. Defaults are always available and never mutated at runtime;
// an unseeded slug renders from these verbatim.
func Schemas() *schema.Registry {
	r := schema.NewRegistry()

	blockNode := schema.Object(
		schema.NewField("id", schema.String()),
		schema.NewField("type", schema.String()),
		schema.NewField("props", schema.Object().AsOptional()),
	)

	r.MustRegister(&schema.PageSchema{
		Slug: "homepage",
		Schema: schema.Object(
			schema.NewField("title", schema.String()),
			schema.NewField("heroImage", schema.Image().AsOptional()),
			schema.NewField("blocks", schema.Array(blockNode)),
		),
		Defaults: map[string]interface{}{
			"title":     "Pirouette Dance Academy",
			"heroImage": "/images/hero-studio.jpg",
			"blocks": []interface{}{
				map[string]interface{}{
					"id":   "hero-1",
					"type": "hero",
					"props": map[string]interface{}{
						"children": []interface{}{
							map[string]interface{}{
								"id":    "hero-1-title",
								"type":  "heading",
								"props": map[string]interface{}{"text": "Find your rhythm"},
							},
							map[string]interface{}{
								"id":    "hero-1-sub",
								"type":  "paragraph",
								"props": map[string]interface{}{"text": "Classes for every age and level."},
							},
						},
					},
				},
			},
		},
	})

	r.MustRegister(&schema.PageSchema{
		Slug: "classes",
		Schema: schema.Object(
			schema.NewField("title", schema.String()),
			schema.NewField("intro", schema.String().AsOptional()),
			schema.NewField("blocks", schema.Array(blockNode)),
		),
		Defaults: map[string]interface{}{
			"title":  "Classes",
			"intro":  "Ballet, contemporary, hip hop and more.",
			"blocks": []interface{}{},
		},
	})

	r.MustRegister(&schema.PageSchema{
		Slug: "header",
		Schema: schema.Object(
			schema.NewField("logoImage", schema.Image()),
			schema.NewField("links", schema.Array(schema.Object(
				schema.NewField("label", schema.String()),
				schema.NewField("href", schema.String()),
			))),
		),
		Defaults: map[string]interface{}{
			"logoImage": "/images/logo.svg",
			"links": []interface{}{
				map[string]interface{}{"label": "Home", "href": "/"},
				map[string]interface{}{"label": "Classes", "href": "/classes"},
				map[string]interface{}{"label": "Contact", "href": "/contact"},
			},
		},
	})

	r.MustRegister(&schema.PageSchema{
		Slug: "footer",
		Schema: schema.Object(
			schema.NewField("tagline", schema.String()),
			schema.NewField("copyright", schema.String().AsOptional()),
		),
		Defaults: map[string]interface{}{
			"tagline":   "Dance with us",
			"copyright": "Pirouette Dance Academy",
		},
	})

	return r
}

// Blocks builds the closed set of block kinds a page document may
// contain, including the legacy-shape migrations for kinds that used to
// store flat string fields.
func Blocks() *blocks.Registry {
	r := blocks.NewRegistry()

	r.Register(&blocks.Kind{
		Name:     "heading",
		Defaults: map[string]interface{}{"text": "", "level": float64(2)},
	})
	r.Register(&blocks.Kind{
		Name:     "paragraph",
		Defaults: map[string]interface{}{"text": ""},
	})
	r.Register(&blocks.Kind{
		Name:     "image",
		Defaults: map[string]interface{}{"src": "", "alt": ""},
	})
	r.Register(&blocks.Kind{
		Name:     "testimonial",
		Defaults: map[string]interface{}{"quote": "", "author": ""},
	})

	// hero used to be a flat {title, subtitle} block; the current shape
	// nests a heading and a paragraph under children
	r.Register(&blocks.Kind{
		Name:     "hero",
		Defaults: map[string]interface{}{"children": []interface{}{}},
		Migrate: blocks.FlatToChildren(
			"children",
			[]blocks.LegacyField{
				{Prop: "title", ChildType: "heading", ChildProp: "text"},
				{Prop: "subtitle", ChildType: "paragraph", ChildProp: "text"},
			},
			[]*blocks.Block{
				{Type: "heading", Props: map[string]interface{}{"text": "Find your rhythm", "level": float64(1)}},
				{Type: "paragraph", Props: map[string]interface{}{"text": ""}},
			},
		),
	})

	return r
}

// Mappings builds the section mapping registry used by editor tooling
// to locate where an on-page element lives.
func Mappings() *registry.Registry {
	r := registry.NewRegistry()

	r.Add(registry.Mapping{
		SectionID:     "hero",
		ComponentName: "HeroSection",
		FilePath:      "src/components/HeroSection.tsx",
		Description:   "Full-width hero banner at the top of the homepage",
	})
	r.Add(registry.Mapping{
		SectionID:     "class-grid",
		ComponentName: "ClassGrid",
		FilePath:      "src/components/ClassGrid.tsx",
		Description:   "Grid of class offerings on the classes page",
	})
	r.Add(registry.Mapping{
		SectionID:     "testimonials",
		ComponentName: "TestimonialCarousel",
		FilePath:      "src/components/TestimonialCarousel.tsx",
		Description:   "Rotating student testimonials",
	})
	r.Add(registry.Mapping{
		SectionID:     "site-footer",
		ComponentName: "Footer",
		FilePath:      "src/components/Footer.tsx",
		Description:   "Shared footer with tagline and contact details",
	})

	return r
}
