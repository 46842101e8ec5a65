package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func testMappings() *Registry {
	r := NewRegistry()
	r.Add(Mapping{
		SectionID:     "hero",
		ComponentName: "HeroSection",
		FilePath:      "src/components/HeroSection.tsx",
	})
	r.Add(Mapping{
		SectionID:     "site-footer",
		ComponentName: "Footer",
		FilePath:      "src/components/Footer.tsx",
	})
	return r
}

func TestRegistry_Lookup(t *testing.T) {
	r := testMappings()

	mapping, ok := r.Lookup("hero")
	assert.True(t, ok)
	assert.Equal(t, "HeroSection", mapping.ComponentName)

	// component name matches are case-insensitive
	mapping, ok = r.Lookup("herosection")
	assert.True(t, ok)
	assert.Equal(t, "hero", mapping.SectionID)

	_, ok = r.Lookup("sidebar")
	assert.False(t, ok)
}

func TestRegistry_Add_ReplacesByID(t *testing.T) {
	r := testMappings()

	r.Add(Mapping{
		SectionID:     "hero",
		ComponentName: "HeroBanner",
		FilePath:      "src/components/HeroBanner.tsx",
	})

	all := r.All()
	assert.Len(t, all, 2)

	// replacement keeps the original position
	assert.Equal(t, "hero", all[0].SectionID)
	assert.Equal(t, "HeroBanner", all[0].ComponentName)
	assert.Equal(t, "site-footer", all[1].SectionID)
}

func TestRegistry_All_RegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(Mapping{SectionID: "c"})
	r.Add(Mapping{SectionID: "a"})
	r.Add(Mapping{SectionID: "b"})

	all := r.All()
	assert.Equal(t, "c", all[0].SectionID)
	assert.Equal(t, "a", all[1].SectionID)
	assert.Equal(t, "b", all[2].SectionID)
}

func TestRegistry_LocateElement(t *testing.T) {
	r := testMappings()

	doc, err := html.Parse(strings.NewReader(
		`<html><body><div data-component="HeroSection"><h1><span id="deep">text</span></h1></div><p id="orphan">loose</p></body></html>`))
	assert.NoError(t, err)

	var deep, orphan *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == "deep" {
				deep = n
			}
			if a.Key == "id" && a.Val == "orphan" {
				orphan = n
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	// resolves through the ancestor chain to the component marker
	mapping, ok := r.LocateElement(deep)
	assert.True(t, ok)
	assert.Equal(t, "hero", mapping.SectionID)

	_, ok = r.LocateElement(orphan)
	assert.False(t, ok)
}
