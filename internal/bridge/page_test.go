package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const rendered = `<html><body>
<h1 data-key="hero.title">Find <em>your</em> rhythm</h1>
<p data-key="hero.subtitle">All levels welcome</p>
<img data-key="hero.image" src="/images/hero.jpg" alt=""/>
<span data-key="hero.title">duplicate marker</span>
<div>unmarked</div>
</body></html>`

func TestPage_Scan(t *testing.T) {
	page := NewPage(rendered, "/")

	snapshot := page.Scan()

	assert.Equal(t, map[string]string{
		"hero.title":    "Find your rhythm",
		"hero.subtitle": "All levels welcome",
	}, snapshot.Text)
	assert.Equal(t, map[string]string{
		"hero.image": "/images/hero.jpg",
	}, snapshot.Images)
}

func TestPage_Scan_DuplicateMarkerKeepsFirst(t *testing.T) {
	page := NewPage(rendered, "/")

	snapshot := page.Scan()
	assert.Equal(t, "Find your rhythm", snapshot.Text["hero.title"])
}

func TestPage_Apply(t *testing.T) {
	page := NewPage(rendered, "/")

	page.Apply(Overrides{
		Text:   map[string]string{"hero.title": "Dance all summer"},
		Images: map[string]string{"hero.image": "/images/summer.jpg"},
	})

	snapshot := page.Scan()
	assert.Equal(t, "Dance all summer", snapshot.Text["hero.title"])
	assert.Equal(t, "All levels welcome", snapshot.Text["hero.subtitle"])
	assert.Equal(t, "/images/summer.jpg", snapshot.Images["hero.image"])
}

func TestPage_Apply_UnmatchedKeysIgnored(t *testing.T) {
	page := NewPage(rendered, "/")
	before := page.Scan()

	page.Apply(Overrides{
		Text:   map[string]string{"nothing.here": "value"},
		Images: map[string]string{"also.nothing": "/x.jpg"},
	})

	after := page.Scan()
	assert.Equal(t, before, after)
}

func TestPage_Apply_NilMaps(t *testing.T) {
	page := NewPage(rendered, "/")

	// a malformed payload decodes to nil maps; must not panic
	page.Apply(Overrides{})

	snapshot := page.Scan()
	assert.Equal(t, "Find your rhythm", snapshot.Text["hero.title"])
}

func TestPage_Navigate(t *testing.T) {
	page := NewPage(rendered, "/")
	assert.Equal(t, "/", page.Location())

	page.Navigate("/classes", `<html><body><h2 data-key="classes.title">Classes</h2></body></html>`)

	assert.Equal(t, "/classes", page.Location())
	snapshot := page.Scan()
	assert.Equal(t, map[string]string{"classes.title": "Classes"}, snapshot.Text)
	assert.Empty(t, snapshot.Images)
}

func TestPage_EmptyDocument(t *testing.T) {
	page := NewPage("", "/")

	snapshot := page.Scan()
	assert.Empty(t, snapshot.Text)
	assert.Empty(t, snapshot.Images)
}

func TestEnvelope_RoundTrip(t *testing.T) {
	env, err := NewApplyOverrides(Overrides{
		Text: map[string]string{"hero.title": "Hello"},
	})
	assert.NoError(t, err)
	assert.Equal(t, KindApplyOverrides, env.Type)

	overrides := DecodeOverrides(env.Payload)
	assert.Equal(t, "Hello", overrides.Text["hero.title"])
	assert.NotNil(t, overrides.Images)
}

func TestDecodeOverrides_Malformed(t *testing.T) {
	overrides := DecodeOverrides([]byte(`{"text": "not a map"`))
	assert.NotNil(t, overrides.Text)
	assert.NotNil(t, overrides.Images)
	assert.Empty(t, overrides.Text)
}
