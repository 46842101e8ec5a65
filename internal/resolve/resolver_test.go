package resolve

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pirouette/content/internal/cache"
	"github.com/pirouette/content/internal/compress"
	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/schema"
	"github.com/pirouette/content/internal/site"
	"github.com/pirouette/content/internal/store"
)

// legacyOnlyStore serves a single unscoped row, the shape a pre-tenant
// deployment leaves behind.
type legacyOnlyStore struct {
	*store.NopStore
	page *model.PageContent
}

func (s *legacyOnlyStore) GetLegacyPageContent(ctx context.Context, slug string) (*model.PageContent, error) {
	if s.page != nil && s.page.Slug == slug {
		return s.page, nil
	}
	return s.NopStore.GetLegacyPageContent(ctx, slug)
}

func TestResolver_DefaultsWhenUnseeded(t *testing.T) {
	r := NewResolver(store.NewNopStore(), site.Schemas(), site.Blocks(), cache.NewNopContentCache())

	res, err := r.Resolve(context.TODO(), "footer", "studio-a")
	assert.NoError(t, err)
	assert.False(t, res.Exists)
	assert.Equal(t, int64(0), res.Version)
	assert.Equal(t, "Dance with us", res.Data["tagline"])
	assert.Equal(t, "footer", res.Slug)
	assert.Equal(t, "studio-a", res.ClientID)
}

func TestResolver_UnknownSlug(t *testing.T) {
	r := NewResolver(store.NewNopStore(), site.Schemas(), site.Blocks(), cache.NewNopContentCache())

	_, err := r.Resolve(context.TODO(), "pricing", "")
	assert.ErrorIs(t, err, schema.ErrSlugNotRegistered)
}

func TestResolver_LegacyFallbackIsReadOnly(t *testing.T) {
	data, err := json.Marshal(map[string]interface{}{"tagline": "old row"})
	assert.NoError(t, err)

	legacy := &legacyOnlyStore{
		NopStore: store.NewNopStore(),
		page: &model.PageContent{
			Slug:    "footer",
			Version: 5,
			Data:    string(data),
		},
	}

	r := NewResolver(legacy, site.Schemas(), site.Blocks(), cache.NewNopContentCache())

	res, err := r.Resolve(context.TODO(), "footer", "studio-a")
	assert.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, int64(5), res.Version)
	assert.Equal(t, "old row", res.Data["tagline"])
}

func TestResolver_MigrateData_Modern(t *testing.T) {
	r := NewResolver(store.NewNopStore(), site.Schemas(), site.Blocks(), cache.NewNopContentCache())

	data := map[string]interface{}{
		"title": "Home",
		"blocks": []interface{}{
			map[string]interface{}{
				"id":    "p1",
				"type":  "paragraph",
				"props": map[string]interface{}{"text": "hello"},
			},
		},
	}

	_, changed := r.MigrateData(data)
	assert.False(t, changed)
}

func TestResolver_MigrateData_LegacyHero(t *testing.T) {
	r := NewResolver(store.NewNopStore(), site.Schemas(), site.Blocks(), cache.NewNopContentCache())

	data := map[string]interface{}{
		"title": "Home",
		"blocks": []interface{}{
			map[string]interface{}{
				"id":    "hero-1",
				"type":  "hero",
				"props": map[string]interface{}{"title": "Old headline"},
			},
		},
	}

	migrated, changed := r.MigrateData(data)
	assert.True(t, changed)

	blocks := migrated["blocks"].([]interface{})
	props := blocks[0].(map[string]interface{})["props"].(map[string]interface{})
	assert.NotContains(t, props, "title")
	assert.NotEmpty(t, props["children"])
}

func TestDecodeData_SurvivesCacheSerialization(t *testing.T) {
	raw, err := json.Marshal(map[string]interface{}{"tagline": "Dance with us"})
	assert.NoError(t, err)

	encoded, err := compress.NewGZip().Encode(raw)
	assert.NoError(t, err)

	page := &model.PageContent{
		Slug:        "home",
		ClientID:    "studio",
		Version:     1,
		Data:        string(encoded),
		Compression: compress.KindGZip,
	}

	// the redis cache and the update queue both ship pages as JSON
	wire, err := json.Marshal(page)
	assert.NoError(t, err)

	cached := &model.PageContent{}
	assert.NoError(t, json.Unmarshal(wire, cached))
	assert.Equal(t, page.Data, cached.Data)
	assert.Equal(t, page.Compression, cached.Compression)

	data, err := DecodeData(cached)
	assert.NoError(t, err)
	assert.Equal(t, "Dance with us", data["tagline"])
}
