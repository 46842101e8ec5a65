package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pirouette/content/internal/cache"
	"github.com/pirouette/content/internal/compress"
	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/schema"
	"github.com/pirouette/content/internal/site"
	"github.com/pirouette/content/internal/store"
	"github.com/pirouette/content/internal/tester"
)

func newTestPageService() (*PageService, store.Store) {
	contentStore := store.NewGormStore(tester.TestDB())
	pages := NewPageService(compress.NewNop(), "", contentStore, site.Schemas(), site.Blocks(), cache.NewNopContentCache(), nil)
	return pages, contentStore
}

func TestPageService_GetPage_Defaults(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, _ := newTestPageService()
	clientID := uuid.New().String()

	res, err := pages.GetPage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.False(t, res.Exists)
	assert.Equal(t, int64(0), res.Version)
	assert.Equal(t, "Dance with us", res.Data["tagline"])

	// mutating a resolved payload must not leak into the defaults
	res.Data["tagline"] = "changed"

	again, err := pages.GetPage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.False(t, again.Exists)
	assert.Equal(t, "Dance with us", again.Data["tagline"])
}

func TestPageService_GetPage_UnknownSlug(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, _ := newTestPageService()

	_, err := pages.GetPage(context.TODO(), "no-such-page", uuid.New().String())
	assert.ErrorIs(t, err, schema.ErrSlugNotRegistered)
}

func TestPageService_SavePage(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, _ := newTestPageService()
	clientID := uuid.New().String()

	saved, err := pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"tagline": "Step into spring",
	}, "admin", "seasonal update")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)
	assert.True(t, saved.Exists)

	// read-your-writes
	res, err := pages.GetPage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, "Step into spring", res.Data["tagline"])

	saved, err = pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"tagline": "Summer intensives open",
	}, "admin", "")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), saved.Version)

	res, err = pages.GetPage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.Equal(t, "Summer intensives open", res.Data["tagline"])
}

func TestPageService_SavePage_Validation(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, _ := newTestPageService()
	clientID := uuid.New().String()

	_, err := pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"copyright": "no tagline here",
	}, "", "")

	var validation *schema.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "tagline", validation.Path)

	// rejected writes leave no trace
	res, err := pages.GetPage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.False(t, res.Exists)
}

func TestPageService_BackupCap(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, _ := newTestPageService()
	clientID := uuid.New().String()

	for i := 1; i <= 12; i++ {
		saved, err := pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
			"tagline": fmt.Sprintf("revision %d", i),
		}, "admin", "")
		assert.NoError(t, err)
		assert.Equal(t, int64(i), saved.Version)
	}

	versions, err := pages.ListPageVersions(context.TODO(), "footer", clientID)
	assert.NoError(t, err)

	// one current entry plus the capped backup history
	assert.Len(t, versions, 1+model.MaxPageBackups)
	assert.True(t, versions[0].Current)
	assert.Equal(t, int64(12), versions[0].Version)

	// strictly decreasing, no duplicates even after eviction
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i-1].Version, versions[i].Version)
	}
}

func TestPageService_LegacyFallback(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, contentStore := newTestPageService()
	clientID := uuid.New().String()

	legacy, err := json.Marshal(map[string]interface{}{"tagline": "from the old days"})
	assert.NoError(t, err)

	err = contentStore.CreatePageContent(context.TODO(), &model.PageContent{
		Slug:    "footer",
		Version: 3,
		Data:    string(legacy),
	})
	assert.NoError(t, err)

	// scoped read falls back to the unscoped row
	res, err := pages.GetPage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.True(t, res.Exists)
	assert.Equal(t, int64(3), res.Version)
	assert.Equal(t, "from the old days", res.Data["tagline"])

	// a save through the fallback adopts the row into the scope
	saved, err := pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"tagline": "fresh again",
	}, "admin", "")
	assert.NoError(t, err)
	assert.Equal(t, int64(4), saved.Version)

	scoped, err := contentStore.GetPageContent(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), scoped.Version)

	_, err = contentStore.GetLegacyPageContent(context.TODO(), "footer")
	assert.Error(t, err)
}

func TestPageService_DeletePage(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, contentStore := newTestPageService()
	clientID := uuid.New().String()

	for i := 0; i < 3; i++ {
		_, err := pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
			"tagline": fmt.Sprintf("revision %d", i),
		}, "", "")
		assert.NoError(t, err)
	}

	err := pages.DeletePage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)

	// resolution falls back to defaults
	res, err := pages.GetPage(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.False(t, res.Exists)

	// the backup history is gone with the document
	_, err = pages.ListPageVersions(context.TODO(), "footer", clientID)
	assert.ErrorIs(t, err, ErrPageNotFound)

	backups, err := contentStore.ListPageBackups(context.TODO(), "footer", clientID)
	assert.NoError(t, err)
	assert.Empty(t, backups)
}

func TestPageService_GetPageVersion(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, _ := newTestPageService()
	clientID := uuid.New().String()

	_, err := pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"tagline": "first",
	}, "", "")
	assert.NoError(t, err)

	_, err = pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"tagline": "second",
	}, "", "")
	assert.NoError(t, err)

	current, err := pages.GetPageVersion(context.TODO(), "footer", clientID, 2)
	assert.NoError(t, err)
	assert.Equal(t, "second", current["tagline"])

	backup, err := pages.GetPageVersion(context.TODO(), "footer", clientID, 1)
	assert.NoError(t, err)
	assert.Equal(t, "first", backup["tagline"])

	_, err = pages.GetPageVersion(context.TODO(), "footer", clientID, 9)
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestPageService_RestorePageVersion(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, _ := newTestPageService()
	clientID := uuid.New().String()

	_, err := pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"tagline": "first",
	}, "", "")
	assert.NoError(t, err)

	_, err = pages.SavePage(context.TODO(), "footer", clientID, map[string]interface{}{
		"tagline": "second",
	}, "", "")
	assert.NoError(t, err)

	restored, err := pages.RestorePageVersion(context.TODO(), "footer", clientID, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), restored.Version)
	assert.Equal(t, "first", restored.Data["tagline"])

	// the pre-restore state survives as a backup
	snapshot, err := pages.GetPageVersion(context.TODO(), "footer", clientID, 2)
	assert.NoError(t, err)
	assert.Equal(t, "second", snapshot["tagline"])
}

func TestPageService_MigratesLegacyHeroShape(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	pages, contentStore := newTestPageService()
	clientID := uuid.New().String()

	legacy, err := json.Marshal(map[string]interface{}{
		"title":     "Pirouette Dance Academy",
		"heroImage": "/images/hero.jpg",
		"blocks": []interface{}{
			map[string]interface{}{
				"id":   "hero-1",
				"type": "hero",
				"props": map[string]interface{}{
					"title":    "Old headline",
					"subtitle": "Old subline",
				},
			},
		},
	})
	assert.NoError(t, err)

	err = contentStore.CreatePageContent(context.TODO(), &model.PageContent{
		Slug:     "homepage",
		ClientID: clientID,
		Version:  1,
		Data:     string(legacy),
	})
	assert.NoError(t, err)

	res, err := pages.GetPage(context.TODO(), "homepage", clientID)
	assert.NoError(t, err)

	blocks := res.Data["blocks"].([]interface{})
	assert.Len(t, blocks, 1)

	hero := blocks[0].(map[string]interface{})
	props := hero["props"].(map[string]interface{})

	// the flat fields were consumed by the nested children
	assert.NotContains(t, props, "title")
	assert.NotContains(t, props, "subtitle")

	children := props["children"].([]interface{})
	assert.Len(t, children, 2)

	heading := children[0].(map[string]interface{})
	assert.Equal(t, "heading", heading["type"])
	assert.NotEmpty(t, heading["id"])
	assert.Equal(t, "Old headline", heading["props"].(map[string]interface{})["text"])

	paragraph := children[1].(map[string]interface{})
	assert.Equal(t, "paragraph", paragraph["type"])
	assert.Equal(t, "Old subline", paragraph["props"].(map[string]interface{})["text"])
}
