package resolve

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pirouette/content/internal/blocks"
	"github.com/pirouette/content/internal/cache"
	"github.com/pirouette/content/internal/compress"
	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/schema"
	"github.com/pirouette/content/internal/store"
)

// Resolved is the effective content for a slug. Exists reports whether a
// stored document backed it or the built-in defaults were used.
type Resolved struct {
	Slug     string
	ClientID string
	Data     map[string]interface{}
	Version  int64
	Exists   bool
}

// Resolver produces effective page content: stored data wins over
// defaults, legacy unscoped rows are a read-only fallback, and stored
// block shapes are migrated to the current layout on the way out.
type Resolver struct {
	store   store.Store
	schemas *schema.Registry
	blocks  *blocks.Registry
	cache   cache.ContentCache
}

func NewResolver(store store.Store, schemas *schema.Registry, blockKinds *blocks.Registry, cache cache.ContentCache) *Resolver {
	return &Resolver{
		store:   store,
		schemas: schemas,
		blocks:  blockKinds,
		cache:   cache,
	}
}

// Resolve returns the effective content for (slug, clientID). An
// unseeded slug resolves to its registered defaults with Exists=false;
// that is a normal state, not an error.
func (r *Resolver) Resolve(ctx context.Context, slug, clientID string) (*Resolved, error) {
	page, err := r.schemas.Lookup(slug)
	if err != nil {
		return nil, err
	}

	stored, err := r.lookup(ctx, slug, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Resolved{
				Slug:     slug,
				ClientID: clientID,
				Data:     cloneData(page.Defaults),
				Exists:   false,
			}, nil
		}
		return nil, err
	}

	data, err := DecodeData(stored)
	if err != nil {
		return nil, err
	}

	data, changed := r.MigrateData(data)
	if changed {
		logrus.Infof("migrated legacy content shape for slug %q", slug)
	}

	return &Resolved{
		Slug:     slug,
		ClientID: clientID,
		Data:     data,
		Version:  stored.Version,
		Exists:   true,
	}, nil
}

func (r *Resolver) lookup(ctx context.Context, slug, clientID string) (*model.PageContent, error) {
	cached, err := r.cache.GetPage(ctx, slug, clientID)
	if err != nil {
		// a broken cache must not break resolution
		logrus.Errorf("content cache read failed: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	stored, err := r.store.GetPageContent(ctx, slug, clientID)
	if err == nil {
		if cerr := r.cache.SetPage(ctx, stored); cerr != nil {
			logrus.Errorf("content cache write failed: %v", cerr)
		}
		return stored, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// deprecated unscoped row, read-only fallback
	return r.store.GetLegacyPageContent(ctx, slug)
}

// MigrateData walks a decoded payload and rewrites any legacy-shaped
// block lists to the current layout. Modern payloads come back
// unchanged (changed=false).
func (r *Resolver) MigrateData(data map[string]interface{}) (map[string]interface{}, bool) {
	changed := false
	for key, value := range data {
		if list, ok := blocks.BlockList(value); ok {
			migrated, listChanged := r.blocks.MigrateList(list)
			if listChanged {
				data[key] = migrated
				changed = true
			}
		}
	}

	return data, changed
}

// DecodeData decompresses and unmarshals a stored document's payload.
func DecodeData(page *model.PageContent) (map[string]interface{}, error) {
	codec := compress.ByName(page.Compression)
	raw, err := codec.Decode([]byte(page.Data))
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	return data, nil
}

func cloneData(data map[string]interface{}) map[string]interface{} {
	raw, err := json.Marshal(data)
	if err != nil {
		return map[string]interface{}{}
	}

	var clone map[string]interface{}
	if err := json.Unmarshal(raw, &clone); err != nil {
		return map[string]interface{}{}
	}

	return clone
}
