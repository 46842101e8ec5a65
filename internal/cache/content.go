package cache

import (
	"context"
	"time"

	"github.com/pirouette/content/internal/model"
)

// ContentCache is a read-through cache for resolved page documents.
// A nil page with a nil error is a miss.
type ContentCache interface {
	// GetPage gets a page document from the cache.
	GetPage(ctx context.Context, slug, clientID string) (*model.PageContent, error)
	// SetPage sets a page document in the cache.
	SetPage(ctx context.Context, page *model.PageContent) error
	// InvalidatePage removes a page document from the cache.
	InvalidatePage(ctx context.Context, slug, clientID string) error
}

const pageTTL = time.Hour

func pageKey(slug, clientID string) string {
	return "page:" + clientID + ":" + slug
}

var _ ContentCache = (*RedisContentCache)(nil)

type RedisContentCache struct {
	redis *Redis
}

func NewRedisContentCache(redis *Redis) *RedisContentCache {
	return &RedisContentCache{redis: redis}
}

func (r *RedisContentCache) GetPage(ctx context.Context, slug, clientID string) (*model.PageContent, error) {
	page := &model.PageContent{}
	ok, err := r.redis.Get(ctx, pageKey(slug, clientID), page)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return page, nil
}

func (r *RedisContentCache) SetPage(ctx context.Context, page *model.PageContent) error {
	return r.redis.Set(ctx, pageKey(page.Slug, page.ClientID), page, pageTTL)
}

func (r *RedisContentCache) InvalidatePage(ctx context.Context, slug, clientID string) error {
	return r.redis.Del(ctx, pageKey(slug, clientID))
}

// NopContentCache is used when no redis endpoint is configured.
type NopContentCache struct{}

func NewNopContentCache() *NopContentCache {
	return &NopContentCache{}
}

var _ ContentCache = (*NopContentCache)(nil)

func (n *NopContentCache) GetPage(ctx context.Context, slug, clientID string) (*model.PageContent, error) {
	return nil, nil
}

func (n *NopContentCache) SetPage(ctx context.Context, page *model.PageContent) error {
	return nil
}

func (n *NopContentCache) InvalidatePage(ctx context.Context, slug, clientID string) error {
	return nil
}
