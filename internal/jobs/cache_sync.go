package jobs

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pirouette/content/internal/cache"
	"github.com/pirouette/content/internal/queue"
)

// CacheSyncTask drains the content update queue into the resolved
// content cache, so tabs served by other instances see fresh pages
// without a database read.
type CacheSyncTask struct {
	cache cache.ContentCache
	queue queue.ContentQueue
}

func NewCacheSyncTask(cache cache.ContentCache, queue queue.ContentQueue) *CacheSyncTask {
	return &CacheSyncTask{
		cache: cache,
		queue: queue,
	}
}

func (c *CacheSyncTask) ID() string {
	return "cache_sync"
}

// Run consumes updates until ctx is done.
func (c *CacheSyncTask) Run(ctx context.Context) {
	updates, err := c.queue.SubscribeUpdates(ctx)
	if err != nil {
		logrus.Errorf("cache sync subscribe failed: %v", err)
		return
	}

	for page := range updates {
		if err := c.cache.SetPage(ctx, page); err != nil {
			logrus.Errorf("cache sync set failed for %q: %v", page.Slug, err)
		}
	}
}
