package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/queue"
)

var _ queue.ContentQueue = (*RedisContentQueue)(nil)

// RedisContentQueue is a redis-list backed update feed of saved pages.
type RedisContentQueue struct {
	redis *Redis
}

func NewRedisContentQueue(redis *Redis) *RedisContentQueue {
	return &RedisContentQueue{redis: redis}
}

func (r *RedisContentQueue) PublishUpdate(ctx context.Context, page *model.PageContent) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	return r.redis.Client().RPush(ctx, queue.ContentUpdateQueue, data).Err()
}

func (r *RedisContentQueue) SubscribeUpdates(ctx context.Context) (<-chan *model.PageContent, error) {
	out := make(chan *model.PageContent)

	go func() {
		defer close(out)

		for {
			res, err := r.redis.Client().BLPop(ctx, time.Second, queue.ContentUpdateQueue).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				logrus.Errorf("content queue pop failed: %v", err)
				continue
			}

			// BLPop returns [key, value]
			if len(res) != 2 {
				continue
			}

			page := &model.PageContent{}
			if err := json.Unmarshal([]byte(res[1]), page); err != nil {
				logrus.Errorf("content queue entry corrupted: %v", err)
				continue
			}

			select {
			case out <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
