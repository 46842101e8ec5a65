package queue

import (
	"context"

	"github.com/pirouette/content/internal/model"
)

var ContentUpdateQueue = "content:update:queue"

// ContentQueue feeds page saves to interested consumers (cache sync,
// live-preview invalidation). Delivery is at-most-once; consumers must
// tolerate missed updates and re-read from the store.
type ContentQueue interface {
	// PublishUpdate appends a saved page document to the queue.
	PublishUpdate(ctx context.Context, page *model.PageContent) error
	// SubscribeUpdates drains the queue into a channel until ctx is done.
	SubscribeUpdates(ctx context.Context) (<-chan *model.PageContent, error)
}
