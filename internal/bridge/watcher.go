package bridge

import (
	"context"
	"time"
)

const (
	// pollInterval is how often the watcher samples the page location.
	// Client-side navigation does not reload the page, so the route can
	// only be detected by polling.
	pollInterval = 500 * time.Millisecond
	// rebroadcastDelay gives the page a moment to finish rendering the
	// new route before the snapshot is taken.
	rebroadcastDelay = 200 * time.Millisecond
)

// RouteWatcher polls a page session's location and re-broadcasts a
// fresh content snapshot shortly after every detected change.
type RouteWatcher struct {
	page      *Page
	broadcast func(snapshot Overrides)
}

func NewRouteWatcher(page *Page, broadcast func(snapshot Overrides)) *RouteWatcher {
	return &RouteWatcher{
		page:      page,
		broadcast: broadcast,
	}
}

// Run polls until ctx is done.
func (w *RouteWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := w.page.Location()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.page.Location()
			if current == last {
				continue
			}
			last = current

			select {
			case <-ctx.Done():
				return
			case <-time.After(rebroadcastDelay):
			}

			w.broadcast(w.page.Scan())
		}
	}
}
