package job

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/store"
)

// BackupPruner enforces the backup cap across all pages. The write path
// already prunes after every save; this job catches histories left
// behind by crashed saves or direct database edits.
type BackupPruner struct {
	store store.Store
}

// NewBackupPruner creates a new BackupPruner instance.
func NewBackupPruner(store store.Store) *BackupPruner {
	return &BackupPruner{
		store: store,
	}
}

func (c *BackupPruner) Schedule() string {
	return "@every 10m"
}

func (c *BackupPruner) Run() {
	ctx := context.Background()

	pages, err := c.store.ListBackedUpPages(ctx)
	if err != nil {
		logrus.Error("error listing pages with backups: ", err)
		return
	}

	for _, page := range pages {
		err := c.store.PrunePageBackups(ctx, page.Slug, page.ClientID, model.MaxPageBackups)
		if err != nil {
			logrus.Errorf("error pruning backups for %q: %v", page.Slug, err)
		}
	}

	logrus.Infof("pruned backup histories for %d pages", len(pages))
}
