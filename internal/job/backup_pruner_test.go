package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/store"
)

type recordingStore struct {
	*store.NopStore
	pages  []store.PageKey
	pruned map[store.PageKey]int
}

func (s *recordingStore) ListBackedUpPages(ctx context.Context) ([]store.PageKey, error) {
	return s.pages, nil
}

func (s *recordingStore) PrunePageBackups(ctx context.Context, slug, clientID string, keep int) error {
	s.pruned[store.PageKey{Slug: slug, ClientID: clientID}] = keep
	return nil
}

func TestBackupPruner_Run(t *testing.T) {
	rec := &recordingStore{
		NopStore: store.NewNopStore(),
		pages: []store.PageKey{
			{Slug: "homepage", ClientID: "studio-a"},
			{Slug: "footer", ClientID: ""},
		},
		pruned: make(map[store.PageKey]int),
	}

	NewBackupPruner(rec).Run()

	assert.Len(t, rec.pruned, 2)
	assert.Equal(t, model.MaxPageBackups, rec.pruned[store.PageKey{Slug: "homepage", ClientID: "studio-a"}])
	assert.Equal(t, model.MaxPageBackups, rec.pruned[store.PageKey{Slug: "footer", ClientID: ""}])
}

func TestBackupPruner_Schedule(t *testing.T) {
	assert.Equal(t, "@every 10m", NewBackupPruner(store.NewNopStore()).Schedule())
}
