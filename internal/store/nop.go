package store

import (
	"context"

	"github.com/pirouette/content/internal/model"
	"gorm.io/gorm"
)

// NewNopStore returns the store used when no backing database is
// configured. Reads report not-found and writes are accepted and
// discarded, so resolution degrades to built-in defaults instead of
// failing.
func NewNopStore() *NopStore {
	return &NopStore{}
}

var _ Store = (*NopStore)(nil)

type NopStore struct{}

func (n *NopStore) CreatePageContent(ctx context.Context, page *model.PageContent) error {
	return nil
}

func (n *NopStore) GetPageContent(ctx context.Context, slug, clientID string) (*model.PageContent, error) {
	return nil, gorm.ErrRecordNotFound
}

func (n *NopStore) GetLegacyPageContent(ctx context.Context, slug string) (*model.PageContent, error) {
	return nil, gorm.ErrRecordNotFound
}

func (n *NopStore) ListPageContents(ctx context.Context, clientID string) ([]*model.PageContent, int64, error) {
	return nil, 0, nil
}

func (n *NopStore) UpdatePageContent(ctx context.Context, page *model.PageContent) error {
	return nil
}

func (n *NopStore) DeletePageContent(ctx context.Context, slug, clientID string) error {
	return nil
}

func (n *NopStore) ErasePageContent(ctx context.Context, slug, clientID string) error {
	return nil
}

func (n *NopStore) ListSections(ctx context.Context, pageID string) ([]*model.SectionContent, error) {
	return nil, nil
}

func (n *NopStore) GetSection(ctx context.Context, pageID, sectionID string) (*model.SectionContent, error) {
	return nil, gorm.ErrRecordNotFound
}

func (n *NopStore) SaveSection(ctx context.Context, section *model.SectionContent) error {
	return nil
}

func (n *NopStore) DeactivateSection(ctx context.Context, pageID, sectionID string) error {
	return nil
}

func (n *NopStore) CreatePageBackup(ctx context.Context, backup *model.PageBackup) error {
	return nil
}

func (n *NopStore) ListPageBackups(ctx context.Context, slug, clientID string) ([]*model.PageBackup, error) {
	return nil, nil
}

func (n *NopStore) GetPageBackup(ctx context.Context, slug, clientID string, version int64) (*model.PageBackup, error) {
	return nil, gorm.ErrRecordNotFound
}

func (n *NopStore) DeletePageBackups(ctx context.Context, slug, clientID string) error {
	return nil
}

func (n *NopStore) PrunePageBackups(ctx context.Context, slug, clientID string, keep int) error {
	return nil
}

func (n *NopStore) ListBackedUpPages(ctx context.Context) ([]PageKey, error) {
	return nil, nil
}

func (n *NopStore) Migrate() error {
	return nil
}

func (n *NopStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return f(n)
}
