package store

import (
	"context"

	"github.com/pirouette/content/internal/model"
)

// PageKey identifies a page document within a tenant scope. An empty
// ClientID addresses the legacy unscoped row.
type PageKey struct {
	Slug     string
	ClientID string
}

type Store interface {
	PageContentStore
	SectionContentStore
	PageBackupStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type PageContentStore interface {
	// CreatePageContent creates a new page document.
	CreatePageContent(ctx context.Context, page *model.PageContent) error
	// GetPageContent retrieves the page document for (slug, clientID).
	GetPageContent(ctx context.Context, slug, clientID string) (*model.PageContent, error)
	// GetLegacyPageContent retrieves the deprecated unscoped row for a slug.
	GetLegacyPageContent(ctx context.Context, slug string) (*model.PageContent, error)
	// ListPageContents retrieves all page documents for a tenant.
	ListPageContents(ctx context.Context, clientID string) ([]*model.PageContent, int64, error)
	// UpdatePageContent updates a page document.
	UpdatePageContent(ctx context.Context, page *model.PageContent) error
	// DeletePageContent deletes the page document for (slug, clientID).
	DeletePageContent(ctx context.Context, slug, clientID string) error
	// ErasePageContent hard deletes the page document for (slug, clientID).
	ErasePageContent(ctx context.Context, slug, clientID string) error
}

type SectionContentStore interface {
	// ListSections retrieves the active sections of a page ordered by OrderIndex.
	ListSections(ctx context.Context, pageID string) ([]*model.SectionContent, error)
	// GetSection retrieves a section by (pageID, sectionID), active or not.
	GetSection(ctx context.Context, pageID, sectionID string) (*model.SectionContent, error)
	// SaveSection inserts or updates the section for (pageID, sectionID).
	SaveSection(ctx context.Context, section *model.SectionContent) error
	// DeactivateSection marks a section inactive without deleting it.
	DeactivateSection(ctx context.Context, pageID, sectionID string) error
}

type PageBackupStore interface {
	// CreatePageBackup creates a new backup snapshot.
	CreatePageBackup(ctx context.Context, backup *model.PageBackup) error
	// ListPageBackups retrieves the backups of a page, newest version first.
	ListPageBackups(ctx context.Context, slug, clientID string) ([]*model.PageBackup, error)
	// GetPageBackup retrieves a backup by page and version.
	GetPageBackup(ctx context.Context, slug, clientID string, version int64) (*model.PageBackup, error)
	// DeletePageBackups deletes all backups of a page.
	DeletePageBackups(ctx context.Context, slug, clientID string) error
	// PrunePageBackups evicts the oldest backups beyond keep.
	PrunePageBackups(ctx context.Context, slug, clientID string, keep int) error
	// ListBackedUpPages lists the distinct pages that have backups.
	ListBackedUpPages(ctx context.Context) ([]PageKey, error)
}
