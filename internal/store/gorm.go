package store

import (
	"context"

	"github.com/pirouette/content/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreatePageContent(ctx context.Context, page *model.PageContent) error {
	return g.db.WithContext(ctx).Create(page).Error
}

func (g *GormStore) GetPageContent(ctx context.Context, slug, clientID string) (*model.PageContent, error) {
	var page model.PageContent
	err := g.db.WithContext(ctx).Where("slug = ? AND client_id = ?", slug, clientID).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetLegacyPageContent reads the unscoped row left behind by pre-tenant
// deployments. Current code paths never write these rows.
func (g *GormStore) GetLegacyPageContent(ctx context.Context, slug string) (*model.PageContent, error) {
	var page model.PageContent
	err := g.db.WithContext(ctx).Where("slug = ? AND (client_id = '' OR client_id IS NULL)", slug).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (g *GormStore) ListPageContents(ctx context.Context, clientID string) ([]*model.PageContent, int64, error) {
	var pages []*model.PageContent
	err := g.db.WithContext(ctx).Where("client_id = ?", clientID).Order("slug asc").Find(&pages).Error
	if err != nil {
		return nil, 0, err
	}

	return pages, int64(len(pages)), nil
}

func (g *GormStore) UpdatePageContent(ctx context.Context, page *model.PageContent) error {
	return g.db.WithContext(ctx).Save(page).Error
}

func (g *GormStore) DeletePageContent(ctx context.Context, slug, clientID string) error {
	return g.db.WithContext(ctx).Where("slug = ? AND client_id = ?", slug, clientID).Delete(&model.PageContent{}).Error
}

func (g *GormStore) ErasePageContent(ctx context.Context, slug, clientID string) error {
	return g.db.WithContext(ctx).Unscoped().Where("slug = ? AND client_id = ?", slug, clientID).Delete(&model.PageContent{}).Error
}

func (g *GormStore) ListSections(ctx context.Context, pageID string) ([]*model.SectionContent, error) {
	var sections []*model.SectionContent
	err := g.db.WithContext(ctx).
		Where("page_id = ? AND is_active = ?", pageID, true).
		Order("order_index asc").
		Find(&sections).Error
	return sections, err
}

func (g *GormStore) GetSection(ctx context.Context, pageID, sectionID string) (*model.SectionContent, error) {
	var section model.SectionContent
	err := g.db.WithContext(ctx).Where("page_id = ? AND section_id = ?", pageID, sectionID).First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (g *GormStore) SaveSection(ctx context.Context, section *model.SectionContent) error {
	var existing model.SectionContent
	err := g.db.WithContext(ctx).Where("page_id = ? AND section_id = ?", section.PageID, section.SectionID).First(&existing).Error
	if err == nil {
		section.ID = existing.ID
		section.CreatedAt = existing.CreatedAt
		return g.db.WithContext(ctx).Save(section).Error
	}

	return g.db.WithContext(ctx).Create(section).Error
}

func (g *GormStore) DeactivateSection(ctx context.Context, pageID, sectionID string) error {
	return g.db.WithContext(ctx).
		Model(&model.SectionContent{}).
		Where("page_id = ? AND section_id = ?", pageID, sectionID).
		Update("is_active", false).Error
}

func (g *GormStore) CreatePageBackup(ctx context.Context, backup *model.PageBackup) error {
	return g.db.WithContext(ctx).Create(backup).Error
}

func (g *GormStore) ListPageBackups(ctx context.Context, slug, clientID string) ([]*model.PageBackup, error) {
	var backups []*model.PageBackup
	err := g.db.WithContext(ctx).
		Where("slug = ? AND client_id = ?", slug, clientID).
		Order("version desc").
		Find(&backups).Error
	return backups, err
}

func (g *GormStore) GetPageBackup(ctx context.Context, slug, clientID string, version int64) (*model.PageBackup, error) {
	var backup model.PageBackup
	err := g.db.WithContext(ctx).Where("slug = ? AND client_id = ? AND version = ?", slug, clientID, version).First(&backup).Error
	if err != nil {
		return nil, err
	}
	return &backup, nil
}

func (g *GormStore) DeletePageBackups(ctx context.Context, slug, clientID string) error {
	return g.db.WithContext(ctx).Where("slug = ? AND client_id = ?", slug, clientID).Delete(&model.PageBackup{}).Error
}

// PrunePageBackups evicts the oldest backups beyond keep, by version order.
func (g *GormStore) PrunePageBackups(ctx context.Context, slug, clientID string, keep int) error {
	var backups []*model.PageBackup
	err := g.db.WithContext(ctx).
		Where("slug = ? AND client_id = ?", slug, clientID).
		Order("version desc").
		Find(&backups).Error
	if err != nil {
		return err
	}

	if len(backups) <= keep {
		return nil
	}

	for _, backup := range backups[keep:] {
		err = g.db.WithContext(ctx).
			Unscoped().
			Where("slug = ? AND client_id = ? AND version = ?", slug, clientID, backup.Version).
			Delete(&model.PageBackup{}).Error
		if err != nil {
			return err
		}
	}

	return nil
}

func (g *GormStore) ListBackedUpPages(ctx context.Context) ([]PageKey, error) {
	var keys []PageKey
	err := g.db.WithContext(ctx).
		Model(&model.PageBackup{}).
		Distinct("slug", "client_id").
		Find(&keys).Error
	return keys, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
