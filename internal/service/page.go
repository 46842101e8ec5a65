package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pirouette/content/internal/blocks"
	"github.com/pirouette/content/internal/cache"
	"github.com/pirouette/content/internal/compress"
	"github.com/pirouette/content/internal/model"
	"github.com/pirouette/content/internal/queue"
	"github.com/pirouette/content/internal/resolve"
	"github.com/pirouette/content/internal/schema"
	"github.com/pirouette/content/internal/store"
)

// PageVersion is one entry of a page's version history.
type PageVersion struct {
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	Current   bool      `json:"current"`
}

// NewPageService creates a new PageService.
func NewPageService(compressor compress.Compress, compression string, store store.Store, schemas *schema.Registry, blockKinds *blocks.Registry, contentCache cache.ContentCache, updates queue.ContentQueue) *PageService {
	return &PageService{
		compress:    compressor,
		compression: compression,
		store:       store,
		schemas:     schemas,
		blocks:      blockKinds,
		cache:       contentCache,
		queue:       updates,
		resolver:    resolve.NewResolver(store, schemas, blockKinds, contentCache),
	}
}

// PageService manages page documents: resolution, validated saves with
// backup-before-write, version history, restore, delete. Persistence is
// optimistic last-write-wins; no conflict token is checked.
type PageService struct {
	compress    compress.Compress
	compression string
	store       store.Store
	schemas     *schema.Registry
	blocks      *blocks.Registry
	cache       cache.ContentCache
	queue       queue.ContentQueue
	resolver    *resolve.Resolver
}

// GetPage resolves the effective content for (slug, clientID).
func (p *PageService) GetPage(ctx context.Context, slug, clientID string) (*resolve.Resolved, error) {
	if slug == "" {
		return nil, ErrSlugMissing
	}

	return p.resolver.Resolve(ctx, slug, clientID)
}

// SavePage validates data against the slug's schema and upserts the
// page document. The previous state is snapshotted into the backup
// history before the write, capped at model.MaxPageBackups.
func (p *PageService) SavePage(ctx context.Context, slug, clientID string, data map[string]interface{}, updatedBy, comment string) (*resolve.Resolved, error) {
	if slug == "" {
		return nil, ErrSlugMissing
	}

	page, err := p.schemas.Lookup(slug)
	if err != nil {
		return nil, err
	}

	// drop unknown block kinds and id-less blocks before validating
	for key, value := range data {
		if list, ok := blocks.BlockList(value); ok {
			data[key] = p.blocks.Sanitize(list)
		}
	}

	// reject before any write; the store is left untouched
	if err := page.Schema.Validate(asValue(data)); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	encoded, err := p.compress.Encode(raw)
	if err != nil {
		return nil, err
	}

	var saved *model.PageContent
	err = p.store.Transaction(ctx, func(tx store.Store) error {
		existing, err := tx.GetPageContent(ctx, slug, clientID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// fall back to the legacy unscoped row as the update target
			existing, err = tx.GetLegacyPageContent(ctx, slug)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing == nil {
			saved = &model.PageContent{
				Slug:        slug,
				ClientID:    clientID,
				Version:     1,
				Data:        string(encoded),
				Compression: p.compression,
			}
			return tx.CreatePageContent(ctx, saved)
		}

		logrus.Infof("creating backup for page %q version %d", slug, existing.Version)
		err = tx.CreatePageBackup(ctx, &model.PageBackup{
			Slug:        slug,
			ClientID:    clientID,
			Version:     existing.Version,
			Data:        existing.Data,
			UpdatedBy:   updatedBy,
			Comment:     comment,
			Compression: existing.Compression,
		})
		if err != nil {
			return err
		}

		if err := tx.PrunePageBackups(ctx, slug, clientID, model.MaxPageBackups); err != nil {
			return err
		}

		existing.ClientID = clientID // adopting a legacy row scopes it
		existing.Version = existing.Version + 1
		existing.Data = string(encoded)
		existing.Compression = p.compression
		saved = existing

		return tx.UpdatePageContent(ctx, existing)
	})
	if err != nil {
		return nil, err
	}

	// read-your-writes within the session
	if cerr := p.cache.SetPage(ctx, saved); cerr != nil {
		logrus.Errorf("content cache write failed: %v", cerr)
	}

	if p.queue != nil {
		if qerr := p.queue.PublishUpdate(ctx, saved); qerr != nil {
			logrus.Errorf("content update publish failed: %v", qerr)
		}
	}

	return &resolve.Resolved{
		Slug:     slug,
		ClientID: clientID,
		Data:     data,
		Version:  saved.Version,
		Exists:   true,
	}, nil
}

// DeletePage removes the page document and its whole version history.
func (p *PageService) DeletePage(ctx context.Context, slug, clientID string) error {
	if slug == "" {
		return ErrSlugMissing
	}

	err := p.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.DeletePageContent(ctx, slug, clientID); err != nil {
			return err
		}
		return tx.DeletePageBackups(ctx, slug, clientID)
	})
	if err != nil {
		return err
	}

	if cerr := p.cache.InvalidatePage(ctx, slug, clientID); cerr != nil {
		logrus.Errorf("content cache invalidate failed: %v", cerr)
	}

	return nil
}

// ListPageVersions lists the current version plus the backup history,
// newest first.
func (p *PageService) ListPageVersions(ctx context.Context, slug, clientID string) ([]PageVersion, error) {
	current, err := p.store.GetPageContent(ctx, slug, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	backups, err := p.store.ListPageBackups(ctx, slug, clientID)
	if err != nil {
		return nil, err
	}

	versions := []PageVersion{{
		Version:   current.Version,
		CreatedAt: current.UpdatedAt,
		Current:   true,
	}}
	for _, backup := range backups {
		versions = append(versions, PageVersion{
			Version:   backup.Version,
			CreatedAt: backup.CreatedAt,
			UpdatedBy: backup.UpdatedBy,
			Comment:   backup.Comment,
		})
	}

	return versions, nil
}

// GetPageVersion returns the payload of one historical version. The
// current version is served from the live document.
func (p *PageService) GetPageVersion(ctx context.Context, slug, clientID string, version int64) (map[string]interface{}, error) {
	current, err := p.store.GetPageContent(ctx, slug, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	if current.Version == version {
		return resolve.DecodeData(current)
	}

	backup, err := p.store.GetPageBackup(ctx, slug, clientID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}

	return decodeBackup(backup)
}

// RestorePageVersion writes a historical version back as a new current
// version, backing up the pre-restore state first.
func (p *PageService) RestorePageVersion(ctx context.Context, slug, clientID string, version int64) (*resolve.Resolved, error) {
	var restored *model.PageContent
	var data map[string]interface{}

	err := p.store.Transaction(ctx, func(tx store.Store) error {
		current, err := tx.GetPageContent(ctx, slug, clientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		backup, err := tx.GetPageBackup(ctx, slug, clientID, version)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVersionNotFound
			}
			return err
		}

		err = tx.CreatePageBackup(ctx, &model.PageBackup{
			Slug:        slug,
			ClientID:    clientID,
			Version:     current.Version,
			Data:        current.Data,
			Comment:     "pre-restore snapshot",
			Compression: current.Compression,
		})
		if err != nil {
			return err
		}

		if err := tx.PrunePageBackups(ctx, slug, clientID, model.MaxPageBackups); err != nil {
			return err
		}

		current.Version = current.Version + 1
		current.Data = backup.Data
		current.Compression = backup.Compression
		restored = current

		data, err = decodeBackup(backup)
		if err != nil {
			return err
		}

		return tx.UpdatePageContent(ctx, current)
	})
	if err != nil {
		return nil, err
	}

	if cerr := p.cache.SetPage(ctx, restored); cerr != nil {
		logrus.Errorf("content cache write failed: %v", cerr)
	}

	return &resolve.Resolved{
		Slug:     slug,
		ClientID: clientID,
		Data:     data,
		Version:  restored.Version,
		Exists:   true,
	}, nil
}

func decodeBackup(backup *model.PageBackup) (map[string]interface{}, error) {
	codec := compress.ByName(backup.Compression)
	raw, err := codec.Decode([]byte(backup.Data))
	if err != nil {
		return nil, ErrDataCorrupted
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrDataCorrupted
	}

	return data, nil
}

func asValue(data map[string]interface{}) interface{} {
	if data == nil {
		return nil
	}
	return data
}
