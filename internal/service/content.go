package service

import (
	"time"

	"github.com/pirouette/content/internal/filestore"
)

// NewContentService creates a new ContentService over a file store.
func NewContentService(files *filestore.FileStore) *ContentService {
	return &ContentService{files: files}
}

// ContentService is the file-backed alternate deployment of the content
// store: route-keyed JSON schemas with a capped version history.
type ContentService struct {
	files *filestore.FileStore
}

// SaveContent persists a schema for a route and appends a version
// snapshot. The route is taken from the schema itself.
func (c *ContentService) SaveContent(schema map[string]interface{}, author, comment string) (int64, time.Time, error) {
	route, ok := schema["route"].(string)
	if !ok || route == "" {
		return 0, time.Time{}, ErrRouteMissing
	}

	return c.files.Save(route, schema, author, comment)
}

// LoadContent reads the canonical schema for a route.
func (c *ContentService) LoadContent(route string) (map[string]interface{}, error) {
	if route == "" {
		return nil, ErrRouteMissing
	}

	return c.files.Load(route)
}

// ListContentVersions lists the version history for a route.
func (c *ContentService) ListContentVersions(route string) ([]filestore.VersionRecord, error) {
	if route == "" {
		return nil, ErrRouteMissing
	}

	return c.files.Versions(route)
}

// GetContentVersion reads one historical schema snapshot.
func (c *ContentService) GetContentVersion(route string, version int64) (map[string]interface{}, error) {
	if route == "" {
		return nil, ErrRouteMissing
	}

	return c.files.Version(route, version)
}

// DeleteContent removes a route's canonical file and version history.
func (c *ContentService) DeleteContent(route string) (time.Time, error) {
	if route == "" {
		return time.Time{}, ErrRouteMissing
	}

	return c.files.Delete(route)
}
