package filestore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound is the normal result for an unseeded route.
	ErrNotFound = errors.New("no content stored for route")
	// ErrVersionNotFound is returned for an unknown version of a route.
	ErrVersionNotFound = errors.New("version not found for route")
)

// MaxVersions caps the snapshot history per route; the oldest entry is
// evicted first.
const MaxVersions = 10

// VersionRecord is one snapshot of a route's schema.
type VersionRecord struct {
	Version   int64                  `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Schema    map[string]interface{} `json:"schema"`
	Author    string                 `json:"author"`
	Comment   string                 `json:"comment,omitempty"`
}

// FileStore persists one JSON document per route under dir, with a
// sibling versions file holding the capped snapshot history.
//
// Writes are intentionally unsynchronized: concurrent saves to the same
// route race on the versions file read-modify-write and the last write
// wins. Callers accept the lost update.
type FileStore struct {
	dir string
}

func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}

	return &FileStore{dir: dir}, nil
}

// SanitizeRoute maps a route to its storage name: non-alphanumeric
// characters stripped, empty result reserved as "home".
func SanitizeRoute(route string) string {
	name := make([]rune, 0, len(route))
	for _, r := range route {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			name = append(name, r)
		}
	}

	if len(name) == 0 {
		return "home"
	}

	return string(name)
}

func (f *FileStore) contentPath(route string) string {
	return filepath.Join(f.dir, SanitizeRoute(route)+".json")
}

func (f *FileStore) versionsPath(route string) string {
	return filepath.Join(f.dir, SanitizeRoute(route)+".versions.json")
}

// Save stamps the next version into schema, appends a snapshot to the
// capped history, and overwrites the canonical file. Version numbers are
// strictly increasing per route even after evictions.
func (f *FileStore) Save(route string, schema map[string]interface{}, author, comment string) (int64, time.Time, error) {
	now := time.Now()

	versions, err := f.Versions(route)
	if err != nil {
		// a corrupt or missing history starts over; the canonical file
		// still reflects the latest accepted write
		versions = nil
	}

	var version int64 = 1
	for _, record := range versions {
		if record.Version >= version {
			version = record.Version + 1
		}
	}

	stamped := make(map[string]interface{}, len(schema)+1)
	for key, value := range schema {
		stamped[key] = value
	}
	stamped["version"] = version

	versions = append(versions, VersionRecord{
		Version:   version,
		Timestamp: now,
		Schema:    stamped,
		Author:    author,
		Comment:   comment,
	})
	if len(versions) > MaxVersions {
		versions = versions[len(versions)-MaxVersions:]
	}

	if err := f.writeJSON(f.versionsPath(route), versions); err != nil {
		return 0, now, err
	}

	if err := f.writeJSON(f.contentPath(route), stamped); err != nil {
		return 0, now, err
	}

	logrus.Infof("saved route %q as %s version %d", route, SanitizeRoute(route), version)

	return version, now, nil
}

// Load reads the canonical schema for a route. A missing file is a
// not-found result, not an error.
func (f *FileStore) Load(route string) (map[string]interface{}, error) {
	data, err := os.ReadFile(f.contentPath(route))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, err
	}

	return schema, nil
}

// Versions lists the snapshot history for a route, oldest first. A
// missing history is an empty list.
func (f *FileStore) Versions(route string) ([]VersionRecord, error) {
	data, err := os.ReadFile(f.versionsPath(route))
	if err != nil {
		if os.IsNotExist(err) {
			return []VersionRecord{}, nil
		}
		return nil, err
	}

	var versions []VersionRecord
	if err := json.Unmarshal(data, &versions); err != nil {
		return nil, err
	}

	return versions, nil
}

// Version returns the schema snapshot for one version of a route.
func (f *FileStore) Version(route string, version int64) (map[string]interface{}, error) {
	versions, err := f.Versions(route)
	if err != nil {
		return nil, err
	}

	for _, record := range versions {
		if record.Version == version {
			return record.Schema, nil
		}
	}

	return nil, ErrVersionNotFound
}

// Delete removes the canonical file and the version history, ignoring
// files that are already gone.
func (f *FileStore) Delete(route string) (time.Time, error) {
	now := time.Now()

	if err := os.Remove(f.contentPath(route)); err != nil && !os.IsNotExist(err) {
		return now, err
	}

	if err := os.Remove(f.versionsPath(route)); err != nil && !os.IsNotExist(err) {
		return now, err
	}

	return now, nil
}

func (f *FileStore) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
