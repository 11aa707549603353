package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/esmgis/platcrawl/internal/model"
)

// ext is the file extension of stored documents.
const ext = ".pdf"

// Store is a directory-backed key-value mapping from canonical map ID to
// document bytes. It supports the only operations the crawl core needs:
// existence check, read, and write.
type Store struct {
	// dir is the absolute or relative directory holding the documents.
	dir string
}

// New opens (creating if necessary) a store at the given directory.
//
// Failure here is the one fatal error of a run: every other component
// assumes documents can be written, so the caller must abort before any
// fetch is attempted.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the expected file path for a map ID.
func (s *Store) Path(id model.MapID) string {
	return filepath.Join(s.dir, id.String()+ext)
}

// Exists reports whether a document is present in the store.
func (s *Store) Exists(id model.MapID) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Write stores a document's bytes under its canonical ID.
func (s *Store) Write(id model.MapID, content []byte) error {
	if err := os.WriteFile(s.Path(id), content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", id, err)
	}
	return nil
}

// Read returns a stored document's bytes.
func (s *Store) Read(id model.MapID) ([]byte, error) {
	data, err := os.ReadFile(s.Path(id)) //nolint:gosec // Path is derived from a validated MapID
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", id, err)
	}
	return data, nil
}

// List returns the IDs of all stored documents in ascending canonical
// order. Files that do not parse as "<community>-<sequence>.pdf" are
// ignored; the store directory may contain unrelated files.
func (s *Store) List() ([]model.MapID, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}

	ids := make([]model.MapID, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		id, err := model.ParseMapID(strings.TrimSuffix(entry.Name(), ext))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids, nil
}

// CountByCommunity buckets the stored documents by community prefix.
// This produces the grouped summary reported at the end of a run.
func (s *Store) CountByCommunity() (map[string]int, error) {
	ids, err := s.List()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, id := range ids {
		counts[id.Community()]++
	}
	return counts, nil
}
