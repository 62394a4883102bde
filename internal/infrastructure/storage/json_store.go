// Package storage keeps the local index as plain JSON documents on a filesystem:
// <collection>/index.json lists member ids, <collection>/items/<id>.json holds one
// candidate, style-guides/<channel>.json holds one aggregated style guide.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/tastelens/backend/internal/domain"
)

const (
	indexFile      = "index.json"
	itemsDir       = "items"
	styleGuidesDir = "style-guides"
)

type indexDocument struct {
	IDs []string `json:"ids"`
}

// JSONStore implements domain.IndexRepository over an afero filesystem
type JSONStore struct {
	fs afero.Fs
	mu sync.Mutex // serialises index.json read-modify-write
}

// NewJSONStore roots a store at dir on the OS filesystem
func NewJSONStore(dir string) *JSONStore {
	return NewJSONStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewJSONStoreFs wraps any afero filesystem; tests pass afero.NewMemMapFs()
func NewJSONStoreFs(fs afero.Fs) *JSONStore {
	return &JSONStore{fs: fs}
}

// ListCollections returns every collection that has an index document
func (s *JSONStore) ListCollections(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, "/")
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	var collections []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == styleGuidesDir {
			continue
		}
		if ok, _ := afero.Exists(s.fs, path.Join("/", e.Name(), indexFile)); ok {
			collections = append(collections, e.Name())
		}
	}
	sort.Strings(collections)
	return collections, nil
}

// ListIDs returns the member ids of a collection in insertion order
func (s *JSONStore) ListIDs(ctx context.Context, collection string) ([]string, error) {
	if err := validName(collection); err != nil {
		return nil, err
	}
	var doc indexDocument
	if err := s.readJSON(path.Join("/", collection, indexFile), &doc); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc.IDs, nil
}

// GetCandidate reads one indexed item
func (s *JSONStore) GetCandidate(ctx context.Context, collection, id string) (*domain.Candidate, error) {
	if err := validName(collection); err != nil {
		return nil, err
	}
	if err := validName(id); err != nil {
		return nil, err
	}
	var c domain.Candidate
	if err := s.readJSON(itemPath(collection, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SaveCandidate writes an item, replacing any previous version, and registers its id
func (s *JSONStore) SaveCandidate(ctx context.Context, collection string, candidate *domain.Candidate) error {
	if candidate == nil {
		return fmt.Errorf("%w: nil candidate", domain.ErrInvalidRequest)
	}
	if err := validName(collection); err != nil {
		return err
	}
	if err := validName(candidate.ID); err != nil {
		return err
	}

	if err := s.writeJSON(itemPath(collection, candidate.ID), candidate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	indexPath := path.Join("/", collection, indexFile)
	var doc indexDocument
	if err := s.readJSON(indexPath, &doc); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	for _, id := range doc.IDs {
		if id == candidate.ID {
			return nil
		}
	}
	doc.IDs = append(doc.IDs, candidate.ID)
	return s.writeJSON(indexPath, doc)
}

// LoadCandidates reads every item listed in a collection's index.
// Ids whose item file has gone missing are skipped.
func (s *JSONStore) LoadCandidates(ctx context.Context, collection string) ([]domain.Candidate, error) {
	ids, err := s.ListIDs(ctx, collection)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := s.GetCandidate(ctx, collection, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	return candidates, nil
}

// SaveStyleGuide writes a channel's style guide
func (s *JSONStore) SaveStyleGuide(ctx context.Context, channel string, guide *domain.AggregatedStyleGuide) error {
	if err := validName(channel); err != nil {
		return err
	}
	return s.writeJSON(path.Join("/", styleGuidesDir, channel+".json"), guide)
}

// GetStyleGuide reads a channel's style guide
func (s *JSONStore) GetStyleGuide(ctx context.Context, channel string) (*domain.AggregatedStyleGuide, error) {
	if err := validName(channel); err != nil {
		return nil, err
	}
	var guide domain.AggregatedStyleGuide
	if err := s.readJSON(path.Join("/", styleGuidesDir, channel+".json"), &guide); err != nil {
		return nil, err
	}
	return &guide, nil
}

func itemPath(collection, id string) string {
	return path.Join("/", collection, itemsDir, id+".json")
}

func (s *JSONStore) readJSON(p string, v any) error {
	data, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, p)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", p, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}
	return nil
}

func (s *JSONStore) writeJSON(p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path.Dir(p), err)
	}

	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		return fmt.Errorf("rename %s: %w", p, err)
	}
	return nil
}

// validName rejects empty names and anything that could escape the store root
func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid name %q", domain.ErrInvalidRequest, name)
	}
	return nil
}
