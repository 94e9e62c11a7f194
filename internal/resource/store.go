package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// ErrUnknownPackage is returned by Resolve when the manifest has no path
// for the requested id.
var ErrUnknownPackage = errors.New("resource: unknown package id")

type manifest struct {
	Packages []struct {
		ID   uint32 `json:"id"`
		Path string `json:"path"`
	} `json:"packages"`
}

// Store caches parsed packages by id and keeps the id -> path index loaded
// from the manifest.
type Store struct {
	mu       sync.RWMutex
	packages map[uint32]*Package
	paths    map[uint32]string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		packages: make(map[uint32]*Package),
		paths:    make(map[uint32]string),
	}
}

// LoadManifest reads the manifest at path and merges its entries into the
// id -> path index. Paths are relative to the manifest file.
func (s *Store) LoadManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read resource manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("could not unmarshal resource manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range m.Packages {
		if p.ID == 0 || p.Path == "" {
			slog.Warn("skipping manifest entry", "id", p.ID, "path", p.Path)
			continue
		}
		full := p.Path
		if !filepath.IsAbs(full) {
			full = filepath.Join(dir, full)
		}
		s.paths[p.ID] = full
	}
	return nil
}

// SetPath registers or replaces the file path of a package id.
func (s *Store) SetPath(id uint32, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[id] = path
}

// Path returns the manifest path of a package id.
func (s *Store) Path(id uint32) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[id]
	return p, ok
}

// Get returns a resident package without resolving it.
func (s *Store) Get(id uint32) (*Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.packages[id]
	return p, ok
}

// Has reports whether the package is resident.
func (s *Store) Has(id uint32) bool {
	_, ok := s.Get(id)
	return ok
}

// Add caches p under id, replacing any previous package.
func (s *Store) Add(id uint32, p *Package) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[id] = p
}

// Remove drops a cached package. The manifest entry is kept.
func (s *Store) Remove(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[id]; !ok {
		return false
	}
	delete(s.packages, id)
	return true
}

// Resolve returns the package with the given id, parsing and caching it on
// first use.
func (s *Store) Resolve(id uint32) (*Package, error) {
	if p, ok := s.Get(id); ok {
		return p, nil
	}
	path, ok := s.Path(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPackage, id)
	}
	p, err := LoadPackage(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have resolved it meanwhile.
	if existing, ok := s.packages[id]; ok {
		return existing, nil
	}
	s.packages[id] = p
	slog.Debug("resource package loaded", "id", id, "name", p.Name)
	return p, nil
}

// IDs returns the resident package ids in ascending order.
func (s *Store) IDs() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint32, 0, len(s.packages))
	for id := range s.packages {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
