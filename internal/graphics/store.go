package graphics

import (
	"log/slog"
	"slices"
	"sync"
)

// Asset is anything a Store can hold.
type Asset interface {
	AssetID() uint32
	AssetName() string
	// Release frees the GPU objects backing the asset.
	Release()
}

// Store indexes shared assets by id. Ownership of an asset belongs to the
// store, never to a scene: Remove is the only place an asset is released.
type Store[T Asset] struct {
	kind  string
	mu    sync.RWMutex
	items map[uint32]T
}

// MeshStore, ShaderStore and TextureStore are the three shared asset stores.
type (
	MeshStore    = Store[*Mesh]
	ShaderStore  = Store[*Shader]
	TextureStore = Store[*Texture]
)

// NewStore creates an empty store. kind is used in log messages.
func NewStore[T Asset](kind string) *Store[T] {
	return &Store[T]{
		kind:  kind,
		items: make(map[uint32]T),
	}
}

// Add registers item. It returns false when the id is already taken.
func (s *Store[T]) Add(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := item.AssetID()
	if _, ok := s.items[id]; ok {
		return false
	}
	s.items[id] = item
	return true
}

// Get returns the asset with the given id.
func (s *Store[T]) Get(id uint32) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// GetByName returns the asset named name. If several share the name the
// lowest id wins.
func (s *Store[T]) GetByName(name string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found T
		ok    bool
	)
	for id, item := range s.items {
		if item.AssetName() != name {
			continue
		}
		if !ok || id < found.AssetID() {
			found, ok = item, true
		}
	}
	return found, ok
}

// Has reports whether id is resident.
func (s *Store[T]) Has(id uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[id]
	return ok
}

// Remove releases and drops the asset. Removing an absent id is a no-op.
func (s *Store[T]) Remove(id uint32) bool {
	s.mu.Lock()
	item, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	item.Release()
	slog.Debug("asset evicted", "kind", s.kind, "id", id, "name", item.AssetName())
	return true
}

// IDs returns the resident ids in ascending order.
func (s *Store[T]) IDs() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uint32, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of resident assets.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear releases every asset.
func (s *Store[T]) Clear() {
	for _, id := range s.IDs() {
		s.Remove(id)
	}
}
