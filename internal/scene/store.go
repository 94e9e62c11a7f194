package scene

import (
	"maps"
	"slices"
	"sync"
)

// Store holds the loaded scenes, at most one per id.
type Store struct {
	mu     sync.RWMutex
	scenes map[uint32]*Scene
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{scenes: make(map[uint32]*Scene)}
}

// Add registers s. It returns false when the id is taken.
func (st *Store) Add(s *Scene) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.scenes[s.id]; ok {
		return false
	}
	st.scenes[s.id] = s
	return true
}

// Get returns the scene with the given id.
func (st *Store) Get(id uint32) (*Scene, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.scenes[id]
	return s, ok
}

// Has reports whether a scene with the given id is loaded.
func (st *Store) Has(id uint32) bool {
	_, ok := st.Get(id)
	return ok
}

// Remove drops the scene without releasing it.
func (st *Store) Remove(id uint32) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.scenes[id]; !ok {
		return false
	}
	delete(st.scenes, id)
	return true
}

// IDs returns the loaded scene ids in ascending order.
func (st *Store) IDs() []uint32 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return slices.Sorted(maps.Keys(st.scenes))
}

// Scenes returns the loaded scenes ordered by id.
func (st *Store) Scenes() []*Scene {
	ids := st.IDs()
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Scene, 0, len(ids))
	for _, id := range ids {
		if s, ok := st.scenes[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Active returns the active scene with the lowest id.
func (st *Store) Active() (*Scene, bool) {
	for _, s := range st.Scenes() {
		if s.Active() {
			return s, true
		}
	}
	return nil, false
}
