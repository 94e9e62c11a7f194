package engine

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"mini-engine/internal/graphics"
	"mini-engine/internal/profiling"
	"mini-engine/internal/scene"
)

// State is the phase a Transition is in.
type State int32

const (
	Idle State = iota
	Unloading
	Loading
	Diffing
	Evicting
	Activating
)

var stateNames = [...]string{"idle", "unloading", "loading", "diffing", "evicting", "activating"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Transition swaps the active scene and reconciles shared asset lifetime.
// Run must be called from the frame loop; State and the config accessors
// are safe from any goroutine.
type Transition struct {
	ctx    *scene.Context
	loader *Loader
	state  atomic.Int32

	mu      sync.RWMutex
	configs map[uint32]*SceneConfig
}

// NewTransition returns a transition over the given scene configs.
func NewTransition(ctx *scene.Context, configs map[uint32]*SceneConfig) *Transition {
	t := &Transition{
		ctx:     ctx,
		loader:  NewLoader(ctx),
		configs: make(map[uint32]*SceneConfig, len(configs)),
	}
	maps.Copy(t.configs, configs)
	return t
}

// State returns the current phase.
func (t *Transition) State() State { return State(t.state.Load()) }

func (t *Transition) enter(s State) {
	t.state.Store(int32(s))
}

// Loader returns the loader the transition loads scenes with.
func (t *Transition) Loader() *Loader { return t.loader }

// Config returns the config registered for a scene id.
func (t *Transition) Config(id uint32) (*SceneConfig, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cfg, ok := t.configs[id]
	return cfg, ok
}

// SetConfig registers or replaces a scene config.
func (t *Transition) SetConfig(cfg *SceneConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.configs[cfg.ID()] = cfg
}

// SceneIDs returns the ids of every known scene config in ascending order.
func (t *Transition) SceneIDs() []uint32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Sorted(maps.Keys(t.configs))
}

// Run unloads scene from (0 for none), loads scene to and evicts the
// assets of packages no remaining scene uses. It returns false when to has
// no config or fails to build; the outgoing scene stays unloaded.
func (t *Transition) Run(from, to uint32) bool {
	defer profiling.Track("engine.Transition")()
	defer t.enter(Idle)

	t.enter(Unloading)
	var outgoing []uint32
	if s, ok := t.ctx.Scenes.Get(from); ok && s.Active() {
		outgoing = t.unload(s)
	}
	// A second live copy of the incoming scene would break the one
	// object per id rule.
	if to != from {
		if s, ok := t.ctx.Scenes.Get(to); ok {
			outgoing = append(outgoing, t.unload(s)...)
		}
	}

	cfg, ok := t.Config(to)
	if !ok {
		slog.Error("scene transition failed: unknown scene", "from", from, "to", to)
		return false
	}

	t.enter(Loading)
	incoming, err := t.loader.LoadScene(cfg)
	if err != nil {
		slog.Error("scene transition failed", "from", from, "to", to, "error", err)
		return false
	}

	t.enter(Diffing)
	stale := diffResources(outgoing, incoming.Resources())

	t.enter(Evicting)
	t.evict(stale, incoming)

	t.enter(Activating)
	incoming.SetActive(true)
	if !t.ctx.Scenes.Add(incoming) {
		slog.Error("scene transition failed: scene id taken", "to", to)
		incoming.Release()
		return false
	}
	incoming.Init()

	slog.Info("scene transition", "from", from, "to", to, "name", incoming.Name(), "evicted_packages", stale)
	return true
}

func (t *Transition) unload(s *scene.Scene) []uint32 {
	s.SetActive(false)
	resources := s.Resources()
	s.Release()
	t.ctx.Scenes.Remove(s.ID())
	return resources
}

// diffResources returns the ids of from absent from to, in from's order.
func diffResources(from, to []uint32) []uint32 {
	var out []uint32
	for _, id := range from {
		if !slices.Contains(to, id) && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// evict drops the assets declared by the stale packages. Assets that a
// package of a scene still loaded (or of incoming) also declares stay
// resident.
func (t *Transition) evict(stale []uint32, incoming *scene.Scene) {
	if len(stale) == 0 {
		return
	}

	kept := incoming.Resources()
	for _, s := range t.ctx.Scenes.Scenes() {
		kept = append(kept, s.Resources()...)
	}
	var keepMeshes, keepShaders, keepTextures []uint32
	for _, id := range kept {
		p, ok := t.ctx.Packages.Get(id)
		if !ok {
			continue
		}
		m, s, tx := p.AssetIDs()
		keepMeshes = append(keepMeshes, m...)
		keepShaders = append(keepShaders, s...)
		keepTextures = append(keepTextures, tx...)
	}

	for _, id := range stale {
		if slices.Contains(kept, id) {
			continue
		}
		p, ok := t.ctx.Packages.Get(id)
		if !ok {
			continue
		}
		m, s, tx := p.AssetIDs()
		n := evictFrom(t.ctx.Meshes, m, keepMeshes) +
			evictFrom(t.ctx.Shaders, s, keepShaders) +
			evictFrom(t.ctx.Textures, tx, keepTextures)
		t.ctx.Packages.Remove(id)
		slog.Debug("evicted resource package", "id", id, "name", p.Name, "assets", n)
	}
}

func evictFrom[T graphics.Asset](store *graphics.Store[T], ids, keep []uint32) int {
	n := 0
	for _, id := range ids {
		if slices.Contains(keep, id) {
			continue
		}
		if store.Remove(id) {
			n++
		}
	}
	return n
}
