// Package scene implements the scene graph: nodes that hold ids of child
// nodes and attached components, the Scene that owns both, the component
// builder registry and the built-in component types.
//
// A Scene is an arena. Nodes and components reference each other only by
// id and resolve through their Scene; a lookup that misses returns false.
// Construction is two-phase: components are built first and Init runs once
// the whole scene is populated, so Init may look up sibling components.
//
// The graph is not safe for concurrent mutation. Observers running on
// other goroutines must pause the frame loop first (see engine.PauseGate).
package scene

import (
	"sync/atomic"

	"mini-engine/internal/graphics"
	"mini-engine/internal/input"
	"mini-engine/internal/resource"
)

// Context is the shared engine state every scene and component can reach.
type Context struct {
	Device   graphics.Device
	Meshes   *graphics.MeshStore
	Shaders  *graphics.ShaderStore
	Textures *graphics.TextureStore
	Packages *resource.Store
	Scenes   *Store
	Input    *input.Manager

	// Fallback builds component types the built-in registry does not know.
	Fallback Builder
}

// NewContext returns a context with empty stores.
func NewContext(dev graphics.Device, in *input.Manager) *Context {
	return &Context{
		Device:   dev,
		Meshes:   graphics.NewStore[*graphics.Mesh]("mesh"),
		Shaders:  graphics.NewStore[*graphics.Shader]("shader"),
		Textures: graphics.NewStore[*graphics.Texture]("texture"),
		Packages: resource.NewStore(),
		Scenes:   NewStore(),
		Input:    in,
	}
}

var lastID atomic.Uint32

// NextID returns a fresh node/component id. Ids are never 0.
func NextID() uint32 {
	return lastID.Add(1)
}

// ReserveID makes sure NextID never returns id or anything below it. Ids
// read from scene files are reserved as they load.
func ReserveID(id uint32) {
	for {
		cur := lastID.Load()
		if id <= cur || lastID.CompareAndSwap(cur, id) {
			return
		}
	}
}
