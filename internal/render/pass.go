// Package render draws scenes. The Renderer selects the renderable nodes
// and the camera of a scene and hands each node to the render pass its
// render_pass marker names.
package render

import (
	"maps"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"mini-engine/internal/scene"
)

// Pass names of the built-in passes.
const (
	PassBase  = "base"
	PassLight = "light"
)

// Pass draws one node for the frame being rendered.
type Pass interface {
	Name() string
	Draw(ctx *scene.Context, f *Frame, n *scene.Node)
}

// PassStore is a name-keyed registry of render passes.
type PassStore struct {
	mu     sync.RWMutex
	passes map[string]Pass
}

// NewPassStore returns a store holding the base and light passes.
func NewPassStore() *PassStore {
	s := &PassStore{passes: make(map[string]Pass)}
	base := &BasePass{}
	s.Register(base)
	s.Register(&LightPass{Base: base})
	return s
}

// Register adds or replaces the pass under its name.
func (s *PassStore) Register(p Pass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passes[p.Name()] = p
}

// Get returns the pass registered under name.
func (s *PassStore) Get(name string) (Pass, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.passes[name]
	return p, ok
}

// Remove drops a pass.
func (s *PassStore) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.passes[name]; !ok {
		return false
	}
	delete(s.passes, name)
	return true
}

// Names returns the registered pass names in sorted order.
func (s *PassStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.passes))
}

// Frame is the per-frame state passes draw with.
type Frame struct {
	Scene      *scene.Scene
	Camera     *scene.Camera
	Eye        mgl32.Vec3
	View       mgl32.Mat4
	Projection mgl32.Mat4

	lightDone bool
	light     *scene.LightSource
	lightPos  mgl32.Vec3
}

// Light returns the scene's light source and its absolute position: the
// active light with the lowest component id on an active node. The lookup
// runs once per frame.
func (f *Frame) Light() (*scene.LightSource, mgl32.Vec3, bool) {
	if !f.lightDone {
		f.lightDone = true
		f.light, f.lightPos = findLight(f.Scene)
	}
	return f.light, f.lightPos, f.light != nil
}

func findLight(s *scene.Scene) (*scene.LightSource, mgl32.Vec3) {
	for _, c := range s.Components() {
		l, ok := c.(*scene.LightSource)
		if !ok || !l.Active() {
			continue
		}
		n, ok := s.Node(l.Node())
		if !ok || !n.Active() {
			continue
		}
		var pos mgl32.Vec3
		if tr, ok := scene.ComponentOf[*scene.Transform](n); ok {
			pos = absolutePosition(tr)
		}
		return l, pos
	}
	return nil, mgl32.Vec3{}
}

func absolutePosition(tr *scene.Transform) mgl32.Vec3 {
	pos := tr.Position()
	for _, a := range tr.Ancestors() {
		pos = pos.Add(a.Position())
	}
	return pos
}
