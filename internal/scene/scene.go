package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// ErrRootMissing is returned when a scene's root id does not resolve.
var ErrRootMissing = errors.New("scene: root node missing")

// ErrCycle is returned when a node is its own ancestor.
var ErrCycle = errors.New("scene: node hierarchy has a cycle")

// Scene owns one complete node and component graph.
type Scene struct {
	id         uint32
	name       string
	root       uint32
	nodes      map[uint32]*Node
	components map[uint32]Component
	resources  []uint32

	active      bool
	dirty       bool
	initialized bool

	ctx *Context
}

// New returns an empty scene.
func New(ctx *Context, id uint32, name string) *Scene {
	return &Scene{
		id:         id,
		name:       name,
		nodes:      make(map[uint32]*Node),
		components: make(map[uint32]Component),
		ctx:        ctx,
	}
}

func (s *Scene) ID() uint32        { return s.id }
func (s *Scene) Name() string      { return s.name }
func (s *Scene) Root() uint32      { return s.root }
func (s *Scene) Active() bool      { return s.active }
func (s *Scene) Dirty() bool       { return s.dirty }
func (s *Scene) Initialized() bool { return s.initialized }
func (s *Scene) Context() *Context { return s.ctx }

func (s *Scene) SetName(name string)   { s.name = name }
func (s *Scene) SetActive(active bool) { s.active = active }
func (s *Scene) ClearDirty()           { s.dirty = false }

// CreateRoot creates a parentless node and makes it the root.
func (s *Scene) CreateRoot(name string) *Node {
	n := s.newNode(0, name, 0)
	s.root = n.id
	return n
}

// SetRoot makes an existing node the root.
func (s *Scene) SetRoot(id uint32) bool {
	if _, ok := s.nodes[id]; !ok {
		return false
	}
	s.root = id
	return true
}

// RootNode returns the root node.
func (s *Scene) RootNode() (*Node, bool) {
	return s.Node(s.root)
}

func (s *Scene) newNode(id uint32, name string, parent uint32) *Node {
	if id == 0 {
		id = NextID()
	} else {
		ReserveID(id)
	}
	n := &Node{
		id:     id,
		name:   name,
		parent: parent,
		scene:  s.id,
		active: true,
		sc:     s,
	}
	s.nodes[id] = n
	return n
}

// Node returns the node with the given id.
func (s *Scene) Node(id uint32) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// NodeByName returns the node named name, lowest id first.
func (s *Scene) NodeByName(name string) (*Node, bool) {
	for _, id := range s.NodeIDs() {
		if n := s.nodes[id]; n.name == name {
			return n, true
		}
	}
	return nil, false
}

// Component returns the component with the given id.
func (s *Scene) Component(id uint32) (Component, bool) {
	c, ok := s.components[id]
	return c, ok
}

// ComponentByName returns the component named name, lowest id first.
func (s *Scene) ComponentByName(name string) (Component, bool) {
	for _, id := range s.ComponentIDs() {
		if c := s.components[id]; c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// NodeIDs returns the node ids in ascending order.
func (s *Scene) NodeIDs() []uint32 {
	return slices.Sorted(maps.Keys(s.nodes))
}

// ComponentIDs returns the component ids in ascending order.
func (s *Scene) ComponentIDs() []uint32 {
	return slices.Sorted(maps.Keys(s.components))
}

// Nodes returns the nodes ordered by id.
func (s *Scene) Nodes() []*Node {
	ids := s.NodeIDs()
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = s.nodes[id]
	}
	return out
}

// Components returns the components ordered by id.
func (s *Scene) Components() []Component {
	ids := s.ComponentIDs()
	out := make([]Component, len(ids))
	for i, id := range ids {
		out[i] = s.components[id]
	}
	return out
}

// Resources returns the resource package ids the scene depends on.
func (s *Scene) Resources() []uint32 { return slices.Clone(s.resources) }

// AddResource records a resource package dependency. Duplicates are
// ignored and reported as false.
func (s *Scene) AddResource(id uint32) bool {
	if slices.Contains(s.resources, id) {
		return false
	}
	s.resources = append(s.resources, id)
	return true
}

func (s *Scene) addComponent(c Component) {
	b := c.core()
	b.scene = s.id
	b.sc = s
	if b.ctx == nil {
		b.ctx = s.ctx
	}
	s.components[b.id] = c
}

func (s *Scene) removeComponent(id uint32) {
	c, ok := s.components[id]
	if !ok {
		return
	}
	delete(s.components, id)
	if d, ok := c.(Disposer); ok {
		d.Dispose()
	}
	c.core().sc = nil
}

// RemoveNode removes the node, every descendant and every component any
// of them owns, and detaches the node from its parent.
func (s *Scene) RemoveNode(id uint32) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	s.detach(n)
	s.removeSubtree(n)
	if s.root == id {
		s.root = 0
	}
	return true
}

// detach unlinks n from its parent's children.
func (s *Scene) detach(n *Node) {
	if parent, ok := s.nodes[n.parent]; ok {
		if i := slices.Index(parent.children, n.id); i >= 0 {
			parent.children = slices.Delete(parent.children, i, i+1)
		}
	}
	n.parent = 0
}

func (s *Scene) removeSubtree(n *Node) {
	for _, child := range n.children {
		if c, ok := s.nodes[child]; ok {
			s.removeSubtree(c)
		}
	}
	for _, cid := range n.components {
		s.removeComponent(cid)
	}
	n.children = nil
	n.components = nil
	delete(s.nodes, n.id)
	n.sc = nil
}

// Init runs the second construction phase on every component in id order.
func (s *Scene) Init() {
	for _, c := range s.Components() {
		c.Init()
	}
	s.initialized = true
}

// Update advances every active and valid component by dt milliseconds, in
// id order. The scene becomes dirty when any of them reports dirty.
func (s *Scene) Update(dt float64) {
	for _, c := range s.Components() {
		// A component may remove others while updating.
		if _, ok := s.components[c.ID()]; !ok {
			continue
		}
		if !c.Active() || !c.Valid() {
			continue
		}
		c.Update(dt)
		if c.Dirty() {
			s.dirty = true
		}
	}
}

// Release disposes every component and empties the scene.
func (s *Scene) Release() {
	for _, id := range s.ComponentIDs() {
		s.removeComponent(id)
	}
	for _, n := range s.nodes {
		n.sc = nil
	}
	clear(s.nodes)
	s.root = 0
	s.active = false
	s.initialized = false
}

// Validate checks that the root and every child and component id resolve,
// that parent fields and children lists agree and that the hierarchy has
// no cycle.
func (s *Scene) Validate() error {
	if _, ok := s.nodes[s.root]; !ok {
		return fmt.Errorf("%w: scene %d root %d", ErrRootMissing, s.id, s.root)
	}
	for _, n := range s.Nodes() {
		for _, child := range n.children {
			c, ok := s.nodes[child]
			if !ok {
				return fmt.Errorf("scene %d: node %d references missing child %d", s.id, n.id, child)
			}
			if c.parent != n.id {
				return fmt.Errorf("scene %d: node %d lists child %d whose parent is %d", s.id, n.id, child, c.parent)
			}
		}
		if n.parent != 0 {
			p, ok := s.nodes[n.parent]
			if !ok || !slices.Contains(p.children, n.id) {
				return fmt.Errorf("scene %d: node %d is not listed by its parent %d", s.id, n.id, n.parent)
			}
		}
		steps := 0
		for p := s.nodes[n.parent]; p != nil; p = s.nodes[p.parent] {
			if steps++; steps > len(s.nodes) {
				return fmt.Errorf("%w: scene %d node %d", ErrCycle, s.id, n.id)
			}
		}
		for _, cid := range n.components {
			if _, ok := s.components[cid]; !ok {
				return fmt.Errorf("scene %d: node %d references missing component %d", s.id, n.id, cid)
			}
		}
	}
	return nil
}

// pruneDangling drops references that do not resolve and warns about them.
func (s *Scene) pruneDangling() {
	for _, n := range s.Nodes() {
		n.children = slices.DeleteFunc(n.children, func(id uint32) bool {
			_, ok := s.nodes[id]
			if !ok {
				slog.Warn("dropping missing child", "scene", s.id, "node", n.id, "child", id)
			}
			return !ok
		})
		n.components = slices.DeleteFunc(n.components, func(id uint32) bool {
			_, ok := s.components[id]
			if !ok {
				slog.Warn("dropping missing component", "scene", s.id, "node", n.id, "component", id)
			}
			return !ok
		})
	}
}
