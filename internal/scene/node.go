package scene

import (
	"log/slog"
	"slices"
)

// Node is a hierarchy unit. It holds ids of its children and components;
// the owning Scene holds the objects.
type Node struct {
	id         uint32
	name       string
	parent     uint32
	scene      uint32
	children   []uint32
	components []uint32
	active     bool

	sc *Scene
}

func (n *Node) ID() uint32      { return n.id }
func (n *Node) Name() string    { return n.name }
func (n *Node) Parent() uint32  { return n.parent }
func (n *Node) SceneID() uint32 { return n.scene }
func (n *Node) Active() bool    { return n.active }

func (n *Node) SetName(name string) { n.name = name }

// Scene returns the owning scene.
func (n *Node) Scene() *Scene { return n.sc }

// Children returns a copy of the ordered child id set.
func (n *Node) Children() []uint32 { return slices.Clone(n.children) }

// Components returns a copy of the ordered component id set.
func (n *Node) Components() []uint32 { return slices.Clone(n.components) }

// ParentNode resolves the parent through the scene.
func (n *Node) ParentNode() (*Node, bool) {
	if n.parent == 0 || n.sc == nil {
		return nil, false
	}
	return n.sc.Node(n.parent)
}

// Component returns the attached component of type typ.
func (n *Node) Component(typ string) (Component, bool) {
	if n.sc == nil {
		return nil, false
	}
	for _, id := range n.components {
		if c, ok := n.sc.components[id]; ok && c.Type() == typ {
			return c, true
		}
	}
	return nil, false
}

// ComponentOf returns the first component of n with concrete type T.
func ComponentOf[T Component](n *Node) (T, bool) {
	var zero T
	if n == nil || n.sc == nil {
		return zero, false
	}
	for _, id := range n.components {
		if t, ok := n.sc.components[id].(T); ok {
			return t, true
		}
	}
	return zero, false
}

// Has reports whether a component of type typ is attached.
func (n *Node) Has(typ string) bool {
	_, ok := n.Component(typ)
	return ok
}

// AddChild creates a child node and registers it in the scene.
func (n *Node) AddChild(name string) (*Node, bool) {
	if n.sc == nil {
		return nil, false
	}
	child := n.sc.newNode(0, name, n.id)
	n.children = append(n.children, child.id)
	return child, true
}

// AddComponent attaches an empty component of type typ. The built-in
// registry is asked first, then fallback, then the context's fallback.
// It fails when the node already has a component of that type or no
// builder knows the type. If the scene is already initialized the new
// component is initialized too.
func (n *Node) AddComponent(typ, name string, fallback Builder) (Component, bool) {
	if n.sc == nil || n.Has(typ) {
		return nil, false
	}
	if fallback == nil && n.sc.ctx != nil {
		fallback = n.sc.ctx.Fallback
	}
	c, ok := buildEmpty(n.sc.ctx, fallback, typ, name, n.id, n.sc.id)
	if !ok {
		slog.Warn("no builder for component type", "type", typ, "node", n.id)
		return nil, false
	}
	c.core().active = n.active
	n.sc.addComponent(c)
	n.components = append(n.components, c.ID())
	if n.sc.initialized {
		c.Init()
	}
	return c, true
}

// RemoveChild removes the child and its whole subtree from the scene.
func (n *Node) RemoveChild(id uint32) bool {
	if n.sc == nil || !slices.Contains(n.children, id) {
		return false
	}
	return n.sc.RemoveNode(id)
}

// RemoveComponent detaches the component and drops it from the scene.
func (n *Node) RemoveComponent(id uint32) bool {
	i := slices.Index(n.components, id)
	if i < 0 {
		return false
	}
	n.components = slices.Delete(n.components, i, i+1)
	if n.sc != nil {
		n.sc.removeComponent(id)
	}
	return true
}

// SetActive sets the flag on the node, every attached component and the
// whole subtree.
func (n *Node) SetActive(active bool) {
	n.active = active
	if n.sc == nil {
		return
	}
	for _, id := range n.components {
		if c, ok := n.sc.components[id]; ok {
			c.SetActive(active)
		}
	}
	for _, id := range n.children {
		if child, ok := n.sc.nodes[id]; ok {
			child.SetActive(active)
		}
	}
}

// Clone deep-copies the subtree rooted at n with fresh ids and links the
// copy under newParent. Component fields are copied through the builders'
// save/build round trip, plus CloneInto for components that implement
// Cloner. Nothing is registered unless the whole copy
// succeeds.
func (n *Node) Clone(newParent uint32) (*Node, bool) {
	sc := n.sc
	if sc == nil {
		return nil, false
	}
	parent, ok := sc.Node(newParent)
	if !ok {
		return nil, false
	}
	var fallback Builder
	if sc.ctx != nil {
		fallback = sc.ctx.Fallback
	}

	var (
		nodes   []*Node
		comps   []Component
		nodeIDs = make(map[uint32]uint32)
		compIDs = make(map[uint32]uint32)
	)

	var copyNode func(src *Node, parentID uint32) bool
	copyNode = func(src *Node, parentID uint32) bool {
		dst := &Node{
			id:     NextID(),
			name:   src.name,
			parent: parentID,
			scene:  sc.id,
			active: src.active,
			sc:     sc,
		}
		nodeIDs[src.id] = dst.id
		nodes = append(nodes, dst)

		for _, cid := range src.components {
			c, ok := sc.components[cid]
			if !ok {
				return false
			}
			data, ok := saveJSON(c, fallback)
			if !ok {
				return false
			}
			cc, ok := buildFromJSON(sc.ctx, fallback, c.Type(), data)
			if !ok {
				return false
			}
			if cl, ok := c.(Cloner); ok {
				cl.CloneInto(cc)
			}
			b := cc.core()
			b.id = NextID()
			b.node = dst.id
			b.scene = sc.id
			compIDs[cid] = b.id
			dst.components = append(dst.components, b.id)
			comps = append(comps, cc)
		}
		for _, childID := range src.children {
			child, ok := sc.nodes[childID]
			if !ok {
				return false
			}
			if !copyNode(child, dst.id) {
				return false
			}
			dst.children = append(dst.children, nodeIDs[childID])
		}
		return true
	}
	if !copyNode(n, newParent) {
		slog.Warn("clone aborted", "node", n.id, "scene", sc.id)
		return nil, false
	}

	for _, c := range comps {
		if r, ok := c.(IDRemapper); ok {
			r.RemapIDs(compIDs)
		}
	}
	for _, node := range nodes {
		sc.nodes[node.id] = node
	}
	for _, c := range comps {
		sc.addComponent(c)
	}
	root := nodes[0]
	parent.children = append(parent.children, root.id)
	if sc.initialized {
		for _, c := range comps {
			c.Init()
		}
	}
	return root, true
}
