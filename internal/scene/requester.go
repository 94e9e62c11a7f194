package scene

// Requester selects nodes of a scene by intersecting predicates. Each
// filter returns a new Requester; the scene is never modified.
type Requester struct {
	nodes []*Node
}

// Request starts a query over every node of s, ordered by id.
func Request(s *Scene) *Requester {
	return &Requester{nodes: s.Nodes()}
}

// Where keeps the nodes for which keep returns true.
func (r *Requester) Where(keep func(*Node) bool) *Requester {
	out := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return &Requester{nodes: out}
}

// Has keeps the nodes carrying a component of every given type.
func (r *Requester) Has(types ...string) *Requester {
	return r.Where(func(n *Node) bool {
		for _, typ := range types {
			if !n.Has(typ) {
				return false
			}
		}
		return true
	})
}

// Active keeps the active nodes.
func (r *Requester) Active() *Requester {
	return r.Where((*Node).Active)
}

// Nodes returns the selected nodes.
func (r *Requester) Nodes() []*Node { return r.nodes }

// Len returns the number of selected nodes.
func (r *Requester) Len() int { return len(r.nodes) }
