package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// Document is the scene file format.
type Document struct {
	ID         uint32            `json:"id"`
	Name       string            `json:"name"`
	Root       uint32            `json:"root"`
	Nodes      []NodeDocument    `json:"nodes"`
	Components []json.RawMessage `json:"components"`
	Resources  []ResourceRef     `json:"resources"`
}

// NodeDocument is one node entry of a scene file.
type NodeDocument struct {
	ID         uint32   `json:"id"`
	Name       string   `json:"name"`
	Parent     uint32   `json:"parent"`
	OwnerScene uint32   `json:"owner_scene"`
	Children   []uint32 `json:"children"`
	Components []uint32 `json:"components"`
	Active     *bool    `json:"active,omitempty"`
}

// ResourceRef names a resource package the scene depends on.
type ResourceRef struct {
	ID uint32 `json:"id"`
}

// ParseDocument decodes a scene file.
func ParseDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("could not decode scene: %w", err)
	}
	return &doc, nil
}

// FromDocument builds a scene from its document. Components no builder
// knows are skipped with a warning, as are references that do not resolve.
// A missing root is an error. The returned scene is not initialized.
func FromDocument(ctx *Context, doc *Document) (*Scene, error) {
	s := New(ctx, doc.ID, doc.Name)
	var fallback Builder
	if ctx != nil {
		fallback = ctx.Fallback
	}

	for _, nd := range doc.Nodes {
		if nd.ID == 0 {
			slog.Warn("skipping node without id", "scene", doc.ID, "name", nd.Name)
			continue
		}
		if _, dup := s.nodes[nd.ID]; dup {
			slog.Warn("skipping duplicate node", "scene", doc.ID, "node", nd.ID)
			continue
		}
		n := s.newNode(nd.ID, nd.Name, nd.Parent)
		n.children = slices.Clone(nd.Children)
		n.components = slices.Clone(nd.Components)
		n.active = nd.Active == nil || *nd.Active
	}

	for _, raw := range doc.Components {
		typ, ok := entryType(raw)
		if !ok {
			slog.Warn("skipping component without type", "scene", doc.ID)
			continue
		}
		c, ok := buildFromJSON(ctx, fallback, typ, raw)
		if !ok {
			slog.Warn("skipping component", "scene", doc.ID, "type", typ)
			continue
		}
		if _, dup := s.components[c.ID()]; dup {
			slog.Warn("skipping duplicate component", "scene", doc.ID, "component", c.ID())
			continue
		}
		s.addComponent(c)
	}

	s.root = doc.Root
	s.pruneDangling()
	s.reconcileHierarchy()
	s.attachComponents()

	for _, ref := range doc.Resources {
		s.AddResource(ref.ID)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// reconcileHierarchy makes parent fields and children lists agree. The
// first node listing a child owns it; unlisted nodes join the parent they
// name. Self edges, edges into the root and cycles are dropped.
func (s *Scene) reconcileHierarchy() {
	owner := make(map[uint32]uint32)
	for _, n := range s.Nodes() {
		n.children = slices.DeleteFunc(n.children, func(id uint32) bool {
			_, claimed := owner[id]
			if id == n.id || id == s.root || claimed {
				slog.Warn("dropping child reference", "scene", s.id, "node", n.id, "child", id)
				return true
			}
			owner[id] = n.id
			return false
		})
	}
	for _, n := range s.Nodes() {
		if p, ok := owner[n.id]; ok {
			n.parent = p
			continue
		}
		p, ok := s.nodes[n.parent]
		if !ok || p == n || n.id == s.root {
			n.parent = 0
			continue
		}
		p.children = append(p.children, n.id)
		owner[n.id] = p.id
	}

	const (
		visiting = 1
		done     = 2
	)
	state := make(map[uint32]int)
	for _, n := range s.Nodes() {
		var path []*Node
		cur := n
		for cur != nil && state[cur.id] == 0 {
			state[cur.id] = visiting
			path = append(path, cur)
			cur = s.nodes[cur.parent]
		}
		if cur != nil && state[cur.id] == visiting {
			slog.Warn("breaking node cycle", "scene", s.id, "node", cur.id, "parent", cur.parent)
			s.detach(cur)
		}
		for _, p := range path {
			state[p.id] = done
		}
	}
}

// attachComponents makes node component lists and component owners agree.
// The node listing a component owns it; unlisted components join the node
// they name. A node keeps one component per type.
func (s *Scene) attachComponents() {
	listed := make(map[uint32]bool)
	for _, n := range s.Nodes() {
		seen := make(map[string]bool)
		n.components = slices.DeleteFunc(n.components, func(id uint32) bool {
			c := s.components[id]
			if listed[id] || seen[c.Type()] {
				slog.Warn("dropping component reference", "scene", s.id, "node", n.id, "component", id)
				return true
			}
			listed[id] = true
			seen[c.Type()] = true
			c.core().node = n.id
			return false
		})
	}
	for _, c := range s.Components() {
		if listed[c.ID()] {
			continue
		}
		n, ok := s.nodes[c.Node()]
		if !ok || n.Has(c.Type()) {
			slog.Warn("dropping orphan component", "scene", s.id, "component", c.ID(), "type", c.Type())
			s.removeComponent(c.ID())
			continue
		}
		n.components = append(n.components, c.ID())
	}
}

// Document returns the scene's file form. Components no builder can save
// are left out with a warning.
func (s *Scene) Document() *Document {
	doc := &Document{
		ID:   s.id,
		Name: s.name,
		Root: s.root,
	}
	for _, n := range s.Nodes() {
		active := n.active
		doc.Nodes = append(doc.Nodes, NodeDocument{
			ID:         n.id,
			Name:       n.name,
			Parent:     n.parent,
			OwnerScene: s.id,
			Children:   slices.Clone(n.children),
			Components: slices.Clone(n.components),
			Active:     &active,
		})
	}

	var fallback Builder
	if s.ctx != nil {
		fallback = s.ctx.Fallback
	}
	for _, c := range s.Components() {
		data, ok := saveJSON(c, fallback)
		if !ok {
			slog.Warn("component not saved", "scene", s.id, "component", c.ID(), "type", c.Type())
			continue
		}
		doc.Components = append(doc.Components, data)
	}
	for _, id := range s.resources {
		doc.Resources = append(doc.Resources, ResourceRef{ID: id})
	}
	return doc
}

// Save writes the scene as indented JSON.
func (s *Scene) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Document()); err != nil {
		return fmt.Errorf("could not encode scene %d: %w", s.id, err)
	}
	return nil
}

// Load reads a scene file and builds the scene.
func Load(ctx *Context, r io.Reader) (*Scene, error) {
	doc, err := ParseDocument(r)
	if err != nil {
		return nil, err
	}
	return FromDocument(ctx, doc)
}
