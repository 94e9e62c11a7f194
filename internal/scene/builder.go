package scene

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
)

// Builder constructs and serializes components of the types it knows.
// Unknown types yield (nil, false), never an error, so callers can fall
// through to another Builder.
type Builder interface {
	BuildFromJSON(ctx *Context, typ string, data []byte) (Component, bool)
	BuildEmpty(ctx *Context, typ, name string, node, scene uint32) (Component, bool)
	SaveJSON(c Component) ([]byte, bool)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Component)
)

func init() {
	RegisterComponent(TypeTransform, func() Component { return newTransform() })
	RegisterComponent(TypeMesh, func() Component { return &Mesh{} })
	RegisterComponent(TypeMaterial, func() Component { return &Material{} })
	RegisterComponent(TypeCamera, func() Component { return newCamera() })
	RegisterComponent(TypeFlipbookAnimation, func() Component { return &FlipbookAnimation{} })
	RegisterComponent(TypeMouseEventFilter, func() Component { return newMouseEventFilter() })
	RegisterComponent(TypeRenderScope, func() Component { return newRenderScope() })
	RegisterComponent(TypeRenderPass, func() Component { return &RenderPass{} })
	RegisterComponent(TypeLightSource, func() Component { return newLightSource() })
}

// RegisterComponent adds a type to the built-in registry. newFn returns a
// component holding the type's default field values; its JSON form must
// round-trip through encoding/json.
func RegisterComponent(typ string, newFn func() Component) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typ] = newFn
}

// RegisteredTypes returns the registered type tags in sorted order.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for typ := range registry {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}

func lookup(typ string) (func() Component, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[typ]
	return fn, ok
}

type registryBuilder struct{}

// Registry is the built-in Builder backed by RegisterComponent.
var Registry Builder = registryBuilder{}

func (registryBuilder) BuildFromJSON(ctx *Context, typ string, data []byte) (Component, bool) {
	return BuildFromJSON(ctx, typ, data)
}

func (registryBuilder) BuildEmpty(ctx *Context, typ, name string, node, scene uint32) (Component, bool) {
	return BuildEmpty(ctx, typ, name, node, scene)
}

func (registryBuilder) SaveJSON(c Component) ([]byte, bool) {
	return SaveJSON(c)
}

// BuildFromJSON builds a registered component from its scene-file entry.
func BuildFromJSON(ctx *Context, typ string, data []byte) (Component, bool) {
	newFn, ok := lookup(typ)
	if !ok {
		return nil, false
	}
	c := newFn()
	if err := json.Unmarshal(data, c); err != nil {
		slog.Warn("could not decode component", "type", typ, "error", err)
		return nil, false
	}
	b := c.core()
	active := b.active
	b.Assign(ctx, b.id, b.name, b.node, b.scene)
	b.active = active
	finish(c)
	return c, true
}

// BuildEmpty builds a registered component with default field values and
// a fresh id.
func BuildEmpty(ctx *Context, typ, name string, node, scene uint32) (Component, bool) {
	newFn, ok := lookup(typ)
	if !ok {
		return nil, false
	}
	c := newFn()
	c.core().Assign(ctx, 0, name, node, scene)
	finish(c)
	return c, true
}

// BuildEmptyOf is BuildEmpty for a type known at compile time.
func BuildEmptyOf[T any, PT interface {
	*T
	Component
}](ctx *Context, name string, node, scene uint32) (PT, bool) {
	c, ok := BuildEmpty(ctx, PT(new(T)).Type(), name, node, scene)
	if !ok {
		return nil, false
	}
	pt, ok := c.(PT)
	return pt, ok
}

// SaveJSON encodes a registered component as a scene-file entry.
func SaveJSON(c Component) ([]byte, bool) {
	if _, ok := lookup(c.Type()); !ok {
		return nil, false
	}
	data, err := json.Marshal(c)
	if err != nil {
		slog.Warn("could not encode component", "type", c.Type(), "id", c.ID(), "error", err)
		return nil, false
	}
	return data, true
}

func finish(c Component) {
	if r, ok := c.(Revalidator); ok {
		r.Revalidate()
	}
}

// buildFromJSON tries the registry, then fallback.
func buildFromJSON(ctx *Context, fallback Builder, typ string, data []byte) (Component, bool) {
	if c, ok := BuildFromJSON(ctx, typ, data); ok {
		return c, true
	}
	if _, known := lookup(typ); known || fallback == nil {
		return nil, false
	}
	return fallback.BuildFromJSON(ctx, typ, data)
}

// buildEmpty tries the registry, then fallback.
func buildEmpty(ctx *Context, fallback Builder, typ, name string, node, scene uint32) (Component, bool) {
	if c, ok := BuildEmpty(ctx, typ, name, node, scene); ok {
		return c, true
	}
	if fallback == nil {
		return nil, false
	}
	return fallback.BuildEmpty(ctx, typ, name, node, scene)
}

// saveJSON tries the registry, then fallback.
func saveJSON(c Component, fallback Builder) ([]byte, bool) {
	if data, ok := SaveJSON(c); ok {
		return data, true
	}
	if fallback == nil {
		return nil, false
	}
	return fallback.SaveJSON(c)
}

// entryType extracts the "type" tag of a component entry.
func entryType(data []byte) (string, bool) {
	var j struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &j); err != nil || j.Type == "" {
		return "", false
	}
	return j.Type, true
}
