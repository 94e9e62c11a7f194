package scene

// Built-in component type tags.
const (
	TypeTransform         = "transform"
	TypeMesh              = "mesh"
	TypeMaterial          = "material"
	TypeCamera            = "camera"
	TypeFlipbookAnimation = "flipbook_animation"
	TypeMouseEventFilter  = "mouse_event_filter"
	TypeRenderScope       = "render_scope"
	TypeRenderPass        = "render_pass"
	TypeLightSource       = "light_source"
)

// Component is a typed capability attached to a node. Implementations embed
// Base, which supplies identity, flags and no-op lifecycle methods.
type Component interface {
	ID() uint32
	Name() string
	Node() uint32
	Scene() uint32
	Active() bool
	SetActive(active bool)
	Valid() bool

	// Type returns the type tag the builder registry knows the component by.
	Type() string
	// Init runs once the owning scene is fully populated.
	Init()
	// Update advances the component by dt milliseconds.
	Update(dt float64)
	// Dirty reports whether the component changed since it was last consumed.
	Dirty() bool

	core() *Base
}

// Disposer is implemented by components holding registrations outside the
// scene. Dispose runs when the component leaves its scene.
type Disposer interface {
	Dispose()
}

// Revalidator is implemented by components whose validity depends on
// shared assets. Builders call Revalidate after construction.
type Revalidator interface {
	Revalidate()
}

// IDRemapper is implemented by components that reference other components
// by id. Clone calls RemapIDs with old -> new ids of the cloned subtree.
type IDRemapper interface {
	RemapIDs(ids map[uint32]uint32)
}

// Cloner is implemented by components with state their JSON form does not
// carry, such as callbacks. Clone calls CloneInto with the fresh copy.
type Cloner interface {
	CloneInto(dst Component)
}

// Base holds what every component shares.
type Base struct {
	id     uint32
	name   string
	node   uint32
	scene  uint32
	active bool
	valid  bool

	ctx *Context
	sc  *Scene
}

// Assign sets the identity of a freshly built component. A zero id draws a
// new one; any other id is reserved.
func (b *Base) Assign(ctx *Context, id uint32, name string, node, scene uint32) {
	if id == 0 {
		id = NextID()
	} else {
		ReserveID(id)
	}
	b.id = id
	b.name = name
	b.node = node
	b.scene = scene
	b.active = true
	b.valid = true
	b.ctx = ctx
}

func (b *Base) core() *Base { return b }

func (b *Base) ID() uint32    { return b.id }
func (b *Base) Name() string  { return b.name }
func (b *Base) Node() uint32  { return b.node }
func (b *Base) Scene() uint32 { return b.scene }
func (b *Base) Active() bool  { return b.active }
func (b *Base) Valid() bool   { return b.valid }

func (b *Base) SetName(name string)   { b.name = name }
func (b *Base) SetActive(active bool) { b.active = active }

// SetValid marks whether the component's references currently resolve.
func (b *Base) SetValid(valid bool) { b.valid = valid }

// Context returns the shared engine context.
func (b *Base) Context() *Context { return b.ctx }

func (b *Base) Init() {}
func (b *Base) Update(dt float64) {}
func (b *Base) Dirty() bool { return false }

// OwnerScene returns the scene the component is registered in.
func (b *Base) OwnerScene() (*Scene, bool) {
	if b.sc != nil {
		return b.sc, true
	}
	if b.ctx == nil || b.ctx.Scenes == nil {
		return nil, false
	}
	return b.ctx.Scenes.Get(b.scene)
}

// OwnerNode returns the node the component is attached to.
func (b *Base) OwnerNode() (*Node, bool) {
	sc, ok := b.OwnerScene()
	if !ok {
		return nil, false
	}
	return sc.Node(b.node)
}

// Sibling returns the component of type typ on the same node.
func (b *Base) Sibling(typ string) (Component, bool) {
	n, ok := b.OwnerNode()
	if !ok {
		return nil, false
	}
	return n.Component(typ)
}

// BaseJSON is the common part of every component entry in a scene file.
// Component types embed it in their JSON form.
type BaseJSON struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Node   uint32 `json:"owner_node"`
	Scene  uint32 `json:"owner_scene"`
	Active *bool  `json:"active,omitempty"`
}

// MarshalBase returns the common JSON fields of the component.
func (b *Base) MarshalBase(typ string) BaseJSON {
	active := b.active
	return BaseJSON{
		ID:     b.id,
		Name:   b.name,
		Type:   typ,
		Node:   b.node,
		Scene:  b.scene,
		Active: &active,
	}
}

// UnmarshalBase copies the common JSON fields into b. A missing active
// flag means active.
func (b *Base) UnmarshalBase(j BaseJSON) {
	b.id = j.ID
	b.name = j.Name
	b.node = j.Node
	b.scene = j.Scene
	b.active = j.Active == nil || *j.Active
	b.valid = true
}
