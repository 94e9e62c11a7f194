package scene

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/graphicstest"
	"mini-engine/internal/input"
)

const typeCounter = "counter"

// counter is a user component type recording its updates.
type counter struct {
	Base

	log   *[]uint32
	dirty bool
}

func (c *counter) Type() string { return typeCounter }
func (c *counter) Dirty() bool  { return c.dirty }

func (c *counter) Update(dt float64) {
	if c.log != nil {
		*c.log = append(*c.log, c.ID())
	}
}

// counterBuilder builds counters. With noSave set it refuses to save them.
type counterBuilder struct {
	log    *[]uint32
	noSave bool
}

func (b counterBuilder) BuildEmpty(ctx *Context, typ, name string, node, scene uint32) (Component, bool) {
	if typ != typeCounter {
		return nil, false
	}
	c := &counter{log: b.log}
	c.Assign(ctx, 0, name, node, scene)
	return c, true
}

func (b counterBuilder) BuildFromJSON(ctx *Context, typ string, data []byte) (Component, bool) {
	if typ != typeCounter {
		return nil, false
	}
	var j BaseJSON
	if json.Unmarshal(data, &j) != nil {
		return nil, false
	}
	c := &counter{log: b.log}
	c.Assign(ctx, j.ID, j.Name, j.Node, j.Scene)
	return c, true
}

func (b counterBuilder) SaveJSON(c Component) ([]byte, bool) {
	cc, ok := c.(*counter)
	if !ok || b.noSave {
		return nil, false
	}
	data, err := json.Marshal(cc.MarshalBase(typeCounter))
	return data, err == nil
}

func newTestContext(t *testing.T) (*Context, *graphicstest.Device) {
	t.Helper()
	dev := graphicstest.New()
	return NewContext(dev, input.NewManager()), dev
}

func addTexture(t *testing.T, ctx *Context, id uint32, name string, w, h int) {
	t.Helper()
	tex, err := graphics.NewTexture(ctx.Device, id, name, image.NewRGBA(image.Rect(0, 0, w, h)))
	require.NoError(t, err)
	require.True(t, ctx.Textures.Add(tex))
}

func addShader(t *testing.T, ctx *Context, id uint32, name string) {
	t.Helper()
	s, err := graphics.NewShader(ctx.Device, id, name, "void main() {}", "void main() {}", nil)
	require.NoError(t, err)
	require.True(t, ctx.Shaders.Add(s))
}

func mustAdd[T Component](t *testing.T, n *Node, typ string) T {
	t.Helper()
	c, ok := n.AddComponent(typ, typ, nil)
	require.True(t, ok, "add %s", typ)
	tc, ok := c.(T)
	require.True(t, ok)
	return tc
}

func mustChild(t *testing.T, n *Node, name string) *Node {
	t.Helper()
	child, ok := n.AddChild(name)
	require.True(t, ok)
	return child
}

// assertNoDangling checks every id a node holds resolves in its scene.
func assertNoDangling(t *testing.T, s *Scene) {
	t.Helper()
	for _, n := range s.Nodes() {
		for _, id := range n.Children() {
			child, ok := s.Node(id)
			require.True(t, ok, "node %d child %d", n.ID(), id)
			require.Equal(t, n.ID(), child.Parent())
		}
		for _, id := range n.Components() {
			c, ok := s.Component(id)
			require.True(t, ok, "node %d component %d", n.ID(), id)
			require.Equal(t, n.ID(), c.Node())
		}
	}
}
