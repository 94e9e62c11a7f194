package graphics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/graphicstest"
)

func TestLoadMesh(t *testing.T) {
	dev := graphicstest.New()
	dir := filepath.Join(t.TempDir(), "quad")
	graphicstest.WriteQuadMesh(t, dir)

	m, err := graphics.LoadMesh(dev, 10, dir)
	require.NoError(t, err)

	assert.Equal(t, uint32(10), m.AssetID())
	assert.Equal(t, "quad", m.AssetName())
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, int32(6), m.IndexCount())
	require.NotNil(t, m.Layout().TexCoord)
	assert.Equal(t, 3, m.Layout().TexCoord.Offset)

	meshes, _, _ := dev.Live()
	assert.Equal(t, 1, meshes)
	m.Release()
	meshes, _, _ = dev.Live()
	assert.Equal(t, 0, meshes)
}

func TestLoadMeshRejectsBadData(t *testing.T) {
	dev := graphicstest.New()

	_, err := graphics.LoadMesh(dev, 1, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := filepath.Join(t.TempDir(), "broken")
	graphicstest.WriteQuadMesh(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, graphics.MeshIndicesFile), []byte{1, 2, 3}, 0644))
	_, err = graphics.LoadMesh(dev, 1, dir)
	assert.Error(t, err)

	layout := graphics.MeshLayout{Stride: 3, Position: &graphics.Attribute{Offset: 0, Size: 3}}
	_, err = graphics.NewMesh(dev, 1, "tri", layout, []float32{0, 0, 0, 1, 0, 0}, []uint32{0, 1, 2})
	assert.Error(t, err, "index past the vertex count")

	layout.Normal = &graphics.Attribute{Offset: 2, Size: 3}
	assert.Error(t, layout.Validate())
}

func TestLoadShader(t *testing.T) {
	dev := graphicstest.New()
	dir := filepath.Join(t.TempDir(), "sprite")
	graphicstest.WriteShader(t, dir,
		graphics.UniformDecl{Name: "tint", Type: graphics.UniformVec3},
		graphics.UniformDecl{Name: "time", Type: graphics.UniformFloat},
	)

	s, err := graphics.LoadShader(dev, 3, dir)
	require.NoError(t, err)
	assert.Equal(t, "sprite", s.AssetName())
	require.Len(t, s.Uniforms(), 2)
	assert.Equal(t, graphics.UniformVec3, s.Uniforms()[0].Type)

	assert.True(t, s.SetValue("tint", graphics.UniformVec3, mgl32.Vec3{1, 0, 0}))
	assert.False(t, s.SetValue("tint", graphics.UniformVec3, float32(1)))
	v, ok := dev.Uniform(s.Program(), "tint")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, v)

	s.SetBool("flag", true)
	v, _ = dev.Uniform(s.Program(), "flag")
	assert.Equal(t, int32(1), v)
}

func TestLoadTexture(t *testing.T) {
	dev := graphicstest.New()
	path := filepath.Join(t.TempDir(), "tex", "crate.png")
	graphicstest.WriteTexture(t, path, 16, 8)

	tex, err := graphics.LoadTexture(dev, 5, path)
	require.NoError(t, err)
	assert.Equal(t, "crate", tex.AssetName())
	assert.Equal(t, 16, tex.Width())
	assert.Equal(t, 8, tex.Height())

	_, err = graphics.LoadTexture(dev, 6, filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	dev := graphicstest.New()
	store := graphics.NewStore[*graphics.Texture]("texture")

	dir := t.TempDir()
	graphicstest.WriteTexture(t, filepath.Join(dir, "a.png"), 2, 2)
	graphicstest.WriteTexture(t, filepath.Join(dir, "b.png"), 2, 2)

	a, err := graphics.LoadTexture(dev, 2, filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	b, err := graphics.LoadTexture(dev, 1, filepath.Join(dir, "b.png"))
	require.NoError(t, err)

	assert.True(t, store.Add(a))
	assert.True(t, store.Add(b))
	assert.False(t, store.Add(a), "duplicate id")

	got, ok := store.GetByName("a")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, []uint32{1, 2}, store.IDs())

	assert.True(t, store.Remove(2))
	assert.False(t, store.Remove(2))
	assert.False(t, store.Has(2))
	_, _, textures := dev.Live()
	assert.Equal(t, 1, textures)

	store.Clear()
	assert.Equal(t, 0, store.Len())
}

func TestUniformTypeJSON(t *testing.T) {
	typ, ok := graphics.ParseUniformType("mat4")
	require.True(t, ok)
	assert.Equal(t, graphics.UniformMat4, typ)
	_, ok = graphics.ParseUniformType("invalid")
	assert.False(t, ok)

	var decl graphics.UniformDecl
	require.NoError(t, decl.Type.UnmarshalJSON([]byte(`"vec4"`)))
	assert.Equal(t, graphics.UniformVec4, decl.Type)
	assert.Error(t, decl.Type.UnmarshalJSON([]byte(`"vec9"`)))

	assert.True(t, graphics.UniformInt.Accepts(int32(3)))
	assert.False(t, graphics.UniformInt.Accepts(3))
}
