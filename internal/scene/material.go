package scene

import (
	"encoding/json"
	"log/slog"

	"mini-engine/internal/graphics"
)

// Material pairs a shader with a texture. It is valid only while both ids
// resolve in their stores.
type Material struct {
	Base

	shader  uint32
	texture uint32
}

func (m *Material) Type() string { return TypeMaterial }

func (m *Material) ShaderID() uint32  { return m.shader }
func (m *Material) TextureID() uint32 { return m.texture }

// Init revalidates against the current stores.
func (m *Material) Init() { m.Revalidate() }

// Revalidate recomputes the valid flag.
func (m *Material) Revalidate() {
	ctx := m.Context()
	m.SetValid(ctx != nil && ctx.Shaders.Has(m.shader) && ctx.Textures.Has(m.texture))
}

// SetShader sets the shader id. It reports whether the material is valid
// afterwards.
func (m *Material) SetShader(id uint32) bool {
	m.shader = id
	m.Revalidate()
	if ctx := m.Context(); ctx == nil || !ctx.Shaders.Has(id) {
		slog.Debug("material shader not loaded", "component", m.ID(), "shader", id)
	}
	return m.Valid()
}

// SetShaderByName resolves name in the shader store. A miss clears the
// shader and invalidates the material.
func (m *Material) SetShaderByName(name string) bool {
	var id uint32
	if ctx := m.Context(); ctx != nil {
		if s, ok := ctx.Shaders.GetByName(name); ok {
			id = s.AssetID()
		}
	}
	return m.SetShader(id)
}

// SetTexture sets the texture id. It reports whether the material is valid
// afterwards.
func (m *Material) SetTexture(id uint32) bool {
	m.texture = id
	m.Revalidate()
	if ctx := m.Context(); ctx == nil || !ctx.Textures.Has(id) {
		slog.Debug("material texture not loaded", "component", m.ID(), "texture", id)
	}
	return m.Valid()
}

// SetTextureByName resolves name in the texture store. A miss clears the
// texture and invalidates the material.
func (m *Material) SetTextureByName(name string) bool {
	var id uint32
	if ctx := m.Context(); ctx != nil {
		if t, ok := ctx.Textures.GetByName(name); ok {
			id = t.AssetID()
		}
	}
	return m.SetTexture(id)
}

// Shader returns the resident shader.
func (m *Material) Shader() (*graphics.Shader, bool) {
	if m.Context() == nil {
		return nil, false
	}
	return m.Context().Shaders.Get(m.shader)
}

// Texture returns the resident texture.
func (m *Material) Texture() (*graphics.Texture, bool) {
	if m.Context() == nil {
		return nil, false
	}
	return m.Context().Textures.Get(m.texture)
}

type materialJSON struct {
	BaseJSON
	Shader  uint32 `json:"shader"`
	Texture uint32 `json:"texture"`
}

func (m *Material) MarshalJSON() ([]byte, error) {
	return json.Marshal(materialJSON{
		BaseJSON: m.MarshalBase(TypeMaterial),
		Shader:   m.shader,
		Texture:  m.texture,
	})
}

func (m *Material) UnmarshalJSON(data []byte) error {
	var j materialJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	m.UnmarshalBase(j.BaseJSON)
	m.shader, m.texture = j.Shader, j.Texture
	return nil
}

// Mesh references a mesh asset. It is valid only while the id resolves.
type Mesh struct {
	Base

	mesh uint32
}

func (m *Mesh) Type() string { return TypeMesh }

func (m *Mesh) MeshID() uint32 { return m.mesh }

// Init revalidates against the current store.
func (m *Mesh) Init() { m.Revalidate() }

// Revalidate recomputes the valid flag.
func (m *Mesh) Revalidate() {
	ctx := m.Context()
	m.SetValid(ctx != nil && ctx.Meshes.Has(m.mesh))
}

// SetMesh sets the mesh id and reports whether it resolves.
func (m *Mesh) SetMesh(id uint32) bool {
	m.mesh = id
	m.Revalidate()
	return m.Valid()
}

// SetMeshByName resolves name in the mesh store.
func (m *Mesh) SetMeshByName(name string) bool {
	var id uint32
	if ctx := m.Context(); ctx != nil {
		if mesh, ok := ctx.Meshes.GetByName(name); ok {
			id = mesh.AssetID()
		}
	}
	return m.SetMesh(id)
}

// Mesh returns the resident mesh.
func (m *Mesh) Mesh() (*graphics.Mesh, bool) {
	if m.Context() == nil {
		return nil, false
	}
	return m.Context().Meshes.Get(m.mesh)
}

type meshJSON struct {
	BaseJSON
	Mesh uint32 `json:"mesh"`
}

func (m *Mesh) MarshalJSON() ([]byte, error) {
	return json.Marshal(meshJSON{BaseJSON: m.MarshalBase(TypeMesh), Mesh: m.mesh})
}

func (m *Mesh) UnmarshalJSON(data []byte) error {
	var j meshJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	m.UnmarshalBase(j.BaseJSON)
	m.mesh = j.Mesh
	return nil
}
