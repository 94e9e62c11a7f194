package graphics

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Mesh asset file names inside a mesh directory.
const (
	MeshConfigFile   = "config.json"
	MeshVerticesFile = "vertices.bin"
	MeshIndicesFile  = "indices.bin"
)

// Attribute locates one vertex channel inside an interleaved vertex,
// measured in float32 components.
type Attribute struct {
	Offset int `json:"offset"`
	Size   int `json:"size"`
}

// MeshLayout describes the interleaved vertex format of a mesh.
type MeshLayout struct {
	Stride   int        `json:"stride"`
	Position *Attribute `json:"position"`
	TexCoord *Attribute `json:"texcoord,omitempty"`
	Normal   *Attribute `json:"normal,omitempty"`
}

type meshConfig struct {
	Stride     int `json:"stride"`
	Attributes struct {
		Position *Attribute `json:"position"`
		TexCoord *Attribute `json:"texcoord"`
		Normal   *Attribute `json:"normal"`
	} `json:"attributes"`
}

// Validate checks that every channel fits inside the stride.
func (l MeshLayout) Validate() error {
	if l.Stride <= 0 {
		return fmt.Errorf("mesh layout: invalid stride %d", l.Stride)
	}
	if l.Position == nil {
		return fmt.Errorf("mesh layout: missing position attribute")
	}
	for name, a := range map[string]*Attribute{"position": l.Position, "texcoord": l.TexCoord, "normal": l.Normal} {
		if a == nil {
			continue
		}
		if a.Offset < 0 || a.Size <= 0 || a.Offset+a.Size > l.Stride {
			return fmt.Errorf("mesh layout: %s attribute {offset %d, size %d} exceeds stride %d", name, a.Offset, a.Size, l.Stride)
		}
	}
	return nil
}

// Mesh is a vertex/index buffer pair resident on the device.
type Mesh struct {
	id       uint32
	name     string
	path     string
	layout   MeshLayout
	vertices []float32
	indices  []uint32
	handle   uint32
	dev      Device
}

func (m *Mesh) AssetID() uint32    { return m.id }
func (m *Mesh) AssetName() string  { return m.name }
func (m *Mesh) Path() string       { return m.path }
func (m *Mesh) Layout() MeshLayout { return m.layout }
func (m *Mesh) Handle() uint32     { return m.handle }
func (m *Mesh) IndexCount() int32  { return int32(len(m.indices)) }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.vertices) / m.layout.Stride }

// Release deletes the device buffers.
func (m *Mesh) Release() {
	if m.handle != 0 && m.dev != nil {
		m.dev.DeleteMesh(m.handle)
	}
	m.handle = 0
}

// Draw issues the draw call for the whole index buffer.
func (m *Mesh) Draw() {
	m.dev.DrawMesh(m.handle, m.IndexCount())
}

// NewMesh uploads vertices and indices and returns the mesh.
func NewMesh(dev Device, id uint32, name string, layout MeshLayout, vertices []float32, indices []uint32) (*Mesh, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if len(vertices) == 0 || len(vertices)%layout.Stride != 0 {
		return nil, fmt.Errorf("mesh %s: %d floats is not a multiple of stride %d", name, len(vertices), layout.Stride)
	}
	count := uint32(len(vertices) / layout.Stride)
	for _, i := range indices {
		if i >= count {
			return nil, fmt.Errorf("mesh %s: index %d out of range (%d vertices)", name, i, count)
		}
	}

	handle, err := dev.CreateMesh(layout, vertices, indices)
	if err != nil {
		return nil, fmt.Errorf("mesh %s: %w", name, err)
	}
	return &Mesh{
		id:       id,
		name:     name,
		layout:   layout,
		vertices: vertices,
		indices:  indices,
		handle:   handle,
		dev:      dev,
	}, nil
}

// LoadMesh reads a mesh directory (config.json, vertices.bin, indices.bin)
// and uploads it.
func LoadMesh(dev Device, id uint32, dir string) (*Mesh, error) {
	data, err := os.ReadFile(filepath.Join(dir, MeshConfigFile))
	if err != nil {
		return nil, fmt.Errorf("could not read mesh config: %w", err)
	}
	var cfg meshConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal mesh config: %w", err)
	}
	layout := MeshLayout{
		Stride:   cfg.Stride,
		Position: cfg.Attributes.Position,
		TexCoord: cfg.Attributes.TexCoord,
		Normal:   cfg.Attributes.Normal,
	}

	raw, err := os.ReadFile(filepath.Join(dir, MeshVerticesFile))
	if err != nil {
		return nil, fmt.Errorf("could not read mesh vertices: %w", err)
	}
	vertices, err := decodeFloats(raw)
	if err != nil {
		return nil, err
	}

	raw, err = os.ReadFile(filepath.Join(dir, MeshIndicesFile))
	if err != nil {
		return nil, fmt.Errorf("could not read mesh indices: %w", err)
	}
	indices, err := decodeUints(raw)
	if err != nil {
		return nil, err
	}

	m, err := NewMesh(dev, id, assetName(dir), layout, vertices, indices)
	if err != nil {
		return nil, err
	}
	m.path = dir
	return m, nil
}

func decodeFloats(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("vertex data length %d is not a multiple of 4", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func decodeUints(raw []byte) ([]uint32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("index data length %d is not a multiple of 4", len(raw))
	}
	out := make([]uint32, len(raw)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return out, nil
}

// assetName derives the lookup name of an asset from its path.
func assetName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	return base[:len(base)-len(filepath.Ext(base))]
}
