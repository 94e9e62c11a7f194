package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mini-engine/internal/graphics"
	"mini-engine/internal/graphics/graphicstest"
	"mini-engine/internal/input"
	"mini-engine/internal/scene"
)

// fixture is an on-disk asset tree:
//
//	package 1: mesh 101, shader 102, texture 103
//	package 2: shader 202, texture 201
//	package 3: mesh 302, texture 301
//	package 5: shader 502, texture 501 (file missing)
//
// Package 4 is not in the manifest.
type fixture struct {
	dir      string
	manifest string
	scenes   map[uint32]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	assets := filepath.Join(dir, "assets")

	graphicstest.WriteQuadMesh(t, filepath.Join(assets, "quad"))
	graphicstest.WriteShader(t, filepath.Join(assets, "sprite"),
		graphics.UniformDecl{Name: "tint", Type: graphics.UniformVec4})
	graphicstest.WriteShader(t, filepath.Join(assets, "lit"))
	graphicstest.WriteTexture(t, filepath.Join(assets, "a.png"), 4, 4)
	graphicstest.WriteTexture(t, filepath.Join(assets, "shared.png"), 8, 8)
	graphicstest.WriteTexture(t, filepath.Join(assets, "b.png"), 2, 2)

	writePackage(t, filepath.Join(assets, "one.json"), map[string]any{
		"name":     "one",
		"meshes":   []map[string]any{{"id": 101, "path": "quad"}},
		"shaders":  []map[string]any{{"id": 102, "path": "sprite"}},
		"textures": []map[string]any{{"id": 103, "path": "a.png"}},
	})
	writePackage(t, filepath.Join(assets, "two.json"), map[string]any{
		"name":     "two",
		"shaders":  []map[string]any{{"id": 202, "path": "lit"}},
		"textures": []map[string]any{{"id": 201, "path": "shared.png"}},
	})
	writePackage(t, filepath.Join(assets, "three.json"), map[string]any{
		"name":     "three",
		"meshes":   []map[string]any{{"id": 302, "path": "quad"}},
		"textures": []map[string]any{{"id": 301, "path": "b.png"}},
	})
	writePackage(t, filepath.Join(assets, "five.json"), map[string]any{
		"name":     "five",
		"shaders":  []map[string]any{{"id": 502, "path": "lit"}},
		"textures": []map[string]any{{"id": 501, "path": "missing.png"}},
	})
	writePackage(t, filepath.Join(dir, "manifest.json"), map[string]any{
		"packages": []map[string]any{
			{"id": 1, "path": "assets/one.json"},
			{"id": 2, "path": "assets/two.json"},
			{"id": 3, "path": "assets/three.json"},
			{"id": 5, "path": "assets/five.json"},
		},
	})

	f := &fixture{
		dir:      dir,
		manifest: filepath.Join(dir, "manifest.json"),
		scenes:   make(map[uint32]string),
	}
	f.writeScene(t, 1, "alpha", 1000, 202, 201, 1, 2)
	f.writeScene(t, 2, "beta", 2000, 202, 301, 2, 3)
	f.writeScene(t, 3, "gamma", 3000, 102, 103, 1)
	f.writeScene(t, 4, "broken", 4000, 502, 501, 4, 5)
	return f
}

// writeScene writes a scene with a root and one sprite node whose material
// uses shader and texture. Node and component ids start at base.
func (f *fixture) writeScene(t *testing.T, id uint32, name string, base, shader, texture uint32, resources ...uint32) {
	t.Helper()
	var refs []string
	for _, r := range resources {
		refs = append(refs, fmt.Sprintf(`{"id": %d}`, r))
	}
	doc := fmt.Sprintf(`{
	"id": %[1]d, "name": %[2]q, "root": %[3]d,
	"nodes": [
		{"id": %[3]d, "name": "root", "owner_scene": %[1]d, "children": [%[4]d], "components": [%[5]d]},
		{"id": %[4]d, "name": "sprite", "parent": %[3]d, "owner_scene": %[1]d, "components": [%[6]d, %[7]d, %[8]d]}
	],
	"components": [
		{"id": %[5]d, "type": "transform", "owner_node": %[3]d, "owner_scene": %[1]d},
		{"id": %[6]d, "type": "transform", "owner_node": %[4]d, "owner_scene": %[1]d, "position": [1, 2, 0]},
		{"id": %[7]d, "type": "material", "name": "sprite-material", "owner_node": %[4]d, "owner_scene": %[1]d,
		 "shader": %[9]d, "texture": %[10]d},
		{"id": %[8]d, "type": "probe", "name": "probe", "owner_node": %[4]d, "owner_scene": %[1]d}
	],
	"resources": [%[11]s]
}`, id, name, base, base+1, base+2, base+3, base+4, base+5, shader, texture, strings.Join(refs, ", "))

	path := filepath.Join(f.dir, fmt.Sprintf("scene-%d.json", id))
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	f.scenes[id] = path
}

func writePackage(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// newTestContext returns a context reading the fixture manifest, with the
// probe builder as fallback.
func (f *fixture) newTestContext(t *testing.T, probes *probeBuilder) (*scene.Context, *graphicstest.Device) {
	t.Helper()
	dev := graphicstest.New()
	ctx := scene.NewContext(dev, input.NewManager())
	require.NoError(t, ctx.Packages.LoadManifest(f.manifest))
	if probes == nil {
		probes = &probeBuilder{}
	}
	ctx.Fallback = probes
	return ctx, dev
}

const typeProbe = "probe"

// probe is a user component recording the transition state its Init runs
// in and the dt of each update.
type probe struct {
	scene.Base
	owner *probeBuilder
}

func (p *probe) Type() string { return typeProbe }

func (p *probe) Init() {
	if p.owner.transition != nil {
		p.owner.initStates = append(p.owner.initStates, p.owner.transition.State())
	}
}

func (p *probe) Update(dt float64) {
	p.owner.updates = append(p.owner.updates, dt)
}

type probeBuilder struct {
	transition *Transition
	initStates []State
	updates    []float64
}

func (b *probeBuilder) BuildEmpty(ctx *scene.Context, typ, name string, node, sc uint32) (scene.Component, bool) {
	if typ != typeProbe {
		return nil, false
	}
	p := &probe{owner: b}
	p.Assign(ctx, 0, name, node, sc)
	return p, true
}

func (b *probeBuilder) BuildFromJSON(ctx *scene.Context, typ string, data []byte) (scene.Component, bool) {
	if typ != typeProbe {
		return nil, false
	}
	var j scene.BaseJSON
	if json.Unmarshal(data, &j) != nil {
		return nil, false
	}
	p := &probe{owner: b}
	p.Assign(ctx, j.ID, j.Name, j.Node, j.Scene)
	return p, true
}

func (b *probeBuilder) SaveJSON(c scene.Component) ([]byte, bool) {
	p, ok := c.(*probe)
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(p.MarshalBase(typeProbe))
	return data, err == nil
}

// spriteMaterial returns the material of the sprite node of s.
func spriteMaterial(t *testing.T, s *scene.Scene) *scene.Material {
	t.Helper()
	n, ok := s.NodeByName("sprite")
	require.True(t, ok)
	mat, ok := scene.ComponentOf[*scene.Material](n)
	require.True(t, ok)
	return mat
}
