package engine

import (
	"fmt"
	"log/slog"

	"mini-engine/internal/graphics"
	"mini-engine/internal/profiling"
	"mini-engine/internal/resource"
	"mini-engine/internal/scene"
)

// Loader builds scenes from their configs and makes their resource packages
// resident. Assets are shared by id: an asset already in its store is never
// loaded twice.
type Loader struct {
	ctx *scene.Context
}

// NewLoader returns a loader bound to ctx.
func NewLoader(ctx *scene.Context) *Loader {
	return &Loader{ctx: ctx}
}

// LoadScene builds the scene described by cfg and loads every package it
// declares. A package or asset that fails to load is logged and skipped.
// The scene is returned uninitialized and inactive.
func (l *Loader) LoadScene(cfg *SceneConfig) (*scene.Scene, error) {
	defer profiling.Track("engine.LoadScene")()

	doc, err := cfg.Document()
	if err != nil {
		return nil, err
	}
	s, err := scene.FromDocument(l.ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("could not build scene %d: %w", cfg.ID(), err)
	}
	for _, id := range s.Resources() {
		l.LoadPackage(id)
	}
	return s, nil
}

// LoadPackage resolves package id and loads the assets it declares that are
// not resident yet.
func (l *Loader) LoadPackage(id uint32) (*resource.Package, bool) {
	p, err := l.ctx.Packages.Resolve(id)
	if err != nil {
		slog.Warn("skipping resource package", "id", id, "error", err)
		return nil, false
	}

	for _, e := range p.Meshes {
		loadAsset(l.ctx.Meshes, e, func() (*graphics.Mesh, error) {
			return graphics.LoadMesh(l.ctx.Device, e.ID, e.Path)
		})
	}
	for _, e := range p.Shaders {
		loadAsset(l.ctx.Shaders, e, func() (*graphics.Shader, error) {
			return graphics.LoadShader(l.ctx.Device, e.ID, e.Path)
		})
	}
	for _, e := range p.Textures {
		loadAsset(l.ctx.Textures, e, func() (*graphics.Texture, error) {
			return graphics.LoadTexture(l.ctx.Device, e.ID, e.Path)
		})
	}
	return p, true
}

func loadAsset[T graphics.Asset](store *graphics.Store[T], e resource.Entry, load func() (T, error)) {
	if store.Has(e.ID) {
		return
	}
	asset, err := load()
	if err != nil {
		slog.Warn("skipping asset", "id", e.ID, "path", e.Path, "error", err)
		return
	}
	if !store.Add(asset) {
		asset.Release()
		return
	}
	slog.Debug("loaded asset", "id", e.ID, "path", e.Path)
}
