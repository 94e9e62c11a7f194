// Package engine drives scenes through their lifetime: it discovers scene
// files, loads them with their resource packages, transitions between them
// while evicting unused shared assets, and runs the frame loop under a
// pause gate that lets other goroutines mutate the graph between frames.
package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"

	"github.com/jinzhu/copier"

	"mini-engine/internal/scene"
)

// SceneConfig is a pre-parsed scene file. It is immutable; every load gets
// its own copy of the document.
type SceneConfig struct {
	id   uint32
	name string
	path string
	doc  *scene.Document
}

// ParseSceneConfig reads the scene file at path and registers it under id.
// The document id is overwritten with id.
func ParseSceneConfig(id uint32, path string) (*SceneConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open scene file: %w", err)
	}
	defer f.Close()

	doc, err := scene.ParseDocument(f)
	if err != nil {
		return nil, fmt.Errorf("scene %d (%s): %w", id, path, err)
	}
	if doc.ID != 0 && doc.ID != id {
		slog.Warn("scene file id differs from config", "path", path, "file", doc.ID, "config", id)
	}
	doc.ID = id
	return &SceneConfig{id: id, name: doc.Name, path: path, doc: doc}, nil
}

// NewSceneConfig wraps an in-memory document.
func NewSceneConfig(doc *scene.Document) *SceneConfig {
	return &SceneConfig{id: doc.ID, name: doc.Name, doc: doc}
}

func (c *SceneConfig) ID() uint32   { return c.id }
func (c *SceneConfig) Name() string { return c.name }
func (c *SceneConfig) Path() string { return c.path }

// Document returns a deep copy of the parsed document.
func (c *SceneConfig) Document() (*scene.Document, error) {
	var doc scene.Document
	if err := copier.CopyWithOption(&doc, c.doc, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("could not copy scene %d: %w", c.id, err)
	}
	return &doc, nil
}

// Resources returns the package ids the scene declares.
func (c *SceneConfig) Resources() []uint32 {
	out := make([]uint32, 0, len(c.doc.Resources))
	for _, r := range c.doc.Resources {
		if !slices.Contains(out, r.ID) {
			out = append(out, r.ID)
		}
	}
	return out
}

// Discover parses every scene file of the id -> path table. Files that fail
// to parse are logged and left out.
func Discover(paths map[uint32]string) map[uint32]*SceneConfig {
	out := make(map[uint32]*SceneConfig, len(paths))
	for _, id := range slices.Sorted(maps.Keys(paths)) {
		cfg, err := ParseSceneConfig(id, paths[id])
		if err != nil {
			slog.Warn("skipping scene", "id", id, "error", err)
			continue
		}
		out[id] = cfg
	}
	return out
}
