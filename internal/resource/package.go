// Package resource describes resource packages, the declarative manifests
// of shareable meshes, shaders and textures, and the store that resolves
// them lazily from a top-level manifest.
package resource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Entry declares one asset of a package. Path is relative to the package
// file until the package is loaded, absolute afterwards.
type Entry struct {
	ID   uint32 `json:"id"`
	Path string `json:"path"`
}

// Package is a named manifest of shareable GPU assets.
type Package struct {
	Name     string  `json:"name"`
	Meshes   []Entry `json:"meshes"`
	Shaders  []Entry `json:"shaders"`
	Textures []Entry `json:"textures"`
}

// LoadPackage parses a package file and resolves its entry paths against
// the package file's directory.
func LoadPackage(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read resource package: %w", err)
	}
	var p Package
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("could not unmarshal resource package %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for _, list := range [][]Entry{p.Meshes, p.Shaders, p.Textures} {
		for i := range list {
			if list[i].ID == 0 {
				return nil, fmt.Errorf("resource package %s: entry %q has no id", path, list[i].Path)
			}
			if !filepath.IsAbs(list[i].Path) {
				list[i].Path = filepath.Join(dir, list[i].Path)
			}
		}
	}
	return &p, nil
}

// AssetIDs returns the ids of every mesh, shader and texture the package
// declares.
func (p *Package) AssetIDs() (meshes, shaders, textures []uint32) {
	ids := func(entries []Entry) []uint32 {
		out := make([]uint32, len(entries))
		for i, e := range entries {
			out[i] = e.ID
		}
		return out
	}
	return ids(p.Meshes), ids(p.Shaders), ids(p.Textures)
}
