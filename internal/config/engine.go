package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrNoScenes is returned when an engine config declares no scenes.
var ErrNoScenes = errors.New("config: no scenes declared")

// Window describes the window the viewer opens.
type Window struct {
	Width  int    `toml:"width" yaml:"width" json:"width"`
	Height int    `toml:"height" yaml:"height" json:"height"`
	Title  string `toml:"title" yaml:"title" json:"title"`
	VSync  bool   `toml:"vsync" yaml:"vsync" json:"vsync"`
}

// SceneEntry maps a scene id to its scene file.
type SceneEntry struct {
	ID   uint32 `toml:"id" yaml:"id" json:"id"`
	Path string `toml:"path" yaml:"path" json:"path"`
}

// Engine is the top-level engine configuration file.
type Engine struct {
	Window           Window       `toml:"window" yaml:"window" json:"window"`
	FPSLimit         int          `toml:"fps_limit" yaml:"fps_limit" json:"fps_limit"`
	CullMargin       float32      `toml:"cull_margin" yaml:"cull_margin" json:"cull_margin"`
	Wireframe        bool         `toml:"wireframe" yaml:"wireframe" json:"wireframe"`
	ResourceManifest string       `toml:"resource_manifest" yaml:"resource_manifest" json:"resource_manifest"`
	StartScene       uint32       `toml:"start_scene" yaml:"start_scene" json:"start_scene"`
	Scenes           []SceneEntry `toml:"scenes" yaml:"scenes" json:"scenes"`
	Watch            bool         `toml:"watch" yaml:"watch" json:"watch"`

	// dir is the directory of the config file; relative paths resolve against it.
	dir string
}

// Default returns an engine config with the viewer defaults filled in.
func Default() Engine {
	return Engine{
		Window: Window{
			Width:  900,
			Height: 600,
			Title:  "mini-engine",
		},
		FPSLimit: 120,
	}
}

// Load reads an engine config. The format is chosen by file extension:
// .toml, .yaml/.yml or .json.
func Load(path string) (Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Engine{}, fmt.Errorf("could not read engine config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		return Engine{}, fmt.Errorf("config: unsupported config format %q", ext)
	}
	if err != nil {
		return Engine{}, fmt.Errorf("could not decode engine config %s: %w", path, err)
	}

	cfg.dir = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return Engine{}, err
	}
	return cfg, nil
}

// Validate checks the structural requirements of the config.
func (e *Engine) Validate() error {
	if len(e.Scenes) == 0 {
		return ErrNoScenes
	}
	seen := make(map[uint32]bool, len(e.Scenes))
	for _, s := range e.Scenes {
		if s.ID == 0 {
			return fmt.Errorf("config: scene %q has no id", s.Path)
		}
		if seen[s.ID] {
			return fmt.Errorf("config: duplicate scene id %d", s.ID)
		}
		seen[s.ID] = true
	}
	if e.StartScene == 0 {
		e.StartScene = e.Scenes[0].ID
	} else if !seen[e.StartScene] {
		return fmt.Errorf("config: start scene %d is not declared", e.StartScene)
	}
	if e.Window.Width <= 0 || e.Window.Height <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", e.Window.Width, e.Window.Height)
	}
	return nil
}

// Resolve returns path relative to the config file directory.
// Absolute paths are returned unchanged.
func (e *Engine) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || e.dir == "" {
		return path
	}
	return filepath.Join(e.dir, path)
}

// ScenePaths returns the scene id to resolved path table.
func (e *Engine) ScenePaths() map[uint32]string {
	out := make(map[uint32]string, len(e.Scenes))
	for _, s := range e.Scenes {
		out[s.ID] = e.Resolve(s.Path)
	}
	return out
}

// Apply pushes the runtime settings into the global settings.
func (e *Engine) Apply() {
	SetFPSLimit(e.FPSLimit)
	SetCullMargin(e.CullMargin)
	SetWireframeMode(e.Wireframe)
}
