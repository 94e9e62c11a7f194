package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"github.com/xlab/closer"

	"mini-engine/internal/config"
	"mini-engine/internal/engine"
	"mini-engine/internal/graphics/opengl"
	"mini-engine/internal/input"
	"mini-engine/internal/platform"
	"mini-engine/internal/render"
	"mini-engine/internal/scene"
	"mini-engine/internal/tween"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "engine.toml", "engine config file (.toml, .yaml or .json)")
	watch := flag.Bool("watch", false, "reload scene files when they change on disk")
	profile := flag.Bool("profile", false, "report slow frames with their top profiling buckets")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("could not load engine config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	cfg.Apply()

	orPanic(platform.Init())
	defer closer.Close()

	in := input.NewManager()
	window, err := platform.Open(cfg.Window, in)
	orPanic(err)
	dev, err := opengl.New()
	orPanic(err)
	slog.Info("opengl ready", "version", dev.Version())

	ctx := scene.NewContext(dev, in)
	ctx.Fallback = tween.Builder{}
	if cfg.ResourceManifest != "" {
		if err := ctx.Packages.LoadManifest(cfg.Resolve(cfg.ResourceManifest)); err != nil {
			slog.Warn("no resource packages", "error", err)
		}
	}

	paths := cfg.ScenePaths()
	eng := engine.New(ctx, engine.Discover(paths), render.NewRenderer(render.NewPassStore()))
	eng.SetProfiling(*profile)

	var watcher *engine.Watcher
	if cfg.Watch || *watch {
		watcher, err = engine.NewWatcher(eng, paths)
		if err != nil {
			slog.Warn("scene files are not watched", "error", err)
		} else {
			watcher.Start()
		}
	}

	closer.Bind(func() {
		if watcher != nil {
			watcher.Close()
		}
		eng.Gate().Close()
		for _, s := range ctx.Scenes.Scenes() {
			s.Release()
			ctx.Scenes.Remove(s.ID())
		}
		ctx.Meshes.Clear()
		ctx.Shaders.Clear()
		ctx.Textures.Clear()
		window.Destroy()
		platform.Terminate()
		slog.Info("bye")
	})

	if !eng.SwitchScene(cfg.StartScene) {
		slog.Error("could not load start scene", "id", cfg.StartScene)
	}
	eng.Run(window)
}

func orPanic(err error) {
	if err != nil {
		panic(err)
	}
}
