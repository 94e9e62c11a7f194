package engine

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads scenes whose files change on disk. The new config is
// swapped in while the frame loop is paused; the reload itself runs on the
// loop at its next frame.
type Watcher struct {
	engine *Engine
	fs     *fsnotify.Watcher
	paths  map[string]uint32

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher watches the scene files of the id -> path table. Directories
// are watched rather than files so editors that save by rename are seen.
func NewWatcher(e *Engine, paths map[uint32]string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create scene watcher: %w", err)
	}
	w := &Watcher{
		engine: e,
		fs:     fw,
		paths:  make(map[string]uint32, len(paths)),
		done:   make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for id, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		w.paths[abs] = id
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("could not watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Start runs the event loop on its own goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-w.done:
				return
			case event, ok := <-w.fs.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				w.Handle(event.Name)
			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				slog.Warn("scene watcher", "error", err)
			}
		}
	}()
}

// Handle reparses the scene file at path, if it is one being watched, and
// queues a reload. It returns false for unwatched or unparsable files.
func (w *Watcher) Handle(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	id, ok := w.paths[abs]
	if !ok {
		return false
	}

	cfg, err := ParseSceneConfig(id, abs)
	if err != nil {
		slog.Warn("scene file changed but does not parse", "id", id, "path", abs, "error", err)
		return false
	}

	gate := w.engine.Gate()
	if !gate.Pause() {
		return false
	}
	w.engine.Transition().SetConfig(cfg)
	gate.Resume()

	w.engine.RequestReload(id)
	slog.Info("scene file changed", "id", id, "path", abs)
	return true
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
