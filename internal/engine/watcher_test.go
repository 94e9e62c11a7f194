package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runLoop polls e's gate until the returned stop function is called.
func runLoop(e *Engine) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			default:
			}
			e.Gate().Poll()
			time.Sleep(time.Millisecond)
		}
	}()
	return func() {
		close(quit)
		<-done
	}
}

func TestWatcherHandle(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.newTestContext(t, nil)
	e := New(ctx, Discover(f.scenes), nil)
	require.True(t, e.SwitchScene(1))

	w, err := NewWatcher(e, f.scenes)
	require.NoError(t, err)
	defer w.Close()

	assert.False(t, w.Handle(filepath.Join(f.dir, "manifest.json")), "not a scene file")

	f.writeScene(t, 1, "alpha-edited", 1000, 202, 201, 1, 2)
	stop := runLoop(e)
	ok := w.Handle(f.scenes[1])
	stop()
	require.True(t, ok)
	assert.Zero(t, e.Gate().Pending())

	cfg, _ := e.Transition().Config(1)
	assert.Equal(t, "alpha-edited", cfg.Name())

	e.Frame(0)
	s, ok := e.CurrentScene()
	require.True(t, ok)
	assert.Equal(t, "alpha-edited", s.Name())
}

func TestWatcherIgnoresUnparsableEdits(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.newTestContext(t, nil)
	e := New(ctx, Discover(f.scenes), nil)

	w, err := NewWatcher(e, f.scenes)
	require.NoError(t, err)
	defer w.Close()

	writePackage(t, f.scenes[2], "not a scene")
	assert.False(t, w.Handle(f.scenes[2]))
	cfg, ok := e.Transition().Config(2)
	require.True(t, ok)
	assert.Equal(t, "beta", cfg.Name())
}

func TestWatcherSeesFileEvents(t *testing.T) {
	f := newFixture(t)
	ctx, _ := f.newTestContext(t, nil)
	e := New(ctx, Discover(f.scenes), nil)

	w, err := NewWatcher(e, f.scenes)
	require.NoError(t, err)
	w.Start()
	stop := runLoop(e)

	f.writeScene(t, 3, "gamma-edited", 3000, 102, 103, 1)
	assert.Eventually(t, func() bool {
		cfg, _ := e.Transition().Config(3)
		return cfg.Name() == "gamma-edited"
	}, 5*time.Second, 10*time.Millisecond)

	stop()
	// a later event may still be waiting on the gate
	e.Gate().Close()
	require.NoError(t, w.Close())
}
