package engine

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-engine/internal/config"
	"mini-engine/internal/input"
	"mini-engine/internal/profiling"
	"mini-engine/internal/scene"
)

type recordingRenderer struct {
	scenes []uint32
}

func (r *recordingRenderer) Render(ctx *scene.Context, s *scene.Scene) {
	r.scenes = append(r.scenes, s.ID())
}

// fakeWindow closes itself after frames ticks.
type fakeWindow struct {
	frames int
	polls  int
	swaps  int
	closed bool
}

func (w *fakeWindow) ShouldClose() bool     { return w.closed || w.polls >= w.frames }
func (w *fakeWindow) SetShouldClose(v bool) { w.closed = v }
func (w *fakeWindow) PollEvents()           { w.polls++ }
func (w *fakeWindow) SwapBuffers()          { w.swaps++ }

func newTestEngine(t *testing.T) (*Engine, *probeBuilder, *recordingRenderer) {
	t.Helper()
	f := newFixture(t)
	probes := &probeBuilder{}
	ctx, _ := f.newTestContext(t, probes)
	r := &recordingRenderer{}
	e := New(ctx, Discover(f.scenes), r)
	probes.transition = e.Transition()
	e.Limiter().limit = func() int { return 0 }
	return e, probes, r
}

func TestEngineFrame(t *testing.T) {
	e, probes, r := newTestEngine(t)

	assert.True(t, e.Frame(16), "no scene is not an error")
	assert.Empty(t, r.scenes)

	require.True(t, e.SwitchScene(1))
	assert.True(t, e.Frame(16))
	assert.True(t, e.Frame(8))
	assert.Equal(t, []uint32{1, 1}, r.scenes)
	assert.Equal(t, []float64{16, 8}, probes.updates)
}

func TestEngineFrameHeldByGate(t *testing.T) {
	e, probes, r := newTestEngine(t)
	require.True(t, e.SwitchScene(1))

	done, _ := async(e.Gate().Pause)
	require.Eventually(t, func() bool { return e.Gate().Pending() == 1 }, time.Second, tick)
	assert.False(t, e.Frame(16))
	require.Eventually(t, done.Load, time.Second, tick)
	assert.Empty(t, r.scenes)
	assert.Empty(t, probes.updates)

	resumed, _ := async(e.Gate().Resume)
	require.Eventually(t, func() bool { return e.Gate().Pending() == 0 }, time.Second, tick)
	assert.True(t, e.Frame(16))
	require.Eventually(t, resumed.Load, time.Second, tick)
	assert.Equal(t, []uint32{1}, r.scenes)
}

func TestEngineStep(t *testing.T) {
	e, _, _ := newTestEngine(t)

	require.True(t, e.Step(1), "no current scene starts at the first")
	assert.Equal(t, uint32(1), e.Current())
	require.True(t, e.Step(1))
	assert.Equal(t, uint32(2), e.Current())
	require.True(t, e.Step(-2))
	assert.Equal(t, uint32(4), e.Current(), "wraps around")

	assert.False(t, e.SwitchScene(99))
	assert.Zero(t, e.Current())
	_, ok := e.CurrentScene()
	assert.False(t, ok)
}

func TestEngineRequestReload(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.True(t, e.SwitchScene(1))
	before, _ := e.CurrentScene()

	e.RequestReload(2)
	e.Frame(0)
	same, _ := e.CurrentScene()
	assert.Same(t, before, same, "other scenes are not reloaded")

	e.RequestReload(1)
	e.RequestReload(1)
	e.Frame(0)
	after, ok := e.CurrentScene()
	require.True(t, ok)
	assert.NotSame(t, before, after)
}

func TestEngineHandleInput(t *testing.T) {
	e, _, _ := newTestEngine(t)
	in := e.Context().Input
	w := &fakeWindow{frames: 100}
	require.True(t, e.SwitchScene(1))

	in.HandleKeyEvent(input.KeyRight, input.Press)
	e.HandleInput(in, w)
	assert.Equal(t, uint32(2), e.Current())
	in.PostUpdate()
	in.HandleKeyEvent(input.KeyRight, input.Release)

	in.HandleKeyEvent(input.KeyLeft, input.Press)
	e.HandleInput(in, w)
	assert.Equal(t, uint32(1), e.Current())
	in.PostUpdate()

	wireframe := config.GetWireframeMode()
	defer config.SetWireframeMode(wireframe)
	in.HandleKeyEvent(input.KeyF, input.Press)
	e.HandleInput(in, w)
	assert.Equal(t, !wireframe, config.GetWireframeMode())
	in.PostUpdate()

	in.HandleKeyEvent(input.KeyEscape, input.Press)
	e.HandleInput(in, w)
	assert.True(t, w.ShouldClose())
}

func TestEngineRun(t *testing.T) {
	e, probes, r := newTestEngine(t)
	require.True(t, e.SwitchScene(1))

	w := &fakeWindow{frames: 3}
	e.Run(w)
	assert.Equal(t, 3, w.swaps)
	assert.Len(t, r.scenes, 3)
	assert.Len(t, probes.updates, 3)
	assert.False(t, e.Gate().Pause(), "gate closed when the loop ends")
}

func TestReportSlowFrame(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	profiling.ResetFrame()
	defer profiling.ResetFrame()
	profiling.Track("render.pass.base")()
	profiling.Track("render.pass.light")()

	reportSlowFrame(20 * time.Millisecond)
	out := buf.String()
	assert.Contains(t, out, "slow frame")
	assert.Contains(t, out, "took=20ms")
	assert.Contains(t, out, "passes=")
	assert.Contains(t, out, "render.pass.base:")
}

func TestFPSLimiter(t *testing.T) {
	f := NewFPSLimiter()
	f.limit = func() int { return 0 }
	start := time.Now()
	f.Wait(false)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
	assert.True(t, f.next.IsZero())

	f.limit = func() int { return 100 }
	start = time.Now()
	f.Wait(false)
	f.Wait(false)
	assert.GreaterOrEqual(t, time.Since(start), 19*time.Millisecond)
}
