package engine

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"mini-engine/internal/config"
	"mini-engine/internal/input"
	"mini-engine/internal/profiling"
	"mini-engine/internal/scene"
)

// slowFrame is the processing time above which a frame is reported.
const slowFrame = 16 * time.Millisecond

// Renderer draws one scene per frame.
type Renderer interface {
	Render(ctx *scene.Context, s *scene.Scene)
}

// Window is the part of the platform window the loop drives.
type Window interface {
	ShouldClose() bool
	SetShouldClose(bool)
	PollEvents()
	SwapBuffers()
}

// Engine runs the frame loop over the current scene: update all
// components, render, present.
type Engine struct {
	ctx        *scene.Context
	transition *Transition
	renderer   Renderer
	gate       *PauseGate
	limiter    *FPSLimiter

	current  uint32
	last     time.Time
	profile  bool
	reloadMu sync.Mutex
	reloads  []uint32
}

// New returns an engine over the given scene configs. No scene is loaded
// until the first SwitchScene.
func New(ctx *scene.Context, configs map[uint32]*SceneConfig, r Renderer) *Engine {
	return &Engine{
		ctx:        ctx,
		transition: NewTransition(ctx, configs),
		renderer:   r,
		gate:       NewPauseGate(),
		limiter:    NewFPSLimiter(),
	}
}

func (e *Engine) Context() *scene.Context   { return e.ctx }
func (e *Engine) Transition() *Transition   { return e.transition }
func (e *Engine) Gate() *PauseGate          { return e.gate }
func (e *Engine) Current() uint32           { return e.current }
func (e *Engine) Limiter() *FPSLimiter      { return e.limiter }
func (e *Engine) SetProfiling(enabled bool) { e.profile = enabled }
func (e *Engine) SetRenderer(r Renderer)    { e.renderer = r }

func (e *Engine) CurrentScene() (*scene.Scene, bool) {
	return e.ctx.Scenes.Get(e.current)
}

// SwitchScene transitions from the current scene to id. On failure no
// scene is current.
func (e *Engine) SwitchScene(id uint32) bool {
	if !e.transition.Run(e.current, id) {
		e.current = 0
		return false
	}
	e.current = id
	return true
}

// Reload rebuilds the current scene from its config.
func (e *Engine) Reload() bool {
	if e.current == 0 {
		return false
	}
	return e.SwitchScene(e.current)
}

// Step switches to the scene delta positions away from the current one in
// ascending id order, wrapping around.
func (e *Engine) Step(delta int) bool {
	ids := e.transition.SceneIDs()
	if len(ids) == 0 {
		return false
	}
	i := slices.Index(ids, e.current)
	if i < 0 {
		i = 0
	} else {
		i = ((i+delta)%len(ids) + len(ids)) % len(ids)
	}
	return e.SwitchScene(ids[i])
}

// RequestReload queues a reload of scene id for the next frame. It is safe
// from any goroutine.
func (e *Engine) RequestReload(id uint32) {
	e.reloadMu.Lock()
	defer e.reloadMu.Unlock()
	if !slices.Contains(e.reloads, id) {
		e.reloads = append(e.reloads, id)
	}
}

func (e *Engine) drainReloads() {
	e.reloadMu.Lock()
	pending := e.reloads
	e.reloads = nil
	e.reloadMu.Unlock()

	for _, id := range pending {
		if id == e.current {
			e.Reload()
		}
	}
}

// Frame runs one frame with dt in milliseconds. It returns false when the
// pause gate held the loop and nothing ran.
func (e *Engine) Frame(dt float64) bool {
	if e.gate.Poll() {
		return false
	}
	e.drainReloads()

	s, ok := e.CurrentScene()
	if !ok || !s.Active() {
		return true
	}

	stop := profiling.Track("scene.Update")
	s.Update(dt)
	stop()

	if e.renderer != nil {
		stop = profiling.Track("render.Render")
		e.renderer.Render(e.ctx, s)
		stop()
	}
	s.ClearDirty()
	return true
}

// HandleInput applies the viewer actions that fired this frame.
func (e *Engine) HandleInput(in *input.Manager, w Window) {
	switch {
	case in.JustPressed(input.ActionQuit):
		w.SetShouldClose(true)
	case in.JustPressed(input.ActionNextScene):
		e.Step(1)
	case in.JustPressed(input.ActionPrevScene):
		e.Step(-1)
	case in.JustPressed(input.ActionReloadScene):
		e.Reload()
	}
	if in.JustPressed(input.ActionToggleWireframe) {
		config.SetWireframeMode(!config.GetWireframeMode())
	}
	if in.JustPressed(input.ActionToggleProfiling) {
		e.profile = !e.profile
		slog.Info("frame profiling", "enabled", e.profile)
	}
}

// Run drives w until it should close. The gate is closed on return.
func (e *Engine) Run(w Window) {
	defer e.gate.Close()
	e.last = time.Now()
	for !w.ShouldClose() {
		e.tick(w)
	}
}

func (e *Engine) tick(w Window) {
	profiling.ResetFrame()
	start := time.Now()
	dt := float64(start.Sub(e.last).Microseconds()) / 1000
	e.last = start

	// Mouse handlers run inside PollEvents, so events wait out a pause.
	if e.gate.Poll() {
		e.idle()
		return
	}
	w.PollEvents()
	if e.ctx.Input != nil {
		e.HandleInput(e.ctx.Input, w)
	}
	if !e.Frame(dt) {
		e.idle()
		return
	}
	w.SwapBuffers()

	if took := time.Since(start); e.profile && took > slowFrame {
		reportSlowFrame(took)
	}

	if e.ctx.Input != nil {
		e.ctx.Input.PostUpdate()
	}
	e.limiter.Wait(false)
}

// reportSlowFrame logs the frame time, the time spent in render passes and
// the heaviest profiling buckets.
func reportSlowFrame(took time.Duration) {
	slog.Warn("slow frame",
		"took", took,
		"passes", profiling.SumWithPrefix("render.pass."),
		"top", profiling.TopN(5))
}

// idle waits out a paused frame. The clock restarts so the first frame
// after a pause does not see the whole pause as dt.
func (e *Engine) idle() {
	e.limiter.Wait(true)
	e.last = time.Now()
}
