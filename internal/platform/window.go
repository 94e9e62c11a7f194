// Package platform owns the GLFW window and forwards its events into an
// input.Manager.
package platform

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"mini-engine/internal/config"
	"mini-engine/internal/input"
)

// Window wraps a GLFW window with a current GL 4.1 core context.
type Window struct {
	*glfw.Window
	input *input.Manager
}

// Init initializes GLFW. It must run on the main OS thread.
func Init() error {
	return glfw.Init()
}

// Terminate shuts GLFW down.
func Terminate() {
	glfw.Terminate()
}

// PollEvents processes pending window events.
func PollEvents() {
	glfw.PollEvents()
}

// Now returns the GLFW timer in seconds.
func Now() float64 {
	return glfw.GetTime()
}

// Open creates the window, makes its context current and installs callbacks
// feeding in.
func Open(cfg config.Window, in *input.Manager) (*Window, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, err
	}
	window.MakeContextCurrent()

	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		// Disable V-Sync; the frame loop has its own FPS limiter
		glfw.SwapInterval(0)
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)

	w := &Window{Window: window, input: in}
	w.installCallbacks()

	fw, fh := window.GetFramebufferSize()
	in.HandleResize(fw, fh)
	return w, nil
}

func (w *Window) installCallbacks() {
	w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		w.input.HandleKeyEvent(input.Key(key), input.KeyAction(action))
	})
	w.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		w.input.HandleMouseButtonEvent(input.MouseButton(button), input.KeyAction(action))
	})
	w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.input.HandleCursorPos(x, y)
	})
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.input.HandleResize(width, height)
	})
}

// FramebufferSize returns the drawable size in pixels.
func (w *Window) FramebufferSize() (int, int) {
	return w.GetFramebufferSize()
}

// PollEvents processes pending window events. It lets the window satisfy
// the frame loop's window interface.
func (w *Window) PollEvents() {
	glfw.PollEvents()
}
