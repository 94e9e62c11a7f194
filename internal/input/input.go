package input

import (
	"slices"
	"sync"
)

// Action represents a logical viewer action, not a physical key
type Action int

// Action constants using iota
const (
	ActionQuit Action = iota
	ActionNextScene
	ActionPrevScene
	ActionReloadScene
	ActionToggleWireframe
	ActionToggleProfiling
	ActionMouseLeft
	ActionMouseRight
	ActionMouseMiddle
	ActionCount // Sentinel value for array sizing
)

// Key is a physical key code. Values match GLFW key codes.
type Key int

// Keys bound by default.
const (
	KeyR      Key = 82
	KeyF      Key = 70
	KeyV      Key = 86
	KeyEscape Key = 256
	KeyRight  Key = 262
	KeyLeft   Key = 263
)

// MouseButton is a physical mouse button. Values match GLFW.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// KeyAction is the transition reported by a key or button event. Values
// match GLFW.
type KeyAction int

const (
	Release KeyAction = 0
	Press   KeyAction = 1
	Repeat  KeyAction = 2
)

func (a KeyAction) String() string {
	switch a {
	case Release:
		return "release"
	case Press:
		return "press"
	case Repeat:
		return "repeat"
	}
	return "unknown"
}

// ParseKeyAction parses "press", "release" or "repeat".
func ParseKeyAction(s string) (KeyAction, bool) {
	switch s {
	case "press":
		return Press, true
	case "release":
		return Release, true
	case "repeat":
		return Repeat, true
	}
	return 0, false
}

// MouseHandler receives the cursor position in window pixels, origin at the
// top left.
type MouseHandler func(x, y float64)

// HandlerID identifies a registered mouse handler. Zero is never issued.
type HandlerID uint32

type mouseHandler struct {
	id     HandlerID
	button MouseButton
	action KeyAction
	fn     MouseHandler
}

// Manager manages keyboard and mouse input state, maps physical keys/buttons
// to logical actions and dispatches mouse events to registered handlers
type Manager struct {
	mu sync.RWMutex

	// Key to action mapping (one key can map to multiple actions)
	keyToActions map[Key][]Action

	// Mouse button to action mapping
	mouseButtonToActions map[MouseButton][]Action

	// Current frame state (indexed by Action)
	currentState [ActionCount]bool

	// Just pressed/released flags (reset each frame)
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool

	cursorX, cursorY float64
	width, height    int

	handlers    []mouseHandler
	nextHandler HandlerID
}

// NewManager creates a new Manager with default key bindings
func NewManager() *Manager {
	m := &Manager{
		keyToActions:         make(map[Key][]Action),
		mouseButtonToActions: make(map[MouseButton][]Action),
	}

	m.BindKey(KeyEscape, ActionQuit)
	m.BindKey(KeyRight, ActionNextScene)
	m.BindKey(KeyLeft, ActionPrevScene)
	m.BindKey(KeyR, ActionReloadScene)
	m.BindKey(KeyF, ActionToggleWireframe)
	m.BindKey(KeyV, ActionToggleProfiling)

	m.BindMouseButton(MouseButtonLeft, ActionMouseLeft)
	m.BindMouseButton(MouseButtonRight, ActionMouseRight)
	m.BindMouseButton(MouseButtonMiddle, ActionMouseMiddle)

	return m
}

// BindKey binds a physical key to a logical action
func (m *Manager) BindKey(key Key, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}
	m.keyToActions[key] = append(m.keyToActions[key], action)
}

// UnbindKey removes all action bindings for a key
func (m *Manager) UnbindKey(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keyToActions, key)
}

// BindMouseButton binds a mouse button to a logical action
func (m *Manager) BindMouseButton(button MouseButton, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if action < 0 || action >= ActionCount {
		return
	}
	m.mouseButtonToActions[button] = append(m.mouseButtonToActions[button], action)
}

// setActions updates state for the given actions and records edges.
// Caller holds m.mu.
func (m *Manager) setActions(actions []Action, isPressed bool) {
	for _, act := range actions {
		if act < 0 || act >= ActionCount {
			continue
		}
		// Detect edges immediately when event arrives
		if isPressed && !m.currentState[act] {
			m.justPressed[act] = true
		}
		if !isPressed && m.currentState[act] {
			m.justReleased[act] = true
		}
		m.currentState[act] = isPressed
	}
}

// HandleKeyEvent processes a key event and updates internal state
func (m *Manager) HandleKeyEvent(key Key, action KeyAction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	actions, exists := m.keyToActions[key]
	if !exists {
		return
	}
	m.setActions(actions, action == Press || action == Repeat)
}

// HandleMouseButtonEvent processes a mouse button event, updates internal
// state and invokes every handler registered for the button/action pair.
func (m *Manager) HandleMouseButtonEvent(button MouseButton, action KeyAction) {
	m.mu.Lock()
	if actions, exists := m.mouseButtonToActions[button]; exists {
		m.setActions(actions, action == Press)
	}
	x, y := m.cursorX, m.cursorY
	var matched []MouseHandler
	for _, h := range m.handlers {
		if h.button == button && h.action == action {
			matched = append(matched, h.fn)
		}
	}
	m.mu.Unlock()

	// Handlers may register or remove handlers.
	for _, fn := range matched {
		fn(x, y)
	}
}

// HandleCursorPos records the cursor position in window pixels.
func (m *Manager) HandleCursorPos(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursorX, m.cursorY = x, y
}

// HandleResize records the window size in pixels.
func (m *Manager) HandleResize(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.width, m.height = width, height
}

// Cursor returns the last cursor position.
func (m *Manager) Cursor() (x, y float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursorX, m.cursorY
}

// WindowSize returns the last known window size.
func (m *Manager) WindowSize() (width, height int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.width, m.height
}

// OnMouse registers fn for events matching button and action.
func (m *Manager) OnMouse(button MouseButton, action KeyAction, fn MouseHandler) HandlerID {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextHandler++
	m.handlers = append(m.handlers, mouseHandler{
		id:     m.nextHandler,
		button: button,
		action: action,
		fn:     fn,
	})
	return m.nextHandler
}

// RemoveHandler unregisters a handler. It returns false for unknown ids.
func (m *Manager) RemoveHandler(id HandlerID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.handlers, func(h mouseHandler) bool { return h.id == id })
	if i < 0 {
		return false
	}
	m.handlers = slices.Delete(m.handlers, i, i+1)
	return true
}

// HandlerCount returns the number of registered mouse handlers.
func (m *Manager) HandlerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

// PostUpdate must be called at the end of each frame to reset edge flags
func (m *Manager) PostUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range ActionCount {
		m.justPressed[i] = false
		m.justReleased[i] = false
	}
}

// IsActive returns true if the action is currently being held down
func (m *Manager) IsActive(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentState[action]
}

// JustPressed returns true only if the action was pressed in the current frame
func (m *Manager) JustPressed(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justPressed[action]
}

// JustReleased returns true only if the action was released in the current frame
func (m *Manager) JustReleased(action Action) bool {
	if action < 0 || action >= ActionCount {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.justReleased[action]
}
