package scene

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"

	"mini-engine/internal/input"
)

// MouseEventFilter calls back when a mouse event matching its button and
// action lands inside the node's textured quad. The quad is centered on
// the node's absolute position, rotated by the accumulated Z rotation of
// its transform chain and sized texture × scale. World units are pixels
// with the origin at the window center.
type MouseEventFilter struct {
	Base

	button input.MouseButton
	action input.KeyAction

	callback func(*Node)
	handler  input.HandlerID
}

func newMouseEventFilter() *MouseEventFilter {
	return &MouseEventFilter{
		button: input.MouseButtonLeft,
		action: input.Press,
	}
}

func (m *MouseEventFilter) Type() string { return TypeMouseEventFilter }

func (m *MouseEventFilter) Button() input.MouseButton { return m.button }
func (m *MouseEventFilter) Action() input.KeyAction   { return m.action }

// SetTrigger changes the button/action pair. It takes effect on the next
// Init.
func (m *MouseEventFilter) SetTrigger(button input.MouseButton, action input.KeyAction) {
	m.button, m.action = button, action
}

// SetCallback sets the function run on a hit.
func (m *MouseEventFilter) SetCallback(fn func(*Node)) { m.callback = fn }

// CloneInto gives a cloned filter the same callback.
func (m *MouseEventFilter) CloneInto(dst Component) {
	if d, ok := dst.(*MouseEventFilter); ok {
		d.callback = m.callback
	}
}

// Init registers the handler. The node must carry a Transform and a
// Material, otherwise the filter is invalid.
func (m *MouseEventFilter) Init() {
	m.Dispose()

	n, ok := m.OwnerNode()
	if !ok {
		m.SetValid(false)
		return
	}
	_, hasTransform := ComponentOf[*Transform](n)
	_, hasMaterial := ComponentOf[*Material](n)
	if !hasTransform || !hasMaterial {
		slog.Warn("mouse filter needs transform and material", "component", m.ID(), "node", n.ID())
		m.SetValid(false)
		return
	}
	m.SetValid(true)

	if ctx := m.Context(); ctx != nil && ctx.Input != nil {
		m.handler = ctx.Input.OnMouse(m.button, m.action, m.handle)
	}
}

// Dispose unregisters the handler.
func (m *MouseEventFilter) Dispose() {
	if m.handler == 0 {
		return
	}
	if ctx := m.Context(); ctx != nil && ctx.Input != nil {
		ctx.Input.RemoveHandler(m.handler)
	}
	m.handler = 0
}

func (m *MouseEventFilter) handle(x, y float64) {
	if !m.Active() || !m.Valid() || m.callback == nil {
		return
	}
	sc, ok := m.OwnerScene()
	if !ok || !sc.Active() {
		return
	}
	n, ok := sc.Node(m.Node())
	if !ok || !n.Active() {
		return
	}
	if m.Contains(x, y) {
		m.callback(n)
	}
}

// Contains reports whether the window point (x, y), origin top left, lies
// inside the node's quad.
func (m *MouseEventFilter) Contains(x, y float64) bool {
	n, ok := m.OwnerNode()
	if !ok {
		return false
	}
	tr, ok := ComponentOf[*Transform](n)
	if !ok {
		return false
	}
	mat, ok := ComponentOf[*Material](n)
	if !ok {
		return false
	}
	tex, ok := mat.Texture()
	if !ok {
		return false
	}

	var w, h int
	if ctx := m.Context(); ctx != nil && ctx.Input != nil {
		w, h = ctx.Input.WindowSize()
	}
	sx := float32(x) - float32(w)/2
	sy := float32(h)/2 - float32(y)

	pos := tr.Position()
	rot := tr.Rotation().Z()
	for _, a := range tr.Ancestors() {
		pos = pos.Add(a.Position())
		rot += a.Rotation().Z()
	}

	dx, dy := sx-pos.X(), sy-pos.Y()
	cos, sin := math32.Cos(-rot), math32.Sin(-rot)
	lx := dx*cos - dy*sin
	ly := dx*sin + dy*cos

	halfW := math32.Abs(float32(tex.Width()) * tr.Scale().X() / 2)
	halfH := math32.Abs(float32(tex.Height()) * tr.Scale().Y() / 2)
	return math32.Abs(lx) <= halfW && math32.Abs(ly) <= halfH
}

type mouseFilterJSON struct {
	BaseJSON
	Button int    `json:"button"`
	Action string `json:"action"`
}

func (m *MouseEventFilter) MarshalJSON() ([]byte, error) {
	return json.Marshal(mouseFilterJSON{
		BaseJSON: m.MarshalBase(TypeMouseEventFilter),
		Button:   int(m.button),
		Action:   m.action.String(),
	})
}

func (m *MouseEventFilter) UnmarshalJSON(data []byte) error {
	j := mouseFilterJSON{Button: int(m.button), Action: m.action.String()}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	action, ok := input.ParseKeyAction(j.Action)
	if !ok {
		return fmt.Errorf("unknown mouse action %q", j.Action)
	}
	m.UnmarshalBase(j.BaseJSON)
	m.button = input.MouseButton(j.Button)
	m.action = action
	return nil
}
