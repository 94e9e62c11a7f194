package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyEdges(t *testing.T) {
	m := NewManager()

	m.HandleKeyEvent(KeyF, Press)
	assert.True(t, m.IsActive(ActionToggleWireframe))
	assert.True(t, m.JustPressed(ActionToggleWireframe))

	m.PostUpdate()
	assert.False(t, m.JustPressed(ActionToggleWireframe))
	assert.True(t, m.IsActive(ActionToggleWireframe))

	m.HandleKeyEvent(KeyF, Repeat)
	assert.False(t, m.JustPressed(ActionToggleWireframe), "repeat is not a new press")

	m.HandleKeyEvent(KeyF, Release)
	assert.True(t, m.JustReleased(ActionToggleWireframe))
	assert.False(t, m.IsActive(ActionToggleWireframe))

	m.UnbindKey(KeyF)
	m.PostUpdate()
	m.HandleKeyEvent(KeyF, Press)
	assert.False(t, m.IsActive(ActionToggleWireframe))
}

func TestMouseHandlers(t *testing.T) {
	m := NewManager()
	m.HandleCursorPos(12, 34)

	var got [][2]float64
	id := m.OnMouse(MouseButtonLeft, Press, func(x, y float64) {
		got = append(got, [2]float64{x, y})
	})
	require.NotZero(t, id)

	m.HandleMouseButtonEvent(MouseButtonLeft, Release)
	m.HandleMouseButtonEvent(MouseButtonRight, Press)
	m.HandleMouseButtonEvent(MouseButtonLeft, Press)
	assert.Equal(t, [][2]float64{{12, 34}}, got)
	assert.True(t, m.JustPressed(ActionMouseLeft))

	assert.True(t, m.RemoveHandler(id))
	assert.False(t, m.RemoveHandler(id))
	m.HandleMouseButtonEvent(MouseButtonLeft, Press)
	assert.Len(t, got, 1)
	assert.Zero(t, m.HandlerCount())
}

func TestHandlerMayRemoveItself(t *testing.T) {
	m := NewManager()
	calls := 0
	var id HandlerID
	id = m.OnMouse(MouseButtonLeft, Release, func(x, y float64) {
		calls++
		m.RemoveHandler(id)
	})
	m.HandleMouseButtonEvent(MouseButtonLeft, Release)
	m.HandleMouseButtonEvent(MouseButtonLeft, Release)
	assert.Equal(t, 1, calls)
}

func TestParseKeyAction(t *testing.T) {
	for _, a := range []KeyAction{Press, Release, Repeat} {
		got, ok := ParseKeyAction(a.String())
		require.True(t, ok)
		assert.Equal(t, a, got)
	}
	_, ok := ParseKeyAction("hold")
	assert.False(t, ok)
}
