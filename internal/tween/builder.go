package tween

import (
	"encoding/json"
	"log/slog"

	"mini-engine/internal/scene"
)

// Builder builds tween components. Types it does not know are passed to
// Next, if set, so several user builders can be chained behind one
// fallback.
type Builder struct {
	Next scene.Builder
}

var _ scene.Builder = Builder{}

func (b Builder) BuildFromJSON(ctx *scene.Context, typ string, data []byte) (scene.Component, bool) {
	if typ != Type {
		if b.Next == nil {
			return nil, false
		}
		return b.Next.BuildFromJSON(ctx, typ, data)
	}
	t := newTween()
	if err := json.Unmarshal(data, t); err != nil {
		slog.Warn("could not decode component", "type", typ, "error", err)
		return nil, false
	}
	active := t.Active()
	t.Assign(ctx, t.ID(), t.Name(), t.Node(), t.Scene())
	t.SetActive(active)
	return t, true
}

func (b Builder) BuildEmpty(ctx *scene.Context, typ, name string, node, sc uint32) (scene.Component, bool) {
	if typ != Type {
		if b.Next == nil {
			return nil, false
		}
		return b.Next.BuildEmpty(ctx, typ, name, node, sc)
	}
	t := newTween()
	t.Assign(ctx, 0, name, node, sc)
	return t, true
}

func (b Builder) SaveJSON(c scene.Component) ([]byte, bool) {
	t, ok := c.(*Tween)
	if !ok {
		if b.Next == nil {
			return nil, false
		}
		return b.Next.SaveJSON(c)
	}
	data, err := json.Marshal(t)
	if err != nil {
		slog.Warn("could not encode component", "type", Type, "id", t.ID(), "error", err)
		return nil, false
	}
	return data, true
}
