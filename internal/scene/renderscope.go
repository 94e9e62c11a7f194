package scene

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"mini-engine/internal/graphics"
)

// Value is one typed entry of a RenderScope.
type Value struct {
	Type graphics.UniformType
	Data any
}

// RenderScope is a per-node bag of typed uniform values. Render passes push
// an entry when a shader declares a uniform with the same name and type.
type RenderScope struct {
	Base

	values map[string]Value
}

func newRenderScope() *RenderScope {
	return &RenderScope{values: make(map[string]Value)}
}

func (r *RenderScope) Type() string { return TypeRenderScope }

// Set stores value under name. It returns false when value does not hold
// the Go type of typ.
func (r *RenderScope) Set(name string, typ graphics.UniformType, value any) bool {
	if !typ.Accepts(value) {
		return false
	}
	r.values[name] = Value{Type: typ, Data: value}
	return true
}

func (r *RenderScope) SetInt(name string, v int32)       { r.Set(name, graphics.UniformInt, v) }
func (r *RenderScope) SetFloat(name string, v float32)   { r.Set(name, graphics.UniformFloat, v) }
func (r *RenderScope) SetBool(name string, v bool)       { r.Set(name, graphics.UniformBool, v) }
func (r *RenderScope) SetVec2(name string, v mgl32.Vec2) { r.Set(name, graphics.UniformVec2, v) }
func (r *RenderScope) SetVec3(name string, v mgl32.Vec3) { r.Set(name, graphics.UniformVec3, v) }
func (r *RenderScope) SetVec4(name string, v mgl32.Vec4) { r.Set(name, graphics.UniformVec4, v) }
func (r *RenderScope) SetMat4(name string, v mgl32.Mat4) { r.Set(name, graphics.UniformMat4, v) }

// Get returns the entry stored under name.
func (r *RenderScope) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Delete removes an entry.
func (r *RenderScope) Delete(name string) { delete(r.values, name) }

// Names returns the entry names in sorted order.
func (r *RenderScope) Names() []string {
	return slices.Sorted(maps.Keys(r.values))
}

// Values returns a copy of the bag.
func (r *RenderScope) Values() map[string]Value {
	return maps.Clone(r.values)
}

type scopeEntryJSON struct {
	Name  string               `json:"name"`
	Type  graphics.UniformType `json:"type"`
	Value json.RawMessage      `json:"value"`
}

type renderScopeJSON struct {
	BaseJSON
	Values []scopeEntryJSON `json:"values"`
}

func (r *RenderScope) MarshalJSON() ([]byte, error) {
	j := renderScopeJSON{BaseJSON: r.MarshalBase(TypeRenderScope)}
	for _, name := range r.Names() {
		v := r.values[name]
		data, err := json.Marshal(v.Data)
		if err != nil {
			return nil, err
		}
		j.Values = append(j.Values, scopeEntryJSON{Name: name, Type: v.Type, Value: data})
	}
	return json.Marshal(j)
}

func (r *RenderScope) UnmarshalJSON(data []byte) error {
	var j renderScopeJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	values := make(map[string]Value, len(j.Values))
	for _, e := range j.Values {
		v, err := decodeValue(e.Type, e.Value)
		if err != nil {
			return fmt.Errorf("render scope value %q: %w", e.Name, err)
		}
		values[e.Name] = Value{Type: e.Type, Data: v}
	}
	r.UnmarshalBase(j.BaseJSON)
	r.values = values
	return nil
}

func decodeValue(t graphics.UniformType, raw json.RawMessage) (any, error) {
	var (
		v   any
		err error
	)
	switch t {
	case graphics.UniformInt:
		var x int32
		err = json.Unmarshal(raw, &x)
		v = x
	case graphics.UniformFloat:
		var x float32
		err = json.Unmarshal(raw, &x)
		v = x
	case graphics.UniformBool:
		var x bool
		err = json.Unmarshal(raw, &x)
		v = x
	case graphics.UniformVec2:
		var x mgl32.Vec2
		err = json.Unmarshal(raw, &x)
		v = x
	case graphics.UniformVec3:
		var x mgl32.Vec3
		err = json.Unmarshal(raw, &x)
		v = x
	case graphics.UniformVec4:
		var x mgl32.Vec4
		err = json.Unmarshal(raw, &x)
		v = x
	case graphics.UniformMat4:
		var x mgl32.Mat4
		err = json.Unmarshal(raw, &x)
		v = x
	default:
		return nil, fmt.Errorf("unsupported uniform type %v", t)
	}
	return v, err
}

// RenderPass names the render pass that draws its node.
type RenderPass struct {
	Base

	pass string
}

func (r *RenderPass) Type() string { return TypeRenderPass }

func (r *RenderPass) Pass() string        { return r.pass }
func (r *RenderPass) SetPass(name string) { r.pass = name }

type renderPassJSON struct {
	BaseJSON
	Pass string `json:"pass"`
}

func (r *RenderPass) MarshalJSON() ([]byte, error) {
	return json.Marshal(renderPassJSON{BaseJSON: r.MarshalBase(TypeRenderPass), Pass: r.pass})
}

func (r *RenderPass) UnmarshalJSON(data []byte) error {
	var j renderPassJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	r.UnmarshalBase(j.BaseJSON)
	r.pass = j.Pass
	return nil
}
