package render

import (
	"maps"

	"mini-engine/internal/graphics"
	"mini-engine/internal/scene"
)

// Uniforms the light pass adds to the node's scope.
const (
	UniformLightColor     = "light_color"
	UniformLightIntensity = "light_intensity"
	UniformLightPosition  = "light_position"
)

// LightPass draws like Base with the scene's light source added to a copy
// of the node's RenderScope. Without a light it draws like Base.
type LightPass struct {
	Base *BasePass
}

func (p *LightPass) Name() string { return PassLight }

func (p *LightPass) Draw(ctx *scene.Context, f *Frame, n *scene.Node) {
	values := make(map[string]scene.Value)
	if rs, ok := scene.ComponentOf[*scene.RenderScope](n); ok && rs.Active() {
		maps.Copy(values, rs.Values())
	}
	if light, pos, ok := f.Light(); ok {
		values[UniformLightColor] = scene.Value{Type: graphics.UniformVec3, Data: light.Color()}
		values[UniformLightIntensity] = scene.Value{Type: graphics.UniformFloat, Data: light.Intensity()}
		values[UniformLightPosition] = scene.Value{Type: graphics.UniformVec3, Data: pos}
	}
	p.Base.DrawWith(ctx, f, n, values)
}
