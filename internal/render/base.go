package render

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"mini-engine/internal/config"
	"mini-engine/internal/graphics"
	"mini-engine/internal/scene"
)

// Standard uniforms every pass sets.
const (
	UniformModel      = "model"
	UniformView       = "view"
	UniformProjection = "projection"
)

// BasePass draws a node with its material's shader and texture. After the
// standard matrices it pushes every RenderScope entry whose name and type
// match a uniform the shader declares.
type BasePass struct{}

func (p *BasePass) Name() string { return PassBase }

func (p *BasePass) Draw(ctx *scene.Context, f *Frame, n *scene.Node) {
	var values map[string]scene.Value
	if rs, ok := scene.ComponentOf[*scene.RenderScope](n); ok && rs.Active() {
		values = rs.Values()
	}
	p.DrawWith(ctx, f, n, values)
}

// DrawWith draws n with values in place of the node's own RenderScope.
func (p *BasePass) DrawWith(ctx *scene.Context, f *Frame, n *scene.Node, values map[string]scene.Value) {
	tr, ok := scene.ComponentOf[*scene.Transform](n)
	if !ok {
		return
	}
	mat, ok := scene.ComponentOf[*scene.Material](n)
	if !ok {
		return
	}
	mc, ok := scene.ComponentOf[*scene.Mesh](n)
	if !ok {
		return
	}
	shader, ok := mat.Shader()
	if !ok {
		return
	}
	mesh, ok := mc.Mesh()
	if !ok {
		return
	}
	tex, hasTexture := mat.Texture()

	model := tr.Model()
	pos := tr.Position()
	for _, a := range tr.Ancestors() {
		model = a.Model().Mul4(model)
		pos = pos.Add(a.Position())
	}

	if hasTexture && !visible(f, pos, tr.Scale(), tex) {
		return
	}

	shader.Use()
	if hasTexture {
		tex.Bind()
	}
	shader.SetMatrix4(UniformModel, model)
	shader.SetMatrix4(UniformView, f.View)
	shader.SetMatrix4(UniformProjection, f.Projection)
	pushScope(shader, values)

	mesh.Draw()
}

// pushScope sets the declared uniforms values has an entry of the same name
// and type for. Everything else is skipped.
func pushScope(shader *graphics.Shader, values map[string]scene.Value) {
	if len(values) == 0 {
		return
	}
	for _, u := range shader.Uniforms() {
		v, ok := values[u.Name]
		if !ok || v.Type != u.Type {
			continue
		}
		shader.SetValue(u.Name, u.Type, v.Data)
	}
}

// visible is the coarse test against the orthographic camera bounds. The
// node covers its texture size times its scale around pos. Perspective
// cameras draw everything.
func visible(f *Frame, pos, scale mgl32.Vec3, tex *graphics.Texture) bool {
	if f.Camera == nil {
		return true
	}
	b, ok := f.Camera.Ortho()
	if !ok {
		return true
	}
	margin := config.GetCullMargin()
	halfW := math32.Abs(float32(tex.Width())*scale.X()/2) + margin
	halfH := math32.Abs(float32(tex.Height())*scale.Y()/2) + margin

	left, right := f.Eye.X()+b.Left, f.Eye.X()+b.Right
	bottom, top := f.Eye.Y()+b.Bottom, f.Eye.Y()+b.Top
	return pos.X()+halfW >= left && pos.X()-halfW <= right &&
		pos.Y()+halfH >= bottom && pos.Y()-halfH <= top
}
