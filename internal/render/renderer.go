package render

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"mini-engine/internal/profiling"
	"mini-engine/internal/scene"
)

// Renderer draws the active, renderable nodes of a scene through their
// render passes.
type Renderer struct {
	passes      *PassStore
	defaultPass string
	clear       mgl32.Vec4

	// warned keeps per-scene warnings from repeating every frame.
	warned map[string]bool
}

// NewRenderer returns a renderer dispatching to passes. Nodes without a
// render_pass marker use the base pass.
func NewRenderer(passes *PassStore) *Renderer {
	return &Renderer{
		passes:      passes,
		defaultPass: PassBase,
		clear:       mgl32.Vec4{0.1, 0.1, 0.12, 1},
		warned:      make(map[string]bool),
	}
}

func (r *Renderer) Passes() *PassStore         { return r.passes }
func (r *Renderer) SetDefaultPass(name string) { r.defaultPass = name }
func (r *Renderer) SetClearColor(c mgl32.Vec4) { r.clear = c }

// Render clears the frame and draws s. Nothing is drawn without a camera.
func (r *Renderer) Render(ctx *scene.Context, s *scene.Scene) {
	if ctx.Input != nil {
		if w, h := ctx.Input.WindowSize(); w > 0 && h > 0 {
			ctx.Device.SetViewport(w, h)
		}
	}
	ctx.Device.Clear(r.clear[0], r.clear[1], r.clear[2], r.clear[3])

	f, ok := r.frame(s)
	if !ok {
		r.warnOnce(s, "no active camera")
		return
	}

	nodes := scene.Request(s).Active().Has(scene.TypeMesh, scene.TypeMaterial, scene.TypeTransform).Nodes()
	for _, n := range nodes {
		if !drawable(n) {
			continue
		}
		name := r.defaultPass
		if marker, ok := scene.ComponentOf[*scene.RenderPass](n); ok && marker.Active() && marker.Pass() != "" {
			name = marker.Pass()
		}
		p, ok := r.passes.Get(name)
		if !ok {
			r.warnOnce(s, "unknown render pass "+name)
			continue
		}
		stop := profiling.Track("render.pass." + name)
		p.Draw(ctx, f, n)
		stop()
	}
}

// drawable reports whether the node's mesh, material and transform are all
// active and the mesh and material resolved their assets.
func drawable(n *scene.Node) bool {
	mesh, _ := scene.ComponentOf[*scene.Mesh](n)
	mat, _ := scene.ComponentOf[*scene.Material](n)
	tr, _ := scene.ComponentOf[*scene.Transform](n)
	return mesh.Active() && mesh.Valid() &&
		mat.Active() && mat.Valid() &&
		tr.Active()
}

// frame resolves the camera: among active nodes carrying an active Camera
// and Transform, the one with the lowest node id.
func (r *Renderer) frame(s *scene.Scene) (*Frame, bool) {
	cameras := scene.Request(s).Active().Has(scene.TypeCamera, scene.TypeTransform).Where(func(n *scene.Node) bool {
		cam, _ := scene.ComponentOf[*scene.Camera](n)
		tr, _ := scene.ComponentOf[*scene.Transform](n)
		return cam.Active() && tr.Active()
	}).Nodes()
	if len(cameras) == 0 {
		return nil, false
	}
	if len(cameras) > 1 {
		r.warnOnce(s, fmt.Sprintf("%d active cameras, using node %d", len(cameras), cameras[0].ID()))
	}

	n := cameras[0]
	cam, _ := scene.ComponentOf[*scene.Camera](n)
	tr, _ := scene.ComponentOf[*scene.Transform](n)
	offset := absolutePosition(tr)
	return &Frame{
		Scene:      s,
		Camera:     cam,
		Eye:        cam.Position().Add(offset),
		View:       cam.View().Mul4(mgl32.Translate3D(-offset.X(), -offset.Y(), -offset.Z())),
		Projection: cam.Projection(),
	}, true
}

func (r *Renderer) warnOnce(s *scene.Scene, msg string) {
	key := fmt.Sprintf("%d/%s", s.ID(), msg)
	if r.warned[key] {
		return
	}
	r.warned[key] = true
	slog.Warn(msg, "scene", s.ID(), "name", s.Name())
}
