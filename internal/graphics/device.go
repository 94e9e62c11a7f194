// Package graphics holds the GPU-facing asset types (meshes, shaders,
// textures), the id-keyed stores that share them between scenes, and the
// Device interface that the graphics-API backend implements.
package graphics

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Device is the graphics-API binding. Every GPU call the engine makes goes
// through it, so the core never depends on a concrete API.
type Device interface {
	CreateMesh(layout MeshLayout, vertices []float32, indices []uint32) (uint32, error)
	DeleteMesh(handle uint32)
	DrawMesh(handle uint32, indexCount int32)

	CreateProgram(vertexSrc, fragmentSrc string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	CreateTexture(img *image.RGBA) (uint32, error)
	DeleteTexture(handle uint32)
	BindTexture(handle uint32)

	Uniform1i(program uint32, name string, value int32)
	Uniform1f(program uint32, name string, value float32)
	Uniform2f(program uint32, name string, value mgl32.Vec2)
	Uniform3f(program uint32, name string, value mgl32.Vec3)
	Uniform4f(program uint32, name string, value mgl32.Vec4)
	UniformMatrix4(program uint32, name string, value mgl32.Mat4)

	Clear(r, g, b, a float32)
	SetViewport(width, height int)
}
