// Package opengl implements graphics.Device on OpenGL 4.1 core.
package opengl

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"mini-engine/internal/config"
	"mini-engine/internal/graphics"
)

// Vertex attribute locations bound by every mesh.
const (
	PositionLocation = 0
	TexCoordLocation = 1
	NormalLocation   = 2
)

type mesh struct {
	vao uint32
	vbo uint32
	ebo uint32
}

// Device issues GL calls. It must only be used from the thread that owns
// the GL context.
type Device struct {
	meshes    map[uint32]*mesh
	nextMesh  uint32
	locations map[uint32]map[string]int32
}

var _ graphics.Device = (*Device)(nil)

// New initializes GL function pointers and the default pipeline state.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return &Device{
		meshes:    make(map[uint32]*mesh),
		locations: make(map[uint32]map[string]int32),
	}, nil
}

// Version returns the GL version string of the current context.
func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (d *Device) CreateMesh(layout graphics.MeshLayout, vertices []float32, indices []uint32) (uint32, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return 0, fmt.Errorf("empty mesh")
	}
	m := &mesh{}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	stride := int32(layout.Stride * 4)
	bind := func(loc uint32, a *graphics.Attribute) {
		if a == nil {
			return
		}
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, int32(a.Size), gl.FLOAT, false, stride, uintptr(a.Offset*4))
	}
	bind(PositionLocation, layout.Position)
	bind(TexCoordLocation, layout.TexCoord)
	bind(NormalLocation, layout.Normal)

	gl.BindVertexArray(0)

	d.nextMesh++
	d.meshes[d.nextMesh] = m
	return d.nextMesh, nil
}

func (d *Device) DeleteMesh(handle uint32) {
	m, ok := d.meshes[handle]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
	delete(d.meshes, handle)
}

func (d *Device) DrawMesh(handle uint32, indexCount int32) {
	m, ok := d.meshes[handle]
	if !ok {
		return
	}
	if config.GetWireframeMode() {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", log)
	}
	d.locations[program] = make(map[string]int32)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", log)
	}
	return shader, nil
}

func (d *Device) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
	delete(d.locations, program)
}

func (d *Device) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Device) CreateTexture(img *image.RGBA) (uint32, error) {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(img.Rect.Size().X),
		int32(img.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture, nil
}

func (d *Device) DeleteTexture(handle uint32) {
	gl.DeleteTextures(1, &handle)
}

func (d *Device) BindTexture(handle uint32) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, handle)
}

// location caches uniform lookups per program.
func (d *Device) location(program uint32, name string) int32 {
	locs, ok := d.locations[program]
	if !ok {
		locs = make(map[string]int32)
		d.locations[program] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
	locs[name] = loc
	return loc
}

func (d *Device) Uniform1i(program uint32, name string, value int32) {
	gl.Uniform1i(d.location(program, name), value)
}

func (d *Device) Uniform1f(program uint32, name string, value float32) {
	gl.Uniform1f(d.location(program, name), value)
}

func (d *Device) Uniform2f(program uint32, name string, value mgl32.Vec2) {
	gl.Uniform2f(d.location(program, name), value.X(), value.Y())
}

func (d *Device) Uniform3f(program uint32, name string, value mgl32.Vec3) {
	gl.Uniform3f(d.location(program, name), value.X(), value.Y(), value.Z())
}

func (d *Device) Uniform4f(program uint32, name string, value mgl32.Vec4) {
	gl.Uniform4f(d.location(program, name), value.X(), value.Y(), value.Z(), value.W())
}

func (d *Device) UniformMatrix4(program uint32, name string, value mgl32.Mat4) {
	gl.UniformMatrix4fv(d.location(program, name), 1, false, &value[0])
}

func (d *Device) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}
