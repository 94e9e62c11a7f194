// Package graphicstest provides a recording graphics.Device for tests.
package graphicstest

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"mini-engine/internal/graphics"
)

// ErrCompile is returned by CreateProgram when the source contains "#error".
var ErrCompile = errors.New("graphicstest: compile failure")

// Device records every call it receives. Handles are allocated from a
// single counter starting at 1.
type Device struct {
	mu sync.Mutex

	next     uint32
	meshes   map[uint32]bool
	programs map[uint32]bool
	textures map[uint32]bool

	// Uniforms holds the last value pushed per program and name.
	Uniforms map[uint32]map[string]any
	// Calls is the ordered log of draw-time calls.
	Calls []string
	// Draws counts DrawMesh calls per mesh handle.
	Draws map[uint32]int

	current uint32
	bound   uint32
}

var _ graphics.Device = (*Device)(nil)

// New returns an empty recording device.
func New() *Device {
	return &Device{
		meshes:   make(map[uint32]bool),
		programs: make(map[uint32]bool),
		textures: make(map[uint32]bool),
		Uniforms: make(map[uint32]map[string]any),
		Draws:    make(map[uint32]int),
	}
}

func (d *Device) alloc() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateMesh(layout graphics.MeshLayout, vertices []float32, indices []uint32) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := d.alloc()
	d.meshes[h] = true
	return h, nil
}

func (d *Device) DeleteMesh(handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.meshes, handle)
}

func (d *Device) DrawMesh(handle uint32, indexCount int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Draws[handle]++
	d.Calls = append(d.Calls, fmt.Sprintf("draw mesh=%d program=%d texture=%d", handle, d.current, d.bound))
}

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if vertexSrc == "#error" || fragmentSrc == "#error" {
		return 0, ErrCompile
	}
	h := d.alloc()
	d.programs[h] = true
	return h, nil
}

func (d *Device) DeleteProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.programs, program)
}

func (d *Device) UseProgram(program uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = program
}

func (d *Device) CreateTexture(img *image.RGBA) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h := d.alloc()
	d.textures[h] = true
	return h, nil
}

func (d *Device) DeleteTexture(handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, handle)
}

func (d *Device) BindTexture(handle uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bound = handle
}

func (d *Device) set(program uint32, name string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.Uniforms[program]
	if !ok {
		m = make(map[string]any)
		d.Uniforms[program] = m
	}
	m[name] = value
}

func (d *Device) Uniform1i(program uint32, name string, value int32)       { d.set(program, name, value) }
func (d *Device) Uniform1f(program uint32, name string, value float32)     { d.set(program, name, value) }
func (d *Device) Uniform2f(program uint32, name string, value mgl32.Vec2)  { d.set(program, name, value) }
func (d *Device) Uniform3f(program uint32, name string, value mgl32.Vec3)  { d.set(program, name, value) }
func (d *Device) Uniform4f(program uint32, name string, value mgl32.Vec4)  { d.set(program, name, value) }
func (d *Device) UniformMatrix4(program uint32, name string, v mgl32.Mat4) { d.set(program, name, v) }

func (d *Device) Clear(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, "clear")
}

func (d *Device) SetViewport(width, height int) {}

// Live returns the number of live meshes, programs and textures.
func (d *Device) Live() (meshes, programs, textures int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.meshes), len(d.programs), len(d.textures)
}

// Uniform returns the last value pushed for name on program.
func (d *Device) Uniform(program uint32, name string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.Uniforms[program][name]
	return v, ok
}

// Reset clears the call log and draw counters.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = nil
	clear(d.Draws)
	clear(d.Uniforms)
}
