package scene

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Projection selects the camera's projection mode.
type Projection int

const (
	Orthographic Projection = iota
	Perspective
)

func (p Projection) String() string {
	switch p {
	case Orthographic:
		return "orthographic"
	case Perspective:
		return "perspective"
	}
	return "unknown"
}

func (p Projection) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Projection) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "orthographic":
		*p = Orthographic
	case "perspective":
		*p = Perspective
	default:
		return fmt.Errorf("unknown projection type %q", s)
	}
	return nil
}

// OrthoBounds is the view volume of an orthographic camera.
type OrthoBounds struct {
	Left   float32 `json:"left"`
	Right  float32 `json:"right"`
	Top    float32 `json:"top"`
	Bottom float32 `json:"bottom"`
}

// Camera holds a projection and a view built from yaw, pitch and position.
// Angles are in degrees. Orthographic and perspective parameters are
// exclusive: setting one that does not match the mode is rejected.
type Camera struct {
	Base

	mode   Projection
	ortho  OrthoBounds
	fov    float32
	aspect float32
	near   float32
	far    float32

	position mgl32.Vec3
	yaw      float32
	pitch    float32
	view     mgl32.Mat4
}

func newCamera() *Camera {
	c := &Camera{
		mode:     Orthographic,
		ortho:    OrthoBounds{Left: -1, Right: 1, Top: 1, Bottom: -1},
		fov:      60,
		aspect:   1.5,
		near:     0.1,
		far:      1000,
		position: mgl32.Vec3{0, 0, 10},
		yaw:      -90,
	}
	c.updateView()
	return c
}

func (c *Camera) Type() string { return TypeCamera }

func (c *Camera) Mode() Projection     { return c.mode }
func (c *Camera) FOV() float32         { return c.fov }
func (c *Camera) Aspect() float32      { return c.aspect }
func (c *Camera) Near() float32        { return c.near }
func (c *Camera) Far() float32         { return c.far }
func (c *Camera) Position() mgl32.Vec3 { return c.position }
func (c *Camera) Yaw() float32         { return c.yaw }
func (c *Camera) Pitch() float32       { return c.pitch }
func (c *Camera) View() mgl32.Mat4     { return c.view }

// Ortho returns the orthographic bounds. ok is false in perspective mode.
func (c *Camera) Ortho() (OrthoBounds, bool) {
	return c.ortho, c.mode == Orthographic
}

// SetMode switches the projection mode.
func (c *Camera) SetMode(mode Projection) { c.mode = mode }

func (c *Camera) reject(param string) bool {
	slog.Warn("camera parameter does not match projection", "component", c.ID(), "param", param, "mode", c.mode)
	return false
}

// SetOrtho sets the orthographic bounds.
func (c *Camera) SetOrtho(b OrthoBounds) bool {
	if c.mode != Orthographic {
		return c.reject("ortho")
	}
	c.ortho = b
	return true
}

// SetFOV sets the vertical field of view in degrees.
func (c *Camera) SetFOV(deg float32) bool {
	if c.mode != Perspective {
		return c.reject("fov")
	}
	c.fov = deg
	return true
}

// SetAspect sets the perspective aspect ratio.
func (c *Camera) SetAspect(aspect float32) bool {
	if c.mode != Perspective {
		return c.reject("aspect")
	}
	c.aspect = aspect
	return true
}

// SetClip sets the near and far planes, shared by both modes.
func (c *Camera) SetClip(near, far float32) {
	c.near, c.far = near, far
}

// Projection returns the projection matrix of the current mode.
func (c *Camera) Projection() mgl32.Mat4 {
	if c.mode == Perspective {
		return mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
	}
	return mgl32.Ortho(c.ortho.Left, c.ortho.Right, c.ortho.Bottom, c.ortho.Top, c.near, c.far)
}

func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.updateView()
}

func (c *Camera) SetYaw(deg float32) {
	c.yaw = deg
	c.updateView()
}

// SetPitch sets the pitch, clamped to ±89 degrees.
func (c *Camera) SetPitch(deg float32) {
	c.pitch = mgl32.Clamp(deg, -89, 89)
	c.updateView()
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := mgl32.DegToRad(c.yaw)
	p := mgl32.DegToRad(c.pitch)
	return mgl32.Vec3{
		math32.Cos(y) * math32.Cos(p),
		math32.Sin(p),
		math32.Sin(y) * math32.Cos(p),
	}.Normalize()
}

func (c *Camera) updateView() {
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

type cameraJSON struct {
	BaseJSON
	ProjectionType Projection  `json:"projection_type"`
	Projection     OrthoBounds `json:"projection"`
	FOV            float32     `json:"fov"`
	Aspect         float32     `json:"aspect"`
	Near           float32     `json:"near"`
	Far            float32     `json:"far"`
	Position       mgl32.Vec3  `json:"position"`
	Yaw            float32     `json:"yaw"`
	Pitch          float32     `json:"pitch"`
}

func (c *Camera) MarshalJSON() ([]byte, error) {
	return json.Marshal(cameraJSON{
		BaseJSON:       c.MarshalBase(TypeCamera),
		ProjectionType: c.mode,
		Projection:     c.ortho,
		FOV:            c.fov,
		Aspect:         c.aspect,
		Near:           c.near,
		Far:            c.far,
		Position:       c.position,
		Yaw:            c.yaw,
		Pitch:          c.pitch,
	})
}

func (c *Camera) UnmarshalJSON(data []byte) error {
	j := cameraJSON{
		ProjectionType: c.mode,
		Projection:     c.ortho,
		FOV:            c.fov,
		Aspect:         c.aspect,
		Near:           c.near,
		Far:            c.far,
		Position:       c.position,
		Yaw:            c.yaw,
		Pitch:          c.pitch,
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	c.UnmarshalBase(j.BaseJSON)
	c.mode = j.ProjectionType
	c.ortho = j.Projection
	c.fov, c.aspect = j.FOV, j.Aspect
	c.near, c.far = j.Near, j.Far
	c.position = j.Position
	c.yaw = j.Yaw
	c.pitch = mgl32.Clamp(j.Pitch, -89, 89)
	c.updateView()
	return nil
}
