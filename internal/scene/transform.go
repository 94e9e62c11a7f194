package scene

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a node relative to its parent. Rotation is in radians.
type Transform struct {
	Base

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3

	model mgl32.Mat4
	dirty bool
}

func newTransform() *Transform {
	return &Transform{
		scale: mgl32.Vec3{1, 1, 1},
		model: mgl32.Ident4(),
		dirty: true,
	}
}

func (t *Transform) Type() string { return TypeTransform }

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Vec3 { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }

// Dirty reports whether a setter ran since the last Model call.
func (t *Transform) Dirty() bool { return t.dirty }

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.dirty = true
}

func (t *Transform) SetRotation(r mgl32.Vec3) {
	t.rotation = r
	t.dirty = true
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.dirty = true
}

// Translate moves the position by delta.
func (t *Transform) Translate(delta mgl32.Vec3) {
	t.SetPosition(t.position.Add(delta))
}

// Model returns translate·rotX·rotY·rotZ·scale, rebuilding it only when a
// setter ran since the previous call.
func (t *Transform) Model() mgl32.Mat4 {
	if t.dirty {
		t.model = mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z()).
			Mul4(mgl32.HomogRotate3DX(t.rotation.X())).
			Mul4(mgl32.HomogRotate3DY(t.rotation.Y())).
			Mul4(mgl32.HomogRotate3DZ(t.rotation.Z())).
			Mul4(mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z()))
		t.dirty = false
	}
	return t.model
}

// Ancestors returns the transforms of the node's ancestors that carry one,
// nearest first.
func (t *Transform) Ancestors() []*Transform {
	n, ok := t.OwnerNode()
	if !ok {
		return nil
	}
	var out []*Transform
	for p, ok := n.ParentNode(); ok; p, ok = p.ParentNode() {
		if pt, ok := ComponentOf[*Transform](p); ok {
			out = append(out, pt)
		}
	}
	return out
}

type transformJSON struct {
	BaseJSON
	Position mgl32.Vec3 `json:"position"`
	Rotation mgl32.Vec3 `json:"rotation"`
	Scale    mgl32.Vec3 `json:"scale"`
}

func (t *Transform) MarshalJSON() ([]byte, error) {
	return json.Marshal(transformJSON{
		BaseJSON: t.MarshalBase(TypeTransform),
		Position: t.position,
		Rotation: t.rotation,
		Scale:    t.scale,
	})
}

func (t *Transform) UnmarshalJSON(data []byte) error {
	j := transformJSON{Position: t.position, Rotation: t.rotation, Scale: t.scale}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	t.UnmarshalBase(j.BaseJSON)
	t.position, t.rotation, t.scale = j.Position, j.Rotation, j.Scale
	t.dirty = true
	return nil
}
