package graphics

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformType is the declared type of a shader uniform.
type UniformType int

const (
	UniformInvalid UniformType = iota
	UniformInt
	UniformFloat
	UniformBool
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
)

var uniformTypeNames = [...]string{
	UniformInvalid: "invalid",
	UniformInt:     "int",
	UniformFloat:   "float",
	UniformBool:    "bool",
	UniformVec2:    "vec2",
	UniformVec3:    "vec3",
	UniformVec4:    "vec4",
	UniformMat4:    "mat4",
}

func (t UniformType) String() string {
	if t < 0 || int(t) >= len(uniformTypeNames) {
		return "invalid"
	}
	return uniformTypeNames[t]
}

// ParseUniformType returns the UniformType named s.
func ParseUniformType(s string) (UniformType, bool) {
	for i, n := range uniformTypeNames {
		if i != int(UniformInvalid) && n == s {
			return UniformType(i), true
		}
	}
	return UniformInvalid, false
}

func (t UniformType) MarshalJSON() ([]byte, error) {
	if t == UniformInvalid {
		return nil, fmt.Errorf("graphics: cannot encode invalid uniform type")
	}
	return json.Marshal(t.String())
}

func (t *UniformType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := ParseUniformType(s)
	if !ok {
		return fmt.Errorf("graphics: unknown uniform type %q", s)
	}
	*t = v
	return nil
}

// Accepts reports whether value has the Go type used for t.
func (t UniformType) Accepts(value any) bool {
	switch value.(type) {
	case int32:
		return t == UniformInt
	case float32:
		return t == UniformFloat
	case bool:
		return t == UniformBool
	case mgl32.Vec2:
		return t == UniformVec2
	case mgl32.Vec3:
		return t == UniformVec3
	case mgl32.Vec4:
		return t == UniformVec4
	case mgl32.Mat4:
		return t == UniformMat4
	}
	return false
}

// UniformDecl is a uniform a shader declares in its config.
type UniformDecl struct {
	Name string      `json:"name"`
	Type UniformType `json:"type"`
}
