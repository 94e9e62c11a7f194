package graphics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
)

// Shader asset file names inside a shader directory.
const (
	ShaderConfigFile    = "config.json"
	DefaultVertexFile   = "shader.vert"
	DefaultFragmentFile = "shader.frag"
)

type shaderConfig struct {
	Vertex   string        `json:"vertex"`
	Fragment string        `json:"fragment"`
	Uniforms []UniformDecl `json:"uniforms"`
}

// Shader represents a linked shader program and the uniforms it declares
type Shader struct {
	id       uint32
	name     string
	path     string
	program  uint32
	uniforms []UniformDecl
	dev      Device
}

func (s *Shader) AssetID() uint32   { return s.id }
func (s *Shader) AssetName() string { return s.name }
func (s *Shader) Path() string      { return s.path }
func (s *Shader) Program() uint32   { return s.program }

// Uniforms returns the declared uniform list. The slice must not be modified.
func (s *Shader) Uniforms() []UniformDecl { return s.uniforms }

// Release deletes the program.
func (s *Shader) Release() {
	if s.program != 0 && s.dev != nil {
		s.dev.DeleteProgram(s.program)
	}
	s.program = 0
}

// NewShader compiles and links a program from vertex and fragment source
func NewShader(dev Device, id uint32, name, vertexSrc, fragmentSrc string, uniforms []UniformDecl) (*Shader, error) {
	program, err := dev.CreateProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return &Shader{
		id:       id,
		name:     name,
		program:  program,
		uniforms: uniforms,
		dev:      dev,
	}, nil
}

// LoadShader reads a shader directory: config.json naming the vertex and
// fragment sources and declaring the uniforms.
func LoadShader(dev Device, id uint32, dir string) (*Shader, error) {
	data, err := os.ReadFile(filepath.Join(dir, ShaderConfigFile))
	if err != nil {
		return nil, fmt.Errorf("could not read shader config: %w", err)
	}
	var cfg shaderConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal shader config: %w", err)
	}
	if cfg.Vertex == "" {
		cfg.Vertex = DefaultVertexFile
	}
	if cfg.Fragment == "" {
		cfg.Fragment = DefaultFragmentFile
	}

	vertexSource, err := os.ReadFile(filepath.Join(dir, cfg.Vertex))
	if err != nil {
		return nil, fmt.Errorf("could not read vertex shader file: %w", err)
	}
	fragmentSource, err := os.ReadFile(filepath.Join(dir, cfg.Fragment))
	if err != nil {
		return nil, fmt.Errorf("could not read fragment shader file: %w", err)
	}

	s, err := NewShader(dev, id, assetName(dir), string(vertexSource), string(fragmentSource), cfg.Uniforms)
	if err != nil {
		return nil, err
	}
	s.path = dir
	return s, nil
}

// Use activates the shader program
func (s *Shader) Use() {
	s.dev.UseProgram(s.program)
}

// SetBool sets a boolean uniform
func (s *Shader) SetBool(name string, value bool) {
	var intValue int32
	if value {
		intValue = 1
	}
	s.dev.Uniform1i(s.program, name, intValue)
}

// SetInt sets an integer uniform
func (s *Shader) SetInt(name string, value int32) {
	s.dev.Uniform1i(s.program, name, value)
}

// SetFloat sets a float uniform
func (s *Shader) SetFloat(name string, value float32) {
	s.dev.Uniform1f(s.program, name, value)
}

// SetVector2 sets a vec2 uniform
func (s *Shader) SetVector2(name string, value mgl32.Vec2) {
	s.dev.Uniform2f(s.program, name, value)
}

// SetVector3 sets a vec3 uniform
func (s *Shader) SetVector3(name string, value mgl32.Vec3) {
	s.dev.Uniform3f(s.program, name, value)
}

// SetVector4 sets a vec4 uniform
func (s *Shader) SetVector4(name string, value mgl32.Vec4) {
	s.dev.Uniform4f(s.program, name, value)
}

// SetMatrix4 sets a 4x4 matrix uniform
func (s *Shader) SetMatrix4(name string, value mgl32.Mat4) {
	s.dev.UniformMatrix4(s.program, name, value)
}

// SetValue pushes value as a uniform of type t. It returns false when value
// does not hold the Go type of t.
func (s *Shader) SetValue(name string, t UniformType, value any) bool {
	if !t.Accepts(value) {
		return false
	}
	switch v := value.(type) {
	case int32:
		s.SetInt(name, v)
	case float32:
		s.SetFloat(name, v)
	case bool:
		s.SetBool(name, v)
	case mgl32.Vec2:
		s.SetVector2(name, v)
	case mgl32.Vec3:
		s.SetVector3(name, v)
	case mgl32.Vec4:
		s.SetVector4(name, v)
	case mgl32.Mat4:
		s.SetMatrix4(name, v)
	}
	return true
}
