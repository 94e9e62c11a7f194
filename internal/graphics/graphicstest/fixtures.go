package graphicstest

import (
	"encoding/binary"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"mini-engine/internal/graphics"
)

// WriteQuadMesh writes a textured unit quad mesh directory at dir.
func WriteQuadMesh(t testing.TB, dir string) {
	t.Helper()
	mustMkdir(t, dir)

	vertices := []float32{
		// x, y, z, u, v
		-0.5, -0.5, 0, 0, 0,
		0.5, -0.5, 0, 1, 0,
		0.5, 0.5, 0, 1, 1,
		-0.5, 0.5, 0, 0, 1,
	}
	indices := []uint32{0, 1, 2, 2, 3, 0}

	vb := make([]byte, 4*len(vertices))
	for i, v := range vertices {
		binary.LittleEndian.PutUint32(vb[i*4:], math.Float32bits(v))
	}
	ib := make([]byte, 4*len(indices))
	for i, v := range indices {
		binary.LittleEndian.PutUint32(ib[i*4:], v)
	}

	mustWrite(t, filepath.Join(dir, graphics.MeshVerticesFile), vb)
	mustWrite(t, filepath.Join(dir, graphics.MeshIndicesFile), ib)
	mustWrite(t, filepath.Join(dir, graphics.MeshConfigFile), []byte(`{
		"stride": 5,
		"attributes": {
			"position": {"offset": 0, "size": 3},
			"texcoord": {"offset": 3, "size": 2}
		}
	}`))
}

// WriteShader writes a shader directory at dir declaring uniforms.
func WriteShader(t testing.TB, dir string, uniforms ...graphics.UniformDecl) {
	t.Helper()
	mustMkdir(t, dir)

	cfg := map[string]any{
		"vertex":   "shader.vert",
		"fragment": "shader.frag",
		"uniforms": uniforms,
	}
	if uniforms == nil {
		cfg["uniforms"] = []graphics.UniformDecl{}
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal shader config: %v", err)
	}
	mustWrite(t, filepath.Join(dir, graphics.ShaderConfigFile), data)
	mustWrite(t, filepath.Join(dir, "shader.vert"), []byte("#version 410 core\nvoid main() {}\n"))
	mustWrite(t, filepath.Join(dir, "shader.frag"), []byte("#version 410 core\nvoid main() {}\n"))
}

// WriteTexture writes a w x h PNG at path.
func WriteTexture(t testing.TB, path string, w, h int) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 255, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create texture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode texture: %v", err)
	}
}

func mustMkdir(t testing.TB, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func mustWrite(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
