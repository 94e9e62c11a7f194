package scene

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
)

// LightSource is a point light.
type LightSource struct {
	Base

	color     mgl32.Vec3
	intensity float32
}

func newLightSource() *LightSource {
	return &LightSource{color: mgl32.Vec3{1, 1, 1}, intensity: 1}
}

func (l *LightSource) Type() string { return TypeLightSource }

func (l *LightSource) Color() mgl32.Vec3  { return l.color }
func (l *LightSource) Intensity() float32 { return l.intensity }

func (l *LightSource) SetColor(c mgl32.Vec3)  { l.color = c }
func (l *LightSource) SetIntensity(i float32) { l.intensity = i }

type lightJSON struct {
	BaseJSON
	Color     mgl32.Vec3 `json:"color"`
	Intensity float32    `json:"intensity"`
}

func (l *LightSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(lightJSON{
		BaseJSON:  l.MarshalBase(TypeLightSource),
		Color:     l.color,
		Intensity: l.intensity,
	})
}

func (l *LightSource) UnmarshalJSON(data []byte) error {
	j := lightJSON{Color: l.color, Intensity: l.intensity}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	l.UnmarshalBase(j.BaseJSON)
	l.color, l.intensity = j.Color, j.Intensity
	return nil
}
