// Package tween provides the "tween" component type: it eases the position
// of its node's Transform towards a target. The type is not part of the
// built-in registry; install Builder as the context's fallback builder.
package tween

import (
	"encoding/json"
	"log/slog"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"mini-engine/internal/scene"
)

// Type is the component type tag.
const Type = "tween"

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in_quad":      ease.InQuad,
	"out_quad":     ease.OutQuad,
	"in_out_quad":  ease.InOutQuad,
	"in_cubic":     ease.InCubic,
	"out_cubic":    ease.OutCubic,
	"in_out_cubic": ease.InOutCubic,
	"in_sine":      ease.InSine,
	"out_sine":     ease.OutSine,
	"in_out_sine":  ease.InOutSine,
	"out_bounce":   ease.OutBounce,
	"out_back":     ease.OutBack,
	"out_elastic":  ease.OutElastic,
}

// Easings returns the accepted easing names.
func Easings() []string {
	return slices.Sorted(maps.Keys(easings))
}

// Tween moves the sibling Transform from its position at Init to the
// target over duration milliseconds. With loop set it then runs back and
// forth forever.
type Tween struct {
	scene.Base

	to       mgl32.Vec3
	duration float32
	easing   string
	loop     bool

	from    mgl32.Vec3
	forward bool
	tweens  [3]*gween.Tween
	done    bool
	dirty   bool
}

func newTween() *Tween {
	return &Tween{duration: 1000, easing: "linear"}
}

func (t *Tween) Type() string { return Type }

func (t *Tween) Target() mgl32.Vec3 { return t.to }
func (t *Tween) Duration() float32  { return t.duration }
func (t *Tween) Easing() string     { return t.easing }
func (t *Tween) Loop() bool         { return t.loop }
func (t *Tween) Done() bool         { return t.done }
func (t *Tween) Dirty() bool        { return t.dirty }

// SetTarget, SetDuration, SetEasing and SetLoop take effect on the next
// Init.
func (t *Tween) SetTarget(to mgl32.Vec3) { t.to = to }
func (t *Tween) SetDuration(ms float32)  { t.duration = ms }
func (t *Tween) SetLoop(loop bool)       { t.loop = loop }

// SetEasing selects an easing by name. Unknown names are rejected.
func (t *Tween) SetEasing(name string) bool {
	if _, ok := easings[name]; !ok {
		slog.Warn("unknown easing", "component", t.ID(), "easing", name)
		return false
	}
	t.easing = name
	return true
}

// Init starts the tween from the sibling Transform's current position.
// Without a Transform the tween is invalid.
func (t *Tween) Init() {
	tr, ok := t.transform()
	if !ok {
		t.SetValid(false)
		return
	}
	t.SetValid(true)
	t.from = tr.Position()
	t.forward = true
	t.start()
}

// start begins a leg: from -> to going forward, to -> from going back.
func (t *Tween) start() {
	from, to := t.from, t.to
	if !t.forward {
		from, to = to, from
	}
	fn := easings[t.easing]
	for i := range t.tweens {
		t.tweens[i] = gween.New(from[i], to[i], t.duration, fn)
	}
	t.done = false
}

func (t *Tween) transform() (*scene.Transform, bool) {
	n, ok := t.OwnerNode()
	if !ok {
		return nil, false
	}
	return scene.ComponentOf[*scene.Transform](n)
}

// Update advances by dt milliseconds and writes the position.
func (t *Tween) Update(dt float64) {
	t.dirty = false
	if t.done || t.tweens[0] == nil {
		return
	}
	tr, ok := t.transform()
	if !ok {
		return
	}

	var pos mgl32.Vec3
	finished := true
	for i, tw := range t.tweens {
		v, fin := tw.Update(float32(dt))
		pos[i] = v
		finished = finished && fin
	}
	tr.SetPosition(pos)
	t.dirty = true

	if !finished {
		return
	}
	if t.loop {
		t.forward = !t.forward
		t.start()
		return
	}
	t.done = true
}

type tweenJSON struct {
	scene.BaseJSON
	To       mgl32.Vec3 `json:"to"`
	Duration float32    `json:"duration"`
	Easing   string     `json:"easing"`
	Loop     bool       `json:"loop"`
}

func (t *Tween) MarshalJSON() ([]byte, error) {
	return json.Marshal(tweenJSON{
		BaseJSON: t.MarshalBase(Type),
		To:       t.to,
		Duration: t.duration,
		Easing:   t.easing,
		Loop:     t.loop,
	})
}

func (t *Tween) UnmarshalJSON(data []byte) error {
	j := tweenJSON{Duration: t.duration, Easing: t.easing}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	t.UnmarshalBase(j.BaseJSON)
	t.to = j.To
	t.duration = j.Duration
	t.loop = j.Loop
	if !t.SetEasing(j.Easing) {
		t.easing = "linear"
	}
	return nil
}
