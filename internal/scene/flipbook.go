package scene

import (
	"encoding/json"
	"slices"
)

// FlipbookAnimation cycles through a list of Material components, keeping
// exactly one of them active. UpdateTime is in milliseconds.
type FlipbookAnimation struct {
	Base

	materials  []uint32
	updateTime float64
	running    bool

	elapsed float64
	cursor  int

	// shared holds material ids a clone kept from outside its subtree.
	// They belong to the source flipbook and are never toggled.
	shared map[uint32]bool
}

func (f *FlipbookAnimation) Type() string { return TypeFlipbookAnimation }

func (f *FlipbookAnimation) Running() bool       { return f.running }
func (f *FlipbookAnimation) UpdateTime() float64 { return f.updateTime }
func (f *FlipbookAnimation) Cursor() int         { return f.cursor }

// Materials returns a copy of the material id list.
func (f *FlipbookAnimation) Materials() []uint32 { return slices.Clone(f.materials) }

func (f *FlipbookAnimation) Play() { f.running = true }
func (f *FlipbookAnimation) Stop() { f.running = false }

func (f *FlipbookAnimation) SetUpdateTime(ms float64) { f.updateTime = ms }

// SetMaterials replaces the list and rewinds to its first entry.
func (f *FlipbookAnimation) SetMaterials(ids []uint32) {
	f.materials = slices.Clone(ids)
	f.shared = nil
	f.Init()
}

// Init shows the first material and places the cursor on the second.
func (f *FlipbookAnimation) Init() {
	f.elapsed = 0
	f.cursor = 0
	if len(f.materials) == 0 {
		return
	}
	f.show(0)
	f.cursor = 1 % len(f.materials)
}

func (f *FlipbookAnimation) Update(dt float64) {
	if !f.running || len(f.materials) == 0 {
		return
	}
	f.elapsed += dt
	if f.updateTime <= 0 {
		f.advance()
		return
	}
	for f.elapsed >= f.updateTime {
		f.elapsed -= f.updateTime
		f.advance()
	}
}

func (f *FlipbookAnimation) advance() {
	f.show(f.cursor)
	f.cursor = (f.cursor + 1) % len(f.materials)
}

// show activates the material at index i and deactivates the rest.
func (f *FlipbookAnimation) show(i int) {
	sc, ok := f.OwnerScene()
	if !ok {
		return
	}
	for j, id := range f.materials {
		if f.shared[id] {
			continue
		}
		if c, ok := sc.Component(id); ok {
			c.SetActive(j == i)
		}
	}
}

// RemapIDs rewrites material ids that were cloned along with the flipbook.
// Ids outside the cloned subtree stay in the list but are left alone by
// show.
func (f *FlipbookAnimation) RemapIDs(ids map[uint32]uint32) {
	for i, id := range f.materials {
		if nid, ok := ids[id]; ok {
			f.materials[i] = nid
			continue
		}
		if f.shared == nil {
			f.shared = make(map[uint32]bool)
		}
		f.shared[id] = true
	}
}

type flipbookJSON struct {
	BaseJSON
	Running    bool     `json:"running"`
	Materials  []uint32 `json:"materials"`
	UpdateTime float64  `json:"update_time"`
}

func (f *FlipbookAnimation) MarshalJSON() ([]byte, error) {
	return json.Marshal(flipbookJSON{
		BaseJSON:   f.MarshalBase(TypeFlipbookAnimation),
		Running:    f.running,
		Materials:  f.materials,
		UpdateTime: f.updateTime,
	})
}

func (f *FlipbookAnimation) UnmarshalJSON(data []byte) error {
	var j flipbookJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	f.UnmarshalBase(j.BaseJSON)
	f.running = j.Running
	f.materials = j.Materials
	f.updateTime = j.UpdateTime
	return nil
}
