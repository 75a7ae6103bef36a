package input

import (
	"image"

	"github.com/solarlune/resolv"
)

// Target is what an activation landed on.
type Target int

const (
	TargetNone Target = iota
	// TargetControl is a button. The UI handles the click itself.
	TargetControl
	// TargetTextArea is the dialog text.
	TargetTextArea
)

func (t Target) String() string {
	switch t {
	case TargetControl:
		return "control"
	case TargetTextArea:
		return "text area"
	}
	return "none"
}

const (
	tagControl  = "control"
	tagTextArea = "textarea"
	cellSize    = 16
)

// HitMap resolves screen points to activation targets. Controls win over the
// text area when they overlap.
type HitMap struct {
	bounds  image.Rectangle
	space   *resolv.Space
	probe   *resolv.Object
	regions map[*resolv.Object]image.Rectangle
}

func NewHitMap(width, height int) *HitMap {
	m := &HitMap{
		bounds:  image.Rect(0, 0, width, height),
		space:   resolv.NewSpace(width, height, cellSize, cellSize),
		probe:   resolv.NewObject(0, 0, 1, 1),
		regions: make(map[*resolv.Object]image.Rectangle),
	}
	m.space.Add(m.probe)
	return m
}

// Reset removes every region.
func (m *HitMap) Reset() {
	for obj := range m.regions {
		m.space.Remove(obj)
		delete(m.regions, obj)
	}
}

func (m *HitMap) Add(target Target, rect image.Rectangle) {
	rect = rect.Intersect(m.bounds)
	if rect.Empty() || target == TargetNone {
		return
	}
	tag := tagTextArea
	if target == TargetControl {
		tag = tagControl
	}
	obj := resolv.NewObject(float64(rect.Min.X), float64(rect.Min.Y), float64(rect.Dx()), float64(rect.Dy()), tag)
	m.space.Add(obj)
	m.regions[obj] = rect
}

func (m *HitMap) Hit(p image.Point) Target {
	if !p.In(m.bounds) {
		return TargetNone
	}
	m.probe.Position.X, m.probe.Position.Y = float64(p.X), float64(p.Y)
	m.probe.Update()

	collision := m.probe.Check(0, 0, tagControl, tagTextArea)
	if collision == nil {
		return TargetNone
	}
	hit := TargetNone
	// cells are coarse; confirm against the exact rectangle
	for _, obj := range collision.Objects {
		rect, ok := m.regions[obj]
		if !ok || !p.In(rect) {
			continue
		}
		if obj.HasTags(tagControl) {
			return TargetControl
		}
		hit = TargetTextArea
	}
	return hit
}
