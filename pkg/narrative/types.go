package narrative

import (
	"fmt"
	"strings"
)

type SceneType string

const (
	SceneTypeStart  SceneType = "start"
	SceneTypeDialog SceneType = "dialog"
	SceneTypeSelect SceneType = "select"
)

// legacySceneTypes maps type names used by older content files.
var legacySceneTypes = map[string]SceneType{
	"normal": SceneTypeDialog,
}

func (t SceneType) Valid() bool {
	switch t {
	case SceneTypeStart, SceneTypeDialog, SceneTypeSelect:
		return true
	}
	return false
}

// Slot is one of the three character display positions.
type Slot int

const (
	SlotLeft Slot = iota
	SlotCenter
	SlotRight
)

// Slots lists every slot in render order.
var Slots = [3]Slot{SlotLeft, SlotCenter, SlotRight}

func (s Slot) String() string {
	switch s {
	case SlotLeft:
		return "left"
	case SlotCenter:
		return "center"
	case SlotRight:
		return "right"
	}
	return "unknown"
}

func ParseSlot(s string) (Slot, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "character_") {
	case "left":
		return SlotLeft, nil
	case "center":
		return SlotCenter, nil
	case "right":
		return SlotRight, nil
	}
	return 0, fmt.Errorf("unknown slot: %q", s)
}

func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(b []byte) error {
	parsed, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// SlotSet is a set of slots compared by value.
type SlotSet uint8

// AllSlots contains every slot.
const AllSlots SlotSet = 1<<SlotLeft | 1<<SlotCenter | 1<<SlotRight

func NewSlotSet(slots ...Slot) SlotSet {
	var set SlotSet
	for _, s := range slots {
		set = set.With(s)
	}
	return set
}

func (set SlotSet) Has(s Slot) bool {
	return set&(1<<s) != 0
}

func (set SlotSet) With(s Slot) SlotSet {
	return set | 1<<s
}

func (set SlotSet) String() string {
	names := make([]string, 0, 3)
	for _, s := range Slots {
		if set.Has(s) {
			names = append(names, s.String())
		}
	}
	return "[" + strings.Join(names, ",") + "]"
}

// CharacterSlots holds per-slot portrait paths. A nil pointer means the slot
// is not mentioned and stays as it is; an empty string clears the slot.
type CharacterSlots struct {
	Left   *string `json:"character_left,omitempty" toml:"character_left,omitempty"`
	Center *string `json:"character_center,omitempty" toml:"character_center,omitempty"`
	Right  *string `json:"character_right,omitempty" toml:"character_right,omitempty"`
}

// Get returns the requested path for slot s.
func (c CharacterSlots) Get(s Slot) *string {
	switch s {
	case SlotLeft:
		return c.Left
	case SlotCenter:
		return c.Center
	case SlotRight:
		return c.Right
	}
	return nil
}

// Content is one beat of dialogue within a scene.
type Content struct {
	// Background is nil when the line does not mention a background.
	Background       *string `json:"background,omitempty" toml:"background,omitempty"`
	LegacyBackground *string `json:"bg,omitempty" toml:"bg,omitempty"`

	CharacterSlots

	// ActiveCharacters is nil when the line keeps the current active set.
	ActiveCharacters []Slot `json:"active_characters,omitempty" toml:"active_characters,omitempty"`

	Name  string `json:"name,omitempty" toml:"name,omitempty"`
	Text  string `json:"text,omitempty" toml:"text,omitempty"`
	Music string `json:"music,omitempty" toml:"music,omitempty"`
	Voice string `json:"voice,omitempty" toml:"voice,omitempty"`
	Sound string `json:"sound,omitempty" toml:"sound,omitempty"`
}

// ActiveSet returns the active slot set named by the content and whether the
// content names one at all.
func (c Content) ActiveSet() (SlotSet, bool) {
	if c.ActiveCharacters == nil {
		return 0, false
	}
	return NewSlotSet(c.ActiveCharacters...), true
}

func (c *Content) normalize() {
	if c.Background == nil && c.LegacyBackground != nil {
		c.Background = c.LegacyBackground
	}
	c.LegacyBackground = nil
}

// Choice is one option of a select scene.
type Choice struct {
	Text      string `json:"text" toml:"text"`
	NextScene string `json:"nextScene" toml:"nextScene"`
}

// Scene is a named unit of narrative content. Scenes are immutable once loaded.
type Scene struct {
	ID        string    `json:"id" toml:"id"`
	Type      SceneType `json:"type" toml:"type"`
	NextScene string    `json:"nextScene,omitempty" toml:"nextScene,omitempty"`

	// Label is the text of the start button for start scenes.
	Label string `json:"label,omitempty" toml:"label,omitempty"`

	// Scene level display, used on entry by start and select scenes.
	Background       *string `json:"background,omitempty" toml:"background,omitempty"`
	LegacyBackground *string `json:"bg,omitempty" toml:"bg,omitempty"`
	CharacterSlots
	ActiveCharacters []Slot `json:"active_characters,omitempty" toml:"active_characters,omitempty"`
	Music            string `json:"music,omitempty" toml:"music,omitempty"`

	Contents []Content `json:"contents,omitempty" toml:"contents,omitempty"`
	Choices  []Choice  `json:"choices,omitempty" toml:"choices,omitempty"`
}

// Terminal reports whether the scene has no successor.
func (s *Scene) Terminal() bool {
	return s.NextScene == "" && len(s.Choices) == 0
}

// EntryDisplay returns the scene level display as a content line.
func (s *Scene) EntryDisplay() Content {
	return Content{
		Background:       s.Background,
		CharacterSlots:   s.CharacterSlots,
		ActiveCharacters: s.ActiveCharacters,
		Music:            s.Music,
	}
}

// Content returns the line at index i.
func (s *Scene) Content(i int) (Content, bool) {
	if i < 0 || i >= len(s.Contents) {
		return Content{}, false
	}
	return s.Contents[i], true
}

func (s *Scene) normalize(id string) {
	if s.ID == "" {
		s.ID = id
	}
	if t, ok := legacySceneTypes[string(s.Type)]; ok {
		s.Type = t
	}
	if s.Background == nil && s.LegacyBackground != nil {
		s.Background = s.LegacyBackground
	}
	s.LegacyBackground = nil
	for i := range s.Contents {
		s.Contents[i].normalize()
	}
}

// String returns a pointer to v, for building content in code.
func String(v string) *string {
	return &v
}
