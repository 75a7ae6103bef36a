package narrative

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrSceneNotFound = errors.New("scene not found")
	ErrInvalidStory  = errors.New("invalid story")
)

// DefaultStartScene is the scene played first when a story does not name one.
const DefaultStartScene = "start_scene"

// Store provides read access to the scenes of a story.
type Store interface {
	// Scene returns the scene with the given id.
	Scene(id string) (*Scene, bool)
	// Initial returns the id of the scene played first.
	Initial() string
	// Scenes returns every scene ordered by id.
	Scenes() []*Scene
}

// Story is the in-memory Store loaded from a content file.
type Story struct {
	Title  string            `json:"title" toml:"title"`
	Start  string            `json:"start" toml:"start"`
	Nodes  map[string]*Scene `json:"scenes" toml:"scenes"`
	sorted []*Scene
}

var _ Store = &Story{}

type Format int

const (
	FormatJSON Format = iota
	FormatTOML
)

// FormatForPath picks the format from the file extension, ignoring a trailing
// .zst compression suffix.
func FormatForPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".zst")))
	if ext == ".toml" {
		return FormatTOML
	}
	return FormatJSON
}

// LoadFile reads a story from disk. Files ending in .zst are zstd compressed.
func LoadFile(path string) (*Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open story %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read story %s: %w", path, err)
	}
	return Parse(data, FormatForPath(path))
}

// Parse decodes and normalizes a story. It does not validate references;
// see Validate.
func Parse(data []byte, format Format) (*Story, error) {
	story := &Story{}
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, story); err != nil {
			return nil, fmt.Errorf("failed to decode toml story: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(story); err != nil {
			return nil, fmt.Errorf("failed to decode json story: %w", err)
		}
	}
	if story.Nodes == nil {
		return nil, fmt.Errorf("%w: no scenes", ErrInvalidStory)
	}
	story.normalize()
	return story, nil
}

// NewStory builds a story from scenes, for tests and generated content.
func NewStory(start string, scenes ...*Scene) *Story {
	story := &Story{
		Start: start,
		Nodes: make(map[string]*Scene, len(scenes)),
	}
	for _, s := range scenes {
		story.Nodes[s.ID] = s
	}
	story.normalize()
	return story
}

func (s *Story) normalize() {
	if s.Start == "" {
		s.Start = DefaultStartScene
	}
	s.sorted = make([]*Scene, 0, len(s.Nodes))
	for id, scene := range s.Nodes {
		if scene == nil {
			delete(s.Nodes, id)
			continue
		}
		scene.normalize(id)
		s.sorted = append(s.sorted, scene)
	}
	sort.Slice(s.sorted, func(i, j int) bool {
		return s.sorted[i].ID < s.sorted[j].ID
	})
}

func (s *Story) Scene(id string) (*Scene, bool) {
	scene, ok := s.Nodes[id]
	return scene, ok
}

func (s *Story) Initial() string {
	return s.Start
}

func (s *Story) Scenes() []*Scene {
	return s.sorted
}

// Encode writes the story in the given format, compressing with zstd when
// compress is set.
func (s *Story) Encode(w io.Writer, format Format, compress bool) error {
	var data []byte
	var err error
	switch format {
	case FormatTOML:
		data, err = toml.Marshal(s)
	default:
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode story: %w", err)
	}

	if !compress {
		_, err = w.Write(data)
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("failed to compress story: %w", err)
	}
	return enc.Close()
}

// Validate reports every broken reference or malformed scene in the story.
func Validate(s Store) error {
	var errs []error
	if _, ok := s.Scene(s.Initial()); !ok {
		errs = append(errs, fmt.Errorf("%w: start scene %q", ErrSceneNotFound, s.Initial()))
	}
	for _, scene := range s.Scenes() {
		if !scene.Type.Valid() {
			errs = append(errs, fmt.Errorf("scene %q: unknown type %q", scene.ID, scene.Type))
		}
		if scene.NextScene != "" {
			if _, ok := s.Scene(scene.NextScene); !ok {
				errs = append(errs, fmt.Errorf("scene %q: %w: nextScene %q", scene.ID, ErrSceneNotFound, scene.NextScene))
			}
		}
		for i, c := range scene.Choices {
			if _, ok := s.Scene(c.NextScene); !ok {
				errs = append(errs, fmt.Errorf("scene %q choice %d: %w: %q", scene.ID, i, ErrSceneNotFound, c.NextScene))
			}
		}
		if scene.Type == SceneTypeDialog && len(scene.Contents) == 0 {
			errs = append(errs, fmt.Errorf("scene %q: dialog scene has no contents", scene.ID))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidStory, errors.Join(errs...))
	}
	return nil
}
