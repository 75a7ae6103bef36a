package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// TextureFactory turns a decoded image into a drawable texture.
type TextureFactory func(img image.Image) Texture

// AudioDevice creates playable handles from encoded audio bytes.
type AudioDevice interface {
	NewHandle(ref Ref, data []byte) (AudioHandle, error)
}

// Dirs maps each asset kind to its base directory.
type Dirs struct {
	Backgrounds string `toml:"backgrounds"`
	Characters  string `toml:"characters"`
	Music       string `toml:"music"`
	Voices      string `toml:"voices"`
	Sounds      string `toml:"sounds"`
}

// DefaultDirs mirrors the layout of a packaged story.
var DefaultDirs = Dirs{
	Backgrounds: "images/backgrounds",
	Characters:  "images/characters",
	Music:       "audio/music",
	Voices:      "audio/voices",
	Sounds:      "audio/sounds",
}

func (d Dirs) For(k Kind) string {
	switch k {
	case KindBackground:
		return d.Backgrounds
	case KindCharacter:
		return d.Characters
	case KindMusic:
		return d.Music
	case KindVoice:
		return d.Voices
	case KindSound:
		return d.Sounds
	}
	return ""
}

// FileLoader reads assets from a file system rooted at the story directory.
type FileLoader struct {
	fsys    fs.FS
	dirs    Dirs
	texture TextureFactory
	device  AudioDevice
}

var _ Loader = &FileLoader{}

type FileLoaderOptions struct {
	Dirs Dirs
	// Texture converts decoded images. Nil keeps the decoded image.Image.
	Texture TextureFactory
	// Device creates audio handles. Nil makes every audio load fail.
	Device AudioDevice
}

func NewFileLoader(fsys fs.FS, opts FileLoaderOptions) *FileLoader {
	if opts.Texture == nil {
		opts.Texture = func(img image.Image) Texture { return img }
	}
	return &FileLoader{
		fsys:    fsys,
		dirs:    opts.Dirs,
		texture: opts.Texture,
		device:  opts.Device,
	}
}

// NewDirLoader is NewFileLoader for a directory on disk.
func NewDirLoader(root string, opts FileLoaderOptions) *FileLoader {
	return NewFileLoader(os.DirFS(root), opts)
}

// Resolve returns the file system path of ref.
func (l *FileLoader) Resolve(ref Ref) string {
	return path.Join(l.dirs.For(ref.Kind), ref.Path)
}

// Exists reports whether the file for ref is present.
func (l *FileLoader) Exists(ref Ref) bool {
	_, err := fs.Stat(l.fsys, l.Resolve(ref))
	return err == nil
}

func (l *FileLoader) read(ctx context.Context, ref Ref) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fsys, l.Resolve(ref))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.Resolve(ref), err)
	}
	return data, nil
}

func (l *FileLoader) LoadTexture(ctx context.Context, ref Ref) (Texture, error) {
	data, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", ref.Path, err)
	}
	return l.texture(img), nil
}

func (l *FileLoader) LoadAudio(ctx context.Context, ref Ref) (AudioHandle, error) {
	if l.device == nil {
		return nil, fmt.Errorf("no audio device for %s", ref)
	}
	data, err := l.read(ctx, ref)
	if err != nil {
		return nil, err
	}
	return l.device.NewHandle(ref, data)
}
