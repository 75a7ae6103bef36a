// Package assets loads and memoizes visual and audio handles by path. It has
// no knowledge of narrative state.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var (
	ErrLoadTimeout = errors.New("asset load timed out")
	// ErrPurged is delivered to waiters of a load that finished after the
	// cache was purged.
	ErrPurged = errors.New("asset cache purged")
)

// Kind says what an asset is used for. It selects the base directory and,
// for audio, the playback channel the handle belongs to.
type Kind int

const (
	KindBackground Kind = iota
	KindCharacter
	KindMusic
	KindVoice
	KindSound
)

func (k Kind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindCharacter:
		return "character"
	case KindMusic:
		return "music"
	case KindVoice:
		return "voice"
	case KindSound:
		return "sound"
	}
	return "unknown"
}

// IsAudio reports whether assets of this kind are audio handles.
func (k Kind) IsAudio() bool {
	return k == KindMusic || k == KindVoice || k == KindSound
}

// Loops reports whether audio of this kind repeats until stopped.
func (k Kind) Loops() bool {
	return k == KindMusic
}

// Ref identifies a cached asset.
type Ref struct {
	Kind Kind
	Path string
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Kind, r.Path)
}

// Texture is a loaded image. *ebiten.Image satisfies it.
type Texture interface {
	Bounds() image.Rectangle
}

// AudioHandle is a playable sound created by an AudioDevice.
type AudioHandle interface {
	// Play starts or resumes playback. A platform that refuses to start audio
	// returns an error and playback does not begin.
	Play() error
	Pause()
	// Rewind moves playback to position zero.
	Rewind() error
	IsPlaying() bool
	SetVolume(volume float64)
	Close() error
}

// Loader resolves refs into handles. Implementations may block and are
// always called off the loop.
type Loader interface {
	LoadTexture(ctx context.Context, ref Ref) (Texture, error)
	LoadAudio(ctx context.Context, ref Ref) (AudioHandle, error)
}

type deallocator interface {
	Deallocate()
}

func disposeTexture(t Texture) {
	if d, ok := t.(deallocator); ok {
		d.Deallocate()
	}
}
