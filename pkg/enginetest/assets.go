// Package enginetest provides in-memory fakes for exercising the playback
// engine without a window or an audio device.
package enginetest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/cbodonnell/galplayer/pkg/assets"
)

var ErrRejected = errors.New("playback rejected")

// Texture is a fake texture remembering the path it was loaded from.
type Texture struct {
	Path        string
	Deallocated bool
}

func (t *Texture) Bounds() image.Rectangle {
	return image.Rect(0, 0, 100, 200)
}

func (t *Texture) Deallocate() {
	t.Deallocated = true
}

// Handle is a fake audio handle. Events records every call in order.
type Handle struct {
	Ref assets.Ref

	mu      sync.Mutex
	playing bool
	closed  bool
	volume  float64
	reject  bool
	events  []string
}

var _ assets.AudioHandle = &Handle{}

func NewHandle(ref assets.Ref) *Handle {
	return &Handle{Ref: ref, volume: 1}
}

func (h *Handle) record(event string) {
	h.events = append(h.events, event)
}

// Reject makes Play fail until called with false.
func (h *Handle) Reject(reject bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reject = reject
}

func (h *Handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.reject {
		h.record("rejected")
		return ErrRejected
	}
	h.playing = true
	h.record("play")
	return nil
}

func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.record("pause")
}

func (h *Handle) Rewind() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("rewind")
	return nil
}

func (h *Handle) IsPlaying() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *Handle) SetVolume(volume float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = volume
}

func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.closed = true
	h.record("close")
	return nil
}

func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Events returns a copy of the recorded calls.
func (h *Handle) Events() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

// Loader is a fake assets.Loader. Paths listed in Missing fail to load, and
// paths listed in Gates block until their gate channel is closed.
type Loader struct {
	mu       sync.Mutex
	missing  map[string]error
	gates    map[string]chan struct{}
	loads    map[assets.Ref]int
	handles  map[assets.Ref]*Handle
	textures map[assets.Ref]*Texture
}

var _ assets.Loader = &Loader{}

func NewLoader() *Loader {
	return &Loader{
		missing:  make(map[string]error),
		gates:    make(map[string]chan struct{}),
		loads:    make(map[assets.Ref]int),
		handles:  make(map[assets.Ref]*Handle),
		textures: make(map[assets.Ref]*Texture),
	}
}

// Fail makes every load of path return err.
func (l *Loader) Fail(path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err == nil {
		err = fmt.Errorf("missing asset %s", path)
	}
	l.missing[path] = err
}

// Restore undoes Fail.
func (l *Loader) Restore(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.missing, path)
}

// Block holds loads of path until the returned function is called.
func (l *Loader) Block(path string) (release func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	gate := make(chan struct{})
	l.gates[path] = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

func (l *Loader) wait(ctx context.Context, ref assets.Ref) error {
	l.mu.Lock()
	l.loads[ref]++
	gate := l.gates[ref.Path]
	err := l.missing[ref.Path]
	l.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (l *Loader) LoadTexture(ctx context.Context, ref assets.Ref) (assets.Texture, error) {
	if err := l.wait(ctx, ref); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t := &Texture{Path: ref.Path}
	l.textures[ref] = t
	return t, nil
}

func (l *Loader) LoadAudio(ctx context.Context, ref assets.Ref) (assets.AudioHandle, error) {
	if err := l.wait(ctx, ref); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	h := NewHandle(ref)
	l.handles[ref] = h
	return h, nil
}

// Loads returns how many times ref was requested from the loader.
func (l *Loader) Loads(ref assets.Ref) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loads[ref]
}

// Handle returns the most recent handle created for ref.
func (l *Loader) Handle(ref assets.Ref) *Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handles[ref]
}

// Texture returns the most recent texture created for ref.
func (l *Loader) Texture(ref assets.Ref) *Texture {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.textures[ref]
}
