package audio

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

const DefaultSampleRate = 44100

// EbitenDevice creates handles backed by ebiten audio players.
type EbitenDevice struct {
	ctx *audio.Context
}

var _ assets.AudioDevice = &EbitenDevice{}

// NewEbitenDevice returns a device on the process audio context, creating it
// on first use.
func NewEbitenDevice(sampleRate int) *EbitenDevice {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(sampleRate)
	}
	return &EbitenDevice{ctx: ctx}
}

type lengthStream interface {
	io.ReadSeeker
	Length() int64
}

func (d *EbitenDevice) decode(name string, data []byte) (lengthStream, error) {
	r := bytes.NewReader(data)
	sr := d.ctx.SampleRate()
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return mp3.DecodeWithSampleRate(sr, r)
	case ".wav":
		return wav.DecodeWithSampleRate(sr, r)
	case ".ogg":
		return vorbis.DecodeWithSampleRate(sr, r)
	}
	return nil, fmt.Errorf("unsupported audio format: %s", name)
}

func (d *EbitenDevice) NewHandle(ref assets.Ref, data []byte) (assets.AudioHandle, error) {
	stream, err := d.decode(ref.Path, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", ref.Path, err)
	}
	var src io.Reader = stream
	if ref.Kind.Loops() {
		src = audio.NewInfiniteLoop(stream, stream.Length())
	}
	player, err := d.ctx.NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create player for %s: %w", ref.Path, err)
	}
	return &ebitenHandle{ctx: d.ctx, player: player}, nil
}

type ebitenHandle struct {
	ctx    *audio.Context
	player *audio.Player
}

func (h *ebitenHandle) Play() error {
	if !h.ctx.IsReady() {
		return ErrPlaybackRejected
	}
	h.player.Play()
	return nil
}

func (h *ebitenHandle) Pause() {
	h.player.Pause()
}

func (h *ebitenHandle) Rewind() error {
	return h.player.Rewind()
}

func (h *ebitenHandle) IsPlaying() bool {
	return h.player.IsPlaying()
}

func (h *ebitenHandle) SetVolume(volume float64) {
	h.player.SetVolume(volume)
}

func (h *ebitenHandle) Close() error {
	return h.player.Close()
}
