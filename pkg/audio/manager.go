// Package audio manages the music, voice and sound playback channels.
package audio

import (
	"errors"
	"fmt"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/log"
)

// ErrPlaybackRejected is returned by handles when the platform refuses to
// start audio, usually because the user has not interacted yet.
var ErrPlaybackRejected = errors.New("audio playback rejected")

type Channel int

const (
	// ChannelMusic loops a single file.
	ChannelMusic Channel = iota
	// ChannelVoice plays a single file once.
	ChannelVoice
	// ChannelSound plays effects once, without de-duplication.
	ChannelSound
)

var Channels = [3]Channel{ChannelMusic, ChannelVoice, ChannelSound}

func (c Channel) String() string {
	switch c {
	case ChannelMusic:
		return "music"
	case ChannelVoice:
		return "voice"
	case ChannelSound:
		return "sound"
	}
	return "unknown"
}

func ParseChannel(s string) (Channel, error) {
	for _, c := range Channels {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown channel: %q", s)
}

// Kind returns the asset kind handles of this channel are cached under.
func (c Channel) Kind() assets.Kind {
	switch c {
	case ChannelVoice:
		return assets.KindVoice
	case ChannelSound:
		return assets.KindSound
	}
	return assets.KindMusic
}

// Source hands out audio handles. *assets.Cache satisfies it.
type Source interface {
	RequestAudio(ref assets.Ref, then func(assets.AudioHandle, error))
}

type channelState struct {
	currentFile string
	pendingFile string
	handle      assets.AudioHandle
	sounds      []assets.AudioHandle
	// gen advances whenever in-flight requests for the channel become stale.
	gen uint64
}

// Manager owns the three playback channels and the interaction gate. It must
// only be used from the loop.
type Manager struct {
	source   Source
	channels [3]*channelState
	volumes  [3]float64
	muted    bool

	// hasInteracted starts false and becomes true exactly once, on the first
	// user activation. Only Reset clears it.
	hasInteracted bool

	logger *log.Logger
}

func NewManager(source Source) *Manager {
	m := &Manager{
		source:  source,
		volumes: [3]float64{1, 1, 1},
		logger:  log.With("component", "audio"),
	}
	for i := range m.channels {
		m.channels[i] = &channelState{}
	}
	return m
}

// Play starts file on channel. Before the first interaction the file is only
// recorded as the channel's pending file.
func (m *Manager) Play(ch Channel, file string) {
	if file == "" {
		return
	}
	st := m.channels[ch]
	if ch == ChannelMusic && st.currentFile == file {
		return
	}
	if !m.hasInteracted {
		st.pendingFile = file
		m.logger.Debug("Deferring %s %s until interaction", ch, file)
		return
	}
	m.start(ch, file)
}

func (m *Manager) start(ch Channel, file string) {
	st := m.channels[ch]
	if ch != ChannelSound {
		m.halt(st)
		st.gen++
		st.currentFile = file
	}
	gen := st.gen
	ref := assets.Ref{Kind: ch.Kind(), Path: file}

	m.source.RequestAudio(ref, func(h assets.AudioHandle, err error) {
		if st.gen != gen {
			return
		}
		if err != nil {
			m.logger.Error("Failed to load %s %s: %v", ch, file, err)
			if st.currentFile == file {
				st.currentFile = ""
			}
			return
		}
		h.SetVolume(m.effectiveVolume(ch))
		if err := h.Rewind(); err != nil {
			m.logger.Warn("Failed to rewind %s %s: %v", ch, file, err)
		}
		if err := h.Play(); err != nil {
			// treated like a missing interaction: retried on the next one
			m.logger.Debug("Playback of %s %s rejected: %v", ch, file, err)
			st.pendingFile = file
			if ch != ChannelSound {
				st.currentFile = ""
				st.handle = nil
			}
			return
		}
		if ch == ChannelSound {
			st.trackSound(h)
			return
		}
		st.handle = h
	})
}

// trackSound records h as playing and forgets sounds that have finished. A
// cached handle played again is kept once.
func (st *channelState) trackSound(h assets.AudioHandle) {
	kept := st.sounds[:0]
	for _, s := range st.sounds {
		if s != h && s.IsPlaying() {
			kept = append(kept, s)
		}
	}
	st.sounds = append(kept, h)
}

func (m *Manager) halt(st *channelState) {
	if st.handle != nil {
		st.handle.Pause()
		st.handle = nil
	}
	for _, h := range st.sounds {
		h.Pause()
	}
	st.sounds = nil
}

// Stop halts the channel, releases its handle and forgets both the current
// and the pending file.
func (m *Manager) Stop(ch Channel) {
	st := m.channels[ch]
	m.halt(st)
	st.gen++
	st.currentFile = ""
	st.pendingFile = ""
}

func (m *Manager) StopAll() {
	for _, ch := range Channels {
		m.Stop(ch)
	}
}

// Reset stops every channel and closes the interaction gate again. It is
// only used for a full restart.
func (m *Manager) Reset() {
	m.StopAll()
	m.hasInteracted = false
}

// NotifyInteraction reports a user activation. The first call opens the gate;
// every call starts the files still pending, which after the first call only
// happens for playback the platform rejected.
func (m *Manager) NotifyInteraction() {
	if !m.hasInteracted {
		m.hasInteracted = true
		m.logger.Info("User interaction observed, audio unlocked")
	}
	for _, ch := range Channels {
		st := m.channels[ch]
		if st.pendingFile == "" {
			continue
		}
		file := st.pendingFile
		st.pendingFile = ""
		m.start(ch, file)
	}
}

func (m *Manager) HasInteracted() bool {
	return m.hasInteracted
}

// Current returns the file the channel is playing or loading.
func (m *Manager) Current(ch Channel) string {
	return m.channels[ch].currentFile
}

func (m *Manager) Pending(ch Channel) string {
	return m.channels[ch].pendingFile
}

// Handle returns the live handle of a music or voice channel.
func (m *Manager) Handle(ch Channel) assets.AudioHandle {
	return m.channels[ch].handle
}

func (m *Manager) SetVolume(ch Channel, volume float64) {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	m.volumes[ch] = volume
	m.applyVolume(ch)
}

func (m *Manager) Volume(ch Channel) float64 {
	return m.volumes[ch]
}

func (m *Manager) SetMuted(muted bool) {
	m.muted = muted
	for _, ch := range Channels {
		m.applyVolume(ch)
	}
}

func (m *Manager) Muted() bool {
	return m.muted
}

func (m *Manager) effectiveVolume(ch Channel) float64 {
	if m.muted {
		return 0
	}
	return m.volumes[ch]
}

func (m *Manager) applyVolume(ch Channel) {
	st := m.channels[ch]
	v := m.effectiveVolume(ch)
	if st.handle != nil {
		st.handle.SetVolume(v)
	}
	for _, h := range st.sounds {
		h.SetVolume(v)
	}
}
