package audio_test

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/audio"
	"github.com/cbodonnell/galplayer/pkg/enginetest"
	"github.com/cbodonnell/galplayer/pkg/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	loop    *loop.Loop
	loader  *enginetest.Loader
	cache   *assets.Cache
	manager *audio.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := loop.New(nil)
	loader := enginetest.NewLoader()
	cache := assets.NewCache(l, loader, assets.CacheOptions{})
	return &fixture{
		loop:    l,
		loader:  loader,
		cache:   cache,
		manager: audio.NewManager(cache),
	}
}

func (f *fixture) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.loop.Settle(ctx))
}

func (f *fixture) handle(ch audio.Channel, file string) *enginetest.Handle {
	return f.loader.Handle(assets.Ref{Kind: ch.Kind(), Path: file})
}

func TestManager_VoiceExclusivity(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()

	f.manager.Play(audio.ChannelVoice, "a.mp3")
	f.settle(t)
	a := f.handle(audio.ChannelVoice, "a.mp3")
	require.NotNil(t, a)
	assert.True(t, a.IsPlaying())

	f.manager.Play(audio.ChannelVoice, "b.mp3")
	assert.False(t, a.IsPlaying(), "a is stopped before b is requested")
	f.settle(t)

	b := f.handle(audio.ChannelVoice, "b.mp3")
	require.NotNil(t, b)
	assert.True(t, b.IsPlaying())
	assert.False(t, a.IsPlaying())
	assert.Equal(t, []string{"rewind", "play", "pause"}, a.Events())
	assert.Equal(t, "b.mp3", f.manager.Current(audio.ChannelVoice))
}

func TestManager_MusicSameFileIsNoop(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()

	f.manager.Play(audio.ChannelMusic, "m.mp3")
	f.settle(t)
	m := f.handle(audio.ChannelMusic, "m.mp3")
	require.NotNil(t, m)
	before := m.Events()

	f.manager.Play(audio.ChannelMusic, "m.mp3")
	f.settle(t)
	assert.Same(t, m, f.manager.Handle(audio.ChannelMusic))
	assert.Equal(t, before, m.Events(), "no rewind or restart")
	assert.Equal(t, 1, f.loader.Loads(assets.Ref{Kind: assets.KindMusic, Path: "m.mp3"}))
}

func TestManager_CachedHandleIsRewound(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()

	f.manager.Play(audio.ChannelVoice, "a.mp3")
	f.settle(t)
	f.manager.Play(audio.ChannelVoice, "b.mp3")
	f.settle(t)
	f.manager.Play(audio.ChannelVoice, "a.mp3")
	f.settle(t)

	a := f.handle(audio.ChannelVoice, "a.mp3")
	assert.Equal(t, 1, f.loader.Loads(assets.Ref{Kind: assets.KindVoice, Path: "a.mp3"}))
	assert.Equal(t, []string{"rewind", "play", "pause", "rewind", "play"}, a.Events())
}

func TestManager_PendingUnlock(t *testing.T) {
	f := newFixture(t)

	f.manager.Play(audio.ChannelMusic, "m0.mp3")
	f.manager.Play(audio.ChannelMusic, "m1.mp3")
	f.manager.Play(audio.ChannelVoice, "v1.mp3")
	f.settle(t)

	assert.False(t, f.manager.HasInteracted())
	assert.Equal(t, "m1.mp3", f.manager.Pending(audio.ChannelMusic), "last write wins")
	assert.Equal(t, "v1.mp3", f.manager.Pending(audio.ChannelVoice))
	assert.Nil(t, f.handle(audio.ChannelMusic, "m1.mp3"), "nothing loaded before interaction")

	f.manager.NotifyInteraction()
	f.manager.NotifyInteraction()
	f.settle(t)

	assert.True(t, f.manager.HasInteracted())
	m1 := f.handle(audio.ChannelMusic, "m1.mp3")
	v1 := f.handle(audio.ChannelVoice, "v1.mp3")
	require.NotNil(t, m1)
	require.NotNil(t, v1)
	assert.Nil(t, f.handle(audio.ChannelMusic, "m0.mp3"))
	assert.Equal(t, []string{"rewind", "play"}, m1.Events())
	assert.Equal(t, []string{"rewind", "play"}, v1.Events())
	assert.Empty(t, f.manager.Pending(audio.ChannelMusic))
	assert.Empty(t, f.manager.Pending(audio.ChannelVoice))
}

func TestManager_RejectionRequeues(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()

	ref := assets.Ref{Kind: assets.KindMusic, Path: "m.mp3"}
	f.manager.Play(audio.ChannelMusic, "m.mp3")
	f.settle(t)
	m, _ := f.cache.Audio(ref)
	require.NotNil(t, m)
	handle := m.(*enginetest.Handle)
	require.True(t, handle.IsPlaying())

	f.manager.Stop(audio.ChannelMusic)
	handle.Reject(true)
	f.manager.Play(audio.ChannelMusic, "m.mp3")
	f.settle(t)
	assert.False(t, handle.IsPlaying())
	assert.Equal(t, "m.mp3", f.manager.Pending(audio.ChannelMusic))
	assert.Empty(t, f.manager.Current(audio.ChannelMusic))

	handle.Reject(false)
	f.manager.NotifyInteraction()
	f.settle(t)
	assert.True(t, handle.IsPlaying())
	assert.Empty(t, f.manager.Pending(audio.ChannelMusic))
	assert.Equal(t, "m.mp3", f.manager.Current(audio.ChannelMusic))
}

func TestManager_StopDiscardsInflight(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()
	release := f.loader.Block("late.mp3")

	f.manager.Play(audio.ChannelVoice, "late.mp3")
	f.manager.Stop(audio.ChannelVoice)
	release()
	f.settle(t)

	late := f.handle(audio.ChannelVoice, "late.mp3")
	require.NotNil(t, late)
	assert.False(t, late.IsPlaying(), "a stopped channel ignores late loads")
	assert.Nil(t, f.manager.Handle(audio.ChannelVoice))
}

func TestManager_StopClearsPending(t *testing.T) {
	f := newFixture(t)
	f.manager.Play(audio.ChannelMusic, "m.mp3")
	f.manager.StopAll()
	f.manager.NotifyInteraction()
	f.settle(t)
	assert.Nil(t, f.handle(audio.ChannelMusic, "m.mp3"))
}

func TestManager_SoundsOverlapOtherChannels(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()

	f.manager.Play(audio.ChannelMusic, "m.mp3")
	f.manager.Play(audio.ChannelSound, "door.wav")
	f.manager.Play(audio.ChannelSound, "step.wav")
	f.settle(t)

	assert.True(t, f.handle(audio.ChannelMusic, "m.mp3").IsPlaying())
	assert.True(t, f.handle(audio.ChannelSound, "door.wav").IsPlaying())
	assert.True(t, f.handle(audio.ChannelSound, "step.wav").IsPlaying())

	f.manager.Stop(audio.ChannelSound)
	assert.False(t, f.handle(audio.ChannelSound, "door.wav").IsPlaying())
	assert.True(t, f.handle(audio.ChannelMusic, "m.mp3").IsPlaying())
}

func TestManager_RepeatedSoundTrackedOnce(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()

	for i := 0; i < 5; i++ {
		f.manager.Play(audio.ChannelSound, "click.wav")
		f.settle(t)
	}
	click := f.handle(audio.ChannelSound, "click.wav")
	require.NotNil(t, click)
	assert.Equal(t, 1, f.loader.Loads(assets.Ref{Kind: assets.KindSound, Path: "click.wav"}))

	f.manager.Stop(audio.ChannelSound)
	events := click.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, "pause", events[len(events)-1])
	assert.NotEqual(t, "pause", events[len(events)-2], "paused once on stop")
}

func TestManager_FinishedSoundsAreForgotten(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()

	f.manager.Play(audio.ChannelSound, "door.wav")
	f.settle(t)
	door := f.handle(audio.ChannelSound, "door.wav")
	require.NotNil(t, door)
	door.Pause()

	f.manager.Play(audio.ChannelSound, "step.wav")
	f.settle(t)
	f.manager.Stop(audio.ChannelSound)

	assert.Equal(t, []string{"rewind", "play", "pause"}, door.Events(), "finished sound is not paused again")
	assert.False(t, f.handle(audio.ChannelSound, "step.wav").IsPlaying())
}

func TestManager_Volume(t *testing.T) {
	f := newFixture(t)
	f.manager.NotifyInteraction()
	f.manager.SetVolume(audio.ChannelMusic, 0.5)

	f.manager.Play(audio.ChannelMusic, "m.mp3")
	f.settle(t)
	m := f.handle(audio.ChannelMusic, "m.mp3")
	assert.Equal(t, 0.5, m.Volume())

	f.manager.SetMuted(true)
	assert.Equal(t, 0.0, m.Volume())
	f.manager.SetMuted(false)
	assert.Equal(t, 0.5, m.Volume())

	f.manager.SetVolume(audio.ChannelMusic, 3)
	assert.Equal(t, 1.0, f.manager.Volume(audio.ChannelMusic))
}
