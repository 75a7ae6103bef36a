// Package dialogue steps through the lines of a dialog scene and reveals each
// line letter by letter.
package dialogue

import (
	"time"

	"github.com/cbodonnell/galplayer/pkg/audio"
	"github.com/cbodonnell/galplayer/pkg/log"
	"github.com/cbodonnell/galplayer/pkg/loop"
	"github.com/cbodonnell/galplayer/pkg/narrative"
)

const (
	DefaultRevealSpeed   = 50 * time.Millisecond
	DefaultContinueLabel = "Continue"
)

// Navigator switches scenes. *scenes.Manager satisfies it.
type Navigator interface {
	SwitchScene(id string)
}

// Overlay is the part of the UI the controller writes to.
type Overlay interface {
	SetName(name string)
	SetText(text string)
	ShowContinue(label string, fn func())
	HideContinue()
}

// Display is notified of every line shown. *display.Synchronizer satisfies it.
type Display interface {
	UpdateSceneDisplay(content narrative.Content)
}

// Audio starts the line's audio. *audio.Manager satisfies it.
type Audio interface {
	Play(ch audio.Channel, file string)
}

// PlaybackState locates the line being shown.
type PlaybackState struct {
	SceneID   string `json:"scene_id"`
	Index     int    `json:"index"`
	Revealing bool   `json:"revealing"`
	Terminal  bool   `json:"terminal"`
}

type Options struct {
	// RevealSpeed is the delay between two revealed characters. Zero or less
	// shows lines at once.
	RevealSpeed   time.Duration
	ContinueLabel string
}

type Controller struct {
	loop    *loop.Loop
	nav     Navigator
	overlay Overlay
	display Display
	audio   Audio

	scene  *narrative.Scene
	index  int
	reveal *Reveal
	seq    uint64

	speed         time.Duration
	continueLabel string

	onLine []func(PlaybackState)
	logger *log.Logger
}

func NewController(l *loop.Loop, overlay Overlay, display Display, player Audio, opts Options) *Controller {
	if opts.ContinueLabel == "" {
		opts.ContinueLabel = DefaultContinueLabel
	}
	return &Controller{
		loop:          l,
		overlay:       overlay,
		display:       display,
		audio:         player,
		speed:         opts.RevealSpeed,
		continueLabel: opts.ContinueLabel,
		logger:        log.With("component", "dialogue"),
	}
}

// SetNavigator sets where the continue control leads.
func (c *Controller) SetNavigator(nav Navigator) {
	c.nav = nav
}

// OnLine registers fn to be called after each line is shown.
func (c *Controller) OnLine(fn func(PlaybackState)) {
	c.onLine = append(c.onLine, fn)
}

// SetScene makes scene current at index 0 without showing anything and
// cancels a running reveal.
func (c *Controller) SetScene(scene *narrative.Scene) {
	c.reveal.Cancel()
	c.reveal = nil
	c.scene = scene
	c.index = 0
}

func (c *Controller) Scene() *narrative.Scene {
	return c.scene
}

func (c *Controller) Index() int {
	return c.index
}

func (c *Controller) dialog() bool {
	return c.scene != nil && c.scene.Type == narrative.SceneTypeDialog
}

// Begin shows the current line of a dialog scene.
func (c *Controller) Begin() {
	if !c.dialog() {
		return
	}
	c.present()
}

// Seek jumps to line index of the current dialog scene and shows it. The
// display fields of the lines before it are replayed first, without reveal,
// so the screen looks as if the lines had been played. Of their audio only
// the last music is restarted; voices and sounds are not replayed.
func (c *Controller) Seek(index int) bool {
	if !c.dialog() {
		return false
	}
	if _, ok := c.scene.Content(index); !ok {
		c.logger.Warn("Line %d out of range for scene %s", index, c.scene.ID)
		return false
	}
	var music string
	for i := 0; i < index; i++ {
		content := c.scene.Contents[i]
		c.display.UpdateSceneDisplay(content)
		if content.Music != "" {
			music = content.Music
		}
	}
	c.audio.Play(audio.ChannelMusic, music)
	c.index = index
	c.present()
	return true
}

func (c *Controller) HasNext() bool {
	return c.scene != nil && c.index < len(c.scene.Contents)-1
}

// CurrentContent returns the line being shown.
func (c *Controller) CurrentContent() (narrative.Content, bool) {
	if c.scene == nil {
		return narrative.Content{}, false
	}
	return c.scene.Content(c.index)
}

// Advance moves to the next line. On the last line it shows the continue
// control when the scene has a successor; a terminal scene shows nothing.
func (c *Controller) Advance() {
	if !c.dialog() {
		return
	}
	if c.HasNext() {
		c.index++
		c.present()
		return
	}
	next := c.scene.NextScene
	if next == "" {
		c.logger.Debug("Scene %s is terminal", c.scene.ID)
		return
	}
	c.overlay.ShowContinue(c.continueLabel, func() {
		if c.nav != nil {
			c.nav.SwitchScene(next)
		}
	})
}

// HandleInteraction is the click on the text area. It completes a running
// reveal and otherwise advances. Completing a reveal never advances in the
// same activation.
func (c *Controller) HandleInteraction() {
	if !c.dialog() {
		return
	}
	if c.reveal.Active() {
		c.reveal.Cancel()
		c.reveal.finish()
		c.overlay.SetText(c.reveal.Full())
		c.logger.Trace("Reveal %d skipped", c.reveal.Seq)
		return
	}
	c.Advance()
}

func (c *Controller) present() {
	content, ok := c.scene.Content(c.index)
	if !ok {
		return
	}
	c.overlay.HideContinue()
	c.display.UpdateSceneDisplay(content)
	c.audio.Play(audio.ChannelMusic, content.Music)
	c.audio.Play(audio.ChannelVoice, content.Voice)
	c.audio.Play(audio.ChannelSound, content.Sound)
	c.startReveal(content.Name, content.Text)

	state := c.State()
	for _, fn := range c.onLine {
		fn(state)
	}
}

func (c *Controller) startReveal(name, text string) {
	c.reveal.Cancel()
	c.seq++
	r := newReveal(c.seq, text)
	c.reveal = r

	c.overlay.SetName(name)
	if c.speed <= 0 || r.Done() {
		r.finish()
		c.overlay.SetText(r.Full())
		return
	}
	c.overlay.SetText("")

	var step func()
	step = func() {
		if r.Cancelled() || c.reveal != r {
			return
		}
		r.shown++
		c.overlay.SetText(r.Shown())
		if !r.Done() {
			r.timer = c.loop.After(c.speed, step)
		}
	}
	r.timer = c.loop.After(c.speed, step)
}

// Revealing reports whether a line is still being revealed.
func (c *Controller) Revealing() bool {
	return c.reveal.Active()
}

func (c *Controller) Reveal() *Reveal {
	return c.reveal
}

func (c *Controller) SetRevealSpeed(d time.Duration) {
	c.speed = d
}

func (c *Controller) RevealSpeed() time.Duration {
	return c.speed
}

func (c *Controller) State() PlaybackState {
	st := PlaybackState{Index: c.index, Revealing: c.Revealing()}
	if c.scene != nil {
		st.SceneID = c.scene.ID
		st.Terminal = c.scene.Terminal() && !c.HasNext()
	}
	return st
}
