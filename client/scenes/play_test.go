package scenes_test

import (
	"image"
	"testing"

	"github.com/cbodonnell/galplayer/client/objects"
	"github.com/cbodonnell/galplayer/client/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	calls []string
}

func (p *fakePlayer) Interact()          { p.calls = append(p.calls, "interact") }
func (p *fakePlayer) NotifyInteraction() { p.calls = append(p.calls, "notify") }
func (p *fakePlayer) Restart()           { p.calls = append(p.calls, "restart") }

type fakeOverlay struct {
	dialogBox bool
	controls  []image.Rectangle
	// button is the shown continue or start button, if any.
	button  bool
	pressed int
}

func (o *fakeOverlay) Confirm() bool {
	if !o.button {
		return false
	}
	o.button = false
	o.pressed++
	return true
}

func (o *fakeOverlay) Update() error             { return nil }
func (o *fakeOverlay) Draw(screen *ebiten.Image) {}

func (o *fakeOverlay) TextArea() (image.Rectangle, bool) {
	return image.Rect(0, 340, 640, 480), o.dialogBox
}

func (o *fakeOverlay) Controls() []image.Rectangle {
	return o.controls
}

type fakeSource struct {
	activation *scenes.Activation
	restart    bool
}

func (s *fakeSource) Activation() (scenes.Activation, bool) {
	a := s.activation
	s.activation = nil
	if a == nil {
		return scenes.Activation{}, false
	}
	return *a, true
}

func (s *fakeSource) Restart() bool {
	r := s.restart
	s.restart = false
	return r
}

func TestPlayScene_Routing(t *testing.T) {
	click := func(x, y int) *scenes.Activation {
		return &scenes.Activation{Point: image.Pt(x, y), Pointer: true}
	}
	tests := []struct {
		name      string
		dialogBox bool
		input     *fakeSource
		want      []string
	}{
		{"text area click", true, &fakeSource{activation: click(100, 400)}, []string{"interact"}},
		{"background click", true, &fakeSource{activation: click(100, 100)}, []string{"notify"}},
		{"button click", true, &fakeSource{activation: click(600, 450)}, []string{"notify"}},
		{"key with dialog box", true, &fakeSource{activation: &scenes.Activation{}}, []string{"interact"}},
		{"key without dialog box", false, &fakeSource{activation: &scenes.Activation{}}, []string{"notify"}},
		{"click with hidden dialog box", false, &fakeSource{activation: click(100, 400)}, []string{"notify"}},
		{"restart", true, &fakeSource{restart: true}, []string{"restart"}},
		{"idle", true, &fakeSource{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &fakePlayer{}
			s := scenes.NewPlayScene(scenes.NewPlaySceneOptions{
				Player: player,
				Stage:  objects.NewStage(),
				Overlay: &fakeOverlay{
					dialogBox: tt.dialogBox,
					controls:  []image.Rectangle{image.Rect(540, 430, 640, 480)},
				},
				Width:  640,
				Height: 480,
				Source: tt.input,
			})
			require.NoError(t, s.Update())
			assert.Equal(t, tt.want, player.calls)

			// activations are consumed
			require.NoError(t, s.Update())
			assert.Equal(t, tt.want, player.calls)
		})
	}
}

func TestPlayScene_HitRegionsFollowOverlay(t *testing.T) {
	player := &fakePlayer{}
	overlay := &fakeOverlay{}
	source := &fakeSource{}
	s := scenes.NewPlayScene(scenes.NewPlaySceneOptions{
		Player:  player,
		Stage:   objects.NewStage(),
		Overlay: overlay,
		Width:   640,
		Height:  480,
		Source:  source,
	})

	source.activation = &scenes.Activation{Point: image.Pt(100, 400), Pointer: true}
	require.NoError(t, s.Update())

	overlay.dialogBox = true
	require.NoError(t, s.Update())
	source.activation = &scenes.Activation{Point: image.Pt(100, 400), Pointer: true}
	require.NoError(t, s.Update())

	assert.Equal(t, []string{"notify", "interact"}, player.calls)
}

func TestPlayScene_KeyPressesShownButton(t *testing.T) {
	tests := []struct {
		name        string
		dialogBox   bool
		button      bool
		wantCalls   []string
		wantPressed int
	}{
		{"continue at end of scene", true, true, []string{"notify"}, 1},
		{"start button", false, true, []string{"notify"}, 1},
		{"no button advances", true, false, []string{"interact"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &fakePlayer{}
			overlay := &fakeOverlay{dialogBox: tt.dialogBox, button: tt.button}
			s := scenes.NewPlayScene(scenes.NewPlaySceneOptions{
				Player:  player,
				Stage:   objects.NewStage(),
				Overlay: overlay,
				Width:   640,
				Height:  480,
				Source:  &fakeSource{activation: &scenes.Activation{}},
			})
			require.NoError(t, s.Update())
			assert.Equal(t, tt.wantCalls, player.calls)
			assert.Equal(t, tt.wantPressed, overlay.pressed)
		})
	}
}

func TestPlayScene_ClickLeavesButtonToUI(t *testing.T) {
	player := &fakePlayer{}
	overlay := &fakeOverlay{dialogBox: true, button: true}
	s := scenes.NewPlayScene(scenes.NewPlaySceneOptions{
		Player:  player,
		Stage:   objects.NewStage(),
		Overlay: overlay,
		Width:   640,
		Height:  480,
		Source:  &fakeSource{activation: &scenes.Activation{Point: image.Pt(100, 400), Pointer: true}},
	})
	require.NoError(t, s.Update())
	assert.Equal(t, []string{"interact"}, player.calls)
	assert.Zero(t, overlay.pressed)
}
