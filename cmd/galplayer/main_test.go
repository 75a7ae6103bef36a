package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/galplayer/pkg/assets"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStory() *narrative.Story {
	return narrative.NewStory("title",
		&narrative.Scene{
			ID:         "title",
			Type:       narrative.SceneTypeStart,
			NextScene:  "intro",
			Background: narrative.String("bg_title.png"),
			Music:      "title.mp3",
		},
		&narrative.Scene{
			ID:        "intro",
			Type:      narrative.SceneTypeDialog,
			NextScene: "pick",
			Contents: []narrative.Content{
				{Background: narrative.String("bg_room.png"), Name: "A", Text: "hello", Voice: "a_001.wav"},
				{Name: "B", Text: "hi"},
			},
		},
		&narrative.Scene{
			ID:   "pick",
			Type: narrative.SceneTypeSelect,
			Choices: []narrative.Choice{
				{Text: "Again", NextScene: "intro"},
				{Text: "Back", NextScene: "title"},
			},
		},
	)
}

type fakeChecker struct {
	missing map[string]bool
}

func (f fakeChecker) Exists(ref assets.Ref) bool { return !f.missing[ref.Path] }
func (f fakeChecker) Resolve(ref assets.Ref) string {
	return filepath.Join("/story", ref.Path)
}

func TestCheckStoryOK(t *testing.T) {
	var out bytes.Buffer
	err := checkStory(&out, testStory(), fakeChecker{})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "OK: 3 scenes, 5 assets")
}

func TestCheckStoryMissingAssets(t *testing.T) {
	var out bytes.Buffer
	err := checkStory(&out, testStory(), fakeChecker{missing: map[string]bool{"a_001.wav": true}})
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out.String(), "1 missing assets")
	assert.Contains(t, out.String(), "/story/a_001.wav")
}

func TestCheckStoryBrokenReference(t *testing.T) {
	story := narrative.NewStory("only", &narrative.Scene{
		ID:        "only",
		Type:      narrative.SceneTypeDialog,
		NextScene: "nowhere",
		Contents:  []narrative.Content{{Text: "x"}},
	})
	var out bytes.Buffer
	err := checkStory(&out, story, nil)
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, out.String(), "nowhere")
}

func TestRenderScenes(t *testing.T) {
	rendered := renderScenes(testStory())
	assert.Contains(t, rendered, "intro, title")
	assert.Contains(t, rendered, "select")
	assert.Contains(t, rendered, "Start")
}

func TestRenderSaves(t *testing.T) {
	var out bytes.Buffer
	renderSaves(&out, nil)
	assert.Equal(t, "No saves\n", out.String())

	out.Reset()
	renderSaves(&out, []*models.Save{{Story: "demo", SceneID: "intro", Index: 3}})
	assert.Contains(t, out.String(), "demo")
	assert.Contains(t, out.String(), "intro")
	assert.Contains(t, out.String(), "-")
}

func TestStoryID(t *testing.T) {
	assert.Equal(t, "Demo", storyID(&narrative.Story{Title: "Demo"}, "/x/story.json"))
	assert.Equal(t, "story", storyID(&narrative.Story{}, "/x/story.json"))
	assert.Equal(t, "story", storyID(&narrative.Story{}, "/x/story.json.zst"))
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	storyPath := filepath.Join(dir, "story.json")
	require.NoError(t, os.WriteFile(storyPath, []byte(`{
  "title": "Tiny",
  "start": "a",
  "scenes": {
    "a": {"type": "dialog", "contents": [{"name": "A", "text": "hello"}]}
  }
}`), 0o644))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.toml"), "--log-level", "error", "check", storyPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "OK: 1 scenes, 0 assets")
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	assert.Error(t, cmd.Execute())
}
