package ui_test

import (
	"testing"

	"github.com/cbodonnell/galplayer/client/ui"
	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font/basicfont"
)

func TestWrap(t *testing.T) {
	face := basicfont.Face7x13
	tests := []struct {
		name     string
		text     string
		maxWidth int
		want     string
	}{
		{"fits", "hello world", 7 * 20, "hello world"},
		{"breaks at space", "hello world foo", 7 * 11, "hello world\nfoo"},
		{"every word", "one two three", 7 * 5, "one\ntwo\nthree"},
		{"long word keeps its own line", "a extraordinary b", 7 * 4, "a\nextraordinary\nb"},
		{"hard break", "first\nsecond", 7 * 20, "first\nsecond"},
		{"no limit", "hello world", 0, "hello world"},
		{"empty", "", 100, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ui.Wrap(face, tt.text, tt.maxWidth))
		})
	}
}
