package input_test

import (
	"image"
	"testing"

	"github.com/cbodonnell/galplayer/client/input"
	"github.com/stretchr/testify/assert"
)

func TestHitMap_Hit(t *testing.T) {
	m := input.NewHitMap(640, 480)
	m.Add(input.TargetTextArea, image.Rect(0, 340, 640, 480))
	m.Add(input.TargetControl, image.Rect(540, 430, 640, 480))
	m.Add(input.TargetControl, image.Rect(270, 200, 370, 240))

	tests := []struct {
		name  string
		point image.Point
		want  input.Target
	}{
		{"text area", image.Pt(100, 400), input.TargetTextArea},
		{"continue button over text area", image.Pt(600, 450), input.TargetControl},
		{"start button", image.Pt(300, 220), input.TargetControl},
		{"just outside a button", image.Pt(371, 220), input.TargetNone},
		{"just above the text area", image.Pt(100, 339), input.TargetNone},
		{"background", image.Pt(50, 50), input.TargetNone},
		{"off screen", image.Pt(-5, 400), input.TargetNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Hit(tt.point))
		})
	}
}

func TestHitMap_Reset(t *testing.T) {
	m := input.NewHitMap(640, 480)
	m.Add(input.TargetTextArea, image.Rect(0, 340, 640, 480))
	assert.Equal(t, input.TargetTextArea, m.Hit(image.Pt(10, 400)))

	m.Reset()
	assert.Equal(t, input.TargetNone, m.Hit(image.Pt(10, 400)))

	m.Add(input.TargetControl, image.Rect(0, 0, 10, 10))
	assert.Equal(t, input.TargetControl, m.Hit(image.Pt(5, 5)))
}
