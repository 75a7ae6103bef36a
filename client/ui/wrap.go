package ui

import (
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
)

// Wrap breaks text into lines no wider than maxWidth pixels at Unicode line
// break opportunities. A segment wider than maxWidth gets a line of its own.
func Wrap(face font.Face, text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return text
	}

	var lines []string
	var line string
	state := -1
	for len(text) > 0 {
		var segment string
		var mustBreak bool
		segment, text, mustBreak, state = uniseg.FirstLineSegmentInString(text, state)

		candidate := line + segment
		if line != "" && measure(face, candidate) > maxWidth {
			lines = append(lines, strings.TrimRight(line, " "))
			candidate = segment
		}
		line = candidate
		if mustBreak && len(text) > 0 {
			lines = append(lines, strings.TrimRight(line, " \r\n"))
			line = ""
		}
	}
	lines = append(lines, strings.TrimRight(line, " \r\n"))
	return strings.Join(lines, "\n")
}

func measure(face font.Face, s string) int {
	return font.MeasureString(face, strings.TrimRight(s, " \r\n")).Ceil()
}
