package dialogue

import (
	"strings"

	"github.com/cbodonnell/galplayer/pkg/loop"
	"github.com/rivo/uniseg"
)

// Reveal is the cancellation handle of one letter-by-letter text reveal.
// Every step checks the handle before touching the overlay.
type Reveal struct {
	// Seq numbers reveals for logging.
	Seq uint64

	graphemes []string
	shown     int
	cancelled bool
	timer     *loop.Timer
}

func newReveal(seq uint64, text string) *Reveal {
	r := &Reveal{Seq: seq}
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		r.graphemes = append(r.graphemes, g.Str())
	}
	return r
}

// Cancel stops the reveal. No further characters are appended afterwards.
func (r *Reveal) Cancel() {
	if r == nil {
		return
	}
	r.cancelled = true
	r.timer.Stop()
}

func (r *Reveal) Cancelled() bool {
	return r != nil && r.cancelled
}

// Done reports whether the whole text has been revealed.
func (r *Reveal) Done() bool {
	return r == nil || r.shown >= len(r.graphemes)
}

// Active reports whether the reveal is still appending characters.
func (r *Reveal) Active() bool {
	return r != nil && !r.cancelled && !r.Done()
}

// Shown returns the revealed prefix.
func (r *Reveal) Shown() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.graphemes[:r.shown], "")
}

// Full returns the complete text.
func (r *Reveal) Full() string {
	if r == nil {
		return ""
	}
	return strings.Join(r.graphemes, "")
}

func (r *Reveal) finish() {
	r.shown = len(r.graphemes)
}
