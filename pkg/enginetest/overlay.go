package enginetest

import "github.com/cbodonnell/galplayer/pkg/narrative"

// Overlay records what the engine asked the UI to show and lets tests
// activate the controls it was given.
type Overlay struct {
	Name      string
	Text      string
	Texts     []string
	DialogBox bool
	Clears    int

	ContinueLabel string
	StartLabel    string
	Choices       []narrative.Choice

	onContinue func()
	onStart    func()
	onChoice   func(narrative.Choice)
}

func NewOverlay() *Overlay {
	return &Overlay{}
}

func (o *Overlay) ClearAll() {
	o.Clears++
	o.Name, o.Text = "", ""
	o.DialogBox = false
	o.HideContinue()
	o.StartLabel, o.onStart = "", nil
	o.Choices, o.onChoice = nil, nil
}

func (o *Overlay) ShowDialogBox() {
	o.DialogBox = true
}

func (o *Overlay) SetName(name string) {
	o.Name = name
}

func (o *Overlay) SetText(text string) {
	o.Text = text
	o.Texts = append(o.Texts, text)
}

func (o *Overlay) ShowContinue(label string, fn func()) {
	o.ContinueLabel, o.onContinue = label, fn
}

func (o *Overlay) HideContinue() {
	o.ContinueLabel, o.onContinue = "", nil
}

func (o *Overlay) ShowStart(label string, fn func()) {
	o.StartLabel, o.onStart = label, fn
}

func (o *Overlay) ShowChoices(choices []narrative.Choice, fn func(narrative.Choice)) {
	o.Choices, o.onChoice = choices, fn
}

// ContinueShown reports whether a continue control is visible.
func (o *Overlay) ContinueShown() bool {
	return o.onContinue != nil
}

// Continue activates the continue control. It reports false if none is shown.
func (o *Overlay) Continue() bool {
	fn := o.onContinue
	if fn == nil {
		return false
	}
	o.HideContinue()
	fn()
	return true
}

// Start activates the start control.
func (o *Overlay) Start() bool {
	fn := o.onStart
	if fn == nil {
		return false
	}
	o.StartLabel, o.onStart = "", nil
	fn()
	return true
}

// Choose activates the i-th choice.
func (o *Overlay) Choose(i int) bool {
	if o.onChoice == nil || i < 0 || i >= len(o.Choices) {
		return false
	}
	fn, choice := o.onChoice, o.Choices[i]
	o.Choices, o.onChoice = nil, nil
	fn(choice)
	return true
}
