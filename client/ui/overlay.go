package ui

import (
	"image"
	"image/color"

	"github.com/cbodonnell/galplayer/client/fonts"
	"github.com/cbodonnell/galplayer/pkg/narrative"
	"github.com/cbodonnell/galplayer/pkg/scenes"
	"github.com/ebitenui/ebitenui"
	eimage "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	textPadding = 24
	// DialogBoxHeightFraction is the share of the screen height taken by the
	// dialog box at the bottom of the screen.
	DialogBoxHeightFraction = 0.28
)

var (
	buttonTextColor = &widget.ButtonTextColor{
		Idle:     color.NRGBA{254, 255, 255, 255},
		Disabled: color.NRGBA{R: 200, G: 200, B: 200, A: 255},
	}
	dialogBoxColor = color.NRGBA{R: 10, G: 10, B: 20, A: 200}
	nameColor      = color.NRGBA{R: 255, G: 220, B: 150, A: 255}
	textColor      = color.NRGBA{254, 255, 255, 255}
)

// Overlay draws the dialog box and the start, continue and choice controls
// with ebitenui. The widget tree is rebuilt when the set of visible controls
// changes; name and text updates are applied in place.
type Overlay struct {
	faces         *fonts.Faces
	width, height int

	ui    *ebitenui.UI
	dirty bool

	dialogBox  bool
	name       string
	text       string
	nameWidget *widget.Text
	textWidget *widget.Text

	continueLabel string
	onContinue    func()
	startLabel    string
	onStart       func()
	choices       []narrative.Choice
	onChoice      func(narrative.Choice)

	buttons     []*widget.Button
	buttonImage *widget.ButtonImage
}

var _ scenes.Overlay = &Overlay{}

type NewOverlayOptions struct {
	Faces  *fonts.Faces
	Width  int
	Height int
}

func NewOverlay(opts NewOverlayOptions) *Overlay {
	o := &Overlay{
		faces:  opts.Faces,
		width:  opts.Width,
		height: opts.Height,
	}
	o.render()
	return o
}

func (o *Overlay) ClearAll() {
	o.dialogBox = false
	o.name, o.text = "", ""
	o.continueLabel, o.onContinue = "", nil
	o.startLabel, o.onStart = "", nil
	o.choices, o.onChoice = nil, nil
	o.dirty = true
}

func (o *Overlay) ShowDialogBox() {
	if o.dialogBox {
		return
	}
	o.dialogBox = true
	o.dirty = true
}

func (o *Overlay) SetName(name string) {
	o.name = name
	if o.nameWidget != nil && !o.dirty {
		o.nameWidget.Label = name
	}
}

func (o *Overlay) SetText(text string) {
	o.text = text
	if o.textWidget != nil && !o.dirty {
		o.textWidget.Label = o.wrapped()
	}
}

func (o *Overlay) ShowContinue(label string, fn func()) {
	o.continueLabel, o.onContinue = label, fn
	o.dirty = true
}

func (o *Overlay) HideContinue() {
	if o.onContinue == nil {
		return
	}
	o.continueLabel, o.onContinue = "", nil
	o.dirty = true
}

func (o *Overlay) ShowStart(label string, fn func()) {
	o.startLabel, o.onStart = label, fn
	o.dirty = true
}

func (o *Overlay) ShowChoices(choices []narrative.Choice, fn func(narrative.Choice)) {
	o.choices, o.onChoice = choices, fn
	o.dirty = true
}

// Confirm presses the continue or start button if one is shown, as a
// keyboard or gamepad confirm does. Choices are never picked this way.
func (o *Overlay) Confirm() bool {
	switch {
	case o.onContinue != nil:
		o.pressContinue()
	case o.onStart != nil:
		o.pressStart()
	default:
		return false
	}
	return true
}

func (o *Overlay) pressContinue() {
	fn := o.onContinue
	if fn == nil {
		return
	}
	o.HideContinue()
	fn()
}

func (o *Overlay) pressStart() {
	fn := o.onStart
	if fn == nil {
		return
	}
	o.startLabel, o.onStart = "", nil
	o.dirty = true
	fn()
}

// TextArea returns the region of the dialog text. ok is false while the
// dialog box is hidden.
func (o *Overlay) TextArea() (rect image.Rectangle, ok bool) {
	if !o.dialogBox {
		return image.Rectangle{}, false
	}
	return image.Rect(0, o.height-o.dialogBoxHeight(), o.width, o.height), true
}

// Controls returns the on-screen regions of the visible buttons as of the
// last layout.
func (o *Overlay) Controls() []image.Rectangle {
	rects := make([]image.Rectangle, 0, len(o.buttons))
	for _, b := range o.buttons {
		if r := b.GetWidget().Rect; !r.Empty() {
			rects = append(rects, r)
		}
	}
	return rects
}

func (o *Overlay) dialogBoxHeight() int {
	return int(float64(o.height) * DialogBoxHeightFraction)
}

func (o *Overlay) wrapped() string {
	return Wrap(o.faces.Text, o.text, o.width-2*textPadding)
}

func (o *Overlay) Update() error {
	if o.dirty {
		o.render()
	}
	o.ui.Update()
	return nil
}

func (o *Overlay) Draw(screen *ebiten.Image) {
	o.ui.Draw(screen)
}

func (o *Overlay) render() {
	o.dirty = false
	if o.buttonImage == nil {
		o.buttonImage = &widget.ButtonImage{
			Idle:    eimage.NewNineSliceColor(color.NRGBA{R: 170, G: 170, B: 180, A: 230}),
			Hover:   eimage.NewNineSliceColor(color.NRGBA{R: 135, G: 135, B: 150, A: 240}),
			Pressed: eimage.NewNineSliceColor(color.NRGBA{R: 100, G: 100, B: 120, A: 255}),
		}
	}
	o.buttons = o.buttons[:0]
	o.nameWidget, o.textWidget = nil, nil

	rootContainer := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	if o.dialogBox {
		rootContainer.AddChild(o.renderDialogBox())
	}

	if o.onContinue != nil {
		rootContainer.AddChild(o.newButton(o.continueLabel, widget.AnchorLayoutData{
			HorizontalPosition: widget.AnchorLayoutPositionEnd,
			VerticalPosition:   widget.AnchorLayoutPositionEnd,
		}, func() { o.pressContinue() }))
	}

	if o.onStart != nil {
		rootContainer.AddChild(o.newButton(o.startLabel, widget.AnchorLayoutData{
			HorizontalPosition: widget.AnchorLayoutPositionCenter,
			VerticalPosition:   widget.AnchorLayoutPositionCenter,
		}, func() { o.pressStart() }))
	}

	if o.onChoice != nil && len(o.choices) > 0 {
		rootContainer.AddChild(o.renderChoices())
	}

	o.ui = &ebitenui.UI{
		Container: rootContainer,
	}
}

func (o *Overlay) renderDialogBox() *widget.Container {
	box := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(eimage.NewNineSliceColor(dialogBoxColor)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(o.width, o.dialogBoxHeight()),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionEnd,
				StretchHorizontal:  true,
			}),
		),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(12),
			widget.RowLayoutOpts.Padding(widget.NewInsetsSimple(textPadding)),
		)),
	)

	o.nameWidget = widget.NewText(
		widget.TextOpts.Text(o.name, o.faces.Name, nameColor),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionStart,
			}),
		),
	)
	box.AddChild(o.nameWidget)

	o.textWidget = widget.NewText(
		widget.TextOpts.Text(o.wrapped(), o.faces.Text, textColor),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionStart,
			}),
		),
	)
	box.AddChild(o.textWidget)
	return box
}

func (o *Overlay) renderChoices() *widget.Container {
	column := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(20),
		)),
	)

	fn := o.onChoice
	for _, choice := range o.choices {
		choice := choice
		column.AddChild(o.newButton(choice.Text, widget.RowLayoutData{
			Position: widget.RowLayoutPositionCenter,
			Stretch:  true,
		}, func() {
			o.choices, o.onChoice = nil, nil
			o.dirty = true
			fn(choice)
		}))
	}
	return column
}

func (o *Overlay) newButton(label string, layoutData interface{}, onClick func()) *widget.Button {
	button := widget.NewButton(
		widget.ButtonOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(layoutData),
		),
		widget.ButtonOpts.Image(o.buttonImage),
		widget.ButtonOpts.Text(label, o.faces.UI, buttonTextColor),
		widget.ButtonOpts.TextPadding(widget.Insets{
			Left:   30,
			Right:  30,
			Top:    5,
			Bottom: 5,
		}),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			onClick()
		}),
	)
	o.buttons = append(o.buttons, button)
	return button
}
