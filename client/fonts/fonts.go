package fonts

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/hajimehoshi/ebiten/v2/examples/resources/fonts"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

const dpi = 72

// Faces holds every font face the player draws with.
type Faces struct {
	// Text is used for dialog lines. MPlus covers CJK scripts.
	Text font.Face
	// Name is used for the speaker name.
	Name font.Face
	// UI is used for buttons.
	UI font.Face
	// Large is used for full screen messages.
	Large font.Face
}

type Options struct {
	TextSize int
	NameSize int
}

func NewFaces(opts Options) (*Faces, error) {
	if opts.TextSize <= 0 {
		opts.TextSize = 28
	}
	if opts.NameSize <= 0 {
		opts.NameSize = opts.TextSize
	}

	mplus, err := opentype.Parse(fonts.MPlus1pRegular_ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}
	text, err := opentype.NewFace(mplus, &opentype.FaceOptions{
		Size:    float64(opts.TextSize),
		DPI:     dpi,
		Hinting: font.HintingVertical,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create text font face: %v", err)
	}
	name, err := opentype.NewFace(mplus, &opentype.FaceOptions{
		Size:    float64(opts.NameSize),
		DPI:     dpi,
		Hinting: font.HintingVertical,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create name font face: %v", err)
	}

	ttfFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %v", err)
	}

	return &Faces{
		Text: text,
		Name: name,
		UI: truetype.NewFace(ttfFont, &truetype.Options{
			Size:    24,
			DPI:     dpi,
			Hinting: font.HintingFull,
		}),
		Large: truetype.NewFace(ttfFont, &truetype.Options{
			Size:    40,
			DPI:     dpi,
			Hinting: font.HintingFull,
		}),
	}, nil
}
