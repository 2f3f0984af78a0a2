package renderer

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	stampFontSize = 14
	stampMargin   = 8
)

// Draw a one-line caption with a black drop shadow in the bottom-left corner
// of img.
func StampFrame(img *image.RGBA, text string) error {
	ttf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return err
	}

	face, err := opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    stampFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = face.Close()
	}()

	baseline := img.Bounds().Max.Y - stampMargin
	left := img.Bounds().Min.X + stampMargin

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(left+1, baseline+1),
	}
	drawer.DrawString(text)

	drawer.Src = image.White
	drawer.Dot = fixed.P(left, baseline)
	drawer.DrawString(text)

	return nil
}
