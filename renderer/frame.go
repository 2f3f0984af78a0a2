package renderer

import (
	"image"
	"image/color"

	"github.com/26wolff/CS-Raytracer/tracer"
	"github.com/26wolff/CS-Raytracer/types"
)

// A rendered frame. Pixels are stored in row-major order, starting from the
// top-left corner, with every component clamped to [0, 1].
type Frame struct {
	Width  uint32
	Height uint32
	Pixels []types.Vec3
}

// Build a frame from the per-pixel mean radiance stored in accum. Exposure
// scales the radiance before it gets clamped.
func NewFrame(accum *tracer.Accumulator, exposure float32) *Frame {
	frameW, frameH := accum.Dims()
	f := &Frame{
		Width:  frameW,
		Height: frameH,
		Pixels: make([]types.Vec3, frameW*frameH),
	}

	for pixelIndex := range f.Pixels {
		c := accum.Mean(uint32(pixelIndex)).Mul(exposure)
		if !c.IsFinite() {
			c = types.Vec3{}
		}
		f.Pixels[pixelIndex] = c.Clamp(0, 1)
	}

	return f
}

// Get the color of pixel (x, y).
func (f *Frame) At(x, y uint32) types.Vec3 {
	return f.Pixels[y*f.Width+x]
}

// Convert the frame to an 8-bit RGBA image.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))
	for y := uint32(0); y < f.Height; y++ {
		for x := uint32(0); x < f.Width; x++ {
			c := f.At(x, y)
			img.SetRGBA(int(x), int(y), color.RGBA{
				R: toByte(c[0]),
				G: toByte(c[1]),
				B: toByte(c[2]),
				A: 255,
			})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	return uint8(v*255.0 + 0.5)
}
