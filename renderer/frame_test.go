package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/26wolff/CS-Raytracer/tracer"
	"github.com/26wolff/CS-Raytracer/types"
)

func TestNewFrameClampsAndScales(t *testing.T) {
	type spec struct {
		radiance types.Vec3
		exposure float32
		exp      types.Vec3
	}
	specs := []spec{
		{types.Vec3{0.25, 0.5, 0.75}, 1, types.Vec3{0.25, 0.5, 0.75}},
		{types.Vec3{2, -1, 0.5}, 1, types.Vec3{1, 0, 0.5}},
		{types.Vec3{0.25, 0.5, 1}, 2, types.Vec3{0.5, 1, 1}},
		{types.Vec3{float32(math.NaN()), 0, 0}, 1, types.Vec3{0, 0, 0}},
	}

	for index, s := range specs {
		accum := tracer.NewAccumulator(2, 1)
		accum.Add(1, s.radiance)

		frame := NewFrame(accum, s.exposure)
		if got := frame.At(1, 0); got != s.exp {
			t.Fatalf("[spec %d] expected pixel %v; got %v", index, s.exp, got)
		}
		if got := frame.At(0, 0); !got.IsZero() {
			t.Fatalf("[spec %d] expected pixel without samples to be black; got %v", index, got)
		}
	}
}

func TestFrameRGBA(t *testing.T) {
	frame := &Frame{
		Width:  2,
		Height: 2,
		Pixels: []types.Vec3{
			{1, 0, 0}, {0, 1, 0},
			{0, 0, 1}, {0.5, 0.5, 0.5},
		},
	}

	img := frame.RGBA()
	type spec struct {
		x, y int
		exp  color.RGBA
	}
	specs := []spec{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{1, 0, color.RGBA{0, 255, 0, 255}},
		{0, 1, color.RGBA{0, 0, 255, 255}},
		{1, 1, color.RGBA{128, 128, 128, 255}},
	}

	for index, s := range specs {
		if got := img.RGBAAt(s.x, s.y); got != s.exp {
			t.Fatalf("[spec %d] expected pixel (%d, %d) to be %v; got %v", index, s.x, s.y, s.exp, got)
		}
	}
}
