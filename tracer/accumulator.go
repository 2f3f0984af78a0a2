package tracer

import "github.com/26wolff/CS-Raytracer/types"

// Accumulator stores a running radiance sum and a sample count for every
// pixel of a frame. Pixels are addressed by their row-major index.
//
// The accumulator performs no locking. Concurrent writers must operate on
// disjoint pixel ranges; the renderer guarantees this by assigning each tracer
// a distinct block of rows for every sample pass.
type Accumulator struct {
	frameW, frameH uint32

	sum   []types.Vec3
	count []uint32
}

// Allocate a zeroed accumulator for a frameW x frameH frame.
func NewAccumulator(frameW, frameH uint32) *Accumulator {
	return &Accumulator{
		frameW: frameW,
		frameH: frameH,
		sum:    make([]types.Vec3, frameW*frameH),
		count:  make([]uint32, frameW*frameH),
	}
}

// Get frame dimensions.
func (a *Accumulator) Dims() (uint32, uint32) {
	return a.frameW, a.frameH
}

// Reset all pixels to zero.
func (a *Accumulator) Clear() {
	for i := range a.sum {
		a.sum[i] = types.Vec3{}
		a.count[i] = 0
	}
}

// Add a radiance sample to a pixel and return the updated pixel mean.
func (a *Accumulator) Add(pixelIndex uint32, radiance types.Vec3) types.Vec3 {
	a.sum[pixelIndex] = a.sum[pixelIndex].Add(radiance)
	a.count[pixelIndex]++
	return a.sum[pixelIndex].Div(float32(a.count[pixelIndex]))
}

// Get the mean radiance for a pixel. Pixels without samples are black.
func (a *Accumulator) Mean(pixelIndex uint32) types.Vec3 {
	if a.count[pixelIndex] == 0 {
		return types.Vec3{}
	}
	return a.sum[pixelIndex].Div(float32(a.count[pixelIndex]))
}

// Get the number of samples accumulated for a pixel.
func (a *Accumulator) Count(pixelIndex uint32) uint32 {
	return a.count[pixelIndex]
}
