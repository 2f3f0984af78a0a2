package tracer

import (
	"math"

	"github.com/26wolff/CS-Raytracer/types"
)

// Sample dimensions. Each random decision taken while tracing a path uses its
// own dimension so that decisions are uncorrelated.
const (
	dimJitterX uint32 = iota
	dimJitterY
	dimBounceU
	dimBounceV
	dimRoulette
)

// Scramble a 32-bit value using a xorshift-multiply integer hash.
func hash(x uint32) uint32 {
	x ^= x >> 17
	x *= 0xed5ad4bb
	x ^= x >> 11
	x *= 0xac4c1b51
	x ^= x >> 15
	x *= 0x31848bab
	x ^= x >> 14
	return x
}

// Fold v into the running hash h.
func hashCombine(h, v uint32) uint32 {
	return hash(h ^ (v + 0x9e3779b9 + (h << 6) + (h >> 2)))
}

// Map the 24 high bits of a hash to a float in [0, 1).
func toUnitFloat(h uint32) float32 {
	return float32(h>>8) * (1.0 / (1 << 24))
}

// PathSeed identifies the random stream of a single camera path. All random
// numbers drawn while tracing the path are a pure function of the seed, the
// bounce index and the sample dimension, so re-rendering a frame with the same
// global seed reproduces it exactly regardless of how work was scheduled.
type PathSeed uint32

// Derive the seed shared by all samples of a pixel.
func pixelSeed(globalSeed, pixelIndex uint32) uint32 {
	return hashCombine(hash(globalSeed), pixelIndex)
}

// Derive the path seed for a pixel sample.
func NewPathSeed(globalSeed, pixelIndex, sampleIndex uint32) PathSeed {
	return PathSeed(hashCombine(pixelSeed(globalSeed, pixelIndex), sampleIndex))
}

// Draw a uniform float in [0, 1) for the given bounce and dimension.
func (s PathSeed) Float(bounce, dim uint32) float32 {
	return toUnitFloat(hashCombine(hashCombine(uint32(s), bounce), dim))
}

// Draw the russian roulette float for a bounce. The hit point position is
// folded into the hash.
func (s PathSeed) RouletteFloat(bounce uint32, hitPoint types.Vec3) float32 {
	h := hashCombine(hashCombine(uint32(s), bounce), dimRoulette)
	h = hashCombine(h, math.Float32bits(hitPoint[0]))
	h = hashCombine(h, math.Float32bits(hitPoint[1]))
	h = hashCombine(h, math.Float32bits(hitPoint[2]))
	return toUnitFloat(h)
}
