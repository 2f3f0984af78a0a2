package tracer

import (
	"math"

	"github.com/26wolff/CS-Raytracer/types"
)

// Generate a cosine-weighted direction on the hemisphere around normal using
// the uniform sample pair (u1, u2).
func sampleCosineHemisphere(normal types.Vec3, u1, u2 float32) types.Vec3 {
	phi := 2.0 * math.Pi * float64(u1)
	r := math.Sqrt(float64(u2))

	x := float32(r * math.Cos(phi))
	y := float32(r * math.Sin(phi))
	z := float32(math.Sqrt(math.Max(0, 1.0-float64(u2))))

	// Create orthonormal basis around the normal
	var nt types.Vec3
	if math.Abs(float64(normal[0])) > 0.1 {
		nt = types.Vec3{0, 1, 0}
	} else {
		nt = types.Vec3{1, 0, 0}
	}
	tangent := nt.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Mul(x).Add(bitangent.Mul(y)).Add(normal.Mul(z))
}

// Radical inverse of index in the given prime base.
func radicalInverse(index, base uint32) float32 {
	var result float64
	invBase := 1.0 / float64(base)
	frac := invBase
	for index > 0 {
		result += float64(index%base) * frac
		index /= base
		frac *= invBase
	}
	return float32(result)
}

// Calculate the sub-pixel offset for a sample. The offset follows the
// 2D Halton sequence (bases 2 and 3) indexed by the sample index, rotated by a
// per-pixel random shift (derived from pxSeed) so that neighboring pixels do
// not share sample positions. The returned offsets are centered at 0.5 and
// their spread around the pixel center is scaled by jitter (0 = always sample
// the pixel center, 1 = cover the full pixel footprint).
func pixelJitter(pxSeed, sampleIndex uint32, jitter float32) (float32, float32) {
	if jitter == 0 {
		return 0.5, 0.5
	}

	hx := radicalInverse(sampleIndex, 2) + toUnitFloat(hashCombine(pxSeed, dimJitterX))
	hy := radicalInverse(sampleIndex, 3) + toUnitFloat(hashCombine(pxSeed, dimJitterY))
	hx -= float32(math.Floor(float64(hx)))
	hy -= float32(math.Floor(float64(hy)))

	return 0.5 + (hx-0.5)*jitter, 0.5 + (hy-0.5)*jitter
}
