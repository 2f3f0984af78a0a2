package tracer

import (
	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/types"
)

const (
	// Distance along the bounce direction used to offset the origin of
	// secondary rays so they do not re-hit the surface they left.
	bounceOffset = 1e-4

	// Bounds for the russian roulette survival probability.
	minSurvivalProbability = 0.05
	maxSurvivalProbability = 0.95
)

// The reason a path stopped.
type PathState uint8

const (
	// The path escaped the scene.
	PathMiss PathState = iota

	// The path was eliminated by russian roulette or its throughput
	// dropped to zero.
	PathTerminated

	// The path exhausted the bounce budget.
	PathMaxBounce

	numPathStates
)

func (s PathState) String() string {
	switch s {
	case PathMiss:
		return "miss"
	case PathTerminated:
		return "terminated"
	case PathMaxBounce:
		return "max bounce"
	}
	return "unknown"
}

// The outcome of tracing a single camera path.
type PathResult struct {
	Radiance types.Vec3

	// Path throughput at the time the path stopped.
	Throughput types.Vec3

	State PathState

	// Number of surface interactions along the path.
	Bounces uint32
}

// PathIntegrator estimates the radiance arriving along a camera ray by
// following a single random path through the scene.
type PathIntegrator struct {
	// Max bounce index. A value of 0 only evaluates the surface hit by the
	// camera ray.
	MaxBounces uint32

	// The first bounce index where russian roulette is applied. Setting this
	// to a value greater than MaxBounces disables russian roulette.
	MinBouncesForRR uint32

	// Radiance returned for rays that escape the scene.
	Background types.Vec3
}

// Trace a path starting with ray. The scene triangles must only reference
// valid material indices.
func (in *PathIntegrator) Trace(sc *scene.Scene, ray scene.Ray, seed PathSeed) PathResult {
	throughput := types.Splat(1)
	var radiance types.Vec3

	for bounce := uint32(0); bounce <= in.MaxBounces; bounce++ {
		triIndex, t := ClosestHit(ray, sc.Triangles)
		if triIndex < 0 {
			return PathResult{
				Radiance:   radiance.Add(throughput.MulVec(in.Background)),
				Throughput: throughput,
				State:      PathMiss,
				Bounces:    bounce,
			}
		}

		tri := &sc.Triangles[triIndex]
		mat := &sc.Materials[tri.MaterialIndex]
		radiance = radiance.Add(throughput.MulVec(mat.Emission()))
		hitPoint := ray.At(t)

		if bounce >= in.MinBouncesForRR {
			p := clampf(throughput.MaxComponent(), minSurvivalProbability, maxSurvivalProbability)
			if seed.RouletteFloat(bounce, hitPoint) > p {
				return PathResult{Radiance: radiance, Throughput: throughput, State: PathTerminated, Bounces: bounce + 1}
			}
			throughput = throughput.Mul(1 / p)
		}

		throughput = throughput.MulVec(mat.Reflectance())
		if throughput.IsZero() {
			return PathResult{Radiance: radiance, Throughput: throughput, State: PathTerminated, Bounces: bounce + 1}
		}

		// Orient the shading normal against the incoming ray
		normal := tri.Normal
		if normal.IsZero() {
			normal = scene.GeometricNormal(tri.V0, tri.V1, tri.V2)
		}
		if normal.Dot(ray.Dir) > 0 {
			normal = normal.Neg()
		}

		mirrorDir := ray.Dir.Reflect(normal)
		diffuseDir := sampleCosineHemisphere(normal, seed.Float(bounce, dimBounceU), seed.Float(bounce, dimBounceV))
		newDir := mirrorDir.Lerp(diffuseDir, mat.Roughness()).Normalize()
		if newDir.IsZero() {
			newDir = normal
		}

		ray = scene.Ray{
			Origin: hitPoint.Add(newDir.Mul(bounceOffset)),
			Dir:    newDir,
		}
	}

	return PathResult{Radiance: radiance, Throughput: throughput, State: PathMaxBounce, Bounces: in.MaxBounces + 1}
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
