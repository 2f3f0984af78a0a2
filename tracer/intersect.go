package tracer

import (
	"math"

	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/types"
)

// Tolerance used by the ray/triangle test both for detecting rays parallel
// to the triangle plane and as the minimum accepted hit distance.
const intersectEpsilon = 1e-6

// Intersect a ray with a triangle using the Moller-Trumbore algorithm. Returns
// the distance along the ray and true if the ray hits the triangle at a
// distance greater than intersectEpsilon.
func IntersectTriangle(origin, dir, v0, v1, v2 types.Vec3) (float32, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -intersectEpsilon && a < intersectEpsilon {
		return 0, false
	}

	f := 1.0 / a
	s := origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := f * edge2.Dot(q)
	if t <= intersectEpsilon {
		return 0, false
	}
	return t, true
}

// Scan the full triangle list and return the index of the closest triangle hit
// by the ray along with the hit distance. Returns -1 if the ray misses every
// triangle.
func ClosestHit(ray scene.Ray, triangles []scene.Triangle) (int, float32) {
	closest := -1
	var closestT float32 = math.MaxFloat32
	for index := range triangles {
		tri := &triangles[index]
		t, hit := IntersectTriangle(ray.Origin, ray.Dir, tri.V0, tri.V1, tri.V2)
		if hit && t < closestT {
			closest = index
			closestT = t
		}
	}

	return closest, closestT
}
