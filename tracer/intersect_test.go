package tracer

import (
	"math"
	"testing"

	"github.com/26wolff/CS-Raytracer/scene"
	"github.com/26wolff/CS-Raytracer/types"
)

var (
	unitTriV0 = types.Vec3{-1, -1, 0}
	unitTriV1 = types.Vec3{1, -1, 0}
	unitTriV2 = types.Vec3{0, 1, 0}
)

func TestIntersectTriangle(t *testing.T) {
	type spec struct {
		origin types.Vec3
		dir    types.Vec3
		expHit bool
		expT   float32
	}

	specs := []spec{
		// Head-on hit
		{types.Vec3{0, 0, -5}, types.Vec3{0, 0, 1}, true, 5},
		// Triangle behind the ray origin
		{types.Vec3{0, 0, -5}, types.Vec3{0, 0, -1}, false, 0},
		// Ray parallel to the triangle plane
		{types.Vec3{0, 0, -5}, types.Vec3{1, 0, 0}, false, 0},
		// Ray passing outside the triangle edges
		{types.Vec3{2, 2, -5}, types.Vec3{0, 0, 1}, false, 0},
		// Hit from the back side
		{types.Vec3{0, 0, 3}, types.Vec3{0, 0, -1}, true, 3},
	}

	for index, s := range specs {
		tHit, hit := IntersectTriangle(s.origin, s.dir, unitTriV0, unitTriV1, unitTriV2)
		if hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, hit)
		}
		if hit && math.Abs(float64(tHit-s.expT)) > 1e-4 {
			t.Fatalf("[spec %d] expected hit distance %f; got %f", index, s.expT, tHit)
		}
	}
}

func TestIntersectTriangleIsDeterministic(t *testing.T) {
	origin := types.Vec3{0.1, -0.2, -5}
	dir := types.Vec3{0.01, 0.02, 1}.Normalize()

	t0, hit0 := IntersectTriangle(origin, dir, unitTriV0, unitTriV1, unitTriV2)
	for i := 0; i < 10; i++ {
		t1, hit1 := IntersectTriangle(origin, dir, unitTriV0, unitTriV1, unitTriV2)
		if t0 != t1 || hit0 != hit1 {
			t.Fatalf("expected repeated intersection tests to return (%f, %t); got (%f, %t)", t0, hit0, t1, hit1)
		}
	}
}

func TestClosestHit(t *testing.T) {
	near := scene.Triangle{V0: unitTriV0, V1: unitTriV1, V2: unitTriV2}
	far := scene.Triangle{
		V0: unitTriV0.Add(types.Vec3{0, 0, 2}),
		V1: unitTriV1.Add(types.Vec3{0, 0, 2}),
		V2: unitTriV2.Add(types.Vec3{0, 0, 2}),
	}
	ray := scene.Ray{Origin: types.Vec3{0, 0, -5}, Dir: types.Vec3{0, 0, 1}}

	type spec struct {
		tris     []scene.Triangle
		expIndex int
		expT     float32
	}
	specs := []spec{
		{[]scene.Triangle{near, far}, 0, 5},
		{[]scene.Triangle{far, near}, 1, 5},
		{[]scene.Triangle{far}, 0, 7},
		{nil, -1, 0},
	}

	for index, s := range specs {
		triIndex, tHit := ClosestHit(ray, s.tris)
		if triIndex != s.expIndex {
			t.Fatalf("[spec %d] expected closest triangle %d; got %d", index, s.expIndex, triIndex)
		}
		if triIndex >= 0 && math.Abs(float64(tHit-s.expT)) > 1e-4 {
			t.Fatalf("[spec %d] expected hit distance %f; got %f", index, s.expT, tHit)
		}
	}
}
