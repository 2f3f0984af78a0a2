package types

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	type spec struct {
		in  Vec3
		exp Vec3
	}
	specs := []spec{
		{Vec3{3, 0, 4}, Vec3{0.6, 0, 0.8}},
		{Vec3{0, -2, 0}, Vec3{0, -1, 0}},
		{Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{Vec3{1e-9, 0, 0}, Vec3{0, 0, 0}},
	}

	for index, s := range specs {
		out := s.in.Normalize()
		if !ApproxEqual(out, s.exp, 1e-6) {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, out)
		}
	}
}

func TestReflect(t *testing.T) {
	in := Vec3{1, -1, 0}
	n := Vec3{0, 1, 0}
	exp := Vec3{1, 1, 0}
	if out := in.Reflect(n); !ApproxEqual(out, exp, 1e-6) {
		t.Fatalf("expected %v; got %v", exp, out)
	}
}

func TestComponentOps(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{2, 4, 0.5}

	if out := a.MulVec(b); out != (Vec3{2, 8, 1.5}) {
		t.Fatalf("unexpected MulVec result %v", out)
	}
	if out := b.MaxComponent(); out != 4 {
		t.Fatalf("expected max component 4; got %f", out)
	}
	if out := (Vec3{-1, 0.5, 7}).Clamp(0, 1); out != (Vec3{0, 0.5, 1}) {
		t.Fatalf("unexpected Clamp result %v", out)
	}
	if out := a.Lerp(b, 0.5); !ApproxEqual(out, Vec3{1.5, 3, 1.75}, 1e-6) {
		t.Fatalf("unexpected Lerp result %v", out)
	}
	if out := a.Cross(b); !ApproxEqual(out, Vec3{-11, 5.5, 0}, 1e-6) {
		t.Fatalf("unexpected Cross result %v", out)
	}
}

func TestIsFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Fatal("expected finite vector")
	}
	if (Vec3{nan, 0, 0}).IsFinite() || (Vec3{0, 0, inf}).IsFinite() {
		t.Fatal("expected non-finite vectors to be detected")
	}
}

func TestQuatRotate(t *testing.T) {
	type spec struct {
		axis  Vec3
		angle float32
		in    Vec3
		exp   Vec3
	}
	specs := []spec{
		{Vec3{0, 1, 0}, math.Pi / 2, Vec3{1, 0, 0}, Vec3{0, 0, -1}},
		{Vec3{0, 0, 2}, math.Pi, Vec3{1, 0, 0}, Vec3{-1, 0, 0}},
		{Vec3{1, 0, 0}, 0, Vec3{0, 1, 0}, Vec3{0, 1, 0}},
	}

	for index, s := range specs {
		axis := s.axis.Normalize().Mul(float32(math.Sin(float64(s.angle / 2))))
		q := QuatXYZW(axis[0], axis[1], axis[2], float32(math.Cos(float64(s.angle/2))))
		out := q.Rotate(s.in)
		if !ApproxEqual(out, s.exp, 1e-5) {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, out)
		}
	}

	if q := (Quat{}).Normalize(); q != QuatIdent() {
		t.Fatalf("expected zero quaternion to normalize to identity; got %v", q)
	}
}
