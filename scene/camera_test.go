package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/26wolff/CS-Raytracer/types"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera(16.0 / 9.0)

	expPos := types.Vec3{0, 0, -6}
	if c.Position != expPos {
		t.Fatalf("expected camera position to be %v; got %v", expPos, c.Position)
	}
	if c.FOV[0] != math.Pi/2 {
		t.Fatalf("expected horizontal fov to be pi/2; got %f", c.FOV[0])
	}
	expFovY := float32(math.Pi/2) / (16.0 / 9.0)
	if math.Abs(float64(c.FOV[1]-expFovY)) > 1e-6 {
		t.Fatalf("expected vertical fov to be %f; got %f", expFovY, c.FOV[1])
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected default camera to be valid; got %v", err)
	}
}

func TestCameraBasis(t *testing.T) {
	type spec struct {
		rotation   types.Vec3
		expForward types.Vec3
		expRight   types.Vec3
	}
	specs := []spec{
		{types.Vec3{0, 0, 0}, types.Vec3{0, 0, 1}, types.Vec3{1, 0, 0}},
		{types.Vec3{0, math.Pi / 2, 0}, types.Vec3{1, 0, 0}, types.Vec3{0, 0, -1}},
		{types.Vec3{math.Pi / 2, 0, 0}, types.Vec3{0, 1, 0}, types.Vec3{1, 0, 0}},
		// roll is ignored
		{types.Vec3{0, 0, 1.2}, types.Vec3{0, 0, 1}, types.Vec3{1, 0, 0}},
	}

	for index, s := range specs {
		c := &Camera{Rotation: s.rotation, FOV: types.Vec2{1, 1}}
		forward, right, up := c.Basis()
		if !types.ApproxEqual(forward, s.expForward, 1e-6) {
			t.Fatalf("[spec %d] expected forward to be %v; got %v", index, s.expForward, forward)
		}
		if !types.ApproxEqual(right, s.expRight, 1e-6) {
			t.Fatalf("[spec %d] expected right to be %v; got %v", index, s.expRight, right)
		}
		if up != (types.Vec3{0, 1, 0}) {
			t.Fatalf("[spec %d] expected up to be the world Y axis; got %v", index, up)
		}
	}
}

func TestCameraGetRay(t *testing.T) {
	c := &Camera{
		Position: types.Vec3{1, 2, 3},
		FOV:      types.Vec2{math.Pi / 2, math.Pi / 4},
	}

	type spec struct {
		u, v   float32
		expDir types.Vec3
	}
	specs := []spec{
		{0.5, 0.5, types.Vec3{0, 0, 1}},
		{1, 0.5, types.Vec3{math.Pi / 4, 0, 1}.Normalize()},
		{0.5, 0, types.Vec3{0, -math.Pi / 8, 1}.Normalize()},
		{0, 1, types.Vec3{-math.Pi / 4, math.Pi / 8, 1}.Normalize()},
	}

	for index, s := range specs {
		ray := c.GetRay(s.u, s.v)
		if ray.Origin != c.Position {
			t.Fatalf("[spec %d] expected ray origin to be %v; got %v", index, c.Position, ray.Origin)
		}
		if !types.ApproxEqual(ray.Dir, s.expDir, 1e-5) {
			t.Fatalf("[spec %d] expected ray dir to be %v; got %v", index, s.expDir, ray.Dir)
		}
		if l := ray.Dir.Len(); math.Abs(float64(l-1)) > 1e-5 {
			t.Fatalf("[spec %d] expected unit ray dir; got length %f", index, l)
		}
	}

	// Rolling the camera does not change the generated rays.
	rolled := *c
	rolled.Rotation[2] = 0.7
	if a, b := c.GetRay(0.2, 0.9), rolled.GetRay(0.2, 0.9); a != b {
		t.Fatalf("expected roll to be ignored; got %v and %v", a, b)
	}
}

func TestCameraMoveAndRotate(t *testing.T) {
	c := NewCamera(1)
	c.Move(Forward, 2)
	if !types.ApproxEqual(c.Position, types.Vec3{0, 0, -4}, 1e-6) {
		t.Fatalf("expected camera to move forward; got %v", c.Position)
	}
	c.Move(Right, 1)
	c.Move(Up, 0.5)
	if !types.ApproxEqual(c.Position, types.Vec3{1, 0.5, -4}, 1e-6) {
		t.Fatalf("expected camera to move right and up; got %v", c.Position)
	}

	c.Rotate(10, 0.25)
	if math.Abs(float64(c.Rotation[0])-maxPitch) > 1e-6 {
		t.Fatalf("expected pitch to be clamped to %f; got %f", maxPitch, c.Rotation[0])
	}
	if c.Rotation[1] != 0.25 {
		t.Fatalf("expected yaw to be 0.25; got %f", c.Rotation[1])
	}
}

func TestCameraValidate(t *testing.T) {
	nan := float32(math.NaN())

	type spec struct {
		cam    Camera
		expErr error
	}
	specs := []spec{
		{Camera{FOV: types.Vec2{1, 1}}, nil},
		{Camera{Position: types.Vec3{nan, 0, 0}, FOV: types.Vec2{1, 1}}, ErrCameraNotFinite},
		{Camera{FOV: types.Vec2{0, 1}}, ErrCameraFOV},
		{Camera{FOV: types.Vec2{1, math.Pi}}, ErrCameraFOV},
	}

	for index, s := range specs {
		err := s.cam.Validate()
		if !errors.Is(err, s.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestCameraDegenerateDirection(t *testing.T) {
	// Looking straight up with a ray that cancels the forward vector.
	c := &Camera{
		Rotation: types.Vec3{math.Pi / 2, 0, 0},
		FOV:      types.Vec2{1, 2},
	}
	ray := c.GetRay(0.5, 0)
	if !ray.Dir.IsFinite() || ray.Dir.IsZero() {
		t.Fatalf("expected a usable ray direction; got %v", ray.Dir)
	}
}
