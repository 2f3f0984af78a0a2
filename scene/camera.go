package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/26wolff/CS-Raytracer/types"
)

var (
	ErrCameraNotFinite = errors.New("camera: position, rotation and fov must be finite")
	ErrCameraFOV       = errors.New("camera: fov components must be in the (0, pi) range")
)

// The max pitch angle (in radians) that can be set via Rotate.
const maxPitch = math.Pi/2 - 0.01

type CameraDirection uint8

const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

// A ray with an origin and a unit direction vector.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
}

// Get the point at distance t along the ray.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// The camera type controls the scene camera. Rotation stores the (pitch, yaw,
// roll) angles in radians and FOV stores the horizontal and vertical field of
// view in radians.
//
// The roll angle is carried around but ignored when building the camera basis.
type Camera struct {
	Position types.Vec3
	Rotation types.Vec3
	FOV      types.Vec2
}

// Create a camera at (0, 0, -6) looking down the +Z axis with a 90 degree
// horizontal fov. The vertical fov is derived from the frame aspect ratio.
func NewCamera(aspect float32) *Camera {
	c := &Camera{
		Position: types.Vec3{0, 0, -6},
	}
	c.FOV[0] = math.Pi / 2
	c.SetAspect(aspect)
	return c
}

// Recalculate the vertical fov so that it matches the given frame aspect ratio.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 {
		aspect = 1
	}
	c.FOV[1] = c.FOV[0] / aspect
}

// Get the forward, right and up vectors for the current camera rotation.
// The vectors are not re-orthonormalized; up is always the world Y axis.
func (c *Camera) Basis() (forward, right, up types.Vec3) {
	sinPitch, cosPitch := math.Sincos(float64(c.Rotation[0]))
	sinYaw, cosYaw := math.Sincos(float64(c.Rotation[1]))

	forward = types.Vec3{
		float32(sinYaw * cosPitch),
		float32(sinPitch),
		float32(cosYaw * cosPitch),
	}
	right = types.Vec3{float32(cosYaw), 0, float32(-sinYaw)}
	up = types.Vec3{0, 1, 0}
	return forward, right, up
}

// Generate a primary ray for the normalized screen coordinates (u, v). u grows
// to the right and v grows upwards; (0.5, 0.5) maps to the forward vector.
func (c *Camera) GetRay(u, v float32) Ray {
	forward, right, up := c.Basis()

	dir := forward.
		Add(right.Mul((u - 0.5) * c.FOV[0])).
		Add(up.Mul((v - 0.5) * c.FOV[1])).
		Normalize()

	if dir.IsZero() {
		dir = forward
	}

	return Ray{Origin: c.Position, Dir: dir}
}

// Move camera along one of its basis vectors.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	forward, right, up := c.Basis()

	var offset types.Vec3
	switch dir {
	case Forward:
		offset = forward.Mul(amount)
	case Backward:
		offset = forward.Mul(-amount)
	case Left:
		offset = right.Mul(-amount)
	case Right:
		offset = right.Mul(amount)
	case Up:
		offset = up.Mul(amount)
	case Down:
		offset = up.Mul(-amount)
	}

	c.Position = c.Position.Add(offset)
}

// Apply a pitch/yaw delta. Pitch is clamped so the forward vector never
// becomes parallel to the world up axis.
func (c *Camera) Rotate(deltaPitch, deltaYaw float32) {
	c.Rotation[0] = float32(math.Max(-maxPitch, math.Min(maxPitch, float64(c.Rotation[0]+deltaPitch))))
	c.Rotation[1] += deltaYaw
}

// Check that the camera parameters can produce well-formed rays.
func (c *Camera) Validate() error {
	if !c.Position.IsFinite() || !c.Rotation.IsFinite() || !c.FOV.Vec3(0).IsFinite() {
		return ErrCameraNotFinite
	}

	for _, fov := range c.FOV {
		if fov <= 0 || fov >= math.Pi {
			return fmt.Errorf("%w; got %v", ErrCameraFOV, c.FOV)
		}
	}

	return nil
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"pos (%3.3f, %3.3f, %3.3f), rot (%3.1f°, %3.1f°, %3.1f°), fov (%3.1f°, %3.1f°)",
		c.Position[0], c.Position[1], c.Position[2],
		types.Degrees(c.Rotation[0]), types.Degrees(c.Rotation[1]), types.Degrees(c.Rotation[2]),
		types.Degrees(c.FOV[0]), types.Degrees(c.FOV[1]),
	)
}
