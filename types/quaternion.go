package types

import "math"

// A rotation quaternion. The vector part holds the (x, y, z) components.
type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from its x, y, z, w components (the layout used by glTF).
func QuatXYZW(x, y, z, w float32) Quat {
	return Quat{
		V: Vec3{x, y, z},
		W: w,
	}
}

// Rotate a vector by the rotation this quaternion represents.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	cross := q1.V.Cross(v)
	// v + 2q_w * (q_v x v) + 2q_v x (q_v x v)
	return v.Add(cross.Mul(2 * q1.W)).Add(q1.V.Mul(2).Cross(cross))
}

// Quaternion norm.
func (q1 Quat) Len() float32 {
	return float32(math.Sqrt(float64(q1.W*q1.W + q1.V.Dot(q1.V))))
}

// Normalize the quaternion. A zero quaternion normalizes to the identity.
func (q1 Quat) Normalize() Quat {
	length := q1.Len()

	if math.Abs(float64(1-length)) < floatCmpEpsilon {
		return q1
	}
	if length == 0 {
		return QuatIdent()
	}

	return Quat{q1.V.Mul(1 / length), q1.W / length}
}
