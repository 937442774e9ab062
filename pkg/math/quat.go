package math

import "math"

// slerpEpsilon is the smallest sin(theta) Slerp divides by.
const slerpEpsilon = 1e-3

// Quat represents a quaternion for 3D rotations.
// W is the scalar part. Quaternions are never renormalized implicitly.
type Quat struct {
	W, X, Y, Z float32
}

// QuatIdentity returns an identity quaternion (no rotation).
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	halfAngle := angle / 2
	s := float32(math.Sin(float64(halfAngle)))
	return Quat{
		W: float32(math.Cos(float64(halfAngle))),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

// Conjugate returns (w, -x, -y, -z).
func (q Quat) Conjugate() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Length returns the quaternion norm.
func (q Quat) Length() float32 {
	return float32(math.Sqrt(float64(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)))
}

// Normalize returns a normalized quaternion.
func (q Quat) Normalize() Quat {
	length := q.Length()
	if length < 0.0001 {
		return QuatIdentity()
	}
	invLen := 1.0 / length
	return Quat{
		W: q.W * invLen,
		X: q.X * invLen,
		Y: q.Y * invLen,
		Z: q.Z * invLen,
	}
}

// Dot returns the dot product of two quaternions.
func (q Quat) Dot(other Quat) float32 {
	return q.W*other.W + q.X*other.X + q.Y*other.Y + q.Z*other.Z
}

// Slerp performs spherical linear interpolation from q to other.
//
// The arc is taken as given: there is no hemisphere flip for negative dot
// products. When sin(theta) is below slerpEpsilon (the inputs are equal or
// opposite, which is the same rotation) q is returned unchanged.
func (q Quat) Slerp(other Quat, t float32) Quat {
	dot := float64(q.Dot(other))
	if dot > 1 {
		dot = 1
	} else if dot < -1 {
		dot = -1
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	if math.Abs(sinTheta) < slerpEpsilon {
		return q
	}

	w1 := float32(math.Sin(theta*(1-float64(t))) / sinTheta)
	w2 := float32(math.Sin(theta*float64(t)) / sinTheta)

	return Quat{
		W: q.W*w1 + other.W*w2,
		X: q.X*w1 + other.X*w2,
		Y: q.Y*w1 + other.Y*w2,
		Z: q.Z*w1 + other.Z*w2,
	}
}

// ToMat4 converts the quaternion to a 4x4 rotation matrix.
// The matrix is built from a normalized copy; q itself is left untouched.
func (q Quat) ToMat4() Mat4 {
	q = q.Normalize()

	xx := q.X * q.X
	xy := q.X * q.Y
	xz := q.X * q.Z
	xw := q.X * q.W
	yy := q.Y * q.Y
	yz := q.Y * q.Z
	yw := q.Y * q.W
	zz := q.Z * q.Z
	zw := q.Z * q.W

	return Mat4{
		1 - 2*(yy+zz), 2 * (xy + zw), 2 * (xz - yw), 0,
		2 * (xy - zw), 1 - 2*(xx+zz), 2 * (yz + xw), 0,
		2 * (xz + yw), 2 * (yz - xw), 1 - 2*(xx+yy), 0,
		0, 0, 0, 1,
	}
}
