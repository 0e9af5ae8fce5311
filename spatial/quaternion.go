// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

import "math"

// Quaternion represents a rotation in 3D space as (X, Y, Z, W).
type Quaternion struct {
	X float64
	Y float64
	Z float64
	W float64
}

// NewQuaternion creates and returns a pointer to a new Quaternion.
func NewQuaternion(x, y, z, w float64) *Quaternion {

	return &Quaternion{X: x, Y: y, Z: z, W: w}
}

// QuaternionIdentity returns the identity quaternion.
func QuaternionIdentity() *Quaternion {

	return &Quaternion{W: 1}
}

// Clone returns a copy of this quaternion.
func (q *Quaternion) Clone() *Quaternion {

	other := *q
	return &other
}

// Set sets this quaternion's components and returns the pointer.
func (q *Quaternion) Set(x, y, z, w float64) *Quaternion {

	q.X, q.Y, q.Z, q.W = x, y, z, w
	return q
}

// Conjugate negates the vector part of this quaternion and returns the pointer.
func (q *Quaternion) Conjugate() *Quaternion {

	q.X, q.Y, q.Z = -q.X, -q.Y, -q.Z
	return q
}

// Length returns the length of this quaternion.
func (q *Quaternion) Length() float64 {

	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize scales this quaternion to unit length and returns the pointer.
func (q *Quaternion) Normalize() *Quaternion {

	length := q.Length()
	if length < epsilon {
		q.X, q.Y, q.Z, q.W = 0, 0, 0, 1
		return q
	}
	inv := 1 / length
	q.X *= inv
	q.Y *= inv
	q.Z *= inv
	q.W *= inv
	return q
}

// Inverse sets this quaternion to its inverse (conjugate, for unit
// quaternions) and returns the pointer.
func (q *Quaternion) Inverse() *Quaternion {

	return q.Conjugate().Normalize()
}

// Multiply sets this quaternion to this*other and returns the pointer.
func (q *Quaternion) Multiply(other *Quaternion) *Quaternion {

	return q.MultiplyQuaternions(q.Clone(), other)
}

// MultiplyQuaternions sets this quaternion to a*b and returns the pointer.
func (q *Quaternion) MultiplyQuaternions(a, b *Quaternion) *Quaternion {

	qax, qay, qaz, qaw := a.X, a.Y, a.Z, a.W
	qbx, qby, qbz, qbw := b.X, b.Y, b.Z, b.W

	q.X = qax*qbw + qaw*qbx + qay*qbz - qaz*qby
	q.Y = qay*qbw + qaw*qby + qaz*qbx - qax*qbz
	q.Z = qaz*qbw + qaw*qbz + qax*qby - qay*qbx
	q.W = qaw*qbw - qax*qbx - qay*qby - qaz*qbz
	return q
}

// SetFromAxisAngle sets this quaternion to the rotation of angle radians
// around axis (assumed normalized) and returns the pointer.
func (q *Quaternion) SetFromAxisAngle(axis *Vector3, angle float64) *Quaternion {

	half := angle * 0.5
	s := math.Sin(half)
	q.X = axis.X * s
	q.Y = axis.Y * s
	q.Z = axis.Z * s
	q.W = math.Cos(half)
	return q
}

// AxisAngle extracts the rotation axis and angle (in [0, 2*pi)) this
// quaternion represents. Used by ball-joint limit evaluation (spec §4.4).
func (q *Quaternion) AxisAngle() (axis *Vector3, angle float64) {

	qn := q.Clone().Normalize()
	if qn.W > 1 {
		qn.W = 1
	} else if qn.W < -1 {
		qn.W = -1
	}
	angle = 2 * math.Acos(qn.W)
	s := math.Sqrt(1 - qn.W*qn.W)
	if s < epsilon {
		return NewVector3(1, 0, 0), angle
	}
	return NewVector3(qn.X/s, qn.Y/s, qn.Z/s), angle
}

// Log returns the axis-vector (not axis-angle) part of this quaternion,
// i.e. axis*angle, used by the Weld equality's rotation residual (spec
// §4.4): this is the rotation vector, which for a small-angle delta
// quaternion is about twice the quaternion's vector part.
func (q *Quaternion) Log() *Vector3 {

	axis, angle := q.AxisAngle()
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return axis.MultiplyScalar(angle)
}
