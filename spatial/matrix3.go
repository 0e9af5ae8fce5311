// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spatial

// Matrix3 is a 3x3 matrix stored column-major, same element order as the
// reference engine's math32.Matrix3.
type Matrix3 [9]float64

// NewMatrix3Identity creates and returns a pointer to a new identity Matrix3.
func NewMatrix3Identity() *Matrix3 {

	m := new(Matrix3)
	m.Identity()
	return m
}

// Set sets all elements of the matrix row by row and returns the pointer.
func (m *Matrix3) Set(n11, n12, n13, n21, n22, n23, n31, n32, n33 float64) *Matrix3 {

	m[0], m[3], m[6] = n11, n12, n13
	m[1], m[4], m[7] = n21, n22, n23
	m[2], m[5], m[8] = n31, n32, n33
	return m
}

// Identity sets this matrix to the identity matrix and returns the pointer.
func (m *Matrix3) Identity() *Matrix3 {

	return m.Set(
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	)
}

// Zero sets all elements of this matrix to zero and returns the pointer.
func (m *Matrix3) Zero() *Matrix3 {

	for i := range m {
		m[i] = 0
	}
	return m
}

// Copy copies src into this matrix and returns the pointer.
func (m *Matrix3) Copy(src *Matrix3) *Matrix3 {

	*m = *src
	return m
}

// Clone returns a copy of this matrix.
func (m *Matrix3) Clone() *Matrix3 {

	other := *m
	return &other
}

// Transpose transposes this matrix in place and returns the pointer.
func (m *Matrix3) Transpose() *Matrix3 {

	m[1], m[3] = m[3], m[1]
	m[2], m[6] = m[6], m[2]
	m[5], m[7] = m[7], m[5]
	return m
}

// Multiply multiplies this matrix by other on the right (this = this*other)
// and returns the pointer.
func (m *Matrix3) Multiply(other *Matrix3) *Matrix3 {

	return m.MultiplyMatrices(m.Clone(), other)
}

// MultiplyMatrices sets this matrix to a*b and returns the pointer.
func (m *Matrix3) MultiplyMatrices(a, b *Matrix3) *Matrix3 {

	var r Matrix3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[k*3+row] * b[col*3+k]
			}
			r[col*3+row] = sum
		}
	}
	*m = r
	return m
}

// Determinant returns the determinant of this matrix.
func (m *Matrix3) Determinant() float64 {

	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[3]*(m[1]*m[8]-m[2]*m[7]) +
		m[6]*(m[1]*m[5]-m[2]*m[4])
}

// GetInverse sets this matrix to the inverse of src and returns the pointer.
// Rotational inertia tensors handled by this package are always positive
// definite, so the determinant is never checked against zero here; a caller
// feeding a singular matrix gets +Inf/NaN entries rather than a panic.
func (m *Matrix3) GetInverse(src *Matrix3) *Matrix3 {

	n11, n21, n31 := src[0], src[1], src[2]
	n12, n22, n32 := src[3], src[4], src[5]
	n13, n23, n33 := src[6], src[7], src[8]

	t11 := n33*n22 - n32*n23
	t12 := n32*n13 - n33*n12
	t13 := n23*n12 - n22*n13

	det := n11*t11 + n21*t12 + n31*t13
	invDet := 1 / det

	m.Set(
		t11*invDet, t12*invDet, t13*invDet,
		(n31*n23-n33*n21)*invDet, (n33*n11-n31*n13)*invDet, (n21*n13-n23*n11)*invDet,
		(n32*n21-n31*n22)*invDet, (n31*n12-n32*n11)*invDet, (n22*n11-n21*n12)*invDet,
	)
	return m
}

// MakeRotationFromQuaternion sets this matrix to the rotation described by q
// and returns the pointer.
func (m *Matrix3) MakeRotationFromQuaternion(q *Quaternion) *Matrix3 {

	x, y, z, w := q.X, q.Y, q.Z, q.W
	x2, y2, z2 := x+x, y+y, z+z
	xx, xy, xz := x*x2, x*y2, x*z2
	yy, yz, zz := y*y2, y*z2, z*z2
	wx, wy, wz := w*x2, w*y2, w*z2

	return m.Set(
		1-(yy+zz), xy-wz, xz+wy,
		xy+wz, 1-(xx+zz), yz-wx,
		xz-wy, yz+wx, 1-(xx+yy),
	)
}

// Diag3 returns a diagonal matrix with the given entries.
func Diag3(a, b, c float64) *Matrix3 {

	m := new(Matrix3)
	return m.Set(a, 0, 0, 0, b, 0, 0, 0, c)
}
