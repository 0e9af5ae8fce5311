package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector3_CrossDot(t *testing.T) {

	x := NewVector3(1, 0, 0)
	y := NewVector3(0, 1, 0)
	z := new(Vector3).CrossVectors(x, y)

	assert.InDelta(t, 0, z.X, 1e-12)
	assert.InDelta(t, 0, z.Y, 1e-12)
	assert.InDelta(t, 1, z.Z, 1e-12)
	assert.InDelta(t, 0, x.Dot(y), 1e-12)
}

func TestVector3_ApplyQuaternionIdentity(t *testing.T) {

	v := NewVector3(1, 2, 3)
	got := v.Clone().ApplyQuaternion(QuaternionIdentity())

	assert.InDelta(t, v.X, got.X, 1e-12)
	assert.InDelta(t, v.Y, got.Y, 1e-12)
	assert.InDelta(t, v.Z, got.Z, 1e-12)
}

func TestVector3_ApplyQuaternion90DegZ(t *testing.T) {

	q := new(Quaternion).SetFromAxisAngle(NewVector3(0, 0, 1), math.Pi/2)
	got := NewVector3(1, 0, 0).ApplyQuaternion(q)

	assert.InDelta(t, 0, got.X, 1e-9)
	assert.InDelta(t, 1, got.Y, 1e-9)
	assert.InDelta(t, 0, got.Z, 1e-9)
}

func TestMatrix3_InverseRoundTrip(t *testing.T) {

	m := new(Matrix3).Set(2, 0, 0, 0, 3, 0, 0, 0, 4)
	inv := new(Matrix3).GetInverse(m)
	prod := new(Matrix3).MultiplyMatrices(m, inv)

	id := NewMatrix3Identity()
	for i := range prod {
		assert.InDelta(t, id[i], prod[i], 1e-9)
	}
}

func TestQuaternion_AxisAngleRoundTrip(t *testing.T) {

	axis := NewVector3(0, 1, 0)
	angle := math.Pi / 3

	q := new(Quaternion).SetFromAxisAngle(axis, angle)
	gotAxis, gotAngle := q.AxisAngle()

	assert.InDelta(t, angle, gotAngle, 1e-9)
	assert.InDelta(t, axis.X, gotAxis.X, 1e-9)
	assert.InDelta(t, axis.Y, gotAxis.Y, 1e-9)
	assert.InDelta(t, axis.Z, gotAxis.Z, 1e-9)
}

func TestQuaternion_LogSmallAngle(t *testing.T) {

	axis := NewVector3(1, 0, 0)
	angle := 0.01
	q := new(Quaternion).SetFromAxisAngle(axis, angle)

	logv := q.Log()
	assert.InDelta(t, angle, logv.Length(), 1e-6)
}
