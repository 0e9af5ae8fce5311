// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package build

import (
	"math"

	"github.com/gorigid/constraint/model"
)

// Equalities appends one row per scalar equality constraint: 3 for
// Connect, 6 (3 translational + 3 rotational) for Weld, 1 for Joint and
// Tendon couplings (spec §4.4). Disabled equalities and ones the model
// marks inactive are skipped. qpos and tendonLength give the current
// positions the Joint/Tendon couplings' quartic residual is evaluated at.
func (s *Set) Equalities(m *model.Model, qpos []float64, tendonLength []float64) {

	for id := range m.Equalities {
		eq := &m.Equalities[id]
		if !eq.Active {
			continue
		}
		switch eq.Type {
		case model.EqConnect:
			s.addConnect(m, id, eq)
		case model.EqWeld:
			s.addWeld(m, id, eq)
		case model.EqJoint:
			s.addJointCoupling(m, id, eq, qpos)
		case model.EqTendon:
			s.addTendonCoupling(m, id, eq, tendonLength)
		}
	}
}

// worldAnchor returns body b's anchor point, offset by local in the body
// frame, expressed in world coordinates, together with r = worldAnchor -
// body.Pos (the lever arm used by the angular Jacobian block).
func worldAnchor(b model.Body, local [3]float64) (world, r [3]float64) {
	r = rotate(b.Quat, local)
	world = [3]float64{b.Pos[0] + r[0], b.Pos[1] + r[1], b.Pos[2] + r[2]}
	return world, r
}

// rotate applies unit quaternion q = (x,y,z,w) to vector v.
func rotate(q [4]float64, v [3]float64) [3]float64 {
	qx, qy, qz, qw := q[0], q[1], q[2], q[3]
	// t = 2 * cross(q.xyz, v)
	tx := 2 * (qy*v[2] - qz*v[1])
	ty := 2 * (qz*v[0] - qx*v[2])
	tz := 2 * (qx*v[1] - qy*v[0])
	// v' = v + qw*t + cross(q.xyz, t)
	cx := qy*tz - qz*ty
	cy := qz*tx - qx*tz
	cz := qx*ty - qy*tx
	return [3]float64{
		v[0] + qw*tx + cx,
		v[1] + qw*ty + cy,
		v[2] + qw*tz + cz,
	}
}

// axisCross returns r cross e_k for k in {0,1,2}, the angular Jacobian
// coefficients of a world-frame point velocity (spec §4.3, "keep HOW"
// note: v_point = v_body + w x r, differentiated w.r.t. w).
func axisCross(r [3]float64, k int) [3]float64 {
	switch k {
	case 0:
		return [3]float64{0, r[2], -r[1]}
	case 1:
		return [3]float64{-r[2], 0, r[0]}
	default:
		return [3]float64{r[1], -r[0], 0}
	}
}

func sortRowByDof(dofs []int, vals []float64) ([]int, []float64) {
	n := len(dofs)
	for i := 1; i < n; i++ {
		d, v := dofs[i], vals[i]
		j := i - 1
		for j >= 0 && dofs[j] > d {
			dofs[j+1] = dofs[j]
			vals[j+1] = vals[j]
			j--
		}
		dofs[j+1] = d
		vals[j+1] = v
	}
	// merge duplicate columns (two contributions landing on the same dof,
	// e.g. a body whose own chain overlaps the anchor's ancestor chain)
	out_d := dofs[:0:0]
	out_v := vals[:0:0]
	for i := 0; i < n; i++ {
		if len(out_d) > 0 && out_d[len(out_d)-1] == dofs[i] {
			out_v[len(out_v)-1] += vals[i]
			continue
		}
		out_d = append(out_d, dofs[i])
		out_v = append(out_v, vals[i])
	}
	return out_d, out_v
}

func (s *Set) addConnect(m *model.Model, id int, eq *model.Equality) {

	var anchor1, anchor2 [3]float64
	copy(anchor1[:], eq.Data[0:3])
	copy(anchor2[:], eq.Data[3:6])

	bodyA := m.Bodies[eq.Obj1ID]
	_, rA := worldAnchor(bodyA, anchor1)

	var bodyB model.Body
	var rB [3]float64
	haveB := eq.Obj2ID >= 0
	if haveB {
		bodyB = m.Bodies[eq.Obj2ID]
		_, rB = worldAnchor(bodyB, anchor2)
	}

	worldA := [3]float64{bodyA.Pos[0] + rA[0], bodyA.Pos[1] + rA[1], bodyA.Pos[2] + rA[2]}
	var worldB [3]float64
	if haveB {
		worldB = [3]float64{bodyB.Pos[0] + rB[0], bodyB.Pos[1] + rB[1], bodyB.Pos[2] + rB[2]}
	}

	for k := 0; k < 3; k++ {
		var dir [3]float64
		dir[k] = 1
		dofs, vals := s.directionJacobian(m, bodyA, haveB, bodyB, rA, rB, dir, 1, -1)

		pos := worldA[k] - worldB[k]
		s.Rows = append(s.Rows, Row{
			Type: model.EQUALITY, Obj1ID: id, Obj2ID: eq.Obj2ID,
			Pos: pos, SolRef: eq.SolRef, SolImp: eq.SolImp,
			Dofs: dofs, Jac: vals,
		})
	}
}

func (s *Set) addWeld(m *model.Model, id int, eq *model.Equality) {

	// Translational rows: identical to Connect.
	s.addConnect(m, id, eq)

	// Rotational rows: residual is the logarithm of the relative rotation
	// between body A's frame and body B's frame composed with the weld's
	// fixed relative pose (eq_data[6..10]), scaled by torquescale
	// (eq_data[10]); see spatial.Quaternion.Log (spec §4.4).
	var relpose [4]float64
	copy(relpose[:], eq.Data[6:10])
	torquescale := eq.Data[10]
	if torquescale == 0 {
		torquescale = 1
	}

	bodyA := m.Bodies[eq.Obj1ID]
	var bodyB model.Body
	haveB := eq.Obj2ID >= 0
	if haveB {
		bodyB = m.Bodies[eq.Obj2ID]
	}

	qerr := relativeRotationError(bodyA.Quat, bodyB.Quat, relpose, haveB)

	for k := 0; k < 3; k++ {
		var dofs []int
		var vals []float64
		if bodyA.DofNum >= 6 {
			dofs = append(dofs, bodyA.DofAdr+3+k)
			vals = append(vals, torquescale)
		}
		if haveB && bodyB.DofNum >= 6 {
			dofs = append(dofs, bodyB.DofAdr+3+k)
			vals = append(vals, -torquescale)
		}
		dofs, vals = sortRowByDof(dofs, vals)
		dofs, vals = s.newRow(dofs, vals)

		s.Rows = append(s.Rows, Row{
			Type: model.EQUALITY, Obj1ID: id, Obj2ID: eq.Obj2ID,
			Pos: torquescale * qerr[k], SolRef: eq.SolRef, SolImp: eq.SolImp,
			Dofs: dofs, Jac: vals,
		})
	}
}

// relativeRotationError returns the axis-vector residual (spatial log) of
// quatB relative to quatA composed with the weld's target relative pose.
func relativeRotationError(quatA, quatB, relpose [4]float64, haveB bool) [3]float64 {

	b := quatB
	if !haveB {
		b = [4]float64{0, 0, 0, 1}
	}
	// qdiff = conj(quatA * relpose) * b
	composed := multiplyQuat(quatA, relpose)
	composed = conjugate(composed)
	qdiff := multiplyQuat(composed, b)
	return quatLog(qdiff)
}

func conjugate(q [4]float64) [4]float64 { return [4]float64{-q[0], -q[1], -q[2], q[3]} }

func multiplyQuat(a, b [4]float64) [4]float64 {
	ax, ay, az, aw := a[0], a[1], a[2], a[3]
	bx, by, bz, bw := b[0], b[1], b[2], b[3]
	return [4]float64{
		ax*bw + aw*bx + ay*bz - az*by,
		ay*bw + aw*by + az*bx - ax*bz,
		az*bw + aw*bz + ax*by - ay*bx,
		aw*bw - ax*bx - ay*by - az*bz,
	}
}

func quatLog(q [4]float64) [3]float64 {
	w := q[3]
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-12 {
		return [3]float64{0, 0, 0}
	}
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return [3]float64{q[0] / s * angle, q[1] / s * angle, q[2] / s * angle}
}

// polyResidual evaluates the quartic coupling polynomial a[0] + a[1]*d +
// a[2]*d^2 + a[3]*d^3 + a[4]*d^4 and its derivative at d, by Horner's rule
// (spec §4.4, Joint/Tendon cubic coupling — eq_data layout: data[0:5] are
// the polynomial coefficients a0..a4, data[5] is the first object's
// reference ref0, data[6] is the second object's reference ref1, see
// DESIGN.md for this slot convention).
func polyResidual(a [5]float64, d float64) (poly, deriv float64) {
	poly = a[0] + d*(a[1]+d*(a[2]+d*(a[3]+d*a[4])))
	deriv = a[1] + d*(2*a[2]+d*(3*a[3]+d*4*a[4]))
	return poly, deriv
}

// addJointCoupling adds one row for a joint coupled to another joint's
// position through a quartic polynomial: p0 - ref0 - poly(p1 - ref1) = 0,
// differentiated to v0 - poly'(p1-ref1)*v1 (spec §4.4). With no second
// joint the polynomial term drops out entirely and the row is just p0 -
// ref0 with Jacobian v0.
func (s *Set) addJointCoupling(m *model.Model, id int, eq *model.Equality, qpos []float64) {

	j1 := m.Joints[eq.Obj1ID]
	var a [5]float64
	copy(a[:], eq.Data[0:5])
	ref0 := eq.Data[5]

	dofs := []int{j1.DofAdr}
	vals := []float64{1}
	pos := qpos[j1.QposAdr] - ref0

	if eq.Obj2ID >= 0 {
		j2 := m.Joints[eq.Obj2ID]
		ref1 := eq.Data[6]
		d := qpos[j2.QposAdr] - ref1
		poly, deriv := polyResidual(a, d)
		pos -= poly
		dofs = append(dofs, j2.DofAdr)
		vals = append(vals, -deriv)
		dofs, vals = sortRowByDof(dofs, vals)
	}
	dofs, vals = s.newRow(dofs, vals)

	s.Rows = append(s.Rows, Row{
		Type: model.EQUALITY, Obj1ID: id, Obj2ID: eq.Obj2ID,
		Pos: pos, SolRef: eq.SolRef, SolImp: eq.SolImp,
		Dofs: dofs, Jac: vals,
	})
}

// addTendonCoupling mirrors addJointCoupling for two tendons' lengths and
// moment-arm vectors instead of a single joint dof each.
func (s *Set) addTendonCoupling(m *model.Model, id int, eq *model.Equality, tendonLength []float64) {

	t1 := m.Tendons[eq.Obj1ID]
	var a [5]float64
	copy(a[:], eq.Data[0:5])
	ref0 := eq.Data[5]

	dofs := append([]int{}, t1.Dofs...)
	vals := append([]float64{}, t1.Moment...)
	pos := tendonLength[eq.Obj1ID] - ref0

	if eq.Obj2ID >= 0 {
		t2 := m.Tendons[eq.Obj2ID]
		ref1 := eq.Data[6]
		d := tendonLength[eq.Obj2ID] - ref1
		poly, deriv := polyResidual(a, d)
		pos -= poly
		for i, c := range t2.Moment {
			dofs = append(dofs, t2.Dofs[i])
			vals = append(vals, -deriv*c)
		}
	}
	dofs, vals = sortRowByDof(dofs, vals)
	dofs, vals = s.newRow(dofs, vals)

	s.Rows = append(s.Rows, Row{
		Type: model.EQUALITY, Obj1ID: id, Obj2ID: eq.Obj2ID,
		Pos: pos, SolRef: eq.SolRef, SolImp: eq.SolImp,
		Dofs: dofs, Jac: vals,
	})
}
